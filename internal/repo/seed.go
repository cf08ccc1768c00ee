// Catalog seed data. The three built-in statistical tests are inserted at
// startup when missing; when the database is unavailable the same slice backs
// the catalog endpoint directly, so the API keeps serving in degraded mode.
package repo

import (
	"context"

	"gorm.io/gorm"

	"github.com/bahithi/platform-backend/internal/domain"
)

// DefaultStatisticalTests returns fresh copies of the built-in catalog
// entries. Callers may mutate the result freely.
func DefaultStatisticalTests() []domain.StatisticalTest {
	return []domain.StatisticalTest{
		{
			TestName:    "T-Test",
			Category:    "parametric",
			TestType:    "comparison",
			Description: "Tests the difference between the means of two independent or paired groups.",
			Conditions: domain.StringList{
				"Continuous data",
				"Normally distributed data",
				"Homogeneity of variance (independent groups)",
			},
			SPSSSteps: domain.StringList{
				"Choose Analyze → Compare Means → Independent-Samples T Test",
				"Put the dependent variable under Test Variable(s)",
				"Put the grouping variable under Grouping Variable",
				"Click Define Groups and set the group values",
				"Click OK to run the test",
			},
			ExcelSteps: domain.StringList{
				"Use the function T.TEST(array1, array2, tails, type)",
				"Array1: data range of the first group",
				"Array2: data range of the second group",
				"Tails: 1 for one-tailed, 2 for two-tailed",
				"Type: 1 for paired groups, 2 for independent groups",
			},
			Icon: "fas fa-not-equal",
		},
		{
			TestName:    "ANOVA",
			Category:    "parametric",
			TestType:    "comparison",
			Description: "Tests the difference between the means of three or more groups.",
			Conditions: domain.StringList{
				"Continuous data",
				"Normally distributed data",
				"Homogeneity of variance between groups",
				"Independence of observations",
			},
			SPSSSteps: domain.StringList{
				"Choose Analyze → Compare Means → One-Way ANOVA",
				"Put the dependent variable under Dependent List",
				"Put the grouping variable under Factor",
				"Click Post Hoc for multiple-comparison tests",
				"Pick a method (e.g. Tukey), Continue, then OK",
			},
			ExcelSteps: domain.StringList{
				"Use Data Analysis → ANOVA: Single Factor",
				"Select the input data range",
				"Set Alpha (usually 0.05)",
				"Choose the output location and click OK",
			},
			Icon: "fas fa-layer-group",
		},
		{
			TestName:    "Chi-Square",
			Category:    "non-parametric",
			TestType:    "association",
			Description: "Tests the association between two categorical variables or goodness of fit to a theoretical distribution.",
			Conditions: domain.StringList{
				"Categorical data",
				"Independent observations",
				"Expected counts > 5 in every cell",
			},
			SPSSSteps: domain.StringList{
				"Choose Analyze → Descriptive Statistics → Crosstabs",
				"Set the row and column variables",
				"Click Statistics and tick Chi-square",
				"Click Cells and tick Expected and Percentages",
				"Click OK to run the test",
			},
			ExcelSteps: domain.StringList{
				"Build the cross-tabulation table",
				"Use the function CHISQ.TEST(actual_range, expected_range)",
				"Critical value: CHISQ.INV.RT(probability, df)",
				"Degrees of freedom: (rows-1) * (columns-1)",
			},
			Icon: "fas fa-th",
		},
	}
}

// SeedStatisticalTests inserts any missing built-in catalog rows, keyed by
// test name. Existing rows are left untouched.
func SeedStatisticalTests(ctx context.Context, db *gorm.DB) error {
	for _, t := range DefaultStatisticalTests() {
		err := db.WithContext(ctx).
			Where("test_name = ?", t.TestName).
			FirstOrCreate(&t).Error
		if err != nil {
			return err
		}
	}
	return nil
}
