// Package wizard implements the statistical-test recommendation wizard: a
// fixed-length question sequence and a static rule table that maps the
// collected answers to suggested tests. Everything here is pure and
// in-memory; no I/O is performed.
package wizard

// Answer option values for the wizard questions.
const (
	OptTwoGroups       = "two-groups"
	OptThreePlusGroups = "three-plus-groups"
	OptContinuous      = "continuous"
	OptCategorical     = "categorical"
)

// Answers maps a step index (1..TotalSteps) to the chosen option value.
// An entry exists for step k only after the user confirmed step k.
type Answers map[int]string

// Recommendation describes one suggested statistical test.
type Recommendation struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description"`
}

// Rule matches an answer pattern to a recommendation. A rule fires when every
// entry in When equals the corresponding collected answer; rules are
// independent, so several can fire for the same answer set. Adding a test
// means adding a row here, not new control flow.
type Rule struct {
	When map[int]string
	Then Recommendation
}

// rules is the recommendation table. Result order follows declaration order.
var rules = []Rule{
	{
		When: map[int]string{1: OptTwoGroups, 2: OptContinuous},
		Then: Recommendation{
			ID:          "t-test",
			Name:        "T-Test",
			Description: "Compares the means of two independent or paired groups on a continuous variable.",
		},
	},
	{
		When: map[int]string{1: OptThreePlusGroups},
		Then: Recommendation{
			ID:          "anova",
			Name:        "ANOVA",
			Description: "Compares the means of three or more groups.",
		},
	},
	{
		When: map[int]string{2: OptCategorical},
		Then: Recommendation{
			ID:          "chi-square",
			Name:        "Chi-Square",
			Description: "Tests the association between categorical variables.",
		},
	},
}

// Recommend evaluates the rule table against the collected answers and
// returns every matching recommendation in table order. Unknown or partial
// answer sets simply match fewer rules; the result is never an error.
func Recommend(answers Answers) []Recommendation {
	out := make([]Recommendation, 0, len(rules))
	for _, r := range rules {
		if matches(r.When, answers) {
			out = append(out, r.Then)
		}
	}
	return out
}

func matches(when map[int]string, answers Answers) bool {
	for step, want := range when {
		if answers[step] != want {
			return false
		}
	}
	return true
}
