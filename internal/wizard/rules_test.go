package wizard

import "testing"

func ids(recs []Recommendation) []string {
	out := make([]string, 0, len(recs))
	for _, r := range recs {
		out = append(out, r.ID)
	}
	return out
}

func contains(recs []Recommendation, id string) bool {
	for _, r := range recs {
		if r.ID == id {
			return true
		}
	}
	return false
}

func TestRecommend_TwoGroupsContinuous_IncludesTTest(t *testing.T) {
	recs := Recommend(Answers{1: OptTwoGroups, 2: OptContinuous})
	if !contains(recs, "t-test") {
		t.Fatalf("expected t-test in %v", ids(recs))
	}
}

func TestRecommend_ThreePlusGroups_IncludesANOVA(t *testing.T) {
	recs := Recommend(Answers{1: OptThreePlusGroups})
	if !contains(recs, "anova") {
		t.Fatalf("expected anova in %v", ids(recs))
	}
}

func TestRecommend_Categorical_IncludesChiSquare(t *testing.T) {
	recs := Recommend(Answers{2: OptCategorical})
	if !contains(recs, "chi-square") {
		t.Fatalf("expected chi-square in %v", ids(recs))
	}
}

func TestRecommend_Empty_ReturnsEmpty(t *testing.T) {
	if recs := Recommend(Answers{}); len(recs) != 0 {
		t.Fatalf("empty answers should yield no recommendations, got %v", ids(recs))
	}
	if recs := Recommend(nil); len(recs) != 0 {
		t.Fatalf("nil answers should yield no recommendations, got %v", ids(recs))
	}
}

func TestRecommend_IndependentRulesAllFire(t *testing.T) {
	// three-plus groups on a categorical outcome matches two rules;
	// order must follow table declaration order.
	recs := Recommend(Answers{1: OptThreePlusGroups, 2: OptCategorical})
	got := ids(recs)
	if len(got) != 2 || got[0] != "anova" || got[1] != "chi-square" {
		t.Fatalf("expected [anova chi-square] in table order, got %v", got)
	}
}

func TestRecommend_UnknownAnswersMatchNothing(t *testing.T) {
	recs := Recommend(Answers{1: "one-group", 2: "ordinal", 7: "bogus"})
	if len(recs) != 0 {
		t.Fatalf("unknown combination should match nothing, got %v", ids(recs))
	}
}

func TestRecommend_IsDeterministic(t *testing.T) {
	a := Answers{1: OptTwoGroups, 2: OptContinuous}
	first := ids(Recommend(a))
	for i := 0; i < 10; i++ {
		if got := ids(Recommend(a)); len(got) != len(first) || got[0] != first[0] {
			t.Fatalf("run %d differed: %v vs %v", i, got, first)
		}
	}
}
