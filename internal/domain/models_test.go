package domain

import (
	"encoding/json"
	"reflect"
	"testing"
)

func TestValidHelpType(t *testing.T) {
	for _, ht := range []string{
		HelpStatisticalAnalysis, HelpResearchConsultation, HelpDataEntry, HelpTraining, HelpOther,
	} {
		if !ValidHelpType(ht) {
			t.Errorf("ValidHelpType(%q) = false, want true", ht)
		}
	}
	for _, ht := range []string{"", "unknown", "STATISTICAL-ANALYSIS", "stats"} {
		if ValidHelpType(ht) {
			t.Errorf("ValidHelpType(%q) = true, want false", ht)
		}
	}
}

func TestStringList_Value_NilIsEmptyArray(t *testing.T) {
	var l StringList
	v, err := l.Value()
	if err != nil {
		t.Fatalf("Value: %v", err)
	}
	if v != "[]" {
		t.Fatalf("nil StringList serialized as %v, want []", v)
	}
}

func TestStringList_RoundTrip(t *testing.T) {
	in := StringList{"continuous data", "normal distribution"}
	v, err := in.Value()
	if err != nil {
		t.Fatalf("Value: %v", err)
	}

	var out StringList
	if err := out.Scan(v); err != nil {
		t.Fatalf("Scan: %v", err)
	}
	if !reflect.DeepEqual(in, out) {
		t.Fatalf("round trip mismatch: %v != %v", in, out)
	}
}

func TestStringList_Scan_EdgeCases(t *testing.T) {
	var l StringList
	if err := l.Scan(nil); err != nil {
		t.Fatalf("Scan(nil): %v", err)
	}
	if len(l) != 0 {
		t.Fatalf("Scan(nil) produced %v, want empty", l)
	}

	if err := l.Scan([]byte(`["a","b"]`)); err != nil {
		t.Fatalf("Scan(bytes): %v", err)
	}
	if len(l) != 2 {
		t.Fatalf("Scan(bytes) produced %v", l)
	}

	if err := l.Scan(42); err == nil {
		t.Fatalf("Scan(int) should fail")
	}
}

func TestConsultation_JSONOmitsEmptyOptionals(t *testing.T) {
	c := Consultation{FullName: "Sara", Email: "sara@uni.edu", HelpType: HelpTraining, Message: "hi", Status: StatusPending}
	b, err := json.Marshal(c)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	var m map[string]any
	if err := json.Unmarshal(b, &m); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	for _, k := range []string{"phone", "university", "academic_level", "attachment_path", "deadline"} {
		if _, ok := m[k]; ok {
			t.Errorf("empty optional %q should be omitted, got %v", k, m[k])
		}
	}
	if m["status"] != StatusPending {
		t.Errorf("status = %v", m["status"])
	}
}
