package nonverbal

import (
	"errors"
	"testing"
)

func TestCompute_ConfidentFullScore(t *testing.T) {
	counters := NewCounters()
	counters[CategoryEye][LabelLookingUp] = 3
	counters[CategoryHead][LabelCenter] = 2
	counters[CategoryMouth][LabelSpeaking] = 5

	results, err := Compute(counters, DefaultRules())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	confident, ok := results["Confident"]
	if !ok {
		t.Fatal("missing Confident result")
	}
	if confident.Percentage != 100.00 {
		t.Errorf("Confident percentage = %.2f, want 100.00", confident.Percentage)
	}

	wantEvidence := []string{
		"eye: Looking Up (3)",
		"head: Center (2)",
		"mouth: Speaking (5)",
	}
	if len(confident.Evidence) != len(wantEvidence) {
		t.Fatalf("evidence length = %d, want %d", len(confident.Evidence), len(wantEvidence))
	}
	for i, want := range wantEvidence {
		if confident.Evidence[i] != want {
			t.Errorf("evidence[%d] = %q, want %q", i, confident.Evidence[i], want)
		}
	}
}

func TestCompute_ZeroTotalSignalsDegenerate(t *testing.T) {
	results, err := Compute(NewCounters(), DefaultRules())
	if !errors.Is(err, ErrNoObservations) {
		t.Fatalf("expected ErrNoObservations, got %v", err)
	}
	if results != nil {
		t.Errorf("expected nil results on zero total, got %v", results)
	}
}

func TestCompute_UniversalDenominator(t *testing.T) {
	counters := NewCounters()
	counters[CategoryEye][LabelLookingLeft] = 2
	counters[CategoryEye][LabelLookingDown] = 2
	counters[CategoryHead][LabelCenter] = 4
	counters[CategoryMouth][LabelSilent] = 2
	// total = 10

	results, err := Compute(counters, DefaultRules())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	// Distracted: eye L/R (2) + head L/R (0) = 2/10
	if got := results["Distracted"].Percentage; got != 20.00 {
		t.Errorf("Distracted = %.2f, want 20.00", got)
	}
	// Confident: eye Up (0) + head Center (4) + mouth Speaking (0) = 4/10
	if got := results["Confident"].Percentage; got != 40.00 {
		t.Errorf("Confident = %.2f, want 40.00", got)
	}
	// Nervous: eye Down (2) + head Down (0) + mouth Silent (2) = 4/10
	if got := results["Nervous"].Percentage; got != 40.00 {
		t.Errorf("Nervous = %.2f, want 40.00", got)
	}
}

func TestCompute_RoundsToTwoDecimals(t *testing.T) {
	counters := NewCounters()
	counters[CategoryEye][LabelLookingUp] = 1
	counters[CategoryHead][LabelLookingLeft] = 1
	counters[CategoryMouth][LabelSilent] = 1
	// total = 3, Confident = 1/3

	results, err := Compute(counters, DefaultRules())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got := results["Confident"].Percentage; got != 33.33 {
		t.Errorf("Confident = %v, want 33.33", got)
	}
}

func TestCompute_OverlappingRulesShareCounts(t *testing.T) {
	rules := []Rule{
		{Label: "A", Constraints: []Constraint{{Category: CategoryEye, Labels: []string{LabelLookingLeft}}}},
		{Label: "B", Constraints: []Constraint{{Category: CategoryEye, Labels: []string{LabelLookingLeft}}}},
	}
	counters := NewCounters()
	counters[CategoryEye][LabelLookingLeft] = 5

	results, err := Compute(counters, rules)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if results["A"].Percentage != 100.00 || results["B"].Percentage != 100.00 {
		t.Errorf("overlapping rules: A=%.2f B=%.2f, both want 100.00",
			results["A"].Percentage, results["B"].Percentage)
	}
}

func TestCompute_EvidenceIncludesZeroCounts(t *testing.T) {
	counters := NewCounters()
	counters[CategoryMouth][LabelSpeaking] = 1

	results, err := Compute(counters, DefaultRules())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	confident := results["Confident"]
	if len(confident.Evidence) != 3 {
		t.Fatalf("evidence length = %d, want 3 (zero-count pairs included)", len(confident.Evidence))
	}
	if confident.Evidence[0] != "eye: Looking Up (0)" {
		t.Errorf("evidence[0] = %q, want zero-count eye pair", confident.Evidence[0])
	}
}
