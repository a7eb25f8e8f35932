package nonverbal

import (
	"errors"
	"fmt"
	"math"
)

// ErrNoObservations is returned by Compute when the counters hold zero
// transitions. Callers must not persist a score derived from an empty
// session; the degenerate case is explicit, never a silent zero.
var ErrNoObservations = errors.New("no nonverbal observations recorded")

// Constraint names the labels of one category that count toward a rule.
type Constraint struct {
	Category Category
	Labels   []string
}

// Rule maps a behavioral label to the (category, labels) observations that
// count toward it. Rules are static for the lifetime of a session.
type Rule struct {
	Label       string
	Constraints []Constraint
}

// Result is the computed score for one behavioral label.
type Result struct {
	// Percentage is the share of all observed transitions attributed to
	// this label, 0-100 rounded to two decimals.
	Percentage float64 `json:"percentage"`
	// Evidence lists every (category, label) pair the rule references with
	// its individual count, in rule-declaration order, zero counts included.
	Evidence []string `json:"metricsUsed"`
}

// DefaultRules is the stock rule table. Rules are evaluated independently;
// the same raw count may contribute to more than one label.
func DefaultRules() []Rule {
	return []Rule{
		{
			Label: "Distracted",
			Constraints: []Constraint{
				{Category: CategoryEye, Labels: []string{LabelLookingLeft, LabelLookingRight}},
				{Category: CategoryHead, Labels: []string{LabelLookingLeft, LabelLookingRight}},
			},
		},
		{
			Label: "Confident",
			Constraints: []Constraint{
				{Category: CategoryEye, Labels: []string{LabelLookingUp}},
				{Category: CategoryHead, Labels: []string{LabelCenter}},
				{Category: CategoryMouth, Labels: []string{LabelSpeaking}},
			},
		},
		{
			Label: "Nervous",
			Constraints: []Constraint{
				{Category: CategoryEye, Labels: []string{LabelLookingDown}},
				{Category: CategoryHead, Labels: []string{LabelLookingDown}},
				{Category: CategoryMouth, Labels: []string{LabelSilent}},
			},
		},
	}
}

// Compute turns final counters into a percentage score per behavioral label.
// The denominator is the sum of every counter across every category: scores
// are share-of-all-observed-transitions, not per-category normalization.
func Compute(counters Counters, rules []Rule) (map[string]Result, error) {
	total := counters.Total()
	if total == 0 {
		return nil, ErrNoObservations
	}

	results := make(map[string]Result, len(rules))
	for _, rule := range rules {
		score := 0
		evidence := make([]string, 0, len(rule.Constraints))
		for _, con := range rule.Constraints {
			for _, label := range con.Labels {
				n := counters.Get(con.Category, label)
				score += n
				evidence = append(evidence, fmt.Sprintf("%s: %s (%d)", con.Category, label, n))
			}
		}
		pct := math.Round(float64(score)/float64(total)*100*100) / 100
		results[rule.Label] = Result{Percentage: pct, Evidence: evidence}
	}
	return results, nil
}
