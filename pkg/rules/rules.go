// Package rules post-processes mined association rules into an analyzable
// table: separated antecedent/consequent columns plus ranking helpers.
package rules

import (
	"sort"
	"strings"

	"github.com/seqflow/seqflow/pkg/mining"
)

// Separator is the exact antecedent/consequent separator in a formatted rule
// string: space, arrow, space.
const Separator = " => "

// DecomposedRule is one rule with its antecedent and consequent split out.
// RHS is nil when the rule string was malformed (the separator did not occur
// exactly once); LHS then retains the entire string. Immutable after
// construction.
type DecomposedRule struct {
	LHS        string
	RHS        *string
	Support    float64
	Confidence float64
	Lift       float64
}

// Malformed reports whether the rule string failed to split.
func (r DecomposedRule) Malformed() bool {
	return r.RHS == nil
}

// Text reconstructs the original formatted rule string.
func (r DecomposedRule) Text() string {
	if r.RHS == nil {
		return r.LHS
	}
	return r.LHS + Separator + *r.RHS
}

// Table is an ordered collection of decomposed rules.
type Table struct {
	Rows []DecomposedRule

	// MalformedCount is the number of rows with a nil RHS. A data-quality
	// signal for callers, never escalated to an error.
	MalformedCount int
}

// Metric names a rule metric usable for ranking.
type Metric string

const (
	MetricSupport    Metric = "support"
	MetricConfidence Metric = "confidence"
	MetricLift       Metric = "lift"
)

// ParseMetric resolves a metric name, defaulting to lift for anything
// unrecognized.
func ParseMetric(s string) Metric {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "support":
		return MetricSupport
	case "confidence":
		return MetricConfidence
	default:
		return MetricLift
	}
}

// Decompose splits each rule's formatted string on Separator and carries the
// metrics through unchanged. A string where the separator does not occur
// exactly once yields a row with nil RHS and the full string as LHS; such
// rows are retained and counted, not dropped. The input slice is not mutated.
func Decompose(rules []mining.Rule) Table {
	table := Table{Rows: make([]DecomposedRule, 0, len(rules))}

	for _, rule := range rules {
		row := DecomposedRule{
			LHS:        rule.Text,
			Support:    rule.Support,
			Confidence: rule.Confidence,
			Lift:       rule.Lift,
		}

		parts := strings.Split(rule.Text, Separator)
		if len(parts) == 2 {
			rhs := parts[1]
			row.LHS = parts[0]
			row.RHS = &rhs
		} else {
			table.MalformedCount++
		}

		table.Rows = append(table.Rows, row)
	}

	return table
}

// TopK returns a new table holding the k rows ranking highest on the named
// metric, descending. The sort is stable, so equal metric values keep their
// original relative order. A k at or beyond the table size returns the whole
// table (reordered).
func (t Table) TopK(by Metric, k int) Table {
	rows := make([]DecomposedRule, len(t.Rows))
	copy(rows, t.Rows)

	sort.SliceStable(rows, func(i, j int) bool {
		return metricValue(rows[i], by) > metricValue(rows[j], by)
	})

	if k < 0 {
		k = 0
	}
	if k > len(rows) {
		k = len(rows)
	}
	rows = rows[:k]

	return Table{Rows: rows, MalformedCount: countMalformed(rows)}
}

// DropMalformed returns a new table without nil-RHS rows.
func (t Table) DropMalformed() Table {
	rows := make([]DecomposedRule, 0, len(t.Rows))
	for _, row := range t.Rows {
		if !row.Malformed() {
			rows = append(rows, row)
		}
	}
	return Table{Rows: rows}
}

func metricValue(r DecomposedRule, by Metric) float64 {
	switch by {
	case MetricSupport:
		return r.Support
	case MetricConfidence:
		return r.Confidence
	default:
		return r.Lift
	}
}

func countMalformed(rows []DecomposedRule) int {
	n := 0
	for _, row := range rows {
		if row.Malformed() {
			n++
		}
	}
	return n
}
