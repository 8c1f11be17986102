package rules

import (
	"testing"

	"github.com/seqflow/seqflow/pkg/mining"
)

func TestDecompose_WellFormed(t *testing.T) {
	table := Decompose([]mining.Rule{
		{Text: "<click_A> => <click_B>", Support: 0.3, Confidence: 0.6, Lift: 1.2},
	})

	if len(table.Rows) != 1 {
		t.Fatalf("Expected 1 row, got %d", len(table.Rows))
	}
	row := table.Rows[0]
	if row.LHS != "<click_A>" {
		t.Errorf("Expected LHS %q, got %q", "<click_A>", row.LHS)
	}
	if row.RHS == nil || *row.RHS != "<click_B>" {
		t.Errorf("Expected RHS %q, got %v", "<click_B>", row.RHS)
	}
	if row.Support != 0.3 || row.Confidence != 0.6 || row.Lift != 1.2 {
		t.Errorf("Metrics not carried over: %+v", row)
	}
	if table.MalformedCount != 0 {
		t.Errorf("Expected 0 malformed, got %d", table.MalformedCount)
	}
}

func TestDecompose_NoSeparator(t *testing.T) {
	table := Decompose([]mining.Rule{{Text: "click_A", Support: 0.5}})

	row := table.Rows[0]
	if row.LHS != "click_A" {
		t.Errorf("Expected whole string as LHS, got %q", row.LHS)
	}
	if row.RHS != nil {
		t.Errorf("Expected nil RHS, got %q", *row.RHS)
	}
	if !row.Malformed() {
		t.Error("Expected row to report malformed")
	}
	if table.MalformedCount != 1 {
		t.Errorf("Expected malformed count 1, got %d", table.MalformedCount)
	}
}

func TestDecompose_MultipleSeparators(t *testing.T) {
	text := "a => b => c"
	table := Decompose([]mining.Rule{{Text: text}})

	row := table.Rows[0]
	if row.LHS != text {
		t.Errorf("Expected untouched LHS %q, got %q", text, row.LHS)
	}
	if row.RHS != nil {
		t.Error("Expected nil RHS for ambiguous split")
	}
}

func TestDecompose_SeparatorMustMatchExactly(t *testing.T) {
	// "=>" without the surrounding spaces is not a separator.
	table := Decompose([]mining.Rule{{Text: "a=>b"}})
	if table.Rows[0].RHS != nil {
		t.Error("Expected nil RHS when separator lacks padding")
	}
}

func TestDecompose_RoundTrip(t *testing.T) {
	texts := []string{
		"<click_A> => <click_B>",
		"x => y",
		"lonely",
		"a => b => c",
	}
	rules := make([]mining.Rule, len(texts))
	for i, s := range texts {
		rules[i] = mining.Rule{Text: s}
	}

	table := Decompose(rules)
	for i, row := range table.Rows {
		if got := row.Text(); got != texts[i] {
			t.Errorf("Round trip %d: expected %q, got %q", i, texts[i], got)
		}
	}
}

func TestTopK_ScenarioE(t *testing.T) {
	table := Decompose([]mining.Rule{
		{Text: "a => b", Lift: 0.9},
		{Text: "b => c", Lift: 1.5},
		{Text: "c => d", Lift: 1.2},
	})

	top := table.TopK(MetricLift, 1)
	if len(top.Rows) != 1 {
		t.Fatalf("Expected 1 row, got %d", len(top.Rows))
	}
	if top.Rows[0].Lift != 1.5 {
		t.Errorf("Expected top rule with lift 1.5, got %v", top.Rows[0].Lift)
	}
}

func TestTopK_StableOnTies(t *testing.T) {
	table := Decompose([]mining.Rule{
		{Text: "first => x", Support: 0.5},
		{Text: "second => x", Support: 0.5},
		{Text: "third => x", Support: 0.7},
	})

	top := table.TopK(MetricSupport, 3)
	if top.Rows[0].LHS != "third" {
		t.Errorf("Expected highest support first, got %q", top.Rows[0].LHS)
	}
	if top.Rows[1].LHS != "first" || top.Rows[2].LHS != "second" {
		t.Errorf("Tied rows reordered: %q, %q", top.Rows[1].LHS, top.Rows[2].LHS)
	}
}

func TestTopK_KLargerThanTable(t *testing.T) {
	table := Decompose([]mining.Rule{
		{Text: "a => b", Lift: 1.0},
		{Text: "b => c", Lift: 2.0},
	})

	top := table.TopK(MetricLift, 10)
	if len(top.Rows) != 2 {
		t.Errorf("Expected all 2 rows, got %d", len(top.Rows))
	}
}

func TestTopK_DoesNotMutateSource(t *testing.T) {
	table := Decompose([]mining.Rule{
		{Text: "a => b", Lift: 1.0},
		{Text: "b => c", Lift: 2.0},
	})

	_ = table.TopK(MetricLift, 1)
	if table.Rows[0].LHS != "a" {
		t.Error("TopK reordered the source table")
	}
}

func TestTopK_RecountsMalformed(t *testing.T) {
	table := Decompose([]mining.Rule{
		{Text: "broken", Lift: 3.0},
		{Text: "a => b", Lift: 2.0},
		{Text: "also broken", Lift: 1.0},
	})
	if table.MalformedCount != 2 {
		t.Fatalf("Expected 2 malformed, got %d", table.MalformedCount)
	}

	top := table.TopK(MetricLift, 2)
	if top.MalformedCount != 1 {
		t.Errorf("Expected 1 malformed in top 2, got %d", top.MalformedCount)
	}
}

func TestDropMalformed(t *testing.T) {
	table := Decompose([]mining.Rule{
		{Text: "a => b"},
		{Text: "broken"},
		{Text: "c => d"},
	})

	clean := table.DropMalformed()
	if len(clean.Rows) != 2 {
		t.Fatalf("Expected 2 rows, got %d", len(clean.Rows))
	}
	if clean.MalformedCount != 0 {
		t.Errorf("Expected 0 malformed after drop, got %d", clean.MalformedCount)
	}
	for _, row := range clean.Rows {
		if row.Malformed() {
			t.Errorf("Malformed row survived: %+v", row)
		}
	}
}

func TestParseMetric(t *testing.T) {
	cases := []struct {
		in   string
		want Metric
	}{
		{"support", MetricSupport},
		{"confidence", MetricConfidence},
		{"lift", MetricLift},
		{"", MetricLift},
		{"bogus", MetricLift},
	}
	for _, c := range cases {
		if got := ParseMetric(c.in); got != c.want {
			t.Errorf("ParseMetric(%q): expected %v, got %v", c.in, c.want, got)
		}
	}
}
