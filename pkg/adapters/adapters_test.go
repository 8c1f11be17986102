package adapters

import (
	"bytes"
	"strings"
	"testing"

	"github.com/seqflow/seqflow/pkg/encode"
	"github.com/seqflow/seqflow/pkg/errors"
	"github.com/seqflow/seqflow/pkg/mining"
	"github.com/seqflow/seqflow/pkg/rules"
)

func TestReadCSVFrom(t *testing.T) {
	input := "Session Key,Timestamp,Action\nS1,2024-01-01T10:00:00Z,click A\nS2,2024-01-01T09:00:00Z,scroll\n"

	ds, err := ReadCSVFrom(strings.NewReader(input), DefaultCSVOptions())
	if err != nil {
		t.Fatalf("ReadCSVFrom failed: %v", err)
	}

	if len(ds.Columns) != 3 {
		t.Fatalf("Expected 3 columns, got %d", len(ds.Columns))
	}
	if len(ds.Rows) != 2 {
		t.Fatalf("Expected 2 rows, got %d", len(ds.Rows))
	}
	if ds.Rows[0]["Session Key"] != "S1" || ds.Rows[0]["Action"] != "click A" {
		t.Errorf("Row 0 mismatch: %v", ds.Rows[0])
	}
}

func TestReadCSVFrom_ShortRow(t *testing.T) {
	input := "a,b,c\n1,2\n"

	ds, err := ReadCSVFrom(strings.NewReader(input), DefaultCSVOptions())
	if err != nil {
		t.Fatalf("ReadCSVFrom failed: %v", err)
	}

	if ds.Rows[0]["c"] != "" {
		t.Errorf("Expected empty trailing cell, got %q", ds.Rows[0]["c"])
	}
}

func TestReadCSVFrom_CustomDelimiter(t *testing.T) {
	input := "a;b\n1;2\n"

	ds, err := ReadCSVFrom(strings.NewReader(input), CSVOptions{Delimiter: ';'})
	if err != nil {
		t.Fatalf("ReadCSVFrom failed: %v", err)
	}
	if ds.Rows[0]["b"] != "2" {
		t.Errorf("Expected %q, got %q", "2", ds.Rows[0]["b"])
	}
}

func TestReadCSVFrom_Empty(t *testing.T) {
	_, err := ReadCSVFrom(strings.NewReader(""), DefaultCSVOptions())
	if err == nil {
		t.Fatal("Expected error for empty input")
	}
	if !errors.IsCode(err, errors.CodeInvalidFormat) {
		t.Errorf("Expected CodeInvalidFormat, got %v", errors.GetCode(err))
	}
}

func TestReadCSV_NotFound(t *testing.T) {
	_, err := ReadCSV("/nonexistent/input.csv", DefaultCSVOptions())
	if err == nil {
		t.Fatal("Expected error for missing file")
	}
	if !errors.IsCode(err, errors.CodeFileNotFound) {
		t.Errorf("Expected CodeFileNotFound, got %v", errors.GetCode(err))
	}
}

func TestWriteRulesCSVTo(t *testing.T) {
	rhs := "<click_B>"
	table := rules.Table{
		Rows: []rules.DecomposedRule{
			{LHS: "<click_A>", RHS: &rhs, Support: 0.3, Confidence: 0.6, Lift: 1.2},
			{LHS: "broken", RHS: nil, Support: 0.1},
		},
		MalformedCount: 1,
	}

	var buf bytes.Buffer
	if err := WriteRulesCSVTo(&buf, table); err != nil {
		t.Fatalf("WriteRulesCSVTo failed: %v", err)
	}

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	if len(lines) != 3 {
		t.Fatalf("Expected header plus 2 rows, got %d lines", len(lines))
	}
	if lines[0] != "LHS,RHS,support,confidence,lift" {
		t.Errorf("Unexpected header: %q", lines[0])
	}
	if lines[1] != "<click_A>,<click_B>,0.3,0.6,1.2" {
		t.Errorf("Unexpected row: %q", lines[1])
	}
	if lines[2] != "broken,,0.1,0,0" {
		t.Errorf("Expected empty RHS cell for malformed row, got %q", lines[2])
	}
}

func TestReadRulesCSVFrom(t *testing.T) {
	input := "rule,support,confidence,lift\n<a> => <b>,0.3,0.6,1.2\nnoise,0.1,0.2,0.5\n"

	mined, err := ReadRulesCSVFrom(strings.NewReader(input))
	if err != nil {
		t.Fatalf("ReadRulesCSVFrom failed: %v", err)
	}

	if len(mined) != 2 {
		t.Fatalf("Expected 2 rules, got %d", len(mined))
	}
	if mined[0].Text != "<a> => <b>" || mined[0].Lift != 1.2 {
		t.Errorf("Rule 0 mismatch: %+v", mined[0])
	}
}

func TestReadRulesCSVFrom_BadMetric(t *testing.T) {
	input := "rule,support,confidence,lift\nx => y,not_a_number,0.5,1.0\n"

	_, err := ReadRulesCSVFrom(strings.NewReader(input))
	if err == nil {
		t.Fatal("Expected error for unparseable metric")
	}
	if !errors.IsCode(err, errors.CodeParseFailed) {
		t.Errorf("Expected CodeParseFailed, got %v", errors.GetCode(err))
	}
}

func TestReadRulesCSVFrom_MissingColumns(t *testing.T) {
	_, err := ReadRulesCSVFrom(strings.NewReader("rule,support\nx,0.1\n"))
	if err == nil {
		t.Fatal("Expected error for narrow header")
	}
}

func TestRulesCSV_RoundTrip(t *testing.T) {
	mined := []mining.Rule{
		{Text: "<a> => <b>", Support: 0.25, Confidence: 0.5, Lift: 2},
		{Text: "dangling", Support: 0.125, Confidence: 0.25, Lift: 0.5},
	}
	table := rules.Decompose(mined)

	var buf bytes.Buffer
	if err := WriteRulesCSVTo(&buf, table); err != nil {
		t.Fatalf("WriteRulesCSVTo failed: %v", err)
	}

	// A well-formed written row reconstructs the original rule string.
	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	if !strings.HasPrefix(lines[1], "<a>,<b>,") {
		t.Errorf("Expected split columns, got %q", lines[1])
	}
	if table.Rows[0].Text() != mined[0].Text {
		t.Errorf("Round trip lost rule text: %q", table.Rows[0].Text())
	}
}

func TestWriteTransactionsCSVTo(t *testing.T) {
	ts := &encode.TransactionSet{
		Transactions: []encode.Transaction{
			{SequenceID: 1, SessionKey: "S1", Items: []encode.Item{
				{EventID: 1, Symbol: "click_A"},
				{EventID: 2, Symbol: "click_B"},
			}},
			{SequenceID: 2, SessionKey: "S2", Items: []encode.Item{
				{EventID: 1, Symbol: "scroll"},
			}},
		},
	}

	var buf bytes.Buffer
	if err := WriteTransactionsCSVTo(&buf, ts); err != nil {
		t.Fatalf("WriteTransactionsCSVTo failed: %v", err)
	}

	want := "sequence_id,event_id,symbol\n1,1,click_A\n1,2,click_B\n2,1,scroll\n"
	if buf.String() != want {
		t.Errorf("Expected:\n%s\nGot:\n%s", want, buf.String())
	}
}
