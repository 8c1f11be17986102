package adapters

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"strconv"

	"github.com/xuri/excelize/v2"

	"github.com/seqflow/seqflow/pkg/encode"
	"github.com/seqflow/seqflow/pkg/errors"
	"github.com/seqflow/seqflow/pkg/mining"
	"github.com/seqflow/seqflow/pkg/rules"
)

// ruleColumns is the persisted rule-table schema. No other schema is implied.
var ruleColumns = []string{"LHS", "RHS", "support", "confidence", "lift"}

// WriteRulesCSV persists a decomposed rule table as CSV. A nil RHS is
// written as an empty cell.
func WriteRulesCSV(path string, table rules.Table) error {
	f, err := os.Create(path)
	if err != nil {
		return errors.Wrap(err, errors.CodeWriteFailed, "failed to create output")
	}
	defer f.Close()

	return WriteRulesCSVTo(f, table)
}

// WriteRulesCSVTo writes the rule table to a writer.
func WriteRulesCSVTo(w io.Writer, table rules.Table) error {
	cw := csv.NewWriter(w)

	if err := cw.Write(ruleColumns); err != nil {
		return errors.Wrap(err, errors.CodeWriteFailed, "failed to write header")
	}

	for _, row := range table.Rows {
		rhs := ""
		if row.RHS != nil {
			rhs = *row.RHS
		}
		rec := []string{
			row.LHS,
			rhs,
			formatMetric(row.Support),
			formatMetric(row.Confidence),
			formatMetric(row.Lift),
		}
		if err := cw.Write(rec); err != nil {
			return errors.Wrap(err, errors.CodeWriteFailed, "failed to write row")
		}
	}

	cw.Flush()
	if err := cw.Error(); err != nil {
		return errors.Wrap(err, errors.CodeWriteFailed, "failed to flush output")
	}
	return nil
}

// WriteRulesXLSX persists a decomposed rule table as an Excel workbook.
func WriteRulesXLSX(path string, table rules.Table) error {
	xlFile := excelize.NewFile()
	defer xlFile.Close()

	sheet := xlFile.GetSheetName(0)

	for i, col := range ruleColumns {
		cell, _ := excelize.CoordinatesToCellName(i+1, 1)
		if err := xlFile.SetCellValue(sheet, cell, col); err != nil {
			return errors.Wrap(err, errors.CodeWriteFailed, "failed to write header")
		}
	}

	for r, row := range table.Rows {
		values := []interface{}{row.LHS, nil, row.Support, row.Confidence, row.Lift}
		if row.RHS != nil {
			values[1] = *row.RHS
		}
		for c, v := range values {
			if v == nil {
				continue
			}
			cell, _ := excelize.CoordinatesToCellName(c+1, r+2)
			if err := xlFile.SetCellValue(sheet, cell, v); err != nil {
				return errors.Wrap(err, errors.CodeWriteFailed, "failed to write row").
					WithContext("row", r+1)
			}
		}
	}

	if err := xlFile.SaveAs(path); err != nil {
		return errors.Wrap(err, errors.CodeWriteFailed, "failed to save xlsx")
	}
	return nil
}

// ReadRulesCSV reads an engine's rule output: columns rule, support,
// confidence, lift (header names matched case-insensitively by position
// fallback). Used to feed rule decomposition when the engine runs out of
// process.
func ReadRulesCSV(path string) ([]mining.Rule, error) {
	f, err := os.Open(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, errors.New(errors.CodeFileNotFound, "file not found").WithContext("path", path)
		}
		return nil, errors.Wrap(err, errors.CodeInvalidFormat, "failed to open rules file")
	}
	defer f.Close()

	return ReadRulesCSVFrom(f)
}

// ReadRulesCSVFrom reads rule rows from a reader.
func ReadRulesCSVFrom(r io.Reader) ([]mining.Rule, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1

	header, err := reader.Read()
	if err == io.EOF {
		return nil, errors.New(errors.CodeInvalidFormat, "rules file is empty")
	}
	if err != nil {
		return nil, errors.Wrap(err, errors.CodeParseFailed, "failed to read header")
	}
	if len(header) < 4 {
		return nil, errors.New(errors.CodeInvalidFormat, "rules file needs rule, support, confidence, lift columns")
	}

	var out []mining.Rule
	rowNum := 1
	for {
		cols, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, errors.Wrap(err, errors.CodeParseFailed, "failed to read row").
				WithContext("row", rowNum)
		}
		rowNum++

		if len(cols) < 4 {
			return nil, errors.New(errors.CodeParseFailed, "short rule row").
				WithContext("row", rowNum)
		}

		rule := mining.Rule{Text: cols[0]}
		for i, dst := range []*float64{&rule.Support, &rule.Confidence, &rule.Lift} {
			v, err := strconv.ParseFloat(cols[i+1], 64)
			if err != nil {
				return nil, errors.Wrap(err, errors.CodeParseFailed, "bad metric value").
					WithContext("row", rowNum).
					WithContext("column", header[i+1])
			}
			*dst = v
		}
		out = append(out, rule)
	}

	return out, nil
}

// WriteTransactionsCSV persists an encoded transaction set in long format
// (sequence_id, event_id, symbol), one item per row, ready for basket-style
// loading by a mining engine.
func WriteTransactionsCSV(path string, ts *encode.TransactionSet) error {
	f, err := os.Create(path)
	if err != nil {
		return errors.Wrap(err, errors.CodeWriteFailed, "failed to create output")
	}
	defer f.Close()

	return WriteTransactionsCSVTo(f, ts)
}

// WriteTransactionsCSVTo writes the transaction set to a writer.
func WriteTransactionsCSVTo(w io.Writer, ts *encode.TransactionSet) error {
	cw := csv.NewWriter(w)

	if err := cw.Write([]string{"sequence_id", "event_id", "symbol"}); err != nil {
		return errors.Wrap(err, errors.CodeWriteFailed, "failed to write header")
	}

	for _, tx := range ts.Transactions {
		for _, item := range tx.Items {
			rec := []string{
				strconv.Itoa(tx.SequenceID),
				strconv.Itoa(item.EventID),
				item.Symbol,
			}
			if err := cw.Write(rec); err != nil {
				return errors.Wrap(err, errors.CodeWriteFailed, "failed to write item")
			}
		}
	}

	cw.Flush()
	if err := cw.Error(); err != nil {
		return errors.Wrap(err, errors.CodeWriteFailed, "failed to flush output")
	}
	return nil
}

func formatMetric(v float64) string {
	return fmt.Sprintf("%g", v)
}
