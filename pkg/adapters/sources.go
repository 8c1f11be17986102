// Package adapters provides tabular sources and sinks for the pipeline:
// CSV and XLSX readers for raw event logs, and CSV, XLSX, and Parquet
// writers for transaction sets and decomposed rule tables.
package adapters

import (
	"encoding/csv"
	"io"
	"os"

	"github.com/xuri/excelize/v2"

	"github.com/seqflow/seqflow/internal/model"
	"github.com/seqflow/seqflow/pkg/errors"
)

// CSVOptions controls CSV reading.
type CSVOptions struct {
	Delimiter rune
}

// DefaultCSVOptions returns comma-delimited defaults.
func DefaultCSVOptions() CSVOptions {
	return CSVOptions{Delimiter: ','}
}

// ReadCSV reads a delimited file into a dataset. The first row is the
// header; short data rows leave their trailing columns empty.
func ReadCSV(path string, opts CSVOptions) (*model.Dataset, error) {
	f, err := os.Open(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, errors.New(errors.CodeFileNotFound, "file not found").WithContext("path", path)
		}
		return nil, errors.Wrap(err, errors.CodeInvalidFormat, "failed to open input")
	}
	defer f.Close()

	return ReadCSVFrom(f, opts)
}

// ReadCSVFrom reads delimited data from a reader.
func ReadCSVFrom(r io.Reader, opts CSVOptions) (*model.Dataset, error) {
	reader := csv.NewReader(r)
	if opts.Delimiter != 0 {
		reader.Comma = opts.Delimiter
	}
	reader.FieldsPerRecord = -1

	header, err := reader.Read()
	if err == io.EOF {
		return nil, errors.New(errors.CodeInvalidFormat, "input is empty")
	}
	if err != nil {
		return nil, errors.Wrap(err, errors.CodeParseFailed, "failed to read header")
	}

	ds := &model.Dataset{Columns: header}
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

		ds.Rows = append(ds.Rows, rowToRecord(header, cols))
	}

	return ds, nil
}

// ReadXLSX reads the first sheet of an Excel workbook into a dataset using
// the streaming row reader.
func ReadXLSX(path string) (*model.Dataset, error) {
	xlFile, err := excelize.OpenFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, errors.New(errors.CodeFileNotFound, "file not found").WithContext("path", path)
		}
		return nil, errors.Wrap(err, errors.CodeInvalidFormat, "failed to open xlsx")
	}
	defer xlFile.Close()

	sheetName := xlFile.GetSheetName(0)
	if sheetName == "" {
		sheetList := xlFile.GetSheetList()
		if len(sheetList) == 0 {
			return nil, errors.New(errors.CodeInvalidFormat, "no sheets found in xlsx file")
		}
		sheetName = sheetList[0]
	}

	rows, err := xlFile.Rows(sheetName)
	if err != nil {
		return nil, errors.Wrap(err, errors.CodeParseFailed, "failed to read rows")
	}
	defer rows.Close()

	if !rows.Next() {
		return nil, errors.New(errors.CodeInvalidFormat, "xlsx file is empty")
	}
	header, err := rows.Columns()
	if err != nil {
		return nil, errors.Wrap(err, errors.CodeParseFailed, "failed to read header")
	}

	ds := &model.Dataset{Columns: header}
	for rows.Next() {
		cols, err := rows.Columns()
		if err != nil {
			continue // skip malformed rows
		}
		if len(cols) == 0 {
			continue
		}
		ds.Rows = append(ds.Rows, rowToRecord(header, cols))
	}

	return ds, nil
}

// rowToRecord maps a positional row onto the header; missing trailing cells
// become empty strings.
func rowToRecord(header, cols []string) model.Record {
	row := make(model.Record, len(header))
	for i, name := range header {
		if i < len(cols) {
			row[name] = cols[i]
		} else {
			row[name] = ""
		}
	}
	return row
}
