package adapters

import (
	"os"

	"github.com/apache/arrow/go/v14/arrow"
	"github.com/apache/arrow/go/v14/arrow/array"
	"github.com/apache/arrow/go/v14/arrow/memory"
	"github.com/apache/arrow/go/v14/parquet"
	"github.com/apache/arrow/go/v14/parquet/compress"
	"github.com/apache/arrow/go/v14/parquet/pqarrow"

	"github.com/seqflow/seqflow/internal/model"
	"github.com/seqflow/seqflow/pkg/errors"
	"github.com/seqflow/seqflow/pkg/normalize"
	"github.com/seqflow/seqflow/pkg/rules"
)

// eventSchema is the Arrow schema for normalized events. Timestamps are
// int64 nanoseconds since Unix epoch; time_diff is nullable float seconds.
func eventSchema() *arrow.Schema {
	return arrow.NewSchema([]arrow.Field{
		{Name: "session_key", Type: arrow.BinaryTypes.String, Nullable: false},
		{Name: "action", Type: arrow.BinaryTypes.String, Nullable: false},
		{Name: "timestamp", Type: arrow.PrimitiveTypes.Int64, Nullable: false},
		{Name: "time_diff", Type: arrow.PrimitiveTypes.Float64, Nullable: true},
	}, nil)
}

// ruleSchema is the Arrow schema for the decomposed rule table.
func ruleSchema() *arrow.Schema {
	return arrow.NewSchema([]arrow.Field{
		{Name: "LHS", Type: arrow.BinaryTypes.String, Nullable: false},
		{Name: "RHS", Type: arrow.BinaryTypes.String, Nullable: true},
		{Name: "support", Type: arrow.PrimitiveTypes.Float64, Nullable: false},
		{Name: "confidence", Type: arrow.PrimitiveTypes.Float64, Nullable: false},
		{Name: "lift", Type: arrow.PrimitiveTypes.Float64, Nullable: false},
	}, nil)
}

// WriteEventsParquet persists normalized events as Parquet with snappy
// compression. actionField is resolved against the events' source fields
// with the usual canonicalization.
func WriteEventsParquet(path string, events []model.Event, actionField string) error {
	actionCol := ""
	if len(events) > 0 {
		col, err := normalize.ResolveField(eventFieldNames(events), actionField)
		if err != nil {
			return err
		}
		actionCol = col
	}

	allocator := memory.NewGoAllocator()
	schema := eventSchema()

	sessionB := array.NewStringBuilder(allocator)
	actionB := array.NewStringBuilder(allocator)
	timestampB := array.NewInt64Builder(allocator)
	diffB := array.NewFloat64Builder(allocator)
	defer sessionB.Release()
	defer actionB.Release()
	defer timestampB.Release()
	defer diffB.Release()

	for _, ev := range events {
		sessionB.Append(ev.SessionKey)
		actionB.Append(ev.Fields[actionCol])
		timestampB.Append(ev.Timestamp.UnixNano())
		if ev.TimeDiff == nil {
			diffB.AppendNull()
		} else {
			diffB.Append(*ev.TimeDiff)
		}
	}

	cols := []arrow.Array{
		sessionB.NewArray(),
		actionB.NewArray(),
		timestampB.NewArray(),
		diffB.NewArray(),
	}
	defer releaseAll(cols)

	record := array.NewRecord(schema, cols, int64(len(events)))
	defer record.Release()

	return writeParquet(path, schema, record)
}

// WriteRulesParquet persists a decomposed rule table as Parquet. A nil RHS
// becomes a null cell.
func WriteRulesParquet(path string, table rules.Table) error {
	allocator := memory.NewGoAllocator()
	schema := ruleSchema()

	lhsB := array.NewStringBuilder(allocator)
	rhsB := array.NewStringBuilder(allocator)
	supportB := array.NewFloat64Builder(allocator)
	confidenceB := array.NewFloat64Builder(allocator)
	liftB := array.NewFloat64Builder(allocator)
	defer lhsB.Release()
	defer rhsB.Release()
	defer supportB.Release()
	defer confidenceB.Release()
	defer liftB.Release()

	for _, row := range table.Rows {
		lhsB.Append(row.LHS)
		if row.RHS == nil {
			rhsB.AppendNull()
		} else {
			rhsB.Append(*row.RHS)
		}
		supportB.Append(row.Support)
		confidenceB.Append(row.Confidence)
		liftB.Append(row.Lift)
	}

	cols := []arrow.Array{
		lhsB.NewArray(),
		rhsB.NewArray(),
		supportB.NewArray(),
		confidenceB.NewArray(),
		liftB.NewArray(),
	}
	defer releaseAll(cols)

	record := array.NewRecord(schema, cols, int64(len(table.Rows)))
	defer record.Release()

	return writeParquet(path, schema, record)
}

func writeParquet(path string, schema *arrow.Schema, record arrow.Record) error {
	f, err := os.Create(path)
	if err != nil {
		return errors.Wrap(err, errors.CodeWriteFailed, "failed to create output")
	}
	defer f.Close()

	writerProps := parquet.NewWriterProperties(
		parquet.WithCompression(compress.Codecs.Snappy),
		parquet.WithDictionaryDefault(true),
	)
	arrowProps := pqarrow.NewArrowWriterProperties(pqarrow.WithStoreSchema())

	writer, err := pqarrow.NewFileWriter(schema, f, writerProps, arrowProps)
	if err != nil {
		return errors.Wrap(err, errors.CodeWriteFailed, "failed to create parquet writer")
	}

	if err := writer.Write(record); err != nil {
		writer.Close()
		return errors.Wrap(err, errors.CodeWriteFailed, "failed to write parquet record")
	}

	if err := writer.Close(); err != nil {
		return errors.Wrap(err, errors.CodeWriteFailed, "failed to close parquet writer")
	}
	return nil
}

func releaseAll(cols []arrow.Array) {
	for _, c := range cols {
		c.Release()
	}
}

func eventFieldNames(events []model.Event) []string {
	if len(events) == 0 {
		return nil
	}
	names := make([]string, 0, len(events[0].Fields))
	for name := range events[0].Fields {
		names = append(names, name)
	}
	return names
}
