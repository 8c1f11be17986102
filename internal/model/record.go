// Package model defines core data structures for seqflow.
package model

import "time"

// Record is one raw input row: original field name -> string value.
type Record map[string]string

// Dataset holds an ordered set of raw records plus the column names as they
// appeared in the source. Columns preserves source order; Rows preserves
// input order, which is the tie-breaker for all stable sorts downstream.
type Dataset struct {
	Columns []string
	Rows    []Record
}

// Clone returns a deep copy of the dataset. Stages never mutate their input,
// so producers that need to hold on to a dataset after handing it to the
// pipeline can rely on this.
func (d *Dataset) Clone() *Dataset {
	out := &Dataset{
		Columns: append([]string(nil), d.Columns...),
		Rows:    make([]Record, len(d.Rows)),
	}
	for i, row := range d.Rows {
		cp := make(Record, len(row))
		for k, v := range row {
			cp[k] = v
		}
		out.Rows[i] = cp
	}
	return out
}

// Event is one normalized observation within a session.
type Event struct {
	// SessionKey groups events into a session. Opaque; compared as a string.
	SessionKey string

	// Timestamp is the parsed absolute time with sub-second precision.
	Timestamp time.Time

	// TimeDiff is seconds elapsed since the previous event of the same
	// session in sorted order. Nil for the first event of a session.
	TimeDiff *float64

	// Fields carries every source field of the originating record under its
	// original name, so later stages can re-resolve columns independently.
	Fields Record

	// Row is the 1-based position of the record in the raw input, used for
	// stable tie-breaking and for error reporting.
	Row int
}
