// Package normalize cleans raw event records for sequence mining: it resolves
// user-supplied field names against source columns, parses timestamps, sorts
// records within each session, and computes inter-event time gaps.
package normalize

import (
	"sort"
	"time"

	"github.com/seqflow/seqflow/internal/model"
	"github.com/seqflow/seqflow/pkg/errors"
)

// Options controls normalization behavior.
type Options struct {
	// TruncateSeconds drops sub-second precision from parsed timestamps.
	// Off by default; precision is an explicit per-run choice, not a
	// process-wide setting.
	TruncateSeconds bool
}

// Normalize turns a raw dataset into session-ordered events.
//
// sessionField and timestampField are matched against the dataset's columns
// by canonical name (see CanonicalName); a field that resolves to no column
// fails with a MissingField error. A timestamp value that cannot be parsed
// fails with an InvalidTimestamp error naming the offending row. The input
// dataset is not mutated.
//
// The returned events are sorted by (session key, timestamp) ascending,
// stable on ties, and each event's TimeDiff holds the seconds elapsed since
// the previous event of the same session. The first event of every session
// has TimeDiff == nil.
func Normalize(ds *model.Dataset, sessionField, timestampField string, opts Options) ([]model.Event, error) {
	sessionCol, err := ResolveField(ds.Columns, sessionField)
	if err != nil {
		return nil, err
	}
	timestampCol, err := ResolveField(ds.Columns, timestampField)
	if err != nil {
		return nil, err
	}

	events := make([]model.Event, 0, len(ds.Rows))
	for i, row := range ds.Rows {
		raw := row[timestampCol]
		ts, ok := ParseTimestamp(raw)
		if !ok {
			return nil, errors.InvalidTimestamp(raw, i+1)
		}
		if opts.TruncateSeconds {
			ts = ts.Truncate(time.Second)
		}

		events = append(events, model.Event{
			SessionKey: row[sessionCol],
			Timestamp:  ts,
			Fields:     row,
			Row:        i + 1,
		})
	}

	SortEvents(events)
	computeTimeDiffs(events)

	return events, nil
}

// SortEvents orders events by (session key, timestamp) ascending. The sort is
// stable, so events with equal keys and timestamps keep their input order.
func SortEvents(events []model.Event) {
	sort.SliceStable(events, func(i, j int) bool {
		if events[i].SessionKey != events[j].SessionKey {
			return events[i].SessionKey < events[j].SessionKey
		}
		return events[i].Timestamp.Before(events[j].Timestamp)
	})
}

// computeTimeDiffs fills TimeDiff for sorted events. Equal timestamps within
// a session yield 0; the first event of each session stays nil.
func computeTimeDiffs(events []model.Event) {
	for i := range events {
		if i == 0 || events[i].SessionKey != events[i-1].SessionKey {
			events[i].TimeDiff = nil
			continue
		}
		diff := events[i].Timestamp.Sub(events[i-1].Timestamp).Seconds()
		events[i].TimeDiff = &diff
	}
}
