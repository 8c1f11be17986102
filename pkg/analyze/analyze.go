// Package analyze computes descriptive statistics over a prepared event-log
// Parquet artifact using DuckDB: session counts, events per session, action
// frequencies, and the most common session variants.
package analyze

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	_ "github.com/marcboeker/go-duckdb"

	"github.com/seqflow/seqflow/pkg/errors"
)

// Analyzer runs read-only queries against an events Parquet file written by
// the adapters package (columns session_key, action, timestamp, time_diff).
type Analyzer struct {
	db *sql.DB
}

// New opens an in-memory DuckDB connection.
func New() (*Analyzer, error) {
	db, err := sql.Open("duckdb", "")
	if err != nil {
		return nil, errors.Wrap(err, errors.CodeAnalysisQuery, "failed to open duckdb")
	}
	return &Analyzer{db: db}, nil
}

// Close releases the database connection.
func (a *Analyzer) Close() error {
	return a.db.Close()
}

// Stats holds log-level insights.
type Stats struct {
	TotalEvents   int64
	TotalSessions int64
	UniqueActions int64
	TimeRange     TimeRange
	SessionStats  SessionStats
	TopActions    []ActionCount
	TopVariants   []VariantCount
}

// TimeRange describes the time span of the log.
type TimeRange struct {
	Start    time.Time
	End      time.Time
	Duration time.Duration
}

// SessionStats describes session-level statistics.
type SessionStats struct {
	MinEventsPerSession int64
	MaxEventsPerSession int64
	AvgEventsPerSession float64
}

// ActionCount holds action frequency.
type ActionCount struct {
	Action  string
	Count   int64
	Percent float64
}

// VariantCount holds session-variant frequency (the ordered action path).
type VariantCount struct {
	Variant string
	Count   int64
	Percent float64
}

// Analyze computes statistics for the Parquet file at path.
func (a *Analyzer) Analyze(ctx context.Context, path string) (*Stats, error) {
	src := fmt.Sprintf("read_parquet('%s')", escapePath(path))
	stats := &Stats{}

	query := fmt.Sprintf(`
		SELECT
			COUNT(*),
			COUNT(DISTINCT session_key),
			COUNT(DISTINCT action),
			MIN(timestamp),
			MAX(timestamp)
		FROM %s
	`, src)

	var minTS, maxTS sql.NullInt64
	err := a.db.QueryRowContext(ctx, query).Scan(
		&stats.TotalEvents,
		&stats.TotalSessions,
		&stats.UniqueActions,
		&minTS,
		&maxTS,
	)
	if err != nil {
		return nil, errors.Wrap(err, errors.CodeAnalysisQuery, "log summary query failed")
	}

	if minTS.Valid && maxTS.Valid {
		stats.TimeRange.Start = time.Unix(0, minTS.Int64)
		stats.TimeRange.End = time.Unix(0, maxTS.Int64)
		stats.TimeRange.Duration = stats.TimeRange.End.Sub(stats.TimeRange.Start)
	}

	query = fmt.Sprintf(`
		SELECT MIN(cnt), MAX(cnt), AVG(cnt)
		FROM (
			SELECT session_key, COUNT(*) AS cnt
			FROM %s
			GROUP BY session_key
		)
	`, src)
	var minEv, maxEv sql.NullInt64
	var avgEv sql.NullFloat64
	err = a.db.QueryRowContext(ctx, query).Scan(&minEv, &maxEv, &avgEv)
	if err != nil {
		return nil, errors.Wrap(err, errors.CodeAnalysisQuery, "session stats query failed")
	}
	stats.SessionStats.MinEventsPerSession = minEv.Int64
	stats.SessionStats.MaxEventsPerSession = maxEv.Int64
	stats.SessionStats.AvgEventsPerSession = avgEv.Float64

	stats.TopActions, err = a.topActions(ctx, src)
	if err != nil {
		return nil, err
	}

	stats.TopVariants, err = a.topVariants(ctx, src)
	if err != nil {
		return nil, err
	}

	return stats, nil
}

func (a *Analyzer) topActions(ctx context.Context, src string) ([]ActionCount, error) {
	query := fmt.Sprintf(`
		SELECT
			action,
			COUNT(*) AS cnt,
			COUNT(*) * 100.0 / SUM(COUNT(*)) OVER () AS pct
		FROM %s
		GROUP BY action
		ORDER BY cnt DESC, action
		LIMIT 10
	`, src)

	rows, err := a.db.QueryContext(ctx, query)
	if err != nil {
		return nil, errors.Wrap(err, errors.CodeAnalysisQuery, "action frequency query failed")
	}
	defer rows.Close()

	var out []ActionCount
	for rows.Next() {
		var ac ActionCount
		if err := rows.Scan(&ac.Action, &ac.Count, &ac.Percent); err != nil {
			return nil, errors.Wrap(err, errors.CodeAnalysisQuery, "action frequency scan failed")
		}
		out = append(out, ac)
	}
	return out, rows.Err()
}

func (a *Analyzer) topVariants(ctx context.Context, src string) ([]VariantCount, error) {
	query := fmt.Sprintf(`
		SELECT
			variant,
			COUNT(*) AS cnt,
			COUNT(*) * 100.0 / SUM(COUNT(*)) OVER () AS pct
		FROM (
			SELECT
				session_key,
				STRING_AGG(action, ' -> ' ORDER BY timestamp) AS variant
			FROM %s
			GROUP BY session_key
		)
		GROUP BY variant
		ORDER BY cnt DESC, variant
		LIMIT 10
	`, src)

	rows, err := a.db.QueryContext(ctx, query)
	if err != nil {
		return nil, errors.Wrap(err, errors.CodeAnalysisQuery, "variant query failed")
	}
	defer rows.Close()

	var out []VariantCount
	for rows.Next() {
		var vc VariantCount
		if err := rows.Scan(&vc.Variant, &vc.Count, &vc.Percent); err != nil {
			return nil, errors.Wrap(err, errors.CodeAnalysisQuery, "variant scan failed")
		}
		out = append(out, vc)
	}
	return out, rows.Err()
}

func escapePath(path string) string {
	return strings.ReplaceAll(path, "'", "''")
}
