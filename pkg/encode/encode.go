// Package encode converts normalized event records into the session-scoped
// transaction format required by sequential-pattern-mining engines: dense
// integer sequence IDs, per-session event ordinals, and sanitized categorical
// action symbols.
package encode

import (
	"regexp"
	"sort"

	"golang.org/x/sync/errgroup"

	"github.com/seqflow/seqflow/internal/model"
	"github.com/seqflow/seqflow/pkg/errors"
	"github.com/seqflow/seqflow/pkg/normalize"
)

// Item is one encoded event: a 1-based ordinal local to its session and the
// sanitized action symbol.
type Item struct {
	EventID int
	Symbol  string
}

// Transaction is the mining-ready encoding of one session.
type Transaction struct {
	SequenceID int
	SessionKey string
	Items      []Item
}

// TransactionSet is the full mining-engine input: transactions ordered by
// sequence ID, the session-key bijection that produced them, and a stable
// integer code per distinct symbol.
type TransactionSet struct {
	Transactions []Transaction

	// SequenceIDs maps each distinct session key to its dense positive ID.
	// IDs are assigned in lexicographic key order, so the bijection is
	// reproducible run to run.
	SequenceIDs map[string]int

	// SymbolCodes maps each sanitized symbol to a stable integer code,
	// assigned by first appearance in transaction order.
	SymbolCodes map[string]int
}

// Sessions returns the number of transactions.
func (ts *TransactionSet) Sessions() int {
	return len(ts.Transactions)
}

// Events returns the total number of encoded items.
func (ts *TransactionSet) Events() int {
	n := 0
	for _, tx := range ts.Transactions {
		n += len(tx.Items)
	}
	return n
}

var whitespaceRun = regexp.MustCompile(`\s+`)

// Sanitize collapses every run of whitespace in an action label into a single
// underscore, producing an atomic categorical symbol. Labels differing only
// in whitespace style collide into the same symbol; that is intentional
// categorical normalization. Sanitize is idempotent.
func Sanitize(label string) string {
	return whitespaceRun.ReplaceAllString(label, "_")
}

// Encode builds a TransactionSet from normalized events.
//
// sessionField and actionField are resolved against the events' source field
// names with the same canonicalization rule the normalizer uses, failing with
// a MissingField error when unresolved. Events are re-sorted by (session key,
// timestamp) first, so the encoder does not assume the normalizer ran; the
// input slice is left untouched.
func Encode(events []model.Event, sessionField, actionField string) (*TransactionSet, error) {
	return encode(events, sessionField, actionField, 1)
}

// EncodeParallel is Encode with per-session item building fanned out over
// workers goroutines. The sequence-ID bijection is computed from the full key
// set before any parallel work, so the result is identical to Encode.
func EncodeParallel(events []model.Event, sessionField, actionField string, workers int) (*TransactionSet, error) {
	if workers < 1 {
		workers = 1
	}
	return encode(events, sessionField, actionField, workers)
}

func encode(events []model.Event, sessionField, actionField string, workers int) (*TransactionSet, error) {
	if len(events) == 0 {
		return &TransactionSet{
			SequenceIDs: map[string]int{},
			SymbolCodes: map[string]int{},
		}, nil
	}

	columns := fieldNames(events)
	sessionCol, err := normalize.ResolveField(columns, sessionField)
	if err != nil {
		return nil, err
	}
	actionCol, err := normalize.ResolveField(columns, actionField)
	if err != nil {
		return nil, err
	}

	sorted := make([]model.Event, len(events))
	copy(sorted, events)
	for i := range sorted {
		// Re-derive the session key from the resolved column rather than
		// trusting the normalizer's choice of field.
		sorted[i].SessionKey = sorted[i].Fields[sessionCol]
	}
	normalize.SortEvents(sorted)

	// Global bijection first: distinct keys in lexicographic order get
	// IDs 1..n. Parallel per-session work must not interleave with this.
	seqIDs := assignSequenceIDs(sorted)

	transactions := make([]Transaction, len(seqIDs))
	var g errgroup.Group
	g.SetLimit(workers)

	start := 0
	for start < len(sorted) {
		end := start
		for end < len(sorted) && sorted[end].SessionKey == sorted[start].SessionKey {
			end++
		}
		group := sorted[start:end]
		g.Go(func() error {
			return encodeSession(group, seqIDs, actionCol, transactions)
		})
		start = end
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}

	for i, tx := range transactions {
		if len(tx.Items) == 0 {
			// Contract breakage with the grouping above, not a user error.
			return nil, errors.InvariantViolation("empty session group").
				WithContext("sequence_id", i+1)
		}
	}

	return &TransactionSet{
		Transactions: transactions,
		SequenceIDs:  seqIDs,
		SymbolCodes:  assignSymbolCodes(transactions),
	}, nil
}

// encodeSession encodes one session's events into its transaction slot.
// Ordinals are assigned 1..n over the post-sort order.
func encodeSession(group []model.Event, seqIDs map[string]int, actionCol string, out []Transaction) error {
	id := seqIDs[group[0].SessionKey]
	items := make([]Item, len(group))
	for i, ev := range group {
		items[i] = Item{
			EventID: i + 1,
			Symbol:  Sanitize(ev.Fields[actionCol]),
		}
	}
	out[id-1] = Transaction{
		SequenceID: id,
		SessionKey: group[0].SessionKey,
		Items:      items,
	}
	return nil
}

// assignSequenceIDs builds the session-key bijection: distinct keys sorted
// lexicographically, IDs 1..n.
func assignSequenceIDs(sorted []model.Event) map[string]int {
	keys := make([]string, 0)
	seen := make(map[string]bool)
	for _, ev := range sorted {
		if !seen[ev.SessionKey] {
			seen[ev.SessionKey] = true
			keys = append(keys, ev.SessionKey)
		}
	}
	sort.Strings(keys)

	ids := make(map[string]int, len(keys))
	for i, k := range keys {
		ids[k] = i + 1
	}
	return ids
}

// assignSymbolCodes numbers distinct symbols by first appearance in
// transaction order, starting at 1.
func assignSymbolCodes(transactions []Transaction) map[string]int {
	codes := make(map[string]int)
	next := 1
	for _, tx := range transactions {
		for _, item := range tx.Items {
			if _, ok := codes[item.Symbol]; !ok {
				codes[item.Symbol] = next
				next++
			}
		}
	}
	return codes
}

// fieldNames collects the source field names visible on the events, in
// lexicographic order. Events from one tabular source share one header, so
// the first event's fields are representative.
func fieldNames(events []model.Event) []string {
	if len(events) == 0 {
		return nil
	}
	names := make([]string, 0, len(events[0].Fields))
	for name := range events[0].Fields {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
