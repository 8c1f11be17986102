// Package index provides a bitmap occurrence index over encoded transaction
// sets. For each symbol it tracks the set of sequence IDs containing it,
// enabling O(1) lookups and efficient set operations for support counting.
package index

import (
	"sort"

	"github.com/RoaringBitmap/roaring"

	"github.com/seqflow/seqflow/pkg/encode"
)

// OccurrenceIndex maps each symbol to the roaring bitmap of sequence IDs in
// which it occurs. Built once from a TransactionSet; read-only afterwards.
type OccurrenceIndex struct {
	symbols   map[string]*roaring.Bitmap
	sequences uint64
}

// Build indexes every item of every transaction.
func Build(ts *encode.TransactionSet) *OccurrenceIndex {
	idx := &OccurrenceIndex{
		symbols:   make(map[string]*roaring.Bitmap),
		sequences: uint64(len(ts.Transactions)),
	}

	for _, tx := range ts.Transactions {
		for _, item := range tx.Items {
			bm, ok := idx.symbols[item.Symbol]
			if !ok {
				bm = roaring.New()
				idx.symbols[item.Symbol] = bm
			}
			bm.Add(uint32(tx.SequenceID))
		}
	}

	return idx
}

// Sequences returns the number of indexed transactions.
func (idx *OccurrenceIndex) Sequences() uint64 {
	return idx.sequences
}

// Lookup returns a copy of the bitmap of sequence IDs containing symbol, or
// an empty bitmap for an unknown symbol.
func (idx *OccurrenceIndex) Lookup(symbol string) *roaring.Bitmap {
	if bm, ok := idx.symbols[symbol]; ok {
		return bm.Clone()
	}
	return roaring.New()
}

// Support returns the fraction of sequences containing symbol.
func (idx *OccurrenceIndex) Support(symbol string) float64 {
	if idx.sequences == 0 {
		return 0
	}
	bm, ok := idx.symbols[symbol]
	if !ok {
		return 0
	}
	return float64(bm.GetCardinality()) / float64(idx.sequences)
}

// CoSupport returns the fraction of sequences containing every given symbol
// (order-insensitive co-occurrence).
func (idx *OccurrenceIndex) CoSupport(symbols ...string) float64 {
	if idx.sequences == 0 || len(symbols) == 0 {
		return 0
	}

	var acc *roaring.Bitmap
	for _, s := range symbols {
		bm, ok := idx.symbols[s]
		if !ok {
			return 0
		}
		if acc == nil {
			acc = bm.Clone()
		} else {
			acc.And(bm)
		}
		if acc.IsEmpty() {
			return 0
		}
	}

	return float64(acc.GetCardinality()) / float64(idx.sequences)
}

// Symbols returns the indexed symbols in lexicographic order.
func (idx *OccurrenceIndex) Symbols() []string {
	out := make([]string, 0, len(idx.symbols))
	for s := range idx.symbols {
		out = append(out, s)
	}
	sort.Strings(out)
	return out
}
