// Package mining defines the contract between seqflow and an external
// frequent-sequence-mining engine. seqflow prepares the engine's input and
// post-processes its output; the mining algorithm itself lives behind the
// Engine interface and is never inspected beyond it.
package mining

import (
	"context"

	"github.com/seqflow/seqflow/pkg/encode"
)

// Params is the mining configuration, passed through to the engine untouched.
type Params struct {
	// MinSupport is the fraction of sessions a sequence must appear in to
	// count as frequent.
	MinSupport float64 `yaml:"min_support"`

	// MaxLength is the maximum number of items in a mined sequence.
	MaxLength int `yaml:"max_length"`

	// MinGap and MaxGap bound the ordinal distance between consecutive
	// items of a mined sequence within a session.
	MinGap int `yaml:"min_gap"`
	MaxGap int `yaml:"max_gap"`

	// MinConfidence is the minimum conditional probability for a derived
	// rule to be retained.
	MinConfidence float64 `yaml:"min_confidence"`
}

// DefaultParams returns commonly useful mining parameters.
func DefaultParams() Params {
	return Params{
		MinSupport:    0.1,
		MaxLength:     5,
		MinGap:        1,
		MaxGap:        10,
		MinConfidence: 0.5,
	}
}

// Rule is one association rule induced by the engine: a formatted
// "<antecedent> => <consequent>" string plus its metrics.
type Rule struct {
	Text       string
	Support    float64
	Confidence float64
	Lift       float64
}

// Engine mines frequent sequences and induces association rules from an
// encoded transaction set. The call is opaque, blocking, and synchronous;
// cancellation is the engine's responsibility via ctx.
type Engine interface {
	Mine(ctx context.Context, transactions *encode.TransactionSet, params Params) ([]Rule, error)
}

// EngineFunc adapts a function to the Engine interface.
type EngineFunc func(ctx context.Context, transactions *encode.TransactionSet, params Params) ([]Rule, error)

// Mine implements Engine.
func (f EngineFunc) Mine(ctx context.Context, transactions *encode.TransactionSet, params Params) ([]Rule, error) {
	return f(ctx, transactions, params)
}
