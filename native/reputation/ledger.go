package reputation

import (
	"errors"
	"math/big"
)

var (
	// ErrNilState marks a ledger used before its state backend was bound.
	ErrNilState = errors.New("reputation: state not configured")
	// ErrNegativeDelta enforces the monotonic accumulation invariant:
	// reputation only ever grows.
	ErrNegativeDelta = errors.New("reputation: delta must not be negative")
)

// State persists the global donor reputation scores shared by every escrow
// instance.
type State interface {
	ScoreGet(addr [20]byte) (*big.Int, error)
	ScorePut(addr [20]byte, score *big.Int) error
}

// Ledger accumulates cross-project donor reputation. Scores are monotonically
// non-decreasing; there is no revocation path.
type Ledger struct {
	st State
}

// NewLedger constructs a reputation ledger over the supplied state backend.
func NewLedger(st State) *Ledger {
	return &Ledger{st: st}
}

// Add increases addr's score by delta and returns the new total. A zero delta
// is a no-op; negative deltas are rejected.
func (l *Ledger) Add(addr [20]byte, delta *big.Int) (*big.Int, error) {
	if l == nil || l.st == nil {
		return nil, ErrNilState
	}
	if delta == nil || delta.Sign() == 0 {
		return l.Score(addr)
	}
	if delta.Sign() < 0 {
		return nil, ErrNegativeDelta
	}
	score, err := l.st.ScoreGet(addr)
	if err != nil {
		return nil, err
	}
	if score == nil {
		score = big.NewInt(0)
	}
	score = new(big.Int).Add(score, delta)
	if err := l.st.ScorePut(addr, score); err != nil {
		return nil, err
	}
	return new(big.Int).Set(score), nil
}

// Score returns addr's cumulative reputation.
func (l *Ledger) Score(addr [20]byte) (*big.Int, error) {
	if l == nil || l.st == nil {
		return nil, ErrNilState
	}
	score, err := l.st.ScoreGet(addr)
	if err != nil {
		return nil, err
	}
	if score == nil {
		return big.NewInt(0), nil
	}
	return new(big.Int).Set(score), nil
}
