package rewards

import (
	"math/big"

	"fundforge/core/events"
	"fundforge/core/types"
)

// Token metadata for the reward unit credited to verified creators and
// active donors.
const (
	TokenName     = "Forge Reward"
	TokenSymbol   = "FORGE"
	TokenDecimals = 18

	// EngineVersion identifies the ledger logic shipped with this build.
	EngineVersion = "1.0.0"
)

// State is the persistence contract backing one deployed reward ledger.
// Balances are scoped to the ledger handle, so two deployments never share
// accounting.
type State interface {
	BalanceGet(addr [20]byte) (*big.Int, error)
	BalancePut(addr [20]byte, amount *big.Int) error
	TotalSupplyGet() (*big.Int, error)
	TotalSupplyPut(amount *big.Int) error
	IssuerGet() ([20]byte, bool, error)
	IssuerPut(issuer [20]byte) error
}

// Logic is the swappable minting arithmetic behind a ledger handle. The
// authorization checks stay with the handle; logic versions only compute and
// persist balance movements.
type Logic interface {
	Version() string
	Credit(st State, account [20]byte, amount *big.Int) (*big.Int, error)
}

// Engine is the reference ledger logic.
type Engine struct{}

// NewEngine constructs the reference ledger logic.
func NewEngine() *Engine { return &Engine{} }

// Version implements Logic.
func (e *Engine) Version() string { return EngineVersion }

// Credit mints amount units to account and returns the new balance.
func (e *Engine) Credit(st State, account [20]byte, amount *big.Int) (*big.Int, error) {
	balance, err := st.BalanceGet(account)
	if err != nil {
		return nil, err
	}
	if balance == nil {
		balance = big.NewInt(0)
	}
	balance = new(big.Int).Add(balance, amount)
	if err := st.BalancePut(account, balance); err != nil {
		return nil, err
	}
	supply, err := st.TotalSupplyGet()
	if err != nil {
		return nil, err
	}
	if supply == nil {
		supply = big.NewInt(0)
	}
	if err := st.TotalSupplyPut(new(big.Int).Add(supply, amount)); err != nil {
		return nil, err
	}
	return balance, nil
}

// Ledger is one deployed reward-balance store. The registry administrator
// owns it; a single issuer-delegate (the escrow instance deployed alongside
// it) is the only identity allowed to mint.
type Ledger struct {
	handle  [20]byte
	admin   [20]byte
	st      State
	logic   Logic
	emitter events.Emitter
}

// NewLedger constructs a ledger handle owned by admin over the supplied state
// backend.
func NewLedger(handle, admin [20]byte, st State) *Ledger {
	return &Ledger{
		handle:  handle,
		admin:   admin,
		st:      st,
		logic:   NewEngine(),
		emitter: events.NoopEmitter{},
	}
}

// Handle returns the ledger's deterministic 20-byte address.
func (l *Ledger) Handle() [20]byte { return l.handle }

// Admin returns the controlling identity for issuer wiring and upgrades.
func (l *Ledger) Admin() [20]byte { return l.admin }

// Version reports the active logic version.
func (l *Ledger) Version() string {
	if l == nil || l.logic == nil {
		return ""
	}
	return l.logic.Version()
}

// SetEmitter configures the event emitter. Passing nil resets it to a no-op
// implementation.
func (l *Ledger) SetEmitter(emitter events.Emitter) {
	if emitter == nil {
		l.emitter = events.NoopEmitter{}
		return
	}
	l.emitter = emitter
}

func (l *Ledger) emit(evt *types.Event) {
	if l == nil || l.emitter == nil || evt == nil {
		return
	}
	l.emitter.Emit(WrapEvent(evt))
}

// Authorize records delegate as the ledger's sole issuer. Only the
// administrator may rewire the trust link; the table is persisted so the
// relationship stays inspectable.
func (l *Ledger) Authorize(caller, delegate [20]byte) error {
	if l == nil || l.st == nil {
		return ErrNilState
	}
	if caller != l.admin {
		return ErrNotAuthorized
	}
	if delegate == ([20]byte{}) {
		return ErrInvalidAccount
	}
	if err := l.st.IssuerPut(delegate); err != nil {
		return err
	}
	l.emit(IssuerAuthorizedEvent(l.handle, delegate))
	return nil
}

// Issuer returns the currently authorized issuer-delegate, if any.
func (l *Ledger) Issuer() ([20]byte, bool, error) {
	if l == nil || l.st == nil {
		return [20]byte{}, false, ErrNilState
	}
	return l.st.IssuerGet()
}

// Credit mints reward units to account. The caller must be the authorized
// issuer-delegate; no other identity, the administrator included, may mint.
func (l *Ledger) Credit(caller, account [20]byte, amount *big.Int) error {
	if l == nil || l.st == nil {
		return ErrNilState
	}
	if amount == nil || amount.Sign() <= 0 {
		return ErrAmountMustBePositive
	}
	if account == ([20]byte{}) {
		return ErrInvalidAccount
	}
	issuer, ok, err := l.st.IssuerGet()
	if err != nil {
		return err
	}
	if !ok || caller != issuer {
		return ErrNotAuthorized
	}
	balance, err := l.logic.Credit(l.st, account, amount)
	if err != nil {
		return err
	}
	l.emit(CreditedEvent(l.handle, account, amount, balance))
	return nil
}

// BalanceOf returns the reward balance held by account.
func (l *Ledger) BalanceOf(account [20]byte) (*big.Int, error) {
	if l == nil || l.st == nil {
		return nil, ErrNilState
	}
	balance, err := l.st.BalanceGet(account)
	if err != nil {
		return nil, err
	}
	if balance == nil {
		return big.NewInt(0), nil
	}
	return new(big.Int).Set(balance), nil
}

// TotalSupply returns the cumulative minted amount.
func (l *Ledger) TotalSupply() (*big.Int, error) {
	if l == nil || l.st == nil {
		return nil, ErrNilState
	}
	supply, err := l.st.TotalSupplyGet()
	if err != nil {
		return nil, err
	}
	if supply == nil {
		return big.NewInt(0), nil
	}
	return new(big.Int).Set(supply), nil
}

// Upgrade swaps the minting logic behind this handle. Only the administrator
// may upgrade; stored balances stay with the handle.
func (l *Ledger) Upgrade(caller [20]byte, logic Logic) error {
	if caller != l.admin {
		return ErrNotAuthorized
	}
	if logic == nil {
		return ErrNilLogic
	}
	l.logic = logic
	return nil
}

// Bind returns an issuer view that always credits on behalf of caller. The
// escrow instance receives one of these at deployment so its reward path is
// fixed to its own identity.
func (l *Ledger) Bind(caller [20]byte) *BoundIssuer {
	return &BoundIssuer{ledger: l, caller: caller}
}

// BoundIssuer adapts a ledger to the single-caller credit interface consumed
// by escrow instances.
type BoundIssuer struct {
	ledger *Ledger
	caller [20]byte
}

// Credit mints to account on behalf of the bound caller.
func (b *BoundIssuer) Credit(account [20]byte, amount *big.Int) error {
	if b == nil || b.ledger == nil {
		return ErrNilState
	}
	return b.ledger.Credit(b.caller, account, amount)
}
