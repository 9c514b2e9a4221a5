package rewards

import (
	"errors"
	"math/big"
	"testing"
)

type mockState struct {
	balances  map[[20]byte]*big.Int
	supply    *big.Int
	issuer    [20]byte
	issuerSet bool
}

func newMockState() *mockState {
	return &mockState{balances: make(map[[20]byte]*big.Int)}
}

func (m *mockState) BalanceGet(addr [20]byte) (*big.Int, error) {
	balance, ok := m.balances[addr]
	if !ok {
		return nil, nil
	}
	return new(big.Int).Set(balance), nil
}

func (m *mockState) BalancePut(addr [20]byte, amount *big.Int) error {
	m.balances[addr] = new(big.Int).Set(amount)
	return nil
}

func (m *mockState) TotalSupplyGet() (*big.Int, error) {
	if m.supply == nil {
		return nil, nil
	}
	return new(big.Int).Set(m.supply), nil
}

func (m *mockState) TotalSupplyPut(amount *big.Int) error {
	m.supply = new(big.Int).Set(amount)
	return nil
}

func (m *mockState) IssuerGet() ([20]byte, bool, error) {
	return m.issuer, m.issuerSet, nil
}

func (m *mockState) IssuerPut(issuer [20]byte) error {
	m.issuer = issuer
	m.issuerSet = true
	return nil
}

func addr(last byte) [20]byte {
	var a [20]byte
	a[19] = last
	return a
}

var (
	admin    = addr(0x0A)
	escrowID = addr(0x0B)
	account  = addr(0x0C)
	stranger = addr(0x0D)
)

func newLedger(t *testing.T) (*Ledger, *mockState) {
	t.Helper()
	st := newMockState()
	return NewLedger(addr(0xAA), admin, st), st
}

func TestAuthorizeAdminOnly(t *testing.T) {
	ledger, _ := newLedger(t)

	if err := ledger.Authorize(stranger, escrowID); !errors.Is(err, ErrNotAuthorized) {
		t.Fatalf("expected ErrNotAuthorized, got %v", err)
	}
	if err := ledger.Authorize(admin, [20]byte{}); !errors.Is(err, ErrInvalidAccount) {
		t.Fatalf("expected ErrInvalidAccount, got %v", err)
	}
	if err := ledger.Authorize(admin, escrowID); err != nil {
		t.Fatalf("authorize: %v", err)
	}

	issuer, ok, err := ledger.Issuer()
	if err != nil || !ok {
		t.Fatalf("issuer lookup: ok=%v err=%v", ok, err)
	}
	if issuer != escrowID {
		t.Fatalf("issuer = %x, want %x", issuer, escrowID)
	}
}

func TestCreditIssuerOnly(t *testing.T) {
	ledger, _ := newLedger(t)

	// No issuer wired yet: everyone is rejected, the admin included.
	if err := ledger.Credit(admin, account, big.NewInt(5)); !errors.Is(err, ErrNotAuthorized) {
		t.Fatalf("expected ErrNotAuthorized before wiring, got %v", err)
	}

	if err := ledger.Authorize(admin, escrowID); err != nil {
		t.Fatalf("authorize: %v", err)
	}
	if err := ledger.Credit(admin, account, big.NewInt(5)); !errors.Is(err, ErrNotAuthorized) {
		t.Fatalf("admin must not mint, got %v", err)
	}
	if err := ledger.Credit(escrowID, account, big.NewInt(5)); err != nil {
		t.Fatalf("credit: %v", err)
	}
	if err := ledger.Credit(escrowID, account, big.NewInt(7)); err != nil {
		t.Fatalf("credit: %v", err)
	}

	balance, err := ledger.BalanceOf(account)
	if err != nil {
		t.Fatalf("balance: %v", err)
	}
	if balance.Cmp(big.NewInt(12)) != 0 {
		t.Fatalf("balance = %s, want 12", balance)
	}
	supply, err := ledger.TotalSupply()
	if err != nil {
		t.Fatalf("supply: %v", err)
	}
	if supply.Cmp(big.NewInt(12)) != 0 {
		t.Fatalf("supply = %s, want 12", supply)
	}
}

func TestCreditValidation(t *testing.T) {
	ledger, _ := newLedger(t)
	if err := ledger.Authorize(admin, escrowID); err != nil {
		t.Fatalf("authorize: %v", err)
	}

	if err := ledger.Credit(escrowID, account, nil); !errors.Is(err, ErrAmountMustBePositive) {
		t.Fatalf("expected ErrAmountMustBePositive for nil, got %v", err)
	}
	if err := ledger.Credit(escrowID, account, big.NewInt(0)); !errors.Is(err, ErrAmountMustBePositive) {
		t.Fatalf("expected ErrAmountMustBePositive for zero, got %v", err)
	}
	if err := ledger.Credit(escrowID, [20]byte{}, big.NewInt(1)); !errors.Is(err, ErrInvalidAccount) {
		t.Fatalf("expected ErrInvalidAccount, got %v", err)
	}
}

func TestRewireIssuerRevokesPredecessor(t *testing.T) {
	ledger, _ := newLedger(t)
	if err := ledger.Authorize(admin, escrowID); err != nil {
		t.Fatalf("authorize: %v", err)
	}
	replacement := addr(0x0E)
	if err := ledger.Authorize(admin, replacement); err != nil {
		t.Fatalf("rewire: %v", err)
	}

	if err := ledger.Credit(escrowID, account, big.NewInt(1)); !errors.Is(err, ErrNotAuthorized) {
		t.Fatalf("revoked issuer still mints: %v", err)
	}
	if err := ledger.Credit(replacement, account, big.NewInt(1)); err != nil {
		t.Fatalf("replacement credit: %v", err)
	}
}

type doublingLogic struct{}

func (doublingLogic) Version() string { return "2.0.0" }

func (doublingLogic) Credit(st State, account [20]byte, amount *big.Int) (*big.Int, error) {
	return NewEngine().Credit(st, account, new(big.Int).Lsh(amount, 1))
}

func TestUpgradeAdminOnly(t *testing.T) {
	ledger, _ := newLedger(t)
	if err := ledger.Authorize(admin, escrowID); err != nil {
		t.Fatalf("authorize: %v", err)
	}
	if err := ledger.Credit(escrowID, account, big.NewInt(3)); err != nil {
		t.Fatalf("credit: %v", err)
	}

	if err := ledger.Upgrade(stranger, doublingLogic{}); !errors.Is(err, ErrNotAuthorized) {
		t.Fatalf("expected ErrNotAuthorized, got %v", err)
	}
	if err := ledger.Upgrade(admin, nil); !errors.Is(err, ErrNilLogic) {
		t.Fatalf("expected ErrNilLogic, got %v", err)
	}
	if err := ledger.Upgrade(admin, doublingLogic{}); err != nil {
		t.Fatalf("upgrade: %v", err)
	}
	if ledger.Version() != "2.0.0" {
		t.Fatalf("version = %q, want 2.0.0", ledger.Version())
	}

	// Balances accumulated under the old logic survive; the new arithmetic
	// applies from here on.
	if err := ledger.Credit(escrowID, account, big.NewInt(3)); err != nil {
		t.Fatalf("credit after upgrade: %v", err)
	}
	balance, err := ledger.BalanceOf(account)
	if err != nil {
		t.Fatalf("balance: %v", err)
	}
	if balance.Cmp(big.NewInt(9)) != 0 {
		t.Fatalf("balance = %s, want 9", balance)
	}
}

func TestBoundIssuerFixesCaller(t *testing.T) {
	ledger, _ := newLedger(t)
	if err := ledger.Authorize(admin, escrowID); err != nil {
		t.Fatalf("authorize: %v", err)
	}

	bound := ledger.Bind(escrowID)
	if err := bound.Credit(account, big.NewInt(4)); err != nil {
		t.Fatalf("bound credit: %v", err)
	}
	unbound := ledger.Bind(stranger)
	if err := unbound.Credit(account, big.NewInt(4)); !errors.Is(err, ErrNotAuthorized) {
		t.Fatalf("stranger binding minted: %v", err)
	}

	balance, err := ledger.BalanceOf(account)
	if err != nil {
		t.Fatalf("balance: %v", err)
	}
	if balance.Cmp(big.NewInt(4)) != 0 {
		t.Fatalf("balance = %s, want 4", balance)
	}
}
