package rewards

import (
	"math/big"

	"fundforge/core/events"
	"fundforge/core/types"
	"fundforge/crypto"
)

const (
	// EventTypeCredited is emitted for every successful mint.
	EventTypeCredited = "rewards.credited"
	// EventTypeIssuerAuthorized is emitted when the administrator rewires
	// the issuer-delegate.
	EventTypeIssuerAuthorized = "rewards.issuer.authorized"
)

type eventEnvelope struct {
	evt *types.Event
}

func (e eventEnvelope) EventType() string {
	if e.evt == nil {
		return ""
	}
	return e.evt.Type
}

func (e eventEnvelope) Event() *types.Event { return e.evt }

// WrapEvent converts a raw event payload into the emitter-friendly envelope.
func WrapEvent(evt *types.Event) events.Event { return eventEnvelope{evt: evt} }

func addrString(addr [20]byte) string {
	return crypto.NewAddress(crypto.FundPrefix, addr[:]).String()
}

func amountString(v *big.Int) string {
	if v == nil {
		return "0"
	}
	return v.String()
}

// CreditedEvent captures a successful mint and the resulting balance.
func CreditedEvent(ledger, account [20]byte, amount, balance *big.Int) *types.Event {
	return &types.Event{
		Type: EventTypeCredited,
		Attributes: map[string]string{
			"ledger":  addrString(ledger),
			"account": addrString(account),
			"amount":  amountString(amount),
			"balance": amountString(balance),
		},
	}
}

// IssuerAuthorizedEvent captures an issuer-delegate change.
func IssuerAuthorizedEvent(ledger, issuer [20]byte) *types.Event {
	return &types.Event{
		Type: EventTypeIssuerAuthorized,
		Attributes: map[string]string{
			"ledger": addrString(ledger),
			"issuer": addrString(issuer),
		},
	}
}
