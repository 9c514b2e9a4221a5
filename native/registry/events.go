package registry

import (
	"strconv"

	"fundforge/core/events"
	"fundforge/core/types"
	"fundforge/crypto"
)

const (
	// EventTypeLedgerDeployed is emitted when a fresh reward ledger is
	// instantiated.
	EventTypeLedgerDeployed = "registry.ledger.deployed"
	// EventTypeInstanceDeployed is emitted when a fresh escrow instance is
	// instantiated and initialized.
	EventTypeInstanceDeployed = "registry.instance.deployed"
	// EventTypeSystemDeployed is emitted once per complete ledger/instance
	// pair, after the issuer authorization is wired.
	EventTypeSystemDeployed = "registry.system.deployed"
	// EventTypeLogicUpgraded is emitted when a deployment's logic module is
	// swapped.
	EventTypeLogicUpgraded = "registry.logic.upgraded"
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

// LedgerDeployedEvent announces a new reward ledger handle.
func LedgerDeployedEvent(handle [20]byte, version string) *types.Event {
	return &types.Event{
		Type: EventTypeLedgerDeployed,
		Attributes: map[string]string{
			"ledger":  addrString(handle),
			"version": version,
		},
	}
}

// InstanceDeployedEvent announces a new escrow instance handle.
func InstanceDeployedEvent(handle [20]byte, creator [20]byte, version string) *types.Event {
	return &types.Event{
		Type: EventTypeInstanceDeployed,
		Attributes: map[string]string{
			"instance": addrString(handle),
			"creator":  addrString(creator),
			"version":  version,
		},
	}
}

// SystemDeployedEvent announces a wired ledger/instance pair and its position
// in the audit log.
func SystemDeployedEvent(index uint64, ledger, instance [20]byte) *types.Event {
	return &types.Event{
		Type: EventTypeSystemDeployed,
		Attributes: map[string]string{
			"index":    strconv.FormatUint(index, 10),
			"ledger":   addrString(ledger),
			"instance": addrString(instance),
		},
	}
}

// LogicUpgradedEvent records a logic swap on an existing deployment.
func LogicUpgradedEvent(handle [20]byte, version string) *types.Event {
	return &types.Event{
		Type: EventTypeLogicUpgraded,
		Attributes: map[string]string{
			"handle":  addrString(handle),
			"version": version,
		},
	}
}
