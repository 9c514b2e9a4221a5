package escrow

import (
	"math/big"
	"strconv"

	"fundforge/core/events"
	"fundforge/core/types"
	"fundforge/crypto"
)

const (
	// EventTypeProjectCreated is emitted exactly once, at initialization.
	EventTypeProjectCreated = "escrow.project.created"
	// EventTypeIdentityVerified is emitted when the one-way verification
	// flag flips.
	EventTypeIdentityVerified = "escrow.identity.verified"
	// EventTypeDonationReceived is emitted for every accepted donation.
	EventTypeDonationReceived = "escrow.donation.received"
	// EventTypeMilestoneCreated is emitted when a creator allocates a new
	// milestone.
	EventTypeMilestoneCreated = "escrow.milestone.created"
	// EventTypeProofSubmitted is emitted on every proof anchor update.
	EventTypeProofSubmitted = "escrow.milestone.proof"
	// EventTypeMilestoneFinalized is emitted when voting opens.
	EventTypeMilestoneFinalized = "escrow.milestone.finalized"
	// EventTypeVoteCast is emitted for every accepted weighted vote.
	EventTypeVoteCast = "escrow.milestone.vote"
	// EventTypeMilestoneApproved is emitted when the tally reaches a strict
	// majority in favour.
	EventTypeMilestoneApproved = "escrow.milestone.approved"
	// EventTypeFundsReleased is emitted after the approved milestone payout
	// is committed.
	EventTypeFundsReleased = "escrow.funds.released"
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

func uintString(v uint64) string {
	return strconv.FormatUint(v, 10)
}

// ProjectCreatedEvent returns the payload announcing a freshly initialized
// project.
func ProjectCreatedEvent(projectID uint64, creator [20]byte, name string, fundingGoal *big.Int) *types.Event {
	return &types.Event{
		Type: EventTypeProjectCreated,
		Attributes: map[string]string{
			"projectId":   uintString(projectID),
			"creator":     addrString(creator),
			"name":        name,
			"fundingGoal": amountString(fundingGoal),
		},
	}
}

// IdentityVerifiedEvent marks a project as verified.
func IdentityVerifiedEvent(projectID uint64, creator [20]byte) *types.Event {
	return &types.Event{
		Type: EventTypeIdentityVerified,
		Attributes: map[string]string{
			"projectId": uintString(projectID),
			"creator":   addrString(creator),
		},
	}
}

// DonationReceivedEvent captures an accepted donation and the running total.
func DonationReceivedEvent(projectID uint64, donor [20]byte, amount, fundsRaised *big.Int) *types.Event {
	return &types.Event{
		Type: EventTypeDonationReceived,
		Attributes: map[string]string{
			"projectId":   uintString(projectID),
			"donor":       addrString(donor),
			"amount":      amountString(amount),
			"fundsRaised": amountString(fundsRaised),
		},
	}
}

// MilestoneCreatedEvent announces a new milestone and its voting deadline.
func MilestoneCreatedEvent(projectID, milestoneID uint64, fundingAmount *big.Int, votingDeadline uint64) *types.Event {
	return &types.Event{
		Type: EventTypeMilestoneCreated,
		Attributes: map[string]string{
			"projectId":      uintString(projectID),
			"milestoneId":    uintString(milestoneID),
			"fundingAmount":  amountString(fundingAmount),
			"votingDeadline": uintString(votingDeadline),
		},
	}
}

// ProofSubmittedEvent records a proof anchor update with its timestamp.
func ProofSubmittedEvent(milestoneID uint64, proofRef string, timestamp uint64) *types.Event {
	return &types.Event{
		Type: EventTypeProofSubmitted,
		Attributes: map[string]string{
			"milestoneId": uintString(milestoneID),
			"proofRef":    proofRef,
			"timestamp":   uintString(timestamp),
		},
	}
}

// MilestoneFinalizedEvent marks a milestone as completed and open for voting.
func MilestoneFinalizedEvent(milestoneID uint64) *types.Event {
	return &types.Event{
		Type: EventTypeMilestoneFinalized,
		Attributes: map[string]string{
			"milestoneId": uintString(milestoneID),
		},
	}
}

// VoteCastEvent records a weighted ballot.
func VoteCastEvent(milestoneID uint64, voter [20]byte, approve bool, weight *big.Int) *types.Event {
	return &types.Event{
		Type: EventTypeVoteCast,
		Attributes: map[string]string{
			"milestoneId": uintString(milestoneID),
			"voter":       addrString(voter),
			"approve":     strconv.FormatBool(approve),
			"weight":      amountString(weight),
		},
	}
}

// MilestoneApprovedEvent marks the one-way approval transition.
func MilestoneApprovedEvent(milestoneID uint64, votesFor, votesAgainst *big.Int) *types.Event {
	return &types.Event{
		Type: EventTypeMilestoneApproved,
		Attributes: map[string]string{
			"milestoneId":  uintString(milestoneID),
			"votesFor":     amountString(votesFor),
			"votesAgainst": amountString(votesAgainst),
		},
	}
}

// FundsReleasedEvent captures the committed payout for an approved milestone.
func FundsReleasedEvent(milestoneID uint64, creator [20]byte, amount *big.Int) *types.Event {
	return &types.Event{
		Type: EventTypeFundsReleased,
		Attributes: map[string]string{
			"milestoneId": uintString(milestoneID),
			"creator":     addrString(creator),
			"amount":      amountString(amount),
		},
	}
}
