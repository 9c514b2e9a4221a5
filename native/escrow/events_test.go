package escrow

import (
	"reflect"
	"testing"

	"fundforge/core/events"
	"fundforge/core/types"
)

type recordingEmitter struct {
	emitted []*types.Event
}

func (r *recordingEmitter) Emit(evt events.Event) {
	envelope, ok := evt.(interface{ Event() *types.Event })
	if !ok {
		return
	}
	r.emitted = append(r.emitted, envelope.Event())
}

func (r *recordingEmitter) kinds() []string {
	kinds := make([]string, 0, len(r.emitted))
	for _, evt := range r.emitted {
		kinds = append(kinds, evt.Type)
	}
	return kinds
}

func TestLifecycleEventSequence(t *testing.T) {
	f := newFixture(t)
	emitter := &recordingEmitter{}
	f.inst.SetEmitter(emitter)

	f.initialize(10)
	f.verify()
	f.setBalance(donor1, 10)
	f.fund(donor1, 1)
	id := f.createMilestone(2, 7*daySeconds)
	if err := f.inst.SubmitProof(creator, id, "ipfs://proof"); err != nil {
		t.Fatalf("submit proof: %v", err)
	}
	f.finalize(id)
	if err := f.inst.VoteOnMilestone(donor1, id, true); err != nil {
		t.Fatalf("vote: %v", err)
	}

	want := []string{
		EventTypeProjectCreated,
		EventTypeIdentityVerified,
		EventTypeDonationReceived,
		EventTypeMilestoneCreated,
		EventTypeProofSubmitted,
		EventTypeMilestoneFinalized,
		EventTypeVoteCast,
		EventTypeMilestoneApproved,
		EventTypeFundsReleased,
	}
	if got := emitter.kinds(); !reflect.DeepEqual(got, want) {
		t.Fatalf("event sequence = %v, want %v", got, want)
	}
}

func TestDonationEventAttributes(t *testing.T) {
	f := newFixture(t)
	emitter := &recordingEmitter{}
	f.inst.SetEmitter(emitter)

	f.initialize(10)
	f.verify()
	f.setBalance(donor1, 10)
	f.fund(donor1, 3)
	f.fund(donor1, 4)

	var donationEvents []*types.Event
	for _, evt := range emitter.emitted {
		if evt.Type == EventTypeDonationReceived {
			donationEvents = append(donationEvents, evt)
		}
	}
	if len(donationEvents) != 2 {
		t.Fatalf("donation events = %d, want 2", len(donationEvents))
	}
	last := donationEvents[1]
	if last.Attributes["amount"] != "4" {
		t.Fatalf("amount = %q, want 4", last.Attributes["amount"])
	}
	if last.Attributes["fundsRaised"] != "7" {
		t.Fatalf("fundsRaised = %q, want 7", last.Attributes["fundsRaised"])
	}
}

func TestReleaseEventCarriesClampedAmount(t *testing.T) {
	f := newFixture(t)
	emitter := &recordingEmitter{}
	f.inst.SetEmitter(emitter)

	f.initialize(10)
	f.verify()
	f.setBalance(donor1, 10)
	f.fund(donor1, 1)
	id := f.createMilestone(5, 7*daySeconds)
	f.finalize(id)
	if err := f.inst.VoteOnMilestone(donor1, id, true); err != nil {
		t.Fatalf("vote: %v", err)
	}

	var released *types.Event
	for _, evt := range emitter.emitted {
		if evt.Type == EventTypeFundsReleased {
			released = evt
		}
	}
	if released == nil {
		t.Fatalf("no release event emitted")
	}
	if released.Attributes["amount"] != "1" {
		t.Fatalf("released amount = %q, want clamped 1", released.Attributes["amount"])
	}
}

func TestWrapEventType(t *testing.T) {
	evt := WrapEvent(&types.Event{Type: EventTypeVoteCast})
	if evt.EventType() != EventTypeVoteCast {
		t.Fatalf("event type = %q", evt.EventType())
	}
	if WrapEvent(nil).EventType() != "" {
		t.Fatalf("nil payload must yield empty type")
	}
}
