package escrow

import (
	"math/big"
	"time"

	"fundforge/core/events"
	nativecommon "fundforge/native/common"
)

const moduleName = "escrow"

// Instance is the stable, per-project handle deployed by the registry. It
// owns the data store binding, the controlling identity, and the reentrancy
// guard; behaviour is delegated to a swappable Logic module so deployments
// can be upgraded in place without losing accumulated state.
type Instance struct {
	handle     [20]byte
	controller [20]byte
	st         State
	logic      Logic
	rewards    RewardIssuer
	reputation ReputationSink
	params     Params
	emitter    events.Emitter
	nowFn      func() uint64
	hook       TransferHook
	pauses     nativecommon.PauseView
	locked     bool
}

// NewInstance constructs a handle over the supplied state backend running the
// reference logic.
func NewInstance(handle [20]byte, st State) *Instance {
	return &Instance{
		handle:  handle,
		st:      st,
		logic:   NewEngine(),
		params:  DefaultParams(),
		emitter: events.NoopEmitter{},
		nowFn:   func() uint64 { return uint64(time.Now().Unix()) },
	}
}

// Handle returns the instance's deterministic 20-byte address.
func (i *Instance) Handle() [20]byte { return i.handle }

// Controller returns the identity allowed to upgrade this instance's logic.
func (i *Instance) Controller() [20]byte { return i.controller }

// Version reports the active logic version.
func (i *Instance) Version() string {
	if i == nil || i.logic == nil {
		return ""
	}
	return i.logic.Version()
}

// SetRewards binds the instance's authorized call path into the reward ledger.
func (i *Instance) SetRewards(issuer RewardIssuer) { i.rewards = issuer }

// SetReputation binds the global donor reputation sink.
func (i *Instance) SetReputation(sink ReputationSink) { i.reputation = sink }

// SetParams overrides the reward schedule applied by the logic.
func (i *Instance) SetParams(p Params) { i.params = p.Normalize() }

// SetEmitter configures the event emitter. Passing nil resets it to a no-op
// implementation.
func (i *Instance) SetEmitter(emitter events.Emitter) {
	if emitter == nil {
		i.emitter = events.NoopEmitter{}
		return
	}
	i.emitter = emitter
}

// SetNowFunc overrides the time source. Primarily intended for tests to
// provide deterministic timestamps.
func (i *Instance) SetNowFunc(now func() uint64) {
	if now == nil {
		i.nowFn = func() uint64 { return uint64(time.Now().Unix()) }
		return
	}
	i.nowFn = now
}

// SetTransferHook installs the outbound transfer notification. The hook runs
// strictly after the transfer's state effects have committed.
func (i *Instance) SetTransferHook(hook TransferHook) { i.hook = hook }

// SetPauses wires the operator pause switches.
func (i *Instance) SetPauses(p nativecommon.PauseView) { i.pauses = p }

func (i *Instance) env() *Env {
	return &Env{
		Self:       i.handle,
		State:      i.st,
		Rewards:    i.rewards,
		Reputation: i.reputation,
		Params:     i.params,
		NowFn:      i.nowFn,
		Emitter:    i.emitter,
		Hook:       i.hook,
	}
}

// begin acquires the instance-wide non-reentrant lock held for the full
// duration of every mutating operation. Operations are serialized by the
// host, so the lock only ever trips on a nested call re-entering through an
// outbound transfer hook.
func (i *Instance) begin() error {
	if i == nil || i.st == nil {
		return ErrNilState
	}
	if err := nativecommon.Guard(i.pauses, moduleName); err != nil {
		return err
	}
	if i.locked {
		return ErrReentrantCall
	}
	i.locked = true
	return nil
}

func (i *Instance) end() { i.locked = false }

// Initialize performs the one-shot project setup and pins the controlling
// identity to the project creator.
func (i *Instance) Initialize(caller [20]byte, init InitParams) error {
	if err := i.begin(); err != nil {
		return err
	}
	defer i.end()
	if err := i.logic.Initialize(i.env(), caller, init); err != nil {
		return err
	}
	i.controller = init.Creator
	return nil
}

// VerifyIdentity marks the project as verified. See Engine.VerifyIdentity.
func (i *Instance) VerifyIdentity(caller [20]byte) error {
	if err := i.begin(); err != nil {
		return err
	}
	defer i.end()
	return i.logic.VerifyIdentity(i.env(), caller)
}

// Fund accepts a donation from caller.
func (i *Instance) Fund(caller [20]byte, amount *big.Int) error {
	if err := i.begin(); err != nil {
		return err
	}
	defer i.end()
	return i.logic.Fund(i.env(), caller, amount)
}

// CreateMilestone allocates a new milestone and returns its id.
func (i *Instance) CreateMilestone(caller [20]byte, description string, fundingAmount *big.Int, votingDuration uint64) (uint64, error) {
	if err := i.begin(); err != nil {
		return 0, err
	}
	defer i.end()
	return i.logic.CreateMilestone(i.env(), caller, description, fundingAmount, votingDuration)
}

// SubmitProof anchors progress evidence on a pending milestone.
func (i *Instance) SubmitProof(caller [20]byte, milestoneID uint64, proofRef string) error {
	if err := i.begin(); err != nil {
		return err
	}
	defer i.end()
	return i.logic.SubmitProof(i.env(), caller, milestoneID, proofRef)
}

// FinalizeMilestone opens the milestone for voting.
func (i *Instance) FinalizeMilestone(caller [20]byte, milestoneID uint64) error {
	if err := i.begin(); err != nil {
		return err
	}
	defer i.end()
	return i.logic.FinalizeMilestone(i.env(), caller, milestoneID)
}

// VoteOnMilestone records a weighted ballot, releasing funds in the same
// operation when the tally reaches a strict majority in favour.
func (i *Instance) VoteOnMilestone(caller [20]byte, milestoneID uint64, approve bool) error {
	if err := i.begin(); err != nil {
		return err
	}
	defer i.end()
	return i.logic.VoteOnMilestone(i.env(), caller, milestoneID, approve)
}

// Upgrade swaps the logic module behind this handle. Only the controlling
// identity may upgrade; the data store stays with the handle, so the new
// logic must accept the existing stored layout.
func (i *Instance) Upgrade(caller [20]byte, logic Logic) error {
	if caller != i.controller {
		return ErrNotAuthorized
	}
	if logic == nil {
		return ErrNilLogic
	}
	i.logic = logic
	return nil
}

// --- Read accessors ---

// Project returns a snapshot of the singleton project record.
func (i *Instance) Project() (*Project, error) {
	if i == nil || i.st == nil {
		return nil, ErrNilState
	}
	project, exists, err := i.st.ProjectGet()
	if err != nil {
		return nil, err
	}
	if !exists {
		return nil, ErrNotInitialized
	}
	return project.Clone(), nil
}

// Milestone returns a snapshot of the identified milestone.
func (i *Instance) Milestone(id uint64) (*Milestone, error) {
	if i == nil || i.st == nil {
		return nil, ErrNilState
	}
	milestone, exists, err := i.st.MilestoneGet(id)
	if err != nil {
		return nil, err
	}
	if !exists {
		return nil, ErrInvalidMilestoneID
	}
	return milestone.Clone(), nil
}

// MilestoneIDs lists the allocated milestone ids in creation order.
func (i *Instance) MilestoneIDs() ([]uint64, error) {
	if i == nil || i.st == nil {
		return nil, ErrNilState
	}
	count, err := i.st.MilestoneCount()
	if err != nil {
		return nil, err
	}
	ids := make([]uint64, 0, count)
	for id := uint64(1); id <= count; id++ {
		ids = append(ids, id)
	}
	return ids, nil
}

// DonorHistory returns the donor's full append-only donation trail.
func (i *Instance) DonorHistory(donor [20]byte) ([]*Donation, error) {
	if i == nil || i.st == nil {
		return nil, ErrNilState
	}
	records, err := i.st.DonationList(donor)
	if err != nil {
		return nil, err
	}
	history := make([]*Donation, 0, len(records))
	for _, record := range records {
		history = append(history, record.Clone())
	}
	return history, nil
}

// Contribution returns the donor's cumulative donated amount, which is also
// their vote weight.
func (i *Instance) Contribution(donor [20]byte) (*big.Int, error) {
	if i == nil || i.st == nil {
		return nil, ErrNilState
	}
	contribution, err := i.st.ContributionGet(donor)
	if err != nil {
		return nil, err
	}
	if contribution == nil {
		return big.NewInt(0), nil
	}
	return new(big.Int).Set(contribution), nil
}
