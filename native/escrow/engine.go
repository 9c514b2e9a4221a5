package escrow

import (
	"math/big"
	"time"

	"fundforge/core/events"
	"fundforge/core/types"
)

// State is the narrow persistence contract an escrow instance operates
// against. All writes within one operation commit atomically from the
// caller's perspective: the host serializes operations, so no concurrent
// writer observes intermediate state.
type State interface {
	ProjectGet() (*Project, bool, error)
	ProjectPut(*Project) error
	MilestoneGet(id uint64) (*Milestone, bool, error)
	MilestonePut(*Milestone) error
	MilestoneCount() (uint64, error)
	MilestoneCountPut(uint64) error
	DonationAppend(*Donation) error
	DonationList(donor [20]byte) ([]*Donation, error)
	ContributionGet(donor [20]byte) (*big.Int, error)
	ContributionPut(donor [20]byte, amount *big.Int) error
	VoteReceiptHas(milestoneID uint64, voter [20]byte) (bool, error)
	VoteReceiptPut(milestoneID uint64, voter [20]byte) error
	GetAccount(addr []byte) (*types.Account, error)
	PutAccount(addr []byte, account *types.Account) error
}

// RewardIssuer is the instance's authorized call path into the shared reward
// ledger.
type RewardIssuer interface {
	Credit(account [20]byte, amount *big.Int) error
}

// ReputationSink accumulates global donor reputation outside the instance's
// own project score.
type ReputationSink interface {
	Add(addr [20]byte, delta *big.Int) (*big.Int, error)
}

// TransferHook is notified after an outbound value movement has been
// committed. Recipient-side integrations (notification pipelines, wallets)
// hang off this hook; any attempt to re-enter a mutating operation from
// inside it is rejected by the instance's reentrancy guard.
type TransferHook func(from, to [20]byte, amount *big.Int)

// Env carries the handle-owned bindings into the active logic version. The
// stable instance handle owns the data store; logic modules only ever see it
// through Env, which is what makes them swappable without state migration.
type Env struct {
	Self       [20]byte
	State      State
	Rewards    RewardIssuer
	Reputation ReputationSink
	Params     Params
	NowFn      func() uint64
	Emitter    events.Emitter
	Hook       TransferHook
}

func (e *Env) now() uint64 {
	if e == nil || e.NowFn == nil {
		return uint64(time.Now().Unix())
	}
	return e.NowFn()
}

func (e *Env) emit(evt *types.Event) {
	if e == nil || e.Emitter == nil || evt == nil {
		return
	}
	e.Emitter.Emit(WrapEvent(evt))
}

func (e *Env) notify(from, to [20]byte, amount *big.Int) {
	if e == nil || e.Hook == nil {
		return
	}
	e.Hook(from, to, amount)
}

// reward issues ledger credits through the authorized path, skipping silently
// when no ledger is bound or the amount is not positive.
func (e *Env) reward(account [20]byte, amount *big.Int) error {
	if e == nil || e.Rewards == nil {
		return nil
	}
	if amount == nil || amount.Sign() <= 0 {
		return nil
	}
	return e.Rewards.Credit(account, amount)
}

// Logic is the swappable behaviour behind a deployed instance. New versions
// must accept the stored layout left behind by their predecessors; that
// compatibility burden rests on the author of the replacement logic.
type Logic interface {
	Version() string
	Initialize(env *Env, caller [20]byte, init InitParams) error
	VerifyIdentity(env *Env, caller [20]byte) error
	Fund(env *Env, caller [20]byte, amount *big.Int) error
	CreateMilestone(env *Env, caller [20]byte, description string, fundingAmount *big.Int, votingDuration uint64) (uint64, error)
	SubmitProof(env *Env, caller [20]byte, milestoneID uint64, proofRef string) error
	FinalizeMilestone(env *Env, caller [20]byte, milestoneID uint64) error
	VoteOnMilestone(env *Env, caller [20]byte, milestoneID uint64, approve bool) error
}

// EngineVersion identifies the logic shipped with this build.
const EngineVersion = "1.0.0"

// Engine is the reference escrow logic. It is stateless: every binding
// arrives through Env, so a single engine value can serve any number of
// instances.
type Engine struct{}

// NewEngine constructs the reference logic module.
func NewEngine() *Engine { return &Engine{} }

// Version implements Logic.
func (e *Engine) Version() string { return EngineVersion }

// Initialize records the singleton project. It is enforced as a one-shot
// transition: a second call fails without touching state.
func (e *Engine) Initialize(env *Env, caller [20]byte, init InitParams) error {
	if env == nil || env.State == nil {
		return ErrNilState
	}
	if err := init.Validate(); err != nil {
		return err
	}
	_, exists, err := env.State.ProjectGet()
	if err != nil {
		return err
	}
	if exists {
		return ErrAlreadyInitialized
	}
	project := &Project{
		ID:          1,
		Creator:     init.Creator,
		Name:        init.Name,
		Description: init.Description,
		MetadataRef: init.MetadataRef,
		FundingGoal: new(big.Int).Set(init.FundingGoal),
		FundsRaised: big.NewInt(0),
		CreatedAt:   env.now(),
		Active:      true,
	}
	if err := env.State.ProjectPut(project); err != nil {
		return err
	}
	env.emit(ProjectCreatedEvent(project.ID, project.Creator, project.Name, project.FundingGoal))
	return nil
}

// VerifyIdentity flips the one-way verification flag and credits the fixed
// verification reward to the creator. The verification authority check is
// delegated to an external proof system, so any caller may trigger it.
func (e *Engine) VerifyIdentity(env *Env, caller [20]byte) error {
	project, err := loadProject(env)
	if err != nil {
		return err
	}
	if project.IdentityVerified {
		return ErrAlreadyVerified
	}
	project.IdentityVerified = true
	if err := env.State.ProjectPut(project); err != nil {
		return err
	}
	if err := env.reward(project.Creator, env.Params.Normalize().VerificationReward); err != nil {
		return err
	}
	env.emit(IdentityVerifiedEvent(project.ID, project.Creator))
	return nil
}

// Fund accepts a donation. The value transfer into the instance commits
// before any outbound call; the recorded contribution doubles as the donor's
// vote weight.
func (e *Engine) Fund(env *Env, caller [20]byte, amount *big.Int) error {
	if amount == nil || amount.Sign() <= 0 {
		return ErrDonationMustBePositive
	}
	project, err := loadProject(env)
	if err != nil {
		return err
	}
	if !project.Active {
		return ErrProjectNotActive
	}
	if !project.IdentityVerified {
		return ErrProjectNotVerified
	}
	if err := transfer(env.State, caller[:], env.Self[:], amount); err != nil {
		return err
	}
	project.FundsRaised = new(big.Int).Add(project.FundsRaised, amount)
	if err := env.State.ProjectPut(project); err != nil {
		return err
	}
	contribution, err := env.State.ContributionGet(caller)
	if err != nil {
		return err
	}
	if contribution == nil {
		contribution = big.NewInt(0)
	}
	if err := env.State.ContributionPut(caller, new(big.Int).Add(contribution, amount)); err != nil {
		return err
	}
	donation := &Donation{
		Donor:     caller,
		Amount:    new(big.Int).Set(amount),
		Timestamp: env.now(),
		ProjectID: project.ID,
	}
	if err := env.State.DonationAppend(donation); err != nil {
		return err
	}
	if env.Reputation != nil {
		if _, err := env.Reputation.Add(caller, amount); err != nil {
			return err
		}
	}
	if err := env.reward(caller, env.Params.DonationReward(amount)); err != nil {
		return err
	}
	env.emit(DonationReceivedEvent(project.ID, caller, amount, project.FundsRaised))
	env.notify(caller, env.Self, amount)
	return nil
}

// CreateMilestone allocates the next milestone id and opens its record in the
// pending (not completed, not approved) state.
func (e *Engine) CreateMilestone(env *Env, caller [20]byte, description string, fundingAmount *big.Int, votingDuration uint64) (uint64, error) {
	project, err := loadProject(env)
	if err != nil {
		return 0, err
	}
	if caller != project.Creator {
		return 0, ErrNotProjectCreator
	}
	if !project.Active {
		return 0, ErrProjectNotActive
	}
	if fundingAmount == nil || fundingAmount.Sign() <= 0 {
		return 0, ErrInvalidFundingAmount
	}
	if votingDuration == 0 {
		return 0, ErrInvalidVotingDuration
	}
	count, err := env.State.MilestoneCount()
	if err != nil {
		return 0, err
	}
	milestone := &Milestone{
		ID:             count + 1,
		ProjectID:      project.ID,
		Description:    description,
		FundingAmount:  new(big.Int).Set(fundingAmount),
		VotesFor:       big.NewInt(0),
		VotesAgainst:   big.NewInt(0),
		VotingDeadline: env.now() + votingDuration,
	}
	if err := env.State.MilestonePut(milestone); err != nil {
		return 0, err
	}
	if err := env.State.MilestoneCountPut(milestone.ID); err != nil {
		return 0, err
	}
	env.emit(MilestoneCreatedEvent(project.ID, milestone.ID, milestone.FundingAmount, milestone.VotingDeadline))
	return milestone.ID, nil
}

// SubmitProof anchors (or re-anchors) the latest progress evidence. It is
// deliberately decoupled from finalization so cheap proof updates never open
// a voting window.
func (e *Engine) SubmitProof(env *Env, caller [20]byte, milestoneID uint64, proofRef string) error {
	project, err := loadProject(env)
	if err != nil {
		return err
	}
	if caller != project.Creator {
		return ErrNotProjectCreator
	}
	milestone, err := loadMilestone(env, milestoneID)
	if err != nil {
		return err
	}
	if milestone.Completed {
		return ErrMilestoneAlreadyCompleted
	}
	milestone.ProofRef = proofRef
	if err := env.State.MilestonePut(milestone); err != nil {
		return err
	}
	env.emit(ProofSubmittedEvent(milestoneID, proofRef, env.now()))
	return nil
}

// FinalizeMilestone is the explicit one-way commit that opens the milestone
// for voting.
func (e *Engine) FinalizeMilestone(env *Env, caller [20]byte, milestoneID uint64) error {
	project, err := loadProject(env)
	if err != nil {
		return err
	}
	if caller != project.Creator {
		return ErrNotProjectCreator
	}
	milestone, err := loadMilestone(env, milestoneID)
	if err != nil {
		return err
	}
	if milestone.Completed {
		return ErrMilestoneAlreadyCompleted
	}
	milestone.Completed = true
	if err := env.State.MilestonePut(milestone); err != nil {
		return err
	}
	env.emit(MilestoneFinalizedEvent(milestoneID))
	return nil
}

// VoteOnMilestone records a contribution-weighted ballot. There is no quorum:
// the instant votesFor strictly exceeds votesAgainst the milestone approves
// and the release executes within the same operation.
func (e *Engine) VoteOnMilestone(env *Env, caller [20]byte, milestoneID uint64, approve bool) error {
	project, err := loadProject(env)
	if err != nil {
		return err
	}
	milestone, err := loadMilestone(env, milestoneID)
	if err != nil {
		return err
	}
	if !milestone.Completed {
		return ErrMilestoneNotCompleted
	}
	if milestone.Approved {
		return ErrMilestoneAlreadyApproved
	}
	if env.now() >= milestone.VotingDeadline {
		return ErrVotingPeriodEnded
	}
	voted, err := env.State.VoteReceiptHas(milestoneID, caller)
	if err != nil {
		return err
	}
	if voted {
		return ErrAlreadyVoted
	}
	weight, err := env.State.ContributionGet(caller)
	if err != nil {
		return err
	}
	if weight == nil || weight.Sign() <= 0 {
		return ErrNotADonor
	}
	if err := env.State.VoteReceiptPut(milestoneID, caller); err != nil {
		return err
	}
	if approve {
		milestone.VotesFor = new(big.Int).Add(milestone.VotesFor, weight)
	} else {
		milestone.VotesAgainst = new(big.Int).Add(milestone.VotesAgainst, weight)
	}
	if err := env.State.MilestonePut(milestone); err != nil {
		return err
	}
	env.emit(VoteCastEvent(milestoneID, caller, approve, weight))
	if milestone.VotesFor.Cmp(milestone.VotesAgainst) > 0 {
		return e.releaseMilestoneFunds(env, project, milestone)
	}
	return nil
}

// releaseMilestoneFunds executes the approval transition. It is only ever
// triggered from the vote tally above. The payout clamps to the instance
// balance so an over-budgeted milestone resolves with a partial payment
// instead of getting stuck, and the completion reward is withheld when the
// clamped amount is zero.
func (e *Engine) releaseMilestoneFunds(env *Env, project *Project, milestone *Milestone) error {
	if milestone.Approved {
		return ErrMilestoneAlreadyApproved
	}
	milestone.Approved = true
	if err := env.State.MilestonePut(milestone); err != nil {
		return err
	}
	vault, err := env.State.GetAccount(env.Self[:])
	if err != nil {
		return err
	}
	vault = types.EnsureAccount(vault)
	releaseAmount := new(big.Int).Set(milestone.FundingAmount)
	if releaseAmount.Cmp(vault.Balance) > 0 {
		releaseAmount.Set(vault.Balance)
	}
	if releaseAmount.Sign() > 0 {
		if err := transfer(env.State, env.Self[:], project.Creator[:], releaseAmount); err != nil {
			return err
		}
	}
	project.ReputationScore += env.Params.MilestoneReputationBoost
	if err := env.State.ProjectPut(project); err != nil {
		return err
	}
	if releaseAmount.Sign() > 0 {
		if err := env.reward(project.Creator, env.Params.Normalize().MilestoneCompletionReward); err != nil {
			return err
		}
	}
	env.emit(MilestoneApprovedEvent(milestone.ID, milestone.VotesFor, milestone.VotesAgainst))
	env.emit(FundsReleasedEvent(milestone.ID, project.Creator, releaseAmount))
	env.notify(env.Self, project.Creator, releaseAmount)
	return nil
}

func loadProject(env *Env) (*Project, error) {
	if env == nil || env.State == nil {
		return nil, ErrNilState
	}
	project, exists, err := env.State.ProjectGet()
	if err != nil {
		return nil, err
	}
	if !exists {
		return nil, ErrNotInitialized
	}
	if project.FundsRaised == nil {
		project.FundsRaised = big.NewInt(0)
	}
	return project, nil
}

func loadMilestone(env *Env, id uint64) (*Milestone, error) {
	milestone, exists, err := env.State.MilestoneGet(id)
	if err != nil {
		return nil, err
	}
	if !exists {
		return nil, ErrInvalidMilestoneID
	}
	if milestone.VotesFor == nil {
		milestone.VotesFor = big.NewInt(0)
	}
	if milestone.VotesAgainst == nil {
		milestone.VotesAgainst = big.NewInt(0)
	}
	return milestone, nil
}

// transfer moves native value between accounts. The debit and credit commit
// together before control returns, so no external observer sees a partial
// move.
func transfer(st State, from, to []byte, amount *big.Int) error {
	sender, err := st.GetAccount(from)
	if err != nil {
		return err
	}
	sender = types.EnsureAccount(sender)
	if sender.Balance.Cmp(amount) < 0 {
		return ErrInsufficientBalance
	}
	sender.Balance = new(big.Int).Sub(sender.Balance, amount)
	if err := st.PutAccount(from, sender); err != nil {
		return err
	}
	recipient, err := st.GetAccount(to)
	if err != nil {
		return err
	}
	recipient = types.EnsureAccount(recipient)
	recipient.Balance = new(big.Int).Add(recipient.Balance, amount)
	return st.PutAccount(to, recipient)
}
