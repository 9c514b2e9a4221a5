package escrow

import "errors"

var (
	// ErrNilState marks an instance used before its state backend was bound.
	ErrNilState = errors.New("escrow: state not configured")
	// ErrAlreadyInitialized guards the one-shot initialization of an instance.
	ErrAlreadyInitialized = errors.New("escrow: already initialized")
	// ErrNotInitialized is returned when an operation runs before Initialize.
	ErrNotInitialized = errors.New("escrow: not initialized")
	// ErrProjectNameRequired rejects blank project names at initialization.
	ErrProjectNameRequired = errors.New("escrow: project name required")
	// ErrInvalidFundingGoal rejects non-positive funding goals.
	ErrInvalidFundingGoal = errors.New("escrow: funding goal must be positive")
	// ErrAlreadyVerified marks a second identity verification attempt.
	ErrAlreadyVerified = errors.New("escrow: identity already verified")
	// ErrDonationMustBePositive rejects zero or negative donations.
	ErrDonationMustBePositive = errors.New("escrow: donation must be positive")
	// ErrProjectNotActive rejects operations against a deactivated project.
	ErrProjectNotActive = errors.New("escrow: project not active")
	// ErrProjectNotVerified rejects donations before identity verification.
	ErrProjectNotVerified = errors.New("escrow: project identity not verified")
	// ErrInsufficientBalance is returned when a donor cannot cover the
	// attached donation amount.
	ErrInsufficientBalance = errors.New("escrow: insufficient balance")
	// ErrNotProjectCreator gates creator-only operations.
	ErrNotProjectCreator = errors.New("escrow: caller is not the project creator")
	// ErrInvalidMilestoneID marks lookups outside the allocated id range.
	ErrInvalidMilestoneID = errors.New("escrow: invalid milestone id")
	// ErrInvalidFundingAmount rejects non-positive milestone budgets.
	ErrInvalidFundingAmount = errors.New("escrow: funding amount must be positive")
	// ErrInvalidVotingDuration rejects zero-length voting windows.
	ErrInvalidVotingDuration = errors.New("escrow: voting duration must be positive")
	// ErrMilestoneAlreadyCompleted guards the one-way completed flag.
	ErrMilestoneAlreadyCompleted = errors.New("escrow: milestone already completed")
	// ErrMilestoneNotCompleted rejects votes before finalization.
	ErrMilestoneNotCompleted = errors.New("escrow: milestone not completed")
	// ErrMilestoneAlreadyApproved guards the one-way approved flag.
	ErrMilestoneAlreadyApproved = errors.New("escrow: milestone already approved")
	// ErrVotingPeriodEnded rejects votes after the deadline elapsed.
	ErrVotingPeriodEnded = errors.New("escrow: voting period ended")
	// ErrAlreadyVoted enforces the one-vote-per-donor receipt.
	ErrAlreadyVoted = errors.New("escrow: already voted on milestone")
	// ErrNotADonor rejects votes from callers without a recorded donation.
	ErrNotADonor = errors.New("escrow: caller is not a donor")
	// ErrReentrantCall is returned when a mutating operation is re-entered
	// while an outbound transfer is still in flight.
	ErrReentrantCall = errors.New("escrow: reentrant call")
	// ErrNotAuthorized gates logic upgrades to the controlling identity.
	ErrNotAuthorized = errors.New("escrow: not authorized")
	// ErrNilLogic rejects upgrades to a nil logic module.
	ErrNilLogic = errors.New("escrow: logic must not be nil")
)
