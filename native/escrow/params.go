package escrow

import "math/big"

// Default reward schedule, denominated in base reward units (18 decimals).
var (
	defaultRewardUnit                = new(big.Int).Exp(big.NewInt(10), big.NewInt(18), nil)
	defaultVerificationReward        = new(big.Int).Mul(big.NewInt(10), defaultRewardUnit)
	defaultMilestoneCompletionReward = new(big.Int).Mul(big.NewInt(50), defaultRewardUnit)
)

// Default governance-side constants.
const (
	defaultDonationMultiplier       = 100
	defaultMilestoneReputationBoost = 10
)

// Params carries the fixed reward and reputation constants applied by the
// escrow logic. Amount-typed fields are denominated in reward ledger units.
type Params struct {
	// VerificationReward is credited to the creator when identity
	// verification succeeds.
	VerificationReward *big.Int
	// DonationMultiplier scales donor rewards: a donation of amount native
	// units earns floor(amount * DonationMultiplier / RewardUnit) units.
	DonationMultiplier *big.Int
	// RewardUnit is the divisor applied to donation reward computation.
	RewardUnit *big.Int
	// MilestoneCompletionReward is credited to the creator when an approved
	// milestone releases a nonzero amount.
	MilestoneCompletionReward *big.Int
	// MilestoneReputationBoost is added to the project reputation score on
	// every approved milestone.
	MilestoneReputationBoost uint64
}

// DefaultParams returns the reward schedule applied when a deployment does not
// override it.
func DefaultParams() Params {
	return Params{
		VerificationReward:        new(big.Int).Set(defaultVerificationReward),
		DonationMultiplier:        big.NewInt(defaultDonationMultiplier),
		RewardUnit:                new(big.Int).Set(defaultRewardUnit),
		MilestoneCompletionReward: new(big.Int).Set(defaultMilestoneCompletionReward),
		MilestoneReputationBoost:  defaultMilestoneReputationBoost,
	}
}

// Normalize fills nil amounts with their defaults so logic code never touches
// nil big integers.
func (p Params) Normalize() Params {
	defaults := DefaultParams()
	if p.VerificationReward == nil {
		p.VerificationReward = defaults.VerificationReward
	}
	if p.DonationMultiplier == nil {
		p.DonationMultiplier = defaults.DonationMultiplier
	}
	if p.RewardUnit == nil || p.RewardUnit.Sign() <= 0 {
		p.RewardUnit = defaults.RewardUnit
	}
	if p.MilestoneCompletionReward == nil {
		p.MilestoneCompletionReward = defaults.MilestoneCompletionReward
	}
	return p
}

// DonationReward computes the reward units owed for a donation of the supplied
// amount. The result floors towards zero; callers skip issuance when it is not
// positive.
func (p Params) DonationReward(amount *big.Int) *big.Int {
	if amount == nil || amount.Sign() <= 0 {
		return big.NewInt(0)
	}
	norm := p.Normalize()
	reward := new(big.Int).Mul(amount, norm.DonationMultiplier)
	return reward.Quo(reward, norm.RewardUnit)
}
