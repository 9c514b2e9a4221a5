package escrow

import (
	"math/big"
	"testing"
)

func TestDonationRewardFloors(t *testing.T) {
	params := DefaultParams()

	unit := new(big.Int).Exp(big.NewInt(10), big.NewInt(18), nil)

	// One full native unit earns the multiplier.
	if got := params.DonationReward(unit); got.Cmp(big.NewInt(100)) != 0 {
		t.Fatalf("reward for one unit = %s, want 100", got)
	}
	// Dust below 1/multiplier of a unit floors to zero.
	if got := params.DonationReward(big.NewInt(1)); got.Sign() != 0 {
		t.Fatalf("dust reward = %s, want 0", got)
	}
	if got := params.DonationReward(nil); got.Sign() != 0 {
		t.Fatalf("nil amount reward = %s, want 0", got)
	}
	if got := params.DonationReward(big.NewInt(-5)); got.Sign() != 0 {
		t.Fatalf("negative amount reward = %s, want 0", got)
	}
}

func TestNormalizeFillsNilAmounts(t *testing.T) {
	norm := Params{MilestoneReputationBoost: 3}.Normalize()
	defaults := DefaultParams()

	if norm.VerificationReward.Cmp(defaults.VerificationReward) != 0 {
		t.Fatalf("verification reward not defaulted")
	}
	if norm.DonationMultiplier.Cmp(defaults.DonationMultiplier) != 0 {
		t.Fatalf("donation multiplier not defaulted")
	}
	if norm.RewardUnit.Cmp(defaults.RewardUnit) != 0 {
		t.Fatalf("reward unit not defaulted")
	}
	if norm.MilestoneCompletionReward.Cmp(defaults.MilestoneCompletionReward) != 0 {
		t.Fatalf("completion reward not defaulted")
	}
	if norm.MilestoneReputationBoost != 3 {
		t.Fatalf("boost overwritten by normalize")
	}

	// A zero reward unit would divide by zero downstream.
	norm = Params{RewardUnit: big.NewInt(0)}.Normalize()
	if norm.RewardUnit.Sign() <= 0 {
		t.Fatalf("zero reward unit survived normalize")
	}
}
