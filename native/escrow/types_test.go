package escrow

import (
	"math/big"
	"testing"
)

func TestProjectCloneIsDeep(t *testing.T) {
	project := &Project{
		ID:          1,
		Name:        "well",
		FundingGoal: big.NewInt(10),
		FundsRaised: big.NewInt(3),
	}
	clone := project.Clone()
	clone.FundsRaised.Add(clone.FundsRaised, big.NewInt(100))
	clone.Name = "changed"

	if project.FundsRaised.Cmp(big.NewInt(3)) != 0 {
		t.Fatalf("clone shares fundsRaised with original")
	}
	if project.Name != "well" {
		t.Fatalf("clone shares name with original")
	}
	if (*Project)(nil).Clone() != nil {
		t.Fatalf("nil clone must be nil")
	}
}

func TestMilestoneCloneIsDeep(t *testing.T) {
	milestone := &Milestone{
		ID:            2,
		FundingAmount: big.NewInt(5),
		VotesFor:      big.NewInt(1),
		VotesAgainst:  big.NewInt(2),
	}
	clone := milestone.Clone()
	clone.VotesFor.Add(clone.VotesFor, big.NewInt(9))
	clone.FundingAmount.SetInt64(0)

	if milestone.VotesFor.Cmp(big.NewInt(1)) != 0 {
		t.Fatalf("clone shares votesFor with original")
	}
	if milestone.FundingAmount.Cmp(big.NewInt(5)) != 0 {
		t.Fatalf("clone shares fundingAmount with original")
	}
}

func TestInitParamsValidate(t *testing.T) {
	valid := InitParams{Name: "well", FundingGoal: big.NewInt(1)}
	if err := valid.Validate(); err != nil {
		t.Fatalf("valid params rejected: %v", err)
	}
	cases := []struct {
		name    string
		params  InitParams
		wantErr error
	}{
		{"blank name", InitParams{Name: "   ", FundingGoal: big.NewInt(1)}, ErrProjectNameRequired},
		{"nil goal", InitParams{Name: "x"}, ErrInvalidFundingGoal},
		{"zero goal", InitParams{Name: "x", FundingGoal: big.NewInt(0)}, ErrInvalidFundingGoal},
		{"negative goal", InitParams{Name: "x", FundingGoal: big.NewInt(-1)}, ErrInvalidFundingGoal},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if err := tc.params.Validate(); err != tc.wantErr {
				t.Fatalf("err = %v, want %v", err, tc.wantErr)
			}
		})
	}
}
