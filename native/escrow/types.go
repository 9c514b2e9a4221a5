package escrow

import (
	"math/big"
	"strings"
)

// Project captures the singleton record owned by an escrow instance. Exactly
// one project exists per instance and it is never deleted.
type Project struct {
	ID               uint64
	Creator          [20]byte
	Name             string
	Description      string
	MetadataRef      string
	FundingGoal      *big.Int
	FundsRaised      *big.Int
	CreatedAt        uint64
	Active           bool
	IdentityVerified bool
	ReputationScore  uint64
}

// Clone returns a deep copy of the project so read accessors never hand out
// shared mutable state.
func (p *Project) Clone() *Project {
	if p == nil {
		return nil
	}
	clone := *p
	if p.FundingGoal != nil {
		clone.FundingGoal = new(big.Int).Set(p.FundingGoal)
	}
	if p.FundsRaised != nil {
		clone.FundsRaised = new(big.Int).Set(p.FundsRaised)
	}
	return &clone
}

// Milestone is an append-only funding tranche. Milestones transition forward
// only: completed and approved each flip false to true at most once, and the
// vote tallies never decrease.
type Milestone struct {
	ID             uint64
	ProjectID      uint64
	Description    string
	FundingAmount  *big.Int
	ProofRef       string
	Completed      bool
	Approved       bool
	VotesFor       *big.Int
	VotesAgainst   *big.Int
	VotingDeadline uint64
}

// Clone returns a deep copy of the milestone.
func (m *Milestone) Clone() *Milestone {
	if m == nil {
		return nil
	}
	clone := *m
	if m.FundingAmount != nil {
		clone.FundingAmount = new(big.Int).Set(m.FundingAmount)
	}
	if m.VotesFor != nil {
		clone.VotesFor = new(big.Int).Set(m.VotesFor)
	}
	if m.VotesAgainst != nil {
		clone.VotesAgainst = new(big.Int).Set(m.VotesAgainst)
	}
	return &clone
}

// Donation is one immutable entry in a donor's audit trail. Records are only
// ever appended.
type Donation struct {
	Donor     [20]byte
	Amount    *big.Int
	Timestamp uint64
	ProjectID uint64
}

// Clone returns a deep copy of the donation record.
func (d *Donation) Clone() *Donation {
	if d == nil {
		return nil
	}
	clone := *d
	if d.Amount != nil {
		clone.Amount = new(big.Int).Set(d.Amount)
	}
	return &clone
}

// InitParams bundles the immutable project metadata supplied at instance
// creation.
type InitParams struct {
	Creator     [20]byte
	Name        string
	Description string
	MetadataRef string
	FundingGoal *big.Int
}

// Validate checks the initialization payload prior to persistence.
func (p InitParams) Validate() error {
	if strings.TrimSpace(p.Name) == "" {
		return ErrProjectNameRequired
	}
	if p.FundingGoal == nil || p.FundingGoal.Sign() <= 0 {
		return ErrInvalidFundingGoal
	}
	return nil
}
