package state

import (
	"math/big"
	"testing"

	"github.com/stretchr/testify/require"

	"fundforge/core/types"
	"fundforge/native/escrow"
	"fundforge/native/registry"
	"fundforge/storage"
)

func handle(last byte) [20]byte {
	var h [20]byte
	h[19] = last
	return h
}

func newManager(t *testing.T) *Manager {
	t.Helper()
	return NewManager(storage.NewMemDB())
}

func TestAccountRoundTrip(t *testing.T) {
	m := newManager(t)
	addr := handle(1)

	account, err := m.GetAccount(addr[:])
	require.NoError(t, err)
	require.Equal(t, int64(0), account.Balance.Int64())

	account.Balance = big.NewInt(42)
	account.Nonce = 3
	require.NoError(t, m.PutAccount(addr[:], account))

	loaded, err := m.GetAccount(addr[:])
	require.NoError(t, err)
	require.Equal(t, uint64(3), loaded.Nonce)
	require.Equal(t, int64(42), loaded.Balance.Int64())
}

func TestProjectRoundTrip(t *testing.T) {
	m := newManager(t)
	view := m.EscrowState(handle(0xA1))

	_, ok, err := view.ProjectGet()
	require.NoError(t, err)
	require.False(t, ok)

	project := &escrow.Project{
		ID:               1,
		Creator:          handle(2),
		Name:             "Solar Well",
		Description:      "desc",
		MetadataRef:      "ipfs://bafy",
		FundingGoal:      big.NewInt(100),
		FundsRaised:      big.NewInt(7),
		CreatedAt:        1_700_000_000,
		Active:           true,
		IdentityVerified: true,
		ReputationScore:  20,
	}
	require.NoError(t, view.ProjectPut(project))

	loaded, ok, err := view.ProjectGet()
	require.NoError(t, err)
	require.True(t, ok)
	require.Equal(t, project, loaded)
}

func TestMilestoneRoundTrip(t *testing.T) {
	m := newManager(t)
	view := m.EscrowState(handle(0xA1))

	milestone := &escrow.Milestone{
		ID:             2,
		ProjectID:      1,
		Description:    "phase two",
		FundingAmount:  big.NewInt(9),
		ProofRef:       "ipfs://proof",
		Completed:      true,
		VotesFor:       big.NewInt(5),
		VotesAgainst:   big.NewInt(1),
		VotingDeadline: 1_700_600_000,
	}
	require.NoError(t, view.MilestonePut(milestone))
	require.NoError(t, view.MilestoneCountPut(2))

	loaded, ok, err := view.MilestoneGet(2)
	require.NoError(t, err)
	require.True(t, ok)
	require.Equal(t, milestone, loaded)

	count, err := view.MilestoneCount()
	require.NoError(t, err)
	require.Equal(t, uint64(2), count)

	_, ok, err = view.MilestoneGet(3)
	require.NoError(t, err)
	require.False(t, ok)
}

func TestDonationLogAppends(t *testing.T) {
	m := newManager(t)
	view := m.EscrowState(handle(0xA1))
	donor := handle(3)

	list, err := view.DonationList(donor)
	require.NoError(t, err)
	require.Empty(t, list)

	first := &escrow.Donation{Donor: donor, Amount: big.NewInt(1), Timestamp: 10, ProjectID: 1}
	second := &escrow.Donation{Donor: donor, Amount: big.NewInt(2), Timestamp: 20, ProjectID: 1}
	require.NoError(t, view.DonationAppend(first))
	require.NoError(t, view.DonationAppend(second))

	list, err = view.DonationList(donor)
	require.NoError(t, err)
	require.Len(t, list, 2)
	require.Equal(t, first, list[0])
	require.Equal(t, second, list[1])
}

func TestContributionAndVoteReceipts(t *testing.T) {
	m := newManager(t)
	view := m.EscrowState(handle(0xA1))
	donor := handle(3)

	weight, err := view.ContributionGet(donor)
	require.NoError(t, err)
	require.Nil(t, weight)

	require.NoError(t, view.ContributionPut(donor, big.NewInt(6)))
	weight, err = view.ContributionGet(donor)
	require.NoError(t, err)
	require.Equal(t, int64(6), weight.Int64())

	voted, err := view.VoteReceiptHas(1, donor)
	require.NoError(t, err)
	require.False(t, voted)

	require.NoError(t, view.VoteReceiptPut(1, donor))
	voted, err = view.VoteReceiptHas(1, donor)
	require.NoError(t, err)
	require.True(t, voted)

	// Receipts are scoped per milestone.
	voted, err = view.VoteReceiptHas(2, donor)
	require.NoError(t, err)
	require.False(t, voted)
}

func TestHandleNamespacesAreIsolated(t *testing.T) {
	m := newManager(t)
	viewA := m.EscrowState(handle(0xA1))
	viewB := m.EscrowState(handle(0xB2))
	donor := handle(3)

	require.NoError(t, viewA.ContributionPut(donor, big.NewInt(5)))
	require.NoError(t, viewA.ProjectPut(&escrow.Project{ID: 1, Name: "a", FundingGoal: big.NewInt(1), FundsRaised: big.NewInt(0)}))

	_, ok, err := viewB.ProjectGet()
	require.NoError(t, err)
	require.False(t, ok)

	weight, err := viewB.ContributionGet(donor)
	require.NoError(t, err)
	require.Nil(t, weight)

	rewardsA := m.RewardsState(handle(0xA1))
	rewardsB := m.RewardsState(handle(0xB2))
	require.NoError(t, rewardsA.BalancePut(donor, big.NewInt(9)))

	balanceB, err := rewardsB.BalanceGet(donor)
	require.NoError(t, err)
	require.Nil(t, balanceB)
}

func TestRewardsRoundTrip(t *testing.T) {
	m := newManager(t)
	view := m.RewardsState(handle(0xC1))

	_, ok, err := view.IssuerGet()
	require.NoError(t, err)
	require.False(t, ok)

	require.NoError(t, view.IssuerPut(handle(7)))
	issuer, ok, err := view.IssuerGet()
	require.NoError(t, err)
	require.True(t, ok)
	require.Equal(t, handle(7), issuer)

	require.NoError(t, view.TotalSupplyPut(big.NewInt(11)))
	supply, err := view.TotalSupplyGet()
	require.NoError(t, err)
	require.Equal(t, int64(11), supply.Int64())
}

func TestReputationRoundTrip(t *testing.T) {
	m := newManager(t)
	view := m.ReputationState()
	donor := handle(3)

	score, err := view.ScoreGet(donor)
	require.NoError(t, err)
	require.Nil(t, score)

	require.NoError(t, view.ScorePut(donor, big.NewInt(15)))
	score, err = view.ScoreGet(donor)
	require.NoError(t, err)
	require.Equal(t, int64(15), score.Int64())
}

func TestRegistryBookkeeping(t *testing.T) {
	m := newManager(t)
	view := m.RegistryState()

	count, err := view.DeploymentCount()
	require.NoError(t, err)
	require.Equal(t, uint64(0), count)

	entry := &registry.Deployment{
		Ledger:          handle(1),
		LedgerVersion:   "1.0.0",
		Instance:        handle(2),
		InstanceVersion: "1.0.0",
		Timestamp:       1_700_000_000,
	}
	require.NoError(t, view.DeploymentAppend(entry))

	count, err = view.DeploymentCount()
	require.NoError(t, err)
	require.Equal(t, uint64(1), count)

	loaded, ok, err := view.DeploymentGet(0)
	require.NoError(t, err)
	require.True(t, ok)
	require.Equal(t, entry, loaded)

	_, ok, err = view.DeploymentGet(1)
	require.NoError(t, err)
	require.False(t, ok)

	managed, err := view.ManagedHas(handle(1))
	require.NoError(t, err)
	require.False(t, managed)
	require.NoError(t, view.ManagedPut(handle(1)))
	managed, err = view.ManagedHas(handle(1))
	require.NoError(t, err)
	require.True(t, managed)

	nonce, err := view.NonceGet()
	require.NoError(t, err)
	require.Equal(t, uint64(0), nonce)
	require.NoError(t, view.NoncePut(4))
	nonce, err = view.NonceGet()
	require.NoError(t, err)
	require.Equal(t, uint64(4), nonce)
}

func TestAccountsSharedAcrossViews(t *testing.T) {
	m := newManager(t)
	viewA := m.EscrowState(handle(0xA1))
	viewB := m.EscrowState(handle(0xB2))
	addr := handle(9)

	require.NoError(t, viewA.PutAccount(addr[:], &types.Account{Balance: big.NewInt(5)}))
	account, err := viewB.GetAccount(addr[:])
	require.NoError(t, err)
	require.Equal(t, int64(5), account.Balance.Int64())
}
