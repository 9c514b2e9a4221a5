package state

import (
	"encoding/binary"
	"errors"
	"fmt"
	"math/big"

	ethcrypto "github.com/ethereum/go-ethereum/crypto"
	"github.com/ethereum/go-ethereum/rlp"

	"fundforge/core/types"
	"fundforge/native/escrow"
	"fundforge/native/registry"
	"fundforge/native/reputation"
	"fundforge/native/rewards"
	"fundforge/storage"
)

// Manager persists the full escrow system state over a generic key-value
// database. Records are RLP encoded and stored under keccak256-hashed,
// prefixed keys; every deployed instance and ledger gets its own namespace
// keyed by handle, which is what enforces the per-project isolation the
// registry promises.
type Manager struct {
	db storage.Database
}

// NewManager creates a state manager operating on the provided database.
func NewManager(db storage.Database) *Manager {
	return &Manager{db: db}
}

var (
	accountPrefix        = []byte("account:")
	projectPrefix        = []byte("escrow:project:")
	milestonePrefix      = []byte("escrow:milestone:")
	milestoneCountPrefix = []byte("escrow:milestone-count:")
	donationPrefix       = []byte("escrow:donations:")
	contributionPrefix   = []byte("escrow:contribution:")
	votePrefix           = []byte("escrow:vote:")
	rewardBalancePrefix  = []byte("rewards:balance:")
	rewardSupplyPrefix   = []byte("rewards:supply:")
	rewardIssuerPrefix   = []byte("rewards:issuer:")
	reputationPrefix     = []byte("reputation:score:")
	deploymentPrefix     = []byte("registry:deployment:")
	deploymentCountKey   = []byte("registry:deployment-count")
	managedPrefix        = []byte("registry:managed:")
	nonceKey             = []byte("registry:nonce")
)

func kvKey(parts ...[]byte) []byte {
	return ethcrypto.Keccak256(parts...)
}

func u64Key(v uint64) []byte {
	var buf [8]byte
	binary.BigEndian.PutUint64(buf[:], v)
	return buf[:]
}

func (m *Manager) put(key []byte, value interface{}) error {
	if len(key) == 0 {
		return fmt.Errorf("state: key must not be empty")
	}
	encoded, err := rlp.EncodeToBytes(value)
	if err != nil {
		return err
	}
	return m.db.Put(key, encoded)
}

// get decodes the value stored under key into out. The boolean reports
// whether the key existed.
func (m *Manager) get(key []byte, out interface{}) (bool, error) {
	data, err := m.db.Get(key)
	if err != nil {
		if errors.Is(err, storage.ErrKeyNotFound) {
			return false, nil
		}
		return false, err
	}
	if out == nil {
		return true, nil
	}
	if err := rlp.DecodeBytes(data, out); err != nil {
		return false, err
	}
	return true, nil
}

func (m *Manager) getBig(key []byte) (*big.Int, error) {
	value := new(big.Int)
	ok, err := m.get(key, value)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, nil
	}
	return value, nil
}

func (m *Manager) getUint(key []byte) (uint64, error) {
	var value uint64
	if _, err := m.get(key, &value); err != nil {
		return 0, err
	}
	return value, nil
}

// --- Accounts (shared across all instances) ---

// GetAccount loads the native account for addr, returning a zero account when
// none is stored yet.
func (m *Manager) GetAccount(addr []byte) (*types.Account, error) {
	account := new(types.Account)
	ok, err := m.get(kvKey(accountPrefix, addr), account)
	if err != nil {
		return nil, err
	}
	if !ok {
		return types.EnsureAccount(nil), nil
	}
	return types.EnsureAccount(account), nil
}

// PutAccount stores the native account for addr.
func (m *Manager) PutAccount(addr []byte, account *types.Account) error {
	return m.put(kvKey(accountPrefix, addr), types.EnsureAccount(account))
}

// --- Backend wiring ---

// EscrowState returns the isolated state view for one escrow instance.
func (m *Manager) EscrowState(handle [20]byte) escrow.State {
	return &escrowView{m: m, handle: handle}
}

// RewardsState returns the isolated state view for one reward ledger.
func (m *Manager) RewardsState(handle [20]byte) rewards.State {
	return &rewardsView{m: m, handle: handle}
}

// ReputationState returns the shared global donor reputation view.
func (m *Manager) ReputationState() reputation.State {
	return &reputationView{m: m}
}

// RegistryState returns the registry bookkeeping view.
func (m *Manager) RegistryState() registry.State {
	return &registryView{m: m}
}

// --- Escrow instance view ---

type escrowView struct {
	m      *Manager
	handle [20]byte
}

func (v *escrowView) ProjectGet() (*escrow.Project, bool, error) {
	project := new(escrow.Project)
	ok, err := v.m.get(kvKey(projectPrefix, v.handle[:]), project)
	if err != nil || !ok {
		return nil, false, err
	}
	return project, true, nil
}

func (v *escrowView) ProjectPut(project *escrow.Project) error {
	if project == nil {
		return fmt.Errorf("state: project must not be nil")
	}
	return v.m.put(kvKey(projectPrefix, v.handle[:]), project)
}

func (v *escrowView) MilestoneGet(id uint64) (*escrow.Milestone, bool, error) {
	milestone := new(escrow.Milestone)
	ok, err := v.m.get(kvKey(milestonePrefix, v.handle[:], u64Key(id)), milestone)
	if err != nil || !ok {
		return nil, false, err
	}
	return milestone, true, nil
}

func (v *escrowView) MilestonePut(milestone *escrow.Milestone) error {
	if milestone == nil {
		return fmt.Errorf("state: milestone must not be nil")
	}
	return v.m.put(kvKey(milestonePrefix, v.handle[:], u64Key(milestone.ID)), milestone)
}

func (v *escrowView) MilestoneCount() (uint64, error) {
	return v.m.getUint(kvKey(milestoneCountPrefix, v.handle[:]))
}

func (v *escrowView) MilestoneCountPut(count uint64) error {
	return v.m.put(kvKey(milestoneCountPrefix, v.handle[:]), count)
}

func (v *escrowView) DonationAppend(donation *escrow.Donation) error {
	if donation == nil {
		return fmt.Errorf("state: donation must not be nil")
	}
	key := kvKey(donationPrefix, v.handle[:], donation.Donor[:])
	var list []*escrow.Donation
	if _, err := v.m.get(key, &list); err != nil {
		return err
	}
	list = append(list, donation)
	return v.m.put(key, list)
}

func (v *escrowView) DonationList(donor [20]byte) ([]*escrow.Donation, error) {
	var list []*escrow.Donation
	if _, err := v.m.get(kvKey(donationPrefix, v.handle[:], donor[:]), &list); err != nil {
		return nil, err
	}
	return list, nil
}

func (v *escrowView) ContributionGet(donor [20]byte) (*big.Int, error) {
	return v.m.getBig(kvKey(contributionPrefix, v.handle[:], donor[:]))
}

func (v *escrowView) ContributionPut(donor [20]byte, amount *big.Int) error {
	if amount == nil {
		amount = big.NewInt(0)
	}
	return v.m.put(kvKey(contributionPrefix, v.handle[:], donor[:]), amount)
}

func (v *escrowView) VoteReceiptHas(milestoneID uint64, voter [20]byte) (bool, error) {
	return v.m.get(kvKey(votePrefix, v.handle[:], u64Key(milestoneID), voter[:]), nil)
}

func (v *escrowView) VoteReceiptPut(milestoneID uint64, voter [20]byte) error {
	return v.m.put(kvKey(votePrefix, v.handle[:], u64Key(milestoneID), voter[:]), true)
}

func (v *escrowView) GetAccount(addr []byte) (*types.Account, error) {
	return v.m.GetAccount(addr)
}

func (v *escrowView) PutAccount(addr []byte, account *types.Account) error {
	return v.m.PutAccount(addr, account)
}

// --- Reward ledger view ---

type rewardsView struct {
	m      *Manager
	handle [20]byte
}

func (v *rewardsView) BalanceGet(addr [20]byte) (*big.Int, error) {
	return v.m.getBig(kvKey(rewardBalancePrefix, v.handle[:], addr[:]))
}

func (v *rewardsView) BalancePut(addr [20]byte, amount *big.Int) error {
	if amount == nil {
		amount = big.NewInt(0)
	}
	return v.m.put(kvKey(rewardBalancePrefix, v.handle[:], addr[:]), amount)
}

func (v *rewardsView) TotalSupplyGet() (*big.Int, error) {
	return v.m.getBig(kvKey(rewardSupplyPrefix, v.handle[:]))
}

func (v *rewardsView) TotalSupplyPut(amount *big.Int) error {
	if amount == nil {
		amount = big.NewInt(0)
	}
	return v.m.put(kvKey(rewardSupplyPrefix, v.handle[:]), amount)
}

func (v *rewardsView) IssuerGet() ([20]byte, bool, error) {
	var issuer [20]byte
	ok, err := v.m.get(kvKey(rewardIssuerPrefix, v.handle[:]), &issuer)
	if err != nil || !ok {
		return [20]byte{}, false, err
	}
	return issuer, true, nil
}

func (v *rewardsView) IssuerPut(issuer [20]byte) error {
	return v.m.put(kvKey(rewardIssuerPrefix, v.handle[:]), issuer)
}

// --- Reputation view ---

type reputationView struct {
	m *Manager
}

func (v *reputationView) ScoreGet(addr [20]byte) (*big.Int, error) {
	return v.m.getBig(kvKey(reputationPrefix, addr[:]))
}

func (v *reputationView) ScorePut(addr [20]byte, score *big.Int) error {
	if score == nil {
		score = big.NewInt(0)
	}
	return v.m.put(kvKey(reputationPrefix, addr[:]), score)
}

// --- Registry view ---

type registryView struct {
	m *Manager
}

func (v *registryView) DeploymentAppend(entry *registry.Deployment) error {
	if entry == nil {
		return fmt.Errorf("state: deployment must not be nil")
	}
	count, err := v.DeploymentCount()
	if err != nil {
		return err
	}
	if err := v.m.put(kvKey(deploymentPrefix, u64Key(count)), entry); err != nil {
		return err
	}
	return v.m.put(kvKey(deploymentCountKey), count+1)
}

func (v *registryView) DeploymentGet(index uint64) (*registry.Deployment, bool, error) {
	entry := new(registry.Deployment)
	ok, err := v.m.get(kvKey(deploymentPrefix, u64Key(index)), entry)
	if err != nil || !ok {
		return nil, false, err
	}
	return entry, true, nil
}

func (v *registryView) DeploymentCount() (uint64, error) {
	return v.m.getUint(kvKey(deploymentCountKey))
}

func (v *registryView) ManagedPut(handle [20]byte) error {
	return v.m.put(kvKey(managedPrefix, handle[:]), true)
}

func (v *registryView) ManagedHas(handle [20]byte) (bool, error) {
	return v.m.get(kvKey(managedPrefix, handle[:]), nil)
}

func (v *registryView) NonceGet() (uint64, error) {
	return v.m.getUint(kvKey(nonceKey))
}

func (v *registryView) NoncePut(nonce uint64) error {
	return v.m.put(kvKey(nonceKey), nonce)
}
