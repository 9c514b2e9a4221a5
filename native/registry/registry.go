package registry

import (
	"math/big"
	"time"

	"fundforge/core/events"
	"fundforge/core/types"
	"fundforge/crypto"
	nativecommon "fundforge/native/common"
	"fundforge/native/escrow"
	"fundforge/native/reputation"
	"fundforge/native/rewards"
)

const moduleName = "registry"

// State persists the registry's own bookkeeping: the deployment audit log,
// the registry-managed handle set, and the handle-derivation nonce.
type State interface {
	DeploymentAppend(*Deployment) error
	DeploymentGet(index uint64) (*Deployment, bool, error)
	DeploymentCount() (uint64, error)
	ManagedPut(handle [20]byte) error
	ManagedHas(handle [20]byte) (bool, error)
	NonceGet() (uint64, error)
	NoncePut(nonce uint64) error
}

// Backend hands out the scoped state views a registry needs to stamp out
// deployments. Each escrow instance and reward ledger receives its own
// isolated namespace keyed by handle.
type Backend interface {
	RegistryState() State
	EscrowState(handle [20]byte) escrow.State
	RewardsState(handle [20]byte) rewards.State
	ReputationState() reputation.State
}

// Registry creates one isolated escrow instance plus a private reward ledger
// per project and wires the authorization link between them. A defect in one
// deployed instance cannot corrupt another project's funds or votes.
type Registry struct {
	admin     [20]byte
	backend   Backend
	emitter   events.Emitter
	nowFn     func() uint64
	params    escrow.Params
	pauses    nativecommon.PauseView
	ledgers   map[[20]byte]*rewards.Ledger
	instances map[[20]byte]*escrow.Instance
}

// NewRegistry constructs a registry administered by admin over the supplied
// backend.
func NewRegistry(admin [20]byte, backend Backend) *Registry {
	return &Registry{
		admin:     admin,
		backend:   backend,
		emitter:   events.NoopEmitter{},
		nowFn:     func() uint64 { return uint64(time.Now().Unix()) },
		params:    escrow.DefaultParams(),
		ledgers:   make(map[[20]byte]*rewards.Ledger),
		instances: make(map[[20]byte]*escrow.Instance),
	}
}

// Admin returns the registry's administrator identity.
func (r *Registry) Admin() [20]byte { return r.admin }

// SetEmitter configures the event emitter shared with every deployment the
// registry creates. Passing nil resets it to a no-op implementation.
func (r *Registry) SetEmitter(emitter events.Emitter) {
	if emitter == nil {
		r.emitter = events.NoopEmitter{}
		return
	}
	r.emitter = emitter
}

// SetNowFunc overrides the time source used for deployments and propagated to
// new instances. Primarily intended for tests.
func (r *Registry) SetNowFunc(now func() uint64) {
	if now == nil {
		r.nowFn = func() uint64 { return uint64(time.Now().Unix()) }
		return
	}
	r.nowFn = now
}

// SetParams overrides the reward schedule applied to newly deployed
// instances.
func (r *Registry) SetParams(p escrow.Params) { r.params = p.Normalize() }

// SetPauses wires the operator pause switches.
func (r *Registry) SetPauses(p nativecommon.PauseView) { r.pauses = p }

func (r *Registry) emit(evt *types.Event) {
	if r == nil || r.emitter == nil || evt == nil {
		return
	}
	r.emitter.Emit(WrapEvent(evt))
}

func (r *Registry) nextHandle() ([20]byte, error) {
	st := r.backend.RegistryState()
	nonce, err := st.NonceGet()
	if err != nil {
		return [20]byte{}, err
	}
	if err := st.NoncePut(nonce + 1); err != nil {
		return [20]byte{}, err
	}
	return crypto.DeriveHandle(r.admin, nonce), nil
}

// DeployRewardLedger instantiates a fresh reward ledger with the registry
// administrator as its privileged owner and records the handle as
// registry-managed.
func (r *Registry) DeployRewardLedger(caller [20]byte) (*rewards.Ledger, string, error) {
	if r == nil || r.backend == nil {
		return nil, "", ErrNilBackend
	}
	if err := nativecommon.Guard(r.pauses, moduleName); err != nil {
		return nil, "", err
	}
	handle, err := r.nextHandle()
	if err != nil {
		return nil, "", err
	}
	ledger := rewards.NewLedger(handle, r.admin, r.backend.RewardsState(handle))
	ledger.SetEmitter(r.emitter)
	if err := r.backend.RegistryState().ManagedPut(handle); err != nil {
		return nil, "", err
	}
	r.ledgers[handle] = ledger
	r.emit(LedgerDeployedEvent(handle, ledger.Version()))
	return ledger, ledger.Version(), nil
}

// DeployEscrowInstance instantiates a new escrow instance bound to the
// supplied ledger handle and initializes its project. Issuer authorization on
// the ledger is not wired here; callers composing systems by hand must
// authorize the instance themselves.
func (r *Registry) DeployEscrowInstance(caller [20]byte, ledgerHandle [20]byte, init escrow.InitParams) (*escrow.Instance, string, error) {
	if r == nil || r.backend == nil {
		return nil, "", ErrNilBackend
	}
	if err := nativecommon.Guard(r.pauses, moduleName); err != nil {
		return nil, "", err
	}
	if ledgerHandle == ([20]byte{}) {
		return nil, "", ErrInvalidLedgerAddress
	}
	ledger, ok := r.ledgers[ledgerHandle]
	if !ok {
		return nil, "", ErrUnknownHandle
	}
	if init.Creator == ([20]byte{}) {
		return nil, "", ErrInvalidCreatorAddress
	}
	handle, err := r.nextHandle()
	if err != nil {
		return nil, "", err
	}
	instance := escrow.NewInstance(handle, r.backend.EscrowState(handle))
	instance.SetParams(r.params)
	instance.SetEmitter(r.emitter)
	instance.SetNowFunc(r.nowFn)
	instance.SetPauses(r.pauses)
	instance.SetRewards(ledger.Bind(handle))
	instance.SetReputation(reputation.NewLedger(r.backend.ReputationState()))
	if err := instance.Initialize(caller, init); err != nil {
		return nil, "", err
	}
	if err := r.backend.RegistryState().ManagedPut(handle); err != nil {
		return nil, "", err
	}
	r.instances[handle] = instance
	r.emit(InstanceDeployedEvent(handle, init.Creator, instance.Version()))
	return instance, instance.Version(), nil
}

// DeployCompleteSystem stamps out a ledger/instance pair, authorizes the new
// instance as the ledger's sole issuer-delegate, and appends the deployment
// to the audit log. Only the registry administrator may call it.
func (r *Registry) DeployCompleteSystem(caller [20]byte, init escrow.InitParams) (*rewards.Ledger, *escrow.Instance, error) {
	if r == nil || r.backend == nil {
		return nil, nil, ErrNilBackend
	}
	if caller != r.admin {
		return nil, nil, ErrNotAuthorized
	}
	ledger, ledgerVersion, err := r.DeployRewardLedger(caller)
	if err != nil {
		return nil, nil, err
	}
	instance, instanceVersion, err := r.DeployEscrowInstance(caller, ledger.Handle(), init)
	if err != nil {
		return nil, nil, err
	}
	if err := ledger.Authorize(r.admin, instance.Handle()); err != nil {
		return nil, nil, err
	}
	st := r.backend.RegistryState()
	entry := &Deployment{
		Ledger:          ledger.Handle(),
		LedgerVersion:   ledgerVersion,
		Instance:        instance.Handle(),
		InstanceVersion: instanceVersion,
		Timestamp:       r.nowFn(),
	}
	if err := st.DeploymentAppend(entry); err != nil {
		return nil, nil, err
	}
	count, err := st.DeploymentCount()
	if err != nil {
		return nil, nil, err
	}
	r.emit(SystemDeployedEvent(count-1, ledger.Handle(), instance.Handle()))
	return ledger, instance, nil
}

// Deployment reads one audit-log entry by zero-based index.
func (r *Registry) Deployment(index uint64) (*Deployment, error) {
	if r == nil || r.backend == nil {
		return nil, ErrNilBackend
	}
	entry, ok, err := r.backend.RegistryState().DeploymentGet(index)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, ErrInvalidIndex
	}
	return entry.Clone(), nil
}

// LatestDeployment reads the most recent audit-log entry.
func (r *Registry) LatestDeployment() (*Deployment, error) {
	if r == nil || r.backend == nil {
		return nil, ErrNilBackend
	}
	count, err := r.backend.RegistryState().DeploymentCount()
	if err != nil {
		return nil, err
	}
	if count == 0 {
		return nil, ErrNoDeployments
	}
	return r.Deployment(count - 1)
}

// DeploymentCount reports the audit-log length.
func (r *Registry) DeploymentCount() (uint64, error) {
	if r == nil || r.backend == nil {
		return 0, ErrNilBackend
	}
	return r.backend.RegistryState().DeploymentCount()
}

// IsRegistryManaged reports whether the handle was deployed by this registry.
func (r *Registry) IsRegistryManaged(handle [20]byte) (bool, error) {
	if r == nil || r.backend == nil {
		return false, ErrNilBackend
	}
	return r.backend.RegistryState().ManagedHas(handle)
}

// Instance resolves a deployed escrow instance by handle.
func (r *Registry) Instance(handle [20]byte) (*escrow.Instance, error) {
	instance, ok := r.instances[handle]
	if !ok {
		return nil, ErrUnknownHandle
	}
	return instance, nil
}

// Ledger resolves a deployed reward ledger by handle.
func (r *Registry) Ledger(handle [20]byte) (*rewards.Ledger, error) {
	ledger, ok := r.ledgers[handle]
	if !ok {
		return nil, ErrUnknownHandle
	}
	return ledger, nil
}

// UpgradeInstance swaps the logic behind a deployed escrow instance. The
// authorization check is delegated to the instance: only its controlling
// identity (the project creator) may upgrade.
func (r *Registry) UpgradeInstance(handle [20]byte, caller [20]byte, logic escrow.Logic) error {
	instance, err := r.Instance(handle)
	if err != nil {
		return err
	}
	if err := instance.Upgrade(caller, logic); err != nil {
		return err
	}
	r.emit(LogicUpgradedEvent(handle, instance.Version()))
	return nil
}

// UpgradeLedger swaps the logic behind a deployed reward ledger. Only the
// registry administrator may upgrade.
func (r *Registry) UpgradeLedger(handle [20]byte, caller [20]byte, logic rewards.Logic) error {
	ledger, err := r.Ledger(handle)
	if err != nil {
		return err
	}
	if err := ledger.Upgrade(caller, logic); err != nil {
		return err
	}
	r.emit(LogicUpgradedEvent(handle, ledger.Version()))
	return nil
}

// FundingBalance reports the native balance currently escrowed by a deployed
// instance.
func (r *Registry) FundingBalance(handle [20]byte) (*big.Int, error) {
	instance, err := r.Instance(handle)
	if err != nil {
		return nil, err
	}
	self := instance.Handle()
	account, err := r.backend.EscrowState(handle).GetAccount(self[:])
	if err != nil {
		return nil, err
	}
	return types.EnsureAccount(account).Balance, nil
}
