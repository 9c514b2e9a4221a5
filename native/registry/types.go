package registry

// Deployment is one append-only audit-log entry recording a complete
// ledger/instance pair rollout.
type Deployment struct {
	Ledger          [20]byte
	LedgerVersion   string
	Instance        [20]byte
	InstanceVersion string
	Timestamp       uint64
}

// Clone returns a copy safe for callers to retain.
func (d *Deployment) Clone() *Deployment {
	if d == nil {
		return nil
	}
	clone := *d
	return &clone
}
