// Package registry is the source of truth for admitted contracts, indexed
// by id and grouped by market segment.
package registry

import (
	"errors"
	"sync"
	"time"
)

var ErrContractNotFound = errors.New("contract not found")

// Status of a registered contract. Active is the only status this core
// produces.
type Status string

const StatusActive Status = "Active"

// Contract is a registered market-participant record. Identity fields are
// immutable after registration; there is no update-in-place API.
type Contract struct {
	ID           string                 `json:"id"`
	Version      string                 `json:"version"`
	Segment      string                 `json:"segment"`
	Attributes   map[string]interface{} `json:"attributes,omitempty"`
	Status       Status                 `json:"status"`
	RegisteredAt time.Time              `json:"registered_at"`
}

// ContractRegistry holds registered contracts plus the segment index.
//
// Invariant: every id in a segment list names a registered contract, and
// every registered contract appears in exactly one segment list, in
// registration order.
type ContractRegistry struct {
	mu        sync.RWMutex
	contracts map[string]*Contract
	segments  map[string][]string
	clock     func() time.Time
}

// NewContractRegistry creates an empty registry.
func NewContractRegistry() *ContractRegistry {
	return &ContractRegistry{
		contracts: make(map[string]*Contract),
		segments:  make(map[string][]string),
		clock:     time.Now,
	}
}

// Register stores the contract, stamps it Active with the registration
// time, and appends its id to the segment index. The stored record is
// returned.
func (r *ContractRegistry) Register(c Contract) *Contract {
	r.mu.Lock()
	defer r.mu.Unlock()

	stored := c
	stored.Status = StatusActive
	stored.RegisteredAt = r.clock()

	if prev, ok := r.contracts[c.ID]; ok {
		// Re-registration after reset of a previously seen id: drop the
		// stale segment entry before re-indexing.
		r.removeFromSegment(prev.Segment, c.ID)
	}
	r.contracts[c.ID] = &stored
	r.segments[c.Segment] = append(r.segments[c.Segment], c.ID)
	return &stored
}

func (r *ContractRegistry) removeFromSegment(segment, id string) {
	ids := r.segments[segment]
	for i, existing := range ids {
		if existing == id {
			r.segments[segment] = append(ids[:i:i], ids[i+1:]...)
			break
		}
	}
	if len(r.segments[segment]) == 0 {
		delete(r.segments, segment)
	}
}

// Get retrieves a contract by id.
func (r *ContractRegistry) Get(id string) (*Contract, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	c, ok := r.contracts[id]
	if !ok {
		return nil, ErrContractNotFound
	}
	copied := *c
	return &copied, nil
}

// BySegment returns the contract ids registered under segment, in
// registration order.
func (r *ContractRegistry) BySegment(segment string) []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	ids := make([]string, len(r.segments[segment]))
	copy(ids, r.segments[segment])
	return ids
}

// Segments returns the names of all non-empty segments.
func (r *ContractRegistry) Segments() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]string, 0, len(r.segments))
	for name := range r.segments {
		out = append(out, name)
	}
	return out
}

// List returns copies of all registered contracts.
func (r *ContractRegistry) List() []*Contract {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]*Contract, 0, len(r.contracts))
	for _, c := range r.contracts {
		copied := *c
		out = append(out, &copied)
	}
	return out
}

// Len returns the number of registered contracts.
func (r *ContractRegistry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.contracts)
}

// Clear removes every contract and segment entry. Authorized keys and
// pending updates live elsewhere and are unaffected.
func (r *ContractRegistry) Clear() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.contracts = make(map[string]*Contract)
	r.segments = make(map[string][]string)
}
