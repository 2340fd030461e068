package events

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/gowebpki/jcs"
)

// Record is one journaled event. PayloadHash is the SHA-256 of the
// RFC 8785 canonical JSON form of the payload, so two observers journaling
// the same event sequence produce identical hashes regardless of map
// iteration order.
type Record struct {
	EventID     string    `json:"event_id"`
	Event       string    `json:"event"`
	Sequence    uint64    `json:"sequence"`
	RecordedAt  time.Time `json:"recorded_at"`
	Payload     Payload   `json:"payload,omitempty"`
	PayloadHash string    `json:"payload_hash"`
	ChainHash   string    `json:"chain_hash"`
}

// Journal is an append-only in-memory record of emitted events with a
// cumulative chain hash. Attach it to a Bus to capture everything the
// controller emits.
type Journal struct {
	mu        sync.RWMutex
	records   []Record
	sequence  uint64
	chainHash string
	clock     func() time.Time
}

// NewJournal creates an empty journal.
func NewJournal() *Journal {
	return &Journal{clock: time.Now}
}

// Attach subscribes the journal to every well-known controller event on
// the bus and returns a single unsubscribe covering all of them.
func (j *Journal) Attach(bus *Bus) Unsubscribe {
	names := []string{
		EventStateChange, EventRejected, EventRegistered, EventKeyRegistered,
		EventUpdateStaged, EventUpdateApplied, EventUpdateFailed, EventReset,
	}
	unsubs := make([]Unsubscribe, 0, len(names))
	for _, name := range names {
		unsubs = append(unsubs, bus.On(name, j.record))
	}
	return func() {
		for _, u := range unsubs {
			u()
		}
	}
}

func (j *Journal) record(event string, payload Payload) {
	// Hash failures are not expected for controller payloads; record the
	// event anyway with an empty hash rather than dropping it.
	payloadHash, _ := canonicalHash(payload)

	j.mu.Lock()
	defer j.mu.Unlock()

	j.sequence++
	rec := Record{
		EventID:     uuid.NewString(),
		Event:       event,
		Sequence:    j.sequence,
		RecordedAt:  j.clock().UTC(),
		Payload:     payload,
		PayloadHash: payloadHash,
	}
	chain, _ := canonicalHash(map[string]interface{}{
		"event":         rec.Event,
		"sequence":      rec.Sequence,
		"payload_hash":  rec.PayloadHash,
		"previous_hash": j.chainHash,
	})
	rec.ChainHash = chain
	j.chainHash = chain
	j.records = append(j.records, rec)
}

// Records returns a copy of all journaled records in emission order.
func (j *Journal) Records() []Record {
	j.mu.RLock()
	defer j.mu.RUnlock()

	out := make([]Record, len(j.records))
	copy(out, j.records)
	return out
}

// Len returns the number of journaled records.
func (j *Journal) Len() int {
	j.mu.RLock()
	defer j.mu.RUnlock()
	return len(j.records)
}

// ChainHash returns the cumulative hash over all journaled records.
func (j *Journal) ChainHash() string {
	j.mu.RLock()
	defer j.mu.RUnlock()
	return j.chainHash
}

// canonicalHash computes the SHA-256 hex digest of the RFC 8785 canonical
// JSON form of v.
func canonicalHash(v interface{}) (string, error) {
	raw, err := json.Marshal(v)
	if err != nil {
		return "", fmt.Errorf("journal: marshal failed: %w", err)
	}
	canonical, err := jcs.Transform(raw)
	if err != nil {
		return "", fmt.Errorf("journal: canonicalization failed: %w", err)
	}
	sum := sha256.Sum256(canonical)
	return hex.EncodeToString(sum[:]), nil
}
