// Package admission implements the single-flight contract admission state
// machine: Idle → Validation → Active, with Reset as the only path back to
// Idle after a successful submission.
package admission

import (
	"fmt"

	"github.com/gridlink-labs/gridlink/pkg/events"
	"github.com/gridlink-labs/gridlink/pkg/registry"
)

// State of the admission machine.
type State string

const (
	StateIdle       State = "Idle"
	StateValidation State = "Validation"
	StateActive     State = "Active"
)

// Deterministic error codes for admission failures.
const (
	ErrInvalidState   = "ERR_INVALID_STATE"
	ErrMissingID      = "ERR_MISSING_ID"
	ErrMissingVersion = "ERR_MISSING_VERSION"
	ErrMissingSegment = "ERR_MISSING_SEGMENT"
)

// Error is a typed admission failure.
type Error struct {
	Code    string
	Message string
}

func (e *Error) Error() string {
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// CodeOf returns the admission error code carried by err, or "".
func CodeOf(err error) string {
	if e, ok := err.(*Error); ok {
		return e.Code
	}
	return ""
}

// Machine governs contract admission. It is not internally synchronized;
// the owning controller serializes all access.
type Machine struct {
	state    State
	registry *registry.ContractRegistry
	bus      *events.Bus
}

// NewMachine creates a machine resting in Idle.
func NewMachine(reg *registry.ContractRegistry, bus *events.Bus) *Machine {
	return &Machine{
		state:    StateIdle,
		registry: reg,
		bus:      bus,
	}
}

// State returns the current admission state.
func (m *Machine) State() State {
	return m.state
}

func (m *Machine) transition(to State) {
	from := m.state
	m.state = to
	m.bus.Emit(events.EventStateChange, events.Payload{
		"from": string(from),
		"to":   string(to),
	})
}

// Submit validates and registers a contract.
//
// The machine must be Idle; a submission while Validation or Active fails
// with ErrInvalidState without mutating anything or emitting any event.
// After a successful submission the machine rests in Active: this core is
// single-shot, and Reset is the only path back to Idle.
func (m *Machine) Submit(c registry.Contract) (*registry.Contract, error) {
	if m.state != StateIdle {
		return nil, &Error{
			Code:    ErrInvalidState,
			Message: fmt.Sprintf("cannot submit contract while %s", m.state),
		}
	}

	m.transition(StateValidation)

	if err := validate(c); err != nil {
		m.transition(StateIdle)
		m.bus.Emit(events.EventRejected, events.Payload{
			"contract": c,
			"error":    err.Error(),
		})
		return nil, err
	}

	stored := m.registry.Register(c)
	m.transition(StateActive)
	m.bus.Emit(events.EventRegistered, events.Payload{
		"contract": stored,
	})
	return stored, nil
}

// validate checks required fields in priority order: the first missing
// field determines the error.
func validate(c registry.Contract) *Error {
	if c.ID == "" {
		return &Error{Code: ErrMissingID, Message: "contract id is required"}
	}
	if c.Version == "" {
		return &Error{Code: ErrMissingVersion, Message: "contract version is required"}
	}
	if c.Segment == "" {
		return &Error{Code: ErrMissingSegment, Message: "contract segment is required"}
	}
	return nil
}

// Reset unconditionally forces the machine to Idle and clears the contract
// registry. Authorized keys and pending self-updates are deliberately left
// intact: resetting admission must not remove standing trust or in-flight
// update material.
func (m *Machine) Reset() {
	m.state = StateIdle
	m.registry.Clear()
	m.bus.Emit(events.EventReset, events.Payload{})
}
