package update

import (
	"fmt"

	"github.com/gridlink-labs/gridlink/pkg/crypto"
	"github.com/gridlink-labs/gridlink/pkg/events"
	"github.com/gridlink-labs/gridlink/pkg/sexpr"
	"github.com/gridlink-labs/gridlink/pkg/trust"
	"github.com/gridlink-labs/gridlink/pkg/versioning"
)

// Deterministic error codes for pipeline failures.
const (
	ErrInvalidPackageFormat     = "ERR_INVALID_PACKAGE_FORMAT"
	ErrUnauthorizedKey          = "ERR_UNAUTHORIZED_KEY"
	ErrInvalidSignature         = "ERR_INVALID_SIGNATURE"
	ErrVersionDowngradeRejected = "ERR_VERSION_DOWNGRADE_REJECTED"
	ErrNoPendingUpdates         = "ERR_NO_PENDING_UPDATES"
	ErrExecutionFailed          = "ERR_EXECUTION_FAILED"
)

// StatusSuccess is the status carried by update-applied events.
const StatusSuccess = "Success"

// Error is a typed pipeline failure.
type Error struct {
	Code    string
	Message string
}

func (e *Error) Error() string {
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// CodeOf returns the pipeline error code carried by err, or "".
func CodeOf(err error) string {
	if e, ok := err.(*Error); ok {
		return e.Code
	}
	return ""
}

// Pipeline validates update packages through a fixed gate sequence and
// routes accepted ones to self-update staging or immediate contract-update
// execution. It owns the controller version and the pending self-update
// stack. Not internally synchronized; the owning controller serializes
// access.
type Pipeline struct {
	keys    *trust.KeyRegistry
	interp  *sexpr.Interp
	bus     *events.Bus
	version string
	pending []*Package
}

// NewPipeline creates a pipeline gating against initialVersion.
func NewPipeline(keys *trust.KeyRegistry, interp *sexpr.Interp, bus *events.Bus, initialVersion string) *Pipeline {
	return &Pipeline{
		keys:    keys,
		interp:  interp,
		bus:     bus,
		version: initialVersion,
	}
}

// Version returns the current controller version.
func (p *Pipeline) Version() string {
	return p.version
}

// PendingCount returns the number of staged self-updates.
func (p *Pipeline) PendingCount() int {
	return len(p.pending)
}

// Process runs the ordered gate sequence over pkg, short-circuiting on the
// first failure. No state is mutated on any failure path.
//
// Gates: structure, key authorization, signature over code, anti-downgrade
// against the controller version, then routing. The downgrade gate applies
// uniformly to contract-targeted updates as well: the controller version is
// the single global gate for all code execution, not a per-contract
// version.
func (p *Pipeline) Process(pkg *Package) error {
	// 1. Structure.
	if err := validateStructure(pkg); err != nil {
		return err
	}

	// 2. Authorization.
	publicKey, ok := p.keys.Lookup(pkg.KeyID)
	if !ok {
		return &Error{
			Code:    ErrUnauthorizedKey,
			Message: fmt.Sprintf("key %q is not authorized", pkg.KeyID),
		}
	}

	// 3. Signature.
	verified, err := crypto.Verify(publicKey, pkg.Signature, []byte(pkg.Code))
	if err != nil || !verified {
		return &Error{
			Code:    ErrInvalidSignature,
			Message: fmt.Sprintf("signature verification failed for key %q", pkg.KeyID),
		}
	}

	// 4. Anti-downgrade. An unparseable version cannot be proven to not be
	// a downgrade, so it is rejected as structurally invalid.
	downgrade, err := versioning.IsDowngrade(pkg.Version, p.version)
	if err != nil {
		return &Error{
			Code:    ErrInvalidPackageFormat,
			Message: err.Error(),
		}
	}
	if downgrade {
		return &Error{
			Code:    ErrVersionDowngradeRejected,
			Message: fmt.Sprintf("update version %s is older than controller version %s", pkg.Version, p.version),
		}
	}

	// 5. Routing.
	if pkg.Target == TargetSelf {
		p.stage(pkg)
		return nil
	}
	return p.executeContractUpdate(pkg)
}

// stage appends an accepted self-update to the pending stack. All gates
// have already passed; staging never fails.
func (p *Pipeline) stage(pkg *Package) {
	p.pending = append(p.pending, pkg)
	p.bus.Emit(events.EventUpdateStaged, events.Payload{
		"version": pkg.Version,
		"target":  TargetSelf,
	})
}

// executeContractUpdate runs a contract-targeted payload immediately
// against the shared extension environment. The pipeline itself mutates no
// registry entity; any such effect must come from the executed code through
// whatever primitives the deployment binds, and this core binds none.
func (p *Pipeline) executeContractUpdate(pkg *Package) error {
	target := pkg.ContractID
	if target == "" {
		target = "contract"
	}

	if _, err := p.interp.Run(pkg.Code); err != nil {
		p.bus.Emit(events.EventUpdateFailed, events.Payload{
			"version": pkg.Version,
			"target":  target,
			"error":   err.Error(),
		})
		return &Error{Code: ErrExecutionFailed, Message: err.Error()}
	}

	p.bus.Emit(events.EventUpdateApplied, events.Payload{
		"version": pkg.Version,
		"target":  target,
		"status":  StatusSuccess,
	})
	return nil
}

// ApplyPending executes the most recently staged self-update. On success
// the controller version becomes the applied update's version and the
// entire pending stack is discarded, earlier entries included. On
// execution failure nothing changes: the version stays, the stack stays.
//
// Apply is never automatic; acceptance by Process and running on the
// controller are deliberately decoupled.
func (p *Pipeline) ApplyPending() error {
	if len(p.pending) == 0 {
		return &Error{Code: ErrNoPendingUpdates, Message: "no pending updates to apply"}
	}

	candidate := p.pending[len(p.pending)-1]
	if _, err := p.interp.Run(candidate.Code); err != nil {
		p.bus.Emit(events.EventUpdateFailed, events.Payload{
			"version": candidate.Version,
			"target":  TargetSelf,
			"error":   err.Error(),
		})
		return &Error{Code: ErrExecutionFailed, Message: err.Error()}
	}

	p.version = candidate.Version
	p.pending = nil
	p.bus.Emit(events.EventUpdateApplied, events.Payload{
		"version": candidate.Version,
		"target":  TargetSelf,
		"status":  StatusSuccess,
	})
	return nil
}
