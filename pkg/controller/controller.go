// Package controller wires the admission machine, registries, update
// pipeline, interpreter, and event bus into one owned controller instance.
// Nothing here is process-global: independent controllers can coexist,
// which keeps tests deterministic.
package controller

import (
	"fmt"
	"io"
	"sync"

	"github.com/gridlink-labs/gridlink/pkg/admission"
	"github.com/gridlink-labs/gridlink/pkg/config"
	"github.com/gridlink-labs/gridlink/pkg/events"
	"github.com/gridlink-labs/gridlink/pkg/registry"
	"github.com/gridlink-labs/gridlink/pkg/sexpr"
	"github.com/gridlink-labs/gridlink/pkg/trust"
	"github.com/gridlink-labs/gridlink/pkg/update"
)

// Controller is the embedded update controller.
//
// All public operations are serialized by one coarse lock: the underlying
// components assume cooperative, non-preemptive access. Event handlers run
// synchronously inside the emitting operation while that lock is held, so
// a handler must never call back into the controller.
type Controller struct {
	mu        sync.Mutex
	bus       *events.Bus
	journal   *events.Journal
	keys      *trust.KeyRegistry
	contracts *registry.ContractRegistry
	machine   *admission.Machine
	interp    *sexpr.Interp
	pipeline  *update.Pipeline
}

// Option configures a Controller.
type Option func(*options)

type options struct {
	displayOutput io.Writer
}

// WithDisplayOutput directs the extension language's display primitive to w.
func WithDisplayOutput(w io.Writer) Option {
	return func(o *options) { o.displayOutput = w }
}

// New creates a controller from cfg. When cfg names a trusted-keys
// provisioning file, those keys are registered before the controller is
// returned.
func New(cfg *config.Config, opts ...Option) (*Controller, error) {
	if cfg == nil {
		cfg = config.Load()
	}
	var o options
	for _, opt := range opts {
		opt(&o)
	}

	interpOpts := []sexpr.Option{sexpr.WithStepLimit(cfg.InterpreterStepLimit)}
	if o.displayOutput != nil {
		interpOpts = append(interpOpts, sexpr.WithOutput(o.displayOutput))
	}

	bus := events.NewBus()
	journal := events.NewJournal()
	journal.Attach(bus)

	keys := trust.NewKeyRegistry()
	contracts := registry.NewContractRegistry()
	interp := sexpr.New(interpOpts...)

	c := &Controller{
		bus:       bus,
		journal:   journal,
		keys:      keys,
		contracts: contracts,
		machine:   admission.NewMachine(contracts, bus),
		interp:    interp,
		pipeline:  update.NewPipeline(keys, interp, bus, cfg.InitialVersion),
	}

	if cfg.TrustedKeysPath != "" {
		provisioned, err := config.LoadTrustedKeys(cfg.TrustedKeysPath)
		if err != nil {
			return nil, fmt.Errorf("loading trusted keys: %w", err)
		}
		for _, k := range provisioned.Keys {
			c.RegisterPublicKey(k.KeyID, k.PublicKey)
		}
	}
	return c, nil
}

// SubmitContract runs the admission state machine over contract.
func (c *Controller) SubmitContract(contract registry.Contract) (*registry.Contract, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.machine.Submit(contract)
}

// State returns the current admission state.
func (c *Controller) State() admission.State {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.machine.State()
}

// Version returns the current controller version.
func (c *Controller) Version() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.pipeline.Version()
}

// RegisterPublicKey upserts public key material under keyID and emits
// key-registered. It never fails.
func (c *Controller) RegisterPublicKey(keyID, publicKey string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.keys.Register(keyID, publicKey)
	c.bus.Emit(events.EventKeyRegistered, events.Payload{"keyId": keyID})
}

// ProcessUpdate runs the update pipeline's gate sequence over pkg.
func (c *Controller) ProcessUpdate(pkg *update.Package) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.pipeline.Process(pkg)
}

// ProcessUpdateJSON decodes a wire-format package and runs the pipeline
// over it.
func (c *Controller) ProcessUpdateJSON(raw []byte) error {
	pkg, err := update.DecodePackage(raw)
	if err != nil {
		return err
	}
	return c.ProcessUpdate(pkg)
}

// ApplyPendingUpdates executes the most recently staged self-update.
func (c *Controller) ApplyPendingUpdates() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.pipeline.ApplyPending()
}

// PendingUpdates returns the number of staged self-updates.
func (c *Controller) PendingUpdates() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.pipeline.PendingCount()
}

// Reset forces the admission machine to Idle and clears the contract
// registry. Authorized keys and pending self-updates survive.
func (c *Controller) Reset() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.machine.Reset()
}

// Bootstrap generates a demo keypair registered under "admin" and emits
// key-registered. Demo and test use only; production deployments provision
// keys through config.LoadTrustedKeys instead.
func (c *Controller) Bootstrap() (trust.Keypair, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	kp, err := c.keys.Bootstrap()
	if err != nil {
		return trust.Keypair{}, err
	}
	c.bus.Emit(events.EventKeyRegistered, events.Payload{"keyId": kp.KeyID})
	return kp, nil
}

// On subscribes handler to the named event.
func (c *Controller) On(event string, handler events.Handler) events.Unsubscribe {
	return c.bus.On(event, handler)
}

// Contract retrieves a registered contract by id.
func (c *Controller) Contract(id string) (*registry.Contract, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.contracts.Get(id)
}

// Segment returns the contract ids registered under segment, in
// registration order.
func (c *Controller) Segment(segment string) []string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.contracts.BySegment(segment)
}

// AuthorizedKeys returns the number of registered public keys.
func (c *Controller) AuthorizedKeys() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.keys.Len()
}

// Journal returns the append-only record of emitted events.
func (c *Controller) Journal() *events.Journal {
	return c.journal
}
