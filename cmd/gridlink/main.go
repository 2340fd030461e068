// Command gridlink runs a local demonstration of the update controller:
// it provisions a demo admin key, admits a contract, then pushes and
// applies a signed self-update.
package main

import (
	"crypto/ed25519"
	"encoding/hex"
	"log/slog"
	"os"

	"github.com/gridlink-labs/gridlink/pkg/config"
	"github.com/gridlink-labs/gridlink/pkg/controller"
	"github.com/gridlink-labs/gridlink/pkg/crypto"
	"github.com/gridlink-labs/gridlink/pkg/events"
	"github.com/gridlink-labs/gridlink/pkg/registry"
	"github.com/gridlink-labs/gridlink/pkg/update"
)

func main() {
	logger := slog.New(slog.NewTextHandler(os.Stderr, nil))
	if err := run(logger); err != nil {
		logger.Error("demo failed", "error", err)
		os.Exit(1)
	}
}

func run(logger *slog.Logger) error {
	cfg := config.Load()
	ctrl, err := controller.New(cfg, controller.WithDisplayOutput(os.Stdout))
	if err != nil {
		return err
	}

	for _, name := range []string{
		events.EventStateChange, events.EventRegistered, events.EventRejected,
		events.EventKeyRegistered, events.EventUpdateStaged,
		events.EventUpdateApplied, events.EventUpdateFailed, events.EventReset,
	} {
		ctrl.On(name, func(event string, payload events.Payload) {
			logger.Info("event", "name", event, "payload", payload)
		})
	}

	// Demo key provisioning. Real deployments set GRIDLINK_TRUSTED_KEYS
	// instead and never see a private key here.
	kp, err := ctrl.Bootstrap()
	if err != nil {
		return err
	}
	privKey, err := hex.DecodeString(kp.PrivateKey)
	if err != nil {
		return err
	}
	signer := crypto.NewEd25519SignerFromKey(ed25519.PrivateKey(privKey), kp.KeyID)

	if _, err := ctrl.SubmitContract(registry.Contract{
		ID:      "contract-epex-001",
		Version: "1.0",
		Segment: "energy",
		Attributes: map[string]interface{}{
			"counterparty": "EPEX Spot",
		},
	}); err != nil {
		return err
	}

	code := `(begin
		(define price-cap 180)
		(display "price cap installed:" price-cap))`
	sig, err := signer.Sign([]byte(code))
	if err != nil {
		return err
	}

	pkg := &update.Package{
		Version:   "1.1.0",
		Code:      code,
		Signature: sig,
		KeyID:     kp.KeyID,
		Target:    update.TargetSelf,
	}
	if err := ctrl.ProcessUpdate(pkg); err != nil {
		return err
	}
	if err := ctrl.ApplyPendingUpdates(); err != nil {
		return err
	}

	logger.Info("demo complete",
		"controllerVersion", ctrl.Version(),
		"admissionState", ctrl.State(),
		"journaledEvents", ctrl.Journal().Len(),
	)
	return nil
}
