// Package update implements the OTA verification pipeline: structural
// validation, key authorization, signature verification, anti-downgrade
// enforcement, and staged or immediate execution of accepted payloads.
package update

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/santhosh-tekuri/jsonschema/v5"
)

// TargetSelf routes an update to controller self-update staging. Any other
// target value names a contract.
const TargetSelf = "self"

// Package is the update wire shape. Code carries extension-language source;
// Signature is the hex Ed25519 signature over Code by the key registered
// under KeyID.
type Package struct {
	Version    string `json:"version"`
	Code       string `json:"code"`
	Signature  string `json:"signature"`
	KeyID      string `json:"keyId"`
	Target     string `json:"target"`
	ContractID string `json:"contractId,omitempty"`
}

// packageSchemaJSON is the wire-format contract for incoming packages.
const packageSchemaJSON = `{
	"$schema": "https://json-schema.org/draft/2020-12/schema",
	"type": "object",
	"required": ["version", "code", "signature", "keyId", "target"],
	"properties": {
		"version":    {"type": "string", "minLength": 1},
		"code":       {"type": "string", "minLength": 1},
		"signature":  {"type": "string", "minLength": 1},
		"keyId":      {"type": "string", "minLength": 1},
		"target":     {"type": "string", "minLength": 1},
		"contractId": {"type": "string"}
	}
}`

var packageSchema = mustCompileSchema()

func mustCompileSchema() *jsonschema.Schema {
	c := jsonschema.NewCompiler()
	c.Draft = jsonschema.Draft2020
	const url = "https://gridlink.schemas.local/update-package.schema.json"
	if err := c.AddResource(url, strings.NewReader(packageSchemaJSON)); err != nil {
		panic(fmt.Sprintf("update package schema load failed: %v", err))
	}
	return c.MustCompile(url)
}

// DecodePackage parses raw JSON into a Package, validating it against the
// wire schema. Any structural defect maps to ErrInvalidPackageFormat.
func DecodePackage(raw []byte) (*Package, error) {
	var generic interface{}
	if err := json.Unmarshal(raw, &generic); err != nil {
		return nil, &Error{
			Code:    ErrInvalidPackageFormat,
			Message: fmt.Sprintf("malformed update package: %v", err),
		}
	}
	if err := packageSchema.Validate(generic); err != nil {
		return nil, &Error{
			Code:    ErrInvalidPackageFormat,
			Message: fmt.Sprintf("update package schema violation: %v", err),
		}
	}
	var pkg Package
	if err := json.Unmarshal(raw, &pkg); err != nil {
		return nil, &Error{
			Code:    ErrInvalidPackageFormat,
			Message: fmt.Sprintf("malformed update package: %v", err),
		}
	}
	return &pkg, nil
}

// validateStructure is the pipeline's first gate for packages constructed
// in process rather than decoded from the wire.
func validateStructure(pkg *Package) *Error {
	missing := ""
	switch {
	case pkg.Version == "":
		missing = "version"
	case pkg.Code == "":
		missing = "code"
	case pkg.Signature == "":
		missing = "signature"
	case pkg.KeyID == "":
		missing = "keyId"
	}
	if missing != "" {
		return &Error{
			Code:    ErrInvalidPackageFormat,
			Message: fmt.Sprintf("update package missing required field %q", missing),
		}
	}
	return nil
}
