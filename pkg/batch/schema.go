// Package batch ingests JSON batch documents — an issuer's day-to-day
// input format — into validated mtc.Assertion values ready for the
// Merkle tree builder, and produces a canonical audit hash of the
// ingested document for the batch index.
package batch

import (
	_ "embed"
	"fmt"
	"strings"
	"sync"

	"github.com/Masterminds/semver/v3"
	"github.com/santhosh-tekuri/jsonschema/v5"
)

//go:embed schema/batch.schema.json
var schemaDoc string

const schemaURL = "https://mtc.invalid/schema/batch.schema.json"

// SupportedSchemaVersions constrains which batch-document schema_version
// values this ingester accepts; bumped when the embedded schema gains a
// backward-incompatible field.
const SupportedSchemaVersions = ">=1.0.0, <2.0.0"

var (
	compileOnce  sync.Once
	compiled     *jsonschema.Schema
	compileErr   error
	versionRange *semver.Constraints
)

func compiler() (*jsonschema.Schema, *semver.Constraints, error) {
	compileOnce.Do(func() {
		c := jsonschema.NewCompiler()
		c.Draft = jsonschema.Draft2020
		if err := c.AddResource(schemaURL, strings.NewReader(schemaDoc)); err != nil {
			compileErr = fmt.Errorf("batch: load embedded schema: %w", err)
			return
		}
		compiled, compileErr = c.Compile(schemaURL)
		if compileErr != nil {
			compileErr = fmt.Errorf("batch: compile embedded schema: %w", compileErr)
			return
		}
		versionRange, compileErr = semver.NewConstraint(SupportedSchemaVersions)
		if compileErr != nil {
			compileErr = fmt.Errorf("batch: parse schema version constraint: %w", compileErr)
		}
	})
	return compiled, versionRange, compileErr
}

// checkSchemaVersion verifies docVersion satisfies SupportedSchemaVersions.
func checkSchemaVersion(docVersion string) error {
	_, constraint, err := compiler()
	if err != nil {
		return err
	}
	v, err := semver.NewVersion(docVersion)
	if err != nil {
		return fmt.Errorf("batch: invalid schema_version %q: %w", docVersion, err)
	}
	if !constraint.Check(v) {
		return fmt.Errorf("batch: schema_version %s does not satisfy %s", docVersion, SupportedSchemaVersions)
	}
	return nil
}
