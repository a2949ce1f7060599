// Package manifest reads and writes the JSON artifacts that connect the
// pipeline stages: Inventory, Plan, ApplyLog, and RollbackLog. Artifacts are
// read and written wholesale; writes are atomic via a temp file and rename,
// so a crash never leaves a partial manifest visible.
package manifest

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/jamesainslie/tidy/pkg/tidy/types"
)

// ErrMalformed indicates a manifest that parsed as JSON but is missing
// required fields. It is a fatal configuration error.
var ErrMalformed = errors.New("malformed manifest")

// ReadInventory loads and validates an inventory manifest.
func ReadInventory(path string) (types.Inventory, error) {
	var inv types.Inventory
	if err := readJSON(path, &inv); err != nil {
		return nil, err
	}
	for i, rec := range inv {
		if rec.SourcePath == "" {
			return nil, fmt.Errorf("%w: %s: record %d has no source_path", ErrMalformed, path, i)
		}
	}
	return inv, nil
}

// WriteInventory writes an inventory manifest atomically.
func WriteInventory(path string, inv types.Inventory) error {
	if inv == nil {
		inv = types.Inventory{}
	}
	return writeJSON(path, inv)
}

// ReadPlan loads and validates a plan manifest.
func ReadPlan(path string) (types.Plan, error) {
	var plan types.Plan
	if err := readJSON(path, &plan); err != nil {
		return nil, err
	}
	for i, op := range plan {
		if op.SourcePath == "" || op.DestPath == "" || op.Category == "" {
			return nil, fmt.Errorf("%w: %s: operation %d is incomplete", ErrMalformed, path, i)
		}
	}
	return plan, nil
}

// WritePlan writes a plan manifest atomically.
func WritePlan(path string, plan types.Plan) error {
	if plan == nil {
		plan = types.Plan{}
	}
	return writeJSON(path, plan)
}

// ReadApplyLog loads and validates an apply log manifest.
func ReadApplyLog(path string) (*types.ApplyLog, error) {
	var log types.ApplyLog
	if err := readJSON(path, &log); err != nil {
		return nil, err
	}
	if log.Timestamp.IsZero() {
		return nil, fmt.Errorf("%w: %s: missing timestamp", ErrMalformed, path)
	}
	for i, rec := range log.Records {
		switch rec.Status {
		case types.StatusMoved, types.StatusSkipped, types.StatusFailed:
		default:
			return nil, fmt.Errorf("%w: %s: record %d has status %q", ErrMalformed, path, i, rec.Status)
		}
	}
	return &log, nil
}

// WriteApplyLog writes an apply log manifest atomically.
func WriteApplyLog(path string, log *types.ApplyLog) error {
	return writeJSON(path, log)
}

// ReadRollbackLog loads a rollback log manifest.
func ReadRollbackLog(path string) (*types.RollbackLog, error) {
	var log types.RollbackLog
	if err := readJSON(path, &log); err != nil {
		return nil, err
	}
	return &log, nil
}

// WriteRollbackLog writes a rollback log manifest atomically.
func WriteRollbackLog(path string, log *types.RollbackLog) error {
	return writeJSON(path, log)
}

// Encode writes any artifact as indented JSON to w. Commands use this when
// no output path is given and the artifact goes to stdout.
func Encode(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

// readJSON reads a whole manifest file into v.
func readJSON(path string, v any) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read manifest: %w", err)
	}
	if err := json.Unmarshal(data, v); err != nil {
		return fmt.Errorf("%w: %s: %v", ErrMalformed, path, err)
	}
	return nil
}

// writeJSON writes v to path atomically using a temp file and rename.
func writeJSON(path string, v any) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal manifest: %w", err)
	}
	data = append(data, '\n')

	tmpPath := path + ".tmp"
	if err := os.WriteFile(tmpPath, data, 0o644); err != nil {
		return fmt.Errorf("write manifest: %w", err)
	}
	if err := os.Rename(tmpPath, path); err != nil {
		_ = os.Remove(tmpPath)
		return fmt.Errorf("rename manifest: %w", err)
	}
	return nil
}
