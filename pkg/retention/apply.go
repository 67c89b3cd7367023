package retention

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
)

// Remover deletes one artifact.
type Remover func(path string) error

// ApplyResult reports what Apply did.
type ApplyResult struct {
	Deleted []string `json:"deleted"`
	// Missing lists paths that were already gone. This is expected when a
	// plan is applied twice or races with another cleanup.
	Missing []string `json:"missing"`
	DryRun  bool     `json:"dry_run"`
}

// Apply deletes the plan's Delete paths with remove (os.Remove when nil).
// A dry-run plan touches nothing. Paths that no longer exist are recorded
// as missing, not as errors. Other failures are collected and returned
// together after every path has been attempted.
func Apply(plan Plan, remove Remover) (ApplyResult, error) {
	result := ApplyResult{DryRun: plan.DryRun}
	if plan.DryRun {
		return result, nil
	}
	if remove == nil {
		remove = os.Remove
	}

	var errs []error
	for _, path := range plan.Delete {
		err := remove(path)
		switch {
		case err == nil:
			result.Deleted = append(result.Deleted, path)
		case errors.Is(err, fs.ErrNotExist):
			result.Missing = append(result.Missing, path)
		default:
			errs = append(errs, fmt.Errorf("removing %s: %w", path, err))
		}
	}
	return result, errors.Join(errs...)
}
