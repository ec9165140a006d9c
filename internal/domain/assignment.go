package domain

import (
	"context"
	"fmt"
	"sort"
)

// AssignmentMap maps santa -> recipient for one cycle.
type AssignmentMap map[string]string

// Clone returns an independent copy of the map.
func (m AssignmentMap) Clone() AssignmentMap {
	out := make(AssignmentMap, len(m))
	for k, v := range m {
		out[k] = v
	}
	return out
}

// Taken reports whether recipient is already assigned to some santa.
func (m AssignmentMap) Taken(recipient string) bool {
	for _, r := range m {
		if r == recipient {
			return true
		}
	}
	return false
}

// Santas returns the santas that have drawn, sorted by name.
func (m AssignmentMap) Santas() []string {
	out := make([]string, 0, len(m))
	for s := range m {
		out = append(out, s)
	}
	sort.Strings(out)
	return out
}

// Validate checks that no santa is assigned to themself and that no recipient
// appears twice.
func (m AssignmentMap) Validate() error {
	seen := make(map[string]string, len(m))
	for santa, recipient := range m {
		if santa == "" || recipient == "" {
			return fmt.Errorf("assignments: empty name in pair %q -> %q", santa, recipient)
		}
		if santa == recipient {
			return fmt.Errorf("assignments: %q assigned to themself", santa)
		}
		if other, dup := seen[recipient]; dup {
			return fmt.Errorf("assignments: %q assigned to both %q and %q", recipient, other, santa)
		}
		seen[recipient] = santa
	}
	return nil
}

// CycleAssignments is the stored assignment document for one cycle. Version
// is zero before the first write and increases by one on every save.
type CycleAssignments struct {
	Cycle   string
	Pairs   AssignmentMap
	Version int64
}

// AssignmentRepository is the port for the per-cycle assignment document.
//
// GetAssignments returns an empty document with Version 0 when the cycle has
// no entries yet. SaveAssignments replaces the whole document only if the
// stored version still equals expectedVersion, returning the new version;
// otherwise it fails with ErrConcurrentWriteConflict and writes nothing.
type AssignmentRepository interface {
	GetAssignments(ctx context.Context, cycle string) (*CycleAssignments, error)
	SaveAssignments(ctx context.Context, cycle string, expectedVersion int64, pairs AssignmentMap) (int64, error)
}
