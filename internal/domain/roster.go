// Package domain contains the core business entities and interfaces.
package domain

import (
	"fmt"
	"strings"
)

// DefaultRoster is the participant list used when no roster file is configured.
var DefaultRoster = []string{
	"Shreya", "Sinchana", "Punashri", "Govind",
	"Prasad", "Chethana", "Thanuja", "Mamatha",
	"Harini", "Ghanashyam", "Sharath Kumar",
	"Sudheshna", "Goutham",
}

// Roster is the fixed, ordered list of participants for a cycle. Order is
// significant: candidate recipients are always considered in roster order.
type Roster struct {
	names []string
	index map[string]struct{}
}

// NewRoster validates names and builds a Roster. Names are trimmed; blank
// and duplicate names are rejected.
func NewRoster(names []string) (*Roster, error) {
	if len(names) == 0 {
		return nil, fmt.Errorf("roster: no participants")
	}
	r := &Roster{
		names: make([]string, 0, len(names)),
		index: make(map[string]struct{}, len(names)),
	}
	for _, n := range names {
		n = strings.TrimSpace(n)
		if n == "" {
			return nil, fmt.Errorf("roster: blank participant name")
		}
		if _, dup := r.index[n]; dup {
			return nil, fmt.Errorf("roster: duplicate participant %q", n)
		}
		r.index[n] = struct{}{}
		r.names = append(r.names, n)
	}
	return r, nil
}

// Names returns a copy of the roster in order.
func (r *Roster) Names() []string {
	out := make([]string, len(r.names))
	copy(out, r.names)
	return out
}

// Contains reports whether name is a participant.
func (r *Roster) Contains(name string) bool {
	_, ok := r.index[name]
	return ok
}

// Len returns the number of participants.
func (r *Roster) Len() int {
	return len(r.names)
}
