package netlist

import "github.com/matzehuels/gatewalk/pkg/errors"

// ReadGuard records the netlist version at the start of a read-only
// operation. Long traversals take a guard before walking and call
// [ReadGuard.Check] before returning, turning a violation of the
// single-writer discipline into a CONCURRENT_MUTATION error.
type ReadGuard struct {
	nl      *Netlist
	version uint64
}

// Guard returns a guard for the current version.
func (nl *Netlist) Guard() ReadGuard {
	return ReadGuard{nl: nl, version: nl.Version()}
}

// Version returns the version the guard was taken at.
func (g ReadGuard) Version() uint64 { return g.version }

// Check fails if the netlist was mutated since the guard was taken.
func (g ReadGuard) Check() error {
	if now := g.nl.Version(); now != g.version {
		return errors.New(errors.ErrCodeConcurrentMutation,
			"netlist was modified during a read-only operation (version %d -> %d)", g.version, now)
	}
	return nil
}
