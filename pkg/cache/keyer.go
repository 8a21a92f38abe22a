package cache

import (
	"slices"
	"strings"
)

// Key prefixes. [Instrument] reports them as the key type.
const (
	PrefixSequential  = "seqmap"
	PrefixAbstraction = "abstraction"
)

// Keyer derives cache keys for analysis results.
type Keyer interface {
	// SequentialMapKey keys a sequential successor or predecessor map.
	SequentialMapKey(netlistHash string, opts SequentialKeyOpts) string

	// AbstractionKey keys an abstraction summary over a gate selection.
	AbstractionKey(netlistHash string, opts AbstractionKeyOpts) string
}

// SequentialKeyOpts holds the options that change a sequential map.
type SequentialKeyOpts struct {
	Direction     string   `json:"direction"`
	Depth         int      `json:"depth"`
	ForbiddenPins []string `json:"forbidden_pins,omitempty"`
}

// AbstractionKeyOpts holds the options that change an abstraction.
type AbstractionKeyOpts struct {
	// Selection is the gate filter expression the subset was built from.
	Selection  string `json:"selection"`
	IncludeAll bool   `json:"include_all"`
}

// DefaultKeyer hashes the options into the key.
type DefaultKeyer struct{}

// NewDefaultKeyer returns the standard keyer.
func NewDefaultKeyer() *DefaultKeyer { return &DefaultKeyer{} }

func (*DefaultKeyer) SequentialMapKey(netlistHash string, opts SequentialKeyOpts) string {
	pins := slices.Clone(opts.ForbiddenPins)
	slices.Sort(pins)
	return hashKey(PrefixSequential, netlistHash, strings.ToLower(opts.Direction), opts.Depth, pins)
}

func (*DefaultKeyer) AbstractionKey(netlistHash string, opts AbstractionKeyOpts) string {
	return hashKey(PrefixAbstraction, netlistHash, strings.TrimSpace(opts.Selection), opts.IncludeAll)
}

var _ Keyer = (*DefaultKeyer)(nil)
