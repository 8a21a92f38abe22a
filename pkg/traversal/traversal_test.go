package traversal_test

import (
	"slices"
	"testing"

	"github.com/matzehuels/gatewalk/pkg/errors"
	"github.com/matzehuels/gatewalk/pkg/netlist"
	"github.com/matzehuels/gatewalk/pkg/netlist/netlisttest"
	"github.com/matzehuels/gatewalk/pkg/traversal"
)

func isFF(g *netlist.Gate) bool { return g.HasProperty(netlist.FF) }

func all(*netlist.Gate) bool { return true }

func named(name string) traversal.GateFilter {
	return func(g *netlist.Gate) bool { return g.Name() == name }
}

func checkNames(t *testing.T, what string, got []*netlist.Gate, want ...string) {
	t.Helper()
	names := netlisttest.SortedNames(got)
	slices.Sort(want)
	if !slices.Equal(names, want) {
		t.Errorf("%s = %v, want %v", what, names, want)
	}
}

func TestParseDirection(t *testing.T) {
	tests := []struct {
		in      string
		want    traversal.Direction
		wantErr bool
	}{
		{"forward", traversal.Forward, false},
		{"successors", traversal.Forward, false},
		{"out", traversal.Forward, false},
		{"backward", traversal.Backward, false},
		{"predecessors", traversal.Backward, false},
		{"in", traversal.Backward, false},
		{"sideways", 0, true},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := traversal.ParseDirection(tt.in)
			if tt.wantErr {
				if !errors.Is(err, errors.ErrCodeUnsupportedDirection) {
					t.Errorf("ParseDirection(%q) error = %v, want UNSUPPORTED_DIRECTION", tt.in, err)
				}
				return
			}
			if err != nil || got != tt.want {
				t.Errorf("ParseDirection(%q) = %v, %v, want %v", tt.in, got, err, tt.want)
			}
		})
	}
}

func TestFromPinDirection(t *testing.T) {
	if d, err := traversal.FromPinDirection(netlist.Output); err != nil || d != traversal.Forward {
		t.Errorf("FromPinDirection(output) = %v, %v", d, err)
	}
	if d, err := traversal.FromPinDirection(netlist.Input); err != nil || d != traversal.Backward {
		t.Errorf("FromPinDirection(input) = %v, %v", d, err)
	}
	if _, err := traversal.FromPinDirection(netlist.Inout); !errors.Is(err, errors.ErrCodeUnsupportedDirection) {
		t.Errorf("FromPinDirection(inout) error = %v, want UNSUPPORTED_DIRECTION", err)
	}
	if traversal.Backward.PinDirection() != netlist.Input || traversal.Forward.PinDirection() != netlist.Output {
		t.Error("PinDirection() mapping is wrong")
	}
}

func TestPipeline(t *testing.T) {
	b := netlisttest.Pipeline(t)
	tr := traversal.New(b.NL)

	next, err := tr.NextSequentialGates(b.G("g1"), traversal.Forward)
	if err != nil {
		t.Fatal(err)
	}
	checkNames(t, "NextSequentialGates(g1)", next, "g2")

	path, err := tr.Path(b.G("g1"), traversal.Forward, netlist.FF)
	if err != nil {
		t.Fatal(err)
	}
	checkNames(t, "Path(g1, ff)", path, "g2")

	sp, err := tr.ShortestPath(b.G("g1"), b.G("g4"), netlist.Output)
	if err != nil {
		t.Fatal(err)
	}
	if got := netlisttest.Names(sp); !slices.Equal(got, []string{"g1", "g2", "g3", "g4"}) {
		t.Errorf("ShortestPath(g1, g4) = %v, want [g1 g2 g3 g4]", got)
	}
}

func TestStartValidation(t *testing.T) {
	b := netlisttest.Pipeline(t)
	other := netlisttest.Pipeline(t)
	tr := traversal.New(b.NL)

	tests := []struct {
		name string
		run  func() error
		want errors.Code
	}{
		{"nil gate", func() error {
			_, err := tr.NextMatchingGates(nil, traversal.Forward, all)
			return err
		}, errors.ErrCodeInvalidArgument},
		{"nil net", func() error {
			_, err := tr.SubgraphGatesFromNet(nil, traversal.Forward, nil)
			return err
		}, errors.ErrCodeInvalidArgument},
		{"foreign gate", func() error {
			_, err := tr.NextSequentialGates(other.G("g1"), traversal.Forward)
			return err
		}, errors.ErrCodeNotInNetlist},
		{"foreign net", func() error {
			_, err := tr.NextMatchingGatesFromNet(other.N("g1_O"), traversal.Forward, all)
			return err
		}, errors.ErrCodeNotInNetlist},
		{"missing target", func() error {
			_, err := tr.NextMatchingGates(b.G("g1"), traversal.Forward, nil)
			return err
		}, errors.ErrCodeInvalidArgument},
		{"bad direction", func() error {
			_, err := tr.SubgraphGates(b.G("g1"), traversal.Direction(7), nil)
			return err
		}, errors.ErrCodeUnsupportedDirection},
		{"negative depth", func() error {
			_, err := tr.NextMatchingGatesUntilDepth(b.G("g1"), traversal.Forward, -1, nil)
			return err
		}, errors.ErrCodeInvalidArgument},
		{"shortest path direction", func() error {
			_, err := tr.ShortestPath(b.G("g1"), b.G("g4"), netlist.Internal)
			return err
		}, errors.ErrCodeUnsupportedDirection},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if err := tt.run(); !errors.Is(err, tt.want) {
				t.Errorf("error = %v, want %s", err, tt.want)
			}
		})
	}
}

func TestMutationDuringWalk(t *testing.T) {
	b := netlisttest.Pipeline(t)
	tr := traversal.New(b.NL)

	mutated := false
	_, err := tr.NextMatchingGates(b.G("g1"), traversal.Forward, func(g *netlist.Gate) bool {
		if !mutated {
			mutated = true
			if _, err := b.NL.CreateNet("side_effect"); err != nil {
				t.Fatal(err)
			}
		}
		return false
	})
	if !errors.Is(err, errors.ErrCodeConcurrentMutation) {
		t.Errorf("error = %v, want CONCURRENT_MUTATION", err)
	}
}
