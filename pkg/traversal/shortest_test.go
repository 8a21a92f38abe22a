package traversal_test

import (
	"slices"
	"testing"

	"github.com/matzehuels/gatewalk/pkg/errors"
	"github.com/matzehuels/gatewalk/pkg/netlist"
	"github.com/matzehuels/gatewalk/pkg/netlist/netlisttest"
	"github.com/matzehuels/gatewalk/pkg/traversal"
)

func TestShortestPath(t *testing.T) {
	p := netlisttest.Pipeline(t)
	loop := netlisttest.BufferChain(t, 3)
	loop.Connect("b2", "O", "b0", "I")

	tests := []struct {
		name       string
		b          *netlisttest.Builder
		start, end string
		dir        netlist.PinDirection
		want       []string
	}{
		{"forward", p, "g1", "g4", netlist.Output, []string{"g1", "g2", "g3", "g4"}},
		{"backward", p, "g4", "g1", netlist.Input, []string{"g4", "g3", "g2", "g1"}},
		{"unreachable", p, "g4", "g1", netlist.Output, nil},
		{"both ways", p, "g4", "g2", netlist.Inout, []string{"g4", "g3", "g2"}},
		{"same gate", p, "g3", "g3", netlist.Output, []string{"g3"}},
		{"backward strictly shorter", loop, "b0", "b2", netlist.Inout, []string{"b0", "b2"}},
		{"forward shorter", loop, "b0", "b1", netlist.Inout, []string{"b0", "b1"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tr := traversal.New(tt.b.NL)
			got, err := tr.ShortestPath(tt.b.G(tt.start), tt.b.G(tt.end), tt.dir)
			if err != nil {
				t.Fatal(err)
			}
			if names := netlisttest.Names(got); !slices.Equal(names, tt.want) {
				t.Errorf("ShortestPath(%s, %s) = %v, want %v", tt.start, tt.end, names, tt.want)
			}
		})
	}
}

func TestShortestPathDistance(t *testing.T) {
	b := netlisttest.BufferChain(t, 5)
	tr := traversal.New(b.NL)
	shallow := traversal.WithExitFilter(func(_ netlist.Endpoint, depth int) bool { return depth < 2 })

	tests := []struct {
		name   string
		start  string
		target string
		dir    netlist.PinDirection
		opts   []traversal.SearchOption
		want   int
		wantOK bool
	}{
		{"start matches", "b0", "b0", netlist.Output, nil, 0, true},
		{"three hops", "b0", "b3", netlist.Output, nil, 3, true},
		{"wrong way", "b0", "b3", netlist.Input, nil, 0, false},
		{"backward", "b4", "b1", netlist.Input, nil, 3, true},
		{"both ways", "b2", "b0", netlist.Inout, nil, 2, true},
		{"exit filter cuts", "b0", "b3", netlist.Output, []traversal.SearchOption{shallow}, 0, false},
		{"exit filter passes", "b0", "b2", netlist.Output, []traversal.SearchOption{shallow}, 2, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok, err := tr.ShortestPathDistance(b.G(tt.start), named(tt.target), tt.dir, tt.opts...)
			if err != nil {
				t.Fatal(err)
			}
			if ok != tt.wantOK || got != tt.want {
				t.Errorf("ShortestPathDistance = %d, %v, want %d, %v", got, ok, tt.want, tt.wantOK)
			}
		})
	}

	if _, _, err := tr.ShortestPathDistance(b.G("b0"), all, netlist.Internal); !errors.Is(err, errors.ErrCodeUnsupportedDirection) {
		t.Errorf("internal direction error = %v, want UNSUPPORTED_DIRECTION", err)
	}
	if _, _, err := tr.ShortestPathDistance(b.G("b0"), nil, netlist.Output); !errors.Is(err, errors.ErrCodeInvalidArgument) {
		t.Errorf("nil target error = %v, want INVALID_ARGUMENT", err)
	}
}
