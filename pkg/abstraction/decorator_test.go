package abstraction_test

import (
	"context"
	"slices"
	"testing"

	"github.com/matzehuels/gatewalk/pkg/abstraction"
	"github.com/matzehuels/gatewalk/pkg/errors"
	"github.com/matzehuels/gatewalk/pkg/netlist"
	"github.com/matzehuels/gatewalk/pkg/netlist/netlisttest"
)

func isFF(g *netlist.Gate) bool { return g.HasProperty(netlist.FF) }

func isCombinational(g *netlist.Gate) bool { return g.HasProperty(netlist.Combinational) }

func decorate(t *testing.T, b *netlisttest.Builder, names ...string) *abstraction.Decorator {
	t.Helper()
	var gates []*netlist.Gate
	for _, name := range names {
		gates = append(gates, b.G(name))
	}
	a, err := abstraction.New(context.Background(), b.NL, gates)
	if err != nil {
		t.Fatal(err)
	}
	return abstraction.NewDecorator(a)
}

func TestShortestPathDistanceToGate(t *testing.T) {
	tests := []struct {
		name       string
		subset     []string
		start, end string
		dir        netlist.PinDirection
		opts       []abstraction.SearchOption
		want       int
		wantOK     bool
	}{
		{name: "forward", start: "g1", end: "g4", dir: netlist.Output, want: 3, wantOK: true},
		{name: "backward", start: "g4", end: "g1", dir: netlist.Input, want: 3, wantOK: true},
		{name: "both ways", start: "g1", end: "g4", dir: netlist.Inout, want: 3, wantOK: true},
		{name: "against the flow", start: "g4", end: "g1", dir: netlist.Output},
		{name: "same gate", start: "g2", end: "g2", dir: netlist.Output, want: 0, wantOK: true},
		{name: "register subset", subset: []string{"g2", "g4"}, start: "g2", end: "g4", dir: netlist.Output, want: 1, wantOK: true},
		{
			name: "exit filter cuts the path", start: "g1", end: "g4", dir: netlist.Output,
			opts: []abstraction.SearchOption{abstraction.ExitFilter(func(ep netlist.Endpoint, _ int) bool { return ep.Pin != "Q" })},
		},
		{
			name: "entry filter beyond depth", start: "g1", end: "g4", dir: netlist.Output,
			opts: []abstraction.SearchOption{abstraction.EntryFilter(func(_ netlist.Endpoint, depth int) bool { return depth <= 2 })},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			b := netlisttest.Pipeline(t)
			d := decorate(t, b, tt.subset...)
			got, ok, err := d.ShortestPathDistanceToGate(b.G(tt.start), b.G(tt.end), tt.dir, tt.opts...)
			if err != nil {
				t.Fatal(err)
			}
			if ok != tt.wantOK || got != tt.want {
				t.Errorf("distance = %d, %v; want %d, %v", got, ok, tt.want, tt.wantOK)
			}
		})
	}
}

func TestShortestPathDistanceFromEndpoint(t *testing.T) {
	b := netlisttest.Pipeline(t)
	d := decorate(t, b)
	g4 := b.G("g4").ID()
	toG4 := func(ep netlist.Endpoint) bool { return ep.Gate == g4 }

	// A fan-in endpoint searched forward starts from the gate's outputs.
	got, ok, err := d.ShortestPathDistance(fanIn(t, b.G("g2"), "D"), toG4, netlist.Output)
	if err != nil {
		t.Fatal(err)
	}
	if !ok || got != 2 {
		t.Errorf("distance(g2.D) = %d, %v; want 2, true", got, ok)
	}

	got, ok, err = d.ShortestPathDistance(fanOut(t, b.G("g3"), "O"), toG4, netlist.Output)
	if err != nil {
		t.Fatal(err)
	}
	if !ok || got != 1 {
		t.Errorf("distance(g3.O) = %d, %v; want 1, true", got, ok)
	}
}

func TestShortestPathDistanceErrors(t *testing.T) {
	b := netlisttest.Pipeline(t)
	d := decorate(t, b, "g2", "g4")

	if _, _, err := d.ShortestPathDistanceToGate(b.G("g2"), b.G("g4"), netlist.Internal); !errors.Is(err, errors.ErrCodeUnsupportedDirection) {
		t.Errorf("internal direction error = %v, want UNSUPPORTED_DIRECTION", err)
	}
	if _, _, err := d.ShortestPathDistanceToGate(b.G("g1"), b.G("g4"), netlist.Output); !errors.Is(err, errors.ErrCodeLookupMiss) {
		t.Errorf("uncovered start error = %v, want LOOKUP_MISS", err)
	}
	if _, _, err := d.GateShortestPathDistance(b.G("g2"), nil, netlist.Output); !errors.Is(err, errors.ErrCodeInvalidArgument) {
		t.Errorf("nil target error = %v, want INVALID_ARGUMENT", err)
	}
	if _, _, err := d.ShortestPathDistanceToGate(nil, b.G("g4"), netlist.Output); !errors.Is(err, errors.ErrCodeInvalidArgument) {
		t.Errorf("nil start error = %v, want INVALID_ARGUMENT", err)
	}
}

func TestGateNextMatchingGates(t *testing.T) {
	tests := []struct {
		name   string
		start  string
		target func(*netlist.Gate) bool
		dir    netlist.PinDirection
		until  bool
		opts   []abstraction.SearchOption
		want   []string
	}{
		{name: "first register", start: "g1", target: isFF, dir: netlist.Output, want: []string{"g2"}},
		{name: "continue on match", start: "g1", target: isFF, dir: netlist.Output,
			opts: []abstraction.SearchOption{abstraction.ContinueOnMatch()}, want: []string{"g2", "g4"}},
		{name: "backward", start: "g4", target: isFF, dir: netlist.Input, want: []string{"g2"}},
		{name: "undirected", start: "g3", target: isFF, dir: netlist.Output,
			opts: []abstraction.SearchOption{abstraction.Undirected()}, want: []string{"g2", "g4"}},
		{name: "until stops at mismatch", start: "g1", target: isCombinational, dir: netlist.Output, until: true},
		{name: "until continue on mismatch", start: "g1", target: isCombinational, dir: netlist.Output, until: true,
			opts: []abstraction.SearchOption{abstraction.ContinueOnMismatch()}, want: []string{"g3"}},
		{name: "until through matches", start: "g1", target: isFF, dir: netlist.Output, until: true, want: []string{"g2"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			b := netlisttest.Pipeline(t)
			d := decorate(t, b)
			var got []*netlist.Gate
			var err error
			if tt.until {
				got, err = d.GateNextMatchingGatesUntil(b.G(tt.start), tt.target, tt.dir, tt.opts...)
			} else {
				got, err = d.GateNextMatchingGates(b.G(tt.start), tt.target, tt.dir, tt.opts...)
			}
			if err != nil {
				t.Fatal(err)
			}
			checkNames(t, "gates", got, tt.want...)
		})
	}
}

func TestNextMatchingGatesFromEndpoint(t *testing.T) {
	b := netlisttest.Sequential(t)
	d := decorate(t, b, "ff1", "ff2", "out")
	q := fanOut(t, b.G("ff1"), "Q")

	got, err := d.NextMatchingGates(q, isFF, netlist.Output)
	if err != nil {
		t.Fatal(err)
	}
	checkNames(t, "NextMatchingGates(ff1.Q)", got, "ff1", "ff2")

	got, err = d.NextMatchingGatesUntil(q, func(*netlist.Gate) bool { return true }, netlist.Output)
	if err != nil {
		t.Fatal(err)
	}
	checkNames(t, "NextMatchingGatesUntil(ff1.Q)", got, "ff1", "ff2", "out")

	if _, err := d.NextMatchingGates(q, isFF, netlist.Inout); !errors.Is(err, errors.ErrCodeUnsupportedDirection) {
		t.Errorf("inout error = %v, want UNSUPPORTED_DIRECTION", err)
	}
	if _, err := d.NextMatchingGates(q, nil, netlist.Output); !errors.Is(err, errors.ErrCodeInvalidArgument) {
		t.Errorf("nil target error = %v, want INVALID_ARGUMENT", err)
	}
	if _, err := d.GateNextMatchingGates(b.G("and"), isFF, netlist.Output); !errors.Is(err, errors.ErrCodeLookupMiss) {
		t.Errorf("uncovered gate error = %v, want LOOKUP_MISS", err)
	}
}

// Distances measured on the register abstraction never exceed the number of
// registers, whatever the combinational depth in between.
func TestRegisterDistanceBound(t *testing.T) {
	b := netlisttest.BufferChain(t, 6)
	b.Gate("r0", "DFF")
	b.Gate("r1", "DFF")
	b.Connect("r0", "Q", "b0", "I")
	b.Connect("b5", "O", "r1", "D")

	d := decorate(t, b, "r0", "r1")
	got, ok, err := d.ShortestPathDistanceToGate(b.G("r0"), b.G("r1"), netlist.Output)
	if err != nil {
		t.Fatal(err)
	}
	if !ok || got != 1 {
		t.Errorf("register distance = %d, %v; want 1, true", got, ok)
	}
	if !slices.Equal(netlisttest.Names(d.Abstraction().Gates()), []string{"r0", "r1"}) {
		t.Errorf("Gates() = %v", netlisttest.Names(d.Abstraction().Gates()))
	}
}
