package traversal_test

import (
	"slices"
	"testing"

	"github.com/matzehuels/gatewalk/pkg/netlist"
	"github.com/matzehuels/gatewalk/pkg/netlist/netlisttest"
	"github.com/matzehuels/gatewalk/pkg/traversal"
)

func isCombinational(g *netlist.Gate) bool { return g.HasProperty(netlist.Combinational) }

func TestNextMatchingGates(t *testing.T) {
	b := netlisttest.Pipeline(t)
	tr := traversal.New(b.NL)

	tests := []struct {
		name   string
		start  string
		dir    traversal.Direction
		target traversal.GateFilter
		opts   []traversal.SearchOption
		want   []string
	}{
		{"first register", "g1", traversal.Forward, isFF, nil, []string{"g2"}},
		{"continue on match", "g1", traversal.Forward, isFF, []traversal.SearchOption{traversal.ContinueOnMatch()}, []string{"g2", "g4"}},
		{"backward", "g4", traversal.Backward, isFF, nil, []string{"g2"}},
		{"nothing ahead", "g4", traversal.Forward, all, nil, nil},
		{"start not reported", "g1", traversal.Forward, named("g1"), nil, nil},
		{
			"exit filter on start",
			"g1", traversal.Forward, all,
			[]traversal.SearchOption{traversal.WithExitFilter(func(_ netlist.Endpoint, depth int) bool { return depth > 0 })},
			nil,
		},
		{
			"entry filter by pin",
			"g2", traversal.Forward, all,
			[]traversal.SearchOption{traversal.WithEntryFilter(func(ep netlist.Endpoint, _ int) bool { return ep.Pin != "I0" })},
			nil,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := tr.NextMatchingGates(b.G(tt.start), tt.dir, tt.target, tt.opts...)
			if err != nil {
				t.Fatal(err)
			}
			checkNames(t, "NextMatchingGates", got, tt.want...)
		})
	}
}

func TestNextMatchingGatesFromNet(t *testing.T) {
	b := netlisttest.Pipeline(t)
	tr := traversal.New(b.NL)

	got, err := tr.NextMatchingGatesFromNet(b.N("g2_Q"), traversal.Forward, isFF)
	if err != nil {
		t.Fatal(err)
	}
	checkNames(t, "from g2_Q forward", got, "g4")

	got, err = tr.NextMatchingGatesFromNet(b.N("g2_Q"), traversal.Backward, all)
	if err != nil {
		t.Fatal(err)
	}
	checkNames(t, "from g2_Q backward", got, "g2")
}

func TestNextMatchingGatesUntil(t *testing.T) {
	b := netlisttest.Pipeline(t)
	tr := traversal.New(b.NL)

	got, err := tr.NextMatchingGatesUntil(b.G("g1"), traversal.Forward, isCombinational)
	if err != nil {
		t.Fatal(err)
	}
	checkNames(t, "until first register", got)

	got, err = tr.NextMatchingGatesUntil(b.G("g1"), traversal.Forward, isCombinational, traversal.ContinueOnMismatch())
	if err != nil {
		t.Fatal(err)
	}
	checkNames(t, "continue on mismatch", got, "g3")

	got, err = tr.NextMatchingGatesUntilFromNet(b.N("g1_O"), traversal.Forward, isFF)
	if err != nil {
		t.Fatal(err)
	}
	checkNames(t, "from net", got, "g2")
}

func TestNextMatchingGatesUntilDepth(t *testing.T) {
	b := netlisttest.BufferChain(t, 6)
	tr := traversal.New(b.NL)

	tests := []struct {
		depth int
		want  []string
	}{
		{1, []string{"b1"}},
		{2, []string{"b1", "b2"}},
		{4, []string{"b1", "b2", "b3", "b4"}},
		{0, []string{"b1", "b2", "b3", "b4", "b5"}},
	}
	for _, tt := range tests {
		got, err := tr.NextMatchingGatesUntilDepth(b.G("b0"), traversal.Forward, tt.depth, nil)
		if err != nil {
			t.Fatal(err)
		}
		checkNames(t, "NextMatchingGatesUntilDepth", got, tt.want...)
	}

	got, err := tr.NextMatchingGatesUntilDepth(b.G("b5"), traversal.Backward, 3, named("b3"))
	if err != nil {
		t.Fatal(err)
	}
	checkNames(t, "backward filtered", got, "b3")

	got, err = tr.NextMatchingGatesUntilDepthFromNet(b.N("b0_O"), traversal.Forward, 2, nil)
	if err != nil {
		t.Fatal(err)
	}
	checkNames(t, "from net", got, "b1", "b2")
}

func TestSubgraphGates(t *testing.T) {
	b := netlisttest.BufferChain(t, 5)
	tr := traversal.New(b.NL)

	got, err := tr.SubgraphGates(b.G("b0"), traversal.Forward, nil,
		traversal.WithEntryFilter(func(_ netlist.Endpoint, depth int) bool { return depth <= 2 }))
	if err != nil {
		t.Fatal(err)
	}
	checkNames(t, "entry depth <= 2", got, "b1", "b2")

	got, err = tr.SubgraphGates(b.G("b0"), traversal.Forward, named("b3"))
	if err != nil {
		t.Fatal(err)
	}
	checkNames(t, "filtered", got, "b3")

	fancy, err := tr.NextGatesFancy(b.G("b0"), traversal.Forward, named("b3"))
	if err != nil {
		t.Fatal(err)
	}
	if !slices.Equal(netlisttest.IDs(fancy), netlisttest.IDs(got)) {
		t.Errorf("NextGatesFancy = %v, want %v", netlisttest.Names(fancy), netlisttest.Names(got))
	}
}

func TestSubgraphGatesCycle(t *testing.T) {
	b := netlisttest.BufferChain(t, 3)
	b.Connect("b2", "O", "b0", "I")
	tr := traversal.New(b.NL)

	got, err := tr.SubgraphGates(b.G("b0"), traversal.Forward, nil)
	if err != nil {
		t.Fatal(err)
	}
	checkNames(t, "loop", got, "b0", "b1", "b2")

	got, err = tr.SubgraphGatesFromNet(b.N("b1_O"), traversal.Backward, nil)
	if err != nil {
		t.Fatal(err)
	}
	checkNames(t, "loop backward", got, "b0", "b1", "b2")
}

func TestUndirected(t *testing.T) {
	b := netlisttest.Pipeline(t)
	tr := traversal.New(b.NL)

	got, err := tr.SubgraphGates(b.G("g2"), traversal.Forward, nil, traversal.Undirected())
	if err != nil {
		t.Fatal(err)
	}
	checkNames(t, "undirected from g2", got, "g1", "g3", "g4")

	got, err = tr.NextMatchingGates(b.G("g3"), traversal.Backward, isFF, traversal.Undirected())
	if err != nil {
		t.Fatal(err)
	}
	checkNames(t, "undirected next registers", got, "g2", "g4")
}

func TestSubgraphInputNets(t *testing.T) {
	b := netlisttest.Pipeline(t)
	tr := traversal.New(b.NL)

	drivenByFF := func(n *netlist.Net) bool {
		for _, src := range n.Sources() {
			if isFF(b.NL.Gate(src.Gate)) {
				return true
			}
		}
		return false
	}
	nets, err := tr.SubgraphInputNets(b.G("g4"), traversal.Backward, drivenByFF)
	if err != nil {
		t.Fatal(err)
	}
	if len(nets) != 1 || nets[0].Name() != "g2_Q" {
		t.Errorf("SubgraphInputNets(g4) = %v, want [g2_Q]", nets)
	}
}

func TestNextMatchingEndpoints(t *testing.T) {
	b := netlisttest.Pipeline(t)
	tr := traversal.New(b.NL)

	ffInput := func(ep netlist.Endpoint) bool {
		return ep.IsDestination() && isFF(b.NL.Gate(ep.Gate))
	}
	eps, err := tr.NextMatchingEndpoints(b.G("g1"), traversal.Forward, ffInput)
	if err != nil {
		t.Fatal(err)
	}
	if len(eps) != 1 || eps[0].Gate != b.G("g2").ID() || eps[0].Pin != "D" {
		t.Errorf("NextMatchingEndpoints(g1) = %v, want [g2.D]", eps)
	}

	eps, err = tr.NextMatchingEndpoints(b.G("g1"), traversal.Forward, ffInput, traversal.ContinueOnMatch())
	if err != nil {
		t.Fatal(err)
	}
	if len(eps) != 2 || eps[1].Gate != b.G("g4").ID() {
		t.Errorf("NextMatchingEndpoints(continue) = %v, want [g2.D g4.D]", eps)
	}

	eps, err = tr.NextMatchingEndpointsFromNet(b.N("g2_Q"), traversal.Forward, func(ep netlist.Endpoint) bool {
		return ep.IsSource()
	})
	if err != nil {
		t.Fatal(err)
	}
	if len(eps) != 1 || eps[0].Gate != b.G("g3").ID() || eps[0].Pin != "O" {
		t.Errorf("NextMatchingEndpointsFromNet(g2_Q) = %v, want [g3.O]", eps)
	}
}

func TestNextMatchingEndpointsFromEndpoint(t *testing.T) {
	b := netlisttest.Pipeline(t)
	out := b.GlobalOutput("po", "g4", "Q")
	tr := traversal.New(b.NL)

	isPrimaryOutput := func(ep netlist.Endpoint) bool {
		return ep.IsSource() && b.NL.IsGlobalOutputNet(b.NL.Net(ep.Net))
	}
	start, _ := b.G("g4").FanOutEndpoint("Q")
	eps, err := tr.NextMatchingEndpointsFromEndpoint(start, traversal.Forward, isPrimaryOutput)
	if err != nil {
		t.Fatal(err)
	}
	if len(eps) != 1 || eps[0].Net != out.ID() || eps[0].Gate != b.G("g4").ID() {
		t.Errorf("FromEndpoint(g4.Q) = %v, want the start endpoint", eps)
	}

	start, _ = b.G("g3").FanOutEndpoint("O")
	eps, err = tr.NextMatchingEndpointsFromEndpoint(start, traversal.Forward, func(ep netlist.Endpoint) bool {
		return ep.IsDestination()
	})
	if err != nil {
		t.Fatal(err)
	}
	if len(eps) != 1 || eps[0].Gate != b.G("g4").ID() || eps[0].Pin != "D" {
		t.Errorf("FromEndpoint(g3.O) = %v, want [g4.D]", eps)
	}

	stale := netlist.Endpoint{Gate: b.G("g3").ID(), Pin: "I1", Net: start.Net, Direction: netlist.Input}
	if _, err := tr.NextMatchingEndpointsFromEndpoint(stale, traversal.Forward, isPrimaryOutput); err == nil {
		t.Error("unconnected endpoint accepted")
	}
}
