package traversal_test

import (
	"slices"
	"testing"

	"github.com/matzehuels/gatewalk/pkg/errors"
	"github.com/matzehuels/gatewalk/pkg/netlist"
	"github.com/matzehuels/gatewalk/pkg/netlist/netlisttest"
	"github.com/matzehuels/gatewalk/pkg/traversal"
)

func componentNames(comps [][]*netlist.Gate) [][]string {
	out := make([][]string, len(comps))
	for i, c := range comps {
		out[i] = netlisttest.Names(c)
	}
	return out
}

func TestCombinationalSubgraphs(t *testing.T) {
	b := netlisttest.New(t)
	b.Gate("a1", "AND2")
	b.Gate("a2", "OR2")
	b.Gate("ff", "DFF")
	b.Gate("a3", "XOR2")
	b.Gate("a4", "INV")
	b.Connect("a1", "O", "a2", "I0")
	b.Connect("a2", "O", "ff", "D")
	b.Connect("ff", "Q", "a3", "I0")
	b.Connect("ff", "Q", "a4", "I")
	tr := traversal.New(b.NL)

	comps, err := tr.CombinationalSubgraphs()
	if err != nil {
		t.Fatal(err)
	}
	// a3 and a4 share the register's output net.
	want := [][]string{{"a1", "a2"}, {"a3", "a4"}}
	got := componentNames(comps)
	if !slices.EqualFunc(got, want, slices.Equal) {
		t.Errorf("CombinationalSubgraphs() = %v, want %v", got, want)
	}

	regs, err := tr.MatchingSubgraphs(isFF)
	if err != nil {
		t.Fatal(err)
	}
	if got := componentNames(regs); len(got) != 1 || !slices.Equal(got[0], []string{"ff"}) {
		t.Errorf("MatchingSubgraphs(ff) = %v, want [[ff]]", got)
	}

	if _, err := tr.MatchingSubgraphs(nil); !errors.Is(err, errors.ErrCodeInvalidArgument) {
		t.Errorf("nil filter error = %v, want INVALID_ARGUMENT", err)
	}
}

func TestMatchingSubgraphsPipeline(t *testing.T) {
	b := netlisttest.Pipeline(t)
	comps, err := traversal.New(b.NL).MatchingSubgraphs(isCombinational)
	if err != nil {
		t.Fatal(err)
	}
	want := [][]string{{"g1"}, {"g3"}}
	if got := componentNames(comps); !slices.EqualFunc(got, want, slices.Equal) {
		t.Errorf("MatchingSubgraphs = %v, want %v", got, want)
	}
}
