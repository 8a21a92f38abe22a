package netlisttest

import (
	"strconv"
	"testing"
)

// Pipeline builds the four-gate pipeline
//
//	g1 (AND2) -> g2 (DFF) -> g3 (AND2) -> g4 (DFF)
//
// wired output to data input in sequence.
func Pipeline(t testing.TB) *Builder {
	t.Helper()
	b := New(t)
	b.Gate("g1", "AND2")
	b.Gate("g2", "DFF")
	b.Gate("g3", "AND2")
	b.Gate("g4", "DFF")
	b.Connect("g1", "O", "g2", "D")
	b.Connect("g2", "Q", "g3", "I0")
	b.Connect("g3", "O", "g4", "D")
	return b
}

// Sequential builds a small design with constants, a self-enabling register
// and two registers feeding an output gate:
//
//	gnd.O  -> buf.I, and.I1, ff2.D
//	vcc.O  -> and.I0
//	and.O  -> ff1.D
//	ff1.Q  -> ff1.EN, ff2.EN, out.I0
//	ff2.Q  -> out.I1
//
// Gates are created in the order gnd, vcc, buf, and, ff1, ff2, out and so
// carry ids 1 to 7.
func Sequential(t testing.TB) *Builder {
	t.Helper()
	b := New(t)
	b.Gate("gnd", "GND")
	b.Gate("vcc", "VCC")
	b.Gate("buf", "BUF")
	b.Gate("and", "AND2")
	b.Gate("ff1", "DFFE")
	b.Gate("ff2", "DFFE")
	b.Gate("out", "AND2")
	if err := b.NL.MarkGNDGate(b.G("gnd")); err != nil {
		t.Fatal(err)
	}
	if err := b.NL.MarkVCCGate(b.G("vcc")); err != nil {
		t.Fatal(err)
	}

	b.Connect("gnd", "O", "buf", "I")
	b.Connect("gnd", "O", "and", "I1")
	b.Connect("gnd", "O", "ff2", "D")
	b.Connect("vcc", "O", "and", "I0")
	b.Connect("and", "O", "ff1", "D")
	b.Connect("ff1", "Q", "ff1", "EN")
	b.Connect("ff1", "Q", "ff2", "EN")
	b.Connect("ff1", "Q", "out", "I0")
	b.Connect("ff2", "Q", "out", "I1")
	return b
}

// BufferChain builds n buffers b0 .. b(n-1) connected output to input.
func BufferChain(t testing.TB, n int) *Builder {
	t.Helper()
	b := New(t)
	for i := range n {
		b.Gate(bufName(i), "BUF")
	}
	for i := 1; i < n; i++ {
		b.Connect(bufName(i-1), "O", bufName(i), "I")
	}
	return b
}

func bufName(i int) string { return "b" + strconv.Itoa(i) }
