package cli

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"path/filepath"
	"slices"
	"strings"
	"testing"

	"github.com/matzehuels/gatewalk/pkg/errors"
	gwio "github.com/matzehuels/gatewalk/pkg/io"
	"github.com/matzehuels/gatewalk/pkg/netlist/netlisttest"
)

// writeDesign exports the pipeline fixture and isolates config and cache
// directories for the test.
func writeDesign(t *testing.T) string {
	t.Helper()
	t.Setenv("XDG_CONFIG_HOME", t.TempDir())
	t.Setenv("XDG_CACHE_HOME", t.TempDir())

	path := filepath.Join(t.TempDir(), "design.json")
	if err := gwio.ExportJSON(netlisttest.Pipeline(t).NL, path); err != nil {
		t.Fatal(err)
	}
	return path
}

func run(t *testing.T, args ...string) (string, error) {
	t.Helper()
	root := New(io.Discard, LogInfo).RootCommand()
	var out bytes.Buffer
	root.SetOut(&out)
	root.SetErr(io.Discard)
	root.SetArgs(args)
	err := root.ExecuteContext(context.Background())
	return out.String(), err
}

func gateNamesJSON(t *testing.T, out string) []string {
	t.Helper()
	var refs []gateRef
	if err := json.Unmarshal([]byte(out), &refs); err != nil {
		t.Fatalf("decode %q: %v", out, err)
	}
	names := make([]string, len(refs))
	for i, r := range refs {
		names[i] = r.Name
	}
	return names
}

func TestStatsCommand(t *testing.T) {
	path := writeDesign(t)
	out, err := run(t, "stats", path, "--json")
	if err != nil {
		t.Fatal(err)
	}
	var s netlistStats
	if err := json.Unmarshal([]byte(out), &s); err != nil {
		t.Fatal(err)
	}
	if s.Gates != 4 || s.Sequential != 2 || s.Types["DFF"] != 2 {
		t.Errorf("stats = %+v", s)
	}
}

func TestSeqCommand(t *testing.T) {
	path := writeDesign(t)
	tests := []struct {
		args []string
		want []string
	}{
		{[]string{"--gate", "g2"}, []string{"g4"}},
		{[]string{"--gate", "g4", "--dir", "backward"}, []string{"g2"}},
		{[]string{"--gate", "g1", "--depth", "0"}, []string{"g2", "g4"}},
		{[]string{"--gate", "g2", "--combinational"}, []string{"g3"}},
	}
	for _, tt := range tests {
		t.Run(strings.Join(tt.args, " "), func(t *testing.T) {
			out, err := run(t, append([]string{"seq", path, "--json"}, tt.args...)...)
			if err != nil {
				t.Fatal(err)
			}
			if got := gateNamesJSON(t, out); !slices.Equal(got, tt.want) {
				t.Errorf("seq %v = %v, want %v", tt.args, got, tt.want)
			}
		})
	}
}

func TestSeqBatchCommand(t *testing.T) {
	path := writeDesign(t)
	out, err := run(t, "seq", path, "--filter", "prop(ff)", "--workers", "2", "--json")
	if err != nil {
		t.Fatal(err)
	}
	var m map[string][]gateRef
	if err := json.Unmarshal([]byte(out), &m); err != nil {
		t.Fatal(err)
	}
	if len(m) != 2 || len(m["g2"]) != 1 || m["g2"][0].Name != "g4" {
		t.Errorf("batch result = %v", m)
	}
}

func TestSeqmapCommandCaches(t *testing.T) {
	path := writeDesign(t)
	first, err := run(t, "seqmap", path, "--json")
	if err != nil {
		t.Fatal(err)
	}
	second, err := run(t, "seqmap", path, "--json")
	if err != nil {
		t.Fatal(err)
	}
	if first != second {
		t.Errorf("cached run differs:\n%s\nvs\n%s", first, second)
	}
	if !strings.Contains(first, `"g4"`) {
		t.Errorf("seqmap output = %s", first)
	}
}

func TestShortestCommand(t *testing.T) {
	path := writeDesign(t)
	out, err := run(t, "shortest", path, "--from", "g1", "--to", "#4", "--json")
	if err != nil {
		t.Fatal(err)
	}
	if got := gateNamesJSON(t, out); !slices.Equal(got, []string{"g1", "g2", "g3", "g4"}) {
		t.Errorf("shortest = %v", got)
	}

	out, err = run(t, "shortest", path, "--from", "g1", "--to", "g3")
	if err != nil {
		t.Fatal(err)
	}
	if want := "g1 " + iconArrow + " g2 " + iconArrow + " g3\n"; out != want {
		t.Errorf("shortest text = %q, want %q", out, want)
	}
}

func TestAbstractCommand(t *testing.T) {
	path := writeDesign(t)
	out, err := run(t, "abstract", path, "--json", "--no-cache")
	if err != nil {
		t.Fatal(err)
	}
	var m map[string]map[string][]gateRef
	if err := json.Unmarshal([]byte(out), &m); err != nil {
		t.Fatal(err)
	}
	if succ := m["g2"]["successors"]; len(succ) != 1 || succ[0].Name != "g4" {
		t.Errorf("g2 successors = %v", succ)
	}
	if pred := m["g4"]["predecessors"]; len(pred) != 1 || pred[0].Name != "g2" {
		t.Errorf("g4 predecessors = %v", pred)
	}
}

func TestDotCommand(t *testing.T) {
	path := writeDesign(t)
	out, err := run(t, "dot", path, "--around", "g2", "--radius", "1", "--rankdir", "tb")
	if err != nil {
		t.Fatal(err)
	}
	for _, want := range []string{"digraph netlist {", "rankdir=TB;", `label="g1"`, `label="g3"`} {
		if !strings.Contains(out, want) {
			t.Errorf("dot output lacks %q:\n%s", want, out)
		}
	}
	if strings.Contains(out, `label="g4"`) {
		t.Errorf("dot output reaches beyond the radius:\n%s", out)
	}

	if _, err := run(t, "dot", path, "--rankdir", "XY"); err == nil {
		t.Error("invalid rankdir accepted")
	}
}

func TestLibraryCommand(t *testing.T) {
	writeDesign(t)
	out, err := run(t, "library")
	if err != nil {
		t.Fatal(err)
	}
	for _, want := range []string{"DFF", "AND2"} {
		if !strings.Contains(out, want) {
			t.Errorf("library output lacks %q", want)
		}
	}

	out, err = run(t, "library", "--export", "yaml")
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(out, "name:") {
		t.Errorf("yaml export = %.200s", out)
	}
}

func TestCachePathCommand(t *testing.T) {
	writeDesign(t)
	out, err := run(t, "cache", "path")
	if err != nil {
		t.Fatal(err)
	}
	want, _ := cacheDir()
	if strings.TrimSpace(out) != want {
		t.Errorf("cache path = %q, want %q", out, want)
	}
}

func TestCommandErrors(t *testing.T) {
	path := writeDesign(t)
	tests := []struct {
		args []string
		code errors.Code
	}{
		{[]string{"stats", filepath.Join(t.TempDir(), "missing.json")}, errors.ErrCodeFileNotFound},
		{[]string{"seq", path, "--gate", "nope"}, errors.ErrCodeNotFound},
		{[]string{"seq", path, "--gate", "g1", "--dir", "sideways"}, errors.ErrCodeUnsupportedDirection},
		{[]string{"seq", path, "--filter", "prop("}, errors.ErrCodeInvalidExpression},
		{[]string{"shortest", path, "--from", "g1", "--to", "g2", "--dir", "diagonal"}, errors.ErrCodeInvalidInput},
	}
	for _, tt := range tests {
		t.Run(strings.Join(tt.args, " "), func(t *testing.T) {
			if _, err := run(t, tt.args...); !errors.Is(err, tt.code) {
				t.Errorf("error = %v, want %s", err, tt.code)
			}
		})
	}
}
