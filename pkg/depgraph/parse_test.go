package depgraph

import (
	"fmt"
	"reflect"
	"slices"
	"testing"
)

func TestNormalize(t *testing.T) {
	tests := []struct {
		in, want string
	}{
		{"gdata_core_1_0", "gdata-core-1.0"},
		{"gdata-core-1-0", "gdata-core-1.0"},
		{"mail;", "mail"},
		{"a -> b;", "a -> b"},
		{"gdata_client_meta_1_0", "gdata-client-meta-1.0"},
		{"a-1-2-3", "a-1.2-3"},
		{"google_collect_1_0_rc1", "google-collect-1.0-rc1"},
		{"jsr305", "jsr305"},
		{"", ""},
	}
	for _, tt := range tests {
		if got := Normalize(tt.in); got != tt.want {
			t.Errorf("Normalize(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestParseEdges(t *testing.T) {
	text := `digraph dependencies {
  gdata_core_1_0 -> google_collect_1_0_rc1;
  gdata_core_1_0   ->   jsr305;
  label = "x";
}`
	got := ParseEdges(text)
	want := []Edge{
		{From: "gdata-core-1.0", To: "google-collect-1.0-rc1"},
		{From: "gdata-core-1.0", To: "jsr305"},
	}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("ParseEdges = %+v, want %+v", got, want)
	}
}

func TestParseEdgesNone(t *testing.T) {
	if got := ParseEdges("digraph {}"); len(got) != 0 {
		t.Errorf("ParseEdges = %+v, want none", got)
	}
}

func TestParseChain(t *testing.T) {
	m := Parse("a -> b; b -> c;", DefaultPolicy())
	want := Mapping{"a": {"b"}, "b": {"c"}, "c": nil}
	if !reflect.DeepEqual(m, want) {
		t.Errorf("Parse = %#v, want %#v", m, want)
	}
	if !m.IsTerminal("c") || m.IsTerminal("a") || m.IsTerminal("zzz") {
		t.Error("IsTerminal mismatch")
	}
}

func TestParseDuplicatesPreserved(t *testing.T) {
	m := Parse("a -> b\na -> c\na -> b", DefaultPolicy())
	if got := m["a"]; !slices.Equal(got, []string{"b", "c", "b"}) {
		t.Errorf("m[a] = %v, want [b c b]", got)
	}
	if got := m.Deps("a"); !slices.Equal(got, []string{"b", "c"}) {
		t.Errorf("Deps(a) = %v, want [b c]", got)
	}
	if m.EdgeCount() != 3 {
		t.Errorf("EdgeCount = %d, want 3", m.EdgeCount())
	}
}

func TestParseCollectionsExcluded(t *testing.T) {
	m := Parse("gdata_core_1_0 -> google_collect_1_0_rc1; gdata_core_1_0 -> jsr305;", DefaultPolicy())

	if _, ok := m["google-collect-1.0-rc1"]; ok {
		t.Error("google-collect terminal should not be a key")
	}
	if !m.IsTerminal("jsr305") {
		t.Error("jsr305 should be terminal")
	}
	// The edge itself survives.
	if got := m["gdata-core-1.0"]; !slices.Equal(got, []string{"google-collect-1.0-rc1", "jsr305"}) {
		t.Errorf("deps = %v", got)
	}
}

func TestParseNoPolicy(t *testing.T) {
	m := Parse("a -> google_collect_1_0", Policy{})
	if !m.IsTerminal("google-collect-1.0") {
		t.Errorf("without exclusions the collections jar is terminal: %#v", m)
	}
}

func TestParseExcludedSourceKept(t *testing.T) {
	m := Parse("google_collect_1_0 -> jsr305", DefaultPolicy())
	if _, ok := m["google-collect-1.0"]; !ok {
		t.Error("excluded prefix only applies to terminals")
	}
}

func TestParseCycle(t *testing.T) {
	m := Parse("a -> b\nb -> a", DefaultPolicy())
	if m.TerminalCount() != 0 {
		t.Errorf("cycle has no terminals: %#v", m)
	}
	if len(m) != 2 {
		t.Errorf("len = %d, want 2", len(m))
	}
}

func TestParseEveryEndpointIsKey(t *testing.T) {
	text := "a -> b\nb -> c\nd -> c\ne -> google_collect_1_0\nc -> f"
	m := Parse(text, DefaultPolicy())
	for _, e := range ParseEdges(text) {
		for _, id := range []string{e.From, e.To} {
			if _, ok := m[id]; !ok && !DefaultPolicy().Excludes(id) {
				t.Errorf("endpoint %q missing from mapping", id)
			}
		}
	}
	for _, id := range m.Keys() {
		if m[id] != nil && len(m[id]) == 0 {
			t.Errorf("%q has an empty non-nil list", id)
		}
	}
}

func TestTerminals(t *testing.T) {
	edges := []Edge{{"a", "d"}, {"a", "b"}, {"b", "c"}, {"a", "c"}}
	if got := Terminals(edges); !slices.Equal(got, []string{"c", "d"}) {
		t.Errorf("Terminals = %v, want [c d]", got)
	}
	if got := Terminals(nil); len(got) != 0 {
		t.Errorf("Terminals(nil) = %v", got)
	}
}

func TestKeysSorted(t *testing.T) {
	m := Parse("zeta -> alpha\nmid -> alpha", DefaultPolicy())
	if got := m.Keys(); !slices.Equal(got, []string{"alpha", "mid", "zeta"}) {
		t.Errorf("Keys = %v", got)
	}
}

func TestPolicyExcludes(t *testing.T) {
	p := Policy{Exclude: []string{"google-collect-", ""}}
	if !p.Excludes("google-collect-1.0") {
		t.Error("prefix should match")
	}
	if p.Excludes("google-collections") {
		t.Error("google-collections does not carry the prefix")
	}
	if p.Excludes("jsr305") {
		t.Error("empty prefix must not match everything")
	}
}

func ExampleParse() {
	m := Parse("gdata_core_1_0 -> jsr305; gdata_core_1_0 -> google_collect_1_0_rc1;", DefaultPolicy())
	for _, id := range m.Keys() {
		fmt.Println(id, m.Deps(id))
	}
	// Output:
	// gdata-core-1.0 [google-collect-1.0-rc1 jsr305]
	// jsr305 []
}
