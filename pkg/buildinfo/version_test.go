package buildinfo

import (
	"strings"
	"testing"
)

func TestUserAgent(t *testing.T) {
	ua := UserAgent()
	if !strings.HasPrefix(ua, "gdatamvn/") || ua == "gdatamvn/" {
		t.Errorf("UserAgent() = %q", ua)
	}
	if ua != "gdatamvn/"+Get().Version {
		t.Errorf("UserAgent() = %q, want version %q", ua, Get().Version)
	}
}

func TestTemplate(t *testing.T) {
	i := Get()
	tmpl := Template()
	for _, want := range []string{"{{.Name}}", i.Version, i.Commit, i.Date} {
		if !strings.Contains(tmpl, want) {
			t.Errorf("Template() missing %q: %q", want, tmpl)
		}
	}
}

func TestInfoString(t *testing.T) {
	got := Info{Version: "v1.2.3", Commit: "abc", Date: "2024-01-01"}.String()
	want := "version: v1.2.3\ncommit: abc\nbuilt: 2024-01-01"
	if got != want {
		t.Errorf("String() = %q, want %q", got, want)
	}
}
