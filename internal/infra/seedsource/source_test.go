package seedsource

import (
	"testing"

	"github.com/juju/errors"
)

func TestCleanKey(t *testing.T) {
	good := map[string]string{
		"library.json":        "library.json",
		"./seed/library.json": "seed/library.json",
		`seed\lib.yaml`:       "seed/lib.yaml",
		"a/../b.json":         "b.json",
	}
	for in, want := range good {
		got, err := CleanKey(in)
		if err != nil || got != want {
			t.Fatalf("CleanKey(%q) = %q, %v; want %q", in, got, err, want)
		}
	}
	for _, in := range []string{"", "  ", "/abs", `\abs`, "..", "../x", "a/../../x"} {
		if _, err := CleanKey(in); !errors.Is(err, errors.NotValid) {
			t.Fatalf("CleanKey(%q): expected not valid, got %v", in, err)
		}
	}
}

func TestContentTypeFor(t *testing.T) {
	cases := map[string]string{
		"a.json": "application/json",
		"a.YAML": "application/yaml",
		"a.yml":  "application/yaml",
		"a.bin":  "application/octet-stream",
	}
	for key, want := range cases {
		if got := ContentTypeFor(key); got != want {
			t.Fatalf("%s: got %s want %s", key, got, want)
		}
	}
}
