package memory

import (
	"context"
	"io"
	"strings"
	"testing"

	"github.com/juju/errors"

	"recordhub/internal/infra/seedsource"
)

func TestStore(t *testing.T) {
	store := New()
	ctx := context.Background()
	if _, _, err := store.Open(ctx, "library.json"); !errors.Is(err, errors.NotFound) {
		t.Fatalf("expected not found, got %v", err)
	}
	info, err := store.Put(ctx, "./library.json", strings.NewReader("{}"), "")
	if err != nil {
		t.Fatalf("put: %v", err)
	}
	if info.Key != "library.json" || info.ContentType != "application/json" || info.Size != 2 {
		t.Fatalf("unexpected info %+v", info)
	}
	if _, err := store.Put(ctx, "library.json", strings.NewReader("{}"), ""); !errors.Is(err, errors.AlreadyExists) {
		t.Fatalf("expected already exists, got %v", err)
	}
	_, rc, err := store.Open(ctx, "library.json")
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	data, _ := io.ReadAll(rc)
	if string(data) != "{}" {
		t.Fatalf("unexpected data %q", data)
	}
	_, _ = store.Put(ctx, "other.yaml", strings.NewReader("a: 1"), "text/plain")
	infos, _ := store.List(ctx, "")
	if len(infos) != 2 || infos[1].ContentType != "text/plain" {
		t.Fatalf("unexpected list %+v", infos)
	}
	if store.Driver() != seedsource.DriverMemory {
		t.Fatalf("unexpected driver")
	}
}
