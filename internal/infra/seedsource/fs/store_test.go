package fs

import (
	"context"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/juju/errors"

	"recordhub/internal/infra/seedsource"
)

func TestStorePutOpenList(t *testing.T) {
	root := t.TempDir()
	store, err := New(root)
	if err != nil {
		t.Fatalf("new: %v", err)
	}
	ctx := context.Background()

	info, err := store.Put(ctx, "nested/library.yaml", strings.NewReader("authors: []\n"), "")
	if err != nil {
		t.Fatalf("put: %v", err)
	}
	if info.ContentType != "application/yaml" || info.Size != 12 || len(info.ETag) != 64 {
		t.Fatalf("unexpected info %+v", info)
	}
	if _, err := os.Stat(filepath.Join(root, "nested", "library.yaml")); err != nil {
		t.Fatalf("file missing: %v", err)
	}
	if _, err := store.Put(ctx, "nested/library.yaml", strings.NewReader("x"), ""); !errors.Is(err, errors.AlreadyExists) {
		t.Fatalf("expected already exists, got %v", err)
	}

	_, rc, err := store.Open(ctx, "nested/library.yaml")
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	data, _ := io.ReadAll(rc)
	_ = rc.Close()
	if string(data) != "authors: []\n" {
		t.Fatalf("unexpected data %q", data)
	}

	if _, err := store.Put(ctx, "top.json", strings.NewReader("{}"), ""); err != nil {
		t.Fatalf("put: %v", err)
	}
	infos, err := store.List(ctx, "")
	if err != nil || len(infos) != 2 || infos[0].Key != "nested/library.yaml" || infos[1].Key != "top.json" {
		t.Fatalf("unexpected list %+v %v", infos, err)
	}
	infos, _ = store.List(ctx, "nested/")
	if len(infos) != 1 {
		t.Fatalf("expected prefix filter, got %+v", infos)
	}
	if store.Driver() != seedsource.DriverFilesystem {
		t.Fatalf("unexpected driver")
	}
}

func TestStoreRejectsBadKeys(t *testing.T) {
	store, _ := New(t.TempDir())
	ctx := context.Background()
	if _, _, err := store.Open(ctx, "absent.json"); !errors.Is(err, errors.NotFound) {
		t.Fatalf("expected not found, got %v", err)
	}
	for _, key := range []string{"", "/etc/passwd", "../up.json", "a/../../up.json"} {
		if _, _, err := store.Open(ctx, key); !errors.Is(err, errors.NotValid) {
			t.Fatalf("%q: expected not valid, got %v", key, err)
		}
	}
	_ = os.Mkdir(filepath.Join(store.root, "dir"), 0o755)
	if _, _, err := store.Open(ctx, "dir"); !errors.Is(err, errors.NotValid) {
		t.Fatalf("expected directory rejected, got %v", err)
	}
}
