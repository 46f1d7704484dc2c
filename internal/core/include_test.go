package core_test

import (
	"context"
	"errors"
	"testing"

	"recordhub/internal/core"
	"recordhub/pkg/domain"
)

func TestParseInclude(t *testing.T) {
	inc, err := core.ParseInclude("books(title:no).author, events.location,events.participants")
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	names := inc.Names()
	if len(names) != 2 || names[0] != "books" || names[1] != "events" {
		t.Fatalf("unexpected top level: %v", names)
	}
	books, _ := inc.Child("books")
	if books.Match == nil || books.Match.Field != "title" || books.Match.Prefix != "no" {
		t.Fatalf("unexpected books filter: %+v", books.Match)
	}
	if sub := books.Names(); len(sub) != 1 || sub[0] != "author" {
		t.Fatalf("unexpected books children: %v", sub)
	}
	events, _ := inc.Child("events")
	if sub := events.Names(); len(sub) != 2 || sub[0] != "location" || sub[1] != "participants" {
		t.Fatalf("paths sharing a prefix were not merged: %v", sub)
	}

	empty, err := core.ParseInclude("  ")
	if err != nil || !empty.Empty() {
		t.Fatalf("expected empty include, got %v %v", empty, err)
	}
}

func TestParseIncludeRejectsMalformed(t *testing.T) {
	for _, expr := range []string{
		"books(",
		"books)",
		"books(title)",
		"books(:x)",
		"books,,author",
		"books..author",
		"books(title:a),books(title:b)",
	} {
		if _, err := core.ParseInclude(expr); !errors.Is(err, domain.ErrInvalidArgument) {
			t.Fatalf("%q: expected invalid argument, got %v", expr, err)
		}
	}
}

func TestExpandAttachesRelations(t *testing.T) {
	svc := core.NewService(seededStore(t), nil)
	ctx := context.Background()
	author, _ := svc.GetAuthor(ctx, "a2")

	inc, err := core.ParseInclude("books(title:n).author")
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	out, err := svc.Expand(ctx, author, inc)
	if err != nil {
		t.Fatalf("expand: %v", err)
	}
	if out["name"] != "Fyodor" {
		t.Fatalf("unexpected author fields: %v", out)
	}
	books, ok := out["books"].([]map[string]any)
	if !ok || len(books) != 2 {
		t.Fatalf("expected two filtered books, got %#v", out["books"])
	}
	for _, b := range books {
		nested, ok := b["author"].(map[string]any)
		if !ok || nested["id"] != "a2" {
			t.Fatalf("nested author missing: %#v", b)
		}
	}
}

func TestExpandMissingToOneRendersNull(t *testing.T) {
	svc := core.NewService(seededStore(t), nil)
	ctx := context.Background()
	orphan, _ := svc.GetBook(ctx, "b5")
	inc, _ := core.ParseInclude("author")

	out, err := svc.Expand(ctx, orphan, inc)
	if err != nil {
		t.Fatalf("expand: %v", err)
	}
	v, present := out["author"]
	if !present || v != nil {
		t.Fatalf("expected author: null, got %#v (present=%v)", v, present)
	}
}

func TestExpandRejectsUnknownRelation(t *testing.T) {
	svc := core.NewService(seededStore(t), nil)
	ctx := context.Background()
	book, _ := svc.GetBook(ctx, "b1")

	for _, expr := range []string{"publisher", "author(name:j)"} {
		inc, err := core.ParseInclude(expr)
		if err != nil {
			t.Fatalf("parse %q: %v", expr, err)
		}
		if _, err := svc.Expand(ctx, book, inc); !errors.Is(err, domain.ErrInvalidArgument) {
			t.Fatalf("%q: expected invalid argument, got %v", expr, err)
		}
	}
}
