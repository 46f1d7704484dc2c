package domain_test

import (
	"errors"
	"testing"
	"time"

	"recordhub/pkg/domain"
)

func TestInputValidation(t *testing.T) {
	cases := []struct {
		name  string
		input interface{ Validate() error }
		ok    bool
	}{
		{"author", domain.AuthorInput{Name: "Ada", Surname: "Lovelace", Age: 36}, true},
		{"author blank name", domain.AuthorInput{Name: " ", Surname: "Lovelace"}, false},
		{"author negative age", domain.AuthorInput{Name: "Ada", Surname: "Lovelace", Age: -1}, false},
		{"book", domain.BookInput{Title: "Notes", Pages: 10}, true},
		{"book without title", domain.BookInput{Pages: 10}, false},
		{"book negative pages", domain.BookInput{Title: "Notes", Pages: -3}, false},
		{"book fractional pages", domain.BookInput{Title: "Notes", Pages: 12.5}, true},
		{"user", domain.UserInput{Username: "ada", Email: "ada@example.com"}, true},
		{"user bad email", domain.UserInput{Username: "ada", Email: "ada"}, false},
		{"event", domain.EventInput{Title: "Go", Desc: "Meetup", Date: "2024-05-01", UserID: "u1"}, true},
		{"event without user", domain.EventInput{Title: "Go", Desc: "Meetup", Date: "2024-05-01"}, false},
		{"location", domain.LocationInput{Name: "Hall", Lat: ptr(41.0), Lng: ptr(29.0)}, true},
		{"location bad lat", domain.LocationInput{Name: "Hall", Lat: ptr(91.0)}, false},
		{"location bad lng", domain.LocationInput{Name: "Hall", Lng: ptr(-181.0)}, false},
		{"participant", domain.ParticipantInput{UserID: "u1", EventID: "e1"}, true},
		{"participant without event", domain.ParticipantInput{UserID: "u1"}, false},
	}
	for _, tc := range cases {
		err := tc.input.Validate()
		if tc.ok && err != nil {
			t.Fatalf("%s: unexpected error %v", tc.name, err)
		}
		if !tc.ok && !errors.Is(err, domain.ErrInvalidArgument) {
			t.Fatalf("%s: expected invalid argument, got %v", tc.name, err)
		}
	}
}

func TestBuildAndApply(t *testing.T) {
	created := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	later := created.Add(time.Hour)

	in := domain.BookInput{Title: "Notes", AuthorID: ptr(""), Pages: 10}
	book := in.Build("b1", created)
	if book.ID != "b1" || !book.CreatedAt.Equal(created) || !book.UpdatedAt.Equal(created) {
		t.Fatalf("unexpected base %+v", book.Base)
	}
	if book.AuthorID != nil {
		t.Fatalf("empty author id must become null")
	}

	author := ptr("a1")
	domain.BookInput{Title: "Notes 2", AuthorID: author, Pages: 12}.Apply(&book, later)
	*author = "changed"
	if book.Title != "Notes 2" || *book.AuthorID != "a1" || !book.UpdatedAt.Equal(later) || !book.CreatedAt.Equal(created) {
		t.Fatalf("unexpected applied book %+v", book)
	}

	event := domain.EventInput{Title: "Go", Desc: "d", Date: "2024", UserID: "u1", LocationID: ptr(" ")}.Build("e1", created)
	if event.LocationID != nil {
		t.Fatalf("blank location id must become null")
	}
}

func isKind(err, kind error) bool { return errors.Is(err, kind) }
