// Package memory provides the in-memory record store backing recordhub.
// Data lives only for the lifetime of the process.
package memory

import (
	"github.com/juju/errors"

	"recordhub/pkg/domain"
)

// Compile-time contract assertions ensuring memory types adhere to the domain persistence interfaces.
var (
	_ domain.Tables = (*Store)(nil)
	_ domain.Table  = (*Collection[domain.Author])(nil)
)

type (
	// Author aliases domain.Author for in-memory persistence operations.
	Author = domain.Author
	// Book aliases domain.Book.
	Book = domain.Book
	// User aliases domain.User.
	User = domain.User
	// Event aliases domain.Event.
	Event = domain.Event
	// Location aliases domain.Location.
	Location = domain.Location
	// Participant aliases domain.Participant.
	Participant = domain.Participant
)

// Store groups one collection per entity type. Each collection is locked
// independently, so writes to books never wait on reads of authors.
type Store struct {
	Authors      *Collection[Author]
	Books        *Collection[Book]
	Users        *Collection[User]
	Events       *Collection[Event]
	Locations    *Collection[Location]
	Participants *Collection[Participant]

	tables map[domain.EntityType]domain.Table
}

// NewStore constructs an empty store.
func NewStore() *Store {
	s := &Store{
		Authors:      NewCollection[Author](domain.EntityAuthor),
		Books:        NewCollection[Book](domain.EntityBook),
		Users:        NewCollection[User](domain.EntityUser),
		Events:       NewCollection[Event](domain.EntityEvent),
		Locations:    NewCollection[Location](domain.EntityLocation),
		Participants: NewCollection[Participant](domain.EntityParticipant),
	}
	s.tables = map[domain.EntityType]domain.Table{
		domain.EntityAuthor:      s.Authors,
		domain.EntityBook:        s.Books,
		domain.EntityUser:        s.Users,
		domain.EntityEvent:       s.Events,
		domain.EntityLocation:    s.Locations,
		domain.EntityParticipant: s.Participants,
	}
	return s
}

// Table implements domain.Tables.
func (s *Store) Table(entity domain.EntityType) (domain.Table, bool) {
	t, ok := s.tables[entity]
	return t, ok
}

// Counts reports the size of every collection keyed by entity type.
func (s *Store) Counts() map[domain.EntityType]int {
	return map[domain.EntityType]int{
		domain.EntityAuthor:      s.Authors.Len(),
		domain.EntityBook:        s.Books.Len(),
		domain.EntityUser:        s.Users.Len(),
		domain.EntityEvent:       s.Events.Len(),
		domain.EntityLocation:    s.Locations.Len(),
		domain.EntityParticipant: s.Participants.Len(),
	}
}

// Snapshot captures a point-in-time copy of every collection.
type Snapshot struct {
	Authors      []Author      `json:"authors" yaml:"authors"`
	Books        []Book        `json:"books" yaml:"books"`
	Users        []User        `json:"users" yaml:"users"`
	Events       []Event       `json:"events" yaml:"events"`
	Locations    []Location    `json:"locations" yaml:"locations"`
	Participants []Participant `json:"participants" yaml:"participants"`
}

// ExportState returns a copy of every collection. Collections are read one
// after another; the snapshot is consistent per collection only.
func (s *Store) ExportState() Snapshot {
	return Snapshot{
		Authors:      s.Authors.List(),
		Books:        s.Books.List(),
		Users:        s.Users.List(),
		Events:       s.Events.List(),
		Locations:    s.Locations.List(),
		Participants: s.Participants.List(),
	}
}

// ImportState inserts every record of the snapshot, keeping the given ids.
// Records already present cause a DuplicateID error; records inserted before
// the failure are kept.
func (s *Store) ImportState(snapshot Snapshot) error {
	if err := importInto(s.Authors, snapshot.Authors); err != nil {
		return err
	}
	if err := importInto(s.Books, snapshot.Books); err != nil {
		return err
	}
	if err := importInto(s.Users, snapshot.Users); err != nil {
		return err
	}
	if err := importInto(s.Locations, snapshot.Locations); err != nil {
		return err
	}
	if err := importInto(s.Events, snapshot.Events); err != nil {
		return err
	}
	return importInto(s.Participants, snapshot.Participants)
}

func importInto[T domain.Cloneable[T]](c *Collection[T], records []T) error {
	for _, record := range records {
		if _, err := c.Insert(record); err != nil {
			return errors.Annotatef(err, "import %s", c.Entity())
		}
	}
	return nil
}
