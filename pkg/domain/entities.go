// Package domain defines the record types, inputs, relation catalogue and
// change events shared by the recordhub store, engine and transports.
package domain

import (
	"strings"
	"time"
)

// EntityType identifies the collection a record belongs to.
type EntityType string

// Supported entity type identifiers used in change events and collection lookups.
const (
	// EntityAuthor identifies an author record.
	EntityAuthor EntityType = "author"
	// EntityBook identifies a book record.
	EntityBook EntityType = "book"
	// EntityUser identifies a user record.
	EntityUser EntityType = "user"
	// EntityEvent identifies a scheduled event record.
	EntityEvent EntityType = "event"
	// EntityLocation identifies a venue record.
	EntityLocation EntityType = "location"
	// EntityParticipant identifies an event participation record.
	EntityParticipant EntityType = "participant"
)

// EntityTypes lists every entity type in catalogue order.
func EntityTypes() []EntityType {
	return []EntityType{EntityAuthor, EntityBook, EntityUser, EntityEvent, EntityLocation, EntityParticipant}
}

// Title returns the entity name as used in topic names ("Author", "Book", ...).
func (e EntityType) Title() string {
	if e == "" {
		return ""
	}
	return strings.ToUpper(string(e[:1])) + string(e[1:])
}

// Collection returns the plural collection name used by transports.
func (e EntityType) Collection() string {
	return string(e) + "s"
}

// EntityForCollection maps a plural collection name back to its entity type.
func EntityForCollection(name string) (EntityType, bool) {
	for _, entity := range EntityTypes() {
		if entity.Collection() == name {
			return entity, true
		}
	}
	return "", false
}

// Record is implemented by every stored entity.
type Record interface {
	RecordID() string
	Entity() EntityType
	// Reference returns the id held by a foreign-key field. ok is false when
	// the field is unknown or the key is null.
	Reference(field string) (string, bool)
	// TextField returns the value of a text field for predicate matching.
	TextField(field string) (string, bool)
}

// Base contains common fields for all domain records.
type Base struct {
	ID        string    `json:"id"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// RecordID returns the record identifier.
func (b Base) RecordID() string { return b.ID }

// Author is a writer in the library collections.
type Author struct {
	Base
	Name    string `json:"name"`
	Surname string `json:"surname"`
	Age     int    `json:"age"`
}

// Book is a library title optionally attributed to an author.
type Book struct {
	Base
	Title       string  `json:"title"`
	AuthorID    *string `json:"author_id"`
	Pages       float64 `json:"pages"`
	IsPublished bool    `json:"is_published"`
}

// User is a meetup account.
type User struct {
	Base
	Username string `json:"username"`
	Email    string `json:"email"`
}

// Event is a meetup organised by a user at an optional location.
type Event struct {
	Base
	Title      string  `json:"title"`
	Desc       string  `json:"desc"`
	Date       string  `json:"date"`
	From       *string `json:"from"`
	To         *string `json:"to"`
	LocationID *string `json:"location_id"`
	UserID     string  `json:"user_id"`
}

// Location is a venue events can reference.
type Location struct {
	Base
	Name string   `json:"name"`
	Desc string   `json:"desc"`
	Lat  *float64 `json:"lat"`
	Lng  *float64 `json:"lng"`
}

// Participant links a user to an event.
type Participant struct {
	Base
	UserID  string `json:"user_id"`
	EventID string `json:"event_id"`
}

// Entity implements Record.
func (Author) Entity() EntityType { return EntityAuthor }

// Entity implements Record.
func (Book) Entity() EntityType { return EntityBook }

// Entity implements Record.
func (User) Entity() EntityType { return EntityUser }

// Entity implements Record.
func (Event) Entity() EntityType { return EntityEvent }

// Entity implements Record.
func (Location) Entity() EntityType { return EntityLocation }

// Entity implements Record.
func (Participant) Entity() EntityType { return EntityParticipant }

// Reference implements Record. Authors hold no foreign keys.
func (Author) Reference(string) (string, bool) { return "", false }

// Reference implements Record.
func (b Book) Reference(field string) (string, bool) {
	if field == "author_id" {
		return deref(b.AuthorID)
	}
	return "", false
}

// Reference implements Record. Users hold no foreign keys.
func (User) Reference(string) (string, bool) { return "", false }

// Reference implements Record.
func (e Event) Reference(field string) (string, bool) {
	switch field {
	case "user_id":
		return e.UserID, e.UserID != ""
	case "location_id":
		return deref(e.LocationID)
	}
	return "", false
}

// Reference implements Record. Locations hold no foreign keys.
func (Location) Reference(string) (string, bool) { return "", false }

// Reference implements Record.
func (p Participant) Reference(field string) (string, bool) {
	switch field {
	case "user_id":
		return p.UserID, p.UserID != ""
	case "event_id":
		return p.EventID, p.EventID != ""
	}
	return "", false
}

// TextField implements Record.
func (a Author) TextField(field string) (string, bool) {
	switch field {
	case "id":
		return a.ID, true
	case "name":
		return a.Name, true
	case "surname":
		return a.Surname, true
	}
	return "", false
}

// TextField implements Record.
func (b Book) TextField(field string) (string, bool) {
	switch field {
	case "id":
		return b.ID, true
	case "title":
		return b.Title, true
	}
	return "", false
}

// TextField implements Record.
func (u User) TextField(field string) (string, bool) {
	switch field {
	case "id":
		return u.ID, true
	case "username":
		return u.Username, true
	case "email":
		return u.Email, true
	}
	return "", false
}

// TextField implements Record.
func (e Event) TextField(field string) (string, bool) {
	switch field {
	case "id":
		return e.ID, true
	case "title":
		return e.Title, true
	case "desc":
		return e.Desc, true
	case "date":
		return e.Date, true
	case "from":
		return deref(e.From)
	case "to":
		return deref(e.To)
	}
	return "", false
}

// TextField implements Record.
func (l Location) TextField(field string) (string, bool) {
	switch field {
	case "id":
		return l.ID, true
	case "name":
		return l.Name, true
	case "desc":
		return l.Desc, true
	}
	return "", false
}

// TextField implements Record.
func (p Participant) TextField(field string) (string, bool) {
	if field == "id" {
		return p.ID, true
	}
	return "", false
}

// Clone returns a deep copy of the author.
func (a Author) Clone() Author { return a }

// Clone returns a deep copy of the book.
func (b Book) Clone() Book {
	cp := b
	cp.AuthorID = cloneString(b.AuthorID)
	return cp
}

// Clone returns a deep copy of the user.
func (u User) Clone() User { return u }

// Clone returns a deep copy of the event.
func (e Event) Clone() Event {
	cp := e
	cp.From = cloneString(e.From)
	cp.To = cloneString(e.To)
	cp.LocationID = cloneString(e.LocationID)
	return cp
}

// Clone returns a deep copy of the location.
func (l Location) Clone() Location {
	cp := l
	cp.Lat = cloneFloat(l.Lat)
	cp.Lng = cloneFloat(l.Lng)
	return cp
}

// Clone returns a deep copy of the participant.
func (p Participant) Clone() Participant { return p }

func deref(v *string) (string, bool) {
	if v == nil || *v == "" {
		return "", false
	}
	return *v, true
}

func cloneString(v *string) *string {
	if v == nil {
		return nil
	}
	cp := *v
	return &cp
}

func cloneFloat(v *float64) *float64 {
	if v == nil {
		return nil
	}
	cp := *v
	return &cp
}
