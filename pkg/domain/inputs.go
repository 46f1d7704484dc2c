package domain

import (
	"math"
	"strings"
	"time"
)

// Input describes the caller-supplied data of a create or update. Build
// constructs a new record around a generated id; Apply overwrites exactly the
// fields the input declares.
type Input[T any] interface {
	Validate() error
	Build(id string, now time.Time) T
	Apply(record *T, now time.Time)
}

// AuthorInput is the data accepted when creating or updating an author.
type AuthorInput struct {
	Name    string `json:"name"`
	Surname string `json:"surname"`
	Age     int    `json:"age"`
}

// BookInput is the data accepted when creating or updating a book.
type BookInput struct {
	Title       string  `json:"title"`
	AuthorID    *string `json:"author_id"`
	Pages       float64 `json:"pages"`
	IsPublished bool    `json:"is_published"`
}

// UserInput is the data accepted when creating or updating a user.
type UserInput struct {
	Username string `json:"username"`
	Email    string `json:"email"`
}

// EventInput is the data accepted when creating or updating an event.
type EventInput struct {
	Title      string  `json:"title"`
	Desc       string  `json:"desc"`
	Date       string  `json:"date"`
	From       *string `json:"from"`
	To         *string `json:"to"`
	LocationID *string `json:"location_id"`
	UserID     string  `json:"user_id"`
}

// LocationInput is the data accepted when creating or updating a location.
type LocationInput struct {
	Name string   `json:"name"`
	Desc string   `json:"desc"`
	Lat  *float64 `json:"lat"`
	Lng  *float64 `json:"lng"`
}

// ParticipantInput is the data accepted when creating or updating a participant.
type ParticipantInput struct {
	UserID  string `json:"user_id"`
	EventID string `json:"event_id"`
}

func required(entity EntityType, field, value string) error {
	if strings.TrimSpace(value) == "" {
		return InvalidArgumentf("empty %s %s", entity, field)
	}
	return nil
}

func nonNegative(entity EntityType, field string, value int) error {
	if value < 0 {
		return InvalidArgumentf("negative %s %s %d", entity, field, value)
	}
	return nil
}

func nonNegativeFloat(entity EntityType, field string, value float64) error {
	if value < 0 || math.IsNaN(value) || math.IsInf(value, 0) {
		return InvalidArgumentf("%s %s %v", entity, field, value)
	}
	return nil
}

func firstError(errs ...error) error {
	for _, err := range errs {
		if err != nil {
			return err
		}
	}
	return nil
}

// Validate implements Input.
func (in AuthorInput) Validate() error {
	return firstError(
		required(EntityAuthor, "name", in.Name),
		required(EntityAuthor, "surname", in.Surname),
		nonNegative(EntityAuthor, "age", in.Age),
	)
}

// Build implements Input.
func (in AuthorInput) Build(id string, now time.Time) Author {
	a := Author{Base: Base{ID: id, CreatedAt: now}}
	in.Apply(&a, now)
	return a
}

// Apply implements Input.
func (in AuthorInput) Apply(a *Author, now time.Time) {
	a.Name = in.Name
	a.Surname = in.Surname
	a.Age = in.Age
	a.UpdatedAt = now
}

// Validate implements Input.
func (in BookInput) Validate() error {
	return firstError(
		required(EntityBook, "title", in.Title),
		nonNegativeFloat(EntityBook, "pages", in.Pages),
	)
}

// Build implements Input.
func (in BookInput) Build(id string, now time.Time) Book {
	b := Book{Base: Base{ID: id, CreatedAt: now}}
	in.Apply(&b, now)
	return b
}

// Apply implements Input.
func (in BookInput) Apply(b *Book, now time.Time) {
	b.Title = in.Title
	b.AuthorID = normalizeRef(in.AuthorID)
	b.Pages = in.Pages
	b.IsPublished = in.IsPublished
	b.UpdatedAt = now
}

// Validate implements Input.
func (in UserInput) Validate() error {
	if err := firstError(
		required(EntityUser, "username", in.Username),
		required(EntityUser, "email", in.Email),
	); err != nil {
		return err
	}
	if !strings.Contains(in.Email, "@") {
		return InvalidArgumentf("user email %q", in.Email)
	}
	return nil
}

// Build implements Input.
func (in UserInput) Build(id string, now time.Time) User {
	u := User{Base: Base{ID: id, CreatedAt: now}}
	in.Apply(&u, now)
	return u
}

// Apply implements Input.
func (in UserInput) Apply(u *User, now time.Time) {
	u.Username = in.Username
	u.Email = in.Email
	u.UpdatedAt = now
}

// Validate implements Input.
func (in EventInput) Validate() error {
	return firstError(
		required(EntityEvent, "title", in.Title),
		required(EntityEvent, "desc", in.Desc),
		required(EntityEvent, "date", in.Date),
		required(EntityEvent, "user_id", in.UserID),
	)
}

// Build implements Input.
func (in EventInput) Build(id string, now time.Time) Event {
	e := Event{Base: Base{ID: id, CreatedAt: now}}
	in.Apply(&e, now)
	return e
}

// Apply implements Input.
func (in EventInput) Apply(e *Event, now time.Time) {
	e.Title = in.Title
	e.Desc = in.Desc
	e.Date = in.Date
	e.From = cloneString(in.From)
	e.To = cloneString(in.To)
	e.LocationID = normalizeRef(in.LocationID)
	e.UserID = in.UserID
	e.UpdatedAt = now
}

// Validate implements Input.
func (in LocationInput) Validate() error {
	if err := required(EntityLocation, "name", in.Name); err != nil {
		return err
	}
	if in.Lat != nil && (*in.Lat < -90 || *in.Lat > 90) {
		return InvalidArgumentf("location lat %v", *in.Lat)
	}
	if in.Lng != nil && (*in.Lng < -180 || *in.Lng > 180) {
		return InvalidArgumentf("location lng %v", *in.Lng)
	}
	return nil
}

// Build implements Input.
func (in LocationInput) Build(id string, now time.Time) Location {
	l := Location{Base: Base{ID: id, CreatedAt: now}}
	in.Apply(&l, now)
	return l
}

// Apply implements Input.
func (in LocationInput) Apply(l *Location, now time.Time) {
	l.Name = in.Name
	l.Desc = in.Desc
	l.Lat = cloneFloat(in.Lat)
	l.Lng = cloneFloat(in.Lng)
	l.UpdatedAt = now
}

// Validate implements Input.
func (in ParticipantInput) Validate() error {
	return firstError(
		required(EntityParticipant, "user_id", in.UserID),
		required(EntityParticipant, "event_id", in.EventID),
	)
}

// Build implements Input.
func (in ParticipantInput) Build(id string, now time.Time) Participant {
	p := Participant{Base: Base{ID: id, CreatedAt: now}}
	in.Apply(&p, now)
	return p
}

// Apply implements Input.
func (in ParticipantInput) Apply(p *Participant, now time.Time) {
	p.UserID = in.UserID
	p.EventID = in.EventID
	p.UpdatedAt = now
}

// normalizeRef maps an empty foreign key to null.
func normalizeRef(v *string) *string {
	if v == nil || strings.TrimSpace(*v) == "" {
		return nil
	}
	return cloneString(v)
}
