package core

import (
	"context"
	"strings"

	"github.com/juju/errors"

	"recordhub/internal/infra/persistence/memory"
	"recordhub/pkg/domain"
)

// Match refines a to-many relation after the back-reference filter.
type Match interface {
	Matches(record domain.Record) bool
}

// PrefixMatch keeps records whose text field starts with Prefix, ignoring
// case. Records without the field never match. An empty prefix matches all.
type PrefixMatch struct {
	Field  string
	Prefix string
}

// Matches implements Match.
func (m PrefixMatch) Matches(record domain.Record) bool {
	value, ok := record.TextField(m.Field)
	if !ok {
		return false
	}
	return strings.HasPrefix(strings.ToLower(value), strings.ToLower(m.Prefix))
}

// Resolver follows relations between collections of a store. Missing targets
// are reported as absent, never as errors: foreign keys are not required to
// reference existing records.
type Resolver struct {
	tables domain.Tables
}

// NewResolver binds a resolver to store.
func NewResolver(store *memory.Store) *Resolver {
	return &Resolver{tables: store}
}

// ResolveOne follows a to-one relation from parent. ok is false when the
// foreign key is null or names no existing record.
func (r *Resolver) ResolveOne(ctx context.Context, parent domain.Record, rel domain.Relation) (domain.Record, bool, error) {
	if err := ctx.Err(); err != nil {
		return nil, false, err
	}
	if rel.Kind != domain.ToOne {
		return nil, false, domain.InvalidArgumentf("relation %s.%s is not to-one", rel.Source, rel.Name)
	}
	key, ok := parent.Reference(rel.Field)
	if !ok {
		return nil, false, nil
	}
	table, err := r.table(rel.Target)
	if err != nil {
		return nil, false, err
	}
	record, found := table.Find(key)
	return record, found, nil
}

// ResolveMany scans the target collection of a to-many relation for records
// whose back-reference equals parentID, then applies match when non-nil.
// Order follows the target collection.
func (r *Resolver) ResolveMany(ctx context.Context, parentID string, rel domain.Relation, match Match) ([]domain.Record, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if rel.Kind != domain.ToMany {
		return nil, domain.InvalidArgumentf("relation %s.%s is not to-many", rel.Source, rel.Name)
	}
	table, err := r.table(rel.Target)
	if err != nil {
		return nil, err
	}
	out := []domain.Record{}
	for _, record := range table.Records() {
		if ref, ok := record.Reference(rel.Field); !ok || ref != parentID {
			continue
		}
		if match != nil && !match.Matches(record) {
			continue
		}
		out = append(out, record)
	}
	return out, nil
}

func (r *Resolver) table(entity domain.EntityType) (domain.Table, error) {
	table, ok := r.tables.Table(entity)
	if !ok {
		return nil, errors.NotFoundf("collection for %s", entity)
	}
	return table, nil
}

// BookAuthor resolves Book.author.
func (r *Resolver) BookAuthor(book domain.Book) (domain.Author, bool) {
	return resolveOne[domain.Author](r, book, "author")
}

// AuthorBooks resolves Author.books, optionally refined by match.
func (r *Resolver) AuthorBooks(authorID string, match Match) []domain.Book {
	return resolveMany[domain.Book](r, domain.EntityAuthor, "books", authorID, match)
}

// EventUser resolves Event.user.
func (r *Resolver) EventUser(event domain.Event) (domain.User, bool) {
	return resolveOne[domain.User](r, event, "user")
}

// EventLocation resolves Event.location.
func (r *Resolver) EventLocation(event domain.Event) (domain.Location, bool) {
	return resolveOne[domain.Location](r, event, "location")
}

// EventParticipants resolves Event.participants.
func (r *Resolver) EventParticipants(eventID string) []domain.Participant {
	return resolveMany[domain.Participant](r, domain.EntityEvent, "participants", eventID, nil)
}

// UserEvents resolves User.events.
func (r *Resolver) UserEvents(userID string) []domain.Event {
	return resolveMany[domain.Event](r, domain.EntityUser, "events", userID, nil)
}

// UserParticipations resolves User.participations.
func (r *Resolver) UserParticipations(userID string) []domain.Participant {
	return resolveMany[domain.Participant](r, domain.EntityUser, "participations", userID, nil)
}

// LocationEvents resolves Location.events.
func (r *Resolver) LocationEvents(locationID string) []domain.Event {
	return resolveMany[domain.Event](r, domain.EntityLocation, "events", locationID, nil)
}

// ParticipantUser resolves Participant.user.
func (r *Resolver) ParticipantUser(p domain.Participant) (domain.User, bool) {
	return resolveOne[domain.User](r, p, "user")
}

// ParticipantEvent resolves Participant.event.
func (r *Resolver) ParticipantEvent(p domain.Participant) (domain.Event, bool) {
	return resolveOne[domain.Event](r, p, "event")
}

// resolveOne and resolveMany give the typed helpers the same path as
// expansion. The catalogue relations they name always exist with the right
// kind, so the only error left is an unknown collection, reported as absent.
func resolveOne[T domain.Record](r *Resolver, parent domain.Record, name string) (T, bool) {
	var zero T
	rel, ok := domain.LookupRelation(parent.Entity(), name)
	if !ok {
		return zero, false
	}
	record, found, err := r.ResolveOne(context.Background(), parent, rel)
	if err != nil || !found {
		return zero, false
	}
	typed, ok := record.(T)
	return typed, ok
}

func resolveMany[T domain.Record](r *Resolver, source domain.EntityType, name, parentID string, match Match) []T {
	out := []T{}
	rel, ok := domain.LookupRelation(source, name)
	if !ok {
		return out
	}
	records, err := r.ResolveMany(context.Background(), parentID, rel, match)
	if err != nil {
		return out
	}
	for _, record := range records {
		if typed, ok := record.(T); ok {
			out = append(out, typed)
		}
	}
	return out
}
