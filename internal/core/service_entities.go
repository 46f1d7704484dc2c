package core

import (
	"context"

	"recordhub/pkg/domain"
)

// CreateAuthor validates input, stores a new author under a generated id and
// publishes AuthorCreated.
func (s *Service) CreateAuthor(ctx context.Context, in domain.AuthorInput) (domain.Author, error) {
	return create[domain.Author](ctx, s, s.store.Authors, in)
}

// UpdateAuthor overwrites the input fields of an existing author and publishes
// AuthorUpdated.
func (s *Service) UpdateAuthor(ctx context.Context, id string, in domain.AuthorInput) (domain.Author, error) {
	return update[domain.Author](ctx, s, s.store.Authors, id, in)
}

// DeleteAuthor removes the author with id when present, returns the remaining
// authors and publishes them as AuthorDeleted.
func (s *Service) DeleteAuthor(ctx context.Context, id string) ([]domain.Author, error) {
	return remove(ctx, s, s.store.Authors, id)
}

// DeleteAllAuthors clears the collection and returns how many authors it held.
func (s *Service) DeleteAllAuthors(ctx context.Context) (int, error) {
	return removeAll(ctx, s, s.store.Authors)
}

// GetAuthor returns the author with id or a NotFound error.
func (s *Service) GetAuthor(ctx context.Context, id string) (domain.Author, error) {
	return get(ctx, s, s.store.Authors, id)
}

// ListAuthors returns every author in insertion order.
func (s *Service) ListAuthors(ctx context.Context) ([]domain.Author, error) {
	return list(ctx, s, s.store.Authors)
}

// CreateBook validates input, stores a new book under a generated id and
// publishes BookCreated.
func (s *Service) CreateBook(ctx context.Context, in domain.BookInput) (domain.Book, error) {
	return create[domain.Book](ctx, s, s.store.Books, in)
}

// UpdateBook overwrites the input fields of an existing book and publishes
// BookUpdated.
func (s *Service) UpdateBook(ctx context.Context, id string, in domain.BookInput) (domain.Book, error) {
	return update[domain.Book](ctx, s, s.store.Books, id, in)
}

// DeleteBook removes the book with id when present, returns the remaining
// books and publishes them as BookDeleted.
func (s *Service) DeleteBook(ctx context.Context, id string) ([]domain.Book, error) {
	return remove(ctx, s, s.store.Books, id)
}

// DeleteAllBooks clears the collection and returns how many books it held.
func (s *Service) DeleteAllBooks(ctx context.Context) (int, error) {
	return removeAll(ctx, s, s.store.Books)
}

// GetBook returns the book with id or a NotFound error.
func (s *Service) GetBook(ctx context.Context, id string) (domain.Book, error) {
	return get(ctx, s, s.store.Books, id)
}

// ListBooks returns every book in insertion order.
func (s *Service) ListBooks(ctx context.Context) ([]domain.Book, error) {
	return list(ctx, s, s.store.Books)
}

// CreateUser validates input, stores a new user under a generated id and
// publishes UserCreated.
func (s *Service) CreateUser(ctx context.Context, in domain.UserInput) (domain.User, error) {
	return create[domain.User](ctx, s, s.store.Users, in)
}

// UpdateUser overwrites the input fields of an existing user and publishes
// UserUpdated.
func (s *Service) UpdateUser(ctx context.Context, id string, in domain.UserInput) (domain.User, error) {
	return update[domain.User](ctx, s, s.store.Users, id, in)
}

// DeleteUser removes the user with id when present, returns the remaining
// users and publishes them as UserDeleted.
func (s *Service) DeleteUser(ctx context.Context, id string) ([]domain.User, error) {
	return remove(ctx, s, s.store.Users, id)
}

// DeleteAllUsers clears the collection and returns how many users it held.
func (s *Service) DeleteAllUsers(ctx context.Context) (int, error) {
	return removeAll(ctx, s, s.store.Users)
}

// GetUser returns the user with id or a NotFound error.
func (s *Service) GetUser(ctx context.Context, id string) (domain.User, error) {
	return get(ctx, s, s.store.Users, id)
}

// ListUsers returns every user in insertion order.
func (s *Service) ListUsers(ctx context.Context) ([]domain.User, error) {
	return list(ctx, s, s.store.Users)
}

// CreateEvent validates input, stores a new event under a generated id and
// publishes EventCreated.
func (s *Service) CreateEvent(ctx context.Context, in domain.EventInput) (domain.Event, error) {
	return create[domain.Event](ctx, s, s.store.Events, in)
}

// UpdateEvent overwrites the input fields of an existing event and publishes
// EventUpdated.
func (s *Service) UpdateEvent(ctx context.Context, id string, in domain.EventInput) (domain.Event, error) {
	return update[domain.Event](ctx, s, s.store.Events, id, in)
}

// DeleteEvent removes the event with id when present, returns the remaining
// events and publishes them as EventDeleted.
func (s *Service) DeleteEvent(ctx context.Context, id string) ([]domain.Event, error) {
	return remove(ctx, s, s.store.Events, id)
}

// DeleteAllEvents clears the collection and returns how many events it held.
func (s *Service) DeleteAllEvents(ctx context.Context) (int, error) {
	return removeAll(ctx, s, s.store.Events)
}

// GetEvent returns the event with id or a NotFound error.
func (s *Service) GetEvent(ctx context.Context, id string) (domain.Event, error) {
	return get(ctx, s, s.store.Events, id)
}

// ListEvents returns every event in insertion order.
func (s *Service) ListEvents(ctx context.Context) ([]domain.Event, error) {
	return list(ctx, s, s.store.Events)
}

// CreateLocation validates input, stores a new location under a generated id and
// publishes LocationCreated.
func (s *Service) CreateLocation(ctx context.Context, in domain.LocationInput) (domain.Location, error) {
	return create[domain.Location](ctx, s, s.store.Locations, in)
}

// UpdateLocation overwrites the input fields of an existing location and publishes
// LocationUpdated.
func (s *Service) UpdateLocation(ctx context.Context, id string, in domain.LocationInput) (domain.Location, error) {
	return update[domain.Location](ctx, s, s.store.Locations, id, in)
}

// DeleteLocation removes the location with id when present, returns the remaining
// locations and publishes them as LocationDeleted.
func (s *Service) DeleteLocation(ctx context.Context, id string) ([]domain.Location, error) {
	return remove(ctx, s, s.store.Locations, id)
}

// DeleteAllLocations clears the collection and returns how many locations it held.
func (s *Service) DeleteAllLocations(ctx context.Context) (int, error) {
	return removeAll(ctx, s, s.store.Locations)
}

// GetLocation returns the location with id or a NotFound error.
func (s *Service) GetLocation(ctx context.Context, id string) (domain.Location, error) {
	return get(ctx, s, s.store.Locations, id)
}

// ListLocations returns every location in insertion order.
func (s *Service) ListLocations(ctx context.Context) ([]domain.Location, error) {
	return list(ctx, s, s.store.Locations)
}

// CreateParticipant validates input, stores a new participant under a generated id and
// publishes ParticipantCreated.
func (s *Service) CreateParticipant(ctx context.Context, in domain.ParticipantInput) (domain.Participant, error) {
	return create[domain.Participant](ctx, s, s.store.Participants, in)
}

// UpdateParticipant overwrites the input fields of an existing participant and publishes
// ParticipantUpdated.
func (s *Service) UpdateParticipant(ctx context.Context, id string, in domain.ParticipantInput) (domain.Participant, error) {
	return update[domain.Participant](ctx, s, s.store.Participants, id, in)
}

// DeleteParticipant removes the participant with id when present, returns the remaining
// participants and publishes them as ParticipantDeleted.
func (s *Service) DeleteParticipant(ctx context.Context, id string) ([]domain.Participant, error) {
	return remove(ctx, s, s.store.Participants, id)
}

// DeleteAllParticipants clears the collection and returns how many participants it held.
func (s *Service) DeleteAllParticipants(ctx context.Context) (int, error) {
	return removeAll(ctx, s, s.store.Participants)
}

// GetParticipant returns the participant with id or a NotFound error.
func (s *Service) GetParticipant(ctx context.Context, id string) (domain.Participant, error) {
	return get(ctx, s, s.store.Participants, id)
}

// ListParticipants returns every participant in insertion order.
func (s *Service) ListParticipants(ctx context.Context) ([]domain.Participant, error) {
	return list(ctx, s, s.store.Participants)
}
