package httpapi

import (
	"context"
	"encoding/json"
	"io"
	"net/http"

	"github.com/gorilla/mux"

	"recordhub/internal/core"
	"recordhub/pkg/domain"
)

const maxBodyBytes = 1 << 20

// collection adapts one entity's typed service operations to HTTP.
type collection struct {
	entity    domain.EntityType
	list      func(context.Context) ([]domain.Record, error)
	get       func(context.Context, string) (domain.Record, error)
	create    func(context.Context, *http.Request) (domain.Record, error)
	update    func(context.Context, string, *http.Request) (domain.Record, error)
	remove    func(context.Context, string) (any, error)
	removeAll func(context.Context) (int, error)
	expand    func(context.Context, []domain.Record, *core.Include) ([]map[string]any, error)
}

func (s *Server) collections() []collection {
	svc := s.service
	return []collection{
		bind(svc, domain.EntityAuthor, svc.ListAuthors, svc.GetAuthor, svc.CreateAuthor, svc.UpdateAuthor, svc.DeleteAuthor, svc.DeleteAllAuthors),
		bind(svc, domain.EntityBook, svc.ListBooks, svc.GetBook, svc.CreateBook, svc.UpdateBook, svc.DeleteBook, svc.DeleteAllBooks),
		bind(svc, domain.EntityUser, svc.ListUsers, svc.GetUser, svc.CreateUser, svc.UpdateUser, svc.DeleteUser, svc.DeleteAllUsers),
		bind(svc, domain.EntityEvent, svc.ListEvents, svc.GetEvent, svc.CreateEvent, svc.UpdateEvent, svc.DeleteEvent, svc.DeleteAllEvents),
		bind(svc, domain.EntityLocation, svc.ListLocations, svc.GetLocation, svc.CreateLocation, svc.UpdateLocation, svc.DeleteLocation, svc.DeleteAllLocations),
		bind(svc, domain.EntityParticipant, svc.ListParticipants, svc.GetParticipant, svc.CreateParticipant, svc.UpdateParticipant, svc.DeleteParticipant, svc.DeleteAllParticipants),
	}
}

func bind[T domain.Record, I any](
	svc *core.Service,
	entity domain.EntityType,
	list func(context.Context) ([]T, error),
	get func(context.Context, string) (T, error),
	create func(context.Context, I) (T, error),
	update func(context.Context, string, I) (T, error),
	remove func(context.Context, string) ([]T, error),
	removeAll func(context.Context) (int, error),
) collection {
	return collection{
		entity: entity,
		list: func(ctx context.Context) ([]domain.Record, error) {
			items, err := list(ctx)
			if err != nil {
				return nil, err
			}
			records := make([]domain.Record, len(items))
			for i, item := range items {
				records[i] = item
			}
			return records, nil
		},
		get: func(ctx context.Context, id string) (domain.Record, error) {
			return get(ctx, id)
		},
		create: func(ctx context.Context, r *http.Request) (domain.Record, error) {
			in, err := decodeInput[I](r)
			if err != nil {
				return nil, err
			}
			return create(ctx, in)
		},
		update: func(ctx context.Context, id string, r *http.Request) (domain.Record, error) {
			in, err := decodeInput[I](r)
			if err != nil {
				return nil, err
			}
			return update(ctx, id, in)
		},
		remove: func(ctx context.Context, id string) (any, error) {
			remaining, err := remove(ctx, id)
			if err != nil {
				return nil, err
			}
			if remaining == nil {
				remaining = []T{}
			}
			return remaining, nil
		},
		removeAll: removeAll,
		expand:    svc.ExpandAll,
	}
}

func decodeInput[I any](r *http.Request) (I, error) {
	var in I
	dec := json.NewDecoder(io.LimitReader(r.Body, maxBodyBytes))
	dec.DisallowUnknownFields()
	if err := dec.Decode(&in); err != nil {
		return in, domain.InvalidArgumentf("request body: %v", err)
	}
	return in, nil
}

func (c collection) register(api *mux.Router) {
	base := "/" + c.entity.Collection()
	api.HandleFunc(base, c.handleList).Methods(http.MethodGet)
	api.HandleFunc(base, c.handleCreate).Methods(http.MethodPost)
	api.HandleFunc(base, c.handleDeleteAll).Methods(http.MethodDelete)
	api.HandleFunc(base+"/{id}", c.handleGet).Methods(http.MethodGet)
	api.HandleFunc(base+"/{id}", c.handleUpdate).Methods(http.MethodPut)
	api.HandleFunc(base+"/{id}", c.handleDelete).Methods(http.MethodDelete)
}

// includeFor parses ?include=. A nil tree means no expansion was asked for.
func includeFor(r *http.Request) (*core.Include, error) {
	include, err := core.ParseInclude(r.URL.Query().Get("include"))
	if err != nil || include.Empty() {
		return nil, err
	}
	return include, nil
}

func (c collection) respond(w http.ResponseWriter, r *http.Request, status int, records []domain.Record, single bool) {
	include, err := includeFor(r)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	var body any = records
	if include != nil {
		expanded, err := c.expand(r.Context(), records, include)
		if err != nil {
			writeServiceError(w, r, err)
			return
		}
		body = expanded
		if single {
			body = expanded[0]
		}
	} else if single {
		body = records[0]
	}
	writeJSON(w, status, body)
}

func (c collection) handleList(w http.ResponseWriter, r *http.Request) {
	records, err := c.list(r.Context())
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	c.respond(w, r, http.StatusOK, records, false)
}

func (c collection) handleGet(w http.ResponseWriter, r *http.Request) {
	record, err := c.get(r.Context(), mux.Vars(r)["id"])
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	c.respond(w, r, http.StatusOK, []domain.Record{record}, true)
}

func (c collection) handleCreate(w http.ResponseWriter, r *http.Request) {
	record, err := c.create(r.Context(), r)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	c.respond(w, r, http.StatusCreated, []domain.Record{record}, true)
}

func (c collection) handleUpdate(w http.ResponseWriter, r *http.Request) {
	record, err := c.update(r.Context(), mux.Vars(r)["id"], r)
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	c.respond(w, r, http.StatusOK, []domain.Record{record}, true)
}

func (c collection) handleDelete(w http.ResponseWriter, r *http.Request) {
	remaining, err := c.remove(r.Context(), mux.Vars(r)["id"])
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, remaining)
}

func (c collection) handleDeleteAll(w http.ResponseWriter, r *http.Request) {
	n, err := c.removeAll(r.Context())
	if err != nil {
		writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]int{"deleted": n})
}
