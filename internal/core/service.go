package core

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/juju/clock"
	"github.com/juju/errors"
	"github.com/juju/loggo"

	"recordhub/internal/infra/persistence/memory"
	"recordhub/pkg/domain"
)

// Publisher receives change events after a mutation commits. Publish runs
// while the collection write lock is held, so events reach the publisher in
// commit order. It must not block on slow consumers or call back into the
// service.
type Publisher interface {
	Publish(topic string, event domain.ChangeEvent)
}

// Service is the mutation engine and query facade over the record store.
// Every operation runs through run, which wraps it with tracing, metrics,
// logging and audit.
type Service struct {
	store     *memory.Store
	resolver  *Resolver
	publisher Publisher

	logger  Logger
	clock   Clock
	metrics MetricsRecorder
	tracer  Tracer
	audit   AuditRecorder
	newID   func() string
}

// NewService constructs a service backed by store that publishes change
// events to publisher. A nil publisher discards events.
func NewService(store *memory.Store, publisher Publisher, opts ...Option) *Service {
	if publisher == nil {
		publisher = noopPublisher{}
	}
	s := &Service{
		store:     store,
		resolver:  NewResolver(store),
		publisher: publisher,
		logger:    NewLoggoLogger(loggo.GetLogger("recordhub.core")),
		clock:     wallClock{clock: clock.WallClock},
		metrics:   noopMetrics{},
		tracer:    noopTracer{},
		audit:     noopAudit{},
		newID:     uuid.NewString,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// NewInMemoryService creates a service over a fresh in-memory store.
func NewInMemoryService(publisher Publisher, opts ...Option) *Service {
	return NewService(memory.NewStore(), publisher, opts...)
}

// Store returns the underlying record store.
func (s *Service) Store() *memory.Store {
	return s.store
}

// Resolver returns the relation resolver bound to the service store.
func (s *Service) Resolver() *Resolver {
	return s.resolver
}

type operation struct {
	name   string
	entity domain.EntityType
	action domain.Action
}

func opFor(verb string, entity domain.EntityType, action domain.Action) operation {
	return operation{name: verb + "_" + string(entity), entity: entity, action: action}
}

// run executes fn inside a span and reports its outcome. fn returns the id of
// the affected record for audit purposes. Queries carry no action and are not
// audited.
func (s *Service) run(ctx context.Context, op operation, fn func(ctx context.Context) (string, error)) error {
	ctx, span := s.tracer.Start(ctx, op.name)
	start := time.Now()

	var (
		entityID string
		err      error
	)
	if err = ctx.Err(); err == nil {
		entityID, err = fn(ctx)
	}
	duration := time.Since(start)

	span.End(err)
	s.metrics.Observe(ctx, op.name, err == nil, duration)
	if err != nil {
		s.logger.Error("operation failed", "operation", op.name, "error", err)
	} else {
		s.logger.Debug("operation completed", "operation", op.name, "id", entityID, "duration", duration)
	}
	if op.action != "" {
		s.recordAudit(ctx, op, entityID, duration, err)
	}
	return err
}

func (s *Service) recordAudit(ctx context.Context, op operation, entityID string, duration time.Duration, err error) {
	entry := AuditEntry{
		Operation: op.name,
		Entity:    op.entity,
		Action:    op.action,
		EntityID:  entityID,
		Status:    AuditStatusSuccess,
		Duration:  duration,
		Timestamp: s.clock.Now(),
	}
	if err != nil {
		entry.Status = AuditStatusError
		entry.Error = err.Error()
	}
	s.audit.Record(ctx, entry)
}

func (s *Service) publish(event domain.ChangeEvent) {
	s.publisher.Publish(event.Topic, event)
}

func create[T domain.Cloneable[T]](ctx context.Context, s *Service, c *memory.Collection[T], in domain.Input[T]) (T, error) {
	var created T
	err := s.run(ctx, opFor("create", c.Entity(), domain.ActionCreate), func(context.Context) (string, error) {
		if err := in.Validate(); err != nil {
			return "", errors.Trace(err)
		}
		now := s.clock.Now()
		record, err := c.InsertCommit(in.Build(s.newID(), now), func(committed T) {
			s.publish(domain.NewRecordEvent(domain.ActionCreate, committed, now))
		})
		if err != nil {
			return "", errors.Trace(err)
		}
		created = record
		return record.RecordID(), nil
	})
	return created, err
}

func update[T domain.Cloneable[T]](ctx context.Context, s *Service, c *memory.Collection[T], id string, in domain.Input[T]) (T, error) {
	var updated T
	err := s.run(ctx, opFor("update", c.Entity(), domain.ActionUpdate), func(context.Context) (string, error) {
		if err := in.Validate(); err != nil {
			return id, errors.Trace(err)
		}
		now := s.clock.Now()
		record, err := c.UpdateCommit(id, func(r *T) error {
			in.Apply(r, now)
			return nil
		}, func(committed T) {
			s.publish(domain.NewRecordEvent(domain.ActionUpdate, committed, now))
		})
		if err != nil {
			return id, errors.Trace(err)
		}
		updated = record
		return id, nil
	})
	return updated, err
}

func remove[T domain.Cloneable[T]](ctx context.Context, s *Service, c *memory.Collection[T], id string) ([]T, error) {
	var remaining []T
	err := s.run(ctx, opFor("delete", c.Entity(), domain.ActionDelete), func(context.Context) (string, error) {
		remaining = c.DeleteCommit(id, func(snapshot []T) {
			s.publish(domain.NewSnapshotEvent(c.Entity(), domain.ActionDelete, snapshot, s.clock.Now()))
		})
		return id, nil
	})
	return remaining, err
}

func removeAll[T domain.Cloneable[T]](ctx context.Context, s *Service, c *memory.Collection[T]) (int, error) {
	var n int
	err := s.run(ctx, opFor("delete_all", c.Entity(), domain.ActionDelete), func(context.Context) (string, error) {
		n = c.Clear()
		return "", nil
	})
	return n, err
}

func get[T domain.Cloneable[T]](ctx context.Context, s *Service, c *memory.Collection[T], id string) (T, error) {
	var found T
	err := s.run(ctx, opFor("get", c.Entity(), ""), func(context.Context) (string, error) {
		record, err := c.Get(id)
		if err != nil {
			return id, errors.Trace(err)
		}
		found = record
		return id, nil
	})
	return found, err
}

func list[T domain.Cloneable[T]](ctx context.Context, s *Service, c *memory.Collection[T]) ([]T, error) {
	var records []T
	err := s.run(ctx, opFor("list", c.Entity(), ""), func(context.Context) (string, error) {
		records = c.List()
		return "", nil
	})
	return records, err
}
