package domain

import (
	"encoding/json"
	"time"
)

// Action indicates the type of modification performed.
type Action string

// Change actions enumerate the mutations that publish events.
const (
	// ActionCreate indicates a record was created.
	ActionCreate Action = "create"
	// ActionUpdate indicates a record was updated.
	ActionUpdate Action = "update"
	// ActionDelete indicates a record was deleted.
	ActionDelete Action = "delete"
)

var topicSuffix = map[Action]string{
	ActionCreate: "Created",
	ActionUpdate: "Updated",
	ActionDelete: "Deleted",
}

// Topic returns the bus topic for an entity action, e.g. "BookCreated".
func Topic(entity EntityType, action Action) string {
	return entity.Title() + topicSuffix[action]
}

// Cloneable is a record that can produce an independent deep copy of itself.
type Cloneable[T any] interface {
	Record
	Clone() T
}

// ChangeEvent is an immutable snapshot of a completed mutation. Payload
// accessors always hand out fresh copies so one subscriber cannot alter what
// another observes.
type ChangeEvent struct {
	Topic      string
	Entity     EntityType
	Action     Action
	OccurredAt time.Time

	payload any
	clone   func() any
}

// NewRecordEvent snapshots a single record as the event payload.
func NewRecordEvent[T Cloneable[T]](action Action, record T, at time.Time) ChangeEvent {
	frozen := record.Clone()
	return ChangeEvent{
		Topic:      Topic(frozen.Entity(), action),
		Entity:     frozen.Entity(),
		Action:     action,
		OccurredAt: at,
		payload:    frozen,
		clone:      func() any { return frozen.Clone() },
	}
}

// NewSnapshotEvent snapshots a whole collection as the event payload.
func NewSnapshotEvent[T Cloneable[T]](entity EntityType, action Action, records []T, at time.Time) ChangeEvent {
	frozen := cloneAll(records)
	return ChangeEvent{
		Topic:      Topic(entity, action),
		Entity:     entity,
		Action:     action,
		OccurredAt: at,
		payload:    frozen,
		clone:      func() any { return cloneAll(frozen) },
	}
}

func cloneAll[T Cloneable[T]](records []T) []T {
	out := make([]T, len(records))
	for i, r := range records {
		out[i] = r.Clone()
	}
	return out
}

// Payload returns a copy of the event payload: a record value for creates and
// updates, a slice of records for deletes.
func (e ChangeEvent) Payload() any {
	if e.clone == nil {
		return nil
	}
	return e.clone()
}

// Record returns the payload as a single record when it is one.
func (e ChangeEvent) Record() (Record, bool) {
	if _, ok := e.payload.(Record); !ok {
		return nil, false
	}
	rec, ok := e.Payload().(Record)
	return rec, ok
}

type changeEventJSON struct {
	Topic      string     `json:"topic"`
	Entity     EntityType `json:"entity"`
	Action     Action     `json:"action"`
	OccurredAt time.Time  `json:"occurred_at"`
	Payload    any        `json:"payload"`
}

// MarshalJSON renders the event with its payload.
func (e ChangeEvent) MarshalJSON() ([]byte, error) {
	return json.Marshal(changeEventJSON{
		Topic:      e.Topic,
		Entity:     e.Entity,
		Action:     e.Action,
		OccurredAt: e.OccurredAt,
		Payload:    e.payload,
	})
}

// PayloadMap renders the payload as a JSON-shaped value (map for records,
// slice of maps for snapshots) for predicate evaluation.
func (e ChangeEvent) PayloadMap() (any, error) {
	raw, err := json.Marshal(e.payload)
	if err != nil {
		return nil, err
	}
	var out any
	if err := json.Unmarshal(raw, &out); err != nil {
		return nil, err
	}
	return out, nil
}
