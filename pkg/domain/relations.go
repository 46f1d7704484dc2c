package domain

// RelationKind distinguishes to-one and to-many relations.
type RelationKind string

const (
	// ToOne resolves a foreign key held by the parent.
	ToOne RelationKind = "to_one"
	// ToMany resolves child records whose back-reference names the parent.
	ToMany RelationKind = "to_many"
)

// Relation is a computed field joining a parent record to another collection.
// For ToOne relations Field is the foreign key on the parent; for ToMany
// relations Field is the back-reference on the target.
type Relation struct {
	Name   string
	Kind   RelationKind
	Source EntityType
	Target EntityType
	Field  string
}

var relations = map[EntityType][]Relation{
	EntityAuthor: {
		{Name: "books", Kind: ToMany, Source: EntityAuthor, Target: EntityBook, Field: "author_id"},
	},
	EntityBook: {
		{Name: "author", Kind: ToOne, Source: EntityBook, Target: EntityAuthor, Field: "author_id"},
	},
	EntityUser: {
		{Name: "events", Kind: ToMany, Source: EntityUser, Target: EntityEvent, Field: "user_id"},
		{Name: "participations", Kind: ToMany, Source: EntityUser, Target: EntityParticipant, Field: "user_id"},
	},
	EntityEvent: {
		{Name: "user", Kind: ToOne, Source: EntityEvent, Target: EntityUser, Field: "user_id"},
		{Name: "location", Kind: ToOne, Source: EntityEvent, Target: EntityLocation, Field: "location_id"},
		{Name: "participants", Kind: ToMany, Source: EntityEvent, Target: EntityParticipant, Field: "event_id"},
	},
	EntityLocation: {
		{Name: "events", Kind: ToMany, Source: EntityLocation, Target: EntityEvent, Field: "location_id"},
	},
	EntityParticipant: {
		{Name: "user", Kind: ToOne, Source: EntityParticipant, Target: EntityUser, Field: "user_id"},
		{Name: "event", Kind: ToOne, Source: EntityParticipant, Target: EntityEvent, Field: "event_id"},
	},
}

// Relations returns the relations declared for an entity type.
func Relations(entity EntityType) []Relation {
	declared := relations[entity]
	out := make([]Relation, len(declared))
	copy(out, declared)
	return out
}

// LookupRelation finds a relation by name on an entity type.
func LookupRelation(entity EntityType, name string) (Relation, bool) {
	for _, rel := range relations[entity] {
		if rel.Name == name {
			return rel, true
		}
	}
	return Relation{}, false
}
