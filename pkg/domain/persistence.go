package domain

// Table is an untyped, read-only view over one collection. Relation traversal
// works against Tables so it does not depend on concrete record types.
type Table interface {
	Entity() EntityType
	// Find returns a copy of the record with id.
	Find(id string) (Record, bool)
	// Records returns a snapshot of every record in insertion order.
	Records() []Record
}

// Tables resolves collection views by entity type.
type Tables interface {
	Table(entity EntityType) (Table, bool)
}
