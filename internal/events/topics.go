package events

import (
	"recordhub/pkg/domain"
)

// TopicInfo describes a subscribable topic. FilterField names the foreign
// key a subscriber may pass as a variable to narrow the stream.
type TopicInfo struct {
	Name        string            `json:"name"`
	Entity      domain.EntityType `json:"entity"`
	Action      domain.Action     `json:"action"`
	FilterField string            `json:"filter_field,omitempty"`
}

var referenceFilters = map[string]string{
	domain.Topic(domain.EntityBook, domain.ActionCreate):        "author_id",
	domain.Topic(domain.EntityEvent, domain.ActionCreate):       "user_id",
	domain.Topic(domain.EntityParticipant, domain.ActionCreate): "event_id",
}

// Topics lists every topic the mutation engine publishes.
func Topics() []TopicInfo {
	var out []TopicInfo
	for _, entity := range domain.EntityTypes() {
		for _, action := range []domain.Action{domain.ActionCreate, domain.ActionUpdate, domain.ActionDelete} {
			name := domain.Topic(entity, action)
			out = append(out, TopicInfo{
				Name:        name,
				Entity:      entity,
				Action:      action,
				FilterField: referenceFilters[name],
			})
		}
	}
	return out
}

// LookupTopic finds a topic by name.
func LookupTopic(name string) (TopicInfo, bool) {
	for _, info := range Topics() {
		if info.Name == name {
			return info, true
		}
	}
	return TopicInfo{}, false
}

// PredicateFor returns the built-in predicate for a topic: a reference
// filter when the topic has one, MatchAll otherwise.
func (t TopicInfo) PredicateFor() Predicate {
	if t.FilterField == "" {
		return MatchAll
	}
	return MatchReference(t.FilterField)
}
