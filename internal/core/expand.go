package core

import (
	"context"
	"encoding/json"

	"github.com/juju/errors"

	"recordhub/pkg/domain"
)

// Expand renders record as a JSON-shaped map and attaches the relations named
// by include, recursively. Unknown relation names are InvalidArgument; an
// unresolved to-one relation renders as nil.
func (s *Service) Expand(ctx context.Context, record domain.Record, include *Include) (map[string]any, error) {
	var out map[string]any
	err := s.run(ctx, opFor("expand", record.Entity(), ""), func(ctx context.Context) (string, error) {
		var err error
		out, err = s.expand(ctx, record, include)
		return record.RecordID(), err
	})
	return out, err
}

// ExpandAll expands every record with the same include tree.
func (s *Service) ExpandAll(ctx context.Context, records []domain.Record, include *Include) ([]map[string]any, error) {
	out := make([]map[string]any, 0, len(records))
	for _, record := range records {
		expanded, err := s.Expand(ctx, record, include)
		if err != nil {
			return nil, err
		}
		out = append(out, expanded)
	}
	return out, nil
}

func (s *Service) expand(ctx context.Context, record domain.Record, include *Include) (map[string]any, error) {
	fields, err := recordFields(record)
	if err != nil {
		return nil, err
	}
	for _, name := range include.Names() {
		child, _ := include.Child(name)
		rel, ok := domain.LookupRelation(record.Entity(), name)
		if !ok {
			return nil, domain.InvalidArgumentf("unknown relation %s.%s", record.Entity(), name)
		}
		switch rel.Kind {
		case domain.ToOne:
			if child.Match != nil {
				return nil, domain.InvalidArgumentf("filter on to-one relation %s.%s", rel.Source, rel.Name)
			}
			target, found, err := s.resolver.ResolveOne(ctx, record, rel)
			if err != nil {
				return nil, errors.Trace(err)
			}
			if !found {
				fields[name] = nil
				continue
			}
			nested, err := s.expand(ctx, target, child)
			if err != nil {
				return nil, err
			}
			fields[name] = nested
		case domain.ToMany:
			var match Match
			if child.Match != nil {
				match = *child.Match
			}
			targets, err := s.resolver.ResolveMany(ctx, record.RecordID(), rel, match)
			if err != nil {
				return nil, errors.Trace(err)
			}
			nested := make([]map[string]any, 0, len(targets))
			for _, target := range targets {
				m, err := s.expand(ctx, target, child)
				if err != nil {
					return nil, err
				}
				nested = append(nested, m)
			}
			fields[name] = nested
		}
	}
	return fields, nil
}

func recordFields(record domain.Record) (map[string]any, error) {
	raw, err := json.Marshal(record)
	if err != nil {
		return nil, errors.Annotatef(err, "encode %s", record.Entity())
	}
	var fields map[string]any
	if err := json.Unmarshal(raw, &fields); err != nil {
		return nil, errors.Annotatef(err, "decode %s", record.Entity())
	}
	return fields, nil
}
