// Package seed loads an initial dataset into the record store at startup.
package seed

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"path"
	"strings"
	"time"

	"github.com/goccy/go-yaml"
	"github.com/juju/errors"
	"github.com/juju/loggo"

	"recordhub/internal/infra/persistence/memory"
	"recordhub/internal/infra/seedsource"
)

var logger = loggo.GetLogger("recordhub.seed")

// Dataset is the document shape of a seed file.
type Dataset = memory.Snapshot

// Decode parses a seed document. Keys ending in .yaml or .yml are read as
// YAML, everything else as JSON. Numeric ids and foreign keys are accepted
// and converted to strings, and the camelCase isPublished key is read as
// is_published.
func Decode(key string, r io.Reader) (Dataset, error) {
	raw, err := io.ReadAll(r)
	if err != nil {
		return Dataset{}, errors.Annotatef(err, "read seed %s", key)
	}
	var doc map[string]any
	switch strings.ToLower(path.Ext(key)) {
	case ".yaml", ".yml":
		if err := yaml.Unmarshal(raw, &doc); err != nil {
			return Dataset{}, errors.NewNotValid(err, "seed "+key+" is not valid yaml")
		}
	default:
		dec := json.NewDecoder(bytes.NewReader(raw))
		dec.UseNumber()
		if err := dec.Decode(&doc); err != nil {
			return Dataset{}, errors.NewNotValid(err, "seed "+key+" is not valid json")
		}
	}
	normalizeRecords(doc)
	normalized, err := json.Marshal(doc)
	if err != nil {
		return Dataset{}, errors.Trace(err)
	}

	var ds Dataset
	if err := json.Unmarshal(normalized, &ds); err != nil {
		return Dataset{}, errors.NewNotValid(err, "seed "+key+" does not match the dataset shape")
	}
	return ds, nil
}

// fieldAliases maps alternative seed keys to record field names.
var fieldAliases = map[string]string{
	"isPublished": "is_published",
}

func normalizeRecords(doc map[string]any) {
	for _, v := range doc {
		records, ok := v.([]any)
		if !ok {
			continue
		}
		for _, item := range records {
			record, ok := item.(map[string]any)
			if !ok {
				continue
			}
			for alias, field := range fieldAliases {
				if value, ok := record[alias]; ok {
					if _, set := record[field]; !set {
						record[field] = value
					}
					delete(record, alias)
				}
			}
			for field, value := range record {
				if field != "id" && !strings.HasSuffix(field, "_id") {
					continue
				}
				switch n := value.(type) {
				case json.Number, int, int64, uint64, float64:
					record[field] = fmt.Sprint(n)
				}
			}
		}
	}
}

// Stamp fills zero timestamps with now.
func Stamp(ds *Dataset, now time.Time) {
	for i := range ds.Authors {
		stamp(&ds.Authors[i].CreatedAt, &ds.Authors[i].UpdatedAt, now)
	}
	for i := range ds.Books {
		stamp(&ds.Books[i].CreatedAt, &ds.Books[i].UpdatedAt, now)
	}
	for i := range ds.Users {
		stamp(&ds.Users[i].CreatedAt, &ds.Users[i].UpdatedAt, now)
	}
	for i := range ds.Events {
		stamp(&ds.Events[i].CreatedAt, &ds.Events[i].UpdatedAt, now)
	}
	for i := range ds.Locations {
		stamp(&ds.Locations[i].CreatedAt, &ds.Locations[i].UpdatedAt, now)
	}
	for i := range ds.Participants {
		stamp(&ds.Participants[i].CreatedAt, &ds.Participants[i].UpdatedAt, now)
	}
}

func stamp(created, updated *time.Time, now time.Time) {
	if created.IsZero() {
		*created = now
	}
	if updated.IsZero() {
		*updated = *created
	}
}

// Load reads key from src and inserts every record into store with its
// given id. No change events are published. A duplicate id fails the load.
func Load(ctx context.Context, src seedsource.Source, key string, store *memory.Store, now time.Time) (map[string]int, error) {
	info, rc, err := src.Open(ctx, key)
	if err != nil {
		return nil, errors.Annotatef(err, "open seed %s", key)
	}
	defer func() { _ = rc.Close() }()

	ds, err := Decode(info.Key, rc)
	if err != nil {
		return nil, errors.Trace(err)
	}
	Stamp(&ds, now)
	if err := store.ImportState(ds); err != nil {
		return nil, errors.Annotatef(err, "load seed %s", key)
	}
	counts := map[string]int{
		"authors":      len(ds.Authors),
		"books":        len(ds.Books),
		"users":        len(ds.Users),
		"events":       len(ds.Events),
		"locations":    len(ds.Locations),
		"participants": len(ds.Participants),
	}
	logger.Infof("loaded seed %s from %s source: %v", info.Key, src.Driver(), counts)
	return counts, nil
}
