// Package fixtures provides the datasets a fresh store is seeded with.
package fixtures

import (
	"context"
	"embed"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"yaps/pkg/domain"
)

// Collection keys, in the order they are seeded.
const (
	Users       = "users"
	Colleges    = "colleges"
	Courses     = "courses"
	Comments    = "comments"
	Confessions = "confessions"
)

// Collections lists every collection a bundle must carry.
var Collections = []string{Users, Colleges, Courses, Comments, Confessions}

// Bundle maps a collection key to its raw JSON text, written to the store verbatim.
type Bundle map[string][]byte

// Validate requires every collection to be present and hold a JSON array whose
// records all decode into the collection's record type.
func (b Bundle) Validate() error {
	for _, name := range Collections {
		raw, ok := b[name]
		if !ok {
			return fmt.Errorf("fixtures: missing %s", name)
		}
		if err := validateCollection(name, raw); err != nil {
			return fmt.Errorf("fixtures: %s: %w", name, err)
		}
	}
	return nil
}

func validateCollection(name string, raw []byte) error {
	switch name {
	case Users:
		return decodeEach[domain.User](raw)
	case Colleges:
		return decodeEach[domain.College](raw)
	case Courses:
		return decodeEach[domain.Course](raw)
	case Comments:
		return decodeEach[domain.Comment](raw)
	default:
		return decodeEach[domain.Confession](raw)
	}
}

func decodeEach[T any](raw []byte) error {
	var elems []json.RawMessage
	if err := json.Unmarshal(raw, &elems); err != nil {
		return fmt.Errorf("not a JSON array: %w", err)
	}
	for i, e := range elems {
		var v T
		if err := json.Unmarshal(e, &v); err != nil {
			return fmt.Errorf("record %d: %w", i, err)
		}
	}
	return nil
}

// Source loads a bundle from somewhere.
type Source interface {
	Load(ctx context.Context) (Bundle, error)
}

//go:embed data/*.json
var embedded embed.FS

type embeddedSource struct{}

// Embedded returns the demo datasets compiled into the binary.
func Embedded() Source { return embeddedSource{} }

func (embeddedSource) Load(context.Context) (Bundle, error) {
	b := make(Bundle, len(Collections))
	for _, name := range Collections {
		raw, err := embedded.ReadFile("data/" + fileName(name))
		if err != nil {
			return nil, fmt.Errorf("read embedded %s: %w", name, err)
		}
		b[name] = raw
	}
	return b, nil
}

type dirSource struct {
	path string
}

// Dir reads <collection>.json files from a directory.
func Dir(path string) Source { return dirSource{path: path} }

func (d dirSource) Load(context.Context) (Bundle, error) {
	b := make(Bundle, len(Collections))
	for _, name := range Collections {
		raw, err := os.ReadFile(filepath.Join(d.path, fileName(name)))
		if err != nil {
			return nil, fmt.Errorf("read fixture %s: %w", name, err)
		}
		b[name] = raw
	}
	return b, nil
}

func fileName(collection string) string {
	return collection + ".json"
}
