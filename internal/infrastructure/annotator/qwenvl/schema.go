package qwenvl

import (
	"fmt"

	_ "embed"

	"gopkg.in/yaml.v3"

	"github.com/OSH212/phmarcel-rpg/internal/core/domain"
)

//go:embed fields.yaml
var fieldsYAML []byte

// loadFieldSchemas parses the embedded per-kind field lists sent with
// every extract request.
func loadFieldSchemas() (map[domain.DocKind][]string, error) {
	var raw map[string][]string
	if err := yaml.Unmarshal(fieldsYAML, &raw); err != nil {
		return nil, fmt.Errorf("parse field schemas: %w", err)
	}

	schemas := make(map[domain.DocKind][]string, len(raw))
	for name, fields := range raw {
		kind := domain.DocKind(name)
		if !kind.Valid() || kind == domain.KindUnknown {
			return nil, fmt.Errorf("field schema for unrecognized kind %q", name)
		}
		if len(fields) == 0 {
			return nil, fmt.Errorf("field schema for %q is empty", name)
		}
		schemas[kind] = fields
	}
	return schemas, nil
}
