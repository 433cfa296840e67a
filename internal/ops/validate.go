package ops

import (
	"embed"
	"encoding/json"
	"fmt"
	"io/fs"
	"path"
	"strings"
	"sync"

	"github.com/xeipuuv/gojsonschema"

	"github.com/hpungsan/folio/internal/errors"
)

//go:embed schemas/*.json
var schemaFS embed.FS

// Schema names, one per file under schemas/.
const (
	SchemaProject  = "project"
	SchemaJournal  = "journal"
	SchemaSkill    = "skill"
	SchemaCV       = "cv"
	SchemaSettings = "settings"
	SchemaAbout    = "about"
	SchemaContact  = "contact"
	SchemaMessage  = "message"
)

// Mode selects whether required fields are enforced.
type Mode int

const (
	ModeCreate Mode = iota // every required field must be present
	ModeUpdate             // partial input; present fields must still be valid
)

type compiled struct {
	create *gojsonschema.Schema
	update *gojsonschema.Schema
}

var (
	schemasOnce sync.Once
	schemas     map[string]compiled
	schemasErr  error
)

func loadSchemas() (map[string]compiled, error) {
	schemasOnce.Do(func() {
		schemas, schemasErr = compileSchemas(schemaFS)
	})
	return schemas, schemasErr
}

func compileSchemas(fsys fs.FS) (map[string]compiled, error) {
	entries, err := fs.ReadDir(fsys, "schemas")
	if err != nil {
		return nil, err
	}

	out := make(map[string]compiled, len(entries))
	for _, e := range entries {
		raw, err := fs.ReadFile(fsys, path.Join("schemas", e.Name()))
		if err != nil {
			return nil, err
		}
		create, err := gojsonschema.NewSchema(gojsonschema.NewBytesLoader(raw))
		if err != nil {
			return nil, fmt.Errorf("schema %s: %w", e.Name(), err)
		}

		var doc map[string]any
		if err := json.Unmarshal(raw, &doc); err != nil {
			return nil, fmt.Errorf("schema %s: %w", e.Name(), err)
		}
		delete(doc, "required")
		update, err := gojsonschema.NewSchema(gojsonschema.NewGoLoader(doc))
		if err != nil {
			return nil, fmt.Errorf("schema %s: %w", e.Name(), err)
		}

		out[strings.TrimSuffix(e.Name(), ".json")] = compiled{create: create, update: update}
	}
	return out, nil
}

// Validate checks fields against the named schema. It returns nil or a
// VALIDATION_FAILED error whose details map each bad field to one message.
func Validate(name string, mode Mode, fields map[string]any) error {
	all, err := loadSchemas()
	if err != nil {
		return errors.NewInternal(err)
	}
	s, ok := all[name]
	if !ok {
		return errors.NewInternal(fmt.Errorf("unknown schema %q", name))
	}

	schema := s.create
	if mode == ModeUpdate {
		schema = s.update
	}
	res, err := schema.Validate(gojsonschema.NewGoLoader(fields))
	if err != nil {
		return errors.NewInternal(err)
	}
	if res.Valid() {
		return nil
	}

	out := make(map[string]string)
	for _, e := range res.Errors() {
		field := fieldName(e)
		if _, seen := out[field]; seen {
			continue
		}
		out[field] = message(field, e)
	}
	return errors.NewValidation(out)
}

func fieldName(e gojsonschema.ResultError) string {
	if e.Type() == "required" {
		if p, ok := e.Details()["property"].(string); ok {
			return p
		}
	}
	field := e.Field()
	if i := strings.Index(field, "."); i >= 0 {
		field = field[:i]
	}
	return field
}

func message(field string, e gojsonschema.ResultError) string {
	switch e.Type() {
	case "required", "string_gte", "array_min_items":
		return field + " is required"
	default:
		return e.Description()
	}
}
