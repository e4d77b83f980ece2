package file

import (
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"sort"
	"strings"

	"github.com/google/uuid"
	"gopkg.in/yaml.v3"

	"github.com/strata-cms/strata/pkg/strata"
)

// schemaDoc is the YAML document describing one content type. One file
// declares one content type.
type schemaDoc struct {
	ID          string        `yaml:"id"`
	Slug        string        `yaml:"slug"`
	DisplayName string        `yaml:"displayName"`
	Fields      []schemaField `yaml:"fields"`
}

type schemaField struct {
	ID           string             `yaml:"id"`
	Name         string             `yaml:"name"`
	DisplayName  string             `yaml:"displayName"`
	Type         string             `yaml:"type"`
	Required     bool               `yaml:"required"`
	Unique       bool               `yaml:"unique"`
	DefaultValue string             `yaml:"defaultValue"`
	Order        *int               `yaml:"order"`
	Validation   *schemaConstraints `yaml:"validation"`
}

type schemaConstraints struct {
	Min       *float64 `yaml:"min"`
	Max       *float64 `yaml:"max"`
	MinLength *int     `yaml:"minLength"`
	MaxLength *int     `yaml:"maxLength"`
	Pattern   string   `yaml:"pattern"`
}

// TypeID derives the stable content-type ID used when a schema file does
// not declare one. The same slug always maps to the same UUID, so entries
// stay attached to their type across reloads and restarts.
func TypeID(slug string) uuid.UUID {
	return uuid.NewSHA1(uuid.NameSpaceURL, []byte("strata://content-types/"+slug))
}

// LoadDir parses every .yaml/.yml file in dir into content types. It
// returns the types sorted by slug, plus non-fatal warnings (unknown field
// types, patterns that do not compile). Structural problems such as
// duplicate slugs or invalid documents are errors.
func LoadDir(dir string) ([]strata.ContentType, []string, error) {
	dirEntries, err := os.ReadDir(dir)
	if err != nil {
		return nil, nil, fmt.Errorf("read schema dir: %w", err)
	}

	var (
		types    []strata.ContentType
		warnings []string
		bySlug   = make(map[string]string) // slug -> file that declared it
	)
	for _, de := range dirEntries {
		if de.IsDir() || !isSchemaFile(de.Name()) {
			continue
		}
		path := filepath.Join(dir, de.Name())
		raw, err := os.ReadFile(path)
		if err != nil {
			return nil, nil, fmt.Errorf("read schema file: %w", err)
		}
		ct, w, err := ParseSchema(raw, de.Name())
		if err != nil {
			return nil, nil, err
		}
		warnings = append(warnings, w...)
		if prev, dup := bySlug[ct.Slug]; dup {
			return nil, nil, fmt.Errorf("%s: content type slug %q already declared in %s", de.Name(), ct.Slug, prev)
		}
		bySlug[ct.Slug] = de.Name()
		types = append(types, ct)
	}

	sort.Slice(types, func(i, j int) bool { return types[i].Slug < types[j].Slug })
	return types, warnings, nil
}

// ParseSchema parses a single YAML schema document. The source name is
// used to prefix warnings and errors.
func ParseSchema(raw []byte, source string) (strata.ContentType, []string, error) {
	var doc schemaDoc
	if err := yaml.Unmarshal(raw, &doc); err != nil {
		return strata.ContentType{}, nil, fmt.Errorf("%s: parse schema: %w", source, err)
	}

	ct := strata.ContentType{
		Slug:        strings.TrimSpace(doc.Slug),
		DisplayName: strings.TrimSpace(doc.DisplayName),
	}
	if doc.ID != "" {
		id, err := uuid.Parse(doc.ID)
		if err != nil {
			return strata.ContentType{}, nil, fmt.Errorf("%s: invalid content type id %q: %v", source, doc.ID, err)
		}
		ct.ID = id
	} else {
		ct.ID = TypeID(ct.Slug)
	}

	var warnings []string
	for i, sf := range doc.Fields {
		field, w := sf.contentField(i)
		for _, msg := range w {
			warnings = append(warnings, fmt.Sprintf("%s: %s", source, msg))
		}
		ct.Fields = append(ct.Fields, field)
	}

	if err := ct.Validate(); err != nil {
		return strata.ContentType{}, nil, fmt.Errorf("%s: %w", source, err)
	}
	return ct, warnings, nil
}

// contentField converts one YAML field declaration, filling defaults:
// name falls back to the field id, displayName to the name, order to the
// declaration position.
func (sf schemaField) contentField(position int) (strata.ContentField, []string) {
	field := strata.ContentField{
		ID:           strings.TrimSpace(sf.ID),
		Name:         strings.TrimSpace(sf.Name),
		DisplayName:  strings.TrimSpace(sf.DisplayName),
		Type:         strata.ParseFieldType(sf.Type),
		Required:     sf.Required,
		Unique:       sf.Unique,
		DefaultValue: sf.DefaultValue,
		Order:        position,
	}
	if sf.Order != nil {
		field.Order = *sf.Order
	}
	if field.Name == "" {
		field.Name = field.ID
	}
	if field.DisplayName == "" {
		field.DisplayName = field.Name
	}

	var warnings []string
	if !strata.IsKnownFieldType(field.Type) {
		warnings = append(warnings, fmt.Sprintf("field %q: unknown type %q, values will pass validation unchecked", field.ID, sf.Type))
	}
	if sf.Validation != nil {
		field.Validation = &strata.FieldConstraints{
			Min:       sf.Validation.Min,
			Max:       sf.Validation.Max,
			MinLength: sf.Validation.MinLength,
			MaxLength: sf.Validation.MaxLength,
			Pattern:   sf.Validation.Pattern,
		}
		if sf.Validation.Pattern != "" {
			if _, err := regexp.Compile(sf.Validation.Pattern); err != nil {
				warnings = append(warnings, fmt.Sprintf("field %q: pattern does not compile and will be skipped: %v", field.ID, err))
			}
		}
	}
	return field, warnings
}

func isSchemaFile(name string) bool {
	switch strings.ToLower(filepath.Ext(name)) {
	case ".yaml", ".yml":
		return true
	default:
		return false
	}
}
