package contract

import (
	"bytes"
	_ "embed"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"sort"
	"strings"
	"sync"

	"github.com/bmatcuk/doublestar/v4"
	"github.com/santhosh-tekuri/jsonschema/v5"
)

// ErrInvalidPact is wrapped by every error caused by the content of a pact file.
var ErrInvalidPact = errors.New("invalid pact")

//go:embed pact.schema.json
var pactSchema []byte

var (
	schemaOnce sync.Once
	schema     *jsonschema.Schema
	schemaErr  error
)

func compiledSchema() (*jsonschema.Schema, error) {
	schemaOnce.Do(func() {
		compiler := jsonschema.NewCompiler()
		compiler.Draft = jsonschema.Draft7
		if err := compiler.AddResource("pact.schema.json", bytes.NewReader(pactSchema)); err != nil {
			schemaErr = fmt.Errorf("failed to add pact schema: %w", err)
			return
		}
		schema, schemaErr = compiler.Compile("pact.schema.json")
	})
	return schema, schemaErr
}

// SchemaError lists the problems found when validating a pact file.
type SchemaError struct {
	Source   string
	Problems []string
}

func (e *SchemaError) Error() string {
	return fmt.Sprintf("%s: %s: %s", e.Source, ErrInvalidPact, strings.Join(e.Problems, "; "))
}

func (e *SchemaError) Unwrap() error {
	return ErrInvalidPact
}

// Load reads and validates the pact file at path.
func Load(path string) (*Pact, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read pact file: %w", err)
	}
	return Parse(data, path)
}

// Parse validates and decodes a pact document. source names it in errors.
func Parse(data []byte, source string) (*Pact, error) {
	if source == "" {
		source = "pact"
	}

	var doc any
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("%w: %s: %v", ErrInvalidPact, source, err)
	}

	sch, err := compiledSchema()
	if err != nil {
		return nil, err
	}
	if err := sch.Validate(doc); err != nil {
		var verr *jsonschema.ValidationError
		if errors.As(err, &verr) {
			return nil, &SchemaError{Source: source, Problems: collectProblems(verr, nil)}
		}
		return nil, fmt.Errorf("%w: %s: %v", ErrInvalidPact, source, err)
	}

	var pact Pact
	if err := json.Unmarshal(data, &pact); err != nil {
		return nil, fmt.Errorf("%w: %s: %v", ErrInvalidPact, source, err)
	}
	pact.Source = source
	return &pact, nil
}

// collectProblems flattens a validation error tree to its leaves.
func collectProblems(err *jsonschema.ValidationError, out []string) []string {
	if len(err.Causes) == 0 {
		loc := err.InstanceLocation
		if loc == "" {
			loc = "/"
		}
		return append(out, loc+": "+err.Message)
	}
	for _, cause := range err.Causes {
		out = collectProblems(cause, out)
	}
	return out
}

// LoadGlob loads every pact file matching pattern, which may use ** to
// match across directories. Files are loaded in lexical order.
func LoadGlob(pattern string) ([]*Pact, error) {
	matches, err := doublestar.FilepathGlob(pattern)
	if err != nil {
		return nil, fmt.Errorf("expanding pact pattern %q: %w", pattern, err)
	}
	if len(matches) == 0 {
		return nil, fmt.Errorf("no pact files match %q", pattern)
	}
	sort.Strings(matches)

	pacts := make([]*Pact, 0, len(matches))
	for _, path := range matches {
		p, err := Load(path)
		if err != nil {
			return nil, err
		}
		pacts = append(pacts, p)
	}
	return pacts, nil
}
