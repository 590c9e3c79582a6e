// Package schema gates completed step answers against the embedded step
// catalog, compiled to JSON Schema.
package schema

import (
	_ "embed"
	"encoding/json"
	"errors"
	"fmt"
	"sort"
	"strings"
	"sync"

	"github.com/santhosh-tekuri/jsonschema/v6"
	"github.com/santhosh-tekuri/jsonschema/v6/kind"
	"gopkg.in/yaml.v3"

	"github.com/ctateo21/homelead/internal/domain/model"
	"github.com/ctateo21/homelead/internal/domain/valueobject"
	"github.com/ctateo21/homelead/pkg/money"
)

//go:embed catalog.yaml
var catalogYAML []byte

type catalogEntry struct {
	Schema   map[string]any `yaml:"schema"`
	Positive []string       `yaml:"positive"`
}

type catalog struct {
	Steps map[string]catalogEntry `yaml:"steps"`
}

// Validator checks raw step payloads. Compiled schemas are cached per step.
type Validator struct {
	entries map[string]catalogEntry
	cache   sync.Map // map[string]*jsonschema.Schema
}

// NewValidator parses the embedded catalog and compiles every schema so a
// broken catalog fails at startup.
func NewValidator() (*Validator, error) {
	var c catalog
	if err := yaml.Unmarshal(catalogYAML, &c); err != nil {
		return nil, fmt.Errorf("parse step catalog: %w", err)
	}
	v := &Validator{entries: c.Steps}
	for name := range c.Steps {
		if _, err := valueobject.NewStepName(name); err != nil {
			return nil, fmt.Errorf("step catalog: %w", err)
		}
		if _, err := v.compiled(name); err != nil {
			return nil, err
		}
	}
	return v, nil
}

// Has reports whether the catalog defines a schema for step.
func (v *Validator) Has(step valueobject.StepName) bool {
	_, ok := v.entries[step.String()]
	return ok
}

// Validate checks raw against the step's schema and positive-amount rules.
// It returns a *model.ValidationError describing every failing field.
func (v *Validator) Validate(step valueobject.StepName, raw json.RawMessage) error {
	entry, ok := v.entries[step.String()]
	if !ok {
		return fmt.Errorf("%w: %s has no schema", valueobject.ErrUnknownStep, step)
	}

	verr := model.NewValidationError(step.String())

	var parsed any
	if len(raw) == 0 {
		raw = json.RawMessage("{}")
	}
	if err := json.Unmarshal(raw, &parsed); err != nil {
		verr.Add("", "payload is not valid JSON")
		return verr
	}

	sch, err := v.compiled(step.String())
	if err != nil {
		return err
	}
	if err := sch.Validate(parsed); err != nil {
		var ve *jsonschema.ValidationError
		if !errors.As(err, &ve) {
			return fmt.Errorf("validate %s: %w", step, err)
		}
		collect(ve, verr)
	}

	if obj, ok := parsed.(map[string]any); ok {
		for _, field := range entry.Positive {
			if _, failed := verr.Fields[field]; failed {
				continue
			}
			if val, present := obj[field]; present && !positive(val) {
				verr.Add(field, "must be greater than zero")
			}
		}
	}

	if verr.HasErrors() {
		return verr
	}
	return nil
}

// compiled returns a cached compiled schema or compiles and caches it.
func (v *Validator) compiled(name string) (*jsonschema.Schema, error) {
	if cached, ok := v.cache.Load(name); ok {
		return cached.(*jsonschema.Schema), nil
	}

	// The jsonschema library expects a parsed JSON value, so round-trip the
	// YAML document through encoding/json.
	defBytes, err := json.Marshal(v.entries[name].Schema)
	if err != nil {
		return nil, fmt.Errorf("marshal %s schema: %w", name, err)
	}
	var defParsed any
	if err := json.Unmarshal(defBytes, &defParsed); err != nil {
		return nil, fmt.Errorf("parse %s schema: %w", name, err)
	}

	c := jsonschema.NewCompiler()
	url := fmt.Sprintf("schema://steps/%s.json", name)
	if err := c.AddResource(url, defParsed); err != nil {
		return nil, fmt.Errorf("add %s schema: %w", name, err)
	}
	compiled, err := c.Compile(url)
	if err != nil {
		return nil, fmt.Errorf("compile %s schema: %w", name, err)
	}

	v.cache.Store(name, compiled)
	return compiled, nil
}

// collect flattens the validation tree into field messages.
func collect(ve *jsonschema.ValidationError, out *model.ValidationError) {
	if len(ve.Causes) > 0 {
		for _, c := range ve.Causes {
			collect(c, out)
		}
		return
	}

	field := strings.Join(ve.InstanceLocation, ".")
	switch k := ve.ErrorKind.(type) {
	case *kind.Required:
		missing := append([]string(nil), k.Missing...)
		sort.Strings(missing)
		for _, m := range missing {
			out.Add(join(field, m), "is required")
		}
	case *kind.Type:
		out.Add(field, "has the wrong type")
	case *kind.Enum, *kind.Const:
		out.Add(field, "is not an allowed value")
	case *kind.MinItems:
		out.Add(field, fmt.Sprintf("must include at least %d item(s)", k.Want))
	case *kind.MinLength:
		out.Add(field, "is too short")
	case *kind.Minimum, *kind.ExclusiveMinimum:
		out.Add(field, "is too small")
	case *kind.Maximum, *kind.ExclusiveMaximum:
		out.Add(field, "is too large")
	case *kind.Pattern, *kind.Format:
		out.Add(field, "is not in the expected format")
	case *kind.UniqueItems:
		out.Add(field, "must not repeat values")
	default:
		out.Add(field, "is invalid")
	}
}

func join(parent, child string) string {
	if parent == "" {
		return child
	}
	return parent + "." + child
}

func positive(v any) bool {
	switch t := v.(type) {
	case float64:
		return t > 0
	case string:
		return money.ParseLoose(t).IsPositive()
	default:
		return false
	}
}
