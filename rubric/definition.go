package rubric

import (
	"bytes"
	_ "embed"
	"encoding/json"
	"fmt"
	"os"
	"strings"
	"sync"
	"time"

	"github.com/mitchellh/mapstructure"
	"github.com/santhosh-tekuri/jsonschema/v6"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
	"gopkg.in/yaml.v3"
)

const (
	DefaultPage    = "src/index.html"
	DefaultTimeout = time.Second * 30
	DefaultSettle  = time.Second
)

//go:embed schema.json
var schemaJSON []byte

const schemaURL = "rubric.schema.json"

var (
	compiledSchema     *jsonschema.Schema
	compiledSchemaErr  error
	compiledSchemaOnce sync.Once
)

// Instrumentation says which page primitives a rubric needs recorded.
type Instrumentation struct {
	Audio   bool `mapstructure:"audio"`
	Console bool `mapstructure:"console"`
}

type ViewportSize struct {
	Width  int `mapstructure:"width"`
	Height int `mapstructure:"height"`
}

// Definition is a rubric as written in YAML.
type Definition struct {
	Name            string           `mapstructure:"name"`
	Description     string           `mapstructure:"description"`
	Page            string           `mapstructure:"page"`
	Timeout         time.Duration    `mapstructure:"timeout"`
	Settle          time.Duration    `mapstructure:"settle"`
	PressDelay      time.Duration    `mapstructure:"press_delay"`
	Instrumentation Instrumentation  `mapstructure:"instrumentation"`
	Viewport        *ViewportSize    `mapstructure:"viewport"`
	Steps           []StepDefinition `mapstructure:"steps"`

	sequence Sequence
}

type StepDefinition struct {
	Name   string                   `mapstructure:"name"`
	Checks []map[string]interface{} `mapstructure:"checks"`
}

// SchemaViolation is one place where a document doesn't match the rubric schema.
type SchemaViolation struct {
	Path    string
	Message string
}

// SchemaError lists every schema violation found in a document.
type SchemaError struct {
	Source     string
	Violations []SchemaViolation
}

func (e *SchemaError) Error() string {
	lines := []string{fmt.Sprintf("%s does not match the rubric schema:", e.Source)}
	for _, v := range e.Violations {
		path := v.Path
		if path == "" {
			path = "(root)"
		}
		lines = append(lines, fmt.Sprintf("  %s: %s", path, v.Message))
	}
	return strings.Join(lines, "\n")
}

// Load reads and parses a rubric file.
func Load(path string) (*Definition, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	return Parse(path, data)
}

// Parse decodes a YAML rubric, validates it against the rubric schema, and builds its step
// sequence. Source names the document in error messages.
func Parse(source string, data []byte) (*Definition, error) {
	var raw interface{}
	if err := yaml.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("%s: invalid YAML: %w", source, err)
	}
	if err := validateSchema(source, raw); err != nil {
		return nil, err
	}

	d := &Definition{}
	if err := decode(raw, d); err != nil {
		return nil, fmt.Errorf("%s: %w", source, err)
	}
	if d.Page == "" {
		d.Page = DefaultPage
	}
	if d.Timeout == 0 {
		d.Timeout = DefaultTimeout
	}
	if d.Settle == 0 {
		d.Settle = DefaultSettle
	}

	seq, err := d.build()
	if err != nil {
		return nil, fmt.Errorf("%s: %w", source, err)
	}
	d.sequence = seq
	return d, nil
}

// Sequence returns the steps of the rubric, ready to run.
func (d *Definition) Sequence() Sequence {
	return d.sequence
}

func (d *Definition) build() (Sequence, error) {
	seq := Sequence{Name: d.Name}
	stored := make(map[string]bool)
	for i, sd := range d.Steps {
		step := Step{Name: sd.Name}
		for j, params := range sd.Checks {
			kind, _ := params["kind"].(string)
			c, err := buildCheck(kind, params)
			if err != nil {
				return Sequence{}, fmt.Errorf("step #%d (%s), check #%d (%s): %w", i+1, sd.Name, j+1, kind, err)
			}
			if r, ok := c.(reader); ok {
				for _, key := range r.reads() {
					if !stored[key] {
						return Sequence{}, fmt.Errorf("step #%d (%s), check #%d (%s): reads %q, which no earlier check stores",
							i+1, sd.Name, j+1, kind, key)
					}
				}
			}
			if s, ok := c.(storer); ok {
				for _, key := range s.stores() {
					stored[key] = true
				}
			}
			step.Checks = append(step.Checks, c)
		}
		seq.Steps = append(seq.Steps, step)
	}
	return seq, nil
}

func buildCheck(kind string, params map[string]interface{}) (Check, error) {
	k, ok := checkKinds[kind]
	if !ok {
		return nil, fmt.Errorf("unknown check kind %q", kind)
	}
	rest := make(map[string]interface{}, len(params))
	for name, v := range params {
		if name != "kind" {
			rest[name] = v
		}
	}
	c := k.new()
	if err := decode(rest, c); err != nil {
		return nil, err
	}
	if v, ok := c.(validator); ok {
		if err := v.validate(); err != nil {
			return nil, err
		}
	}
	if o, ok := c.(overrider); ok {
		for slot := range o.overrides() {
			if !contains(k.slots, slot) {
				return nil, fmt.Errorf("unknown message %q (available: %s)", slot, strings.Join(k.slots, ", "))
			}
		}
	}
	return c, nil
}

func decode(input, output interface{}) error {
	decoder, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		DecodeHook:  mapstructure.StringToTimeDurationHookFunc(),
		ErrorUnused: true,
		Result:      output,
	})
	if err != nil {
		return err
	}
	return decoder.Decode(input)
}

func loadSchema() (*jsonschema.Schema, error) {
	compiledSchemaOnce.Do(func() {
		doc, err := jsonschema.UnmarshalJSON(bytes.NewReader(schemaJSON))
		if err != nil {
			compiledSchemaErr = err
			return
		}
		c := jsonschema.NewCompiler()
		if err := c.AddResource(schemaURL, doc); err != nil {
			compiledSchemaErr = err
			return
		}
		compiledSchema, compiledSchemaErr = c.Compile(schemaURL)
	})
	return compiledSchema, compiledSchemaErr
}

func validateSchema(source string, raw interface{}) error {
	sch, err := loadSchema()
	if err != nil {
		return fmt.Errorf("rubric schema: %w", err)
	}
	data, err := json.Marshal(raw)
	if err != nil {
		return fmt.Errorf("%s: %w", source, err)
	}
	doc, err := jsonschema.UnmarshalJSON(bytes.NewReader(data))
	if err != nil {
		return fmt.Errorf("%s: %w", source, err)
	}
	err = sch.Validate(doc)
	if err == nil {
		return nil
	}
	ve, ok := err.(*jsonschema.ValidationError)
	if !ok {
		return fmt.Errorf("%s: %w", source, err)
	}
	printer := message.NewPrinter(language.English)
	se := &SchemaError{Source: source}
	for _, cause := range flattenValidationErrors(ve) {
		se.Violations = append(se.Violations, SchemaViolation{
			Path:    strings.Join(cause.InstanceLocation, "/"),
			Message: cause.ErrorKind.LocalizedString(printer),
		})
	}
	return se
}

func flattenValidationErrors(ve *jsonschema.ValidationError) []*jsonschema.ValidationError {
	if len(ve.Causes) == 0 {
		return []*jsonschema.ValidationError{ve}
	}
	var flat []*jsonschema.ValidationError
	for _, cause := range ve.Causes {
		flat = append(flat, flattenValidationErrors(cause)...)
	}
	return flat
}

func contains(list []string, s string) bool {
	for _, x := range list {
		if x == s {
			return true
		}
	}
	return false
}
