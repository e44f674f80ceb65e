// Package definition reads integration definitions: an integration's
// defaults, filter rules and field mappings kept together in one YAML file.
// intakectl evaluates them offline and imports them into the database.
package definition

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/invopop/jsonschema"
	"gopkg.in/yaml.v3"

	"alertdesk.app/intake/internal/filter"
	"alertdesk.app/intake/internal/mapping"
	"alertdesk.app/intake/internal/model"
	"alertdesk.app/intake/internal/transform"
)

type Definition struct {
	Name             string              `yaml:"name" json:"name" jsonschema:"required,minLength=1,description=Display name of the integration"`
	Description      string              `yaml:"description,omitempty" json:"description,omitempty"`
	Enabled          *bool               `yaml:"enabled,omitempty" json:"enabled,omitempty" jsonschema:"description=Defaults to true"`
	SourceSystem     string              `yaml:"sourceSystem,omitempty" json:"sourceSystem,omitempty" jsonschema:"description=Monitoring tool name used in titles and tags"`
	DefaultPriority  model.Priority      `yaml:"defaultPriority,omitempty" json:"defaultPriority,omitempty" jsonschema:"enum=low,enum=medium,enum=high,enum=critical"`
	DefaultCategory  string              `yaml:"defaultCategory,omitempty" json:"defaultCategory,omitempty"`
	AutoAssignTeamID *int64              `yaml:"autoAssignTeamId,omitempty" json:"autoAssignTeamId,omitempty"`
	FilterRules      []RuleDefinition    `yaml:"filterRules,omitempty" json:"filterRules,omitempty"`
	FieldMappings    []MappingDefinition `yaml:"fieldMappings,omitempty" json:"fieldMappings,omitempty"`
}

type RuleDefinition struct {
	Name        string           `yaml:"name" json:"name" jsonschema:"required,minLength=1"`
	Description string           `yaml:"description,omitempty" json:"description,omitempty"`
	Enabled     *bool            `yaml:"enabled,omitempty" json:"enabled,omitempty"`
	FilterType  model.FilterType `yaml:"filterType" json:"filterType" jsonschema:"required,enum=include,enum=exclude"`
	FieldPath   string           `yaml:"fieldPath" json:"fieldPath" jsonschema:"required,minLength=1"`
	Operator    model.Operator   `yaml:"operator" json:"operator" jsonschema:"required,enum=equals,enum=not_equals,enum=contains,enum=not_contains,enum=regex,enum=greater_than,enum=less_than,enum=exists,enum=not_exists"`
	Value       string           `yaml:"value,omitempty" json:"value,omitempty"`
	Priority    int32            `yaml:"priority,omitempty" json:"priority,omitempty" jsonschema:"description=Lower values are evaluated first"`
}

type MappingDefinition struct {
	TicketField    model.TicketField `yaml:"ticketField" json:"ticketField" jsonschema:"required,enum=title,enum=description,enum=priority,enum=category,enum=status,enum=tags,enum=impact,enum=urgency"`
	AlertFieldPath string            `yaml:"alertFieldPath" json:"alertFieldPath" jsonschema:"required,minLength=1"`
	Transform      string            `yaml:"transform,omitempty" json:"transform,omitempty" jsonschema:"enum=uppercase,enum=lowercase,enum=trim,enum=severity_to_priority"`
}

func Load(path string) (*Definition, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	def, err := Parse(f)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return def, nil
}

// Parse decodes and validates a definition. Unknown keys are rejected.
func Parse(r io.Reader) (*Definition, error) {
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)

	var def Definition
	if err := dec.Decode(&def); err != nil {
		if errors.Is(err, io.EOF) {
			return nil, errors.New("empty definition")
		}
		return nil, fmt.Errorf("decoding definition: %w", err)
	}
	if err := def.Validate(); err != nil {
		return nil, err
	}
	return &def, nil
}

func (d *Definition) Validate() error {
	var errs []error
	if strings.TrimSpace(d.Name) == "" {
		errs = append(errs, errors.New("name is required"))
	}
	if d.DefaultPriority != "" && !d.DefaultPriority.IsValid() {
		errs = append(errs, fmt.Errorf("defaultPriority: unknown priority %q", d.DefaultPriority))
	}
	for i, r := range d.Rules() {
		if r.Name == "" {
			errs = append(errs, fmt.Errorf("filterRules[%d]: name is required", i))
		}
		if err := filter.ValidateRule(r); err != nil {
			errs = append(errs, fmt.Errorf("filterRules[%d] %q: %w", i, r.Name, err))
		}
	}
	for i, m := range d.FieldMappings {
		if !m.TicketField.IsValid() {
			errs = append(errs, fmt.Errorf("fieldMappings[%d]: unknown ticket field %q", i, m.TicketField))
		}
		if m.AlertFieldPath == "" {
			errs = append(errs, fmt.Errorf("fieldMappings[%d]: alertFieldPath is required", i))
		}
		if m.Transform != "" && !transform.IsKnown(transform.Name(m.Transform)) {
			errs = append(errs, fmt.Errorf("fieldMappings[%d]: unknown transform %q", i, m.Transform))
		}
	}
	return errors.Join(errs...)
}

// Integration returns the definition as an unsaved integration.
func (d *Definition) Integration() *model.Integration {
	integration := &model.Integration{
		Name:             strings.TrimSpace(d.Name),
		Enabled:          d.Enabled == nil || *d.Enabled,
		DefaultPriority:  d.DefaultPriority,
		DefaultCategory:  d.DefaultCategory,
		AutoAssignTeamID: d.AutoAssignTeamID,
	}
	if integration.DefaultPriority == "" {
		integration.DefaultPriority = model.PriorityMedium
	}
	if d.Description != "" {
		integration.Description = &d.Description
	}
	if d.SourceSystem != "" {
		integration.SourceSystem = &d.SourceSystem
	}
	return integration
}

// Rules returns the filter rules in file order.
func (d *Definition) Rules() []model.FilterRule {
	rules := make([]model.FilterRule, len(d.FilterRules))
	for i, r := range d.FilterRules {
		rules[i] = model.FilterRule{
			Name:       strings.TrimSpace(r.Name),
			Enabled:    r.Enabled == nil || *r.Enabled,
			FilterType: r.FilterType,
			FieldPath:  r.FieldPath,
			Operator:   r.Operator,
			Value:      r.Value,
			Priority:   r.Priority,
		}
		if r.Description != "" {
			desc := r.Description
			rules[i].Description = &desc
		}
	}
	return rules
}

// Mappings returns the field mappings in file order.
func (d *Definition) Mappings() []model.FieldMapping {
	mappings := make([]model.FieldMapping, len(d.FieldMappings))
	for i, m := range d.FieldMappings {
		mappings[i] = model.FieldMapping{
			TicketField:    m.TicketField,
			AlertFieldPath: m.AlertFieldPath,
			Transform:      m.Transform,
		}
	}
	return mappings
}

type EvalResult struct {
	Admit  bool               `json:"admit"`
	Reason string             `json:"reason"`
	Rule   string             `json:"rule,omitempty"`
	Draft  *model.TicketDraft `json:"draft,omitempty"`
}

// Evaluate runs the filter and mapping engines on payload without touching
// any store.
func (d *Definition) Evaluate(payload any) EvalResult {
	decision := filter.Decide(d.Rules(), payload)
	result := EvalResult{Admit: decision.Admit, Reason: decision.Reason}
	if decision.Rule != nil {
		result.Rule = decision.Rule.Name
	}
	if decision.Admit {
		draft := mapping.BuildDraft(d.Integration(), d.Mappings(), payload)
		result.Draft = &draft
	}
	return result
}

// Schema returns the JSON Schema of the definition format.
func Schema() ([]byte, error) {
	reflector := jsonschema.Reflector{
		AllowAdditionalProperties: false,
		DoNotReference:            true,
	}
	schema := reflector.Reflect(&Definition{})

	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetIndent("", "  ")
	if err := enc.Encode(schema); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
