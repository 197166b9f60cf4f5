package domain

import (
	"fmt"
	"slices"
	"strconv"

	"github.com/tidwall/gjson"
)

// ParameterKind identifies how a build parameter value is typed.
type ParameterKind string

const (
	ParameterKindString   ParameterKind = "string"
	ParameterKindText     ParameterKind = "text"
	ParameterKindBoolean  ParameterKind = "boolean"
	ParameterKindPassword ParameterKind = "password"
	ParameterKindChoice   ParameterKind = "choice"
)

const maskedValue = "********"

// ParameterValue is a typed value attached to a scheduled build.
type ParameterValue struct {
	Name  string        `json:"name"`
	Kind  ParameterKind `json:"kind"`
	Value string        `json:"value"`
}

// NewStringParameter creates a plain string value.
func NewStringParameter(name, value string) ParameterValue {
	return ParameterValue{Name: name, Kind: ParameterKindString, Value: value}
}

// NewBooleanParameter creates a boolean value.
func NewBooleanParameter(name string, value bool) ParameterValue {
	return ParameterValue{Name: name, Kind: ParameterKindBoolean, Value: strconv.FormatBool(value)}
}

// NewPasswordParameter creates a masked value.
func NewPasswordParameter(name, value string) ParameterValue {
	return ParameterValue{Name: name, Kind: ParameterKindPassword, Value: value}
}

// IsMasked reports whether the value must never be displayed.
func (p ParameterValue) IsMasked() bool {
	return p.Kind == ParameterKindPassword
}

// Bool returns the boolean form of the value.
func (p ParameterValue) Bool() bool {
	b, _ := strconv.ParseBool(p.Value)
	return b
}

// Masked returns a copy that is safe to log or persist.
func (p ParameterValue) Masked() ParameterValue {
	if p.IsMasked() {
		p.Value = maskedValue
	}
	return p
}

func (p ParameterValue) String() string {
	return fmt.Sprintf("(%s) %s='%s'", p.Kind, p.Name, p.Masked().Value)
}

// ParameterDefinition is a build parameter configured on a project.
type ParameterDefinition struct {
	Name         string        `mapstructure:"name" json:"name"`
	Kind         ParameterKind `mapstructure:"kind" json:"kind"`
	DefaultValue string        `mapstructure:"default" json:"default,omitempty"`
	Choices      []string      `mapstructure:"choices" json:"choices,omitempty"`
	Description  string        `mapstructure:"description" json:"description,omitempty"`
}

// CreateValue builds a value from one submitted form entry of the shape
// {"name": "...", "value": ...}.
func (d ParameterDefinition) CreateValue(entry gjson.Result) (ParameterValue, error) {
	raw := entry.Get("value")
	switch d.Kind {
	case ParameterKindBoolean:
		value := d.DefaultValue == "true"
		if raw.Exists() {
			value = raw.Bool()
		}
		return NewBooleanParameter(d.Name, value), nil
	case ParameterKindPassword:
		return NewPasswordParameter(d.Name, d.stringValue(raw)), nil
	case ParameterKindChoice:
		value := d.stringValue(raw)
		if !raw.Exists() && len(d.Choices) > 0 {
			value = d.Choices[0]
		}
		if !slices.Contains(d.Choices, value) {
			err := NewValidationError(d.Name, fmt.Sprintf("Illegal choice for parameter %s: %s", d.Name, value))
			return ParameterValue{}, err
		}
		return ParameterValue{Name: d.Name, Kind: ParameterKindString, Value: value}, nil
	case ParameterKindString, ParameterKindText, "":
		return NewStringParameter(d.Name, d.stringValue(raw)), nil
	default:
		return ParameterValue{}, fmt.Errorf("unsupported parameter kind %q for %s", d.Kind, d.Name)
	}
}

func (d ParameterDefinition) stringValue(raw gjson.Result) string {
	if !raw.Exists() {
		return d.DefaultValue
	}
	return raw.String()
}
