package core

import "strconv"

// ParamType enumerates supported parameter value kinds.
type ParamType string

const (
	// ParamTypeInt denotes integer-valued parameters.
	ParamTypeInt ParamType = "int"
	// ParamTypeFloat denotes floating-point parameters.
	ParamTypeFloat ParamType = "float"
	// ParamTypeBool denotes boolean parameters.
	ParamTypeBool ParamType = "bool"
	// ParamTypeString denotes free-form text such as a rule source line.
	ParamTypeString ParamType = "string"
)

// Parameter describes a single value exposed by a simulation for display.
type Parameter struct {
	Key         string
	Label       string
	Type        ParamType
	Value       string
	Description string
}

// ParameterGroup clusters related parameters for presentation purposes.
type ParameterGroup struct {
	Name    string
	Params  []Parameter
	Summary string
}

// ParameterSnapshot captures the current set of values exposed by a sim.
type ParameterSnapshot struct {
	Groups []ParameterGroup
}

// ParameterProvider is implemented by sims that expose a status snapshot to
// viewers (overlay, terminal status line, frame stream).
type ParameterProvider interface {
	Parameters() ParameterSnapshot
}

// Lookup finds a parameter by key across all groups.
func (s ParameterSnapshot) Lookup(key string) (Parameter, bool) {
	for _, g := range s.Groups {
		for _, p := range g.Params {
			if p.Key == key {
				return p, true
			}
		}
	}
	return Parameter{}, false
}

// IntParam builds an integer parameter.
func IntParam(key, label string, v int) Parameter {
	return Parameter{Key: key, Label: label, Type: ParamTypeInt, Value: strconv.Itoa(v)}
}

// Int64Param builds an integer parameter from an int64.
func Int64Param(key, label string, v int64) Parameter {
	return Parameter{Key: key, Label: label, Type: ParamTypeInt, Value: strconv.FormatInt(v, 10)}
}

// BoolParam builds a boolean parameter.
func BoolParam(key, label string, v bool) Parameter {
	return Parameter{Key: key, Label: label, Type: ParamTypeBool, Value: strconv.FormatBool(v)}
}

// StringParam builds a text parameter.
func StringParam(key, label, v string) Parameter {
	return Parameter{Key: key, Label: label, Type: ParamTypeString, Value: v}
}
