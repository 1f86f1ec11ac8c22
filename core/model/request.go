package model

import (
	"fmt"
	"strconv"
	"strings"
)

// Field identifies one input of a PredictionRequest.
type Field string

const (
	FieldMake            Field = "Make"
	FieldModel           Field = "Model"
	FieldEVType          Field = "EV_Type"
	FieldCAFVEligibility Field = "CAFV_Eligibility"
	FieldElectricUtility Field = "Electric_Utility"
	FieldVehicleAge      Field = "Vehicle_Age"
)

// Vehicle age stepper bounds.
const (
	MinVehicleAge     = 0
	MaxVehicleAge     = 30
	DefaultVehicleAge = 3
)

// CategoricalFields lists the categorical inputs in form order.
var CategoricalFields = []Field{
	FieldMake,
	FieldModel,
	FieldEVType,
	FieldCAFVEligibility,
	FieldElectricUtility,
}

// Label returns the human readable form label of the field.
func (f Field) Label() string {
	switch f {
	case FieldMake:
		return "Make"
	case FieldModel:
		return "Model"
	case FieldEVType:
		return "EV Type"
	case FieldCAFVEligibility:
		return "CAFV Eligibility"
	case FieldElectricUtility:
		return "Electric Utility Provider"
	case FieldVehicleAge:
		return "Vehicle Age (years)"
	default:
		return string(f)
	}
}

// Key returns the lower case form/JSON key of the field.
func (f Field) Key() string { return strings.ToLower(string(f)) }

// ParseField resolves a field from its name or key, case-insensitively.
func ParseField(s string) (Field, bool) {
	for _, f := range CategoricalFields {
		if strings.EqualFold(s, string(f)) {
			return f, true
		}
	}
	if strings.EqualFold(s, string(FieldVehicleAge)) {
		return FieldVehicleAge, true
	}
	return "", false
}

// PredictionRequest is the single record handed to a predictor.
type PredictionRequest struct {
	Make            string `json:"make"`
	Model           string `json:"model"`
	EVType          string `json:"ev_type"`
	CAFVEligibility string `json:"cafv_eligibility"`
	ElectricUtility string `json:"electric_utility"`
	VehicleAge      int    `json:"vehicle_age"`
}

// Category returns the value of a categorical field.
func (r PredictionRequest) Category(f Field) string {
	switch f {
	case FieldMake:
		return r.Make
	case FieldModel:
		return r.Model
	case FieldEVType:
		return r.EVType
	case FieldCAFVEligibility:
		return r.CAFVEligibility
	case FieldElectricUtility:
		return r.ElectricUtility
	default:
		return ""
	}
}

// WithCategory returns a copy of r with the categorical field set to v.
func (r PredictionRequest) WithCategory(f Field, v string) PredictionRequest {
	switch f {
	case FieldMake:
		r.Make = v
	case FieldModel:
		r.Model = v
	case FieldEVType:
		r.EVType = v
	case FieldCAFVEligibility:
		r.CAFVEligibility = v
	case FieldElectricUtility:
		r.ElectricUtility = v
	}
	return r
}

// Validate checks the vehicle age domain.
func (r PredictionRequest) Validate() error {
	if r.VehicleAge < MinVehicleAge || r.VehicleAge > MaxVehicleAge {
		return fmt.Errorf("vehicle age %d outside [%d,%d]", r.VehicleAge, MinVehicleAge, MaxVehicleAge)
	}
	return nil
}

// ClampAge bounds an age into the accepted range.
func ClampAge(age int) int {
	if age < MinVehicleAge {
		return MinVehicleAge
	}
	if age > MaxVehicleAge {
		return MaxVehicleAge
	}
	return age
}

// ParseAge parses a stepper value. An empty string yields the default age and
// out of range values are clamped.
func ParseAge(s string) (int, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return DefaultVehicleAge, nil
	}
	v, err := strconv.Atoi(s)
	if err != nil {
		return 0, fmt.Errorf("vehicle age %q is not an integer", s)
	}
	return ClampAge(v), nil
}

// Defaults supplies the value used when a categorical input is left empty.
type Defaults interface {
	Default(f Field) string
}

// RequestFromValues assembles a request from raw form values. Empty
// or blank categorical values take the default and other values are kept
// verbatim. The age is parsed with ParseAge.
func RequestFromValues(get func(key string) string, defaults Defaults) (PredictionRequest, error) {
	var req PredictionRequest
	for _, f := range CategoricalFields {
		v := get(f.Key())
		if strings.TrimSpace(v) == "" && defaults != nil {
			v = defaults.Default(f)
		}
		req = req.WithCategory(f, v)
	}
	age, err := ParseAge(get(FieldVehicleAge.Key()))
	if err != nil {
		return PredictionRequest{}, err
	}
	req.VehicleAge = age
	return req, nil
}
