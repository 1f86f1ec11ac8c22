// Package scenarios runs YAML described prediction scenarios against the
// shipped dataset and predictor artifacts.
package scenarios

import (
	"os"
	"strconv"

	"gopkg.in/yaml.v3"

	"github.com/kilianp07/evrange/core/factory"
	"github.com/kilianp07/evrange/core/model"
)

type ModuleDef struct {
	Type string         `yaml:"type"`
	Conf map[string]any `yaml:"conf"`
}

func (m ModuleDef) ToConfig() factory.ModuleConfig {
	return factory.ModuleConfig{Type: m.Type, Conf: m.Conf}
}

// RequestDef leaves fields empty to take the form defaults.
type RequestDef struct {
	Make            string `yaml:"make"`
	Model           string `yaml:"model"`
	EVType          string `yaml:"ev_type"`
	CAFVEligibility string `yaml:"cafv_eligibility"`
	ElectricUtility string `yaml:"electric_utility"`
	VehicleAge      *int   `yaml:"vehicle_age"`
}

func (r RequestDef) Get(key string) string {
	switch key {
	case model.FieldMake.Key():
		return r.Make
	case model.FieldModel.Key():
		return r.Model
	case model.FieldEVType.Key():
		return r.EVType
	case model.FieldCAFVEligibility.Key():
		return r.CAFVEligibility
	case model.FieldElectricUtility.Key():
		return r.ElectricUtility
	case model.FieldVehicleAge.Key():
		if r.VehicleAge == nil {
			return ""
		}
		return strconv.Itoa(*r.VehicleAge)
	}
	return ""
}

type CaseDef struct {
	Name    string     `yaml:"name"`
	Request RequestDef `yaml:"request"`
	// Rendered is the exact expected output; ErrorContains expects a failure.
	Rendered      string `yaml:"rendered,omitempty"`
	ErrorContains string `yaml:"error_contains,omitempty"`
}

type Expected struct {
	Success int `yaml:"success"`
	Error   int `yaml:"error"`
}

type Scenario struct {
	Name        string    `yaml:"name"`
	Description string    `yaml:"description,omitempty"`
	Dataset     ModuleDef `yaml:"dataset"`
	Predictor   ModuleDef `yaml:"predictor"`
	Cases       []CaseDef `yaml:"cases"`
	Expected    Expected  `yaml:"expected"`
}

func Load(path string) (*Scenario, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var sc Scenario
	if err := yaml.Unmarshal(data, &sc); err != nil {
		return nil, err
	}
	return &sc, nil
}
