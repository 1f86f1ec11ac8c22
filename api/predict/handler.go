// Package predict exposes the catalog and the prediction cycle as a JSON API.
package predict

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/kilianp07/evrange/core/catalog"
	"github.com/kilianp07/evrange/core/model"
	"github.com/kilianp07/evrange/core/prediction"
)

const maxBodyBytes = 1 << 16

// AgeBounds describes the vehicle age stepper.
type AgeBounds struct {
	Min     int `json:"min"`
	Max     int `json:"max"`
	Default int `json:"default"`
}

// OptionsResponse lists the legal options of every categorical field.
type OptionsResponse struct {
	Fields     map[string][]string `json:"fields"`
	VehicleAge AgeBounds           `json:"vehicle_age"`
}

// Request is the JSON body of a prediction. Omitted fields take the same
// defaults as an untouched form.
type Request struct {
	Make            string `json:"make"`
	Model           string `json:"model"`
	EVType          string `json:"ev_type"`
	CAFVEligibility string `json:"cafv_eligibility"`
	ElectricUtility string `json:"electric_utility"`
	VehicleAge      *int   `json:"vehicle_age"`
}

// Response is the outcome of one prediction cycle.
type Response struct {
	ID       string   `json:"id"`
	Miles    *float64 `json:"prediction_miles,omitempty"`
	Error    string   `json:"error,omitempty"`
	Rendered string   `json:"rendered"`
}

// SweepPoint is one age of an age sweep.
type SweepPoint struct {
	VehicleAge int      `json:"vehicle_age"`
	Miles      *float64 `json:"prediction_miles,omitempty"`
	Error      string   `json:"error,omitempty"`
}

// NewOptionsHandler serves GET /api/options.
func NewOptionsHandler(cat *catalog.Catalog) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodGet {
			http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
			return
		}
		resp := OptionsResponse{
			Fields: make(map[string][]string, len(model.CategoricalFields)),
			VehicleAge: AgeBounds{
				Min:     model.MinVehicleAge,
				Max:     model.MaxVehicleAge,
				Default: model.DefaultVehicleAge,
			},
		}
		for _, f := range cat.Fields() {
			resp.Fields[f.Key()] = cat.Options(f)
		}
		writeJSON(w, http.StatusOK, resp)
	})
}

// NewPredictHandler serves POST /api/predict. A PredictionError yields 422.
func NewPredictHandler(cat *catalog.Catalog, cycle *prediction.Cycle) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		req, ok := decode(w, r, cat)
		if !ok {
			return
		}
		res := cycle.Run(r.Context(), req)
		out := Response{ID: res.ID, Rendered: res.Render()}
		status := http.StatusOK
		if res.OK() {
			v := res.Value
			out.Miles = &v
		} else {
			out.Error = res.Err.Error()
			status = http.StatusUnprocessableEntity
		}
		writeJSON(w, status, out)
	})
}

// NewSweepHandler serves POST /api/predict/sweep, predicting every age of
// the stepper for the submitted vehicle.
func NewSweepHandler(cat *catalog.Catalog, cycle *prediction.Cycle) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		req, ok := decode(w, r, cat)
		if !ok {
			return
		}
		results := cycle.Sweep(r.Context(), req)
		out := make([]SweepPoint, 0, len(results))
		for _, res := range results {
			p := SweepPoint{VehicleAge: res.Request.VehicleAge}
			if res.OK() {
				v := res.Value
				p.Miles = &v
			} else {
				p.Error = res.Err.Error()
			}
			out = append(out, p)
		}
		writeJSON(w, http.StatusOK, out)
	})
}

func decode(w http.ResponseWriter, r *http.Request, cat *catalog.Catalog) (model.PredictionRequest, bool) {
	if r.Method != http.MethodPost {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return model.PredictionRequest{}, false
	}
	req, err := parseRequest(http.MaxBytesReader(w, r.Body, maxBodyBytes), cat)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": err.Error()})
		return model.PredictionRequest{}, false
	}
	return req, true
}

func parseRequest(body io.Reader, defaults model.Defaults) (model.PredictionRequest, error) {
	var in Request
	dec := json.NewDecoder(body)
	dec.DisallowUnknownFields()
	if err := dec.Decode(&in); err != nil {
		if errors.Is(err, io.EOF) {
			return model.PredictionRequest{}, errors.New("empty request body")
		}
		return model.PredictionRequest{}, fmt.Errorf("invalid request body: %w", err)
	}
	req := model.PredictionRequest{
		Make:            in.Make,
		Model:           in.Model,
		EVType:          in.EVType,
		CAFVEligibility: in.CAFVEligibility,
		ElectricUtility: in.ElectricUtility,
		VehicleAge:      model.DefaultVehicleAge,
	}
	for _, f := range model.CategoricalFields {
		if strings.TrimSpace(req.Category(f)) == "" {
			req = req.WithCategory(f, defaults.Default(f))
		}
	}
	if in.VehicleAge != nil {
		req.VehicleAge = model.ClampAge(*in.VehicleAge)
	}
	return req, nil
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
