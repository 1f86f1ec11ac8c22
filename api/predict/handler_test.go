package predict

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kilianp07/evrange/core/catalog"
	"github.com/kilianp07/evrange/core/dataset"
	"github.com/kilianp07/evrange/core/model"
	"github.com/kilianp07/evrange/core/prediction"
)

func fixtures(t *testing.T) (*catalog.Catalog, *prediction.Cycle) {
	t.Helper()
	tbl, err := dataset.NewTable(
		[]string{"Make", "Model", "EV_Type", "CAFV_Eligibility", "Electric_Utility"},
		[][]string{
			{"TESLA", "MODEL 3", "BEV", "Eligible", "PUGET SOUND ENERGY INC"},
			{"NISSAN", "LEAF", "BEV", "Eligible", "CITY OF SEATTLE"},
			{"KIA", "NIRO", "PHEV", "Not eligible", "PACIFICORP"},
		})
	require.NoError(t, err)
	cat, err := catalog.Build(tbl)
	require.NoError(t, err)
	cycle, err := prediction.NewCycle(prediction.MockPredictor{
		Ranges:      map[string]float64{"MODEL 3": 240, "LEAF": 150},
		LossPerYear: 2.5,
	})
	require.NoError(t, err)
	return cat, cycle
}

func do(h http.Handler, method, body string) *httptest.ResponseRecorder {
	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, httptest.NewRequest(method, "/", strings.NewReader(body)))
	return rr
}

func TestOptions(t *testing.T) {
	cat, _ := fixtures(t)
	rr := do(NewOptionsHandler(cat), http.MethodGet, "")
	require.Equal(t, http.StatusOK, rr.Code)
	var out OptionsResponse
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &out))
	assert.Equal(t, []string{"KIA", "NISSAN", "TESLA"}, out.Fields["make"])
	assert.Equal(t, []string{"BEV", "PHEV"}, out.Fields["ev_type"])
	assert.Len(t, out.Fields, 5)
	assert.Equal(t, AgeBounds{Min: 0, Max: 30, Default: 3}, out.VehicleAge)

	assert.Equal(t, http.StatusMethodNotAllowed, do(NewOptionsHandler(cat), http.MethodPost, "").Code)
}

func TestPredict_Success(t *testing.T) {
	cat, cycle := fixtures(t)
	rr := do(NewPredictHandler(cat, cycle), http.MethodPost,
		`{"make":"TESLA","model":"MODEL 3","ev_type":"BEV","cafv_eligibility":"Eligible","electric_utility":"PUGET SOUND ENERGY INC","vehicle_age":3}`)
	require.Equal(t, http.StatusOK, rr.Code)
	var out Response
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &out))
	require.NotNil(t, out.Miles)
	assert.InDelta(t, 232.5, *out.Miles, 1e-9)
	assert.Equal(t, "232.50 miles", out.Rendered)
	assert.NotEmpty(t, out.ID)
	assert.Empty(t, out.Error)
}

func TestPredict_Defaults(t *testing.T) {
	cat, _ := fixtures(t)
	var got []int
	var models []string
	cycle, err := prediction.NewCycle(prediction.PredictorFunc(func(_ context.Context, req model.PredictionRequest) (float64, error) {
		got = append(got, req.VehicleAge)
		models = append(models, req.Model)
		return 1, nil
	}))
	require.NoError(t, err)
	h := NewPredictHandler(cat, cycle)
	for _, body := range []string{`{}`, `{"vehicle_age": 45}`, `{"vehicle_age": -1, "model": "  "}`, `{"model": " LEAF "}`} {
		require.Equal(t, http.StatusOK, do(h, http.MethodPost, body).Code, body)
	}
	assert.Equal(t, []int{3, 30, 0, 3}, got)
	assert.Equal(t, []string{"LEAF", "LEAF", "LEAF", " LEAF "}, models)
}

func TestPredict_PredictionError(t *testing.T) {
	cat, cycle := fixtures(t)
	rr := do(NewPredictHandler(cat, cycle), http.MethodPost, `{"model":"NIRO"}`)
	require.Equal(t, http.StatusUnprocessableEntity, rr.Code)
	var out Response
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &out))
	assert.Nil(t, out.Miles)
	assert.Equal(t, "Prediction Error: found unknown categories [NIRO] in column Model during transform", out.Error)
	assert.Equal(t, out.Error, out.Rendered)
}

func TestPredict_BadRequests(t *testing.T) {
	cat, cycle := fixtures(t)
	h := NewPredictHandler(cat, cycle)
	for _, body := range []string{``, `{`, `{"vehicle_age": 3.5}`, `{"vehicle_age": "3"}`, `{"colour": "red"}`} {
		assert.Equal(t, http.StatusBadRequest, do(h, http.MethodPost, body).Code, body)
	}
	assert.Equal(t, http.StatusMethodNotAllowed, do(h, http.MethodGet, "").Code)
}

func TestSweep(t *testing.T) {
	cat, cycle := fixtures(t)
	rr := do(NewSweepHandler(cat, cycle), http.MethodPost, `{"make":"TESLA","model":"MODEL 3"}`)
	require.Equal(t, http.StatusOK, rr.Code)
	var out []SweepPoint
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &out))
	require.Len(t, out, 31)
	assert.Equal(t, 0, out[0].VehicleAge)
	assert.InDelta(t, 240.0, *out[0].Miles, 1e-9)
	assert.Equal(t, 30, out[30].VehicleAge)
	assert.InDelta(t, 165.0, *out[30].Miles, 1e-9)

	rr = do(NewSweepHandler(cat, cycle), http.MethodPost, `{"model":"NIRO"}`)
	var failed []SweepPoint
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &failed))
	require.Len(t, failed, 31)
	assert.Nil(t, failed[5].Miles)
	assert.Contains(t, failed[5].Error, "Prediction Error:")
}
