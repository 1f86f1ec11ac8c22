package form

import (
	"context"
	"net/http"
	"net/http/httptest"
	"net/url"
	"regexp"
	"strings"
	"testing"

	"github.com/kilianp07/evrange/core/catalog"
	"github.com/kilianp07/evrange/core/dataset"
	"github.com/kilianp07/evrange/core/model"
	"github.com/kilianp07/evrange/core/prediction"
)

var milesPattern = regexp.MustCompile(`<h1 class="miles">(\d+\.\d{2} miles)</h1>`)

func newHandler(t *testing.T, p prediction.Predictor) *Handler {
	t.Helper()
	tbl, err := dataset.NewTable(
		[]string{"Make", "Model", "EV_Type", "CAFV_Eligibility", "Electric_Utility"},
		[][]string{
			{"TESLA", "MODEL 3", "BEV", "Eligible", "PUGET SOUND ENERGY INC"},
			{"NISSAN", "LEAF", "BEV", "Eligible", "CITY OF SEATTLE"},
			{"KIA", "NIRO", "PHEV", "Not eligible", ""},
		})
	if err != nil {
		t.Fatalf("table: %v", err)
	}
	cat, err := catalog.Build(tbl)
	if err != nil {
		t.Fatalf("catalog: %v", err)
	}
	c, err := prediction.NewCycle(p)
	if err != nil {
		t.Fatalf("cycle: %v", err)
	}
	return NewHandler(cat, c, nil)
}

func mock() prediction.MockPredictor {
	return prediction.MockPredictor{Ranges: map[string]float64{"MODEL 3": 240, "LEAF": 150}, LossPerYear: 2.5}
}

func post(h http.Handler, form url.Values) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, req)
	return rr
}

func TestGet_RendersCatalogOptions(t *testing.T) {
	h := newHandler(t, mock())
	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/", nil))
	if rr.Code != http.StatusOK {
		t.Fatalf("status %d", rr.Code)
	}
	body := rr.Body.String()
	if n := strings.Count(body, "<select"); n != 5 {
		t.Fatalf("expected 5 selects, got %d", n)
	}
	for _, want := range []string{
		`<option value="KIA" selected>KIA</option>`,
		`<option value="NISSAN">NISSAN</option>`,
		`<option value="LEAF" selected>LEAF</option>`,
		`<option value="CITY OF SEATTLE" selected>`,
		`min="0" max="30" step="1" value="3"`,
		"Electric Utility Provider",
		"Predict Electric Range",
	} {
		if !strings.Contains(body, want) {
			t.Fatalf("body missing %q", want)
		}
	}
	if strings.Contains(body, `<option value="">`) {
		t.Fatalf("missing values must not be offered")
	}
	if strings.Contains(body, "result-box\">") || strings.Contains(body, `role="alert"`) {
		t.Fatalf("no outcome expected before submission")
	}
}

func TestPost_KnownGoodRequest(t *testing.T) {
	h := newHandler(t, mock())
	rr := post(h, url.Values{
		"make":             {"TESLA"},
		"model":            {"MODEL 3"},
		"ev_type":          {"BEV"},
		"cafv_eligibility": {"Eligible"},
		"electric_utility": {"PUGET SOUND ENERGY INC"},
		"vehicle_age":      {"3"},
	})
	if rr.Code != http.StatusOK {
		t.Fatalf("status %d", rr.Code)
	}
	body := rr.Body.String()
	m := milesPattern.FindStringSubmatch(body)
	if m == nil || m[1] != "232.50 miles" {
		t.Fatalf("unexpected result %v", m)
	}
	if !strings.Contains(body, `<option value="TESLA" selected>`) {
		t.Fatalf("submitted make not kept selected")
	}
	if !strings.Contains(body, "Estimated Electric Range") {
		t.Fatalf("missing result heading")
	}
}

func TestPost_Idempotent(t *testing.T) {
	h := newHandler(t, mock())
	form := url.Values{"model": {"LEAF"}, "vehicle_age": {"7"}}
	a := milesPattern.FindStringSubmatch(post(h, form).Body.String())
	b := milesPattern.FindStringSubmatch(post(h, form).Body.String())
	if a == nil || b == nil || a[1] != b[1] {
		t.Fatalf("expected identical outputs, got %v and %v", a, b)
	}
}

func TestPost_UnknownCategoryShowsError(t *testing.T) {
	h := newHandler(t, mock())
	rr := post(h, url.Values{"model": {"NIRO"}})
	if rr.Code != http.StatusOK {
		t.Fatalf("status %d", rr.Code)
	}
	body := rr.Body.String()
	if !strings.Contains(body, `<div class="error" role="alert">Prediction Error: found unknown categories [NIRO] in column Model during transform</div>`) {
		t.Fatalf("missing error banner: %s", body)
	}
	if milesPattern.MatchString(body) {
		t.Fatalf("no value expected on error")
	}
}

func TestPost_AgeHandling(t *testing.T) {
	var got []int
	h := newHandler(t, prediction.PredictorFunc(func(_ context.Context, req model.PredictionRequest) (float64, error) {
		got = append(got, req.VehicleAge)
		return 100, nil
	}))
	for _, age := range []string{"", "-4", "99", "12"} {
		if rr := post(h, url.Values{"vehicle_age": {age}}); rr.Code != http.StatusOK {
			t.Fatalf("age %q: status %d", age, rr.Code)
		}
	}
	want := []int{model.DefaultVehicleAge, 0, 30, 12}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("ages %v, want %v", got, want)
		}
	}
	if rr := post(h, url.Values{"vehicle_age": {"3.5"}}); rr.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 for non-integer age, got %d", rr.Code)
	}
	if len(got) != len(want) {
		t.Fatalf("predictor called for rejected input")
	}
}

func TestPost_PanicBecomesError(t *testing.T) {
	h := newHandler(t, prediction.PredictorFunc(func(context.Context, model.PredictionRequest) (float64, error) {
		panic("corrupt artifact")
	}))
	body := post(h, url.Values{}).Body.String()
	if !strings.Contains(body, "Prediction Error: predictor panic: corrupt artifact") {
		t.Fatalf("missing panic banner")
	}
}

func TestRouting(t *testing.T) {
	h := newHandler(t, mock())
	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/nope", nil))
	if rr.Code != http.StatusNotFound {
		t.Fatalf("status %d", rr.Code)
	}
	rr = httptest.NewRecorder()
	h.ServeHTTP(rr, httptest.NewRequest(http.MethodDelete, "/", nil))
	if rr.Code != http.StatusMethodNotAllowed {
		t.Fatalf("status %d", rr.Code)
	}
}
