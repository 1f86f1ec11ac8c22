// Package form serves the single page prediction form.
package form

import (
	"bytes"
	"embed"
	"html/template"
	"net/http"

	"github.com/kilianp07/evrange/core/catalog"
	"github.com/kilianp07/evrange/core/logger"
	"github.com/kilianp07/evrange/core/model"
	"github.com/kilianp07/evrange/core/prediction"
)

//go:embed templates/page.html.tmpl
var templates embed.FS

var page = template.Must(template.ParseFS(templates, "templates/page.html.tmpl"))

type optionView struct {
	Value    string
	Selected bool
}

type fieldView struct {
	Key     string
	Label   string
	Age     bool
	Options []optionView
}

type resultView struct {
	OK   bool
	Text string
}

type pageView struct {
	Fields []fieldView
	Age    int
	MinAge int
	MaxAge int
	Result *resultView
}

// formOrder places the age stepper between the eligibility and utility
// selections.
var formOrder = []model.Field{
	model.FieldMake,
	model.FieldModel,
	model.FieldEVType,
	model.FieldCAFVEligibility,
	model.FieldVehicleAge,
	model.FieldElectricUtility,
}

// Handler renders the form on GET and runs one prediction cycle on POST.
type Handler struct {
	catalog *catalog.Catalog
	cycle   *prediction.Cycle
	log     logger.Logger
}

// NewHandler returns the form handler. Options come only from cat.
func NewHandler(cat *catalog.Catalog, cycle *prediction.Cycle, log logger.Logger) *Handler {
	if log == nil {
		log = logger.NopLogger{}
	}
	return &Handler{catalog: cat, cycle: cycle, log: log}
}

func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if r.URL.Path != "/" {
		http.NotFound(w, r)
		return
	}
	switch r.Method {
	case http.MethodGet, http.MethodHead:
		h.render(w, h.catalog.DefaultRequest(), nil)
	case http.MethodPost:
		if err := r.ParseForm(); err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		req, err := model.RequestFromValues(r.PostForm.Get, h.catalog)
		if err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		res := h.cycle.Run(r.Context(), req)
		h.render(w, req, &resultView{OK: res.OK(), Text: res.Render()})
	default:
		w.Header().Set("Allow", "GET, HEAD, POST")
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
	}
}

func (h *Handler) render(w http.ResponseWriter, req model.PredictionRequest, res *resultView) {
	v := pageView{
		Age:    req.VehicleAge,
		MinAge: model.MinVehicleAge,
		MaxAge: model.MaxVehicleAge,
		Result: res,
	}
	for _, f := range formOrder {
		fv := fieldView{Key: f.Key(), Label: f.Label(), Age: f == model.FieldVehicleAge}
		if !fv.Age {
			selected := req.Category(f)
			for _, o := range h.catalog.Options(f) {
				fv.Options = append(fv.Options, optionView{Value: o, Selected: o == selected})
			}
		}
		v.Fields = append(v.Fields, fv)
	}
	var buf bytes.Buffer
	if err := page.Execute(&buf, v); err != nil {
		h.log.Errorf("render form: %v", err)
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	_, _ = buf.WriteTo(w)
}
