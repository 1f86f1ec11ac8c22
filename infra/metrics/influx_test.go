package metrics

import (
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/influxdata/influxdb-client-go/v2/api/write"

	coremetrics "github.com/kilianp07/evrange/core/metrics"
	"github.com/kilianp07/evrange/core/model"
)

func TestInfluxSink_RecordPrediction(t *testing.T) {
	var body string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		data, _ := io.ReadAll(r.Body)
		body = string(data)
		w.WriteHeader(http.StatusNoContent)
	}))
	defer srv.Close()

	sink := NewInfluxSink(srv.URL, "token", "org", "bucket")
	defer sink.Close()
	now := time.Now()
	rec := coremetrics.PredictionRecord{
		ID:        "p1",
		Predictor: "linear",
		Request: model.PredictionRequest{
			Make:            "TESLA",
			Model:           "MODEL 3",
			EVType:          "BEV",
			CAFVEligibility: "Eligible",
			VehicleAge:      3,
		},
		Value:   220.12345,
		Latency: 1500 * time.Microsecond,
		Time:    now,
	}
	if err := sink.RecordPrediction(rec); err != nil {
		t.Fatalf("record error: %v", err)
	}
	p := write.NewPointWithMeasurement("range_prediction").
		AddTag("make", "TESLA").
		AddTag("model", "MODEL 3").
		AddTag("ev_type", "BEV").
		AddTag("cafv_eligibility", "Eligible").
		AddTag("outcome", "success").
		AddTag("predictor", "linear").
		AddField("prediction_id", "p1").
		AddField("vehicle_age", 3).
		AddField("latency_ms", 1.5).
		SetTime(now).
		AddField("miles", 220.123)
	expected := strings.TrimSpace(write.PointToLineProtocol(p, time.Nanosecond))
	if strings.TrimSpace(body) != expected {
		t.Errorf("unexpected body: %s\nwant: %s", body, expected)
	}
}

func TestInfluxSink_RecordFailure(t *testing.T) {
	var body string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		data, _ := io.ReadAll(r.Body)
		body = string(data)
		w.WriteHeader(http.StatusNoContent)
	}))
	defer srv.Close()

	sink := NewInfluxSink(srv.URL+"/api/v2/write", "token", "org", "bucket")
	defer sink.Close()
	rec := coremetrics.PredictionRecord{ID: "p2", Error: "found unknown categories", Time: time.Now()}
	if err := sink.RecordPrediction(rec); err != nil {
		t.Fatalf("record error: %v", err)
	}
	if !strings.Contains(body, "outcome=error") || !strings.Contains(body, `error="found unknown categories"`) {
		t.Errorf("unexpected body: %s", body)
	}
	if strings.Contains(body, "miles=") {
		t.Errorf("failed prediction should not carry miles: %s", body)
	}
}

func TestNewInfluxSinkWithFallback(t *testing.T) {
	called := false
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/health" {
			called = true
			w.WriteHeader(http.StatusInternalServerError)
			return
		}
	}))
	defer srv.Close()

	sink := NewInfluxSinkWithFallback(srv.URL+"/api/v2/write", "tok", "org", "bucket")
	if _, ok := sink.(*InfluxSink); ok {
		t.Fatalf("expected NopSink on failing health check")
	}
	if !called {
		t.Fatalf("health endpoint not called")
	}
}
