package metrics

import (
	"context"
	"math"
	"net/http"
	"strings"
	"time"

	influxdb2 "github.com/influxdata/influxdb-client-go/v2"
	"github.com/influxdata/influxdb-client-go/v2/api"
	"github.com/influxdata/influxdb-client-go/v2/api/write"

	coremetrics "github.com/kilianp07/evrange/core/metrics"
	"github.com/kilianp07/evrange/infra/logger"
)

// InfluxSink writes prediction records to an InfluxDB instance using the official client.
type InfluxSink struct {
	client   influxdb2.Client
	writeAPI api.WriteAPIBlocking
	log      logger.Logger
}

// NewInfluxSink creates a new sink configured for the given InfluxDB endpoint.
func NewInfluxSink(url, token, org, bucket string) *InfluxSink {
	base := strings.TrimSuffix(url, "/api/v2/write")
	client := influxdb2.NewClientWithOptions(base, token,
		influxdb2.DefaultOptions().SetHTTPClient(&http.Client{Timeout: 5 * time.Second}))
	return &InfluxSink{
		client:   client,
		writeAPI: client.WriteAPIBlocking(org, bucket),
		log:      logger.New("influx-sink"),
	}
}

// NewInfluxSinkWithFallback tries to ping the InfluxDB instance and
// returns a NopSink if the health check fails.
func NewInfluxSinkWithFallback(url, token, org, bucket string) coremetrics.MetricsSink {
	sink := NewInfluxSink(url, token, org, bucket)
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	health, err := sink.client.Health(ctx)
	if err != nil || health.Status != "pass" {
		if err != nil {
			sink.log.Errorf("influx health check error: %v", err)
		} else {
			sink.log.Errorf("influx health status: %s", health.Status)
		}
		sink.client.Close()
		return coremetrics.NopSink{}
	}
	return sink
}

// RecordPrediction writes one range_prediction point.
func (s *InfluxSink) RecordPrediction(rec coremetrics.PredictionRecord) error {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	return s.writeAPI.WritePoint(ctx, predictionPoint(rec))
}

// Close releases the client.
func (s *InfluxSink) Close() { s.client.Close() }

func predictionPoint(rec coremetrics.PredictionRecord) *write.Point {
	r := rec.Request
	p := write.NewPointWithMeasurement("range_prediction")
	for _, t := range [][2]string{
		{"make", r.Make},
		{"model", r.Model},
		{"ev_type", r.EVType},
		{"cafv_eligibility", r.CAFVEligibility},
		{"outcome", rec.Outcome()},
		{"predictor", rec.Predictor},
	} {
		if t[1] != "" {
			p = p.AddTag(t[0], t[1])
		}
	}
	p = p.AddField("prediction_id", rec.ID).
		AddField("vehicle_age", r.VehicleAge).
		AddField("latency_ms", round3(rec.Latency.Seconds()*1000)).
		SetTime(rec.Time)
	if rec.Error != "" {
		p = p.AddField("error", rec.Error)
	} else {
		p = p.AddField("miles", round3(rec.Value))
	}
	return p
}

func round3(f float64) float64 {
	return math.Round(f*1000) / 1000
}
