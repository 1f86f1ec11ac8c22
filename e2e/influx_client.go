//go:build e2e

package e2e

import (
	"context"

	influxdb2 "github.com/influxdata/influxdb-client-go/v2"
	"github.com/influxdata/influxdb-client-go/v2/api"
)

// InfluxClient is a small query helper around the official InfluxDB v2
// client used by the E2E tests.
type InfluxClient struct {
	client influxdb2.Client
	query  api.QueryAPI
}

// NewInfluxClient creates a client for a running server.
func NewInfluxClient(url, org, token string) *InfluxClient {
	c := influxdb2.NewClient(url, token)
	return &InfluxClient{client: c, query: c.QueryAPI(org)}
}

// Count returns the number of records a Flux query yields.
func (c *InfluxClient) Count(ctx context.Context, flux string) (int, error) {
	res, err := c.query.Query(ctx, flux)
	if err != nil {
		return 0, err
	}
	defer res.Close()
	n := 0
	for res.Next() {
		n++
	}
	return n, res.Err()
}

// Close releases the underlying client resources.
func (c *InfluxClient) Close() { c.client.Close() }
