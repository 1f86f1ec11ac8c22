// Package export writes the option catalog and age sweeps to files.
package export

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"strconv"

	"github.com/go-echarts/go-echarts/v2/charts"
	"github.com/go-echarts/go-echarts/v2/opts"

	"github.com/kilianp07/evrange/core/catalog"
	"github.com/kilianp07/evrange/core/prediction"
)

// WriteJSON writes the catalog as an object mapping field name to options.
func WriteJSON(w io.Writer, cat *catalog.Catalog) error {
	out := make(map[string][]string)
	for _, f := range cat.Fields() {
		out[string(f)] = cat.Options(f)
	}
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(out)
}

// WriteCSV writes one field,option record per catalog option.
func WriteCSV(w io.Writer, cat *catalog.Catalog) error {
	cw := csv.NewWriter(w)
	if err := cw.Write([]string{"field", "option"}); err != nil {
		return err
	}
	for _, f := range cat.Fields() {
		for _, o := range cat.Options(f) {
			if err := cw.Write([]string{string(f), o}); err != nil {
				return err
			}
		}
	}
	cw.Flush()
	return cw.Error()
}

// WriteSweepCSV writes one vehicle_age,prediction_miles,error record per result.
func WriteSweepCSV(w io.Writer, results []prediction.Result) error {
	cw := csv.NewWriter(w)
	if err := cw.Write([]string{"vehicle_age", "prediction_miles", "error"}); err != nil {
		return err
	}
	for _, r := range results {
		rec := []string{strconv.Itoa(r.Request.VehicleAge), "", ""}
		if r.OK() {
			rec[1] = strconv.FormatFloat(r.Value, 'f', 2, 64)
		} else {
			rec[2] = r.Err.Error()
		}
		if err := cw.Write(rec); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

// WriteSweepChart renders the predicted range against vehicle age as an
// HTML line chart. Failed ages are left as gaps.
func WriteSweepChart(w io.Writer, results []prediction.Result) error {
	if len(results) == 0 {
		return fmt.Errorf("no results to chart")
	}
	req := results[0].Request
	line := charts.NewLine()
	line.SetGlobalOptions(
		charts.WithTitleOpts(opts.Title{
			Title:    "Estimated Electric Range",
			Subtitle: fmt.Sprintf("%s %s (%s)", req.Make, req.Model, req.EVType),
		}),
		charts.WithXAxisOpts(opts.XAxis{Name: "Vehicle Age (years)"}),
		charts.WithYAxisOpts(opts.YAxis{Name: "Range (miles)"}),
	)

	xAxis := make([]string, 0, len(results))
	yAxis := make([]opts.LineData, 0, len(results))
	for _, r := range results {
		xAxis = append(xAxis, strconv.Itoa(r.Request.VehicleAge))
		if r.OK() {
			yAxis = append(yAxis, opts.LineData{Value: r.Value})
		} else {
			yAxis = append(yAxis, opts.LineData{Value: "-"})
		}
	}
	line.SetXAxis(xAxis).AddSeries("Range", yAxis)

	if err := line.Render(w); err != nil {
		return fmt.Errorf("failed to render chart: %w", err)
	}
	return nil
}
