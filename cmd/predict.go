package cmd

import (
	"fmt"
	"io"
	"os"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/kilianp07/evrange/app"
	"github.com/kilianp07/evrange/config"
	"github.com/kilianp07/evrange/core/model"
	"github.com/kilianp07/evrange/core/prediction"
	"github.com/kilianp07/evrange/infra/logger"
	"github.com/kilianp07/evrange/pkg/export"
)

// vehicle holds the categorical flag values shared by predict and sweep.
var vehicle = map[model.Field]*string{}

var (
	ageFlag  int
	chartOut string
)

var configureLogging = logger.Configure

var predictCmd = &cobra.Command{
	Use:   "predict",
	Short: "Predict the electric range of one vehicle",
	Long:  "Runs one prediction. Omitted fields take the first option of the catalog.",
	RunE:  runPredict,
}

var sweepCmd = &cobra.Command{
	Use:   "sweep",
	Short: "Predict the range of one vehicle for every age and chart it",
	RunE:  runSweep,
}

func vehicleFlags(c *cobra.Command) {
	names := map[model.Field]string{
		model.FieldMake:            "make",
		model.FieldModel:           "model",
		model.FieldEVType:          "ev-type",
		model.FieldCAFVEligibility: "cafv",
		model.FieldElectricUtility: "utility",
	}
	for _, f := range model.CategoricalFields {
		if vehicle[f] == nil {
			vehicle[f] = new(string)
		}
		c.Flags().StringVar(vehicle[f], names[f], "", f.Label())
	}
}

func init() {
	vehicleFlags(predictCmd)
	predictCmd.Flags().IntVar(&ageFlag, "age", model.DefaultVehicleAge, "vehicle age in years, clamped to [0,30]")
	vehicleFlags(sweepCmd)
	sweepCmd.Flags().StringVar(&chartOut, "out", "sweep.html", "chart output file")
	rootCmd.AddCommand(predictCmd, sweepCmd)
}

// oneShot is a cycle and request assembled from the flags. logs releases the
// log file opened for the command.
type oneShot struct {
	cycle *prediction.Cycle
	req   model.PredictionRequest
	logs  io.Closer
}

// newOneShot loads the catalog and predictor and assembles the request from
// the flags. The caller closes logs on success.
func newOneShot(cmd *cobra.Command) (*oneShot, error) {
	cfg, err := config.Load(cfgPath)
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}
	logs, err := configureLogging(cfg.Logging)
	if err != nil {
		return nil, err
	}
	s, err := assemble(cmd, cfg)
	if err != nil {
		_ = logs.Close()
		return nil, err
	}
	s.logs = logs
	return s, nil
}

func assemble(cmd *cobra.Command, cfg *config.Config) (*oneShot, error) {
	cat, err := app.LoadCatalog(cmd.Context(), *cfg)
	if err != nil {
		return nil, err
	}
	p, err := app.LoadPredictor(*cfg)
	if err != nil {
		return nil, err
	}
	values := map[string]string{model.FieldVehicleAge.Key(): strconv.Itoa(ageFlag)}
	for f, v := range vehicle {
		values[f.Key()] = *v
	}
	req, err := model.RequestFromValues(func(k string) string { return values[k] }, cat)
	if err != nil {
		return nil, err
	}
	c, err := prediction.NewCycle(p, prediction.WithLogger(logger.New("prediction")))
	if err != nil {
		return nil, err
	}
	return &oneShot{cycle: c, req: req}, nil
}

func runPredict(cmd *cobra.Command, args []string) error {
	s, err := newOneShot(cmd)
	if err != nil {
		return err
	}
	defer s.logs.Close()
	res := s.cycle.Run(cmd.Context(), s.req)
	if !res.OK() {
		return res.Err
	}
	_, err = fmt.Fprintln(cmd.OutOrStdout(), res.Render())
	return err
}

func runSweep(cmd *cobra.Command, args []string) error {
	s, err := newOneShot(cmd)
	if err != nil {
		return err
	}
	defer s.logs.Close()
	results := s.cycle.Sweep(cmd.Context(), s.req)
	if err := export.WriteSweepCSV(cmd.OutOrStdout(), results); err != nil {
		return err
	}
	f, err := os.Create(chartOut)
	if err != nil {
		return err
	}
	if err := export.WriteSweepChart(f, results); err != nil {
		_ = f.Close()
		return err
	}
	return f.Close()
}
