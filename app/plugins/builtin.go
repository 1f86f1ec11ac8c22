// Package plugins registers the built-in dataset sources, predictors and
// metrics sinks with their factories.
package plugins

import (
	_ "github.com/kilianp07/evrange/infra/dataset"
	_ "github.com/kilianp07/evrange/infra/metrics"
	_ "github.com/kilianp07/evrange/infra/predictor"
)
