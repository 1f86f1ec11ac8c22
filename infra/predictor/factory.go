package predictor

import (
	"fmt"

	"github.com/kilianp07/evrange/core/factory"
	"github.com/kilianp07/evrange/core/prediction"
)

type artifactConf struct {
	Path string `json:"path"`
}

func decodeConf(kind string, conf map[string]any) (artifactConf, error) {
	var c artifactConf
	if err := factory.Decode(conf, &c); err != nil {
		return c, err
	}
	if c.Path == "" {
		return c, fmt.Errorf("%s predictor: path is required", kind)
	}
	return c, nil
}

func init() {
	_ = prediction.RegisterPredictor("linear", func(conf map[string]any) (prediction.Predictor, error) {
		c, err := decodeConf("linear", conf)
		if err != nil {
			return nil, err
		}
		p, err := LoadLinear(c.Path)
		if err != nil {
			return nil, err
		}
		return p, nil
	})
	_ = prediction.RegisterPredictor("tree", func(conf map[string]any) (prediction.Predictor, error) {
		c, err := decodeConf("tree", conf)
		if err != nil {
			return nil, err
		}
		p, err := LoadTree(c.Path)
		if err != nil {
			return nil, err
		}
		return p, nil
	})
}
