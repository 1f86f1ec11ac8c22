// Package factory provides a small generic registry used to instantiate modules
// from configuration. Modules are defined by a type string and a map of raw
// settings. Factories decode the settings into typed structs and return the
// concrete implementation.
//
// Example usage:
//
//	reg := factory.NewRegistry[prediction.Predictor]()
//	reg.Register("linear", func(conf map[string]any) (prediction.Predictor, error) {
//	    var c struct{ Path string `json:"path"` }
//	    if err := factory.Decode(conf, &c); err != nil {
//	        return nil, err
//	    }
//	    return LoadLinear(c.Path)
//	})
//	p, err := reg.Create(factory.ModuleConfig{Type: "linear", Conf: map[string]any{"path": "model.json"}})
package factory
