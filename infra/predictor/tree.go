package predictor

import (
	"context"
	"fmt"

	"github.com/kilianp07/evrange/core/model"
	"github.com/kilianp07/evrange/core/prediction"
)

// TreeArtifact is a gradient boosted ensemble of regression trees.
type TreeArtifact struct {
	Name         string  `json:"name" yaml:"name"`
	BaseValue    float64 `json:"base_value" yaml:"base_value"`
	LearningRate float64 `json:"learning_rate" yaml:"learning_rate"`
	// Levels lists, per field, the categories seen during fitting.
	Levels map[string][]string `json:"levels" yaml:"levels"`
	Trees  []TreeSpec          `json:"trees" yaml:"trees"`
}

// TreeSpec holds the nodes of one tree; node 0 is the root.
type TreeSpec struct {
	Nodes []NodeSpec `json:"nodes" yaml:"nodes"`
}

// NodeSpec is a split or, when Field is empty, a leaf.
//
// A categorical split sends a request left when its value is in In. An age
// split sends it left when the age is at most Threshold.
type NodeSpec struct {
	Field     string   `json:"field,omitempty" yaml:"field,omitempty"`
	In        []string `json:"in,omitempty" yaml:"in,omitempty"`
	Threshold float64  `json:"threshold,omitempty" yaml:"threshold,omitempty"`
	Left      int      `json:"left,omitempty" yaml:"left,omitempty"`
	Right     int      `json:"right,omitempty" yaml:"right,omitempty"`
	Value     float64  `json:"value,omitempty" yaml:"value,omitempty"`
}

type node struct {
	leaf      bool
	field     model.Field
	in        map[string]struct{}
	threshold float64
	left      int
	right     int
	value     float64
}

// Tree scores requests by summing the leaves reached in every tree.
type Tree struct {
	name   string
	base   float64
	rate   float64
	levels map[model.Field]map[string]struct{}
	trees  [][]node
}

// LoadTree reads a TreeArtifact from path.
func LoadTree(path string) (*Tree, error) {
	var a TreeArtifact
	if err := decodeArtifact(path, &a); err != nil {
		return nil, err
	}
	return NewTree(a)
}

// NewTree validates the ensemble. Children must follow their parent so
// every walk terminates.
func NewTree(a TreeArtifact) (*Tree, error) {
	if a.LearningRate <= 0 {
		return nil, fmt.Errorf("learning_rate must be positive")
	}
	if len(a.Trees) == 0 {
		return nil, fmt.Errorf("tree artifact has no trees")
	}
	t := &Tree{
		name:   a.Name,
		base:   a.BaseValue,
		rate:   a.LearningRate,
		levels: make(map[model.Field]map[string]struct{}, len(a.Levels)),
	}
	if t.name == "" {
		t.name = "tree"
	}
	levels, err := resolveFields(a.Levels)
	if err != nil {
		return nil, err
	}
	for f, l := range levels {
		t.levels[f] = set(l)
	}
	for ti, spec := range a.Trees {
		nodes, err := compileTree(spec)
		if err != nil {
			return nil, fmt.Errorf("tree %d: %w", ti, err)
		}
		t.trees = append(t.trees, nodes)
	}
	return t, nil
}

func compileTree(spec TreeSpec) ([]node, error) {
	if len(spec.Nodes) == 0 {
		return nil, fmt.Errorf("no nodes")
	}
	nodes := make([]node, len(spec.Nodes))
	for i, s := range spec.Nodes {
		if s.Field == "" {
			nodes[i] = node{leaf: true, value: s.Value}
			continue
		}
		f, ok := model.ParseField(s.Field)
		if !ok {
			return nil, fmt.Errorf("node %d: unknown field %q", i, s.Field)
		}
		for _, c := range []int{s.Left, s.Right} {
			if c <= i || c >= len(spec.Nodes) {
				return nil, fmt.Errorf("node %d: child %d out of order", i, c)
			}
		}
		n := node{field: f, left: s.Left, right: s.Right, threshold: s.Threshold}
		if f != model.FieldVehicleAge {
			n.in = set(s.In)
		}
		nodes[i] = n
	}
	return nodes, nil
}

func set(values []string) map[string]struct{} {
	m := make(map[string]struct{}, len(values))
	for _, v := range values {
		m[v] = struct{}{}
	}
	return m
}

// Predict rejects levels outside the fitted categories then walks each tree.
func (t *Tree) Predict(_ context.Context, req model.PredictionRequest) (float64, error) {
	for _, f := range model.CategoricalFields {
		known, ok := t.levels[f]
		if !ok {
			continue
		}
		if _, ok := known[req.Category(f)]; !ok {
			return 0, &prediction.UnknownCategoryError{Field: f, Value: req.Category(f)}
		}
	}
	sum := 0.0
	for _, nodes := range t.trees {
		sum += walk(nodes, req)
	}
	return t.base + t.rate*sum, nil
}

func walk(nodes []node, req model.PredictionRequest) float64 {
	i := 0
	for {
		n := nodes[i]
		if n.leaf {
			return n.value
		}
		var left bool
		if n.field == model.FieldVehicleAge {
			left = float64(req.VehicleAge) <= n.threshold
		} else {
			_, left = n.in[req.Category(n.field)]
		}
		if left {
			i = n.left
		} else {
			i = n.right
		}
	}
}

// Name returns the artifact name.
func (t *Tree) Name() string { return t.name }
