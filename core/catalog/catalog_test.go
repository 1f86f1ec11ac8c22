package catalog

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kilianp07/evrange/core/dataset"
	"github.com/kilianp07/evrange/core/model"
)

var rawRows = [][]string{
	{"TESLA", "MODEL 3", "BEV", "Eligible", "3", "PUGET SOUND ENERGY INC", "220"},
	{"NISSAN", "LEAF", "BEV", "Eligible", "8", "CITY OF SEATTLE", "84"},
	{"TESLA", "MODEL Y", "BEV", "Eligible", "2", "", "291"},
	{"BMW", "X5", "PHEV", "Not eligible", "5", "NaN", "30"},
	{"", "MODEL 3", "BEV", "Eligible", "1", "CITY OF SEATTLE", "220"},
	{" KIA ", "NIRO ", "BEV", "Eligible", "4", "PACIFICORP", "239"},
}

var header = []string{"Make", "Model", "EV_Type", "CAFV_Eligibility", "Vehicle_Age", "Electric_Utility", "Electric_Range"}

func sampleTable(t *testing.T) *dataset.Table {
	t.Helper()
	tbl, err := dataset.NewTable(header, rawRows)
	require.NoError(t, err)
	return tbl
}

func TestBuild_SortedDistinct(t *testing.T) {
	c, err := Build(sampleTable(t))
	require.NoError(t, err)
	assert.Equal(t, []string{" KIA ", "BMW", "NISSAN", "TESLA"}, c.Options(model.FieldMake))
	assert.Equal(t, []string{"LEAF", "MODEL 3", "MODEL Y", "NIRO ", "X5"}, c.Options(model.FieldModel))
	assert.Equal(t, []string{"BEV", "PHEV"}, c.Options(model.FieldEVType))
	assert.Equal(t, []string{"Eligible", "Not eligible"}, c.Options(model.FieldCAFVEligibility))
	assert.Equal(t, []string{"CITY OF SEATTLE", "PACIFICORP", "PUGET SOUND ENERGY INC"}, c.Options(model.FieldElectricUtility))
}

func TestBuild_OptionsDrawnFromDataset(t *testing.T) {
	c, err := Build(sampleTable(t))
	require.NoError(t, err)
	for _, f := range c.Fields() {
		i := indexOf(header, string(f))
		require.GreaterOrEqual(t, i, 0, "field %s", f)
		var raw []string
		for _, r := range rawRows {
			raw = append(raw, r[i])
		}
		for _, opt := range c.Options(f) {
			assert.Contains(t, raw, opt, "field %s", f)
		}
	}
}

func indexOf(cols []string, name string) int {
	for i, c := range cols {
		if c == name {
			return i
		}
	}
	return -1
}

func TestBuild_Defaults(t *testing.T) {
	c, err := Build(sampleTable(t))
	require.NoError(t, err)
	req := c.DefaultRequest()
	assert.Equal(t, " KIA ", req.Make)
	assert.Equal(t, "LEAF", req.Model)
	assert.Equal(t, model.DefaultVehicleAge, req.VehicleAge)
	assert.True(t, c.Contains(model.FieldMake, "TESLA"))
	assert.False(t, c.Contains(model.FieldMake, "FORD"))
	assert.Equal(t, 4, c.Sizes()[model.FieldMake])
}

func TestBuild_OptionsAreCopies(t *testing.T) {
	c, err := Build(sampleTable(t))
	require.NoError(t, err)
	opts := c.Options(model.FieldMake)
	opts[0] = "MUTATED"
	assert.Equal(t, " KIA ", c.Options(model.FieldMake)[0])

	all := c.All()
	all[model.FieldEVType][0] = "MUTATED"
	assert.Equal(t, []string{"BEV", "PHEV"}, c.Options(model.FieldEVType))
	assert.Len(t, all, len(model.CategoricalFields))
}

func TestBuild_Errors(t *testing.T) {
	empty, err := dataset.NewTable(header, nil)
	require.NoError(t, err)
	_, err = Build(empty)
	assert.True(t, errors.Is(err, ErrEmptyDataset))

	_, err = Build(nil)
	assert.True(t, errors.Is(err, ErrEmptyDataset))

	noUtility, err := dataset.NewTable([]string{"Make", "Model", "EV_Type", "CAFV_Eligibility"}, [][]string{{"A", "B", "BEV", "Eligible"}})
	require.NoError(t, err)
	_, err = Build(noUtility)
	assert.ErrorContains(t, err, "Electric_Utility")

	allMissing, err := dataset.NewTable(header, [][]string{{"TESLA", "MODEL 3", "BEV", "Eligible", "3", "", "1"}})
	require.NoError(t, err)
	_, err = Build(allMissing)
	assert.ErrorContains(t, err, "no values")
}
