package scoring

import (
	"errors"
	"sort"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/MikeSquared-Agency/quarterpay/internal/config"
)

func TestDefaultCatalogKeys(t *testing.T) {
	c := DefaultCatalog()
	keys := c.Keys()
	assert.Len(t, keys, 5)
	assert.True(t, sort.StringsAreSorted(keys))
	assert.ElementsMatch(t, []string{"新疆", "山东", "青海", "湖北", "华中区域"}, keys)
}

func TestCatalogAliasResolution(t *testing.T) {
	c := DefaultCatalog()
	tests := []struct {
		key  string
		want string
	}{
		{"hubei", "湖北"},
		{"HUBEI", "湖北"},
		{" central-china ", "华中区域"},
		{"华中", "华中区域"},
		{"湖北", "湖北"},
		{"unknown", "unknown"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, c.Canonical(tt.key), "Canonical(%q)", tt.key)
	}

	for alias, target := range c.Aliases() {
		byAlias, err := c.Lookup(alias)
		require.NoError(t, err)
		byName, err := c.Lookup(target)
		require.NoError(t, err)
		assert.Equal(t, byName, byAlias, "alias %s", alias)
	}
}

func TestCatalogLookupReturnsCopy(t *testing.T) {
	c := DefaultCatalog()
	w, err := c.Lookup("青海")
	require.NoError(t, err)
	w[Performance] = 99

	again, err := c.Lookup("青海")
	require.NoError(t, err)
	assert.Equal(t, 0.45, again[Performance])
}

func TestCatalogKeysReturnsCopy(t *testing.T) {
	c := DefaultCatalog()
	keys := c.Keys()
	keys[0] = "mutated"
	assert.NotContains(t, c.Keys(), "mutated")
}

func TestCatalogLookupUnknown(t *testing.T) {
	c := DefaultCatalog()
	_, err := c.Lookup("Nowhere")
	var cnf *ConfigNotFoundError
	require.True(t, errors.As(err, &cnf))
	assert.Equal(t, c.Keys(), cnf.Known)
	assert.Contains(t, err.Error(), `"Nowhere"`)
}

func TestCatalogResolve(t *testing.T) {
	c := DefaultCatalog()

	t.Run("explicit", func(t *testing.T) {
		w, project, err := c.Resolve(ExplicitWeights(map[string]float64{"Margin": 0.4, "客情成本": 0.6}))
		require.NoError(t, err)
		assert.Empty(t, project)
		assert.Equal(t, WeightSet{Margin: 0.4, CustomerCost: 0.6}, w)
	})

	t.Run("project alias", func(t *testing.T) {
		w, project, err := c.Resolve(ProjectKey("xinjiang"))
		require.NoError(t, err)
		assert.Equal(t, "新疆", project)
		assert.Equal(t, 0.325, w[Margin])
	})

	t.Run("none", func(t *testing.T) {
		_, _, err := c.Resolve(WeightSource{})
		assert.ErrorIs(t, err, ErrConfigNotFound)
	})
}

func TestSourceFromPrecedence(t *testing.T) {
	assert.True(t, SourceFrom(map[string]float64{"margin": 1}, "湖北").IsExplicit())
	assert.False(t, SourceFrom(map[string]float64{}, "湖北").IsExplicit())
	assert.Equal(t, "湖北", SourceFrom(nil, "湖北").Project())
	assert.Equal(t, WeightSource{}, SourceFrom(nil, ""))
}

func TestNewCatalogValidation(t *testing.T) {
	ok := WeightSet{Performance: 1}

	_, err := NewCatalog(map[string]WeightSet{"a": ok}, map[string]string{"b": "missing"})
	assert.Error(t, err, "dangling alias")

	_, err = NewCatalog(map[string]WeightSet{"a": {Margin: -0.1}}, nil)
	assert.Error(t, err, "negative weight")

	_, err = NewCatalog(map[string]WeightSet{"a": ok, "b": ok}, map[string]string{"b": "a"})
	assert.Error(t, err, "alias shadowing a project")

	_, err = NewCatalog(map[string]WeightSet{" ": ok}, nil)
	assert.Error(t, err, "blank project")
}

func TestCatalogFromConfigRejectsUnknownMetric(t *testing.T) {
	_, err := CatalogFromConfig(config.CatalogConfig{
		Projects: map[string]map[string]float64{"a": {"performance": 0.5, "charisma": 0.5}},
	})
	assert.ErrorContains(t, err, "charisma")
}

func TestWeightSetSumNotNormalized(t *testing.T) {
	w := WeightSet{Performance: 0.5, Margin: 0.7, Metric("extra"): 3}
	assert.InDelta(t, 1.2, w.Sum(), 1e-12)
}

func TestParseMetric(t *testing.T) {
	for _, m := range Metrics {
		got, ok := ParseMetric(string(m))
		assert.True(t, ok)
		assert.Equal(t, m, got)
		got, ok = ParseMetric(m.Label())
		assert.True(t, ok)
		assert.Equal(t, m, got)
	}
	_, ok := ParseMetric("charisma")
	assert.False(t, ok)
	assert.True(t, Settlement.DayBased())
	assert.False(t, Margin.DayBased())
}
