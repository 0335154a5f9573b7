package cardtemplar

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func salesContext() *Context {
	return NewContext(
		map[string]*Dataset{
			"sales": salesDataset(),
			"regions": {
				Columns: []string{"region", "revenue"},
				Data: []Row{
					PositionalRow("north", "1200"),
					PositionalRow("south", 800.0),
					KeyedRow(map[string]any{"region": "west", "revenue": 5000.0}),
				},
			},
		},
		map[string]any{"col": "revenue", "ds": "regions", "target": 0.25},
	)
}

func TestCallAllowlisted(t *testing.T) {
	ctx := salesContext()

	v, ok := CallAllowlisted("sum", []string{"'sales'", "'amount'"}, ctx)
	require.True(t, ok)
	assert.Equal(t, 30.0, v)

	v, ok = CallAllowlisted("avg", []string{"'sales'", "'amount'"}, ctx)
	require.True(t, ok)
	assert.Equal(t, 15.0, v)

	// аргументы-пути
	v, ok = CallAllowlisted("max", []string{"props.ds", "props.col"}, ctx)
	require.True(t, ok)
	assert.Equal(t, 1200.0, v)

	// набор данных по пути и колонка по индексу
	v, ok = CallAllowlisted("min", []string{"datasets.regions", "1"}, ctx)
	require.True(t, ok)
	assert.Equal(t, 800.0, v)

	v, ok = CallAllowlisted("count", []string{"'regions'"}, ctx)
	require.True(t, ok)
	assert.Equal(t, 3.0, v)

	v, ok = CallAllowlisted("count", []string{"'absent'"}, ctx)
	require.True(t, ok)
	assert.Equal(t, 0.0, v, "отсутствующий набор — ноль строк")

	v, ok = CallAllowlisted("formatPercent", []string{"props.target"}, ctx)
	require.True(t, ok)
	assert.Equal(t, "25.0%", v)

	_, ok = CallAllowlisted("sum", []string{"'absent'", "'amount'"}, ctx)
	assert.False(t, ok)

	_, ok = CallAllowlisted("eval", []string{"'1'"}, ctx)
	assert.False(t, ok, "неизвестная функция — не найдено")
}

func TestEvalAllowlisted(t *testing.T) {
	ctx := salesContext()

	v, ok, err := EvalAllowlisted("sum('sales','amount')", ctx)
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, 30.0, v)

	v, ok, err = EvalAllowlisted(" datasets.sales.data[1][0] ", ctx)
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, 20.0, v)

	v, ok, err = EvalAllowlisted("'literal'", ctx)
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, "literal", v)

	_, ok, err = EvalAllowlisted("unknownFn(1)", ctx)
	require.NoError(t, err)
	assert.False(t, ok)

	// граница грамматики: вложенные вызовы и арифметика
	for _, code := range []string{
		"formatCurrency(sum('sales','amount'))",
		"sum('sales','amount') + 1",
		"props.target * 100",
		"props.ds == 'regions' ? 1 : 0",
	} {
		_, _, err := EvalAllowlisted(code, ctx)
		assert.ErrorIs(t, err, ErrOutsideAllowlist, code)
	}
}

func TestAllowlistedFunctions(t *testing.T) {
	assert.Equal(t, []string{
		"avg", "count", "formatCurrency", "formatNumber", "formatPercent", "max", "min", "sum",
	}, AllowlistedFunctions())
}
