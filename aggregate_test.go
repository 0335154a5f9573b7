package cardtemplar

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func salesDataset() *Dataset {
	return &Dataset{
		Columns: []string{"amount"},
		Data: []Row{
			PositionalRow(10.0),
			PositionalRow(20.0),
			PositionalRow("bad"),
		},
	}
}

func TestAggregate_SkipsNonNumeric(t *testing.T) {
	ds := salesDataset()

	sum, ok := Aggregate(ds, "amount", AggSum)
	require.True(t, ok)
	assert.Equal(t, 30.0, sum)

	avg, ok := Aggregate(ds, "amount", AggAvg)
	require.True(t, ok)
	assert.Equal(t, 15.0, avg, "нечисловая строка не учитывается в количестве")

	lo, ok := Aggregate(ds, "amount", AggMin)
	require.True(t, ok)
	assert.Equal(t, 10.0, lo)

	hi, ok := Aggregate(ds, 0, AggMax)
	require.True(t, ok)
	assert.Equal(t, 20.0, hi)
}

func TestAggregate_Coercion(t *testing.T) {
	ds := &Dataset{
		Columns: []string{"id", "v"},
		Data: []Row{
			PositionalRow("a", " 2.5 "),
			PositionalRow("b", 3),
			PositionalRow("c", int64(-1)),
			PositionalRow("d", "NaN"),
			PositionalRow("e", "Infinity"),
			PositionalRow("f", nil),
			PositionalRow("g", true),
			PositionalRow("h"), // короткая строка
		},
	}
	sum, ok := Aggregate(ds, "v", AggSum)
	require.True(t, ok)
	assert.Equal(t, 4.5, sum)

	lo, ok := Aggregate(ds, "v", AggMin)
	require.True(t, ok)
	assert.Equal(t, -1.0, lo)
}

func TestAggregate_KeyedRowsExcluded(t *testing.T) {
	ds := &Dataset{
		Columns: []string{"amount"},
		Data: []Row{
			KeyedRow(map[string]any{"amount": 1000.0}),
			PositionalRow(5.0),
		},
	}
	sum, ok := Aggregate(ds, "amount", AggSum)
	require.True(t, ok)
	assert.Equal(t, 5.0, sum)
	assert.Len(t, ds.PositionalRows(), 1)
	assert.Equal(t, 2, Count(ds), "count считает все строки")
}

func TestAggregate_NotFound(t *testing.T) {
	empty := &Dataset{Columns: []string{"amount"}}
	_, ok := Aggregate(empty, "amount", AggSum)
	assert.False(t, ok, "ноль значений — не найдено, а не 0")

	onlyBad := &Dataset{Columns: []string{"amount"}, Data: []Row{PositionalRow("x")}}
	_, ok = Aggregate(onlyBad, "amount", AggAvg)
	assert.False(t, ok)

	_, ok = Aggregate(salesDataset(), "missing", AggSum)
	assert.False(t, ok)

	_, ok = Aggregate(salesDataset(), 7, AggSum)
	assert.False(t, ok, "индекс вне строк не даёт значений")

	_, ok = Aggregate(nil, "amount", AggSum)
	assert.False(t, ok)

	_, ok = Aggregate(salesDataset(), "amount", AggOp("median"))
	assert.False(t, ok)
}

func TestColumnIndex(t *testing.T) {
	ds := &Dataset{Columns: []string{"a", "b"}}

	i, ok := ColumnIndex(ds, "b")
	assert.True(t, ok)
	assert.Equal(t, 1, i)

	i, ok = ColumnIndex(ds, 9)
	assert.True(t, ok, "числовая ссылка без проверки границ")
	assert.Equal(t, 9, i)

	i, ok = ColumnIndex(ds, 1.0)
	assert.True(t, ok)
	assert.Equal(t, 1, i)

	for _, ref := range []any{"z", -1, 1.5, nil, true, "0"} {
		_, ok := ColumnIndex(ds, ref)
		assert.False(t, ok, "ref %v", ref)
	}
}

func TestCount(t *testing.T) {
	assert.Equal(t, 3, Count(salesDataset()))
	assert.Equal(t, 0, Count(nil))
}
