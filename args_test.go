package cardtemplar

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSplitArgs(t *testing.T) {
	cases := []struct {
		in   string
		want []string
	}{
		{"'a,b', 2", []string{"'a,b'", "2"}},
		{`"x, y" , 'z'`, []string{`"x, y"`, "'z'"}},
		// висячая запятая
		{"a, b,", []string{"a", "b"}},
		// пустые аргументы отбрасываются
		{" , ,a", []string{"a"}},
		{`'it\'s, ok', 1`, []string{`'it\'s, ok'`, "1"}},
		// экранированная запятая
		{`a\,b, c`, []string{`a\,b`, "c"}},
		// чужая кавычка не закрывает строку
		{`"a'b", c`, []string{`"a'b"`, "c"}},
		{"", nil},
		// вложенных вызовов нет
		{"sum('s', 'a'), 2", []string{"sum('s'", "'a')", "2"}},
	}
	for _, c := range cases {
		assert.Equal(t, c.want, SplitArgs(c.in), "SplitArgs(%q)", c.in)
	}
}

func TestParseLiteralOrPath(t *testing.T) {
	ctx := NewContext(
		map[string]*Dataset{"sales": {Columns: []string{"amount"}, Data: []Row{PositionalRow(10.0)}}},
		map[string]any{"name": "Ann", "nested": map[string]any{"n": 3.0}},
	)
	cases := []struct {
		raw  string
		want any
	}{
		{"'hello'", "hello"},
		{`"hello"`, "hello"},
		{`'it\'s'`, "it's"},
		{`'back\\slash'`, `back\slash`},
		{`'keep\n'`, `keep\n`},
		{"42", 42.0},
		{"-3.5", -3.5},
		{"true", true},
		{"false", false},
		{"null", nil},
		{"props.name", "Ann"},
		{" props.nested.n ", 3.0},
		{"datasets.sales.data[0][0]", 10.0},
		{"datasets.sales.columns[0]", "amount"},
		{"props.missing", nil},
		// арифметики нет
		{"1 + 2", nil},
		// это не один литерал
		{"'a' + 'b'", nil},
		// вложенных вызовов нет
		{"count('sales')", nil},
		// ключи в кавычках не поддерживаются
		{"props['name']", nil},
	}
	for _, c := range cases {
		assert.Equal(t, c.want, ParseLiteralOrPath(c.raw, ctx), "ParseLiteralOrPath(%q)", c.raw)
	}
}

func TestIsArgumentForm(t *testing.T) {
	for _, raw := range []string{"'x'", "1", "1.25", "null", "props.a[0]"} {
		assert.True(t, isArgumentForm(raw), raw)
	}
	for _, raw := range []string{"sum('a'", "'a')", "1e3", "a + b", "'unterminated", "x ? y : z"} {
		assert.False(t, isArgumentForm(raw), raw)
	}
}
