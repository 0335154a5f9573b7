package cardtemplar

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"golang.org/x/text/language"
)

func TestFormatCurrency(t *testing.T) {
	assert.Equal(t, "$1,234.50", FormatCurrency(1234.5, "$", 2))
	assert.Equal(t, "€1,234,567", FormatCurrency(1234567, "€", 0))
	assert.Equal(t, "$0.50", FormatCurrency(0.5, "$", -1), "неверная точность — два знака")
}

func TestFormatNumber(t *testing.T) {
	assert.Equal(t, "3.14", FormatNumber(3.14159, 2))
	assert.Equal(t, "1234.50", FormatNumber(1234.5, 2), "фиксированная запись без группировки")
	assert.Equal(t, "1,234.568", FormatNumber(1234.5678, -1))
	assert.Equal(t, "1,000,000", FormatNumber(1e6, -1))
}

func TestFormatPercent(t *testing.T) {
	assert.Equal(t, "25.6%", FormatPercent(0.256, 1))
	assert.Equal(t, "50%", FormatPercent(0.5, 0))
	assert.Equal(t, "12.5%", FormatPercent(0.125, -1), "по умолчанию один знак")
}

func TestFormatterLocale(t *testing.T) {
	de := NewFormatter(language.German)
	assert.Equal(t, "€1.234,50", de.Currency(1234.5, "€", 2))
}

func TestFormatHelpers_Args(t *testing.T) {
	env := newCallEnv(nil, nil)

	v, ok := fnFormatNumber(env, []any{"1234.5"})
	assert.True(t, ok)
	assert.Equal(t, "1,234.5", v)

	v, ok = fnFormatNumber(env, []any{2.0 / 3.0, 2.0})
	assert.True(t, ok)
	assert.Equal(t, "0.67", v)

	_, ok = fnFormatNumber(env, []any{"abc"})
	assert.False(t, ok)
	_, ok = fnFormatNumber(env, nil)
	assert.False(t, ok)

	v, ok = fnFormatPercent(env, []any{0.1234})
	assert.True(t, ok)
	assert.Equal(t, "12.3%", v)

	v, ok = fnFormatCurrency(env, []any{1234.5})
	assert.True(t, ok)
	assert.Equal(t, "$1,234.50", v)

	v, ok = fnFormatCurrency(env, []any{99, "£", 0})
	assert.True(t, ok)
	assert.Equal(t, "£99", v)

	_, ok = fnFormatCurrency(env, []any{nil})
	assert.False(t, ok)
}
