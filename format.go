package cardtemplar

import (
	"strconv"

	"golang.org/x/text/language"
	"golang.org/x/text/message"
	"golang.org/x/text/number"
)

const (
	// maxFixedDigits — предел знаков после запятой для фиксированной записи.
	maxFixedDigits = 100
	// defaultFractionDigits — сколько знаков оставляет группированная запись без явной точности.
	defaultFractionDigits = 3
)

// Formatter форматирует числа с учётом локали.
type Formatter struct {
	printer *message.Printer
}

// NewFormatter создаёт форматтер для указанной локали.
func NewFormatter(tag language.Tag) *Formatter {
	return &Formatter{printer: message.NewPrinter(tag)}
}

var defaultFormatter = NewFormatter(language.AmericanEnglish)

// Number: при digits >= 0 — фиксированная запись без группировки,
// иначе — группированная запись с не более чем тремя знаками дробной части.
func (f *Formatter) Number(v float64, digits int) string {
	if digits >= 0 && digits <= maxFixedDigits {
		return strconv.FormatFloat(v, 'f', digits, 64)
	}
	return f.printer.Sprintf("%v", number.Decimal(v, number.MaxFractionDigits(defaultFractionDigits)))
}

// Percent умножает на 100 и дописывает знак процента.
func (f *Formatter) Percent(v float64, digits int) string {
	if digits < 0 || digits > maxFixedDigits {
		digits = 1
	}
	return strconv.FormatFloat(v*100, 'f', digits, 64) + "%"
}

// Currency: символ валюты и группированная сумма с фиксированной точностью.
func (f *Formatter) Currency(v float64, symbol string, digits int) string {
	if digits < 0 || digits > maxFixedDigits {
		digits = 2
	}
	return symbol + f.printer.Sprintf("%v", number.Decimal(v,
		number.MinFractionDigits(digits),
		number.MaxFractionDigits(digits),
	))
}

// FormatNumber форматирует число в локали en-US; digits < 0 — без фиксированной точности.
func FormatNumber(v float64, digits int) string { return defaultFormatter.Number(v, digits) }

// FormatPercent форматирует долю как процент в локали en-US.
func FormatPercent(v float64, digits int) string { return defaultFormatter.Percent(v, digits) }

// FormatCurrency форматирует денежную сумму в локали en-US.
func FormatCurrency(v float64, symbol string, digits int) string {
	return defaultFormatter.Currency(v, symbol, digits)
}
