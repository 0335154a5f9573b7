package cardtemplar

import (
	"math"
	"reflect"
	"strconv"
	"strings"
)

// AggOp — операция агрегации по колонке.
type AggOp string

const (
	AggSum AggOp = "sum"
	AggAvg AggOp = "avg"
	AggMin AggOp = "min"
	AggMax AggOp = "max"
)

// ColumnIndex сопоставляет ссылку на колонку её позиции.
// Неотрицательное целое возвращается как есть (без проверки границ),
// строка ищется среди ds.Columns.
func ColumnIndex(ds *Dataset, colRef any) (int, bool) {
	if name, ok := colRef.(string); ok {
		if ds == nil {
			return 0, false
		}
		for i, c := range ds.Columns {
			if c == name {
				return i, true
			}
		}
		return 0, false
	}
	n, ok := numericValue(colRef)
	if !ok || n < 0 || n != math.Trunc(n) || n > math.MaxInt32 {
		return 0, false
	}
	return int(n), true
}

// Aggregate считает sum/avg/min/max по колонке. Строки-записи
// не участвуют, нечисловые ячейки пропускаются. Если не собрано
// ни одного значения, результат — «не найдено», а не ноль.
func Aggregate(ds *Dataset, colRef any, op AggOp) (float64, bool) {
	idx, ok := ColumnIndex(ds, colRef)
	if !ok {
		return 0, false
	}
	var (
		sum, lo, hi float64
		n           int
	)
	for _, row := range ds.PositionalRows() {
		if idx >= len(row) {
			continue
		}
		v, ok := coerceNumber(row[idx])
		if !ok {
			continue
		}
		if n == 0 || v < lo {
			lo = v
		}
		if n == 0 || v > hi {
			hi = v
		}
		sum += v
		n++
	}
	if n == 0 {
		return 0, false
	}
	switch op {
	case AggSum:
		return sum, true
	case AggAvg:
		return sum / float64(n), true
	case AggMin:
		return lo, true
	case AggMax:
		return hi, true
	}
	return 0, false
}

// Count — число строк набора данных, 0 для отсутствующего.
func Count(ds *Dataset) int {
	if ds == nil {
		return 0
	}
	return len(ds.Data)
}

// numericValue принимает только числовые типы Go.
func numericValue(v any) (float64, bool) {
	switch vv := v.(type) {
	case float64:
		return vv, true
	case int:
		return float64(vv), true
	case nil, string, bool:
		return 0, false
	}
	rv := reflect.ValueOf(v)
	switch rv.Kind() {
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return float64(rv.Int()), true
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64, reflect.Uintptr:
		return float64(rv.Uint()), true
	case reflect.Float32, reflect.Float64:
		return rv.Float(), true
	}
	return 0, false
}

// coerceNumber: числа проходят как есть, строки разбираются;
// NaN и бесконечности отвергаются.
func coerceNumber(v any) (float64, bool) {
	if s, ok := v.(string); ok {
		s = strings.TrimSpace(s)
		if s == "" {
			return 0, true
		}
		n, err := strconv.ParseFloat(s, 64)
		if err != nil || math.IsNaN(n) || math.IsInf(n, 0) {
			return 0, false
		}
		return n, true
	}
	n, ok := numericValue(v)
	if !ok || math.IsNaN(n) || math.IsInf(n, 0) {
		return 0, false
	}
	return n, true
}
