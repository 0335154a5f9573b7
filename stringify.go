package cardtemplar

import (
	"encoding/json"
	"fmt"
	"math"
	"reflect"
	"strconv"
	"strings"
)

// Stringify приводит результат вычисления к тексту для подстановки:
// nil → "", строки как есть, числа и булевы в канонической записи,
// остальное — JSON. NaN и бесконечности внутри коллекций пишутся как null;
// если сериализация всё равно невозможна (цикл) — строковое представление.
func Stringify(v any) string {
	switch vv := v.(type) {
	case nil:
		return ""
	case string:
		return vv
	case bool:
		return strconv.FormatBool(vv)
	case float64:
		return canonicalNumber(vv)
	case json.Number:
		return vv.String()
	}
	rv := reflect.ValueOf(v)
	switch rv.Kind() {
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return strconv.FormatInt(rv.Int(), 10)
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64, reflect.Uintptr:
		return strconv.FormatUint(rv.Uint(), 10)
	case reflect.Float32:
		return canonicalNumber(rv.Float())
	case reflect.Ptr, reflect.Map, reflect.Slice, reflect.Interface:
		if rv.IsNil() {
			return ""
		}
	}
	b, err := json.Marshal(v)
	if err != nil {
		b, err = json.Marshal(nonFiniteToNull(v, 0))
	}
	if err != nil {
		if s, ok := v.(fmt.Stringer); ok {
			return s.String()
		}
		return fmt.Sprintf("[%T]", v)
	}
	return string(b)
}

// canonicalNumber — кратчайшая запись числа: 42, 0.5, 1e+21, 1e-7, NaN, Infinity.
func canonicalNumber(f float64) string {
	switch {
	case math.IsNaN(f):
		return "NaN"
	case math.IsInf(f, 1):
		return "Infinity"
	case math.IsInf(f, -1):
		return "-Infinity"
	case f == 0:
		return "0"
	}
	abs := math.Abs(f)
	if abs >= 1e21 || abs < 1e-6 {
		s := strconv.FormatFloat(f, 'e', -1, 64)
		mant, exp, _ := strings.Cut(s, "e")
		sign := exp[:1]
		exp = strings.TrimLeft(exp[1:], "0")
		return mant + "e" + sign + exp
	}
	return strconv.FormatFloat(f, 'f', -1, 64)
}

// maxJSONDepth ограничивает обход, чтобы циклы не уводили в бесконечную рекурсию.
const maxJSONDepth = 1000

// nonFiniteToNull копирует коллекции, заменяя NaN и ±Inf на nil.
func nonFiniteToNull(v any, depth int) any {
	if depth > maxJSONDepth {
		return v
	}
	switch vv := v.(type) {
	case float64:
		if math.IsNaN(vv) || math.IsInf(vv, 0) {
			return nil
		}
	case float32:
		if f := float64(vv); math.IsNaN(f) || math.IsInf(f, 0) {
			return nil
		}
	case []any:
		out := make([]any, len(vv))
		for i, e := range vv {
			out[i] = nonFiniteToNull(e, depth+1)
		}
		return out
	case map[string]any:
		out := make(map[string]any, len(vv))
		for k, e := range vv {
			out[k] = nonFiniteToNull(e, depth+1)
		}
		return out
	}
	return v
}
