package cardtemplar

import (
	"reflect"
	"strconv"
	"strings"
	"unicode/utf8"
)

// forbiddenKeys — ключи, через которые разрешение пути не проходит никогда,
// в какой бы позиции цепочки они ни стояли.
var forbiddenKeys = map[string]struct{}{
	"__proto__":   {},
	"prototype":   {},
	"constructor": {},
}

func isForbiddenKey(name string) bool {
	_, ok := forbiddenKeys[name]
	return ok
}

// pathToken — один сегмент пути: имя свойства либо неотрицательный индекс.
type pathToken struct {
	name    string
	index   int
	isIndex bool
}

func isIdentStart(c byte) bool {
	return (c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z') || c == '_' || c == '$'
}

func isIdentPart(c byte) bool {
	return isIdentStart(c) || (c >= '0' && c <= '9')
}

func allDigits(s string) bool {
	if s == "" {
		return false
	}
	for i := 0; i < len(s); i++ {
		if s[i] < '0' || s[i] > '9' {
			return false
		}
	}
	return true
}

// состояния токенизатора пути
const (
	segStart    = iota // начало: имя или [индекс]
	segAfterDot        // после точки допустимо только имя
	segAfterSeg        // после сегмента: '.', '[' или конец
)

// tokenizePath разбирает путь вида a.b[0].c; ведущая точка необязательна.
// Возвращает false на любой синтаксической ошибке: пустой путь, незакрытая
// скобка, нецифровое содержимое скобок, двойная или висячая точка.
func tokenizePath(path string) ([]pathToken, bool) {
	path = strings.TrimSpace(path)
	if path == "" {
		return nil, false
	}
	var toks []pathToken
	state := segStart
	i := 0
	if path[0] == '.' {
		state = segAfterDot
		i = 1
	}
	for i < len(path) {
		c := path[i]
		switch {
		case c == '.' && state == segAfterSeg:
			state = segAfterDot
			i++
		case c == '[' && state != segAfterDot:
			end := strings.IndexByte(path[i:], ']')
			if end < 0 {
				return nil, false
			}
			digits := path[i+1 : i+end]
			if !allDigits(digits) {
				return nil, false
			}
			n, err := strconv.Atoi(digits)
			if err != nil {
				return nil, false
			}
			toks = append(toks, pathToken{index: n, isIndex: true})
			state = segAfterSeg
			i += end + 1
		case isIdentStart(c) && state != segAfterSeg:
			j := i + 1
			for j < len(path) && isIdentPart(path[j]) {
				j++
			}
			toks = append(toks, pathToken{name: path[i:j]})
			state = segAfterSeg
			i = j
		default:
			return nil, false
		}
	}
	if state != segAfterSeg {
		return nil, false
	}
	return toks, true
}

// isPathForm сообщает, является ли строка синтаксически корректным путём.
func isPathForm(s string) bool {
	_, ok := tokenizePath(s)
	return ok
}

// ResolvePath разрешает путь относительно root. Второе значение false
// означает «не найдено»: синтаксическая ошибка, запрещённый ключ,
// отсутствующее свойство, индекс вне диапазона или индекс у не-массива.
func ResolvePath(root any, path string) (any, bool) {
	toks, ok := tokenizePath(path)
	if !ok {
		return nil, false
	}
	for _, tk := range toks {
		if !tk.isIndex && isForbiddenKey(tk.name) {
			return nil, false
		}
	}
	return walkTokens(root, toks)
}

func walkTokens(cur any, toks []pathToken) (any, bool) {
	for _, tk := range toks {
		if isNil(cur) {
			return nil, false
		}
		var ok bool
		if tk.isIndex {
			cur, ok = indexValue(cur, tk.index)
		} else {
			cur, ok = propertyValue(cur, tk.name)
		}
		if !ok {
			return nil, false
		}
	}
	return cur, true
}

func isNil(v any) bool {
	if v == nil {
		return true
	}
	rv := reflect.ValueOf(v)
	switch rv.Kind() {
	case reflect.Ptr, reflect.Map, reflect.Slice, reflect.Interface:
		return rv.IsNil()
	}
	return false
}

// indexValue — числовой сегмент; применим только к массивоподобным значениям.
func indexValue(cur any, i int) (any, bool) {
	if arr, ok := cur.([]any); ok {
		if i >= len(arr) {
			return nil, false
		}
		return arr[i], true
	}
	rv := reflect.Indirect(reflect.ValueOf(cur))
	switch rv.Kind() {
	case reflect.Slice, reflect.Array:
		if i >= rv.Len() {
			return nil, false
		}
		return rv.Index(i).Interface(), true
	}
	return nil, false
}

// propertyValue — обобщённое чтение свойства, включая length у массивов и строк.
func propertyValue(cur any, name string) (any, bool) {
	switch vv := cur.(type) {
	case map[string]any:
		v, ok := vv[name]
		return v, ok
	case []any:
		if name == "length" {
			return float64(len(vv)), true
		}
		return nil, false
	case string:
		if name == "length" {
			return float64(utf8.RuneCountInString(vv)), true
		}
		return nil, false
	}

	rv := reflect.ValueOf(cur)
	for rv.Kind() == reflect.Ptr || rv.Kind() == reflect.Interface {
		if rv.IsNil() {
			return nil, false
		}
		rv = rv.Elem()
	}
	switch rv.Kind() {
	case reflect.Map:
		if rv.Type().Key().Kind() != reflect.String {
			return nil, false
		}
		mv := rv.MapIndex(reflect.ValueOf(name).Convert(rv.Type().Key()))
		if !mv.IsValid() {
			return nil, false
		}
		return mv.Interface(), true
	case reflect.Slice, reflect.Array, reflect.String:
		if name == "length" {
			return float64(rv.Len()), true
		}
	case reflect.Struct:
		return structField(rv, name)
	}
	return nil, false
}

// structField ищет экспортируемое поле по json-тегу, затем по имени.
func structField(rv reflect.Value, name string) (any, bool) {
	rt := rv.Type()
	for i := 0; i < rt.NumField(); i++ {
		f := rt.Field(i)
		if !f.IsExported() {
			continue
		}
		tag, _, _ := strings.Cut(f.Tag.Get("json"), ",")
		if tag == name || (tag == "" && f.Name == name) {
			return rv.Field(i).Interface(), true
		}
	}
	return nil, false
}
