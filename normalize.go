package cardtemplar

import (
	"fmt"
	"regexp"
	"strings"
	"time"
)

// sanitizeJSONBlock извлекает JSON, обёрнутый в тройные кавычки ``` ... ```.
// Если таких кавычек нет, либо структура неверная, возвращает исходную строку.
var fenceRx = regexp.MustCompile("(?s)```[a-zA-Z]*\\n(.*?)```")

func sanitizeJSONBlock(s string) string {
	if !strings.Contains(s, "```") {
		return s
	}
	m := fenceRx.FindStringSubmatch(s)
	if len(m) >= 2 {
		return strings.TrimSpace(m[1])
	}
	return s
}

// normalizeValue приводит значения, декодированные из YAML, к форме JSON:
// - целые и беззнаковые числа становятся float64
// - map[interface{}]interface{} становится map[string]interface{}
// - даты становятся строками RFC 3339
// Шаблоны и агрегаторы после этого видят одни и те же типы независимо от формата.
func normalizeValue(v interface{}) interface{} {
	switch vv := v.(type) {
	case []interface{}:
		for i := range vv {
			vv[i] = normalizeValue(vv[i])
		}
		return vv
	case map[string]interface{}:
		for k, val := range vv {
			vv[k] = normalizeValue(val)
		}
		return vv
	case map[interface{}]interface{}:
		out := make(map[string]interface{}, len(vv))
		for k, val := range vv {
			out[fmt.Sprint(k)] = normalizeValue(val)
		}
		return out
	case int:
		return float64(vv)
	case int64:
		return float64(vv)
	case uint64:
		return float64(vv)
	case float32:
		return float64(vv)
	case time.Time:
		return vv.Format(time.RFC3339)
	default:
		return vv
	}
}
