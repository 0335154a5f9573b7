package cardtemplar

import (
	"regexp"
	"strconv"
	"strings"
)

var rxNumeral = regexp.MustCompile(`^-?\d+(?:\.\d+)?$`)

// SplitArgs делит список аргументов по запятым верхнего уровня.
// Запятые внутри одинарных/двойных кавычек не разделяют аргументы;
// обратный слеш копирует себя и следующий символ как есть, снимая
// с него роль кавычки или разделителя. Пустые аргументы отбрасываются.
func SplitArgs(s string) []string {
	var args []string
	var b strings.Builder
	flush := func() {
		if t := strings.TrimSpace(b.String()); t != "" {
			args = append(args, t)
		}
		b.Reset()
	}
	quote := byte(0)
	for i := 0; i < len(s); i++ {
		ch := s[i]
		if ch == '\\' && i+1 < len(s) {
			b.WriteByte(ch)
			b.WriteByte(s[i+1])
			i++
			continue
		}
		if quote != 0 {
			// Внутри кавычек: копируем до закрытия
			b.WriteByte(ch)
			if ch == quote {
				quote = 0
			}
			continue
		}
		switch ch {
		case '\'', '"':
			quote = ch
			b.WriteByte(ch)
		case ',':
			flush()
		default:
			b.WriteByte(ch)
		}
	}
	flush()
	return args
}

// quotedLiteral распознаёт строку, целиком обёрнутую в парные кавычки,
// и снимает экранирование (\\ → \, \<кавычка> → <кавычка>).
// Неэкранированная кавычка того же вида внутри — это уже не один литерал.
func quotedLiteral(raw string) (string, bool) {
	if len(raw) < 2 {
		return "", false
	}
	q := raw[0]
	if (q != '\'' && q != '"') || raw[len(raw)-1] != q {
		return "", false
	}
	inner := raw[1 : len(raw)-1]
	var b strings.Builder
	for i := 0; i < len(inner); i++ {
		ch := inner[i]
		if ch == '\\' {
			if i+1 >= len(inner) {
				// слеш экранирует закрывающую кавычку
				return "", false
			}
			next := inner[i+1]
			if next == '\\' || next == q {
				b.WriteByte(next)
			} else {
				b.WriteByte(ch)
				b.WriteByte(next)
			}
			i++
			continue
		}
		if ch == q {
			return "", false
		}
		b.WriteByte(ch)
	}
	return b.String(), true
}

// keywordLiteral — true, false, null.
func keywordLiteral(raw string) (any, bool) {
	switch raw {
	case "true":
		return true, true
	case "false":
		return false, true
	case "null":
		return nil, true
	}
	return nil, false
}

// isArgumentForm сообщает, укладывается ли аргумент в разрешённую грамматику:
// литерал (строка, число, ключевое слово) либо путь.
func isArgumentForm(raw string) bool {
	raw = strings.TrimSpace(raw)
	if _, ok := quotedLiteral(raw); ok {
		return true
	}
	if rxNumeral.MatchString(raw) {
		return true
	}
	if _, ok := keywordLiteral(raw); ok {
		return true
	}
	return isPathForm(raw)
}

// ParseLiteralOrPath превращает сырой аргумент в значение: строковый,
// числовой или ключевой литерал, иначе путь относительно {datasets, props}.
// Ненайденный путь даёт nil.
func ParseLiteralOrPath(raw string, ctx *Context) any {
	v, _ := parseArgument(raw, ctx.Root())
	return v
}

func parseArgument(raw string, root any) (any, bool) {
	raw = strings.TrimSpace(raw)
	if s, ok := quotedLiteral(raw); ok {
		return s, true
	}
	if rxNumeral.MatchString(raw) {
		n, err := strconv.ParseFloat(raw, 64)
		if err != nil {
			return nil, false
		}
		return n, true
	}
	if v, ok := keywordLiteral(raw); ok {
		return v, true
	}
	return ResolvePath(root, raw)
}
