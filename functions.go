package cardtemplar

import (
	"errors"
	"fmt"
	"math"
	"regexp"
	"sort"
	"strings"
)

// ErrOutsideAllowlist — код не укладывается в разрешённую грамматику
// `путь | литерал | функция(аргумент, ...)`.
var ErrOutsideAllowlist = errors.New("выражение вне разрешённой грамматики")

var rxCall = regexp.MustCompile(`^([A-Za-z_$][A-Za-z0-9_$]*)\s*\(([\s\S]*)\)$`)

// callEnv — окружение одного прохода рендера: контекст, его корневое
// значение (строится один раз) и форматтер локали.
type callEnv struct {
	ctx  *Context
	root map[string]any
	fmt  *Formatter
}

func newCallEnv(ctx *Context, f *Formatter) *callEnv {
	if f == nil {
		f = defaultFormatter
	}
	return &callEnv{ctx: ctx, root: ctx.Root(), fmt: f}
}

// dataset принимает идентификатор набора, *Dataset или обобщённое
// значение {columns, data}.
func (e *callEnv) dataset(ref any) (*Dataset, bool) {
	if id, ok := ref.(string); ok {
		return e.ctx.Dataset(id)
	}
	return DatasetFromValue(ref)
}

// nativeFunc получает уже вычисленные аргументы; false — «не найдено».
type nativeFunc func(env *callEnv, args []any) (any, bool)

// allowlist строится один раз и больше не изменяется.
var allowlist = map[string]nativeFunc{
	"sum":            aggregateFunc(AggSum),
	"avg":            aggregateFunc(AggAvg),
	"min":            aggregateFunc(AggMin),
	"max":            aggregateFunc(AggMax),
	"count":          fnCount,
	"formatNumber":   fnFormatNumber,
	"formatPercent":  fnFormatPercent,
	"formatCurrency": fnFormatCurrency,
}

// AllowlistedFunctions возвращает отсортированные имена разрешённых функций.
func AllowlistedFunctions() []string {
	names := make([]string, 0, len(allowlist))
	for name := range allowlist {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

func arg(args []any, i int) any {
	if i < len(args) {
		return args[i]
	}
	return nil
}

func aggregateFunc(op AggOp) nativeFunc {
	return func(env *callEnv, args []any) (any, bool) {
		ds, ok := env.dataset(arg(args, 0))
		if !ok {
			return nil, false
		}
		v, ok := Aggregate(ds, arg(args, 1), op)
		if !ok {
			return nil, false
		}
		return v, true
	}
}

func fnCount(env *callEnv, args []any) (any, bool) {
	ds, _ := env.dataset(arg(args, 0))
	return float64(Count(ds)), true
}

// digitsArg — неотрицательное целое, иначе def.
func digitsArg(v any, def int) int {
	n, ok := numericValue(v)
	if !ok || n < 0 || n != math.Trunc(n) || n > maxFixedDigits {
		return def
	}
	return int(n)
}

func fnFormatNumber(env *callEnv, args []any) (any, bool) {
	v, ok := coerceNumber(arg(args, 0))
	if !ok {
		return nil, false
	}
	return env.fmt.Number(v, digitsArg(arg(args, 1), -1)), true
}

func fnFormatPercent(env *callEnv, args []any) (any, bool) {
	v, ok := coerceNumber(arg(args, 0))
	if !ok {
		return nil, false
	}
	return env.fmt.Percent(v, digitsArg(arg(args, 1), 1)), true
}

func fnFormatCurrency(env *callEnv, args []any) (any, bool) {
	v, ok := coerceNumber(arg(args, 0))
	if !ok {
		return nil, false
	}
	symbol := "$"
	if s := arg(args, 1); s != nil {
		symbol = Stringify(s)
	}
	return env.fmt.Currency(v, symbol, digitsArg(arg(args, 2), 2)), true
}

// CallAllowlisted вызывает разрешённую функцию со строковыми аргументами:
// каждый аргумент разбирается как литерал или путь. Неизвестное имя — «не найдено».
func CallAllowlisted(name string, rawArgs []string, ctx *Context) (any, bool) {
	return callAllowlisted(newCallEnv(ctx, nil), name, rawArgs)
}

func callAllowlisted(env *callEnv, name string, rawArgs []string) (any, bool) {
	fn, ok := allowlist[name]
	if !ok {
		return nil, false
	}
	args := make([]any, len(rawArgs))
	for i, raw := range rawArgs {
		args[i], _ = parseArgument(raw, env.root)
	}
	return fn(env, args)
}

// allowlistedCode — код плейсхолдера в разрешённой грамматике:
// вызов функции (name != "") либо одиночный литерал/путь.
type allowlistedCode struct {
	name string
	args []string
	atom string
}

// parseAllowlisted разбирает код. При ErrOutsideAllowlist вместе с ошибкой
// может вернуться вызов, часть аргументов которого вне грамматики: в строгом
// режиме такие аргументы просто не найдутся.
func parseAllowlisted(code string) (*allowlistedCode, error) {
	code = strings.TrimSpace(code)
	if m := rxCall.FindStringSubmatch(code); m != nil {
		c := &allowlistedCode{name: m[1], args: SplitArgs(m[2])}
		for _, a := range c.args {
			if !isArgumentForm(a) {
				return c, fmt.Errorf("%w: аргумент %q функции %s", ErrOutsideAllowlist, a, c.name)
			}
		}
		return c, nil
	}
	if isArgumentForm(code) {
		return &allowlistedCode{atom: code}, nil
	}
	return nil, fmt.Errorf("%w: %q", ErrOutsideAllowlist, code)
}

func (c *allowlistedCode) eval(env *callEnv) (any, bool) {
	if c.name != "" {
		return callAllowlisted(env, c.name, c.args)
	}
	return parseArgument(c.atom, env.root)
}

// EvalAllowlisted вычисляет код только в разрешённой грамматике.
// Второе значение false — «не найдено»; ошибка — код вне грамматики.
func EvalAllowlisted(code string, ctx *Context) (any, bool, error) {
	c, err := parseAllowlisted(code)
	if err != nil {
		return nil, false, err
	}
	v, ok := c.eval(newCallEnv(ctx, nil))
	return v, ok, nil
}
