package cardtemplar

import (
	"errors"
	"fmt"
	"log/slog"
	"regexp"
	"strings"

	"golang.org/x/text/language"
)

// Движок подстановки для текстов карточек с синтаксисом {{...}}.
// Поддержка:
// - путь: {{ props.name }}, {{ datasets.sales.data[0][1] }}
// - разрешённые функции: {{ sum('sales', 'amount') }}
// - выражения expr-lang: {{ formatCurrency(sum('sales','amount') * 1.2) }}
// Рендер тотален: любая ошибка превращается в пустую подстановку и запись в лог.

// Mode — какая грамматика доступна плейсхолдерам.
type Mode int

const (
	// ModeExpression — сначала разрешённая грамматика, всё остальное
	// вычисляется интерпретатором выражений. Режим по умолчанию.
	ModeExpression Mode = iota
	// ModeAllowlist — только путь, литерал или вызов разрешённой функции.
	ModeAllowlist
)

func (m Mode) String() string {
	switch m {
	case ModeExpression:
		return "expression"
	case ModeAllowlist:
		return "allowlist"
	}
	return fmt.Sprintf("Mode(%d)", int(m))
}

// ErrUnsafeDisabled — значение unsafeJs в строгом режиме.
var ErrUnsafeDisabled = errors.New("unsafeJs запрещён в режиме allowlist")

// Разрешаем любые символы внутри плейсхолдера; первая }} закрывает его
var rxPlaceholder = regexp.MustCompile(`\{\{([\s\S]*?)\}\}`)

type tokenKind int

const (
	tokenText tokenKind = iota
	tokenCode
)

type templateToken struct {
	kind tokenKind
	text string
}

// parseTemplateTokens делит строку на литеральный текст и код плейсхолдеров.
// Незакрытый {{ остаётся частью текста.
func parseTemplateTokens(s string) []templateToken {
	ms := rxPlaceholder.FindAllStringSubmatchIndex(s, -1)
	if len(ms) == 0 {
		return []templateToken{{kind: tokenText, text: s}}
	}
	var toks []templateToken
	last := 0
	for _, m := range ms {
		start, end := m[0], m[1]
		if start > last {
			toks = append(toks, templateToken{kind: tokenText, text: s[last:start]})
		}
		toks = append(toks, templateToken{kind: tokenCode, text: s[m[2]:m[3]]})
		last = end
	}
	if last < len(s) {
		toks = append(toks, templateToken{kind: tokenText, text: s[last:]})
	}
	return toks
}

// Renderer рендерит шаблонизированные значения. Состояния между вызовами
// не хранит и безопасен для одновременного использования с разными контекстами.
type Renderer struct {
	mode   Mode
	logger *slog.Logger
	format *Formatter
}

// Option настраивает Renderer.
type Option func(*Renderer)

// WithMode задаёт грамматику плейсхолдеров. По умолчанию ModeExpression.
func WithMode(m Mode) Option {
	return func(r *Renderer) {
		r.mode = m
	}
}

// WithLogger задаёт логгер для предупреждений. По умолчанию slog.Default().
func WithLogger(l *slog.Logger) Option {
	return func(r *Renderer) {
		r.logger = l
	}
}

// WithLocale задаёт локаль форматирования чисел. По умолчанию en-US.
func WithLocale(tag language.Tag) Option {
	return func(r *Renderer) {
		r.format = NewFormatter(tag)
	}
}

// NewRenderer создаёт рендерер.
func NewRenderer(opts ...Option) *Renderer {
	r := &Renderer{mode: ModeExpression, format: defaultFormatter}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

var defaultRenderer = NewRenderer()

// RenderTemplate рендерит значение рендерером по умолчанию.
func RenderTemplate(v *TemplateValue, ctx *Context) string {
	return defaultRenderer.Render(v, ctx)
}

// RenderString рендерит строку шаблона рендерером по умолчанию.
func RenderString(s string, ctx *Context) string {
	return defaultRenderer.RenderString(s, ctx)
}

// Mode возвращает режим рендерера.
func (r *Renderer) Mode() Mode { return r.mode }

func (r *Renderer) log() *slog.Logger {
	if r.logger != nil {
		return r.logger
	}
	return slog.Default()
}

// RenderString рендерит строку шаблона.
func (r *Renderer) RenderString(s string, ctx *Context) string {
	return r.Render(&TemplateValue{Text: &s}, ctx)
}

// Render никогда не паникует и не возвращает ошибок: неудачные
// плейсхолдеры заменяются пустой строкой.
func (r *Renderer) Render(v *TemplateValue, ctx *Context) (out string) {
	defer func() {
		if p := recover(); p != nil {
			r.log().Warn("рендер шаблона прерван", "panic", fmt.Sprint(p))
			out = ""
		}
	}()
	if v.IsZero() {
		return ""
	}
	env := newCallEnv(ctx, r.format)

	// Режим целого выражения
	if v.Unsafe != nil && *v.Unsafe != "" {
		return r.renderWhole(*v.Unsafe, env, true)
	}
	if v.Expr != nil && *v.Expr != "" {
		return r.renderWhole(*v.Expr, env, false)
	}

	var tpl string
	switch {
	case v.Text != nil:
		tpl = *v.Text
	case v.Template != nil:
		tpl = *v.Template
	}
	if !strings.Contains(tpl, "{{") {
		return tpl
	}
	var sb strings.Builder
	for _, tk := range parseTemplateTokens(tpl) {
		if tk.kind == tokenText {
			sb.WriteString(tk.text)
			continue
		}
		sb.WriteString(r.renderPlaceholder(tk.text, env))
	}
	return sb.String()
}

func (r *Renderer) renderWhole(code string, env *callEnv, unsafe bool) string {
	var (
		v   any
		err error
	)
	switch {
	case unsafe && r.mode == ModeAllowlist:
		err = ErrUnsafeDisabled
	case unsafe:
		v, err = evaluateExpression(code, env)
	default:
		v, err = r.evalCode(code, env)
	}
	if err != nil {
		r.log().Warn("не удалось вычислить выражение", "code", code, "error", err)
		return ""
	}
	return Stringify(v)
}

// renderPlaceholder изолирует ошибку одного плейсхолдера от остального текста.
func (r *Renderer) renderPlaceholder(code string, env *callEnv) (out string) {
	defer func() {
		if p := recover(); p != nil {
			r.log().Warn("плейсхолдер прерван", "code", code, "panic", fmt.Sprint(p))
			out = ""
		}
	}()
	v, err := r.evalCode(code, env)
	if err != nil {
		r.log().Warn("не удалось вычислить плейсхолдер", "code", code, "error", err)
		return ""
	}
	return Stringify(v)
}

// evalCode: разрешённая грамматика, иначе — интерпретатор выражений,
// если режим это позволяет. «Не найдено» — это nil без ошибки.
func (r *Renderer) evalCode(code string, env *callEnv) (any, error) {
	c, err := parseAllowlisted(code)
	if err == nil {
		v, _ := c.eval(env)
		return v, nil
	}
	if r.mode == ModeAllowlist {
		if c != nil {
			v, _ := c.eval(env)
			return v, nil
		}
		return nil, err
	}
	return evaluateExpression(code, env)
}
