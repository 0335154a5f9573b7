package cardtemplar

import (
	"errors"
	"fmt"

	expro "github.com/expr-lang/expr"
	"github.com/expr-lang/expr/ast"
)

// Выражения вычисляются встроенным интерпретатором expr-lang с ограниченной
// грамматикой: доступ к членам, литералы, арифметика, сравнения, логика,
// тернарный оператор и фиксированный набор функций. Встроенные функции
// expr-lang отключены, доступа к хосту нет.
//
// Имена, доступные в выражении:
// - datasets, props
// - count, sum, avg, min, max, formatNumber, formatPercent, formatCurrency

var (
	// ErrExpressionCompile — выражение не разобрано или не прошло проверку.
	ErrExpressionCompile = errors.New("ошибка компиляции выражения")
	// ErrExpressionRun — выражение упало при выполнении.
	ErrExpressionRun = errors.New("ошибка выполнения выражения")
)

// Служебные функции, которые подставляет forbiddenKeyGuard. Имена нельзя
// записать в выражении, поэтому вызвать их напрямую невозможно.
const (
	lengthFunc    = "@length"
	memberKeyFunc = "@key"
)

// forbiddenKeyGuard отмечает обращения к запрещённым ключам в дереве выражения.
// Вычисляемый ключ (props[a + b]) оборачивается в проверку во время выполнения,
// а .length переписывается в явный вызов: так он читается так же, как в пути.
type forbiddenKeyGuard struct {
	key string
}

func (g *forbiddenKeyGuard) Visit(node *ast.Node) {
	if g.key != "" {
		return
	}
	switch n := (*node).(type) {
	case *ast.MemberNode:
		switch p := n.Property.(type) {
		case *ast.StringNode:
			if isForbiddenKey(p.Value) {
				g.key = p.Value
				return
			}
			if p.Value == "length" {
				ast.Patch(node, &ast.CallNode{
					Callee:    &ast.IdentifierNode{Value: lengthFunc},
					Arguments: []ast.Node{n.Node},
				})
			}
		case *ast.IntegerNode:
		default:
			n.Property = &ast.CallNode{
				Callee:    &ast.IdentifierNode{Value: memberKeyFunc},
				Arguments: []ast.Node{n.Property},
			}
		}
	case *ast.IdentifierNode:
		if isForbiddenKey(n.Value) {
			g.key = n.Value
		}
	}
}

// memberLength читает .length так же, как ResolvePath.
func memberLength(params ...any) (any, error) {
	v, ok := propertyValue(params[0], "length")
	if !ok {
		return nil, nil
	}
	return v, nil
}

// memberKey пропускает вычисленный ключ, если он не запрещён.
func memberKey(params ...any) (any, error) {
	if s, ok := params[0].(string); ok && isForbiddenKey(s) {
		return nil, fmt.Errorf("запрещённый ключ %q", s)
	}
	return params[0], nil
}

// EvaluateExpression компилирует и выполняет выражение над контекстом.
// Ошибки не перехватываются: их обрабатывает вызывающий код.
func EvaluateExpression(code string, ctx *Context) (any, error) {
	return evaluateExpression(code, newCallEnv(ctx, nil))
}

func evaluateExpression(code string, env *callEnv) (any, error) {
	guard := &forbiddenKeyGuard{}
	opts := []expro.Option{
		expro.Env(env.root),
		expro.DisableAllBuiltins(),
		expro.Patch(guard),
		expro.Function(lengthFunc, memberLength),
		expro.Function(memberKeyFunc, memberKey),
	}
	for name, fn := range allowlist {
		fn := fn
		opts = append(opts, expro.Function(name, func(params ...any) (any, error) {
			v, ok := fn(env, params)
			if !ok {
				return nil, nil
			}
			return v, nil
		}))
	}
	program, err := expro.Compile(code, opts...)
	if guard.key != "" {
		return nil, fmt.Errorf("%w: запрещённый ключ %q", ErrExpressionCompile, guard.key)
	}
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrExpressionCompile, err)
	}
	out, err := expro.Run(program, env.root)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrExpressionRun, err)
	}
	return out, nil
}
