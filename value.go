package cardtemplar

import (
	"bytes"
	"encoding/json"
	"fmt"

	"gopkg.in/yaml.v3"
)

// TemplateValue — шаблонизированное поле отчёта. В JSON/YAML это либо
// строка с плейсхолдерами {{...}}, либо объект {template, expr, unsafeJs}.
// unsafeJs и expr вычисляются целиком как одно выражение,
// template сканируется на плейсхолдеры.
type TemplateValue struct {
	Text     *string
	Template *string
	Expr     *string
	Unsafe   *string
}

// templateFields — объектная форма TemplateValue на проводе.
type templateFields struct {
	Template *string `json:"template,omitempty" yaml:"template,omitempty"`
	Expr     *string `json:"expr,omitempty" yaml:"expr,omitempty"`
	Unsafe   *string `json:"unsafeJs,omitempty" yaml:"unsafeJs,omitempty"`
}

// Text оборачивает строку шаблона.
func Text(s string) *TemplateValue { return &TemplateValue{Text: &s} }

// Expr оборачивает выражение, вычисляемое целиком.
func Expr(code string) *TemplateValue { return &TemplateValue{Expr: &code} }

// UnsafeExpr оборачивает выражение для полной грамматики выражений;
// в строгом режиме рендерера такие значения не вычисляются.
func UnsafeExpr(code string) *TemplateValue { return &TemplateValue{Unsafe: &code} }

// IsZero — значение не задано.
func (v *TemplateValue) IsZero() bool {
	return v == nil || (v.Text == nil && v.Template == nil && v.Expr == nil && v.Unsafe == nil)
}

func (v TemplateValue) MarshalJSON() ([]byte, error) {
	if v.Text != nil {
		return json.Marshal(*v.Text)
	}
	if v.Template == nil && v.Expr == nil && v.Unsafe == nil {
		return []byte("null"), nil
	}
	return json.Marshal(templateFields{Template: v.Template, Expr: v.Expr, Unsafe: v.Unsafe})
}

func (v *TemplateValue) UnmarshalJSON(b []byte) error {
	b = bytes.TrimSpace(b)
	switch {
	case bytes.Equal(b, []byte("null")):
		*v = TemplateValue{}
		return nil
	case len(b) > 0 && b[0] == '"':
		var s string
		if err := json.Unmarshal(b, &s); err != nil {
			return err
		}
		*v = TemplateValue{Text: &s}
		return nil
	}
	var f templateFields
	if err := json.Unmarshal(b, &f); err != nil {
		return fmt.Errorf("шаблон должен быть строкой или объектом {template, expr, unsafeJs}: %w", err)
	}
	*v = TemplateValue{Template: f.Template, Expr: f.Expr, Unsafe: f.Unsafe}
	return nil
}

func (v *TemplateValue) UnmarshalYAML(n *yaml.Node) error {
	switch n.Kind {
	case yaml.ScalarNode:
		if n.Tag == "!!null" {
			*v = TemplateValue{}
			return nil
		}
		s := n.Value
		*v = TemplateValue{Text: &s}
		return nil
	case yaml.MappingNode:
		var f templateFields
		if err := n.Decode(&f); err != nil {
			return err
		}
		*v = TemplateValue{Template: f.Template, Expr: f.Expr, Unsafe: f.Unsafe}
		return nil
	}
	return fmt.Errorf("строка %d: шаблон должен быть строкой или объектом {template, expr, unsafeJs}", n.Line)
}
