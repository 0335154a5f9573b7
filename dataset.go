package cardtemplar

import (
	"bytes"
	"encoding/json"
	"fmt"
	"reflect"

	"gopkg.in/yaml.v3"
)

// RowKind — форма строки набора данных.
type RowKind int

const (
	// RowPositional — значения по позициям колонок.
	RowPositional RowKind = iota
	// RowKeyed — запись вида колонка → значение.
	RowKeyed
)

// Row — строка набора данных: либо позиционная, либо запись.
// Агрегаторы понимают только позиционные строки.
type Row struct {
	kind   RowKind
	values []any
	record map[string]any
}

// PositionalRow создаёт позиционную строку.
func PositionalRow(values ...any) Row {
	return Row{kind: RowPositional, values: values}
}

// KeyedRow создаёт строку-запись.
func KeyedRow(record map[string]any) Row {
	return Row{kind: RowKeyed, record: record}
}

func (r Row) Kind() RowKind { return r.kind }

// Values возвращает значения позиционной строки.
func (r Row) Values() ([]any, bool) {
	if r.kind != RowPositional {
		return nil, false
	}
	return r.values, true
}

// Record возвращает значения строки-записи.
func (r Row) Record() (map[string]any, bool) {
	if r.kind != RowKeyed {
		return nil, false
	}
	return r.record, true
}

// value — обобщённое представление строки для путей и выражений.
func (r Row) value() any {
	if r.kind == RowKeyed {
		return r.record
	}
	if r.values == nil {
		return []any{}
	}
	return r.values
}

// rowFromValue строит строку из декодированного значения.
func rowFromValue(v any) (Row, error) {
	switch vv := v.(type) {
	case []any:
		return PositionalRow(vv...), nil
	case map[string]any:
		return KeyedRow(vv), nil
	case Row:
		return vv, nil
	}
	rv := reflect.ValueOf(v)
	if rv.Kind() == reflect.Slice || rv.Kind() == reflect.Array {
		vals := make([]any, rv.Len())
		for i := range vals {
			vals[i] = rv.Index(i).Interface()
		}
		return PositionalRow(vals...), nil
	}
	return Row{}, fmt.Errorf("строка набора данных должна быть массивом или объектом, получено %T", v)
}

func (r Row) MarshalJSON() ([]byte, error) {
	return json.Marshal(r.value())
}

func (r *Row) UnmarshalJSON(b []byte) error {
	dec := json.NewDecoder(bytes.NewReader(b))
	var v any
	if err := dec.Decode(&v); err != nil {
		return err
	}
	row, err := rowFromValue(v)
	if err != nil {
		return err
	}
	*r = row
	return nil
}

func (r *Row) UnmarshalYAML(n *yaml.Node) error {
	var v any
	if err := n.Decode(&v); err != nil {
		return err
	}
	row, err := rowFromValue(normalizeValue(v))
	if err != nil {
		return fmt.Errorf("строка %d: %w", n.Line, err)
	}
	*r = row
	return nil
}

// Dataset — именованный табличный источник: упорядоченные колонки и строки.
type Dataset struct {
	Columns []string `json:"columns" yaml:"columns"`
	Data    []Row    `json:"data" yaml:"data"`
}

// PositionalRows — единственный шаг нормализации перед агрегацией:
// остаются только позиционные строки, записи отбрасываются.
func (d *Dataset) PositionalRows() [][]any {
	if d == nil {
		return nil
	}
	out := make([][]any, 0, len(d.Data))
	for _, r := range d.Data {
		if vals, ok := r.Values(); ok {
			out = append(out, vals)
		}
	}
	return out
}

// Value возвращает обобщённое представление {columns, data}.
func (d *Dataset) Value() map[string]any {
	if d == nil {
		return nil
	}
	cols := make([]any, len(d.Columns))
	for i, c := range d.Columns {
		cols[i] = c
	}
	data := make([]any, len(d.Data))
	for i, r := range d.Data {
		data[i] = r.value()
	}
	return map[string]any{"columns": cols, "data": data}
}

// DatasetFromValue восстанавливает набор данных из обобщённого значения,
// например из результата datasets.sales в выражении.
func DatasetFromValue(v any) (*Dataset, bool) {
	switch vv := v.(type) {
	case *Dataset:
		return vv, vv != nil
	case Dataset:
		return &vv, true
	case map[string]any:
		ds := &Dataset{}
		if cols, ok := vv["columns"].([]any); ok {
			for _, c := range cols {
				s, ok := c.(string)
				if !ok {
					return nil, false
				}
				ds.Columns = append(ds.Columns, s)
			}
		}
		data, ok := vv["data"].([]any)
		if !ok {
			return nil, false
		}
		for _, it := range data {
			row, err := rowFromValue(it)
			if err != nil {
				continue
			}
			ds.Data = append(ds.Data, row)
		}
		return ds, true
	}
	return nil, false
}
