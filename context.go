package cardtemplar

// Context — корневые данные для путей и выражений: наборы данных и props.
// Создаётся заново на каждый проход рендера; шаблоны его не изменяют.
type Context struct {
	Datasets map[string]*Dataset
	Props    map[string]any
}

// NewContext собирает контекст рендера.
func NewContext(datasets map[string]*Dataset, props map[string]any) *Context {
	return &Context{Datasets: datasets, Props: props}
}

// Dataset возвращает набор данных по идентификатору.
func (c *Context) Dataset(id string) (*Dataset, bool) {
	if c == nil {
		return nil, false
	}
	ds, ok := c.Datasets[id]
	return ds, ok && ds != nil
}

// Root — обобщённое значение {datasets, props}, относительно которого
// разрешаются пути и связываются имена выражений.
func (c *Context) Root() map[string]any {
	datasets := map[string]any{}
	props := map[string]any{}
	if c != nil {
		for id, ds := range c.Datasets {
			if ds == nil {
				datasets[id] = nil
				continue
			}
			datasets[id] = ds.Value()
		}
		if c.Props != nil {
			props = c.Props
		}
	}
	return map[string]any{"datasets": datasets, "props": props}
}
