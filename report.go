package cardtemplar

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"
)

// Report — описание отчёта: данные и карточки, чьи тексты шаблонизированы.
type Report struct {
	Title        string              `json:"title" yaml:"title"`
	Props        map[string]any      `json:"props,omitempty" yaml:"props,omitempty"`
	Datasets     map[string]*Dataset `json:"datasets,omitempty" yaml:"datasets,omitempty"`
	DatasetsFile string              `json:"datasetsFile,omitempty" yaml:"datasetsFile,omitempty"`
	Cards        []Card              `json:"cards" yaml:"cards"`
}

// Card — карточка с шаблонизированными заголовком и текстом.
type Card struct {
	ID    string        `json:"id" yaml:"id"`
	Title TemplateValue `json:"title,omitempty" yaml:"title,omitempty"`
	Body  TemplateValue `json:"body,omitempty" yaml:"body,omitempty"`
}

// RenderedCard — карточка после подстановки.
type RenderedCard struct {
	ID    string `json:"id"`
	Title string `json:"title"`
	Body  string `json:"body"`
}

// ParseReport разбирает описание отчёта. Формат — "yaml" или "json";
// JSON может быть обёрнут в блок ``` ... ```.
func ParseReport(data []byte, format string) (*Report, error) {
	var rep Report
	switch strings.ToLower(format) {
	case "yaml", "yml":
		if err := yaml.Unmarshal(data, &rep); err != nil {
			return nil, fmt.Errorf("разбор YAML: %w", err)
		}
		rep.Props, _ = normalizeValue(rep.Props).(map[string]any)
	case "json":
		if err := json.Unmarshal([]byte(sanitizeJSONBlock(string(data))), &rep); err != nil {
			return nil, fmt.Errorf("разбор JSON: %w", err)
		}
	default:
		return nil, fmt.Errorf("неизвестный формат отчёта %q", format)
	}
	return &rep, nil
}

// LoadReport читает отчёт из файла; формат определяется по расширению.
// Если задан datasetsFile, наборы из книги Excel (путь относительно
// файла отчёта) добавляются к объявленным, не перекрывая их.
func LoadReport(path string) (*Report, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	format := strings.TrimPrefix(filepath.Ext(path), ".")
	rep, err := ParseReport(data, format)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	if rep.DatasetsFile != "" {
		xlsx := rep.DatasetsFile
		if !filepath.IsAbs(xlsx) {
			xlsx = filepath.Join(filepath.Dir(path), xlsx)
		}
		loaded, err := LoadDatasetsFromExcel(xlsx)
		if err != nil {
			return nil, fmt.Errorf("наборы данных %s: %w", xlsx, err)
		}
		if rep.Datasets == nil {
			rep.Datasets = map[string]*Dataset{}
		}
		for id, ds := range loaded {
			if _, ok := rep.Datasets[id]; !ok {
				rep.Datasets[id] = ds
			}
		}
	}
	return rep, nil
}

// Context строит свежий контекст рендера для отчёта.
func (rep *Report) Context() *Context {
	return NewContext(rep.Datasets, rep.Props)
}

// Render рендерит все карточки отчёта. Ошибки отдельных полей
// не прерывают рендер: такие поля остаются пустыми.
func (rep *Report) Render(r *Renderer) []RenderedCard {
	if r == nil {
		r = defaultRenderer
	}
	ctx := rep.Context()
	out := make([]RenderedCard, 0, len(rep.Cards))
	for _, c := range rep.Cards {
		out = append(out, RenderedCard{
			ID:    c.ID,
			Title: r.Render(&c.Title, ctx),
			Body:  r.Render(&c.Body, ctx),
		})
	}
	return out
}
