package cardtemplar

import (
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/xuri/excelize/v2"
)

// LoadDatasetsFromExcel читает книгу как набор датасетов: каждый лист —
// отдельный набор, первая строка — колонки, остальные — позиционные строки.
// Значения ячеек остаются строками; агрегаторы приводят их к числам сами.
func LoadDatasetsFromExcel(path string) (map[string]*Dataset, error) {
	f, err := excelize.OpenFile(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	out := make(map[string]*Dataset)
	for _, sheet := range f.GetSheetList() {
		rows, err := f.GetRows(sheet)
		if err != nil {
			return nil, fmt.Errorf("лист %s: %w", sheet, err)
		}
		ds := &Dataset{Columns: []string{}, Data: []Row{}}
		for i, row := range rows {
			if i == 0 {
				for _, c := range row {
					ds.Columns = append(ds.Columns, strings.TrimSpace(c))
				}
				continue
			}
			if isBlankRow(row) {
				continue
			}
			vals := make([]any, len(ds.Columns))
			for c := range vals {
				if c < len(row) {
					vals[c] = row[c]
				}
			}
			ds.Data = append(ds.Data, PositionalRow(vals...))
		}
		out[sheet] = ds
	}
	return out, nil
}

func isBlankRow(row []string) bool {
	for _, c := range row {
		if strings.TrimSpace(c) != "" {
			return false
		}
	}
	return true
}

// Workbook — книга Excel, ячейки которой содержат шаблоны {{...}}.
type Workbook struct {
	f     *excelize.File
	cells map[string][]templateCell
}

type templateCell struct {
	addr string
	raw  string
}

// LoadWorkbook открывает книгу и запоминает шаблонные ячейки каждого листа.
func LoadWorkbook(path string) (*Workbook, error) {
	f, err := excelize.OpenFile(path)
	if err != nil {
		return nil, err
	}
	wb := &Workbook{f: f, cells: map[string][]templateCell{}}
	for _, sheet := range f.GetSheetList() {
		rows, err := f.GetRows(sheet)
		if err != nil {
			_ = f.Close()
			return nil, fmt.Errorf("парсинг листа %s: %w", sheet, err)
		}
		for rIdx, row := range rows {
			for cIdx, cell := range row {
				if !rxPlaceholder.MatchString(cell) {
					continue
				}
				addr, err := excelize.CoordinatesToCellName(cIdx+1, rIdx+1)
				if err != nil {
					_ = f.Close()
					return nil, err
				}
				wb.cells[sheet] = append(wb.cells[sheet], templateCell{addr: addr, raw: cell})
			}
		}
	}
	return wb, nil
}

// TemplateCells возвращает число шаблонных ячеек.
func (wb *Workbook) TemplateCells() int {
	n := 0
	for _, cs := range wb.cells {
		n += len(cs)
	}
	return n
}

// Render подставляет значения во все шаблонные ячейки.
func (wb *Workbook) Render(r *Renderer, ctx *Context) error {
	if r == nil {
		r = defaultRenderer
	}
	for sheet, cs := range wb.cells {
		for _, c := range cs {
			if err := wb.f.SetCellValue(sheet, c.addr, r.RenderString(c.raw, ctx)); err != nil {
				return fmt.Errorf("лист %s, ячейка %s: %w", sheet, c.addr, err)
			}
		}
	}
	return nil
}

// Save сохраняет файл
func (wb *Workbook) Save(destPath string) error { return wb.f.SaveAs(destPath) }

// Close освобождает ресурсы книги.
func (wb *Workbook) Close() error { return wb.f.Close() }

// RenderWorkbook рендерит книгу-шаблон в новый файл.
func RenderWorkbook(templatePath, destPath string, r *Renderer, ctx *Context) error {
	log.Printf("📊 Рендер книги: %s → %s", templatePath, destPath)
	startTime := time.Now()

	wb, err := LoadWorkbook(templatePath)
	if err != nil {
		log.Printf("❌ Ошибка загрузки шаблона: %v", err)
		return err
	}
	defer wb.Close()
	log.Printf("✅ Шаблон загружен, шаблонных ячеек: %d", wb.TemplateCells())

	if err := wb.Render(r, ctx); err != nil {
		log.Printf("❌ Ошибка рендеринга: %v", err)
		return err
	}
	if err := wb.Save(destPath); err != nil {
		log.Printf("❌ Ошибка сохранения: %v", err)
		return err
	}
	log.Printf("✅ Книга создана за %v", time.Since(startTime))
	return nil
}

// WriteCards сохраняет отрендеренные карточки на лист: id, заголовок, текст.
func WriteCards(destPath string, cards []RenderedCard) error {
	log.Printf("💾 Запись карточек (%d) в %s", len(cards), destPath)
	f := excelize.NewFile()
	defer f.Close()

	sheet := f.GetSheetName(0)
	header := []any{"id", "title", "body"}
	if err := f.SetSheetRow(sheet, "A1", &header); err != nil {
		return err
	}
	for i, c := range cards {
		addr, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return err
		}
		row := []any{c.ID, c.Title, c.Body}
		if err := f.SetSheetRow(sheet, addr, &row); err != nil {
			return err
		}
	}
	if err := f.SaveAs(destPath); err != nil {
		log.Printf("❌ Ошибка сохранения: %v", err)
		return err
	}
	return nil
}
