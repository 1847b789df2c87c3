package sheet

import (
	"context"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/xuri/excelize/v2"

	"newsbrief/internal/domain"
	"newsbrief/internal/ports"
)

const summaryLimit = 120

var header = []any{"Date", "Title", "URL", "Source", "Score", "Tags", "Summary"}

// Log appends curated items to a named sheet in an xlsx workbook, creating
// the workbook and the sheet with a header row when absent.
type Log struct {
	path  string
	sheet string
}

var _ ports.ItemLog = (*Log)(nil)

// NewLog targets one workbook file and one sheet name.
func NewLog(path, sheetName string) *Log {
	return &Log{path: path, sheet: sheetName}
}

// Append writes one row per item.
func (l *Log) Append(ctx context.Context, runDate time.Time, items []domain.ScoredItem) error {
	if len(items) == 0 {
		return nil
	}
	if err := ctx.Err(); err != nil {
		return err
	}

	book, err := l.openOrCreate()
	if err != nil {
		return err
	}
	defer book.Close()

	if err := l.ensureSheet(book); err != nil {
		return err
	}

	rows, err := book.GetRows(l.sheet)
	if err != nil {
		return fmt.Errorf("read sheet %s: %w", l.sheet, err)
	}
	next := len(rows) + 1

	date := runDate.Format("2006-01-02")
	for i, it := range items {
		row := []any{
			date,
			it.Item.Title,
			it.Item.URL,
			it.Item.Source,
			it.Score,
			strings.Join(it.Tags, ", "),
			truncateRunes(it.Item.Summary, summaryLimit),
		}
		cell := fmt.Sprintf("A%d", next+i)
		if err := book.SetSheetRow(l.sheet, cell, &row); err != nil {
			return fmt.Errorf("write row %d: %w", next+i, err)
		}
	}

	if err := book.SaveAs(l.path); err != nil {
		return fmt.Errorf("save workbook %s: %w", l.path, err)
	}
	return nil
}

func (l *Log) openOrCreate() (*excelize.File, error) {
	book, err := excelize.OpenFile(l.path)
	if err == nil {
		return book, nil
	}
	if os.IsNotExist(err) {
		return excelize.NewFile(), nil
	}
	return nil, fmt.Errorf("open workbook %s: %w", l.path, err)
}

func (l *Log) ensureSheet(book *excelize.File) error {
	idx, err := book.GetSheetIndex(l.sheet)
	if err != nil {
		return fmt.Errorf("lookup sheet %s: %w", l.sheet, err)
	}
	if idx >= 0 {
		return nil
	}

	if _, err := book.NewSheet(l.sheet); err != nil {
		return fmt.Errorf("create sheet %s: %w", l.sheet, err)
	}
	// Drop the workbook's default sheet so the log is the only one.
	if l.sheet != "Sheet1" {
		if i, lookupErr := book.GetSheetIndex("Sheet1"); lookupErr == nil && i >= 0 {
			_ = book.DeleteSheet("Sheet1")
		}
	}

	hdr := header
	if err := book.SetSheetRow(l.sheet, "A1", &hdr); err != nil {
		return fmt.Errorf("write header: %w", err)
	}
	return nil
}

func truncateRunes(s string, limit int) string {
	rs := []rune(s)
	if len(rs) <= limit {
		return s
	}
	return string(rs[:limit])
}
