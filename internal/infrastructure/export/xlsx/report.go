// Package xlsx renders the local certificate inventory as a spreadsheet,
// for users who track their curriculum outside the platform.
package xlsx

import (
	"fmt"
	"io"

	"github.com/xuri/excelize/v2"

	"github.com/baremaai/companion/internal/core/domain"
)

const sheetName = "Certificados"

var header = []string{
	"Título", "Instituição", "Categoria", "Carga Horária (h)",
	"Data Início", "Data Fim", "Data Emissão", "Status", "Confiança",
}

// WriteInventory writes one row per certificate in the given order.
func WriteInventory(out io.Writer, certs []domain.Certificate) error {
	f := excelize.NewFile()
	defer f.Close()

	index, err := f.NewSheet(sheetName)
	if err != nil {
		return fmt.Errorf("create sheet: %w", err)
	}
	f.SetActiveSheet(index)
	if err := f.DeleteSheet("Sheet1"); err != nil {
		return fmt.Errorf("drop default sheet: %w", err)
	}

	if err := writeRow(f, 1, headerCells()); err != nil {
		return err
	}
	for i, cert := range certs {
		cells := []any{
			cert.Title,
			cert.Institution,
			domain.CategoryLabel(cert.Category),
			cert.WorkloadHours,
			cert.StartDate,
			cert.EndDate,
			cert.IssueDate,
			string(cert.Status),
			string(domain.TierFor(cert.AIConfidence)),
		}
		if err := writeRow(f, i+2, cells); err != nil {
			return err
		}
	}

	if err := f.SetColWidth(sheetName, "A", "B", 40); err != nil {
		return fmt.Errorf("set column width: %w", err)
	}
	if err := f.Write(out); err != nil {
		return fmt.Errorf("write workbook: %w", err)
	}
	return nil
}

func headerCells() []any {
	cells := make([]any, len(header))
	for i, h := range header {
		cells[i] = h
	}
	return cells
}

func writeRow(f *excelize.File, row int, cells []any) error {
	cell, err := excelize.CoordinatesToCellName(1, row)
	if err != nil {
		return fmt.Errorf("row %d: %w", row, err)
	}
	if err := f.SetSheetRow(sheetName, cell, &cells); err != nil {
		return fmt.Errorf("write row %d: %w", row, err)
	}
	return nil
}
