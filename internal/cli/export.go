package cli

import (
	"fmt"

	"github.com/phrazzld/kanban-api/internal/domain"
	"github.com/spf13/cobra"
	"github.com/xuri/excelize/v2"
)

var exportHeaders = []any{"ID", "Title", "Description", "Status", "Created", "Updated"}

func (a *app) exportCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "export FILE.xlsx",
		Short: "Write the board to a spreadsheet, one sheet per column",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a.load(cmd.Context())

			cache := a.session.Cache
			columns := map[domain.Status][]domain.Task{
				domain.StatusTodo:       cache.Todo(),
				domain.StatusInProgress: cache.InProgress(),
				domain.StatusDone:       cache.Done(),
			}
			if err := exportWorkbook(args[0], columns); err != nil {
				return err
			}

			total := 0
			for _, tasks := range columns {
				total += len(tasks)
			}
			fmt.Fprintf(a.out, "Exported %d tasks to %s\n", total, args[0])
			return nil
		},
	}
}

// exportWorkbook saves one sheet per status, named after the status,
// in board order.
func exportWorkbook(path string, columns map[domain.Status][]domain.Task) (err error) {
	f := excelize.NewFile()
	defer func() {
		if closeErr := f.Close(); closeErr != nil && err == nil {
			err = closeErr
		}
	}()

	header, err := f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}})
	if err != nil {
		return fmt.Errorf("create header style: %w", err)
	}

	for i, status := range domain.ValidStatuses() {
		sheet := string(status)
		if i == 0 {
			if err := f.SetSheetName("Sheet1", sheet); err != nil {
				return fmt.Errorf("rename sheet %s: %w", sheet, err)
			}
		} else if _, err := f.NewSheet(sheet); err != nil {
			return fmt.Errorf("add sheet %s: %w", sheet, err)
		}

		if err := writeSheet(f, sheet, header, columns[status]); err != nil {
			return err
		}
	}

	f.SetActiveSheet(0)
	if err := f.SaveAs(path); err != nil {
		return fmt.Errorf("save %s: %w", path, err)
	}
	return nil
}

func writeSheet(f *excelize.File, sheet string, headerStyle int, tasks []domain.Task) error {
	if err := f.SetSheetRow(sheet, "A1", &exportHeaders); err != nil {
		return fmt.Errorf("write %s header: %w", sheet, err)
	}
	if err := f.SetCellStyle(sheet, "A1", "F1", headerStyle); err != nil {
		return fmt.Errorf("style %s header: %w", sheet, err)
	}
	if err := f.SetColWidth(sheet, "B", "C", 40); err != nil {
		return fmt.Errorf("size %s columns: %w", sheet, err)
	}

	for i, t := range tasks {
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return err
		}
		description := ""
		if t.Description != nil {
			description = *t.Description
		}
		row := []any{
			t.ID,
			t.Title,
			description,
			string(t.Status),
			formatTime(t.CreatedAt),
			formatTime(t.UpdatedAt),
		}
		if err := f.SetSheetRow(sheet, cell, &row); err != nil {
			return fmt.Errorf("write %s row %d: %w", sheet, i+2, err)
		}
	}
	return nil
}
