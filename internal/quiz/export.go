package quiz

import (
	"fmt"

	"github.com/xuri/excelize/v2"
)

const reviewSheet = "Review"

// ExportReview writes a finished attempt's review report to an xlsx file so
// a student can keep or share their results.
func ExportReview(items []ReviewItem, score, total int, path string) error {
	f := excelize.NewFile()
	defer f.Close()

	f.SetSheetName("Sheet1", reviewSheet)

	headers := []string{"#", "Question", "Your Answer", "Correct Answer", "Result", "Explanation"}
	for col, h := range headers {
		cell, err := excelize.CoordinatesToCellName(col+1, 1)
		if err != nil {
			return fmt.Errorf("header cell: %w", err)
		}
		if err := f.SetCellValue(reviewSheet, cell, h); err != nil {
			return fmt.Errorf("write header: %w", err)
		}
	}

	for i, item := range items {
		row := i + 2

		selected := item.Selected
		if !item.Answered {
			selected = "unanswered"
		}
		result := "incorrect"
		if item.Correct {
			result = "correct"
		}

		values := []any{i + 1, item.Stem, selected, item.CorrectText, result, item.Explanation}
		for col, v := range values {
			cell, err := excelize.CoordinatesToCellName(col+1, row)
			if err != nil {
				return fmt.Errorf("review cell: %w", err)
			}
			if err := f.SetCellValue(reviewSheet, cell, v); err != nil {
				return fmt.Errorf("write review row %d: %w", row, err)
			}
		}
	}

	summaryCell, err := excelize.CoordinatesToCellName(1, len(items)+3)
	if err != nil {
		return fmt.Errorf("summary cell: %w", err)
	}
	summary := fmt.Sprintf("Score: %d / %d", score, total)
	if err := f.SetCellValue(reviewSheet, summaryCell, summary); err != nil {
		return fmt.Errorf("write summary: %w", err)
	}

	if err := f.SaveAs(path); err != nil {
		return fmt.Errorf("save review export: %w", err)
	}
	return nil
}
