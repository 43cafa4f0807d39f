package parsers

import (
	"fmt"
	"io"

	"github.com/username/moneydash/backend/src/logger"
	"github.com/username/moneydash/backend/src/models"
	"github.com/xuri/excelize/v2"
)

// XLSXParser loads spreadsheet workbooks, typically exports saved under
// a .csv extension. Only the first sheet is read.
type XLSXParser struct{}

func NewXLSXParser() *XLSXParser {
	return &XLSXParser{}
}

func (p *XLSXParser) Parse(file io.Reader, raw models.RawFile) (*LoadResult, error) {
	workbook, err := excelize.OpenReader(file)
	if err != nil {
		return nil, fmt.Errorf("failed to open workbook: %w", err)
	}
	defer workbook.Close()

	sheets := workbook.GetSheetList()
	if len(sheets) == 0 {
		return nil, fmt.Errorf("workbook %q has no sheets", raw.FileName)
	}

	rows, err := workbook.GetRows(sheets[0])
	if err != nil {
		return nil, fmt.Errorf("failed to read sheet %q: %w", sheets[0], err)
	}
	if len(rows) == 0 {
		return nil, &SchemaError{FileName: raw.FileName, MissingColumns: []string{"Date", "Amount", "Description"}}
	}

	// Bank workbooks put account summary lines above the table; find
	// the real header row, falling back to the first row.
	headerIdx := 0
	for i, row := range rows {
		if isHeaderRow(row) {
			headerIdx = i
			break
		}
	}

	cols, missing := mapColumns(rows[headerIdx])
	if len(missing) > 0 {
		return nil, &SchemaError{FileName: raw.FileName, MissingColumns: missing}
	}

	result := &LoadResult{}
	for i, row := range rows[headerIdx+1:] {
		rowNum := i + 1
		if rowEmpty(row) {
			continue
		}
		tx, err := buildTransaction(cols, row, raw, rowNum)
		if err != nil {
			logger.L.Debug("Skipping row", "file", raw.FileName, "row", rowNum, "reason", err)
			result.RowsSkipped++
			result.RowIssues = append(result.RowIssues, models.RowIssue{
				FileName: raw.FileName,
				Row:      rowNum,
				Reason:   err.Error(),
			})
			continue
		}
		result.Transactions = append(result.Transactions, tx)
	}

	return result, nil
}
