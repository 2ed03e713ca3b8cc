// Package files reads statement workbooks from disk or upload streams into
// the engine's RawMatrix form, and discovers statement files on the local
// filesystem for the CLI.
package files

import (
	"bytes"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/extrame/xls"
	"github.com/xuri/excelize/v2"

	apperrors "ledgercli/internal/errors"
	"ledgercli/pkg/contracts/domain"
)

// xlsRowLimit bounds how many rows a legacy .xls read returns. Statement
// exports top out far below this.
const xlsRowLimit = 65536

// ReadWorkbook reads the first sheet of a workbook file into a SourceSheet.
// The format is chosen by extension: .xlsx (and .xlsm) via excelize with
// full merge/width metadata, legacy .xls via the BIFF reader which exposes
// cell values only.
func ReadWorkbook(path string) (*domain.SourceSheet, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, apperrors.NewStorageError(fmt.Sprintf("failed to open workbook %s", path), err)
	}
	defer f.Close()

	sheet, err := ReadWorkbookStream(f, filepath.Base(path))
	if err != nil {
		return nil, err
	}
	return sheet, nil
}

// ReadWorkbookStream reads a workbook from an in-memory or uploaded stream.
// fileName decides the format and is recorded on the resulting sheet.
func ReadWorkbookStream(r io.Reader, fileName string) (*domain.SourceSheet, error) {
	switch strings.ToLower(filepath.Ext(fileName)) {
	case ".xlsx", ".xlsm":
		return readXLSX(r, fileName)
	case ".xls":
		return readXLS(r, fileName)
	default:
		return nil, apperrors.NewAppValidationError(
			fmt.Sprintf("unsupported workbook format: %s", fileName))
	}
}

func readXLSX(r io.Reader, fileName string) (*domain.SourceSheet, error) {
	f, err := excelize.OpenReader(r)
	if err != nil {
		return nil, apperrors.NewParsingError(fmt.Sprintf("failed to read workbook %s", fileName), err)
	}
	defer f.Close()

	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return nil, apperrors.NewParsingError(fmt.Sprintf("workbook %s has no sheets", fileName), nil)
	}
	sheetName := sheets[0]

	rows, err := f.GetRows(sheetName)
	if err != nil {
		return nil, apperrors.NewParsingError(
			fmt.Sprintf("failed to read sheet %s of %s", sheetName, fileName), err)
	}

	format, err := readFormat(f, sheetName, domain.RawMatrix(rows).ColumnCount(0))
	if err != nil {
		return nil, apperrors.NewParsingError(
			fmt.Sprintf("failed to read formatting of %s", fileName), err)
	}

	return &domain.SourceSheet{
		FileName:  fileName,
		SheetName: sheetName,
		Matrix:    domain.RawMatrix(rows),
		Format:    *format,
	}, nil
}

func readFormat(f *excelize.File, sheetName string, columnCount int) (*domain.SheetFormat, error) {
	format := &domain.SheetFormat{}

	mergeCells, err := f.GetMergeCells(sheetName)
	if err != nil {
		return nil, err
	}
	for _, mc := range mergeCells {
		startCol, startRow, err := excelize.CellNameToCoordinates(mc.GetStartAxis())
		if err != nil {
			return nil, err
		}
		endCol, endRow, err := excelize.CellNameToCoordinates(mc.GetEndAxis())
		if err != nil {
			return nil, err
		}
		format.Merges = append(format.Merges, domain.MergeRegion{
			StartRow: startRow - 1, StartCol: startCol - 1,
			EndRow: endRow - 1, EndCol: endCol - 1,
		})
	}

	format.ColumnWidths = make([]float64, columnCount)
	for i := 0; i < columnCount; i++ {
		name, err := excelize.ColumnNumberToName(i + 1)
		if err != nil {
			return nil, err
		}
		width, err := f.GetColWidth(sheetName, name)
		if err != nil {
			return nil, err
		}
		format.ColumnWidths[i] = width
	}

	return format, nil
}

// readXLS reads a legacy BIFF workbook. The library needs a ReadSeeker, so
// the stream is buffered first; merge regions and widths are not available
// in this path and candidate-column parsing does not depend on them.
func readXLS(r io.Reader, fileName string) (*domain.SourceSheet, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, apperrors.NewStorageError(fmt.Sprintf("failed to read %s", fileName), err)
	}

	workbook, err := xls.OpenReader(bytes.NewReader(data), "utf-8")
	if err != nil {
		return nil, apperrors.NewParsingError(fmt.Sprintf("failed to read workbook %s", fileName), err)
	}

	rows := workbook.ReadAllCells(xlsRowLimit)
	if len(rows) == 0 {
		return nil, apperrors.NewParsingError(fmt.Sprintf("workbook %s has no rows", fileName), nil)
	}

	sheetName := ""
	if s := workbook.GetSheet(0); s != nil {
		sheetName = s.Name
	}

	return &domain.SourceSheet{
		FileName:  fileName,
		SheetName: sheetName,
		Matrix:    domain.RawMatrix(rows),
	}, nil
}
