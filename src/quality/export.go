// export.go
package quality

import (
	"fmt"

	"github.com/xuri/excelize/v2"
)

// SaveOutliersToExcel 把合并后的离群行写入xlsx工作簿，
// 第一列是检测类别，之后是数据集的原始列。
func SaveOutliersToExcel(ds *Dataset, report *OutlierReport, filePath string) error {
	f := excelize.NewFile()
	defer f.Close()

	sheetName := "Sheet1"

	// 写入表头
	headers := append([]string{"outlier_type", "row_index"}, ds.ColumnNames()...)
	for i, name := range headers {
		cell, _ := excelize.CoordinatesToCellName(i+1, 1)
		f.SetCellValue(sheetName, cell, name)
	}

	// 写入数据
	for rowIdx, tagged := range report.TaggedRows {
		cell, _ := excelize.CoordinatesToCellName(1, rowIdx+2)
		f.SetCellValue(sheetName, cell, tagged.Category)
		cell, _ = excelize.CoordinatesToCellName(2, rowIdx+2)
		f.SetCellValue(sheetName, cell, tagged.RowIndex)
		for colIdx, val := range tagged.Values {
			cell, _ = excelize.CoordinatesToCellName(colIdx+3, rowIdx+2)
			f.SetCellValue(sheetName, cell, val)
		}
	}

	if err := f.SaveAs(filePath); err != nil {
		return fmt.Errorf("保存Excel文件失败: %w", err)
	}
	return nil
}
