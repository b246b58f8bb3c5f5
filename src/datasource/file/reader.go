// reader.go
package file

import (
	"bytes"
	"fmt"
	"os"
	"strings"
	"unicode/utf8"

	"github.com/extrame/xls"
	"github.com/go-gota/gota/dataframe"
	"github.com/go-gota/gota/series"
	"github.com/tealeg/xlsx"
	"golang.org/x/text/encoding/charmap"
)

// 支持的数据集扩展名
var DatasetExtensions = []string{"csv", "xlsx", "xls"}

// LoadDataFrame 按原始文件名的扩展名加载数据集。
// CSV先按UTF-8读取，失败时回退Latin-1；Excel取第一个工作表，
// 首行作为列名。其余扩展名一律拒绝。
// 所有列保持字符串类型，语义类型推断由quality包统一完成。
func LoadDataFrame(filePath, originalName string) (dataframe.DataFrame, error) {
	ext := FileExt(originalName)

	switch ext {
	case "csv":
		return readCSV(filePath)
	case "xlsx":
		return readXLSX(filePath)
	case "xls":
		return readXLS(filePath)
	}
	return dataframe.DataFrame{}, fmt.Errorf("unsupported file extension: %s", ext)
}

// FileExt 小写扩展名，不带点
func FileExt(name string) string {
	idx := strings.LastIndex(name, ".")
	if idx < 0 {
		return ""
	}
	return strings.ToLower(name[idx+1:])
}

func readCSV(filePath string) (dataframe.DataFrame, error) {
	data, err := os.ReadFile(filePath)
	if err != nil {
		return dataframe.DataFrame{}, fmt.Errorf("读取CSV文件失败: %w", err)
	}

	// UTF-8校验失败时按Latin-1重新解码
	if !utf8.Valid(data) {
		decoded, derr := charmap.ISO8859_1.NewDecoder().Bytes(data)
		if derr != nil {
			return dataframe.DataFrame{}, fmt.Errorf("解码CSV文件失败: %w", derr)
		}
		data = decoded
	}

	df := dataframe.ReadCSV(
		bytes.NewReader(data),
		dataframe.HasHeader(true),
		dataframe.DetectTypes(false),
		dataframe.DefaultType(series.String),
	)
	if df.Err != nil {
		return dataframe.DataFrame{}, fmt.Errorf("解析CSV失败: %w", df.Err)
	}
	return df, nil
}

func readXLSX(filePath string) (dataframe.DataFrame, error) {
	xlFile, err := xlsx.OpenFile(filePath)
	if err != nil {
		return dataframe.DataFrame{}, fmt.Errorf("xlsx open file false: %w", err)
	}
	if len(xlFile.Sheets) == 0 {
		return dataframe.DataFrame{}, fmt.Errorf("excel文件中没有工作表")
	}
	return convertSheetToDataFrame(xlFile.Sheets[0])
}

// convertSheetToDataFrame 将xlsx.Sheet转换为dataframe.DataFrame，
// 首行是标题行，短行用空串补齐
func convertSheetToDataFrame(sheet *xlsx.Sheet) (dataframe.DataFrame, error) {
	if len(sheet.Rows) == 0 {
		return dataframe.DataFrame{}, fmt.Errorf("工作表为空")
	}

	var headers []string
	for _, cell := range sheet.Rows[0].Cells {
		headers = append(headers, cell.Value)
	}
	if len(headers) == 0 {
		return dataframe.DataFrame{}, fmt.Errorf("工作表没有标题行")
	}

	columns := make([][]string, len(headers))
	for i := range columns {
		columns[i] = make([]string, 0, len(sheet.Rows)-1)
	}

	for _, row := range sheet.Rows[1:] {
		for i := range headers {
			v := ""
			if i < len(row.Cells) {
				v = row.Cells[i].Value
			}
			columns[i] = append(columns[i], v)
		}
	}

	seriesList := make([]series.Series, len(headers))
	for i, colName := range headers {
		seriesList[i] = series.New(columns[i], series.String, colName)
	}
	return dataframe.New(seriesList...), nil
}

// readXLS 旧版Excel格式，tealeg和excelize都不支持，单独走extrame/xls
func readXLS(filePath string) (dataframe.DataFrame, error) {
	wb, err := xls.Open(filePath, "utf-8")
	if err != nil {
		return dataframe.DataFrame{}, fmt.Errorf("xls open file false: %w", err)
	}

	sheet := wb.GetSheet(0)
	if sheet == nil || sheet.MaxRow == 0 {
		return dataframe.DataFrame{}, fmt.Errorf("xls文件中没有可用数据")
	}

	headerRow := sheet.Row(0)
	var headers []string
	for j := headerRow.FirstCol(); j <= headerRow.LastCol(); j++ {
		headers = append(headers, headerRow.Col(j))
	}
	if len(headers) == 0 {
		return dataframe.DataFrame{}, fmt.Errorf("xls工作表没有标题行")
	}

	columns := make([][]string, len(headers))
	for i := 1; i <= int(sheet.MaxRow); i++ {
		row := sheet.Row(i)
		if row == nil {
			continue
		}
		for j := range headers {
			columns[j] = append(columns[j], row.Col(j))
		}
	}

	// xls的稀疏行可能缺列，统一补齐到相同长度
	maxLen := 0
	for _, c := range columns {
		if len(c) > maxLen {
			maxLen = len(c)
		}
	}
	for i := range columns {
		for len(columns[i]) < maxLen {
			columns[i] = append(columns[i], "")
		}
	}

	seriesList := make([]series.Series, len(headers))
	for i, colName := range headers {
		seriesList[i] = series.New(columns[i], series.String, colName)
	}
	return dataframe.New(seriesList...), nil
}
