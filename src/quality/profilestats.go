// profilestats.go
package quality

import (
	"encoding/json"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/PuerkitoBio/goquery"

	"DatasetQuality/src/utils"
)

// OverviewMetric 概览文档中的单个指标。
// Valid为false表示文档里没有找到该指标，序列化为"N/A"，
// 绝不输出一个悄悄错误的数字。
type OverviewMetric struct {
	Value float64
	Valid bool
}

func (m OverviewMetric) MarshalJSON() ([]byte, error) {
	if !m.Valid {
		return json.Marshal("N/A")
	}
	return json.Marshal(m.Value)
}

func (m OverviewMetric) String() string {
	if !m.Valid {
		return "N/A"
	}
	return strconv.FormatFloat(m.Value, 'f', -1, 64)
}

// ProfileOverviewStats 从外部生成的概览报告中提取的汇总指标。
// 每个字段相互独立，缺哪个就标记哪个不可用。
type ProfileOverviewStats struct {
	MissingCells         OverviewMetric `json:"missing_cells"`
	MissingCellsPercent  OverviewMetric `json:"missing_cells_percent"`
	DuplicateRows        OverviewMetric `json:"duplicate_rows"`
	DuplicateRowsPercent OverviewMetric `json:"duplicate_rows_percent"`
}

// ExtractProfileStats 在已生成的概览HTML文档里查找固定的几个指标。
// 单个指标缺失不算错误；只有文档整体不可读时返回error，
// 此时所有字段均为不可用。
func ExtractProfileStats(htmlPath string) (*ProfileOverviewStats, error) {
	stats := &ProfileOverviewStats{}

	f, err := os.Open(htmlPath)
	if err != nil {
		return stats, fmt.Errorf("打开概览文档失败: %w", err)
	}
	defer f.Close()

	doc, err := goquery.NewDocumentFromReader(f)
	if err != nil {
		return stats, fmt.Errorf("解析概览文档失败: %w", err)
	}

	targets := map[string]*OverviewMetric{
		"Missing cells":      &stats.MissingCells,
		"Missing cells (%)":  &stats.MissingCellsPercent,
		"Duplicate rows":     &stats.DuplicateRows,
		"Duplicate rows (%)": &stats.DuplicateRowsPercent,
	}

	doc.Find("th").Each(func(_ int, th *goquery.Selection) {
		label := strings.TrimSpace(th.Text())
		metric, wanted := targets[label]
		if !wanted || metric.Valid {
			return
		}

		cell := th.Siblings().Filter("td").First()
		if cell.Length() == 0 {
			return
		}
		if v, ok := parseOverviewNumber(cell.Text()); ok {
			metric.Value = v
			metric.Valid = true
		}
	})

	return stats, nil
}

// parseOverviewNumber 容忍"1,234"、"5.2%"、"< 0.1%"这类展示格式
func parseOverviewNumber(s string) (float64, bool) {
	for _, cut := range []string{"<", ">", " ", "\u00a0"} {
		s = strings.ReplaceAll(s, cut, "")
	}
	return utils.ParseFloatLoose(s)
}
