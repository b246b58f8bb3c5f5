// missing.go
package quality

import "sort"

// MissingColumnStat 单列的缺失统计
type MissingColumnStat struct {
	Column         string  `json:"column"`
	MissingCount   int     `json:"missing_count"`
	MissingPercent float64 `json:"missing_percent"`
}

// MissingReport 缺失值报告，只包含存在缺失的列，按缺失数降序排列
type MissingReport struct {
	Columns           []MissingColumnStat `json:"columns"`
	TotalMissingCells int                 `json:"total_missing_cells"`
}

// DetectMissing 统计每列的缺失值数量和占比。
// 空数据集返回空报告，占比定义为0而不是NaN。
func (a *Analyzer) DetectMissing(ds *Dataset) *MissingReport {
	report := &MissingReport{}
	nrow := ds.NRow()

	for _, col := range ds.Columns() {
		count := col.MissingCount()
		report.TotalMissingCells += count
		if count == 0 {
			continue
		}

		percent := 0.0
		if nrow > 0 {
			percent = round2(float64(count) / float64(nrow) * 100)
		}
		report.Columns = append(report.Columns, MissingColumnStat{
			Column:         col.Name,
			MissingCount:   count,
			MissingPercent: percent,
		})
	}

	// 缺失最多的列排在最前，数量相同时保持原始列顺序
	sort.SliceStable(report.Columns, func(i, j int) bool {
		return report.Columns[i].MissingCount > report.Columns[j].MissingCount
	})

	return report
}
