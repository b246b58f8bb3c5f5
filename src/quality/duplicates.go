// duplicates.go
package quality

import (
	"crypto/md5"
	"encoding/hex"
	"strconv"
	"strings"
	"time"
)

// DuplicateRow 预览中的一条重复行
type DuplicateRow struct {
	RowIndex int      `json:"row_index"`
	Values   []string `json:"values"`
}

// DuplicateReport 重复行报告
type DuplicateReport struct {
	DuplicateCount   int            `json:"duplicate_rows_count"`
	DuplicatePercent float64        `json:"duplicate_rows_percent"`
	Preview          []DuplicateRow `json:"preview"`
}

// DetectDuplicates 检测完全重复的行。每组相同内容的行中，
// 首次出现的视为原始行，其后的每次出现计为一条重复。
// 预览按原始行号顺序给出前若干条重复行。
func (a *Analyzer) DetectDuplicates(ds *Dataset) *DuplicateReport {
	report := &DuplicateReport{}
	nrow := ds.NRow()
	if nrow == 0 {
		return report
	}

	seen := make(map[string]bool, nrow)
	for i := 0; i < nrow; i++ {
		key := rowKey(ds, i)
		if seen[key] {
			report.DuplicateCount++
			if len(report.Preview) < a.T.DuplicatePreviewLimit {
				report.Preview = append(report.Preview, DuplicateRow{
					RowIndex: i,
					Values:   ds.Row(i),
				})
			}
			continue
		}
		seen[key] = true
	}

	report.DuplicatePercent = round2(float64(report.DuplicateCount) / float64(nrow) * 100)
	return report
}

// rowKey 行内容的规范化摘要，类型感知：
// 数值按解析后的值比较，时间统一格式，其余按原始字符串。
func rowKey(ds *Dataset, i int) string {
	parts := make([]string, 0, ds.NCol())
	for _, col := range ds.Columns() {
		parts = append(parts, canonicalCell(col, i))
	}
	sum := md5.Sum([]byte(strings.Join(parts, "\x1f")))
	return hex.EncodeToString(sum[:])
}

func canonicalCell(col *Column, i int) string {
	if col.IsMissing(i) {
		return "\x00NA"
	}
	switch col.Kind {
	case KindNumeric:
		if v, ok := col.Float(i); ok {
			return strconv.FormatFloat(v, 'g', -1, 64)
		}
	case KindDatetime:
		s := strings.TrimSpace(col.Value(i))
		for _, layout := range datetimeFormats {
			if t, err := time.Parse(layout, s); err == nil {
				return t.UTC().Format("2006-01-02 15:04:05")
			}
		}
	case KindBoolean:
		return strings.ToLower(strings.TrimSpace(col.Value(i)))
	}
	return col.Value(i)
}
