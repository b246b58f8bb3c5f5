// report.go
package quality

import (
	"context"
	"strings"
	"sync"
	"time"
)

// ReportOptions 单次报告生成的外部输入。
// 手动目标列由调用方逐次传入，核心不保存这个状态。
type ReportOptions struct {
	TargetOverride  string // 手动指定的目标列，空表示自动推断
	ProfileHTMLPath string // 外部概览文档路径，空表示未生成
}

// QualityReport 聚合后的质量报告。字段名是对外契约，
// 模板按名字绑定，不能随意改动。每次请求都重新构建，核心不缓存。
type QualityReport struct {
	Missing         *MissingReport        `json:"missing"`
	Duplicates      *DuplicateReport      `json:"duplicates"`
	Outliers        *OutlierReport        `json:"outliers"`
	LabelIssues     *LabelIssueReport     `json:"label_issues"`
	ProfileOverview *ProfileOverviewStats `json:"profile_overview"`
	ProfileNote     string                `json:"profile_note,omitempty"`
	TargetColumn    string                `json:"target_column"`
	TargetManual    bool                  `json:"target_manual"`
	Columns         []string              `json:"columns"`
	GeneratedAt     time.Time             `json:"generated_at"`
}

// GenerateReport 对数据集运行全部分析并组装报告。
// 各分析器之间没有顺序依赖，这里并发展开；
// 只有标签检测要等目标列解析完成。数据集加载失败之外的
// 任何条件都不会让报告生成失败，最多得到降级的字段。
func (a *Analyzer) GenerateReport(ctx context.Context, ds *Dataset, opts ReportOptions) *QualityReport {
	report := &QualityReport{
		Columns:     ds.ColumnNames(),
		GeneratedAt: time.Now(),
	}

	var wg sync.WaitGroup
	wg.Add(4)

	go func() {
		defer wg.Done()
		report.Missing = a.DetectMissing(ds)
	}()
	go func() {
		defer wg.Done()
		report.Duplicates = a.DetectDuplicates(ds)
	}()
	go func() {
		defer wg.Done()
		report.Outliers = a.DetectOutliers(ctx, ds)
	}()
	go func() {
		defer wg.Done()
		// 外部文档未生成时跳过提取，全部字段保持不可用
		if opts.ProfileHTMLPath == "" {
			report.ProfileOverview = &ProfileOverviewStats{}
			return
		}
		stats, err := ExtractProfileStats(opts.ProfileHTMLPath)
		report.ProfileOverview = stats
		if err != nil {
			// 文档不可读记入报告，由服务层写日志
			report.ProfileNote = err.Error()
		}
	}()

	// 标签检测依赖目标列，串行在当前goroutine完成
	selection := a.ResolveTarget(ds, opts.TargetOverride)
	report.TargetColumn = selection.Column
	report.TargetManual = selection.Manual
	report.LabelIssues = a.DetectLabelIssues(ctx, ds, selection.Column)

	wg.Wait()
	return report
}

// FilterOutlierRows 按类别筛选合并视图，纯查询不修改报告。
// 选择器取值 all/statistical/ai/structural，无法识别的值按all处理。
func FilterOutlierRows(report *OutlierReport, selector string) []TaggedOutlierRow {
	if report == nil {
		return nil
	}

	var want string
	switch strings.ToLower(strings.TrimSpace(selector)) {
	case "statistical":
		want = CategoryStatistical
	case "ai":
		want = CategoryAI
	case "structural":
		want = CategoryStructural
	default:
		return report.TaggedRows
	}

	var filtered []TaggedOutlierRow
	for _, row := range report.TaggedRows {
		if row.Category == want {
			filtered = append(filtered, row)
		}
	}
	return filtered
}
