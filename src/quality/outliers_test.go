package quality

import (
	"context"
	"strconv"
	"strings"
	"testing"
)

func TestStatisticalOutliers(t *testing.T) {
	a := NewAnalyzer(DefaultThresholds())
	ds := newTestDataset([][]string{
		{"v"},
		{"1"}, {"2"}, {"3"}, {"4"}, {"100"},
	})

	report := a.DetectOutliers(context.Background(), ds)

	if len(report.StatisticalIndices) != 1 || report.StatisticalIndices[0] != 4 {
		t.Errorf("StatisticalIndices = %v, 期望 [4]", report.StatisticalIndices)
	}
	if report.StatisticalCount != 1 {
		t.Errorf("StatisticalCount = %d, 期望 1", report.StatisticalCount)
	}
}

// 零方差列不产生任何统计离群点
func TestStatisticalOutliersZeroIQR(t *testing.T) {
	a := NewAnalyzer(DefaultThresholds())
	ds := newTestDataset([][]string{
		{"v"},
		{"5"}, {"5"}, {"5"}, {"5"}, {"5"},
	})

	report := a.DetectOutliers(context.Background(), ds)
	if len(report.StatisticalIndices) != 0 {
		t.Errorf("零方差列不应有离群点, 得到 %v", report.StatisticalIndices)
	}
}

// 可解析数值少于4个的列整体跳过
func TestStatisticalOutliersTooFewValues(t *testing.T) {
	a := NewAnalyzer(DefaultThresholds())
	ds := newTestDataset([][]string{
		{"v"},
		{"1"}, {"2"}, {"1000"},
	})

	report := a.DetectOutliers(context.Background(), ds)
	if len(report.StatisticalIndices) != 0 {
		t.Errorf("样本过少不应有统计离群点, 得到 %v", report.StatisticalIndices)
	}
}

// 数值列里解析失败的值属于结构问题，不是统计问题
func TestStructuralOutliersParseViolation(t *testing.T) {
	a := NewAnalyzer(DefaultThresholds())
	ds := newTestDataset([][]string{
		{"v"},
		{"1"}, {"2"}, {"3"}, {"4"}, {"oops"},
	})

	report := a.DetectOutliers(context.Background(), ds)

	if len(report.StructuralIndices) != 1 || report.StructuralIndices[0] != 4 {
		t.Errorf("StructuralIndices = %v, 期望 [4]", report.StructuralIndices)
	}
	if len(report.StatisticalIndices) != 0 {
		t.Errorf("StatisticalIndices = %v, 期望空", report.StatisticalIndices)
	}
}

// 有效字段数远低于中位数的行被标记为结构离群
func TestStructuralOutliersSparseRow(t *testing.T) {
	a := NewAnalyzer(DefaultThresholds())
	ds := newTestDataset([][]string{
		{"a", "b", "c", "d"},
		{"p", "q", "r", "s"},
		{"p", "q", "r", "s"},
		{"x", "", "", ""},
		{"p", "q", "r", "s"},
		{"p", "q", "r", "s"},
	})

	report := a.DetectOutliers(context.Background(), ds)
	found := false
	for _, idx := range report.StructuralIndices {
		if idx == 2 {
			found = true
		}
	}
	if !found {
		t.Errorf("稀疏行2应被标记, StructuralIndices = %v", report.StructuralIndices)
	}
}

// 语义检测：罕见取值的行分数明显偏高
func TestSemanticOutliersRareValue(t *testing.T) {
	a := NewAnalyzer(DefaultThresholds())
	records := [][]string{{"c"}}
	for i := 0; i < 20; i++ {
		records = append(records, []string{"common"})
	}
	records = append(records, []string{"rare"})
	ds := newTestDataset(records)

	report := a.DetectOutliers(context.Background(), ds)

	if len(report.SemanticIndices) != 1 || report.SemanticIndices[0] != 20 {
		t.Errorf("SemanticIndices = %v, 期望 [20]", report.SemanticIndices)
	}

	// 无随机成分，重复运行结果一致
	again := a.DetectOutliers(context.Background(), ds)
	if len(again.SemanticIndices) != len(report.SemanticIndices) {
		t.Error("语义检测结果不确定")
	}
}

// 行数不足时语义检测静默跳过，不算失败
func TestSemanticOutliersMinRows(t *testing.T) {
	a := NewAnalyzer(DefaultThresholds())
	ds := newTestDataset([][]string{
		{"c"},
		{"a"}, {"a"}, {"b"},
	})

	report := a.DetectOutliers(context.Background(), ds)
	if len(report.SemanticIndices) != 0 {
		t.Errorf("行数不足不应有语义离群点, 得到 %v", report.SemanticIndices)
	}
	if len(report.Notes) != 0 {
		t.Errorf("静默跳过不应产生说明, 得到 %v", report.Notes)
	}
}

// 取消上下文只降级语义检测，其余检测器照常
func TestSemanticOutliersCancelled(t *testing.T) {
	a := NewAnalyzer(DefaultThresholds())
	records := [][]string{{"v"}}
	for i := 0; i < 25; i++ {
		records = append(records, []string{strconv.Itoa(i % 3)})
	}
	ds := newTestDataset(records)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	report := a.DetectOutliers(ctx, ds)
	if len(report.SemanticIndices) != 0 {
		t.Errorf("取消后不应有语义结果, 得到 %v", report.SemanticIndices)
	}
	noted := false
	for _, n := range report.Notes {
		if strings.Contains(n, "semantic") {
			noted = true
		}
	}
	if !noted {
		t.Errorf("取消应记录在Notes里, 得到 %v", report.Notes)
	}
}

func TestOutlierUnionAndTags(t *testing.T) {
	a := NewAnalyzer(DefaultThresholds())
	// 行4既是统计离群(1000)又是结构离群(b列解析失败)
	ds := newTestDataset([][]string{
		{"v", "b"},
		{"1", "2024-01-01"},
		{"2", "2024-01-02"},
		{"3", "2024-01-03"},
		{"4", "2024-01-04"},
		{"1000", "not-a-date"},
	})

	report := a.DetectOutliers(context.Background(), ds)

	if report.TotalUnique != 1 {
		t.Errorf("TotalUnique = %d, 期望 1", report.TotalUnique)
	}
	if report.StatisticalCount+report.StructuralCount != 2 {
		t.Errorf("各方法计数之和 = %d, 期望 2",
			report.StatisticalCount+report.StructuralCount)
	}

	// 合并视图里同一行对两种方法各出现一条，统计类在前
	if len(report.TaggedRows) != 2 {
		t.Fatalf("TaggedRows条数 = %d, 期望 2", len(report.TaggedRows))
	}
	if report.TaggedRows[0].Category != CategoryStatistical {
		t.Errorf("首条类别 = %s, 期望 %s", report.TaggedRows[0].Category, CategoryStatistical)
	}
	if report.TaggedRows[1].Category != CategoryStructural {
		t.Errorf("末条类别 = %s, 期望 %s", report.TaggedRows[1].Category, CategoryStructural)
	}
	for _, row := range report.TaggedRows {
		if row.RowIndex != 4 {
			t.Errorf("合并视图行号 = %d, 期望 4", row.RowIndex)
		}
		if len(row.Values) != ds.NCol() {
			t.Errorf("合并视图值数量 = %d, 期望 %d", len(row.Values), ds.NCol())
		}
	}
}
