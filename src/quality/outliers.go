// outliers.go
package quality

import (
	"context"
	"fmt"
	"math"
	"sort"

	"gonum.org/v1/gonum/stat"
)

// 合并视图中的类别标签，模板按名字绑定，保持稳定
const (
	CategoryStatistical = "Statistical"
	CategoryAI          = "AI-Based"
	CategoryStructural  = "Structural"
)

// TaggedOutlierRow 合并后的离群行：同一行被多种方法命中时，
// 每种方法各出现一条，保留方法来源。
type TaggedOutlierRow struct {
	RowIndex int      `json:"row_index"`
	Category string   `json:"category"`
	Values   []string `json:"values"`
}

// OutlierReport 三种检测方法的结果及合并视图
type OutlierReport struct {
	StructuralIndices  []int              `json:"structural_indices"`
	StatisticalIndices []int              `json:"statistical_indices"`
	SemanticIndices    []int              `json:"semantic_indices"`
	StructuralCount    int                `json:"structural_count"`
	StatisticalCount   int                `json:"statistical_count"`
	SemanticCount      int                `json:"semantic_count"`
	TotalUnique        int                `json:"total_unique_outliers"`
	TaggedRows         []TaggedOutlierRow `json:"tagged_rows"`
	Notes              []string           `json:"notes,omitempty"`
}

// DetectOutliers 依次运行结构/统计/语义三种检测。
// 单个检测器失败只降级自身(空集+说明)，不影响其余检测器和整体报告。
func (a *Analyzer) DetectOutliers(ctx context.Context, ds *Dataset) *OutlierReport {
	report := &OutlierReport{}

	report.StructuralIndices = a.runDetector("structural", report, func() ([]int, error) {
		return a.structuralOutliers(ds), nil
	})
	report.StatisticalIndices = a.runDetector("statistical", report, func() ([]int, error) {
		return a.statisticalOutliers(ds), nil
	})
	report.SemanticIndices = a.runDetector("semantic", report, func() ([]int, error) {
		return a.semanticOutliers(ctx, ds)
	})

	report.StructuralCount = len(report.StructuralIndices)
	report.StatisticalCount = len(report.StatisticalIndices)
	report.SemanticCount = len(report.SemanticIndices)

	union := make(map[int]struct{})
	for _, set := range [][]int{report.StructuralIndices, report.StatisticalIndices, report.SemanticIndices} {
		for _, idx := range set {
			union[idx] = struct{}{}
		}
	}
	report.TotalUnique = len(union)

	// 合并视图一次性构建：统计、AI、结构的顺序与页面展示一致
	report.TaggedRows = buildTaggedRows(ds, report)
	return report
}

// runDetector 检测器隔离边界：panic和错误都转成降级结果
func (a *Analyzer) runDetector(name string, report *OutlierReport, fn func() ([]int, error)) (indices []int) {
	defer func() {
		if r := recover(); r != nil {
			indices = nil
			report.Notes = append(report.Notes, fmt.Sprintf("%s detector failed: %v", name, r))
		}
	}()

	indices, err := fn()
	if err != nil {
		report.Notes = append(report.Notes, fmt.Sprintf("%s detector unavailable: %v", name, err))
		return nil
	}
	sort.Ints(indices)
	return indices
}

// structuralOutliers 检测违反数据集自身模式的行：
// 推断类型列中无法按该类型解析的值，以及有效字段数明显偏低的行。
// 这类问题通常来自导入和格式错误，而不是统计意义上的极端值。
func (a *Analyzer) structuralOutliers(ds *Dataset) []int {
	flagged := make(map[int]struct{})
	nrow := ds.NRow()
	if nrow == 0 {
		return nil
	}

	for _, col := range ds.Columns() {
		for i := 0; i < nrow; i++ {
			if col.IsMissing(i) {
				continue
			}
			switch col.Kind {
			case KindNumeric:
				if _, ok := col.Float(i); !ok {
					flagged[i] = struct{}{}
				}
			case KindDatetime:
				if !parsesAsTime(col.Value(i)) {
					flagged[i] = struct{}{}
				}
			case KindBoolean:
				if !boolTokens[normalizeToken(col.Value(i))] {
					flagged[i] = struct{}{}
				}
			}
		}
	}

	// 行有效字段数异常：少于全数据集中位数的一半
	populated := make([]float64, nrow)
	for i := 0; i < nrow; i++ {
		n := 0
		for _, col := range ds.Columns() {
			if !col.IsMissing(i) {
				n++
			}
		}
		populated[i] = float64(n)
	}
	sorted := append([]float64(nil), populated...)
	sort.Float64s(sorted)
	median := stat.Quantile(0.5, stat.Empirical, sorted, nil)
	if median > 0 {
		for i := 0; i < nrow; i++ {
			if populated[i] < median/2 {
				flagged[i] = struct{}{}
			}
		}
	}

	return setToSlice(flagged)
}

// statisticalOutliers 对每个数值列计算四分位距围栏，
// 超出[Q1-k*IQR, Q3+k*IQR]的行进入结果，各列取并集。
// 零方差列(IQR=0)不产生任何标记；可解析数值少于4个的列跳过。
func (a *Analyzer) statisticalOutliers(ds *Dataset) []int {
	flagged := make(map[int]struct{})

	for _, col := range ds.Columns() {
		if col.Kind != KindNumeric {
			continue
		}
		values, rows := col.Floats()
		if len(values) < 4 {
			continue
		}

		sorted := append([]float64(nil), values...)
		sort.Float64s(sorted)
		q1 := stat.Quantile(0.25, stat.Empirical, sorted, nil)
		q3 := stat.Quantile(0.75, stat.Empirical, sorted, nil)
		iqr := q3 - q1
		if iqr == 0 {
			continue
		}

		lo := q1 - a.T.IQRMultiplier*iqr
		hi := q3 + a.T.IQRMultiplier*iqr
		for j, v := range values {
			if v < lo || v > hi {
				flagged[rows[j]] = struct{}{}
			}
		}
	}

	return setToSlice(flagged)
}

// semanticOutliers 基于全部可用列的联合异常分数：
// 数值列标准化，分类列按取值频率编码，距离明显偏大的行被标记。
// 无随机成分，结果对相同输入完全确定。
func (a *Analyzer) semanticOutliers(ctx context.Context, ds *Dataset) ([]int, error) {
	nrow := ds.NRow()
	if nrow < a.T.SemanticMinRows {
		return nil, nil
	}

	type feature struct {
		numeric bool
		mean    float64
		std     float64
		col     *Column
		freq    map[string]float64
	}

	var features []feature
	for _, col := range ds.Columns() {
		switch col.Kind {
		case KindNumeric:
			values, _ := col.Floats()
			if len(values) < 2 {
				continue
			}
			mean, std := stat.MeanStdDev(values, nil)
			if std == 0 {
				continue
			}
			features = append(features, feature{numeric: true, mean: mean, std: std, col: col})
		case KindCategorical, KindBoolean:
			freq := make(map[string]float64)
			present := 0
			for i := 0; i < nrow; i++ {
				if !col.IsMissing(i) {
					freq[col.Value(i)]++
					present++
				}
			}
			if present == 0 || len(freq) < 2 {
				continue
			}
			for k := range freq {
				freq[k] /= float64(present)
			}
			features = append(features, feature{col: col, freq: freq})
		}
	}
	if len(features) == 0 {
		return nil, nil
	}

	scores := make([]float64, nrow)
	for i := 0; i < nrow; i++ {
		if i%256 == 0 {
			if err := ctx.Err(); err != nil {
				return nil, err
			}
		}
		sum := 0.0
		for _, f := range features {
			if f.col.IsMissing(i) {
				continue
			}
			if f.numeric {
				if v, ok := f.col.Float(i); ok {
					z := (v - f.mean) / f.std
					sum += z * z
				}
				continue
			}
			// 罕见取值贡献更高的分数
			rarity := 1 - f.freq[f.col.Value(i)]
			sum += rarity * rarity
		}
		scores[i] = math.Sqrt(sum / float64(len(features)))
	}

	sorted := append([]float64(nil), scores...)
	sort.Float64s(sorted)
	fence := stat.Quantile(a.T.SemanticPercentile, stat.Empirical, sorted, nil)

	flagged := make(map[int]struct{})
	for i, s := range scores {
		if s > fence {
			flagged[i] = struct{}{}
		}
	}
	return setToSlice(flagged), nil
}

func buildTaggedRows(ds *Dataset, report *OutlierReport) []TaggedOutlierRow {
	var rows []TaggedOutlierRow
	appendRows := func(indices []int, category string) {
		for _, idx := range indices {
			rows = append(rows, TaggedOutlierRow{
				RowIndex: idx,
				Category: category,
				Values:   ds.Row(idx),
			})
		}
	}
	appendRows(report.StatisticalIndices, CategoryStatistical)
	appendRows(report.SemanticIndices, CategoryAI)
	appendRows(report.StructuralIndices, CategoryStructural)
	return rows
}

func setToSlice(set map[int]struct{}) []int {
	if len(set) == 0 {
		return nil
	}
	out := make([]int, 0, len(set))
	for idx := range set {
		out = append(out, idx)
	}
	sort.Ints(out)
	return out
}
