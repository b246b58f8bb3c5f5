// labels.go
package quality

import (
	"context"
	"math"
	"sort"

	"gonum.org/v1/gonum/stat"
)

// 各降级路径的说明文字，模板直接展示
const (
	noteTargetNotFound     = "target column not found"
	noteTargetNotCategoric = "label-issue detection requires a categorical target"
	noteInsufficientData   = "insufficient data for label-issue detection"
	noteDetectionCancelled = "label-issue detection cancelled"
)

// LabelIssue 一条疑似标注错误
type LabelIssue struct {
	RowIndex       int     `json:"row_index"`
	CurrentLabel   string  `json:"current_label"`
	SuggestedLabel string  `json:"suggested_label"`
	Confidence     float64 `json:"confidence"`
}

// LabelIssueReport 标签质量报告。
// Note非空表示检测被跳过或降级，此时计数为0。
type LabelIssueReport struct {
	IssueCount int          `json:"label_issue_count"`
	Note       string       `json:"note,omitempty"`
	Preview    []LabelIssue `json:"preview"`
}

// DetectLabelIssues 用交叉验证的朴素贝叶斯对目标列做折外预测，
// 模型对记录标签信心很低、而另一类别信心明显更高的行被标记。
// 不满足前置条件时返回零计数和对应说明，从不报错。
func (a *Analyzer) DetectLabelIssues(ctx context.Context, ds *Dataset, target string) *LabelIssueReport {
	targetCol, ok := ds.Column(target)
	if target == "" || !ok {
		return &LabelIssueReport{Note: noteTargetNotFound}
	}

	// 连续/高基数目标不适用：类别数需要足够小
	distinct := targetCol.DistinctCount()
	nrow := ds.NRow()
	categorical := distinct <= 20
	if !categorical && nrow > 0 {
		categorical = float64(distinct)/float64(nrow) <= 0.05
	}
	if !categorical {
		return &LabelIssueReport{Note: noteTargetNotCategoric}
	}

	if nrow < a.T.LabelMinRows || distinct < 2 {
		return &LabelIssueReport{Note: noteInsufficientData}
	}

	// 有标签的行才参与训练和检测
	var labeled []int
	for i := 0; i < nrow; i++ {
		if !targetCol.IsMissing(i) {
			labeled = append(labeled, i)
		}
	}
	if len(labeled) < a.T.LabelMinRows {
		return &LabelIssueReport{Note: noteInsufficientData}
	}

	folds := 5
	if folds > len(labeled) {
		folds = len(labeled)
	}

	report := &LabelIssueReport{}
	var issues []LabelIssue

	for f := 0; f < folds; f++ {
		if ctx.Err() != nil {
			return &LabelIssueReport{Note: noteDetectionCancelled}
		}

		var trainRows, testRows []int
		for j, row := range labeled {
			if j%folds == f {
				testRows = append(testRows, row)
			} else {
				trainRows = append(trainRows, row)
			}
		}
		if len(trainRows) == 0 {
			continue
		}

		model := trainNaiveBayes(ds, targetCol, trainRows)
		if len(model.classes) < 2 {
			continue
		}

		for _, row := range testRows {
			recorded := targetCol.Value(row)
			probs := model.predict(ds, row)

			bestClass, bestProb, recordedProb := "", 0.0, 0.0
			for _, c := range model.classes {
				p := probs[c]
				if p > bestProb {
					bestProb = p
					bestClass = c
				}
				if c == recorded {
					recordedProb = p
				}
			}

			// 记录标签的置信度很低，且另一类别至少高出一倍
			if bestClass != recorded && recordedProb < 0.35 && bestProb >= 2*recordedProb {
				issues = append(issues, LabelIssue{
					RowIndex:       row,
					CurrentLabel:   recorded,
					SuggestedLabel: bestClass,
					Confidence:     round2(bestProb),
				})
			}
		}
	}

	sort.Slice(issues, func(i, j int) bool { return issues[i].RowIndex < issues[j].RowIndex })
	report.IssueCount = len(issues)
	if len(issues) > a.T.LabelPreviewLimit {
		issues = issues[:a.T.LabelPreviewLimit]
	}
	report.Preview = issues
	return report
}

/******************** 朴素贝叶斯实现 ********************/

// 数值特征按类别估计高斯参数，分类特征按频率估计，
// 拉普拉斯平滑避免零概率。包内自实现，保证折间确定性。

type gaussianParam struct {
	mean float64
	std  float64
}

type nbClass struct {
	prior    float64
	gaussian map[string]gaussianParam  // 数值列 -> 参数
	counts   map[string]map[string]int // 分类列 -> 取值 -> 次数
	total    map[string]int            // 分类列 -> 样本数
}

type nbModel struct {
	classes  []string
	byClass  map[string]*nbClass
	features []*Column
	target   *Column
}

func trainNaiveBayes(ds *Dataset, target *Column, trainRows []int) *nbModel {
	model := &nbModel{byClass: make(map[string]*nbClass), target: target}

	for _, col := range ds.Columns() {
		if col.Name == target.Name || col.Kind == KindDatetime {
			continue
		}
		model.features = append(model.features, col)
	}

	grouped := make(map[string][]int)
	for _, row := range trainRows {
		grouped[target.Value(row)] = append(grouped[target.Value(row)], row)
	}
	for c := range grouped {
		model.classes = append(model.classes, c)
	}
	sort.Strings(model.classes)

	for _, c := range model.classes {
		rows := grouped[c]
		nc := &nbClass{
			prior:    float64(len(rows)) / float64(len(trainRows)),
			gaussian: make(map[string]gaussianParam),
			counts:   make(map[string]map[string]int),
			total:    make(map[string]int),
		}

		for _, col := range model.features {
			if col.Kind == KindNumeric {
				var values []float64
				for _, row := range rows {
					if v, ok := col.Float(row); ok {
						values = append(values, v)
					}
				}
				if len(values) == 0 {
					continue
				}
				mean, std := stat.MeanStdDev(values, nil)
				if math.IsNaN(std) || std < 1e-6 {
					std = 1e-6
				}
				nc.gaussian[col.Name] = gaussianParam{mean: mean, std: std}
				continue
			}

			counts := make(map[string]int)
			total := 0
			for _, row := range rows {
				if !col.IsMissing(row) {
					counts[col.Value(row)]++
					total++
				}
			}
			nc.counts[col.Name] = counts
			nc.total[col.Name] = total
		}

		model.byClass[c] = nc
	}

	return model
}

// predict 返回各类别的归一化后验概率
func (m *nbModel) predict(ds *Dataset, row int) map[string]float64 {
	logProbs := make([]float64, len(m.classes))

	for ci, c := range m.classes {
		nc := m.byClass[c]
		lp := math.Log(nc.prior)

		for _, col := range m.features {
			if col.IsMissing(row) {
				continue
			}
			if col.Kind == KindNumeric {
				v, ok := col.Float(row)
				if !ok {
					continue
				}
				p, exists := nc.gaussian[col.Name]
				if !exists {
					continue
				}
				z := (v - p.mean) / p.std
				lp += -0.5*z*z - math.Log(p.std) - 0.5*math.Log(2*math.Pi)
				continue
			}

			counts := nc.counts[col.Name]
			total := nc.total[col.Name]
			vocab := len(counts) + 1
			lp += math.Log(float64(counts[col.Value(row)]+1) / float64(total+vocab))
		}

		logProbs[ci] = lp
	}

	// softmax归一化，先平移避免下溢
	maxLP := logProbs[0]
	for _, lp := range logProbs[1:] {
		if lp > maxLP {
			maxLP = lp
		}
	}
	sum := 0.0
	probs := make(map[string]float64, len(m.classes))
	for ci, c := range m.classes {
		p := math.Exp(logProbs[ci] - maxLP)
		probs[c] = p
		sum += p
	}
	for c := range probs {
		probs[c] /= sum
	}
	return probs
}
