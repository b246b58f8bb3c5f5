// analyzer.go
package quality

import "math"

// Thresholds 各分析器使用的阈值参数，通常来自qualityconfig.json
type Thresholds struct {
	DuplicatePreviewLimit int      // 重复行预览条数上限
	LabelPreviewLimit     int      // 标签问题预览条数上限
	IQRMultiplier         float64  // 统计离群点的IQR倍数
	SemanticPercentile    float64  // 语义离群点的分位数门限
	SemanticMinRows       int      // 语义检测所需最少行数
	LabelMinRows          int      // 标签检测所需最少行数
	MaxTargetCardinality  int      // 可作为分类目标的最大类别数
	TargetNameTokens      []string // 目标列名称词表
}

// DefaultThresholds 参考实现使用的默认参数
func DefaultThresholds() Thresholds {
	return Thresholds{
		DuplicatePreviewLimit: 5,
		LabelPreviewLimit:     5,
		IQRMultiplier:         1.5,
		SemanticPercentile:    0.95,
		SemanticMinRows:       20,
		LabelMinRows:          5,
		MaxTargetCardinality:  10,
		TargetNameTokens: []string{
			"label", "target", "class", "outcome", "y", "category", "result",
		},
	}
}

// Analyzer 数据质量分析器。方法均为数据集上的纯函数，
// 同一个Analyzer可以被多个goroutine并发使用。
type Analyzer struct {
	T Thresholds
}

func NewAnalyzer(t Thresholds) *Analyzer {
	if t.DuplicatePreviewLimit <= 0 {
		t.DuplicatePreviewLimit = 5
	}
	if t.LabelPreviewLimit <= 0 {
		t.LabelPreviewLimit = 5
	}
	if t.IQRMultiplier <= 0 {
		t.IQRMultiplier = 1.5
	}
	if t.SemanticPercentile <= 0 || t.SemanticPercentile >= 1 {
		t.SemanticPercentile = 0.95
	}
	if t.SemanticMinRows <= 0 {
		t.SemanticMinRows = 20
	}
	if t.LabelMinRows <= 0 {
		t.LabelMinRows = 5
	}
	if t.MaxTargetCardinality <= 0 {
		t.MaxTargetCardinality = 10
	}
	if len(t.TargetNameTokens) == 0 {
		t.TargetNameTokens = DefaultThresholds().TargetNameTokens
	}
	return &Analyzer{T: t}
}

// round2 百分比统一保留两位小数
func round2(v float64) float64 {
	return math.Round(v*100) / 100
}
