// target.go
package quality

import "strings"

// TargetSelection 目标列的解析结果。
// Column为空表示没有找到合适的目标列。
type TargetSelection struct {
	Column string `json:"column"`
	Manual bool   `json:"manual"`
}

// ResolveTarget 确定预测目标列。
// 手动指定的列名只要存在就直接生效，不参与打分；
// 否则对每列按启发式打分：低基数加分，名称命中词表加分，
// 平分时偏向靠后的列。对相同输入结果完全确定。
func (a *Analyzer) ResolveTarget(ds *Dataset, override string) TargetSelection {
	if override != "" {
		if _, ok := ds.Column(override); ok {
			return TargetSelection{Column: override, Manual: true}
		}
	}

	nrow := ds.NRow()
	bestScore := -1
	bestName := ""
	anyLowCardinality := false

	for _, col := range ds.Columns() {
		score := 0

		distinct := col.DistinctCount()
		if distinct >= 2 && nrow > 0 {
			ratio := float64(distinct) / float64(nrow)
			if distinct <= a.T.MaxTargetCardinality || ratio <= 0.2 {
				score += 2
				anyLowCardinality = true
			}
		}

		name := strings.ToLower(strings.TrimSpace(col.Name))
		for _, token := range a.T.TargetNameTokens {
			if name == token {
				score += 3
				break
			}
			if strings.Contains(name, token) && len(token) > 1 {
				score += 1
				break
			}
		}

		// >=使得平分时靠后的列胜出
		if score >= bestScore {
			bestScore = score
			bestName = col.Name
		}
	}

	if !anyLowCardinality && ds.NCol() < 2 {
		return TargetSelection{}
	}
	return TargetSelection{Column: bestName}
}
