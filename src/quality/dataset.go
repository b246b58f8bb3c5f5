// dataset.go
package quality

import (
	"strconv"
	"strings"
	"time"

	"github.com/go-gota/gota/dataframe"
)

// ColumnKind 列的推断语义类型
type ColumnKind int

const (
	KindNumeric     ColumnKind = iota // 数值列
	KindCategorical                   // 分类/文本列
	KindDatetime                      // 时间列
	KindBoolean                       // 布尔列
)

func (k ColumnKind) String() string {
	switch k {
	case KindNumeric:
		return "numeric"
	case KindCategorical:
		return "categorical"
	case KindDatetime:
		return "datetime"
	case KindBoolean:
		return "boolean"
	default:
		return "unknown"
	}
}

// 缺失值标记集合，统一小写比较
var missingTokens = map[string]bool{
	"":     true,
	"null": true,
	"none": true,
	"nan":  true,
	"n/a":  true,
	"na":   true,
	"-":    true,
}

var boolTokens = map[string]bool{
	"true": true, "false": true,
	"yes": true, "no": true,
	"y": true, "n": true,
}

// 时间解析尝试的格式列表
var datetimeFormats = []string{
	"2006-01-02 15:04:05",
	"2006-01-02T15:04:05",
	"2006-01-02",
	"2006/01/02 15:04:05",
	"2006/01/02",
	"01/02/2006",
	"02-01-2006",
}

// Column 单列数据及其一次性推断出的类型信息
type Column struct {
	Name    string
	Kind    ColumnKind
	raw     []string  // 原始字符串值，按行对齐
	missing []bool    // 缺失标记
	numeric []float64 // 数值解析缓存
	numOK   []bool    // 对应单元格是否成功解析为数值
}

// Dataset 只读的列式数据集。类型推断在构建时完成一次，
// 之后所有分析器共享同一个快照，不再修改。
type Dataset struct {
	columns []*Column
	byName  map[string]*Column
	nrow    int
}

// NewDataset 从字符串形式的DataFrame构建类型化数据集
func NewDataset(df dataframe.DataFrame) *Dataset {
	names := df.Names()
	ds := &Dataset{
		byName: make(map[string]*Column, len(names)),
		nrow:   df.Nrow(),
	}

	for _, name := range names {
		raw := df.Col(name).Records()
		col := buildColumn(name, raw)
		ds.columns = append(ds.columns, col)
		ds.byName[name] = col
	}

	return ds
}

func buildColumn(name string, raw []string) *Column {
	col := &Column{
		Name:    name,
		raw:     raw,
		missing: make([]bool, len(raw)),
		numeric: make([]float64, len(raw)),
		numOK:   make([]bool, len(raw)),
	}

	numCount, boolCount, timeCount, present := 0, 0, 0, 0
	for i, v := range raw {
		if IsMissingToken(v) {
			col.missing[i] = true
			continue
		}
		present++

		if f, err := strconv.ParseFloat(strings.TrimSpace(v), 64); err == nil {
			col.numeric[i] = f
			col.numOK[i] = true
			numCount++
		}
		if boolTokens[normalizeToken(v)] {
			boolCount++
		}
		if parsesAsTime(v) {
			timeCount++
		}
	}

	col.Kind = inferKind(present, numCount, boolCount, timeCount)
	return col
}

// inferKind 按多数原则确定列类型：至少80%的非缺失值符合该类型
func inferKind(present, numCount, boolCount, timeCount int) ColumnKind {
	if present == 0 {
		return KindCategorical
	}
	threshold := (present*8 + 9) / 10 // ceil(0.8*present)
	switch {
	case boolCount >= threshold:
		return KindBoolean
	case numCount >= threshold:
		return KindNumeric
	case timeCount >= threshold:
		return KindDatetime
	default:
		return KindCategorical
	}
}

func parsesAsTime(v string) bool {
	s := strings.TrimSpace(v)
	for _, layout := range datetimeFormats {
		if _, err := time.Parse(layout, s); err == nil {
			return true
		}
	}
	return false
}

// IsMissingToken 判断原始单元格是否为缺失值
func IsMissingToken(v string) bool {
	return missingTokens[normalizeToken(v)]
}

func normalizeToken(v string) string {
	return strings.ToLower(strings.TrimSpace(v))
}

func (ds *Dataset) NRow() int { return ds.nrow }

func (ds *Dataset) NCol() int { return len(ds.columns) }

// ColumnNames 按原始顺序返回列名
func (ds *Dataset) ColumnNames() []string {
	names := make([]string, len(ds.columns))
	for i, c := range ds.columns {
		names[i] = c.Name
	}
	return names
}

func (ds *Dataset) Column(name string) (*Column, bool) {
	c, ok := ds.byName[name]
	return c, ok
}

func (ds *Dataset) Columns() []*Column { return ds.columns }

// Row 返回第i行的原始值，按列顺序
func (ds *Dataset) Row(i int) []string {
	row := make([]string, len(ds.columns))
	for j, c := range ds.columns {
		row[j] = c.raw[i]
	}
	return row
}

func (c *Column) IsMissing(i int) bool { return c.missing[i] }

// Value 第i行的原始字符串值
func (c *Column) Value(i int) string { return c.raw[i] }

// Float 第i行的数值，第二个返回值表示是否可用(非缺失且解析成功)
func (c *Column) Float(i int) (float64, bool) {
	if c.missing[i] || !c.numOK[i] {
		return 0, false
	}
	return c.numeric[i], true
}

// Floats 返回全部可解析的数值及其行号
func (c *Column) Floats() (values []float64, rows []int) {
	for i := range c.raw {
		if v, ok := c.Float(i); ok {
			values = append(values, v)
			rows = append(rows, i)
		}
	}
	return values, rows
}

// MissingCount 缺失单元格数量
func (c *Column) MissingCount() int {
	n := 0
	for _, m := range c.missing {
		if m {
			n++
		}
	}
	return n
}

// DistinctCount 非缺失值的去重数量
func (c *Column) DistinctCount() int {
	seen := make(map[string]struct{})
	for i, v := range c.raw {
		if !c.missing[i] {
			seen[v] = struct{}{}
		}
	}
	return len(seen)
}
