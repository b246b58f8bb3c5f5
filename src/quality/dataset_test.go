package quality

import (
	"testing"

	"github.com/go-gota/gota/dataframe"
	"github.com/go-gota/gota/series"
)

// newTestDataset 用二维字符串构建数据集，首行是列名
func newTestDataset(records [][]string) *Dataset {
	df := dataframe.LoadRecords(records,
		dataframe.DetectTypes(false),
		dataframe.DefaultType(series.String))
	return NewDataset(df)
}

func TestInferKind(t *testing.T) {
	ds := newTestDataset([][]string{
		{"num", "cat", "flag", "when"},
		{"1", "apple", "yes", "2024-01-01"},
		{"2.5", "pear", "no", "2024-01-02"},
		{"3", "apple", "yes", "2024-01-03"},
		{"-4", "plum", "no", "2024-01-04"},
		{"5", "pear", "yes", "2024-01-05"},
	})

	cases := map[string]ColumnKind{
		"num":  KindNumeric,
		"cat":  KindCategorical,
		"flag": KindBoolean,
		"when": KindDatetime,
	}
	for name, want := range cases {
		col, ok := ds.Column(name)
		if !ok {
			t.Fatalf("列%s不存在", name)
		}
		if col.Kind != want {
			t.Errorf("列%s类型 = %v, 期望 %v", name, col.Kind, want)
		}
	}
}

func TestInferKindMajority(t *testing.T) {
	// 5个非缺失值里有4个数值，刚好达到80%阈值
	ds := newTestDataset([][]string{
		{"v"},
		{"1"}, {"2"}, {"3"}, {"4"}, {"oops"},
	})
	col, _ := ds.Column("v")
	if col.Kind != KindNumeric {
		t.Errorf("80%%数值应推断为numeric, 得到 %v", col.Kind)
	}

	// 3/5就不够了
	ds = newTestDataset([][]string{
		{"v"},
		{"1"}, {"2"}, {"3"}, {"x"}, {"y"},
	})
	col, _ = ds.Column("v")
	if col.Kind != KindCategorical {
		t.Errorf("60%%数值应推断为categorical, 得到 %v", col.Kind)
	}
}

func TestMissingTokens(t *testing.T) {
	for _, v := range []string{"", "null", "NULL", "None", "NaN", "n/a", "NA", "-", "  "} {
		if !IsMissingToken(v) {
			t.Errorf("%q 应判定为缺失", v)
		}
	}
	for _, v := range []string{"0", "false", "nil?", "--", "n/a/b"} {
		if IsMissingToken(v) {
			t.Errorf("%q 不应判定为缺失", v)
		}
	}
}

func TestColumnAccessors(t *testing.T) {
	ds := newTestDataset([][]string{
		{"v"},
		{"1.5"}, {"null"}, {"abc"}, {"1.5"},
	})
	col, _ := ds.Column("v")

	if got := col.MissingCount(); got != 1 {
		t.Errorf("MissingCount = %d, 期望 1", got)
	}
	if !col.IsMissing(1) {
		t.Error("第1行应为缺失")
	}
	if _, ok := col.Float(1); ok {
		t.Error("缺失单元格不应返回数值")
	}
	if _, ok := col.Float(2); ok {
		t.Error("非数值单元格不应返回数值")
	}
	if v, ok := col.Float(0); !ok || v != 1.5 {
		t.Errorf("Float(0) = %v,%v, 期望 1.5,true", v, ok)
	}
	// 去重不含缺失值: {"1.5", "abc"}
	if got := col.DistinctCount(); got != 2 {
		t.Errorf("DistinctCount = %d, 期望 2", got)
	}

	values, rows := col.Floats()
	if len(values) != 2 || len(rows) != 2 {
		t.Fatalf("Floats数量 = %d/%d, 期望 2/2", len(values), len(rows))
	}
	if rows[0] != 0 || rows[1] != 3 {
		t.Errorf("Floats行号 = %v, 期望 [0 3]", rows)
	}
}

func TestDatasetShape(t *testing.T) {
	ds := newTestDataset([][]string{
		{"a", "b"},
		{"1", "x"},
		{"2", "y"},
	})
	if ds.NRow() != 2 || ds.NCol() != 2 {
		t.Errorf("形状 = %dx%d, 期望 2x2", ds.NRow(), ds.NCol())
	}
	names := ds.ColumnNames()
	if len(names) != 2 || names[0] != "a" || names[1] != "b" {
		t.Errorf("列名 = %v", names)
	}
	row := ds.Row(1)
	if row[0] != "2" || row[1] != "y" {
		t.Errorf("Row(1) = %v", row)
	}
}
