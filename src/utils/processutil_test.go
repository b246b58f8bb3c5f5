package utils

import "testing"

func TestContains(t *testing.T) {
	if !Contains([]string{"csv", "xlsx"}, "csv") {
		t.Error("应包含csv")
	}
	if Contains([]string{"csv", "xlsx"}, "txt") {
		t.Error("不应包含txt")
	}
	if !Contains([]int{1, 2, 3}, 2) {
		t.Error("应包含2")
	}
	if Contains([]int{}, 1) {
		t.Error("空切片不应包含任何元素")
	}
}

func TestParseFloatLoose(t *testing.T) {
	cases := []struct {
		in string
		v  float64
		ok bool
	}{
		{"1.5", 1.5, true},
		{" 42 ", 42, true},
		{"1,234.5", 1234.5, true},
		{"5.2%", 5.2, true},
		{"abc", 0, false},
		{"%", 0, false},
		{"", 0, false},
	}
	for _, c := range cases {
		v, ok := ParseFloatLoose(c.in)
		if ok != c.ok || (ok && v != c.v) {
			t.Errorf("ParseFloatLoose(%q) = %v,%v, 期望 %v,%v", c.in, v, ok, c.v, c.ok)
		}
	}
}
