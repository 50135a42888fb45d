package conv

import "testing"

func TestToFloat64(t *testing.T) {
	tests := []struct {
		name   string
		in     any
		want   float64
		wantOK bool
	}{
		{"float64", 3.14, 3.14, true},
		{"int", 42, 42.0, true},
		{"int64", int64(7), 7.0, true},
		{"bool true", true, 1.0, true},
		{"string 不支持", "3.14", 0, false},
		{"nil", nil, 0, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := ToFloat64(tt.in)
			if got != tt.want || ok != tt.wantOK {
				t.Errorf("ToFloat64(%v) = %v, %v", tt.in, got, ok)
			}
		})
	}
}

func TestSliceAnyToString(t *testing.T) {
	got := SliceAnyToString([]any{"a", 3, 2.0, true, []int{1}})
	want := []string{"a", "3", "2", "1"}
	if len(got) != len(want) {
		t.Fatalf("SliceAnyToString = %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("第 %d 位 = %q, want %q", i, got[i], want[i])
		}
	}

	if got := SliceAnyToString(nil); got != nil {
		t.Errorf("nil 输入应返回 nil, got %v", got)
	}
	if got := SliceAnyToString("not a slice"); got != nil {
		t.Errorf("非 slice 输入应返回 nil, got %v", got)
	}
}

func TestConfigGet(t *testing.T) {
	m := map[string]any{"key": "value", "num": 3}

	if got := ConfigGet(m, "key", "default"); got != "value" {
		t.Errorf("ConfigGet = %q", got)
	}
	if got := ConfigGet(m, "missing", "default"); got != "default" {
		t.Errorf("缺失 key 应返回默认值, got %q", got)
	}
	if got := ConfigGet(m, "num", "default"); got != "default" {
		t.Errorf("类型不符应返回默认值, got %q", got)
	}
	if got := ConfigGet[string](nil, "key", "default"); got != "default" {
		t.Errorf("nil map 应返回默认值, got %q", got)
	}
}

func TestConfigGetInt(t *testing.T) {
	m := map[string]any{"i": 5, "f": 7.0, "s": "x"}
	if got := ConfigGetInt(m, "i", 0); got != 5 {
		t.Errorf("int = %d", got)
	}
	if got := ConfigGetInt(m, "f", 0); got != 7 {
		t.Errorf("float64 = %d", got)
	}
	if got := ConfigGetInt(m, "s", 9); got != 9 {
		t.Errorf("类型不符应返回默认值, got %d", got)
	}
}
