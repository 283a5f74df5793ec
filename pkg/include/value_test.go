package include

import (
	"testing"

	"github.com/google/go-cmp/cmp"
)

func TestFlatten(t *testing.T) {
	tests := []struct {
		name  string
		value Value
		want  map[string]any
	}{
		{
			name:  "string",
			value: String("red"),
			want:  map[string]any{"v": "red"},
		},
		{
			name:  "list",
			value: List{"a", "b"},
			want: map[string]any{
				"v[0]": "a",
				"v[1]": "b",
				"v": []any{
					map[string]any{"name": "v[0]", "index": 0, "value": "a"},
					map[string]any{"name": "v[1]", "index": 1, "value": "b"},
				},
			},
		},
		{
			name:  "empty list",
			value: List{},
			want:  map[string]any{"v": []any{}},
		},
		{
			name:  "map in key order",
			value: Map{"b": "2", "a": "1"},
			want: map[string]any{
				"v[a]": "1",
				"v[b]": "2",
				"v": []any{
					map[string]any{"name": "v[a]", "index": "a", "value": "1"},
					map[string]any{"name": "v[b]", "index": "b", "value": "2"},
				},
			},
		},
		{
			name:  "nil",
			value: nil,
			want:  map[string]any{"v": ""},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := make(map[string]any)
			Flatten(got, "v", tt.value)
			if diff := cmp.Diff(tt.want, got); diff != "" {
				t.Errorf("Flatten() mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestVarsClone(t *testing.T) {
	orig := Vars{"a": String("1")}
	clone := orig.Clone()
	clone["b"] = String("2")

	if _, ok := orig["b"]; ok {
		t.Error("Clone() shares storage with the original")
	}
}
