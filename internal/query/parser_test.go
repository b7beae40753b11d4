package query

import (
	"reflect"
	"testing"
)

func TestParse(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  []string
	}{
		{
			name:  "single term",
			input: "Kampala",
			want:  []string{"Kampala"},
		},
		{
			name:  "comma separated",
			input: "Nakawa, Kampala",
			want:  []string{"Nakawa", "Kampala"},
		},
		{
			name:  "semicolon separated",
			input: "Mbuya;Nakawa ; Kampala",
			want:  []string{"Mbuya", "Nakawa", "Kampala"},
		},
		{
			name:  "in keyword",
			input: "Nakawa in Kampala",
			want:  []string{"Nakawa", "Kampala"},
		},
		{
			name:  "at keyword any case",
			input: "Kireka AT Wakiso",
			want:  []string{"Kireka", "Wakiso"},
		},
		{
			name:  "keyword inside a word is kept",
			input: "Kinawataka in Nakawa",
			want:  []string{"Kinawataka", "Nakawa"},
		},
		{
			name:  "multi word terms collapse whitespace",
			input: "  Nakawa   Division ,  Kampala  Central ",
			want:  []string{"Nakawa Division", "Kampala Central"},
		},
		{
			name:  "mixed separators and empty segments",
			input: ",, Mbuya in Nakawa,; at Kampala,",
			want:  []string{"Mbuya", "Nakawa", "Kampala"},
		},
		{
			name:  "empty input",
			input: "",
			want:  nil,
		},
		{
			name:  "only separators",
			input: " , ; in at ",
			want:  nil,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Parse(tt.input)
			if !reflect.DeepEqual(got, tt.want) {
				t.Errorf("Parse(%q) = %#v, want %#v", tt.input, got, tt.want)
			}
		})
	}
}
