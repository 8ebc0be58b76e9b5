package schema_test

import (
	"testing"

	"github.com/shpitdev/fdi-ranker/pkg/pipeline/schema"
)

func TestOutputHeader(t *testing.T) {
	tests := []struct {
		name string
		in   []string
		want []string
	}{
		{
			name: "identity columns are moved to the front",
			in:   []string{"Country", "Nr", "Booth nr", "Firm name"},
			want: []string{
				"Nr", "Firm name",
				"GPT Score", "GPT Score Explanation", "GPT Dutch Ecosystem Fit & Chain Partners", "GPT Sources Details",
				"Country", "Booth nr",
			},
		},
		{
			name: "identity columns absent from input still lead",
			in:   []string{"Country"},
			want: []string{
				"Nr", "Firm name",
				"GPT Score", "GPT Score Explanation", "GPT Dutch Ecosystem Fit & Chain Partners", "GPT Sources Details",
				"Country",
			},
		},
		{
			name: "empty input",
			in:   nil,
			want: []string{
				"Nr", "Firm name",
				"GPT Score", "GPT Score Explanation", "GPT Dutch Ecosystem Fit & Chain Partners", "GPT Sources Details",
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := schema.OutputHeader(tt.in)
			if len(got) != len(tt.want) {
				t.Fatalf("OutputHeader(%q) len=%d want=%d (%q)", tt.in, len(got), len(tt.want), got)
			}
			for i := range tt.want {
				if got[i] != tt.want[i] {
					t.Fatalf("OutputHeader(%q)[%d]=%q want=%q", tt.in, i, got[i], tt.want[i])
				}
			}
		})
	}
}
