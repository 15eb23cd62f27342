package markdown

import (
	"strings"
	"testing"
)

func TestToHTML(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		contains []string
		excludes []string
	}{
		{
			name:     "empty",
			input:    "",
			contains: nil,
		},
		{
			name:     "emphasis",
			input:    "Critters of every **shape** and size.",
			contains: []string{"<p>", "<strong>shape</strong>"},
		},
		{
			name:     "link",
			input:    "[Request a quote](/requests)",
			contains: []string{`<a href="/requests">Request a quote</a>`},
		},
		{
			name:     "heading id",
			input:    "## Sizes",
			contains: []string{`<h2 id="sizes">`},
		},
		{
			name:     "table",
			input:    "| Size | Price |\n|---|---|\n| 38mm | 2.50 |\n",
			contains: []string{"<table>", "<td>38mm</td>"},
		},
		{
			name:     "raw html block is omitted",
			input:    "<script>alert(1)</script>\n\nhello",
			contains: []string{"hello", "<!-- raw HTML omitted -->"},
			excludes: []string{"<script>", "alert(1)"},
		},
		{
			name:     "inline raw html is omitted",
			input:    `click <a href="javascript:alert(1)">here</a>`,
			contains: []string{"click", "here", "<!-- raw HTML omitted -->"},
			excludes: []string{"<a ", "javascript:"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ToHTML(tt.input)
			if err != nil {
				t.Fatalf("ToHTML: %v", err)
			}
			if tt.input == "" && got != "" {
				t.Errorf("empty input: got %q", got)
			}
			for _, want := range tt.contains {
				if !strings.Contains(got, want) {
					t.Errorf("output %q missing %q", got, want)
				}
			}
			for _, bad := range tt.excludes {
				if strings.Contains(got, bad) {
					t.Errorf("output %q must not contain %q", got, bad)
				}
			}
		})
	}
}
