package markdown_test

import (
	"strings"
	"testing"

	"github.com/abdallah-7amza/MED-Portal-NUB/internal/markdown"
)

func TestRender(t *testing.T) {
	r := markdown.New()

	tests := []struct {
		name   string
		source string
		want   string
	}{
		{
			name:   "heading",
			source: "# Heart Failure",
			want:   "<h1>Heart Failure</h1>",
		},
		{
			name:   "gfm table",
			source: "| Drug | Dose |\n|------|------|\n| X | 5mg |",
			want:   "<table>",
		},
		{
			name:   "gfm strikethrough",
			source: "~~outdated~~",
			want:   "<del>outdated</del>",
		},
		{
			name:   "raw html passes through",
			source: `<div class="note">warning</div>`,
			want:   `<div class="note">warning</div>`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := r.Render(tt.source)
			if err != nil {
				t.Fatalf("Render() error = %v", err)
			}
			if !strings.Contains(got, tt.want) {
				t.Errorf("Render() = %q, want it to contain %q", got, tt.want)
			}
		})
	}
}

func TestRender_Highlighting(t *testing.T) {
	r := markdown.New()

	got, err := r.Render("```go\nfunc main() {}\n```")
	if err != nil {
		t.Fatalf("Render() error = %v", err)
	}
	// Highlighted code blocks carry inline styles instead of a bare <pre>.
	if !strings.Contains(got, "style=") {
		t.Errorf("Render() = %q, want inline highlight styles", got)
	}
}
