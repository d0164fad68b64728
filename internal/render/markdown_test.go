package render

import (
	"strings"
	"testing"
)

func TestMarkdown_Math(t *testing.T) {
	md := NewMarkdown("friendly")
	tests := []struct {
		name    string
		in      string
		want    []string
		notWant []string
	}{
		{
			name: "inline",
			in:   `Euler says $e^{i\pi}+1=0$ always.`,
			want: []string{`<span class="math inline">\(e^{i\pi}+1=0\)</span>`},
		},
		{
			name: "display",
			in:   "Integral:\n\n$$\n\\int_0^1 x\\,dx\n$$\n",
			want: []string{`<span class="math display">\[\int_0^1 x\,dx\]</span>`},
		},
		{
			name:    "prices are not math",
			in:      "It costs $5 and $10.",
			want:    []string{"$5 and $10"},
			notWant: []string{"math inline"},
		},
		{
			name:    "inline code untouched",
			in:      "Use `$x$` literally.",
			want:    []string{"<code>$x$</code>"},
			notWant: []string{"math inline"},
		},
		{
			name:    "fenced code untouched",
			in:      "```\ncost = $a$\n```\n",
			notWant: []string{"math inline", "CONSTELLATEMATH"},
		},
		{
			name: "markdown inside math is preserved",
			in:   `Let $a_1 * b_2 * c$ hold.`,
			want: []string{`\(a_1 * b_2 * c\)`},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := md.Render(tt.in)
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			for _, w := range tt.want {
				if !strings.Contains(string(got), w) {
					t.Errorf("expected output to contain %q, got %q", w, got)
				}
			}
			for _, w := range tt.notWant {
				if strings.Contains(string(got), w) {
					t.Errorf("expected output not to contain %q, got %q", w, got)
				}
			}
		})
	}
}

func TestMarkdown_Sanitizes(t *testing.T) {
	md := NewMarkdown("friendly")
	got, err := md.Render("Hello <script>alert(1)</script> <b onclick=\"x()\">bold</b>")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	s := string(got)
	if strings.Contains(s, "<script") || strings.Contains(s, "onclick") {
		t.Errorf("expected script and handlers stripped, got %q", s)
	}
	if !strings.Contains(s, "<b>bold</b>") {
		t.Errorf("expected inline HTML kept, got %q", s)
	}
}

func TestMarkdown_HighlightsFencedCode(t *testing.T) {
	md := NewMarkdown("friendly")
	got, err := md.Render("```go\nfunc main() {}\n```\n")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !strings.Contains(string(got), `class="chroma"`) {
		t.Errorf("expected chroma classes, got %q", got)
	}
}

func TestProtectMath_EscapedDollar(t *testing.T) {
	out, spans := protectMath(`\$5 and $x$`)
	if len(spans) != 1 || spans[0].tex != "x" {
		t.Fatalf("expected one span for x, got %+v", spans)
	}
	if !strings.HasPrefix(out, `\$5 and `) {
		t.Errorf("expected escaped dollar kept, got %q", out)
	}
}

func TestClosingDollar(t *testing.T) {
	tests := []struct {
		src  string
		want int
	}{
		{"$x$", 2},
		{"$ x$", -1},
		{"$x $", -1},
		{"$x$5", -1},
		{"$a\n\nb$", -1},
		{`$a\$b$`, 5},
	}
	for _, tt := range tests {
		if got := closingDollar(tt.src, 1); got != tt.want {
			t.Errorf("closingDollar(%q) = %d, want %d", tt.src, got, tt.want)
		}
	}
}
