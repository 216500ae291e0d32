package cli

import (
	"strings"
	"testing"

	"github.com/newtron-network/vlanadmin/pkg/switchmodel"
)

func TestDotPad(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		width    int
		expected string
	}{
		{
			name:     "normal case",
			input:    "Product",
			width:    30,
			expected: "Product " + strings.Repeat(".", 22),
		},
		{
			name:     "short name",
			input:    "ok",
			width:    10,
			expected: "ok " + strings.Repeat(".", 7),
		},
		{
			name:     "name equals width minus one",
			input:    "abcde",
			width:    6,
			expected: "abcde",
		},
		{
			name:     "name equals width",
			input:    "abcdef",
			width:    6,
			expected: "abcdef",
		},
		{
			name:     "name longer than width",
			input:    "very-long-name",
			width:    5,
			expected: "very-long-name",
		},
		{
			name:     "empty string",
			input:    "",
			width:    10,
			expected: " " + strings.Repeat(".", 9),
		},
		{
			name:     "width of 1",
			input:    "",
			width:    1,
			expected: "",
		},
		{
			name:     "width of 2 with empty string",
			input:    "",
			width:    2,
			expected: " .",
		},
		{
			name:     "single char name width 5",
			input:    "x",
			width:    5,
			expected: "x " + strings.Repeat(".", 3),
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := DotPad(tt.input, tt.width)
			if got != tt.expected {
				t.Errorf("DotPad(%q, %d) = %q, want %q", tt.input, tt.width, got, tt.expected)
			}
		})
	}
}

func TestDotPad_ResultLength(t *testing.T) {
	result := DotPad("test", 20)
	if len(result) != 20 {
		t.Errorf("DotPad(%q, 20) len = %d, want 20", "test", len(result))
	}
}

func TestColorFunctions(t *testing.T) {
	saved := colorEnabled
	colorEnabled = true
	t.Cleanup(func() { colorEnabled = saved })

	tests := []struct {
		name   string
		fn     func(string) string
		prefix string
	}{
		{"Green", Green, "\033[32m"},
		{"Yellow", Yellow, "\033[33m"},
		{"Red", Red, "\033[31m"},
		{"Bold", Bold, "\033[1m"},
		{"Dim", Dim, "\033[2m"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := tt.fn("hello")
			if !strings.HasPrefix(got, tt.prefix) {
				t.Errorf("%s should start with %q", tt.name, tt.prefix)
			}
			if !strings.Contains(got, "hello") {
				t.Errorf("%s should contain the input string", tt.name)
			}
			if !strings.HasSuffix(got, "\033[0m") {
				t.Errorf("%s should end with reset code", tt.name)
			}
		})

		t.Run(tt.name+"_empty", func(t *testing.T) {
			got := tt.fn("")
			if !strings.HasSuffix(got, "\033[0m") {
				t.Errorf("%s(\"\") should end with reset code", tt.name)
			}
		})
	}
}

func withoutColor(t *testing.T) {
	t.Helper()
	saved := colorEnabled
	colorEnabled = false
	t.Cleanup(func() { colorEnabled = saved })
}

func TestGlyph(t *testing.T) {
	withoutColor(t)
	tests := []struct {
		m    switchmodel.Membership
		want string
	}{
		{switchmodel.Untagged, "U"},
		{switchmodel.Tagged, "T"},
		{switchmodel.NotMember, "."},
	}
	for _, tt := range tests {
		if got := Glyph(tt.m); got != tt.want {
			t.Errorf("Glyph(%v) = %q, want %q", tt.m, got, tt.want)
		}
	}
}

func TestGlyph_Colored(t *testing.T) {
	if !colorEnabled {
		t.Skip("NO_COLOR is set")
	}
	if got := Glyph(switchmodel.Untagged); got != Green("U") {
		t.Errorf("Glyph(Untagged) = %q, want green U", got)
	}
}

func TestLinkStatus(t *testing.T) {
	withoutColor(t)
	tests := []struct{ in, want string }{
		{"100M", "100M"},
		{"Down", "Down"},
		{"Other: 7", "Other: 7"},
		{"", "-"},
	}
	for _, tt := range tests {
		if got := LinkStatus(tt.in); got != tt.want {
			t.Errorf("LinkStatus(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestColorDisabled(t *testing.T) {
	withoutColor(t)
	if got := Red("x"); got != "x" {
		t.Errorf("Red with color disabled = %q, want %q", got, "x")
	}
}
