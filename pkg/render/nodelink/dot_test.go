package nodelink

import (
	"context"
	"strings"
	"testing"

	"github.com/ruliana/link-community/pkg/dendro"
	lcerr "github.com/ruliana/link-community/pkg/errors"
)

func sampleTree() *dendro.Dendro[string] {
	return dendro.New(0.8, []string{"a-b"},
		dendro.New(0.25, []string{"b-c", "c-d"}))
}

func TestToDOT_Basic(t *testing.T) {
	dot := ToDOT(sampleTree(), Options{})

	for _, want := range []string{
		"digraph G",
		`"d0" [label="0.80", penwidth=2]`,
		`"d1" [label="0.25"]`,
		`label="a-b"`,
		`label="c-d"`,
		`"d0" -> "d1"`,
		`"d0" -> "m0"`,
		`"d1" -> "m2"`,
	} {
		if !strings.Contains(dot, want) {
			t.Errorf("ToDOT() output missing %s:\n%s", want, dot)
		}
	}
}

func TestToDOT_Detailed(t *testing.T) {
	dot := ToDOT(sampleTree(), Options{Detailed: true})

	if !strings.Contains(dot, `members: 3`) {
		t.Error("ToDOT() detailed output missing root member count")
	}
	if !strings.Contains(dot, `depth: 1`) {
		t.Error("ToDOT() detailed output missing depth")
	}
}

func TestToDOT_Empty(t *testing.T) {
	for _, d := range []*dendro.Dendro[string]{nil, dendro.Empty[string]()} {
		dot := ToDOT(d, Options{})
		if strings.Contains(dot, "->") || strings.Contains(dot, `"d0"`) {
			t.Errorf("ToDOT(empty) drew nodes:\n%s", dot)
		}
	}
}

func TestFormatLevel(t *testing.T) {
	tests := []struct {
		precision int
		level     float64
		want      string
	}{
		{0, 5.0 / 6, "0.83"},
		{3, 5.0 / 6, "0.833"},
		{-1, 0.25, "0.25"},
		{1, 1, "1.0"},
	}
	for _, tt := range tests {
		if got := (Options{Precision: tt.precision}).formatLevel(tt.level); got != tt.want {
			t.Errorf("formatLevel(%v) with precision %d = %q, want %q", tt.level, tt.precision, got, tt.want)
		}
	}
}

func TestNormalizeViewBox(t *testing.T) {
	tests := []struct {
		name string
		svg  string
		want string
	}{
		{
			name: "with viewBox",
			svg:  `<svg viewBox="10 20 800 600" xmlns="http://www.w3.org/2000/svg">content</svg>`,
			want: `<svg xmlns="http://www.w3.org/2000/svg" viewBox="0 0 800.00 600.00" width="800" height="600">content</svg>`,
		},
		{
			name: "no viewBox",
			svg:  `<svg xmlns="http://www.w3.org/2000/svg">content</svg>`,
			want: `<svg xmlns="http://www.w3.org/2000/svg">content</svg>`,
		},
		{
			name: "zero dimensions",
			svg:  `<svg viewBox="0 0 0 0">content</svg>`,
			want: `<svg viewBox="0 0 0 0">content</svg>`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := normalizeViewBox([]byte(tt.svg))
			if string(got) != tt.want {
				t.Errorf("normalizeViewBox() = %q, want %q", string(got), tt.want)
			}
		})
	}
}

func TestRenderSVG(t *testing.T) {
	svg, err := RenderSVG(context.Background(), ToDOT(sampleTree(), Options{}))
	if err != nil {
		t.Fatalf("RenderSVG() error: %v", err)
	}
	if !strings.Contains(string(svg), "<svg") {
		t.Error("RenderSVG() output missing <svg> tag")
	}
}

func TestRenderSVG_InvalidDOT(t *testing.T) {
	if _, err := RenderSVG(context.Background(), `not valid DOT {{{`); err == nil {
		t.Error("RenderSVG() should return error for invalid DOT")
	}
}

func TestRender(t *testing.T) {
	dot := ToDOT(sampleTree(), Options{})
	out, err := Render(context.Background(), dot, "dot", 1)
	if err != nil || string(out) != dot {
		t.Errorf("Render(dot) = %q, %v", out, err)
	}
	if _, err := Render(context.Background(), dot, "gif", 1); !lcerr.Is(err, lcerr.ErrCodeUnsupported) {
		t.Errorf("Render(gif) error = %v, want UNSUPPORTED", err)
	}
}
