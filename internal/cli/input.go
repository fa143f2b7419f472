package cli

import (
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"unicode/utf8"

	"github.com/spf13/cobra"

	lcerr "github.com/ruliana/link-community/pkg/errors"
	lcio "github.com/ruliana/link-community/pkg/io"
	"github.com/ruliana/link-community/pkg/pipeline"
)

// inputFlags describes how an edge-list file is read. Flags left unset keep
// the configured values.
type inputFlags struct {
	directed bool
	weighted bool
	header   bool
	comma    string
}

func (f *inputFlags) register(cmd *cobra.Command) {
	cmd.Flags().BoolVarP(&f.directed, "directed", "d", false, "read edges as directed (from → to)")
	cmd.Flags().BoolVarP(&f.weighted, "weighted", "w", false, "read the third column as the edge weight")
	cmd.Flags().BoolVar(&f.header, "header", false, "skip the first row")
	cmd.Flags().StringVar(&f.comma, "comma", "", "field separator (default from config, ',')")
}

// csvOptions merges the flags that were set over the configured CSV options.
func (c *CLI) csvOptions(cmd *cobra.Command, f *inputFlags) (lcio.CSVOptions, error) {
	opts := c.Config.CSVOptions()
	flags := cmd.Flags()
	if flags.Changed("directed") {
		opts.Directed = f.directed
	}
	if flags.Changed("weighted") {
		opts.Weighted = f.weighted
	}
	if flags.Changed("header") {
		opts.Header = f.header
	}
	if flags.Changed("comma") {
		if f.comma == `\t` {
			f.comma = "\t"
		}
		if utf8.RuneCountInString(f.comma) != 1 {
			return opts, lcerr.New(lcerr.ErrCodeInvalidInput, "--comma must be a single character, got %q", f.comma)
		}
		opts.Comma, _ = utf8.DecodeRuneInString(f.comma)
	}
	return opts, nil
}

// =============================================================================
// Output Paths
// =============================================================================

// basePath derives the base output path from the output and input file paths.
// If output is empty, it strips the extension from input.
// If output has a format extension (.svg, .json, etc.), it strips that extension.
func basePath(output, input string) string {
	if output == "" {
		return strings.TrimSuffix(input, filepath.Ext(input))
	}
	ext := filepath.Ext(output)
	if pipeline.ValidFormats[strings.TrimPrefix(ext, ".")] {
		return strings.TrimSuffix(output, ext)
	}
	return output
}

// formatLevel prints a level with the given number of decimals. Zero means
// two decimals; a negative value prints the shortest exact form.
func formatLevel(level float64, precision int) string {
	switch {
	case precision < 0:
		return strconv.FormatFloat(level, 'g', -1, 64)
	case precision == 0:
		return strconv.FormatFloat(level, 'f', 2, 64)
	default:
		return strconv.FormatFloat(level, 'f', precision, 64)
	}
}

// writeFile writes data to path, creating parent directories.
func writeFile(path string, data []byte) error {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return err
		}
	}
	return os.WriteFile(path, data, 0o644)
}
