package main

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"github.com/tidwall/sjson"
	"golang.org/x/term"

	"github.com/dshills/indentscope/internal/document"
	"github.com/dshills/indentscope/internal/renderer/core"
	"github.com/dshills/indentscope/internal/renderer/overlay"
	"github.com/dshills/indentscope/internal/scope"
)

func newScopeCmd(c *cli) *cobra.Command {
	var (
		line     int
		col      int
		asJSON   bool
		tabWidth int
	)
	cmd := &cobra.Command{
		Use:   "scope FILE",
		Short: "Resolve the scope at a position and print it",
		Long: `Resolve the indent scope at --line and --col (a 0-indexed display column)
and print the lines it covers with the scope marker drawn in, or a JSON
description with --json.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			e := newEngine(c.cfg, c.logger)
			var opts []document.Option
			if tabWidth > 0 {
				opts = append(opts, document.WithTabWidth(tabWidth))
			}
			b, err := e.store.OpenFile(args[0], opts...)
			if err != nil {
				return err
			}

			sc, err := e.ctrl.Scope(b.ID(), line, col, nil)
			if err != nil {
				return err
			}
			if asJSON {
				out, err := scopeJSON(args[0], b, sc)
				if err != nil {
					return err
				}
				_, err = fmt.Fprintln(cmd.OutOrStdout(), out)
				return err
			}

			e.show(b.ID(), line, col)
			return printScope(cmd.OutOrStdout(), b, sc, e.markers, outputWidth(cmd.OutOrStdout()))
		},
	}
	cmd.Flags().IntVarP(&line, "line", "l", 1, "1-indexed line")
	cmd.Flags().IntVarP(&col, "col", "c", 0, "0-indexed display column")
	cmd.Flags().BoolVar(&asJSON, "json", false, "print JSON")
	cmd.Flags().IntVar(&tabWidth, "tab-width", 0, "indent width (default 4)")
	return cmd
}

// jsonField is one value of the JSON output at an sjson path.
type jsonField struct {
	path  string
	value any
}

// scopeJSON describes a scope as a JSON object.
func scopeJSON(path string, b *document.Buffer, sc scope.Scope) (string, error) {
	fields := []jsonField{
		{"file", path},
		{"lines", b.LineCount()},
		{"reference.line", sc.Reference.Line},
		{"reference.indent", sc.Reference.Indent},
		{"body.top", sc.Body.Top},
		{"body.bottom", sc.Body.Bottom},
		{"body.indent", sc.Body.Indent},
		{"body.incomplete", sc.Body.Incomplete},
		{"draw_indent", scope.DrawIndent(sc)},
		{"drawable", scope.Drawable(sc)},
	}
	if sc.Border.HasTop {
		fields = append(fields, jsonField{"border.top", sc.Border.Top})
	}
	if sc.Border.HasBottom {
		fields = append(fields, jsonField{"border.bottom", sc.Border.Bottom})
	}
	if !sc.Border.Empty() {
		fields = append(fields, jsonField{"border.indent", sc.Border.Indent})
	}

	out := "{}"
	for _, f := range fields {
		var err error
		if out, err = sjson.Set(out, f.path, f.value); err != nil {
			return "", fmt.Errorf("encoding %s: %w", f.path, err)
		}
	}
	return out, nil
}

// printScope prints a header and the scope lines with markers composited.
func printScope(w io.Writer, b *document.Buffer, sc scope.Scope, markers *overlay.Manager, width int) error {
	var sb strings.Builder
	fmt.Fprintf(&sb, "body %d-%d indent %d", sc.Body.Top, sc.Body.Bottom, sc.Body.Indent)
	if sc.Body.Incomplete {
		sb.WriteString(" (incomplete)")
	}
	if !sc.Border.Empty() {
		fmt.Fprintf(&sb, "  border")
		if sc.Border.HasTop {
			fmt.Fprintf(&sb, " top %d", sc.Border.Top)
		}
		if sc.Border.HasBottom {
			fmt.Fprintf(&sb, " bottom %d", sc.Border.Bottom)
		}
		fmt.Fprintf(&sb, " indent %d", sc.Border.Indent)
	}
	if !scope.Drawable(sc) {
		sb.WriteString("  not drawn")
	} else {
		fmt.Fprintf(&sb, "  column %d", scope.DrawIndent(sc))
	}
	sb.WriteString("\n")

	top, bottom := scope.TextObject(sc, true, b.LineCount())
	digits := len(fmt.Sprint(bottom))
	for line := top; line <= bottom; line++ {
		cells := core.CellsFromString(b.LineText(line), core.DefaultStyle(), b.IndentWidth())
		cells = overlay.CompositeLine(cells, markers.SpansForLine(b.ID(), line))
		text := strings.TrimRight(core.StringFromCells(cells), " ")

		prefix := fmt.Sprintf("%*d  ", digits, line)
		if width > 0 {
			text = truncate(text, width-len(prefix))
		}
		sb.WriteString(prefix + text + "\n")
	}

	_, err := io.WriteString(w, sb.String())
	return err
}

// outputWidth returns the terminal width of w, or 0 when w is not a
// terminal.
func outputWidth(w io.Writer) int {
	f, ok := w.(*os.File)
	if !ok || !term.IsTerminal(int(f.Fd())) {
		return 0
	}
	width, _, err := term.GetSize(int(f.Fd()))
	if err != nil {
		return 0
	}
	return width
}

// truncate cuts s to at most width display columns.
func truncate(s string, width int) string {
	if width <= 0 {
		return ""
	}
	if core.StringWidth(s) <= width {
		return s
	}
	var sb strings.Builder
	used := 0
	for _, r := range s {
		w := core.RuneWidth(r)
		if used+w > width {
			break
		}
		sb.WriteRune(r)
		used += w
	}
	return sb.String()
}
