package main

import (
	"context"
	"runtime"
	"strconv"

	"github.com/olekukonko/tablewriter"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/dshills/indentscope/internal/document"
	"github.com/dshills/indentscope/internal/scope"
)

// scanResult summarizes the scopes of one file.
type scanResult struct {
	Path    string
	Lines   int
	Scopes  int
	Deepest int
	Partial int
}

func newScanCmd(c *cli) *cobra.Command {
	var jobs int
	cmd := &cobra.Command{
		Use:   "scan FILE...",
		Short: "Count the distinct scopes of files",
		Long: `Resolve the scope of every line of every file and print, per file, the
number of distinct drawable scopes, the deepest marker column and the
number of scopes cut short by options.n_lines.`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := c.cfg.Settings("", nil)
			if err != nil {
				return err
			}
			opts, err := s.ScopeOptions()
			if err != nil {
				return err
			}

			results, err := scanFiles(cmd.Context(), args, opts, jobs)
			if err != nil {
				return err
			}

			table := tablewriter.NewWriter(cmd.OutOrStdout())
			table.SetHeader([]string{"File", "Lines", "Scopes", "Deepest", "Incomplete"})
			table.SetBorder(false)
			table.SetCenterSeparator("")
			table.SetColumnAlignment([]int{tablewriter.ALIGN_LEFT, tablewriter.ALIGN_RIGHT, tablewriter.ALIGN_RIGHT, tablewriter.ALIGN_RIGHT, tablewriter.ALIGN_RIGHT})
			total := 0
			for _, r := range results {
				total += r.Scopes
				table.Append([]string{r.Path, strconv.Itoa(r.Lines), strconv.Itoa(r.Scopes), strconv.Itoa(r.Deepest), strconv.Itoa(r.Partial)})
				c.logger.Debug("scanned", zap.String("path", r.Path), zap.Int("scopes", r.Scopes))
			}
			table.SetFooter([]string{"total", "", strconv.Itoa(total), "", ""})
			table.Render()
			return nil
		},
	}
	cmd.Flags().IntVarP(&jobs, "jobs", "j", runtime.NumCPU(), "files scanned in parallel")
	return cmd
}

// scanFiles scans paths concurrently. Results keep the order of paths.
func scanFiles(ctx context.Context, paths []string, opts scope.Options, jobs int) ([]scanResult, error) {
	if ctx == nil {
		ctx = context.Background()
	}
	results := make([]scanResult, len(paths))

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(max(1, jobs))
	for i, path := range paths {
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			b := document.NewBuffer(path, "")
			if err := b.Load(path); err != nil {
				return err
			}
			results[i] = scanDocument(b, opts)
			results[i].Path = path
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return results, nil
}

// scanDocument resolves the scope of every line with the cursor at the end
// of the line.
func scanDocument(doc scope.Document, opts scope.Options) scanResult {
	type key struct{ col, top, bottom int }
	seen := make(map[key]bool)
	res := scanResult{Lines: doc.LineCount(), Deepest: -1}

	for line := 1; line <= doc.LineCount(); line++ {
		sc := scope.Resolve(doc, line, scope.NoColumn, opts)
		if !scope.Drawable(sc) {
			continue
		}
		k := key{scope.DrawIndent(sc), sc.Body.Top, sc.Body.Bottom}
		if seen[k] {
			continue
		}
		seen[k] = true
		res.Scopes++
		res.Deepest = max(res.Deepest, k.col)
		if sc.Body.Incomplete {
			res.Partial++
		}
	}
	return res
}
