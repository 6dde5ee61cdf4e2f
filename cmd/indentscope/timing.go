package main

import (
	"fmt"
	"strconv"

	"github.com/olekukonko/tablewriter"
	"github.com/spf13/cobra"

	"github.com/dshills/indentscope/internal/easing"
)

func newTimingCmd(c *cli) *cobra.Command {
	var (
		shape, ease, unit string
		duration          float64
		steps             int
	)
	cmd := &cobra.Command{
		Use:   "timing",
		Short: "Print the waits of an animation profile",
		Long: `Print the wait before each animation step. Flags that are not given fall
back to draw.animation from the configuration.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			s, err := c.cfg.Settings("", nil)
			if err != nil {
				return err
			}
			anim := s.Draw.Animation
			flags := cmd.Flags()
			if flags.Changed("shape") {
				anim.Shape = shape
			}
			if flags.Changed("easing") {
				anim.Easing = ease
			}
			if flags.Changed("unit") {
				anim.Unit = unit
			}
			if flags.Changed("duration") {
				anim.Duration = duration
			}

			spec, err := easing.ParseSpec(anim.Shape, anim.Easing, anim.Unit, anim.Duration)
			if err != nil {
				return err
			}
			f, err := easing.Make(spec)
			if err != nil {
				return err
			}

			table := tablewriter.NewWriter(cmd.OutOrStdout())
			table.SetHeader([]string{"Step", "Wait (ms)", "Elapsed (ms)"})
			table.SetBorder(false)
			table.SetCenterSeparator("")
			table.SetColumnAlignment([]int{tablewriter.ALIGN_RIGHT, tablewriter.ALIGN_RIGHT, tablewriter.ALIGN_RIGHT})

			var elapsed float64
			for i, wait := range easing.Schedule(f, steps) {
				elapsed += wait
				table.Append([]string{strconv.Itoa(i + 1), formatMillis(wait), formatMillis(elapsed)})
			}
			table.SetFooter([]string{fmt.Sprintf("%s %s", anim.Shape, anim.Easing), "total", formatMillis(elapsed)})
			table.Render()
			return nil
		},
	}
	cmd.Flags().StringVar(&shape, "shape", "", "none, linear, quadratic, cubic, quartic or exponential")
	cmd.Flags().StringVar(&ease, "easing", "", "in, out or in-out")
	cmd.Flags().StringVar(&unit, "unit", "", "step or total")
	cmd.Flags().Float64Var(&duration, "duration", 0, "milliseconds per step, or in total")
	cmd.Flags().IntVarP(&steps, "steps", "n", 10, "number of steps")
	return cmd
}

func formatMillis(ms float64) string {
	return strconv.FormatFloat(ms, 'f', 2, 64)
}
