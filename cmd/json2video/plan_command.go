package main

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"json2video/timeline"
	"json2video/types"
)

func newPlanCommand(ctx *commandContext) *cobra.Command {
	var asJSON bool

	cmd := &cobra.Command{
		Use:   "plan <document>",
		Short: "Resolve a document and show the timeline without encoding",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			svc, err := buildServices(cmd.Context(), cfg)
			if err != nil {
				return err
			}
			defer svc.Close()

			doc, err := types.LoadDocument(args[0])
			if err != nil {
				return err
			}
			tl, err := svc.processor.Plan(cmd.Context(), doc)
			if err != nil {
				return err
			}
			if asJSON {
				return writeJSON(cmd.OutOrStdout(), tl)
			}
			printPlan(cmd.OutOrStdout(), tl)
			return nil
		},
	}
	cmd.Flags().BoolVar(&asJSON, "json", false, "Print the timeline as JSON")
	return cmd
}

func printPlan(w io.Writer, tl *timeline.Timeline) {
	fmt.Fprintf(w, "Canvas %dx%d, background %s, duration %.3fs\n\n",
		tl.Canvas.Width, tl.Canvas.Height, tl.Background, tl.TotalDuration)

	if len(tl.Segments) > 0 {
		rows := make([][]string, 0, len(tl.Segments))
		for _, s := range tl.Segments {
			rows = append(rows, []string{s.ID, seconds(s.StartTime), seconds(s.VoiceStartTime), seconds(s.VoiceEndTime), seconds(s.EndTime)})
		}
		fmt.Fprintln(w, renderTable(
			[]string{"Segment", "Start", "Voice start", "Voice end", "End"},
			rows,
			[]columnAlignment{alignLeft, alignRight, alignRight, alignRight, alignRight},
		))
	}

	if layers := tl.PaintOrder(); len(layers) > 0 {
		rows := make([][]string, 0, len(layers))
		for _, l := range layers {
			rows = append(rows, []string{
				fmt.Sprint(l.ZIndex),
				l.Kind.String(),
				l.Label,
				seconds(l.Window.Start),
				seconds(l.Window.End),
				fmt.Sprintf("%dx%d", l.Size.Width, l.Size.Height),
				fmt.Sprintf("%.1f,%.1f", l.Origin.X, l.Origin.Y),
			})
		}
		fmt.Fprintln(w, renderTable(
			[]string{"Z", "Kind", "Layer", "Start", "End", "Size", "Origin"},
			rows,
			[]columnAlignment{alignRight, alignLeft, alignLeft, alignRight, alignRight, alignRight, alignRight},
		))
	}

	if len(tl.Audio) > 0 {
		rows := make([][]string, 0, len(tl.Audio))
		for _, a := range tl.Audio {
			rows = append(rows, []string{a.Label, seconds(a.Window.Start), seconds(a.Window.End), fmt.Sprintf("%.2f", a.Volume)})
		}
		fmt.Fprintln(w, renderTable(
			[]string{"Audio", "Start", "End", "Volume"},
			rows,
			[]columnAlignment{alignLeft, alignRight, alignRight, alignRight},
		))
	}

	if len(tl.Skipped) > 0 {
		rows := make([][]string, 0, len(tl.Skipped))
		for _, s := range tl.Skipped {
			rows = append(rows, []string{s.Label, s.Reason})
		}
		fmt.Fprintln(w, renderTable([]string{"Skipped", "Reason"}, rows, nil))
	}
}

func seconds(v float64) string { return fmt.Sprintf("%.3f", v) }
