package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"os/signal"
	"syscall"

	"github.com/robfig/cron/v3"
	"github.com/spf13/cobra"

	"json2video/jobs"
)

func newBatchCommand(ctx *commandContext) *cobra.Command {
	var (
		inputDir string
		workers  int
		schedule string
	)

	cmd := &cobra.Command{
		Use:   "batch",
		Short: "Render every document in the input directory",
		Long: "Render every .json/.yaml/.yml document in the input directory.\n" +
			"Documents whose output is newer than the document are skipped.\n" +
			"With --schedule the sweep repeats on a cron schedule until interrupted.",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			if inputDir == "" {
				inputDir = cfg.InputDir
			}
			if workers <= 0 {
				workers = cfg.MaxConcurrentJobs
			}

			runCtx, cancel := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer cancel()

			svc, err := buildServices(runCtx, cfg)
			if err != nil {
				return err
			}
			defer svc.Close()

			if schedule == "" {
				summary, err := svc.processor.ProcessFromDirectory(runCtx, inputDir, workers)
				if err != nil {
					return err
				}
				printSummary(cmd, summary)
				if summary.Failed > 0 {
					return fmt.Errorf("%d of %d documents failed", summary.Failed, summary.Found)
				}
				return nil
			}
			return runScheduled(runCtx, svc.processor, schedule, inputDir, workers)
		},
	}

	cmd.Flags().StringVarP(&inputDir, "input", "i", "", "Directory of documents (default: input_dir from config)")
	cmd.Flags().IntVarP(&workers, "workers", "w", 0, "Documents rendered at once (default: max_concurrent_jobs)")
	cmd.Flags().StringVar(&schedule, "schedule", "", `Cron schedule for repeated sweeps, e.g. "*/5 * * * *"`)
	return cmd
}

func runScheduled(ctx context.Context, p *jobs.Processor, schedule, inputDir string, workers int) error {
	c := cron.New()
	_, err := c.AddFunc(schedule, func() {
		log.Printf("⏰ Scheduled sweep of %s", inputDir)
		if _, err := p.ProcessFromDirectory(ctx, inputDir, workers); err != nil {
			if errors.Is(err, jobs.ErrSweepInProgress) {
				log.Printf("Previous sweep still running, skipping this tick")
				return
			}
			log.Printf("❌ Scheduled sweep failed: %v", err)
		}
	})
	if err != nil {
		return fmt.Errorf("invalid schedule %q: %w", schedule, err)
	}

	c.Start()
	log.Printf("✅ Batch scheduler started (%s)", schedule)
	<-ctx.Done()

	log.Println("Stopping scheduler...")
	<-c.Stop().Done()
	return nil
}

func printSummary(cmd *cobra.Command, s jobs.Summary) {
	rows := [][]string{
		{"Found", fmt.Sprint(s.Found)},
		{"Rendered", fmt.Sprint(s.Rendered)},
		{"Up to date", fmt.Sprint(s.UpToDate)},
		{"Failed", fmt.Sprint(s.Failed)},
	}
	fmt.Fprintln(cmd.OutOrStdout(), renderTable([]string{"Documents", "Count"}, rows, []columnAlignment{alignLeft, alignRight}))

	if len(s.Failures) == 0 {
		return
	}
	failures := make([][]string, 0, len(s.Failures))
	for name, reason := range s.Failures {
		failures = append(failures, []string{name, reason})
	}
	sortRows(failures)
	fmt.Fprintln(cmd.OutOrStdout(), renderTable([]string{"Document", "Error"}, failures, nil))
}
