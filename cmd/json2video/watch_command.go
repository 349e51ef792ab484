package main

import (
	"fmt"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"

	"json2video/watch"
)

func newWatchCommand() *cobra.Command {
	var apiURL string
	var interval time.Duration

	cmd := &cobra.Command{
		Use:         "watch <job-id>",
		Short:       "Follow a render job submitted to the API",
		Args:        cobra.ExactArgs(1),
		Annotations: map[string]string{"skipConfigLoad": "true"},
		RunE: func(cmd *cobra.Command, args []string) error {
			program := tea.NewProgram(watch.NewModel(apiURL, args[0], interval), tea.WithContext(cmd.Context()))
			final, err := program.Run()
			if err != nil {
				return fmt.Errorf("error running watcher: %w", err)
			}
			if m, ok := final.(watch.Model); ok && m.Done && m.Err == nil && m.Status != nil && !m.Status.Result.OK() {
				return fmt.Errorf("job %s failed: %s", args[0], m.Status.Result.Message)
			}
			return nil
		},
	}
	cmd.Flags().StringVar(&apiURL, "url", "http://localhost:8081", "json2video API base URL")
	cmd.Flags().DurationVar(&interval, "interval", 500*time.Millisecond, "Polling interval")
	return cmd
}
