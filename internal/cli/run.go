package cli

import (
	"github.com/spf13/cobra"
)

// NewRunCmd создаёт группу команд для управления runs.
func NewRunCmd(clientFn func() *Client, outputFn func() *Output) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "run",
		Short: "Manage runs",
	}

	cmd.AddCommand(
		newRunListCmd(clientFn, outputFn),
		newRunShowCmd(clientFn, outputFn),
		newRunArtifactsCmd(clientFn, outputFn),
	)

	return cmd
}

func newRunListCmd(clientFn func() *Client, outputFn func() *Output) *cobra.Command {
	var automationID string
	var status string
	var limit int

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List runs of an automation",
		RunE: func(cmd *cobra.Command, args []string) error {
			client := clientFn()
			out := outputFn()

			runs, err := client.ListRuns(ListRunsOpts{
				AutomationID: automationID,
				Status:       status,
				Limit:        limit,
			})
			if err != nil {
				return err
			}

			headers := []string{"ID", "STATUS", "STARTED", "FINISHED", "MESSAGE"}
			rows := make([][]string, len(runs))
			for i, r := range runs {
				rows[i] = []string{r.ID, r.Status, r.StartedAt, r.FinishedAt, r.Message}
			}

			out.Print(headers, rows, runs)
			return nil
		},
	}

	cmd.Flags().StringVar(&automationID, "automation-id", "", "Automation ID (required)")
	cmd.Flags().StringVar(&status, "status", "", "Filter by status (in_progress, success, failure)")
	cmd.Flags().IntVar(&limit, "limit", 0, "Maximum number of results")
	cmd.MarkFlagRequired("automation-id")

	return cmd
}

func newRunShowCmd(clientFn func() *Client, outputFn func() *Output) *cobra.Command {
	return &cobra.Command{
		Use:   "show ID",
		Short: "Show run details",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			client := clientFn()
			out := outputFn()

			run, err := client.GetRun(args[0])
			if err != nil {
				return err
			}

			out.Print(
				[]string{"ID", "AUTOMATION_ID", "STATUS", "STARTED", "FINISHED", "MESSAGE"},
				[][]string{{run.ID, run.AutomationID, run.Status, run.StartedAt, run.FinishedAt, run.Message}},
				run,
			)
			return nil
		},
	}
}

func newRunArtifactsCmd(clientFn func() *Client, outputFn func() *Output) *cobra.Command {
	return &cobra.Command{
		Use:   "artifacts RUN_ID",
		Short: "List artifacts attached to a run",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			client := clientFn()
			out := outputFn()

			artifacts, err := client.ListRunArtifacts(args[0])
			if err != nil {
				return err
			}

			headers := []string{"ID", "NAME", "CREATED"}
			rows := make([][]string, len(artifacts))
			for i, a := range artifacts {
				rows[i] = []string{a.ID, a.Name, a.CreatedAt}
			}

			out.Print(headers, rows, artifacts)
			return nil
		},
	}
}
