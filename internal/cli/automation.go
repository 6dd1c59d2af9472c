package cli

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"
)

// NewAutomationCmd создаёт группу команд для управления автоматизациями.
func NewAutomationCmd(clientFn func() *Client, outputFn func() *Output) *cobra.Command {
	cmd := &cobra.Command{
		Use:     "automation",
		Aliases: []string{"auto"},
		Short:   "Manage automations",
	}

	cmd.AddCommand(
		newAutomationListCmd(clientFn, outputFn),
		newAutomationCreateCmd(clientFn, outputFn),
		newAutomationShowCmd(clientFn, outputFn),
		newAutomationUpdateCmd(clientFn, outputFn),
		newAutomationDeleteCmd(clientFn, outputFn),
		newAutomationRunCmd(clientFn, outputFn),
	)

	return cmd
}

func automationRow(a AutomationResponse) []string {
	return []string{a.ID, a.Name, strconv.FormatBool(a.Active), strconv.FormatBool(a.IsRecurring), a.CronSchedule, a.LastRunStatus}
}

var automationHeaders = []string{"ID", "NAME", "ACTIVE", "RECURRING", "CRON", "LAST_RUN"}

func newAutomationListCmd(clientFn func() *Client, outputFn func() *Output) *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List automations",
		RunE: func(cmd *cobra.Command, args []string) error {
			client := clientFn()
			out := outputFn()

			automations, err := client.ListAutomations()
			if err != nil {
				return err
			}

			rows := make([][]string, len(automations))
			for i, a := range automations {
				rows[i] = automationRow(a)
			}

			out.Print(automationHeaders, rows, automations)
			return nil
		},
	}
}

func newAutomationCreateCmd(clientFn func() *Client, outputFn func() *Output) *cobra.Command {
	var goal string
	var cronSchedule string

	cmd := &cobra.Command{
		Use:   "create NAME",
		Short: "Create an automation",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			client := clientFn()
			out := outputFn()

			req := CreateAutomationRequest{
				Name:         args[0],
				Goal:         goal,
				IsRecurring:  cronSchedule != "",
				CronSchedule: cronSchedule,
			}

			auto, err := client.CreateAutomation(req)
			if err != nil {
				return err
			}

			out.Success(fmt.Sprintf("Automation created: %s", auto.ID))
			out.Print(automationHeaders, [][]string{automationRow(*auto)}, auto)
			return nil
		},
	}

	cmd.Flags().StringVar(&goal, "goal", "", "What the automation should accomplish")
	cmd.Flags().StringVar(&cronSchedule, "cron", "", "Cron schedule (makes the automation recurring)")

	return cmd
}

func newAutomationShowCmd(clientFn func() *Client, outputFn func() *Output) *cobra.Command {
	return &cobra.Command{
		Use:   "show ID",
		Short: "Show automation details",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			client := clientFn()
			out := outputFn()

			auto, err := client.GetAutomation(args[0])
			if err != nil {
				return err
			}

			out.Print(automationHeaders, [][]string{automationRow(*auto)}, auto)
			return nil
		},
	}
}

func newAutomationUpdateCmd(clientFn func() *Client, outputFn func() *Output) *cobra.Command {
	var name, goal, cronSchedule string
	var active, recurring bool

	cmd := &cobra.Command{
		Use:   "update ID",
		Short: "Update an automation",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			client := clientFn()
			out := outputFn()

			var req UpdateAutomationRequest
			if cmd.Flags().Changed("name") {
				req.Name = &name
			}
			if cmd.Flags().Changed("goal") {
				req.Goal = &goal
			}
			if cmd.Flags().Changed("active") {
				req.Active = &active
			}
			if cmd.Flags().Changed("recurring") {
				req.IsRecurring = &recurring
			}
			if cmd.Flags().Changed("cron") {
				req.CronSchedule = &cronSchedule
			}

			auto, err := client.UpdateAutomation(args[0], req)
			if err != nil {
				return err
			}

			out.Success(fmt.Sprintf("Automation updated: %s", auto.ID))
			out.Print(automationHeaders, [][]string{automationRow(*auto)}, auto)
			return nil
		},
	}

	cmd.Flags().StringVar(&name, "name", "", "New name")
	cmd.Flags().StringVar(&goal, "goal", "", "New goal")
	cmd.Flags().BoolVar(&active, "active", true, "Enable or disable the automation")
	cmd.Flags().BoolVar(&recurring, "recurring", false, "Make the automation recurring")
	cmd.Flags().StringVar(&cronSchedule, "cron", "", "New cron schedule")

	return cmd
}

func newAutomationDeleteCmd(clientFn func() *Client, outputFn func() *Output) *cobra.Command {
	return &cobra.Command{
		Use:   "delete ID",
		Short: "Delete an automation",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			client := clientFn()
			out := outputFn()

			if err := client.DeleteAutomation(args[0]); err != nil {
				return err
			}

			out.Success(fmt.Sprintf("Automation deleted: %s", args[0]))
			return nil
		},
	}
}

func newAutomationRunCmd(clientFn func() *Client, outputFn func() *Output) *cobra.Command {
	return &cobra.Command{
		Use:   "run ID",
		Short: "Trigger an automation run now",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			client := clientFn()
			out := outputFn()

			run, err := client.RunAutomation(args[0])
			if err != nil {
				return err
			}

			out.Success(fmt.Sprintf("Run started: %s", run.ID))
			out.Print(
				[]string{"ID", "AUTOMATION_ID", "STATUS", "STARTED"},
				[][]string{{run.ID, run.AutomationID, run.Status, run.StartedAt}},
				run,
			)
			return nil
		},
	}
}
