package cli

import (
	"fmt"

	"github.com/spf13/cobra"
)

// NewTokenCmd создаёт группу команд для управления токенами устройств.
func NewTokenCmd(clientFn func() *Client, outputFn func() *Output) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "token",
		Short: "Manage device tokens",
	}

	cmd.AddCommand(
		newTokenListCmd(clientFn, outputFn),
		newTokenRegisterCmd(clientFn, outputFn),
		newTokenDeleteCmd(clientFn, outputFn),
	)

	return cmd
}

func newTokenListCmd(clientFn func() *Client, outputFn func() *Output) *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List registered device tokens",
		RunE: func(cmd *cobra.Command, args []string) error {
			client := clientFn()
			out := outputFn()

			tokens, err := client.ListTokens()
			if err != nil {
				return err
			}

			headers := []string{"ID", "DEVICE_TYPE", "TOKEN", "UPDATED"}
			rows := make([][]string, len(tokens))
			for i, t := range tokens {
				rows[i] = []string{t.ID, t.DeviceType, t.Token, t.UpdatedAt}
			}

			out.Print(headers, rows, tokens)
			return nil
		},
	}
}

func newTokenRegisterCmd(clientFn func() *Client, outputFn func() *Output) *cobra.Command {
	var deviceType string

	cmd := &cobra.Command{
		Use:   "register TOKEN",
		Short: "Register a device token",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			client := clientFn()
			out := outputFn()

			token, err := client.RegisterToken(RegisterTokenRequest{
				Token:      args[0],
				DeviceType: deviceType,
			})
			if err != nil {
				return err
			}

			out.Success(fmt.Sprintf("Token registered: %s", token.ID))
			out.Print(
				[]string{"ID", "DEVICE_TYPE", "TOKEN"},
				[][]string{{token.ID, token.DeviceType, token.Token}},
				token,
			)
			return nil
		},
	}

	cmd.Flags().StringVar(&deviceType, "device-type", "", "Device type: ios, android or web (required)")
	cmd.MarkFlagRequired("device-type")

	return cmd
}

func newTokenDeleteCmd(clientFn func() *Client, outputFn func() *Output) *cobra.Command {
	return &cobra.Command{
		Use:   "delete ID",
		Short: "Delete a device token",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			client := clientFn()
			out := outputFn()

			if err := client.DeleteToken(args[0]); err != nil {
				return err
			}

			out.Success(fmt.Sprintf("Token deleted: %s", args[0]))
			return nil
		},
	}
}
