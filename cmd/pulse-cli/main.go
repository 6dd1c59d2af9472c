// Pulse CLI — инструмент командной строки для управления
// автоматизациями, runs и токенами устройств через HTTP API.
//
// Использование:
//
//	pulse [--api-url URL] [--user ID] [--json] <command> <subcommand> [flags]
//
// Команды:
//
//	automation  Управление автоматизациями
//	run         Просмотр runs и артефактов
//	token       Управление токенами устройств
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/shaiso/Pulse/internal/cli"
)

// version задаётся через ldflags при сборке.
var version = "dev"

func main() {
	var apiURL string
	var userID string
	var jsonOutput bool

	rootCmd := &cobra.Command{
		Use:           "pulse",
		Short:         "Pulse CLI — automation runs tool",
		Version:       version,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	rootCmd.PersistentFlags().StringVar(&apiURL, "api-url", "http://localhost:8080", "API server URL")
	rootCmd.PersistentFlags().StringVar(&userID, "user", os.Getenv("PULSE_USER_ID"), "Acting user ID")
	rootCmd.PersistentFlags().BoolVar(&jsonOutput, "json", false, "Output in JSON format")

	clientFn := func() *cli.Client { return cli.NewClient(apiURL, userID) }
	outputFn := func() *cli.Output { return cli.NewOutput(jsonOutput) }

	rootCmd.AddCommand(
		cli.NewAutomationCmd(clientFn, outputFn),
		cli.NewRunCmd(clientFn, outputFn),
		cli.NewTokenCmd(clientFn, outputFn),
	)

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}
