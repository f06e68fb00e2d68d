package main

import (
	"fmt"
	"os"

	"github.com/nirvanaflow/api/cmd/configure/commands"
	"github.com/spf13/cobra"
)

func main() {
	var rootCmd = &cobra.Command{
		Use:   "nirvanaflow-configure",
		Short: "Configuration tool for the NirvanaFlow API",
		Long:  "CLI tool for inspecting and tuning per-user email importance scoring",
	}

	rootCmd.AddCommand(commands.NewShowCmd())
	rootCmd.AddCommand(commands.NewImportCmd())
	rootCmd.AddCommand(commands.NewResetCmd())

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
