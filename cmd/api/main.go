package main

import (
	"log"
	"os"

	"github.com/spf13/cobra"

	"github.com/todoflow/core/cmd/api/commands"
	_ "github.com/todoflow/core/docs"
)

func main() {
	rootCmd := &cobra.Command{
		Use:   "todoflow",
		Short: "TodoFlow API Server",
		Long:  `TodoFlow is a multi-user todo list service with per-user data isolation, optional list caching, and scheduled retention sweeps.`,
	}

	// Add commands
	rootCmd.AddCommand(commands.NewServeCommand())
	rootCmd.AddCommand(commands.NewMigrateCommand())
	rootCmd.AddCommand(commands.NewSweepCommand())
	rootCmd.AddCommand(commands.NewVersionCommand())

	// Execute root command
	if err := rootCmd.Execute(); err != nil {
		log.Printf("Command execution failed: %v", err)
		os.Exit(1)
	}
}
