package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/goliatone/go-admingen/internal/cli"
)

func main() {
	rootCmd := &cobra.Command{
		Use:   "admingen",
		Short: "Generate ng-admin configuration from entity metadata",
		Long: `admingen reads entity metadata (properties and ORM associations) and
renders a declarative admin configuration for every entity.`,
		SilenceUsage: true,
	}

	rootCmd.AddCommand(cli.GenerateCmd())
	rootCmd.AddCommand(cli.ServeCmd())

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
