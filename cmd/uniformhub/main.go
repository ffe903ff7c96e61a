// Command uniformhub runs the marketplace API and its maintenance tasks.
//
//	uniformhub serve              # HTTP + gRPC health + workers + scheduler
//	uniformhub migrate            # apply pending migrations
//	uniformhub seed               # roles, email templates, local disk
//	uniformhub admin:create --email a@b.c --password secret123 --name Admin
//	uniformhub schools:import --country GB
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	_ "github.com/shashiranjanraj/uniformhub/database/migrations"
	_ "github.com/shashiranjanraj/uniformhub/database/seeders"
	"github.com/shashiranjanraj/uniformhub/internal/kernel"
)

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

var rootCmd = &cobra.Command{
	Use:           "uniformhub",
	Short:         "UniformHub school-uniform marketplace",
	SilenceUsage:  true,
	SilenceErrors: true,
}

func init() {
	rootCmd.AddCommand(serveCmd, routeListCmd)
	rootCmd.AddCommand(migrateCmd, migrateRollbackCmd, migrateStatusCmd, seedCmd)
	rootCmd.AddCommand(adminCreateCmd, rolesSeedCmd, schoolsImportCmd)
	rootCmd.AddCommand(queueWorkCmd, scheduleRunCmd)
}

// signalContext is cancelled on SIGINT or SIGTERM.
func signalContext() (context.Context, context.CancelFunc) {
	return signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
}

// boot connects everything and returns a cleanup func that must run on exit.
func boot(ctx context.Context) (*kernel.Kernel, func(), error) {
	k, err := kernel.Boot(ctx)
	if err != nil {
		return nil, nil, err
	}
	return k, func() { _ = k.Close() }, nil
}
