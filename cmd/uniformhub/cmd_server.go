package main

import (
	"fmt"
	"net"
	"os"
	"sort"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/shashiranjanraj/uniformhub/config"
	"github.com/shashiranjanraj/uniformhub/internal/kernel"
	"github.com/shashiranjanraj/uniformhub/internal/server"
)

var (
	serveNoGRPC     bool
	serveNoWorkers  bool
	serveNoSchedule bool
)

var serveCmd = &cobra.Command{
	Use:     "serve",
	Aliases: []string{"run"},
	Short:   "Start the HTTP API with workers and the scheduler",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, stop := signalContext()
		defer stop()

		k, cleanup, err := boot(ctx)
		if err != nil {
			return err
		}
		defer cleanup()

		o := server.Options{
			HTTPAddr: net.JoinHostPort("", config.AppPort()),
			GRPCAddr: net.JoinHostPort("", config.GRPCPort()),
			Workers:  config.QueueWorkers(),
			Schedule: !serveNoSchedule,
		}
		if serveNoGRPC {
			o.GRPCAddr = ""
		}
		if serveNoWorkers {
			o.Workers = 0
		}
		return server.Run(ctx, k, o)
	},
}

// route:list builds the router without touching the database.
var routeListCmd = &cobra.Command{
	Use:   "route:list",
	Short: "List all registered named routes",
	RunE: func(cmd *cobra.Command, args []string) error {
		r, err := kernel.New(kernel.Options{}).Router()
		if err != nil {
			return err
		}

		infos := r.Routes()
		sort.Slice(infos, func(i, j int) bool {
			if infos[i].Path != infos[j].Path {
				return infos[i].Path < infos[j].Path
			}
			return infos[i].Method < infos[j].Method
		})

		w := tabwriter.NewWriter(os.Stdout, 0, 0, 3, ' ', 0)
		fmt.Fprintln(w, "METHOD\tPATH\tNAME")
		fmt.Fprintln(w, "------\t----\t----")
		for _, ri := range infos {
			fmt.Fprintf(w, "%s\t%s\t%s\n", ri.Method, ri.Path, ri.Name)
		}
		return w.Flush()
	},
}

func init() {
	serveCmd.Flags().BoolVar(&serveNoGRPC, "no-grpc", false, "Do not open the gRPC health port")
	serveCmd.Flags().BoolVar(&serveNoWorkers, "no-workers", false, "Do not run queue workers in process (use queue:work)")
	serveCmd.Flags().BoolVar(&serveNoSchedule, "no-schedule", false, "Do not run the scheduler in process (use schedule:run)")
}
