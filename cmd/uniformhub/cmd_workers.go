package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/shashiranjanraj/uniformhub/config"
	"github.com/shashiranjanraj/uniformhub/pkg/cache"
)

var queueWorkersFlag int

var queueWorkCmd = &cobra.Command{
	Use:   "queue:work",
	Short: "Process queued jobs until interrupted",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, stop := signalContext()
		defer stop()

		k, cleanup, err := boot(ctx)
		if err != nil {
			return err
		}
		defer cleanup()

		if cache.RDB == nil {
			fmt.Println("Redis is not reachable; this worker only sees jobs pushed in this process.")
		}
		workers := queueWorkersFlag
		if workers < 1 {
			workers = config.QueueWorkers()
		}
		fmt.Printf("Queue worker started (%d workers). Press Ctrl+C to stop.\n", workers)
		k.Queue.Work(ctx, workers)
		fmt.Println("Queue worker stopped.")
		return nil
	},
}

var scheduleRunFlag bool

var scheduleRunCmd = &cobra.Command{
	Use:   "schedule:run",
	Short: "Run scheduled housekeeping tasks",
	Long:  "Runs every task once and exits, for an external cron. With --daemon it keeps running on the built-in intervals.",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, stop := signalContext()
		defer stop()

		k, cleanup, err := boot(ctx)
		if err != nil {
			return err
		}
		defer cleanup()

		s := k.Scheduler()
		for _, t := range s.List() {
			fmt.Println("  •", t)
		}
		if !scheduleRunFlag {
			s.RunAll(ctx)
			return nil
		}
		fmt.Println("Scheduler started. Press Ctrl+C to stop.")
		s.Start(ctx)
		<-ctx.Done()
		fmt.Println("Scheduler stopped.")
		return nil
	},
}

func init() {
	queueWorkCmd.Flags().IntVarP(&queueWorkersFlag, "workers", "w", 0, "Number of concurrent workers (default QUEUE_WORKERS)")
	scheduleRunCmd.Flags().BoolVar(&scheduleRunFlag, "daemon", false, "Keep running instead of a single pass")
}
