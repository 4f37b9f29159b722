package cli

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/spf13/cobra"

	"github.com/bewear-pt/storefront/internal/pkg/env"
	"github.com/bewear-pt/storefront/internal/pkg/jobqueue"
)

// openQueue is replaced in tests.
var openQueue = func() *jobqueue.Queue {
	client := redis.NewClient(&redis.Options{
		Addr:     fmt.Sprintf("%s:%s", env.GetEnv("CACHE_HOST", "localhost"), env.GetEnv("CACHE_PORT", "6379")),
		Password: env.GetEnv("CACHE_PASSWORD", ""),
	})
	return jobqueue.NewQueueWithClient(client, 1)
}

// NewQueueCommand creates the queue command for inspecting background jobs.
func NewQueueCommand(_ *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "queue",
		Short: "Inspect the background job queue",
	}

	cmd.AddCommand(&cobra.Command{
		Use:   "stats",
		Short: "Show queue length and job counters",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, cancel := context.WithTimeout(cmd.Context(), 5*time.Second)
			defer cancel()
			return printQueueStats(ctx, cmd, openQueue())
		},
	})

	return cmd
}

func printQueueStats(ctx context.Context, cmd *cobra.Command, q *jobqueue.Queue) error {
	stats, err := q.Stats(ctx)
	if err != nil {
		return fmt.Errorf("read queue stats: %w", err)
	}

	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "Queued:     %d\n", stats.Pending)
	fmt.Fprintf(out, "Processing: %d\n", stats.Processing)
	fmt.Fprintf(out, "Delayed:    %d\n", stats.Delayed)
	for _, status := range []jobqueue.JobStatus{
		jobqueue.JobStatusCompleted,
		jobqueue.JobStatusFailed,
		jobqueue.JobStatusRetrying,
	} {
		fmt.Fprintf(out, "%-11s %d\n", string(status)+":", stats.Totals[status])
	}
	return nil
}
