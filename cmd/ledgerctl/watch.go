package main

import (
	"context"
	"encoding/json"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/dialectdeck/ledger/internal/events"
)

// runWatch prints badge events from Redis pub/sub until ctx ends.
func runWatch(ctx context.Context, addr, channel string, out io.Writer) error {
	sub, err := events.NewRedisPublisher(ctx, addr, channel)
	if err != nil {
		return err
	}
	defer func() { _ = sub.Close() }()

	enc := json.NewEncoder(out)
	return sub.Subscribe(ctx, func(evt events.Event) {
		_ = enc.Encode(evt)
	})
}

func init() {
	var addr, channel string
	watchCmd := &cobra.Command{
		Use:   "watch",
		Short: "Stream badge award events from Redis",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()
			return runWatch(ctx, addr, channel, os.Stdout)
		},
	}
	watchCmd.Flags().StringVar(&addr, "redis", "localhost:6379", "Redis address")
	watchCmd.Flags().StringVar(&channel, "channel", "ledger-events", "Pub/sub channel")
	rootCmd.AddCommand(watchCmd)
}
