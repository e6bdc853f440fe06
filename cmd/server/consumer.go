package main

import (
    "context"
    "errors"
    "os/signal"
    "syscall"

    "github.com/spf13/cobra"

    "github.com/chrolluash/rentconnect/internal/config"
    "github.com/chrolluash/rentconnect/internal/queue"
)

func consumerCmd() *cobra.Command {
    var out string
    cmd := &cobra.Command{
        Use:   "consumer",
        Short: "Append property events from RabbitMQ to the activity log",
        RunE: func(cmd *cobra.Command, args []string) error {
            cfg := config.Load()
            log := config.NewLogger(cfg)
            if out == "" {
                out = cfg.ActivityLog
            }
            ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
            defer stop()

            log.WithField("file", out).Info("property-consumer: starting")
            err := queue.StartPropertyConsumer(ctx, cfg.RabbitURL, &queue.ActivityLog{Path: out}, log)
            if errors.Is(err, context.Canceled) {
                return nil
            }
            return err
        },
    }
    cmd.Flags().StringVar(&out, "out", "", "activity log file (default ACTIVITY_LOG)")
    return cmd
}
