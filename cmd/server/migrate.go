package main

import (
    "fmt"
    "strconv"

    "github.com/sirupsen/logrus"
    "github.com/spf13/cobra"

    "github.com/chrolluash/rentconnect/internal/config"
    "github.com/chrolluash/rentconnect/internal/database"
)

func migrateCmd() *cobra.Command {
    cmd := &cobra.Command{
        Use:   "migrate",
        Short: "Manage the database schema",
    }
    cmd.AddCommand(
        &cobra.Command{
            Use:   "up",
            Short: "Apply all pending migrations",
            RunE: func(cmd *cobra.Command, args []string) error {
                cfg := config.Load()
                return migrateUp(cfg, config.NewLogger(cfg))
            },
        },
        &cobra.Command{
            Use:   "down [steps]",
            Short: "Roll back migrations (all when steps is omitted)",
            Args:  cobra.MaximumNArgs(1),
            RunE: func(cmd *cobra.Command, args []string) error {
                steps := 0
                if len(args) == 1 {
                    n, err := strconv.Atoi(args[0])
                    if err != nil || n < 1 {
                        return fmt.Errorf("steps must be a positive integer, got %q", args[0])
                    }
                    steps = n
                }
                cfg := config.Load()
                log := config.NewLogger(cfg)
                return withMigrator(cfg, func(m *database.Migrator) error {
                    if err := m.Down(steps); err != nil {
                        return err
                    }
                    logVersion(log, m)
                    return nil
                })
            },
        },
        &cobra.Command{
            Use:   "version",
            Short: "Print the current schema version",
            RunE: func(cmd *cobra.Command, args []string) error {
                cfg := config.Load()
                return withMigrator(cfg, func(m *database.Migrator) error {
                    logVersion(config.NewLogger(cfg), m)
                    return nil
                })
            },
        },
    )
    return cmd
}

func migrateUp(cfg config.Config, log logrus.FieldLogger) error {
    return withMigrator(cfg, func(m *database.Migrator) error {
        if err := m.Up(); err != nil {
            return err
        }
        logVersion(log, m)
        return nil
    })
}

// withMigrator opens a dedicated connection for fn; Migrator.Close closes it.
func withMigrator(cfg config.Config, fn func(*database.Migrator) error) error {
    db, err := database.Open(cfg.DBUser, cfg.DBPass, cfg.DBHost, cfg.DBPort, cfg.DBName)
    if err != nil {
        return fmt.Errorf("open database: %w", err)
    }
    m, err := database.NewMigrator(db)
    if err != nil {
        _ = db.Close()
        return err
    }
    defer func() { _ = m.Close() }()
    return fn(m)
}

func logVersion(log logrus.FieldLogger, m *database.Migrator) {
    v, dirty, err := m.Version()
    if err != nil {
        log.WithError(err).Warn("schema version unknown")
        return
    }
    log.WithFields(logrus.Fields{"version": v, "dirty": dirty}).Info("schema")
}
