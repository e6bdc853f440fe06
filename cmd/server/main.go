// Command server runs the RentConnect API and its maintenance tasks.
package main

import (
    "fmt"
    "os"

    "github.com/spf13/cobra"
)

func main() {
    root := &cobra.Command{
        Use:           "rentconnect",
        Short:         "RentConnect rental listing API",
        SilenceUsage:  true,
        SilenceErrors: true,
    }
    root.AddCommand(serveCmd(), migrateCmd(), consumerCmd())

    if err := root.Execute(); err != nil {
        fmt.Fprintln(os.Stderr, err)
        os.Exit(1)
    }
}
