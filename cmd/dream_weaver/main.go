package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "dream_weaver",
	Short: "Dream journal with AI tools and nearby dreamer discovery",
	Long: `dream_weaver keeps a local dream journal, offers AI interpretation,
story sparks and visualizations for entries, and finds dreamers near you
who share your interests.

Configuration comes from the environment or a .env file.`,
	SilenceUsage: true,
}

func init() {
	rootCmd.AddCommand(serveCmd, entriesCmd, nearbyCmd, followCmd, followingCmd)
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := rootCmd.ExecuteContext(ctx); err != nil {
		fmt.Fprintln(os.Stderr, err)
		stop()
		os.Exit(1)
	}
}
