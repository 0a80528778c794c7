package main

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/jmylchreest/gitisland/internal/dbus"
	"github.com/jmylchreest/gitisland/internal/store"
)

const controlTimeout = 5 * time.Second

var openCmd = &cobra.Command{
	Use:   "open",
	Short: "Open the panel of the running island",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return control(cmd, "opened", (*dbus.Client).Open)
	},
}

var closeCmd = &cobra.Command{
	Use:   "close",
	Short: "Close the panel of the running island",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return control(cmd, "closed", (*dbus.Client).CloseIsland)
	},
}

var toggleCmd = &cobra.Command{
	Use:   "toggle",
	Short: "Open or close the panel of the running island",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return control(cmd, "toggled", (*dbus.Client).Toggle)
	},
}

var resetAnimationCmd = &cobra.Command{
	Use:   "reset-animation",
	Short: "Play the loading animation again on the next open",
	Long: `Clear the first-run flag so that the next time the panel loads its
grid, the reveal animation plays again. When no island is running the
shared state file is updated directly.`,
	Args: cobra.NoArgs,
	RunE: runResetAnimation,
}

func init() {
	rootCmd.AddCommand(openCmd, closeCmd, toggleCmd, resetAnimationCmd)
}

// control calls one state-changing method on the running island.
func control(cmd *cobra.Command, verb string, method func(*dbus.Client, context.Context) (bool, error)) error {
	client, err := dbus.NewClient()
	if err != nil {
		return err
	}
	defer func() { _ = client.Close() }()

	ctx, cancel := context.WithTimeout(cmd.Context(), controlTimeout)
	defer cancel()

	changed, err := method(client, ctx)
	if err != nil {
		return err
	}
	if changed {
		fmt.Fprintf(cmd.OutOrStdout(), "island %s\n", verb)
	} else {
		fmt.Fprintln(cmd.OutOrStdout(), "island unchanged")
	}
	return nil
}

func runResetAnimation(cmd *cobra.Command, args []string) error {
	err := resetViaBus(cmd.Context())
	if err == nil {
		fmt.Fprintln(cmd.OutOrStdout(), "loading animation re-armed")
		return nil
	}
	if !errors.Is(err, dbus.ErrNotRunning) {
		logger.Warn("control interface unavailable, updating state file", "error", err)
	}

	flag, err := store.NewFileFlagStore("")
	if err != nil {
		return err
	}
	if err := flag.ResetAnimation(); err != nil {
		return fmt.Errorf("failed to reset animation: %w", err)
	}
	fmt.Fprintf(cmd.OutOrStdout(), "loading animation re-armed (%s)\n", flag.Path())
	return nil
}

func resetViaBus(parent context.Context) error {
	client, err := dbus.NewClient()
	if err != nil {
		return err
	}
	defer func() { _ = client.Close() }()

	ctx, cancel := context.WithTimeout(parent, controlTimeout)
	defer cancel()
	return client.ResetAnimation(ctx)
}
