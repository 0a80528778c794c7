package main

import (
	"errors"
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/pelletier/go-toml/v2"
	"github.com/spf13/cobra"

	"github.com/jmylchreest/gitisland/internal/config"
	"github.com/jmylchreest/gitisland/internal/theme"
)

var configOpts struct {
	defaults bool
	force    bool
	format   string
}

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Inspect and create the configuration file",
}

var configPathCmd = &cobra.Command{
	Use:   "path",
	Short: "Print the config file path",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		_, err := fmt.Fprintln(cmd.OutOrStdout(), configPath())
		return err
	},
}

var configShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Print the effective configuration as TOML",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		c := cfg
		if configOpts.defaults {
			c = config.DefaultConfig()
		}
		data, err := toml.Marshal(c)
		if err != nil {
			return fmt.Errorf("failed to marshal config: %w", err)
		}
		_, err = cmd.OutOrStdout().Write(data)
		return err
	},
}

var configInitCmd = &cobra.Command{
	Use:   "init",
	Short: "Write a default config file",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		path := configPath()
		if _, err := os.Stat(path); err == nil && !configOpts.force {
			return fmt.Errorf("%s already exists (use --force to overwrite)", path)
		} else if err != nil && !errors.Is(err, os.ErrNotExist) {
			return err
		}
		if err := config.DefaultConfig().Save(path); err != nil {
			return err
		}
		_, err := fmt.Fprintf(cmd.OutOrStdout(), "wrote %s\n", path)
		return err
	},
}

var configThemesCmd = &cobra.Command{
	Use:   "themes",
	Short: "List bundled and user themes",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := checkFormat(configOpts.format, formatText, formatJSON, formatYAML); err != nil {
			return err
		}
		themes, err := theme.ListAvailableThemes()
		if err != nil {
			return err
		}
		out := cmd.OutOrStdout()
		if configOpts.format != formatText {
			return writeStructured(out, configOpts.format, themes)
		}

		tw := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
		fmt.Fprintln(tw, "NAME\tSOURCE\tACTIVE")
		for _, t := range themes {
			source := t.Path
			if t.IsBundled {
				source = "bundled"
			}
			active := ""
			if t.Name == cfg.Display.Theme {
				active = "*"
			}
			fmt.Fprintf(tw, "%s\t%s\t%s\n", t.Name, source, active)
		}
		return tw.Flush()
	},
}

func init() {
	rootCmd.AddCommand(configCmd)
	configCmd.AddCommand(configPathCmd, configShowCmd, configInitCmd, configThemesCmd)

	configShowCmd.Flags().BoolVar(&configOpts.defaults, "defaults", false,
		"Show built-in defaults instead of the loaded file")
	configInitCmd.Flags().BoolVar(&configOpts.force, "force", false,
		"Overwrite an existing file")
	configThemesCmd.Flags().StringVarP(&configOpts.format, "format", "f", formatText,
		"Output format (text, json, yaml)")
}
