package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/console-cowboy/icingactl/internal/grains"
)

func newGrainsCmd(rootFlags *rootFlags) *cobra.Command {
	var grainsFile string

	cmd := &cobra.Command{
		Use:   "grains",
		Short: "Inspect and edit stored node grains",
		RunE: func(cmd *cobra.Command, args []string) error {
			return cmd.Help()
		},
	}

	cmd.PersistentFlags().StringVar(&grainsFile, "file", defaultGrainsFile, "Path to the grains file")

	cmd.AddCommand(newGrainsListCmd(&grainsFile))
	cmd.AddCommand(newGrainsGetCmd(&grainsFile))
	cmd.AddCommand(newGrainsSetCmd(rootFlags, &grainsFile))
	cmd.AddCommand(newGrainsDeleteCmd(rootFlags, &grainsFile))

	return cmd
}

func newGrainsListCmd(grainsFile *string) *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List stored grain names",
		RunE: func(cmd *cobra.Command, args []string) error {
			store, err := grains.Open(*grainsFile)
			if err != nil {
				return err
			}

			keys := store.Keys()
			if len(keys) == 0 {
				fmt.Fprintln(cmd.OutOrStdout(), "No grains stored.")
				return nil
			}
			fmt.Fprintln(cmd.OutOrStdout(), strings.Join(keys, "\n"))
			return nil
		},
	}
}

func newGrainsGetCmd(grainsFile *string) *cobra.Command {
	return &cobra.Command{
		Use:   "get <name>",
		Short: "Print a grain value",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			store, err := grains.Open(*grainsFile)
			if err != nil {
				return err
			}

			value := store.Get(args[0])
			if value == nil {
				return fmt.Errorf("grain %q is not set", args[0])
			}

			out, err := yaml.Marshal(value)
			if err != nil {
				return err
			}
			fmt.Fprint(cmd.OutOrStdout(), string(out))
			return nil
		},
	}
}

func newGrainsSetCmd(rootFlags *rootFlags, grainsFile *string) *cobra.Command {
	return &cobra.Command{
		Use:   "set <name> <value>",
		Short: "Store a grain value",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			if rootFlags.dryRun {
				fmt.Fprintf(cmd.OutOrStdout(), "Would set grain %s\n", args[0])
				return nil
			}

			store, err := grains.Open(*grainsFile)
			if err != nil {
				return err
			}

			if err := store.Set(args[0], args[1]); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Grain %s set\n", args[0])
			return nil
		},
	}
}

func newGrainsDeleteCmd(rootFlags *rootFlags, grainsFile *string) *cobra.Command {
	return &cobra.Command{
		Use:   "delete <name>",
		Short: "Remove a grain",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if rootFlags.dryRun {
				fmt.Fprintf(cmd.OutOrStdout(), "Would delete grain %s\n", args[0])
				return nil
			}

			store, err := grains.Open(*grainsFile)
			if err != nil {
				return err
			}

			if err := store.Delete(args[0]); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Grain %s deleted\n", args[0])
			return nil
		},
	}
}
