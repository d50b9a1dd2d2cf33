package main

import (
	"context"
	"fmt"
	"os"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/console-cowboy/icingactl/internal/config"
	"github.com/console-cowboy/icingactl/internal/grains"
	"github.com/console-cowboy/icingactl/internal/icinga2"
	"github.com/console-cowboy/icingactl/internal/logger"
	"github.com/console-cowboy/icingactl/internal/model"
	"github.com/console-cowboy/icingactl/internal/state"
	"github.com/console-cowboy/icingactl/internal/tui"
)

const defaultGrainsFile = "/etc/icingactl/grains.yaml"

type applyOptions struct {
	ConfigPath     string
	DryRun         bool
	Verbose        bool
	NonInteractive bool
}

var applyCmdRunner = runApply

func newApplyCmd(root *rootFlags) *cobra.Command {
	opts := applyOptions{}

	cmd := &cobra.Command{
		Use:   "apply",
		Short: "Apply a node state document",
		RunE: func(cmd *cobra.Command, args []string) error {
			opts.DryRun = root.dryRun
			opts.Verbose = root.verbose
			opts.NonInteractive = !term.IsTerminal(int(os.Stdout.Fd()))

			return applyCmdRunner(opts)
		},
	}

	cmd.Flags().StringVarP(&opts.ConfigPath, "config", "c", "", "Path to state document")
	cmd.MarkFlagRequired("config") //nolint:errcheck

	return cmd
}

func runApply(opts applyOptions) error {
	cfg, err := config.ParseConfig(opts.ConfigPath)
	if err != nil {
		return err
	}

	ctx := context.Background()

	effectiveDryRun := opts.DryRun || cfg.Settings.DryRun
	effectiveVerbose := opts.Verbose || cfg.Settings.Verbose

	level := "info"
	if effectiveVerbose {
		level = "debug"
	}

	log, err := logger.New(logger.Options{Level: level, HumanReadable: true})
	if err != nil {
		return err
	}

	cli, err := icinga2.New(ctx)
	if err != nil {
		return err
	}
	if cfg.Settings.CertsDir != "" {
		cli.SetCertsDir(cfg.Settings.CertsDir)
	}

	grainsFile := cfg.Settings.GrainsFile
	if grainsFile == "" {
		grainsFile = defaultGrainsFile
	}
	store, err := grains.Open(grainsFile)
	if err != nil {
		return err
	}

	runner := state.NewRunner(&state.RunContext{
		DryRun:   effectiveDryRun,
		CertsDir: cli.CertsDir(),
		Files:    state.OSFilesystem{},
		Grains:   store,
		Commands: cli,
		Logger:   log,
	})

	modelState := tui.NewModel(cfg, effectiveDryRun)
	interactive := !opts.NonInteractive

	var program *tea.Program
	var programErr error
	done := make(chan struct{})

	if interactive {
		program = tea.NewProgram(modelState)
		go func() {
			_, programErr = program.Run()
			close(done)
		}()
	}

	failed := 0
	for i := range cfg.Steps {
		step := &cfg.Steps[i]
		dispatchTuiMessage(interactive, program, &modelState, tui.StepStartMsg{ID: step.ID})

		res := runner.Run(ctx, step)
		if res.Status == model.StatusFailed {
			failed++
		}

		dispatchTuiMessage(interactive, program, &modelState, tui.StepCompleteMsg{ID: step.ID, Result: res})
	}

	if interactive {
		if program != nil {
			program.Send(tea.QuitMsg{})
		}
		<-done
		if programErr != nil {
			return programErr
		}
	} else {
		fmt.Fprintln(os.Stdout, modelState.View())
	}

	if failed > 0 {
		return fmt.Errorf("%d of %d states failed", failed, len(cfg.Steps))
	}

	return nil
}

func dispatchTuiMessage(interactive bool, program *tea.Program, view *tui.Model, msg tea.Msg) {
	if interactive {
		if program != nil {
			program.Send(msg)
		}
		return
	}

	updated, _ := view.Update(msg)
	if m, ok := updated.(tui.Model); ok {
		*view = m
	}
}
