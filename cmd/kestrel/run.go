package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/pflag"

	"github.com/aeroteameindhoven/kestrel"
	"github.com/aeroteameindhoven/kestrel/internal/app/board"
	"github.com/aeroteameindhoven/kestrel/internal/app/logging"
	"github.com/aeroteameindhoven/kestrel/internal/tui"
)

const defaultTUILogFile = "kestrel.log"

func runCommand(args []string) error {
	fs := pflag.NewFlagSet("run", pflag.ContinueOnError)
	var common commonFlags
	common.add(fs)
	if err := fs.Parse(args); err != nil {
		return err
	}

	cfg, err := common.load()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	// The alt screen owns stdout, so records go to a file and warnings are
	// mirrored into the status line.
	if cfg.Log.File == "" {
		cfg.Log.File = defaultTUILogFile
	}
	fileLog, closer, err := logging.New(cfg.Log, nil)
	if err != nil {
		return err
	}
	defer closer.Close()
	statusLog := tui.NewLogHandler(slog.LevelWarn)
	logger := slog.New(tui.FanoutHandler{fileLog.Handler(), statusLog})

	repaint := tui.NewSignal()
	opts := append(common.options(), kestrel.WithLogger(logger), kestrel.WithRepaint(repaint.Notify))
	rt, err := kestrel.New(cfg, opts...)
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()
	if err := rt.Start(ctx); err != nil {
		return err
	}
	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := rt.Shutdown(shutdownCtx); err != nil {
			fmt.Fprintf(os.Stderr, "shutdown: %v\n", err)
		}
	}()

	model := tui.NewModel(rt.Controller(), board.New(cfg.UI.HistoryLen), repaint)
	program := tea.NewProgram(model, tea.WithAltScreen(), tea.WithContext(ctx))
	statusLog.SetProgram(program)

	_, err = program.Run()
	if errors.Is(err, tea.ErrProgramKilled) && ctx.Err() != nil {
		return nil
	}
	return err
}
