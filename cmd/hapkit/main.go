package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"hapkit/internal/bootstrap"
	"hapkit/internal/platform/config"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		_, _ = fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

// rootOptions holds the global flags shared by every subcommand.
type rootOptions struct {
	base     string
	logLevel string
}

func newRootCmd() *cobra.Command {
	opts := &rootOptions{}

	root := &cobra.Command{
		Use:           "hapkit",
		Short:         "Haptic pattern toolkit and driver bridge",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.PersistentFlags().StringVar(&opts.base, "base", ".", "hapkit base directory")
	root.PersistentFlags().StringVar(&opts.logLevel, "log-level", "", "override the configured log level (trace, debug, info, warn, error)")

	root.AddCommand(newStatusCmd(opts))
	root.AddCommand(newEngineCmd(opts))
	root.AddCommand(newPlayCmd(opts))
	root.AddCommand(newValidateCmd(opts))
	root.AddCommand(newPresetsCmd(opts))
	root.AddCommand(newDriversCmd(opts))
	root.AddCommand(newLibraryCmd(opts))
	return root
}

func loadApp(opts *rootOptions) (*bootstrap.App, error) {
	cfg, err := config.New(opts.base)
	if err != nil {
		return nil, err
	}
	if opts.logLevel != "" {
		cfg.LogLevel = opts.logLevel
	}
	return bootstrap.New(cfg)
}

func newStatusCmd(opts *rootOptions) *cobra.Command {
	var probe bool
	status := &cobra.Command{
		Use:   "status",
		Short: "Show engine session status",
		RunE: func(cmd *cobra.Command, _ []string) error {
			app, err := loadApp(opts)
			if err != nil {
				return err
			}
			defer func() { _ = app.Close() }()
			ctx := context.Background()

			out := app.SessionCLI.Status(ctx)
			_, _ = fmt.Fprintf(cmd.OutOrStdout(), "state=%s driver=%s restarts=%d\n", out.State, out.Driver, out.Restarts)
			if !out.StartedAt.IsZero() {
				_, _ = fmt.Fprintf(cmd.OutOrStdout(), "started_at=%s\n", out.StartedAt.Format(time.RFC3339))
			}
			if out.LastSignal != "" {
				_, _ = fmt.Fprintf(cmd.OutOrStdout(), "last_signal=%s at=%s\n", out.LastSignal, out.SignalAt.Format(time.RFC3339))
			}
			if !probe {
				return nil
			}
			supported, err := app.SessionCLI.SupportsHaptics(ctx)
			if err != nil {
				return err
			}
			version, err := app.SessionCLI.PlatformVersion(ctx)
			if err != nil {
				return err
			}
			_, _ = fmt.Fprintf(cmd.OutOrStdout(), "haptics_supported=%t\n", supported)
			_, _ = fmt.Fprintf(cmd.OutOrStdout(), "driver_version=%s\n", version)
			return nil
		},
	}
	status.Flags().BoolVar(&probe, "probe", false, "launch the driver to query device capabilities")
	return status
}

func newEngineCmd(opts *rootOptions) *cobra.Command {
	engine := &cobra.Command{Use: "engine", Short: "Engine session lifecycle"}

	engine.AddCommand(&cobra.Command{
		Use:   "start",
		Short: "Start the haptic engine",
		RunE: func(cmd *cobra.Command, _ []string) error {
			app, err := loadApp(opts)
			if err != nil {
				return err
			}
			defer func() { _ = app.Close() }()
			if err := app.SessionCLI.StartEngine(context.Background()); err != nil {
				return err
			}
			_, _ = fmt.Fprintln(cmd.OutOrStdout(), "engine started")
			return nil
		},
	})

	engine.AddCommand(&cobra.Command{
		Use:   "stop",
		Short: "Stop the haptic engine",
		RunE: func(cmd *cobra.Command, _ []string) error {
			app, err := loadApp(opts)
			if err != nil {
				return err
			}
			defer func() { _ = app.Close() }()
			if err := app.SessionCLI.StopEngine(context.Background()); err != nil {
				return err
			}
			_, _ = fmt.Fprintln(cmd.OutOrStdout(), "engine stopped")
			return nil
		},
	})

	engine.AddCommand(&cobra.Command{
		Use:   "time",
		Short: "Show the engine clock",
		RunE: func(cmd *cobra.Command, _ []string) error {
			app, err := loadApp(opts)
			if err != nil {
				return err
			}
			defer func() { _ = app.Close() }()
			_, _ = fmt.Fprintf(cmd.OutOrStdout(), "%.3f\n", app.SessionCLI.CurrentTime(context.Background()))
			return nil
		},
	})

	return engine
}

func newPlayCmd(opts *rootOptions) *cobra.Command {
	play := &cobra.Command{Use: "play", Short: "Play haptic patterns"}

	var intensity, sharpness, delay, duration float64
	preset := &cobra.Command{
		Use:   "preset <name>",
		Short: "Play a built-in preset",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			app, err := loadApp(opts)
			if err != nil {
				return err
			}
			defer func() { _ = app.Close() }()
			ctx := context.Background()

			detail, err := app.PatternCLI.BuildPreset(ctx, args[0], intensity, sharpness, delay, duration)
			if err != nil {
				return err
			}
			report, err := app.SessionCLI.PlayDetail(ctx, detail)
			if err != nil {
				return err
			}
			_, _ = fmt.Fprintf(cmd.OutOrStdout(), "played %s: %d events over %.2fs\n", args[0], report.Events, report.Duration)
			waitForPlayback(report.Duration)
			return nil
		},
	}
	preset.Flags().Float64Var(&intensity, "intensity", 1.0, "event intensity (0..1)")
	preset.Flags().Float64Var(&sharpness, "sharpness", 0.5, "event sharpness (0..1)")
	preset.Flags().Float64Var(&delay, "delay", 0, "double-tap delay in seconds (0 uses the default)")
	preset.Flags().Float64Var(&duration, "duration", 0, "continuous-buzz duration in seconds (0 uses the default)")

	file := &cobra.Command{
		Use:   "file <path>",
		Short: "Play a pattern file",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			app, err := loadApp(opts)
			if err != nil {
				return err
			}
			defer func() { _ = app.Close() }()

			report, err := app.SessionCLI.PlayFile(context.Background(), args[0])
			if err != nil {
				return err
			}
			printSkipped(cmd, report.Skipped)
			if report.Empty {
				_, _ = fmt.Fprintln(cmd.OutOrStdout(), "pattern is empty, nothing to play")
				return nil
			}
			_, _ = fmt.Fprintf(cmd.OutOrStdout(), "played %d events over %.2fs\n", report.Events, report.Duration)
			waitForPlayback(report.Duration)
			return nil
		},
	}

	inline := &cobra.Command{
		Use:   "json <document>",
		Short: "Play a pattern document passed on the command line",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			app, err := loadApp(opts)
			if err != nil {
				return err
			}
			defer func() { _ = app.Close() }()

			report, err := app.SessionCLI.PlayJSON(context.Background(), args[0])
			if err != nil {
				return err
			}
			printSkipped(cmd, report.Skipped)
			if report.Empty {
				_, _ = fmt.Fprintln(cmd.OutOrStdout(), "pattern is empty, nothing to play")
				return nil
			}
			_, _ = fmt.Fprintf(cmd.OutOrStdout(), "played %d events over %.2fs\n", report.Events, report.Duration)
			waitForPlayback(report.Duration)
			return nil
		},
	}

	stored := &cobra.Command{
		Use:   "pattern <name>",
		Short: "Play a stored library pattern",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			app, err := loadApp(opts)
			if err != nil {
				return err
			}
			defer func() { _ = app.Close() }()
			ctx := context.Background()

			detail, err := app.PatternCLI.GetPattern(ctx, args[0])
			if err != nil {
				return err
			}
			report, err := app.SessionCLI.PlayDetail(ctx, detail)
			if err != nil {
				return err
			}
			_, _ = fmt.Fprintf(cmd.OutOrStdout(), "played %s: %d events over %.2fs\n", detail.Name, report.Events, report.Duration)
			waitForPlayback(report.Duration)
			return nil
		},
	}

	play.AddCommand(preset, file, inline, stored)
	return play
}

func newValidateCmd(opts *rootOptions) *cobra.Command {
	var strict bool
	validate := &cobra.Command{
		Use:   "validate <path>",
		Short: "Validate a pattern file",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			app, err := loadApp(opts)
			if err != nil {
				return err
			}
			defer func() { _ = app.Close() }()

			report, err := app.PatternCLI.ValidateFile(context.Background(), args[0], strict)
			if err != nil {
				return err
			}
			printSkipped(cmd, report.Skipped)
			if !report.Valid {
				return fmt.Errorf("invalid pattern: %s", report.Problem)
			}
			_, _ = fmt.Fprintf(cmd.OutOrStdout(), "valid: %d events over %.2fs\n", report.Events, report.Duration)
			return nil
		},
	}
	validate.Flags().BoolVar(&strict, "strict", false, "reject unknown event types and parameters")
	return validate
}

func newPresetsCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "presets",
		Short: "List built-in pattern presets",
		RunE: func(cmd *cobra.Command, _ []string) error {
			app, err := loadApp(opts)
			if err != nil {
				return err
			}
			defer func() { _ = app.Close() }()
			for _, name := range app.PatternCLI.ListPresets(context.Background()) {
				_, _ = fmt.Fprintln(cmd.OutOrStdout(), name)
			}
			return nil
		},
	}
}

func newDriversCmd(opts *rootOptions) *cobra.Command {
	drivers := &cobra.Command{Use: "drivers", Short: "Driver registry commands"}

	drivers.AddCommand(&cobra.Command{
		Use:   "list",
		Short: "List registered drivers",
		RunE: func(cmd *cobra.Command, _ []string) error {
			app, err := loadApp(opts)
			if err != nil {
				return err
			}
			defer func() { _ = app.Close() }()

			list, err := app.SessionCLI.ListDrivers(context.Background())
			if err != nil {
				return err
			}
			if len(list) == 0 {
				_, _ = fmt.Fprintln(cmd.OutOrStdout(), "no drivers registered")
				return nil
			}
			for _, d := range list {
				platforms := "any"
				if len(d.Platforms) > 0 {
					platforms = strings.Join(d.Platforms, ",")
				}
				_, _ = fmt.Fprintf(cmd.OutOrStdout(), "%s@%s enabled=%t platforms=%s binary=%s\n", d.Name, d.Version, d.Enabled, platforms, d.Binary)
			}
			return nil
		},
	})

	drivers.AddCommand(&cobra.Command{
		Use:   "doctor",
		Short: "Probe registered drivers",
		RunE: func(cmd *cobra.Command, _ []string) error {
			app, err := loadApp(opts)
			if err != nil {
				return err
			}
			defer func() { _ = app.Close() }()

			reports, err := app.SessionCLI.Doctor(context.Background())
			if err != nil {
				return err
			}
			if len(reports) == 0 {
				_, _ = fmt.Fprintln(cmd.OutOrStdout(), "no drivers registered")
				return nil
			}
			exitErr := false
			for _, r := range reports {
				marker := "OK"
				if r.Problem != "" {
					marker = "FAIL"
					exitErr = true
				}
				_, _ = fmt.Fprintf(cmd.OutOrStdout(), "[%s] %s binary=%t checksum=%t reachable=%t platform=%s", marker, r.Name, r.BinaryExists, r.ChecksumValid, r.Reachable, r.Platform)
				if r.Problem != "" {
					_, _ = fmt.Fprintf(cmd.OutOrStdout(), " problem=%q", r.Problem)
				}
				_, _ = fmt.Fprintln(cmd.OutOrStdout())
			}
			if exitErr {
				return fmt.Errorf("driver doctor found failing drivers")
			}
			return nil
		},
	})

	return drivers
}

func newLibraryCmd(opts *rootOptions) *cobra.Command {
	library := &cobra.Command{Use: "library", Short: "Stored pattern library"}

	library.AddCommand(&cobra.Command{
		Use:   "list",
		Short: "List stored patterns",
		RunE: func(cmd *cobra.Command, _ []string) error {
			app, err := loadApp(opts)
			if err != nil {
				return err
			}
			defer func() { _ = app.Close() }()

			entries, err := app.PatternCLI.ListPatterns(context.Background())
			if err != nil {
				return err
			}
			if len(entries) == 0 {
				_, _ = fmt.Fprintln(cmd.OutOrStdout(), "no patterns stored")
				return nil
			}
			for _, e := range entries {
				_, _ = fmt.Fprintf(cmd.OutOrStdout(), "%s\t%d events (%d transient, %d continuous)\t%.2fs\t%s\n",
					e.Name, e.Events, e.Transients, e.Continuous, e.Duration, e.UpdatedAt.Format(time.RFC3339))
			}
			return nil
		},
	})

	library.AddCommand(&cobra.Command{
		Use:   "show <name>",
		Short: "Show a stored pattern",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			app, err := loadApp(opts)
			if err != nil {
				return err
			}
			defer func() { _ = app.Close() }()

			detail, err := app.PatternCLI.GetPattern(context.Background(), args[0])
			if err != nil {
				return err
			}
			_, _ = fmt.Fprintf(cmd.OutOrStdout(), "name: %s\nduration: %.3fs\nevents: %d\n", detail.Name, detail.Duration, len(detail.Events))
			for _, ev := range detail.Events {
				if ev.Kind == "continuous" {
					_, _ = fmt.Fprintf(cmd.OutOrStdout(), "  %-10s t=%.3f d=%.3f intensity=%.2f sharpness=%.2f\n", ev.Kind, ev.Time, ev.Duration, ev.Intensity, ev.Sharpness)
					continue
				}
				_, _ = fmt.Fprintf(cmd.OutOrStdout(), "  %-10s t=%.3f intensity=%.2f sharpness=%.2f\n", ev.Kind, ev.Time, ev.Intensity, ev.Sharpness)
			}
			return nil
		},
	})

	var savePreset, saveName string
	var intensity, sharpness, delay, duration float64
	save := &cobra.Command{
		Use:   "save --preset <name>",
		Short: "Build a preset and store it in the library",
		RunE: func(cmd *cobra.Command, _ []string) error {
			if strings.TrimSpace(savePreset) == "" {
				return fmt.Errorf("--preset is required")
			}
			app, err := loadApp(opts)
			if err != nil {
				return err
			}
			defer func() { _ = app.Close() }()
			ctx := context.Background()

			detail, err := app.PatternCLI.BuildPreset(ctx, savePreset, intensity, sharpness, delay, duration)
			if err != nil {
				return err
			}
			saved, err := app.PatternCLI.SavePattern(ctx, saveName, detail)
			if err != nil {
				return err
			}
			_, _ = fmt.Fprintf(cmd.OutOrStdout(), "saved %s (%d events) to %s\n", saved.Name, saved.Events, saved.Path)
			return nil
		},
	}
	save.Flags().StringVar(&savePreset, "preset", "", "preset name")
	save.Flags().StringVar(&saveName, "name", "", "library name (defaults to a generated one)")
	save.Flags().Float64Var(&intensity, "intensity", 1.0, "event intensity (0..1)")
	save.Flags().Float64Var(&sharpness, "sharpness", 0.5, "event sharpness (0..1)")
	save.Flags().Float64Var(&delay, "delay", 0, "double-tap delay in seconds (0 uses the default)")
	save.Flags().Float64Var(&duration, "duration", 0, "continuous-buzz duration in seconds (0 uses the default)")

	var importName string
	importCmd := &cobra.Command{
		Use:   "import <path>",
		Short: "Import a pattern file into the library",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			app, err := loadApp(opts)
			if err != nil {
				return err
			}
			defer func() { _ = app.Close() }()

			saved, err := app.PatternCLI.ImportFile(context.Background(), args[0], importName)
			if err != nil {
				return err
			}
			printSkipped(cmd, saved.Skipped)
			_, _ = fmt.Fprintf(cmd.OutOrStdout(), "imported %s (%d events) to %s\n", saved.Name, saved.Events, saved.Path)
			return nil
		},
	}
	importCmd.Flags().StringVar(&importName, "name", "", "library name (defaults to the file name)")

	library.AddCommand(&cobra.Command{
		Use:   "reindex",
		Short: "Rebuild the pattern index from the library directory",
		RunE: func(cmd *cobra.Command, _ []string) error {
			app, err := loadApp(opts)
			if err != nil {
				return err
			}
			defer func() { _ = app.Close() }()

			out, err := app.PatternCLI.Reindex(context.Background())
			if err != nil {
				return err
			}
			_, _ = fmt.Fprintf(cmd.OutOrStdout(), "reindexed %d patterns\n", out.Indexed)
			return nil
		},
	})

	library.AddCommand(&cobra.Command{
		Use:   "watch",
		Short: "Watch the library directory and keep the index in sync",
		RunE: func(cmd *cobra.Command, _ []string) error {
			app, err := loadApp(opts)
			if err != nil {
				return err
			}
			defer func() { _ = app.Close() }()

			ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
			defer stop()
			_, _ = fmt.Fprintln(cmd.OutOrStdout(), "watching library, press ctrl-c to stop")
			return app.NewLibraryWatcher().Run(ctx)
		},
	})

	library.AddCommand(save, importCmd)
	return library
}

func printSkipped(cmd *cobra.Command, skipped []string) {
	for _, reason := range skipped {
		_, _ = fmt.Fprintf(cmd.ErrOrStderr(), "skipped: %s\n", reason)
	}
}

// waitForPlayback keeps the driver process alive until the scheduled
// pattern has finished, since closing the app kills the subprocess.
func waitForPlayback(seconds float64) {
	if seconds <= 0 {
		return
	}
	time.Sleep(time.Duration(seconds*float64(time.Second)) + 200*time.Millisecond)
}
