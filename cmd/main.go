package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"runtime"
	"syscall"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/richinsley/goshadereffects/effects"
	"github.com/richinsley/goshadereffects/glfwcontext"
	"github.com/richinsley/goshadereffects/options"
	"github.com/richinsley/goshadereffects/renderer"
)

var (
	verbose    bool
	configFile string
	viewOpts   options.ViewOptions
	exportOpts options.ExportOptions

	logger *zap.Logger
)

var rootCmd = &cobra.Command{
	Use:   "goshadereffects",
	Short: "Animated shader backgrounds: plasma vortex, aura ring and smoke",
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		config := zap.NewProductionConfig()
		if verbose {
			config.Level = zap.NewAtomicLevelAt(zapcore.DebugLevel)
		}
		var err error
		logger, err = config.Build()
		if err != nil {
			return fmt.Errorf("failed to initialize logger: %w", err)
		}
		return nil
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		if logger != nil {
			_ = logger.Sync()
		}
	},
	SilenceUsage: true,
}

var viewCmd = &cobra.Command{
	Use:   "view",
	Short: "Show effects in windows",
	RunE:  runView,
}

var exportCmd = &cobra.Command{
	Use:   "export",
	Short: "Render one effect to a video file with ffmpeg",
	RunE:  runExport,
}

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Print the effective configuration as YAML",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := options.LoadConfig(configFile)
		if err != nil {
			return err
		}
		data, err := options.MarshalConfig(cfg)
		if err != nil {
			return err
		}
		_, err = cmd.OutOrStdout().Write(data)
		return err
	},
}

func init() {
	runtime.LockOSThread()

	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Enable verbose logging")
	rootCmd.PersistentFlags().StringVarP(&configFile, "config", "c", "", "YAML effect configuration")

	viewCmd.Flags().StringSliceVarP(&viewOpts.Effects, "effect", "e", []string{effects.NamePlasma}, "Effects to show (plasma, ring, smoke)")
	viewCmd.Flags().BoolVar(&viewOpts.Watch, "watch", false, "Reload the configuration file when it changes")
	viewCmd.Flags().IntVar(&viewOpts.Width, "width", 1280, "Window width")
	viewCmd.Flags().IntVar(&viewOpts.Height, "height", 720, "Window height")

	exportCmd.Flags().StringVarP(&exportOpts.Effect, "effect", "e", effects.NamePlasma, "Effect to render (plasma, ring, smoke)")
	exportCmd.Flags().StringVarP(&exportOpts.OutputFile, "output", "o", "output.mp4", "Output file name")
	exportCmd.Flags().Float64Var(&exportOpts.Duration, "duration", 10.0, "Duration to record in seconds")
	exportCmd.Flags().IntVar(&exportOpts.FPS, "fps", 30, "Frames per second")
	exportCmd.Flags().IntVar(&exportOpts.Width, "width", 1280, "Width of the output")
	exportCmd.Flags().IntVar(&exportOpts.Height, "height", 720, "Height of the output")
	exportCmd.Flags().StringVar(&exportOpts.FFMPEGPath, "ffmpeg", "", "Path to ffmpeg executable")
	exportCmd.Flags().Float64Var(&exportOpts.Scroll, "scroll", 0, "Page offset for effects that fade on scroll")

	rootCmd.AddCommand(viewCmd, exportCmd, configCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func signalContext() (context.Context, context.CancelFunc) {
	return signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
}

func runView(cmd *cobra.Command, args []string) error {
	viewOpts.ConfigFile = configFile
	viewOpts.Verbose = verbose
	if err := viewOpts.Validate(); err != nil {
		return err
	}
	cfg, err := options.LoadConfig(configFile)
	if err != nil {
		return err
	}

	ctx, cancel := signalContext()
	defer cancel()

	if err := glfwcontext.InitGraphics(logger); err != nil {
		return fmt.Errorf("failed to initialize graphics: %w", err)
	}
	defer glfwcontext.TerminateGraphics(logger)

	r, err := renderer.NewRenderer(ctx, &viewOpts, cfg, logger)
	if err != nil {
		return err
	}
	defer r.Shutdown()

	if viewOpts.Watch {
		w, err := options.NewConfigWatcher(configFile, options.DefaultDebounce, logger)
		if err != nil {
			return fmt.Errorf("failed to watch config: %w", err)
		}
		if err := w.Start(ctx); err != nil {
			return fmt.Errorf("failed to watch config: %w", err)
		}
		defer w.Stop()
		r.Watch(w.Configs())
	}

	logger.Info("starting interactive render loop", zap.Strings("effects", viewOpts.Effects))
	if err := r.Run(ctx); err != nil && ctx.Err() == nil {
		return err
	}
	return nil
}

func runExport(cmd *cobra.Command, args []string) error {
	exportOpts.ConfigFile = configFile
	exportOpts.Verbose = verbose
	cfg, err := options.LoadConfig(configFile)
	if err != nil {
		return err
	}
	rec, err := renderer.NewRecorder(&exportOpts, cfg, logger)
	if err != nil {
		return err
	}

	ctx, cancel := signalContext()
	defer cancel()

	if err := glfwcontext.InitGraphics(logger); err != nil {
		return fmt.Errorf("failed to initialize graphics: %w", err)
	}
	defer glfwcontext.TerminateGraphics(logger)

	return rec.Run(ctx)
}
