package main

import (
	"fmt"
	"log/slog"
	"maps"
	"slices"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/born-ml/depthdet/internal/backend/cpu"
	"github.com/born-ml/depthdet/internal/config"
	"github.com/born-ml/depthdet/internal/logutil"
	"github.com/born-ml/depthdet/internal/model"
	"github.com/born-ml/depthdet/internal/tensor"
)

// app carries the settings resolved before a subcommand runs.
type app struct {
	file    config.File
	backend *cpu.CPUBackend
}

// NewCLI builds the depthdet command tree.
func NewCLI() *cobra.Command {
	a := &app{}

	rootCmd := &cobra.Command{
		Use:   "depthdet",
		Short: "Depth-aware object detector",
		Long: `depthdet builds the depth-aware detector on the CPU backend and reports its
structure or runs it on images.

Settings are resolved from defaults, then --config, then the environment
(` + config.EnvThreads + `, ` + config.EnvDebug + `), then flags.`,
		CompletionOptions: cobra.CompletionOptions{
			DisableDefaultCmd: true,
		},
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			// Disable usage printing on errors
			cmd.SilenceUsage = true
			return a.setup(cmd)
		},
	}

	flags := rootCmd.PersistentFlags()
	flags.String("config", "", "YAML configuration file")
	flags.Int("classes", model.DefaultNumClasses, "Number of object classes")
	flags.Int("reg-max", model.DefaultRegMax, "Distribution bins per box side")
	flags.String("variant", string(model.VariantFull), "Network variant (full, lite)")
	flags.Int("size", model.DefaultInputSize, "Side of the square input in pixels")
	flags.Uint64("seed", 0, "Weight initialization seed (0 draws a random one)")
	flags.Int("threads", 0, "CPU worker threads (0 uses every CPU)")
	flags.CountP("verbose", "v", "Debug logging, repeat for per-layer trace")

	rootCmd.SetUsageTemplate(rootCmd.UsageTemplate() + envUsage(config.Default()))

	cobra.EnableCommandSorting = false

	versionCmd := &cobra.Command{
		Use:   "version",
		Short: "Print the version",
		Args:  cobra.NoArgs,
		// No configuration needed.
		PersistentPreRun: func(*cobra.Command, []string) {},
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Fprintf(cmd.OutOrStdout(), "depthdet %s\n", version)
		},
	}

	rootCmd.AddCommand(
		versionCmd,
		newSummaryCmd(a),
		newShapesCmd(a),
		newRunCmd(a),
	)

	return rootCmd
}

// envUsage renders the environment variables section of the help text.
func envUsage(f config.File) string {
	vars := f.AsMap()

	var sb strings.Builder
	sb.WriteString("\nEnvironment Variables:\n\n")
	for _, name := range slices.Sorted(maps.Keys(vars)) {
		fmt.Fprintf(&sb, "    %-18s %s\n", name, vars[name].Description)
	}
	return sb.String()
}

// setup resolves the configuration, installs the logger and creates the
// backend.
func (a *app) setup(cmd *cobra.Command) error {
	flags := cmd.Flags()

	path, _ := flags.GetString("config")
	f, err := config.Load(path)
	if err != nil {
		return err
	}

	if flags.Changed("classes") {
		f.Model.NumClasses, _ = flags.GetInt("classes")
	}
	if flags.Changed("reg-max") {
		f.Model.RegMax, _ = flags.GetInt("reg-max")
	}
	if flags.Changed("variant") {
		v, _ := flags.GetString("variant")
		f.Model.Variant = model.Variant(v)
	}
	if flags.Changed("size") {
		f.Model.InputSize, _ = flags.GetInt("size")
	}
	if flags.Changed("seed") {
		f.Model.Seed, _ = flags.GetUint64("seed")
	}
	if flags.Changed("threads") {
		f.Runtime.Threads, _ = flags.GetInt("threads")
	}
	if v, _ := flags.GetCount("verbose"); v > 0 {
		f.Runtime.Debug = true
		f.Runtime.Trace = v > 1
	}

	if err := f.Validate(); err != nil {
		return err
	}

	slog.SetDefault(logutil.NewLogger(cmd.ErrOrStderr(), f.Runtime.LogLevel()))
	slog.Debug("configuration",
		"variant", f.Model.Variant,
		"classes", f.Model.NumClasses,
		"reg_max", f.Model.RegMax,
		"input_size", f.Model.InputSize,
		"threads", f.Runtime.Threads)

	a.file = f
	a.backend = cpu.New(cpu.WithThreads(f.Runtime.Threads))
	return nil
}

// inputShape is the NCHW shape of a batch of n prepared images.
func (a *app) inputShape(n int) tensor.Shape {
	size := a.file.Model.InputSize
	return tensor.Shape{n, model.InputChannels, size, size}
}

func formatShape(s tensor.Shape) string {
	dims := make([]string, len(s))
	for i, d := range s {
		dims[i] = strconv.Itoa(d)
	}
	return strings.Join(dims, "x")
}

func formatRange(r model.ChannelRange) string {
	return fmt.Sprintf("[%d,%d)", r.Start, r.End)
}
