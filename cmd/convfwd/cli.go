package main

import (
	"fmt"
	"log/slog"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"github.com/fumitoshi0524/convforward/internal/envconfig"
	"github.com/fumitoshi0524/convforward/nn"
	"github.com/fumitoshi0524/convforward/tensor"
)

type globalOptions struct {
	seed    uint64
	verbose bool
}

// NewCLI builds the convfwd command tree.
func NewCLI() *cobra.Command {
	cobra.EnableCommandSorting = false
	opts := &globalOptions{}

	rootCmd := &cobra.Command{
		Use:           "convfwd",
		Short:         "Run convolution and pooling forward passes on generated NHWC tensors",
		SilenceUsage:  true,
		SilenceErrors: true,
		CompletionOptions: cobra.CompletionOptions{
			DisableDefaultCmd: true,
		},
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			level := envconfig.LogLevel()
			if opts.verbose {
				level = slog.LevelDebug
			}
			slog.SetDefault(slog.New(slog.NewTextHandler(cmd.ErrOrStderr(), &slog.HandlerOptions{Level: level})))
		},
	}
	rootCmd.PersistentFlags().Uint64Var(&opts.seed, "seed", envconfig.Seed(), "Seed for generated tensors (CONVFWD_SEED)")
	rootCmd.PersistentFlags().BoolVarP(&opts.verbose, "verbose", "v", false, "Enable debug logging")

	rootCmd.AddCommand(
		newPadCmd(opts),
		newConvCmd(opts),
		newPoolCmd(opts),
		newDemoCmd(opts),
		newEnvCmd(),
	)
	return rootCmd
}

func newPadCmd(opts *globalOptions) *cobra.Command {
	var (
		shape  []int
		pad    int
		values bool
	)
	cmd := &cobra.Command{
		Use:   "pad",
		Short: "Zero-pad a random batch",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := checkShape(shape); err != nil {
				return err
			}
			x := tensor.NewRand(opts.seed).Randn(shape...)
			slog.Debug("zero pad", "input", x.Shape(), "pad", pad)
			out, err := tensor.ZeroPad(x, pad)
			if err != nil {
				return fmt.Errorf("pad: %w", err)
			}
			w := cmd.OutOrStdout()
			printSummary(w, []namedTensor{{"input", x}, {"padded", out}})
			if values {
				printCells(w, out)
			}
			return nil
		},
	}
	cmd.Flags().IntSliceVar(&shape, "shape", []int{1, 3, 3, 1}, "Input shape m,h,w,c")
	cmd.Flags().IntVar(&pad, "pad", 1, "Zero rows and columns added on each side")
	cmd.Flags().BoolVar(&values, "values", false, "Print every output cell")
	return cmd
}

func newConvCmd(opts *globalOptions) *cobra.Command {
	var (
		shape       []int
		filter      int
		outChannels int
		params      tensor.ConvParams
		values      bool
	)
	cmd := &cobra.Command{
		Use:   "conv",
		Short: "Convolve a random batch with random filters",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := checkShape(shape); err != nil {
				return err
			}
			if filter <= 0 || outChannels <= 0 {
				return fmt.Errorf("--filter and --out-channels must be positive, got %d and %d", filter, outChannels)
			}
			rng := tensor.NewRand(opts.seed)
			x := rng.Randn(shape...)
			weights := rng.Randn(filter, filter, shape[3], outChannels)
			biases := rng.Randn(1, 1, 1, outChannels)
			slog.Debug("conv forward", "input", x.Shape(), "weights", weights.Shape(), "params", params)

			out, _, err := tensor.Conv2D(x, weights, biases, params)
			if err != nil {
				return fmt.Errorf("conv: %w", err)
			}
			w := cmd.OutOrStdout()
			printSummary(w, []namedTensor{{"input", x}, {"weights", weights}, {"biases", biases}, {"output", out}})
			if values {
				printCells(w, out)
			}
			return nil
		},
	}
	cmd.Flags().IntSliceVar(&shape, "shape", []int{2, 4, 4, 3}, "Input shape m,h,w,c")
	cmd.Flags().IntVar(&filter, "filter", 2, "Filter size f")
	cmd.Flags().IntVar(&outChannels, "out-channels", 1, "Number of filters")
	cmd.Flags().IntVar(&params.Stride, "stride", 1, "Stride")
	cmd.Flags().IntVar(&params.Pad, "pad", 0, "Zero padding")
	cmd.Flags().BoolVar(&values, "values", false, "Print every output cell")
	return cmd
}

func newPoolCmd(opts *globalOptions) *cobra.Command {
	var (
		shape  []int
		params tensor.PoolParams
		values bool
	)
	mode := poolModeFlag(tensor.PoolMax)
	cmd := &cobra.Command{
		Use:   "pool",
		Short: "Max or average pool a random batch",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := checkShape(shape); err != nil {
				return err
			}
			x := tensor.NewRand(opts.seed).Randn(shape...)
			slog.Debug("pool forward", "input", x.Shape(), "params", params, "mode", tensor.PoolMode(mode))

			out, _, err := tensor.Pool2D(x, params, tensor.PoolMode(mode))
			if err != nil {
				return fmt.Errorf("pool: %w", err)
			}
			w := cmd.OutOrStdout()
			printSummary(w, []namedTensor{{"input", x}, {"output", out}})
			if values {
				printCells(w, out)
			}
			return nil
		},
	}
	cmd.Flags().IntSliceVar(&shape, "shape", []int{1, 4, 4, 1}, "Input shape m,h,w,c")
	cmd.Flags().IntVar(&params.F, "filter", 2, "Window size f")
	cmd.Flags().IntVar(&params.Stride, "stride", 2, "Stride")
	cmd.Flags().Var(&mode, "mode", "Pooling mode: max or average")
	cmd.Flags().BoolVar(&values, "values", false, "Print every output cell")
	return cmd
}

func newDemoCmd(opts *globalOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "demo",
		Short: "Run the worked convolution and pooling scenarios",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runDemo(cmd, opts.seed)
		},
	}
}

func newEnvCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "env",
		Short: "Show environment configuration",
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, args []string) {
			printEnv(cmd.OutOrStdout(), envconfig.Values())
		},
	}
}

func runDemo(cmd *cobra.Command, seed uint64) error {
	w := cmd.OutOrStdout()
	rng := tensor.NewRand(seed)

	// conv: (2,4,4,3) * (2,2,3,1), stride 1, pad 0
	x := rng.Randn(2, 4, 4, 3)
	weights := rng.Randn(2, 2, 3, 1)
	biases := rng.Randn(1, 1, 1, 1)
	conv, err := nn.NewConv2d(weights, biases, tensor.ConvParams{Stride: 1, Pad: 0})
	if err != nil {
		return err
	}
	convOut, err := conv.Forward(x)
	if err != nil {
		return fmt.Errorf("demo %v: %w", conv, err)
	}
	fmt.Fprintf(w, "%v\n", conv)
	printSummary(w, []namedTensor{{"input", x}, {"output", convOut}})

	window, err := tensor.Window(x, 1, 1, 2, 2)
	if err != nil {
		return err
	}
	filter, err := tensor.FilterSlice(weights, 0)
	if err != nil {
		return err
	}
	manual, err := tensor.ConvSingleStep(window, filter, biases.At(0, 0, 0, 0))
	if err != nil {
		return err
	}
	got := convOut.At(1, 1, 2, 0)
	slog.Debug("conv cell check", "cell", []int{1, 1, 2, 0}, "output", got, "manual", manual)
	if got != manual {
		return fmt.Errorf("demo: conv cell [1 1 2 0] is %v, manual sum is %v", got, manual)
	}
	printCheck(w, "[1 1 2 0]", got, manual)

	// pool: 1..16 on (1,4,4,1), f 2, stride 2, max
	grid := make([]float64, 16)
	for i := range grid {
		grid[i] = float64(i + 1)
	}
	img, err := tensor.New(grid, 1, 4, 4, 1)
	if err != nil {
		return err
	}
	pool, err := nn.NewMaxPool2d(2, 2)
	if err != nil {
		return err
	}
	poolOut, err := pool.Forward(img)
	if err != nil {
		return fmt.Errorf("demo %v: %w", pool, err)
	}
	fmt.Fprintf(w, "\n%v\n", pool)
	printSummary(w, []namedTensor{{"input", img}, {"output", poolOut}})
	printCells(w, poolOut)

	// chained: pad 1, conv 3x3 to 2 channels, average pool
	chainWeights := rng.Randn(3, 3, 3, 2)
	chainBiases := rng.Randn(1, 1, 1, 2)
	chainConv, err := nn.NewConv2d(chainWeights, chainBiases, tensor.ConvParams{Stride: 1})
	if err != nil {
		return err
	}
	avg, err := nn.NewAvgPool2d(2, 2)
	if err != nil {
		return err
	}
	model := nn.NewSequential(nn.ZeroPad2d(1), chainConv, avg)
	chainOut, err := model.Forward(x)
	if err != nil {
		return fmt.Errorf("demo: %w", err)
	}
	fmt.Fprintf(w, "\n%v\n", model)
	printSummary(w, []namedTensor{{"input", x}, {"output", chainOut}})
	return nil
}

// poolModeFlag adapts tensor.PoolMode to a command-line flag.
type poolModeFlag tensor.PoolMode

var _ pflag.Value = (*poolModeFlag)(nil)

func (m *poolModeFlag) String() string { return tensor.PoolMode(*m).String() }

func (m *poolModeFlag) Set(s string) error {
	mode, err := tensor.ParsePoolMode(s)
	if err != nil {
		return err
	}
	*m = poolModeFlag(mode)
	return nil
}

func (m *poolModeFlag) Type() string { return "mode" }

func checkShape(shape []int) error {
	if len(shape) != 4 {
		return fmt.Errorf("--shape wants m,h,w,c, got %v: %w", shape, tensor.ErrShapeMismatch)
	}
	for _, d := range shape {
		if d <= 0 {
			return fmt.Errorf("--shape dimensions must be positive, got %v: %w", shape, tensor.ErrShapeMismatch)
		}
	}
	return nil
}
