package main

import (
	"teenyjvm/internal/config"
	"teenyjvm/internal/logger"
	"teenyjvm/internal/runner"
	"teenyjvm/pkg/color"

	"github.com/spf13/cobra"
)

type options struct {
	Verbose    bool
	NoColor    bool
	ConfigPath string
	Trace      bool
	MaxDepth   int
	MaxSteps   int
	NoVerify   bool
	HeapDump   string

	cfg *config.Config
}

// setup resolves the configuration file, lets explicitly set flags override
// it and initializes logging and colors.
func (o *options) setup(cmd *cobra.Command) error {
	cfg, err := config.Resolve(o.ConfigPath, ".")
	if err != nil {
		return err
	}

	flags := cmd.Flags()
	if flags.Changed("trace") {
		cfg.Interpreter.Trace = o.Trace
	}
	if flags.Changed("max-depth") {
		cfg.Interpreter.MaxDepth = o.MaxDepth
	}
	if flags.Changed("max-steps") {
		cfg.Interpreter.MaxSteps = o.MaxSteps
	}
	if flags.Changed("no-verify") {
		cfg.Interpreter.Verify = !o.NoVerify
	}
	if flags.Changed("heap-dump") {
		cfg.Output.HeapDump = o.HeapDump
	}
	if flags.Changed("no-color") {
		cfg.Output.NoColor = o.NoColor
	}
	o.cfg = cfg

	// tracing is logged at debug level
	logger.Init(o.Verbose || cfg.Interpreter.Trace, cfg.Output.NoColor)
	if cfg.Output.NoColor {
		color.EnableColor(false)
	}
	return nil
}

func (o *options) runner(cmd *cobra.Command, file string) *runner.Runner {
	return &runner.Runner{
		Verbose:   o.Verbose,
		Trace:     o.cfg.Interpreter.Trace,
		Verify:    o.cfg.Interpreter.Verify,
		MaxDepth:  o.cfg.Interpreter.MaxDepth,
		MaxSteps:  o.cfg.Interpreter.MaxSteps,
		HeapDump:  o.cfg.Output.HeapDump,
		ClassFile: file,
		Out:       cmd.OutOrStdout(),
	}
}

func newRootCommand() *cobra.Command {
	o := &options{}

	root := &cobra.Command{
		Use:           "teenyjvm [flags] <class file>",
		Short:         "Run the main method of a JVM class file",
		Args:          cobra.ExactArgs(1),
		SilenceErrors: true,
		SilenceUsage:  true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return o.setup(cmd)
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			return o.runner(cmd, args[0]).Run()
		},
	}

	pf := root.PersistentFlags()
	pf.BoolVarP(&o.Verbose, "verbose", "v", false, "Verbose mode")
	pf.BoolVarP(&o.NoColor, "no-color", "n", false, "No color")
	pf.StringVar(&o.ConfigPath, "config", "", "Configuration file (default: teenyjvm.toml in this or a parent directory)")

	f := root.Flags()
	f.BoolVar(&o.Trace, "trace", false, "Log every executed instruction")
	f.IntVar(&o.MaxDepth, "max-depth", config.DefaultMaxDepth, "Maximum call depth, 0 for unbounded")
	f.IntVar(&o.MaxSteps, "max-steps", 0, "Maximum executed instructions, 0 for unlimited")
	f.BoolVar(&o.NoVerify, "no-verify", false, "Skip bytecode verification")
	f.StringVar(&o.HeapDump, "heap-dump", "", "Write the heap as CBOR to this file after the run")

	root.AddCommand(&cobra.Command{
		Use:   "dis <class file>",
		Short: "Disassemble the methods of a class file",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return o.runner(cmd, args[0]).Disassemble()
		},
	})

	root.AddCommand(&cobra.Command{
		Use:   "verify <class file>",
		Short: "Verify a class file and list every problem",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return o.runner(cmd, args[0]).Check()
		},
	})

	return root
}
