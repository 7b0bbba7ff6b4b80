package runner

import (
	"errors"
	"fmt"
	"io"
	"os"

	"teenyjvm/internal/heapdump"
	"teenyjvm/internal/logger"
	"teenyjvm/pkg/classfile"
	"teenyjvm/pkg/color"
	"teenyjvm/pkg/disasm"
	"teenyjvm/pkg/interpreter"
	"teenyjvm/pkg/verifier"

	"github.com/charmbracelet/log"
	"github.com/hashicorp/go-multierror"
)

const (
	MainName       = "main"
	MainDescriptor = "([Ljava/lang/String;)V"
)

var (
	ErrMainNotFound      = errors.New("no main([Ljava/lang/String;)V method")
	ErrMainReturnedValue = errors.New("main returned a value")
)

type Runner struct {
	Verbose   bool      // Print the bytecode listing before running
	Trace     bool      // Log every executed instruction
	Verify    bool      // Verify the class before running it
	MaxDepth  int       // Maximum invokestatic nesting, 0 for none
	MaxSteps  int       // Maximum instructions executed, 0 for none
	HeapDump  string    // Path to write the heap snapshot to after a run
	ClassFile string    // Path to the class file
	Out       io.Writer // Program output, stdout when nil
}

func (opts *Runner) out() io.Writer {
	if opts.Out == nil {
		return os.Stdout
	}
	return opts.Out
}

func (opts *Runner) load() (*classfile.Class, error) {
	f, err := os.Open(opts.ClassFile)
	if err != nil {
		return nil, fmt.Errorf("failed to read class file: %w", err)
	}
	defer f.Close()

	class, err := classfile.Parse(f)
	if err != nil {
		return nil, fmt.Errorf("failed to parse %s: %w", opts.ClassFile, err)
	}
	return class, nil
}

// Run loads the class file, verifies it unless disabled and executes its
// main method. Any failure ends the run.
func (opts *Runner) Run() error {
	l := logger.ForRun(opts.ClassFile)
	l.Info("Processing file")

	class, err := opts.load()
	if err != nil {
		return err
	}
	l.Debug("Parsed class", "class", class.ClassName(), "methods", len(class.Methods), "constants", len(class.Constants))

	if opts.Verify {
		if err := verifier.Verify(class); err != nil {
			return fmt.Errorf("verification failed: %w", err)
		}
	} else {
		l.Warn("Running without verification")
	}

	if opts.Verbose {
		fmt.Fprintln(opts.out(), color.GreenText("=== Bytecode ==="))
		if err := disasm.Class(opts.out(), class); err != nil {
			return err
		}
		fmt.Fprintln(opts.out(), color.GreenText("\n=== Program Output ==="))
	}

	main, err := class.FindMethod(MainName, MainDescriptor)
	if err != nil {
		return fmt.Errorf("%w: %w", ErrMainNotFound, err)
	}

	intr := interpreter.NewInterpreter(class,
		interpreter.WithWriter(opts.out()),
		interpreter.WithLogger(l),
		interpreter.WithTrace(opts.Trace),
		interpreter.WithMaxDepth(opts.MaxDepth),
		interpreter.WithMaxSteps(opts.MaxSteps),
	)

	v, err := intr.Invoke(main)
	if err != nil {
		return fmt.Errorf("execution failed: %w", err)
	}
	if v.Present {
		return fmt.Errorf("%w: %s", ErrMainReturnedValue, v)
	}
	l.Info("Finished", "steps", intr.Steps(), "arrays", intr.Heap().Len())

	if opts.HeapDump != "" {
		if err := heapdump.WriteFile(opts.HeapDump, intr.Heap()); err != nil {
			return fmt.Errorf("failed to write heap dump: %w", err)
		}
		l.Info("Wrote heap dump", "path", opts.HeapDump)
	}

	return nil
}

// Disassemble prints the bytecode listing of every method.
func (opts *Runner) Disassemble() error {
	class, err := opts.load()
	if err != nil {
		return err
	}
	return disasm.Class(opts.out(), class)
}

// Check verifies the class and prints each problem found.
func (opts *Runner) Check() error {
	class, err := opts.load()
	if err != nil {
		return err
	}

	err = verifier.Verify(class)
	if err == nil {
		fmt.Fprintln(opts.out(), color.Success(fmt.Sprintf("%s verified", opts.ClassFile)))
		return nil
	}

	problems := []error{err}
	var merr *multierror.Error
	if errors.As(err, &merr) {
		problems = merr.WrappedErrors()
	}

	var problem *verifier.Problem
	for _, e := range problems {
		if errors.As(e, &problem) {
			fmt.Fprintf(opts.out(), "%s pc=%d: %s\n", color.RedText(problem.Method), problem.PC, problem.Msg)
		}
	}
	log.Debug("Verification failed", "file", opts.ClassFile, "problems", len(problems))
	return fmt.Errorf("verification failed: %w", err)
}
