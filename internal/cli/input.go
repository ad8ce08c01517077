package cli

import (
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/spf13/pflag"

	"github.com/katalvlaran/matcalc/internal/config"
)

const (
	ExitSuccess           = 0
	ExitComputeFailure    = 1
	ExitInvalidInvocation = 2
	ExitConfigError       = 3
	ExitInternalError     = 4
)

// Usage is printed for invocations without a recognizable command.
const Usage = `usage: matcalc <command> [flags]

commands:
  det      determinant of a square matrix
  rref     reduced row echelon form
  rank     number of pivot columns
  inverse  inverse of a square, non-singular matrix
  serve    run the HTTP API

matrix input: --matrix "1 2; 3 4" | --file m.yaml (- for stdin) | one positional argument`

type Command string

const (
	CommandDet     Command = "det"
	CommandRREF    Command = "rref"
	CommandRank    Command = "rank"
	CommandInverse Command = "inverse"
	CommandServe   Command = "serve"
)

// Invocation is a parsed and validated command line.
type Invocation struct {
	Command Command
	// MatrixText holds inline input for ParseText; empty when File is set.
	MatrixText string
	// File names a YAML/JSON matrix document; "-" reads stdin.
	File   string
	Config config.Config
}

type InvocationError struct {
	ExitCode int
	Message  string
}

func (e *InvocationError) Error() string {
	if e == nil {
		return ""
	}
	return e.Message
}

func invalidInvocationf(format string, args ...any) error {
	return &InvocationError{ExitCode: ExitInvalidInvocation, Message: fmt.Sprintf(format, args...)}
}

// ExitCode returns the exit code carried by err: ExitSuccess for nil,
// the InvocationError code when present, ExitInternalError otherwise.
func ExitCode(err error) int {
	if err == nil {
		return ExitSuccess
	}
	var invErr *InvocationError
	if errors.As(err, &invErr) {
		return invErr.ExitCode
	}
	return ExitInternalError
}

// ParseInvocation parses args (without argv[0]) into an Invocation and
// resolves the configuration.
func ParseInvocation(args []string) (Invocation, error) {
	if len(args) == 0 {
		return Invocation{}, invalidInvocationf("%s", Usage)
	}
	cmd, err := parseCommand(args[0])
	if err != nil {
		return Invocation{}, err
	}

	fs := pflag.NewFlagSet("matcalc "+string(cmd), pflag.ContinueOnError)
	fs.SetOutput(io.Discard) // parsing errors are returned, not printed
	config.RegisterFlags(fs)

	var text, file string
	if cmd != CommandServe {
		fs.StringVarP(&text, "matrix", "m", "", `Inline matrix: rows split by ";" or newlines, cells by spaces or commas.`)
		fs.StringVarP(&file, "file", "f", "", "YAML or JSON matrix document; - reads stdin.")
	}

	if err := fs.Parse(args[1:]); err != nil {
		if errors.Is(err, pflag.ErrHelp) {
			return Invocation{}, invalidInvocationf("%s\n\nflags:\n%s", Usage, fs.FlagUsages())
		}
		return Invocation{}, invalidInvocationf("%v", err)
	}

	if cmd == CommandServe {
		if fs.NArg() != 0 {
			return Invocation{}, invalidInvocationf("unexpected positional arguments: %q", strings.Join(fs.Args(), " "))
		}
	} else {
		if fs.NArg() == 1 && text == "" && file == "" {
			text = fs.Arg(0)
		} else if fs.NArg() != 0 {
			return Invocation{}, invalidInvocationf("unexpected positional arguments: %q", strings.Join(fs.Args(), " "))
		}
		if (strings.TrimSpace(text) == "") == (file == "") {
			return Invocation{}, invalidInvocationf("exactly one of --matrix or --file is required")
		}
	}

	cfg, err := config.Load(fs)
	if err != nil {
		return Invocation{}, &InvocationError{ExitCode: ExitConfigError, Message: err.Error()}
	}

	return Invocation{Command: cmd, MatrixText: text, File: file, Config: cfg}, nil
}

func parseCommand(name string) (Command, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "det", "determinant":
		return CommandDet, nil
	case string(CommandRREF):
		return CommandRREF, nil
	case string(CommandRank):
		return CommandRank, nil
	case string(CommandInverse), "inv":
		return CommandInverse, nil
	case string(CommandServe):
		return CommandServe, nil
	case "-h", "--help", "help":
		return "", invalidInvocationf("%s", Usage)
	default:
		return "", invalidInvocationf("unknown command %q\n\n%s", name, Usage)
	}
}
