package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"math"
	"os"
	"strconv"

	"github.com/go-logr/logr"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"

	"github.com/katalvlaran/matcalc/format"
	"github.com/katalvlaran/matcalc/grid"
	"github.com/katalvlaran/matcalc/internal/logging"
	"github.com/katalvlaran/matcalc/internal/server"
	"github.com/katalvlaran/matcalc/matrix"
)

// MsgNotSquare is printed when det gets a rectangular matrix.
const MsgNotSquare = "Rows and columns must match for the determinant."

// Streams are the process's standard streams.
type Streams struct {
	In  io.Reader
	Out io.Writer
	Err io.Writer
}

type CLIResult struct {
	ExitCode int
}

// Execute runs inv. Results go to streams.Out, logs to streams.Err. The
// returned error, if any, carries the message for the user and matches the
// exit code in the result.
func Execute(ctx context.Context, inv Invocation, streams Streams) (CLIResult, error) {
	log, err := inv.Config.Logger(logging.Options{Writer: streams.Err})
	if err != nil {
		return fail(&InvocationError{ExitCode: ExitConfigError, Message: err.Error()})
	}
	log = log.WithValues("command", string(inv.Command))
	ctx = logr.NewContext(ctx, log)

	if inv.Command == CommandServe {
		return fail(serve(ctx, inv, log))
	}

	return fail(compute(ctx, inv, streams))
}

func fail(err error) (CLIResult, error) {
	return CLIResult{ExitCode: ExitCode(err)}, err
}

func serve(ctx context.Context, inv Invocation, log logr.Logger) error {
	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	s, err := server.New(inv.Config, log, reg)
	if err != nil {
		return &InvocationError{ExitCode: ExitConfigError, Message: err.Error()}
	}
	if err := s.Run(ctx); err != nil {
		return &InvocationError{ExitCode: ExitInternalError, Message: err.Error()}
	}

	return nil
}

func compute(ctx context.Context, inv Invocation, streams Streams) error {
	log := logr.FromContextOrDiscard(ctx)
	cfg := inv.Config

	rows, err := readMatrix(inv, streams.In)
	if err == nil {
		err = grid.CheckSize(rows, cfg.MaxDim)
	}
	if err != nil {
		return invalidInvocationf("%v", err)
	}
	log.V(logging.DEBUG).Info("Matrix read", "rows", len(rows), "cols", len(rows[0]))

	opts := cfg.EngineOptions()
	var out string
	switch inv.Command {
	case CommandDet, CommandRREF:
		op, err := matrix.ParseOperation(string(inv.Command))
		if err != nil {
			return &InvocationError{ExitCode: ExitInternalError, Message: err.Error()}
		}
		res, err := matrix.Evaluate(op, rows, opts...)
		if err != nil {
			return engineError(inv.Command, err)
		}
		if op == matrix.OpDeterminant {
			if !finite(res.Determinant) {
				return &InvocationError{ExitCode: ExitComputeFailure, Message: "determinant is not finite"}
			}
			out = format.Value(res.Determinant, cfg.Precision)
		} else {
			out = format.Grid(res.Matrix, cfg.Precision)
		}
	case CommandRank:
		m, err := matrix.NewDenseFromRows(rows)
		if err != nil {
			return engineError(inv.Command, err)
		}
		r, err := matrix.Rank(m, opts...)
		if err != nil {
			return engineError(inv.Command, err)
		}
		out = strconv.Itoa(r)
	case CommandInverse:
		res, err := matrix.InverseOf(rows, opts...)
		if err != nil {
			return engineError(inv.Command, err)
		}
		out = format.Grid(res, cfg.Precision)
	default:
		return &InvocationError{ExitCode: ExitInternalError, Message: fmt.Sprintf("unhandled command %q", inv.Command)}
	}

	if _, err := fmt.Fprintln(streams.Out, out); err != nil {
		return &InvocationError{ExitCode: ExitInternalError, Message: err.Error()}
	}

	return nil
}

func readMatrix(inv Invocation, stdin io.Reader) ([][]float64, error) {
	switch {
	case inv.File == "-":
		if stdin == nil {
			return nil, errors.New("no standard input")
		}
		return grid.Decode(stdin)
	case inv.File != "":
		f, err := os.Open(inv.File)
		if err != nil {
			return nil, err
		}
		defer f.Close()
		return grid.Decode(f)
	default:
		return grid.ParseText(inv.MatrixText)
	}
}

// engineError maps engine failures onto exit codes: properties of a
// well-formed matrix are computation failures, anything else is bad input.
func engineError(cmd Command, err error) error {
	switch {
	case errors.Is(err, matrix.ErrNonSquare) && cmd == CommandDet:
		return &InvocationError{ExitCode: ExitComputeFailure, Message: MsgNotSquare}
	case errors.Is(err, matrix.ErrNonSquare):
		return &InvocationError{ExitCode: ExitComputeFailure, Message: err.Error()}
	case errors.Is(err, matrix.ErrSingular):
		return &InvocationError{ExitCode: ExitComputeFailure, Message: "matrix is singular"}
	case errors.Is(err, matrix.ErrMalformed), errors.Is(err, matrix.ErrNaNInf):
		return invalidInvocationf("%v", err)
	default:
		return &InvocationError{ExitCode: ExitInternalError, Message: err.Error()}
	}
}

func finite(v float64) bool { return !math.IsNaN(v) && !math.IsInf(v, 0) }
