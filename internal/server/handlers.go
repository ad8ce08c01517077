package server

import (
	"bytes"
	"encoding/json"
	"errors"
	"io"
	"math"
	"net/http"
	"time"

	"github.com/go-logr/logr"

	"github.com/katalvlaran/matcalc/format"
	"github.com/katalvlaran/matcalc/grid"
	"github.com/katalvlaran/matcalc/internal/logging"
	"github.com/katalvlaran/matcalc/matrix"
)

// MsgNotSquare is the error body for a determinant of a non-square matrix.
const MsgNotSquare = "Matrix must be square"

var errNotFinite = errors.New("result is not finite")

type resultBody struct {
	Result any `json:"result"`
}

type errorBody struct {
	Error string `json:"error"`
}

// operation handles POST requests for one matrix operation.
func (s *Server) operation(op matrix.Operation) http.Handler {
	name := string(op)

	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		started := time.Now()
		log, err := logr.FromContext(r.Context())
		if err != nil {
			log = s.log
		}
		log = log.WithValues("operation", name, "remote", r.RemoteAddr)

		if r.Method != http.MethodPost {
			w.Header().Set("Allow", http.MethodPost)
			s.reply(w, name, started, http.StatusMethodNotAllowed, errorBody{Error: "method not allowed"})
			return
		}

		body, err := io.ReadAll(http.MaxBytesReader(w, r.Body, s.cfg.MaxBodyBytes))
		if err != nil {
			s.fail(w, log, name, started, err)
			return
		}
		rows, err := grid.Decode(bytes.NewReader(body))
		if err == nil {
			err = grid.CheckSize(rows, s.cfg.MaxDim)
		}
		if err != nil {
			s.fail(w, log, name, started, err)
			return
		}
		s.metrics.observeShape(name, rows)

		res, err := matrix.Evaluate(op, rows, s.opts...)
		if err != nil {
			s.fail(w, log, name, started, err)
			return
		}

		var out any
		switch op {
		case matrix.OpDeterminant:
			if math.IsNaN(res.Determinant) || math.IsInf(res.Determinant, 0) {
				s.fail(w, log, name, started, errNotFinite)
				return
			}
			out = format.Round(res.Determinant, s.cfg.Precision)
		default:
			for _, row := range res.Matrix {
				for _, v := range row {
					if math.IsNaN(v) || math.IsInf(v, 0) {
						s.fail(w, log, name, started, errNotFinite)
						return
					}
				}
			}
			out = format.RoundGrid(res.Matrix, s.cfg.Precision)
		}

		log.V(logging.DEBUG).Info("Computed", "rows", len(rows), "cols", len(rows[0]))
		s.reply(w, name, started, http.StatusOK, resultBody{Result: out})
	})
}

// fail maps err onto a status code and error body.
func (s *Server) fail(w http.ResponseWriter, log logr.Logger, op string, started time.Time, err error) {
	code, msg := classify(err)
	if code >= http.StatusInternalServerError {
		log.Error(err, "Request failed")
	} else {
		log.V(logging.DEBUG).Info("Request rejected", "code", code, "error", err.Error())
	}
	s.reply(w, op, started, code, errorBody{Error: msg})
}

func classify(err error) (int, string) {
	var tooBig *http.MaxBytesError
	switch {
	case errors.As(err, &tooBig):
		return http.StatusRequestEntityTooLarge, "request body too large"
	case errors.Is(err, grid.ErrTooLarge):
		return http.StatusRequestEntityTooLarge, err.Error()
	case errors.Is(err, matrix.ErrNonSquare):
		return http.StatusBadRequest, MsgNotSquare
	case errors.Is(err, errNotFinite):
		return http.StatusUnprocessableEntity, err.Error()
	case errors.Is(err, grid.ErrBadDocument),
		errors.Is(err, grid.ErrMissingValue),
		errors.Is(err, grid.ErrNotNumber),
		errors.Is(err, grid.ErrNotFinite),
		errors.Is(err, matrix.ErrMalformed),
		errors.Is(err, matrix.ErrNaNInf):
		return http.StatusBadRequest, err.Error()
	default:
		return http.StatusInternalServerError, "internal error"
	}
}

func (s *Server) reply(w http.ResponseWriter, op string, started time.Time, code int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(body)
	s.metrics.observe(op, code, started)
}
