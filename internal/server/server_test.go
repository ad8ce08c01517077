package server_test

import (
	"context"
	"encoding/json"
	"io"
	"net"
	"net/http"
	"net/http/httptest"
	"strings"
	"time"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	"github.com/prometheus/client_golang/prometheus"

	"github.com/katalvlaran/matcalc/internal/config"
	"github.com/katalvlaran/matcalc/internal/logging"
	"github.com/katalvlaran/matcalc/internal/server"
)

type reply struct {
	code  int
	allow string
	body  map[string]any
	raw   string
}

func call(h http.Handler, method, path, body string) reply {
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	out := reply{code: rec.Code, allow: rec.Header().Get("Allow"), raw: rec.Body.String()}
	if strings.HasPrefix(rec.Header().Get("Content-Type"), "application/json") {
		Expect(json.Unmarshal(rec.Body.Bytes(), &out.body)).To(Succeed())
	}

	return out
}

var _ = Describe("Server", func() {
	var (
		cfg config.Config
		reg *prometheus.Registry
		h   http.Handler
	)

	build := func() {
		reg = prometheus.NewRegistry()
		s, err := server.New(cfg, logging.NewTestLogger(GinkgoWriter), reg)
		Expect(err).NotTo(HaveOccurred())
		h = s.Handler()
	}

	BeforeEach(func() {
		cfg = config.Default()
		build()
	})

	Context("POST /api/determinant", func() {
		It("returns the determinant rounded to the configured precision", func() {
			r := call(h, http.MethodPost, "/api/determinant", `{"matrix": [[1, 2], [3, 4]]}`)
			Expect(r.code).To(Equal(http.StatusOK))
			Expect(r.body).To(HaveKeyWithValue("result", -2.0))
		})

		It("returns 0 for a singular matrix", func() {
			r := call(h, http.MethodPost, "/api/determinant", `{"matrix": [[1, 2], [2, 4]]}`)
			Expect(r.code).To(Equal(http.StatusOK))
			Expect(r.body).To(HaveKeyWithValue("result", 0.0))
		})

		It("rejects a non-square matrix", func() {
			r := call(h, http.MethodPost, "/api/determinant", `{"matrix": [[1, 2, 3], [4, 5, 6]]}`)
			Expect(r.code).To(Equal(http.StatusBadRequest))
			Expect(r.body).To(HaveKeyWithValue("error", server.MsgNotSquare))
		})

		It("rounds to a custom precision", func() {
			cfg.Precision = 2
			build()
			r := call(h, http.MethodPost, "/api/determinant", `{"matrix": [[0.333, 0], [0, 1]]}`)
			Expect(r.body).To(HaveKeyWithValue("result", 0.33))
		})

		It("reports an overflowing determinant as unprocessable", func() {
			r := call(h, http.MethodPost, "/api/determinant", `{"matrix": [[1e200, 0], [0, 1e200]]}`)
			Expect(r.code).To(Equal(http.StatusUnprocessableEntity))
		})
	})

	Context("POST /api/rref", func() {
		It("reduces a rank-deficient matrix", func() {
			r := call(h, http.MethodPost, "/api/rref", `{"matrix": [[1, 2], [2, 4]]}`)
			Expect(r.code).To(Equal(http.StatusOK))
			Expect(r.body["result"]).To(Equal([]any{
				[]any{1.0, 2.0},
				[]any{0.0, 0.0},
			}))
		})

		It("accepts rectangular input", func() {
			r := call(h, http.MethodPost, "/api/rref", `{"matrix": [[1, 2, 3], [4, 5, 6]]}`)
			Expect(r.code).To(Equal(http.StatusOK))
			Expect(r.body["result"]).To(Equal([]any{
				[]any{1.0, 0.0, -1.0},
				[]any{0.0, 1.0, 2.0},
			}))
		})

		It("applies the configured pivot tolerance", func() {
			cfg.PivotTolerance = 1e-9
			build()
			r := call(h, http.MethodPost, "/api/rref", `{"matrix": [[1, 2, 3], [4, 5, 6], [7, 8, 9]]}`)
			Expect(r.code).To(Equal(http.StatusOK))
			rows := r.body["result"].([]any)
			Expect(rows).To(HaveLen(3))
			Expect(rows[2]).To(Equal([]any{0.0, 0.0, 0.0}))
		})
	})

	DescribeTable("malformed requests",
		func(body string, code int) {
			r := call(h, http.MethodPost, "/api/rref", body)
			Expect(r.code).To(Equal(code))
			Expect(r.body).To(HaveKey("error"))
		},
		Entry("broken JSON", `{"matrix": [[1, 2]`, http.StatusBadRequest),
		Entry("missing key", `{"rows": [[1]]}`, http.StatusBadRequest),
		Entry("empty grid", `{"matrix": []}`, http.StatusBadRequest),
		Entry("ragged rows", `{"matrix": [[1, 2], [3]]}`, http.StatusBadRequest),
		Entry("missing cell", `{"matrix": [[1, null]]}`, http.StatusBadRequest),
		Entry("text cell", `{"matrix": [[1, "two"]]}`, http.StatusBadRequest),
	)

	It("rejects matrices above max-dim", func() {
		cfg.MaxDim = 2
		build()
		r := call(h, http.MethodPost, "/api/determinant", `{"matrix": [[1,0,0],[0,1,0],[0,0,1]]}`)
		Expect(r.code).To(Equal(http.StatusRequestEntityTooLarge))
	})

	It("rejects bodies above max-body-bytes", func() {
		cfg.MaxBodyBytes = 16
		build()
		r := call(h, http.MethodPost, "/api/determinant", `{"matrix": [[1, 2], [3, 4]]}`)
		Expect(r.code).To(Equal(http.StatusRequestEntityTooLarge))
		Expect(r.body).To(HaveKeyWithValue("error", "request body too large"))
	})

	It("answers 405 to non-POST methods", func() {
		r := call(h, http.MethodGet, "/api/determinant", "")
		Expect(r.code).To(Equal(http.StatusMethodNotAllowed))
		Expect(r.allow).To(Equal(http.MethodPost))
	})

	It("serves /healthz", func() {
		r := call(h, http.MethodGet, "/healthz", "")
		Expect(r.code).To(Equal(http.StatusOK))
		Expect(r.raw).To(Equal("ok"))
	})

	It("counts requests in /metrics", func() {
		call(h, http.MethodPost, "/api/determinant", `{"matrix": [[1, 2], [3, 4]]}`)
		call(h, http.MethodPost, "/api/determinant", `{"matrix": [[1, 2]]}`)

		r := call(h, http.MethodGet, "/metrics", "")
		Expect(r.code).To(Equal(http.StatusOK))
		Expect(r.raw).To(ContainSubstring(`matcalc_requests_total{code="200",operation="determinant"} 1`))
		Expect(r.raw).To(ContainSubstring(`matcalc_requests_total{code="400",operation="determinant"} 1`))
		Expect(r.raw).To(ContainSubstring("matcalc_request_duration_seconds_bucket"))
		Expect(r.raw).To(ContainSubstring("matcalc_matrix_dimension_bucket"))
	})

	It("refuses an invalid configuration", func() {
		cfg.Precision = -1
		_, err := server.New(cfg, logging.NewTestLogger(GinkgoWriter), nil)
		Expect(err).To(MatchError(config.ErrInvalidConfig))
	})

	It("refuses a registry that already holds its metrics", func() {
		_, err := server.New(cfg, logging.NewTestLogger(GinkgoWriter), reg)
		Expect(err).To(HaveOccurred())
	})

	Context("Serve", func() {
		It("serves until the context is cancelled", func() {
			cfg.ShutdownTimeout = time.Second
			s, err := server.New(cfg, logging.NewTestLogger(GinkgoWriter), nil)
			Expect(err).NotTo(HaveOccurred())

			ln, err := net.Listen("tcp", "127.0.0.1:0")
			Expect(err).NotTo(HaveOccurred())

			ctx, cancel := context.WithCancel(context.Background())
			done := make(chan error, 1)
			go func() { done <- s.Serve(ctx, ln) }()

			url := "http://" + ln.Addr().String() + "/api/determinant"
			Eventually(func() (string, error) {
				resp, err := http.Post(url, "application/json", strings.NewReader(`{"matrix": [[2, 0], [0, 2]]}`))
				if err != nil {
					return "", err
				}
				defer resp.Body.Close()
				b, err := io.ReadAll(resp.Body)

				return strings.TrimSpace(string(b)), err
			}).Should(Equal(`{"result":4}`))

			cancel()
			Eventually(done).Should(Receive(BeNil()))
		})
	})
})
