package http

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/julienschmidt/httprouter"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/nmorabowen/constitutiveRelationshipsApp/internal/domain/materials"
	"github.com/nmorabowen/constitutiveRelationshipsApp/internal/expr"
	"github.com/nmorabowen/constitutiveRelationshipsApp/internal/infra/logger"
	"github.com/nmorabowen/constitutiveRelationshipsApp/internal/infra/metrics"
)

type Server struct {
	srv *http.Server
	ev  *expr.Evaluator
	log *slog.Logger
}

func New(addr string, exposeMetrics bool, ev *expr.Evaluator, log *slog.Logger) *Server {
	s := &Server{ev: ev, log: log}

	router := httprouter.New()
	router.HandlerFunc(http.MethodGet, "/health", func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "text/plain")
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("OK"))
	})
	if exposeMetrics {
		router.Handler(http.MethodGet, "/metrics", promhttp.Handler())
	}
	router.GET("/api/v1/units", s.units)
	router.GET("/api/v1/kinds", s.kinds)
	router.GET("/api/v1/kinds/:kind", s.kind)
	router.POST("/api/v1/evaluate", s.evaluate)

	s.srv = &http.Server{
		Addr:              addr,
		Handler:           s.logRequests(router),
		ReadHeaderTimeout: 5 * time.Second,
	}
	return s
}

// Handler exposes the routed handler, middleware included.
func (s *Server) Handler() http.Handler { return s.srv.Handler }

// Start blocks until the server stops. A clean Shutdown returns nil.
func (s *Server) Start() error {
	if err := s.srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

func (s *Server) Shutdown(ctx context.Context) error {
	return s.srv.Shutdown(ctx)
}

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(code int) {
	r.status = code
	r.ResponseWriter.WriteHeader(code)
}

func (s *Server) logRequests(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(rec, r)
		logger.LogHTTPRequest(s.log, r.Method, r.URL.Path, rec.status,
			float64(time.Since(start).Microseconds())/1000)
	})
}

func (s *Server) writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		logger.LogError(s.log, "encode response", err)
	}
}

type unitJSON struct {
	Symbol   string  `json:"symbol"`
	Factor   float64 `json:"factor"`
	Quantity string  `json:"quantity"`
}

func (s *Server) units(w http.ResponseWriter, _ *http.Request, _ httprouter.Params) {
	list := s.ev.Table().Units()
	out := make([]unitJSON, 0, len(list))
	for _, u := range list {
		out = append(out, unitJSON{Symbol: u.Symbol, Factor: u.Factor, Quantity: string(u.Quantity)})
	}
	s.writeJSON(w, http.StatusOK, out)
}

type paramJSON struct {
	Key      string  `json:"key"`
	Default  float64 `json:"default"`
	Required bool    `json:"required"`
	Hint     string  `json:"hint,omitempty"`
}

type kindJSON struct {
	Kind        string      `json:"kind"`
	Title       string      `json:"title"`
	Constructor string      `json:"constructor"`
	Params      []paramJSON `json:"params"`
}

func toKindJSON(k materials.KindSpec) kindJSON {
	out := kindJSON{Kind: string(k.Kind), Title: k.Title, Constructor: k.Constructor}
	for _, p := range k.Params {
		out.Params = append(out.Params, paramJSON{Key: p.Key, Default: p.Default, Required: p.Required, Hint: p.Hint})
	}
	return out
}

func (s *Server) kinds(w http.ResponseWriter, _ *http.Request, _ httprouter.Params) {
	specs := materials.Kinds()
	out := make([]kindJSON, 0, len(specs))
	for _, k := range specs {
		out = append(out, toKindJSON(k))
	}
	s.writeJSON(w, http.StatusOK, out)
}

func (s *Server) kind(w http.ResponseWriter, _ *http.Request, ps httprouter.Params) {
	spec, err := materials.SpecFor(materials.Kind(ps.ByName("kind")))
	if err != nil {
		s.writeJSON(w, http.StatusNotFound, errorJSON{Error: err.Error()})
		return
	}
	s.writeJSON(w, http.StatusOK, toKindJSON(spec))
}

type evaluateRequest struct {
	Expression string `json:"expression"`
}

type evaluateResponse struct {
	Value     float64 `json:"value"`
	Formatted string  `json:"formatted"`
}

type errorJSON struct {
	Error    string `json:"error"`
	Kind     string `json:"kind,omitempty"`
	Position *int   `json:"position,omitempty"` // 1-based
}

func (s *Server) evaluate(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	var req evaluateRequest
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, 4096)).Decode(&req); err != nil {
		s.writeJSON(w, http.StatusBadRequest, errorJSON{Error: "body must be {\"expression\": \"...\"}"})
		return
	}

	v, err := s.ev.Eval(req.Expression)
	metrics.Evaluations.WithLabelValues(expr.Kind(err)).Inc()
	if err != nil {
		out := errorJSON{Error: err.Error(), Kind: expr.Kind(err)}
		var e *expr.Error
		if errors.As(err, &e) && e.Pos >= 0 {
			pos := e.Pos + 1
			out.Position = &pos
		}
		s.writeJSON(w, http.StatusUnprocessableEntity, out)
		return
	}
	s.writeJSON(w, http.StatusOK, evaluateResponse{Value: v, Formatted: expr.Format(v)})
}
