// Package server exposes the salary split as a read-only JSON API over fasthttp.
package server

import (
	"context"
	"errors"
	"fmt"
	"net"
	"strconv"
	"time"

	json "github.com/goccy/go-json"
	"github.com/rgehrsitz/paysplit/internal/calculation"
	"github.com/rgehrsitz/paysplit/internal/domain"
	"github.com/rgehrsitz/paysplit/internal/metrics"
	"github.com/rgehrsitz/paysplit/internal/output"
	"github.com/rgehrsitz/paysplit/internal/session"
	"github.com/valyala/fasthttp"
	"github.com/valyala/fasthttp/fasthttpadaptor"
)

const shutdownTimeout = 5 * time.Second

// ErrorResponse is the body of every non-2xx answer
type ErrorResponse struct {
	Status  int    `json:"status"`
	Message string `json:"message"`
}

// errBadRequest marks query parameter errors
var errBadRequest = errors.New("bad request")

// Server answers queries against a freshly loaded snapshot per request
type Server struct {
	Loader   *session.Loader
	Engine   *calculation.CalculationEngine
	Defaults domain.QueryDefaults
	Metrics  *metrics.Metrics
	Logger   calculation.Logger

	ReadTimeout  time.Duration
	WriteTimeout time.Duration

	metricsHandler fasthttp.RequestHandler
}

// New creates a server; metrics may be nil
func New(loader *session.Loader, engine *calculation.CalculationEngine, defaults domain.QueryDefaults, m *metrics.Metrics) *Server {
	if engine == nil {
		engine = calculation.NewCalculationEngine()
	}
	s := &Server{
		Loader:   loader,
		Engine:   engine,
		Defaults: defaults,
		Metrics:  m,
		Logger:   calculation.NopLogger{},
	}
	if m != nil {
		s.metricsHandler = fasthttpadaptor.NewFastHTTPHandler(m.Handler())
	}
	return s
}

// NewFromConfig wires loader, engine and metrics from the configuration
func NewFromConfig(config *domain.Configuration, logger calculation.Logger, m *metrics.Metrics) *Server {
	loader := session.NewLoaderFromConfig(config, logger)
	if m != nil {
		loader.Recorder = m
	}
	engine := calculation.NewCalculationEngineWithConfig(config.PensionRates)
	engine.SetLogger(logger)

	s := New(loader, engine, config.Defaults, m)
	s.SetLogger(logger)
	s.ReadTimeout = config.Server.ReadTimeout
	s.WriteTimeout = config.Server.WriteTimeout
	return s
}

// SetLogger sets the logger; nil installs a no-op logger
func (s *Server) SetLogger(l calculation.Logger) {
	if l == nil {
		s.Logger = calculation.NopLogger{}
		return
	}
	s.Logger = l
}

// Handler routes requests to the endpoint handlers
func (s *Server) Handler() fasthttp.RequestHandler {
	return func(ctx *fasthttp.RequestCtx) {
		path := string(ctx.Path())

		if !ctx.IsGet() && !ctx.IsHead() {
			s.writeError(ctx, "other", fasthttp.StatusMethodNotAllowed, "Method not allowed")
			return
		}

		switch path {
		case "/healthz":
			s.writeJSON(ctx, "healthz", fasthttp.StatusOK, map[string]string{"status": "ok"})
		case "/metrics":
			if s.metricsHandler == nil {
				s.writeError(ctx, "metrics", fasthttp.StatusNotFound, "Metrics are disabled")
				return
			}
			s.metricsHandler(ctx)
		case "/years":
			s.handle(ctx, "years", s.years)
		case "/schemes":
			s.handle(ctx, "schemes", s.schemes)
		case "/rates":
			s.handle(ctx, "rates", s.rates)
		case "/income":
			s.handle(ctx, "income", s.income)
		case "/breakdown":
			s.handle(ctx, "breakdown", s.breakdown)
		case "/schedule":
			s.handle(ctx, "schedule", s.schedule)
		default:
			s.writeError(ctx, "other", fasthttp.StatusNotFound, "Unknown endpoint "+path)
		}
	}
}

type endpointFunc func(args *fasthttp.Args, query domain.Query, snapshot *session.Snapshot) (*output.Report, error)

// handle parses the query, loads the documents for its year and renders the report
func (s *Server) handle(ctx *fasthttp.RequestCtx, endpoint string, fn endpointFunc) {
	args := ctx.QueryArgs()

	query, err := s.parseQuery(args)
	if err != nil {
		s.writeError(ctx, endpoint, fasthttp.StatusBadRequest, err.Error())
		return
	}

	snapshot, err := s.Loader.Load(ctx, query.Year)
	if err != nil {
		s.Logger.Errorf("%s: %v", endpoint, err)
		s.writeError(ctx, endpoint, fasthttp.StatusBadGateway, "Source documents unavailable")
		return
	}
	if len(args.Peek("scheme")) == 0 {
		query.Scheme = calculation.SelectScheme(snapshot.Schemes(), query.Scheme)
	}

	report, err := fn(args, query, snapshot)
	if err != nil {
		status := fasthttp.StatusInternalServerError
		if errors.Is(err, errBadRequest) {
			status = fasthttp.StatusBadRequest
		}
		s.writeError(ctx, endpoint, status, err.Error())
		return
	}
	report.Query = query
	report.Stats = snapshot.Stats

	s.writeJSON(ctx, endpoint, fasthttp.StatusOK, report)
}

func (s *Server) years(_ *fasthttp.Args, _ domain.Query, snapshot *session.Snapshot) (*output.Report, error) {
	return &output.Report{Kind: output.ReportYears, Years: snapshot.Years}, nil
}

func (s *Server) schemes(_ *fasthttp.Args, _ domain.Query, snapshot *session.Snapshot) (*output.Report, error) {
	return &output.Report{Kind: output.ReportSchemes, Schemes: snapshot.Schemes()}, nil
}

func (s *Server) rates(_ *fasthttp.Args, query domain.Query, snapshot *session.Snapshot) (*output.Report, error) {
	rates := s.Engine.ResolveRates(snapshot.Rates, query)
	return &output.Report{Kind: output.ReportRates, Rates: &rates}, nil
}

func (s *Server) income(args *fasthttp.Args, query domain.Query, snapshot *session.Snapshot) (*output.Report, error) {
	gross, err := grossParam(args, query)
	if err != nil {
		return nil, err
	}
	report := &output.Report{Kind: output.ReportIncome}
	if point, ok := s.Engine.IncomeAt(snapshot.Schedule, gross); ok {
		report.Income = &point
	}
	return report, nil
}

func (s *Server) breakdown(_ *fasthttp.Args, query domain.Query, snapshot *session.Snapshot) (*output.Report, error) {
	b := s.Engine.Breakdown(snapshot.Rates, snapshot.Schedule, query)
	return &output.Report{Kind: output.ReportBreakdown, Breakdown: &b}, nil
}

func (s *Server) schedule(_ *fasthttp.Args, _ domain.Query, snapshot *session.Snapshot) (*output.Report, error) {
	return &output.Report{Kind: output.ReportSchedule, Schedule: snapshot.Schedule.Records()}, nil
}

func (s *Server) writeJSON(ctx *fasthttp.RequestCtx, endpoint string, status int, v interface{}) {
	body, err := json.Marshal(v)
	if err != nil {
		s.Logger.Errorf("%s: encode response: %v", endpoint, err)
		status = fasthttp.StatusInternalServerError
		body, _ = json.Marshal(ErrorResponse{Status: status, Message: "Failed to encode response"})
	}
	ctx.SetContentType("application/json")
	ctx.SetStatusCode(status)
	ctx.SetBody(body)
	s.Metrics.RecordRequest(endpoint, status)
}

func (s *Server) writeError(ctx *fasthttp.RequestCtx, endpoint string, status int, message string) {
	s.writeJSON(ctx, endpoint, status, ErrorResponse{Status: status, Message: message})
}

// Serve answers requests on ln until ctx is cancelled, then shuts down gracefully
func (s *Server) Serve(ctx context.Context, ln net.Listener) error {
	srv := &fasthttp.Server{
		Handler:      s.Handler(),
		Name:         "paysplit",
		ReadTimeout:  s.ReadTimeout,
		WriteTimeout: s.WriteTimeout,
		Logger:       printfLogger{s.Logger},
	}

	errCh := make(chan error, 1)
	go func() {
		errCh <- srv.Serve(ln)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		if err := srv.ShutdownWithContext(shutdownCtx); err != nil {
			return fmt.Errorf("shutdown: %w", err)
		}
		return <-errCh
	}
}

// ListenAndServe listens on addr and serves until ctx is cancelled
func (s *Server) ListenAndServe(ctx context.Context, addr string) error {
	ln, err := net.Listen("tcp", addr)
	if err != nil {
		return fmt.Errorf("listen %s: %w", addr, err)
	}
	s.Logger.Infof("query API listening on %s", ln.Addr())
	return s.Serve(ctx, ln)
}

// printfLogger routes fasthttp's internal messages to the debug level
type printfLogger struct {
	logger calculation.Logger
}

func (p printfLogger) Printf(format string, args ...interface{}) {
	p.logger.Debugf(format, args...)
}

func intParam(args *fasthttp.Args, name string, fallback int) (int, error) {
	raw := args.Peek(name)
	if len(raw) == 0 {
		return fallback, nil
	}
	v, err := strconv.Atoi(string(raw))
	if err != nil {
		return 0, fmt.Errorf("%w: invalid %s %q", errBadRequest, name, raw)
	}
	return v, nil
}
