package server

import (
	"context"
	"errors"
	"net"
	"strings"
	"testing"
	"time"

	json "github.com/goccy/go-json"
	"github.com/rgehrsitz/paysplit/internal/calculation"
	"github.com/rgehrsitz/paysplit/internal/domain"
	"github.com/rgehrsitz/paysplit/internal/metrics"
	"github.com/rgehrsitz/paysplit/internal/session"
	"github.com/rgehrsitz/paysplit/internal/source"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/valyala/fasthttp"
	"github.com/valyala/fasthttp/fasthttputil"
)

type failingSource struct{}

func (failingSource) Fetch(context.Context) (string, error) { return "", errors.New("offline") }
func (failingSource) Name() string                          { return "offline" }

func testDefaults() domain.QueryDefaults {
	return domain.QueryDefaults{
		Year:          2026,
		Scheme:        calculation.DefaultScheme,
		AgeBracket:    domain.AgeBracketBase,
		MonthlySalary: decimal.NewFromInt(3500),
	}
}

func testServer(m *metrics.Metrics) *Server {
	loader := session.NewLoader(
		source.NewFileSource("../../testdata/asd.csv"),
		source.NewFileSource("../../testdata/tyel.txt"),
	)
	if m != nil {
		loader.Recorder = m
	}
	return New(loader, nil, testDefaults(), m)
}

// startServer serves s on an in-memory listener and returns a client dialing it
func startServer(t *testing.T, s *Server) *fasthttp.Client {
	t.Helper()

	ln := fasthttputil.NewInmemoryListener()
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() {
		done <- s.Serve(ctx, ln)
	}()

	client := &fasthttp.Client{
		Dial: func(addr string) (net.Conn, error) {
			return ln.Dial()
		},
	}

	t.Cleanup(func() {
		client.CloseIdleConnections()
		cancel()
		select {
		case err := <-done:
			assert.NoError(t, err)
		case <-time.After(5 * time.Second):
			t.Error("server did not shut down")
		}
	})
	return client
}

func get(t *testing.T, client *fasthttp.Client, method, uri string) (int, []byte) {
	t.Helper()

	req := fasthttp.AcquireRequest()
	resp := fasthttp.AcquireResponse()
	defer fasthttp.ReleaseRequest(req)
	defer fasthttp.ReleaseResponse(resp)

	req.SetRequestURI("http://paysplit.test" + uri)
	req.Header.SetMethod(method)
	require.NoError(t, client.DoTimeout(req, resp, 5*time.Second))

	return resp.StatusCode(), append([]byte(nil), resp.Body()...)
}

func decode(t *testing.T, body []byte) map[string]interface{} {
	t.Helper()
	var v map[string]interface{}
	require.NoError(t, json.Unmarshal(body, &v), string(body))
	return v
}

func TestServer_Healthz(t *testing.T) {
	client := startServer(t, testServer(nil))

	status, body := get(t, client, fasthttp.MethodGet, "/healthz")

	assert.Equal(t, fasthttp.StatusOK, status)
	assert.JSONEq(t, `{"status":"ok"}`, string(body))
}

func TestServer_Breakdown(t *testing.T) {
	client := startServer(t, testServer(nil))

	status, body := get(t, client, fasthttp.MethodGet, "/breakdown?monthly=3500")
	require.Equal(t, fasthttp.StatusOK, status, string(body))

	report := decode(t, body)
	assert.Equal(t, "breakdown", report["kind"])

	b := report["breakdown"].(map[string]interface{})
	assert.Equal(t, "42000", b["annual_gross"])
	assert.Equal(t, "3066", b["employee_contribution"])
	assert.Equal(t, "7371", b["employer_contribution"])
	assert.Equal(t, "49371", b["employer_total_cost"])
	assert.Equal(t, "31020", b["net_annual"])
	assert.Equal(t, calculation.DefaultScheme, b["scheme"])
}

func TestServer_Rates(t *testing.T) {
	client := startServer(t, testServer(nil))

	status, body := get(t, client, fasthttp.MethodGet, "/rates?year=2025&bracket=elevated")
	require.Equal(t, fasthttp.StatusOK, status, string(body))

	rates := decode(t, body)["rates"].(map[string]interface{})
	assert.Equal(t, "0.0865", rates["employee_rate"])
	assert.Equal(t, "0.162", rates["employer_rate"])
	assert.Equal(t, "0.2485", rates["total_rate"])
}

func TestServer_UnknownSchemeGivesZeroRates(t *testing.T) {
	client := startServer(t, testServer(nil))

	status, body := get(t, client, fasthttp.MethodGet, "/rates?scheme=Unknown")
	require.Equal(t, fasthttp.StatusOK, status)

	rates := decode(t, body)["rates"].(map[string]interface{})
	assert.Equal(t, "0", rates["employee_rate"])
	assert.Equal(t, "0", rates["total_rate"])
}

func TestServer_Income(t *testing.T) {
	client := startServer(t, testServer(nil))

	status, body := get(t, client, fasthttp.MethodGet, "/income?gross=45000")
	require.Equal(t, fasthttp.StatusOK, status, string(body))
	income := decode(t, body)["income"].(map[string]interface{})
	assert.Equal(t, "32730", income["net_annual"])
	assert.Equal(t, "12270", income["taxes_annual"])

	status, body = get(t, client, fasthttp.MethodGet, "/income?monthly=3500")
	require.Equal(t, fasthttp.StatusOK, status)
	income = decode(t, body)["income"].(map[string]interface{})
	assert.Equal(t, "31020", income["net_annual"])

	status, body = get(t, client, fasthttp.MethodGet, "/income")
	assert.Equal(t, fasthttp.StatusBadRequest, status)
	assert.Contains(t, string(body), "gross or monthly is required")
}

func TestServer_ListsAndSchedule(t *testing.T) {
	client := startServer(t, testServer(nil))

	status, body := get(t, client, fasthttp.MethodGet, "/years")
	require.Equal(t, fasthttp.StatusOK, status)
	assert.Equal(t, []interface{}{2026.0, 2025.0, 2024.0}, decode(t, body)["years"])

	status, body = get(t, client, fasthttp.MethodGet, "/schemes?year=2025")
	require.Equal(t, fasthttp.StatusOK, status)
	schemes := decode(t, body)["schemes"].([]interface{})
	assert.Contains(t, schemes, "Merimieseläkelaki/MEL")
	assert.NotContains(t, schemes, "Yrittäjät/YEL")

	status, body = get(t, client, fasthttp.MethodGet, "/schedule")
	require.Equal(t, fasthttp.StatusOK, status)
	assert.Len(t, decode(t, body)["schedule"], 10)
}

func TestServer_BadRequests(t *testing.T) {
	client := startServer(t, testServer(nil))

	tests := []struct {
		uri     string
		message string
	}{
		{"/breakdown?year=abc", `invalid year "abc"`},
		{"/breakdown?monthly=lots", `invalid monthly "lots"`},
		{"/breakdown?monthly=-1", "monthly must not be negative"},
		{"/rates?bracket=old", "unknown age bracket"},
		{"/income?gross=x", `invalid gross "x"`},
	}

	for _, tt := range tests {
		t.Run(tt.uri, func(t *testing.T) {
			status, body := get(t, client, fasthttp.MethodGet, tt.uri)

			assert.Equal(t, fasthttp.StatusBadRequest, status)
			resp := decode(t, body)
			assert.Equal(t, 400.0, resp["status"])
			assert.Contains(t, resp["message"], tt.message)
		})
	}
}

func TestServer_RoutingErrors(t *testing.T) {
	client := startServer(t, testServer(nil))

	status, _ := get(t, client, fasthttp.MethodPost, "/breakdown")
	assert.Equal(t, fasthttp.StatusMethodNotAllowed, status)

	status, body := get(t, client, fasthttp.MethodGet, "/nope")
	assert.Equal(t, fasthttp.StatusNotFound, status)
	assert.Contains(t, string(body), "Unknown endpoint /nope")

	status, _ = get(t, client, fasthttp.MethodGet, "/metrics")
	assert.Equal(t, fasthttp.StatusNotFound, status, "metrics disabled without a registry")
}

func TestServer_SourceFailure(t *testing.T) {
	s := New(session.NewLoader(failingSource{}, source.NewFileSource("../../testdata/tyel.txt")), nil, testDefaults(), nil)
	client := startServer(t, s)

	status, body := get(t, client, fasthttp.MethodGet, "/breakdown")

	assert.Equal(t, fasthttp.StatusBadGateway, status)
	assert.Contains(t, string(body), "Source documents unavailable")
}

func TestServer_Metrics(t *testing.T) {
	m := metrics.New()
	client := startServer(t, testServer(m))

	status, _ := get(t, client, fasthttp.MethodGet, "/breakdown")
	require.Equal(t, fasthttp.StatusOK, status)
	status, _ = get(t, client, fasthttp.MethodGet, "/breakdown?year=x")
	require.Equal(t, fasthttp.StatusBadRequest, status)

	status, body := get(t, client, fasthttp.MethodGet, "/metrics")
	require.Equal(t, fasthttp.StatusOK, status)

	text := string(body)
	assert.Contains(t, text, `paysplit_requests_total{endpoint="breakdown",status="200"} 1`)
	assert.Contains(t, text, `paysplit_requests_total{endpoint="breakdown",status="400"} 1`)
	assert.Contains(t, text, `paysplit_rows_dropped_total{document="pension_rates"}`)
	assert.True(t, strings.Contains(text, "paysplit_rows_parsed_total"))
}

func TestNewFromConfig(t *testing.T) {
	config := &domain.Configuration{
		Sources:  domain.SourcesConfig{IncomeSchedule: "../../testdata/asd.csv", PensionRates: "../../testdata/tyel.txt"},
		Defaults: testDefaults(),
		Server:   domain.ServerConfig{ReadTimeout: time.Second, WriteTimeout: 2 * time.Second},
	}
	m := metrics.New()

	s := NewFromConfig(config, nil, m)

	assert.Equal(t, time.Second, s.ReadTimeout)
	assert.Equal(t, 2*time.Second, s.WriteTimeout)
	assert.Same(t, m, s.Loader.Recorder)
	assert.IsType(t, calculation.NopLogger{}, s.Logger)
}
