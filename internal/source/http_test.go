package source

import (
	"context"
	"net"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/valyala/fasthttp"
	"github.com/valyala/fasthttp/fasthttputil"
)

// serveInMemory starts a fasthttp server on an in-memory listener and
// returns an HTTPSource wired to it
func serveInMemory(t *testing.T, path string, handler fasthttp.RequestHandler) *HTTPSource {
	t.Helper()

	ln := fasthttputil.NewInmemoryListener()
	server := &fasthttp.Server{Handler: handler}
	go func() {
		_ = server.Serve(ln)
	}()

	src := NewHTTPSource("http://documents.test"+path, time.Second)
	src.Client.Dial = func(addr string) (net.Conn, error) {
		return ln.Dial()
	}

	t.Cleanup(func() {
		src.Client.CloseIdleConnections()
		ctx, cancel := context.WithTimeout(context.Background(), time.Second)
		defer cancel()
		_ = server.ShutdownWithContext(ctx)
	})
	return src
}

func TestHTTPSource_Fetch(t *testing.T) {
	src := serveInMemory(t, "/asd.csv", func(ctx *fasthttp.RequestCtx) {
		if string(ctx.Path()) != "/asd.csv" {
			ctx.SetStatusCode(fasthttp.StatusNotFound)
			return
		}
		ctx.SetContentType("text/csv; charset=utf-8")
		ctx.SetBodyString("a;b\n1;2\n")
	})

	text, err := src.Fetch(context.Background())

	require.NoError(t, err)
	assert.Equal(t, "a;b\n1;2\n", text)
	assert.Equal(t, "http://documents.test/asd.csv", src.Name())
}

func TestHTTPSource_NonSuccessStatus(t *testing.T) {
	src := serveInMemory(t, "/missing", func(ctx *fasthttp.RequestCtx) {
		ctx.SetStatusCode(fasthttp.StatusNotFound)
	})

	_, err := src.Fetch(context.Background())

	require.Error(t, err)
	assert.ErrorIs(t, err, ErrStatus)
	assert.Contains(t, err.Error(), "404")
}

func TestHTTPSource_CancelledContext(t *testing.T) {
	src := NewHTTPSource("http://documents.test/x", time.Second)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := src.Fetch(ctx)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestNewHTTPSource_DefaultTimeout(t *testing.T) {
	assert.Equal(t, DefaultTimeout, NewHTTPSource("http://x", 0).Timeout)
	assert.Equal(t, time.Second, NewHTTPSource("http://x", time.Second).Timeout)
}

func TestFetchPair_OverHTTP(t *testing.T) {
	income := serveInMemory(t, "/asd.csv", func(ctx *fasthttp.RequestCtx) {
		ctx.SetBodyString("income")
	})
	rates := serveInMemory(t, "/tyel.txt", func(ctx *fasthttp.RequestCtx) {
		ctx.SetBodyString("rates")
	})

	a, b, err := FetchPair(context.Background(), income, rates)

	require.NoError(t, err)
	assert.Equal(t, "income", a)
	assert.Equal(t, "rates", b)
}
