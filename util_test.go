package cors_test

import (
	"io"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"

	cors "github.com/lfades/edge-cors"
)

const (
	// request headers
	headerOrigin = "Origin"
	headerACRH   = "Access-Control-Request-Headers"

	// common response headers
	headerACAO = "Access-Control-Allow-Origin"
	headerACAC = "Access-Control-Allow-Credentials"
	headerACEH = "Access-Control-Expose-Headers"

	// preflight-only response headers
	headerACAM = "Access-Control-Allow-Methods"
	headerACAH = "Access-Control-Allow-Headers"
	headerACMA = "Access-Control-Max-Age"

	headerContentLength = "Content-Length"
	headerVary          = "Vary"
)

const (
	wildcard       = "*"
	defaultMethods = "GET,HEAD,PUT,PATCH,POST,DELETE"

	spyBody = "bar"
)

// responseHeaders lists every response-header name the middleware may
// write; assertions compare all of them, so that a test case also pins
// the headers that must remain absent.
var responseHeaders = []string{
	headerACAO,
	headerACAC,
	headerACEH,
	headerACAM,
	headerACAH,
	headerACMA,
	headerContentLength,
	headerVary,
}

// Headers represent a set of HTTP-header name-value pairs
// in which there are no duplicate names.
type Headers = map[string]string

type MiddlewareTestCase struct {
	desc  string
	cfg   *cors.Config // nil for a zero-value (passthrough) middleware
	cases []ReqTestCase
}

type ReqTestCase struct {
	desc string
	// request
	reqMethod  string
	reqHeaders Headers
	// response headers set by some outer middleware before CORS runs
	preHeaders Headers
	// expectations
	wantStatus        int // 0 means the spy handler's own status (200)
	wantHeaders       Headers
	wantHandlerCalled bool
}

func newRequest(method string, hdrs Headers) *http.Request {
	const dummyEndpoint = "https://api.example.io/whatever"
	req := httptest.NewRequest(method, dummyEndpoint, nil)
	for name, value := range hdrs {
		req.Header.Add(name, value)
	}
	return req
}

type spyHandler struct {
	called     atomic.Bool
	statusCode int
	body       string
}

func (s *spyHandler) ServeHTTP(w http.ResponseWriter, _ *http.Request) {
	s.called.Store(true)
	w.WriteHeader(s.statusCode)
	if len(s.body) > 0 {
		io.WriteString(w, s.body)
	}
}

// presetHeaders simulates an outer middleware that sets response headers
// before the CORS middleware runs.
func presetHeaders(hdrs Headers, h http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		for name, value := range hdrs {
			w.Header().Set(name, value)
		}
		h.ServeHTTP(w, r)
	})
}

func runReqTestCases(t *testing.T, mw *cors.Middleware, cases []ReqTestCase) {
	t.Helper()
	for _, tc := range cases {
		t.Run(tc.desc, func(t *testing.T) {
			spy := &spyHandler{statusCode: http.StatusOK, body: spyBody}
			var h http.Handler = mw.Wrap(spy)
			if tc.preHeaders != nil {
				h = presetHeaders(tc.preHeaders, h)
			}
			rec := httptest.NewRecorder()
			h.ServeHTTP(rec, newRequest(tc.reqMethod, tc.reqHeaders))

			wantStatus := tc.wantStatus
			if wantStatus == 0 {
				wantStatus = http.StatusOK
			}
			if rec.Code != wantStatus {
				t.Errorf("got status %d; want %d", rec.Code, wantStatus)
			}
			if got := spy.called.Load(); got != tc.wantHandlerCalled {
				t.Errorf("handler called: %t; want %t", got, tc.wantHandlerCalled)
			}
			for _, name := range responseHeaders {
				if got, want := rec.Header().Get(name), tc.wantHeaders[name]; got != want {
					t.Errorf("header %s: got %q; want %q", name, got, want)
				}
			}
			var wantBody string
			if tc.wantHandlerCalled {
				wantBody = spyBody
			}
			if got := rec.Body.String(); got != wantBody {
				t.Errorf("got body %q; want %q", got, wantBody)
			}
		})
	}
}
