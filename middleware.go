package cors

import (
	"net/http"
	"sync/atomic"

	"github.com/lfades/edge-cors/internal/headers"
)

// A Middleware is a CORS middleware.
// Call its [*Middleware.Wrap] method to apply it to a [http.Handler],
// or its [*Middleware.Handle] method to drive the decision logic from
// your own handler or framework adapter.
//
// The zero value is ready to use but is a mere "passthrough" middleware,
// i.e. a middleware that simply delegates to the handler(s) it wraps.
// To obtain a proper CORS middleware, call [NewMiddleware] with the
// desired [Config].
//
// A Middleware must not be copied after first use.
//
// Middleware are safe for concurrent use by multiple goroutines;
// each request is processed statelessly against the configuration
// current at the time it arrives.
type Middleware struct {
	icfg atomic.Pointer[internalConfig]
}

// NewMiddleware creates a CORS middleware that behaves in accordance
// with cfg. Unset fields of cfg assume the defaults documented on
// [Config]; cfg is neither retained nor mutated, so mutating its fields
// after NewMiddleware has returned does not alter the middleware's
// behavior. However, you can reconfigure a Middleware via its
// [*Middleware.Reconfigure] method.
func NewMiddleware(cfg Config) *Middleware {
	var m Middleware
	m.icfg.Store(newInternalConfig(&cfg))
	return &m
}

// Reconfigure reconfigures m in accordance with cfg.
// If cfg is nil, it turns m into a passthrough middleware.
// You can safely reconfigure a middleware even as it's concurrently
// processing requests; in-flight requests finish under the configuration
// they started with.
func (m *Middleware) Reconfigure(cfg *Config) {
	m.icfg.Store(newInternalConfig(cfg))
}

// Wrap applies the CORS middleware to the specified handler.
//
// The resulting handler answers preflight requests itself (unless
// [Config.PreflightContinue] is set) and otherwise delegates to h after
// setting the applicable CORS headers. If an [OriginFunc] fails, the
// resulting handler responds with a bare 500 and h is not invoked.
//
// Because preflight requests use [OPTIONS] as their method, you should
// not prevent OPTIONS requests from reaching the resulting handler;
// otherwise, preflight requests will not get properly handled and
// browser-based clients will likely experience CORS-related errors.
//
// [OPTIONS]: https://developer.mozilla.org/en-US/docs/Web/HTTP/Methods/OPTIONS
func (m *Middleware) Wrap(h http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		done, err := m.Handle(w, r)
		if err != nil {
			http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
			return
		}
		if done {
			return
		}
		h.ServeHTTP(w, r)
	})
}

// Handle applies m's CORS policy to a single exchange: it sets the
// applicable CORS headers on w and, for preflight requests (unless
// [Config.PreflightContinue] is set), writes a complete, bodyless
// preflight response. It reports whether it has written that response,
// in which case the caller must not write anything further to w.
//
// A non-nil error can only stem from a failing [OriginFunc]; the error
// is returned as is, before any header has been set on w, and handling
// the failure is up to the caller.
func (m *Middleware) Handle(w http.ResponseWriter, r *http.Request) (bool, error) {
	icfg := m.icfg.Load()
	if icfg == nil { // passthrough middleware
		return false, nil
	}
	return icfg.handle(w, r)
}

func (icfg *internalConfig) handle(w http.ResponseWriter, r *http.Request) (bool, error) {
	// Fetch-compliant browsers send at most one Origin header;
	// see https://fetch.spec.whatwg.org/#http-network-or-cache-fetch
	// (step 12).
	origin, _ := headers.First(r.Header, headers.Origin)
	policy := icfg.origin
	if icfg.originFunc != nil {
		var err error
		policy, err = icfg.originFunc(r, origin)
		if err != nil {
			return false, err
		}
	}
	if !enabledOrigin(policy) {
		// CORS is disabled for this exchange; the response goes out
		// entirely untouched.
		return false, nil
	}

	resHdrs := w.Header()
	originHeaders(resHdrs, origin, policy)
	if icfg.credentialed {
		resHdrs.Set(headers.ACAC, headers.ValueTrue)
	}
	if icfg.aceh != "" {
		resHdrs.Set(headers.ACEH, icfg.aceh)
	}
	if r.Method != http.MethodOptions {
		// r is an "actual" (i.e. non-preflight) CORS request.
		return false, nil
	}

	// r is a CORS-preflight request.
	if icfg.acam != "" {
		resHdrs.Set(headers.ACAM, icfg.acam)
	}
	icfg.allowedHeaders(resHdrs, r.Header)
	if icfg.acma != "" {
		resHdrs.Set(headers.ACMA, icfg.acma)
	}
	if icfg.preflightContinue {
		// The wrapped handler produces the final preflight response.
		return false, nil
	}
	resHdrs.Set(headers.ContentLength, "0")
	w.WriteHeader(icfg.preflightStatus)
	return true, nil
}

// originHeaders sets the allow-origin header (if any) dictated by policy
// and maintains the response's Vary field. Responses whose allow-origin
// value hinges on the request's own origin must list Origin in Vary even
// when the origin is not allowed: downstream caches must not serve a
// response computed for one origin to a different one.
// See https://fetch.spec.whatwg.org/#cors-protocol-and-http-caches.
func originHeaders(resHdrs http.Header, origin string, policy Origin) {
	switch policy := policy.(type) {
	case wildcardOrigin:
		resHdrs.Set(headers.ACAO, headers.ValueWildcard)
	case staticOrigin:
		if policy == headers.ValueWildcard {
			resHdrs.Set(headers.ACAO, headers.ValueWildcard)
			return
		}
		resHdrs.Set(headers.ACAO, string(policy))
		headers.AddVary(resHdrs, headers.Origin)
	default:
		if origin != "" && isOriginAllowed(origin, policy) {
			resHdrs.Set(headers.ACAO, origin)
		}
		headers.AddVary(resHdrs, headers.Origin)
	}
}

// allowedHeaders sets the allow-headers header of a preflight response.
// In reflection mode (see [Config.AllowedHeaders]), the response varies
// by the request's Access-Control-Request-Headers field, and Vary is
// maintained accordingly whether or not that field is present.
func (icfg *internalConfig) allowedHeaders(resHdrs, reqHdrs http.Header) {
	if icfg.reflectACRH {
		headers.AddVary(resHdrs, headers.ACRH)
		if acrh, found := headers.First(reqHdrs, headers.ACRH); found && acrh != "" {
			resHdrs.Set(headers.ACAH, acrh)
		}
		return
	}
	if icfg.acah != "" {
		resHdrs.Set(headers.ACAH, icfg.acah)
	}
}
