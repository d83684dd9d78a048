package cors

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/lfades/edge-cors/internal/headers"
)

// A Config configures a [Middleware]. The zero value of every field is
// meaningful and documented below; fields left unset fall back to the
// documented defaults when the middleware is built. A Config is never
// validated: its values flow into response headers as given, and the
// caller is trusted to supply sensible ones.
//
// # Origin
//
// Origin is the origin policy; see the [Origin] type for the available
// variants. When nil (and OriginFunc is nil too), it defaults to
// [AnyOrigin].
//
// # OriginFunc
//
// OriginFunc, when non-nil, takes precedence over Origin and resolves
// the origin policy anew for each request; see [OriginFunc].
//
// # Methods
//
// Methods is the list of methods written, comma-joined, to the
// Access-Control-Allow-Methods header of preflight responses.
// When nil, it defaults to GET, HEAD, PUT, PATCH, POST, DELETE.
// An empty (non-nil) list omits the header.
//
// # AllowedHeaders
//
// AllowedHeaders is the list of request-header names written,
// comma-joined in the given order, to the Access-Control-Allow-Headers
// header of preflight responses. Nilness is significant:
//
//   - nil: the value of the request's Access-Control-Request-Headers
//     header is reflected back, whatever it is, and
//     Access-Control-Request-Headers is listed in Vary;
//   - empty but non-nil: the header is omitted altogether;
//   - non-empty: the joined list is written as is.
//
// # ExposedHeaders
//
// ExposedHeaders is the list of response-header names written,
// comma-joined, to the Access-Control-Expose-Headers header.
// When nil or empty, the header is omitted.
//
// # Credentialed
//
// Credentialed, when set, adds Access-Control-Allow-Credentials: true to
// responses; the header is never written with any other value.
//
// # MaxAgeInSeconds
//
// MaxAgeInSeconds is the value of the Access-Control-Max-Age header of
// preflight responses. The zero value omits the header, letting browsers
// apply their default. A negative value writes a max-age of 0, which
// disables caching of preflight responses. Note the distinction: 0 omits
// the header, whereas -1 sends "0".
//
// # PreflightContinue
//
// PreflightContinue, when set, makes the middleware pass preflight
// requests on to the wrapped handler (with all CORS headers already set)
// instead of answering them itself; the wrapped handler then produces
// the final preflight response.
//
// # OptionsSuccessStatus
//
// OptionsSuccessStatus is the status of the preflight responses the
// middleware itself produces; it defaults to 204 (No Content). Some
// legacy browsers choke on 204; use 200 to cater for them.
type Config struct {
	// Precludes comparability, unkeyed struct literals, and conversion to
	// and from third-party types.
	_ [0]func()

	Origin               Origin
	OriginFunc           OriginFunc
	Methods              []string
	AllowedHeaders       []string
	ExposedHeaders       []string
	Credentialed         bool
	MaxAgeInSeconds      int
	PreflightContinue    bool
	OptionsSuccessStatus int
}

const defaultMethods = "GET,HEAD,PUT,PATCH,POST,DELETE"

// An internalConfig is a compiled Config: defaults are filled in and all
// header values that do not depend on the request are precomputed.
// Compilation copies everything it keeps, so that later mutations of the
// caller's Config (or of the slices it shares with it) cannot alter the
// behavior of a running middleware.
type internalConfig struct {
	origin            Origin // non-nil unless originFunc is set
	originFunc        OriginFunc
	acam              string // "" <=> omit the allow-methods header
	acah              string // meaningful only when !reflectACRH
	reflectACRH       bool   // AllowedHeaders was nil
	aceh              string // "" <=> omit the expose-headers header
	acma              string // "" <=> omit the max-age header
	credentialed      bool
	preflightContinue bool
	preflightStatus   int
}

func newInternalConfig(cfg *Config) *internalConfig {
	if cfg == nil {
		return nil
	}
	icfg := internalConfig{
		originFunc:        cfg.OriginFunc,
		credentialed:      cfg.Credentialed,
		preflightContinue: cfg.PreflightContinue,
		preflightStatus:   cfg.OptionsSuccessStatus,
	}
	icfg.origin = cloneOrigin(cfg.Origin)
	if icfg.origin == nil && icfg.originFunc == nil {
		icfg.origin = AnyOrigin
	}
	if cfg.Methods == nil {
		icfg.acam = defaultMethods
	} else {
		icfg.acam = strings.Join(cfg.Methods, headers.ValueSep)
	}
	if cfg.AllowedHeaders == nil {
		icfg.reflectACRH = true
	} else {
		icfg.acah = strings.Join(cfg.AllowedHeaders, headers.ValueSep)
	}
	icfg.aceh = strings.Join(cfg.ExposedHeaders, headers.ValueSep)
	switch {
	case cfg.MaxAgeInSeconds > 0:
		icfg.acma = strconv.Itoa(cfg.MaxAgeInSeconds)
	case cfg.MaxAgeInSeconds < 0:
		icfg.acma = "0"
	}
	if icfg.preflightStatus == 0 {
		icfg.preflightStatus = http.StatusNoContent
	}
	return &icfg
}
