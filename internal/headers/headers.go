// Package headers provides the header names and values involved in the
// CORS protocol, along with some helpers for reading and accumulating
// header values.
package headers

import (
	"net/http"
	"strings"
)

// header names in canonical format
const (
	// common request headers
	Origin = "Origin"

	// preflight-only request headers
	ACRH = "Access-Control-Request-Headers"

	// common response headers
	ACAO = "Access-Control-Allow-Origin"
	ACAC = "Access-Control-Allow-Credentials"
	ACEH = "Access-Control-Expose-Headers"

	// preflight-only response headers
	ACAM = "Access-Control-Allow-Methods"
	ACAH = "Access-Control-Allow-Headers"
	ACMA = "Access-Control-Max-Age"

	ContentLength = "Content-Length"
	Vary          = "Vary"
)

const (
	ValueTrue     = "true"
	ValueWildcard = "*"
)

// The elements of a header-field value may be separated simply by commas;
// since whitespace is optional, let's not use any.
// See https://httpwg.org/http-core/draft-ietf-httpbis-semantics-latest.html#abnf.extension.recipient
const ValueSep = ","

// First, if k is present in hdrs, returns the first value associated to k
// in hdrs and true; otherwise, First returns "" and false.
// Precondition: k is in canonical format (see [http.CanonicalHeaderKey]).
//
// First is useful because, contrary to [http.Header.Get], it makes the
// presence of an empty field line observable to client code.
func First(hdrs http.Header, k string) (string, bool) {
	v, found := hdrs[k]
	if !found || len(v) == 0 {
		return "", false
	}
	return v[0], true
}

// AddVary lists value as an element of the Vary field of hdrs.
// Any elements already listed are preserved and extended, not clobbered:
// all pre-existing field lines are folded, together with value, into a
// single comma-space-joined line, e.g. an existing "Foo" becomes
// "Foo, Origin", and lines "Foo" and "Bar" become "Foo, Bar, Origin".
// If value is already listed (ASCII case-insensitively, on any line),
// AddVary is a no-op; header names are case-insensitive and caches
// compare Vary elements accordingly.
func AddVary(hdrs http.Header, value string) {
	lines := hdrs[Vary]
	for _, line := range lines {
		for _, elem := range strings.Split(line, ValueSep) {
			if strings.EqualFold(strings.TrimSpace(elem), value) {
				return
			}
		}
	}
	merged := make([]string, 0, len(lines)+1)
	for _, line := range lines {
		if line != "" {
			merged = append(merged, line)
		}
	}
	merged = append(merged, value)
	hdrs.Set(Vary, strings.Join(merged, ", "))
}
