package cors

import (
	"fmt"
	"net/http"
	"regexp"
	"strings"

	"golang.org/x/net/idna"
	"golang.org/x/net/publicsuffix"
)

// An Origin is an origin policy: it governs whether, and with which value,
// middleware set the Access-Control-Allow-Origin header on a response.
//
// An Origin is one of the following variants:
//
//   - [AnyOrigin]: the wildcard; the allow-origin header is set to "*".
//   - [StaticOrigin]: a fixed value, written to the allow-origin header
//     verbatim, without any matching against the request's origin.
//   - [PatternOrigin]: a regular expression; when it matches the request's
//     origin, that origin is reflected in the allow-origin header.
//   - [ReflectOrigin] and [DenyOrigin]: the boolean sentinels; the former
//     reflects every request origin, and the latter matches none.
//     [DenyOrigin] as the top-level policy disables CORS entirely.
//   - [Origins]: an ordered list of any of the above; a request origin is
//     allowed if any element allows it, and is then reflected.
//   - [SubdomainsOf]: arbitrary subdomains of a base domain.
//
// This interface is sealed; all implementations live in this package.
type Origin interface {
	isOrigin()
}

// An OriginFunc resolves the origin policy for a single request; it allows
// the policy to hinge on dynamic state, e.g. the result of a lookup.
// requestOrigin is the value of r's Origin header, or the empty string if
// r carries none.
//
// The middleware invoke fn at most once per request, impose no deadline of
// their own, and perform no recovery: bound fn's latency via r's [context],
// and note that a non-nil error fails the whole exchange.
// Returning a nil [Origin], [DenyOrigin], or StaticOrigin("") disables
// CORS for the exchange: the response goes out with no CORS headers at all.
//
// [context]: https://pkg.go.dev/net/http#Request.Context
type OriginFunc func(r *http.Request, requestOrigin string) (Origin, error)

type (
	wildcardOrigin  struct{}
	staticOrigin    string
	patternOrigin   struct{ re *regexp.Regexp }
	boolOrigin      bool
	listOrigin      []Origin
	subdomainOrigin string // base domain, byte-lowercase ASCII
)

func (wildcardOrigin) isOrigin()  {}
func (staticOrigin) isOrigin()    {}
func (patternOrigin) isOrigin()   {}
func (boolOrigin) isOrigin()      {}
func (listOrigin) isOrigin()      {}
func (subdomainOrigin) isOrigin() {}

var (
	// AnyOrigin allows all origins: the allow-origin header is set to the
	// wildcard "*". Responses carrying the wildcard do not vary by origin,
	// so no Vary element is added.
	AnyOrigin Origin = wildcardOrigin{}

	// ReflectOrigin allows all origins by echoing each request's Origin
	// header in the allow-origin header. Contrary to [AnyOrigin], the
	// resulting responses are origin-specific and marked as such via Vary.
	ReflectOrigin Origin = boolOrigin(true)

	// DenyOrigin allows no origin. As the top-level policy it disables
	// CORS: responses go out without any CORS headers. Inside an [Origins]
	// list it is merely a neutral element.
	DenyOrigin Origin = boolOrigin(false)
)

// StaticOrigin returns a policy that sets the allow-origin header to
// origin verbatim, regardless of the request's own Origin header.
// As a special case, StaticOrigin("*") is equivalent to [AnyOrigin],
// and StaticOrigin("") to [DenyOrigin].
func StaticOrigin(origin string) Origin {
	return staticOrigin(origin)
}

// PatternOrigin returns a policy that allows exactly the origins matched
// by re; allowed origins are reflected in the allow-origin header.
// Anchor your patterns: an unanchored pattern like example\.com also
// matches https://example.com.attacker.io.
func PatternOrigin(re *regexp.Regexp) Origin {
	return patternOrigin{re: re}
}

// Origins returns a policy that allows a request origin if any of its
// members does; members are tried in order. Members may mix all variants,
// including the boolean sentinels.
func Origins(members ...Origin) Origin {
	return listOrigin(members)
}

// SubdomainsOf returns a policy that allows the origins of all proper
// subdomains of base (e.g. for base "example.com": foo.example.com and
// bar.foo.example.com, on any scheme and port, but not example.com
// itself); allowed origins are reflected in the allow-origin header.
//
// base must be a domain name; it is normalized to its ASCII (Punycode)
// form. Because effective TLDs (also known as [public suffixes], e.g.
// "com" or "github.io") are typically registrable by anyone, including
// attackers, a base that is itself an effective TLD is rejected.
//
// [public suffixes]: https://publicsuffix.org/list/
func SubdomainsOf(base string) (Origin, error) {
	ascii, err := idna.Lookup.ToASCII(strings.TrimSuffix(base, "."))
	if err != nil || ascii == "" {
		return nil, fmt.Errorf("cors: invalid base domain %q", base)
	}
	// We ignore the second (boolean) result because
	// it's false for some listed eTLDs (e.g. github.io).
	etld, _ := publicsuffix.PublicSuffix(ascii)
	if etld == ascii {
		return nil, fmt.Errorf("cors: base domain %q is an effective TLD", base)
	}
	return subdomainOrigin(ascii), nil
}

func (s subdomainOrigin) match(origin string) bool {
	_, hostport, found := strings.Cut(origin, "://")
	if !found {
		return false
	}
	// A bracketed IPv6 host can never match a DNS base, so naively cutting
	// the port off at the first colon is good enough here.
	host, _, _ := strings.Cut(hostport, ":")
	host = strings.TrimSuffix(strings.ToLower(host), ".")
	return strings.HasSuffix(host, "."+string(s))
}

// isOriginAllowed reports whether policy allows origin. Lists are
// disjunctions over their members; exact values are compared
// case-sensitively, without normalization.
func isOriginAllowed(origin string, policy Origin) bool {
	switch policy := policy.(type) {
	case listOrigin:
		for _, member := range policy {
			if isOriginAllowed(origin, member) {
				return true
			}
		}
		return false
	case staticOrigin:
		return string(policy) == origin
	case patternOrigin:
		return policy.re.MatchString(origin)
	case subdomainOrigin:
		return policy.match(origin)
	case boolOrigin:
		return bool(policy)
	case wildcardOrigin:
		return true
	default:
		return false
	}
}

// enabledOrigin reports whether policy enables CORS processing at all;
// a disabled policy leaves responses entirely untouched.
func enabledOrigin(policy Origin) bool {
	switch policy := policy.(type) {
	case nil:
		return false
	case boolOrigin:
		return bool(policy)
	case staticOrigin:
		return policy != ""
	default:
		return true
	}
}

// cloneOrigin makes the compiled configuration independent from any
// []Origin backing array still in the caller's hands.
func cloneOrigin(policy Origin) Origin {
	if list, ok := policy.(listOrigin); ok {
		members := make(listOrigin, len(list))
		for i, member := range list {
			members[i] = cloneOrigin(member)
		}
		return members
	}
	return policy
}
