/*
Package cors provides [net/http] middleware for
[Cross-Origin Resource Sharing (CORS)].

The middleware compute, per a declarative [Config], which CORS response
headers to set for each exchange, and answer [CORS-preflight requests]
(OPTIONS) with a minimal, bodyless response unless configured to hand
them on to the wrapped handler. The origin policy is deliberately
flexible: a wildcard, a fixed value, exact origins, regular-expression
patterns, subdomain patterns, ordered combinations of all of these, or
a per-request resolution function; see [Origin] and [OriginFunc].

This package performs no validation of its configuration: values flow
into response headers as given. It also never rejects a request of its
own accord; a disallowed origin simply results in a response that lacks
the Access-Control-Allow-Origin header, which browsers then refuse to
share with the requesting page.

Care is required for CORS middleware to work as intended.
Follow the rules listed below:

  - Because [CORS-preflight requests] use OPTIONS as their method,
    you should not prevent OPTIONS requests from reaching your CORS
    middleware; otherwise, preflight requests will not get properly
    handled and browser-based clients will likely experience
    CORS-related errors.
  - Because preflight requests are not authenticated, authentication
    should not take place "ahead of" a CORS middleware; however, a CORS
    middleware may wrap an authentication middleware.
  - Intermediaries may alter the value of the [Vary] header that is set
    by this package's middleware, but they must preserve all of its
    elements.
  - Multiple CORS middleware must not be stacked.

[CORS-preflight requests]: https://developer.mozilla.org/en-US/docs/Glossary/Preflight_request
[Cross-Origin Resource Sharing (CORS)]: https://developer.mozilla.org/en-US/docs/Web/HTTP/CORS
[Vary]: https://developer.mozilla.org/en-US/docs/Web/HTTP/Headers/Vary
*/
package cors
