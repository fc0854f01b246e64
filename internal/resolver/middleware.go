package resolver

import (
	"log/slog"
	"net/http"

	"baiki/pkg/platform/httputil"
	"baiki/pkg/requestcontext"
)

// DecisionObserver counts resolution outcomes.
type DecisionObserver interface {
	ObserveResolverDecision(decision string)
}

// Middleware applies Resolve to every request. Rewrites change r.URL.Path and
// put the slug in the request context; unknown hosts are sent to the platform
// root; malformed tenant labels get the not-found page.
func Middleware(res *Resolver, logger *slog.Logger, observer DecisionObserver) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			decision := res.Resolve(r.Host, r.URL.Path)
			if observer != nil {
				observer.ObserveResolverDecision(string(decision.Kind))
			}

			switch decision.Kind {
			case KindRewrite:
				r.URL.Path = decision.Path
				r.URL.RawPath = ""
				ctx := requestcontext.WithTenantSlug(r.Context(), decision.Slug)
				next.ServeHTTP(w, r.WithContext(ctx))
			case KindRedirect:
				// Relative "/" would resolve against the same unknown host and loop.
				target := res.HomeURL(r) + decision.Location[1:]
				logger.DebugContext(r.Context(), "redirecting unknown host",
					"host", r.Host,
					"location", target,
					"request_id", requestcontext.RequestID(r.Context()),
				)
				http.Redirect(w, r, target, http.StatusTemporaryRedirect)
			case KindNotFound:
				logger.InfoContext(r.Context(), "tenant host not found",
					"host", r.Host,
					"label", decision.Slug,
					"request_id", requestcontext.RequestID(r.Context()),
				)
				httputil.WriteNotFoundPage(w, res.HomeURL(r))
			default:
				next.ServeHTTP(w, r)
			}
		})
	}
}

// HomeURL is the absolute platform root URL, using the request's scheme.
func (r *Resolver) HomeURL(req *http.Request) string {
	scheme := "http"
	if req.TLS != nil || req.Header.Get("X-Forwarded-Proto") == "https" {
		scheme = "https"
	}
	return scheme + "://" + r.rootDomain + "/"
}
