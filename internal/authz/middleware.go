package authz

import (
	"context"
	"net/http"
	"slices"

	authmodels "baiki/internal/auth/models"
	tenantmodels "baiki/internal/tenant/models"
	dErrors "baiki/pkg/domain-errors"
	"baiki/pkg/platform/httputil"
	"baiki/pkg/platform/middleware/auth"
	"baiki/pkg/requestcontext"
)

type contextKey string

const (
	identityKey   contextKey = "authz.identity"
	tenantUserKey contextKey = "authz.tenant_user"
)

// IdentityFromContext returns the identity stored by RequireSession.
func IdentityFromContext(ctx context.Context) (*authmodels.Identity, bool) {
	identity, ok := ctx.Value(identityKey).(*authmodels.Identity)
	return identity, ok && identity != nil
}

func WithIdentity(ctx context.Context, identity *authmodels.Identity) context.Context {
	ctx = context.WithValue(ctx, identityKey, identity)
	if identity != nil && identity.User != nil {
		ctx = requestcontext.WithUserID(ctx, identity.User.ID)
	}
	if identity != nil && identity.Session != nil {
		ctx = requestcontext.WithSessionID(ctx, identity.Session.ID)
	}
	return ctx
}

// TenantUserFromContext returns the membership stored by RequireTenantMember.
func TenantUserFromContext(ctx context.Context) (*tenantmodels.TenantUserContext, bool) {
	tuc, ok := ctx.Value(tenantUserKey).(*tenantmodels.TenantUserContext)
	return tuc, ok && tuc != nil
}

func WithTenantUser(ctx context.Context, tuc *tenantmodels.TenantUserContext) context.Context {
	return context.WithValue(ctx, tenantUserKey, tuc)
}

// RequireSession rejects requests without a live session and stores the identity.
func (g *Gate) RequireSession(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		identity, err := g.Authenticate(r.Context(), auth.TokenFromRequest(r))
		if err != nil {
			httputil.WriteError(w, err)
			return
		}
		next.ServeHTTP(w, r.WithContext(WithIdentity(r.Context(), identity)))
	})
}

// RequireTenantMember checks membership in the tenant named by tenantRef(r).
// It resolves the session itself when RequireSession has not run.
func (g *Gate) RequireTenantMember(tenantRef func(*http.Request) string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx := r.Context()
			identity, ok := IdentityFromContext(ctx)
			if !ok {
				var err error
				identity, err = g.Authenticate(ctx, auth.TokenFromRequest(r))
				if err != nil {
					httputil.WriteError(w, err)
					return
				}
				ctx = WithIdentity(ctx, identity)
			}

			tuc, err := g.AuthorizeIdentity(ctx, identity, tenantRef(r))
			if err != nil {
				httputil.WriteError(w, err)
				return
			}
			next.ServeHTTP(w, r.WithContext(WithTenantUser(ctx, tuc)))
		})
	}
}

// RequireRole admits members holding one of roles. It must run after RequireTenantMember.
func RequireRole(roles ...tenantmodels.Role) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			tuc, ok := TenantUserFromContext(r.Context())
			if !ok {
				httputil.WriteError(w, dErrors.New(dErrors.CodeUnauthorized, "authentication required"))
				return
			}
			if !slices.Contains(roles, tuc.Role()) {
				httputil.WriteError(w, dErrors.New(dErrors.CodeForbidden, "insufficient role for this action"))
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
