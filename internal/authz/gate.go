// Package authz decides whether a session may act inside a tenant and where a
// member lands after sign-in.
package authz

import (
	"context"
	"log/slog"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	authmodels "baiki/internal/auth/models"
	tenantmodels "baiki/internal/tenant/models"
	id "baiki/pkg/domain"
	dErrors "baiki/pkg/domain-errors"
	"baiki/pkg/requestcontext"
)

type SessionResolver interface {
	ResolveSession(ctx context.Context, token string) (*authmodels.Identity, error)
}

type MembershipResolver interface {
	Membership(ctx context.Context, userID id.UserID, tenantRef string) (*tenantmodels.Tenant, *tenantmodels.TenantUser, error)
	PrimaryMembership(ctx context.Context, userID id.UserID) (*tenantmodels.Tenant, *tenantmodels.TenantUser, error)
}

// Gate checks session, then tenant, then membership, in that order, so the
// error code tells the caller which check failed.
type Gate struct {
	sessions    SessionResolver
	memberships MembershipResolver
	logger      *slog.Logger
	tracer      trace.Tracer
}

type Option func(*Gate)

func WithLogger(logger *slog.Logger) Option {
	return func(g *Gate) {
		g.logger = logger
	}
}

func WithTracer(tracer trace.Tracer) Option {
	return func(g *Gate) {
		g.tracer = tracer
	}
}

func NewGate(sessions SessionResolver, memberships MembershipResolver, opts ...Option) *Gate {
	g := &Gate{sessions: sessions, memberships: memberships}
	for _, opt := range opts {
		opt(g)
	}
	if g.logger == nil {
		g.logger = slog.Default()
	}
	if g.tracer == nil {
		g.tracer = otel.Tracer("baiki/authz")
	}
	return g
}

// Authenticate resolves the session token to an identity.
func (g *Gate) Authenticate(ctx context.Context, token string) (*authmodels.Identity, error) {
	if token == "" {
		return nil, dErrors.New(dErrors.CodeUnauthorized, "authentication required")
	}
	return g.sessions.ResolveSession(ctx, token)
}

// Authorize resolves the token and checks membership in the tenant named by
// tenantRef (UUID or slug). Failures are UNAUTHORIZED, NOT_FOUND or FORBIDDEN.
func (g *Gate) Authorize(ctx context.Context, token, tenantRef string) (*tenantmodels.TenantUserContext, error) {
	ctx, span := g.tracer.Start(ctx, "authz.Authorize")
	defer span.End()

	identity, err := g.Authenticate(ctx, token)
	if err != nil {
		recordFailure(span, err)
		return nil, err
	}
	tuc, err := g.authorizeIdentity(ctx, identity, tenantRef)
	if err != nil {
		recordFailure(span, err)
		return nil, err
	}
	span.SetAttributes(attribute.String("tenant.id", tuc.Tenant.ID.String()), attribute.String("tenant.role", string(tuc.Role())))
	return tuc, nil
}

// AuthorizeIdentity is Authorize for an already resolved identity.
func (g *Gate) AuthorizeIdentity(ctx context.Context, identity *authmodels.Identity, tenantRef string) (*tenantmodels.TenantUserContext, error) {
	ctx, span := g.tracer.Start(ctx, "authz.AuthorizeIdentity")
	defer span.End()

	tuc, err := g.authorizeIdentity(ctx, identity, tenantRef)
	if err != nil {
		recordFailure(span, err)
	}
	return tuc, err
}

func (g *Gate) authorizeIdentity(ctx context.Context, identity *authmodels.Identity, tenantRef string) (*tenantmodels.TenantUserContext, error) {
	if identity == nil || identity.User == nil {
		return nil, dErrors.New(dErrors.CodeUnauthorized, "authentication required")
	}
	if tenantRef == "" {
		return nil, dErrors.New(dErrors.CodeBadRequest, "tenant is required")
	}

	tenant, membership, err := g.memberships.Membership(ctx, identity.User.ID, tenantRef)
	if err != nil {
		if dErrors.HasCode(err, dErrors.CodeForbidden) {
			g.logger.WarnContext(ctx, "tenant access denied",
				"user_id", identity.User.ID.String(),
				"tenant", tenantRef,
				"request_id", requestcontext.RequestID(ctx),
			)
		}
		return nil, err
	}
	return newContext(identity.User, tenant, membership), nil
}

// PrimaryContext returns the identity's preferred tenant membership.
func (g *Gate) PrimaryContext(ctx context.Context, identity *authmodels.Identity) (*tenantmodels.TenantUserContext, error) {
	if identity == nil || identity.User == nil {
		return nil, dErrors.New(dErrors.CodeUnauthorized, "authentication required")
	}
	tenant, membership, err := g.memberships.PrimaryMembership(ctx, identity.User.ID)
	if err != nil {
		return nil, err
	}
	return newContext(identity.User, tenant, membership), nil
}

func newContext(user *authmodels.User, tenant *tenantmodels.Tenant, membership *tenantmodels.TenantUser) *tenantmodels.TenantUserContext {
	return &tenantmodels.TenantUserContext{
		User: tenantmodels.ContextUser{
			ID:    user.ID,
			Email: user.Email,
			Name:  user.Name,
			Role:  membership.Role,
		},
		Tenant: tenant.Summary(),
	}
}

func recordFailure(span trace.Span, err error) {
	code := string(dErrors.CodeInternal)
	if de, ok := dErrors.As(err); ok {
		code = string(de.Code)
	}
	span.SetAttributes(attribute.String("authz.denied", code))
	span.SetStatus(codes.Error, code)
}
