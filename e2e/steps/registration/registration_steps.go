package registration

import (
	"context"
	"fmt"

	"github.com/cucumber/godog"
)

// TestContext interface defines the methods needed from the main test context
type TestContext interface {
	POST(path string, body any) error
	GET(path string) error
	Unique(value string) string
	UseTenantHost(slug string)
	GetResponseField(field string) (any, error)
	GetLastResponseStatus() int
	SetToken(token string)
	GetToken() string
	SetTenantSlug(slug string)
	GetTenantSlug() string
	SetUserID(id string)
	GetUserID() string
}

// RegisterSteps registers business sign-up and tenant workspace steps.
func RegisterSteps(ctx *godog.ScenarioContext, tc TestContext) {
	steps := &registrationSteps{tc: tc}

	ctx.Step(`^I register "([^"]*)" with email "([^"]*)" and business "([^"]*)"$`, steps.register)
	ctx.Step(`^I have registered "([^"]*)" with email "([^"]*)" and business "([^"]*)"$`, steps.haveRegistered)
	ctx.Step(`^I register again with email "([^"]*)" and business "([^"]*)"$`, steps.registerAgain)
	ctx.Step(`^the registered role should be "([^"]*)"$`, steps.roleShouldBe)

	ctx.Step(`^I open "([^"]*)" on my business subdomain$`, steps.openOnSubdomain)
	ctx.Step(`^I request my tenant context$`, steps.requestTenantContext)
	ctx.Step(`^I should be sent to my admin page$`, steps.sentToAdmin)
	ctx.Step(`^I request my profile$`, steps.requestProfile)
	ctx.Step(`^I sign out$`, steps.signOut)
}

type registrationSteps struct {
	tc    TestContext
	email string
}

func (s *registrationSteps) register(ctx context.Context, name, email, business string) error {
	s.email = s.tc.Unique(email)
	body := map[string]string{
		"name":         name,
		"email":        s.email,
		"password":     "correct-horse",
		"businessName": s.tc.Unique(business),
	}
	if err := s.tc.POST("/api/registration", body); err != nil {
		return err
	}
	if s.tc.GetLastResponseStatus() != 201 {
		return nil
	}
	return s.remember()
}

func (s *registrationSteps) haveRegistered(ctx context.Context, name, email, business string) error {
	if err := s.register(ctx, name, email, business); err != nil {
		return err
	}
	if got := s.tc.GetLastResponseStatus(); got != 201 {
		return fmt.Errorf("registration failed with status %d", got)
	}
	return nil
}

func (s *registrationSteps) registerAgain(ctx context.Context, email, business string) error {
	return s.tc.POST("/api/registration", map[string]string{
		"name":         "Second Attempt",
		"email":        s.tc.Unique(email),
		"password":     "correct-horse",
		"businessName": s.tc.Unique(business),
	})
}

func (s *registrationSteps) remember() error {
	token, err := s.tc.GetResponseField("token")
	if err != nil {
		return err
	}
	slug, err := s.tc.GetResponseField("tenant.slug")
	if err != nil {
		return err
	}
	userID, err := s.tc.GetResponseField("user.id")
	if err != nil {
		return err
	}
	s.tc.SetToken(fmt.Sprint(token))
	s.tc.SetTenantSlug(fmt.Sprint(slug))
	s.tc.SetUserID(fmt.Sprint(userID))
	return nil
}

func (s *registrationSteps) roleShouldBe(ctx context.Context, role string) error {
	got, err := s.tc.GetResponseField("user.role")
	if err != nil {
		return err
	}
	if got != role {
		return fmt.Errorf("expected role %q, got %v", role, got)
	}
	return nil
}

func (s *registrationSteps) openOnSubdomain(ctx context.Context, path string) error {
	s.tc.UseTenantHost(s.tc.GetTenantSlug())
	return s.tc.GET(path)
}

func (s *registrationSteps) requestTenantContext(ctx context.Context) error {
	return s.tc.GET("/api/tenantUsers/context?tenantSlug=" + s.tc.GetTenantSlug())
}

func (s *registrationSteps) sentToAdmin(ctx context.Context) error {
	got, err := s.tc.GetResponseField("redirectTo")
	if err != nil {
		return err
	}
	if want := "/" + s.tc.GetTenantSlug() + "/admin"; got != want {
		return fmt.Errorf("expected redirectTo %q, got %v", want, got)
	}
	return nil
}

func (s *registrationSteps) requestProfile(ctx context.Context) error {
	return s.tc.POST("/api/user/me", map[string]string{"id": s.tc.GetUserID(), "email": s.email})
}

func (s *registrationSteps) signOut(ctx context.Context) error {
	return s.tc.POST("/api/auth/signout", nil)
}
