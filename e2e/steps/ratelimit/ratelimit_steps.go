package ratelimit

import (
	"context"
	"fmt"

	"github.com/cucumber/godog"
)

// TestContext interface defines the methods needed from the main test context
type TestContext interface {
	POST(path string, body any) error
	SetHeader(name, value string)
	GetResponseField(field string) (any, error)
	GetLastResponseStatus() int
	GetLastHeader(name string) string
}

// RegisterSteps registers per-IP throttling steps for the credential routes.
func RegisterSteps(ctx *godog.ScenarioContext, tc TestContext) {
	steps := &ratelimitSteps{tc: tc}

	ctx.Step(`^I am signing in from IP "([^"]*)"$`, steps.signingInFromIP)
	ctx.Step(`^I fail to sign in as "([^"]*)" (\d+) times$`, steps.failSignInNTimes)
	ctx.Step(`^the (\d+)(?:st|nd|rd|th) attempt should return (\d+)$`, steps.nthAttemptShouldReturn)
	ctx.Step(`^the response should carry a retry hint$`, steps.responseShouldCarryRetryHint)
}

type ratelimitSteps struct {
	tc       TestContext
	statuses []int
}

func (s *ratelimitSteps) signingInFromIP(ctx context.Context, ip string) error {
	s.tc.SetHeader("X-Forwarded-For", ip)
	return nil
}

func (s *ratelimitSteps) failSignInNTimes(ctx context.Context, email string, times int) error {
	s.statuses = s.statuses[:0]
	for range times {
		err := s.tc.POST("/api/auth/signin", map[string]string{
			"email":    email,
			"password": "definitely-wrong",
		})
		if err != nil {
			return err
		}
		s.statuses = append(s.statuses, s.tc.GetLastResponseStatus())
	}
	return nil
}

func (s *ratelimitSteps) nthAttemptShouldReturn(ctx context.Context, n, expectedStatus int) error {
	if n < 1 || n > len(s.statuses) {
		return fmt.Errorf("only %d attempts were made", len(s.statuses))
	}
	if got := s.statuses[n-1]; got != expectedStatus {
		return fmt.Errorf("attempt %d: expected status %d, got %d", n, expectedStatus, got)
	}
	return nil
}

func (s *ratelimitSteps) responseShouldCarryRetryHint(ctx context.Context) error {
	if s.tc.GetLastHeader("Retry-After") == "" {
		return fmt.Errorf("missing Retry-After header")
	}
	code, err := s.tc.GetResponseField("error.code")
	if err != nil {
		return err
	}
	if code != "RATE_LIMIT_EXCEEDED" {
		return fmt.Errorf("expected code RATE_LIMIT_EXCEEDED, got %v", code)
	}
	return nil
}
