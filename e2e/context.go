package e2e

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"
	"time"
)

// TestContext talks to a running server. Requests go to BaseURL with the Host
// header set, so tenant subdomains work without DNS.
type TestContext struct {
	BaseURL    string
	RootDomain string

	client *http.Client
	runID  string

	host       string
	headers    map[string]string
	lastStatus int
	lastBody   []byte
	lastHeader http.Header

	token      string
	tenantSlug string
	userID     string
}

func NewTestContext(baseURL, rootDomain string) *TestContext {
	return &TestContext{
		BaseURL:    strings.TrimRight(baseURL, "/"),
		RootDomain: rootDomain,
		client: &http.Client{
			Timeout: 10 * time.Second,
			CheckRedirect: func(*http.Request, []*http.Request) error {
				return http.ErrUseLastResponse
			},
		},
		runID: strconv.FormatInt(time.Now().UnixNano(), 36),
	}
}

// Reset clears per-scenario state.
func (tc *TestContext) Reset() {
	tc.host = tc.RootDomain
	tc.headers = map[string]string{}
	tc.lastStatus = 0
	tc.lastBody = nil
	tc.lastHeader = nil
	tc.token = ""
	tc.tenantSlug = ""
	tc.userID = ""
}

// Unique makes an email or business name distinct per test run so scenarios
// can be replayed against the same database.
func (tc *TestContext) Unique(value string) string {
	if local, domain, ok := strings.Cut(value, "@"); ok {
		return local + "+" + tc.runID + "@" + domain
	}
	return value + " " + tc.runID
}

func (tc *TestContext) UseHost(host string) { tc.host = host }
func (tc *TestContext) UseTenantHost(slug string) { tc.host = slug + "." + tc.RootDomain }
func (tc *TestContext) SetHeader(name, value string) { tc.headers[name] = value }
func (tc *TestContext) SetToken(token string) { tc.token = token }
func (tc *TestContext) SetTenantSlug(slug string) { tc.tenantSlug = slug }
func (tc *TestContext) SetUserID(id string) { tc.userID = id }
func (tc *TestContext) GetToken() string { return tc.token }
func (tc *TestContext) GetTenantSlug() string { return tc.tenantSlug }
func (tc *TestContext) GetUserID() string { return tc.userID }
func (tc *TestContext) GetLastResponseStatus() int { return tc.lastStatus }
func (tc *TestContext) GetLastResponseBody() []byte { return tc.lastBody }
func (tc *TestContext) GetLastHeader(k string) string { return tc.lastHeader.Get(k) }

func (tc *TestContext) POST(path string, body any) error {
	return tc.do(http.MethodPost, path, body)
}

func (tc *TestContext) GET(path string) error {
	return tc.do(http.MethodGet, path, nil)
}

func (tc *TestContext) do(method, path string, body any) error {
	var reader io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("encode body: %w", err)
		}
		reader = bytes.NewReader(raw)
	}
	req, err := http.NewRequest(method, tc.BaseURL+path, reader)
	if err != nil {
		return err
	}
	req.Host = tc.host
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if tc.token != "" {
		req.Header.Set("Authorization", "Bearer "+tc.token)
	}
	for k, v := range tc.headers {
		req.Header.Set(k, v)
	}

	resp, err := tc.client.Do(req)
	if err != nil {
		return fmt.Errorf("%s %s: %w", method, path, err)
	}
	defer resp.Body.Close()

	tc.lastStatus = resp.StatusCode
	tc.lastHeader = resp.Header
	tc.lastBody, err = io.ReadAll(resp.Body)
	return err
}

// GetResponseField reads a dotted path such as "tenant.slug" from the last
// JSON response.
func (tc *TestContext) GetResponseField(field string) (any, error) {
	var doc any
	if err := json.Unmarshal(tc.lastBody, &doc); err != nil {
		return nil, fmt.Errorf("response is not JSON: %w", err)
	}
	for _, key := range strings.Split(field, ".") {
		obj, ok := doc.(map[string]any)
		if !ok {
			return nil, fmt.Errorf("field %q: %q is not an object", field, key)
		}
		if doc, ok = obj[key]; !ok {
			return nil, fmt.Errorf("field %q not found in response", field)
		}
	}
	return doc, nil
}
