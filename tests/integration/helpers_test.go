package integration

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"math/rand"
	"net/http"
	"net/http/cookiejar"
	"os"
	"strconv"
	"strings"
	"testing"
	"time"
)

// serverPort returns the port the server under test listens on. Override with
// GATEPASS_PORT when the default is taken.
func serverPort() int {
	if v := os.Getenv("GATEPASS_PORT"); v != "" {
		if port, err := strconv.Atoi(v); err == nil {
			return port
		}
	}
	return 8080
}

func baseURL() string {
	return fmt.Sprintf("http://localhost:%d", serverPort())
}

// uniqueEmail generates a unique email address to avoid test collisions.
func uniqueEmail(prefix string) string {
	return fmt.Sprintf("%s-%d-%d@test.example.com", prefix, time.Now().UnixNano(), rand.Intn(100000))
}

// uniqueUserName generates a unique user name to avoid test collisions.
func uniqueUserName(prefix string) string {
	return fmt.Sprintf("%s-%d-%d", prefix, time.Now().UnixNano(), rand.Intn(100000))
}

// skipIfNotRunning performs a quick health check against the server.
// If it is unreachable, the test is skipped (not failed).
func skipIfNotRunning(t *testing.T) {
	t.Helper()
	client := &http.Client{Timeout: 2 * time.Second}
	resp, err := client.Get(baseURL() + "/health/live")
	if err != nil {
		t.Skipf("server on port %d not reachable (Docker not running?): %v", serverPort(), err)
	}
	resp.Body.Close()
}

// session is an HTTP client with a cookie jar, so the auth cookies set by
// signup/login ride along on subsequent requests the way a browser sends them.
type session struct {
	t      *testing.T
	client *http.Client
}

func newSession(t *testing.T) *session {
	t.Helper()
	jar, err := cookiejar.New(nil)
	if err != nil {
		t.Fatalf("creating cookie jar failed: %v", err)
	}
	return &session{
		t:      t,
		client: &http.Client{Timeout: 10 * time.Second, Jar: jar},
	}
}

func (s *session) get(path string) (int, map[string]interface{}) {
	return s.do(http.MethodGet, path, nil)
}

func (s *session) post(path string, body interface{}) (int, map[string]interface{}) {
	return s.do(http.MethodPost, path, body)
}

func (s *session) put(path string, body interface{}) (int, map[string]interface{}) {
	return s.do(http.MethodPut, path, body)
}

func (s *session) delete(path string) (int, map[string]interface{}) {
	return s.do(http.MethodDelete, path, nil)
}

func (s *session) do(method, path string, body interface{}) (int, map[string]interface{}) {
	s.t.Helper()

	var bodyReader io.Reader
	if body != nil {
		jsonBytes, err := json.Marshal(body)
		if err != nil {
			s.t.Fatalf("marshalling request body failed: %v", err)
		}
		bodyReader = bytes.NewReader(jsonBytes)
	}

	req, err := http.NewRequest(method, baseURL()+path, bodyReader)
	if err != nil {
		s.t.Fatalf("creating %s request for %s failed: %v", method, path, err)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := s.client.Do(req)
	if err != nil {
		s.t.Fatalf("%s %s failed: %v", method, path, err)
	}
	defer resp.Body.Close()
	return resp.StatusCode, decodeBody(s.t, resp.Body)
}

// signup registers a fresh user through the API and returns the email and
// password for later logins. The session keeps the auth cookies.
func (s *session) signup(prefix string) (email, password string) {
	s.t.Helper()

	email = uniqueEmail(prefix)
	password = "TestPass123!"
	status, data := s.post("/api/auth/signup", map[string]interface{}{
		"userName":  uniqueUserName(prefix),
		"firstName": "Integration",
		"lastName":  "Test",
		"email":     email,
		"password":  password,
		"age":       30,
	})
	requireStatus(s.t, status, 201)
	if extractField(data, "data.id") == nil {
		s.t.Fatal("expected data.id in signup response, got nil")
	}
	return email, password
}

// adminSession logs in with the admin credentials from the environment, or
// skips the test when none are configured. Event administration endpoints
// need an account holding the ADMIN role, which only seeding can create.
func adminSession(t *testing.T) *session {
	t.Helper()

	email := os.Getenv("GATEPASS_ADMIN_EMAIL")
	password := os.Getenv("GATEPASS_ADMIN_PASSWORD")
	if email == "" || password == "" {
		t.Skip("GATEPASS_ADMIN_EMAIL / GATEPASS_ADMIN_PASSWORD not set; run scripts/seed first")
	}

	s := newSession(t)
	status, _ := s.post("/api/auth/login", map[string]interface{}{
		"email":    email,
		"password": password,
	})
	requireStatus(t, status, 200)
	return s
}

// decodeBody reads the response body and attempts to decode it as JSON.
// If the body is empty or not JSON, it returns an empty map.
func decodeBody(t *testing.T, body io.Reader) map[string]interface{} {
	t.Helper()
	raw, err := io.ReadAll(body)
	if err != nil {
		t.Fatalf("reading response body failed: %v", err)
	}
	if len(raw) == 0 {
		return map[string]interface{}{}
	}
	var result map[string]interface{}
	if err := json.Unmarshal(raw, &result); err != nil {
		// Not JSON; return the raw string in a "raw" key for debugging.
		return map[string]interface{}{"raw": string(raw)}
	}
	return result
}

// requireStatus asserts that the HTTP status code matches the expected value.
func requireStatus(t *testing.T, got, want int) {
	t.Helper()
	if got != want {
		t.Fatalf("expected status %d, got %d", want, got)
	}
}

// extractField extracts a value from a nested map using a dot-separated path.
// For example, extractField(data, "data.user.id") navigates data["data"]["user"]["id"].
func extractField(data map[string]interface{}, path string) interface{} {
	parts := strings.Split(path, ".")
	var current interface{} = data
	for _, part := range parts {
		m, ok := current.(map[string]interface{})
		if !ok {
			return nil
		}
		current, ok = m[part]
		if !ok {
			return nil
		}
	}
	return current
}

// extractString is a convenience wrapper around extractField that returns a string.
func extractString(t *testing.T, data map[string]interface{}, path string) string {
	t.Helper()
	val := extractField(data, path)
	if val == nil {
		t.Fatalf("expected string at path %q, got nil", path)
	}
	s, ok := val.(string)
	if !ok {
		t.Fatalf("expected string at path %q, got %T: %v", path, val, val)
	}
	return s
}

// extractFloat is a convenience wrapper that returns a float64.
func extractFloat(t *testing.T, data map[string]interface{}, path string) float64 {
	t.Helper()
	val := extractField(data, path)
	if val == nil {
		t.Fatalf("expected number at path %q, got nil", path)
	}
	f, ok := val.(float64)
	if !ok {
		t.Fatalf("expected float64 at path %q, got %T: %v", path, val, val)
	}
	return f
}
