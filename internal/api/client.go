package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/tidwall/gjson"
	"golang.org/x/oauth2"

	"github.com/ringcheck/ringcheck/internal/log"
)

// maxBodyBytes caps how much of a response body is read.
const maxBodyBytes = 4 << 20

// Response is a completed HTTP exchange with the API.
type Response struct {
	Status    int
	Body      []byte
	RequestID string
}

// OK reports whether Status is 2xx.
func (r *Response) OK() bool {
	return r.Status >= 200 && r.Status < 300
}

// Decode unmarshals the body into out. A nil out or empty body is a no-op.
// A body that does not decode is reported as *RemoteError.
func (r *Response) Decode(out any) error {
	if out == nil || len(bytes.TrimSpace(r.Body)) == 0 {
		return nil
	}
	if err := json.Unmarshal(r.Body, out); err != nil {
		return &RemoteError{Status: r.Status, Message: "malformed response", Err: err}
	}
	return nil
}

// Message extracts the server-supplied reason, or fallback.
func (r *Response) Message(fallback string) string {
	return ServerMessage(r.Body, fallback)
}

// Client talks JSON over HTTP to the API.
type Client struct {
	baseURL string
	http    *http.Client
	logger  *log.Logger
}

// NewClient creates a Client for baseURL. A zero timeout means no client-side timeout.
func NewClient(baseURL string, timeout time.Duration, logger *log.Logger) *Client {
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		http:    &http.Client{Timeout: timeout},
		logger:  logger,
	}
}

// BaseURL returns the API root the client targets.
func (c *Client) BaseURL() string {
	return c.baseURL
}

// Send performs one request. token may be nil for unauthenticated endpoints.
// A request that cannot complete is returned as *NetworkFailure; any HTTP
// status, including errors, is returned as a Response.
func (c *Client) Send(ctx context.Context, method, path string, query url.Values, body any, token *oauth2.Token) (*Response, error) {
	target := c.baseURL + path
	if len(query) > 0 {
		target += "?" + query.Encode()
	}

	var reader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return nil, fmt.Errorf("encode %s %s: %w", method, path, err)
		}
		reader = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, target, reader)
	if err != nil {
		return nil, fmt.Errorf("build %s %s: %w", method, path, err)
	}
	requestID := uuid.New().String()
	req.Header.Set("Accept", "application/json")
	req.Header.Set("X-Request-ID", requestID)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != nil {
		token.SetAuthHeader(req)
	}

	start := time.Now()
	resp, err := c.http.Do(req)
	if err != nil {
		c.logFailure(method, path, 0, requestID, start, err.Error())
		return nil, &NetworkFailure{Method: method, Path: path, Err: err}
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(io.LimitReader(resp.Body, maxBodyBytes))
	if err != nil {
		c.logFailure(method, path, resp.StatusCode, requestID, start, err.Error())
		return nil, &NetworkFailure{Method: method, Path: path, Err: err}
	}

	out := &Response{Status: resp.StatusCode, Body: data, RequestID: requestID}
	if !out.OK() {
		c.logFailure(method, path, resp.StatusCode, requestID, start, out.Message(http.StatusText(resp.StatusCode)))
	}
	return out, nil
}

func (c *Client) logFailure(method, path string, status int, requestID string, start time.Time, reason string) {
	_ = c.logger.Append(log.LogEvent{
		Event:      log.EventRequestFailed,
		Method:     method,
		Path:       path,
		Status:     status,
		RequestID:  requestID,
		DurationMs: time.Since(start).Milliseconds(),
		Error:      reason,
	})
}

// Login calls POST /user/login.
func (c *Client) Login(ctx context.Context, in LoginRequest) (*AuthResponse, error) {
	return c.authenticate(ctx, "/user/login", in, "Login failed")
}

// Signup calls POST /user/signup.
func (c *Client) Signup(ctx context.Context, in SignupRequest) (*AuthResponse, error) {
	return c.authenticate(ctx, "/user/signup", in, "Signup failed")
}

func (c *Client) authenticate(ctx context.Context, path string, body any, fallback string) (*AuthResponse, error) {
	resp, err := c.Send(ctx, http.MethodPost, path, nil, body, nil)
	if err != nil {
		return nil, err
	}
	if !resp.OK() {
		return nil, &AuthRejected{Status: resp.Status, Message: resp.Message(fallback)}
	}

	var out AuthResponse
	if err := resp.Decode(&out); err != nil {
		return nil, err
	}
	if out.AccessToken == "" || out.User.PhoneNumber == "" {
		return nil, &AuthRejected{Status: resp.Status, Message: fallback + ": incomplete response"}
	}
	return &out, nil
}

// ServerMessage pulls a human-readable reason out of an error body.
// It tries "error", "detail" and "message", then the first message of the
// first field in a {"field": ["msg"]} validation body.
func ServerMessage(body []byte, fallback string) string {
	if !gjson.ValidBytes(body) {
		return fallback
	}
	for _, path := range []string{"error", "detail", "message"} {
		if r := gjson.GetBytes(body, path); r.Type == gjson.String && r.Str != "" {
			return r.Str
		}
	}

	root := gjson.ParseBytes(body)
	if !root.IsObject() {
		return fallback
	}

	msg := ""
	root.ForEach(func(key, value gjson.Result) bool {
		first := value
		if value.IsArray() {
			first = value.Get("0")
		}
		if first.Type != gjson.String || first.Str == "" {
			return true
		}
		if key.Str == "non_field_errors" {
			msg = first.Str
		} else {
			msg = key.Str + ": " + first.Str
		}
		return false
	})
	if msg == "" {
		return fallback
	}
	return msg
}
