package services

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/goccy/go-json"
	"github.com/hashicorp/go-retryablehttp"
	gobreaker "github.com/sony/gobreaker/v2"
	"github.com/tidwall/gjson"

	"github.com/watchnext/backend/internal/logging"
)

type SupabaseConfig struct {
	// URL is the project URL, e.g. https://abc.supabase.co
	URL             string
	ServiceKey      string
	RetryMax        int
	BreakerFailures uint32
	BreakerTimeout  time.Duration
}

// SupabaseError is a non-2xx answer from PostgREST. Message is passed
// through verbatim.
type SupabaseError struct {
	Status  int
	Code    string
	Message string
}

func (e *SupabaseError) Error() string {
	if e.Code != "" {
		return fmt.Sprintf("supabase: http %d (%s): %s", e.Status, e.Code, e.Message)
	}
	return fmt.Sprintf("supabase: http %d: %s", e.Status, e.Message)
}

// SupabaseClient talks to a project's PostgREST endpoint with retries and a
// circuit breaker in front.
type SupabaseClient struct {
	restURL string
	key     string
	http    *retryablehttp.Client
	breaker *gobreaker.CircuitBreaker[[]byte]
}

func NewSupabaseClient(cfg SupabaseConfig) (*SupabaseClient, error) {
	base := strings.TrimRight(strings.TrimSpace(cfg.URL), "/")
	if base == "" || strings.TrimSpace(cfg.ServiceKey) == "" {
		return nil, ErrBadInput
	}
	if _, err := url.Parse(base); err != nil {
		return nil, fmt.Errorf("supabase url: %w", err)
	}

	rc := retryablehttp.NewClient()
	rc.RetryMax = cfg.RetryMax
	rc.RetryWaitMin = 200 * time.Millisecond
	rc.RetryWaitMax = 2 * time.Second
	rc.HTTPClient.Timeout = 10 * time.Second
	rc.Logger = retryLogger{}
	// Hand the last response back after retries so PostgREST's message survives.
	rc.ErrorHandler = retryablehttp.PassthroughErrorHandler

	timeout := cfg.BreakerTimeout
	if timeout <= 0 {
		timeout = 30 * time.Second
	}

	return &SupabaseClient{
		restURL: base + "/rest/v1",
		key:     cfg.ServiceKey,
		http:    rc,
		breaker: newBreaker("supabase", cfg.BreakerFailures, timeout, clientSideError),
	}, nil
}

// clientSideError keeps 4xx answers from tripping the breaker.
func clientSideError(err error) bool {
	if err == nil {
		return true
	}
	var se *SupabaseError
	return errors.As(err, &se) && se.Status < http.StatusInternalServerError
}

// selectRows issues GET /table?query and returns the JSON array body.
func (c *SupabaseClient) selectRows(ctx context.Context, table string, query url.Values) (gjson.Result, error) {
	body, err := c.do(ctx, http.MethodGet, table, query, nil)
	if err != nil {
		return gjson.Result{}, err
	}
	return gjson.ParseBytes(body), nil
}

// patchRows issues PATCH /table?query and returns the updated rows.
func (c *SupabaseClient) patchRows(ctx context.Context, table string, query url.Values, values interface{}) (gjson.Result, error) {
	body, err := c.do(ctx, http.MethodPatch, table, query, values)
	if err != nil {
		return gjson.Result{}, err
	}
	return gjson.ParseBytes(body), nil
}

// insertRow issues POST /table and returns the inserted rows.
func (c *SupabaseClient) insertRow(ctx context.Context, table string, values interface{}) (gjson.Result, error) {
	body, err := c.do(ctx, http.MethodPost, table, nil, values)
	if err != nil {
		return gjson.Result{}, err
	}
	return gjson.ParseBytes(body), nil
}

func (c *SupabaseClient) do(ctx context.Context, method, table string, query url.Values, values interface{}) ([]byte, error) {
	endpoint := c.restURL + "/" + table
	if len(query) > 0 {
		endpoint += "?" + query.Encode()
	}

	var payload []byte
	if values != nil {
		var err error
		if payload, err = json.Marshal(values); err != nil {
			return nil, err
		}
	}

	body, err := c.breaker.Execute(func() ([]byte, error) {
		req, err := retryablehttp.NewRequestWithContext(ctx, method, endpoint, payload)
		if err != nil {
			return nil, err
		}
		req.Header.Set("apikey", c.key)
		req.Header.Set("Authorization", "Bearer "+c.key)
		req.Header.Set("Accept", "application/json")
		if payload != nil {
			req.Header.Set("Content-Type", "application/json")
			req.Header.Set("Prefer", "return=representation")
		}

		resp, err := c.http.Do(req)
		if err != nil {
			if resp != nil {
				resp.Body.Close()
			}
			return nil, err
		}
		defer resp.Body.Close()

		raw, err := io.ReadAll(resp.Body)
		if err != nil {
			return nil, err
		}
		if resp.StatusCode < 200 || resp.StatusCode >= 300 {
			parsed := gjson.ParseBytes(raw)
			msg := parsed.Get("message").String()
			if msg == "" {
				msg = strings.TrimSpace(string(raw))
			}
			return nil, &SupabaseError{Status: resp.StatusCode, Code: parsed.Get("code").String(), Message: msg}
		}
		return raw, nil
	})
	if err != nil {
		if breakerOpen(err) {
			return nil, fmt.Errorf("%w: %v", ErrBackendUnavailable, err)
		}
		return nil, err
	}
	return body, nil
}

// retryLogger sends retryablehttp's chatter to the debug log.
type retryLogger struct{}

func (retryLogger) Error(msg string, kv ...interface{}) { logging.Warn().Fields(kv).Msg(msg) }
func (retryLogger) Warn(msg string, kv ...interface{})  { logging.Warn().Fields(kv).Msg(msg) }
func (retryLogger) Info(msg string, kv ...interface{})  { logging.Debug().Fields(kv).Msg(msg) }
func (retryLogger) Debug(msg string, kv ...interface{}) { logging.Debug().Fields(kv).Msg(msg) }

func eq(v string) string {
	return "eq." + v
}
