package coros

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

	"github.com/2beens/corosched/internal/telemetry/tracing"

	log "github.com/sirupsen/logrus"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
	"go.opentelemetry.io/otel/attribute"
)

// Regional API base URLs.
const (
	BaseURLGlobal = "https://teamapi.coros.com"
	BaseURLEU     = "https://teameuapi.coros.com"
	BaseURLCN     = "https://teamapi.coros.com.cn"
)

// BaseURLForRegion maps a region name (global, eu, cn) to its API base URL.
// Unknown regions fall back to the global endpoint.
func BaseURLForRegion(region string) string {
	switch strings.ToLower(region) {
	case "eu":
		return BaseURLEU
	case "cn":
		return BaseURLCN
	default:
		return BaseURLGlobal
	}
}

// envelope is the wrapper every backend response arrives in.
// result != "0000" is an application-level error regardless of HTTP status.
type envelope struct {
	Result  string          `json:"result"`
	Message string          `json:"message"`
	APICode json.RawMessage `json:"apiCode"`
	Data    json.RawMessage `json:"data"`
}

// Client is the authenticated transport for the training backend. It injects
// the accessToken and userId headers, decodes the response envelope, and maps
// failures to the error taxonomy in errors.go. Session establishment is not
// handled here: token and user id come from the caller (config).
type Client struct {
	baseURL     string
	accessToken string
	userID      string
	httpClient  *http.Client
}

func NewClient(baseURL, accessToken, userID string, httpClient *http.Client) *Client {
	if httpClient == nil {
		httpClient = &http.Client{
			Timeout:   30 * time.Second,
			Transport: otelhttp.NewTransport(http.DefaultTransport),
		}
	}
	return &Client{
		baseURL:     strings.TrimSuffix(baseURL, "/"),
		accessToken: accessToken,
		userID:      userID,
		httpClient:  httpClient,
	}
}

// Get performs a GET request and unmarshals the envelope data field into out
// (out may be nil when the caller only cares about the result code).
func (c *Client) Get(ctx context.Context, endpoint string, params url.Values, out any) error {
	return c.do(ctx, http.MethodGet, endpoint, params, nil, out, false)
}

// Post performs a POST request with a JSON body for read-only endpoints
// (estimate, calculate, plan queries).
func (c *Client) Post(ctx context.Context, endpoint string, params url.Values, body, out any) error {
	return c.do(ctx, http.MethodPost, endpoint, params, body, out, false)
}

// PostMutating performs a POST request that changes remote state. Transport
// failures are wrapped in UnknownOutcomeError since a lost response cannot be
// distinguished from a lost request.
func (c *Client) PostMutating(ctx context.Context, endpoint string, params url.Values, body, out any) error {
	return c.do(ctx, http.MethodPost, endpoint, params, body, out, true)
}

func (c *Client) do(
	ctx context.Context,
	method, endpoint string,
	params url.Values,
	body, out any,
	mutating bool,
) (err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "coros.request")
	defer func() {
		tracing.EndSpanWithErrCheck(span, err)
	}()
	span.SetAttributes(
		attribute.String("coros.endpoint", endpoint),
		attribute.String("coros.method", method),
	)

	reqURL := fmt.Sprintf("%s/%s", c.baseURL, endpoint)
	if len(params) > 0 {
		reqURL += "?" + params.Encode()
	}

	var bodyReader io.Reader
	if body != nil {
		bodyBytes, mErr := json.Marshal(body)
		if mErr != nil {
			return fmt.Errorf("marshal request body for %s: %w", endpoint, mErr)
		}
		bodyReader = bytes.NewReader(bodyBytes)
	}

	req, err := http.NewRequestWithContext(ctx, method, reqURL, bodyReader)
	if err != nil {
		return fmt.Errorf("create request for %s: %w", endpoint, err)
	}

	req.Header.Set("Content-Type", "application/json")
	if c.accessToken != "" {
		req.Header.Set("accessToken", c.accessToken)
	}
	if c.userID != "" {
		userHeader, mErr := json.Marshal(map[string]string{"userId": c.userID})
		if mErr != nil {
			return fmt.Errorf("marshal user header: %w", mErr)
		}
		req.Header.Set("yfheader", string(userHeader))
	}

	log.Debugf("coros request: %s %s", method, reqURL)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		if mutating {
			return &UnknownOutcomeError{Endpoint: endpoint, Err: err}
		}
		return fmt.Errorf("%s %s: %w", method, endpoint, err)
	}
	defer resp.Body.Close()

	respBytes, err := io.ReadAll(resp.Body)
	if err != nil {
		if mutating {
			return &UnknownOutcomeError{Endpoint: endpoint, Err: err}
		}
		return fmt.Errorf("read response of %s: %w", endpoint, err)
	}

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("%s returned status %d: %s", endpoint, resp.StatusCode, respBytes)
	}

	var env envelope
	if err := json.Unmarshal(respBytes, &env); err != nil {
		return fmt.Errorf("unmarshal envelope of %s: %w", endpoint, err)
	}

	if env.Result != resultOK {
		return &APIError{
			Result:  env.Result,
			Message: env.Message,
			APICode: rawToString(env.APICode),
		}
	}

	if out == nil || len(env.Data) == 0 {
		return nil
	}
	if err := json.Unmarshal(env.Data, out); err != nil {
		return fmt.Errorf("unmarshal data of %s: %w", endpoint, err)
	}
	return nil
}

// rawToString renders the apiCode field, which the backend sends sometimes as a
// number and sometimes as a quoted string.
func rawToString(raw json.RawMessage) string {
	if len(raw) == 0 {
		return ""
	}
	return strings.Trim(string(raw), `"`)
}
