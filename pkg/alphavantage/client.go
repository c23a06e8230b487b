package alphavantage

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"golang.org/x/time/rate"
)

const (
	DefaultBaseURL = "https://www.alphavantage.co/query"
	DefaultTimeout = 30 * time.Second
)

var tracer = otel.Tracer("github.com/nathanoyet/contra-ai/pkg/alphavantage")

type Client struct {
	apiKey     string
	baseURL    string
	httpClient *http.Client
	limiter    *rate.Limiter
}

type Option func(*Client)

func WithBaseURL(baseURL string) Option {
	return func(c *Client) {
		c.baseURL = baseURL
	}
}

func WithHTTPClient(httpClient *http.Client) Option {
	return func(c *Client) {
		c.httpClient = httpClient
	}
}

// WithRateLimit caps outgoing requests per minute. Zero disables the cap.
func WithRateLimit(perMinute int) Option {
	return func(c *Client) {
		if perMinute <= 0 {
			c.limiter = nil
			return
		}
		c.limiter = rate.NewLimiter(rate.Every(time.Minute/time.Duration(perMinute)), 1)
	}
}

func NewClient(apiKey string, opts ...Option) *Client {
	c := &Client{
		apiKey:     apiKey,
		baseURL:    DefaultBaseURL,
		httpClient: &http.Client{Timeout: DefaultTimeout},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Fetch queries a JSON function and returns the raw body once the provider
// failure markers have been ruled out.
func (c *Client) Fetch(ctx context.Context, function string, params url.Values) (json.RawMessage, error) {
	body, err := c.get(ctx, function, params)
	if err != nil {
		return nil, err
	}

	if perr := detectFailure(function, body); perr != nil {
		return nil, perr
	}

	return json.RawMessage(body), nil
}

func (c *Client) get(ctx context.Context, function string, params url.Values) ([]byte, error) {
	ctx, span := tracer.Start(ctx, "alphavantage."+function)
	defer span.End()

	if params == nil {
		params = url.Values{}
	}
	span.SetAttributes(attribute.String("alphavantage.symbol", params.Get("symbol")))

	if c.limiter != nil {
		if err := c.limiter.Wait(ctx); err != nil {
			return nil, &ProviderError{Kind: KindTransport, Function: function, Message: err.Error()}
		}
	}

	params.Set("function", function)
	params.Set("apikey", c.apiKey)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"?"+params.Encode(), nil)
	if err != nil {
		return nil, &ProviderError{Kind: KindTransport, Function: function, Message: err.Error()}
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		span.RecordError(err)
		return nil, &ProviderError{Kind: KindTransport, Function: function, Message: err.Error()}
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, &ProviderError{Kind: KindTransport, Function: function, Message: err.Error()}
	}

	if resp.StatusCode != http.StatusOK {
		return nil, &ProviderError{
			Kind:     KindTransport,
			Function: function,
			Message:  fmt.Sprintf("http %d", resp.StatusCode),
		}
	}

	return body, nil
}

// detectFailure maps the provider's in-band failure markers to a ProviderError.
// Information is only a failure when it is the sole key of the body.
func detectFailure(function string, body []byte) *ProviderError {
	var fields map[string]json.RawMessage
	if err := json.Unmarshal(body, &fields); err != nil {
		// arrays and CSV bodies carry no markers
		return nil
	}

	if msg := marker(fields, "Note"); msg != "" {
		return &ProviderError{Kind: KindRateLimit, Function: function, Message: msg}
	}
	if msg := marker(fields, "Error Message"); msg != "" {
		return &ProviderError{Kind: KindAPIError, Function: function, Message: msg}
	}
	if msg := marker(fields, "Information"); msg != "" && len(fields) == 1 {
		return &ProviderError{Kind: KindInformation, Function: function, Message: msg}
	}
	return nil
}

func marker(fields map[string]json.RawMessage, key string) string {
	raw, ok := fields[key]
	if !ok {
		return ""
	}
	var msg string
	if err := json.Unmarshal(raw, &msg); err != nil {
		return ""
	}
	return msg
}

func symbolParams(symbol string) url.Values {
	params := url.Values{}
	params.Set("symbol", symbol)
	return params
}

func decode[T any](function string, raw json.RawMessage) (*T, error) {
	var out T
	if err := json.Unmarshal(raw, &out); err != nil {
		return nil, &ProviderError{Kind: KindDecode, Function: function, Message: err.Error()}
	}
	return &out, nil
}
