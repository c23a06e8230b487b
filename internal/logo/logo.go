package logo

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	finnhub "github.com/Finnhub-Stock-API/finnhub-go/v2"
	"github.com/go-resty/resty/v2"
)

var ErrNotFound = errors.New("logo not found")

const (
	ClearbitTemplate = "https://logo.clearbit.com/{domain}"
	FaviconTemplate  = "https://www.google.com/s2/favicons?domain={domain}&sz=128"
)

type Image struct {
	Data        []byte
	ContentType string
	Source      string
}

// Profile is the part of a company profile the resolver uses.
type Profile struct {
	Domain  string
	LogoURL string
}

type ProfileSource interface {
	Profile(ctx context.Context, ticker string) (*Profile, error)
}

// FinnhubProfiles looks companies up through the company profile endpoint.
type FinnhubProfiles struct {
	client *finnhub.DefaultApiService
}

func NewFinnhubProfiles(apiKey string) *FinnhubProfiles {
	cfg := finnhub.NewConfiguration()
	cfg.AddDefaultHeader("X-Finnhub-Token", apiKey)
	return &FinnhubProfiles{client: finnhub.NewAPIClient(cfg).DefaultApi}
}

func (f *FinnhubProfiles) Profile(ctx context.Context, ticker string) (*Profile, error) {
	res, _, err := f.client.CompanyProfile2(ctx).Symbol(ticker).Execute()
	if err != nil {
		return nil, fmt.Errorf("finnhub profile %s: %w", ticker, err)
	}
	return &Profile{Domain: DomainOf(res.GetWeburl()), LogoURL: res.GetLogo()}, nil
}

// DomainOf reduces a website URL to its bare host.
func DomainOf(raw string) string {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return ""
	}
	if !strings.Contains(raw, "://") {
		raw = "https://" + raw
	}
	u, err := url.Parse(raw)
	if err != nil {
		return ""
	}
	return strings.TrimPrefix(strings.ToLower(u.Hostname()), "www.")
}

type Resolver struct {
	client    *resty.Client
	profiles  ProfileSource
	templates []string
}

type Option func(*Resolver)

// WithProfiles enables lookups for tickers outside the built-in table.
func WithProfiles(p ProfileSource) Option {
	return func(r *Resolver) {
		r.profiles = p
	}
}

// WithProviders replaces the logo provider URL templates; "{domain}" is
// substituted.
func WithProviders(templates ...string) Option {
	return func(r *Resolver) {
		r.templates = templates
	}
}

func NewResolver(opts ...Option) *Resolver {
	client := resty.New()
	client.SetTimeout(10 * time.Second)
	client.SetHeader("User-Agent", "contra-ai/1.0")

	r := &Resolver{
		client:    client,
		templates: []string{ClearbitTemplate, FaviconTemplate},
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Domain returns the company domain for ticker and, when the profile has
// one, a direct logo URL.
func (r *Resolver) Domain(ctx context.Context, ticker string) (string, string) {
	ticker = strings.ToUpper(strings.TrimSpace(ticker))
	if d, ok := knownDomains[ticker]; ok {
		return d, ""
	}
	if r.profiles == nil {
		return "", ""
	}
	p, err := r.profiles.Profile(ctx, ticker)
	if err != nil {
		slog.Warn("company profile lookup failed", "ticker", ticker, "error", err)
		return "", ""
	}
	return p.Domain, p.LogoURL
}

// Fetch returns the first logo image any source serves for ticker.
func (r *Resolver) Fetch(ctx context.Context, ticker string) (*Image, error) {
	domain, direct := r.Domain(ctx, ticker)

	var candidates []string
	if direct != "" {
		candidates = append(candidates, direct)
	}
	if domain != "" {
		for _, tpl := range r.templates {
			candidates = append(candidates, strings.ReplaceAll(tpl, "{domain}", url.QueryEscape(domain)))
		}
	}

	for _, u := range candidates {
		img, err := r.get(ctx, u)
		if err != nil {
			slog.Debug("logo source missed", "ticker", ticker, "url", u, "error", err)
			continue
		}
		return img, nil
	}
	return nil, ErrNotFound
}

func (r *Resolver) get(ctx context.Context, u string) (*Image, error) {
	resp, err := r.client.R().SetContext(ctx).Get(u)
	if err != nil {
		return nil, err
	}
	if resp.StatusCode() != http.StatusOK {
		return nil, fmt.Errorf("status %d", resp.StatusCode())
	}
	contentType := resp.Header().Get("Content-Type")
	if !strings.HasPrefix(contentType, "image/") || len(resp.Body()) == 0 {
		return nil, fmt.Errorf("not an image: %q", contentType)
	}
	return &Image{Data: resp.Body(), ContentType: contentType, Source: u}, nil
}
