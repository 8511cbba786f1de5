package provider

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/jonwraymond/mediaquery/selection"
)

// DefaultHTTPTimeout is the client timeout used when none is configured.
const DefaultHTTPTimeout = 15 * time.Second

// maxErrorBody caps how much of a failed response body is kept in errors.
const maxErrorBody = 512

// HTTPConfig configures an HTTPProvider.
type HTTPConfig struct {
	ID       selection.ProviderID
	Kind     Kind
	Endpoint string

	// APIKey, when set, is sent in APIKeyHeader. With the default header
	// "Authorization" it is sent as a bearer token.
	APIKey       string
	APIKeyHeader string

	Timeout time.Duration

	// Client overrides the HTTP client. Timeout is ignored when set.
	Client *http.Client
}

// HTTPProvider queries a JSON search endpoint:
//
//	GET <endpoint>?query=<q>&page=<n>&per_page=<size>
//
// and expects {"results": [{"id": ..., "url": ...}]}.
type HTTPProvider struct {
	cfg      HTTPConfig
	endpoint *url.URL
	client   *http.Client
}

// NewHTTPProvider validates cfg and builds the provider.
func NewHTTPProvider(cfg HTTPConfig) (*HTTPProvider, error) {
	if cfg.ID == "" {
		return nil, ErrMissingID
	}
	if cfg.Endpoint == "" {
		return nil, fmt.Errorf("%w: %s", ErrMissingEndpoint, cfg.ID)
	}
	u, err := url.Parse(cfg.Endpoint)
	if err != nil {
		return nil, fmt.Errorf("provider %s: parse endpoint: %w", cfg.ID, err)
	}
	if cfg.Kind == "" {
		cfg.Kind = KindPhrase
	}
	if _, err := ParseKind(string(cfg.Kind)); err != nil {
		return nil, err
	}
	if cfg.APIKeyHeader == "" {
		cfg.APIKeyHeader = "Authorization"
	}

	client := cfg.Client
	if client == nil {
		timeout := cfg.Timeout
		if timeout <= 0 {
			timeout = DefaultHTTPTimeout
		}
		client = &http.Client{Timeout: timeout}
	}

	return &HTTPProvider{cfg: cfg, endpoint: u, client: client}, nil
}

func (p *HTTPProvider) ID() selection.ProviderID { return p.cfg.ID }
func (p *HTTPProvider) Kind() Kind               { return p.cfg.Kind }

// Search issues one GET and decodes the result page.
func (p *HTTPProvider) Search(ctx context.Context, req Request) (Response, error) {
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodGet, p.requestURL(req), nil)
	if err != nil {
		return Response{}, Wrap(p.cfg.ID, fmt.Errorf("create request: %w", err))
	}
	httpReq.Header.Set("Accept", "application/json")
	if p.cfg.APIKey != "" {
		if p.cfg.APIKeyHeader == "Authorization" {
			httpReq.Header.Set("Authorization", "Bearer "+p.cfg.APIKey)
		} else {
			httpReq.Header.Set(p.cfg.APIKeyHeader, p.cfg.APIKey)
		}
	}

	resp, err := p.client.Do(httpReq)
	if err != nil {
		return Response{}, Wrap(p.cfg.ID, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
		return Response{}, &Error{
			Provider:   p.cfg.ID,
			StatusCode: resp.StatusCode,
			Err:        fmt.Errorf("unexpected response: %s", bytes.TrimSpace(body)),
		}
	}

	var page searchPage
	if err := json.NewDecoder(resp.Body).Decode(&page); err != nil {
		return Response{}, Wrap(p.cfg.ID, fmt.Errorf("decode response: %w", err))
	}

	out := Response{Results: make([]selection.ResultItem, 0, len(page.Results))}
	for _, r := range page.Results {
		if r.URL == "" {
			continue
		}
		out.Results = append(out.Results, selection.ResultItem{
			ID:       string(r.ID),
			URL:      r.URL,
			Provider: p.cfg.ID,
		})
	}
	return out, nil
}

func (p *HTTPProvider) requestURL(req Request) string {
	u := *p.endpoint
	q := u.Query()
	q.Set("query", req.Query)
	if req.Page > 0 {
		q.Set("page", strconv.Itoa(req.Page))
	}
	if req.PageSize > 0 {
		q.Set("per_page", strconv.Itoa(req.PageSize))
	}
	u.RawQuery = q.Encode()
	return u.String()
}

type searchPage struct {
	Results []searchHit `json:"results"`
}

type searchHit struct {
	ID  flexID `json:"id"`
	URL string `json:"url"`
}

// flexID accepts both string and numeric JSON ids.
type flexID string

func (f *flexID) UnmarshalJSON(b []byte) error {
	if len(b) > 0 && b[0] == '"' {
		var s string
		if err := json.Unmarshal(b, &s); err != nil {
			return err
		}
		*f = flexID(s)
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(b, &n); err != nil {
		return err
	}
	*f = flexID(n.String())
	return nil
}

var _ Provider = (*HTTPProvider)(nil)
