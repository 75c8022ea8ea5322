// Package openalex provides a rate-limited client for the OpenAlex works API.
package openalex

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"time"

	"golang.org/x/time/rate"

	"github.com/nicomarr/pubsync/internal/ident"
)

const (
	// BaseURL is the OpenAlex API base URL.
	BaseURL = "https://api.openalex.org/"

	// DefaultTimeout is the default HTTP request timeout.
	DefaultTimeout = 30 * time.Second

	// RateLimit is 10 requests per second per OpenAlex documentation.
	RateLimit = 10.0

	// AppendFields are the fields requested when fetching full metadata for
	// new table rows.
	AppendFields = "id,title,doi,primary_location,authorships,publication_year," +
		"publication_date,ids,best_oa_location,cited_by_count,cited_by_api_url," +
		"type,type_crossref,updated_date"

	// RefreshFields are the fields requested for a citation-count refresh.
	RefreshFields = "id,ids,doi,title,cited_by_count,updated_date"

	// AuthorPageSize is the per-page size for cursor-paged author queries.
	AuthorPageSize = 200
)

// Client is a rate-limited HTTP client for the OpenAlex works API.
type Client struct {
	httpClient *http.Client
	limiter    *rate.Limiter
	baseURL    string
	mailto     string
}

// ClientOption configures a Client.
type ClientOption func(*Client)

// WithMailto sets the contact email sent with every request. OpenAlex
// routes requests carrying a mailto into its polite pool.
func WithMailto(email string) ClientOption {
	return func(c *Client) {
		c.mailto = email
	}
}

// WithHTTPClient sets a custom HTTP client.
func WithHTTPClient(hc *http.Client) ClientOption {
	return func(c *Client) {
		c.httpClient = hc
	}
}

// WithBaseURL sets a custom base URL (for testing).
func WithBaseURL(u string) ClientOption {
	return func(c *Client) {
		c.baseURL = u
	}
}

// NewClient creates a new OpenAlex works client.
func NewClient(opts ...ClientOption) *Client {
	c := &Client{
		httpClient: &http.Client{Timeout: DefaultTimeout},
		limiter:    rate.NewLimiter(rate.Limit(RateLimit), 1),
		baseURL:    BaseURL,
	}

	// Check for contact email in environment
	if email := os.Getenv("OPENALEX_EMAIL"); email != "" {
		c.mailto = email
	}

	for _, opt := range opts {
		opt(c)
	}

	return c
}

// endpointForID maps a raw identifier to a works endpoint path.
// DOIs are dispatched through the resolver-URL form, PubMed identifiers
// through their namespace prefixes.
func endpointForID(rawID string) (string, error) {
	id, kind := ident.Normalize(rawID)
	switch kind {
	case ident.DOI:
		return "works/https://doi.org/" + id, nil
	case ident.PMID:
		return "works/pmid:" + id, nil
	case ident.PMCID:
		return "works/pmcid:" + id, nil
	case ident.OAID:
		return "works/" + id, nil
	default:
		return "", fmt.Errorf("%w: %q", ErrInvalidID, rawID)
	}
}

// get performs one rate-limited GET and decodes the response into v.
func (c *Client) get(ctx context.Context, endpoint string, params url.Values, uid string, v interface{}) error {
	if err := c.limiter.Wait(ctx); err != nil {
		return fmt.Errorf("rate limiter: %w", err)
	}

	reqURL := c.baseURL + endpoint
	if len(params) > 0 {
		reqURL += "?" + params.Encode()
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrNetworkError, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return decodeAPIError(resp, uid)
	}

	if err := json.NewDecoder(resp.Body).Decode(v); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidResponse, err)
	}

	return nil
}

// decodeAPIError builds an APIError from a non-200 response. A malformed or
// non-JSON error body degrades to a generic message for that identifier
// rather than failing the batch.
func decodeAPIError(resp *http.Response, uid string) error {
	apiErr := &APIError{
		StatusCode: resp.StatusCode,
		Code:       "api_error",
		Message:    fmt.Sprintf("HTTP %d", resp.StatusCode),
		UID:        uid,
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, 64*1024))
	if err != nil {
		return apiErr
	}

	var parsed apiErrorBody
	if err := json.Unmarshal(body, &parsed); err != nil {
		return apiErr
	}
	if parsed.Error != "" {
		apiErr.Code = parsed.Error
	}
	if parsed.Message != "" {
		apiErr.Message = parsed.Message
	}

	return apiErr
}

// params returns the base query parameters for a request.
func (c *Client) params(fields string) url.Values {
	p := url.Values{}
	if c.mailto != "" {
		p.Set("mailto", c.mailto)
	}
	if fields != "" {
		p.Set("select", fields)
	}
	return p
}

// GetWork fetches a single work by identifier. The identifier may be a
// PMID, PMCID, DOI (bare or resolver URL), or OpenAlex ID (bare or URL).
func (c *Client) GetWork(ctx context.Context, rawID string, fields string) (*Work, error) {
	endpoint, err := endpointForID(rawID)
	if err != nil {
		return nil, err
	}

	var work Work
	if err := c.get(ctx, endpoint, c.params(fields), rawID, &work); err != nil {
		return nil, err
	}

	if work.ID == "" {
		return nil, ErrNotFound
	}

	return &work, nil
}

// Works fetches metadata for a batch of identifiers. Each failure is
// recorded against its identifier and the batch continues; failed
// identifiers are not retried.
func (c *Client) Works(ctx context.Context, rawIDs []string, fields string) ([]Work, []FailedCall) {
	var works []Work
	var failed []FailedCall

	for _, rawID := range rawIDs {
		work, err := c.GetWork(ctx, rawID, fields)
		if err != nil {
			failed = append(failed, failedCall(rawID, err))
			continue
		}
		works = append(works, *work)
	}

	return works, failed
}

// failedCall converts a fetch error into a FailedCall entry.
func failedCall(uid string, err error) FailedCall {
	var apiErr *APIError
	if errors.As(err, &apiErr) {
		return FailedCall{
			UID:        uid,
			StatusCode: apiErr.StatusCode,
			Reason:     fmt.Sprintf("%s: %s", apiErr.Code, apiErr.Message),
		}
	}
	return FailedCall{UID: uid, Reason: err.Error()}
}

// WorksByAuthor fetches all works by an author via cursor paging.
func (c *Client) WorksByAuthor(ctx context.Context, authorID string, fields string) ([]Work, error) {
	params := c.params(fields)
	params.Set("filter", "authorships.author.id:"+authorID)
	params.Set("per-page", fmt.Sprintf("%d", AuthorPageSize))

	var all []Work
	cursor := "*"

	for cursor != "" {
		params.Set("cursor", cursor)

		var page listResponse
		if err := c.get(ctx, "works", params, authorID, &page); err != nil {
			return nil, err
		}

		all = append(all, page.Results...)
		cursor = page.Meta.NextCursor
	}

	return all, nil
}
