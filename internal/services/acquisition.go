package services

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"

	"golang.org/x/oauth2"
	"golang.org/x/time/rate"

	"github.com/postify/postify/internal/shared"
)

// Acquirer is the contract the task engine depends on.
type Acquirer interface {
	Fetch(ctx context.Context, req AcquisitionRequest) (*AcquisitionResult, error)
}

// AcquisitionRequest asks the backend to resolve a video URL into a stream.
type AcquisitionRequest struct {
	URL   string `json:"url"`
	Title string `json:"title,omitempty"`
}

// AcquisitionResult is the successful backend response. DirectLink becomes
// the stream locator of the created track.
type AcquisitionResult struct {
	Success    bool   `json:"success"`
	DirectLink string `json:"directLink"`
	Title      string `json:"title"`
	Message    string `json:"message,omitempty"`
}

// AcquisitionService POSTs acquisition requests to the backend's /download
// endpoint, throttled by a client-side rate limiter.
type AcquisitionService struct {
	baseURL    string
	httpClient *http.Client
	limiter    *rate.Limiter
}

// AcquisitionOpts configures a new [AcquisitionService].
type AcquisitionOpts struct {
	BaseURL   string
	APIToken  string       // optional bearer token for private backends
	RateLimit float64      // requests per second, default 2
	Client    *http.Client // overrides the token-derived client when set
}

// NewAcquisitionService creates a client for the acquisition backend.
func NewAcquisitionService(opts AcquisitionOpts) *AcquisitionService {
	if opts.BaseURL == "" {
		opts.BaseURL = "http://localhost:8080"
	}
	if !strings.Contains(opts.BaseURL, "://") {
		opts.BaseURL = "https://" + opts.BaseURL
	}
	if opts.RateLimit <= 0 {
		opts.RateLimit = 2.0
	}

	client := opts.Client
	if client == nil {
		if opts.APIToken != "" {
			src := oauth2.StaticTokenSource(&oauth2.Token{AccessToken: opts.APIToken})
			client = oauth2.NewClient(context.Background(), src)
		} else {
			client = http.DefaultClient
		}
	}

	return &AcquisitionService{
		baseURL:    strings.TrimRight(opts.BaseURL, "/"),
		httpClient: client,
		limiter:    rate.NewLimiter(rate.Limit(opts.RateLimit), 1),
	}
}

// Fetch resolves a video URL into a direct stream link.
//
// Any transport error, non-2xx status or success=false body is surfaced as
// [shared.ErrRemote]; the caller creates no track in that case.
func (a *AcquisitionService) Fetch(ctx context.Context, req AcquisitionRequest) (*AcquisitionResult, error) {
	if strings.TrimSpace(req.URL) == "" {
		return nil, fmt.Errorf("%w: empty source URL", shared.ErrInvalidInput)
	}

	if err := a.limiter.Wait(ctx); err != nil {
		return nil, fmt.Errorf("%w: %v", shared.ErrRemote, err)
	}

	body, err := json.Marshal(req)
	if err != nil {
		return nil, fmt.Errorf("%w: failed to encode request: %v", shared.ErrRemote, err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, a.baseURL+"/download", bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("%w: failed to create request: %v", shared.ErrRemote, err)
	}
	httpReq.Header.Set("Content-Type", "application/json")

	resp, err := a.httpClient.Do(httpReq)
	if err != nil {
		return nil, fmt.Errorf("%w: request failed: %v", shared.ErrRemote, err)
	}
	defer resp.Body.Close()

	payload, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("%w: failed to read response: %v", shared.ErrRemote, err)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, fmt.Errorf("%w: backend returned status %d", shared.ErrRemote, resp.StatusCode)
	}

	var result AcquisitionResult
	if err := json.Unmarshal(payload, &result); err != nil {
		return nil, fmt.Errorf("%w: malformed response: %v", shared.ErrRemote, err)
	}
	if !result.Success || result.DirectLink == "" {
		if result.Message == "" {
			result.Message = "backend reported failure"
		}
		return nil, fmt.Errorf("%w: %s", shared.ErrRemote, result.Message)
	}

	return &result, nil
}
