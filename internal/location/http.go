package location

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"

	"dream_weaver/internal/models"
)

const DefaultLookupURL = "https://ipapi.co/json/"

// HTTPProvider resolves the caller's position through an IP geolocation endpoint that
// answers with a JSON body carrying latitude and longitude.
type HTTPProvider struct {
	httpClient *http.Client
	url        string
	userAgent  string
	logger     *zap.Logger
	inflight   singleflight.Group
}

type HTTPOption func(*HTTPProvider)

func WithHTTPClient(c *http.Client) HTTPOption {
	return func(p *HTTPProvider) {
		p.httpClient = c
	}
}

func WithUserAgent(ua string) HTTPOption {
	return func(p *HTTPProvider) {
		p.userAgent = ua
	}
}

func NewHTTPProvider(url string, logger *zap.Logger, opts ...HTTPOption) *HTTPProvider {
	if logger == nil {
		logger = zap.NewNop()
	}
	p := &HTTPProvider{
		httpClient: &http.Client{},
		url:        url,
		userAgent:  "dream_weaver/dev",
		logger:     logger,
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

type lookupResponse struct {
	Latitude  *float64 `json:"latitude"`
	Longitude *float64 `json:"longitude"`
}

// Locate performs a single lookup. Concurrent calls share the request that is already
// in flight; nothing is kept once it completes. The shared request runs detached from any
// one caller, so a caller that gives up only abandons its own wait.
func (p *HTTPProvider) Locate(ctx context.Context, req Request) (models.Location, error) {
	op := "location.HTTPProvider.Locate"

	if p == nil || p.url == "" {
		return models.Location{}, wrap(KindUnsupported, errors.New("no geolocation endpoint configured"))
	}

	timeout := req.Timeout
	if timeout <= 0 {
		timeout = DefaultRequest.Timeout
	}

	var cancel context.CancelFunc
	ctx, cancel = context.WithTimeout(ctx, timeout)
	defer cancel()

	ch := p.inflight.DoChan(p.url, func() (interface{}, error) {
		lookupCtx, lookupCancel := context.WithTimeout(context.WithoutCancel(ctx), timeout)
		defer lookupCancel()
		return p.lookup(lookupCtx)
	})

	select {
	case res := <-ch:
		if res.Err != nil {
			p.logger.Warn("location lookup failed", zap.String("op", op), zap.Error(res.Err), zap.Bool("shared", res.Shared))
			return models.Location{}, res.Err
		}
		loc := res.Val.(models.Location)
		p.logger.Debug("location resolved", zap.String("op", op),
			zap.Float64("latitude", loc.Latitude), zap.Float64("longitude", loc.Longitude))
		return loc, nil
	case <-ctx.Done():
		p.logger.Warn("location lookup abandoned", zap.String("op", op), zap.Error(ctx.Err()))
		if errors.Is(ctx.Err(), context.DeadlineExceeded) {
			return models.Location{}, wrap(KindTimeout, ctx.Err())
		}
		return models.Location{}, wrap(KindUnknown, ctx.Err())
	}
}

func (p *HTTPProvider) lookup(ctx context.Context) (models.Location, error) {
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodGet, p.url, nil)
	if err != nil {
		return models.Location{}, wrap(KindUnsupported, fmt.Errorf("create request: %w", err))
	}
	httpReq.Header.Set("User-Agent", p.userAgent)
	httpReq.Header.Set("Accept", "application/json")
	httpReq.Header.Set("Cache-Control", "no-cache")

	resp, err := p.httpClient.Do(httpReq)
	if err != nil {
		if isTimeout(err) {
			return models.Location{}, wrap(KindTimeout, err)
		}
		return models.Location{}, wrap(KindUnknown, fmt.Errorf("lookup request: %w", err))
	}
	defer func() { _ = resp.Body.Close() }()

	switch {
	case resp.StatusCode == http.StatusUnauthorized,
		resp.StatusCode == http.StatusForbidden,
		resp.StatusCode == http.StatusUnavailableForLegalReasons:
		return models.Location{}, wrap(KindPermissionDenied, fmt.Errorf("status %d", resp.StatusCode))
	case resp.StatusCode == http.StatusRequestTimeout || resp.StatusCode == http.StatusGatewayTimeout:
		return models.Location{}, wrap(KindTimeout, fmt.Errorf("status %d", resp.StatusCode))
	case resp.StatusCode != http.StatusOK:
		return models.Location{}, wrap(KindPositionUnavailable, fmt.Errorf("status %d", resp.StatusCode))
	}

	contentType := resp.Header.Get("Content-Type")
	if !strings.Contains(contentType, "application/json") {
		return models.Location{}, wrap(KindPositionUnavailable, fmt.Errorf("unexpected content-type: %s", contentType))
	}

	var body lookupResponse
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		if isTimeout(err) {
			return models.Location{}, wrap(KindTimeout, err)
		}
		return models.Location{}, wrap(KindPositionUnavailable, fmt.Errorf("decode response: %w", err))
	}
	if body.Latitude == nil || body.Longitude == nil {
		return models.Location{}, wrap(KindPositionUnavailable, errors.New("response has no coordinates"))
	}

	return models.Location{Latitude: *body.Latitude, Longitude: *body.Longitude}, nil
}
