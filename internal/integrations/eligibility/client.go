// Package eligibility calls the managed remote function that computes the
// service-eligibility partition for a business. The endpoint is prone to
// intermittent 500s, so every outcome is reported as a typed result the
// resolver dispatches on; callers never inspect error text.
package eligibility

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"go.uber.org/zap"

	"github.com/nextserve/booking-core-api/internal/models"
	"github.com/nextserve/booking-core-api/pkg/config"
)

// FailureKind classifies why the primary path did not produce a usable set.
type FailureKind string

const (
	FailureTimeout      FailureKind = "timeout"
	FailureTransport    FailureKind = "transport"
	FailureBadStatus    FailureKind = "bad_status"
	FailureEmptyBody    FailureKind = "empty_body"
	FailureUnparseable  FailureKind = "unparseable"
	FailureUnconfigured FailureKind = "unconfigured"
)

// Result is the typed outcome of one primary-path call. Exactly one of Set or
// Failure is meaningful, discriminated by OK.
type Result struct {
	OK      bool
	Set     models.EligibleServiceSet
	Failure FailureKind
	Err     error
}

func failure(kind FailureKind, err error) Result {
	return Result{Failure: kind, Err: err}
}

// remotePayload mirrors the wire format of the eligibility function.
type remotePayload struct {
	EligibleServices []remoteService          `json:"eligible_services"`
	EligibleAddons   []remoteAddon            `json:"eligible_addons"`
	ServiceAddonMap  map[string][]remoteAddon `json:"service_addon_map"`
}

type remoteService struct {
	ID           string  `json:"id"`
	Name         string  `json:"name"`
	Category     string  `json:"category"`
	Price        float64 `json:"price"`
	Configured   bool    `json:"configured"`
	DeliveryType string  `json:"delivery_type"`
}

type remoteAddon struct {
	ID    string  `json:"id"`
	Name  string  `json:"name"`
	Price float64 `json:"price"`
}

// Client is the bearer-authenticated HTTP client for the eligibility function.
type Client struct {
	httpClient *http.Client
	baseURL    string
	token      string
	logger     *zap.Logger
}

// NewClient constructs the client. The configured timeout bounds the whole
// primary-path call; there is no retry.
func NewClient(cfg config.EligibilityConfig, logger *zap.Logger) *Client {
	if logger == nil {
		logger = zap.NewNop()
	}
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 5 * time.Second
	}
	return &Client{
		httpClient: &http.Client{Timeout: timeout},
		baseURL:    cfg.BaseURL,
		token:      cfg.Token,
		logger:     logger,
	}
}

// Fetch calls the remote computation for a business. It never returns a Go
// error: every failure mode maps to a Result the resolver can dispatch on.
func (c *Client) Fetch(ctx context.Context, businessID string) Result {
	if c.baseURL == "" {
		return failure(FailureUnconfigured, errors.New("eligibility endpoint not configured"))
	}

	endpoint := fmt.Sprintf("%s/eligible-services?business_id=%s", c.baseURL, url.QueryEscape(businessID))
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return failure(FailureTransport, err)
	}
	req.Header.Set("Authorization", "Bearer "+c.token)
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		kind := FailureTransport
		if errors.Is(err, context.DeadlineExceeded) || isTimeout(err) {
			kind = FailureTimeout
		}
		c.logger.Warn("eligibility.fetch_failed",
			zap.String("business_id", businessID),
			zap.String("kind", string(kind)),
			zap.Error(err))
		return failure(kind, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		c.logger.Warn("eligibility.fetch_bad_status",
			zap.String("business_id", businessID),
			zap.Int("status", resp.StatusCode))
		return failure(FailureBadStatus, fmt.Errorf("unexpected status code: %d", resp.StatusCode))
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return failure(FailureTransport, err)
	}
	if len(body) == 0 {
		return failure(FailureEmptyBody, errors.New("empty response body"))
	}

	var payload remotePayload
	if err := json.Unmarshal(body, &payload); err != nil {
		c.logger.Warn("eligibility.decode_failed",
			zap.String("business_id", businessID),
			zap.Error(err))
		return failure(FailureUnparseable, err)
	}

	return Result{OK: true, Set: payload.toSet()}
}

func (p remotePayload) toSet() models.EligibleServiceSet {
	set := models.EmptyEligibleServiceSet()
	for _, svc := range p.EligibleServices {
		entry := models.EligibleService{
			ID:           svc.ID,
			Name:         svc.Name,
			Category:     svc.Category,
			Price:        svc.Price,
			Configured:   svc.Configured,
			DeliveryType: svc.DeliveryType,
		}
		if svc.Configured {
			set.Configured = append(set.Configured, entry)
		} else {
			set.Available = append(set.Available, entry)
		}
	}
	for _, addon := range p.EligibleAddons {
		set.Addons = append(set.Addons, models.EligibleAddon(addon))
	}
	for key, addons := range p.ServiceAddonMap {
		mapped := make([]models.EligibleAddon, 0, len(addons))
		for _, addon := range addons {
			mapped = append(mapped, models.EligibleAddon(addon))
		}
		set.ServiceAddonMap[key] = mapped
	}
	return set
}

func isTimeout(err error) bool {
	var netErr interface{ Timeout() bool }
	return errors.As(err, &netErr) && netErr.Timeout()
}
