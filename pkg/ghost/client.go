// Package ghost talks to the admin endpoint that provisions ghost users for
// the simulator.
package ghost

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"
	"go.uber.org/zap"
)

// CreatePath is the provisioning endpoint.
const CreatePath = "/api/admin/ghost/create"

// CreateRequest is the payload accepted by the endpoint.
type CreateRequest struct {
	Name        string   `json:"name"`
	Username    string   `json:"username"`
	Email       string   `json:"email"`
	Permissions []string `json:"permissions"`
}

// CreateResponse is the endpoint's reply.
type CreateResponse struct {
	Success         bool   `json:"success"`
	GhostID         string `json:"ghostId"`
	InitialPassword string `json:"initialPassword"`
	Error           string `json:"error,omitempty"`
}

// Config configures the client.
type Config struct {
	BaseURL    string
	Token      string
	Timeout    time.Duration
	RetryCount int
	Logger     *zap.Logger
}

// Client creates ghost users over HTTP.
type Client struct {
	http   *resty.Client
	logger *zap.Logger
}

// NewClient builds a resty backed client.
func NewClient(cfg Config) *Client {
	if cfg.Timeout <= 0 {
		cfg.Timeout = 10 * time.Second
	}
	if cfg.Logger == nil {
		cfg.Logger = zap.NewNop()
	}
	rc := resty.New().
		SetBaseURL(strings.TrimRight(cfg.BaseURL, "/")).
		SetTimeout(cfg.Timeout).
		SetRetryCount(cfg.RetryCount).
		SetRetryWaitTime(500*time.Millisecond).
		SetHeader("Content-Type", "application/json").
		SetHeader("Accept", "application/json")
	if cfg.Token != "" {
		rc.SetAuthToken(cfg.Token)
	}
	return &Client{http: rc, logger: cfg.Logger}
}

// Create provisions a ghost user. A reply with success=false is an error.
func (c *Client) Create(ctx context.Context, req CreateRequest) (CreateResponse, error) {
	if strings.TrimSpace(req.Username) == "" {
		return CreateResponse{}, errors.New("ghost: username is required")
	}
	var out CreateResponse
	resp, err := c.http.R().
		SetContext(ctx).
		SetBody(req).
		SetResult(&out).
		SetError(&out).
		Post(CreatePath)
	if err != nil {
		c.logger.Error("ghost create request failed", zap.String("username", req.Username), zap.Error(err))
		return CreateResponse{}, fmt.Errorf("ghost: create %s: %w", req.Username, err)
	}
	if resp.IsError() || !out.Success {
		msg := out.Error
		if msg == "" {
			msg = resp.Status()
		}
		c.logger.Warn("ghost create rejected",
			zap.String("username", req.Username),
			zap.Int("status_code", resp.StatusCode()),
			zap.String("error", msg),
		)
		return out, fmt.Errorf("ghost: create %s rejected: %s", req.Username, msg)
	}
	c.logger.Info("ghost user created", zap.String("ghost_id", out.GhostID))
	return out, nil
}
