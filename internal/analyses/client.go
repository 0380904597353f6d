package analyses

import (
	"context"
	"net/http"
	"net/url"
	"strings"

	"fitgap-client/internal/gateway"
)

// Client wraps the analysis-session endpoints.
type Client struct {
	API gateway.Doer
}

func NewClient(api gateway.Doer) *Client {
	return &Client{API: api}
}

// Create asks the server to pair the given resources.
func (c *Client) Create(ctx context.Context, req CreateRequest) (CreateResult, error) {
	var out CreateResult
	err := c.API.Do(ctx, http.MethodPost, "/api/v1/analyze/session", gateway.Options{
		Body:     req,
		Auth:     gateway.AuthAccess,
		Fallback: msgCreateFailed,
	}, &out)
	return out, err
}

// Get fetches an analysis detail.
func (c *Client) Get(ctx context.Context, id string) (Session, error) {
	id = strings.TrimSpace(id)
	if id == "" {
		return Session{}, &gateway.Error{Kind: gateway.KindValidation, Message: msgGetFailed}
	}
	var out Session
	err := c.API.Do(ctx, http.MethodGet, "/api/v1/analyze/session/"+url.PathEscape(id), gateway.Options{
		Auth:     gateway.AuthAccess,
		Fallback: msgGetFailed,
		Route:    "/api/v1/analyze/session/{id}",
	}, &out)
	return out, err
}

// ByPosting returns the latest signal recorded for a posting.
func (c *Client) ByPosting(ctx context.Context, postingID string) (string, bool, error) {
	return c.latest(ctx, "/api/v1/analyze/session/by-posting/", postingID)
}

// ByResume returns the latest signal recorded for a résumé.
func (c *Client) ByResume(ctx context.Context, resumeID string) (string, bool, error) {
	return c.latest(ctx, "/api/v1/analyze/session/by-resume/", resumeID)
}

func (c *Client) latest(ctx context.Context, prefix, id string) (string, bool, error) {
	var out latestResponse
	err := c.API.Do(ctx, http.MethodGet, prefix+url.PathEscape(id), gateway.Options{
		Auth:  gateway.AuthAccess,
		Route: prefix + "{id}",
	}, &out)
	if err != nil {
		if gateway.IsKind(err, gateway.KindNotFound) {
			return "", false, nil
		}
		return "", false, err
	}
	if out.Analysis == nil || out.Analysis.Signal == "" {
		return "", false, nil
	}
	return out.Analysis.Signal, true, nil
}
