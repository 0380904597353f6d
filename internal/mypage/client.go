package mypage

import (
	"context"
	"net/http"
	"strings"

	"fitgap-client/internal/gateway"
)

// Client wraps the account summary endpoints.
type Client struct {
	API gateway.Doer
}

func NewClient(api gateway.Doer) *Client {
	return &Client{API: api}
}

// Fetch loads the account summary. fallback is the caller page's message.
func (c *Client) Fetch(ctx context.Context, fallback string) (Summary, error) {
	if fallback == "" {
		fallback = MsgFetchFailed
	}
	var out Summary
	err := c.API.Do(ctx, http.MethodGet, "/api/mypage", gateway.Options{
		Auth:     gateway.AuthAccess,
		Fallback: fallback,
	}, &out)
	return out, err
}

// UpdateNickname returns the nickname the server stored.
func (c *Client) UpdateNickname(ctx context.Context, nickname string) (string, error) {
	nickname = strings.TrimSpace(nickname)
	if nickname == "" {
		return "", &gateway.Error{Kind: gateway.KindValidation, Message: msgNicknameEmpty}
	}
	var out struct {
		Nickname string `json:"nickname"`
	}
	err := c.API.Do(ctx, http.MethodPatch, "/api/mypage/nickname", gateway.Options{
		Body:     map[string]string{"nickname": nickname},
		Auth:     gateway.AuthAccess,
		Fallback: msgNicknameFailed,
	}, &out)
	if err != nil {
		return "", err
	}
	if out.Nickname == "" {
		out.Nickname = nickname
	}
	return out.Nickname, nil
}
