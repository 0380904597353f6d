package postings

import (
	"context"
	"net/http"
	"strings"

	"fitgap-client/internal/gateway"
	"fitgap-client/internal/mypage"
)

const (
	msgFetchFailed   = "공고 조회 실패"
	msgCreateFailed  = "공고 등록 실패"
	msgEmptyText     = "공고 내용을 입력해주세요."
	msgRoleForbidden = "기업 계정만 공고를 작성할 수 있습니다."
)

// CreateRequest is the posting form.
type CreateRequest struct {
	CompanyName string `json:"company_name"`
	RawText     string `json:"raw_text"`
}

type createResponse struct {
	PostingID   gateway.ID `json:"posting_id"`
	CompanyName string     `json:"company_name"`
	CreatedAt   string     `json:"created_at"`
}

// Client wraps the posting endpoints.
type Client struct {
	API gateway.Doer
}

func NewClient(api gateway.Doer) *Client {
	return &Client{API: api}
}

// Create registers a posting and returns it as the list would show it.
func (c *Client) Create(ctx context.Context, req CreateRequest) (mypage.Posting, error) {
	req.CompanyName = strings.TrimSpace(req.CompanyName)
	if strings.TrimSpace(req.RawText) == "" {
		return mypage.Posting{}, &gateway.Error{Kind: gateway.KindValidation, Message: msgEmptyText}
	}
	var out createResponse
	err := c.API.Do(ctx, http.MethodPost, "/postings", gateway.Options{
		Body:     req,
		Auth:     gateway.AuthAccess,
		Fallback: msgCreateFailed,
	}, &out)
	if err != nil {
		return mypage.Posting{}, err
	}
	posting := mypage.Posting{ID: out.PostingID, CompanyName: out.CompanyName, CreatedAt: out.CreatedAt}
	if posting.CompanyName == "" {
		posting.CompanyName = req.CompanyName
	}
	return posting, nil
}
