package resumes

import (
	"context"
	"net/http"
	"net/url"
	"strings"

	"fitgap-client/internal/gateway"
)

const (
	msgFetchFailed   = "이력서 조회 실패"
	msgSaveFailed    = "자기소개서 저장 실패"
	msgDeleteFailed  = "자기소개서 삭제 실패"
	msgEmptyText     = "자기소개서 내용을 입력해주세요."
	msgRoleForbidden = "구직자 계정만 이력서를 업로드할 수 있습니다."
	msgNoResume      = "이력서를 먼저 저장해 주세요."
	msgAnalyzeFailed = "분석 실패"
)

// Client wraps the résumé endpoints.
type Client struct {
	API gateway.Doer
}

func NewClient(api gateway.Doer) *Client {
	return &Client{API: api}
}

// Save creates or replaces the account résumé and returns its id.
func (c *Client) Save(ctx context.Context, rawText string) (string, error) {
	if strings.TrimSpace(rawText) == "" {
		return "", &gateway.Error{Kind: gateway.KindValidation, Message: msgEmptyText}
	}
	var out struct {
		ResumeID gateway.ID `json:"resume_id"`
	}
	err := c.API.Do(ctx, http.MethodPut, "/api/mypage/resume", gateway.Options{
		Body:     map[string]string{"raw_text": rawText},
		Auth:     gateway.AuthAccess,
		Fallback: msgSaveFailed,
	}, &out)
	if err != nil {
		return "", err
	}
	return out.ResumeID.String(), nil
}

// Delete removes a résumé by id.
func (c *Client) Delete(ctx context.Context, id string) error {
	return c.API.Do(ctx, http.MethodDelete, "/api/v1/resumes/"+url.PathEscape(id), gateway.Options{
		Auth:     gateway.AuthAccess,
		Fallback: msgDeleteFailed,
		Route:    "/api/v1/resumes/{id}",
	}, nil)
}
