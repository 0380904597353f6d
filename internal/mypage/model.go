package mypage

import "fitgap-client/internal/gateway"

// User is the account as the server reports it.
type User struct {
	ID       gateway.ID `json:"id"`
	Email    string     `json:"email,omitempty"`
	Nickname string     `json:"nickname,omitempty"`
	Role     string     `json:"role,omitempty"`
	Status   string     `json:"status,omitempty"`
}

// Resume is the single résumé a jobseeker may own.
type Resume struct {
	ID        gateway.ID `json:"id"`
	RawText   string     `json:"raw_text,omitempty"`
	CreatedAt string     `json:"created_at,omitempty"`
}

// Posting is one of up to three postings a company may own.
type Posting struct {
	ID          gateway.ID `json:"id"`
	CompanyName string     `json:"company_name,omitempty"`
	CreatedAt   string     `json:"created_at,omitempty"`
}

// Summary is the account page payload with nested résumés and postings.
type Summary struct {
	User     User           `json:"user"`
	Profile  map[string]any `json:"profile"`
	Resumes  []Resume       `json:"resumes"`
	Postings []Posting      `json:"postings"`
}

func ResumeID(r Resume) string   { return r.ID.String() }
func PostingID(p Posting) string { return p.ID.String() }

const (
	MsgFetchFailed    = "마이페이지 조회 실패"
	msgNicknameFailed = "닉네임 수정 실패"
	msgNicknameEmpty  = "닉네임을 입력해주세요."
)
