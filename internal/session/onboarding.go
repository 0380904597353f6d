package session

import (
	"context"
	"net/http"
	"strings"

	"fitgap-client/internal/gateway"
)

// JobseekerType is the career stage a jobseeker picks during onboarding.
type JobseekerType string

const (
	JobseekerNewGrad     JobseekerType = "NEW_GRAD"
	JobseekerExperienced JobseekerType = "EXPERIENCED"
	JobseekerFreelancer  JobseekerType = "FREELANCER"
)

// OnboardingForm is the role-specific profile collected once per account.
type OnboardingForm struct {
	Role          Role
	JobseekerType JobseekerType
	Nickname      string
	CompanyName   string
	BizRegNo      string
}

// FieldError is a client-side validation failure; nothing was sent.
type FieldError struct {
	Field   string
	Message string
}

func (e *FieldError) Error() string {
	return e.Message
}

// Validate checks the fields required by the chosen role.
func (f OnboardingForm) Validate() error {
	switch f.Role {
	case RoleJobseeker:
		switch f.JobseekerType {
		case JobseekerNewGrad, JobseekerExperienced, JobseekerFreelancer:
		default:
			return &FieldError{Field: "jobseekerType", Message: "구직자 유형을 선택해주세요."}
		}
		if strings.TrimSpace(f.Nickname) == "" {
			return &FieldError{Field: "nickname", Message: "닉네임을 입력해주세요."}
		}
	case RoleCompany:
		if strings.TrimSpace(f.CompanyName) == "" {
			return &FieldError{Field: "companyName", Message: "회사명을 입력해주세요."}
		}
		if strings.TrimSpace(f.BizRegNo) == "" {
			return &FieldError{Field: "bizRegNo", Message: "사업자등록번호를 입력해주세요."}
		}
	default:
		return &FieldError{Field: "role", Message: "역할을 선택해주세요."}
	}
	return nil
}

func (f OnboardingForm) payload() map[string]string {
	if f.Role == RoleCompany {
		return map[string]string{
			"role":        string(f.Role),
			"companyName": strings.TrimSpace(f.CompanyName),
			"bizRegNo":    strings.TrimSpace(f.BizRegNo),
		}
	}
	return map[string]string{
		"role":          string(f.Role),
		"jobseekerType": string(f.JobseekerType),
		"nickname":      strings.TrimSpace(f.Nickname),
	}
}

// CompleteOnboarding submits the form with the authToken as bearer. On failure
// the state stays pending_onboarding and the authToken is kept for a retry.
func (m *Manager) CompleteOnboarding(ctx context.Context, form OnboardingForm) (State, error) {
	if err := form.Validate(); err != nil {
		return m.State(), err
	}
	authToken, err := m.store.AuthToken(ctx)
	if err != nil {
		return m.State(), err
	}
	if authToken == "" {
		m.navigate(ctx, PathLogin)
		return m.State(), ErrNoAuthToken
	}
	m.setState(StatePendingOnboarding)

	var grant grantResponse
	err = m.api.Do(ctx, http.MethodPost, "/api/onboarding/complete", gateway.Options{
		Body:     form.payload(),
		Auth:     gateway.AuthBearer,
		Bearer:   authToken,
		Fallback: msgOnboardingFailed,
	}, &grant)
	if err != nil {
		return StatePendingOnboarding, err
	}
	if grant.AccessToken == "" {
		return StatePendingOnboarding, &gateway.Error{Kind: gateway.KindUnknown, Message: msgOnboardingFailed, Err: ErrMalformedGrant}
	}
	user := grant.summary()
	if user.Role == "" {
		user.Role = string(form.Role)
	}
	if user.Nickname == "" && form.Role == RoleJobseeker {
		user.Nickname = strings.TrimSpace(form.Nickname)
	}
	return m.establish(ctx, grantResponse{
		AccessToken: grant.AccessToken,
		UserID:      gateway.ID(user.ID),
		Role:        user.Role,
		Nickname:    user.Nickname,
	})
}
