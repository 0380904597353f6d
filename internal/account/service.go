package account

import (
	"context"
	"errors"
	"net/http"

	"fitgap-client/internal/gateway"
	"fitgap-client/internal/session"
	"fitgap-client/internal/shared/telemetry"
	"fitgap-client/internal/view"
)

const (
	// ConfirmPrompt is shown before an account is deleted.
	ConfirmPrompt   = "정말로 회원 탈퇴하시겠습니까?"
	msgDeleteFailed = "회원 탈퇴 실패"
)

var ErrNotConfirmed = errors.New("account deletion not confirmed")

// Terminator ends the local session.
type Terminator interface {
	view.Guard
	Terminate(ctx context.Context, path string) error
}

// Service deletes the signed-in account and tears the local session down.
type Service struct {
	API     gateway.Doer
	Session Terminator

	Banner  view.Banner
	pending view.Pending
}

func NewService(api gateway.Doer, sess Terminator) *Service {
	return &Service{API: api, Session: sess}
}

// Delete removes the account on the server. Local tokens are cleared only
// after the server confirmed the deletion.
func (s *Service) Delete(ctx context.Context, confirmed bool) error {
	if !confirmed {
		return ErrNotConfirmed
	}
	return s.pending.Run(func() error {
		user, err := s.Session.RequireAuthenticated(ctx)
		if err != nil {
			return err
		}
		s.Banner.Clear()
		err = s.API.Do(ctx, http.MethodDelete, "/api/mypage", gateway.Options{
			Auth:     gateway.AuthAccess,
			Fallback: msgDeleteFailed,
		}, nil)
		if err != nil {
			s.Banner.Set(gateway.Message(err, msgDeleteFailed))
			return err
		}
		telemetry.Info("account.deleted", map[string]any{"user_id": user.ID})
		return s.Session.Terminate(ctx, session.PathHome)
	})
}

// Deleting reports whether a deletion is in flight.
func (s *Service) Deleting() bool {
	return s.pending.Busy()
}
