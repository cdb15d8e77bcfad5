package service

import (
	"context"
	"time"

	"github.com/yndnr/keyforge-go/internal/telemetry/metric"
	"github.com/yndnr/keyforge-go/pkg/invitecode"
)

// Invite operation labels.
const (
	inviteGenerate = "generate"
	inviteParse    = "parse"
	inviteCheck    = "check"
)

// InviteService converts between user ids and invite codes.
type InviteService struct {
	opts *options
}

// NewInviteService creates an InviteService.
func NewInviteService(opts ...Option) *InviteService {
	return &InviteService{opts: buildOptions(opts)}
}

// Generate returns the invite code for userID.
func (s *InviteService) Generate(ctx context.Context, userID uint64) (string, error) {
	defer s.opts.observe(opInviteGenerate, time.Now())

	if err := ctx.Err(); err != nil {
		return "", err
	}

	code, err := invitecode.Generate(userID)
	if err != nil {
		s.opts.metrics.RecordInviteOperation(inviteGenerate, metric.OutcomeError)
		return "", mapInviteError(err)
	}

	s.opts.metrics.RecordInviteOperation(inviteGenerate, metric.OutcomeOK)
	s.opts.log(ctx).Debug("invite code generated", "invite_code", code)
	return code, nil
}

// Parse returns the user id encoded in code.
func (s *InviteService) Parse(ctx context.Context, code string) (uint64, error) {
	defer s.opts.observe(opInviteParse, time.Now())

	if err := ctx.Err(); err != nil {
		return 0, err
	}

	userID, err := invitecode.Parse(code)
	if err != nil {
		s.opts.metrics.RecordInviteOperation(inviteParse, metric.OutcomeMalformed)
		s.opts.log(ctx).Debug("invite code rejected", "code_length", len(code))
		return 0, mapInviteError(err)
	}

	s.opts.metrics.RecordInviteOperation(inviteParse, metric.OutcomeOK)
	return userID, nil
}

// Check reports whether code is well formed.
func (s *InviteService) Check(ctx context.Context, code string) bool {
	ok := invitecode.IsValid(code)
	outcome := metric.OutcomeOK
	if !ok {
		outcome = metric.OutcomeMalformed
	}
	s.opts.metrics.RecordInviteOperation(inviteCheck, outcome)
	return ok
}
