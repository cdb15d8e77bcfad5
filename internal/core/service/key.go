package service

import (
	"context"
	"fmt"
	"time"

	"github.com/yndnr/keyforge-go/internal/core/domain"
	"github.com/yndnr/keyforge-go/internal/telemetry/logger"
	"github.com/yndnr/keyforge-go/internal/telemetry/metric"
	"github.com/yndnr/keyforge-go/pkg/apikey"
	"github.com/yndnr/keyforge-go/pkg/token"
)

// Operation names used for duration metrics.
const (
	opIssue          = "issue"
	opVerify         = "verify"
	opInviteGenerate = "invite_generate"
	opInviteParse    = "invite_parse"
)

// FragmentCacheSize is the number of user id fragments a KeyService keeps.
const FragmentCacheSize = 4096

// KeyService issues and verifies API keys.
type KeyService struct {
	codec *apikey.Codec
	opts  *options
}

// NewKeyService creates a KeyService bound to secrets.
func NewKeyService(secrets domain.Secrets, cfg apikey.Config, opts ...Option) (*KeyService, error) {
	if err := secrets.Validate(); err != nil {
		return nil, err
	}

	o := buildOptions(opts)
	codecOpts := append([]apikey.Option{
		apikey.WithFragmentCache(FragmentCacheSize),
		apikey.WithRejectHook(func(reason string) {
			o.logger.Debug("api key rejected", "reason", reason)
		}),
	}, o.codecOpts...)

	codec, err := apikey.New(secrets.Primary, secrets.Secondary, cfg, codecOpts...)
	if err != nil {
		return nil, mapCodecError(err)
	}
	return &KeyService{codec: codec, opts: o}, nil
}

// Config returns the codec configuration.
func (s *KeyService) Config() apikey.Config {
	return s.codec.Config()
}

// IssueRequest contains parameters for key issuance.
type IssueRequest struct {
	// UserID is the identifier the key is issued for.
	UserID string

	// Permissions are permission names. Unknown names are rejected.
	Permissions []string

	// ExpiryDays overrides the configured default expiry.
	ExpiryDays *int

	// NoExpiry issues a key that never expires. Conflicts with ExpiryDays.
	NoExpiry bool
}

// Issue generates a new API key and returns its record.
//
// The token in the returned record is the only copy. Only its masked
// hint is logged.
func (s *KeyService) Issue(ctx context.Context, req *IssueRequest) (*domain.IssuedKey, error) {
	defer s.opts.observe(opIssue, time.Now())
	log := s.opts.log(ctx)

	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if req == nil {
		return nil, domain.ErrMissingArgument.WithDetails("issue request is nil")
	}
	if err := domain.ValidateUserID(req.UserID); err != nil {
		return nil, err
	}
	if req.NoExpiry && req.ExpiryDays != nil {
		return nil, domain.ErrArgumentConflict.WithDetails("expiry days and no expiry are mutually exclusive")
	}

	perms, err := parsePermissions(req.Permissions)
	if err != nil {
		return nil, err
	}

	var genOpts []apikey.GenerateOption
	switch {
	case req.NoExpiry:
		genOpts = append(genOpts, apikey.WithoutExpiry())
	case req.ExpiryDays != nil:
		genOpts = append(genOpts, apikey.WithExpiryDays(*req.ExpiryDays))
	}

	tok, err := s.codec.Generate(req.UserID, perms, genOpts...)
	if err != nil {
		mapped := mapCodecError(err)
		log.Warn("api key issuance failed",
			"user_id_length", len(req.UserID),
			"error", mapped,
		)
		return nil, mapped
	}

	// Decode what was written so the record reflects the key exactly.
	res := s.codec.Verify(tok)
	if res == nil {
		log.Error("issued api key failed verification")
		return nil, domain.ErrInternal.WithDetails("issued key failed verification")
	}

	granted, err := normalizePermissions(perms, s.codec.Config().PermissionBits)
	if err != nil {
		return nil, mapCodecError(err)
	}

	id, err := domain.NewIssuedKeyID()
	if err != nil {
		return nil, err
	}

	issued := &domain.IssuedKey{
		ID:          id,
		UserID:      req.UserID,
		Token:       tok,
		Fingerprint: token.Hash(tok),
		Version:     res.Version,
		UserIDPart:  res.UserIDPart,
		Permissions: granted,
		CreatedAt:   res.CreatedAt,
		ExpiresAt:   res.ExpiresAt,
	}

	s.opts.metrics.IncKeysIssued()
	log.Info("api key issued",
		"key_id", issued.ID,
		"user_id_part", issued.UserIDPart,
		"token_hint", logger.MaskToken(tok),
		"permissions", len(granted),
		"expires", issued.ExpiresAt != nil,
	)
	return issued, nil
}

// Verify checks an API key.
//
// A malformed or tampered key yields a nil result and
// domain.ErrTokenMalformed. An authentic but expired key yields its result
// together with domain.ErrTokenExpired. A valid key yields its result and
// a nil error.
func (s *KeyService) Verify(ctx context.Context, key string) (*apikey.Result, error) {
	defer s.opts.observe(opVerify, time.Now())
	log := s.opts.log(ctx)

	if err := ctx.Err(); err != nil {
		return nil, err
	}

	res := s.codec.Verify(key)
	switch {
	case res == nil:
		s.opts.metrics.RecordKeyVerification(metric.OutcomeMalformed)
		log.Debug("api key malformed", "token_length", len(key))
		return nil, domain.ErrTokenMalformed
	case res.Expired():
		s.opts.metrics.RecordKeyVerification(metric.OutcomeExpired)
		log.Debug("api key expired",
			"user_id_part", res.UserIDPart,
			"expires_at", res.ExpiresAt,
		)
		return res, domain.ErrTokenExpired.WithDetails(
			fmt.Sprintf("expired at %s", res.ExpiresAt.Format(time.RFC3339)))
	default:
		s.opts.metrics.RecordKeyVerification(metric.OutcomeValid)
		log.Debug("api key verified", "user_id_part", res.UserIDPart)
		return res, nil
	}
}

// parsePermissions resolves permission names.
func parsePermissions(names []string) ([]apikey.Permission, error) {
	perms := make([]apikey.Permission, 0, len(names))
	for _, name := range names {
		p, err := apikey.ParsePermission(name)
		if err != nil {
			return nil, domain.ErrUnknownPermission.WithDetails(name).WithCause(err)
		}
		perms = append(perms, p)
	}
	return perms, nil
}

// normalizePermissions returns perms deduplicated in bit order.
func normalizePermissions(perms []apikey.Permission, bits int) ([]apikey.Permission, error) {
	bitmap, err := apikey.EncodePermissions(perms, bits)
	if err != nil {
		return nil, err
	}
	return apikey.DecodePermissions(bitmap)
}
