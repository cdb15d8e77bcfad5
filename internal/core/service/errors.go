package service

import (
	"errors"

	"github.com/yndnr/keyforge-go/internal/core/domain"
	"github.com/yndnr/keyforge-go/pkg/apikey"
	"github.com/yndnr/keyforge-go/pkg/invitecode"
)

// mapCodecError converts pkg/apikey errors into domain errors.
func mapCodecError(err error) error {
	var cfgErr *apikey.ConfigError
	switch {
	case errors.As(err, &cfgErr):
		if cfgErr.Field == "primary_secret" || cfgErr.Field == "secondary_secret" {
			return domain.ErrSecretMissing.WithDetails(cfgErr.Field).WithCause(err)
		}
		return domain.ErrConfigInvalid.WithDetails(cfgErr.Field).WithCause(err)
	case errors.Is(err, apikey.ErrUnknownPermission):
		return domain.ErrUnknownPermission.WithCause(err)
	case errors.Is(err, apikey.ErrPermissionOutOfRange):
		return domain.ErrPermissionOutOfRange.WithCause(err)
	case errors.Is(err, apikey.ErrExpiryOutOfRange):
		return domain.ErrExpiryOutOfRange.WithCause(err)
	case errors.Is(err, apikey.ErrTimestampOverflow):
		return domain.ErrClockOutOfRange.WithCause(err)
	case errors.Is(err, apikey.ErrRandomSource):
		return domain.ErrRandomSource.WithCause(err)
	default:
		return domain.ErrInternal.WithCause(err)
	}
}

// mapInviteError converts pkg/invitecode errors into domain errors.
func mapInviteError(err error) error {
	switch {
	case errors.Is(err, invitecode.ErrOutOfRange):
		return domain.ErrInviteOutOfRange.WithCause(err)
	case errors.Is(err, invitecode.ErrInvalidFormat):
		return domain.ErrInviteInvalidFormat.WithCause(err)
	default:
		return domain.ErrInternal.WithCause(err)
	}
}
