// Package service provides domain services for keyforge.
//
// Services wrap the pkg/apikey and pkg/invitecode codecs with the
// application concerns around them: argument validation, domain error
// codes, structured logging and Prometheus metrics.
//
// This package contains:
//
//   - KeyService: API key issuance and verification
//   - InviteService: invite code generation, parsing and format checks
//
// Services hold no mutable state after construction and are safe for
// concurrent use.
package service
