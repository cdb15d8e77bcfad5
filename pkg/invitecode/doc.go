// Package invitecode maps user ids to short, reversible invite codes.
//
// An id in [0, N) is masked with an affine transform modulo N,
//
//	code = base62(((id + Offset) * Prime) mod N)
//
// and rendered as exactly Length symbols of charset.Base62. Prime is
// coprime to N, so the transform is a bijection on [0, N) and Parse inverts
// it with the modular inverse of Prime.
//
// Codes are not secret: they hide sequential ids from casual inspection
// but are not an authentication mechanism.
package invitecode
