// Package apikey provides structured, tamper-evident API keys.
package apikey

import (
	"fmt"
	"strconv"
	"strings"
)

// Permission is a named capability granted by a key.
type Permission string

// Known permissions.
const (
	PermRead    Permission = "read"
	PermWrite   Permission = "write"
	PermDelete  Permission = "delete"
	PermAdmin   Permission = "admin"
	PermExecute Permission = "execute"
	PermExport  Permission = "export"
	PermImport  Permission = "import"
	PermSpecial Permission = "special"
)

// allPermissions is in bit order: element i owns bit 1<<i.
var allPermissions = []Permission{
	PermRead, PermWrite, PermDelete, PermAdmin,
	PermExecute, PermExport, PermImport, PermSpecial,
}

// Permissions returns all known permissions in bit order.
func Permissions() []Permission {
	out := make([]Permission, len(allPermissions))
	copy(out, allPermissions)
	return out
}

// Bit returns the bitmap value of p, or 0 if p is unknown.
func (p Permission) Bit() uint64 {
	for i, known := range allPermissions {
		if known == p {
			return 1 << uint(i)
		}
	}
	return 0
}

// Valid reports whether p is a known permission.
func (p Permission) Valid() bool {
	return p.Bit() != 0
}

// ParsePermission parses a permission name, ignoring case and surrounding
// whitespace.
func ParsePermission(s string) (Permission, error) {
	p := Permission(strings.ToLower(strings.TrimSpace(s)))
	if !p.Valid() {
		return "", fmt.Errorf("%w: %q", ErrUnknownPermission, s)
	}
	return p, nil
}

// BitmapWidth returns the number of hex digits needed for bits bits.
func BitmapWidth(bits int) int {
	return (bits + 3) / 4
}

// EncodePermissions renders perms as a lowercase hex bitmap of
// BitmapWidth(bits) digits.
func EncodePermissions(perms []Permission, bits int) (string, error) {
	var mask uint64
	for _, p := range perms {
		bit := p.Bit()
		if bit == 0 {
			return "", fmt.Errorf("%w: %q", ErrUnknownPermission, p)
		}
		if bits < 64 && bit >= 1<<uint(bits) {
			return "", fmt.Errorf("%w: %q needs more than %d bits", ErrPermissionOutOfRange, p, bits)
		}
		mask |= bit
	}

	hex := strconv.FormatUint(mask, 16)
	width := BitmapWidth(bits)
	if len(hex) < width {
		hex = strings.Repeat("0", width-len(hex)) + hex
	}
	return hex, nil
}

// DecodePermissions parses a hex bitmap into the named permissions it
// grants, in bit order. Bits without a name are ignored.
func DecodePermissions(bitmap string) ([]Permission, error) {
	mask, err := strconv.ParseUint(bitmap, 16, 64)
	if err != nil {
		return nil, fmt.Errorf("apikey: invalid permission bitmap %q: %w", bitmap, err)
	}

	perms := make([]Permission, 0, len(allPermissions))
	for i, p := range allPermissions {
		if mask&(1<<uint(i)) != 0 {
			perms = append(perms, p)
		}
	}
	return perms, nil
}
