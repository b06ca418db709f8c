package domain

import (
	"regexp"
	"strings"
)

var slugRe = regexp.MustCompile(`^[a-z0-9]+(-[a-z0-9]+)*$`)

// ValidateLen trims field and checks it falls in [min, max] after trimming.
// Returns the trimmed value and an error if it's out of bounds.
func ValidateLen(field, value string, min, max int) (string, error) {
	v := strings.TrimSpace(value)
	if len(v) < min {
		if min > 0 {
			return "", ErrEmpty(field)
		}
	}
	if len(v) > max {
		return "", ErrTooLong(field)
	}
	return v, nil
}

func ValidateSlug(slug string) (string, error) {
	v := strings.TrimSpace(strings.ToLower(slug))
	if v == "" {
		return "", ErrEmpty("slug")
	}
	if len(v) > 50 {
		return "", ErrTooLong("slug")
	}
	if !slugRe.MatchString(v) {
		return "", ErrMalformedSlug
	}
	return v, nil
}

// InviteCodeAlphabet excludes visually ambiguous characters (I, O, 0, 1).
const InviteCodeAlphabet = "ABCDEFGHJKLMNPQRSTUVWXYZ23456789"

var inviteCodeRe = regexp.MustCompile(`^[A-HJKLMNP-Z2-9]{4}-[A-HJKLMNP-Z2-9]{4}-[A-HJKLMNP-Z2-9]{4}-[A-HJKLMNP-Z2-9]{4}$`)

// CanonicalizeInviteCode strips any dashes the caller supplied and
// re-inserts them at positions 4/9/14, matching the required wire format.
func CanonicalizeInviteCode(raw string) (string, error) {
	stripped := strings.ToUpper(strings.ReplaceAll(raw, "-", ""))
	if len(stripped) != 16 {
		return "", ErrMalformedCode
	}
	canon := stripped[0:4] + "-" + stripped[4:8] + "-" + stripped[8:12] + "-" + stripped[12:16]
	if !inviteCodeRe.MatchString(canon) {
		return "", ErrMalformedCode
	}
	return canon, nil
}

func ValidateMaxUses(n int) error {
	if n < 1 {
		return ErrMaxUsesBound
	}
	return nil
}
