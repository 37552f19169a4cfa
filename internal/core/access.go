package core

import (
	"errors"
	"strings"
)

// ErrNotAllowlisted is returned when sign-in is restricted and the email
// is on neither the coach nor the admin list.
var ErrNotAllowlisted = errors.New("email is not on the allowlist")

// AccessPolicy decides who may sign in and who is an organizer.
type AccessPolicy struct {
	AdminEmails      []string
	EnforceAllowlist bool
	CoachEmails      []string
	CoachDomains     []string // Entries may be written as "example.com" or "@example.com"
}

// IsAdmin reports whether email is listed as an organizer.
func (p AccessPolicy) IsAdmin(email string) bool {
	return containsFold(p.AdminEmails, email)
}

// Allowed reports whether email may sign in. Admins always may.
func (p AccessPolicy) Allowed(email string) bool {
	if !p.EnforceAllowlist || p.IsAdmin(email) {
		return true
	}
	if containsFold(p.CoachEmails, email) {
		return true
	}

	at := strings.LastIndex(email, "@")
	if at < 0 {
		return false
	}
	domain := strings.ToLower(strings.TrimSpace(email[at+1:]))
	for _, d := range p.CoachDomains {
		if strings.ToLower(strings.TrimPrefix(strings.TrimSpace(d), "@")) == domain {
			return true
		}
	}
	return false
}

// NormalizeEmail lowercases and trims an email address.
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

func containsFold(list []string, s string) bool {
	s = NormalizeEmail(s)
	for _, v := range list {
		if NormalizeEmail(v) == s {
			return true
		}
	}
	return false
}
