package auth

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/JonMunkholm/entrydesk/internal/core"
)

const secret = "0123456789abcdef0123456789abcdef"

func TestIssueAndParse(t *testing.T) {
	m := NewManager(secret, "entrydesk", time.Hour)
	coach := core.Coach{ID: 7, Email: "sensei@dojo.org", IsAdmin: true}

	token, expires, err := m.Issue(coach)
	require.NoError(t, err)
	assert.WithinDuration(t, time.Now().Add(time.Hour), expires, 5*time.Second)

	claims, err := m.Parse(token)
	require.NoError(t, err)
	assert.Equal(t, int64(7), claims.CoachID)
	assert.Equal(t, "sensei@dojo.org", claims.Email)
	assert.True(t, claims.Admin)
	assert.Equal(t, "7", claims.Subject)
	assert.NotEmpty(t, claims.ID)
}

func TestParse_Expired(t *testing.T) {
	m := NewManager(secret, "entrydesk", time.Minute)
	m.now = func() time.Time { return time.Now().Add(-time.Hour) }

	token, _, err := m.Issue(core.Coach{ID: 1, Email: "a@dojo.org"})
	require.NoError(t, err)

	m.now = time.Now
	_, err = m.Parse(token)
	assert.ErrorIs(t, err, ErrTokenExpired)
}

func TestParse_Rejects(t *testing.T) {
	m := NewManager(secret, "entrydesk", time.Hour)
	token, _, err := m.Issue(core.Coach{ID: 1, Email: "a@dojo.org"})
	require.NoError(t, err)

	tests := []struct {
		name  string
		m     *Manager
		token string
	}{
		{"wrong secret", NewManager("ffffffffffffffffffffffffffffffff", "entrydesk", time.Hour), token},
		{"wrong issuer", NewManager(secret, "someone-else", time.Hour), token},
		{"garbage", m, "not.a.token"},
		{"empty", m, ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := tt.m.Parse(tt.token)
			assert.ErrorIs(t, err, ErrInvalidToken)
		})
	}
}
