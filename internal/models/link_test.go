package models

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestLink_Code(t *testing.T) {
	alias := "my-alias"
	tests := []struct {
		name string
		link Link
		want string
	}{
		{name: "generated code", link: Link{ShortCode: "abc12345"}, want: "abc12345"},
		{name: "custom alias wins", link: Link{ShortCode: "abc12345", CustomAlias: &alias}, want: "my-alias"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.link.Code())
		})
	}
}

func TestLink_IsRedirectable(t *testing.T) {
	now := time.Date(2026, 3, 10, 12, 0, 0, 0, time.Local)
	past := now.Add(-time.Hour)
	future := now.Add(time.Hour)

	tests := []struct {
		name string
		link Link
		want bool
	}{
		{name: "active", link: Link{Status: LinkStatusActive}, want: true},
		{name: "inactive", link: Link{Status: LinkStatusInactive}, want: true},
		{name: "expired status", link: Link{Status: LinkStatusExpired}, want: false},
		{name: "blocked", link: Link{Status: LinkStatusBlocked}, want: false},
		{name: "active but past deadline", link: Link{Status: LinkStatusActive, ExpiresAt: &past}, want: false},
		{name: "active with future deadline", link: Link{Status: LinkStatusActive, ExpiresAt: &future}, want: true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.link.IsRedirectable(now))
		})
	}
}

func TestLink_CheckExpiration(t *testing.T) {
	now := time.Date(2026, 3, 10, 12, 0, 0, 0, time.Local)
	past := now.Add(-time.Minute)

	t.Run("no deadline", func(t *testing.T) {
		link := Link{Status: LinkStatusActive}
		expired, changed := link.CheckExpiration(now)
		assert.False(t, expired)
		assert.False(t, changed)
		assert.Equal(t, LinkStatusActive, link.Status)
	})

	t.Run("first transition", func(t *testing.T) {
		link := Link{Status: LinkStatusActive, ExpiresAt: &past}
		expired, changed := link.CheckExpiration(now)
		assert.True(t, expired)
		assert.True(t, changed)
		assert.True(t, link.IsExpired)
		assert.Equal(t, LinkStatusExpired, link.Status)
	})

	t.Run("idempotent", func(t *testing.T) {
		link := Link{Status: LinkStatusActive, ExpiresAt: &past}
		_, _ = link.CheckExpiration(now)
		expired, changed := link.CheckExpiration(now)
		assert.True(t, expired)
		assert.False(t, changed)
	})
}

func TestDayOf(t *testing.T) {
	ts := time.Date(2026, 3, 10, 23, 59, 59, 123, time.Local)
	day := DayOf(ts)
	assert.Equal(t, time.Date(2026, 3, 10, 0, 0, 0, 0, time.Local), day)

	assert.True(t, SameDay(ts, time.Date(2026, 3, 10, 0, 0, 1, 0, time.Local)))
	assert.False(t, SameDay(ts, time.Date(2026, 3, 11, 0, 0, 0, 0, time.Local)))
}
