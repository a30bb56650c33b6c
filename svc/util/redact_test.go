package util

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestRedactIP(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"192.168.1.77", "192.168.1.0"},
		{"10.1.2.3:54321", "10.1.2.0"},
		{"[2001:db8:aaaa:bbbb::1]:443", "2001:db8::"},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			assert.Equal(t, tt.want, RedactIP(tt.in))
		})
	}
}

func TestRedactIPGarbage(t *testing.T) {
	got := RedactIP("not an address")
	assert.True(t, strings.HasPrefix(got, "hash:"))
	assert.Len(t, got, len("hash:")+16)
}

func TestRequestIDRoundTrip(t *testing.T) {
	ctx := SetRequestID(t.Context(), "abc")
	assert.Equal(t, "abc", GetRequestID(ctx))
	assert.Equal(t, "", GetRequestID(t.Context()))
	assert.Len(t, NewRequestID(), 36)
}
