package utils

import (
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestClientIP(t *testing.T) {
	r := httptest.NewRequest("GET", "/", nil)
	r.RemoteAddr = "192.0.2.1:5555"
	r.Header.Set("X-Forwarded-For", "203.0.113.9, 10.0.0.1")

	assert.Equal(t, "192.0.2.1", ClientIP(r, false))
	assert.Equal(t, "203.0.113.9", ClientIP(r, true))

	r.Header.Set("CF-Connecting-IP", "198.51.100.7")
	assert.Equal(t, "198.51.100.7", ClientIP(r, true))
}

func TestIPMatcher(t *testing.T) {
	m := NewIPMatcher([]string{"10.0.0.0/8", " 192.168.1.4 ", "bogus", ""})
	assert.False(t, m.IsEmpty())
	assert.True(t, m.Allow("10.2.3.4"))
	assert.True(t, m.Allow("192.168.1.4"))
	assert.False(t, m.Allow("192.168.1.5"))
	assert.False(t, m.Allow("not-an-ip"))

	assert.True(t, NewIPMatcher(nil).IsEmpty())
}

func TestClientIPHeaderOrder(t *testing.T) {
	r := httptest.NewRequest("GET", "/", nil)
	r.RemoteAddr = "[2001:db8::1]:443"
	assert.Equal(t, "2001:db8::1", ClientIP(r, true))

	r.Header.Set("X-Real-IP", "198.51.100.2")
	assert.Equal(t, "198.51.100.2", ClientIP(r, true))
	assert.Equal(t, "2001:db8::1", ClientIP(r, false))
}

func TestIPMatcherMapped(t *testing.T) {
	m := NewIPMatcher([]string{"127.0.0.1", "2001:db8::/32"})
	assert.True(t, m.Allow("::ffff:127.0.0.1"))
	assert.True(t, m.Allow("2001:db8::42"))
	assert.False(t, m.Allow("2001:db9::1"))
}
