package validation

import (
	"net"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewEndpointValidator(t *testing.T) {
	v := NewEndpointValidator()
	assert.False(t, v.AllowLocalhost)
	assert.False(t, v.AllowPrivateIPs)
	assert.Equal(t, 2048, v.MaxLength)

	p := NewPermissiveEndpointValidator()
	assert.True(t, p.AllowLocalhost)
	assert.True(t, p.AllowPrivateIPs)
}

func TestEndpointValidateAndNormalize(t *testing.T) {
	v := NewEndpointValidator()

	tests := []struct {
		name     string
		input    string
		expected string
		errorMsg string
	}{
		{name: "empty", input: "  ", errorMsg: "cannot be empty"},
		{name: "scheme added", input: "dummyjson.com", expected: "https://dummyjson.com"},
		{name: "http kept", input: "http://dummyjson.com", expected: "http://dummyjson.com"},
		{name: "trailing slash dropped", input: "https://dummyjson.com/", expected: "https://dummyjson.com"},
		{name: "path kept", input: "https://api.example.org/v1/", expected: "https://api.example.org/v1"},
		{name: "port kept", input: "https://api.example.org:8443", expected: "https://api.example.org:8443"},
		{name: "fragment dropped", input: "https://cdn.dummyjson.com/a.webp#x", expected: "https://cdn.dummyjson.com/a.webp"},
		{name: "ftp rejected", input: "ftp://dummyjson.com", errorMsg: "http or https"},
		{name: "javascript rejected", input: "javascript:alert(1)", errorMsg: "malformed"},
		{name: "quotes rejected", input: `https://dummyjson.com/"x"`, errorMsg: "invalid characters"},
		{name: "credentials rejected", input: "https://user:pw@dummyjson.com", errorMsg: "credentials"},
		{name: "localhost rejected", input: "http://localhost:8080", errorMsg: "localhost"},
		{name: "loopback rejected", input: "http://127.0.0.1", errorMsg: "localhost"},
		{name: "private rejected", input: "http://192.168.1.10", errorMsg: "private IP"},
		{name: "unspecified rejected", input: "http://0.0.0.0", errorMsg: "not routable"},
		{name: "traversal rejected", input: "https://dummyjson.com/../etc", errorMsg: "traversal"},
		{name: "too long", input: "https://dummyjson.com/" + strings.Repeat("a", 2100), errorMsg: "too long"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := v.ValidateAndNormalize(tt.input)
			if tt.errorMsg != "" {
				require.Error(t, err)
				assert.ErrorIs(t, err, ErrInvalidEndpoint)
				assert.Contains(t, err.Error(), tt.errorMsg)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.expected, got)
		})
	}
}

func TestEndpointValidatePermissive(t *testing.T) {
	v := NewPermissiveEndpointValidator()

	for _, in := range []string{"http://127.0.0.1:9000", "http://localhost", "http://10.0.0.5/api"} {
		_, err := v.ValidateAndNormalize(in)
		assert.NoError(t, err, in)
	}

	_, err := v.ValidateAndNormalize("http://0.0.0.0")
	assert.Error(t, err)
}

func TestIsLocalhost(t *testing.T) {
	assert.True(t, isLocalhost("localhost"))
	assert.True(t, isLocalhost("api.localhost"))
	assert.True(t, isLocalhost("127.0.0.2"))
	assert.True(t, isLocalhost("::1"))
	assert.False(t, isLocalhost("dummyjson.com"))
}

func TestIsPrivateIP(t *testing.T) {
	tests := map[string]bool{
		"10.1.2.3":    true,
		"172.16.0.1":  true,
		"192.168.0.1": true,
		"169.254.1.1": true,
		"fd00::1":     true,
		"fe80::1":     true,
		"8.8.8.8":     false,
		"2001:db8::1": false,
	}
	for in, want := range tests {
		assert.Equal(t, want, isPrivateIP(net.ParseIP(in)), in)
	}
}
