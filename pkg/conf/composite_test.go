package conf

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// TestParseHostPort tests the host:port[:tls-name] composite format.
func TestParseHostPort(t *testing.T) {
	t.Run("valid", func(t *testing.T) {
		tests := []struct {
			in   string
			want HostPort
		}{
			{"seed1.example.com:3002", HostPort{Host: "seed1.example.com", Port: 3002}},
			{"10.0.0.5:3000", HostPort{Host: "10.0.0.5", Port: 3000}},
			{"seed1:3002:internal", HostPort{Host: "seed1", Port: 3002, TLSName: "internal"}},
		}
		for _, tt := range tests {
			got, err := parseHostPort(tt.in)
			require.NoError(t, err, tt.in)
			assert.Equal(t, tt.want, got)
		}
	})

	t.Run("invalid", func(t *testing.T) {
		for _, in := range []string{
			"hostonly",
			"",
			":3000",
			"host:",
			"host:0",
			"host:notaport",
			"host:99999",
			"host:3000:",
			"host:3000:name:extra",
		} {
			_, err := parseHostPort(in)
			assert.Error(t, err, in)
		}
	})
}

// TestParseDevicePath tests the path[:shadow-path] composite format.
func TestParseDevicePath(t *testing.T) {
	t.Run("valid", func(t *testing.T) {
		got, err := parseDevicePath("/dev/nvme0n1")
		require.NoError(t, err)
		assert.Equal(t, DevicePath{Path: "/dev/nvme0n1"}, got)

		got, err = parseDevicePath("/dev/nvme0n1:/dev/sdb")
		require.NoError(t, err)
		assert.Equal(t, DevicePath{Path: "/dev/nvme0n1", Shadow: "/dev/sdb"}, got)
	})

	t.Run("invalid", func(t *testing.T) {
		for _, in := range []string{"", ":/dev/sdb", "/dev/sda:", "/a:/b:/c"} {
			_, err := parseDevicePath(in)
			assert.Error(t, err, in)
		}
	})
}

// TestParseScope tests the "namespace [set]" composite format.
func TestParseScope(t *testing.T) {
	t.Run("valid", func(t *testing.T) {
		got, err := parseScope("bar")
		require.NoError(t, err)
		assert.Equal(t, ScopeSpec{Namespace: "bar"}, got)

		got, err = parseScope("bar events")
		require.NoError(t, err)
		assert.Equal(t, ScopeSpec{Namespace: "bar", Set: "events"}, got)

		// Runs of whitespace collapse.
		got, err = parseScope("  bar \t events ")
		require.NoError(t, err)
		assert.Equal(t, ScopeSpec{Namespace: "bar", Set: "events"}, got)
	})

	t.Run("invalid", func(t *testing.T) {
		for _, in := range []string{"", "   ", "a b c"} {
			_, err := parseScope(in)
			assert.Error(t, err, in)
		}
	})
}
