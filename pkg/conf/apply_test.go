package conf

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/stratadb/strata/pkg/errors"
	"github.com/stratadb/strata/pkg/value"
)

// recordingNotices captures deprecation warnings for inspection.
type recordingNotices struct {
	paths []string
}

func (r *recordingNotices) Deprecated(path, message string) {
	r.paths = append(r.paths, path)
}

// recordingEffects captures side-effect port calls in order.
type recordingEffects struct {
	tlsContexts []string
	tlsSeconds  []uint32

	keepalive struct {
		called   bool
		enabled  bool
		timeSec  uint32
		interval uint32
		probes   uint32
	}
}

func (r *recordingEffects) TLSRefreshPeriod(context string, seconds uint32) {
	r.tlsContexts = append(r.tlsContexts, context)
	r.tlsSeconds = append(r.tlsSeconds, seconds)
}

func (r *recordingEffects) SocketKeepalive(enabled bool, timeSec, intervalSec, probes uint32) {
	r.keepalive.called = true
	r.keepalive.enabled = enabled
	r.keepalive.timeSec = timeSec
	r.keepalive.interval = intervalSec
	r.keepalive.probes = probes
}

func parseTree(t *testing.T, src string) *value.Value {
	t.Helper()
	tree, err := value.FromYAML([]byte(src))
	require.NoError(t, err)
	return tree
}

// TestApply_AbsentKeysKeepDefaults tests that keys missing from the
// source leave constructor defaults untouched.
func TestApply_AbsentKeysKeepDefaults(t *testing.T) {
	cfg := NewConfig()
	tree := parseTree(t, "service:\n  cluster-name: demo")

	require.NoError(t, ApplyConfig(cfg, tree))

	assert.Equal(t, "demo", cfg.Service.ClusterName)
	assert.Equal(t, uint32(15000), cfg.Service.ProtoFDMax)
	assert.Equal(t, uint16(3000), cfg.Network.Service.Port)
	assert.Equal(t, "mesh", cfg.Network.Heartbeat.Mode)
}

// TestApply_Deterministic tests that applying one tree to two fresh
// record sets produces identical results.
func TestApply_Deterministic(t *testing.T) {
	src := `
service:
  cluster-name: demo
  proto-fd-max: 20000
  ticker-interval: { value: 1, unit: m }
network:
  service:
    port: 4000
namespaces:
  bar:
    replication-factor: 3
    sets:
      events:
        stop-writes-count: 100
logging:
  - console: true
    contexts:
      any: info
`
	tree := parseTree(t, src)

	first := NewConfig()
	require.NoError(t, ApplyConfig(first, tree))
	second := NewConfig()
	require.NoError(t, ApplyConfig(second, tree))

	assert.Equal(t, first, second)
}

// TestApply_EditionGate tests enterprise-only keys under both builds.
func TestApply_EditionGate(t *testing.T) {
	t.Run("enterprise key rejected under community", func(t *testing.T) {
		cfg := NewConfig()
		tree := parseTree(t, "namespaces:\n  bar:\n    strong-consistency: true")

		err := ApplyConfig(cfg, tree)
		require.Error(t, err)
		assert.True(t, errors.IsType(err, errors.ErrorTypeConfig))
		assert.Equal(t, "/namespaces/bar/strong-consistency", ErrorPath(err))
		assert.Contains(t, err.Error(), "enterprise")
	})

	t.Run("enterprise key applied under enterprise", func(t *testing.T) {
		cfg := NewConfig()
		tree := parseTree(t, "namespaces:\n  bar:\n    strong-consistency: true")

		require.NoError(t, ApplyConfig(cfg, tree, WithEdition(Enterprise)))
		assert.True(t, cfg.Namespaces["bar"].StrongConsistency)
	})

	t.Run("gate fires before value inspection", func(t *testing.T) {
		cfg := NewConfig()
		// Value is the wrong type; the edition refusal must win.
		tree := parseTree(t, "namespaces:\n  bar:\n    strong-consistency: 17")

		err := ApplyConfig(cfg, tree)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "enterprise")
	})

	t.Run("whole section gated", func(t *testing.T) {
		cfg := NewConfig()
		tree := parseTree(t, "xdr:\n  dcs:\n    east:\n      auth-mode: internal")

		err := ApplyConfig(cfg, tree)
		require.Error(t, err)
		assert.Equal(t, "/xdr", ErrorPath(err))

		cfg = NewConfig()
		require.NoError(t, ApplyConfig(cfg, tree, WithEdition(Enterprise)))
		require.Contains(t, cfg.DCs, "east")
		assert.Equal(t, "internal", cfg.DCs["east"].AuthMode)
	})

	t.Run("absent enterprise key is not an error", func(t *testing.T) {
		cfg := NewConfig()
		tree := parseTree(t, "namespaces:\n  bar:\n    replication-factor: 2")
		require.NoError(t, ApplyConfig(cfg, tree))
	})
}

// TestApply_Deprecation tests notice emission and per-pass dedup.
func TestApply_Deprecation(t *testing.T) {
	t.Run("notice emitted with value still applied", func(t *testing.T) {
		notices := &recordingNotices{}
		cfg := NewConfig()
		tree := parseTree(t, "service:\n  proto-fd-idle-ms: 60000")

		require.NoError(t, ApplyConfig(cfg, tree, WithNotices(notices)))
		assert.Equal(t, []string{"proto-fd-idle-ms"}, notices.paths)
		assert.Equal(t, uint32(60000), cfg.Service.ProtoFDIdleMS)
	})

	t.Run("dynamic records dedup per descriptor", func(t *testing.T) {
		notices := &recordingNotices{}
		cfg := NewConfig()
		tree := parseTree(t, `
namespaces:
  a:
    storage-engine:
      type: memory
      data-in-memory: true
  b:
    storage-engine:
      type: memory
      data-in-memory: false
`)
		require.NoError(t, ApplyConfig(cfg, tree, WithNotices(notices)))
		assert.Equal(t, []string{"data-in-memory"}, notices.paths,
			"the same descriptor must warn once per pass")
	})

	t.Run("distinct descriptors warn independently", func(t *testing.T) {
		notices := &recordingNotices{}
		cfg := NewConfig()
		tree := parseTree(t, `
service:
  proto-fd-idle-ms: 1
tls:
  internal:
    cert-blacklist: /etc/strata/blacklist
`)
		require.NoError(t, ApplyConfig(cfg, tree, WithNotices(notices)))
		assert.Len(t, notices.paths, 2)
	})
}

// TestApply_ErrorPaths tests that failures surface root-relative paths.
func TestApply_ErrorPaths(t *testing.T) {
	tests := []struct {
		name string
		src  string
		path string
	}{
		{
			name: "scalar type mismatch",
			src:  "service:\n  cluster-name: 3",
			path: "/service/cluster-name",
		},
		{
			name: "bounds violation",
			src:  "service:\n  service-threads: 0",
			path: "/service/service-threads",
		},
		{
			name: "nested section",
			src:  "network:\n  heartbeat:\n    timeout: 1",
			path: "/network/heartbeat/timeout",
		},
		{
			name: "dynamic key segment",
			src:  "namespaces:\n  bar:\n    replication-factor: 99",
			path: "/namespaces/bar/replication-factor",
		},
		{
			name: "set inside namespace",
			src:  "namespaces:\n  bar:\n    sets:\n      events:\n        disable-eviction: 5",
			path: "/namespaces/bar/sets/events/disable-eviction",
		},
		{
			name: "ordinal sink segment",
			src:  "logging:\n  - console: true\n  - file: 7",
			path: "/logging/1/file",
		},
		{
			name: "unit error",
			src:  "service:\n  ticker-interval: { value: 5, unit: lightyears }",
			path: "/service/ticker-interval",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := NewConfig()
			err := ApplyConfig(cfg, parseTree(t, tt.src))
			require.Error(t, err)
			assert.True(t, errors.IsType(err, errors.ErrorTypeConfig))
			assert.Equal(t, tt.path, ErrorPath(err))
			assert.Contains(t, err.Error(), tt.path)
		})
	}
}

// TestApply_NoRollback tests that writes before a failing descriptor
// stand; the caller discards the record set on error.
func TestApply_NoRollback(t *testing.T) {
	cfg := NewConfig()
	tree := parseTree(t, `
service:
  cluster-name: demo
  service-threads: 0
`)
	err := ApplyConfig(cfg, tree)
	require.Error(t, err)
	assert.Equal(t, "demo", cfg.Service.ClusterName,
		"fields applied before the failure keep their values")
}

// TestApply_SideEffects tests the side-effect port invocations.
func TestApply_SideEffects(t *testing.T) {
	t.Run("tls refresh period", func(t *testing.T) {
		effects := &recordingEffects{}
		cfg := NewConfig()
		tree := parseTree(t, `
tls:
  internal:
    cert-file: /etc/strata/cert.pem
    refresh-period: { value: 1, unit: h }
`)
		require.NoError(t, ApplyConfig(cfg, tree, WithEffects(effects)))
		assert.Equal(t, []string{"internal"}, effects.tlsContexts)
		assert.Equal(t, []uint32{3600}, effects.tlsSeconds)
		assert.Equal(t, uint32(3600), cfg.TLSSpecs["internal"].RefreshPeriod)
	})

	t.Run("fabric keepalive sees final tunables", func(t *testing.T) {
		effects := &recordingEffects{}
		cfg := NewConfig()
		tree := parseTree(t, `
network:
  fabric:
    keepalive-enabled: true
    keepalive-time: { value: 1, unit: m }
    keepalive-intvl: 10
    keepalive-probes: 9
`)
		require.NoError(t, ApplyConfig(cfg, tree, WithEffects(effects)))
		require.True(t, effects.keepalive.called)
		assert.True(t, effects.keepalive.enabled)
		assert.Equal(t, uint32(60), effects.keepalive.timeSec,
			"the effect must observe tunables from the same document")
		assert.Equal(t, uint32(10), effects.keepalive.interval)
		assert.Equal(t, uint32(9), effects.keepalive.probes)
	})

	t.Run("no effect without the triggering key", func(t *testing.T) {
		effects := &recordingEffects{}
		cfg := NewConfig()
		tree := parseTree(t, "network:\n  fabric:\n    keepalive-time: 30")
		require.NoError(t, ApplyConfig(cfg, tree, WithEffects(effects)))
		assert.False(t, effects.keepalive.called)
	})
}

// TestPrefixPath tests path accumulation on nested errors.
func TestPrefixPath(t *testing.T) {
	err := configErrorf("boom")
	err2 := prefixPath(err, "port")
	err3 := prefixPath(err2, "service")
	assert.Equal(t, "service/port", ErrorPath(err3))

	t.Run("non-config errors pass through", func(t *testing.T) {
		internal := internalErrorf("bug")
		out := prefixPath(internal, "service")
		assert.Empty(t, ErrorPath(out))
		assert.True(t, errors.IsType(out, errors.ErrorTypeInternal))
	})
}
