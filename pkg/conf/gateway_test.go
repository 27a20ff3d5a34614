package conf

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/stratadb/strata/pkg/errors"
)

const gatewaySchema = `
type: object
properties:
  service:
    type: object
    properties:
      cluster-name: { type: string }
      proto-fd-max: { type: integer, minimum: 1 }
      ticker-interval: { type: integer, minimum: 1, unit: true }
  namespaces:
    type: object
    dynamic:
      type: object
      properties:
        replication-factor: { type: integer, minimum: 1, maximum: 8 }
`

func writeTemp(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

// TestLoad tests source ingestion and schema validation.
func TestLoad(t *testing.T) {
	schemaPath := writeTemp(t, "schema.yaml", gatewaySchema)

	t.Run("valid source", func(t *testing.T) {
		srcPath := writeTemp(t, "strata.yaml", "service:\n  cluster-name: demo\n")
		tree, err := Load(srcPath, schemaPath)
		require.NoError(t, err)
		name, ok := tree.Lookup("service/cluster-name")
		require.True(t, ok)
		s, _ := name.AsString()
		assert.Equal(t, "demo", s)
	})

	t.Run("missing source file", func(t *testing.T) {
		_, err := Load(filepath.Join(t.TempDir(), "absent.yaml"), schemaPath)
		require.Error(t, err)
		assert.True(t, errors.IsType(err, errors.ErrorTypeFile))
	})

	t.Run("missing schema file", func(t *testing.T) {
		srcPath := writeTemp(t, "strata.yaml", "service: {}\n")
		_, err := Load(srcPath, filepath.Join(t.TempDir(), "absent.yaml"))
		require.Error(t, err)
		assert.True(t, errors.IsType(err, errors.ErrorTypeFile))
	})

	t.Run("malformed source", func(t *testing.T) {
		srcPath := writeTemp(t, "strata.yaml", "service: [unclosed\n")
		_, err := Load(srcPath, schemaPath)
		require.Error(t, err)
		assert.True(t, errors.IsType(err, errors.ErrorTypeIngestion))
	})

	t.Run("duplicate key is an ingestion error", func(t *testing.T) {
		srcPath := writeTemp(t, "strata.yaml", "service: {}\nservice: {}\n")
		_, err := Load(srcPath, schemaPath)
		require.Error(t, err)
		assert.True(t, errors.IsType(err, errors.ErrorTypeIngestion))
	})

	t.Run("schema violation", func(t *testing.T) {
		srcPath := writeTemp(t, "strata.yaml", "service:\n  cluster-nam: demo\n")
		_, err := Load(srcPath, schemaPath)
		require.Error(t, err)
		assert.True(t, errors.IsType(err, errors.ErrorTypeSchema))
		assert.Contains(t, err.Error(), "/service/cluster-nam")
	})
}

// TestLoadAndApply tests the startup path end to end.
func TestLoadAndApply(t *testing.T) {
	schemaPath := writeTemp(t, "schema.yaml", gatewaySchema)

	t.Run("success", func(t *testing.T) {
		srcPath := writeTemp(t, "strata.yaml", `
service:
  cluster-name: demo
  ticker-interval: { value: 1, unit: m }
namespaces:
  bar:
    replication-factor: 3
`)
		cfg, tree, err := LoadAndApply(srcPath, schemaPath)
		require.NoError(t, err)
		require.NotNil(t, tree)
		assert.Equal(t, "demo", cfg.Service.ClusterName)
		assert.Equal(t, uint32(60), cfg.Service.TickerInterval)
		require.Contains(t, cfg.Namespaces, "bar")
		assert.Equal(t, uint32(3), cfg.Namespaces["bar"].ReplicationFactor)
	})

	t.Run("application failure returns the tree", func(t *testing.T) {
		srcPath := writeTemp(t, "strata.yaml", "service:\n  cluster-name: 9\n")
		// Schema admits nothing about the value type mismatch here;
		// force one past validation with a schema-conforming integer
		// against a string-typed descriptor.
		looseSchema := writeTemp(t, "schema.yaml", `
type: object
properties:
  service:
    type: object
    properties:
      cluster-name: {}
`)
		cfg, tree, err := LoadAndApply(srcPath, looseSchema)
		require.Error(t, err)
		assert.Nil(t, cfg)
		require.NotNil(t, tree, "the parsed tree is returned for diagnostics")
		assert.Equal(t, "/service/cluster-name", ErrorPath(err))
	})

	t.Run("example pair conforms", func(t *testing.T) {
		cfg, _, err := LoadAndApply(
			filepath.Join("..", "..", "examples", "strata.yaml"),
			filepath.Join("..", "..", "examples", "schema.yaml"),
		)
		require.NoError(t, err)
		assert.Equal(t, "strata-demo", cfg.Service.ClusterName)
		assert.Len(t, cfg.Namespaces, 2)
		assert.Len(t, cfg.Sinks, 2)
	})
}
