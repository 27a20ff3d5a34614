package conf

import (
	"os"

	"go.uber.org/zap"

	"github.com/stratadb/strata/pkg/errors"
	"github.com/stratadb/strata/pkg/logger"
	"github.com/stratadb/strata/pkg/metrics"
	"github.com/stratadb/strata/pkg/schema"
	"github.com/stratadb/strata/pkg/value"
)

// Load reads a configuration source and a schema document, parses the
// source into a tree and validates it. The returned tree is read-only
// and carries everything the application pass needs; no target record
// is touched here. Parse failures are ingestion errors, schema
// violations are schema errors with a single-line message.
func Load(sourcePath, schemaPath string) (*value.Value, error) {
	sourceData, err := os.ReadFile(sourcePath)
	if err != nil {
		return nil, errors.Wrap(err, errors.ErrorTypeFile, "failed to read configuration source").
			WithDetail("path", sourcePath)
	}

	tree, err := value.FromYAML(sourceData)
	if err != nil {
		return nil, errors.Wrap(err, errors.ErrorTypeIngestion, "failed to parse configuration source").
			WithDetail("path", sourcePath)
	}

	schemaData, err := os.ReadFile(schemaPath)
	if err != nil {
		return nil, errors.Wrap(err, errors.ErrorTypeFile, "failed to read schema document").
			WithDetail("path", schemaPath)
	}

	spec, err := schema.Parse(schemaData)
	if err != nil {
		return nil, errors.Wrap(err, errors.ErrorTypeSchema, "failed to parse schema document").
			WithDetail("path", schemaPath)
	}

	if err := spec.Check(tree); err != nil {
		return nil, errors.Wrap(err, errors.ErrorTypeSchema, "configuration does not conform to schema")
	}

	return tree, nil
}

// ApplyConfig performs one application pass: the descriptor registry
// is walked top to bottom against the validated tree and every
// resolved value is written into cfg or a dynamically-created child
// record. The pass is single-threaded and assumes exclusive access to
// the record set. The first error aborts the pass; fields written
// before it stand.
func ApplyConfig(cfg *Config, tree *value.Value, opts ...Option) error {
	a := NewApplier(opts...)

	if err := a.Apply(cfg, topTable, tree); err != nil {
		metrics.PassFailures.Inc()
		return finalizeRoot(err)
	}

	metrics.PassesCompleted.Inc()
	logger.Info("configuration applied",
		zap.String("edition", a.edition.String()),
		zap.Int("fields", a.fieldsApplied),
		zap.Int("dynamic_records", a.recordsCreated),
		zap.Int("namespaces", len(cfg.Namespaces)),
		zap.Int("sinks", len(cfg.Sinks)),
	)
	return nil
}

// LoadAndApply is the startup entry point: load, validate, then apply
// into a fresh server-wide record.
func LoadAndApply(sourcePath, schemaPath string, opts ...Option) (*Config, *value.Value, error) {
	tree, err := Load(sourcePath, schemaPath)
	if err != nil {
		return nil, nil, err
	}
	cfg := NewConfig()
	if err := ApplyConfig(cfg, tree, opts...); err != nil {
		return nil, tree, err
	}
	return cfg, tree, nil
}
