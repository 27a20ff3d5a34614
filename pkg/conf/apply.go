package conf

import (
	"fmt"

	"go.uber.org/zap"

	"github.com/stratadb/strata/pkg/errors"
	"github.com/stratadb/strata/pkg/logger"
	"github.com/stratadb/strata/pkg/metrics"
	"github.com/stratadb/strata/pkg/value"
)

// NoticeSink receives non-fatal deprecation warnings. The host decides
// how they are rendered; the default sink logs them.
type NoticeSink interface {
	Deprecated(path, message string)
}

type logNotices struct{}

func (logNotices) Deprecated(path, message string) {
	logger.Warn("deprecated configuration key",
		zap.String("path", path),
		zap.String("notice", message),
	)
}

// Applier walks descriptor tables against a document tree and writes
// the resolved values into target records. One Applier performs one
// application pass; it is not safe for concurrent use.
type Applier struct {
	edition Edition
	notices NoticeSink
	effects SideEffects

	// noted dedups deprecation warnings per pass per descriptor.
	noted map[string]struct{}

	fieldsApplied  int
	recordsCreated int
}

// Option configures an Applier.
type Option func(*Applier)

// WithEdition selects the build edition consulted by the edition gate.
func WithEdition(e Edition) Option {
	return func(a *Applier) { a.edition = e }
}

// WithNotices substitutes the deprecation notice sink.
func WithNotices(n NoticeSink) Option {
	return func(a *Applier) { a.notices = n }
}

// WithEffects substitutes the side-effect port reached by handlers
// that mutate process-wide state outside the target record set.
func WithEffects(e SideEffects) Option {
	return func(a *Applier) { a.effects = e }
}

// NewApplier creates an Applier for one application pass. Defaults:
// community edition, log-backed notices, inert side effects.
func NewApplier(opts ...Option) *Applier {
	a := &Applier{
		edition: Community,
		notices: logNotices{},
		effects: NopEffects{},
		noted:   make(map[string]struct{}),
	}
	for _, opt := range opts {
		opt(a)
	}
	return a
}

// Apply walks every descriptor of table, in table order, against node
// and dispatches resolved values into target. Absent path keys are
// skipped; the first error aborts the call. Writes performed before a
// failing descriptor stand — there is no rollback.
func (a *Applier) Apply(target interface{}, table Table, node *value.Value) error {
	for i := range table.Fields {
		f := &table.Fields[i]

		v, ok := node.Lookup(f.Path)
		if !ok {
			continue
		}

		if f.Enterprise && !a.edition.Enterprise() {
			return prefixPath(
				configErrorf("key requires an enterprise build (running %s)", a.edition),
				f.Path)
		}

		if f.Deprecated != "" {
			a.deprecate(table.Name, f.Path, f.Deprecated)
		}

		if f.Unit != UnitNone {
			normalized, err := normalizeUnit(f.Unit, v)
			if err != nil {
				return prefixPath(err, f.Path)
			}
			if normalized != nil {
				v = normalized
			}
		}

		var err error
		if f.Handle != nil {
			err = f.Handle(a, target, v)
		} else {
			err = f.Set(f, target, v)
		}
		if err != nil {
			return prefixPath(err, f.Path)
		}
		a.fieldsApplied++
		metrics.FieldsApplied.Inc()
	}
	return nil
}

func (a *Applier) deprecate(table, path, message string) {
	key := table + "\x00" + path
	if _, done := a.noted[key]; done {
		return
	}
	a.noted[key] = struct{}{}
	a.notices.Deprecated(path, message)
	metrics.DeprecationNotices.Inc()
}

func (a *Applier) recordCreated(kind string) {
	a.recordsCreated++
	metrics.DynamicRecords.WithLabelValues(kind).Inc()
}

// configErrorf creates an application error with no path context yet;
// the engine prefixes path segments as the error bubbles toward the
// document root.
func configErrorf(format string, args ...interface{}) *errors.Error {
	return errors.Newf(errors.ErrorTypeConfig, format, args...)
}

func internalErrorf(format string, args ...interface{}) *errors.Error {
	return errors.Newf(errors.ErrorTypeInternal, format, args...)
}

// prefixPath prepends a path segment onto the error's path detail, so
// errors from nested applies always read as root-relative paths.
func prefixPath(err error, segment string) error {
	e := errors.As(err)
	if e == nil {
		e = errors.Wrap(err, errors.ErrorTypeConfig, "configuration error")
	}
	if e.Type != errors.ErrorTypeConfig {
		return e
	}
	existing, _ := e.Detail("path").(string)
	if existing == "" {
		return e.WithDetail("path", segment)
	}
	return e.WithDetail("path", segment+"/"+existing)
}

// ErrorPath returns the root-relative path key carried by a
// configuration error, or "" for other errors.
func ErrorPath(err error) string {
	e := errors.As(err)
	if e == nil {
		return ""
	}
	path, _ := e.Detail("path").(string)
	return path
}

// finalizeRoot anchors the accumulated path at the document root.
func finalizeRoot(err error) error {
	e := errors.As(err)
	if e == nil || e.Type != errors.ErrorTypeConfig {
		return err
	}
	path, _ := e.Detail("path").(string)
	if path == "" || path[0] == '/' {
		return e
	}
	e.WithDetail("path", "/"+path)
	e.Message = fmt.Sprintf("%s: %s", "/"+path, e.Message)
	return e
}
