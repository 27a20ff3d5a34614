package conf

import (
	"math"
	"strconv"

	"github.com/stratadb/strata/pkg/value"
)

// Dynamic substructure builders. Map-valued sections whose keys are
// operator-chosen names get one target record per distinct key, created
// the first time the key is seen and never re-created within a pass.
// Log sinks are the one ordinal case: records are created by array
// position, not by name.

const (
	maxNamespaceNameLen = 31
	maxSetNameLen       = 63
	maxDCNameLen        = 31
	maxTLSNameLen       = 255
)

func checkName(kind, name string, maxLen int) error {
	if name == "" {
		return configErrorf("%s name must not be empty", kind)
	}
	if len(name) > maxLen {
		return configErrorf("%s name %q longer than %d characters", kind, name, maxLen)
	}
	return nil
}

func applyNamespaces(a *Applier, target interface{}, v *value.Value) error {
	cfg, ok := target.(*Config)
	if !ok {
		return internalErrorf("namespaces applied to %T", target)
	}
	if v.Kind() != value.KindMap {
		return configErrorf("expected map, got %s", v.Kind())
	}
	for _, name := range v.Keys() {
		if err := checkName("namespace", name, maxNamespaceNameLen); err != nil {
			return err
		}
		if _, exists := cfg.Namespaces[name]; exists {
			return configErrorf("duplicate namespace %q", name)
		}
		ns := NewNamespace(name)
		cfg.Namespaces[name] = ns
		a.recordCreated("namespace")

		node, _ := v.Field(name)
		if err := a.Apply(ns, namespaceTable, node); err != nil {
			return prefixPath(err, name)
		}
	}
	return nil
}

func applySets(a *Applier, target interface{}, v *value.Value) error {
	ns, ok := target.(*Namespace)
	if !ok {
		return internalErrorf("sets applied to %T", target)
	}
	if v.Kind() != value.KindMap {
		return configErrorf("expected map, got %s", v.Kind())
	}
	for _, name := range v.Keys() {
		if err := checkName("set", name, maxSetNameLen); err != nil {
			return err
		}
		if _, exists := ns.Sets[name]; exists {
			return configErrorf("duplicate set %q", name)
		}
		set := NewSet(name)
		ns.Sets[name] = set
		a.recordCreated("set")

		node, _ := v.Field(name)
		if err := a.Apply(set, setTable, node); err != nil {
			return prefixPath(err, name)
		}
	}
	return nil
}

func applyTLSContexts(a *Applier, target interface{}, v *value.Value) error {
	cfg, ok := target.(*Config)
	if !ok {
		return internalErrorf("tls contexts applied to %T", target)
	}
	if v.Kind() != value.KindMap {
		return configErrorf("expected map, got %s", v.Kind())
	}
	for _, name := range v.Keys() {
		if err := checkName("tls context", name, maxTLSNameLen); err != nil {
			return err
		}
		if _, exists := cfg.TLSSpecs[name]; exists {
			return configErrorf("duplicate tls context %q", name)
		}
		spec := NewTLSSpec(name)
		cfg.TLSSpecs[name] = spec
		a.recordCreated("tls-context")

		node, _ := v.Field(name)
		if err := a.Apply(spec, tlsTable, node); err != nil {
			return prefixPath(err, name)
		}
	}
	return nil
}

// xdrTable keeps the replication section declarative; the whole
// section sits behind the enterprise gate on the top-level entry.
var xdrTable = newTable("xdr",
	Field{Path: "dcs", Handle: applyDCs},
)

func applyXDR(a *Applier, target interface{}, v *value.Value) error {
	if v.Kind() != value.KindMap {
		return configErrorf("expected map, got %s", v.Kind())
	}
	return a.Apply(target, xdrTable, v)
}

func applyDCs(a *Applier, target interface{}, v *value.Value) error {
	cfg, ok := target.(*Config)
	if !ok {
		return internalErrorf("dcs applied to %T", target)
	}
	if v.Kind() != value.KindMap {
		return configErrorf("expected map, got %s", v.Kind())
	}
	for _, name := range v.Keys() {
		if err := checkName("dc", name, maxDCNameLen); err != nil {
			return err
		}
		if _, exists := cfg.DCs[name]; exists {
			return configErrorf("duplicate dc %q", name)
		}
		dc := NewDataCenter(name)
		cfg.DCs[name] = dc
		a.recordCreated("dc")

		node, _ := v.Field(name)
		if err := a.Apply(dc, dcTable, node); err != nil {
			return prefixPath(err, name)
		}
	}
	return nil
}

func applyDCNamespaces(a *Applier, target interface{}, v *value.Value) error {
	dc, ok := target.(*DataCenter)
	if !ok {
		return internalErrorf("dc namespaces applied to %T", target)
	}
	if v.Kind() != value.KindMap {
		return configErrorf("expected map, got %s", v.Kind())
	}
	for _, name := range v.Keys() {
		if err := checkName("namespace", name, maxNamespaceNameLen); err != nil {
			return err
		}
		if _, exists := dc.Namespaces[name]; exists {
			return configErrorf("duplicate namespace %q", name)
		}
		dcns := NewDCNamespace(name)
		dc.Namespaces[name] = dcns
		a.recordCreated("dc-namespace")

		node, _ := v.Field(name)
		if err := a.Apply(dcns, dcNamespaceTable, node); err != nil {
			return prefixPath(err, name)
		}
	}
	return nil
}

// applyStorageEngine accepts either the scalar shorthand
// ("storage-engine: memory") or the block form with engine-specific
// fields. The engine type leads the block's table so it is known
// before any engine-specific field lands.
func applyStorageEngine(a *Applier, target interface{}, v *value.Value) error {
	ns, ok := target.(*Namespace)
	if !ok {
		return internalErrorf("storage-engine applied to %T", target)
	}
	if s, isStr := v.AsString(); isStr {
		for _, engine := range storageEngines {
			if s == engine {
				ns.Storage.Engine = s
				return nil
			}
		}
		return configErrorf("value %q not one of %v", s, storageEngines)
	}
	if v.Kind() != value.KindMap {
		return configErrorf("expected string or map, got %s", v.Kind())
	}
	return a.Apply(&ns.Storage, storageTable, v)
}

// applyLogging creates one sink record per array element. The sink's
// kind is resolved first: exactly one of the console/file/syslog keys
// must be present, since kind determines which destination resource
// is opened before any level applies.
func applyLogging(a *Applier, target interface{}, v *value.Value) error {
	cfg, ok := target.(*Config)
	if !ok {
		return internalErrorf("logging applied to %T", target)
	}
	if v.Kind() != value.KindList {
		return configErrorf("expected list, got %s", v.Kind())
	}
	for i, item := range v.Items() {
		if err := applyOneSink(a, cfg, item); err != nil {
			return prefixPath(err, strconv.Itoa(i))
		}
	}
	return nil
}

func applyOneSink(a *Applier, cfg *Config, item *value.Value) error {
	if item.Kind() != value.KindMap {
		return configErrorf("expected map, got %s", item.Kind())
	}

	kind, err := sinkKindOf(item)
	if err != nil {
		return err
	}

	sink := NewLogSink(kind)
	cfg.Sinks = append(cfg.Sinks, sink)
	a.recordCreated("log-sink")

	return a.Apply(sink, sinkTable, item)
}

func sinkKindOf(item *value.Value) (SinkKind, error) {
	var kinds []SinkKind
	if _, ok := item.Field("console"); ok {
		kinds = append(kinds, SinkConsole)
	}
	if _, ok := item.Field("file"); ok {
		kinds = append(kinds, SinkFile)
	}
	if _, ok := item.Field("syslog"); ok {
		kinds = append(kinds, SinkSyslog)
	}
	if len(kinds) != 1 {
		return 0, configErrorf("sink must declare exactly one of console, file, syslog")
	}
	return kinds[0], nil
}

func applySinkConsole(_ *Applier, target interface{}, v *value.Value) error {
	if _, ok := target.(*LogSink); !ok {
		return internalErrorf("console applied to %T", target)
	}
	b, ok := v.AsBool()
	if !ok {
		return configErrorf("expected boolean, got %s", v.Kind())
	}
	if !b {
		return configErrorf("a console sink cannot be declared disabled")
	}
	return nil
}

func applySinkFile(_ *Applier, target interface{}, v *value.Value) error {
	sink, ok := target.(*LogSink)
	if !ok {
		return internalErrorf("file applied to %T", target)
	}
	path, isStr := v.AsString()
	if !isStr {
		return configErrorf("expected string, got %s", v.Kind())
	}
	if path == "" {
		return configErrorf("file sink path must not be empty")
	}
	sink.Path = path
	return nil
}

func applySinkSyslog(a *Applier, target interface{}, v *value.Value) error {
	if v.Kind() != value.KindMap {
		return configErrorf("expected map, got %s", v.Kind())
	}
	return a.Apply(target, syslogSinkTable, v)
}

func applySinkContexts(a *Applier, target interface{}, v *value.Value) error {
	if v.Kind() != value.KindMap {
		return configErrorf("expected map, got %s", v.Kind())
	}
	return a.Apply(target, contextsTable, v)
}

// applyTLSRefreshPeriod writes the record field and announces the
// interval through the side-effect port, which already-initialized
// subsystems consume.
func applyTLSRefreshPeriod(a *Applier, target interface{}, v *value.Value) error {
	spec, ok := target.(*TLSSpec)
	if !ok {
		return internalErrorf("refresh-period applied to %T", target)
	}
	i, isInt := v.AsInt()
	if !isInt {
		return configErrorf("expected integer, got %s", v.Kind())
	}
	if i < 0 || i > math.MaxUint32 {
		return configErrorf("value %d out of range", i)
	}
	spec.RefreshPeriod = uint32(i)
	a.effects.TLSRefreshPeriod(spec.Name, spec.RefreshPeriod)
	return nil
}

func applyFabricKeepalive(a *Applier, target interface{}, v *value.Value) error {
	fc, ok := target.(*FabricConfig)
	if !ok {
		return internalErrorf("keepalive-enabled applied to %T", target)
	}
	b, isBool := v.AsBool()
	if !isBool {
		return configErrorf("expected boolean, got %s", v.Kind())
	}
	fc.KeepaliveEnabled = b
	a.effects.SocketKeepalive(b, fc.KeepaliveTime, fc.KeepaliveIntvl, fc.KeepaliveProbes)
	return nil
}
