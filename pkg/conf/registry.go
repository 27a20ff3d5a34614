package conf

import (
	"strconv"

	"github.com/stratadb/strata/pkg/value"
)

// The descriptor registry. One table per context level, pure data,
// walked in order by the Applier. Keeping the mapping declarative
// makes the full key surface reviewable in one place: which keys
// exist, which are enterprise-gated, which are deprecated.

// section maps a fixed sub-block onto an embedded sub-record with its
// own table.
func section[P any, C any](path string, table *Table, get func(*P) *C) Field {
	return Field{Path: path, Handle: func(a *Applier, target interface{}, v *value.Value) error {
		parent, ok := target.(*P)
		if !ok {
			return internalErrorf("section %q applied to %T", path, target)
		}
		if v.Kind() != value.KindMap {
			return configErrorf("expected map, got %s", v.Kind())
		}
		return a.Apply(get(parent), *table, v)
	}}
}

// hostPortListField maps a scalar-or-list of "host:port[:tls-name]"
// strings onto a HostPort slice. Nothing is appended unless every
// element parses.
func hostPortListField[T any](path string, get func(*T) *[]HostPort) Field {
	return Field{Path: path, Set: func(f *Field, target interface{}, v *value.Value) error {
		rec, err := recordOf[T](f, target)
		if err != nil {
			return err
		}
		raw, err := stringValues(v)
		if err != nil {
			return err
		}
		parsed := make([]HostPort, 0, len(raw))
		for _, s := range raw {
			hp, err := parseHostPort(s)
			if err != nil {
				return err
			}
			parsed = append(parsed, hp)
		}
		*get(rec) = append(*get(rec), parsed...)
		return nil
	}}
}

// devicePathListField maps a scalar-or-list of "path[:shadow-path]"
// strings onto a DevicePath slice.
func devicePathListField[T any](path string, get func(*T) *[]DevicePath) Field {
	return Field{Path: path, Set: func(f *Field, target interface{}, v *value.Value) error {
		rec, err := recordOf[T](f, target)
		if err != nil {
			return err
		}
		raw, err := stringValues(v)
		if err != nil {
			return err
		}
		parsed := make([]DevicePath, 0, len(raw))
		for _, s := range raw {
			dp, err := parseDevicePath(s)
			if err != nil {
				return err
			}
			parsed = append(parsed, dp)
		}
		*get(rec) = append(*get(rec), parsed...)
		return nil
	}}
}

// scopeListField maps a scalar-or-list of "namespace [set]" strings
// onto a ScopeSpec slice.
func scopeListField[T any](path string, get func(*T) *[]ScopeSpec) Field {
	return Field{Path: path, Set: func(f *Field, target interface{}, v *value.Value) error {
		rec, err := recordOf[T](f, target)
		if err != nil {
			return err
		}
		raw, err := stringValues(v)
		if err != nil {
			return err
		}
		parsed := make([]ScopeSpec, 0, len(raw))
		for _, s := range raw {
			scope, err := parseScope(s)
			if err != nil {
				return err
			}
			parsed = append(parsed, scope)
		}
		*get(rec) = append(*get(rec), parsed...)
		return nil
	}}
}

// nodeIDField parses a hexadecimal node identity string.
func nodeIDField(path string, get func(*ServiceConfig) *uint64) Field {
	return Field{Path: path, Set: func(f *Field, target interface{}, v *value.Value) error {
		cfg, err := recordOf[ServiceConfig](f, target)
		if err != nil {
			return err
		}
		s, ok := v.AsString()
		if !ok {
			return configErrorf("expected hexadecimal string, got %s", v.Kind())
		}
		id, perr := strconv.ParseUint(s, 16, 64)
		if perr != nil || id == 0 {
			return configErrorf("%q is not a non-zero hexadecimal node id", s)
		}
		*get(cfg) = id
		return nil
	}}
}

// anyLevelField writes one level into every logging category. It is
// the wildcard entry of the contexts table and must precede the
// per-category entries so they can override it.
func anyLevelField() Field {
	return Field{Path: "any", Wildcard: true, Set: func(f *Field, target interface{}, v *value.Value) error {
		sink, err := recordOf[LogSink](f, target)
		if err != nil {
			return err
		}
		s, ok := v.AsString()
		if !ok {
			return configErrorf("expected string, got %s", v.Kind())
		}
		level, lerr := parseLogLevel(s)
		if lerr != nil {
			return lerr
		}
		for i := range sink.Levels {
			sink.Levels[i] = level
		}
		return nil
	}}
}

// levelField writes one category's level on a sink.
func levelField(name string, cat Category) Field {
	return Field{Path: name, Set: func(f *Field, target interface{}, v *value.Value) error {
		sink, err := recordOf[LogSink](f, target)
		if err != nil {
			return err
		}
		s, ok := v.AsString()
		if !ok {
			return configErrorf("expected string, got %s", v.Kind())
		}
		level, lerr := parseLogLevel(s)
		if lerr != nil {
			return lerr
		}
		sink.Levels[cat] = level
		return nil
	}}
}

var autoPinModes = []string{"none", "cpu", "numa", "adq"}
var heartbeatModes = []string{"mesh", "multicast"}
var heartbeatProtocols = []string{"none", "v3"}
var tlsClientAuth = []string{"any", "false", "true"}
var conflictPolicies = []string{"generation", "last-update-time"}
var indexTypes = []string{"shmem", "pmem", "flash"}
var storageEngines = []string{"memory", "device"}
var compressionAlgos = []string{"none", "lz4", "snappy", "zstd"}
var binPolicies = []string{"all", "no-bins", "only-changed", "changed-and-specified"}
var authModes = []string{"none", "internal", "external"}
var hashMethods = []string{"sha-256", "sha-512"}

var serviceTable = newTable("service",
	stringField("user", func(s *ServiceConfig) *string { return &s.User }),
	stringField("group", func(s *ServiceConfig) *string { return &s.Group }),
	stringField("pidfile", func(s *ServiceConfig) *string { return &s.PIDFile }),
	stringField("work-directory", func(s *ServiceConfig) *string { return &s.WorkDirectory }),
	stringField("cluster-name", func(s *ServiceConfig) *string { return &s.ClusterName }),
	nodeIDField("node-id", func(s *ServiceConfig) *uint64 { return &s.NodeID }),
	stringField("feature-key-file", func(s *ServiceConfig) *string { return &s.FeatureKeyFile }).enterprise(),
	stringListField("feature-key-files", func(s *ServiceConfig) *[]string { return &s.FeatureKeyFiles }).enterprise(),
	u32Field("proto-fd-max", func(s *ServiceConfig) *uint32 { return &s.ProtoFDMax }).bounds(1, 0),
	u32Field("proto-fd-idle-ms", func(s *ServiceConfig) *uint32 { return &s.ProtoFDIdleMS }).
		deprecated("proto-fd-idle-ms is ignored; idle connections are reaped automatically"),
	u32Field("ticker-interval", func(s *ServiceConfig) *uint32 { return &s.TickerInterval }).unit(UnitTime).bounds(1, 0),
	u64Field("transaction-max-time", func(s *ServiceConfig) *uint64 { return &s.TransactionMaxTime }).unit(UnitTime),
	u32Field("transaction-retry", func(s *ServiceConfig) *uint32 { return &s.TransactionRetry }).unit(UnitTime),
	u32Field("service-threads", func(s *ServiceConfig) *uint32 { return &s.ServiceThreads }).bounds(1, 256),
	u32Field("batch-index-threads", func(s *ServiceConfig) *uint32 { return &s.BatchIndexThreads }).bounds(1, 256),
	u32Field("migrate-threads", func(s *ServiceConfig) *uint32 { return &s.MigrateThreads }).bounds(0, 100),
	u32Field("query-threads", func(s *ServiceConfig) *uint32 { return &s.QueryThreads }).bounds(1, 128),
	u32Field("info-threads", func(s *ServiceConfig) *uint32 { return &s.InfoThreads }).bounds(1, 256),
	u32Field("min-cluster-size", func(s *ServiceConfig) *uint32 { return &s.MinClusterSize }).bounds(1, 128),
	enumField("auto-pin", autoPinModes, func(s *ServiceConfig) *string { return &s.AutoPin }),
	boolField("advertise-ipv6", func(s *ServiceConfig) *bool { return &s.AdvertiseIPv6 }),
	boolField("log-local-time", func(s *ServiceConfig) *bool { return &s.LogLocalTime }),
	boolField("microsecond-histograms", func(s *ServiceConfig) *bool { return &s.MicrosecondHistograms }),
	boolField("enable-health-check", func(s *ServiceConfig) *bool { return &s.EnableHealthCheck }),
)

var netServiceTable = newTable("network-service",
	stringListField("address", func(n *NetServiceConfig) *[]string { return &n.Addresses }),
	u16Field("port", func(n *NetServiceConfig) *uint16 { return &n.Port }).bounds(1, 0),
	stringListField("access-address", func(n *NetServiceConfig) *[]string { return &n.AccessAddresses }),
	u16Field("access-port", func(n *NetServiceConfig) *uint16 { return &n.AccessPort }).bounds(1, 0),
	stringField("tls-name", func(n *NetServiceConfig) *string { return &n.TLSName }),
	u16Field("tls-port", func(n *NetServiceConfig) *uint16 { return &n.TLSPort }).bounds(1, 0),
	enumField("tls-authenticate-client", tlsClientAuth,
		func(n *NetServiceConfig) *string { return &n.TLSAuthenticateClient }),
)

var heartbeatTable = newTable("network-heartbeat",
	enumField("mode", heartbeatModes, func(h *HeartbeatConfig) *string { return &h.Mode }),
	stringListField("address", func(h *HeartbeatConfig) *[]string { return &h.Addresses }),
	stringListField("multicast-group", func(h *HeartbeatConfig) *[]string { return &h.MulticastGroups }),
	u16Field("port", func(h *HeartbeatConfig) *uint16 { return &h.Port }).bounds(1, 0),
	hostPortListField("mesh-seed-address-port", func(h *HeartbeatConfig) *[]HostPort { return &h.MeshSeeds }),
	u32Field("interval", func(h *HeartbeatConfig) *uint32 { return &h.Interval }).unit(UnitTime).bounds(1, 600),
	u32Field("timeout", func(h *HeartbeatConfig) *uint32 { return &h.Timeout }).bounds(3, 1000),
	u32Field("mtu", func(h *HeartbeatConfig) *uint32 { return &h.MTU }),
	u32Field("multicast-ttl", func(h *HeartbeatConfig) *uint32 { return &h.MulticastTTL }).bounds(0, 255),
	enumField("protocol", heartbeatProtocols, func(h *HeartbeatConfig) *string { return &h.Protocol }),
)

var fabricTable = newTable("network-fabric",
	u16Field("port", func(fc *FabricConfig) *uint16 { return &fc.Port }).bounds(1, 0),
	u32Field("channel-bulk-fds", func(fc *FabricConfig) *uint32 { return &fc.ChannelBulkFDs }).bounds(1, 128),
	u32Field("channel-ctrl-fds", func(fc *FabricConfig) *uint32 { return &fc.ChannelCtrlFDs }).bounds(1, 128),
	u32Field("channel-meta-fds", func(fc *FabricConfig) *uint32 { return &fc.ChannelMetaFDs }).bounds(1, 128),
	u32Field("channel-rw-fds", func(fc *FabricConfig) *uint32 { return &fc.ChannelRWFDs }).bounds(1, 128),
	u32Field("keepalive-time", func(fc *FabricConfig) *uint32 { return &fc.KeepaliveTime }).unit(UnitTime).bounds(1, 0),
	u32Field("keepalive-intvl", func(fc *FabricConfig) *uint32 { return &fc.KeepaliveIntvl }).unit(UnitTime).bounds(1, 0),
	u32Field("keepalive-probes", func(fc *FabricConfig) *uint32 { return &fc.KeepaliveProbes }).bounds(1, 100),
	// keepalive-enabled follows the tunables above so the side-effect
	// port sees their final values.
	Field{Path: "keepalive-enabled", Handle: applyFabricKeepalive},
	u32Field("latency-max", func(fc *FabricConfig) *uint32 { return &fc.LatencyMax }).unit(UnitTime),
	u32Field("send-threads", func(fc *FabricConfig) *uint32 { return &fc.SendThreads }).bounds(1, 128),
)

var infoTable = newTable("network-info",
	u16Field("port", func(ic *InfoConfig) *uint16 { return &ic.Port }).bounds(1, 0),
)

var networkTable = newTable("network",
	section("service", &netServiceTable, func(n *NetworkConfig) *NetServiceConfig { return &n.Service }),
	section("heartbeat", &heartbeatTable, func(n *NetworkConfig) *HeartbeatConfig { return &n.Heartbeat }),
	section("fabric", &fabricTable, func(n *NetworkConfig) *FabricConfig { return &n.Fabric }),
	section("info", &infoTable, func(n *NetworkConfig) *InfoConfig { return &n.Info }),
)

var tlsTable = newTable("tls",
	stringField("ca-file", func(t *TLSSpec) *string { return &t.CAFile }),
	stringField("ca-path", func(t *TLSSpec) *string { return &t.CAPath }),
	stringField("cert-file", func(t *TLSSpec) *string { return &t.CertFile }),
	stringField("key-file", func(t *TLSSpec) *string { return &t.KeyFile }),
	stringField("key-file-password", func(t *TLSSpec) *string { return &t.KeyFilePassword }),
	stringField("cipher-suite", func(t *TLSSpec) *string { return &t.CipherSuite }),
	stringField("protocols", func(t *TLSSpec) *string { return &t.Protocols }),
	stringField("cert-blacklist", func(t *TLSSpec) *string { return &t.CertBlacklist }).
		deprecated("cert-blacklist is ignored; revoke certificates through the CA instead"),
	Field{Path: "refresh-period", Unit: UnitTime, Handle: applyTLSRefreshPeriod},
)

var modLuaTable = newTable("mod-lua",
	boolField("cache-enabled", func(m *ModLuaConfig) *bool { return &m.CacheEnabled }),
	stringField("user-path", func(m *ModLuaConfig) *string { return &m.UserPath }),
)

var storageTable = newTable("storage-engine",
	enumField("type", storageEngines, func(s *StorageConfig) *string { return &s.Engine }),
	devicePathListField("devices", func(s *StorageConfig) *[]DevicePath { return &s.Devices }),
	stringListField("files", func(s *StorageConfig) *[]string { return &s.Files }),
	u64Field("filesize", func(s *StorageConfig) *uint64 { return &s.Filesize }).unit(UnitSize64),
	u32Field("write-block-size", func(s *StorageConfig) *uint32 { return &s.WriteBlockSize }).unit(UnitSize32).bounds(1<<10, 8<<20),
	boolField("data-in-memory", func(s *StorageConfig) *bool { return &s.DataInMemory }).
		deprecated("data-in-memory is superseded by the memory storage engine"),
	enumField("compression", compressionAlgos, func(s *StorageConfig) *string { return &s.Compression }).enterprise(),
	u32Field("compression-level", func(s *StorageConfig) *uint32 { return &s.CompressionLevel }).bounds(1, 9).enterprise(),
	stringField("encryption-key-file", func(s *StorageConfig) *string { return &s.EncryptionKeyFile }).enterprise(),
	u32Field("defrag-lwm-pct", func(s *StorageConfig) *uint32 { return &s.DefragLWMPct }).bounds(1, 99),
	u32Field("defrag-sleep", func(s *StorageConfig) *uint32 { return &s.DefragSleep }),
	u64Field("max-write-cache", func(s *StorageConfig) *uint64 { return &s.MaxWriteCache }).unit(UnitSize64),
	u32Field("post-write-queue", func(s *StorageConfig) *uint32 { return &s.PostWriteQueue }).bounds(0, 4096),
)

var setTable = newTable("namespace-set",
	u64Field("stop-writes-count", func(s *Set) *uint64 { return &s.StopWritesCount }),
	u64Field("stop-writes-size", func(s *Set) *uint64 { return &s.StopWritesSize }).unit(UnitSize64),
	u64Field("default-ttl", func(s *Set) *uint64 { return &s.DefaultTTL }).unit(UnitTime),
	boolField("disable-eviction", func(s *Set) *bool { return &s.DisableEviction }),
	boolField("enable-index", func(s *Set) *bool { return &s.EnableIndex }),
)

var namespaceTable = newTable("namespace",
	u32Field("replication-factor", func(n *Namespace) *uint32 { return &n.ReplicationFactor }).bounds(1, 8),
	u64Field("memory-size", func(n *Namespace) *uint64 { return &n.MemorySize }).unit(UnitSize64),
	u64Field("default-ttl", func(n *Namespace) *uint64 { return &n.DefaultTTL }).unit(UnitTime),
	u32Field("nsup-period", func(n *Namespace) *uint32 { return &n.NSUPPeriod }).unit(UnitTime),
	u32Field("high-water-memory-pct", func(n *Namespace) *uint32 { return &n.HighWaterMemoryPct }).bounds(0, 100),
	u32Field("high-water-disk-pct", func(n *Namespace) *uint32 { return &n.HighWaterDiskPct }).bounds(0, 100),
	u32Field("stop-writes-pct", func(n *Namespace) *uint32 { return &n.StopWritesPct }).bounds(0, 100),
	u32Field("evict-tenths-pct", func(n *Namespace) *uint32 { return &n.EvictTenthsPct }),
	enumField("conflict-resolution-policy", conflictPolicies,
		func(n *Namespace) *string { return &n.ConflictResolutionPolicy }),
	enumField("index-type", indexTypes, func(n *Namespace) *string { return &n.IndexType }),
	boolField("strong-consistency", func(n *Namespace) *bool { return &n.StrongConsistency }).enterprise(),
	boolField("disallow-null-setname", func(n *Namespace) *bool { return &n.DisallowNullSetname }),
	u32Field("rack-id", func(n *Namespace) *uint32 { return &n.RackID }).bounds(0, 1000000).enterprise(),
	Field{Path: "storage-engine", Handle: applyStorageEngine},
	Field{Path: "sets", Handle: applySets},
)

var dcNamespaceTable = newTable("dc-namespace",
	enumField("bin-policy", binPolicies, func(d *DCNamespace) *string { return &d.BinPolicy }),
	boolField("ship-only-specified-sets", func(d *DCNamespace) *bool { return &d.ShipOnlySpecifiedSets }),
	stringListField("ship-sets", func(d *DCNamespace) *[]string { return &d.ShippedSets }),
	stringListField("ignore-sets", func(d *DCNamespace) *[]string { return &d.IgnoredSets }),
	boolField("forward", func(d *DCNamespace) *bool { return &d.Forward }),
	u32Field("sc-replication-wait", func(d *DCNamespace) *uint32 { return &d.SCReplicationWait }).unit(UnitTime),
)

var dcTable = newTable("dc",
	hostPortListField("node-address-port", func(d *DataCenter) *[]HostPort { return &d.NodeAddressPorts }),
	stringField("auth-user", func(d *DataCenter) *string { return &d.AuthUser }),
	stringField("auth-password-file", func(d *DataCenter) *string { return &d.AuthPasswordFile }),
	enumField("auth-mode", authModes, func(d *DataCenter) *string { return &d.AuthMode }),
	stringField("tls-name", func(d *DataCenter) *string { return &d.TLSName }),
	boolField("use-alternate-access-address", func(d *DataCenter) *bool { return &d.UseAlternateAccessAddress }),
	u32Field("max-throughput", func(d *DataCenter) *uint32 { return &d.MaxThroughput }),
	u32Field("period", func(d *DataCenter) *uint32 { return &d.Period }).unit(UnitTime),
	Field{Path: "namespaces", Handle: applyDCNamespaces},
)

var ldapTable = newTable("security-ldap",
	stringField("server", func(l *LDAPConfig) *string { return &l.Server }),
	stringField("query-base-dn", func(l *LDAPConfig) *string { return &l.QueryBaseDN }),
	stringField("query-user-dn", func(l *LDAPConfig) *string { return &l.QueryUserDN }),
	stringField("query-user-password-file", func(l *LDAPConfig) *string { return &l.QueryUserPasswordFile }),
	stringField("role-query-base-dn", func(l *LDAPConfig) *string { return &l.RoleQueryBaseDN }),
	stringListField("role-query-patterns", func(l *LDAPConfig) *[]string { return &l.RoleQueryPatterns }),
	boolField("role-query-search-ou", func(l *LDAPConfig) *bool { return &l.RoleQuerySearchOU }),
	stringField("tls-ca-file", func(l *LDAPConfig) *string { return &l.TLSCAFile }),
	stringField("user-dn-pattern", func(l *LDAPConfig) *string { return &l.UserDNPattern }),
	enumField("token-hash-method", hashMethods, func(l *LDAPConfig) *string { return &l.TokenHashMethod }),
	u32Field("polling-period", func(l *LDAPConfig) *uint32 { return &l.PollingPeriod }).unit(UnitTime).bounds(0, 86400),
	u32Field("session-ttl", func(l *LDAPConfig) *uint32 { return &l.SessionTTL }).unit(UnitTime).bounds(120, 864000),
)

var secLogTable = newTable("security-log",
	boolField("report-authentication", func(l *SecLogConfig) *bool { return &l.ReportAuthentication }),
	boolField("report-sys-admin", func(l *SecLogConfig) *bool { return &l.ReportSysAdmin }),
	boolField("report-user-admin", func(l *SecLogConfig) *bool { return &l.ReportUserAdmin }),
	boolField("report-violation", func(l *SecLogConfig) *bool { return &l.ReportViolation }),
	scopeListField("report-data-op", func(l *SecLogConfig) *[]ScopeSpec { return &l.ReportDataOp }),
)

var secSyslogTable = newTable("security-syslog",
	u32Field("local", func(s *SecSyslogConfig) *uint32 { return &s.LocalFacility }).bounds(0, 7),
	boolField("report-authentication", func(s *SecSyslogConfig) *bool { return &s.ReportAuthentication }),
	boolField("report-sys-admin", func(s *SecSyslogConfig) *bool { return &s.ReportSysAdmin }),
	boolField("report-user-admin", func(s *SecSyslogConfig) *bool { return &s.ReportUserAdmin }),
	boolField("report-violation", func(s *SecSyslogConfig) *bool { return &s.ReportViolation }),
)

var securityTable = newTable("security",
	boolField("enable-quotas", func(s *SecurityConfig) *bool { return &s.EnableQuotas }),
	u32Field("privilege-refresh-period", func(s *SecurityConfig) *uint32 { return &s.PrivilegeRefreshPeriod }).
		unit(UnitTime).bounds(10, 86400),
	section("ldap", &ldapTable, func(s *SecurityConfig) *LDAPConfig { return &s.LDAP }).enterprise(),
	section("log", &secLogTable, func(s *SecurityConfig) *SecLogConfig { return &s.Log }),
	section("syslog", &secSyslogTable, func(s *SecurityConfig) *SecSyslogConfig { return &s.Syslog }),
)

var syslogSinkTable = newTable("logging-syslog",
	stringField("path", func(s *LogSink) *string { return &s.SyslogPath }),
	stringField("facility", func(s *LogSink) *string { return &s.Facility }),
	stringField("tag", func(s *LogSink) *string { return &s.Tag }),
)

// contextsTable holds the wildcard "any" entry first, then one entry
// per category, so a specific category always overrides the wildcard.
var contextsTable = buildContextsTable()

func buildContextsTable() Table {
	fields := make([]Field, 0, NumCategories+1)
	fields = append(fields, anyLevelField())
	for _, cn := range categoryNames {
		fields = append(fields, levelField(cn.Name, cn.Category))
	}
	return newTable("logging-contexts", fields...)
}

// sinkTable is applied per log sink after its kind is known. The kind
// keys come first: kind determines which destination resource is
// opened before any level is set.
var sinkTable = newTable("logging-sink",
	Field{Path: "console", Handle: applySinkConsole},
	Field{Path: "file", Handle: applySinkFile},
	Field{Path: "syslog", Handle: applySinkSyslog},
	Field{Path: "contexts", Handle: applySinkContexts},
)

// topTable is walked against the document root.
var topTable = newTable("top",
	section("service", &serviceTable, func(c *Config) *ServiceConfig { return &c.Service }),
	Field{Path: "logging", Handle: applyLogging},
	section("network", &networkTable, func(c *Config) *NetworkConfig { return &c.Network }),
	Field{Path: "namespaces", Handle: applyNamespaces},
	section("mod-lua", &modLuaTable, func(c *Config) *ModLuaConfig { return &c.ModLua }),
	section("security", &securityTable, func(c *Config) *SecurityConfig { return &c.Security }),
	Field{Path: "tls", Handle: applyTLSContexts},
	Field{Path: "xdr", Handle: applyXDR, Enterprise: true},
)
