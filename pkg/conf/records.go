package conf

import "runtime"

// Target records. The engine mutates them during one application pass;
// the host server owns them afterwards. Default values come from the
// constructors below, not from the schema document — a key absent from
// the source leaves the constructor's value in place.

// Config is the server-wide configuration record, created once at
// startup. Per-name records (namespaces, TLS contexts, replication
// DCs, log sinks) hang off it and are created on demand by the
// dynamic substructure builder.
type Config struct {
	Service  ServiceConfig
	Network  NetworkConfig
	ModLua   ModLuaConfig
	Security SecurityConfig

	Namespaces map[string]*Namespace
	TLSSpecs   map[string]*TLSSpec
	DCs        map[string]*DataCenter
	Sinks      []*LogSink
}

// NewConfig creates the server-wide record with startup defaults.
func NewConfig() *Config {
	return &Config{
		Service: ServiceConfig{
			ProtoFDMax:     15000,
			TickerInterval: 10,
			ServiceThreads: uint32(runtime.NumCPU()),
			MigrateThreads: 1,
			InfoThreads:    16,
			MinClusterSize: 1,
			WorkDirectory:  "/opt/strata",
			AutoPin:        "none",
		},
		Network: NetworkConfig{
			Service: NetServiceConfig{Port: 3000},
			Heartbeat: HeartbeatConfig{
				Mode:     "mesh",
				Port:     3002,
				Interval: 150,
				Timeout:  10,
				Protocol: "v3",
			},
			Fabric: FabricConfig{
				Port:            3001,
				ChannelBulkFDs:  2,
				ChannelCtrlFDs:  1,
				ChannelMetaFDs:  1,
				ChannelRWFDs:    8,
				KeepaliveTime:   1,
				KeepaliveIntvl:  1,
				KeepaliveProbes: 10,
			},
			Info: InfoConfig{Port: 3003},
		},
		ModLua: ModLuaConfig{CacheEnabled: true},
		Security: SecurityConfig{
			PrivilegeRefreshPeriod: 300,
			Syslog:                 SecSyslogConfig{LocalFacility: 0},
		},
		Namespaces: make(map[string]*Namespace),
		TLSSpecs:   make(map[string]*TLSSpec),
		DCs:        make(map[string]*DataCenter),
	}
}

// ServiceConfig holds process-wide service settings.
type ServiceConfig struct {
	User          string
	Group         string
	PIDFile       string
	WorkDirectory string
	ClusterName   string
	NodeID        uint64

	FeatureKeyFile  string
	FeatureKeyFiles []string

	ProtoFDMax    uint32
	ProtoFDIdleMS uint32

	TickerInterval     uint32 // seconds
	TransactionMaxTime uint64 // seconds
	TransactionRetry   uint32 // seconds

	ServiceThreads    uint32
	BatchIndexThreads uint32
	MigrateThreads    uint32
	QueryThreads      uint32
	InfoThreads       uint32
	MinClusterSize    uint32

	AutoPin string

	AdvertiseIPv6         bool
	LogLocalTime          bool
	MicrosecondHistograms bool
	EnableHealthCheck     bool
}

// NetworkConfig groups the four network sub-contexts.
type NetworkConfig struct {
	Service   NetServiceConfig
	Heartbeat HeartbeatConfig
	Fabric    FabricConfig
	Info      InfoConfig
}

// NetServiceConfig configures the client service listener.
type NetServiceConfig struct {
	Addresses       []string
	Port            uint16
	AccessAddresses []string
	AccessPort      uint16

	TLSName               string
	TLSPort               uint16
	TLSAuthenticateClient string
}

// HeartbeatConfig configures cluster heartbeats.
type HeartbeatConfig struct {
	Mode            string
	Addresses       []string
	MulticastGroups []string
	Port            uint16
	MeshSeeds       []HostPort
	Interval        uint32 // seconds
	Timeout         uint32 // missed-interval count
	MTU             uint32
	MulticastTTL    uint32
	Protocol        string
}

// FabricConfig configures the intra-cluster fabric transport.
type FabricConfig struct {
	Port             uint16
	ChannelBulkFDs   uint32
	ChannelCtrlFDs   uint32
	ChannelMetaFDs   uint32
	ChannelRWFDs     uint32
	KeepaliveEnabled bool
	KeepaliveTime    uint32 // seconds
	KeepaliveIntvl   uint32 // seconds
	KeepaliveProbes  uint32
	LatencyMax       uint32 // seconds
	SendThreads      uint32
}

// InfoConfig configures the info protocol listener.
type InfoConfig struct {
	Port uint16
}

// ModLuaConfig configures the Lua UDF runtime.
type ModLuaConfig struct {
	CacheEnabled bool
	UserPath     string
}

// TLSSpec is the per-name TLS context record, created once per context
// name found under the tls section.
type TLSSpec struct {
	Name string

	CAFile          string
	CAPath          string
	CertFile        string
	KeyFile         string
	KeyFilePassword string
	CipherSuite     string
	Protocols       string
	CertBlacklist   string
	RefreshPeriod   uint32 // seconds
}

// NewTLSSpec creates a TLS context record for the given name.
func NewTLSSpec(name string) *TLSSpec {
	return &TLSSpec{Name: name, Protocols: "TLSv1.2"}
}

// Namespace is the per-namespace record.
type Namespace struct {
	Name string

	ReplicationFactor uint32
	MemorySize        uint64 // bytes
	DefaultTTL        uint64 // seconds
	NSUPPeriod        uint32 // seconds

	HighWaterMemoryPct uint32
	HighWaterDiskPct   uint32
	StopWritesPct      uint32
	EvictTenthsPct     uint32

	ConflictResolutionPolicy string
	IndexType                string
	StrongConsistency        bool
	DisallowNullSetname      bool
	RackID                   uint32

	Storage StorageConfig
	Sets    map[string]*Set
}

// NewNamespace creates a namespace record with startup defaults.
func NewNamespace(name string) *Namespace {
	return &Namespace{
		Name:                     name,
		ReplicationFactor:        2,
		MemorySize:               4 << 30,
		NSUPPeriod:               120,
		HighWaterMemoryPct:       60,
		HighWaterDiskPct:         50,
		StopWritesPct:            90,
		EvictTenthsPct:           5,
		ConflictResolutionPolicy: "generation",
		IndexType:                "shmem",
		Storage:                  StorageConfig{Engine: "memory"},
		Sets:                     make(map[string]*Set),
	}
}

// StorageConfig configures a namespace's storage engine. Engine must
// be declared before any engine-specific field is applied.
type StorageConfig struct {
	Engine string

	Devices        []DevicePath
	Files          []string
	Filesize       uint64 // bytes
	WriteBlockSize uint32 // bytes
	DataInMemory   bool

	Compression       string
	CompressionLevel  uint32
	EncryptionKeyFile string

	DefragLWMPct   uint32
	DefragSleep    uint32
	MaxWriteCache  uint64 // bytes
	PostWriteQueue uint32
}

// Set is the per-set record within a namespace.
type Set struct {
	Name string

	StopWritesCount uint64
	StopWritesSize  uint64 // bytes
	DefaultTTL      uint64 // seconds
	DisableEviction bool
	EnableIndex     bool
}

// NewSet creates a set record for the given name.
func NewSet(name string) *Set {
	return &Set{Name: name}
}

// SecurityConfig configures access control.
type SecurityConfig struct {
	EnableQuotas           bool
	PrivilegeRefreshPeriod uint32 // seconds

	LDAP   LDAPConfig
	Log    SecLogConfig
	Syslog SecSyslogConfig
}

// LDAPConfig configures external LDAP authentication.
type LDAPConfig struct {
	Server                string
	QueryBaseDN           string
	QueryUserDN           string
	QueryUserPasswordFile string
	RoleQueryBaseDN       string
	RoleQueryPatterns     []string
	RoleQuerySearchOU     bool
	TLSCAFile             string
	UserDNPattern         string
	TokenHashMethod       string
	PollingPeriod         uint32 // seconds
	SessionTTL            uint32 // seconds
}

// SecLogConfig configures the security audit trail written to the log.
type SecLogConfig struct {
	ReportAuthentication bool
	ReportSysAdmin       bool
	ReportUserAdmin      bool
	ReportViolation      bool
	ReportDataOp         []ScopeSpec
}

// SecSyslogConfig configures the security audit trail sent to syslog.
type SecSyslogConfig struct {
	LocalFacility        uint32
	ReportAuthentication bool
	ReportSysAdmin       bool
	ReportUserAdmin      bool
	ReportViolation      bool
}

// DataCenter is the per-name replication destination record.
type DataCenter struct {
	Name string

	NodeAddressPorts []HostPort
	AuthUser         string
	AuthPasswordFile string
	AuthMode         string
	TLSName          string

	UseAlternateAccessAddress bool
	MaxThroughput             uint32
	Period                    uint32 // seconds

	Namespaces map[string]*DCNamespace
}

// NewDataCenter creates a replication destination record.
func NewDataCenter(name string) *DataCenter {
	return &DataCenter{
		Name:       name,
		AuthMode:   "none",
		Namespaces: make(map[string]*DCNamespace),
	}
}

// DCNamespace is the per-namespace record within a replication
// destination.
type DCNamespace struct {
	Namespace string

	BinPolicy             string
	ShipOnlySpecifiedSets bool
	ShippedSets           []string
	IgnoredSets           []string
	Forward               bool
	SCReplicationWait     uint32 // seconds
}

// NewDCNamespace creates a destination-namespace record.
func NewDCNamespace(namespace string) *DCNamespace {
	return &DCNamespace{Namespace: namespace, BinPolicy: "all"}
}

// SinkKind identifies a log sink's destination resource.
type SinkKind int

const (
	// SinkConsole writes to standard error.
	SinkConsole SinkKind = iota
	// SinkFile writes to a file.
	SinkFile
	// SinkSyslog writes to the system log.
	SinkSyslog
)

func (k SinkKind) String() string {
	switch k {
	case SinkConsole:
		return "console"
	case SinkFile:
		return "file"
	case SinkSyslog:
		return "syslog"
	default:
		return "unknown"
	}
}

// LogSink is the per-sink record, created by array position under the
// logging section. A sink must declare its kind before any other
// field is applied.
type LogSink struct {
	Kind SinkKind

	Path       string // file sink
	SyslogPath string
	Facility   string
	Tag        string

	Levels [NumCategories]LogLevel
}

// NewLogSink creates a sink record with every category at critical.
func NewLogSink(kind SinkKind) *LogSink {
	sink := &LogSink{Kind: kind}
	for i := range sink.Levels {
		sink.Levels[i] = LevelCritical
	}
	return sink
}
