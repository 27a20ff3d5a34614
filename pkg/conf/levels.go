package conf

// LogLevel is the severity threshold of one logging category on one
// sink.
type LogLevel int

const (
	// LevelCritical logs only unrecoverable conditions.
	LevelCritical LogLevel = iota
	// LevelWarning adds recoverable anomalies.
	LevelWarning
	// LevelInfo adds normal operational messages.
	LevelInfo
	// LevelDebug adds diagnostic detail.
	LevelDebug
	// LevelDetail adds per-operation tracing.
	LevelDetail
)

var levelNames = map[string]LogLevel{
	"critical": LevelCritical,
	"warning":  LevelWarning,
	"info":     LevelInfo,
	"debug":    LevelDebug,
	"detail":   LevelDetail,
}

func (l LogLevel) String() string {
	switch l {
	case LevelCritical:
		return "critical"
	case LevelWarning:
		return "warning"
	case LevelInfo:
		return "info"
	case LevelDebug:
		return "debug"
	case LevelDetail:
		return "detail"
	default:
		return "unknown"
	}
}

// parseLogLevel resolves a level name from the document.
func parseLogLevel(s string) (LogLevel, error) {
	l, ok := levelNames[s]
	if !ok {
		return 0, configErrorf("unknown log level %q", s)
	}
	return l, nil
}

// Category is one logging subsystem category. Each sink holds an
// independent level per category.
type Category int

const (
	// CategoryMisc covers uncategorized messages.
	CategoryMisc Category = iota
	// CategoryConfig covers configuration processing.
	CategoryConfig
	// CategoryService covers the client service.
	CategoryService
	// CategoryNetwork covers network listeners.
	CategoryNetwork
	// CategoryHeartbeat covers cluster heartbeats.
	CategoryHeartbeat
	// CategoryFabric covers the intra-cluster fabric.
	CategoryFabric
	// CategoryStorage covers the storage engine.
	CategoryStorage
	// CategoryIndex covers primary and secondary indexes.
	CategoryIndex
	// CategoryReplication covers cross-cluster replication.
	CategoryReplication
	// CategoryMigrate covers partition migration.
	CategoryMigrate
	// CategorySecurity covers access control.
	CategorySecurity
	// CategoryQuery covers query execution.
	CategoryQuery
	// CategoryInfo covers the info protocol.
	CategoryInfo

	// NumCategories is the number of logging categories.
	NumCategories int = iota
)

// categoryNames lists every category with its document key, in the
// order the per-category descriptors are declared.
var categoryNames = []struct {
	Name     string
	Category Category
}{
	{"misc", CategoryMisc},
	{"config", CategoryConfig},
	{"service", CategoryService},
	{"network", CategoryNetwork},
	{"heartbeat", CategoryHeartbeat},
	{"fabric", CategoryFabric},
	{"storage", CategoryStorage},
	{"index", CategoryIndex},
	{"replication", CategoryReplication},
	{"migrate", CategoryMigrate},
	{"security", CategorySecurity},
	{"query", CategoryQuery},
	{"info", CategoryInfo},
}
