package conf

import (
	"strconv"
	"strings"
)

// HostPort is the parsed form of a "host:port[:tls-name]" triple.
// TLSName is empty when the optional trailing component is absent.
type HostPort struct {
	Host    string
	Port    uint16
	TLSName string
}

// parseHostPort parses a ':'-separated "host:port[:name]" string.
// Empty host, missing or unparsable port, and extra components are
// errors; the optional name, when present, must be non-empty.
func parseHostPort(s string) (HostPort, error) {
	parts := strings.Split(s, ":")
	if len(parts) < 2 || len(parts) > 3 {
		return HostPort{}, configErrorf("%q is not of the form host:port[:tls-name]", s)
	}
	if parts[0] == "" {
		return HostPort{}, configErrorf("%q has an empty host", s)
	}
	port, err := strconv.ParseUint(parts[1], 10, 16)
	if err != nil || port == 0 {
		return HostPort{}, configErrorf("%q has an invalid port %q", s, parts[1])
	}
	hp := HostPort{Host: parts[0], Port: uint16(port)}
	if len(parts) == 3 {
		if parts[2] == "" {
			return HostPort{}, configErrorf("%q has an empty tls-name", s)
		}
		hp.TLSName = parts[2]
	}
	return hp, nil
}

// DevicePath is the parsed form of a "path[:shadow-path]" pair.
// Shadow is empty when the optional component is absent.
type DevicePath struct {
	Path   string
	Shadow string
}

// parseDevicePath parses a ':'-separated "path[:shadow-path]" string.
func parseDevicePath(s string) (DevicePath, error) {
	parts := strings.Split(s, ":")
	if len(parts) > 2 {
		return DevicePath{}, configErrorf("%q is not of the form path[:shadow-path]", s)
	}
	if parts[0] == "" {
		return DevicePath{}, configErrorf("%q has an empty device path", s)
	}
	dp := DevicePath{Path: parts[0]}
	if len(parts) == 2 {
		if parts[1] == "" {
			return DevicePath{}, configErrorf("%q has an empty shadow path", s)
		}
		dp.Shadow = parts[1]
	}
	return dp, nil
}

// ScopeSpec is the parsed form of a whitespace-separated
// "namespace [set]" pair. Set is empty when absent.
type ScopeSpec struct {
	Namespace string
	Set       string
}

// parseScope parses a whitespace-separated "namespace [set]" string.
func parseScope(s string) (ScopeSpec, error) {
	parts := strings.Fields(s)
	switch len(parts) {
	case 1:
		return ScopeSpec{Namespace: parts[0]}, nil
	case 2:
		return ScopeSpec{Namespace: parts[0], Set: parts[1]}, nil
	default:
		return ScopeSpec{}, configErrorf("%q is not of the form \"namespace [set]\"", s)
	}
}
