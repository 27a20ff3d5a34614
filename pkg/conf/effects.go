package conf

// SideEffects is the port through which a small number of custom
// handlers mutate process-wide state outside the target record set.
// The host supplies an implementation wired to the real subsystems;
// the default is inert. The calls must be safe before those
// subsystems start; they are not safe concurrently with a live
// application pass.
type SideEffects interface {
	// TLSRefreshPeriod announces a TLS context's credential refresh
	// interval in seconds.
	TLSRefreshPeriod(context string, seconds uint32)

	// SocketKeepalive announces the fabric socket keepalive defaults.
	SocketKeepalive(enabled bool, timeSec, intervalSec, probes uint32)
}

// NopEffects discards all side effects. It is the default and the
// usual substitution in tests.
type NopEffects struct{}

// TLSRefreshPeriod implements SideEffects.
func (NopEffects) TLSRefreshPeriod(string, uint32) {}

// SocketKeepalive implements SideEffects.
func (NopEffects) SocketKeepalive(bool, uint32, uint32, uint32) {}
