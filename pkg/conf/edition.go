package conf

// Edition distinguishes the restricted community build from the
// unrestricted enterprise build. Every enterprise-only descriptor
// consults it before any value inspection.
type Edition int

const (
	// Community is the restricted build.
	Community Edition = iota
	// Enterprise is the unrestricted build.
	Enterprise
)

// Enterprise reports whether the edition permits enterprise-only keys.
func (e Edition) Enterprise() bool {
	return e == Enterprise
}

func (e Edition) String() string {
	if e == Enterprise {
		return "enterprise"
	}
	return "community"
}
