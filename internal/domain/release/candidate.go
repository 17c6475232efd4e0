package release

// Candidate is a parsed, source-attributed version and build pairing
// produced by a single upstream query. It is immutable once constructed.
type Candidate struct {
	// Version is the normalized four-component version.
	Version Tuple
	// BuildID is the opaque build identifier associated with the version.
	// It is compared only for equality and may be empty when the source
	// did not expose one.
	BuildID string
	// Source names the upstream query that produced this candidate,
	// for audit logging.
	Source string
	// ChecksumSHA1 is the hex artifact checksum when the source publishes
	// one (the downloads API does); empty otherwise.
	ChecksumSHA1 string
}

// Release renders the "version-hash" label used in artifact paths,
// e.g. "1.42.1.10060-4e8b05daf". Without a build identifier it is just
// the dotted version.
func (c Candidate) Release() string {
	if c.BuildID == "" {
		return c.Version.String()
	}

	return c.Version.String() + "-" + c.BuildID
}

// InstalledState is the locally installed version and build identifier,
// read once per run from package metadata.
type InstalledState struct {
	Version Tuple
	BuildID string
}

// NotInstalled is the sentinel state for a machine without the package:
// version 0.0.0.0 and no build identifier.
var NotInstalled = InstalledState{}

// Installed reports whether the state describes an actual installation.
func (s InstalledState) Installed() bool {
	return !s.Version.IsZero()
}

// Release renders the installed "version-hash" label, mirroring Candidate.
func (s InstalledState) Release() string {
	if s.BuildID == "" {
		return s.Version.String()
	}

	return s.Version.String() + "-" + s.BuildID
}
