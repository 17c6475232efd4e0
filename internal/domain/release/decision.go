package release

import "fmt"

// Outcome classifies what an update run should do.
type Outcome string

const (
	// NoUpdate means the installed package is current; nothing to do.
	NoUpdate Outcome = "no-update"
	// UpdateVersion means upstream published a strictly newer version.
	UpdateVersion Outcome = "update-version"
	// UpdateBuild means the version matches but upstream carries a
	// different build artifact and the user asked for build-level updates.
	UpdateBuild Outcome = "update-build"
	// LatestOlderThanInstalled means the resolved candidate is older than
	// the local install. Nothing is done, but the case is surfaced
	// distinctly because it usually indicates a stale or bogus source.
	LatestOlderThanInstalled Outcome = "latest-older-than-installed"
)

// Decision is the resolved action for one run: an outcome, the target
// candidate when action is warranted, and a human-readable justification.
// It is computed once per run and never persisted.
type Decision struct {
	Outcome Outcome
	Target  Candidate
	Reason  string
}

// Actionable reports whether the decision calls for a download and install.
func (d Decision) Actionable() bool {
	return d.Outcome == UpdateVersion || d.Outcome == UpdateBuild
}

// Decide combines the installed state, the resolved latest candidate, and
// the user's build-update flag into a Decision. It is a pure function.
//
// A version bump always wins. When versions are equal, a differing known
// build identifier upgrades only on request: upstream republishes the same
// version with cosmetic build-hash changes, and reinstalling for those by
// default is churn.
func Decide(installed InstalledState, latest Candidate, forceBuild bool) Decision {
	switch installed.Version.Compare(latest.Version) {
	case -1:
		return Decision{
			Outcome: UpdateVersion,
			Target:  latest,
			Reason: fmt.Sprintf("installed %s is older than %s from %s",
				installed.Release(), latest.Release(), latest.Source),
		}

	case 1:
		return Decision{
			Outcome: LatestOlderThanInstalled,
			Reason: fmt.Sprintf("installed %s is newer than %s reported by %s; leaving it alone",
				installed.Release(), latest.Release(), latest.Source),
		}
	}

	if forceBuild && latest.BuildID != "" && installed.BuildID != latest.BuildID {
		return Decision{
			Outcome: UpdateBuild,
			Target:  latest,
			Reason: fmt.Sprintf("version %s unchanged but build %q differs from installed %q",
				latest.Version, latest.BuildID, installed.BuildID),
		}
	}

	return Decision{
		Outcome: NoUpdate,
		Reason:  fmt.Sprintf("installed %s is current", installed.Release()),
	}
}
