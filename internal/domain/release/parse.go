package release

import (
	"errors"
	"regexp"
	"strconv"
)

// ErrNoVersion is returned when the input contains no four-component
// dotted version token. Callers in the resolver treat it as a signal to
// fall through to the next source, never as "no update available".
var ErrNoVersion = errors.New("no version token found")

// versionPattern matches the first four dot-separated integer groups,
// optionally followed by a hyphen and a hex-or-numeric build token.
// Examples it extracts from larger strings:
//
//	PlexMediaServer-1.42.1.10060-4e8b05daf-x86_64_DSM72.spk
//	/1.42.1.10060-4e8b05daf/
//	1.42.1.10060
var versionPattern = regexp.MustCompile(`(\d+)\.(\d+)\.(\d+)\.(\d+)(?:-([0-9a-fA-F]+))?`)

// Parse extracts a Candidate from free-form text: a package filename, a URL
// path segment, an API tag, or page text. Only the first full match counts;
// whatever follows the first hyphen after the version is the build identifier
// candidate, even if it is itself version-shaped.
//
// The Source field of the returned Candidate is left empty for the caller
// to attribute. Parse never fabricates components: if the text has no
// four-group dotted version, it returns ErrNoVersion.
func Parse(text string) (Candidate, error) {
	match := versionPattern.FindStringSubmatch(text)
	if match == nil {
		return Candidate{}, ErrNoVersion
	}

	var components [4]int

	for i := 0; i < 4; i++ {
		value, err := strconv.Atoi(match[i+1])
		if err != nil {
			// The pattern only admits digit runs; Atoi can still fail on
			// values exceeding the int range, which is not a real version.
			return Candidate{}, ErrNoVersion
		}

		components[i] = value
	}

	return Candidate{
		Version: Tuple{
			Major: components[0],
			Minor: components[1],
			Patch: components[2],
			Build: components[3],
		},
		BuildID: match[5],
	}, nil
}
