package release

import (
	"fmt"
	"strconv"
	"strings"
)

// Tuple is the four-component numeric version used as the authoritative
// ordering key: major.minor.patch.build.
type Tuple struct {
	Major int
	Minor int
	Patch int
	Build int
}

// String renders the tuple in dotted form, e.g. "1.42.1.10060".
func (t Tuple) String() string {
	return fmt.Sprintf("%d.%d.%d.%d", t.Major, t.Minor, t.Patch, t.Build)
}

// IsZero reports whether the tuple is the 0.0.0.0 sentinel.
func (t Tuple) IsZero() bool {
	return t == Tuple{}
}

// Compare orders two tuples component-wise left to right.
// It returns -1 when t is older than other, 0 on equality, and 1 when newer.
// Equality requires all four components to match; there are no partial states.
func (t Tuple) Compare(other Tuple) int {
	pairs := [4][2]int{
		{t.Major, other.Major},
		{t.Minor, other.Minor},
		{t.Patch, other.Patch},
		{t.Build, other.Build},
	}

	for _, pair := range pairs {
		switch {
		case pair[0] < pair[1]:
			return -1
		case pair[0] > pair[1]:
			return 1
		}
	}

	return 0
}

// TupleFromParts builds a tuple from up to four dotted components.
// Missing trailing components pad to zero and non-numeric components
// count as zero; the second return value is false in either case so
// the caller can log the degradation. Negative values also degrade.
//
// This is the defensive path for locally stored metadata. Upstream text
// goes through Parse, which never fabricates components.
func TupleFromParts(parts []string) (Tuple, bool) {
	const componentCount = 4

	var (
		components [componentCount]int
		clean      = len(parts) == componentCount
	)

	if len(parts) > componentCount {
		parts = parts[:componentCount]
		clean = false
	}

	for i, part := range parts {
		value, err := strconv.Atoi(strings.TrimSpace(part))
		if err != nil || value < 0 {
			clean = false
			continue
		}

		components[i] = value
	}

	return Tuple{
		Major: components[0],
		Minor: components[1],
		Patch: components[2],
		Build: components[3],
	}, clean
}
