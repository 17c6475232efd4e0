// Package release holds the version domain model: the four-component
// version tuple with its total ordering, the opaque build identifier,
// parsed release candidates, the locally installed state, and the pure
// decision function that turns (installed, latest, flag) into an update
// decision with a human-readable justification.
//
// Nothing in this package performs I/O.
package release
