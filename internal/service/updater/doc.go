// Package updater orchestrates one update pass: marker-file mutual
// exclusion, installed-state reading, release resolution, the update
// decision, package download with checksum verification when available,
// and installation with a best-effort restart of the previous instance
// on failure.
package updater
