// Package dsm is the Synology platform glue: supported architectures,
// artifact filename and URL construction, installed-state reading from the
// DSM package INFO file, and a PackageManager wrapping synopkg for service
// stop/start and package installation.
package dsm
