// Package resolver determines the latest published release by walking an
// ordered chain of upstream sources: a tag-based release API, the JSON
// downloads API, a scrape of the public download page, and finally a
// bounded guess-and-verify probe against the artifact host.
//
// No single source is authoritative or always available, so the chain
// degrades through increasingly weak signals. Each source failure is
// logged and recovered by falling through; only full exhaustion is an
// error. Every network call is bounded by the shared client timeout.
package resolver
