// Package config loads and validates updater settings from a YAML file.
//
// Every field has a working default pointing at the public upstream
// endpoints, so a config file is only needed to override endpoints
// (for example in tests), pin an architecture, or refresh the
// probe-hash guess list used by the last resolution fallback.
package config
