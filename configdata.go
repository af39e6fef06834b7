// Package exitd provides embedded assets for the exitd daemon.
//
// The root package exists solely to embed [config.default.toml] via
// [DefaultConfigTOML]. The daemon writes it out when asked to use a config
// file that does not exist yet.
package exitd

import _ "embed"

// DefaultConfigTOML holds the raw bytes of config.default.toml, embedded at
// build time. Its values must match config.DefaultConfig.
//
//go:embed config.default.toml
var DefaultConfigTOML []byte
