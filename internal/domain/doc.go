// Package domain contains the core domain model for entry-cli.
//
// The domain is persistence- and toolkit-agnostic: it does not depend on YAML
// parsing, the filesystem, or the chemistry packages. Infra/adapters map
// into/from these types.
package domain
