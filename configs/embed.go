// Package configs provides configuration data embedded at build time.
//
// Files:
//   - domains.yaml: the domain registry (preferred, news, code, industrial and
//     blocked domain lists, category and mode profiles, scoring tables).
//     Loaded by internal/domains.Default().
//   - user-config.example.yaml: template written by `amanweb config init`.
//
// To change either, edit the .yaml file in this directory and rebuild.
package configs

import _ "embed"

// DomainsYAML is the built-in domain registry.
//
//go:embed domains.yaml
var DomainsYAML []byte

// UserConfigTemplate is the template for ~/.config/amanweb/config.yaml.
//
//go:embed user-config.example.yaml
var UserConfigTemplate string
