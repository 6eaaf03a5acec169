package configs

import (
	"embed"
)

// FS provides embedded demo lab YAMLs for external usage.
//
//go:embed *.yaml
var FS embed.FS
