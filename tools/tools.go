//go:build tools

package tools

// Tool dependencies; run `go mod tidy` after changing this list.

import (
	_ "github.com/oapi-codegen/oapi-codegen/v2/cmd/oapi-codegen"
	_ "github.com/pressly/goose/v3/cmd/goose"
)
