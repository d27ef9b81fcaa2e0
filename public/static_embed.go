package public

import (
	"embed"
	"io/fs"
)

//go:embed static/*
var static embed.FS

// StaticFS exposes the embedded stylesheet and boot script.
func StaticFS() (fs.FS, error) {
	return fs.Sub(static, "static")
}
