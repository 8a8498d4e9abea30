// Package main starts the Vial keyboard configurator.
package main

import (
	"os"
	"path/filepath"
	"runtime"

	"github.com/vial-kb/vial-gui/internal/lifecycle"
)

func main() {
	// Resources live at the repository root when running from source.
	_, file, _, _ := runtime.Caller(0)
	sourceDir := filepath.Dir(filepath.Dir(file))

	os.Exit(lifecycle.Run(os.Args[1:], lifecycle.Deps{SourceDir: sourceDir}))
}
