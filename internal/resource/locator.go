package resource

import (
	"os"
	"path/filepath"
	"strings"

	"github.com/rotisserie/eris"
)

// goBuildPrefix names the scratch directories `go run` and `go test` link binaries into.
const goBuildPrefix = "go-build"

// RuntimeContext describes how the process was launched.
type RuntimeContext struct {
	// Frozen is true when running as a packaged executable rather than through the go tool.
	Frozen bool
	// BasePath is the directory resources are resolved against.
	BasePath string
}

// PathResolver defines the interface for turning relative resource paths into absolute ones.
type PathResolver interface {
	Resolve(relativePath string) string
}

// Locator implements PathResolver on top of a RuntimeContext.
type Locator struct {
	ctx RuntimeContext
}

// New creates a Locator for the given runtime context.
func New(ctx RuntimeContext) *Locator {
	return &Locator{ctx: ctx}
}

// Detect inspects the running executable and returns the matching RuntimeContext.
// sourceDir is the directory of the entry package's source and is used when the
// binary was built on the fly by the go tool.
func Detect(sourceDir string) (RuntimeContext, error) {
	exe, err := os.Executable()
	if err != nil {
		return RuntimeContext{}, eris.Wrap(err, "failed to locate the running executable")
	}
	if resolved, err := filepath.EvalSymlinks(exe); err == nil {
		exe = resolved
	}

	tempDir := os.TempDir()
	if resolved, err := filepath.EvalSymlinks(tempDir); err == nil {
		tempDir = resolved
	}

	return detectFrom(exe, tempDir, sourceDir)
}

func detectFrom(exe, tempDir, sourceDir string) (RuntimeContext, error) {
	if !isGoBuildBinary(exe, tempDir) || sourceDir == "" {
		return RuntimeContext{Frozen: true, BasePath: filepath.Dir(exe)}, nil
	}

	base, err := filepath.Abs(sourceDir)
	if err != nil {
		return RuntimeContext{}, eris.Wrapf(err, "failed to resolve source directory %q", sourceDir)
	}
	return RuntimeContext{Frozen: false, BasePath: base}, nil
}

// isGoBuildBinary reports whether exe sits in a go-build scratch directory below tempDir.
func isGoBuildBinary(exe, tempDir string) bool {
	if tempDir == "" {
		return false
	}

	rel, err := filepath.Rel(tempDir, exe)
	if err != nil || strings.HasPrefix(rel, "..") {
		return false
	}

	first := strings.SplitN(filepath.ToSlash(rel), "/", 2)[0]
	return strings.HasPrefix(first, goBuildPrefix)
}

// Context returns the runtime context the locator was built with.
func (l *Locator) Context() RuntimeContext {
	return l.ctx
}

// Resolve joins relativePath onto the base path. It never checks whether the file exists.
func (l *Locator) Resolve(relativePath string) string {
	return filepath.Join(l.ctx.BasePath, relativePath)
}
