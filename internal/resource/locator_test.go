package resource

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestResolveJoinsBasePath(t *testing.T) {
	tests := []struct {
		name string
		ctx  RuntimeContext
	}{
		{"frozen", RuntimeContext{Frozen: true, BasePath: filepath.Join("opt", "vial")}},
		{"source", RuntimeContext{Frozen: false, BasePath: filepath.Join("home", "dev", "vial", "cmd", "vial")}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			l := New(tt.ctx)
			assert.Equal(t, filepath.Join(tt.ctx.BasePath, "icons/icon.ico"), l.Resolve("icons/icon.ico"))
			assert.Equal(t, tt.ctx, l.Context())
		})
	}
}

func TestResolveDoesNotCheckExistence(t *testing.T) {
	base := t.TempDir()
	l := New(RuntimeContext{Frozen: true, BasePath: base})

	assert.Equal(t, filepath.Join(base, "missing", "file.png"), l.Resolve("missing/file.png"))
}

func TestDetectFromPackagedExecutable(t *testing.T) {
	tmp := t.TempDir()
	exe := filepath.Join(string(filepath.Separator), "opt", "vial", "vial")

	ctx, err := detectFrom(exe, tmp, "/src/vial/cmd/vial")
	require.NoError(t, err)
	assert.True(t, ctx.Frozen)
	assert.Equal(t, filepath.Dir(exe), ctx.BasePath)
}

func TestDetectFromGoRun(t *testing.T) {
	tmp := t.TempDir()
	exe := filepath.Join(tmp, "go-build123456", "b001", "exe", "vial")
	src := t.TempDir()

	ctx, err := detectFrom(exe, tmp, src)
	require.NoError(t, err)
	assert.False(t, ctx.Frozen)
	assert.Equal(t, src, ctx.BasePath)
}

func TestDetectFromGoRunWithoutSourceDir(t *testing.T) {
	tmp := t.TempDir()
	exe := filepath.Join(tmp, "go-build1", "b001", "exe", "vial")

	ctx, err := detectFrom(exe, tmp, "")
	require.NoError(t, err)
	assert.True(t, ctx.Frozen)
	assert.Equal(t, filepath.Dir(exe), ctx.BasePath)
}

func TestDetectInsideTempButNotGoBuild(t *testing.T) {
	tmp := t.TempDir()
	exe := filepath.Join(tmp, "unpacked", "vial")

	ctx, err := detectFrom(exe, tmp, t.TempDir())
	require.NoError(t, err)
	assert.True(t, ctx.Frozen)
}

func TestDetectRunningTestBinary(t *testing.T) {
	// go test links the test binary into a go-build directory as well
	ctx, err := Detect(".")
	require.NoError(t, err)
	assert.True(t, filepath.IsAbs(ctx.BasePath))
}
