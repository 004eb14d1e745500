package testutil

import (
	"bytes"
	"os"
	"path/filepath"
	"sync"
	"testing"

	"github.com/stretchr/testify/require"
)

// SafeBuffer is a thread-safe buffer for capturing log output in tests.
type SafeBuffer struct {
	b  bytes.Buffer
	mu sync.Mutex
}

// Write implements the io.Writer interface for SafeBuffer.
func (b *SafeBuffer) Write(p []byte) (int, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.b.Write(p)
}

// String implements the fmt.Stringer interface for SafeBuffer.
func (b *SafeBuffer) String() string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.b.String()
}

// LogBuffer returns a buffer for an App's logs. When MOVEGEN_TEST_LOGS is
// "true" its content is printed once the test ends.
func LogBuffer(t *testing.T) *SafeBuffer {
	t.Helper()
	buf := &SafeBuffer{}
	t.Cleanup(func() {
		if os.Getenv("MOVEGEN_TEST_LOGS") == "true" {
			t.Logf("--- Full Log Output for %s ---\n%s", t.Name(), buf.String())
		}
	})
	return buf
}

// WriteFiles creates a temporary directory holding files, keyed by their
// slash separated path relative to it, and returns the directory.
func WriteFiles(t *testing.T, files map[string]string) string {
	t.Helper()
	dir := t.TempDir()
	for name, content := range files {
		p := filepath.Join(dir, filepath.FromSlash(name))
		require.NoError(t, os.MkdirAll(filepath.Dir(p), 0o755))
		require.NoError(t, os.WriteFile(p, []byte(content), 0o644))
	}
	return dir
}

// Manifest renders a manifest generating the framework and app fixture
// packages from srv into outDir.
func Manifest(srv *SuiServer, outDir string) string {
	return `
output {
  dir         = "` + filepath.ToSlash(outDir) + `"
  import_path = "example.com/app/bindings"
}

network "mainnet" {
  graphql = "` + srv.GraphQLURL() + `"
  mvr     = "` + srv.MVRURL() + `"
}

binding "sui" {
  package = "0x2"
}

binding "app" {
  package = "@app/core"
  deps    = [binding.sui]
}
`
}
