// SPDX-License-Identifier: MPL-2.0

package discovery

import (
	"context"
	"os"
	"path/filepath"
	"sync"
	"testing"

	"github.com/ormconf/ormconf/internal/payload"
)

// recordingImporter returns an object naming the imported path and records
// every import, or fails with err when it is set.
type recordingImporter struct {
	mu      sync.Mutex
	imports []string
	err     error
}

func (r *recordingImporter) Import(_ context.Context, specifier string) (payload.Payload, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.imports = append(r.imports, specifier)
	if r.err != nil {
		return nil, r.err
	}
	return payload.Object{"path": specifier}, nil
}

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatalf("MkdirAll() error: %v", err)
	}
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("WriteFile() error: %v", err)
	}
}
