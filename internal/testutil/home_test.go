// SPDX-License-Identifier: MPL-2.0

package testutil

import (
	"os"
	"runtime"
	"testing"
)

func homeEnvVar() string {
	if runtime.GOOS == "windows" {
		return "USERPROFILE"
	}
	return "HOME"
}

func TestSetHomeDir(t *testing.T) {
	tmpDir := t.TempDir()
	envVar := homeEnvVar()
	original := os.Getenv(envVar)

	cleanup := SetHomeDir(t, tmpDir)
	if got := os.Getenv(envVar); got != tmpDir {
		t.Errorf("%s = %q, want %q", envVar, got, tmpDir)
	}
	if got, err := os.UserHomeDir(); err != nil || got != tmpDir {
		t.Errorf("os.UserHomeDir() = %q, %v, want %q", got, err, tmpDir)
	}

	cleanup()
	if got := os.Getenv(envVar); got != original {
		t.Errorf("after cleanup %s = %q, want %q", envVar, got, original)
	}
}

func TestSetHomeDir_WithTCleanup(t *testing.T) {
	tmpDir := t.TempDir()
	envVar := homeEnvVar()
	original := os.Getenv(envVar)

	t.Run("subtest", func(t *testing.T) {
		t.Cleanup(SetHomeDir(t, tmpDir))

		if got := os.Getenv(envVar); got != tmpDir {
			t.Errorf("%s = %q, want %q", envVar, got, tmpDir)
		}
	})

	if got := os.Getenv(envVar); got != original {
		t.Errorf("after subtest %s = %q, want %q", envVar, got, original)
	}
}
