// SPDX-License-Identifier: MPL-2.0

package loader

import (
	"context"
	"errors"
	"os/exec"
	"path/filepath"
	"slices"
	"testing"

	"github.com/ormconf/ormconf/internal/payload"
	"github.com/ormconf/ormconf/internal/testutil"
)

type stubLoader struct {
	name Name
}

func (s stubLoader) Name() Name { return s.name }

func (s stubLoader) Import(context.Context, string) (payload.Payload, error) {
	return payload.Object{"loader": string(s.name)}, nil
}

// candidateRecorder builds candidates whose constructors record their calls
// and return the configured error, or a stub loader when it is nil.
type candidateRecorder struct {
	calls []Name
}

func (r *candidateRecorder) candidate(name Name, err error) candidate {
	return candidate{
		name: name,
		construct: func(context.Context, string, Options) (Loader, error) {
			r.calls = append(r.calls, name)
			if err != nil {
				return nil, err
			}
			return stubLoader{name: name}, nil
		},
	}
}

func notInstalled(name Name) error {
	return classify(name, &exec.Error{Name: string(name), Err: exec.ErrNotFound})
}

func boolPtr(b bool) *bool { return &b }

func TestParsePreference(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		input   any
		want    Preference
		wantErr bool
	}{
		{"nil is unset", nil, PreferenceUnset, false},
		{"false", false, PreferenceFalse, false},
		{"true is invalid", true, PreferenceUnset, true},
		{"auto", "auto", PreferenceAuto, false},
		{"native", "native", PreferenceNative, false},
		{"esbuild", "esbuild", PreferenceEsbuild, false},
		{"swc", "swc", PreferenceSwc, false},
		{"string false", "false", PreferenceFalse, false},
		{"empty string", "", PreferenceUnset, false},
		{"unknown loader", "jiti", PreferenceUnset, true},
		{"number", 1, PreferenceUnset, true},
		{"typed preference", PreferenceSwc, PreferenceSwc, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			got, err := ParsePreference(tt.input)
			if (err != nil) != tt.wantErr {
				t.Fatalf("ParsePreference(%v) error = %v, wantErr %v", tt.input, err, tt.wantErr)
			}
			if err != nil && !errors.Is(err, ErrInvalidPreference) {
				t.Errorf("error should wrap ErrInvalidPreference, got: %v", err)
			}
			if got != tt.want {
				t.Errorf("ParsePreference(%v) = %q, want %q", tt.input, got, tt.want)
			}
		})
	}
}

func TestOptions_ForcesNative(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		opts Options
		want bool
	}{
		{"zero value", Options{}, false},
		{"always allow ts", Options{AlwaysAllowTS: true}, true},
		{"prefer ts false", Options{PreferTS: boolPtr(false)}, true},
		{"prefer ts true", Options{PreferTS: boolPtr(true)}, false},
		{"use ts-node false", Options{UseTSNode: boolPtr(false)}, true},
		{"use ts-node true", Options{UseTSNode: boolPtr(true)}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			if got := tt.opts.forcesNative(); got != tt.want {
				t.Errorf("forcesNative() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestSelectLoader(t *testing.T) {
	t.Parallel()

	probeErr := errors.New("esbuild --version: exit status 1")

	tests := []struct {
		name       string
		opts       Options
		esbuildErr error
		swcErr     error
		wantName   Name
		wantErr    error
		wantCalls  []Name
	}{
		{
			name:      "unset uses first installed",
			wantName:  NameEsbuild,
			wantCalls: []Name{NameEsbuild},
		},
		{
			name:       "auto skips missing candidate",
			opts:       Options{Preference: PreferenceAuto},
			esbuildErr: notInstalled(NameEsbuild),
			wantName:   NameSwc,
			wantCalls:  []Name{NameEsbuild, NameSwc},
		},
		{
			name:       "auto falls back to native",
			opts:       Options{Preference: PreferenceAuto},
			esbuildErr: notInstalled(NameEsbuild),
			swcErr:     notInstalled(NameSwc),
			wantName:   NameNative,
			wantCalls:  []Name{NameEsbuild, NameSwc},
		},
		{
			name:       "other construction errors propagate",
			opts:       Options{Preference: PreferenceAuto},
			esbuildErr: probeErr,
			wantErr:    probeErr,
			wantCalls:  []Name{NameEsbuild},
		},
		{
			name:      "native preference",
			opts:      Options{Preference: PreferenceNative},
			wantName:  NameNative,
			wantCalls: nil,
		},
		{
			name:      "false preference",
			opts:      Options{Preference: PreferenceFalse},
			wantName:  NameNative,
			wantCalls: nil,
		},
		{
			name:      "legacy override wins over preference",
			opts:      Options{Preference: PreferenceEsbuild, AlwaysAllowTS: true},
			wantName:  NameNative,
			wantCalls: nil,
		},
		{
			name:      "prefer ts false forces native",
			opts:      Options{PreferTS: boolPtr(false)},
			wantName:  NameNative,
			wantCalls: nil,
		},
		{
			name:      "unknown preference behaves like auto",
			opts:      Options{Preference: Preference("jiti")},
			wantName:  NameEsbuild,
			wantCalls: []Name{NameEsbuild},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			rec := &candidateRecorder{}
			candidates := []candidate{
				rec.candidate(NameEsbuild, tt.esbuildErr),
				rec.candidate(NameSwc, tt.swcErr),
			}

			ld, err := selectLoader(context.Background(), t.TempDir(), tt.opts, candidates)
			if tt.wantErr != nil {
				if !errors.Is(err, tt.wantErr) {
					t.Fatalf("selectLoader() error = %v, want %v", err, tt.wantErr)
				}
				if errors.Is(err, ErrDependencyNotFound) {
					t.Error("propagated error must not be a DependencyNotFound")
				}
			} else {
				if err != nil {
					t.Fatalf("selectLoader() returned error: %v", err)
				}
				if ld.Name() != tt.wantName {
					t.Errorf("selectLoader() = %s, want %s", ld.Name(), tt.wantName)
				}
			}
			if !slices.Equal(rec.calls, tt.wantCalls) {
				t.Errorf("constructed candidates = %v, want %v", rec.calls, tt.wantCalls)
			}
		})
	}
}

func TestDefaultCandidatesOrder(t *testing.T) {
	t.Parallel()

	var names []Name
	for _, c := range defaultCandidates {
		names = append(names, c.name)
	}
	if want := []Name{NameEsbuild, NameSwc}; !slices.Equal(names, want) {
		t.Errorf("defaultCandidates = %v, want %v", names, want)
	}
}

func TestDependencyNotFoundError(t *testing.T) {
	t.Parallel()

	err := notInstalled(NameSwc)
	if !errors.Is(err, ErrDependencyNotFound) {
		t.Error("classified error should wrap ErrDependencyNotFound")
	}
	if !errors.Is(err, exec.ErrNotFound) {
		t.Error("classified error should keep the lookup failure")
	}
	var depErr *DependencyNotFoundError
	if !errors.As(err, &depErr) || depErr.Name != NameSwc {
		t.Errorf("classified error = %#v, want DependencyNotFoundError for swc", err)
	}

	dot := classify(NameEsbuild, &exec.Error{Name: "esbuild", Err: exec.ErrDot})
	if !errors.Is(dot, ErrDependencyNotFound) || !errors.Is(dot, exec.ErrDot) {
		t.Errorf("classify(ErrDot) = %v, want a DependencyNotFoundError keeping ErrDot", dot)
	}

	other := errors.New("permission denied")
	if got := classify(NameSwc, other); got != other {
		t.Errorf("classify() should return unrelated errors unchanged, got %v", got)
	}
}

func TestNew_RelativePathEntryIsNotInstalled(t *testing.T) {
	// Not parallel: changes the working directory and PATH.
	cwd := t.TempDir()
	testutil.WriteFakeTranspiler(t, cwd, testutil.FakeTranspiler{Name: "esbuild"})
	t.Chdir(cwd)
	t.Setenv("PATH", filepath.Join("node_modules", ".bin"))

	ld, err := New(context.Background(), t.TempDir(), Options{Preference: PreferenceAuto})
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	if ld.Name() != NameNative {
		t.Errorf("Name() = %q, want native when esbuild is only on a relative PATH entry", ld.Name())
	}
}
