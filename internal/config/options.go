// SPDX-License-Identifier: MPL-2.0

package config

import (
	"context"
	_ "embed"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/charmbracelet/log"
	"github.com/spf13/viper"

	"github.com/ormconf/ormconf/internal/issue"
	"github.com/ormconf/ormconf/internal/loader"
	"github.com/ormconf/ormconf/pkg/cueutil"
)

const (
	// ManifestFileName is the project manifest holding the options field.
	ManifestFileName = "package.json"
	// ManifestField is the manifest field holding the options object.
	ManifestField = "mikro-orm"

	keyLoader         = "loader"
	keyConfigPaths    = "configPaths"
	keyAlwaysAllowTS  = "alwaysAllowTs"
	keyPreferTS       = "preferTs"
	keyUseTSNode      = "useTsNode"
	keyTSConfigPath   = "tsConfigPath"
	keyTranspilerArgs = "transpilerArgs"
	keyVerbose        = "verbose"

	envConfigPaths = "MIKRO_ORM_CLI_CONFIG"
)

//go:embed options_schema.cue
var optionsSchema []byte

// envBindings maps option keys to the environment variables that override
// them.
var envBindings = []struct {
	key string
	env string
}{
	{keyLoader, "MIKRO_ORM_CLI_LOADER"},
	{keyConfigPaths, envConfigPaths},
	{keyAlwaysAllowTS, "MIKRO_ORM_CLI_ALWAYS_ALLOW_TS"},
	{keyPreferTS, "MIKRO_ORM_CLI_PREFER_TS"},
	{keyUseTSNode, "MIKRO_ORM_CLI_USE_TS_NODE"},
	{keyTSConfigPath, "MIKRO_ORM_CLI_TS_CONFIG_PATH"},
	{keyTranspilerArgs, "MIKRO_ORM_CLI_TRANSPILER_ARGS"},
	{keyVerbose, "MIKRO_ORM_CLI_VERBOSE"},
}

type (
	// Options are the merged loader options of a project.
	Options struct {
		// Loader is the requested loader strategy.
		Loader loader.Preference `json:"loader" yaml:"loader" toml:"loader"`
		// ConfigPaths are extra config candidates searched before the
		// built-in names.
		ConfigPaths []string `json:"configPaths" yaml:"configPaths" toml:"configPaths"`
		// AlwaysAllowTS, PreferTS and UseTSNode are legacy switches; each
		// forces the native loader when set to its non-default value.
		AlwaysAllowTS bool  `json:"alwaysAllowTs" yaml:"alwaysAllowTs" toml:"alwaysAllowTs"`
		PreferTS      *bool `json:"preferTs,omitempty" yaml:"preferTs,omitempty" toml:"preferTs,omitempty"`
		UseTSNode     *bool `json:"useTsNode,omitempty" yaml:"useTsNode,omitempty" toml:"useTsNode,omitempty"`
		// TSConfigPath is handed to transpilers that accept a tsconfig.
		TSConfigPath string `json:"tsConfigPath,omitempty" yaml:"tsConfigPath,omitempty" toml:"tsConfigPath,omitempty"`
		// TranspilerArgs are extra shell-quoted transpiler arguments.
		TranspilerArgs string `json:"transpilerArgs,omitempty" yaml:"transpilerArgs,omitempty" toml:"transpilerArgs,omitempty"`
		// Verbose enables debug logging in the CLI.
		Verbose bool `json:"verbose" yaml:"verbose" toml:"verbose"`
		// ManifestPath is the package.json the options were read from, or
		// empty when none was found.
		ManifestPath string `json:"manifestPath,omitempty" yaml:"manifestPath,omitempty" toml:"manifestPath,omitempty"`
	}

	// manifest is the decoded part of package.json.
	manifest struct {
		Options map[string]any `json:"mikro-orm"`
	}
)

// DefaultOptions returns the options used when nothing is configured.
func DefaultOptions() *Options {
	return &Options{
		Loader:      loader.PreferenceAuto,
		ConfigPaths: []string{},
	}
}

// LoaderOptions converts the options into loader selection options.
func (o *Options) LoaderOptions(logger *log.Logger) loader.Options {
	return loader.Options{
		Preference:     o.Loader,
		AlwaysAllowTS:  o.AlwaysAllowTS,
		PreferTS:       o.PreferTS,
		UseTSNode:      o.UseTSNode,
		TSConfigPath:   o.TSConfigPath,
		TranspilerArgs: o.TranspilerArgs,
		Logger:         logger,
	}
}

// loadWithOptions merges defaults, the nearest manifest and the environment.
func loadWithOptions(ctx context.Context, opts LoadOptions) (*Options, error) {
	select {
	case <-ctx.Done():
		return nil, fmt.Errorf("load options canceled: %w", ctx.Err())
	default:
	}

	logger := opts.Logger
	if logger == nil {
		logger = log.New(io.Discard)
	}

	root, err := opts.Root.Abs()
	if err != nil {
		return nil, err
	}

	v := viper.New()

	defaults := DefaultOptions()
	v.SetDefault(keyLoader, string(defaults.Loader))
	v.SetDefault(keyConfigPaths, defaults.ConfigPaths)

	manifestPath := FindManifest(string(root))
	if manifestPath != "" {
		if err := loadManifestIntoViper(v, manifestPath); err != nil {
			return nil, issue.NewErrorContext().
				WithOperation("load loader options").
				WithResource(manifestPath).
				WithSuggestion(fmt.Sprintf("Check the %q field of %s", ManifestField, ManifestFileName)).
				WithSuggestion("Valid loader values are \"auto\", \"native\", \"esbuild\", \"swc\" and false").
				WithIssue(issue.OptionsLoadFailedId).
				Wrap(err).
				BuildError()
		}
		logger.Debug("loaded options from manifest", "path", manifestPath)
	}

	for _, b := range envBindings {
		if err := v.BindEnv(b.key, b.env); err != nil {
			return nil, fmt.Errorf("failed to bind %s: %w", b.env, err)
		}
	}

	pref, err := loader.ParsePreference(v.Get(keyLoader))
	if err != nil {
		return nil, issue.NewErrorContext().
			WithOperation("load loader options").
			WithResource(keyLoader).
			WithSuggestion("Set MIKRO_ORM_CLI_LOADER to auto, native, esbuild, swc or false").
			WithIssue(issue.InvalidLoaderId).
			Wrap(err).
			BuildError()
	}

	cfg := &Options{
		Loader:         pref,
		ConfigPaths:    stringList(v.Get(keyConfigPaths)),
		AlwaysAllowTS:  v.GetBool(keyAlwaysAllowTS),
		PreferTS:       optionalBool(v, keyPreferTS),
		UseTSNode:      optionalBool(v, keyUseTSNode),
		TSConfigPath:   v.GetString(keyTSConfigPath),
		TranspilerArgs: v.GetString(keyTranspilerArgs),
		Verbose:        v.GetBool(keyVerbose),
		ManifestPath:   manifestPath,
	}

	// Relative config paths in the manifest are relative to the manifest.
	if manifestPath != "" && os.Getenv(envConfigPaths) == "" {
		base := filepath.Dir(manifestPath)
		for i, p := range cfg.ConfigPaths {
			if !filepath.IsAbs(p) {
				cfg.ConfigPaths[i] = filepath.Join(base, p)
			}
		}
	}

	return cfg, nil
}

// FindManifest returns the path of the nearest package.json in dir or one of
// its ancestors, or "" when there is none.
func FindManifest(dir string) string {
	for {
		candidate := filepath.Join(dir, ManifestFileName)
		if info, err := os.Stat(candidate); err == nil && info.Mode().IsRegular() {
			return candidate
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			return ""
		}
		dir = parent
	}
}

// loadManifestIntoViper validates package.json against the #Manifest schema
// and merges its options field into Viper.
func loadManifestIntoViper(v *viper.Viper, path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("failed to read manifest: %w", err)
	}

	result, err := cueutil.ParseAndDecode[manifest](optionsSchema, data, "#Manifest",
		cueutil.WithFilename(path),
		cueutil.WithConcrete(false),
	)
	if err != nil {
		return err
	}
	if len(result.Value.Options) == 0 {
		return nil
	}

	if err := v.MergeConfigMap(result.Value.Options); err != nil {
		return fmt.Errorf("failed to merge manifest options: %w", err)
	}
	return nil
}

// stringList accepts a list from the manifest or defaults, or a
// path-list-separated string from the environment.
func stringList(value any) []string {
	switch val := value.(type) {
	case nil:
		return []string{}
	case string:
		if val == "" {
			return []string{}
		}
		return filepath.SplitList(val)
	case []string:
		return append([]string{}, val...)
	case []any:
		out := make([]string, 0, len(val))
		for _, item := range val {
			if s, ok := item.(string); ok {
				out = append(out, s)
			}
		}
		return out
	default:
		return []string{}
	}
}

func optionalBool(v *viper.Viper, key string) *bool {
	if !v.IsSet(key) {
		return nil
	}
	b := v.GetBool(key)
	return &b
}
