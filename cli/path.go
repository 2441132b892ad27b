package cli

import (
	"os"
	"path/filepath"
	"regexp"
	"strings"
	"sync"

	"github.com/ardnew/tagfn/pkg"
)

// baseConfig is the base name of the configuration files.
const baseConfig = "config"

// configExt lists the configuration file extensions, in load order.
// Values from later files take precedence.
var configExt = []string{".json", ".yaml", ".yml"}

// defaultDirMode is the permission mode for created directories.
var defaultDirMode os.FileMode = 0o700

// basePrefix returns the name used for the configuration and cache
// subdirectories and, upper-cased, for environment variable overrides.
//
// By default, basePrefix is the base name of the executable file unless it
// matches one of the following substitution rules:
//   - "__debug_bin" (default output of the dlv debugger): replaced with
//     [pkg.Name]
//   - "^\.+" (dot-prefixed names): remove the dot prefix
var basePrefix = sync.OnceValue(
	func() string {
		id := os.Args[0]
		if exe, err := os.Executable(); err == nil {
			id = exe
		}

		return prefixOf(id)
	},
)

var prefixRules = []struct {
	rex *regexp.Regexp
	rep string
}{
	{regexp.MustCompile(`^__debug_bin\d*$`), pkg.Name},
	{regexp.MustCompile(`^\.+`), ""},
}

// prefixOf derives the base prefix from an executable path.
func prefixOf(path string) string {
	base := filepath.Base(path)
	id := strings.TrimSuffix(base, filepath.Ext(base))

	for _, rule := range prefixRules {
		id = rule.rex.ReplaceAllString(id, rule.rep)
	}

	if id == "" {
		return pkg.Name
	}

	return id
}

// envOverride returns the name of the environment variable that overrides
// the directory of the given kind, e.g. TAGFN_CONFIG_DIR.
func envOverride(kind string) string {
	name := strings.ToUpper(basePrefix() + "_" + kind + "_DIR")

	return strings.Map(func(r rune) rune {
		if r == '-' || r == '.' {
			return '_'
		}

		return r
	}, name)
}

// userDir resolves a per-user directory for this program.
//
// The environment override takes precedence. Otherwise the directory is the
// base prefix under the platform directory returned by platform, falling back
// to home/fallback and then to the working directory.
func userDir(kind string, platform func() (string, error), fallback string) string {
	if dir := os.Getenv(envOverride(kind)); dir != "" {
		return dir
	}

	dir, err := platform()
	if err != nil {
		if home, herr := os.UserHomeDir(); herr == nil {
			dir = filepath.Join(home, fallback)
		} else if dir, err = os.Getwd(); err != nil {
			dir = "."
		}
	}

	return filepath.Join(dir, basePrefix())
}

// configDir returns the configuration directory path.
var configDir = sync.OnceValue(
	func() string { return userDir("config", os.UserConfigDir, ".config") },
)

// cacheDir returns the directory holding REPL history and profiles.
var cacheDir = sync.OnceValue(
	func() string { return userDir("cache", os.UserCacheDir, ".cache") },
)

// configPath returns the absolute path to a file or directory formed by joining
// the global configuration directory path with the given path elements.
//
// If no elements are given, it is equivalent to calling [configDir].
func configPath(elem ...string) string {
	return filepath.Join(append([]string{configDir()}, elem...)...)
}

// configFiles returns the candidate configuration file paths for base.
func configFiles(base string) []string {
	files := make([]string, 0, len(configExt))

	for _, ext := range configExt {
		files = append(files, configPath(base+ext))
	}

	return files
}

// mkdirAllRequired creates all required runtime directories.
func mkdirAllRequired() error {
	for _, dir := range []string{configDir(), cacheDir()} {
		if err := os.MkdirAll(dir, defaultDirMode); err != nil {
			return err
		}
	}

	return nil
}
