// config_loader.go: Configuration discovery, loading and group selection
//
// Discovery order: explicit paths, glob patterns, then an upward search
// from the working directory for the default file names. Every file is
// evaluated into groups, the groups of all files are concatenated in file
// order and finally filtered by name and environment.
//
// Copyright (c) 2025 AGILira
// Series: AGILira fragment
// SPDX-License-Identifier: MPL-2.0

package herald

import (
	"context"
	goerrors "errors"
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"github.com/agilira/go-errors"
	"github.com/agilira/go-timecache"
	"github.com/agilira/herald/internal/fsutil"
	"github.com/spf13/afero"
	"golang.org/x/text/cases"
)

// configOptions are the options registered by AddConfigOption.
type configOptions struct {
	baseName    string
	config      *Option
	group       *Option
	environment *Option
	tests       *Option
}

// AddConfigOption registers -c/--config, -g/--group, -e/--environment and
// -t/--tests. baseName is the default configuration file name without
// extension.
func (c *CLI) AddConfigOption(baseName string) {
	c.config = &configOptions{
		baseName: baseName,
		config: c.Opt("-c", "--config",
			"Test configuration file(s). Comma-separated paths or glob patterns.",
			OptionConfig{HasValue: true}),
		group: c.Opt("-g", "--group",
			"Test configuration group to load.",
			OptionConfig{HasValue: true}),
		environment: c.Opt("-e", "--environment",
			"Test configuration environment to load.",
			OptionConfig{HasValue: true}),
		tests: c.Opt("-t", "--tests",
			"Test files (within active configuration) to run. Comma-separated paths or glob patterns.",
			OptionConfig{HasValue: true}),
	}
}

// Selection narrows what Loader.Load returns.
type Selection struct {
	// ConfigPaths are explicit files or glob patterns. Empty triggers the
	// default-location search.
	ConfigPaths []string
	// Group keeps groups whose name contains it, ignoring case.
	Group string
	// Environment keeps groups whose environment equals it.
	Environment string
	// Tests narrows the test files of every group. Relative to the
	// working directory.
	Tests []string
}

// LoadError is returned when configuration cannot be found, evaluated or
// narrowed to at least one group.
type LoadError struct {
	Message string
	// Trace holds file:line:column locations for evaluation failures.
	Trace string
	Cause error
}

// Error implements the error interface.
func (e *LoadError) Error() string { return e.Message }

// Unwrap exposes the coded cause.
func (e *LoadError) Unwrap() error { return e.Cause }

func newLoadError(code errors.ErrorCode, message string) *LoadError {
	return &LoadError{Message: message, Cause: errors.New(code, message)}
}

// ConfigFile is an evaluated configuration file.
type ConfigFile struct {
	// Path is absolute.
	Path string
	// Name is Path relative to the working directory, used in messages.
	Name     string
	Format   ConfigFormat
	Specs    []GroupSpec
	Groups   []*Group
	LoadedAt time.Time
}

// Loader discovers and evaluates configuration files.
type Loader struct {
	config *LoaderConfig
}

// NewLoader creates a loader. Zero fields in config take their defaults.
func NewLoader(config LoaderConfig) *Loader {
	return &Loader{config: config.WithDefaults()}
}

// Config returns the effective configuration.
func (l *Loader) Config() LoaderConfig { return *l.config }

// Discover returns the absolute paths of the configuration files to load.
func (l *Loader) Discover(paths []string) ([]string, error) {
	fs, wd := l.config.FS, l.config.WorkingDir

	if len(paths) == 0 {
		candidates := l.config.Candidates()
		found, ok := fsutil.FindUp(fs, wd, candidates)
		if !ok {
			return nil, newLoadError(ErrCodeConfigNotFound,
				fmt.Sprintf("%s not provided, and none of\n[%s] exist",
					l.config.ConfigFlag, strings.Join(candidates, ", ")))
		}
		l.debugf("Found configuration %s", found)
		return []string{found}, nil
	}

	var files []string
	seen := make(map[string]bool)
	for _, p := range paths {
		var matches []string
		if fsutil.HasMeta(p) {
			globbed, err := fsutil.Glob(fs, wd, p)
			if err != nil {
				return nil, &LoadError{
					Message: fmt.Sprintf("%s: %s is not a valid pattern", l.config.ConfigFlag, p),
					Cause:   errors.Wrap(err, ErrCodeConfigNotFound, "invalid configuration pattern"),
				}
			}
			matches = globbed
		} else if abs := fsutil.Abs(wd, p); fsutil.IsFile(fs, abs) {
			matches = []string{abs}
		}

		if len(matches) == 0 {
			return nil, newLoadError(ErrCodeConfigNotFound,
				fmt.Sprintf("%s: %s did not match any files", l.config.ConfigFlag, p))
		}
		for _, m := range matches {
			if !seen[m] {
				seen[m] = true
				files = append(files, m)
			}
		}
	}
	return files, nil
}

// LoadFile evaluates a single configuration file into groups.
func (l *Loader) LoadFile(ctx context.Context, path string) (*ConfigFile, error) {
	if err := ctx.Err(); err != nil {
		return nil, &LoadError{
			Message: "configuration loading canceled",
			Cause:   errors.Wrap(err, ErrCodeCanceled, "configuration loading canceled"),
		}
	}

	abs := fsutil.Abs(l.config.WorkingDir, path)
	file := &ConfigFile{
		Path:   abs,
		Name:   l.displayName(abs),
		Format: DetectFormat(abs),
	}

	start := timecache.CachedTimeNano()
	data, err := afero.ReadFile(l.config.FS, abs)
	if err != nil {
		message := fmt.Sprintf("Error loading configuration %s\n%s", file.Name, err.Error())
		return nil, &LoadError{
			Message: message,
			Cause:   errors.Wrap(err, ErrCodeConfigLoad, "failed to read configuration").WithContext("file", abs),
		}
	}

	specs, err := ParseConfig(EvalInput{
		Path:    file.Name,
		Dir:     filepath.Dir(abs),
		Data:    data,
		Environ: l.config.Environ,
	}, file.Format)
	if err != nil {
		return nil, l.evalFailure(file, err)
	}
	if len(specs) == 0 {
		return nil, newLoadError(ErrCodeConfigEmpty, file.Name+" contains no configuration")
	}

	file.Specs = specs
	file.Groups, err = buildGroups(file, l.config.FS, l.config.Logger)
	if err != nil {
		return nil, l.evalFailure(file, err)
	}
	file.LoadedAt = timecache.CachedTime()

	l.debugf("Loaded %d group(s) from %s (%s) in %s", len(file.Groups), file.Name, file.Format,
		time.Duration(timecache.CachedTimeNano()-start))
	return file, nil
}

// Load discovers, evaluates, merges and filters configuration groups.
func (l *Loader) Load(ctx context.Context, sel Selection) ([]*Group, error) {
	paths, err := l.Discover(sel.ConfigPaths)
	if err != nil {
		return nil, err
	}

	var groups []*Group
	names := make([]string, 0, len(paths))
	for _, p := range paths {
		file, err := l.LoadFile(ctx, p)
		if err != nil {
			return nil, err
		}
		names = append(names, file.Name)
		groups = append(groups, file.Groups...)
	}

	groups, err = FilterGroups(groups, sel.Group, sel.Environment, strings.Join(names, ", "))
	if err != nil {
		return nil, err
	}

	if len(sel.Tests) > 0 {
		for _, g := range groups {
			g.SetTestFilter(l.config.WorkingDir, sel.Tests)
		}
	}
	return groups, nil
}

func (l *Loader) evalFailure(file *ConfigFile, err error) *LoadError {
	detail := err.Error()
	var trace []string
	var evalErr *EvalError
	if goerrors.As(err, &evalErr) {
		detail = evalErr.Detail
		trace = evalErr.Trace
	}
	return &LoadError{
		Message: fmt.Sprintf("Error loading configuration %s\n%s", file.Name, detail),
		Trace:   strings.Join(trace, "\n"),
		Cause:   errors.Wrap(err, ErrCodeConfigLoad, "failed to evaluate configuration").WithContext("file", file.Path),
	}
}

// displayName renders abs relative to the working directory unless it
// lies outside of it.
func (l *Loader) displayName(abs string) string {
	rel := fsutil.RelSlash(l.config.WorkingDir, abs)
	if strings.HasPrefix(rel, "../") || rel == ".." {
		return filepath.ToSlash(abs)
	}
	return rel
}

func (l *Loader) debugf(format string, args ...interface{}) {
	if l.config.Logger != nil {
		l.config.Logger.Debugf(format, args...)
	}
}

// FilterGroups keeps the groups whose name contains name (Unicode case
// folded) and whose environment equals environment. Empty filters match
// everything. source names the configuration in error messages.
func FilterGroups(groups []*Group, name, environment, source string) ([]*Group, error) {
	if name == "" && environment == "" {
		return groups, nil
	}

	fold := cases.Fold()
	needle := fold.String(name)

	var out []*Group
	for _, g := range groups {
		if environment != "" && g.Environment != environment {
			continue
		}
		if name != "" && !strings.Contains(fold.String(g.Name), needle) {
			continue
		}
		out = append(out, g)
	}
	if len(out) > 0 {
		return out, nil
	}

	var message string
	var alternatives []string
	switch {
	case environment == "":
		message = fmt.Sprintf("%s contains no configuration groups that matches '%s'.", source, name)
		for _, g := range groups {
			alternatives = appendUnique(alternatives, g.Name)
		}
	case name == "":
		message = fmt.Sprintf("%s contains no configuration groups for environment '%s'.", source, environment)
		for _, g := range groups {
			if g.Environment != "" {
				alternatives = appendUnique(alternatives, g.Environment)
			}
		}
	default:
		message = fmt.Sprintf("%s contains no configuration groups for environment '%s' that matches '%s'.",
			source, environment, name)
		for _, g := range groups {
			alternatives = appendUnique(alternatives, g.String())
		}
	}
	if len(alternatives) > 0 {
		message += "\nTry one of:\n  " + strings.Join(alternatives, "\n  ")
	} else {
		message += "\nNo group declares an environment."
	}

	return nil, &LoadError{
		Message: message,
		Cause: errors.New(ErrCodeNoMatchingGroups, message).
			WithContext("group", name).
			WithContext("environment", environment),
	}
}

func appendUnique(list []string, value string) []string {
	if contains(list, value) {
		return list
	}
	return append(list, value)
}
