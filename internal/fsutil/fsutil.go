// Path and pattern helpers for herald
//
// This package expands the file patterns declared by configuration groups
// into concrete file lists. Everything goes through afero so callers can
// run against an in-memory file system.
//
// Copyright (c) 2025 AGILira - A. Giordano
// Series: an AGILira fragment
// SPDX-License-Identifier: MPL-2.0

package fsutil

import (
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/bmatcuk/doublestar/v4"
	"github.com/spf13/afero"
)

// HasMeta reports whether pattern contains glob metacharacters.
func HasMeta(pattern string) bool {
	return strings.ContainsAny(pattern, "*?[{")
}

// Abs resolves path against dir unless it is already absolute.
func Abs(dir, path string) string {
	if filepath.IsAbs(path) {
		return filepath.Clean(path)
	}
	return filepath.Join(dir, path)
}

// RelSlash returns target relative to base using forward slashes. Paths
// outside base keep their leading "../" segments.
func RelSlash(base, target string) string {
	rel, err := filepath.Rel(base, target)
	if err != nil {
		return filepath.ToSlash(target)
	}
	return filepath.ToSlash(rel)
}

// Glob returns the regular files matching pattern, resolved against dir,
// as sorted absolute paths. Patterns support "**".
func Glob(fs afero.Fs, dir, pattern string) ([]string, error) {
	pattern = filepath.ToSlash(Abs(dir, pattern))
	base, rest := doublestar.SplitPattern(pattern)

	if ok, err := afero.DirExists(fs, filepath.FromSlash(base)); err != nil || !ok {
		return nil, nil
	}

	fsys := afero.NewIOFS(afero.NewBasePathFs(fs, filepath.FromSlash(base)))
	matches, err := doublestar.Glob(fsys, rest, doublestar.WithFilesOnly())
	if err != nil {
		return nil, err
	}

	out := make([]string, len(matches))
	for i, m := range matches {
		out[i] = filepath.Join(filepath.FromSlash(base), filepath.FromSlash(m))
	}
	sort.Strings(out)
	return out, nil
}

// Expand resolves a single pattern entry: globs are matched, directories
// expand to every regular file beneath them, plain files are returned as
// is. An entry that matches nothing yields an empty result.
func Expand(fs afero.Fs, dir, entry string) ([]string, error) {
	if HasMeta(entry) {
		return Glob(fs, dir, entry)
	}

	path := Abs(dir, entry)
	info, err := fs.Stat(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, err
	}
	if !info.IsDir() {
		return []string{path}, nil
	}
	return Walk(fs, path)
}

// Walk lists the regular files below root in lexical order.
func Walk(fs afero.Fs, root string) ([]string, error) {
	var files []string
	err := afero.Walk(fs, root, func(path string, info os.FileInfo, err error) error {
		if err != nil {
			return err
		}
		if info.Mode().IsRegular() {
			files = append(files, path)
		}
		return nil
	})
	return files, err
}

// Match reports whether the slash-separated path matches pattern. A
// pattern without metacharacters matches the path itself and everything
// below it.
func Match(pattern, path string) bool {
	pattern = strings.TrimSuffix(pattern, "/")
	if !HasMeta(pattern) {
		return path == pattern || strings.HasPrefix(path, pattern+"/")
	}
	ok, err := doublestar.Match(pattern, path)
	return err == nil && ok
}

// SplitList splits a comma-separated list of paths or patterns into
// trimmed, non-empty entries. Commas inside {a,b} alternatives do not
// separate entries.
func SplitList(value string) []string {
	var out []string
	add := func(part string) {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}

	depth, start := 0, 0
	for i := 0; i < len(value); i++ {
		switch value[i] {
		case '\\':
			i++
		case '{':
			depth++
		case '}':
			if depth > 0 {
				depth--
			}
		case ',':
			if depth == 0 {
				add(value[start:i])
				start = i + 1
			}
		}
	}
	if start < len(value) {
		add(value[start:])
	}
	return out
}

// IsFile reports whether path names a regular file.
func IsFile(fs afero.Fs, path string) bool {
	info, err := fs.Stat(path)
	return err == nil && info.Mode().IsRegular()
}

// FindUp searches start and each of its parents for the first existing
// file among candidates (paths relative to the searched directory).
func FindUp(fs afero.Fs, start string, candidates []string) (string, bool) {
	dir := filepath.Clean(start)
	for {
		for _, candidate := range candidates {
			path := filepath.Join(dir, candidate)
			if IsFile(fs, path) {
				return path, true
			}
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			return "", false
		}
		dir = parent
	}
}
