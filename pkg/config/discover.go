package config

import (
	"os"
	"path/filepath"
	"slices"
	"strings"
)

// DirName is the per-project directory holding the config file.
const DirName = ".tl"

// FileName is the config file inside DirName.
const FileName = "config.yaml"

// catalogExts are the file extensions picked up when a catalogs entry
// names a directory.
var catalogExts = []string{".yaml", ".yml", ".json", ".jsonl", ".db", ".sqlite", ".sqlite3"}

// scanDepth bounds directory expansion of catalogs entries.
const scanDepth = 3

// Discover loads the config found by walking up from the current directory,
// or DefaultConfig when there is none.
func Discover() (*Config, error) {
	dir, err := os.Getwd()
	if err != nil {
		cfg := DefaultConfig()
		return &cfg, nil
	}
	path, ok := FindConfig(dir)
	if !ok {
		cfg := DefaultConfig()
		return &cfg, nil
	}
	return LoadConfig(path)
}

// FindConfig walks up from dir looking for .tl/config.yaml.
func FindConfig(dir string) (string, bool) {
	home, _ := os.UserHomeDir()

	for {
		candidate := filepath.Join(dir, DirName, FileName)
		if info, err := os.Stat(candidate); err == nil && !info.IsDir() {
			return candidate, true
		}

		parent := filepath.Dir(dir)
		if parent == dir {
			break // Reached filesystem root
		}
		// Don't go above home directory
		if home != "" && dir == home {
			break
		}
		dir = parent
	}
	return "", false
}

// ExpandCatalogs replaces directory entries in paths with the catalog files
// found beneath them, sorted. File entries pass through unchanged, so a
// missing file still surfaces as a load error later.
func ExpandCatalogs(paths []string) []string {
	var out []string
	for _, p := range paths {
		info, err := os.Stat(p)
		if err != nil || !info.IsDir() {
			out = append(out, p)
			continue
		}
		out = append(out, scanForCatalogs(p, scanDepth)...)
	}
	return out
}

// scanForCatalogs walks a directory tree up to maxDepth levels deep,
// collecting files with a catalog extension.
func scanForCatalogs(root string, maxDepth int) []string {
	var results []string

	rootDepth := strings.Count(filepath.Clean(root), string(filepath.Separator))

	_ = filepath.WalkDir(root, func(path string, d os.DirEntry, err error) error {
		if err != nil {
			return filepath.SkipDir
		}
		name := d.Name()
		if d.IsDir() {
			if path != root && strings.HasPrefix(name, ".") {
				return filepath.SkipDir
			}
			currentDepth := strings.Count(filepath.Clean(path), string(filepath.Separator)) - rootDepth
			if currentDepth >= maxDepth {
				return filepath.SkipDir
			}
			return nil
		}
		if strings.HasPrefix(name, ".") {
			return nil
		}
		if slices.Contains(catalogExts, strings.ToLower(filepath.Ext(name))) {
			results = append(results, path)
		}
		return nil
	})

	slices.Sort(results)
	return results
}
