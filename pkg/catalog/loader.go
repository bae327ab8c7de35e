package catalog

import (
	"bufio"
	"bytes"
	"context"
	"database/sql"
	_ "embed"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	json "github.com/goccy/go-json"
	"golang.org/x/sync/errgroup"
	"golang.org/x/text/encoding/unicode"
	"golang.org/x/text/transform"
	"gopkg.in/yaml.v3"
	_ "modernc.org/sqlite" // register pure-Go SQLite driver
)

//go:embed cities.yaml
var bundledCities []byte

// BundledName is the source name reported for the embedded catalog.
const BundledName = "bundled:cities.yaml"

// Default returns the bundled city catalog.
func Default() ([]City, error) {
	cities, err := decodeYAML(bundledCities)
	if err != nil {
		return nil, fmt.Errorf("bundled catalog: %w", err)
	}
	return cities, nil
}

// LoadFile reads a catalog file, picking the decoder from the extension:
// .yaml/.yml, .json (array), .jsonl (one object per line), .db/.sqlite
// (table cities with name and description columns, in rowid order).
func LoadFile(path string) ([]City, error) {
	ext := strings.ToLower(filepath.Ext(path))
	if ext == ".db" || ext == ".sqlite" || ext == ".sqlite3" {
		return loadSQLite(path)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	if data, err = toUTF8(data); err != nil {
		return nil, fmt.Errorf("decoding %s: %w", path, err)
	}

	var cities []City
	switch ext {
	case ".yaml", ".yml":
		cities, err = decodeYAML(data)
	case ".json":
		err = json.Unmarshal(data, &cities)
	case ".jsonl":
		cities, err = decodeJSONL(data)
	default:
		return nil, fmt.Errorf("%s: unsupported catalog format %q", path, ext)
	}
	if err != nil {
		return nil, fmt.Errorf("parsing %s: %w", path, err)
	}

	if err := validateAll(cities); err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return cities, nil
}

// LoadAll loads every path concurrently and concatenates the results in
// argument order. An empty path list yields the bundled catalog.
func LoadAll(ctx context.Context, paths []string) ([]City, error) {
	if len(paths) == 0 {
		return Default()
	}

	results := make([][]City, len(paths))
	g, ctx := errgroup.WithContext(ctx)
	for i, p := range paths {
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			cities, err := LoadFile(p)
			if err != nil {
				return err
			}
			results[i] = cities
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	var all []City
	for _, r := range results {
		all = append(all, r...)
	}
	return all, nil
}

// toUTF8 strips a UTF-8 byte order mark and transcodes UTF-16 files that
// carry one. Input without a BOM is taken as UTF-8.
func toUTF8(data []byte) ([]byte, error) {
	decoder := unicode.BOMOverride(unicode.UTF8.NewDecoder())
	out, _, err := transform.Bytes(decoder, data)
	return out, err
}

func decodeYAML(data []byte) ([]City, error) {
	var cities []City
	if err := yaml.Unmarshal(data, &cities); err != nil {
		return nil, err
	}
	return cities, validateAll(cities)
}

func decodeJSONL(data []byte) ([]City, error) {
	var cities []City
	scanner := bufio.NewScanner(bytes.NewReader(data))
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	line := 0
	for scanner.Scan() {
		line++
		text := bytes.TrimSpace(scanner.Bytes())
		if len(text) == 0 {
			continue
		}
		var c City
		if err := json.Unmarshal(text, &c); err != nil {
			return nil, fmt.Errorf("line %d: %w", line, err)
		}
		cities = append(cities, c)
	}
	return cities, scanner.Err()
}

func loadSQLite(path string) ([]City, error) {
	if _, err := os.Stat(path); err != nil {
		return nil, err
	}
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", path, err)
	}
	defer db.Close()

	rows, err := db.Query(`SELECT name, description FROM cities ORDER BY rowid`)
	if err != nil {
		return nil, fmt.Errorf("query %s: %w", path, err)
	}
	defer rows.Close()

	var cities []City
	for rows.Next() {
		var c City
		var text sql.NullString
		if err := rows.Scan(&c.Name, &text); err != nil {
			return nil, fmt.Errorf("scan %s: %w", path, err)
		}
		c.Text = text.String
		cities = append(cities, c)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("read %s: %w", path, err)
	}
	if err := validateAll(cities); err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return cities, nil
}

func validateAll(cities []City) error {
	for i, c := range cities {
		if err := c.Validate(); err != nil {
			return fmt.Errorf("record %d: %w", i, err)
		}
	}
	return nil
}
