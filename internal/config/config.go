// Package config defines the canonical, JSON-serializable configuration
// model for the cleaning pipeline. It is intentionally small and explicit so
// that runs can be loaded from disk and passed through the program without
// additional glue code.
//
// Example (trimmed):
//
//	{
//	  "job":    "patients",
//	  "source": { "kind": "file", "file": { "path": "data/patients_raw.csv" } },
//	  "parser": { "kind": "csv", "options": { "has_header": true, "trim_space": true } },
//	  "output": { "data": "data/patients_clean.csv", "report": "data/validation_report.txt" },
//	  "storage": { "kind": "none" }
//	}
package config

import (
	"encoding/json"
	"fmt"
	"os"
)

// Pipeline describes one full cleaning run. It is the top-level object
// decoded from a pipeline file.
type Pipeline struct {
	// Job names the run for logs and metrics labeling.
	Job string `json:"job"`

	// Source describes where the raw dataset comes from.
	Source Source `json:"source"`

	// Parser configures how raw bytes become records.
	Parser Parser `json:"parser"`

	// Output holds the paths of the two artifacts every run produces.
	Output Output `json:"output"`

	// Storage optionally loads the cleaned dataset into a database.
	Storage Storage `json:"storage"`
}

// Source identifies the data source.
type Source struct {
	// Kind selects the source implementation. Current value: "file".
	Kind string `json:"kind"`

	// File carries options for the "file" source kind.
	File SourceFile `json:"file"`
}

// SourceFile holds configuration for the "file" source kind.
type SourceFile struct {
	Path string `json:"path"`
}

// Parser selects how to parse the raw source into rows and columns.
type Parser struct {
	// Kind selects the parser implementation. Current value: "csv".
	Kind string `json:"kind"`

	// Options is a free-form map interpreted by the parser. For CSV,
	// typical keys: has_header (bool), comma (string), trim_space (bool),
	// fold_diacritics (bool), header_map (object).
	Options Options `json:"options"`
}

// Output names the cleaned-dataset and report files. Both are overwritten
// on each run.
type Output struct {
	Data   string `json:"data"`
	Report string `json:"report"`
}

// Storage selects the optional database sink for the cleaned dataset.
type Storage struct {
	// Kind selects the backend: "none" (default), "postgres", "sqlite",
	// "mysql", or "mssql".
	Kind string `json:"kind"`

	// DB configures the selected backend.
	DB DBConfig `json:"db"`
}

// DBConfig configures a database sink.
type DBConfig struct {
	// DSN is the backend connection string.
	DSN string `json:"dsn"`

	// Table is the destination table name.
	Table string `json:"table"`

	// AutoCreateTable creates the destination table when absent.
	AutoCreateTable bool `json:"auto_create_table"`
}

// Default returns the built-in pipeline matching the fixed paths the binary
// uses when no config file is given.
func Default() Pipeline {
	return Pipeline{
		Job: "patients",
		Source: Source{
			Kind: "file",
			File: SourceFile{Path: "data/patients_raw.csv"},
		},
		Parser: Parser{
			Kind: "csv",
			Options: Options{
				"has_header":      true,
				"trim_space":      true,
				"fold_diacritics": true,
			},
		},
		Output: Output{
			Data:   "data/patients_clean.csv",
			Report: "data/validation_report.txt",
		},
		Storage: Storage{Kind: "none"},
	}
}

// Load decodes a Pipeline from the JSON file at path.
func Load(path string) (Pipeline, error) {
	f, err := os.Open(path)
	if err != nil {
		return Pipeline{}, fmt.Errorf("open config: %w", err)
	}
	defer f.Close()

	var p Pipeline
	if err := json.NewDecoder(f).Decode(&p); err != nil {
		return Pipeline{}, fmt.Errorf("decode config: %w", err)
	}
	return p, nil
}

// Options is a free-form bag of parser/transform settings with typed
// accessors. JSON numbers decode as float64; the accessors account for it.
type Options map[string]any

// String returns the string value for key or def when missing/mistyped.
func (o Options) String(key, def string) string {
	if v, ok := o[key]; ok {
		if s, ok := v.(string); ok {
			return s
		}
	}
	return def
}

// Bool returns the bool value for key or def when missing/mistyped.
func (o Options) Bool(key string, def bool) bool {
	if v, ok := o[key]; ok {
		if b, ok := v.(bool); ok {
			return b
		}
	}
	return def
}

// Int returns the int value for key or def. JSON numbers arrive as float64
// and are truncated.
func (o Options) Int(key string, def int) int {
	if v, ok := o[key]; ok {
		switch n := v.(type) {
		case float64:
			return int(n)
		case int:
			return n
		}
	}
	return def
}

// Rune returns the first rune of a string value for key, or def.
func (o Options) Rune(key string, def rune) rune {
	if v, ok := o[key]; ok {
		if s, ok := v.(string); ok && len(s) > 0 {
			return []rune(s)[0]
		}
	}
	return def
}

// StringMap returns a map[string]string for key when the value is an object
// with string values. Non-string values are ignored.
func (o Options) StringMap(key string) map[string]string {
	res := map[string]string{}
	if v, ok := o[key]; ok {
		if m, ok := v.(map[string]any); ok {
			for k, vv := range m {
				if s, ok := vv.(string); ok {
					res[k] = s
				}
			}
		}
	}
	return res
}

// Any returns the raw value for key, or nil when absent.
func (o Options) Any(key string) any {
	if v, ok := o[key]; ok {
		return v
	}
	return nil
}
