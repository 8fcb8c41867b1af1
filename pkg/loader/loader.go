// Package loader reads grid records from JSON, NDJSON, YAML (single or
// multi-document), TOML or CSV input.
package loader

import (
	"bytes"
	"encoding/csv"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"regexp"
	"slices"
	"strconv"
	"strings"

	"github.com/pelletier/go-toml/v2"
	"gopkg.in/yaml.v3"
)

// ErrEmptyInput is returned when there is nothing to parse.
var ErrEmptyInput = errors.New("empty input")

// Format names an input encoding.
type Format string

const (
	FormatAuto   Format = "auto"
	FormatJSON   Format = "json"
	FormatNDJSON Format = "ndjson"
	FormatYAML   Format = "yaml"
	FormatTOML   Format = "toml"
	FormatCSV    Format = "csv"
)

// ParseFormat validates a format name. Empty means auto-detect.
func ParseFormat(s string) (Format, error) {
	f := Format(strings.ToLower(strings.TrimSpace(s)))
	switch f {
	case "":
		return FormatAuto, nil
	case FormatAuto, FormatJSON, FormatNDJSON, FormatYAML, FormatTOML, FormatCSV:
		return f, nil
	case "yml":
		return FormatYAML, nil
	case "jsonl":
		return FormatNDJSON, nil
	}
	return FormatAuto, fmt.Errorf("unknown input format %q", s)
}

// FormatForPath guesses the format from a file extension.
func FormatForPath(path string) Format {
	switch {
	case strings.HasSuffix(path, ".json"):
		return FormatJSON
	case strings.HasSuffix(path, ".ndjson"), strings.HasSuffix(path, ".jsonl"):
		return FormatNDJSON
	case strings.HasSuffix(path, ".yaml"), strings.HasSuffix(path, ".yml"):
		return FormatYAML
	case strings.HasSuffix(path, ".toml"):
		return FormatTOML
	case strings.HasSuffix(path, ".csv"):
		return FormatCSV
	}
	return FormatAuto
}

// Detect guesses the format of input.
func Detect(input string) Format {
	input = strings.TrimSpace(input)
	if strings.Contains(input, "\n---") || strings.HasPrefix(input, "---") {
		return FormatYAML
	}
	lines := strings.Split(input, "\n")
	if len(lines) > 1 && isLikelyNDJSON(lines) {
		return FormatNDJSON
	}
	// TOML [section] headers look like JSON arrays, so check TOML first.
	if isLikelyTOML(lines) {
		return FormatTOML
	}
	if strings.HasPrefix(input, "{") || strings.HasPrefix(input, "[") {
		return FormatJSON
	}
	if isLikelyCSV(lines) {
		return FormatCSV
	}
	return FormatYAML
}

// Load parses input into a document. Multi-document YAML and NDJSON become a
// list of documents.
func Load(input []byte, format Format) (any, error) {
	text := strings.TrimSpace(string(input))
	if text == "" {
		return nil, ErrEmptyInput
	}
	if format == "" || format == FormatAuto {
		format = Detect(text)
	}
	switch format {
	case FormatJSON:
		return loadJSON(text)
	case FormatNDJSON:
		return loadNDJSON(text)
	case FormatTOML:
		return loadTOML(text)
	case FormatCSV:
		return loadCSV(text)
	case FormatYAML:
		return loadYAML(text)
	}
	return nil, fmt.Errorf("unknown input format %q", format)
}

// LoadReader reads everything from r and parses it.
func LoadReader(r io.Reader, format Format) (any, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("read input: %w", err)
	}
	return Load(data, format)
}

// LoadFile reads and parses a file. An auto format is narrowed by the file
// extension first.
func LoadFile(path string, format Format) (any, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", path, err)
	}
	if format == "" || format == FormatAuto {
		format = FormatForPath(path)
	}
	return Load(data, format)
}

// Records turns a document into grid records. A list of objects is used as
// is; an object holding exactly one list of objects uses that list; any other
// object is a single record. Scalars in a list become {"value": x} records.
func Records(doc any) ([]map[string]any, error) {
	switch v := doc.(type) {
	case nil:
		return nil, ErrEmptyInput
	case []map[string]any:
		return v, nil
	case []any:
		out := make([]map[string]any, 0, len(v))
		for _, item := range v {
			out = append(out, asRecord(item))
		}
		return out, nil
	case map[string]any:
		if key, ok := soleListField(v); ok {
			return Records(v[key])
		}
		return []map[string]any{v}, nil
	}
	return nil, fmt.Errorf("cannot build records from %T", doc)
}

func asRecord(item any) map[string]any {
	if m, ok := item.(map[string]any); ok {
		return m
	}
	return map[string]any{"value": item}
}

func soleListField(m map[string]any) (string, bool) {
	var found []string
	for k, v := range m {
		if list, ok := v.([]any); ok && len(list) > 0 {
			if _, isMap := list[0].(map[string]any); isMap {
				found = append(found, k)
			}
		}
	}
	if len(found) != 1 {
		return "", false
	}
	return found[0], true
}

// Fields returns the union of record keys in first-seen order, skipping
// keys that start with an underscore.
func Fields(records []map[string]any) []string {
	var fields []string
	seen := map[string]bool{}
	for _, rec := range records {
		keys := make([]string, 0, len(rec))
		for k := range rec {
			keys = append(keys, k)
		}
		slices.Sort(keys)
		for _, k := range keys {
			if seen[k] || strings.HasPrefix(k, "_") {
				continue
			}
			seen[k] = true
			fields = append(fields, k)
		}
	}
	return fields
}

func loadJSON(input string) (any, error) {
	var data any
	if err := json.Unmarshal([]byte(input), &data); err != nil {
		return nil, fmt.Errorf("invalid JSON: %w", err)
	}
	return data, nil
}

func loadYAML(input string) (any, error) {
	decoder := yaml.NewDecoder(strings.NewReader(input))
	var docs []any
	for {
		var doc any
		if err := decoder.Decode(&doc); err != nil {
			if errors.Is(err, io.EOF) {
				break
			}
			return nil, fmt.Errorf("invalid YAML: %w", err)
		}
		if doc != nil {
			docs = append(docs, doc)
		}
	}
	switch len(docs) {
	case 0:
		return nil, ErrEmptyInput
	case 1:
		return docs[0], nil
	}
	return docs, nil
}

func loadNDJSON(input string) (any, error) {
	var docs []any
	for i, line := range strings.Split(input, "\n") {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		var obj any
		if err := json.Unmarshal([]byte(line), &obj); err != nil {
			return nil, fmt.Errorf("invalid NDJSON at line %d: %w", i+1, err)
		}
		docs = append(docs, obj)
	}
	if len(docs) == 0 {
		return nil, ErrEmptyInput
	}
	return docs, nil
}

func loadTOML(input string) (any, error) {
	var data map[string]any
	if err := toml.Unmarshal([]byte(input), &data); err != nil {
		return nil, fmt.Errorf("invalid TOML: %w", err)
	}
	return data, nil
}

// loadCSV uses the first row as field names. Numeric and boolean cells are
// converted so number columns sort and format correctly.
func loadCSV(input string) (any, error) {
	r := csv.NewReader(bytes.NewReader([]byte(input)))
	r.TrimLeadingSpace = true
	rows, err := r.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("invalid CSV: %w", err)
	}
	if len(rows) == 0 {
		return nil, ErrEmptyInput
	}
	header := rows[0]
	out := make([]any, 0, len(rows)-1)
	for _, row := range rows[1:] {
		rec := make(map[string]any, len(header))
		for i, name := range header {
			if i < len(row) {
				rec[name] = csvValue(row[i])
			}
		}
		out = append(out, rec)
	}
	return out, nil
}

func csvValue(s string) any {
	if i, err := strconv.ParseInt(s, 10, 64); err == nil {
		return i
	}
	if f, err := strconv.ParseFloat(s, 64); err == nil {
		return f
	}
	if b, err := strconv.ParseBool(s); err == nil {
		return b
	}
	return s
}

// isLikelyNDJSON requires several lines, most of them starting like a JSON
// object or array.
func isLikelyNDJSON(lines []string) bool {
	jsonCount, nonEmpty := 0, 0
	for _, line := range lines {
		trimmed := strings.TrimSpace(line)
		if trimmed == "" {
			continue
		}
		nonEmpty++
		if strings.HasPrefix(trimmed, "{") || strings.HasPrefix(trimmed, "[") {
			jsonCount++
		}
	}
	return nonEmpty > 1 && jsonCount > nonEmpty/2
}

var (
	tomlSection  = regexp.MustCompile(`^\s*\[{1,2}(?:[a-zA-Z_][a-zA-Z0-9_-]*|"[^"]+"|'[^']+')+(?:\.(?:[a-zA-Z_][a-zA-Z0-9_-]*|"[^"]+"|'[^']+'))*\]{1,2}\s*$`)
	tomlKeyValue = regexp.MustCompile(`^\s*(?:[a-zA-Z_][a-zA-Z0-9_-]*|"[^"]+"|'[^']+')+(?:\.(?:[a-zA-Z_][a-zA-Z0-9_-]*|"[^"]+"|'[^']+'))*\s*=\s*.+$`)
)

// isLikelyTOML looks for [section] headers or a majority of key = value
// lines.
func isLikelyTOML(lines []string) bool {
	kv, nonEmpty := 0, 0
	for _, line := range lines {
		trimmed := strings.TrimSpace(line)
		if trimmed == "" || strings.HasPrefix(trimmed, "#") {
			continue
		}
		nonEmpty++
		if tomlSection.MatchString(line) {
			return true
		}
		if tomlKeyValue.MatchString(line) {
			kv++
		}
	}
	return nonEmpty > 0 && kv > nonEmpty/2
}

// isLikelyCSV wants at least two lines with the same number of commas and no
// YAML markers.
func isLikelyCSV(lines []string) bool {
	if len(lines) < 2 {
		return false
	}
	commas := strings.Count(lines[0], ",")
	if commas == 0 || strings.Contains(lines[0], ": ") || strings.HasPrefix(lines[0], "- ") {
		return false
	}
	for _, line := range lines[1:] {
		if strings.TrimSpace(line) == "" {
			continue
		}
		if strings.Count(line, ",") != commas {
			return false
		}
	}
	return true
}
