// Package namelist reads, patches and writes Fortran namelist files.
//
// It implements the subset of the namelist format used by CABLE
// configuration files: one "key = value" parameter per line, derived type
// members addressed with '%', logical, numeric, string and list values.
// Parameter names are case insensitive and normalised to lower case.
package namelist

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"sort"
	"strconv"
	"strings"

	"github.com/cable-lsm/benchcab/internal/maputil"
)

// Namelist maps group names to their parameters. Nested
// map[string]interface{} values represent derived type members.
type Namelist map[string]map[string]interface{}

// Parse reads a namelist from r.
func Parse(r io.Reader) (Namelist, error) {
	nml := Namelist{}

	var group map[string]interface{}
	groupName := ""

	scanner := bufio.NewScanner(r)
	lineNo := 0
	for scanner.Scan() {
		lineNo++
		line := strings.TrimSpace(stripComment(scanner.Text()))
		if line == "" {
			continue
		}

		switch {
		case strings.HasPrefix(line, "&"):
			if group != nil {
				return nil, fmt.Errorf("line %d: group %q is not terminated", lineNo, groupName)
			}
			groupName = strings.ToLower(strings.TrimSpace(line[1:]))
			if groupName == "" {
				return nil, fmt.Errorf("line %d: group has no name", lineNo)
			}
			if _, ok := nml[groupName]; !ok {
				nml[groupName] = map[string]interface{}{}
			}
			group = nml[groupName]

		case line == "/":
			if group == nil {
				return nil, fmt.Errorf("line %d: group terminator outside a group", lineNo)
			}
			group = nil

		default:
			if group == nil {
				return nil, fmt.Errorf("line %d: parameter outside a group", lineNo)
			}
			key, rawValue, ok := strings.Cut(line, "=")
			if !ok {
				return nil, fmt.Errorf("line %d: expected \"key = value\"", lineNo)
			}
			value, err := parseValue(strings.TrimSpace(rawValue))
			if err != nil {
				return nil, fmt.Errorf("line %d: %w", lineNo, err)
			}
			setParam(group, strings.ToLower(strings.TrimSpace(key)), value)
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("read namelist: %w", err)
	}
	if group != nil {
		return nil, fmt.Errorf("group %q is not terminated", groupName)
	}

	return nml, nil
}

// Read reads a namelist file.
func Read(path string) (Namelist, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open namelist: %w", err)
	}
	defer f.Close()

	nml, err := Parse(f)
	if err != nil {
		return nil, fmt.Errorf("parse %q: %w", path, err)
	}

	return nml, nil
}

// Write writes the namelist to w. Groups and parameters are written in
// lexical order so output is deterministic.
func Write(w io.Writer, nml Namelist) error {
	groups := make([]string, 0, len(nml))
	for name := range nml {
		groups = append(groups, name)
	}
	sort.Strings(groups)

	for _, name := range groups {
		_, err := fmt.Fprintf(w, "&%s\n", strings.ToLower(name))
		if err != nil {
			return err
		}

		params := flattenParams("", nml[name])
		keys := make([]string, 0, len(params))
		for k := range params {
			keys = append(keys, k)
		}
		sort.Strings(keys)

		for _, k := range keys {
			v, err := formatValue(params[k])
			if err != nil {
				return fmt.Errorf("parameter %q: %w", k, err)
			}
			_, err = fmt.Fprintf(w, "    %s = %s\n", k, v)
			if err != nil {
				return err
			}
		}

		_, err = fmt.Fprintf(w, "/\n")
		if err != nil {
			return err
		}
	}

	return nil
}

// WriteFile writes the namelist to path, replacing any existing file.
func WriteFile(path string, nml Namelist) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create namelist: %w", err)
	}

	err = Write(f, nml)
	if err != nil {
		f.Close()
		return fmt.Errorf("write %q: %w", path, err)
	}

	return f.Close()
}

// FromMap converts a plain nested map, such as one decoded from YAML,
// into a Namelist. Keys are normalised to lower case. Top level values
// must be maps as they represent namelist groups.
func FromMap(m map[string]interface{}) (Namelist, error) {
	nml := Namelist{}
	for name, v := range m {
		params, ok := normalizeValue(v).(map[string]interface{})
		if !ok {
			return nil, fmt.Errorf("group %q must be a mapping of parameters", name)
		}
		nml[strings.ToLower(name)] = params
	}

	return nml, nil
}

// Patch applies a namelist patch to the file at path. A missing file is
// created from the patch alone, otherwise the patch is deep merged over
// the existing parameters and the file rewritten.
func Patch(path string, patch map[string]interface{}) error {
	p, err := FromMap(patch)
	if err != nil {
		return err
	}

	nml, err := Read(path)
	if errors.Is(err, os.ErrNotExist) {
		return WriteFile(path, p)
	}
	if err != nil {
		return err
	}

	for name, params := range p {
		if existing, ok := nml[name]; ok {
			nml[name] = maputil.DeepUpdate(existing, params)
		} else {
			nml[name] = params
		}
	}

	return WriteFile(path, nml)
}

// PatchRemove removes the parameters named by remove from the file at
// path. It fails when a named parameter does not exist.
func PatchRemove(path string, remove map[string]interface{}) error {
	p, err := FromMap(remove)
	if err != nil {
		return err
	}

	nml, err := Read(path)
	if err != nil {
		return err
	}

	for name, params := range p {
		existing, ok := nml[name]
		if !ok {
			return fmt.Errorf("namelist group %q does not exist in %q", name, path)
		}
		err := maputil.DeepDelete(existing, params)
		if err != nil {
			return fmt.Errorf("%w in %q", err, path)
		}
	}

	return WriteFile(path, nml)
}

// stripComment drops everything after an unquoted '!'.
func stripComment(line string) string {
	quote := byte(0)
	for i := 0; i < len(line); i++ {
		c := line[i]
		switch {
		case quote != 0:
			if c == quote {
				quote = 0
			}
		case c == '\'' || c == '"':
			quote = c
		case c == '!':
			return line[:i]
		}
	}
	return line
}

// setParam stores a value under a possibly derived type key such as
// "filename%met", creating intermediate maps as needed.
func setParam(group map[string]interface{}, key string, value interface{}) {
	parts := strings.Split(key, "%")
	m := group
	for _, part := range parts[:len(parts)-1] {
		next, ok := m[part].(map[string]interface{})
		if !ok {
			next = map[string]interface{}{}
			m[part] = next
		}
		m = next
	}
	m[parts[len(parts)-1]] = value
}

// flattenParams turns nested derived type maps back into '%' separated
// keys for writing.
func flattenParams(prefix string, params map[string]interface{}) map[string]interface{} {
	out := map[string]interface{}{}
	for k, v := range params {
		key := strings.ToLower(k)
		if prefix != "" {
			key = prefix + "%" + key
		}
		if nested, ok := v.(map[string]interface{}); ok {
			for nk, nv := range flattenParams(key, nested) {
				out[nk] = nv
			}
			continue
		}
		out[key] = v
	}
	return out
}

func parseValue(s string) (interface{}, error) {
	if s == "" {
		return nil, fmt.Errorf("empty value")
	}

	values, err := splitList(s)
	if err != nil {
		return nil, err
	}

	if len(values) == 1 {
		return parseScalar(values[0])
	}

	list := make([]interface{}, 0, len(values))
	for _, v := range values {
		sv, err := parseScalar(v)
		if err != nil {
			return nil, err
		}
		list = append(list, sv)
	}
	return list, nil
}

// splitList splits a value on commas that are outside quotes.
func splitList(s string) ([]string, error) {
	var out []string
	var cur strings.Builder
	quote := byte(0)
	for i := 0; i < len(s); i++ {
		c := s[i]
		switch {
		case quote != 0:
			cur.WriteByte(c)
			if c == quote {
				quote = 0
			}
		case c == '\'' || c == '"':
			quote = c
			cur.WriteByte(c)
		case c == ',':
			out = append(out, strings.TrimSpace(cur.String()))
			cur.Reset()
		default:
			cur.WriteByte(c)
		}
	}
	if quote != 0 {
		return nil, fmt.Errorf("unterminated string in %q", s)
	}
	out = append(out, strings.TrimSpace(cur.String()))
	return out, nil
}

func parseScalar(s string) (interface{}, error) {
	if len(s) >= 2 && (s[0] == '\'' || s[0] == '"') {
		quote := s[0]
		if s[len(s)-1] != quote {
			return nil, fmt.Errorf("unterminated string %q", s)
		}
		body := s[1 : len(s)-1]
		return strings.ReplaceAll(body, string([]byte{quote, quote}), string(quote)), nil
	}

	switch strings.ToLower(s) {
	case ".true.":
		return true, nil
	case ".false.":
		return false, nil
	}

	if i, err := strconv.ParseInt(s, 10, 64); err == nil {
		return int(i), nil
	}
	if f, err := strconv.ParseFloat(s, 64); err == nil {
		return f, nil
	}

	// Bare word, keep it as a string.
	return s, nil
}

func formatValue(v interface{}) (string, error) {
	switch value := v.(type) {
	case bool:
		if value {
			return ".true.", nil
		}
		return ".false.", nil
	case string:
		return "'" + strings.ReplaceAll(value, "'", "''") + "'", nil
	case int:
		return strconv.Itoa(value), nil
	case int64:
		return strconv.FormatInt(value, 10), nil
	case float64:
		s := strconv.FormatFloat(value, 'g', -1, 64)
		if !strings.ContainsAny(s, ".eE") {
			s += ".0"
		}
		return s, nil
	case []interface{}:
		parts := make([]string, 0, len(value))
		for _, e := range value {
			p, err := formatValue(e)
			if err != nil {
				return "", err
			}
			parts = append(parts, p)
		}
		return strings.Join(parts, ", "), nil
	default:
		return "", fmt.Errorf("unsupported value type %T", v)
	}
}

// normalizeValue lower cases map keys recursively so merges are case
// insensitive, matching Fortran semantics.
func normalizeValue(v interface{}) interface{} {
	switch value := v.(type) {
	case map[string]interface{}:
		out := make(map[string]interface{}, len(value))
		for k, nested := range value {
			out[strings.ToLower(k)] = normalizeValue(nested)
		}
		return out
	case []interface{}:
		out := make([]interface{}, 0, len(value))
		for _, e := range value {
			out = append(out, normalizeValue(e))
		}
		return out
	default:
		return value
	}
}

