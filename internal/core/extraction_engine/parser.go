package extraction_engine

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"
)

// ParseFields turns a raw completion into a flat field map. It never fails: a
// completion that does not start with a JSON object of scalar values is parsed
// line by line as "key: value" pairs instead. Text after the object is ignored.
func ParseFields(raw string) map[string]string {
	fields, _ := parseFields(raw)
	return fields
}

// parseFields also returns the reason the JSON strategy was abandoned, nil when it succeeded.
func parseFields(raw string) (map[string]string, error) {
	fields, err := parseJSONFields(raw)
	if err == nil {
		return fields, nil
	}
	return parseLineFields(raw), err
}

// parseJSONFields reads one top-level JSON object and ignores whatever follows it.
// It fails on invalid JSON, on anything but an object, on a repeated key, and on
// values that are null, arrays or objects.
func parseJSONFields(raw string) (map[string]string, error) {
	dec := json.NewDecoder(strings.NewReader(raw))
	dec.UseNumber()

	tok, err := dec.Token()
	if err != nil {
		return nil, err
	}
	if d, ok := tok.(json.Delim); !ok || d != '{' {
		return nil, errors.New("not a json object")
	}

	fields := make(map[string]string)
	for dec.More() {
		tok, err := dec.Token()
		if err != nil {
			return nil, err
		}
		key, ok := tok.(string)
		if !ok {
			return nil, fmt.Errorf("unexpected token %v", tok)
		}

		var v any
		if err := dec.Decode(&v); err != nil {
			return nil, err
		}
		s, err := scalarString(v)
		if err != nil {
			return nil, fmt.Errorf("field %q: %w", key, err)
		}

		key = cleanValue(key)
		if _, dup := fields[key]; dup {
			return nil, fmt.Errorf("duplicate key %q", key)
		}
		fields[key] = cleanValue(s)
	}
	if _, err := dec.Token(); err != nil {
		return nil, err
	}
	return fields, nil
}

func scalarString(v any) (string, error) {
	switch t := v.(type) {
	case string:
		return t, nil
	case json.Number:
		return t.String(), nil
	case bool:
		if t {
			return "true", nil
		}
		return "false", nil
	default:
		return "", fmt.Errorf("value of type %T is not a string", v)
	}
}

// parseLineFields splits on newlines and keeps lines with a colon after a non-empty prefix.
func parseLineFields(raw string) map[string]string {
	fields := make(map[string]string)
	for _, line := range strings.Split(raw, "\n") {
		line = strings.TrimSuffix(line, "\r")
		idx := strings.IndexByte(line, ':')
		if idx <= 0 {
			continue
		}
		key := cleanValue(line[:idx])
		fields[key] = cleanValue(line[idx+1:])
	}
	return fields
}

// cleanValue trims whitespace, leading quotes, trailing quotes and commas, and
// escaped quotes.
func cleanValue(s string) string {
	s = strings.TrimSpace(s)
	s = strings.TrimLeft(s, `"'`)
	s = strings.TrimRight(s, `"',`)
	s = strings.ReplaceAll(s, `\"`, "")
	return strings.TrimSpace(s)
}
