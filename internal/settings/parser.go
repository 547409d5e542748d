package settings

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
)

// The settings document is markdown with an embedded key:value block.
// Exactly two nesting levels are supported:
//
//	key: value              flat entry
//	section:                section opener (no value)
//	  key: value            entry inside the current section
//
// Values are scalars (bare strings), booleans, numbers, or bracketed lists
// like [a, b, c]. Any line outside this grammar is prose and is ignored; it
// also closes the current section. A key that is present but fails its typed
// coercion is a parse miss: the field silently keeps its default.
//
// Recognized keys:
//
//	sources.issues   bool      sources.docs     bool      sources.code  bool
//	scan.depth       quick|medium|thorough
//	output.mode      file|display|both          output.path  string
//	weights.security int       weights.bugs     int
//	weights.features int       weights.docs     int
//	exclude.paths    list      exclude.labels   list

var (
	sectionRe = regexp.MustCompile(`^([a-z][a-z0-9_-]*):\s*$`)
	nestedRe  = regexp.MustCompile(`^[ \t]+([a-z][a-z0-9_-]*):\s*(\S.*)$`)
	flatRe    = regexp.MustCompile(`^([a-z][a-z0-9_-]*):\s*(\S.*)$`)
)

// parseDocument extracts every grammar-conforming entry from src as a raw
// string value keyed by "key" or "section.key". Later occurrences win.
func parseDocument(src string) map[string]string {
	entries := make(map[string]string)
	section := ""

	for _, line := range strings.Split(src, "\n") {
		trimmed := strings.TrimRight(line, " \t\r")
		if trimmed == "" {
			continue // blank lines do not close a section
		}

		if m := sectionRe.FindStringSubmatch(trimmed); m != nil {
			section = m[1]
			continue
		}
		if m := nestedRe.FindStringSubmatch(trimmed); m != nil && section != "" {
			entries[section+"."+m[1]] = strings.TrimSpace(m[2])
			continue
		}
		if m := flatRe.FindStringSubmatch(trimmed); m != nil {
			section = ""
			entries[m[1]] = strings.TrimSpace(m[2])
			continue
		}

		// Prose. Whatever section was open is over.
		section = ""
	}

	return entries
}

// merge overlays parsed entries onto defaults, field by field. Any key that
// is absent or fails coercion keeps its default.
func merge(defaults Settings, entries map[string]string) Settings {
	s := defaults

	mergeBool(entries, "sources.issues", &s.Sources.Issues)
	mergeBool(entries, "sources.docs", &s.Sources.Docs)
	mergeBool(entries, "sources.code", &s.Sources.Code)

	if raw, ok := entries["scan.depth"]; ok {
		if d := Depth(raw); ValidDepth(d) {
			s.Scan.Depth = d
		}
	}

	if raw, ok := entries["output.mode"]; ok {
		if m := OutputMode(raw); ValidOutputMode(m) {
			s.Output.Mode = m
		}
	}
	if raw, ok := entries["output.path"]; ok && !strings.HasPrefix(raw, "[") {
		s.Output.Path = raw
	}

	mergeInt(entries, "weights.security", &s.Weights.Security)
	mergeInt(entries, "weights.bugs", &s.Weights.Bugs)
	mergeInt(entries, "weights.features", &s.Weights.Features)
	mergeInt(entries, "weights.docs", &s.Weights.Docs)

	mergeList(entries, "exclude.paths", &s.Exclude.Paths)
	mergeList(entries, "exclude.labels", &s.Exclude.Labels)

	return s
}

func mergeBool(entries map[string]string, key string, dst *bool) {
	raw, ok := entries[key]
	if !ok {
		return
	}
	switch raw {
	case "true":
		*dst = true
	case "false":
		*dst = false
	}
}

func mergeInt(entries map[string]string, key string, dst *int) {
	raw, ok := entries[key]
	if !ok {
		return
	}
	if n, err := strconv.Atoi(raw); err == nil {
		*dst = n
	}
}

func mergeList(entries map[string]string, key string, dst *[]string) {
	raw, ok := entries[key]
	if !ok {
		return
	}
	items, err := parseList(raw)
	if err != nil {
		return
	}
	*dst = items
}

// parseList parses a bracketed list value: [a, b, c]. Items are bare
// strings; an empty list [] is valid.
func parseList(raw string) ([]string, error) {
	if !strings.HasPrefix(raw, "[") || !strings.HasSuffix(raw, "]") {
		return nil, fmt.Errorf("not a bracketed list: %q", raw)
	}
	inner := strings.TrimSpace(raw[1 : len(raw)-1])
	if inner == "" {
		return []string{}, nil
	}
	parts := strings.Split(inner, ",")
	items := make([]string, 0, len(parts))
	for _, p := range parts {
		p = strings.TrimSpace(p)
		if p == "" {
			return nil, fmt.Errorf("empty list item in %q", raw)
		}
		items = append(items, p)
	}
	return items, nil
}

func formatList(items []string) string {
	return "[" + strings.Join(items, ", ") + "]"
}

// formatDocument renders s as the canonical settings document. The key
// order is fixed, so formatting the same settings twice is byte-identical.
func formatDocument(s Settings) string {
	var b strings.Builder

	b.WriteString("# driftscan settings\n")
	b.WriteString("\n")
	b.WriteString("Edit the values below and re-run `driftscan scan`. Lines that do not\n")
	b.WriteString("match `key: value` are prose and are left alone by the parser.\n")
	b.WriteString("\n")

	writeSection := func(name string, pairs [][2]string) {
		b.WriteString(name + ":\n")
		for _, kv := range pairs {
			b.WriteString("  " + kv[0] + ": " + kv[1] + "\n")
		}
		b.WriteString("\n")
	}

	writeSection("sources", [][2]string{
		{"issues", strconv.FormatBool(s.Sources.Issues)},
		{"docs", strconv.FormatBool(s.Sources.Docs)},
		{"code", strconv.FormatBool(s.Sources.Code)},
	})
	writeSection("scan", [][2]string{
		{"depth", string(s.Scan.Depth)},
	})
	writeSection("output", [][2]string{
		{"mode", string(s.Output.Mode)},
		{"path", s.Output.Path},
	})
	writeSection("weights", [][2]string{
		{"security", strconv.Itoa(s.Weights.Security)},
		{"bugs", strconv.Itoa(s.Weights.Bugs)},
		{"features", strconv.Itoa(s.Weights.Features)},
		{"docs", strconv.Itoa(s.Weights.Docs)},
	})
	writeSection("exclude", [][2]string{
		{"paths", formatList(s.Exclude.Paths)},
		{"labels", formatList(s.Exclude.Labels)},
	})

	return b.String()
}

// Format renders s as the canonical settings document.
func Format(s Settings) string {
	return formatDocument(s)
}

// Keys returns the recognized settings keys in document order. Used by the
// configure command for validation and help output.
func Keys() []string {
	return []string{
		"sources.issues", "sources.docs", "sources.code",
		"scan.depth",
		"output.mode", "output.path",
		"weights.security", "weights.bugs", "weights.features", "weights.docs",
		"exclude.paths", "exclude.labels",
	}
}

// Apply sets a single key to a raw string value using the same coercion
// rules as the parser. Unknown keys and bad values are errors here (unlike
// file parsing, where they silently default) because the caller typed them.
func Apply(s *Settings, key, raw string) error {
	entries := map[string]string{key: raw}
	switch key {
	case "sources.issues", "sources.docs", "sources.code":
		if raw != "true" && raw != "false" {
			return fmt.Errorf("%s: want true or false, got %q", key, raw)
		}
	case "scan.depth":
		if !ValidDepth(Depth(raw)) {
			return fmt.Errorf("scan.depth: want quick, medium or thorough, got %q", raw)
		}
	case "output.mode":
		if !ValidOutputMode(OutputMode(raw)) {
			return fmt.Errorf("output.mode: want file, display or both, got %q", raw)
		}
	case "output.path":
		if raw == "" {
			return fmt.Errorf("output.path: empty path")
		}
	case "weights.security", "weights.bugs", "weights.features", "weights.docs":
		if _, err := strconv.Atoi(raw); err != nil {
			return fmt.Errorf("%s: want an integer, got %q", key, raw)
		}
	case "exclude.paths", "exclude.labels":
		if _, err := parseList(raw); err != nil {
			return fmt.Errorf("%s: %v", key, err)
		}
	default:
		return fmt.Errorf("unknown settings key %q", key)
	}
	*s = merge(*s, entries)
	return nil
}
