// Package frontmatter renders and parses the `---` delimited metadata header
// that prefixes post and article files.
package frontmatter

import (
	"bytes"
	"fmt"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"
)

const delimiter = "---"

// Field is one header entry. Fields are written in the order given.
type Field struct {
	Key     string
	Value   string
	Numeric bool
}

// Str returns a string field.
func Str(key, value string) Field {
	return Field{Key: key, Value: value}
}

// Int returns a numeric field.
func Int(key string, value int) Field {
	return Field{Key: key, Value: strconv.Itoa(value), Numeric: true}
}

// Render writes the header block followed by a blank line and body verbatim.
// Empty values are still emitted so every file carries every key.
func Render(fields []Field, body string) (string, error) {
	mapping := &yaml.Node{Kind: yaml.MappingNode}
	for _, f := range fields {
		tag := "!!str"
		if f.Numeric {
			tag = "!!int"
		}
		mapping.Content = append(mapping.Content,
			&yaml.Node{Kind: yaml.ScalarNode, Tag: "!!str", Value: f.Key},
			&yaml.Node{Kind: yaml.ScalarNode, Tag: tag, Value: f.Value},
		)
	}

	var buf bytes.Buffer
	buf.WriteString(delimiter + "\n")

	encoder := yaml.NewEncoder(&buf)
	encoder.SetIndent(2)
	if err := encoder.Encode(mapping); err != nil {
		return "", fmt.Errorf("failed to encode frontmatter: %w", err)
	}
	if err := encoder.Close(); err != nil {
		return "", fmt.Errorf("failed to encode frontmatter: %w", err)
	}

	buf.WriteString(delimiter + "\n\n")
	buf.WriteString(body)
	return buf.String(), nil
}

// Document is a parsed file.
type Document struct {
	// HasHeader is false when the text has no complete header block.
	HasHeader bool
	// Keys preserves the header key order.
	Keys   []string
	Fields map[string]string
	Body   string
}

// Get returns the header value for key, or "".
func (d Document) Get(key string) string {
	return d.Fields[key]
}

// Parse splits text into header fields and body. Text without a complete
// header is returned as body only. Headers that are not valid YAML (for
// example hand-written `title: a: b` lines) are read line by line, splitting
// on the first colon.
func Parse(text string) Document {
	doc := Document{Fields: map[string]string{}, Body: text}

	header, body, ok := split(text)
	if !ok {
		return doc
	}
	doc.HasHeader = true
	doc.Body = body

	if !parseYAML(header, &doc) {
		doc.Keys = nil
		doc.Fields = map[string]string{}
		parseLines(header, &doc)
	}
	return doc
}

// Strip returns text without its header block.
func Strip(text string) string {
	return Parse(text).Body
}

func split(text string) (header, body string, ok bool) {
	first, rest, found := strings.Cut(text, "\n")
	if !found || strings.TrimRight(first, "\r") != delimiter {
		return "", "", false
	}

	var headerLines []string
	for {
		line, remaining, more := strings.Cut(rest, "\n")
		if strings.TrimRight(line, "\r") == delimiter {
			body = remaining
			break
		}
		if !more {
			return "", "", false
		}
		headerLines = append(headerLines, line)
		rest = remaining
	}

	// drop the single blank separator line written by Render
	switch {
	case strings.HasPrefix(body, "\r\n"):
		body = body[2:]
	case strings.HasPrefix(body, "\n"):
		body = body[1:]
	}
	return strings.Join(headerLines, "\n"), body, true
}

func parseYAML(header string, doc *Document) bool {
	if strings.TrimSpace(header) == "" {
		return true
	}

	var root yaml.Node
	if err := yaml.Unmarshal([]byte(header), &root); err != nil {
		return false
	}
	if root.Kind != yaml.DocumentNode || len(root.Content) == 0 || root.Content[0].Kind != yaml.MappingNode {
		return false
	}

	mapping := root.Content[0]
	for i := 0; i+1 < len(mapping.Content); i += 2 {
		key, value := mapping.Content[i], mapping.Content[i+1]
		if value.Kind != yaml.ScalarNode {
			continue
		}
		v := value.Value
		if value.Tag == "!!null" {
			v = ""
		}
		doc.set(key.Value, v)
	}
	return true
}

func parseLines(header string, doc *Document) {
	for _, line := range strings.Split(header, "\n") {
		key, value, found := strings.Cut(line, ":")
		if !found {
			continue
		}
		key = strings.TrimSpace(key)
		if key == "" {
			continue
		}
		doc.set(key, strings.TrimSpace(value))
	}
}

func (d *Document) set(key, value string) {
	if _, exists := d.Fields[key]; !exists {
		d.Keys = append(d.Keys, key)
	}
	d.Fields[key] = value
}
