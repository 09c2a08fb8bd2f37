package merger

import (
	"bytes"
	"encoding/json"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/goccy/go-yaml"
	"github.com/tidwall/gjson"
)

// FormatForPath infers the serialization format from a file extension,
// falling back to JSON.
func FormatForPath(path string) string {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		return "yaml"
	default:
		return "json"
	}
}

// Decode parses existing translation data in the given format. Empty
// input yields an empty tree.
func Decode(format string, data []byte) (*Tree, error) {
	if len(bytes.TrimSpace(data)) == 0 {
		return NewTree(), nil
	}

	switch format {
	case "yaml", "yml":
		return DecodeYAML(data)
	default:
		return DecodeJSON(data)
	}
}

// Encode serializes a tree in the given format with a trailing newline.
func Encode(format string, t *Tree, indent string) ([]byte, error) {
	switch format {
	case "yaml", "yml":
		return EncodeYAML(t, indent)
	default:
		return EncodeJSON(t, indent), nil
	}
}

// DecodeJSON parses a JSON object preserving document order, which the
// standard decoder's maps would lose.
func DecodeJSON(data []byte) (*Tree, error) {
	if !gjson.ValidBytes(data) {
		return nil, fmt.Errorf("invalid json")
	}

	doc := gjson.ParseBytes(data)
	if !doc.IsObject() {
		return nil, fmt.Errorf("top-level value is not an object")
	}

	return jsonTree(doc), nil
}

func jsonTree(obj gjson.Result) *Tree {
	t := NewTree()

	obj.ForEach(func(k, v gjson.Result) bool {
		switch {
		case v.IsObject():
			t.Append(k.String(), TreeNode(jsonTree(v)))
		case v.Type == gjson.String:
			t.Append(k.String(), StringNode(v.String()))
		default:
			t.Append(k.String(), RawNode(v.Value()))
		}

		return true
	})

	return t
}

// EncodeJSON writes a tree as pretty-printed JSON. The writer is ours
// rather than encoding/json's because entry order must survive and
// coexisting duplicate names must be emittable.
func EncodeJSON(t *Tree, indent string) []byte {
	var b bytes.Buffer
	writeJSONObject(&b, t, indent, 0)
	b.WriteByte('\n')

	return b.Bytes()
}

func writeJSONObject(b *bytes.Buffer, t *Tree, indent string, depth int) {
	if t == nil || len(t.Entries) == 0 {
		b.WriteString("{}")
		return
	}

	b.WriteString("{\n")

	for i, e := range t.Entries {
		for j := 0; j < depth+1; j++ {
			b.WriteString(indent)
		}

		keyData, keyErr := json.Marshal(e.Key)
		writeJSONValue(b, keyData, keyErr)
		b.WriteString(": ")

		switch e.Node.Kind {
		case KindString:
			strData, strErr := json.Marshal(e.Node.Str)
			writeJSONValue(b, strData, strErr)
		case KindTree:
			writeJSONObject(b, e.Node.Tree, indent, depth+1)
		case KindRaw:
			rawData, rawErr := json.Marshal(e.Node.Raw)
			writeJSONValue(b, rawData, rawErr)
		}

		if i < len(t.Entries)-1 {
			b.WriteByte(',')
		}

		b.WriteByte('\n')
	}

	for j := 0; j < depth; j++ {
		b.WriteString(indent)
	}

	b.WriteByte('}')
}

func writeJSONValue(b *bytes.Buffer, data []byte, err error) {
	if err != nil {
		b.WriteString("null")
		return
	}

	b.Write(data)
}

// DecodeYAML parses a YAML mapping preserving document order.
func DecodeYAML(data []byte) (*Tree, error) {
	var doc any

	dec := yaml.NewDecoder(bytes.NewReader(data), yaml.UseOrderedMap())
	if err := dec.Decode(&doc); err != nil {
		return nil, fmt.Errorf("decode yaml: %w", err)
	}

	ms, ok := doc.(yaml.MapSlice)
	if !ok {
		return nil, fmt.Errorf("top-level value is not a mapping")
	}

	return yamlTree(ms), nil
}

func yamlTree(ms yaml.MapSlice) *Tree {
	t := NewTree()

	for _, item := range ms {
		key := fmt.Sprint(item.Key)

		switch v := item.Value.(type) {
		case yaml.MapSlice:
			t.Append(key, TreeNode(yamlTree(v)))
		case string:
			t.Append(key, StringNode(v))
		default:
			t.Append(key, RawNode(v))
		}
	}

	return t
}

// EncodeYAML writes a tree as YAML. Indentation is width-based; a
// literal whitespace indent falls back to its length since YAML
// forbids tabs.
func EncodeYAML(t *Tree, indent string) ([]byte, error) {
	width := len(indent)
	if width < 2 {
		width = 2
	}

	out, err := yaml.MarshalWithOptions(yamlSlice(t), yaml.Indent(width), yaml.IndentSequence(true))
	if err != nil {
		return nil, fmt.Errorf("encode yaml: %w", err)
	}

	if t.Len() == 0 {
		return []byte("{}\n"), nil
	}

	return out, nil
}

func yamlSlice(t *Tree) yaml.MapSlice {
	ms := make(yaml.MapSlice, 0, len(t.Entries))

	for _, e := range t.Entries {
		var v any

		switch e.Node.Kind {
		case KindString:
			v = e.Node.Str
		case KindTree:
			v = yamlSlice(e.Node.Tree)
		case KindRaw:
			v = e.Node.Raw
		}

		ms = append(ms, yaml.MapItem{Key: e.Key, Value: v})
	}

	return ms
}
