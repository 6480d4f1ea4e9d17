// Package config holds the type map configuration of the generator: the
// builtin conversions, special types and automatic types, plus any custom
// entries provided by the user or by message annotations.
package config

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"slices"

	"gopkg.in/yaml.v3"

	"github.com/syssam/protobuilder"
	"github.com/syssam/protobuilder/schema"
)

// Config is a parsed configuration document.
type Config struct {
	TypeMap []schema.TypeMapEntry `yaml:"type_map"`
}

// Lookup returns the entry stored under key, or nil.
func (c *Config) Lookup(key string) *schema.FieldBuilderOptions {
	if i := c.index(key); i >= 0 {
		return &c.TypeMap[i].Value
	}
	return nil
}

// Keys returns the keys of the type map in document order.
func (c *Config) Keys() []string {
	keys := make([]string, len(c.TypeMap))
	for i, e := range c.TypeMap {
		keys[i] = e.Key
	}
	return keys
}

// Set stores opts under key, replacing an existing entry in place.
func (c *Config) Set(key string, opts schema.FieldBuilderOptions) {
	if i := c.index(key); i >= 0 {
		c.TypeMap[i].Value = opts
		return
	}
	c.TypeMap = append(c.TypeMap, schema.TypeMapEntry{Key: key, Value: opts})
}

// Merge copies the entries of other on top of c.
func (c *Config) Merge(other *Config) {
	for _, e := range other.TypeMap {
		c.Set(e.Key, *e.Value.Clone())
	}
}

// Clone returns a deep copy of the configuration.
func (c *Config) Clone() *Config {
	out := &Config{TypeMap: make([]schema.TypeMapEntry, len(c.TypeMap))}
	for i, e := range c.TypeMap {
		out.TypeMap[i] = schema.TypeMapEntry{Key: e.Key, Value: *e.Value.Clone()}
	}
	return out
}

func (c *Config) index(key string) int {
	return slices.IndexFunc(c.TypeMap, func(e schema.TypeMapEntry) bool { return e.Key == key })
}

// Load parses the configuration document raw and merges the custom
// documents on top of it, in order. Each document is checked for keys that
// appear more than once.
func Load(raw []byte, custom ...[]byte) (*Config, error) {
	cfg, err := Parse(bytes.NewReader(raw))
	if err != nil {
		return nil, err
	}
	for _, doc := range custom {
		c, err := Parse(bytes.NewReader(doc))
		if err != nil {
			return nil, fmt.Errorf("custom config: %w", err)
		}
		cfg.Merge(c)
	}
	return cfg, nil
}

// Parse decodes a single configuration document from r.
func Parse(r io.Reader) (*Config, error) {
	var doc yaml.Node
	if err := yaml.NewDecoder(r).Decode(&doc); err != nil {
		if errors.Is(err, io.EOF) {
			return &Config{}, nil
		}
		return nil, fmt.Errorf("%w: %v", protobuilder.ErrInvalidConfig, err)
	}
	if dups := duplicateKeys(&doc); len(dups) > 0 {
		return nil, protobuilder.NewDuplicateKeyError(dups...)
	}
	cfg := &Config{}
	if err := doc.Decode(cfg); err != nil {
		return nil, fmt.Errorf("%w: %v", protobuilder.ErrInvalidConfig, err)
	}
	return cfg, nil
}

// duplicateKeys returns the sorted type map keys that occur more than once
// in the document. Decoding into a map would silently keep the last entry,
// so the keys are counted on the node tree.
func duplicateKeys(doc *yaml.Node) []string {
	counts := make(map[string]int)
	var dups []string
	for _, key := range typeMapKeys(doc) {
		if counts[key]++; counts[key] == 2 {
			dups = append(dups, key)
		}
	}
	slices.Sort(dups)
	return dups
}

func typeMapKeys(doc *yaml.Node) []string {
	root := doc
	if root.Kind == yaml.DocumentNode && len(root.Content) > 0 {
		root = root.Content[0]
	}
	seq := mappingValue(root, "type_map")
	if seq == nil || seq.Kind != yaml.SequenceNode {
		return nil
	}
	var keys []string
	for _, item := range seq.Content {
		if k := mappingValue(item, "key"); k != nil && k.Kind == yaml.ScalarNode {
			keys = append(keys, k.Value)
		}
	}
	return keys
}

func mappingValue(n *yaml.Node, key string) *yaml.Node {
	if n == nil || n.Kind != yaml.MappingNode {
		return nil
	}
	for i := 0; i+1 < len(n.Content); i += 2 {
		if n.Content[i].Value == key {
			return n.Content[i+1]
		}
	}
	return nil
}
