package config

import (
	_ "embed"
	"fmt"
	"maps"
	"strings"
	"sync"

	"github.com/syssam/protobuilder"
	"github.com/syssam/protobuilder/compiler/cpp"
	"github.com/syssam/protobuilder/schema"
)

//go:generate go run internal/gen.go

//go:embed default.yaml
var defaultConfig []byte

// DefaultConfig returns the raw default configuration document.
func DefaultConfig() []byte { return defaultConfig }

// TypeInfoKind selects which kind of key GetTypeInfo expects.
type TypeInfoKind uint8

const (
	// TypeInfoParameter looks up a parameter type (e.g. "@absl::string_view").
	TypeInfoParameter TypeInfoKind = iota
	// TypeInfoSpecial looks up a special '%' type (e.g. "%Status").
	TypeInfoSpecial
)

// Manager answers type map queries for a verified configuration. A Manager
// is immutable; Update returns a new one.
type Manager struct {
	config    *Config
	special   map[string]*schema.FieldBuilderOptions
	automatic map[string]*schema.FieldBuilderOptions
	expanded  map[string]string
}

var defaultManager = sync.OnceValues(func() (*Manager, error) {
	return NewFromText(defaultConfig)
})

// Default returns the manager of the embedded default configuration. It
// panics if that configuration is invalid.
func Default() *Manager {
	m, err := defaultManager()
	if err != nil {
		panic(fmt.Sprintf("protobuilder: invalid default configuration: %v", err))
	}
	return m
}

// NewFromText returns a manager for the configuration document raw with the
// custom documents merged on top of it.
func NewFromText(raw []byte, custom ...[]byte) (*Manager, error) {
	cfg, err := Load(raw, custom...)
	if err != nil {
		return nil, err
	}
	return New(cfg)
}

// NewWithCustom returns a manager for the default configuration with the
// custom documents merged on top of it.
func NewWithCustom(custom ...[]byte) (*Manager, error) {
	if len(custom) == 0 {
		return Default(), nil
	}
	return NewFromText(defaultConfig, custom...)
}

// MustNew is like New but panics on error.
func MustNew(cfg *Config) *Manager {
	m, err := New(cfg)
	if err != nil {
		panic(err)
	}
	return m
}

// New verifies cfg and returns a manager for it. Keys of automatic types are
// rewritten to "=" followed by the absolute C++ type name, and their
// recursion is disabled unless configured.
func New(cfg *Config) (*Manager, error) {
	if err := cfg.Verify(); err != nil {
		return nil, err
	}
	out := &Config{TypeMap: make([]schema.TypeMapEntry, 0, len(cfg.TypeMap))}
	seen := make(map[string]struct{}, len(cfg.TypeMap))
	var dups []string
	for _, e := range cfg.TypeMap {
		key, opts := rekey(e.Key, e.Value.Clone())
		if _, ok := seen[key]; ok {
			dups = append(dups, key)
			continue
		}
		seen[key] = struct{}{}
		out.TypeMap = append(out.TypeMap, schema.TypeMapEntry{Key: key, Value: *opts})
	}
	if len(dups) > 0 {
		return nil, protobuilder.NewDuplicateKeyError(dups...)
	}
	return newManager(out), nil
}

// rekey normalizes the key of an automatic type to "=" followed by the
// absolute C++ type name and disables its recursion unless configured.
func rekey(key string, opts *schema.FieldBuilderOptions) (string, *schema.FieldBuilderOptions) {
	if !opts.Automatic {
		return key, opts
	}
	if !opts.HasRecurse() {
		opts.Recurse = schema.Bool(false)
	}
	return "=" + cpp.AbsoluteTypeName(key[1:]), opts
}

func newManager(cfg *Config) *Manager {
	m := &Manager{
		config:    cfg,
		special:   make(map[string]*schema.FieldBuilderOptions),
		automatic: make(map[string]*schema.FieldBuilderOptions),
		expanded:  make(map[string]string),
	}
	for i := range cfg.TypeMap {
		key, opts := cfg.TypeMap[i].Key, &cfg.TypeMap[i].Value
		if opts.Automatic {
			m.automatic[key[1:]] = opts
		}
		if strings.HasPrefix(key, "%") || strings.HasPrefix(key, "$") {
			m.special[key] = opts
			m.expand(key, opts)
		}
	}
	return m
}

// expand registers the expansions of a special type:
//
//	K             -> type
//	K%param       -> param
//	K+param       -> type param
//	K%value       -> value
//	K+param=value -> type param = value
func (m *Manager) expand(key string, opts *schema.FieldBuilderOptions) {
	typ, value := opts.GetType(), opts.GetValue()
	m.expanded[key] = typ
	param := opts.Param
	if param == "" {
		param = key[1:]
	}
	param = CamelCaseToSnakeCase(param)
	if param != "" {
		m.expanded[key+"%param"] = param
		m.expanded[key+"+param"] = typ + " " + param
	}
	if value != "" {
		m.expanded[key+"%value"] = value
	}
	if param != "" && value != "" {
		m.expanded[key+"+param=value"] = typ + " " + param + " = " + value
	}
}

// Update returns a manager with the type map of the message annotation
// merged on top of the receiver's configuration. Builtin '@' and '%' types
// cannot be updated.
func (m *Manager) Update(msg *schema.MessageBuilderOptions) (*Manager, error) {
	if msg == nil || len(msg.TypeMap) == 0 {
		return m, nil
	}
	cfg := m.config.Clone()
	for i := range msg.TypeMap {
		key, opts := msg.TypeMap[i].Key, &msg.TypeMap[i].Value
		if isReserved(key) && IsBuiltinType(key) {
			return nil, newConfigError(key, opts, "Cannot update configuration of builtin types:")
		}
		if err := VerifyTypeEntry(key, opts); err != nil {
			return nil, err
		}
		key, updated := rekey(key, opts.Clone())
		cfg.Set(key, *updated)
	}
	return newManager(cfg), nil
}

// MustUpdate is like Update but panics on error.
func (m *Manager) MustUpdate(msg *schema.MessageBuilderOptions) *Manager {
	u, err := m.Update(msg)
	if err != nil {
		panic(err)
	}
	return u
}

// Config returns the verified configuration. It must not be modified.
func (m *Manager) Config() *Config { return m.config }

// MergeFieldBuilderOptions resolves the macro reference of a field
// annotation: the referenced entry is used as the base and the annotation
// is merged on top of it.
func (m *Manager) MergeFieldBuilderOptions(fbo *schema.FieldBuilderOptions) *schema.FieldBuilderOptions {
	if fbo.GetMacro() == "" {
		return fbo.Clone()
	}
	base := m.config.Lookup(fbo.GetMacro())
	if base == nil {
		return fbo.Clone()
	}
	result := base.Clone()
	result.Merge(fbo)
	return result
}

// GetTypeInfo returns the entry for raw, or nil. Special types start with
// '%' and must be looked up with TypeInfoSpecial; asking for a special type
// with TypeInfoParameter, or vice versa, is a programming error and panics.
// The returned options must not be modified.
func (m *Manager) GetTypeInfo(raw string, kind TypeInfoKind) *schema.FieldBuilderOptions {
	if (kind == TypeInfoSpecial) != strings.HasPrefix(raw, "%") {
		panic(fmt.Sprintf("protobuilder: type info kind mismatch: Raw type: '%s'", raw))
	}
	return m.config.Lookup(raw)
}

// GetSpecialTypes returns the '%' and '$' entries by key.
func (m *Manager) GetSpecialTypes() map[string]*schema.FieldBuilderOptions {
	return maps.Clone(m.special)
}

// GetAutomaticTypes returns the automatic entries keyed by absolute C++ type.
func (m *Manager) GetAutomaticTypes() map[string]*schema.FieldBuilderOptions {
	return maps.Clone(m.automatic)
}

// GetAutomaticType returns the automatic entry for the absolute C++ type, or nil.
func (m *Manager) GetAutomaticType(typ string) *schema.FieldBuilderOptions {
	return m.automatic[typ]
}

// GetExpandedTypes returns all expansions of the special types.
func (m *Manager) GetExpandedTypes() map[string]string {
	return maps.Clone(m.expanded)
}

// GetExpandedType returns the expansion of typ, or "".
func (m *Manager) GetExpandedType(typ string) string {
	return m.expanded[typ]
}
