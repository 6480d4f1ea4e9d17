package config

import (
	"errors"
	"regexp"
	"slices"
	"strings"

	"github.com/syssam/protobuilder"
	"github.com/syssam/protobuilder/schema"
)

// ConfigError reports a type map entry that violates a configuration rule.
type ConfigError struct {
	Key     string
	Entry   string // rendered entry: key: '<key>' -> { <options> }
	Message string
}

// Error returns the error string.
func (e *ConfigError) Error() string {
	return "protobuilder: " + e.Message + " " + e.Entry
}

// Is reports whether the target matches ErrInvalidConfig.
func (e *ConfigError) Is(err error) bool {
	return err == protobuilder.ErrInvalidConfig
}

// IsConfigError returns true if the error is a ConfigError.
func IsConfigError(err error) bool {
	var e *ConfigError
	return errors.As(err, &e)
}

func newConfigError(key string, opts *schema.FieldBuilderOptions, msg string) *ConfigError {
	return &ConfigError{Key: key, Entry: entryString(key, opts), Message: msg}
}

func entryString(key string, opts *schema.FieldBuilderOptions) string {
	return "key: '" + key + "' -> { " + opts.DebugString() + " }"
}

var customKey = regexp.MustCompile(`^\$[[:alpha:]][[:word:]]*$`)

// VerifyTypeEntry checks a single type map entry. The first violated rule
// is reported; an empty key is only reported when all other rules pass.
func VerifyTypeEntry(key string, opts *schema.FieldBuilderOptions) error {
	fail := func(msg string) error { return newConfigError(key, opts, msg) }
	switch {
	case strings.ContainsRune(strings.ReplaceAll(opts.GetType(), "@type@", "Type"), '@'):
		return fail("May not use '@' (beyond '@type@') in type:")
	case opts.HasName():
		return fail("May not provide 'name':")
	case opts.DecoratedType != "" && opts.GetType() == "":
		return fail("May not use 'decorated_type' without 'type':")
	case strings.Contains(opts.GetValue(), "@type@"):
		return fail("May not use '@type@' in 'value':")
	case strings.Contains(opts.GetValue(), "@value@"):
		return fail("May not use '@value@' in 'value':")
	case slices.Contains(opts.Include, ""):
		return fail("May not use empty 'include':")
	case slices.ContainsFunc(opts.Include, func(s string) bool { return strings.Contains(s, "\n") }):
		return fail("May not use new-line in 'include', use multiple includes:")
	case opts.Automatic && !strings.HasPrefix(key, "="):
		return fail("Automatic types must not start with '=':")
	case isReserved(key) && !IsBuiltinType(key):
		return fail("Type names (key) starting with '@' or '%' are reserved for internal use:")
	case strings.HasPrefix(key, "$") && !customKey.MatchString(key):
		return fail("Custom keys must start with '$', followed by an alphabetical character, " +
			"followed by any number of alphanumeric characters:")
	case opts.HasMacro():
		return fail("The `macro` field can only be used for field annotations:")
	case key == "":
		return fail("Must specify a non-empty 'key':")
	}
	return nil
}

// Verify checks every entry of the configuration.
func (c *Config) Verify() error {
	for i := range c.TypeMap {
		if err := VerifyTypeEntry(c.TypeMap[i].Key, &c.TypeMap[i].Value); err != nil {
			return err
		}
	}
	return nil
}

func isReserved(key string) bool {
	return strings.HasPrefix(key, "@") || strings.HasPrefix(key, "%")
}

// BuiltinTypes returns the sorted names of the builtin type map entries.
func BuiltinTypes() []string {
	names := make([]string, 0, len(builtinTypes))
	for name := range builtinTypes {
		names = append(names, name)
	}
	slices.Sort(names)
	return names
}

// IsBuiltinType reports whether key names a builtin type map entry.
func IsBuiltinType(key string) bool {
	_, ok := builtinTypes[key]
	return ok
}
