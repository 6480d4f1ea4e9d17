package gen

import (
	"errors"
	"log/slog"

	"github.com/syssam/protobuilder/compiler/config"
)

// Option configures code generation.
type Option func(*Config) error

// WithHeader sets the path of the generated header.
func WithHeader(path string) Option {
	return func(c *Config) error {
		if path == "" {
			return NewOptionError("Header", nil, "header path cannot be empty")
		}
		c.Header = path
		return nil
	}
}

// WithSource sets the path of the generated source file.
func WithSource(path string) Option {
	return func(c *Config) error {
		if path == "" {
			return NewOptionError("Source", nil, "source path cannot be empty")
		}
		c.Source = path
		return nil
	}
}

// WithInterface enables the interface header and sets its path.
func WithInterface(path string) Option {
	return func(c *Config) error {
		if path == "" {
			return NewOptionError("Interface", nil, "interface path cannot be empty")
		}
		c.Interface = path
		c.MakeInterface = true
		return nil
	}
}

// WithHeaderValue overrides the header path referenced by the generated
// code, e.g. to break cyclic test dependencies.
func WithHeaderValue(header string) Option {
	return func(c *Config) error {
		c.HeaderValue = header
		return nil
	}
}

// WithStripPrefixDir sets the comma separated list of directory prefixes
// (regular expressions) stripped from referenced header paths.
func WithStripPrefixDir(list string) Option {
	return func(c *Config) error {
		if err := validatePrefixDirs(list); err != nil {
			return err
		}
		c.StripPrefixDir = list
		return nil
	}
}

// WithTemplates sets the template files. Empty paths keep the current
// setting.
func WithTemplates(header, source, iface string) Option {
	return func(c *Config) error {
		if header != "" {
			c.HeaderTemplate = header
		}
		if source != "" {
			c.SourceTemplate = source
		}
		if iface != "" {
			c.InterfaceTemplate = iface
		}
		return nil
	}
}

// WithMaxFieldDepth limits the depth of flattened sub-field setters.
// Zero means unlimited.
func WithMaxFieldDepth(n int) Option {
	return func(c *Config) error {
		if n < 0 {
			return NewOptionError("MaxFieldDepth", n, "must not be negative")
		}
		c.MaxFieldDepth = n
		return nil
	}
}

// WithMaxDepth sets the absolute nesting limit.
func WithMaxDepth(n int) Option {
	return func(c *Config) error {
		if n < 0 {
			return NewOptionError("MaxDepth", n, "must not be negative")
		}
		c.MaxDepth = n
		return nil
	}
}

// WithValidator enables validator code. A non-empty header is included by
// every validating builder.
func WithValidator(header string) Option {
	return func(c *Config) error {
		c.UseValidator = true
		c.ValidatorHeader = header
		return nil
	}
}

// WithTypes sets the type map configuration.
func WithTypes(m *config.Manager) Option {
	return func(c *Config) error {
		if m == nil {
			return NewOptionError("Types", nil, "type configuration cannot be nil")
		}
		c.Types = m
		return nil
	}
}

// WithWorkers bounds the number of concurrently generated messages and
// written files. Zero selects GOMAXPROCS.
func WithWorkers(n int) Option {
	return func(c *Config) error {
		if n < 0 {
			return NewOptionError("Workers", n, "must not be negative")
		}
		c.Workers = n
		return nil
	}
}

// WithLogger sets the logger of the run.
func WithLogger(l *slog.Logger) Option {
	return func(c *Config) error {
		c.Logger = l
		return nil
	}
}

// Apply applies options to the config.
// It returns the first error encountered.
func (c *Config) Apply(opts ...Option) error {
	for _, opt := range opts {
		if err := opt(c); err != nil {
			return err
		}
	}
	return nil
}

// ApplyAll applies options and collects all errors.
// Returns a joined error if any options failed.
func (c *Config) ApplyAll(opts ...Option) error {
	var errs []error
	for _, opt := range opts {
		if err := opt(c); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// NewConfig creates a new Config with the given options and validates it.
func NewConfig(opts ...Option) (*Config, error) {
	c := &Config{}
	if err := c.Apply(opts...); err != nil {
		return nil, err
	}
	if err := c.Validate(); err != nil {
		return nil, err
	}
	return c, nil
}

// MustNewConfig creates a new Config with the given options.
// It panics if any option fails.
func MustNewConfig(opts ...Option) *Config {
	c, err := NewConfig(opts...)
	if err != nil {
		panic(err)
	}
	return c
}
