package gen

import (
	"log/slog"
	"regexp"
	"strings"

	"github.com/syssam/protobuilder/compiler/config"
)

// DefaultTemplateName selects the builtin template of a channel.
const DefaultTemplateName = "default"

// Config holds the settings of one generation run.
type Config struct {
	// Header, Source and Interface are the paths of the generated files.
	Header    string
	Source    string
	Interface string
	// HeaderValue overrides the header path referenced by the generated
	// code. Defaults to Header.
	HeaderValue string
	// StripPrefixDir is a comma separated list of regular expressions
	// removed from the left of the referenced header paths.
	StripPrefixDir string
	// Template file paths; empty or DefaultTemplateName selects the
	// builtin template.
	HeaderTemplate    string
	SourceTemplate    string
	InterfaceTemplate string
	// MaxFieldDepth limits how deep sub-message fields are flattened into
	// setters of the root builder. Zero means unlimited.
	MaxFieldDepth int
	// MaxDepth is the absolute nesting limit. Zero selects the default.
	MaxDepth        int
	UseValidator    bool
	ValidatorHeader string
	MakeInterface   bool
	// Types is the type map configuration. Nil selects config.Default().
	Types   *config.Manager
	Workers int
	Logger  *slog.Logger
}

// OutputConfig groups the output file settings.
type OutputConfig struct {
	Header    string
	Source    string
	Interface string
}

// Output returns the output file settings.
func (c *Config) Output() OutputConfig {
	return OutputConfig{
		Header:    c.Header,
		Source:    c.Source,
		Interface: c.Interface,
	}
}

// FeatureConfig groups the settings that change the generated code.
type FeatureConfig struct {
	MaxFieldDepth   int
	MaxDepth        int
	UseValidator    bool
	ValidatorHeader string
	MakeInterface   bool
}

// Features returns the code generation settings.
func (c *Config) Features() FeatureConfig {
	return FeatureConfig{
		MaxFieldDepth:   c.MaxFieldDepth,
		MaxDepth:        c.MaxDepth,
		UseValidator:    c.UseValidator,
		ValidatorHeader: c.ValidatorHeader,
		MakeInterface:   c.MakeInterface,
	}
}

// Targets returns the channels written by the run.
func (c *Config) Targets() []Where {
	if c.MakeInterface {
		return []Where{Header, Source, Interface}
	}
	return []Where{Header, Source}
}

// Path returns the output path of the channel.
func (c *Config) Path(where Where) string {
	switch where {
	case Header:
		return c.Header
	case Source:
		return c.Source
	case Interface:
		return c.Interface
	}
	return ""
}

// UsesValidator reports whether validator code is generated. Setting a
// validator header enables it.
func (c *Config) UsesValidator() bool {
	return c.UseValidator || c.ValidatorHeader != ""
}

// HeaderInclude returns the header path as referenced by the generated
// code.
func (c *Config) HeaderInclude() (string, error) {
	header := c.HeaderValue
	if header == "" {
		header = c.Header
	}
	return StripPrefixDir(header, c.StripPrefixDir)
}

// InterfaceInclude returns the interface header path as referenced by the
// generated code.
func (c *Config) InterfaceInclude() (string, error) {
	return StripPrefixDir(c.Interface, c.StripPrefixDir)
}

// Validate checks the configuration for missing or inconsistent settings.
func (c *Config) Validate() error {
	switch {
	case c.Header == "":
		return NewOptionError("Header", nil, "header path cannot be empty")
	case c.Source == "":
		return NewOptionError("Source", nil, "source path cannot be empty")
	case c.MakeInterface && c.Interface == "":
		return NewOptionError("Interface", nil, "interface path required when making an interface")
	case c.MaxFieldDepth < 0:
		return NewOptionError("MaxFieldDepth", c.MaxFieldDepth, "must not be negative")
	case c.MaxDepth < 0:
		return NewOptionError("MaxDepth", c.MaxDepth, "must not be negative")
	case c.Workers < 0:
		return NewOptionError("Workers", c.Workers, "must not be negative")
	}
	return validatePrefixDirs(c.StripPrefixDir)
}

func validatePrefixDirs(list string) error {
	if list == "" {
		return nil
	}
	for _, re := range strings.Split(list, ",") {
		if _, err := regexp.Compile(re); err != nil {
			return NewOptionError("StripPrefixDir", re, err.Error())
		}
	}
	return nil
}
