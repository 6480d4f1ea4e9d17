package main

import (
	"errors"
	"fmt"
	"path/filepath"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/spf13/pflag"

	"github.com/syssam/protobuilder/compiler/gen"
	"github.com/syssam/protobuilder/internal/logx"
)

// options holds the command line flags.
type options struct {
	Proto           string   `flag:"proto" validate:"required"`
	Header          string   `flag:"header" validate:"required"`
	Source          string   `flag:"source" validate:"required"`
	Interface       string   `flag:"interface" validate:"required_if=MakeInterface true"`
	ProtoPaths      []string `flag:"proto_path"`
	StripPrefixDir  string   `flag:"strip_prefix_dir"`
	HeaderIn        string   `flag:"header_in"`
	SourceIn        string   `flag:"source_in"`
	InterfaceIn     string   `flag:"interface_in"`
	TplValueHeader  string   `flag:"tpl_value_header"`
	MaxFieldDepth   int      `flag:"max_field_depth" validate:"gte=0"`
	ConvDepsFile    string   `flag:"conv_deps_file"`
	UseValidator    bool     `flag:"use_validator"`
	ValidatorHeader string   `flag:"validator_header"`
	MakeInterface   bool     `flag:"make_interface"`
	Config          string   `flag:"config"`
	Workdir         string   `flag:"workdir" validate:"omitempty,abspath"`
	LogFormat       string   `flag:"log_format" validate:"oneof=logfmt json"`
	Verbose         bool     `flag:"verbose"`
	Check           bool     `flag:"check" validate:"excluded_with=Watch"`
	Watch           bool     `flag:"watch"`
}

func (o *options) register(fs *pflag.FlagSet) {
	fs.StringVar(&o.Proto, "proto", "", `messages and files: "<messages>:<file>[,<file>...]", messages being "**", "*+", "*" or full names`)
	fs.StringVar(&o.Header, "header", "", "generated header file")
	fs.StringVar(&o.Source, "source", "", "generated source file")
	fs.StringVar(&o.Interface, "interface", "", "generated interface header file")
	fs.StringSliceVar(&o.ProtoPaths, "proto_path", nil, "directories searched for proto files and imports (default \".\")")
	fs.StringVar(&o.StripPrefixDir, "strip_prefix_dir", "", "comma separated regular expressions stripped from included header paths")
	fs.StringVar(&o.HeaderIn, "header_in", gen.DefaultTemplateName, "header template")
	fs.StringVar(&o.SourceIn, "source_in", gen.DefaultTemplateName, "source template")
	fs.StringVar(&o.InterfaceIn, "interface_in", gen.DefaultTemplateName, "interface template")
	fs.StringVar(&o.TplValueHeader, "tpl_value_header", "", "header path used in the generated include of the header")
	fs.IntVar(&o.MaxFieldDepth, "max_field_depth", 0, "maximum depth of flattened sub-message fields, 0 is unlimited (1 for \"**\")")
	fs.StringVar(&o.ConvDepsFile, "conv_deps_file", "", "file listing the build labels available to type conversions")
	fs.BoolVar(&o.UseValidator, "use_validator", false, "generate validator calls")
	fs.StringVar(&o.ValidatorHeader, "validator_header", "", "header declaring the validators, implies --use_validator")
	fs.BoolVar(&o.MakeInterface, "make_interface", false, "generate the interface header")
	fs.StringVar(&o.Config, "config", "", "YAML type map merged over the builtin configuration")
	fs.StringVar(&o.Workdir, "workdir", "", "absolute directory to run in")
	fs.StringVar(&o.LogFormat, "log_format", string(logx.FormatLogfmt), "log format: logfmt or json")
	fs.BoolVarP(&o.Verbose, "verbose", "v", false, "enable debug logging")
	fs.BoolVar(&o.Check, "check", false, "report a diff instead of writing when files are out of date")
	fs.BoolVar(&o.Watch, "watch", false, "regenerate when the proto files change")
}

func newValidator() *validator.Validate {
	v := validator.New()
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		return f.Tag.Get("flag")
	})
	// Registration only fails for empty tags or nil functions.
	_ = v.RegisterValidation("abspath", func(fl validator.FieldLevel) bool {
		return filepath.IsAbs(fl.Field().String())
	})
	return v
}

// validate checks the flags and reports the failures by flag name.
func (o *options) validate() error {
	err := newValidator().Struct(o)
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return err
	}
	msgs := make([]string, 0, len(verrs))
	for _, fe := range verrs {
		msgs = append(msgs, flagMessage(fe))
	}
	return fmt.Errorf("invalid flags: %s", strings.Join(msgs, "; "))
}

func flagMessage(fe validator.FieldError) string {
	name := "--" + fe.Field()
	switch fe.Tag() {
	case "required":
		return name + " is required"
	case "required_if":
		return name + " is required with --make_interface"
	case "gte":
		return name + " must not be negative"
	case "abspath":
		return name + " must be an absolute path"
	case "oneof":
		return fmt.Sprintf("%s must be one of %s, got %q", name, strings.ReplaceAll(fe.Param(), " ", ", "), fe.Value())
	case "excluded_with":
		return name + " cannot be combined with --watch"
	default:
		return fmt.Sprintf("%s fails %s", name, fe.Tag())
	}
}
