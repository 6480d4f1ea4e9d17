package gen

import (
	"context"
	"log/slog"
	"os"
	"runtime"

	"github.com/syssam/protobuilder/compiler/config"
	"github.com/syssam/protobuilder/internal/logx"
	"github.com/syssam/protobuilder/schema"
)

// File is a generated file.
type File struct {
	Where   Where
	Path    string
	Content []byte
}

// Result holds the files of a generation run.
type Result struct {
	Files []*File
	// Builders lists the generated builder class names.
	Builders []string
}

// File returns the generated file of the channel, or nil.
func (r *Result) File(where Where) *File {
	for _, f := range r.Files {
		if f.Where == where {
			return f
		}
	}
	return nil
}

// Generator generates the builder files of one package.
type Generator struct {
	cfg *Config
}

// NewGenerator returns a generator for the validated configuration.
func NewGenerator(cfg *Config) (*Generator, error) {
	if cfg == nil {
		return nil, NewOptionError("Config", nil, "config cannot be nil")
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &Generator{cfg: cfg}, nil
}

// Config returns the configuration of the generator.
func (g *Generator) Config() *Config { return g.cfg }

// Generate builds the header, source and optional interface file of the
// messages. Nothing is written to disk; see WriteFiles.
func (g *Generator) Generate(ctx context.Context, messages []*schema.Message) (*Result, error) {
	cfg := g.cfg
	log := logx.OrDefault(cfg.Logger)
	header, err := cfg.HeaderInclude()
	if err != nil {
		return nil, NewOptionError("StripPrefixDir", cfg.StripPrefixDir, err.Error())
	}
	iface, err := cfg.InterfaceInclude()
	if err != nil {
		return nil, NewOptionError("StripPrefixDir", cfg.StripPrefixDir, err.Error())
	}
	tmpls := make(map[Where]string, len(Channels))
	for _, where := range cfg.Targets() {
		if tmpls[where], err = readTemplate(templatePath(cfg, where)); err != nil {
			return nil, err
		}
	}
	types := cfg.Types
	if types == nil {
		types = config.Default()
	}
	workers := cfg.Workers
	if workers == 0 {
		workers = runtime.GOMAXPROCS(0)
	}

	w := NewBufferWriter()
	tb, err := NewTemplateBuilder(TemplateOptions{
		Config:            types,
		Writer:            w,
		Messages:          messages,
		Header:            header,
		HeaderTemplate:    tmpls[Header],
		SourceTemplate:    tmpls[Source],
		InterfaceTemplate: tmpls[Interface],
		MaxFieldDepth:     cfg.MaxFieldDepth,
		MaxDepth:          cfg.MaxDepth,
		UseValidator:      cfg.UsesValidator(),
		ValidatorHeader:   cfg.ValidatorHeader,
		MakeInterface:     cfg.MakeInterface,
		InterfaceHeader:   iface,
		Workers:           workers,
		Logger:            log,
	})
	if err != nil {
		return nil, err
	}
	if err := tb.WriteBuilder(ctx); err != nil {
		return nil, err
	}

	res := &Result{}
	for _, out := range tb.outputs {
		res.Builders = append(res.Builders, out.builder.ClassName())
	}
	for _, where := range cfg.Targets() {
		res.Files = append(res.Files, &File{
			Where:   where,
			Path:    cfg.Path(where),
			Content: []byte(w.Contents(where)),
		})
	}
	log.Info("generated builders",
		slog.String("header", cfg.Header),
		slog.Int("messages", len(messages)))
	return res, nil
}

// Generate is a shortcut for NewGenerator followed by Generate.
func Generate(ctx context.Context, cfg *Config, messages []*schema.Message) (*Result, error) {
	g, err := NewGenerator(cfg)
	if err != nil {
		return nil, err
	}
	return g.Generate(ctx, messages)
}

func templatePath(cfg *Config, where Where) string {
	switch where {
	case Header:
		return cfg.HeaderTemplate
	case Source:
		return cfg.SourceTemplate
	case Interface:
		return cfg.InterfaceTemplate
	}
	return ""
}

// readTemplate returns the contents of the template file at path, or "" for
// the builtin template.
func readTemplate(path string) (string, error) {
	if path == "" || path == DefaultTemplateName {
		return "", nil
	}
	buf, err := os.ReadFile(path)
	if err != nil {
		return "", NewGenerationError("template", path, "read template", err)
	}
	return string(buf), nil
}
