package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/go-openapi/inflect"

	"github.com/syssam/protobuilder/compiler/config"
	"github.com/syssam/protobuilder/compiler/gen"
	"github.com/syssam/protobuilder/compiler/load"
)

func execute(ctx context.Context, o *options, stdout io.Writer, log *slog.Logger) error {
	if o.Workdir != "" {
		if err := os.Chdir(o.Workdir); err != nil {
			return fmt.Errorf("workdir: %w", err)
		}
	}
	if o.Watch {
		return watch(ctx, o, stdout, log)
	}
	_, err := run(ctx, o, stdout, log)
	return err
}

// run performs one generation: select the messages, generate the files
// and write them, or compare them with --check.
func run(ctx context.Context, o *options, stdout io.Writer, log *slog.Logger) (*load.Selection, error) {
	types, err := o.types()
	if err != nil {
		return nil, err
	}
	if o.ConvDepsFile != "" {
		f, err := os.Open(o.ConvDepsFile)
		if err != nil {
			return nil, fmt.Errorf("conversion dependencies: %w", err)
		}
		err = types.CheckConversionDependencies(f)
		f.Close()
		if err != nil {
			return nil, err
		}
	}

	flag, err := load.ParseProtoFlag(o.Proto)
	if err != nil {
		return nil, err
	}
	loader := &load.Loader{ImportPaths: o.ProtoPaths, Logger: log}
	sel, err := loader.Select(ctx, flag)
	if err != nil {
		return nil, err
	}
	log.Debug("selected messages",
		slog.String("mode", sel.Mode.String()),
		slog.Any("messages", sel.FullNames()))

	cfg, err := gen.NewConfig(o.genOptions(sel.Mode, types, log)...)
	if err != nil {
		return nil, err
	}
	res, err := gen.Generate(ctx, cfg, sel.Messages)
	if err != nil {
		return nil, err
	}

	if o.Check {
		diff, err := gen.CheckFiles(res.Files)
		if diff != "" {
			fmt.Fprint(stdout, diff)
		}
		return sel, err
	}
	w := gen.NewFileWriter()
	if err := w.WriteAll(ctx, res.Files); err != nil {
		return nil, err
	}
	fmt.Fprintln(stdout, summary(len(res.Builders), w.Metrics()))
	return sel, nil
}

// types returns the builtin type map with the --config document merged
// on top of it.
func (o *options) types() (*config.Manager, error) {
	if o.Config == "" {
		return config.Default(), nil
	}
	raw, err := os.ReadFile(o.Config)
	if err != nil {
		return nil, fmt.Errorf("config: %w", err)
	}
	return config.NewWithCustom(raw)
}

func (o *options) genOptions(mode load.SearchMode, types *config.Manager, log *slog.Logger) []gen.Option {
	depth := o.MaxFieldDepth
	if depth == 0 && mode == load.TransitiveAll {
		depth = 1
	}
	opts := []gen.Option{
		gen.WithHeader(o.Header),
		gen.WithSource(o.Source),
		gen.WithHeaderValue(o.TplValueHeader),
		gen.WithStripPrefixDir(o.StripPrefixDir),
		gen.WithTemplates(o.HeaderIn, o.SourceIn, o.InterfaceIn),
		gen.WithMaxFieldDepth(depth),
		gen.WithTypes(types),
		gen.WithLogger(log),
	}
	if o.MakeInterface {
		opts = append(opts, gen.WithInterface(o.Interface))
	}
	if o.UseValidator || o.ValidatorHeader != "" {
		opts = append(opts, gen.WithValidator(o.ValidatorHeader))
	}
	return opts
}

// summary renders e.g. "generated 3 builders: 2 files written, 1 file unchanged".
func summary(builders int, m *gen.WriterMetrics) string {
	return fmt.Sprintf("generated %s: %s written, %s unchanged",
		count(builders, "builder"), count(m.FilesWritten, "file"), count(m.FilesUnchanged, "file"))
}

func count(n int, noun string) string {
	if n != 1 {
		noun = inflect.Pluralize(noun)
	}
	return fmt.Sprintf("%d %s", n, noun)
}

// isOutdated reports whether err is a --check failure.
func isOutdated(err error) bool { return errors.Is(err, gen.ErrOutdated) }
