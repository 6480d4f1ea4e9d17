package main

import (
	"io"
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/syssam/protobuilder/internal/logx"
)

func newRootCmd() *cobra.Command {
	o := &options{}
	cmd := &cobra.Command{
		Use:   "protobuilder",
		Short: "Generate C++ builder classes for protobuf messages",
		Long: `protobuilder reads .proto files and writes a C++ header and source file
holding one fluent builder class per selected message.

Messages are selected with --proto:

  --proto='**:foo/bar.proto'        all messages of the file
  --proto='*+:foo/bar.proto'        top-level messages and repeated sub-messages
  --proto='*:foo/bar.proto'         top-level messages
  --proto='foo.Bar,foo.Baz:foo/bar.proto'`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if err := o.validate(); err != nil {
				return err
			}
			log, err := o.logger(cmd.ErrOrStderr())
			if err != nil {
				return err
			}
			err = execute(cmd.Context(), o, cmd.OutOrStdout(), log)
			switch {
			case isOutdated(err):
				log.Warn("generated files are out of date", slog.Any("error", err))
			case err != nil:
				log.Error("generation failed", slog.Any("error", err))
			}
			return err
		},
	}
	o.register(cmd.Flags())
	return cmd
}

func (o *options) logger(w io.Writer) (*slog.Logger, error) {
	format, err := logx.ParseFormat(o.LogFormat)
	if err != nil {
		return nil, err
	}
	level := slog.LevelInfo
	if o.Verbose {
		level = slog.LevelDebug
	}
	return logx.New(logx.WithFormat(format), logx.WithLevel(level), logx.WithWriter(w)), nil
}
