package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"

	"github.com/itsatony/go-mustache"
)

// renderConfig holds parsed render command configuration
type renderConfig struct {
	templatePath string
	dataJSON     string
	dataFilePath string
	partials     partialSource
	tags         string
	raw          bool
	outputPath   string
	verbose      bool
}

func runRender(args []string, stdin io.Reader, stdout, stderr io.Writer) int {
	cfg, err := parseRenderFlags(args)
	if err != nil {
		fmt.Fprintf(stderr, FmtErrorWithCause, ErrMsgInvalidFlags, err)
		return ExitCodeUsageError
	}

	// Read template
	templateSource, err := readInput(cfg.templatePath, stdin)
	if err != nil {
		fmt.Fprintf(stderr, FmtErrorWithCause, ErrMsgReadFileFailed, err)
		return ExitCodeInputError
	}

	// Parse data
	data, err := loadData(cfg.dataJSON, cfg.dataFilePath)
	if err != nil {
		fmt.Fprintf(stderr, FmtErrorWithCause, ErrMsgInvalidData, err)
		return ExitCodeInputError
	}

	loader, closeLoader, err := cfg.partials.open()
	if err != nil {
		fmt.Fprintf(stderr, FmtErrorWithCause, ErrMsgPartialsFailed, err)
		return ExitCodeInputError
	}
	defer closeLoader()

	opts := []mustache.Option{mustache.WithLogger(newLogger(cfg.verbose, stderr))}
	if cfg.tags != "" {
		tags, err := mustache.ParseTags(cfg.tags)
		if err != nil {
			fmt.Fprintf(stderr, FmtErrorWithCause, ErrMsgInvalidTags, err)
			return ExitCodeUsageError
		}
		opts = append(opts, mustache.WithTags(tags.Open, tags.Close))
	}
	if loader != nil {
		opts = append(opts, mustache.WithPartialLoader(loader))
	}
	if cfg.raw {
		opts = append(opts, mustache.WithEscapeFunc(mustache.NoEscape))
	}

	engine, err := mustache.New(opts...)
	if err != nil {
		fmt.Fprintf(stderr, FmtErrorWithCause, ErrMsgInvalidTags, err)
		return ExitCodeUsageError
	}

	out, closeOutput, err := openOutput(cfg.outputPath, stdout)
	if err != nil {
		fmt.Fprintf(stderr, FmtErrorWithCause, ErrMsgWriteOutputFailed, err)
		return ExitCodeError
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	// Chunks go out as they are rendered
	renderErr := engine.StreamRender(string(templateSource), data, nil).
		ForEach(ctx, func(_ context.Context, chunk string) error {
			_, err := io.WriteString(out, chunk)
			return err
		})
	closeErr := closeOutput()

	if renderErr != nil {
		fmt.Fprintf(stderr, FmtErrorWithCause, ErrMsgRenderFailed, renderErr)
		return ExitCodeError
	}
	if closeErr != nil {
		fmt.Fprintf(stderr, FmtErrorWithCause, ErrMsgWriteOutputFailed, closeErr)
		return ExitCodeError
	}

	return ExitCodeSuccess
}

func parseRenderFlags(args []string) (*renderConfig, error) {
	fs := flag.NewFlagSet(CmdNameRender, flag.ContinueOnError)
	fs.SetOutput(io.Discard) // Suppress default error messages

	cfg := &renderConfig{}

	fs.StringVar(&cfg.templatePath, FlagTemplate, "", "")
	fs.StringVar(&cfg.templatePath, FlagTemplateShort, "", "")
	fs.StringVar(&cfg.dataJSON, FlagData, "", "")
	fs.StringVar(&cfg.dataJSON, FlagDataShort, "", "")
	fs.StringVar(&cfg.dataFilePath, FlagDataFile, "", "")
	fs.StringVar(&cfg.dataFilePath, FlagDataFileShort, "", "")
	fs.StringVar(&cfg.partials.dir, FlagPartials, "", "")
	fs.StringVar(&cfg.partials.dir, FlagPartialsShort, "", "")
	fs.StringVar(&cfg.partials.ext, FlagPartialExt, mustache.DefaultPartialExt, "")
	fs.StringVar(&cfg.partials.dsn, FlagPartialsDB, "", "")
	fs.StringVar(&cfg.partials.table, FlagPartialsTable, "", "")
	fs.StringVar(&cfg.tags, FlagTags, "", "")
	fs.BoolVar(&cfg.raw, FlagRaw, false, "")
	fs.StringVar(&cfg.outputPath, FlagOutput, FlagDefaultOutput, "")
	fs.StringVar(&cfg.outputPath, FlagOutputShort, FlagDefaultOutput, "")
	fs.BoolVar(&cfg.verbose, FlagVerbose, false, "")
	fs.BoolVar(&cfg.verbose, FlagVerboseShort, false, "")

	if err := fs.Parse(args); err != nil {
		return nil, err
	}

	// Validation
	if cfg.templatePath == "" {
		return nil, errors.New(ErrMsgMissingTemplate)
	}

	return cfg, nil
}
