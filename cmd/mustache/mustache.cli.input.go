package main

import (
	"encoding/json"
	"errors"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/itsatony/go-mustache"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"gopkg.in/yaml.v3"
)

// readInput reads content from a file or stdin
func readInput(path string, stdin io.Reader) ([]byte, error) {
	if path == InputSourceStdin {
		return io.ReadAll(stdin)
	}

	return os.ReadFile(path)
}

// openOutput returns the destination for rendered output and a function that
// releases it
func openOutput(path string, stdout io.Writer) (io.Writer, func() error, error) {
	if path == FlagDefaultOutput {
		return stdout, func() error { return nil }, nil
	}

	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, FilePermissions)
	if err != nil {
		return nil, nil, err
	}
	return f, f.Close, nil
}

// loadData decodes the view from a data file or an inline JSON string.
// Files ending in .yaml or .yml are decoded as YAML.
func loadData(jsonStr, filePath string) (map[string]any, error) {
	var (
		raw    []byte
		isYAML bool
	)

	if filePath != "" {
		data, err := os.ReadFile(filePath)
		if err != nil {
			return nil, err
		}
		raw = data
		ext := strings.ToLower(filepath.Ext(filePath))
		isYAML = ext == DataExtYAML || ext == DataExtYML
	} else if jsonStr != "" {
		raw = []byte(jsonStr)
	} else {
		// No data provided, return empty map
		return make(map[string]any), nil
	}

	var result map[string]any
	var err error
	if isYAML {
		err = yaml.Unmarshal(raw, &result)
	} else {
		err = json.Unmarshal(raw, &result)
	}
	if err != nil {
		return nil, err
	}
	if result == nil {
		return nil, errors.New(ErrMsgDataNotObject)
	}

	return result, nil
}

// partialSource describes where partials come from
type partialSource struct {
	dir   string
	ext   string
	dsn   string
	table string
}

// open returns the loader for the configured source, or nil when no source
// was given, and a function that releases it
func (p partialSource) open() (mustache.PartialLoader, func() error, error) {
	noop := func() error { return nil }

	switch {
	case p.dir != "" && p.dsn != "":
		return nil, noop, errors.New(ErrMsgPartialSourcesMixed)
	case p.dir != "":
		loader, err := mustache.NewFilesystemLoaderWithExt(p.dir, p.ext)
		if err != nil {
			return nil, noop, err
		}
		return loader, noop, nil
	case p.dsn != "":
		cfg := mustache.DefaultPostgresConfig()
		cfg.ConnectionString = p.dsn
		if p.table != "" {
			cfg.Table = p.table
		}
		loader, err := mustache.NewPostgresLoader(cfg)
		if err != nil {
			return nil, noop, err
		}
		return loader, loader.Close, nil
	}
	return nil, noop, nil
}

// newLogger returns a console logger on stderr when verbose, or a no-op logger
func newLogger(verbose bool, stderr io.Writer) *zap.Logger {
	if !verbose {
		return zap.NewNop()
	}
	core := zapcore.NewCore(
		zapcore.NewConsoleEncoder(zap.NewDevelopmentEncoderConfig()),
		zapcore.AddSync(stderr),
		zapcore.DebugLevel,
	)
	return zap.New(core)
}
