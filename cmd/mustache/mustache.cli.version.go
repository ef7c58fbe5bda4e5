package main

import (
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"io"
	"runtime"
	"runtime/debug"
	"strings"

	"github.com/itsatony/go-mustache"
)

// versionOutput is the version report. Engine holds the defaults a render
// starts from when no flags override them.
type versionOutput struct {
	Version   string        `json:"version"`
	Revision  string        `json:"revision"`
	Modified  bool          `json:"modified"`
	GoVersion string        `json:"go_version"`
	Engine    engineDetails `json:"engine"`
}

type engineDetails struct {
	Tags           string `json:"tags"`
	MaxDepth       int    `json:"max_partial_depth"`
	EscapedEntries string `json:"escaped"`
}

func runVersion(args []string, stdout, stderr io.Writer) int {
	format, err := parseVersionFlags(args)
	if err != nil {
		fmt.Fprintf(stderr, FmtErrorWithCause, ErrMsgInvalidFormat, err)
		return ExitCodeUsageError
	}

	v := buildVersion()
	if format == OutputFormatJSON {
		jsonBytes, _ := json.MarshalIndent(v, "", "  ")
		fmt.Fprintln(stdout, string(jsonBytes))
		return ExitCodeSuccess
	}

	revision := v.Revision
	if v.Modified {
		revision += VersionModifiedSuffix
	}
	fmt.Fprintf(stdout, VersionTextTemplate+FmtNewline,
		v.Version, revision, v.GoVersion, v.Engine.Tags, v.Engine.MaxDepth, v.Engine.EscapedEntries)
	return ExitCodeSuccess
}

func parseVersionFlags(args []string) (string, error) {
	fs := flag.NewFlagSet(CmdNameVersion, flag.ContinueOnError)
	fs.SetOutput(io.Discard)

	var format string
	fs.StringVar(&format, FlagFormat, FlagDefaultFormat, "")
	fs.StringVar(&format, FlagFormatShort, FlagDefaultFormat, "")

	if err := fs.Parse(args); err != nil {
		return "", err
	}
	if format != OutputFormatText && format != OutputFormatJSON {
		return "", errors.New(ErrMsgInvalidFormat)
	}
	return format, nil
}

// buildVersion reads module and VCS data stamped by the Go toolchain.
func buildVersion() versionOutput {
	tags := mustache.DefaultTags()
	v := versionOutput{
		Version:   VersionUnknown,
		Revision:  VersionUnknown,
		GoVersion: runtime.Version(),
		Engine: engineDetails{
			Tags:           tags.Open + " " + tags.Close,
			MaxDepth:       mustache.DefaultMaxDepth,
			EscapedEntries: mustache.EscapeHTML(VersionEscapeSample),
		},
	}

	info, ok := debug.ReadBuildInfo()
	if !ok {
		return v
	}
	if info.Main.Version != "" {
		v.Version = info.Main.Version
	}
	for _, s := range info.Settings {
		switch s.Key {
		case buildSettingRevision:
			v.Revision = shortRevision(s.Value)
		case buildSettingModified:
			v.Modified = s.Value == "true"
		}
	}
	return v
}

func shortRevision(rev string) string {
	if len(rev) > VersionRevisionLength {
		return rev[:VersionRevisionLength]
	}
	return strings.TrimSpace(rev)
}
