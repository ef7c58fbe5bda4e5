package main

import (
	"context"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"io"
	"strings"

	"github.com/itsatony/go-mustache"
)

// validateConfig holds parsed validate command configuration
type validateConfig struct {
	templatePath string
	partials     partialSource
	tags         string
	format       string
	strict       bool
}

// validationOutput represents JSON output for validation
type validationOutput struct {
	Valid    bool                    `json:"valid"`
	Partials []string                `json:"partials,omitempty"`
	Issues   []validationIssueOutput `json:"issues,omitempty"`
}

type validationIssueOutput struct {
	Severity    string   `json:"severity"`
	Message     string   `json:"message"`
	Line        int      `json:"line,omitempty"`
	Column      int      `json:"column,omitempty"`
	Partial     string   `json:"partial,omitempty"`
	Suggestions []string `json:"suggestions,omitempty"`
}

// validationResult collects what validate found
type validationResult struct {
	partials []string
	issues   []validationIssueOutput
}

func (r *validationResult) counts() (errs, warnings int) {
	for _, issue := range r.issues {
		if issue.Severity == SeverityNameError {
			errs++
		} else {
			warnings++
		}
	}
	return errs, warnings
}

func (r *validationResult) valid(strict bool) bool {
	errs, warnings := r.counts()
	return errs == 0 && (!strict || warnings == 0)
}

func runValidate(args []string, stdin io.Reader, stdout, stderr io.Writer) int {
	cfg, err := parseValidateFlags(args)
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

	var opts []mustache.Option
	if cfg.tags != "" {
		tags, err := mustache.ParseTags(cfg.tags)
		if err != nil {
			fmt.Fprintf(stderr, FmtErrorWithCause, ErrMsgInvalidTags, err)
			return ExitCodeUsageError
		}
		opts = append(opts, mustache.WithTags(tags.Open, tags.Close))
	}
	engine, err := mustache.New(opts...)
	if err != nil {
		fmt.Fprintf(stderr, FmtErrorWithCause, ErrMsgInvalidTags, err)
		return ExitCodeUsageError
	}

	loader, closeLoader, err := cfg.partials.open()
	if err != nil {
		fmt.Fprintf(stderr, FmtErrorWithCause, ErrMsgPartialsFailed, err)
		return ExitCodeInputError
	}
	defer closeLoader()

	fsLoader, _ := loader.(*mustache.FilesystemLoader)
	result, err := validateTemplate(context.Background(), engine, string(templateSource), fsLoader)
	if err != nil {
		fmt.Fprintf(stderr, FmtErrorWithCause, ErrMsgPartialsFailed, err)
		return ExitCodeInputError
	}

	// Output based on format
	if cfg.format == OutputFormatJSON {
		return outputValidationJSON(result, cfg.strict, stdout)
	}
	return outputValidationText(result, cfg.strict, stdout)
}

// validateTemplate compiles source and, when a loader is given, every
// partial reachable from it. Partials the loader does not know are warnings.
func validateTemplate(ctx context.Context, engine *mustache.Engine, source string, loader *mustache.FilesystemLoader) (*validationResult, error) {
	result := &validationResult{}

	tmpl, err := engine.Compile(source)
	if err != nil {
		result.issues = append(result.issues, parseIssue(err, ""))
		return result, nil
	}
	result.partials = tmpl.Partials()
	if loader == nil {
		return result, nil
	}

	known, err := loader.Names()
	if err != nil {
		return nil, err
	}

	seen := make(map[string]bool)
	queue := append([]string(nil), result.partials...)
	for len(queue) > 0 {
		name := queue[0]
		queue = queue[1:]
		if seen[name] {
			continue
		}
		seen[name] = true

		src, found, err := loader.LoadPartial(ctx, name)
		if err != nil {
			return nil, err
		}
		if !found {
			result.issues = append(result.issues, validationIssueOutput{
				Severity:    SeverityNameWarning,
				Message:     IssueMsgUnknownPartial,
				Partial:     name,
				Suggestions: mustache.SuggestPartials(name, known, mustache.DefaultMaxSuggestions),
			})
			continue
		}

		partial, err := engine.Compile(src)
		if err != nil {
			result.issues = append(result.issues, parseIssue(err, name))
			continue
		}
		queue = append(queue, partial.Partials()...)
	}

	return result, nil
}

func parseIssue(err error, partial string) validationIssueOutput {
	issue := validationIssueOutput{
		Severity: SeverityNameError,
		Message:  err.Error(),
		Partial:  partial,
	}
	if msg, pos, ok := mustache.ParseErrorDetails(err); ok {
		issue.Message = msg
		issue.Line = pos.Line
		issue.Column = pos.Column
	}
	return issue
}

func parseValidateFlags(args []string) (*validateConfig, error) {
	fs := flag.NewFlagSet(CmdNameValidate, flag.ContinueOnError)
	fs.SetOutput(io.Discard) // Suppress default error messages

	cfg := &validateConfig{}

	fs.StringVar(&cfg.templatePath, FlagTemplate, "", "")
	fs.StringVar(&cfg.templatePath, FlagTemplateShort, "", "")
	fs.StringVar(&cfg.partials.dir, FlagPartials, "", "")
	fs.StringVar(&cfg.partials.dir, FlagPartialsShort, "", "")
	fs.StringVar(&cfg.partials.ext, FlagPartialExt, mustache.DefaultPartialExt, "")
	fs.StringVar(&cfg.tags, FlagTags, "", "")
	fs.StringVar(&cfg.format, FlagFormat, FlagDefaultFormat, "")
	fs.StringVar(&cfg.format, FlagFormatShort, FlagDefaultFormat, "")
	fs.BoolVar(&cfg.strict, FlagStrictMode, false, "")

	if err := fs.Parse(args); err != nil {
		return nil, err
	}

	if cfg.templatePath == "" {
		return nil, errors.New(ErrMsgMissingTemplate)
	}

	if cfg.format != OutputFormatText && cfg.format != OutputFormatJSON {
		return nil, errors.New(ErrMsgInvalidFormat)
	}

	return cfg, nil
}

func outputValidationText(result *validationResult, strict bool, stdout io.Writer) int {
	if len(result.partials) > 0 {
		fmt.Fprintf(stdout, ValidationTextPartials+FmtNewline, strings.Join(result.partials, FmtListSeparator))
	}

	if len(result.issues) == 0 {
		fmt.Fprintln(stdout, ValidationTextSuccess)
		return ExitCodeSuccess
	}

	fmt.Fprintln(stdout, ValidationTextIssueHeader)
	for _, issue := range result.issues {
		if issue.Line > 0 {
			fmt.Fprintf(stdout, ValidationTextIssueFormat, issue.Severity, issue.Message, issue.Line, issue.Column)
		} else {
			fmt.Fprintf(stdout, ValidationTextPartialIssue, issue.Severity, issue.Message, issue.Partial)
		}
		if len(issue.Suggestions) > 0 {
			fmt.Fprintf(stdout, ValidationTextSuggestions, strings.Join(issue.Suggestions, FmtListSeparator))
		}
		fmt.Fprint(stdout, FmtNewline)
	}

	errs, warnings := result.counts()
	fmt.Fprintf(stdout, ValidationTextErrorSummary+FmtNewline, errs, warnings)

	if !result.valid(strict) {
		return ExitCodeValidationError
	}
	return ExitCodeSuccess
}

func outputValidationJSON(result *validationResult, strict bool, stdout io.Writer) int {
	output := validationOutput{
		Valid:    result.valid(strict),
		Partials: result.partials,
		Issues:   result.issues,
	}

	jsonBytes, _ := json.MarshalIndent(output, "", "  ")
	fmt.Fprintln(stdout, string(jsonBytes))

	if !output.Valid {
		return ExitCodeValidationError
	}
	return ExitCodeSuccess
}
