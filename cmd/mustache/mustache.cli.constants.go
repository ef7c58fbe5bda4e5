package main

// Command names
const (
	CmdNameRender   = "render"
	CmdNameValidate = "validate"
	CmdNameVersion  = "version"
	CmdNameHelp     = "help"
)

// Flag names - long form
const (
	FlagTemplate      = "template"
	FlagData          = "data"
	FlagDataFile      = "data-file"
	FlagPartials      = "partials"
	FlagPartialExt    = "partial-ext"
	FlagPartialsDB    = "partials-db"
	FlagPartialsTable = "partials-table"
	FlagTags          = "tags"
	FlagRaw           = "raw"
	FlagOutput        = "output"
	FlagFormat        = "format"
	FlagStrictMode    = "strict"
	FlagVerbose       = "verbose"
)

// Flag names - short form
const (
	FlagTemplateShort = "t"
	FlagDataShort     = "d"
	FlagDataFileShort = "f"
	FlagPartialsShort = "p"
	FlagOutputShort   = "o"
	FlagFormatShort   = "F"
	FlagVerboseShort  = "v"
)

// Flag default values
const (
	FlagDefaultOutput = "-" // stdout
	FlagDefaultFormat = "text"
)

// Output formats
const (
	OutputFormatText = "text"
	OutputFormatJSON = "json"
)

// Data file extensions decoded as YAML; anything else is JSON
const (
	DataExtYAML = ".yaml"
	DataExtYML  = ".yml"
)

// Exit codes
const (
	ExitCodeSuccess         = 0
	ExitCodeError           = 1
	ExitCodeUsageError      = 2
	ExitCodeValidationError = 3
	ExitCodeInputError      = 4
)

// Input source indicators
const (
	InputSourceStdin = "-"
)

// Error messages - ALL must be constants
const (
	ErrMsgUnknownCommand      = "unknown command"
	ErrMsgMissingTemplate     = "template source required"
	ErrMsgInvalidFlags        = "invalid flags"
	ErrMsgInvalidData         = "invalid data"
	ErrMsgDataNotObject       = "data must be an object"
	ErrMsgReadFileFailed      = "failed to read file"
	ErrMsgWriteOutputFailed   = "failed to write output"
	ErrMsgRenderFailed        = "template rendering failed"
	ErrMsgInvalidFormat       = "invalid output format"
	ErrMsgInvalidTags         = "invalid delimiters"
	ErrMsgPartialsFailed      = "failed to set up partials"
	ErrMsgPartialSourcesMixed = "use either a partials directory or a partials database, not both"
)

// Help text templates
const (
	HelpMainUsage = `go-mustache - Logic-less template rendering CLI

Usage:
    mustache <command> [options]

Commands:
    render      Render a template with data
    validate    Validate a template without rendering it
    version     Show version information
    help        Show help for a command

Use "mustache help <command>" for more information about a command.`

	HelpRenderUsage = `Render a template with data

Usage:
    mustache render [options]

Options:
    -t, --template <file>        Template file (use "-" for stdin)
    -d, --data <json>            JSON data string
    -f, --data-file <file>       JSON or YAML (.yaml, .yml) data file
    -p, --partials <dir>         Directory of <name>.mustache partials
    --partial-ext <ext>          Partial file extension (default: .mustache)
    --partials-db <dsn>          PostgreSQL connection string to load partials from
    --partials-table <name>      PostgreSQL partials table (default: mustache_partials)
    --tags "<open> <close>"      Initial delimiters (default: "{{ }}")
    --raw                        Do not HTML-escape {{name}} output
    -o, --output <file>          Output file (default: stdout)
    -v, --verbose                Log engine activity to stderr

Examples:
    mustache render -t page.mustache -d '{"name": "Alice"}'
    mustache render -t page.mustache -f data.yaml -p partials/
    cat page.mustache | mustache render -t - -d '{"name": "Bob"}'
    mustache render -t page.mustache -f data.json -o page.html`

	HelpValidateUsage = `Validate a template without rendering it

Usage:
    mustache validate [options]

Options:
    -t, --template <file>   Template file (use "-" for stdin)
    -p, --partials <dir>    Check referenced partials against a directory
    --partial-ext <ext>     Partial file extension (default: .mustache)
    --tags "<open> <close>" Initial delimiters (default: "{{ }}")
    -F, --format <format>   Output format: text, json (default: text)
    --strict                Treat warnings as errors

Examples:
    mustache validate -t page.mustache
    mustache validate -t page.mustache -p partials/ --strict
    cat page.mustache | mustache validate -t -`

	HelpVersionUsage = `Show version, build revision and engine defaults

Usage:
    mustache version [options]

Options:
    -F, --format <format>   Output format: text, json (default: text)`

	HelpHelpUsage = `Show help for a command

Usage:
    mustache help [command]

Commands:
    render      Show help for render command
    validate    Show help for validate command
    version     Show help for version command`
)

// Version output format templates
const (
	VersionTextTemplate   = "go-mustache version %s\nRevision: %s\nGo: %s\nDefault tags: %s\nMax partial depth: %d\nEscaped: %s"
	VersionUnknown        = "unknown"
	VersionModifiedSuffix = "+dirty"
	VersionEscapeSample   = `&<>"'/`
	VersionRevisionLength = 12

	buildSettingRevision = "vcs.revision"
	buildSettingModified = "vcs.modified"
)

// Validation output format templates
const (
	ValidationTextSuccess      = "Template is valid"
	ValidationTextIssueHeader  = "Validation issues:"
	ValidationTextIssueFormat  = "  [%s] %s at line %d, column %d"
	ValidationTextPartialIssue = "  [%s] %s: %s"
	ValidationTextSuggestions  = " (did you mean: %s?)"
	ValidationTextErrorSummary = "%d error(s), %d warning(s)"
	ValidationTextPartials     = "Partials: %s"
)

// Validation issue messages
const (
	IssueMsgUnknownPartial = "unknown partial"
)

// Severity names for output
const (
	SeverityNameError   = "ERROR"
	SeverityNameWarning = "WARNING"
)

// CLI metadata
const (
	CLIName        = "mustache"
	CLIDescription = "Logic-less template rendering CLI"
)

// File permission constant
const (
	FilePermissions = 0644
)

// Format string constants
const (
	FmtErrorWithDetail = "%s: %s\n"
	FmtErrorWithCause  = "%s: %v\n"
	FmtNewline         = "\n"
	FmtListSeparator   = ", "
)
