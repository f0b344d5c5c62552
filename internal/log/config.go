package log

import (
	"io"
	"os"
)

// Format selects the handler encoding.
type Format int

const (
	FormatJSON Format = iota
	FormatText
)

// String returns the string representation of the format.
func (f Format) String() string {
	switch f {
	case FormatJSON:
		return "json"
	case FormatText:
		return "text"
	default:
		return "json"
	}
}

// ParseFormat parses a string into a Format. Unknown values fall back
// to JSON.
func ParseFormat(s string) Format {
	switch s {
	case "json", "JSON":
		return FormatJSON
	case "text", "TEXT", "console":
		return FormatText
	default:
		return FormatJSON
	}
}

// Output wraps the writer log entries go to.
type Output struct {
	writer io.Writer
}

// Writer returns the underlying io.Writer.
func (o Output) Writer() io.Writer {
	return o.writer
}

// NewOutput creates an Output from an io.Writer.
func NewOutput(w io.Writer) Output {
	return Output{writer: w}
}

// OutputStdout writes to stdout.
func OutputStdout() Output {
	return Output{writer: os.Stdout}
}

// OutputStderr writes to stderr.
func OutputStderr() Output {
	return Output{writer: os.Stderr}
}

// Config holds logger configuration.
type Config struct {
	// Level is the minimum level emitted.
	Level Level

	// Format is the handler encoding.
	Format Format

	// Output is where entries are written.
	Output Output

	// AddSource includes source file and line in entries.
	AddSource bool
}

// DefaultConfig logs at INFO in JSON to stdout.
func DefaultConfig() Config {
	return Config{
		Level:     LevelInfo,
		Format:    FormatJSON,
		Output:    OutputStdout(),
		AddSource: false,
	}
}
