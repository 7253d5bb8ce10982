// Package cli provides the command-line interface for the sentiment dashboard.
package cli

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/spf13/cobra"
)

// Color codes for terminal output
const (
	ColorReset  = "\033[0m"
	ColorRed    = "\033[31m"
	ColorGreen  = "\033[32m"
	ColorYellow = "\033[33m"
	ColorCyan   = "\033[36m"
	ColorBold   = "\033[1m"
	ColorDim    = "\033[2m"
)

// Output handles formatted output for the CLI.
type Output struct {
	writer   io.Writer
	jsonMode bool
}

// NewOutput creates a new Output instance bound to a command.
func NewOutput(cmd *cobra.Command) *Output {
	jsonMode, _ := cmd.Flags().GetBool("json")
	return &Output{
		writer:   cmd.OutOrStdout(),
		jsonMode: jsonMode,
	}
}

// IsJSON reports whether JSON output was requested.
func (o *Output) IsJSON() bool { return o.jsonMode }

// JSON writes a value as indented JSON.
func (o *Output) JSON(v interface{}) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return err
	}
	fmt.Fprintln(o.writer, string(data))
	return nil
}

// Printf writes formatted text.
func (o *Output) Printf(format string, args ...interface{}) {
	fmt.Fprintf(o.writer, format, args...)
}

// Println writes a line.
func (o *Output) Println(args ...interface{}) {
	fmt.Fprintln(o.writer, args...)
}

// Bold writes a bold line.
func (o *Output) Bold(format string, args ...interface{}) {
	fmt.Fprintf(o.writer, ColorBold+format+ColorReset+"\n", args...)
}

// Dim writes a dimmed line.
func (o *Output) Dim(format string, args ...interface{}) {
	fmt.Fprintf(o.writer, ColorDim+format+ColorReset+"\n", args...)
}

// Info writes an informational line.
func (o *Output) Info(format string, args ...interface{}) {
	fmt.Fprintf(o.writer, ColorCyan+format+ColorReset+"\n", args...)
}

// Success writes a success line.
func (o *Output) Success(format string, args ...interface{}) {
	fmt.Fprintf(o.writer, ColorGreen+format+ColorReset+"\n", args...)
}

// Warn writes a warning line.
func (o *Output) Warn(format string, args ...interface{}) {
	fmt.Fprintf(o.writer, ColorYellow+format+ColorReset+"\n", args...)
}

// Error writes an error line.
func (o *Output) Error(format string, args ...interface{}) {
	fmt.Fprintf(o.writer, ColorRed+format+ColorReset+"\n", args...)
}

// SignalColor returns the terminal color for a sentiment signal.
func SignalColor(signal string) string {
	switch signal {
	case "BUY":
		return ColorGreen
	case "SELL":
		return ColorRed
	case "HOLD":
		return ColorYellow
	default:
		return ColorDim
	}
}
