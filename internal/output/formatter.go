package output

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"reflect"
	"strings"

	"github.com/charmbracelet/lipgloss/v2"
	"github.com/muesli/termenv"
)

// Formatter is the interface for output formatting
type Formatter interface {
	Print(data any) error
	PrintList(items any, columns []Column) error
	PrintError(err error)
	PrintHint(msg string)
	PrintSuccess(msg string)
	PrintWarning(msg string)
}

// Column defines a column for table/list output
type Column struct {
	Name  string // Display name
	Key   string // Struct field name or map key
	Width int    // Truncation width (0 = none)
}

// Options configures where a formatter writes.
type Options struct {
	Out         io.Writer // defaults to os.Stdout
	Err         io.Writer // defaults to os.Stderr
	ResultsOnly bool      // json: print bare arrays without the envelope
}

// New creates a formatter for the specified mode
func New(mode string, opts Options) Formatter {
	if opts.Out == nil {
		opts.Out = os.Stdout
	}
	if opts.Err == nil {
		opts.Err = os.Stderr
	}

	switch mode {
	case "json":
		return &jsonFormatter{out: opts.Out, errOut: opts.Err, resultsOnly: opts.ResultsOnly}
	case "rich":
		return &richFormatter{out: opts.Out, errOut: opts.Err, profile: termenv.EnvColorProfile()}
	default:
		return &plainFormatter{out: opts.Out, errOut: opts.Err}
	}
}

// jsonFormatter outputs JSON to stdout
type jsonFormatter struct {
	out, errOut io.Writer
	resultsOnly bool
}

func (f *jsonFormatter) Print(data any) error {
	enc := json.NewEncoder(f.out)
	enc.SetIndent("", "  ")
	return enc.Encode(data)
}

func (f *jsonFormatter) PrintList(items any, columns []Column) error {
	if f.resultsOnly {
		return f.Print(items)
	}

	v := reflect.ValueOf(items)
	if v.Kind() == reflect.Ptr {
		v = v.Elem()
	}

	count := 0
	if v.Kind() == reflect.Slice {
		count = v.Len()
	}

	return f.Print(map[string]any{
		"data":  items,
		"count": count,
	})
}

func (f *jsonFormatter) PrintError(err error) {
	errObj := map[string]any{"error": err.Error()}
	if cliErr, ok := err.(*CLIError); ok {
		errObj["exit_code"] = cliErr.ExitCode
		if cliErr.Hint != "" {
			errObj["hint"] = cliErr.Hint
		}
	}
	enc := json.NewEncoder(f.errOut)
	enc.SetIndent("", "  ")
	_ = enc.Encode(errObj)
}

// Hints ride along in the error object.
func (f *jsonFormatter) PrintHint(msg string) {}

// Status chatter stays off stdout so it never corrupts the JSON stream.
func (f *jsonFormatter) PrintSuccess(msg string) {
	fmt.Fprintln(f.errOut, msg)
}

func (f *jsonFormatter) PrintWarning(msg string) {
	fmt.Fprintf(f.errOut, "warning: %s\n", msg)
}

// plainFormatter outputs tab-separated values
type plainFormatter struct {
	out, errOut io.Writer
}

func (f *plainFormatter) Print(data any) error {
	for _, kv := range fieldsOf(data) {
		fmt.Fprintf(f.out, "%s\t%s\n", kv[0], kv[1])
	}
	return nil
}

func (f *plainFormatter) PrintList(items any, columns []Column) error {
	rows, err := rowsOf(items, columns)
	if err != nil {
		return err
	}

	headers := make([]string, len(columns))
	for i, col := range columns {
		headers[i] = col.Name
	}
	fmt.Fprintln(f.out, strings.Join(headers, "\t"))

	for _, row := range rows {
		values := make([]string, len(columns))
		for j, col := range columns {
			values[j] = row[col.Key]
		}
		fmt.Fprintln(f.out, strings.Join(values, "\t"))
	}
	return nil
}

func (f *plainFormatter) PrintError(err error) {
	fmt.Fprintf(f.errOut, "error: %v\n", err)
}

func (f *plainFormatter) PrintHint(msg string) {
	fmt.Fprintf(f.errOut, "hint: %v\n", msg)
}

func (f *plainFormatter) PrintSuccess(msg string) {
	fmt.Fprintln(f.errOut, msg)
}

func (f *plainFormatter) PrintWarning(msg string) {
	fmt.Fprintf(f.errOut, "warning: %s\n", msg)
}

// richFormatter outputs styled content for terminal
type richFormatter struct {
	out, errOut io.Writer
	profile     termenv.Profile
}

func (f *richFormatter) style(s lipgloss.Style, text string) string {
	if f.profile == termenv.Ascii {
		return text
	}
	return s.Render(text)
}

func (f *richFormatter) Print(data any) error {
	keyStyle := lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("33"))

	fields := fieldsOf(data)
	width := 0
	for _, kv := range fields {
		width = max(width, len(kv[0]))
	}
	for _, kv := range fields {
		label := kv[0] + ":" + strings.Repeat(" ", width-len(kv[0]))
		fmt.Fprintf(f.out, "%s %s\n", f.style(keyStyle, label), kv[1])
	}
	return nil
}

func (f *richFormatter) PrintList(items any, columns []Column) error {
	rows, err := rowsOf(items, columns)
	if err != nil {
		return err
	}
	if len(rows) == 0 {
		fmt.Fprintln(f.errOut, f.style(lipgloss.NewStyle().Faint(true), "(no results)"))
		return nil
	}
	RenderTable(f.out, columns, rows, f.profile != termenv.Ascii)
	return nil
}

func (f *richFormatter) PrintError(err error) {
	errorStyle := lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("9"))
	fmt.Fprintln(f.errOut, f.style(errorStyle, "error: "+err.Error()))
}

func (f *richFormatter) PrintHint(msg string) {
	hintStyle := lipgloss.NewStyle().Faint(true).Foreground(lipgloss.Color("8"))
	fmt.Fprintln(f.errOut, f.style(hintStyle, "hint: "+msg))
}

func (f *richFormatter) PrintSuccess(msg string) {
	okStyle := lipgloss.NewStyle().Foreground(lipgloss.Color("10"))
	fmt.Fprintln(f.errOut, f.style(okStyle, "✓ "+msg))
}

func (f *richFormatter) PrintWarning(msg string) {
	warnStyle := lipgloss.NewStyle().Foreground(lipgloss.Color("11"))
	fmt.Fprintln(f.errOut, f.style(warnStyle, "warning: "+msg))
}

// fieldsOf flattens a struct into label/value pairs. Labels come from the
// `label` tag, falling back to the field name. Empty values and fields
// tagged label:"-" are skipped. Non-structs print as a single value.
func fieldsOf(data any) [][2]string {
	v := reflect.ValueOf(data)
	if v.Kind() == reflect.Ptr {
		v = v.Elem()
	}
	if v.Kind() != reflect.Struct {
		return [][2]string{{"value", fmt.Sprintf("%v", data)}}
	}

	t := v.Type()
	var out [][2]string
	for i := 0; i < v.NumField(); i++ {
		field := t.Field(i)
		if !field.IsExported() {
			continue
		}
		label := field.Tag.Get("label")
		if label == "-" {
			continue
		}
		if label == "" {
			label = field.Name
		}
		value := stringify(v.Field(i))
		if value == "" {
			continue
		}
		out = append(out, [2]string{label, value})
	}
	return out
}

// rowsOf extracts the column values of each slice element.
func rowsOf(items any, columns []Column) ([]map[string]string, error) {
	v := reflect.ValueOf(items)
	if v.Kind() == reflect.Ptr {
		v = v.Elem()
	}
	if v.Kind() != reflect.Slice {
		return nil, fmt.Errorf("PrintList requires a slice")
	}

	rows := make([]map[string]string, v.Len())
	for i := 0; i < v.Len(); i++ {
		item := v.Index(i)
		if item.Kind() == reflect.Ptr {
			item = item.Elem()
		}

		row := make(map[string]string, len(columns))
		for _, col := range columns {
			var value string
			switch item.Kind() {
			case reflect.Map:
				if mv := item.MapIndex(reflect.ValueOf(col.Key)); mv.IsValid() {
					value = stringify(mv)
				}
			case reflect.Struct:
				if fv := item.FieldByName(col.Key); fv.IsValid() {
					value = stringify(fv)
				}
			}
			if col.Width > 0 {
				value = TruncateString(value, col.Width)
			}
			row[col.Key] = value
		}
		rows[i] = row
	}
	return rows, nil
}

func stringify(v reflect.Value) string {
	if v.Kind() == reflect.Ptr || v.Kind() == reflect.Interface {
		if v.IsNil() {
			return ""
		}
		v = v.Elem()
	}
	if s, ok := v.Interface().(fmt.Stringer); ok {
		return s.String()
	}
	return fmt.Sprintf("%v", v.Interface())
}
