package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
	"text/tabwriter"
	"text/template"
	"time"

	"golang.org/x/term"
)

const (
	outputAuto  = "auto"
	outputTable = "table"
	outputJSON  = "json"
)

// printer выводит результат таблицей для человека или JSON для скриптов
type printer struct {
	w    io.Writer
	json bool
}

func newPrinter(w io.Writer, format string) (*printer, error) {
	switch format {
	case "", outputAuto:
		return &printer{w: w, json: !isTerminal(w)}, nil
	case outputTable:
		return &printer{w: w}, nil
	case outputJSON:
		return &printer{w: w, json: true}, nil
	default:
		return nil, fmt.Errorf("unknown output format %q", format)
	}
}

func isTerminal(w io.Writer) bool {
	f, ok := w.(*os.File)
	return ok && term.IsTerminal(int(f.Fd()))
}

// table prints rows under headers, or v as JSON
func (p *printer) table(v any, headers []string, rows [][]string) error {
	if p.json {
		return p.encode(v)
	}
	if len(rows) == 0 {
		_, err := fmt.Fprintln(p.w, "Nothing found.")
		return err
	}

	tw := tabwriter.NewWriter(p.w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, strings.Join(headers, "\t"))
	for _, row := range rows {
		fmt.Fprintln(tw, strings.Join(row, "\t"))
	}
	return tw.Flush()
}

// detail renders v with tmpl, or as JSON
func (p *printer) detail(v any, tmpl *template.Template) error {
	if p.json {
		return p.encode(v)
	}
	return tmpl.Execute(p.w, v)
}

// done prints a confirmation; in JSON mode v is printed instead
func (p *printer) done(v any, format string, args ...any) error {
	if p.json {
		return p.encode(v)
	}
	_, err := fmt.Fprintf(p.w, format+"\n", args...)
	return err
}

func (p *printer) encode(v any) error {
	enc := json.NewEncoder(p.w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

// warn пишет предупреждения в stderr, чтобы не портить JSON в stdout
func warn(w io.Writer, warnings []string) {
	for _, msg := range warnings {
		fmt.Fprintf(w, "Warning: %s\n", msg)
	}
}

func formatDate(t *time.Time) string {
	if t == nil {
		return "-"
	}
	return t.Format(time.DateOnly)
}

func formatCoord(lat, lon float64) string {
	if lat == 0 && lon == 0 {
		return "-"
	}
	return strconv.FormatFloat(lat, 'f', 4, 64) + "," + strconv.FormatFloat(lon, 'f', 4, 64)
}

var funcs = template.FuncMap{
	"date":  formatDate,
	"coord": formatCoord,
}

var companyTemplate = template.Must(template.New("company").Funcs(funcs).Parse(`
=== Company Details ===

Name:      {{.Name}}
ID:        {{.ID}}
Address:   {{.FullAddress}}
Location:  {{coord .Latitude .Longitude}}
Status:    {{.Status}}
Priority:  {{.Priority}}
{{- if .MetroArea }}
Metro:     {{.MetroArea}}
{{- end}}
{{- if .Website }}
Website:   {{.Website}}
{{- end}}
{{- if .CareersURL }}
Careers:   {{.CareersURL}}
{{- end}}
{{- if .Notes }}
Notes:     {{.Notes}}
{{- end}}
Approved:  {{.IsApproved}}
`))

var applicationTemplate = template.Must(template.New("application").Funcs(funcs).Parse(`
=== Application Details ===

Position:  {{.Position}}
ID:        {{.ID}}
Company:   {{.CompanyID}}
Status:    {{.Status}}
Priority:  {{.Priority}}
Applied:   {{date .AppliedDate}}
Follow-up: {{date .FollowUpDate}}
{{- if .JobURL }}
URL:       {{.JobURL}}
{{- end}}
{{- if .SalaryRange }}
Salary:    {{.SalaryRange}}
{{- end}}
{{- if .Notes }}
Notes:     {{.Notes}}
{{- end}}
`))
