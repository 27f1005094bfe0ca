package renderer

import (
	"embed"
	"fmt"
	"io/fs"
	"strings"
	"text/template"

	"github.com/Rhymond/go-money"
	"github.com/etnz/cryptofund"
	"github.com/shopspring/decimal"
)

//go:embed templates/*.md
var templates embed.FS

// Results is the outcome of a calculation, as displayed to the user.
type Results struct {
	Currency     string  // ISO 4217 code of the values
	AssetCap     float64 // in [0,1]
	TotalCapital float64
	Allocations  []cryptofund.Allocation
}

// Total returns the sum of the allocated values.
func (r *Results) Total() float64 {
	total := decimal.Zero
	for _, a := range r.Allocations {
		total = total.Add(decimal.NewFromFloat(a.Value))
	}
	return total.InexactFloat64()
}

// AssetCapPercent returns the asset cap as a percentage.
func (r *Results) AssetCapPercent() float64 { return r.AssetCap * 100 }

// RenderResults renders the results table followed by the total.
func RenderResults(r *Results) string {
	partials := map[string]string{
		"results_table": "results_table.md",
		"results_total": "results_total.md",
	}
	if len(r.Allocations) == 0 {
		partials["results_table"] = "results_empty.md"
	}
	return renderTemplate("results", "results.md", partials, r)
}

var funcs = template.FuncMap{
	"amount":  func(v float64) string { return fmt.Sprintf("%.6f", v) },
	"value":   func(v float64) string { return fmt.Sprintf("%.2f", v) },
	"percent": func(v float64) string { return fmt.Sprintf("%.4f%%", v) },
	"money":   Money,
	"cell":    cell,
}

// Money formats amount in currency, e.g. "$1,234.50".
//
// Unknown currencies are printed as a plain number followed by the code.
func Money(amount float64, currency string) string {
	cur := money.GetCurrency(currency)
	if cur == nil {
		return fmt.Sprintf("%.2f %s", amount, currency)
	}
	minor := decimal.NewFromFloat(amount).Shift(int32(cur.Fraction)).Round(0)
	return cur.Formatter().Format(minor.IntPart())
}

// cell escapes a value for use in a markdown table cell.
func cell(s string) string {
	if s == "" {
		return " "
	}
	return strings.ReplaceAll(s, "|", `\|`)
}

// renderTemplate is a generic utility to render a main template that depends on several partials.
func renderTemplate(templateName, mainFile string, partials map[string]string, data any) string {
	mainContent, err := fs.ReadFile(templates, "templates/"+mainFile)
	if err != nil {
		return fmt.Sprintf("error reading main template %q: %v", mainFile, err)
	}

	tmpl, err := template.New(templateName).Funcs(funcs).Parse(string(mainContent))
	if err != nil {
		return fmt.Sprintf("error parsing main template %q: %v", mainFile, err)
	}

	for name, file := range partials {
		var content []byte
		// An empty file name is a valid case, resulting in an empty template.
		if file != "" {
			var readErr error
			content, readErr = fs.ReadFile(templates, "templates/"+file)
			if readErr != nil {
				return fmt.Sprintf("error reading partial template %q: %v", file, readErr)
			}
		}
		if _, err := tmpl.New(name).Parse(string(content)); err != nil {
			return fmt.Sprintf("error parsing partial template %q for %q: %v", file, name, err)
		}
	}

	var b strings.Builder
	if err := tmpl.ExecuteTemplate(&b, templateName, data); err != nil {
		return fmt.Sprintf("error executing template %q: %v", templateName, err)
	}
	return b.String()
}
