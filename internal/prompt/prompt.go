// Package prompt renders the FDI ranking prompt for one company record.
package prompt

import (
	"bytes"
	_ "embed"
	"fmt"
	"os"
	"text/template"

	"github.com/shpitdev/fdi-ranker/pkg/pipeline/core"
)

//go:embed fdi.tmpl
var defaultTemplate string

// Vars are the placeholders available to a prompt template.
type Vars struct {
	FirmName        string
	CompanyWebsite  string
	LinkedInURL     string
	BoothNr         string
	Country         string
	HQCity          string
	PrimarySector   string
	Vertical        string
	AllIndustries   string
	Employees       string
	YearFounded     string
	Keywords        string
	Revenue         string
	GrossProfit     string
	NetIncome       string
	OwnershipStatus string
	FinancingStatus string
	ActiveInvestors string
	Summary         string
}

// VarsFromRecord maps input columns onto template placeholders. Absent
// columns render as empty strings.
func VarsFromRecord(r core.Record) Vars {
	return Vars{
		FirmName:        r.Get("Firm name"),
		CompanyWebsite:  r.Get("Company Website"),
		LinkedInURL:     r.Get("LinkedIn URL"),
		BoothNr:         r.Get("Booth nr"),
		Country:         r.Get("Country"),
		HQCity:          r.Get("HQ City"),
		PrimarySector:   r.Get("Primary Industry Sector"),
		Vertical:        r.Get("Vertical"),
		AllIndustries:   r.Get("All Industries"),
		Employees:       r.Get("Employees"),
		YearFounded:     r.Get("Year Founded"),
		Keywords:        r.Get("Keywords"),
		Revenue:         r.Get("Revenue"),
		GrossProfit:     r.Get("Gross Profit"),
		NetIncome:       r.Get("Net Income"),
		OwnershipStatus: r.Get("Ownership Status"),
		FinancingStatus: r.Get("Company Financing Status"),
		ActiveInvestors: r.Get("Active Investors"),
		Summary:         r.Get("Company Summary"),
	}
}

// Builder renders prompts from a parsed template. Safe for concurrent use.
type Builder struct {
	tmpl *template.Template
}

// New parses text as a prompt template.
func New(text string) (*Builder, error) {
	tmpl, err := template.New("prompt").Parse(text)
	if err != nil {
		return nil, fmt.Errorf("parse prompt template: %w", err)
	}
	return &Builder{tmpl: tmpl}, nil
}

// Default returns the builtin FDI ranking prompt.
func Default() *Builder {
	b, err := New(defaultTemplate)
	if err != nil {
		panic(err)
	}
	return b
}

// FromFile loads a template override. An empty path yields Default().
func FromFile(path string) (*Builder, error) {
	if path == "" {
		return Default(), nil
	}
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read prompt template: %w", err)
	}
	return New(string(b))
}

// Build renders the prompt for r.
func (b *Builder) Build(r core.Record) (string, error) {
	var buf bytes.Buffer
	if err := b.tmpl.Execute(&buf, VarsFromRecord(r)); err != nil {
		return "", fmt.Errorf("render prompt: %w", err)
	}
	return buf.String(), nil
}
