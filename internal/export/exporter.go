// Package export writes employee records to an xlsx workbook whose columns
// are described by a YAML layout.
package export

import (
	"bytes"
	_ "embed"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/xuri/excelize/v2"
	"gopkg.in/yaml.v2"

	"github.com/locvowork/employee_profile_service/internal/domain"
)

// ContentType is the MIME type of the produced workbook.
const ContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

//go:embed layout.yaml
var defaultLayout []byte

// Layout describes the exported sheet.
type Layout struct {
	Sheet       string         `yaml:"sheet"`
	HeaderStyle *StyleTemplate `yaml:"header_style"`
	Columns     []Column       `yaml:"columns"`
}

// Column maps a record field to a sheet column.
type Column struct {
	Field  string  `yaml:"field"`
	Header string  `yaml:"header"`
	Width  float64 `yaml:"width"`
}

type StyleTemplate struct {
	Font *FontTemplate `yaml:"font"`
	Fill *FillTemplate `yaml:"fill"`
}

type FontTemplate struct {
	Bold  bool   `yaml:"bold"`
	Color string `yaml:"color"` // Hex color
}

type FillTemplate struct {
	Color string `yaml:"color"` // Hex color
}

var fieldValues = map[string]func(e *domain.Employee) interface{}{
	"id":          func(e *domain.Employee) interface{} { return e.ID },
	"title":       func(e *domain.Employee) interface{} { return e.Title },
	"name":        func(e *domain.Employee) interface{} { return e.Name },
	"designation": func(e *domain.Employee) interface{} { return e.Designation },
	"dob":         func(e *domain.Employee) interface{} { return e.DOB.Format(domain.DateLayout) },
	"address":     func(e *domain.Employee) interface{} { return e.Address },
	"image":       func(e *domain.Employee) interface{} { return imageCell(e.Attachment) },
	"createdAt":   func(e *domain.Employee) interface{} { return e.CreatedAt.UTC().Format(time.RFC3339) },
	"updatedAt":   func(e *domain.Employee) interface{} { return e.UpdatedAt.UTC().Format(time.RFC3339) },
}

// Exporter renders employees with a fixed layout.
type Exporter struct {
	layout Layout
}

// NewExporter uses the layout embedded in the binary.
func NewExporter() (*Exporter, error) {
	return NewExporterFromYAML(defaultLayout)
}

func NewExporterFromYAML(data []byte) (*Exporter, error) {
	var layout Layout
	if err := yaml.Unmarshal(data, &layout); err != nil {
		return nil, fmt.Errorf("decode yaml: %w", err)
	}
	if layout.Sheet == "" {
		layout.Sheet = "Sheet1"
	}
	if len(layout.Columns) == 0 {
		return nil, fmt.Errorf("layout has no columns")
	}
	for _, col := range layout.Columns {
		if _, ok := fieldValues[col.Field]; !ok {
			return nil, fmt.Errorf("unknown field %q in layout", col.Field)
		}
	}
	return &Exporter{layout: layout}, nil
}

// Sheet is the name of the sheet records are written to.
func (x *Exporter) Sheet() string { return x.layout.Sheet }

// StreamTo writes the workbook to w using excelize's stream writer.
func (x *Exporter) StreamTo(w io.Writer, employees []domain.Employee) error {
	f := excelize.NewFile()
	defer f.Close()

	sheet := x.layout.Sheet
	if sheet != "Sheet1" {
		if err := f.SetSheetName("Sheet1", sheet); err != nil {
			return err
		}
	}

	sw, err := f.NewStreamWriter(sheet)
	if err != nil {
		return fmt.Errorf("stream writer: %w", err)
	}

	for i, col := range x.layout.Columns {
		if col.Width > 0 {
			if err := sw.SetColWidth(i+1, i+1, col.Width); err != nil {
				return err
			}
		}
	}

	headerStyle := 0
	if x.layout.HeaderStyle != nil {
		if headerStyle, err = createStyle(f, x.layout.HeaderStyle); err != nil {
			return fmt.Errorf("header style: %w", err)
		}
	}

	header := make([]interface{}, len(x.layout.Columns))
	for i, col := range x.layout.Columns {
		header[i] = col.Header
	}
	if err := sw.SetRow("A1", header, excelize.RowOpts{StyleID: headerStyle}); err != nil {
		return err
	}

	for r := range employees {
		row := make([]interface{}, len(x.layout.Columns))
		for i, col := range x.layout.Columns {
			row[i] = fieldValues[col.Field](&employees[r])
		}
		cell, _ := excelize.CoordinatesToCellName(1, r+2)
		if err := sw.SetRow(cell, row); err != nil {
			return err
		}
	}

	if err := sw.Flush(); err != nil {
		return err
	}
	return f.Write(w)
}

// ToBytes renders the workbook in memory.
func (x *Exporter) ToBytes(employees []domain.Employee) ([]byte, error) {
	var buf bytes.Buffer
	if err := x.StreamTo(&buf, employees); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func imageCell(a *domain.Attachment) string {
	if a == nil {
		return ""
	}
	if a.Kind == domain.AttachmentInline {
		return fmt.Sprintf("inline (%s, %d bytes)", a.ContentType, len(a.Data))
	}
	return a.Locator
}

func createStyle(f *excelize.File, tmpl *StyleTemplate) (int, error) {
	style := &excelize.Style{}
	if tmpl.Font != nil {
		style.Font = &excelize.Font{
			Bold:  tmpl.Font.Bold,
			Color: strings.TrimPrefix(tmpl.Font.Color, "#"),
		}
	}
	if tmpl.Fill != nil {
		style.Fill = excelize.Fill{
			Type:    "pattern",
			Color:   []string{strings.TrimPrefix(tmpl.Fill.Color, "#")},
			Pattern: 1,
		}
	}
	return f.NewStyle(style)
}
