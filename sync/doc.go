package sync

import (
	"bytes"
	"encoding/csv"
	"fmt"
	"sort"
	"strings"
)

// FieldDocRow represents a single row in the field mapping documentation.
type FieldDocRow struct {
	Entity     string // "Company", "Contact" or "Job"
	FieldName  string // Recruit CRM payload key or custom field label
	IsCustom   bool   // Whether this is a job custom field
	FieldType  string
	SourcePath string // Form field key or gjson path
	Notes      string
}

// FieldDocumentation describes how submitted form fields reach Recruit CRM.
type FieldDocumentation struct {
	Rows []FieldDocRow
}

// GenerateFieldDocumentation generates field documentation from a configuration.
// Rows are grouped by entity, payload fields first (sorted), then job custom fields in table order.
func GenerateFieldDocumentation(config Config) FieldDocumentation {
	doc := FieldDocumentation{Rows: []FieldDocRow{}}

	doc.Rows = append(doc.Rows, processFieldMappings("Company", config.Company.FieldMappings)...)
	doc.Rows = append(doc.Rows, processFieldMappings("Contact", config.Contact.FieldMappings)...)
	doc.Rows = append(doc.Rows, FieldDocRow{
		Entity:     "Contact",
		FieldName:  referenceFieldName("company", config.API.Identifier),
		FieldType:  "Reference",
		SourcePath: "(computed)",
		Notes:      "Resolved company",
	})
	doc.Rows = append(doc.Rows, processFieldMappings("Job", config.Job.FieldMappings)...)

	for _, f := range config.Job.CustomFields {
		row := FieldDocRow{
			Entity:     "Job",
			FieldName:  f.Label,
			IsCustom:   true,
			FieldType:  "Text",
			SourcePath: f.Key,
		}
		if config.Job.IsDateField(f.Key) {
			row.FieldType = "Date"
			row.Notes = fmt.Sprintf("Normalised to %s, left out if unparseable", ISODateFormat)
		}
		doc.Rows = append(doc.Rows, row)
	}

	return doc
}

func referenceFieldName(entity, identifier string) string {
	if identifier == IdentifierID {
		return entity + "_id"
	}
	return entity + "_slug"
}

// processFieldMappings extracts field documentation from a FieldMappings struct.
// Fields are processed in sorted order by field name for deterministic output.
func processFieldMappings(entity string, mappings FieldMappings) []FieldDocRow {
	keys := mappings.AllKeys()
	sort.Strings(keys)
	var rows []FieldDocRow
	for _, k := range keys {
		sourcePath, transforms := parseSourcePath(mappings.PathOf(k))
		var notes []string
		for _, t := range transforms {
			notes = append(notes, formatTransformNote(t))
		}
		rows = append(rows, FieldDocRow{
			Entity:     entity,
			FieldName:  k,
			FieldType:  mappings.TypeOf(k),
			SourcePath: sourcePath,
			Notes:      strings.Join(notes, "; "),
		})
	}
	return rows
}

// parseSourcePath extracts the source path and inline transforms from a mapping value.
// e.g., "job_country|@countryName" -> ("job_country", ["@countryName"])
func parseSourcePath(value string) (string, []string) {
	if value == "" {
		return "(computed)", nil
	}
	if len(value) >= 2 && value[0] == '`' && value[len(value)-1] == '`' {
		return "(static)", []string{value}
	}

	parts := strings.Split(value, "|")
	sourcePath := parts[0]
	var transforms []string

	for i := 1; i < len(parts); i++ {
		if strings.HasPrefix(parts[i], "@") {
			transforms = append(transforms, parts[i])
		}
	}

	return sourcePath, transforms
}

// formatTransformNote formats a transform into a human-readable note.
func formatTransformNote(transform string) string {
	switch {
	case strings.HasPrefix(transform, "`"):
		return fmt.Sprintf("Static value %s", transform)
	case strings.HasPrefix(transform, "@phone:"):
		arg := strings.TrimPrefix(transform, "@phone:")
		return fmt.Sprintf("Formatted as E.164, default country code %s", arg)
	case transform == "@phone":
		return "Formatted as E.164"
	case strings.HasPrefix(transform, "@countryName"):
		return "Uses @countryName transform"
	case transform == "@lower":
		return "Converts to lowercase"
	default:
		return fmt.Sprintf("Transform: %s", transform)
	}
}

// FormatCSV formats the field documentation as CSV.
func (d FieldDocumentation) FormatCSV() (string, error) {
	var buf bytes.Buffer
	writer := csv.NewWriter(&buf)

	headers := []string{"Recruit CRM Entity", "Recruit CRM Field", "Custom Field", "Field Type", "Form Source", "Mapping Notes"}
	if err := writer.Write(headers); err != nil {
		return "", err
	}

	for _, row := range d.Rows {
		customMark := ""
		if row.IsCustom {
			customMark = "✓"
		}
		record := []string{row.Entity, row.FieldName, customMark, row.FieldType, row.SourcePath, row.Notes}
		if err := writer.Write(record); err != nil {
			return "", err
		}
	}

	writer.Flush()
	if err := writer.Error(); err != nil {
		return "", err
	}

	return buf.String(), nil
}
