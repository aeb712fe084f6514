// Package records turns spreadsheet rows into typed entities. Malformed
// numeric cells fall back to documented defaults instead of failing the load;
// rows that cannot form a valid entity are dropped and logged.
package records

import "strings"

// Column headers of the curated sheets. Where the sheet template and older
// sheets disagree, both spellings are accepted.
const (
	ColKitSKU           = "Kit SKU"
	ColKitName          = "Kit Name"
	ColKitDescription   = "Kit Description"
	ColKitPrice         = "Kit Price"
	ColKitStatus        = "Active/Inactive Status"
	ColKitCreated       = "Created Date"
	ColKitModified      = "Last Modified Date"
	ColComponentSKU     = "Component SKU"
	ColComponentName    = "Component Name"
	ColQuantityPerKit   = "Quantity per Kit"
	ColComponentCost    = "Component Cost"
	ColCritical         = "Is Critical Component"
	ColCriticalYN       = "Is Critical Component (Y/N)"
	ColMinimumBuffer    = "Minimum Buffer Stock"
	ColMaximumAssembly  = "Maximum Kit Assembly Quantity"
	ColLeadTime         = "Lead Time for Component Restocking (days)"
	ColAssemblyTime     = "Assembly/Disassembly Labor Time (minutes)"
	ColPriority         = "Priority Level"
	ColPriorityTiers    = "Priority Level (High/Medium/Low)"
	ColSKU              = "SKU"
	ColUnitCost         = "Unit Cost"
	ColManualOverride   = "Manual Override"
	ColManualOverrideYN = "Manual Override (Y/N)"
)

// Record is one spreadsheet row keyed by column header
type Record map[string]string

// Get returns the trimmed value of the first of keys present in the record
func (r Record) Get(keys ...string) string {
	for _, key := range keys {
		if v, ok := r[key]; ok {
			return strings.TrimSpace(v)
		}
	}
	return ""
}

// FromRows converts a header row followed by data rows into records.
// Short rows are padded with empty cells; blank rows are skipped.
func FromRows(rows [][]string) []Record {
	if len(rows) == 0 {
		return nil
	}

	header := make([]string, len(rows[0]))
	for i, h := range rows[0] {
		header[i] = strings.TrimSpace(strings.TrimPrefix(h, "\ufeff"))
	}

	out := make([]Record, 0, len(rows)-1)
	for _, row := range rows[1:] {
		if blank(row) {
			continue
		}
		rec := make(Record, len(header))
		for i, h := range header {
			if h == "" {
				continue
			}
			if i < len(row) {
				rec[h] = row[i]
			} else {
				rec[h] = ""
			}
		}
		out = append(out, rec)
	}
	return out
}

func blank(row []string) bool {
	for _, cell := range row {
		if strings.TrimSpace(cell) != "" {
			return false
		}
	}
	return true
}
