package persistence

import (
	"strings"
)

// ValidateSortOrder validates and normalizes the sort order to ASC or DESC.
// Returns defaultOrder (DESC when empty) if the input is invalid or empty.
func ValidateSortOrder(orderDir string, defaultOrder ...string) string {
	switch strings.ToUpper(strings.TrimSpace(orderDir)) {
	case "ASC":
		return "ASC"
	case "DESC":
		return "DESC"
	}
	if len(defaultOrder) > 0 && strings.EqualFold(defaultOrder[0], "ASC") {
		return "ASC"
	}
	return "DESC"
}

// ValidateSortField validates the sort field against a whitelist of allowed fields.
// Returns the defaultField if the input is invalid, empty, or not in the whitelist.
func ValidateSortField(sortField string, allowedFields map[string]string, defaultField string) string {
	if column, ok := allowedFields[strings.TrimSpace(sortField)]; ok {
		return column
	}
	return allowedFields[defaultField]
}

// orderClause builds a whitelisted ORDER BY expression
func orderClause(orderBy, orderDir string, allowed map[string]string, defaultField, defaultDir string) string {
	return ValidateSortField(orderBy, allowed, defaultField) + " " + ValidateSortOrder(orderDir, defaultDir)
}

// RegistrationSortFields maps API sort keys to registration columns
var RegistrationSortFields = map[string]string{
	"created_at":   "created_at",
	"updated_at":   "updated_at",
	"submitted_at": "submitted_at",
	"status":       "status",
}

// EmployeeSortFields maps API sort keys to employee columns
var EmployeeSortFields = map[string]string{
	"created_at":  "created_at",
	"employee_id": "employee_id",
	"name":        "name",
	"email":       "email",
	"department":  "department",
	"status":      "status",
}

// PendingDocumentSortFields maps API sort keys to document review columns
var PendingDocumentSortFields = map[string]string{
	"uploaded_at":     "document_uploads.uploaded_at",
	"registration_id": "document_uploads.registration_id",
}
