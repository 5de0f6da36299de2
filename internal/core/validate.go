// Package core contains the business logic for pbmctl: the session workflow
// state machine, the status-polling loop, progress estimation, contact and
// upload validation, report classification, and configuration.
package core

import (
	"errors"
	"path/filepath"
	"regexp"
	"strings"

	"github.com/rxbench/pbmctl/pkg/models"
)

// MaxUploadBytes is the largest document the analyzer service accepts.
const MaxUploadBytes = 50 * 1024 * 1024

// User-facing validation messages. These are shown inline and never sent to
// the server.
const (
	MsgRequired     = "Required"
	MsgInvalidEmail = "Please enter a valid email address"
	MsgBadFileType  = "Please upload a PDF or DOCX file."
	MsgFileTooLarge = "File size must not exceed 50MB."
)

// emailPattern matches a simple local@domain.tld shape. It is intentionally
// permissive; the goal is catching obvious typos, not RFC 5322 compliance.
var emailPattern = regexp.MustCompile(`^[^\s@]+@[^\s@]+\.[^\s@]+$`)

// allowedExtensions are the document types the service can read.
var allowedExtensions = map[string]bool{
	".pdf":  true,
	".docx": true,
	".doc":  true,
}

// ValidateContact checks a contact record field by field and returns a map
// from field name to error message for every field that fails its rule.
// An empty map means the record is valid. The function is pure and total.
func ValidateContact(contact models.ContactInfo) map[string]string {
	errs := make(map[string]string)

	fields := []struct {
		name  string
		value string
	}{
		{"first_name", contact.FirstName},
		{"last_name", contact.LastName},
		{"email", contact.Email},
		{"phone", contact.Phone},
		{"company", contact.Company},
	}

	for _, f := range fields {
		if strings.TrimSpace(f.value) == "" {
			errs[f.name] = MsgRequired
		}
	}

	if _, required := errs["email"]; !required {
		if !emailPattern.MatchString(strings.TrimSpace(contact.Email)) {
			errs["email"] = MsgInvalidEmail
		}
	}

	return errs
}

// CheckUploadFile enforces the client-side upload constraints before any
// network call: the extension must be pdf, docx, or doc (case-insensitive)
// and the size must not exceed MaxUploadBytes.
func CheckUploadFile(name string, size int64) error {
	ext := strings.ToLower(filepath.Ext(name))
	if !allowedExtensions[ext] {
		return errors.New(MsgBadFileType)
	}
	if size > MaxUploadBytes {
		return errors.New(MsgFileTooLarge)
	}
	return nil
}
