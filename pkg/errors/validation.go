package errors

import (
	"strings"
	"unicode"
)

// maxNameLength bounds gate, net and module names.
const maxNameLength = 256

// ValidateName validates an entity name (gate, net, module, gate type).
//
// The validation rules are intentionally conservative:
//   - No empty names
//   - No control characters
//   - Maximum length of 256 characters
func ValidateName(kind, name string) error {
	if name == "" {
		return New(ErrCodeInvalidArgument, "%s name cannot be empty", kind)
	}

	if len(name) > maxNameLength {
		return New(ErrCodeInvalidArgument, "%s name too long (max %d characters)", kind, maxNameLength)
	}

	for _, r := range name {
		if unicode.IsControl(r) {
			return New(ErrCodeInvalidArgument, "%s name contains invalid control characters", kind)
		}
	}

	return nil
}

// ValidatePinName validates a pin name. Pin names follow the entity name rules
// and additionally must not contain whitespace, since they appear unquoted in
// filter expressions and DOT labels.
func ValidatePinName(name string) error {
	if err := ValidateName("pin", name); err != nil {
		return err
	}
	if strings.IndexFunc(name, unicode.IsSpace) >= 0 {
		return New(ErrCodeInvalidArgument, "pin name %q contains whitespace", name)
	}
	return nil
}

// ValidatePath validates a file path given on the command line.
//
// Validation rules:
//   - Path cannot be empty
//   - Maximum length of 4096 characters
//   - No null bytes or control characters
func ValidatePath(path string) error {
	if path == "" {
		return New(ErrCodeInvalidPath, "path cannot be empty")
	}

	const maxPathLength = 4096
	if len(path) > maxPathLength {
		return New(ErrCodeInvalidPath, "path too long (max %d characters)", maxPathLength)
	}

	for _, r := range path {
		if r == '\x00' || unicode.IsControl(r) {
			return New(ErrCodeInvalidPath, "path contains invalid characters")
		}
	}

	return nil
}
