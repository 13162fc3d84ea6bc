package errors

import (
	"strings"
	"unicode"
)

// ValidateSchemaPath validates the path of a schema file handed over by the
// host editor. The path is only used to derive a file identity and to read
// the file, so the rules are about safety, not existence:
//   - Path cannot be empty
//   - Maximum length of 4096 characters
//   - No null bytes or control characters
func ValidateSchemaPath(path string) error {
	if path == "" {
		return New(ErrCodeInvalidPath, "schema path cannot be empty")
	}

	const maxPathLength = 4096
	if len(path) > maxPathLength {
		return New(ErrCodeInvalidPath, "schema path too long (max %d characters)", maxPathLength)
	}

	for _, r := range path {
		if r == '\x00' || unicode.IsControl(r) {
			return New(ErrCodeInvalidPath, "schema path contains invalid characters")
		}
	}

	return nil
}

// Visual node identity prefixes accepted from drag events.
var draggablePrefixes = []string{"table-", "note-"}

// ValidateNodeID validates a visual-node identity received with a drag event.
// Only table headers and sticky notes carry persisted positions.
func ValidateNodeID(id string) error {
	if id == "" {
		return New(ErrCodeInvalidInput, "node id cannot be empty")
	}
	if len(id) > 1024 {
		return New(ErrCodeInvalidInput, "node id too long (max 1024 characters)")
	}
	for _, p := range draggablePrefixes {
		if strings.HasPrefix(id, p) && len(id) > len(p) {
			return nil
		}
	}
	return New(ErrCodeInvalidInput, "node %q cannot be dragged", id)
}

// ValidateGroupID validates a group container identity received with a group drag event.
func ValidateGroupID(id string) error {
	if !strings.HasPrefix(id, "group-") || len(id) == len("group-") {
		return New(ErrCodeInvalidInput, "invalid group id %q", id)
	}
	return nil
}
