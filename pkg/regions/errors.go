package regions

import "errors"

// Document shape errors
var (
	// ErrInvalidFragment indicates a document value that is neither a region
	// mapping, a single-entry group mapping, nor a sequence.
	ErrInvalidFragment = errors.New("invalid fragment")
)

// Structural errors
var (
	// ErrInvalidParent indicates a reparent or insert whose target is not a group.
	ErrInvalidParent = errors.New("parent must be a group")

	// ErrStructuralViolation indicates a named group placed anywhere but directly under the root.
	ErrStructuralViolation = errors.New("groups must be children of the root")

	// ErrImmutableRoot indicates an attempt to change the root group.
	ErrImmutableRoot = errors.New("root group cannot be changed")

	// ErrNotFound indicates a node path or label that does not resolve.
	ErrNotFound = errors.New("node not found")

	// ErrAmbiguousPath indicates a path segment matching several siblings.
	ErrAmbiguousPath = errors.New("path matches more than one node")
)

// Naming errors
var (
	// ErrReservedName indicates a group named "region".
	ErrReservedName = errors.New("group name is reserved")

	// ErrDuplicateName indicates a group name already used by a sibling group.
	ErrDuplicateName = errors.New("group name already in use")

	// ErrInvalidName indicates an empty group name.
	ErrInvalidName = errors.New("group name cannot be empty")
)

// Edit errors
var (
	// ErrInvalidEdit indicates a region edit that would leave a region inconsistent.
	ErrInvalidEdit = errors.New("invalid region edit")
)

// UserMessage turns an error from this package into a sentence suitable for a
// status line or dialog.
func UserMessage(err error) string {
	switch {
	case err == nil:
		return ""
	case errors.Is(err, ErrReservedName):
		return "Group name cannot be '" + ReservedGroupName + "'"
	case errors.Is(err, ErrDuplicateName):
		return "A group with that name already exists"
	case errors.Is(err, ErrInvalidName):
		return "Group name cannot be empty"
	case errors.Is(err, ErrImmutableRoot):
		return "The root group cannot be renamed, moved or deleted"
	case errors.Is(err, ErrStructuralViolation):
		return "Groups can only be placed at the top level"
	case errors.Is(err, ErrInvalidParent):
		return "Items can only be moved into a group"
	case errors.Is(err, ErrInvalidFragment):
		return "The document is not a valid region list"
	case errors.Is(err, ErrAmbiguousPath):
		return "Several items share that name; address one by position (#N)"
	case errors.Is(err, ErrNotFound):
		return "No such region or group"
	default:
		return err.Error()
	}
}
