package domain

// ErrorCode is the closed taxonomy of sync failure kinds. Only NETWORK is
// transient; everything else requires a local fix or a later run.
type ErrorCode string

const (
	// CodeAuth means credentials were rejected; retrying will not help.
	CodeAuth ErrorCode = "AUTH"
	// CodeValidation means the platform rejected the payload.
	CodeValidation ErrorCode = "VALIDATION"
	// CodeDependency means a prerequisite entity is not synced yet.
	CodeDependency ErrorCode = "DEPENDENCY"
	// CodeDuplicate means a same-named remote entity exists and could not
	// be linked.
	CodeDuplicate ErrorCode = "DUPLICATE"
	// CodeNetwork covers 5xx responses, timeouts and refused connections.
	CodeNetwork ErrorCode = "NETWORK"
	// CodeLinkedDuplicate is reported on success when the entity was linked
	// to a pre-existing remote record instead of created.
	CodeLinkedDuplicate ErrorCode = "LINKED_DUPLICATE"
)

// Retryable reports whether a failure with this code is transient.
func (c ErrorCode) Retryable() bool {
	return c == CodeNetwork
}
