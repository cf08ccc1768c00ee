// HTTP-layer error codes. Codes are lowercase snake_case and stable: clients
// branch on them programmatically, so renaming one is a breaking change.
// Handlers pick the most specific code and pass it to fail() together with
// the HTTP status.
package handlers

const (
	ErrCodeBadRequest       = "bad_request"
	ErrCodeNotFound         = "not_found"
	ErrCodeInternal         = "internal_error"
	ErrCodeMethodNotAllowed = "method_not_allowed"

	// Domain-specific:
	ErrCodeValidationFailed      = "validation_failed"
	ErrCodeAttachmentTooLarge    = "attachment_too_large"
	ErrCodeUnsupportedAttachment = "unsupported_attachment_type"
	ErrCodePayloadTooLarge       = "payload_too_large"
	ErrCodeStorageUnavailable    = "storage_unavailable"
	ErrCodeSubmitFailed          = "submit_failed"
	ErrCodeUpsertFailed          = "upsert_failed"
)
