package requests

// DeletePhotoRequest optionally carries the uploader id for ownership
// verification. When omitted, verification is skipped.
type DeletePhotoRequest struct {
	UploaderID string `json:"uploader_id"`
}
