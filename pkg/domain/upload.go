package domain

// FileUpload carries one file received from a multipart request.
type FileUpload struct {
	Name     string
	MimeType string
	Data     []byte
}

type UploadedFile struct {
	Success      bool           `json:"success"`
	OriginalName string         `json:"originalName"`
	Size         int64          `json:"size"`
	Type         AttachmentType `json:"type"`
	URL          string         `json:"url"`
}

type FailedUpload struct {
	Success      bool   `json:"success"`
	OriginalName string `json:"originalName"`
	Error        string `json:"error"`
}

// UploadResult aggregates per-file outcomes. Files succeed or fail
// independently of each other.
type UploadResult struct {
	Successful []UploadedFile `json:"successful"`
	Failed     []FailedUpload `json:"failed"`
	Message    string         `json:"message"`
}
