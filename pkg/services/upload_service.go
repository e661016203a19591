package services

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"sync"

	"github.com/samber/lo"

	"github.com/ashevelev/chatweb/pkg/domain"
	"github.com/ashevelev/chatweb/pkg/logger"
)

type FileUploader interface {
	Upload(ctx context.Context, file domain.FileUpload) (string, error)
}

type uploadService struct {
	uploader FileUploader
}

func NewUploadService(uploader FileUploader) *uploadService {
	return &uploadService{uploader: uploader}
}

type fileOutcome struct {
	file domain.FileUpload
	url  string
	err  error
}

// UploadAll uploads every file concurrently. Files succeed or fail
// independently; one failure never blocks the rest.
func (u *uploadService) UploadAll(ctx context.Context, files []domain.FileUpload) domain.UploadResult {
	outcomes := make([]fileOutcome, len(files))

	var wg sync.WaitGroup
	wg.Add(len(files))
	for i, file := range files {
		go func(i int, file domain.FileUpload) {
			defer wg.Done()
			url, err := u.uploader.Upload(ctx, file)
			outcomes[i] = fileOutcome{file: file, url: url, err: err}
		}(i, file)
	}
	wg.Wait()

	result := domain.UploadResult{
		Successful: []domain.UploadedFile{},
		Failed:     []domain.FailedUpload{},
	}

	for _, outcome := range outcomes {
		if outcome.err != nil {
			slog.ErrorContext(ctx, "file upload failed", "name", outcome.file.Name, logger.Err(outcome.err))
			result.Failed = append(result.Failed, domain.FailedUpload{
				OriginalName: outcome.file.Name,
				Error:        outcome.err.Error(),
			})
			continue
		}

		result.Successful = append(result.Successful, domain.UploadedFile{
			Success:      true,
			OriginalName: outcome.file.Name,
			Size:         int64(len(outcome.file.Data)),
			Type: lo.Ternary(strings.HasPrefix(outcome.file.MimeType, "image/"),
				domain.AttachmentTypeImage, domain.AttachmentTypeFile),
			URL: outcome.url,
		})
	}

	result.Message = fmt.Sprintf("%d files uploaded successfully", len(result.Successful))
	if len(result.Failed) > 0 {
		result.Message += fmt.Sprintf(", %d failed", len(result.Failed))
	}

	return result
}
