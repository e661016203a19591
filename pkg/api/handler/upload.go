package handler

import (
	"context"
	"io"
	"log/slog"
	"net/http"

	"github.com/ashevelev/chatweb/pkg/api/response"
	"github.com/ashevelev/chatweb/pkg/domain"
	"github.com/ashevelev/chatweb/pkg/logger"
)

const maxUploadMemory = 32 << 20 // 32 MiB

type UploadService interface {
	UploadAll(ctx context.Context, files []domain.FileUpload) domain.UploadResult
}

type upload struct {
	service UploadService
	writer  response.JSONWriter
}

func NewUpload(service UploadService) *upload {
	return &upload{service: service}
}

func (u *upload) Upload(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseMultipartForm(maxUploadMemory); err != nil {
		u.writer.WriteJSON(w, http.StatusBadRequest, map[string]string{"error": "No files provided"})
		return
	}

	headers := r.MultipartForm.File["files"]
	if len(headers) == 0 {
		u.writer.WriteJSON(w, http.StatusBadRequest, map[string]string{"error": "No files provided"})
		return
	}

	files := make([]domain.FileUpload, 0, len(headers))
	for _, header := range headers {
		f, err := header.Open()
		if err != nil {
			slog.ErrorContext(r.Context(), "opening multipart file", "name", header.Filename, logger.Err(err))
			u.writer.WriteJSON(w, http.StatusInternalServerError,
				map[string]string{"error": "Internal server error during file upload"})
			return
		}

		data, err := io.ReadAll(f)
		f.Close()
		if err != nil {
			slog.ErrorContext(r.Context(), "reading multipart file", "name", header.Filename, logger.Err(err))
			u.writer.WriteJSON(w, http.StatusInternalServerError,
				map[string]string{"error": "Internal server error during file upload"})
			return
		}

		files = append(files, domain.FileUpload{
			Name:     header.Filename,
			MimeType: header.Header.Get("Content-Type"),
			Data:     data,
		})
	}

	result := u.service.UploadAll(r.Context(), files)
	u.writer.WriteJSON(w, http.StatusOK, result)
}
