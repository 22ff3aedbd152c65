package handlers

import (
	"bytes"
	"encoding/base64"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"path/filepath"
	"strings"

	"folio/internal/imaging"
	"folio/internal/storage"
)

// maxUploadSize is the maximum allowed media upload size (5 MB).
const maxUploadSize = 5 << 20

// allowedMediaTypes defines MIME types accepted for upload.
var allowedMediaTypes = map[string]bool{
	"image/jpeg":      true,
	"image/png":       true,
	"image/gif":       true,
	"image/webp":      true,
	"image/svg+xml":   true,
	"application/pdf": true,
}

// mediaExtensions maps re-encoded image types to their file extension.
var mediaExtensions = map[string]string{
	"image/jpeg": ".jpg",
	"image/png":  ".png",
}

type uploadResponse struct {
	URL         string `json:"url"`
	ContentType string `json:"contentType"`
	Size        int    `json:"size"`
	Stored      bool   `json:"stored"`
}

// MediaUpload accepts a multipart "file" field holding an image or PDF.
// Wide raster images are scaled down first. With object storage configured
// the file is uploaded and its public URL returned; otherwise the response
// carries the file inline as a data: URI.
func (a *Admin) MediaUpload(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, maxUploadSize+1024)
	if err := r.ParseMultipartForm(maxUploadSize); err != nil {
		writeError(w, http.StatusRequestEntityTooLarge, "File too large. Maximum size is 5 MB.")
		return
	}

	file, header, err := r.FormFile("file")
	if err != nil {
		writeError(w, http.StatusBadRequest, "No file provided.")
		return
	}
	defer file.Close()

	if header.Size > maxUploadSize {
		writeError(w, http.StatusRequestEntityTooLarge, "File too large. Maximum size is 5 MB.")
		return
	}

	data, err := io.ReadAll(file)
	if err != nil {
		writeInternal(w, "read upload", err)
		return
	}

	contentType := detectContentType(data, header.Filename)
	if !allowedMediaTypes[contentType] {
		writeError(w, http.StatusBadRequest, fmt.Sprintf("File type %q is not allowed.", contentType))
		return
	}

	filename := header.Filename
	if imaging.Resizable(contentType) {
		out, outType, resized, err := imaging.Fit(data, contentType, imaging.DefaultMaxWidth)
		if err != nil {
			slog.Warn("image resize failed, keeping original", "error", err, "filename", filename)
		} else if resized {
			if outType != contentType {
				filename = strings.TrimSuffix(filename, filepath.Ext(filename)) + mediaExtensions[outType]
			}
			data, contentType = out, outType
		}
	}

	if a.storage == nil {
		writeJSON(w, http.StatusOK, uploadResponse{
			URL:         "data:" + contentType + ";base64," + base64.StdEncoding.EncodeToString(data),
			ContentType: contentType,
			Size:        len(data),
		})
		return
	}

	key := storage.MediaKey(filename)
	fileURL, err := a.storage.Upload(r.Context(), key, contentType, bytes.NewReader(data), int64(len(data)))
	if err != nil {
		slog.Error("s3 upload failed", "error", err, "key", key)
		writeError(w, http.StatusBadGateway, "Failed to upload file.")
		return
	}
	slog.Info("media uploaded", "key", key, "content_type", contentType, "size", len(data))
	writeJSON(w, http.StatusCreated, uploadResponse{
		URL:         fileURL,
		ContentType: contentType,
		Size:        len(data),
		Stored:      true,
	})
}

// MediaDelete removes an uploaded object given its public URL in ?url=.
func (a *Admin) MediaDelete(w http.ResponseWriter, r *http.Request) {
	if a.storage == nil {
		writeError(w, http.StatusServiceUnavailable, "Object storage is not configured.")
		return
	}
	key, ok := a.storage.ExtractKey(r.URL.Query().Get("url"))
	if !ok {
		writeError(w, http.StatusBadRequest, "URL does not point to uploaded media.")
		return
	}
	if err := a.storage.Delete(r.Context(), key); err != nil {
		slog.Error("s3 delete failed", "error", err, "key", key)
		writeError(w, http.StatusBadGateway, "Failed to delete file.")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// detectContentType sniffs the first 512 bytes. SVG sniffs as XML or plain
// text, so the file extension decides for those.
func detectContentType(data []byte, filename string) string {
	contentType := http.DetectContentType(data[:min(len(data), 512)])
	if strings.HasSuffix(strings.ToLower(filename), ".svg") &&
		(strings.Contains(contentType, "xml") || strings.Contains(contentType, "text/plain")) {
		return "image/svg+xml"
	}
	if i := strings.IndexByte(contentType, ';'); i >= 0 {
		contentType = contentType[:i]
	}
	return contentType
}
