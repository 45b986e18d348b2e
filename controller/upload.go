package controller

import (
	"fmt"
	"mime/multipart"
	"os"
	"path/filepath"
	"time"

	"scms/config"
	"scms/utils"
)

var allowedFileTypes = []string{
	"application/pdf",
	"application/msword",
	"application/vnd.openxmlformats-officedocument.wordprocessingml.document",
	"image/jpeg",
	"image/png",
}

// storeUploadedFile validates and writes a multipart upload below the
// configured upload directory, returning the stored path.
func storeUploadedFile(file *multipart.FileHeader, subdir string) (string, error) {
	if file.Size > config.Env().MaxFileSize {
		return "", fmt.Errorf("file exceeds the maximum size of %d bytes", config.Env().MaxFileSize)
	}
	contentType := file.Header.Get("Content-Type")
	if !utils.Contains(allowedFileTypes, contentType) {
		return "", fmt.Errorf("invalid file type. Only PDF, DOC, DOCX, JPG, and PNG files are allowed")
	}

	dir := filepath.Join(config.Env().UploadDir, subdir)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", err
	}
	path := filepath.Join(dir, fmt.Sprintf("%d-%s", time.Now().UnixMilli(), filepath.Base(file.Filename)))

	src, err := file.Open()
	if err != nil {
		return "", err
	}
	defer utils.Closer(src)()

	dst, err := os.Create(path)
	if err != nil {
		return "", err
	}
	defer utils.Closer(dst)()

	if _, err := dst.ReadFrom(src); err != nil {
		return "", err
	}
	return path, nil
}
