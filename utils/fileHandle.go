package utils

import (
	"errors"
	"fmt"
	"io"
	"mime/multipart"

	"github.com/gabriel-vasile/mimetype"
)

var (
	ErrSlideTooLarge = errors.New("slide file is too large")
	ErrSlideType     = errors.New("slide must be a PDF, PNG or JPEG file")
)

var allowedSlideTypes = []string{"application/pdf", "image/png", "image/jpeg"}

// ReadSlide reads an uploaded slide, enforcing the size limit and checking
// the content type from the file's bytes.
func ReadSlide(file *multipart.FileHeader, maxBytes int64) ([]byte, string, error) {
	if file.Size > maxBytes {
		return nil, "", ErrSlideTooLarge
	}

	src, err := file.Open()
	if err != nil {
		return nil, "", err
	}
	defer src.Close()

	data, err := io.ReadAll(io.LimitReader(src, maxBytes+1))
	if err != nil {
		return nil, "", err
	}

	contentType, err := ValidateSlide(data, maxBytes)
	if err != nil {
		return nil, "", err
	}
	return data, contentType, nil
}

// ValidateSlide returns the detected MIME type of data if it is an allowed
// slide type within maxBytes.
func ValidateSlide(data []byte, maxBytes int64) (string, error) {
	if int64(len(data)) > maxBytes {
		return "", ErrSlideTooLarge
	}
	if len(data) == 0 {
		return "", fmt.Errorf("%w: empty file", ErrSlideType)
	}

	detected := mimetype.Detect(data)
	for _, allowed := range allowedSlideTypes {
		if detected.Is(allowed) {
			return allowed, nil
		}
	}
	return "", fmt.Errorf("%w: got %s", ErrSlideType, detected.String())
}
