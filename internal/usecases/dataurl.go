package usecases

import (
	"encoding/base64"
	"errors"
	"fmt"
	"strings"
)

const defaultImageMIME = "image/jpeg"

var ErrInvalidDataURL = errors.New("invalid data url")

// ParseDataURL decodes a "data:<mime>;base64,<payload>" image URL. A missing or
// non-image MIME type is treated as JPEG.
func ParseDataURL(dataURL string) (mimeType string, data []byte, err error) {
	op := "usecases.ParseDataURL"

	rest, ok := strings.CutPrefix(dataURL, "data:")
	if !ok {
		return "", nil, fmt.Errorf("%s: missing data: prefix: %w", op, ErrInvalidDataURL)
	}

	header, payload, ok := strings.Cut(rest, ",")
	if !ok {
		return "", nil, fmt.Errorf("%s: missing payload: %w", op, ErrInvalidDataURL)
	}

	mediaType, isBase64 := strings.CutSuffix(header, ";base64")
	if !isBase64 {
		return "", nil, fmt.Errorf("%s: payload is not base64: %w", op, ErrInvalidDataURL)
	}

	mimeType = mediaType
	if !strings.HasPrefix(mimeType, "image/") {
		mimeType = defaultImageMIME
	}

	data, err = base64.StdEncoding.DecodeString(payload)
	if err != nil {
		return "", nil, fmt.Errorf("%s: decode payload: %w: %w", op, ErrInvalidDataURL, err)
	}
	return mimeType, data, nil
}

func BuildDataURL(mimeType string, data []byte) string {
	if mimeType == "" {
		mimeType = defaultImageMIME
	}
	return "data:" + mimeType + ";base64," + base64.StdEncoding.EncodeToString(data)
}
