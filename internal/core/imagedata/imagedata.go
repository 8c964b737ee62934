// Package imagedata validates and carries the image payload handed to the extraction pipeline.
package imagedata

import (
	"encoding/base64"
	"fmt"
	"net/http"
	"os"
	"strings"

	"github.com/joseph-ayodele/timetable-import/internal/common"
)

// MaxBytes caps accepted payloads; larger images are rejected as invalid input.
const MaxBytes = 20 << 20

// Image is a validated, non-empty image payload.
type Image struct {
	Data []byte
	MIME string
}

// FromBytes validates raw image bytes.
func FromBytes(b []byte) (Image, error) {
	if len(b) == 0 {
		return Image{}, invalid("image payload is empty", common.ErrEmptyImage)
	}
	if len(b) > MaxBytes {
		return Image{}, invalid(fmt.Sprintf("image exceeds %d bytes", MaxBytes), common.ErrInvalidInput)
	}
	mt := http.DetectContentType(b)
	if !strings.HasPrefix(mt, "image/") {
		return Image{}, invalid("payload is not a supported image ("+mt+")", common.ErrNotImage)
	}
	return Image{Data: b, MIME: mt}, nil
}

// FromDataURI decodes a base64 data URI such as "data:image/png;base64,....".
func FromDataURI(uri string) (Image, error) {
	uri = strings.TrimSpace(uri)
	if uri == "" {
		return Image{}, invalid("image payload is empty", common.ErrEmptyImage)
	}
	rest, ok := strings.CutPrefix(uri, "data:")
	if !ok {
		return Image{}, invalid("malformed data URI", common.ErrInvalidInput)
	}
	meta, payload, ok := strings.Cut(rest, ",")
	if !ok || !strings.HasSuffix(meta, ";base64") {
		return Image{}, invalid("data URI must be base64 encoded", common.ErrInvalidInput)
	}
	declared := strings.TrimSuffix(meta, ";base64")
	if declared != "" && !strings.HasPrefix(declared, "image/") {
		return Image{}, invalid("data URI is not an image ("+declared+")", common.ErrNotImage)
	}
	b, err := decodeBase64(payload)
	if err != nil {
		return Image{}, invalid("data URI payload is not valid base64", common.ErrInvalidInput)
	}
	return FromBytes(b)
}

// Parse accepts either a data URI or bare base64 content.
func Parse(payload string) (Image, error) {
	payload = strings.TrimSpace(payload)
	if payload == "" {
		return Image{}, invalid("image payload is empty", common.ErrEmptyImage)
	}
	if strings.HasPrefix(payload, "data:") {
		return FromDataURI(payload)
	}
	b, err := decodeBase64(payload)
	if err != nil {
		return Image{}, invalid("image payload is not valid base64", common.ErrInvalidInput)
	}
	return FromBytes(b)
}

// ReadFile loads and validates an image from disk.
func ReadFile(path string) (Image, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return Image{}, fmt.Errorf("read image %s: %w", path, err)
	}
	return FromBytes(b)
}

// DataURL encodes the image for transports that take inline images.
func (i Image) DataURL() string {
	return "data:" + i.MIME + ";base64," + base64.StdEncoding.EncodeToString(i.Data)
}

// Ext returns a file extension (without dot) suitable for the image MIME type.
func (i Image) Ext() string {
	switch i.MIME {
	case "image/jpeg":
		return "jpg"
	case "image/png":
		return "png"
	case "image/gif":
		return "gif"
	case "image/webp":
		return "webp"
	case "image/bmp":
		return "bmp"
	default:
		return "img"
	}
}

func decodeBase64(s string) ([]byte, error) {
	s = strings.Map(func(r rune) rune {
		if r == '\n' || r == '\r' || r == ' ' || r == '\t' {
			return -1
		}
		return r
	}, s)
	if b, err := base64.StdEncoding.DecodeString(s); err == nil {
		return b, nil
	}
	return base64.RawStdEncoding.DecodeString(strings.TrimRight(s, "="))
}

func invalid(msg string, cause error) error {
	return common.NewAppError("INVALID_IMAGE", msg, cause)
}
