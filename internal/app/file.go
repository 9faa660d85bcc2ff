package app

import (
	"encoding/base64"
	"strings"

	"github.com/dkeye/Parlor/internal/domain"
	"github.com/gabriel-vasile/mimetype"
)

// normalizeFile fills in an empty fileType from the data URI, first from
// its media type and then by sniffing the decoded bytes.
func normalizeFile(f domain.FileUpload) domain.FileUpload {
	if f.FileType != "" {
		return f
	}
	header, payload, ok := strings.Cut(strings.TrimPrefix(f.FileData, "data:"), ",")
	if !ok || !strings.HasPrefix(f.FileData, "data:") {
		return f
	}
	mediaType, isBase64 := strings.CutSuffix(header, ";base64")
	if mt, _, _ := strings.Cut(mediaType, ";"); mt != "" {
		f.FileType = mt
		return f
	}
	if !isBase64 {
		return f
	}
	raw, err := base64.StdEncoding.DecodeString(payload)
	if err != nil {
		return f
	}
	f.FileType = mimetype.Detect(raw).String()
	return f
}
