package inspection

import (
	"encoding/base64"
	"fmt"
	"strings"
)

// photoPayload is one decoded inline photo from an observation form.
type photoPayload struct {
	contentType string
	ext         string
	data        []byte
}

// decodeDataURL parses an inline "data:image/png;base64,...." photo payload.
func decodeDataURL(s string) (*photoPayload, error) {
	if !strings.HasPrefix(s, "data:") {
		return nil, fmt.Errorf("photo payload is not a data URL")
	}

	meta, encoded, found := strings.Cut(s[len("data:"):], ",")
	if !found {
		return nil, fmt.Errorf("photo payload missing data separator")
	}

	if !strings.HasSuffix(meta, ";base64") {
		return nil, fmt.Errorf("photo payload is not base64 encoded")
	}
	contentType := strings.TrimSuffix(meta, ";base64")
	if contentType == "" {
		return nil, fmt.Errorf("photo payload missing content type")
	}

	data, err := base64.StdEncoding.DecodeString(encoded)
	if err != nil {
		return nil, fmt.Errorf("invalid base64 photo payload: %w", err)
	}
	if len(data) == 0 {
		return nil, fmt.Errorf("empty photo payload")
	}

	return &photoPayload{
		contentType: contentType,
		ext:         extensionFor(contentType),
		data:        data,
	}, nil
}

func extensionFor(contentType string) string {
	switch contentType {
	case "image/jpeg", "image/jpg":
		return "jpg"
	case "image/png":
		return "png"
	case "image/gif":
		return "gif"
	case "image/webp":
		return "webp"
	default:
		return "bin"
	}
}
