package avatars

import (
	"context"
	"encoding/base64"
	"errors"
	"fmt"
	"strings"
	"time"
)

// MaxSize is the largest accepted avatar upload
const MaxSize = 5 << 20

// ErrInvalidUpload is returned for empty, oversized or non-image uploads
var ErrInvalidUpload = errors.New("invalid avatar upload")

// Avatar is a user's profile image. Data is a data URI
// (data:<mime>;base64,<payload>).
type Avatar struct {
	UserNIP   string    `json:"user_nip"`
	Filename  string    `json:"filename"`
	MimeType  string    `json:"mime_type"`
	Data      string    `json:"data"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// Upload is a file received from a client
type Upload struct {
	Filename string
	MimeType string
	Content  []byte
}

// Store persists avatars keyed by user NIP. Get, Replace and Delete return
// storage.ErrNotFound for a user without an avatar; Create returns
// storage.ErrConflict when one already exists.
type Store interface {
	Get(ctx context.Context, nip string) (*Avatar, error)
	Create(ctx context.Context, avatar *Avatar) error
	Replace(ctx context.Context, avatar *Avatar) error
	Delete(ctx context.Context, nip string) error
}

// EncodeDataURI renders content as a base64 data URI
func EncodeDataURI(mimeType string, content []byte) string {
	return "data:" + mimeType + ";base64," + base64.StdEncoding.EncodeToString(content)
}

// DecodeDataURI splits a base64 data URI into its MIME type and content
func DecodeDataURI(uri string) (string, []byte, error) {
	rest, ok := strings.CutPrefix(uri, "data:")
	if !ok {
		return "", nil, errors.New("not a data URI")
	}
	header, payload, ok := strings.Cut(rest, ",")
	if !ok {
		return "", nil, errors.New("data URI has no payload")
	}
	mimeType, ok := strings.CutSuffix(header, ";base64")
	if !ok {
		return "", nil, errors.New("data URI is not base64 encoded")
	}
	content, err := base64.StdEncoding.DecodeString(payload)
	if err != nil {
		return "", nil, fmt.Errorf("invalid data URI payload: %w", err)
	}
	return mimeType, content, nil
}
