// Package storage is the portal's media store: validation plus a disk-backed
// bucket that hands out public URLs, standing in for the hosted object store.
package storage

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/itgelzam/portal/internal/messages"
)

const (
	KindImage = "image"
	KindVideo = "video"

	MaxImageSize = 5 << 20   // 5 MB
	MaxVideoSize = 100 << 20 // 100 MB
)

// Allowed content types, mapped to the extension we store under.
var (
	imageTypes = map[string]string{
		"image/jpeg": "jpg",
		"image/png":  "png",
		"image/gif":  "gif",
		"image/webp": "webp",
	}
	videoTypes = map[string]string{
		"video/mp4":       "mp4",
		"video/webm":      "webm",
		"video/mov":       "mov",
		"video/quicktime": "mov",
		"video/avi":       "avi",
		"video/x-msvideo": "avi",
	}
)

var (
	ErrImageType   = errors.New(messages.ErrImageType)
	ErrImageTooBig = errors.New(messages.ErrImageTooBig)
	ErrVideoType   = errors.New(messages.ErrVideoType)
	ErrVideoTooBig = errors.New(messages.ErrVideoTooBig)
	ErrUnknownKind = errors.New("unknown media kind")
)

// Validate applies the allow-list and size cap for the given kind. Callers run
// this before any bytes move, locally on the client and again on the server.
func Validate(kind, contentType string, size int64) error {
	switch kind {
	case KindImage:
		if _, ok := imageTypes[contentType]; !ok {
			return ErrImageType
		}
		if size > MaxImageSize {
			return ErrImageTooBig
		}
	case KindVideo:
		if _, ok := videoTypes[contentType]; !ok {
			return ErrVideoType
		}
		if size > MaxVideoSize {
			return ErrVideoTooBig
		}
	default:
		return ErrUnknownKind
	}
	return nil
}

// Store writes media files under dir and resolves public URLs under
// baseURL + "/media/".
type Store struct {
	dir     string
	baseURL string
}

func NewStore(dir, baseURL string) (*Store, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create media dir: %w", err)
	}
	return &Store{dir: dir, baseURL: strings.TrimRight(baseURL, "/")}, nil
}

// Save validates and writes one upload, returning its public URL. Names are
// kind + timestamp + random suffix so concurrent uploads never collide.
func (s *Store) Save(kind, contentType string, size int64, r io.Reader) (string, error) {
	if err := Validate(kind, contentType, size); err != nil {
		return "", err
	}

	ext := imageTypes[contentType]
	if kind == KindVideo {
		ext = videoTypes[contentType]
	}
	name := fmt.Sprintf("%s-%d-%s.%s", kind, time.Now().UnixMilli(), randSuffix(), ext)

	f, err := os.Create(filepath.Join(s.dir, name))
	if err != nil {
		return "", fmt.Errorf("create media file: %w", err)
	}
	defer f.Close()

	if _, err := io.Copy(f, r); err != nil {
		os.Remove(f.Name())
		return "", fmt.Errorf("write media file: %w", err)
	}
	return s.PublicURL(name), nil
}

func (s *Store) PublicURL(name string) string {
	return s.baseURL + "/media/" + name
}

// Dir exposes the storage root for static serving.
func (s *Store) Dir() string { return s.dir }

func randSuffix() string {
	return strings.ReplaceAll(uuid.New().String(), "-", "")[:12]
}
