// Package upload stores admin images in an S3-compatible bucket.
package upload

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"

	auditentity "github.com/ovaphlow/pitchfork/service-portfolio-go/internal/audit/entity"
	"github.com/ovaphlow/pitchfork/service-portfolio-go/internal/mutation"
)

const EntityName = "Upload"

const svgType = "image/svg+xml"

type unavailableError struct{}

func (unavailableError) Error() string   { return "Uploads are not configured" }
func (unavailableError) HTTPStatus() int { return http.StatusServiceUnavailable }

// ErrUnavailable is returned when no bucket is configured.
var ErrUnavailable error = unavailableError{}

// allowed maps accepted content types to the extension used in keys.
var allowed = map[string]string{
	"image/jpeg":    ".jpg",
	"image/png":     ".png",
	"image/webp":    ".webp",
	"image/gif":     ".gif",
	svgType:         ".svg",
}

// Result is returned for a stored image.
type Result struct {
	Key         string `json:"key"`
	URL         string `json:"url"`
	ContentType string `json:"content_type"`
	Size        int64  `json:"size"`
}

type Service struct {
	store ObjectStore
	cfg   Config
	kit   *mutation.Kit
	now   func() time.Time
}

// NewService builds the upload service. A nil store makes every call fail
// with ErrUnavailable.
func NewService(store ObjectStore, cfg Config, kit *mutation.Kit) *Service {
	return &Service{store: store, cfg: cfg.withDefaults(), kit: kit, now: time.Now}
}

// MaxBytes is the largest accepted image.
func (s *Service) MaxBytes() int64 { return s.cfg.MaxBytes }

func (s *Service) newKey(ext string) string {
	d := s.now().UTC()
	return fmt.Sprintf("%s/%d/%d/%d/%s%s", s.cfg.Prefix, d.Year(), d.Month(), d.Day(), uuid.New(), ext)
}

// Upload validates and stores one image. Raster types must match the sniffed
// content of the body; SVGs must parse as a script-free <svg> document.
func (s *Service) Upload(ctx context.Context, filename, contentType string, size int64, body io.Reader) (*Result, error) {
	claims, err := s.kit.Authorize(ctx)
	if err != nil {
		return nil, err
	}
	if s.store == nil {
		return nil, ErrUnavailable
	}
	contentType = strings.ToLower(strings.TrimSpace(strings.SplitN(contentType, ";", 2)[0]))
	ext, ok := allowed[contentType]
	if !ok {
		return nil, mutation.Invalid("file", "must be a jpeg, png, webp, gif or svg image")
	}
	if size > s.cfg.MaxBytes {
		return nil, mutation.Invalid("file", fmt.Sprintf("must be at most %d bytes", s.cfg.MaxBytes))
	}

	data, err := io.ReadAll(io.LimitReader(body, s.cfg.MaxBytes+1))
	if err != nil {
		return nil, mutation.ErrBadRequest
	}
	if len(data) == 0 {
		return nil, mutation.Invalid("file", "is required")
	}
	if int64(len(data)) > s.cfg.MaxBytes {
		return nil, mutation.Invalid("file", fmt.Sprintf("must be at most %d bytes", s.cfg.MaxBytes))
	}
	if contentType == svgType {
		if err := checkSVG(data); err != nil {
			return nil, mutation.Invalid("file", "must be a plain svg document without scripts")
		}
	} else if http.DetectContentType(data) != contentType {
		return nil, mutation.Invalid("file", "content does not match "+contentType)
	}

	key := s.newKey(ext)
	if err := s.store.Put(ctx, key, contentType, bytes.NewReader(data), int64(len(data))); err != nil {
		return nil, s.kit.Fail("upload image", err)
	}
	res := &Result{Key: key, URL: s.cfg.PublicURL(key), ContentType: contentType, Size: int64(len(data))}
	s.kit.Commit(ctx, claims, mutation.Change{
		Action:   auditentity.ActionUpload,
		Entity:   EntityName,
		EntityID: key,
		After:    map[string]any{"filename": filename, "key": key, "size": res.Size, "content_type": contentType},
	})
	return res, nil
}

// Delete removes an uploaded object. Keys outside the upload prefix are
// rejected.
func (s *Service) Delete(ctx context.Context, key string) error {
	claims, err := s.kit.Authorize(ctx)
	if err != nil {
		return err
	}
	if s.store == nil {
		return ErrUnavailable
	}
	key = strings.TrimSpace(key)
	if key == "" {
		return mutation.Invalid("key", "is required")
	}
	if !strings.HasPrefix(key, s.cfg.Prefix+"/") || strings.Contains(key, "..") {
		return mutation.Invalid("key", "is outside the upload prefix")
	}
	if err := s.store.Delete(ctx, key); err != nil {
		return s.kit.Fail("delete image", err)
	}
	s.kit.Commit(ctx, claims, mutation.Change{
		Action:   auditentity.ActionDelete,
		Entity:   EntityName,
		EntityID: key,
		Before:   map[string]any{"key": key},
	})
	return nil
}
