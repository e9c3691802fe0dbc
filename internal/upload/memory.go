package upload

import (
	"context"
	"net/http"
	"strings"

	"github.com/debemdeboas/folio/internal/cache"
	"github.com/debemdeboas/folio/internal/config"
)

// MemoryUploader keeps images in process and serves them itself. It is used
// when no bucket is configured.
type MemoryUploader struct {
	siteURL string
	path    string
	images  *cache.Cache[string, *Image]
}

// NewMemoryUploader serves images under path, for example "/uploads", and
// hands out absolute URLs rooted at siteURL.
func NewMemoryUploader(siteURL, path string) *MemoryUploader {
	return &MemoryUploader{
		siteURL: strings.TrimSuffix(siteURL, "/"),
		path:    "/" + strings.Trim(path, "/"),
		images:  cache.NewCache[string, *Image](),
	}
}

func (m *MemoryUploader) Upload(ctx context.Context, img *Image) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	key := img.Key()
	m.images.Set(key, img)
	return m.siteURL + m.path + "/" + key, nil
}

// ServeHTTP serves an uploaded image by the key that follows the upload path.
func (m *MemoryUploader) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	key := strings.TrimPrefix(strings.TrimPrefix(r.URL.Path, m.path), "/")
	img, ok := m.images.Get(key)
	if !ok {
		http.NotFound(w, r)
		return
	}
	w.Header().Set(config.HCType, img.ContentType)
	w.Header().Set(config.HCacheControl, "public, max-age=3600")
	w.Write(img.Data)
}
