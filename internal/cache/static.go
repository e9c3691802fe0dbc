package cache

import (
	"io/fs"

	"github.com/debemdeboas/folio/internal/util"
)

var staticCache = NewCache[string, string]()

func GetStaticHash(path string) (string, bool) {
	return staticCache.Get(path)
}

func SetStaticHash(path, hash string) {
	staticCache.Set(path, hash)
}

// IndexStatic hashes every file of fsys and records it under urlPrefix plus
// its path, so responses for it can carry an ETag. It returns the number
// of files indexed.
func IndexStatic(fsys fs.FS, urlPrefix string) (int, error) {
	n := 0
	err := fs.WalkDir(fsys, ".", func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			return nil
		}
		data, err := fs.ReadFile(fsys, path)
		if err != nil {
			return err
		}
		SetStaticHash(urlPrefix+path, util.ContentHash(data))
		n++
		return nil
	})
	return n, err
}
