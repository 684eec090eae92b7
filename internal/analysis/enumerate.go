package analysis

import (
	"io/fs"
	"path/filepath"
	"sort"
	"strings"

	"github.com/tkalin/phototag-go/internal/errors"
)

// ImageFile is one enumerated input image. Name is the base filename used as
// the record identifier, Path the location on disk.
type ImageFile struct {
	Name string
	Path string
}

// enumerateImages walks the input directory and returns matching image files
// sorted by name, so runs visit files in a stable order. Without recursion
// only the top level is scanned.
func enumerateImages(root string, recursive bool, extensions []string) ([]ImageFile, error) {
	allowed := make(map[string]bool, len(extensions))
	for _, ext := range extensions {
		ext = strings.ToLower(strings.TrimSpace(ext))
		if ext == "" {
			continue
		}
		if !strings.HasPrefix(ext, ".") {
			ext = "." + ext
		}
		allowed[ext] = true
	}

	var files []ImageFile
	err := filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			if !recursive && path != root {
				return filepath.SkipDir
			}
			return nil
		}
		if !allowed[strings.ToLower(filepath.Ext(path))] {
			return nil
		}
		files = append(files, ImageFile{Name: d.Name(), Path: path})
		return nil
	})
	if err != nil {
		return nil, errors.New(err).
			Component("analysis").
			Category(errors.CategoryFileIO).
			Context("operation", "enumerate").
			Context("root", root).
			Build()
	}

	sort.Slice(files, func(i, j int) bool { return files[i].Name < files[j].Name })
	return files, nil
}
