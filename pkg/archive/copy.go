package archive

import (
	"io/fs"
	"os"
	"path/filepath"
)

// CopyDir copies the contents of src into dst, merging with whatever dst
// already holds. Existing files with the same relative path are overwritten.
// Equivalent to "cp -r src/. dst".
func CopyDir(src, dst string) error {
	return filepath.WalkDir(src, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		rel, err := filepath.Rel(src, path)
		if err != nil {
			return err
		}
		target := filepath.Join(dst, rel)

		if d.IsDir() {
			return os.MkdirAll(target, 0o755)
		}
		if !d.Type().IsRegular() {
			return nil
		}
		info, err := d.Info()
		if err != nil {
			return err
		}
		f, err := os.Open(path)
		if err != nil {
			return err
		}
		defer f.Close()
		return writeFile(target, f, info.Mode())
	})
}
