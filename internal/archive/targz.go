package archive

import (
	"archive/tar"
	"bytes"
	"compress/gzip"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path"
	"path/filepath"
)

// TarGz walks the source directory and returns a gzip-compressed tar archive
// of its regular files. Each entry is stored under prefix, using forward
// slashes regardless of platform. Directory walk order is lexical, so the
// output is stable for a given tree.
func TarGz(dir, prefix string) ([]byte, error) {
	var buf bytes.Buffer

	gzw := gzip.NewWriter(&buf)
	tw := tar.NewWriter(gzw)

	err := filepath.WalkDir(dir, func(p string, d fs.DirEntry, walkErr error) error {
		if walkErr != nil {
			return walkErr
		}

		if !d.Type().IsRegular() {
			return nil
		}

		rel, err := filepath.Rel(dir, p)
		if err != nil {
			return err
		}

		return addFile(tw, p, path.Join(prefix, filepath.ToSlash(rel)))
	})
	if err != nil {
		return nil, fmt.Errorf("package %s: %w", dir, err)
	}

	if err := tw.Close(); err != nil {
		return nil, fmt.Errorf("finalize archive: %w", err)
	}

	if err := gzw.Close(); err != nil {
		return nil, fmt.Errorf("finalize compression: %w", err)
	}

	return buf.Bytes(), nil
}

// addFile writes a single regular file into the tar stream under the given name.
func addFile(tw *tar.Writer, source, name string) error {
	info, err := os.Stat(source)
	if err != nil {
		return err
	}

	header, err := tar.FileInfoHeader(info, "")
	if err != nil {
		return err
	}

	header.Name = name

	if err := tw.WriteHeader(header); err != nil {
		return err
	}

	f, err := os.Open(filepath.Clean(source))
	if err != nil {
		return err
	}

	defer func() {
		_ = f.Close()
	}()

	if _, err := io.Copy(tw, f); err != nil {
		return fmt.Errorf("archive %s: %w", source, err)
	}

	return nil
}
