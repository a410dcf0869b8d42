// Package archive packages a batch's transcripts into a single zip file.
package archive

import (
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/klauspost/compress/zip"
)

// Entry is an extra in-memory file added to the archive root.
type Entry struct {
	Name string
	Data []byte
}

// Result describes a built archive.
type Result struct {
	Path    string
	Entries []string
	Size    int64
}

// Build zips every regular file in transcriptDir, in name order, into
// archivePath. An empty directory yields a valid empty archive.
func Build(transcriptDir, archivePath string, extras ...Entry) (Result, error) {
	result := Result{Path: archivePath}

	entries, err := os.ReadDir(transcriptDir)
	if err != nil {
		return result, fmt.Errorf("read transcript dir: %w", err)
	}

	out, err := os.OpenFile(archivePath, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, 0o600)
	if err != nil {
		return result, fmt.Errorf("create archive: %w", err)
	}

	zw := zip.NewWriter(out)
	fail := func(err error) (Result, error) {
		_ = zw.Close()
		_ = out.Close()
		_ = os.Remove(archivePath)
		return Result{Path: archivePath}, err
	}

	for _, entry := range entries {
		if !entry.Type().IsRegular() {
			continue
		}
		if err := addFile(zw, filepath.Join(transcriptDir, entry.Name()), entry.Name()); err != nil {
			return fail(err)
		}
		result.Entries = append(result.Entries, entry.Name())
	}

	for _, extra := range extras {
		w, err := zw.Create(extra.Name)
		if err != nil {
			return fail(fmt.Errorf("add %s: %w", extra.Name, err))
		}
		if _, err := w.Write(extra.Data); err != nil {
			return fail(fmt.Errorf("add %s: %w", extra.Name, err))
		}
		result.Entries = append(result.Entries, extra.Name)
	}

	if err := zw.Close(); err != nil {
		return fail(fmt.Errorf("finalize archive: %w", err))
	}
	if err := out.Close(); err != nil {
		_ = os.Remove(archivePath)
		return Result{Path: archivePath}, fmt.Errorf("close archive: %w", err)
	}

	info, err := os.Stat(archivePath)
	if err != nil {
		return Result{Path: archivePath}, fmt.Errorf("stat archive: %w", err)
	}
	result.Size = info.Size()
	return result, nil
}

func addFile(zw *zip.Writer, path, name string) error {
	f, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("open %s: %w", name, err)
	}
	defer f.Close()

	info, err := f.Stat()
	if err != nil {
		return fmt.Errorf("stat %s: %w", name, err)
	}
	header, err := zip.FileInfoHeader(info)
	if err != nil {
		return fmt.Errorf("header %s: %w", name, err)
	}
	header.Name = name
	header.Method = zip.Deflate

	w, err := zw.CreateHeader(header)
	if err != nil {
		return fmt.Errorf("add %s: %w", name, err)
	}
	if _, err := io.Copy(w, f); err != nil {
		return fmt.Errorf("write %s: %w", name, err)
	}
	return nil
}
