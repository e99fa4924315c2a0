package executor

import (
	"archive/zip"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/depositpack/depositpack/pkg/planner"
)

// writeZip creates one archive with members stored relative to their
// common ancestor, so extracting reproduces the layout below it.
func writeZip(path string, members []string, mode planner.Mode) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create archive: %w", err)
	}
	w := zip.NewWriter(f)

	base := planner.CommonDir(members)
	for _, m := range members {
		if err := addMember(w, base, m, mode); err != nil {
			w.Close()
			f.Close()
			return err
		}
	}
	if err := w.Close(); err != nil {
		f.Close()
		return fmt.Errorf("failed to finalize archive: %w", err)
	}
	if err := f.Close(); err != nil {
		return fmt.Errorf("failed to close archive: %w", err)
	}
	return nil
}

func addMember(w *zip.Writer, base, path string, mode planner.Mode) error {
	f, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("failed to open member: %w", err)
	}
	defer f.Close()

	info, err := f.Stat()
	if err != nil {
		return fmt.Errorf("failed to stat member: %w", err)
	}
	hdr, err := zip.FileInfoHeader(info)
	if err != nil {
		return fmt.Errorf("failed to build member header: %w", err)
	}
	rel, err := filepath.Rel(base, path)
	if err != nil {
		rel = filepath.Base(path)
	}
	hdr.Name = filepath.ToSlash(rel)
	hdr.Method = method(mode)

	dst, err := w.CreateHeader(hdr)
	if err != nil {
		return fmt.Errorf("failed to add member: %w", err)
	}
	if _, err := io.Copy(dst, f); err != nil {
		return fmt.Errorf("failed to write member: %w", err)
	}
	return nil
}

func method(mode planner.Mode) uint16 {
	if mode == planner.ModeStore {
		return zip.Store
	}
	return zip.Deflate
}

// wrapArchive nests a finished zip inside an outer deflate zip, named
// after the inner one with an _outer suffix.
func wrapArchive(inner string) (string, error) {
	outer := strings.TrimSuffix(inner, ".zip") + "_outer.zip"
	if err := writeZip(outer, []string{inner}, planner.ModeDeflate); err != nil {
		return "", err
	}
	return outer, nil
}
