// Package profile measures candidate deposit files and classifies them
// by how well they are expected to compress.
package profile

import (
	"os"
	"path/filepath"
	"strings"
)

// Class is a coarse, extension-based guess at whether compressing a
// file will meaningfully reduce its size.
type Class string

const (
	ClassCompressible   Class = "compressible"
	ClassIncompressible Class = "incompressible"
	ClassUnknown        Class = "unknown"
)

// Table maps lowercase file extensions (leading dot included) to
// compressibility classes. Extensions not listed classify as unknown.
type Table map[string]Class

// DefaultTable returns the built-in extension classification: plain
// text and bioinformatics text formats compress well, while already
// compressed containers and media formats do not.
func DefaultTable() Table {
	t := make(Table)
	for _, ext := range []string{
		".txt", ".csv", ".tsv", ".json", ".xml", ".yaml", ".yml",
		".md", ".log", ".fastq", ".fasta", ".sam",
	} {
		t[ext] = ClassCompressible
	}
	for _, ext := range []string{
		".zip", ".gz", ".bz2", ".xz", ".zst", ".7z",
		".jpg", ".jpeg", ".png", ".gif",
		".mp3", ".mp4", ".mov", ".avi",
		".pdf", ".parquet", ".feather", ".orc",
	} {
		t[ext] = ClassIncompressible
	}
	return t
}

// Classify returns the class for path's extension.
func (t Table) Classify(path string) Class {
	ext := strings.ToLower(filepath.Ext(path))
	if c, ok := t[ext]; ok {
		return c
	}
	return ClassUnknown
}

// FileSize pairs a file path with its measured size.
type FileSize struct {
	Path  string
	Bytes int64
}

// Profile stats every path and keeps existing regular files, in input
// order. Missing paths, directories, and special files are dropped
// silently. The second return value is the total size of the surviving
// files.
func Profile(paths []string) ([]FileSize, int64) {
	files := make([]FileSize, 0, len(paths))
	var total int64
	for _, p := range paths {
		info, err := os.Stat(p)
		if err != nil || !info.Mode().IsRegular() {
			continue
		}
		files = append(files, FileSize{Path: p, Bytes: info.Size()})
		total += info.Size()
	}
	return files, total
}

// TotalBytes sums the sizes of files.
func TotalBytes(files []FileSize) int64 {
	var total int64
	for _, f := range files {
		total += f.Bytes
	}
	return total
}
