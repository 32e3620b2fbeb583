package export

import (
	"archive/zip"
	"fmt"
	"io"
	"strings"
	"time"
)

// ZipEntry names one file to be placed into an archive. Open is called
// lazily when the entry is written.
type ZipEntry struct {
	Name string
	Open func() (io.ReadCloser, error)
}

// ZipBundler streams files into a single archive. Entries are stored
// uncompressed: bundled documents are typically PDFs and images that do
// not shrink under deflate, and store keeps download latency low.
type ZipBundler struct{}

// NewZipBundler constructs a bundler.
func NewZipBundler() *ZipBundler {
	return &ZipBundler{}
}

// Write streams all entries into w as a zip archive.
func (b *ZipBundler) Write(w io.Writer, entries []ZipEntry) error {
	archive := zip.NewWriter(w)
	for _, entry := range entries {
		header := &zip.FileHeader{
			Name:     entry.Name,
			Method:   zip.Store,
			Modified: time.Now().UTC(),
		}
		dst, err := archive.CreateHeader(header)
		if err != nil {
			return fmt.Errorf("create zip entry %q: %w", entry.Name, err)
		}
		src, err := entry.Open()
		if err != nil {
			return fmt.Errorf("open zip entry %q: %w", entry.Name, err)
		}
		if _, err := io.Copy(dst, src); err != nil {
			src.Close() //nolint:errcheck
			return fmt.Errorf("write zip entry %q: %w", entry.Name, err)
		}
		if err := src.Close(); err != nil {
			return fmt.Errorf("close zip entry %q: %w", entry.Name, err)
		}
	}
	if err := archive.Close(); err != nil {
		return fmt.Errorf("finalize zip: %w", err)
	}
	return nil
}

// ArchiveName normalises a requested archive name to end in .zip, falling
// back to a timestamp-derived default when the request is blank.
func ArchiveName(requested string, now time.Time) string {
	name := strings.TrimSpace(requested)
	if name == "" {
		return fmt.Sprintf("documents_%s.zip", now.UTC().Format("20060102150405"))
	}
	if !strings.HasSuffix(strings.ToLower(name), ".zip") {
		name += ".zip"
	}
	return name
}
