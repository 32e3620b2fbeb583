package export

import (
	"archive/zip"
	"bytes"
	"io"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestZipBundlerWritesStoredEntries(t *testing.T) {
	bundler := NewZipBundler()

	var buf bytes.Buffer
	err := bundler.Write(&buf, []ZipEntry{
		{Name: "a.txt", Open: func() (io.ReadCloser, error) {
			return io.NopCloser(strings.NewReader("alpha")), nil
		}},
		{Name: "b.txt", Open: func() (io.ReadCloser, error) {
			return io.NopCloser(strings.NewReader("beta")), nil
		}},
	})
	require.NoError(t, err)

	reader, err := zip.NewReader(bytes.NewReader(buf.Bytes()), int64(buf.Len()))
	require.NoError(t, err)
	require.Len(t, reader.File, 2)
	require.Equal(t, "a.txt", reader.File[0].Name)
	require.Equal(t, uint16(zip.Store), reader.File[0].Method)

	rc, err := reader.File[1].Open()
	require.NoError(t, err)
	defer rc.Close() //nolint:errcheck
	data, err := io.ReadAll(rc)
	require.NoError(t, err)
	require.Equal(t, "beta", string(data))
}

func TestArchiveName(t *testing.T) {
	now := time.Date(2024, 3, 5, 10, 20, 30, 0, time.UTC)

	require.Equal(t, "documents_20240305102030.zip", ArchiveName("", now))
	require.Equal(t, "documents_20240305102030.zip", ArchiveName("   ", now))
	require.Equal(t, "bundle.zip", ArchiveName("bundle", now))
	require.Equal(t, "Bundle.ZIP", ArchiveName("Bundle.ZIP", now))
}
