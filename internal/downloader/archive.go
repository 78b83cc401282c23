package downloader

import (
	"archive/zip"
	"io"
	"os"
	"path/filepath"

	"github.com/abdelghafour1223/tiktok-downloder/internal/models"

	"github.com/pkg/errors"
)

// buildZipArchive packages the given files into one deflate-compressed ZIP
// at destPath, each entry named by its base filename. Any entry failure
// aborts the build and removes the partial archive; a half-written ZIP is
// never valid output. The inputs are left alone, the caller deletes them.
// The reported size is read back from the filesystem after the writer is
// closed, not tallied in memory.
func buildZipArchive(files []string, destPath string) (int64, error) {
	out, err := os.Create(destPath)
	if err != nil {
		return 0, errors.Wrap(models.ErrArchiveBuild, err.Error())
	}

	fail := func(err error) (int64, error) {
		out.Close()
		os.Remove(destPath)
		return 0, errors.Wrap(models.ErrArchiveBuild, err.Error())
	}

	zw := zip.NewWriter(out)
	for _, file := range files {
		entry, err := zw.CreateHeader(&zip.FileHeader{
			Name:   filepath.Base(file),
			Method: zip.Deflate,
		})
		if err != nil {
			return fail(err)
		}

		src, err := os.Open(file)
		if err != nil {
			return fail(err)
		}
		_, err = io.Copy(entry, src)
		src.Close()
		if err != nil {
			return fail(err)
		}
	}

	if err := zw.Close(); err != nil {
		return fail(err)
	}
	if err := out.Close(); err != nil {
		return fail(err)
	}

	info, err := os.Stat(destPath)
	if err != nil {
		return 0, errors.Wrap(models.ErrArchiveBuild, err.Error())
	}
	return info.Size(), nil
}
