package server

import (
	"os"

	"github.com/abdelghafour1223/tiktok-downloder/internal/config"

	"github.com/pkg/errors"
)

// PrepareFilesystem creates the persistent downloads root and the ephemeral
// temp root for session directories
func PrepareFilesystem(cfg *config.Config) error {
	dirs := []string{cfg.DownloadDir, cfg.TempDir}
	for _, dir := range dirs {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return errors.Wrapf(err, "creating %s", dir)
		}
	}
	return nil
}
