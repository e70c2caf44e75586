package repositories

import (
	"context"
	"io"

	"arkive/internal/domain/models"
)

// StorageRepository reads stored file content through the gateway
type StorageRepository interface {
	// Download streams the named file into w
	Download(ctx context.Context, fileName string, w io.Writer) (int64, error)

	// URL returns the direct download URL for fileName
	URL(fileName string) string
}

// TranslationRepository talks to the translation service
type TranslationRepository interface {
	// Translate translates title into targetLanguage
	Translate(ctx context.Context, title, targetLanguage string) (*models.Translation, error)
}
