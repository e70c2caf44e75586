package services

import (
	"context"
	"io"

	"arkive/internal/domain/models"
)

// TranslationService translates document titles
type TranslationService interface {
	// SupportedLanguages lists the accepted target languages
	SupportedLanguages() []string

	// Translate translates title into targetLanguage
	Translate(ctx context.Context, title, targetLanguage string) (*models.Translation, error)

	// ApplyTranslation stores title as the document's new title
	ApplyTranslation(ctx context.Context, docID int64, title string) (*models.Document, error)
}

// PreviewService renders document content by file type
type PreviewService interface {
	// Preview never fails; errors are carried in the result
	Preview(ctx context.Context, doc *models.Document) *models.Preview

	// Download streams the document's file into w
	Download(ctx context.Context, doc *models.Document, w io.Writer) (int64, error)
}
