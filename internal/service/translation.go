package service

import (
	"context"
	"log/slog"
	"strings"

	validation "github.com/go-ozzo/ozzo-validation/v4"

	"arkive/internal/capabilities"
	"arkive/internal/config"
	"arkive/internal/domain"
	"arkive/internal/domain/models"
	"arkive/internal/domain/repositories"
	"arkive/internal/domain/services"
)

type translationService struct {
	translationRepo repositories.TranslationRepository
	docService      services.DocumentService
	view            *capabilities.ViewCapabilities
	logger          *slog.Logger
}

// NewTranslationService creates a new translation service
func NewTranslationService(
	translationRepo repositories.TranslationRepository,
	docService services.DocumentService,
	registry *capabilities.Registry,
	logger *slog.Logger,
) services.TranslationService {
	return &translationService{
		translationRepo: translationRepo,
		docService:      docService,
		view:            registry.MustView(capabilities.ViewDocuments),
		logger:          logger,
	}
}

// SupportedLanguages lists the accepted target languages
func (s *translationService) SupportedLanguages() []string {
	return append([]string(nil), models.SupportedLanguages...)
}

// Translate translates title into targetLanguage. The language name is
// matched case-insensitively against the supported list.
func (s *translationService) Translate(ctx context.Context, title, targetLanguage string) (*models.Translation, error) {
	if !s.view.Translation {
		return nil, domain.NewValidationError("translation is not available in the %s view", s.view.DisplayName)
	}

	title = strings.TrimSpace(title)
	language, ok := canonicalLanguage(targetLanguage)
	if !ok {
		return nil, domain.NewValidationError("unsupported language %q (supported: %s)",
			strings.TrimSpace(targetLanguage), strings.Join(models.SupportedLanguages, ", "))
	}
	err := validation.Validate(title,
		validation.Required.Error("title is required"),
		validation.RuneLength(1, config.MaxDocumentTitleLength),
	)
	if err != nil {
		return nil, &domain.ValidationError{Message: err.Error()}
	}

	tr, err := s.translationRepo.Translate(ctx, title, language)
	if err != nil {
		s.logger.Error("translation failed", "target_language", language, "error", err)
		return nil, err
	}

	s.logger.Debug("title translated", "from", tr.OriginalLanguage, "to", language)
	return tr, nil
}

// ApplyTranslation stores title as the document's new title
func (s *translationService) ApplyTranslation(ctx context.Context, docID int64, title string) (*models.Document, error) {
	return s.docService.UpdateDocument(ctx, docID, &models.UpdateDocumentRequest{Title: &title})
}

func canonicalLanguage(name string) (string, bool) {
	name = strings.TrimSpace(name)
	for _, l := range models.SupportedLanguages {
		if strings.EqualFold(l, name) {
			return l, true
		}
	}
	return "", false
}
