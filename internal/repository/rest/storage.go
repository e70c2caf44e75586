package rest

import (
	"context"
	"fmt"
	"io"
	"strings"

	"arkive/internal/domain/models"
	"arkive/internal/domain/repositories"
	"arkive/internal/httputil"
)

// RESTStorageRepository implements the StorageRepository interface
type RESTStorageRepository struct {
	client *httputil.Client
}

// NewStorageRepository creates a storage repository on the gateway client
func NewStorageRepository(config *RepositoryConfig) repositories.StorageRepository {
	return &RESTStorageRepository{client: config.Gateway}
}

// Download streams the named file into w
func (r *RESTStorageRepository) Download(ctx context.Context, fileName string, w io.Writer) (int64, error) {
	n, err := r.client.Download(ctx, namePath("storage/download", fileName), w)
	if err != nil {
		return n, fmt.Errorf("download %s: %w", fileName, err)
	}
	return n, nil
}

// URL returns the direct download URL for fileName
func (r *RESTStorageRepository) URL(fileName string) string {
	return r.client.URL(namePath("storage/download", fileName), nil)
}

// RESTTranslationRepository implements the TranslationRepository interface
type RESTTranslationRepository struct {
	client *httputil.Client
}

// NewTranslationRepository creates a translation repository
func NewTranslationRepository(config *RepositoryConfig) repositories.TranslationRepository {
	return &RESTTranslationRepository{client: config.Translation}
}

type translateRequest struct {
	Title          string `json:"title"`
	TargetLanguage string `json:"target_language"`
}

type translateResponse struct {
	OriginalLanguage string `json:"original_language"`
	TranslatedTitle  string `json:"translated_title"`
}

// Translate translates title into targetLanguage.
// The trailing slash is part of the route.
func (r *RESTTranslationRepository) Translate(ctx context.Context, title, targetLanguage string) (*models.Translation, error) {
	var resp translateResponse
	req := translateRequest{Title: title, TargetLanguage: targetLanguage}
	if err := r.client.Post(ctx, "translation/translate/", req, &resp); err != nil {
		return nil, fmt.Errorf("translate: %w", err)
	}

	return &models.Translation{
		OriginalTitle:    title,
		TranslatedTitle:  strings.TrimSpace(resp.TranslatedTitle),
		OriginalLanguage: resp.OriginalLanguage,
		TargetLanguage:   targetLanguage,
	}, nil
}
