package service

import (
	"bytes"
	"context"
	"encoding/csv"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"unicode/utf8"

	"github.com/dustin/go-humanize"

	"arkive/internal/capabilities"
	"arkive/internal/config"
	"arkive/internal/domain/models"
	"arkive/internal/domain/repositories"
	"arkive/internal/domain/services"
)

var errPreviewTooLarge = fmt.Errorf("file is larger than %s", humanize.IBytes(config.MaxPreviewSize))

type previewService struct {
	storageRepo repositories.StorageRepository
	registry    *capabilities.Registry
	maxSize     int64
	logger      *slog.Logger
}

// NewPreviewService creates a new preview service
func NewPreviewService(
	storageRepo repositories.StorageRepository,
	registry *capabilities.Registry,
	logger *slog.Logger,
) services.PreviewService {
	return &previewService{
		storageRepo: storageRepo,
		registry:    registry,
		maxSize:     config.MaxPreviewSize,
		logger:      logger,
	}
}

// Preview renders doc by its file extension. Viewers that are not inline
// only get the fallback URL. Failures are reported in Preview.Err.
func (s *previewService) Preview(ctx context.Context, doc *models.Document) *models.Preview {
	name := doc.FileName()
	rule := s.registry.ViewerFor(doc.Extension())
	p := &models.Preview{
		Document:    *doc,
		Viewer:      string(rule.Viewer),
		FallbackURL: s.storageRepo.URL(name),
	}

	if rule.Viewer == capabilities.ViewerUnsupported {
		p.Err = fmt.Errorf("preview is not available for .%s files", rule.Extension)
		return p
	}
	if !rule.Inline {
		return p
	}

	content, err := s.fetch(ctx, name)
	if err != nil {
		s.logger.Warn("preview fetch failed", "document_id", doc.ID, "file", name, "error", err)
		p.Err = err
		return p
	}

	switch rule.Viewer {
	case capabilities.ViewerJSON:
		var out bytes.Buffer
		if err := json.Indent(&out, content, "", "  "); err != nil {
			p.Err = fmt.Errorf("invalid JSON: %w", err)
			return p
		}
		p.Text = out.String()
	case capabilities.ViewerTable:
		r := csv.NewReader(bytes.NewReader(content))
		r.FieldsPerRecord = -1
		r.LazyQuotes = true
		rows, err := r.ReadAll()
		if err != nil {
			p.Err = fmt.Errorf("invalid CSV: %w", err)
			return p
		}
		p.Rows = rows
	default:
		if !utf8.Valid(content) {
			p.Err = errors.New("file is not valid UTF-8 text")
			return p
		}
		p.Text = string(content)
	}
	return p
}

// fetch downloads at most maxSize bytes of name
func (s *previewService) fetch(ctx context.Context, name string) ([]byte, error) {
	buf := &capWriter{limit: s.maxSize}
	if _, err := s.storageRepo.Download(ctx, name, buf); err != nil {
		if errors.Is(err, errPreviewTooLarge) {
			return nil, errPreviewTooLarge
		}
		return nil, err
	}
	return buf.buf.Bytes(), nil
}

// Download streams the document's file into w
func (s *previewService) Download(ctx context.Context, doc *models.Document, w io.Writer) (int64, error) {
	name := doc.FileName()
	n, err := s.storageRepo.Download(ctx, name, w)
	if err != nil {
		s.logger.Error("download failed", "document_id", doc.ID, "file", name, "error", err)
		return n, err
	}
	s.logger.Info("document downloaded", "document_id", doc.ID, "bytes", n)
	return n, nil
}

// capWriter buffers up to limit bytes and fails past it. The buffer is not
// embedded so io.Copy cannot bypass Write through ReadFrom.
type capWriter struct {
	buf   bytes.Buffer
	limit int64
}

func (w *capWriter) Write(p []byte) (int, error) {
	if int64(w.buf.Len()+len(p)) > w.limit {
		return 0, errPreviewTooLarge
	}
	return w.buf.Write(p)
}
