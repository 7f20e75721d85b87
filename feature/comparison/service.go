package comparison

import (
	"context"
	"errors"
	"fmt"
	"io"
	"path"
	"strings"
	"time"

	"twmods/core/storage"
	"twmods/feature/manifest"
	"twmods/feature/workshop"

	"github.com/minio/minio-go/v7"
	"go.uber.org/zap"
)

var (
	// ErrNoFiles is returned when a comparison request carries no manifests.
	ErrNoFiles = errors.New("no manifest files provided")
	// ErrEmptyManifest is returned when a file parses to zero entries; a
	// comparison without rows is not actionable, so the request aborts.
	ErrEmptyManifest = errors.New("manifest contains no mods")
	// ErrFileTooLarge is returned when a file exceeds the size ceiling.
	ErrFileTooLarge = errors.New("manifest exceeds the size limit")
	// ErrStorageUnavailable is returned for stored-manifest comparisons when
	// no storage backend is configured.
	ErrStorageUnavailable = errors.New("object storage is not configured")
)

// NamedFile is one manifest input: a file name and its raw content.
type NamedFile struct {
	Name    string
	Content string
}

// CompareResponse is the full outcome of a comparison request.
type CompareResponse struct {
	SessionID   string    `json:"session_id"`
	Summary     Summary   `json:"summary"`
	SummaryText string    `json:"summary_text"`
	Page        TablePage `json:"page"`
	CSVExport   string    `json:"csv_export"`
	JSONExport  string    `json:"json_export"`
}

// Service orchestrates the comparison pipeline: parse, enrich through the
// metadata cache with a batch fetch for misses, diff, render, and register a
// pagination session.
type Service struct {
	cache       *workshop.Cache
	client      *workshop.Client
	store       storage.Client
	bucket      string
	sessions    *SessionStore
	logger      *zap.Logger
	maxFileSize int64
}

// NewService creates a comparison service. store may be nil when no object
// storage is configured; stored-manifest comparisons are rejected then.
func NewService(cache *workshop.Cache, client *workshop.Client, store storage.Client, bucket string, sessions *SessionStore, logger *zap.Logger, maxFileSize int64) *Service {
	return &Service{
		cache:       cache,
		client:      client,
		store:       store,
		bucket:      bucket,
		sessions:    sessions,
		logger:      logger,
		maxFileSize: maxFileSize,
	}
}

// Sessions exposes the pagination session store for navigation handlers.
func (s *Service) Sessions() *SessionStore {
	return s.sessions
}

// Compare runs the full pipeline over already-downloaded manifest contents.
//
// A fetch failure degrades to cache-only enrichment: unresolved mods render
// as "Unknown (Workshop)" instead of failing the request.
func (s *Service) Compare(ctx context.Context, files []NamedFile, userID string) (*CompareResponse, error) {
	if len(files) == 0 {
		return nil, ErrNoFiles
	}

	fileMods := make([][]manifest.Mod, 0, len(files))
	fileNames := make([]string, 0, len(files))

	for _, file := range files {
		if int64(len(file.Content)) > s.maxFileSize {
			return nil, fmt.Errorf("file %q: %w", file.Name, ErrFileTooLarge)
		}

		parsed := manifest.Parse(file.Content)
		if len(parsed.Mods) == 0 {
			return nil, fmt.Errorf("file %q: %w", file.Name, ErrEmptyManifest)
		}

		s.logger.Info("Parsed manifest",
			zap.String("file", file.Name),
			zap.Int("mods", len(parsed.Mods)),
			zap.Int("parsed_lines", parsed.ParsedLines),
			zap.Int("error_lines", parsed.ErrorLines),
		)

		fileMods = append(fileMods, parsed.Mods)
		fileNames = append(fileNames, file.Name)
	}

	metadata := s.loadMetadata(ctx, fileMods)

	enriched := make([][]EnrichedMod, 0, len(fileMods))
	for _, mods := range fileMods {
		enriched = append(enriched, Enrich(mods, metadata))
	}

	result := Compare(fileMods, enriched)

	sessionID := s.sessions.Create(userID, result.Rows, fileNames)
	page := RenderPage(result.Rows, fileNames, 1, 0)

	jsonExport, err := GenerateJSON(result.Rows)
	if err != nil {
		return nil, fmt.Errorf("failed to build JSON export: %w", err)
	}

	return &CompareResponse{
		SessionID:   sessionID,
		Summary:     result.Summary,
		SummaryText: summaryText(result.Summary),
		Page:        page,
		CSVExport:   GenerateCSV(result.Rows, fileNames),
		JSONExport:  string(jsonExport),
	}, nil
}

// CompareStored downloads the given manifest objects from the configured
// bucket and compares them. The size ceiling is enforced from object stats
// before any download.
func (s *Service) CompareStored(ctx context.Context, objects []string, userID string) (*CompareResponse, error) {
	if s.store == nil {
		return nil, ErrStorageUnavailable
	}
	if len(objects) == 0 {
		return nil, ErrNoFiles
	}

	files := make([]NamedFile, 0, len(objects))
	for _, object := range objects {
		info, err := s.store.StatObject(ctx, s.bucket, object, minio.StatObjectOptions{})
		if err != nil {
			return nil, fmt.Errorf("failed to stat object %q: %w", object, err)
		}
		if info.Size > s.maxFileSize {
			return nil, fmt.Errorf("object %q: %w", object, ErrFileTooLarge)
		}

		reader, err := s.store.GetObject(ctx, s.bucket, object, minio.GetObjectOptions{})
		if err != nil {
			return nil, fmt.Errorf("failed to get object %q: %w", object, err)
		}

		content, err := io.ReadAll(io.LimitReader(reader, s.maxFileSize+1))
		_ = reader.Close()
		if err != nil {
			return nil, fmt.Errorf("failed to read object %q: %w", object, err)
		}
		if int64(len(content)) > s.maxFileSize {
			return nil, fmt.Errorf("object %q: %w", object, ErrFileTooLarge)
		}

		files = append(files, NamedFile{
			Name:    path.Base(object),
			Content: string(content),
		})
	}

	return s.Compare(ctx, files, userID)
}

// StoredManifest describes one manifest object available in the bucket.
type StoredManifest struct {
	Name         string    `json:"name"`
	Size         int64     `json:"size"`
	LastModified time.Time `json:"last_modified"`
}

// StoreManifest validates a manifest and uploads it to the configured bucket
// for later stored comparisons. The same ceilings apply as for direct
// comparison, and content that parses to zero mods is rejected up front.
func (s *Service) StoreManifest(ctx context.Context, name, content string) error {
	if s.store == nil {
		return ErrStorageUnavailable
	}
	if int64(len(content)) > s.maxFileSize {
		return fmt.Errorf("file %q: %w", name, ErrFileTooLarge)
	}

	parsed := manifest.Parse(content)
	if len(parsed.Mods) == 0 {
		return fmt.Errorf("file %q: %w", name, ErrEmptyManifest)
	}

	_, err := s.store.PutObject(ctx, s.bucket, name, strings.NewReader(content), int64(len(content)), minio.PutObjectOptions{
		ContentType: "text/plain; charset=utf-8",
	})
	if err != nil {
		return fmt.Errorf("failed to store manifest %q: %w", name, err)
	}

	s.logger.Info("Stored manifest",
		zap.String("object", name),
		zap.Int("mods", len(parsed.Mods)),
	)
	return nil
}

// ListManifests lists the manifest objects available for stored comparison.
func (s *Service) ListManifests(ctx context.Context) ([]StoredManifest, error) {
	if s.store == nil {
		return nil, ErrStorageUnavailable
	}

	manifests := make([]StoredManifest, 0)
	for info := range s.store.ListObjects(ctx, s.bucket, minio.ListObjectsOptions{Recursive: true}) {
		if info.Err != nil {
			return nil, fmt.Errorf("failed to list manifests: %w", info.Err)
		}
		if !strings.HasSuffix(strings.ToLower(info.Key), manifestExtension) {
			continue
		}
		manifests = append(manifests, StoredManifest{
			Name:         info.Key,
			Size:         info.Size,
			LastModified: info.LastModified,
		})
	}

	return manifests, nil
}

// loadMetadata merges cache hits with a batch fetch for misses and writes
// fetched details back through the cache. Every failure on this path is
// degraded, never fatal.
func (s *Service) loadMetadata(ctx context.Context, fileMods [][]manifest.Mod) map[string]workshop.CacheRecord {
	seen := make(map[string]struct{})
	ids := make([]string, 0)
	for _, mods := range fileMods {
		for _, mod := range mods {
			if mod.WorkshopID == "" {
				continue
			}
			if _, ok := seen[mod.WorkshopID]; ok {
				continue
			}
			seen[mod.WorkshopID] = struct{}{}
			ids = append(ids, mod.WorkshopID)
		}
	}

	metadata, err := s.cache.GetBatch(ids)
	if err != nil {
		s.logger.Warn("Cache batch read failed, continuing without cached metadata", zap.Error(err))
		metadata = make(map[string]workshop.CacheRecord, len(ids))
	}

	uncached := make([]string, 0, len(ids))
	for _, id := range ids {
		if _, ok := metadata[id]; !ok {
			uncached = append(uncached, id)
		}
	}
	if len(uncached) == 0 {
		return metadata
	}

	fetched, err := s.client.FetchDetails(ctx, uncached)
	if err != nil {
		s.logger.Warn("Workshop fetch failed, continuing with cached metadata only",
			zap.Int("unresolved", len(uncached)),
			zap.Error(err),
		)
		return metadata
	}

	if err := s.cache.SetBatch(fetched); err != nil {
		s.logger.Warn("Cache batch write failed", zap.Error(err))
	}

	fetchedAt := time.Now().Unix()
	for id, details := range fetched {
		metadata[id] = workshop.NewRecord(id, details, fetchedAt)
	}

	s.logger.Info("Workshop metadata loaded",
		zap.Int("requested", len(ids)),
		zap.Int("cache_hits", len(ids)-len(uncached)),
		zap.Int("fetched", len(fetched)),
	)

	return metadata
}

// summaryText renders the fixed summary block shown alongside page one.
func summaryText(sum Summary) string {
	var sb strings.Builder
	sb.WriteString("📊 Comparison Summary\n")
	fmt.Fprintf(&sb, "• Files scanned: %d\n", sum.FilesScanned)
	fmt.Fprintf(&sb, "• Total unique mods: %d", sum.UnionCount)

	if sum.FilesScanned > 1 {
		fmt.Fprintf(&sb, "\n• Shared mods: %d", sum.SharedCount)
		sb.WriteString("\n• Unique per file: ")
		for i, count := range sum.UniquePerFile {
			if i > 0 {
				sb.WriteString(", ")
			}
			fmt.Fprintf(&sb, "File %d: %d", i+1, count)
		}
	}

	return sb.String()
}
