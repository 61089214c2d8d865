package history

import (
	"context"
	"fmt"
	"time"

	"github.com/klauspost/compress/zstd"

	"stockhouse/internal/core/apperror"
	"stockhouse/internal/core/id"
	"stockhouse/internal/domain/documents"
)

// Service appends and reads document history. Like the stock service it
// participates in the caller's transaction and never opens its own.
type Service struct {
	repo Repository

	encoder *zstd.Encoder
	decoder *zstd.Decoder

	// snapshots larger than this are stored compressed
	compressThreshold int
}

// NewService creates a history service.
func NewService(repo Repository) (*Service, error) {
	encoder, err := zstd.NewWriter(nil, zstd.WithEncoderLevel(zstd.SpeedDefault))
	if err != nil {
		return nil, fmt.Errorf("create zstd encoder: %w", err)
	}

	decoder, err := zstd.NewReader(nil)
	if err != nil {
		return nil, fmt.Errorf("create zstd decoder: %w", err)
	}

	return &Service{
		repo:              repo,
		encoder:           encoder,
		decoder:           decoder,
		compressThreshold: 10 * 1024, // 10KB
	}, nil
}

// Record appends one history entry. Required-field validation only.
func (s *Service) Record(ctx context.Context, in HistoryInput) (*HistoryEntry, error) {
	if !in.DocumentKind.Valid() {
		return nil, apperror.NewValidation("document kind must be entry or exit").
			WithDetail("kind", string(in.DocumentKind))
	}
	if id.IsNil(in.DocumentID) {
		return nil, apperror.NewValidation("document id is required")
	}
	if id.IsNil(in.UserID) {
		return nil, apperror.NewValidation("user id is required")
	}
	if in.Field == "" {
		return nil, apperror.NewValidation("field is required")
	}

	e := &HistoryEntry{
		ID:              id.New(),
		DocumentKind:    in.DocumentKind,
		DocumentID:      in.DocumentID,
		UserID:          in.UserID,
		Field:           in.Field,
		OldValue:        in.OldValue,
		NewValue:        in.NewValue,
		Reason:          in.Reason,
		CompressionAlgo: CompressionNone,
		CreatedAt:       time.Now().UTC(),
	}

	if len(in.Snapshot) > 0 {
		if len(in.Snapshot) > s.compressThreshold {
			e.SnapshotZstd = s.encoder.EncodeAll(in.Snapshot, nil)
			e.CompressionAlgo = CompressionZstd
		} else {
			e.Snapshot = in.Snapshot
		}
	}

	if err := s.repo.Append(ctx, e); err != nil {
		return nil, err
	}
	return e, nil
}

// History returns all entries for a document, newest first. Snapshots come
// back decompressed.
func (s *Service) History(ctx context.Context, kind documents.Kind, documentID id.ID) ([]*HistoryEntry, error) {
	if !kind.Valid() {
		return nil, apperror.NewValidation("document kind must be entry or exit").
			WithDetail("kind", string(kind))
	}

	entries, err := s.repo.ListByDocument(ctx, kind, documentID)
	if err != nil {
		return nil, err
	}

	for _, e := range entries {
		if e.CompressionAlgo == CompressionZstd && len(e.SnapshotZstd) > 0 {
			decompressed, err := s.decoder.DecodeAll(e.SnapshotZstd, nil)
			if err != nil {
				return nil, fmt.Errorf("decompress snapshot %s: %w", e.ID, err)
			}
			e.Snapshot = decompressed
			e.SnapshotZstd = nil
			e.CompressionAlgo = CompressionNone
		}
	}

	return entries, nil
}
