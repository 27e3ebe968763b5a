package badger

import (
	"context"
	"fmt"

	"github.com/ternarybob/arbor"
	"github.com/ternarybob/citare/internal/interfaces"
	"github.com/ternarybob/citare/internal/models"
	"github.com/timshannon/badgerhold/v4"
)

// AnalysisStorage implements the AnalysisStorage interface for Badger.
// Records are append-only: SaveAnalysis refuses to overwrite an existing ID.
type AnalysisStorage struct {
	db     *BadgerDB
	logger arbor.ILogger
}

// NewAnalysisStorage creates a new AnalysisStorage instance
func NewAnalysisStorage(db *BadgerDB, logger arbor.ILogger) interfaces.AnalysisStorage {
	return &AnalysisStorage{
		db:     db,
		logger: logger,
	}
}

func (s *AnalysisStorage) SaveAnalysis(ctx context.Context, analysis *models.PageAnalysis) error {
	if analysis.ID == "" {
		return fmt.Errorf("analysis ID is required")
	}
	if err := s.db.Store().Insert(analysis.ID, analysis); err != nil {
		if err == badgerhold.ErrKeyExists {
			return fmt.Errorf("analysis %s already exists (records are append-only)", analysis.ID)
		}
		return fmt.Errorf("failed to save analysis: %w", err)
	}
	return nil
}

func (s *AnalysisStorage) GetAnalysis(ctx context.Context, id string) (*models.PageAnalysis, error) {
	var analysis models.PageAnalysis
	if err := s.db.Store().Get(id, &analysis); err != nil {
		if err == badgerhold.ErrNotFound {
			return nil, fmt.Errorf("analysis not found: %s", id)
		}
		return nil, fmt.Errorf("failed to get analysis: %w", err)
	}
	return &analysis, nil
}

func (s *AnalysisStorage) ListAnalysesByJob(ctx context.Context, jobID string) ([]*models.PageAnalysis, error) {
	var analyses []models.PageAnalysis
	if err := s.db.Store().Find(&analyses, badgerhold.Where("JobID").Eq(jobID).SortBy("CreatedAt")); err != nil {
		return nil, fmt.Errorf("failed to list analyses: %w", err)
	}

	result := make([]*models.PageAnalysis, len(analyses))
	for i := range analyses {
		result[i] = &analyses[i]
	}
	return result, nil
}

func (s *AnalysisStorage) CountAnalyses(ctx context.Context) (int, error) {
	count, err := s.db.Store().Count(&models.PageAnalysis{}, nil)
	if err != nil {
		return 0, err
	}
	return int(count), nil
}
