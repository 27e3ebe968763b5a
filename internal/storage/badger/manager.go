package badger

import (
	"context"

	badgerdb "github.com/dgraph-io/badger/v4"
	"github.com/ternarybob/arbor"
	"github.com/ternarybob/citare/internal/common"
	"github.com/ternarybob/citare/internal/interfaces"
)

// Manager bundles the Badger-backed storage implementations
type Manager struct {
	db              *BadgerDB
	jobStorage      interfaces.JobStorage
	analysisStorage interfaces.AnalysisStorage
	logger          arbor.ILogger
}

// NewManager opens the database and wires up the storage implementations
func NewManager(logger arbor.ILogger, config *common.BadgerConfig) (*Manager, error) {
	db, err := NewBadgerDB(logger, config)
	if err != nil {
		return nil, err
	}

	return &Manager{
		db:              db,
		jobStorage:      NewJobStorage(db, logger),
		analysisStorage: NewAnalysisStorage(db, logger),
		logger:          logger,
	}, nil
}

func (m *Manager) JobStorage() interfaces.JobStorage {
	return m.jobStorage
}

func (m *Manager) AnalysisStorage() interfaces.AnalysisStorage {
	return m.analysisStorage
}

// Maintenance runs Badger value-log garbage collection. ErrNoRewrite just
// means there was nothing to collect.
func (m *Manager) Maintenance(ctx context.Context) error {
	err := m.db.Store().Badger().RunValueLogGC(0.5)
	if err != nil && err != badgerdb.ErrNoRewrite {
		return err
	}
	return nil
}

func (m *Manager) Close() error {
	return m.db.Close()
}
