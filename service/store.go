package service

import (
	"log/slog"
	"sort"
	"sync"
	"time"

	"github.com/NewtonYuan/BYS.FE/config"
	"github.com/NewtonYuan/BYS.FE/model"
)

// AnalysisStore is an in-memory store for analysis records
// In production, this should be replaced with a database
type AnalysisStore struct {
	analyses    map[string]*model.Analysis
	mu          sync.RWMutex
	maxAnalyses int // Maximum analyses to keep, 0 = unlimited
}

var (
	globalStore *AnalysisStore
	storeOnce   sync.Once
)

// InitAnalysisStore initializes the global analysis store with configuration
func InitAnalysisStore(cfg *config.StoreConfig) {
	storeOnce.Do(func() {
		maxAnalyses := cfg.MaxAnalyses
		if maxAnalyses < 0 {
			maxAnalyses = 0
		}
		globalStore = &AnalysisStore{
			analyses:    make(map[string]*model.Analysis),
			maxAnalyses: maxAnalyses,
		}
		slog.Info("analysis store initialized", "max_analyses", maxAnalyses)
	})
}

// GetAnalysisStore returns the global analysis store
func GetAnalysisStore() *AnalysisStore {
	if globalStore == nil {
		// Fallback initialization with default settings
		globalStore = &AnalysisStore{
			analyses:    make(map[string]*model.Analysis),
			maxAnalyses: 100, // Default: keep 100 analyses
		}
	}
	return globalStore
}

func (s *AnalysisStore) Save(analysis *model.Analysis) {
	s.mu.Lock()
	defer s.mu.Unlock()

	analysis.UpdatedAt = time.Now()
	s.analyses[analysis.ID] = analysis

	// Cleanup if exceeds max
	s.cleanupIfNeeded()
}

func (s *AnalysisStore) Get(id string) *model.Analysis {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.analyses[id]
}

func (s *AnalysisStore) GetByOwner(owner string) []*model.Analysis {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var result []*model.Analysis
	for _, a := range s.analyses {
		if a.Owner == owner {
			result = append(result, a)
		}
	}
	return result
}

func (s *AnalysisStore) Delete(id string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.analyses, id)
}

func (s *AnalysisStore) UpdateStatus(id, status string, errMsg string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if a, ok := s.analyses[id]; ok {
		a.Status = status
		a.ErrorMsg = errMsg
		a.UpdatedAt = time.Now()
	}
}

// SetResult attaches the normalized report and score and marks the
// analysis completed
func (s *AnalysisStore) SetResult(id string, rep *model.LeaseReport, score int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if a, ok := s.analyses[id]; ok {
		a.Report = rep
		a.Score = score
		a.Status = model.StatusCompleted
		a.UpdatedAt = time.Now()
	}
}

// cleanupIfNeeded removes oldest analyses if store exceeds maxAnalyses
// Must be called with lock held
func (s *AnalysisStore) cleanupIfNeeded() {
	if s.maxAnalyses <= 0 {
		return // Unlimited
	}

	if len(s.analyses) <= s.maxAnalyses {
		return
	}

	// Sort analyses by creation time
	analyses := make([]*model.Analysis, 0, len(s.analyses))
	for _, a := range s.analyses {
		analyses = append(analyses, a)
	}
	sort.Slice(analyses, func(i, j int) bool {
		return analyses[i].CreatedAt.Before(analyses[j].CreatedAt)
	})

	// Remove oldest analyses
	removeCount := len(analyses) - s.maxAnalyses
	for i := 0; i < removeCount; i++ {
		slog.Info("auto-cleaning old analysis",
			"analysis_id", analyses[i].ID,
			"created_at", analyses[i].CreatedAt,
		)
		delete(s.analyses, analyses[i].ID)
	}
}

// Count returns the number of analyses in the store
func (s *AnalysisStore) Count() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.analyses)
}
