package extraction_engine

import (
	"sync"

	"github.com/markdave123-py/docfields/internal/models"
)

// JobStore is the process-wide map from job id to job state. Entries are never evicted.
type JobStore struct {
	jobs sync.Map // string -> models.ExtractionJob
}

func NewJobStore() *JobStore {
	return &JobStore{}
}

// Put inserts or overwrites the job stored under id.
func (s *JobStore) Put(id string, job models.ExtractionJob) {
	job = job.Clone()
	job.ID = id
	s.jobs.Store(id, job)
}

// Get returns a copy of the job stored under id.
func (s *JobStore) Get(id string) (models.ExtractionJob, bool) {
	v, ok := s.jobs.Load(id)
	if !ok {
		return models.ExtractionJob{}, false
	}
	return v.(models.ExtractionJob).Clone(), true
}
