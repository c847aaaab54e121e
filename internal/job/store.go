package job

import (
	stdsync "sync"

	"github.com/google/uuid"
	"github.com/hbomb79/Reel/pkg/sync"
)

// managedJob pairs a job with the lock that guards it. Locking is
// per-record so that a mutation against one job can never stall a
// reader or writer of another.
type managedJob struct {
	mu  stdsync.RWMutex
	job Job
}

// Store is the process-wide mapping from job ID to job. It owns all
// synchronisation for the records it holds; callers interact with it
// only through value snapshots and atomic mutate closures, and so can
// never observe (or cause) a partially written record.
type Store struct {
	jobs sync.TypedSyncMap[uuid.UUID, *managedJob]
}

func NewStore() *Store {
	return &Store{}
}

// Create inserts the job provided under its own ID. False is returned
// if a job with this ID is already present, in which case the store is
// left unchanged.
func (store *Store) Create(j Job) bool {
	_, loaded := store.jobs.LoadOrStore(j.ID, &managedJob{job: j})
	return !loaded
}

// Get returns a snapshot of the job with the ID provided. The boolean
// is false if no such job exists; an unknown or already-evicted ID is
// an expected outcome, not an error.
func (store *Store) Get(id uuid.UUID) (Job, bool) {
	managed, ok := store.jobs.Load(id)
	if !ok {
		return Job{}, false
	}

	managed.mu.RLock()
	defer managed.mu.RUnlock()
	return managed.job, true
}

// Mutate applies fn to the job with the ID provided as a single atomic
// read-modify-write. False is returned (and fn is not called) if the
// job does not exist.
func (store *Store) Mutate(id uuid.UUID, fn func(*Job)) bool {
	managed, ok := store.jobs.Load(id)
	if !ok {
		return false
	}

	managed.mu.Lock()
	defer managed.mu.Unlock()
	fn(&managed.job)
	return true
}

// Delete removes the job with the ID provided. Deleting an unknown ID
// is a no-op.
func (store *Store) Delete(id uuid.UUID) {
	store.jobs.Delete(id)
}

// Size returns the number of jobs currently held.
func (store *Store) Size() int {
	count := 0
	store.jobs.Range(func(uuid.UUID, *managedJob) bool {
		count++
		return true
	})

	return count
}
