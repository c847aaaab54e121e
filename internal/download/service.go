package download

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/hbomb79/Reel/internal/cookie"
	"github.com/hbomb79/Reel/internal/event"
	"github.com/hbomb79/Reel/internal/extractor"
	"github.com/hbomb79/Reel/internal/job"
	"github.com/hbomb79/Reel/pkg/logger"
	pkgsync "github.com/hbomb79/Reel/pkg/sync"
)

var (
	log = logger.Get("DownloadServ")

	ErrInvalidRequest = errors.New("request is missing a URL or format selector")
)

// downloadService is Reel's solution to asynchronous media downloads.
// It is responsible for some key aspects of Reel:
//   - Accepting download intents and turning each one in to a tracked
//     background job with a stable identity
//   - Driving the extraction engine for each job and applying its
//     progress reports to the job store
//   - Live-reporting of job transitions over the event bus
//   - Bounding each job's in-memory lifetime via per-job eviction
//     timers
type downloadService struct {
	mu     sync.Mutex
	config *Config

	store    *job.Store
	engine   extractor.Extractor
	eventBus event.EventCoordinator

	runCtx         context.Context
	workerWg       sync.WaitGroup
	evictionTimers pkgsync.TypedSyncMap[uuid.UUID, *time.Timer]
}

// New creates a new downloadService, injecting the job store and the
// extraction engine boundary. The configured output directory is
// validated; if it is missing it will be created, and if the path
// points to an existing FILE, an error is returned.
func New(config Config, store *job.Store, engine extractor.Extractor, eventBus event.EventCoordinator) (*downloadService, error) {
	if info, err := os.Stat(config.OutputPath); err == nil {
		if !info.IsDir() {
			return nil, fmt.Errorf("output path '%s' is not a directory", config.OutputPath)
		}
	} else if errors.Is(err, os.ErrNotExist) {
		if err := os.MkdirAll(config.OutputPath, os.ModeDir|os.ModePerm); err != nil {
			return nil, fmt.Errorf("output path '%s' could not be created: %w", config.OutputPath, err)
		}
	} else {
		return nil, fmt.Errorf("output path '%s' could not be accessed: %w", config.OutputPath, err)
	}

	return &downloadService{
		config:   &config,
		store:    store,
		engine:   engine,
		eventBus: eventBus,
	}, nil
}

// Run is the main entry point for this service. This method will block
// until the provided context is cancelled.
// Note: when the context is cancelled this method will not immediately
// return as it waits for the in-flight download workers to conclude
// (the workers share this context, so cancellation aborts their
// extraction calls).
func (service *downloadService) Run(ctx context.Context) error {
	service.mu.Lock()
	service.runCtx = ctx
	service.mu.Unlock()

	<-ctx.Done()

	log.Emit(logger.STOP, "Shutting down (context cancelled). Waiting for download workers to conclude.\n")
	service.cancelEvictionTimers()
	service.workerWg.Wait()

	// Workers concluding during the wait above will have scheduled
	// fresh retention timers; sweep those up too.
	service.cancelEvictionTimers()
	return nil
}

// Submit accepts a new download intent and returns the identity of the
// job created for it. The job's worker is launched on its own
// goroutine; this method never blocks on extraction progress.
// ErrInvalidRequest is returned (and no job is created) if either
// argument is empty.
func (service *downloadService) Submit(url string, formatID string) (uuid.UUID, error) {
	if strings.TrimSpace(url) == "" || strings.TrimSpace(formatID) == "" {
		return uuid.Nil, ErrInvalidRequest
	}

	newJob := job.New(url, formatID)
	if !service.store.Create(newJob) {
		return uuid.Nil, fmt.Errorf("job with ID %s already exists", newJob.ID)
	}

	service.workerWg.Add(1)
	go service.runWorker(newJob.ID, url, formatID)

	log.Emit(logger.NEW, "Accepted download of %s (format %s) as job %s\n", url, formatID, newJob.ID)
	return newJob.ID, nil
}

// Job returns a snapshot of the job with the ID provided; the boolean
// is false if the job is unknown or has already been evicted.
func (service *downloadService) Job(id uuid.UUID) (job.Job, bool) {
	return service.store.Get(id)
}

// FetchInfo performs a metadata-only query against the extraction
// engine. Credentials are staged and released around this single call,
// independently of any download workers.
func (service *downloadService) FetchInfo(ctx context.Context, url string) (*extractor.MediaInfo, error) {
	if strings.TrimSpace(url) == "" {
		return nil, ErrInvalidRequest
	}

	staged, err := cookie.Stage(service.config.CookiesEnvVar)
	if err != nil {
		log.Warnf("Failed to stage cookies for info query, proceeding without: %v\n", err)
	}
	defer staged.Release()

	return service.engine.FetchInfo(ctx, extractor.InfoRequest{
		URL:            url,
		CookieFilePath: staged.Path(),
	})
}

// scheduleEviction starts the retention timer for the job ID provided.
// On expiry the job is removed from the store if still present.
// Exactly one timer is created per worker completion; the timers are
// tracked so Run can cancel any still outstanding at shutdown.
func (service *downloadService) scheduleEviction(id uuid.UUID) {
	timer := time.AfterFunc(service.config.RetentionDuration(), func() {
		service.store.Delete(id)
		service.evictionTimers.Delete(id)
		log.Emit(logger.REMOVE, "Job %s evicted after retention window\n", id)
	})

	service.evictionTimers.Store(id, timer)
}

func (service *downloadService) cancelEvictionTimers() {
	service.evictionTimers.Range(func(id uuid.UUID, timer *time.Timer) bool {
		timer.Stop()
		service.evictionTimers.Delete(id)
		return true
	})
}

// workerContext returns the context download workers should run under.
// Workers submitted before the service is running are not cancellable.
func (service *downloadService) workerContext() context.Context {
	service.mu.Lock()
	defer service.mu.Unlock()

	if service.runCtx != nil {
		return service.runCtx
	}
	return context.Background()
}
