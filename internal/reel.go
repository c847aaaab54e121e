package internal

import (
	"context"
	"fmt"
	"sync"

	"github.com/google/uuid"
	"github.com/hbomb79/Reel/internal/api"
	"github.com/hbomb79/Reel/internal/download"
	"github.com/hbomb79/Reel/internal/event"
	"github.com/hbomb79/Reel/internal/extractor"
	"github.com/hbomb79/Reel/internal/job"
	"github.com/hbomb79/Reel/pkg/logger"
)

var log = logger.Get("Core")

type (
	RunnableService interface {
		Run(context.Context) error
	}

	DownloadService interface {
		RunnableService
		Submit(url string, formatID string) (uuid.UUID, error)
		Job(id uuid.UUID) (job.Job, bool)
		FetchInfo(ctx context.Context, url string) (*extractor.MediaInfo, error)
	}

	RestGateway interface {
		RunnableService
	}
)

// Reel represents the top-level object for the server, and is
// responsible for initialising the job store, the extraction engine
// boundary, the services and the event handling between them.
type reelImpl struct {
	eventBus event.EventCoordinator
	config   ReelConfig

	jobStore *job.Store

	downloadService DownloadService
	restGateway     RestGateway
}

func New(config ReelConfig) *reelImpl {
	log.Emit(logger.DEBUG, "Bootstrapping Reel services using config: %#v\n", config)
	reel := &reelImpl{
		eventBus: event.New(),
		config:   config,
		jobStore: job.NewStore(),
	}

	engine := extractor.NewYtDlp(config.YtDlpBinPath)
	if serv, err := download.New(config.Download, reel.jobStore, engine, reel.eventBus); err == nil {
		reel.downloadService = serv
	} else {
		panic(fmt.Sprintf("failed to construct download service due to error: %s", err.Error()))
	}

	reel.restGateway = api.NewRestGateway(&config.Rest, reel.downloadService, reel.eventBus)

	return reel
}

// Run will start all of Reel by bringing up all services.
//
// This function will not return until Reel is stopped.
// To stop Reel, the provided context must be cancelled. Errors from
// which Reel cannot recover will also cause Reel to stop.
func (reel *reelImpl) Run(parent context.Context) error {
	ctx, cancel := context.WithCancel(parent)
	defer cancel()

	crashHandler := func(label string, err error) {
		log.Emit(logger.FATAL, "Service crash (%s)! %s\n", label, err.Error())
		cancel()
	}

	wg := &sync.WaitGroup{}
	reel.spawnAsyncService(ctx, wg, reel.downloadService, "download-service", crashHandler)
	reel.spawnAsyncService(ctx, wg, reel.restGateway, "rest-gateway", crashHandler)
	log.Emit(logger.SUCCESS, "Reel services spawned!\n")

	wg.Wait()
	return nil
}

// spawnAsyncService will run the provided function/service as it's own
// go-routine, ensuring that the Reel service waitgroup is updated correctly
func (reel *reelImpl) spawnAsyncService(context context.Context, wg *sync.WaitGroup, service RunnableService, serviceLabel string, crashHandler func(string, error)) {
	log.Emit(logger.NEW, "Spawning %s\n", serviceLabel)
	wg.Add(1)

	go func(wg *sync.WaitGroup, label string, crash func(string, error)) {
		defer func() {
			if r := recover(); r != nil {
				crash(label, fmt.Errorf("panic %v", r))
			}
		}()

		defer wg.Done()
		if err := service.Run(context); err != nil {
			crash(label, err)
		}
	}(wg, serviceLabel, crashHandler)
}
