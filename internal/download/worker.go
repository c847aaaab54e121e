package download

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
	"github.com/hbomb79/Reel/internal/cookie"
	"github.com/hbomb79/Reel/internal/event"
	"github.com/hbomb79/Reel/internal/extractor"
	"github.com/hbomb79/Reel/internal/job"
	"github.com/hbomb79/Reel/pkg/logger"
)

// runWorker drives one extraction call to completion (or failure) and
// applies the outcome to the job store. It is the single writer for
// its job record; the state machine it walks is
// initializing -> downloading -> processing -> complete, with any
// failure instead landing on the terminal error state.
//
// Regardless of outcome, exactly one eviction timer is scheduled and
// any staged credentials are released before this function returns.
func (service *downloadService) runWorker(id uuid.UUID, url string, formatID string) {
	defer service.workerWg.Done()
	defer service.scheduleEviction(id)

	staged, err := cookie.Stage(service.config.CookiesEnvVar)
	if err != nil {
		log.Warnf("Failed to stage cookies for job %s, proceeding without: %v\n", id, err)
	}
	defer staged.Release()

	request := extractor.DownloadRequest{
		URL:            url,
		FormatSelector: formatSelector(formatID),
		OutputTemplate: filepath.Join(service.config.OutputPath, fmt.Sprintf("%%(title)s_%s.%%(ext)s", id)),
		CookieFilePath: staged.Path(),
		FfmpegLocation: service.config.FfmpegLocation,
	}

	result, err := service.engine.Download(service.workerContext(), request, func(progress extractor.ProgressEvent) {
		service.applyProgress(id, progress)
	})

	if err != nil {
		// Failures are terminal; the error is recorded against the
		// job and never propagated further. Progress and filepath are
		// left untouched.
		service.store.Mutate(id, func(j *job.Job) {
			j.Status = job.StatusError
			j.Error = err.Error()
		})
		service.eventBus.Dispatch(event.DownloadUpdateEvent, id)

		log.Warnf("Job %s failed: %v\n", id, err)
		return
	}

	service.store.Mutate(id, func(j *job.Job) {
		j.Status = job.StatusComplete
		j.Progress = 100
		j.Filepath = result.Filepath
		j.Filename = filepath.Base(result.Filepath)
	})
	service.eventBus.Dispatch(event.DownloadCompleteEvent, id)

	log.Emit(logger.SUCCESS, "Job %s complete (%s)\n", id, result.Filepath)
}

// applyProgress folds a single engine progress event in to the job
// record. Events arrive on the worker's goroutine in emission order,
// so updates are applied in that same order.
func (service *downloadService) applyProgress(id uuid.UUID, progress extractor.ProgressEvent) {
	switch progress.Kind {
	case extractor.ProgressDownloading:
		service.store.Mutate(id, func(j *job.Job) {
			j.Status = job.StatusDownloading
			// The engine acquires video and audio streams separately
			// and restarts its percentage for each; reported progress
			// must never regress.
			if progress.Percent > j.Progress {
				j.Progress = progress.Percent
			}
		})
		service.eventBus.Dispatch(event.DownloadProgressEvent, id)
	case extractor.ProgressFinished:
		// Acquisition is done but the transcoder may still be merging
		// streams; progress is forced to 100 at this point.
		service.store.Mutate(id, func(j *job.Job) {
			j.Status = job.StatusProcessing
			j.Progress = 100
		})
		service.eventBus.Dispatch(event.DownloadUpdateEvent, id)
	}
}

// formatSelector expands a bare format ID in to a selector that pairs
// the chosen video stream with the best available audio. Selectors
// which already express a preference chain ('bestaudio/best') and the
// catch-all 'best' are passed through untouched.
func formatSelector(formatID string) string {
	if formatID == "best" || strings.ContainsAny(formatID, "/+") {
		return formatID
	}

	return formatID + "+bestaudio/best"
}
