package downloads

import (
	"errors"
	"net/http"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/hbomb79/Reel/internal/download"
	"github.com/hbomb79/Reel/internal/job"
	"github.com/labstack/echo/v4"
)

type (
	StartDownloadRequest struct {
		URL  string `json:"url" validate:"required"`
		Itag string `json:"itag" validate:"required"`
	}

	StartDownloadResponse struct {
		JobID uuid.UUID `json:"job_id"`
	}

	DownloadService interface {
		Submit(url string, formatID string) (uuid.UUID, error)
		Job(id uuid.UUID) (job.Job, bool)
	}

	// Controller is the struct which is responsible for defining the
	// routes for this controller. Additionally, it holds the reference
	// to the download service used to submit and monitor jobs.
	Controller struct {
		validate *validator.Validate
		service  DownloadService
	}
)

func New(validate *validator.Validate, serv DownloadService) *Controller {
	return &Controller{validate: validate, service: serv}
}

// SetRoutes accepts the Echo group for the download endpoints
// and sets the routes on them.
func (controller *Controller) SetRoutes(eg *echo.Group) {
	eg.POST("/start-download/", controller.start)
	eg.GET("/progress/:id/", controller.progress)
	eg.GET("/get-file/:id/", controller.file)
}

// start submits a new download job and replies with its identity. The
// submission is accepted as soon as the job exists; extraction runs in
// the background and is observed via the progress endpoint.
func (controller *Controller) start(ec echo.Context) error {
	var request StartDownloadRequest
	if err := ec.Bind(&request); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "JSON body illegal")
	}
	if err := controller.validate.Struct(request); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Missing URL or itag")
	}

	jobID, err := controller.service.Submit(request.URL, request.Itag)
	if err != nil {
		if errors.Is(err, download.ErrInvalidRequest) {
			return echo.NewHTTPError(http.StatusBadRequest, "Missing URL or itag")
		}

		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}

	return ec.JSON(http.StatusOK, StartDownloadResponse{JobID: jobID})
}

// progress uses the 'id' path param from the context and returns the
// current job record. Unknown, malformed and already-evicted IDs all
// surface the same not-found response; an expired job is
// indistinguishable from one that never existed.
func (controller *Controller) progress(ec echo.Context) error {
	id, err := uuid.Parse(ec.Param("id"))
	if err != nil {
		return jobNotFound(ec)
	}

	record, ok := controller.service.Job(id)
	if !ok {
		return jobNotFound(ec)
	}

	return ec.JSON(http.StatusOK, record)
}

// file streams the finished artifact as an attachment. Any job which
// is not in the complete state - including unknown jobs - is reported
// as not-ready.
func (controller *Controller) file(ec echo.Context) error {
	id, err := uuid.Parse(ec.Param("id"))
	if err != nil {
		return fileNotReady(ec)
	}

	record, ok := controller.service.Job(id)
	if !ok || record.Status != job.StatusComplete {
		return fileNotReady(ec)
	}

	return ec.Attachment(record.Filepath, record.Filename)
}

func jobNotFound(ec echo.Context) error {
	return ec.JSON(http.StatusNotFound, map[string]string{
		"status": "error",
		"error":  "Job not found",
	})
}

func fileNotReady(ec echo.Context) error {
	return ec.JSON(http.StatusBadRequest, map[string]string{"error": "File not ready"})
}
