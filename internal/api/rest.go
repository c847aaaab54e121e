package api

import (
	"context"
	"sync"

	"github.com/go-playground/validator/v10"
	"github.com/hbomb79/Reel/internal/api/downloads"
	"github.com/hbomb79/Reel/internal/api/medias"
	"github.com/hbomb79/Reel/internal/api/websocket"
	"github.com/hbomb79/Reel/internal/event"
	"github.com/hbomb79/Reel/pkg/logger"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
)

var log = logger.Get("API")

type (
	RestConfig struct {
		HostAddr string `yaml:"host_address" env:"API_HOST_ADDR" env-default:"0.0.0.0:8080"`
	}

	controller interface {
		SetRoutes(*echo.Group)
	}

	// DownloadService is the union of the service requirements of the
	// controllers and the activity broadcaster.
	DownloadService interface {
		downloads.DownloadService
		medias.MediaInfoService
	}

	// The RestGateway is a thin-wrapper around the Echo HTTP router. It's sole responsibility
	// is to create the routes Reel exposes, manage ongoing web socket connections, and relay
	// job activity from the event bus to those connections.
	RestGateway struct {
		*broadcaster
		config             *RestConfig
		ec                 *echo.Echo
		socket             *websocket.SocketHub
		downloadController controller
		mediaController    controller
	}
)

// NewRestGateway constructs the Echo router and populates it with all
// the routes defined by the various controllers.
func NewRestGateway(config *RestConfig, downloadService DownloadService, eventBus event.EventCoordinator) *RestGateway {
	ec := echo.New()
	ec.HidePort = true
	ec.HideBanner = true

	validate := validator.New()
	socket := websocket.New()
	gateway := &RestGateway{
		broadcaster:        newBroadcaster(socket, downloadService, eventBus),
		config:             config,
		ec:                 ec,
		socket:             socket,
		downloadController: downloads.New(validate, downloadService),
		mediaController:    medias.New(validate, downloadService),
	}

	ec.Use(middleware.Logger())
	ec.Use(middleware.Recover())
	ec.Use(middleware.CORS())
	ec.Pre(middleware.AddTrailingSlash())

	ec.GET("/api/reel/v1/activity/ws/", func(ec echo.Context) error {
		return gateway.socket.UpgradeToSocket(ec.Response(), ec.Request())
	})

	v1 := ec.Group("/api/reel/v1")
	gateway.downloadController.SetRoutes(v1)
	gateway.mediaController.SetRoutes(v1)

	return gateway
}

func (gateway *RestGateway) Run(parentCtx context.Context) error {
	ctx, ctxCancel := context.WithCancelCause(parentCtx)
	wg := &sync.WaitGroup{}

	// Start echo router
	wg.Add(1)
	go func() {
		defer wg.Done()
		log.Emit(logger.NEW, "Serving on %s\n", gateway.config.HostAddr)
		if err := gateway.ec.Start(gateway.config.HostAddr); err != nil {
			ctxCancel(err)
		}
	}()

	// Start thread to listen for context cancellation
	go func(ec *echo.Echo) {
		<-ctx.Done()
		ec.Close()
	}(gateway.ec)

	// Start websocket hub and the activity broadcaster feeding it
	wg.Add(1)
	go func() {
		defer wg.Done()
		gateway.socket.Start(ctx)
	}()

	wg.Add(1)
	go func() {
		defer wg.Done()
		gateway.broadcaster.Run(ctx)
	}()

	wg.Wait()

	// Return cancellation cause if any, otherwise nil as parent context
	// cancellation is not an error case we should report.
	if cause := context.Cause(ctx); cause != ctx.Err() {
		return cause
	}

	return nil
}
