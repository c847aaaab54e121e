package medias

import (
	"context"
	"net/http"

	"github.com/go-playground/validator/v10"
	"github.com/hbomb79/Reel/internal/extractor"
	"github.com/labstack/echo/v4"
)

type (
	VideoInfoRequest struct {
		URL string `json:"url" validate:"required"`
	}

	MediaInfoService interface {
		FetchInfo(ctx context.Context, url string) (*extractor.MediaInfo, error)
	}

	Controller struct {
		validate *validator.Validate
		service  MediaInfoService
	}
)

func New(validate *validator.Validate, serv MediaInfoService) *Controller {
	return &Controller{validate: validate, service: serv}
}

func (controller *Controller) SetRoutes(eg *echo.Group) {
	eg.POST("/video-info/", controller.info)
}

// info queries the extraction engine for the media behind the URL
// provided and returns its metadata along with the download options a
// client can choose from. No media is acquired by this endpoint.
func (controller *Controller) info(ec echo.Context) error {
	var request VideoInfoRequest
	if err := ec.Bind(&request); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "JSON body illegal")
	}
	if err := controller.validate.Struct(request); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "No URL provided")
	}

	info, err := controller.service.FetchInfo(ec.Request().Context(), request.URL)
	if err != nil {
		return ec.JSON(http.StatusInternalServerError, map[string]string{"error": err.Error()})
	}

	return ec.JSON(http.StatusOK, NewDtoFromInfo(info))
}
