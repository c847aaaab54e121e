package medias

import (
	"fmt"

	"github.com/hbomb79/Reel/internal/extractor"
)

type (
	StreamDto struct {
		Itag           string `json:"itag"`
		Resolution     string `json:"resolution"`
		MimeType       string `json:"mime_type"`
		Type           string `json:"type"`
		FilesizeApprox int64  `json:"filesize_approx"`
	}

	VideoInfoDto struct {
		Title        string      `json:"title"`
		Author       string      `json:"author"`
		ThumbnailURL string      `json:"thumbnail_url"`
		Views        int64       `json:"views"`
		Streams      []StreamDto `json:"streams"`
	}
)

// NewDtoFromInfo shapes the engine's metadata document for the client.
// The (often hundreds of) raw formats are reduced to one adaptive mp4
// video stream per resolution, plus a single audio-only option whose
// itag is a selector the download endpoint understands.
func NewDtoFromInfo(info *extractor.MediaInfo) *VideoInfoDto {
	streams := make([]StreamDto, 0)
	seenResolutions := make(map[string]bool)

	for _, format := range info.Formats {
		// Adaptive video carries no audio track; the engine merges in
		// the best audio at download time.
		if format.VideoCodec == "none" || format.AudioCodec != "none" || format.Ext != "mp4" {
			continue
		}

		resolution := format.Resolution
		if resolution == "" {
			resolution = fmt.Sprintf("%dp", format.Height)
		}
		if seenResolutions[resolution] {
			continue
		}
		seenResolutions[resolution] = true

		streams = append(streams, StreamDto{
			Itag:           format.ID,
			Resolution:     fmt.Sprintf("%s (Video)", resolution),
			MimeType:       fmt.Sprintf("video/%s", format.Ext),
			Type:           "adaptive",
			FilesizeApprox: format.Filesize,
		})
	}

	streams = append(streams, StreamDto{
		Itag:           "bestaudio/best",
		Resolution:     "Audio Only",
		MimeType:       "audio/mp3",
		Type:           "audio",
		FilesizeApprox: 0,
	})

	return &VideoInfoDto{
		Title:        info.Title,
		Author:       info.Uploader,
		ThumbnailURL: info.Thumbnail,
		Views:        info.ViewCount,
		Streams:      streams,
	}
}
