package medias_test

import (
	"testing"

	"github.com/hbomb79/Reel/internal/api/medias"
	"github.com/hbomb79/Reel/internal/extractor"
	"github.com/stretchr/testify/assert"
)

func Test_NewDtoFromInfo_MetadataCarriedThrough(t *testing.T) {
	dto := medias.NewDtoFromInfo(&extractor.MediaInfo{
		Title:     "My Video",
		Uploader:  "Someone",
		Thumbnail: "https://example.com/thumb.jpg",
		ViewCount: 12345,
	})

	assert.Equal(t, "My Video", dto.Title)
	assert.Equal(t, "Someone", dto.Author)
	assert.Equal(t, "https://example.com/thumb.jpg", dto.ThumbnailURL)
	assert.Equal(t, int64(12345), dto.Views)
}

func Test_NewDtoFromInfo_KeepsOnlyAdaptiveMp4Video(t *testing.T) {
	dto := medias.NewDtoFromInfo(&extractor.MediaInfo{
		Formats: []extractor.Format{
			// Combined stream (carries audio) - excluded
			{ID: "22", Ext: "mp4", Resolution: "720p", VideoCodec: "avc1", AudioCodec: "mp4a"},
			// Audio only - excluded
			{ID: "140", Ext: "m4a", Resolution: "", VideoCodec: "none", AudioCodec: "mp4a"},
			// Adaptive but not mp4 - excluded
			{ID: "248", Ext: "webm", Resolution: "1080p", VideoCodec: "vp9", AudioCodec: "none"},
			// Adaptive mp4 - kept
			{ID: "137", Ext: "mp4", Resolution: "1080p", VideoCodec: "avc1", AudioCodec: "none", Filesize: 1_000_000},
		},
	})

	assert.Len(t, dto.Streams, 2)

	video := dto.Streams[0]
	assert.Equal(t, "137", video.Itag)
	assert.Equal(t, "1080p (Video)", video.Resolution)
	assert.Equal(t, "video/mp4", video.MimeType)
	assert.Equal(t, "adaptive", video.Type)
	assert.Equal(t, int64(1_000_000), video.FilesizeApprox)
}

func Test_NewDtoFromInfo_DeduplicatesByResolution(t *testing.T) {
	dto := medias.NewDtoFromInfo(&extractor.MediaInfo{
		Formats: []extractor.Format{
			{ID: "137", Ext: "mp4", Resolution: "1080p", VideoCodec: "avc1", AudioCodec: "none"},
			{ID: "399", Ext: "mp4", Resolution: "1080p", VideoCodec: "av01", AudioCodec: "none"},
			{ID: "136", Ext: "mp4", Resolution: "720p", VideoCodec: "avc1", AudioCodec: "none"},
		},
	})

	assert.Len(t, dto.Streams, 3)
	assert.Equal(t, "137", dto.Streams[0].Itag, "the first format seen for a resolution wins")
	assert.Equal(t, "136", dto.Streams[1].Itag)
}

func Test_NewDtoFromInfo_MissingResolutionFallsBackToHeight(t *testing.T) {
	dto := medias.NewDtoFromInfo(&extractor.MediaInfo{
		Formats: []extractor.Format{
			{ID: "137", Ext: "mp4", Height: 1080, VideoCodec: "avc1", AudioCodec: "none"},
		},
	})

	assert.Equal(t, "1080p (Video)", dto.Streams[0].Resolution)
}

func Test_NewDtoFromInfo_AlwaysOffersAudioOnly(t *testing.T) {
	dto := medias.NewDtoFromInfo(&extractor.MediaInfo{})

	assert.Len(t, dto.Streams, 1)
	audio := dto.Streams[0]
	assert.Equal(t, "bestaudio/best", audio.Itag)
	assert.Equal(t, "Audio Only", audio.Resolution)
	assert.Equal(t, "audio/mp3", audio.MimeType)
	assert.Equal(t, "audio", audio.Type)
	assert.Zero(t, audio.FilesizeApprox)
}
