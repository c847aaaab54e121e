// Package extractor defines the boundary to the external media
// extraction engine (yt-dlp) and the transcoding binary it drives.
// Both are treated as opaque collaborators; this package owns the
// invocation contract and nothing else.
package extractor

import "context"

type (
	ProgressKind int

	// ProgressEvent is a single incremental report from the engine
	// while a download is in flight. Events for one download are
	// delivered in the order the engine emits them, on the goroutine
	// that invoked Download.
	ProgressEvent struct {
		Kind    ProgressKind
		Percent float64
	}

	ProgressHandler func(ProgressEvent)

	InfoRequest struct {
		URL            string
		CookieFilePath string
	}

	// DownloadRequest carries everything the engine needs for one
	// acquisition: the target, the format selection, where to place
	// the artifact, optional staged credentials and the location of
	// the transcoder used to merge separate audio/video streams.
	DownloadRequest struct {
		URL            string
		FormatSelector string
		OutputTemplate string
		CookieFilePath string
		FfmpegLocation string
	}

	DownloadResult struct {
		Filepath string
	}

	Format struct {
		ID         string  `json:"format_id"`
		Ext        string  `json:"ext"`
		Resolution string  `json:"resolution"`
		Height     int     `json:"height"`
		VideoCodec string  `json:"vcodec"`
		AudioCodec string  `json:"acodec"`
		Filesize   int64   `json:"filesize"`
		Note       string  `json:"format_note"`
		Abr        float64 `json:"abr"`
	}

	// MediaInfo is the metadata document returned by a non-download
	// info query.
	MediaInfo struct {
		Title     string   `json:"title"`
		Uploader  string   `json:"uploader"`
		Thumbnail string   `json:"thumbnail"`
		ViewCount int64    `json:"view_count"`
		Formats   []Format `json:"formats"`
	}

	// Extractor is the call contract for the engine. Download blocks
	// for the full duration of the acquisition (network I/O plus any
	// local transcoding) and so must only ever be invoked from a
	// worker goroutine.
	Extractor interface {
		FetchInfo(ctx context.Context, request InfoRequest) (*MediaInfo, error)
		Download(ctx context.Context, request DownloadRequest, onProgress ProgressHandler) (*DownloadResult, error)
	}
)

const (
	ProgressDownloading ProgressKind = iota
	ProgressFinished
)

func (kind ProgressKind) String() string {
	switch kind {
	case ProgressDownloading:
		return "DOWNLOADING"
	case ProgressFinished:
		return "FINISHED"
	}

	return "UNKNOWN"
}
