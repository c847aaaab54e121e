package extractor

import (
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os/exec"
	"strings"

	"github.com/hbomb79/Reel/pkg/logger"
)

var log = logger.Get("YtDlp")

// Network evasion options applied to every engine invocation. Some
// hosts reject requests without a browser-like identity, or misbehave
// over IPv6.
const (
	userAgent = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0.0.0 Safari/537.36"
	referer   = "https://www.google.com/"
)

// YtDlp is the Extractor implementation backed by the yt-dlp binary.
type YtDlp struct {
	binPath string
}

func NewYtDlp(binPath string) *YtDlp {
	if binPath == "" {
		binPath = "yt-dlp"
	}

	return &YtDlp{binPath: binPath}
}

// FetchInfo performs a metadata-only query for the URL provided; no
// media is acquired.
func (engine *YtDlp) FetchInfo(ctx context.Context, request InfoRequest) (*MediaInfo, error) {
	args := []string{"--dump-single-json", "--no-warnings", "--no-playlist"}
	if request.CookieFilePath != "" {
		args = append(args, "--cookies", request.CookieFilePath)
	}
	args = append(args, request.URL)

	cmd := exec.CommandContext(ctx, engine.binPath, args...)
	var stderr bytes.Buffer
	cmd.Stderr = &stderr

	out, err := cmd.Output()
	if err != nil {
		return nil, engineError(err, &stderr)
	}

	var info MediaInfo
	if err := json.Unmarshal(out, &info); err != nil {
		return nil, fmt.Errorf("failed to decode metadata document: %w", err)
	}

	return &info, nil
}

// Download acquires the media for the request provided, blocking until
// the engine (and any transcoder work it spawns) has finished. Each
// line of progress output is parsed and forwarded to onProgress in
// the order it was emitted.
func (engine *YtDlp) Download(ctx context.Context, request DownloadRequest, onProgress ProgressHandler) (*DownloadResult, error) {
	args := []string{
		"--format", request.FormatSelector,
		"--output", request.OutputTemplate,
		"--newline",
		"--no-warnings",
		"--no-playlist",
		"--force-ipv4",
		"--no-check-certificate",
		"--user-agent", userAgent,
		"--referer", referer,
		"--print", "after_move:filepath",
		"--no-simulate",
	}
	if request.FfmpegLocation != "" {
		args = append(args, "--ffmpeg-location", request.FfmpegLocation)
	}
	if request.CookieFilePath != "" {
		args = append(args, "--cookies", request.CookieFilePath)
	}
	args = append(args, request.URL)

	cmd := exec.CommandContext(ctx, engine.binPath, args...)
	var stderr bytes.Buffer
	cmd.Stderr = &stderr

	stdout, err := cmd.StdoutPipe()
	if err != nil {
		return nil, fmt.Errorf("failed to open engine stdout pipe: %w", err)
	}

	if err := cmd.Start(); err != nil {
		return nil, fmt.Errorf("failed to start engine: %w", err)
	}

	// The '--print after_move:filepath' directive makes the engine
	// print the final artifact path as a bare line once all
	// post-processing has completed; every other line of interest is
	// a bracketed status line.
	finalPath := ""
	scanner := bufio.NewScanner(stdout)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}

		if event, ok := parseProgressLine(line); ok {
			if onProgress != nil {
				onProgress(event)
			}
			continue
		}

		if !strings.HasPrefix(line, "[") {
			finalPath = line
		}
	}

	if err := cmd.Wait(); err != nil {
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}

		return nil, engineError(err, &stderr)
	}

	if scanErr := scanner.Err(); scanErr != nil {
		return nil, fmt.Errorf("failed while reading engine output: %w", scanErr)
	}

	if finalPath == "" {
		return nil, errors.New("engine exited nominally but reported no output file")
	}

	log.Debugf("Engine completed download of %s to %s\n", request.URL, finalPath)
	return &DownloadResult{Filepath: finalPath}, nil
}

// engineError tries to pick out the most relevant information from the
// engine's output. yt-dlp writes its actual failure reason ('ERROR:
// unsupported URL', et cetera) as the last populated stderr line; the
// raw exec error only carries an exit code.
func engineError(err error, stderr *bytes.Buffer) error {
	lines := strings.Split(strings.TrimSpace(stderr.String()), "\n")
	for i := len(lines) - 1; i >= 0; i-- {
		if line := strings.TrimSpace(lines[i]); line != "" {
			return errors.New(strings.TrimPrefix(line, "ERROR: "))
		}
	}

	return err
}
