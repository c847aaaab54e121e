package extractor

import (
	"regexp"
	"strconv"
	"strings"
)

// downloadLineMatcher picks the percentage out of the engine's
// per-line progress output (enabled via '--newline'), e.g.
// '[download]  42.3% of ~12.4MiB at 1.2MiB/s ETA 00:12'.
var downloadLineMatcher = regexp.MustCompile(`^\[download\]\s+(\d+(?:\.\d+)?)%`)

// postProcessPrefixes are output sections which only appear once the
// acquisition itself is complete and the engine has moved on to local
// post-processing (stream merging, remuxing, et cetera).
var postProcessPrefixes = []string{"[Merger]", "[ExtractAudio]", "[FixupM3u8]", "[VideoRemuxer]"}

// parseProgressLine converts a single line of engine output in to a
// ProgressEvent. The boolean is false for lines that carry no
// progress information; malformed progress payloads are treated the
// same way, leaving the caller's last good value in place.
func parseProgressLine(line string) (ProgressEvent, bool) {
	line = strings.TrimSpace(line)
	if line == "" {
		return ProgressEvent{}, false
	}

	for _, prefix := range postProcessPrefixes {
		if strings.HasPrefix(line, prefix) {
			return ProgressEvent{Kind: ProgressFinished}, true
		}
	}

	groups := downloadLineMatcher.FindStringSubmatch(line)
	if groups == nil {
		return ProgressEvent{}, false
	}

	percent, err := strconv.ParseFloat(groups[1], 64)
	if err != nil || percent < 0 || percent > 100 {
		return ProgressEvent{}, false
	}

	// The engine prints a final summary line ('100% of ... in ...')
	// once the acquisition is done; the transcoder may still be
	// merging streams after this point.
	if percent == 100 && strings.Contains(line, " in ") {
		return ProgressEvent{Kind: ProgressFinished, Percent: percent}, true
	}

	return ProgressEvent{Kind: ProgressDownloading, Percent: percent}, true
}
