// Package cookie handles the staging of credential material (a
// Netscape cookie jar) from the process environment in to a transient
// file that the extraction engine can consume. Each staged file is
// owned exclusively by the extraction call it was created for and must
// be released exactly once, on every exit path of that call.
package cookie

import (
	"fmt"
	"os"

	"github.com/hbomb79/Reel/pkg/logger"
)

var log = logger.Get("CookieStaging")

// StagedFile is the handle to a staged cookie file. A nil *StagedFile
// is a valid "no credentials present" handle; Path and Release are
// both safe to call on it.
type StagedFile struct {
	path string
}

// Stage reads the environment variable named and, if it holds any
// content, writes that content to a freshly created temporary file.
// A nil handle (and nil error) is returned when the variable is unset
// or empty; the extraction call should simply proceed without
// credentials in that case.
func Stage(envVar string) (*StagedFile, error) {
	content := os.Getenv(envVar)
	if content == "" {
		return nil, nil
	}

	handle, err := os.CreateTemp("", "cookies-*.txt")
	if err != nil {
		return nil, fmt.Errorf("failed to create cookie staging file: %w", err)
	}

	if _, err := handle.WriteString(content); err != nil {
		handle.Close()
		os.Remove(handle.Name())
		return nil, fmt.Errorf("failed to write cookie staging file: %w", err)
	}

	if err := handle.Close(); err != nil {
		os.Remove(handle.Name())
		return nil, fmt.Errorf("failed to close cookie staging file: %w", err)
	}

	return &StagedFile{path: handle.Name()}, nil
}

// Path returns the location of the staged file, or an empty string for
// a nil handle.
func (staged *StagedFile) Path() string {
	if staged == nil {
		return ""
	}

	return staged.path
}

// Release removes the backing file. It never fails; a file which has
// already been removed (by a previous Release, or by the OS cleaning
// its temp directory) is not an error. A stale staged file is a minor
// resource leak rather than a correctness problem, so removal failures
// are logged and swallowed.
func (staged *StagedFile) Release() {
	if staged == nil || staged.path == "" {
		return
	}

	if err := os.Remove(staged.path); err != nil && !os.IsNotExist(err) {
		log.Debugf("Failed to remove staged cookie file %s: %v\n", staged.path, err)
	}
	staged.path = ""
}
