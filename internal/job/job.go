package job

import "github.com/google/uuid"

type Status string

const (
	StatusInitializing Status = "initializing"
	StatusDownloading  Status = "downloading"
	StatusProcessing   Status = "processing"
	StatusComplete     Status = "complete"
	StatusError        Status = "error"
)

// IsTerminal reports whether the status is one which a job can
// never transition out of.
func (s Status) IsTerminal() bool { return s == StatusComplete || s == StatusError }

// Job represents a single media download request being tracked by the
// store. The ID held inside of the job is what should be used to
// retrieve it from the store for monitoring.
//
// A job is mutated only by the download worker that owns it; all other
// parties (polling, file fetching) receive read-only snapshots from
// the store.
type Job struct {
	ID       uuid.UUID `json:"-"`
	Status   Status    `json:"status"`
	Progress float64   `json:"progress"`
	URL      string    `json:"url"`
	FormatID string    `json:"format_id"`
	Filepath string    `json:"filepath,omitempty"`
	Filename string    `json:"filename,omitempty"`
	Error    string    `json:"error,omitempty"`
}

// New constructs a job in its starting state for the request
// parameters provided.
func New(url string, formatID string) Job {
	return Job{
		ID:       uuid.New(),
		Status:   StatusInitializing,
		Progress: 0,
		URL:      url,
		FormatID: formatID,
	}
}
