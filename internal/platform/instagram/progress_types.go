package instagram

type ProgressType string

const (
	ProgressStory ProgressType = "STORY"
	ProgressMedia ProgressType = "MEDIA"
)

// ProgressReport is the data packet sent from the Client to the UI.
// Step is one of INIT, PREPARE, UPLOAD or CONFIG.
type ProgressReport struct {
	Type       ProgressType
	Step       string
	Current    int // Current part index (1, 2, 3...)
	Total      int // Total parts count
	Message    string
	BytesSent  int64 // Bytes sent in the CURRENT part
	TotalBytes int64 // Total bytes of the CURRENT part
}

// ProgressReporter receives upload progress. Implementations must be safe
// for concurrent use.
type ProgressReporter interface {
	Report(report ProgressReport)
}

func reportProgress(pr ProgressReporter, r ProgressReport) {
	if pr != nil {
		pr.Report(r)
	}
}
