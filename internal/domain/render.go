package domain

import "time"

// JobState is the lifecycle state of a remote render job.
type JobState string

const (
	JobPending JobState = "pending"
	JobDone    JobState = "done"
	JobFailed  JobState = "failed"
)

// JobStatus is one observation of a render job. ArtifactURL is set when the
// state is JobDone and Reason when it is JobFailed.
type JobStatus struct {
	State       JobState `json:"state"`
	ArtifactURL string   `json:"artifact_url,omitempty"`
	Reason      string   `json:"reason,omitempty"`
}

// Terminal reports whether polling should stop.
func (s JobStatus) Terminal() bool {
	return s.State == JobDone || s.State == JobFailed
}

func Pending() JobStatus             { return JobStatus{State: JobPending} }
func Done(url string) JobStatus      { return JobStatus{State: JobDone, ArtifactURL: url} }
func Failed(reason string) JobStatus { return JobStatus{State: JobFailed, Reason: reason} }

// MediaKind names the integration that produced an artifact.
type MediaKind string

const (
	MediaAnimation MediaKind = "animation"
	MediaVideo     MediaKind = "video"
)

// RenderJob identifies a submitted job for the duration of its polling loop.
type RenderJob struct {
	ID   string    `json:"id"`
	Kind MediaKind `json:"kind"`
}

// MediaArtifact records the final URL of a finished render job.
type MediaArtifact struct {
	ID          string    `json:"id" db:"id"`
	SessionID   string    `json:"session_id" db:"session_id"`
	Concept     string    `json:"concept" db:"concept"`
	Kind        MediaKind `json:"kind" db:"kind"`
	JobID       string    `json:"job_id" db:"job_id"`
	ArtifactURL string    `json:"artifact_url" db:"artifact_url"`
	CreatedAt   time.Time `json:"created_at" db:"created_at"`
}
