package models

import "strings"

// Material ingestion statuses. uploaded -> pending -> processing -> terminal.
const (
	MaterialStatusUploaded    = "uploaded"
	MaterialStatusPending     = "pending"
	MaterialStatusProcessing  = "processing"
	MaterialStatusCompleted   = "completed"
	MaterialStatusFailed      = "failed"
	MaterialStatusUnsupported = "unsupported"
)

// Artifact generation statuses, shared by all four artifact kinds.
// Audio lectures pass through generating_audio between processing and completed;
// the other kinds go straight from processing to a terminal status.
const (
	ArtifactStatusPending         = "pending"
	ArtifactStatusProcessing      = "processing"
	ArtifactStatusGeneratingAudio = "generating_audio"
	ArtifactStatusCompleted       = "completed"
	ArtifactStatusFailed          = "failed"
)

// MaterialStatusTerminal reports whether no further automated transition occurs.
func MaterialStatusTerminal(status string) bool {
	switch status {
	case MaterialStatusCompleted, MaterialStatusFailed, MaterialStatusUnsupported:
		return true
	}
	return false
}

// ArtifactStatusTerminal reports whether the generation has finished either way.
func ArtifactStatusTerminal(status string) bool {
	return status == ArtifactStatusCompleted || status == ArtifactStatusFailed
}

// NormalizeStatus folds case variants and legacy spellings onto the canonical
// vocabulary. Older clients sent "Ready"/"ready" and "error"; everything is
// normalized once at the boundary so only one enumeration exists internally.
func NormalizeStatus(status string) string {
	switch strings.ToLower(strings.TrimSpace(status)) {
	case "ready", "complete", "completed", "done":
		return ArtifactStatusCompleted
	case "error", "failed":
		return ArtifactStatusFailed
	case "generating-audio", "generating_audio":
		return ArtifactStatusGeneratingAudio
	case "processing":
		return ArtifactStatusProcessing
	case "pending", "queued":
		return ArtifactStatusPending
	default:
		return strings.ToLower(strings.TrimSpace(status))
	}
}
