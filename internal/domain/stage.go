package domain

// Stage enumerates pipeline milestones for a single run.
type Stage string

const (
	StageStart               Stage = "START"
	StageCredentialRefreshed Stage = "CREDENTIAL_REFRESHED"
	StageHistoryCollected    Stage = "HISTORY_COLLECTED"
	StageCandidatesFetched   Stage = "CANDIDATES_FETCHED"
	StageDeduplicated        Stage = "DEDUPLICATED"
	StageSelected            Stage = "SELECTED"
	StageRendered            Stage = "RENDERED"
	StagePublished           Stage = "PUBLISHED"

	StageAuthFailed    Stage = "AUTH_FAILED"
	StageFetchFailed   Stage = "FETCH_FAILED"
	StageNoCandidate   Stage = "NO_CANDIDATE"
	StagePublishFailed Stage = "PUBLISH_FAILED"
)

// Failed reports whether the stage is terminal on error.
func (s Stage) Failed() bool {
	switch s {
	case StageAuthFailed, StageFetchFailed, StageNoCandidate, StagePublishFailed:
		return true
	default:
		return false
	}
}
