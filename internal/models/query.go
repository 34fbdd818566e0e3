package models

// Intent represents the classified purpose of a user question
type Intent string

const (
	IntentResumeQuery    Intent = "resume_query"
	IntentCareerGuidance Intent = "career_guidance"
	IntentJobSearch      Intent = "job_search"
	IntentIrrelevant     Intent = "irrelevant"
)

// ValidIntent reports whether s is one of the known intent values
func ValidIntent(s string) bool {
	switch Intent(s) {
	case IntentResumeQuery, IntentCareerGuidance, IntentJobSearch, IntentIrrelevant:
		return true
	}
	return false
}

// Question is a single incoming user question. Ephemeral, per-request.
type Question struct {
	Text           string `json:"text"`
	UserID         string `json:"user_id"`
	ConversationID string `json:"conversation_id,omitempty"`
	ResumeID       string `json:"resume_id,omitempty"`
}

// JobParameters holds the structured job-search fields extracted by the
// classifier. Present only when the intent is job_search.
type JobParameters struct {
	Title    string   `json:"title,omitempty"`
	Location string   `json:"location,omitempty"`
	Skills   []string `json:"skills"`
}

// QueryAnalysis is the classifier's verdict on a question.
// Confidence is always within [0,1]; JobParams is non-nil iff
// Intent is IntentJobSearch.
type QueryAnalysis struct {
	Intent         Intent         `json:"intent"`
	Confidence     float64        `json:"confidence"`
	RewrittenQuery string         `json:"rewritten_query"`
	JobParams      *JobParameters `json:"job_params,omitempty"`
	Reasoning      string         `json:"reasoning,omitempty"`
}
