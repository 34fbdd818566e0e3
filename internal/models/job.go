package models

import (
	"fmt"
	"strings"
	"time"
)

// JobQuery is the structured query sent to the job search provider
type JobQuery struct {
	Title    string   `json:"title,omitempty"`
	Location string   `json:"location,omitempty"`
	Skills   []string `json:"skills,omitempty"`
}

// SearchText collapses the structured query into the free-text form the
// provider expects, e.g. "Backend Engineer in Berlin".
func (q *JobQuery) SearchText() string {
	parts := []string{}
	if q.Title != "" {
		parts = append(parts, q.Title)
	} else if len(q.Skills) > 0 {
		parts = append(parts, strings.Join(q.Skills, " "))
	}
	if q.Location != "" {
		parts = append(parts, "in "+q.Location)
	}
	if len(parts) == 0 {
		return "jobs"
	}
	return strings.Join(parts, " ")
}

// JobPosting is a single job result from the job search provider
type JobPosting struct {
	ID             string     `json:"id"`
	Title          string     `json:"title"`
	Employer       string     `json:"employer"`
	Location       string     `json:"location"`
	EmploymentType string     `json:"employment_type,omitempty"`
	Remote         bool       `json:"remote"`
	SalaryMin      float64    `json:"salary_min,omitempty"`
	SalaryMax      float64    `json:"salary_max,omitempty"`
	Currency       string     `json:"currency,omitempty"`
	PostedAt       *time.Time `json:"posted_at,omitempty"`
	Description    string     `json:"description,omitempty"`
	ApplyLink      string     `json:"apply_link,omitempty"`
}

// maxDescriptionChars bounds the posting description carried into a chunk
const maxDescriptionChars = 400

// FormatChunkText renders the posting as a single multi-field text block
// suitable for use as a retrieval chunk.
func (p *JobPosting) FormatChunkText() string {
	var b strings.Builder
	fmt.Fprintf(&b, "Title: %s\n", p.Title)
	fmt.Fprintf(&b, "Employer: %s\n", p.Employer)
	if p.Location != "" {
		fmt.Fprintf(&b, "Location: %s\n", p.Location)
	}
	if p.EmploymentType != "" {
		fmt.Fprintf(&b, "Employment type: %s\n", p.EmploymentType)
	}
	fmt.Fprintf(&b, "Remote: %v\n", p.Remote)
	if p.SalaryMin > 0 || p.SalaryMax > 0 {
		currency := p.Currency
		if currency == "" {
			currency = "USD"
		}
		fmt.Fprintf(&b, "Salary: %.0f-%.0f %s\n", p.SalaryMin, p.SalaryMax, currency)
	}
	if p.PostedAt != nil {
		fmt.Fprintf(&b, "Posted: %s\n", p.PostedAt.Format("2006-01-02"))
	}
	if p.Description != "" {
		desc := p.Description
		if len(desc) > maxDescriptionChars {
			desc = desc[:maxDescriptionChars] + "..."
		}
		fmt.Fprintf(&b, "Description: %s\n", desc)
	}
	if p.ApplyLink != "" {
		fmt.Fprintf(&b, "Apply: %s", p.ApplyLink)
	}
	return strings.TrimRight(b.String(), "\n")
}

// WebResult is one ranked organic result from the web search provider.
// The provider gives rank order only; callers assign synthetic scores.
type WebResult struct {
	Title   string `json:"title"`
	Snippet string `json:"snippet"`
	URL     string `json:"url,omitempty"`
}
