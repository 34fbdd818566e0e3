package jobsearch

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/PrahladMehta/CareerMatch-AI/internal/common"
	"github.com/PrahladMehta/CareerMatch-AI/internal/interfaces"
	"github.com/PrahladMehta/CareerMatch-AI/internal/models"
	"github.com/ternarybob/arbor"
	"golang.org/x/time/rate"
)

// Service implements the JobSearchProvider interface against a JSearch-style
// RapidAPI endpoint. Requests are throttled by a shared limiter so burst
// traffic from concurrent retrievals stays within the API quota.
type Service struct {
	config     *common.JobSearchConfig
	logger     arbor.ILogger
	httpClient *http.Client
	limiter    *rate.Limiter
}

var _ interfaces.JobSearchProvider = (*Service)(nil)

// searchResponse is the provider's wire format
type searchResponse struct {
	Status string      `json:"status"`
	Data   []jobResult `json:"data"`
}

type jobResult struct {
	JobID          string  `json:"job_id"`
	JobTitle       string  `json:"job_title"`
	EmployerName   string  `json:"employer_name"`
	JobCity        string  `json:"job_city"`
	JobState       string  `json:"job_state"`
	JobCountry     string  `json:"job_country"`
	EmploymentType string  `json:"job_employment_type"`
	IsRemote       bool    `json:"job_is_remote"`
	MinSalary      float64 `json:"job_min_salary"`
	MaxSalary      float64 `json:"job_max_salary"`
	SalaryCurrency string  `json:"job_salary_currency"`
	PostedAtUTC    string  `json:"job_posted_at_datetime_utc"`
	Description    string  `json:"job_description"`
	ApplyLink      string  `json:"job_apply_link"`
}

// NewService creates a new job search service instance
func NewService(config *common.JobSearchConfig, logger arbor.ILogger) (*Service, error) {
	if config.APIKey == "" {
		return nil, fmt.Errorf("RapidAPI key is required for job search (set via JSEARCH_API_KEY or jobsearch.api_key in config)")
	}

	interval := config.RateLimit
	if interval <= 0 {
		interval = time.Second
	}

	logger.Info().
		Str("base_url", config.BaseURL).
		Dur("rate_limit", interval).
		Int("max_results", config.MaxResults).
		Msg("Job search service initialized")

	return &Service{
		config: config,
		logger: logger,
		httpClient: &http.Client{
			Timeout: config.RequestTimeout,
		},
		limiter: rate.NewLimiter(rate.Every(interval), 1),
	}, nil
}

// Search queries the provider for job postings matching the structured query
func (s *Service) Search(ctx context.Context, query *models.JobQuery) ([]models.JobPosting, error) {
	if query == nil {
		return nil, fmt.Errorf("job query is required")
	}

	if err := s.limiter.Wait(ctx); err != nil {
		return nil, fmt.Errorf("rate limit wait cancelled: %w", err)
	}

	searchText := query.SearchText()

	params := url.Values{}
	params.Set("query", searchText)
	params.Set("page", "1")
	params.Set("num_pages", "1")

	endpoint := fmt.Sprintf("%s/search?%s", strings.TrimRight(s.config.BaseURL, "/"), params.Encode())

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to build job search request: %w", err)
	}
	req.Header.Set("X-RapidAPI-Key", s.apiKey())
	req.Header.Set("X-RapidAPI-Host", s.apiHost())

	s.logger.Debug().Str("search_text", searchText).Msg("Calling job search API")

	startTime := time.Now()
	resp, err := s.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to call job search API: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		return nil, fmt.Errorf("job search API returned status %d: %s", resp.StatusCode, string(body))
	}

	var apiResp searchResponse
	if err := json.NewDecoder(resp.Body).Decode(&apiResp); err != nil {
		return nil, fmt.Errorf("failed to decode job search response: %w", err)
	}

	postings := make([]models.JobPosting, 0, len(apiResp.Data))
	for _, result := range apiResp.Data {
		postings = append(postings, s.convertToPosting(result))
	}

	if s.config.MaxResults > 0 && len(postings) > s.config.MaxResults {
		postings = postings[:s.config.MaxResults]
	}

	s.logger.Debug().
		Str("search_text", searchText).
		Int("result_count", len(postings)).
		Dur("duration", time.Since(startTime)).
		Msg("Job search completed")

	return postings, nil
}

func (s *Service) apiKey() string {
	return s.config.APIKey
}

// apiHost derives the RapidAPI host header from the base URL
func (s *Service) apiHost() string {
	parsed, err := url.Parse(s.config.BaseURL)
	if err != nil || parsed.Host == "" {
		return strings.TrimPrefix(s.config.BaseURL, "https://")
	}
	return parsed.Host
}

// convertToPosting converts a provider result to a JobPosting model
func (s *Service) convertToPosting(result jobResult) models.JobPosting {
	posting := models.JobPosting{
		ID:             result.JobID,
		Title:          result.JobTitle,
		Employer:       result.EmployerName,
		Location:       formatLocation(result.JobCity, result.JobState, result.JobCountry),
		EmploymentType: result.EmploymentType,
		Remote:         result.IsRemote,
		SalaryMin:      result.MinSalary,
		SalaryMax:      result.MaxSalary,
		Currency:       result.SalaryCurrency,
		Description:    result.Description,
		ApplyLink:      result.ApplyLink,
	}

	if result.PostedAtUTC != "" {
		if postedAt, err := time.Parse(time.RFC3339, result.PostedAtUTC); err == nil {
			posting.PostedAt = &postedAt
		}
	}

	return posting
}

// formatLocation joins the non-empty location parts with commas
func formatLocation(parts ...string) string {
	nonEmpty := make([]string, 0, len(parts))
	for _, part := range parts {
		if strings.TrimSpace(part) != "" {
			nonEmpty = append(nonEmpty, part)
		}
	}
	return strings.Join(nonEmpty, ", ")
}
