package client

import (
	"context"
	"fmt"
	"net/url"
	"strconv"
	"time"

	"github.com/medlens/reviewsignal/pkg/types/common"
)

// AnnotatedReview mirrors the API representation of a processed review: the
// raw row, the parsed medication descriptor, and the derived token and
// keyword lists.
type AnnotatedReview struct {
	TextIndex     common.TextIndex `json:"text_index"`
	Medication    string           `json:"medication"`
	Comment       string           `json:"comment"`
	Rate          common.Rating    `json:"rate"`
	Treatment     string           `json:"treatment"`
	Disease       string           `json:"disease"`
	Antibody      string           `json:"antibody"`
	TreatmentType string           `json:"treatment_type"`
	Tokens        []string         `json:"tokens"`
	Keywords      []string         `json:"keywords"`
	RunID         common.RunID     `json:"run_id"`
}

// MarkerEvent is one marker detection in a review comment.
type MarkerEvent struct {
	ID        string           `json:"id"`
	TextIndex common.TextIndex `json:"text_index"`
	Marker    string           `json:"marker"`
	Topic     string           `json:"topic"`
	Disease   string           `json:"disease"`
	RunID     common.RunID     `json:"run_id"`
	CreatedAt time.Time        `json:"created_at"`
}

// ChangeEvent is one detected mention of a previous treatment together with
// the sentiment score derived from the review's rating.
type ChangeEvent struct {
	ID                string           `json:"id"`
	TextIndex         common.TextIndex `json:"text_index"`
	PreviousTreatment string           `json:"previous_treatment"`
	Score             int              `json:"score"`
	RunID             common.RunID     `json:"run_id"`
	CreatedAt         time.Time        `json:"created_at"`
}

// ListOptions are the shared filters of the event listing endpoints.  Zero
// values are omitted from the query string.
type ListOptions struct {
	Topic    string
	Disease  string
	RunID    string
	MinScore *int
	MaxScore *int
	Limit    int
	Offset   int
}

func (o ListOptions) encode() string {
	q := url.Values{}
	if o.Topic != "" {
		q.Set("topic", o.Topic)
	}
	if o.Disease != "" {
		q.Set("disease", o.Disease)
	}
	if o.RunID != "" {
		q.Set("run_id", o.RunID)
	}
	if o.MinScore != nil {
		q.Set("min_score", strconv.Itoa(*o.MinScore))
	}
	if o.MaxScore != nil {
		q.Set("max_score", strconv.Itoa(*o.MaxScore))
	}
	if o.Limit > 0 {
		q.Set("limit", strconv.Itoa(o.Limit))
	}
	if o.Offset > 0 {
		q.Set("offset", strconv.Itoa(o.Offset))
	}
	if len(q) == 0 {
		return ""
	}
	return "?" + q.Encode()
}

type markerListResponse struct {
	Events []MarkerEvent `json:"events"`
	Count  int           `json:"count"`
}

type changeListResponse struct {
	Events []ChangeEvent `json:"events"`
	Count  int           `json:"count"`
}

// RunAccepted acknowledges an asynchronous run request.
type RunAccepted struct {
	Source string `json:"source"`
	Status string `json:"status"`
}

// GetReview fetches the most recent annotation of a review by text index.
func (c *Client) GetReview(ctx context.Context, textIndex string) (*AnnotatedReview, error) {
	if textIndex == "" {
		return nil, fmt.Errorf("client: textIndex is required")
	}
	var out AnnotatedReview
	if err := c.get(ctx, "/api/v1/reviews/"+url.PathEscape(textIndex), &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// ListMarkerEvents fetches marker detections matching opts.
func (c *Client) ListMarkerEvents(ctx context.Context, opts ListOptions) ([]MarkerEvent, error) {
	var out markerListResponse
	if err := c.get(ctx, "/api/v1/markers"+opts.encode(), &out); err != nil {
		return nil, err
	}
	return out.Events, nil
}

// ListChangeEvents fetches treatment-change detections matching opts.
func (c *Client) ListChangeEvents(ctx context.Context, opts ListOptions) ([]ChangeEvent, error) {
	var out changeListResponse
	if err := c.get(ctx, "/api/v1/treatment-changes"+opts.encode(), &out); err != nil {
		return nil, err
	}
	return out.Events, nil
}

// CreateRun asks the server to queue a pipeline run over a server-side CSV
// path.  Acceptance means the request was queued, not that the run finished.
func (c *Client) CreateRun(ctx context.Context, source string) (*RunAccepted, error) {
	if source == "" {
		return nil, fmt.Errorf("client: source is required")
	}
	var out RunAccepted
	body := map[string]string{"source": source}
	if err := c.post(ctx, "/api/v1/runs", body, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// GetRun fetches a run record by ID.
func (c *Client) GetRun(ctx context.Context, id string) (*common.Run, error) {
	if id == "" {
		return nil, fmt.Errorf("client: run id is required")
	}
	var out common.Run
	if err := c.get(ctx, "/api/v1/runs/"+url.PathEscape(id), &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// Health probes the liveness endpoint.
func (c *Client) Health(ctx context.Context) error {
	return c.get(ctx, "/healthz", nil)
}
