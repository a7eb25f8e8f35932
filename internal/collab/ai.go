package collab

import (
	"context"
	"fmt"
	"net/url"
	"strconv"

	"ai-interview-telemetry-service/internal/models"
	"ai-interview-telemetry-service/internal/nonverbal"
)

// AIClient talks to the AI collaborator: question source, per-answer feedback
// and nonverbal feedback.
type AIClient struct {
	base string
	http *HTTP
}

// NewAIClient creates a client for the AI collaborator at base, e.g.
// "http://localhost:5000".
func NewAIClient(base string, http *HTTP) *AIClient {
	return &AIClient{base: base, http: http}
}

// FetchQuestions retrieves count questions for the given domain and level.
// Sequence IDs are assigned 1-based in arrival order.
func (c *AIClient) FetchQuestions(ctx context.Context, domain, level string, count int) ([]models.Question, error) {
	q := url.Values{}
	q.Set("technicalDomain", domain)
	q.Set("questionLevel", level)
	q.Set("noOfQuestions", strconv.Itoa(count))

	var questions []models.Question
	if err := c.http.getJSON(ctx, "ai", c.base+"/fetchQuestions?"+q.Encode(), &questions); err != nil {
		return nil, fmt.Errorf("fetch questions: %w", err)
	}

	for i := range questions {
		questions[i].SequenceID = i + 1
	}
	return questions, nil
}

// AnswerFeedback submits a draft answer and returns the scored record.
func (c *AIClient) AnswerFeedback(ctx context.Context, draft models.AnswerDraft) (models.AnswerRecord, error) {
	var record models.AnswerRecord
	if err := c.http.sendJSON(ctx, "ai", "POST", c.base+"/getFeedback", draft, &record); err != nil {
		return models.AnswerRecord{}, fmt.Errorf("answer feedback: %w", err)
	}
	return record, nil
}

// facialFeedbackRequest wraps the metric results for the feedback endpoint.
type facialFeedbackRequest struct {
	NonVerbalMetrics map[string]nonverbal.Result `json:"nonVerbalMetrics"`
}

// FacialFeedback submits the computed behavioral metrics and returns the
// narrative feedback plus score.
func (c *AIClient) FacialFeedback(ctx context.Context, results map[string]nonverbal.Result) (models.NonverbalFeedback, error) {
	var fb models.NonverbalFeedback
	req := facialFeedbackRequest{NonVerbalMetrics: results}
	if err := c.http.sendJSON(ctx, "ai", "POST", c.base+"/getFacialFeedback", req, &fb); err != nil {
		return models.NonverbalFeedback{}, fmt.Errorf("facial feedback: %w", err)
	}
	return fb, nil
}
