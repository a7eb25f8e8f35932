package collab

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"ai-interview-telemetry-service/internal/models"
)

// InterviewClient talks to the interview persistence collaborator.
type InterviewClient struct {
	base string
	http *HTTP
}

// NewInterviewClient creates a client for the persistence API at base, e.g.
// "http://localhost:4000/api/interview".
func NewInterviewClient(base string, http *HTTP) *InterviewClient {
	return &InterviewClient{base: base, http: http}
}

type createResponse struct {
	Interview models.Interview `json:"interview"`
}

// Create registers a new session record and returns its ID. The share token
// is generated here so callers never need to.
func (c *InterviewClient) Create(ctx context.Context, userID, category, level string) (string, error) {
	payload := models.InterviewCreate{
		UserID:     userID,
		Category:   category,
		Level:      level,
		StartTime:  time.Now().UTC(),
		ShareToken: uuid.NewString(),
	}

	var resp createResponse
	if err := c.http.sendJSON(ctx, "interview", "POST", c.base+"/create", payload, &resp); err != nil {
		return "", fmt.Errorf("create interview: %w", err)
	}
	return resp.Interview.ID, nil
}

// answerPayload is the add-question-answer wire shape.
type answerPayload struct {
	InterviewID       string        `json:"interviewId"`
	QuestionID        int           `json:"questionId"`
	Question          string        `json:"question"`
	QuestionKeypoints []string      `json:"questionKeypoints"`
	UserAnswer        string        `json:"userAnswer"`
	DetectedKeypoints []string      `json:"detectedKeypoints"`
	MissingKeypoints  []string      `json:"missingKeypoints"`
	Feedback          string        `json:"feedback"`
	Rating            models.Rating `json:"rating"`
	RatingAverage     float64       `json:"rating_average"`
}

// AddQuestionAnswer appends one scored answer to the session record.
func (c *InterviewClient) AddQuestionAnswer(ctx context.Context, interviewID string, record models.AnswerRecord) error {
	payload := answerPayload{
		InterviewID:       interviewID,
		QuestionID:        record.QuestionID,
		Question:          record.Question,
		QuestionKeypoints: record.Keypoints,
		UserAnswer:        record.UserAnswer,
		DetectedKeypoints: record.DetectedKeypoints,
		MissingKeypoints:  record.MissingKeypoints,
		Feedback:          record.Feedback,
		Rating:            record.Rating,
		RatingAverage:     record.RatingAverage,
	}
	if err := c.http.sendJSON(ctx, "interview", "POST", c.base+"/add-question-answer", payload, nil); err != nil {
		return fmt.Errorf("add question answer: %w", err)
	}
	return nil
}

// Update patches the session record, typically at completion.
func (c *InterviewClient) Update(ctx context.Context, update models.InterviewUpdate) error {
	if err := c.http.sendJSON(ctx, "interview", "PATCH", c.base+"/update", update, nil); err != nil {
		return fmt.Errorf("update interview: %w", err)
	}
	return nil
}

// GetByID fetches one session record.
func (c *InterviewClient) GetByID(ctx context.Context, interviewID string) (models.Interview, error) {
	var iv models.Interview
	if err := c.http.getJSON(ctx, "interview", c.base+"/"+interviewID, &iv); err != nil {
		return models.Interview{}, fmt.Errorf("get interview: %w", err)
	}
	return iv, nil
}

// GetByShareToken fetches a session record through its share token.
func (c *InterviewClient) GetByShareToken(ctx context.Context, token string) (models.Interview, error) {
	var iv models.Interview
	if err := c.http.getJSON(ctx, "interview", c.base+"/share/"+token, &iv); err != nil {
		return models.Interview{}, fmt.Errorf("get interview by share token: %w", err)
	}
	return iv, nil
}

// Delete removes a session record.
func (c *InterviewClient) Delete(ctx context.Context, interviewID string) error {
	if err := c.http.sendJSON(ctx, "interview", "DELETE", c.base+"/"+interviewID, nil, nil); err != nil {
		return fmt.Errorf("delete interview: %w", err)
	}
	return nil
}

// ListByUser fetches all session records for a user.
func (c *InterviewClient) ListByUser(ctx context.Context, userID string) ([]models.Interview, error) {
	var ivs []models.Interview
	if err := c.http.getJSON(ctx, "interview", c.base+"/sessions/"+userID, &ivs); err != nil {
		return nil, fmt.Errorf("list interviews: %w", err)
	}
	return ivs, nil
}
