// Package models defines the data structures exchanged with the external
// question, feedback and persistence collaborators.
package models

import "time"

// Question is one interview question as supplied by the question source.
// Immutable once fetched. SequenceID is assigned 1-based on receipt.
type Question struct {
	ID         int      `json:"question_id"`
	SequenceID int      `json:"sequence_id"`
	Level      string   `json:"question_level"`
	Text       string   `json:"question"`
	Keypoints  []string `json:"keypoints"`
}

// AnswerDraft is the per-question payload sent to the answer feedback
// collaborator: the question plus the local transcript, before any
// detected/missing keypoint analysis exists.
type AnswerDraft struct {
	QuestionID int      `json:"question_id"`
	Level      string   `json:"question_level"`
	Question   string   `json:"question"`
	Keypoints  []string `json:"keypoints"`
	UserAnswer string   `json:"user_answer"`
}

// Rating breaks an answer rating into its scored components.
type Rating struct {
	Length    int `json:"length"`
	Keypoints int `json:"keypoints"`
}

// AnswerRecord is one scored answer, created by merging the local transcript
// with the feedback collaborator's response. Never mutated after creation.
type AnswerRecord struct {
	QuestionID        int      `json:"question_id"`
	Question          string   `json:"question"`
	Keypoints         []string `json:"keypoints"`
	UserAnswer        string   `json:"user_answer"`
	DetectedKeypoints []string `json:"detected_keypoints"`
	MissingKeypoints  []string `json:"missing_keypoints"`
	Feedback          string   `json:"feedback"`
	Rating            Rating   `json:"rating"`
	RatingAverage     float64  `json:"rating_average"`
}

// NonverbalFeedback is the nonverbal feedback collaborator's response: a
// narrative per behavioral label plus a numeric score out of 10.
type NonverbalFeedback struct {
	Feedback map[string]string `json:"nonVerbalFeedback"`
	Score    float64           `json:"nonVerbalScore"`
}

// InterviewStatus values accepted by the persistence collaborator.
const (
	StatusInProgress = "inProgress"
	StatusCompleted  = "completed"
	StatusCancelled  = "cancelled"
)

// InterviewCreate is the payload for creating a session record.
type InterviewCreate struct {
	UserID     string    `json:"userId"`
	Category   string    `json:"interviewCategory"`
	Level      string    `json:"interviewLevel"`
	StartTime  time.Time `json:"interviewStartTime"`
	ShareToken string    `json:"shareToken"`
}

// InterviewUpdate is the payload for updating a session record at the end of
// a session. FacialAnalysis is nil when the nonverbal score is unavailable.
type InterviewUpdate struct {
	InterviewID    string             `json:"interviewId"`
	Status         string             `json:"interview_status"`
	EndTime        time.Time          `json:"interviewEndTime"`
	FacialAnalysis *NonverbalFeedback `json:"facialAnalysis,omitempty"`
	OverallScore   float64            `json:"overallScore,omitempty"`
}

// Interview is a persisted session record as returned by the persistence
// collaborator.
type Interview struct {
	ID         string             `json:"_id"`
	UserID     string             `json:"user_id"`
	Category   string             `json:"interview_category"`
	Level      string             `json:"interview_level"`
	Status     string             `json:"interview_status"`
	Answers    []AnswerRecord     `json:"interview_data"`
	StartTime  time.Time          `json:"interviewStartTime"`
	EndTime    time.Time          `json:"interviewEndTime"`
	Facial     *NonverbalFeedback `json:"facialAnalysis,omitempty"`
	Overall    float64            `json:"overallScore,omitempty"`
	ShareToken string             `json:"shareToken"`
}
