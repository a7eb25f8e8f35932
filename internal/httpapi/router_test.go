package httpapi

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"ai-interview-telemetry-service/internal/events"
	"ai-interview-telemetry-service/internal/models"
	"ai-interview-telemetry-service/internal/nonverbal"
	"ai-interview-telemetry-service/internal/session"
	"ai-interview-telemetry-service/internal/speech/stt"
)

type stubCollab struct{}

func (stubCollab) FetchQuestions(ctx context.Context, domain, level string, count int) ([]models.Question, error) {
	return []models.Question{{ID: 1, SequenceID: 1, Level: level, Text: "What is a list?"}}, nil
}

func (stubCollab) AnswerFeedback(ctx context.Context, draft models.AnswerDraft) (models.AnswerRecord, error) {
	return models.AnswerRecord{QuestionID: draft.QuestionID, UserAnswer: draft.UserAnswer, RatingAverage: 4}, nil
}

func (stubCollab) FacialFeedback(ctx context.Context, results map[string]nonverbal.Result) (models.NonverbalFeedback, error) {
	return models.NonverbalFeedback{Score: 7}, nil
}

func (stubCollab) Create(ctx context.Context, userID, category, level string) (string, error) {
	return "iv-1", nil
}

func (stubCollab) AddQuestionAnswer(ctx context.Context, interviewID string, record models.AnswerRecord) error {
	return nil
}

func (stubCollab) Update(ctx context.Context, update models.InterviewUpdate) error { return nil }

func (stubCollab) PublishAnswerRecorded(ctx context.Context, event events.AnswerRecordedEvent) error {
	return nil
}

func (stubCollab) PublishSessionCompleted(ctx context.Context, event events.SessionCompletedEvent) error {
	return nil
}

type stubSpeaker struct{}

func (stubSpeaker) Speak(ctx context.Context, text string) error { return nil }

type stubAdapter struct{}

func (stubAdapter) Start(ctx context.Context, cb stt.Callback) error  { return nil }
func (stubAdapter) SendAudio(ctx context.Context, audio []byte) error { return nil }
func (stubAdapter) Close() error                                      { return nil }

func newTestRouter(t *testing.T) (http.Handler, *session.Controller) {
	t.Helper()
	var deps stubCollab
	ctrl := session.NewController(
		session.Config{UserID: "user-1", Domain: "python", Level: "beginner", QuestionCount: 1, SettleDelay: time.Millisecond},
		deps, deps, deps, deps,
		stubSpeaker{},
		func() stt.Adapter { return stubAdapter{} },
		nonverbal.NewAggregator(),
	)
	if err := ctrl.Begin(context.Background()); err != nil {
		t.Fatalf("begin: %v", err)
	}
	return NewRouter(ctrl, nil), ctrl
}

func TestHealthEndpoints(t *testing.T) {
	router, _ := newTestRouter(t)

	for _, path := range []string{"/v1/liveness", "/v1/readiness"} {
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, path, nil))
		if rec.Code != http.StatusOK {
			t.Errorf("%s: status = %d", path, rec.Code)
		}
	}
}

func TestSessionStatusEndpoint(t *testing.T) {
	router, _ := newTestRouter(t)

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/v1/session", nil))
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	body := rec.Body.String()
	if !strings.Contains(body, `"interviewId":"iv-1"`) {
		t.Errorf("body missing interview id: %s", body)
	}
	if !strings.Contains(body, `"telemetry":"CLOSED"`) {
		t.Errorf("body missing telemetry state: %s", body)
	}
}

func TestAdvanceWithoutAnswerIsUnprocessable(t *testing.T) {
	router, _ := newTestRouter(t)

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/v1/session/advance", nil))
	if rec.Code != http.StatusUnprocessableEntity {
		t.Errorf("status = %d, want 422", rec.Code)
	}
}

func TestRecordingToggleEndpoint(t *testing.T) {
	router, _ := newTestRouter(t)

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/v1/session/recording", nil))
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), `"recording":true`) {
		t.Errorf("body = %s", rec.Body.String())
	}

	rec = httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/v1/session/recording", nil))
	if !strings.Contains(rec.Body.String(), `"recording":false`) {
		t.Errorf("body = %s", rec.Body.String())
	}
}

func TestSubmitFlow(t *testing.T) {
	router, ctrl := newTestRouter(t)

	// Record an answer through the controller's transcript callback
	if _, err := ctrl.ToggleRecording(context.Background()); err != nil {
		t.Fatalf("start recording: %v", err)
	}
	ctrl.OnTranscript("a list is a mutable collection", true)
	if _, err := ctrl.ToggleRecording(context.Background()); err != nil {
		t.Fatalf("stop recording: %v", err)
	}

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/v1/session/submit", nil))
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d: %s", rec.Code, rec.Body.String())
	}
	if !strings.Contains(rec.Body.String(), `"answers":1`) {
		t.Errorf("body = %s", rec.Body.String())
	}
}
