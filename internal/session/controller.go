package session

import (
	"context"
	"errors"
	"fmt"
	"math"
	"strings"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"ai-interview-telemetry-service/internal/events"
	"ai-interview-telemetry-service/internal/models"
	"ai-interview-telemetry-service/internal/nonverbal"
	"ai-interview-telemetry-service/internal/observability/logging"
	"ai-interview-telemetry-service/internal/observability/metrics"
	"ai-interview-telemetry-service/internal/speech/stt"
	"ai-interview-telemetry-service/internal/speech/synth"
)

// Validation errors surfaced to callers. None of them mutate session state.
var (
	ErrNoQuestions     = errors.New("question source returned no questions")
	ErrAnswerRequired  = errors.New("answer the current question first")
	ErrNoNextQuestion  = errors.New("already at the last question")
	ErrNotLastQuestion = errors.New("submit is only valid on the last question")
)

// QuestionSource supplies the interview questions.
type QuestionSource interface {
	FetchQuestions(ctx context.Context, domain, level string, count int) ([]models.Question, error)
}

// FeedbackService scores answers and nonverbal metrics.
type FeedbackService interface {
	AnswerFeedback(ctx context.Context, draft models.AnswerDraft) (models.AnswerRecord, error)
	FacialFeedback(ctx context.Context, results map[string]nonverbal.Result) (models.NonverbalFeedback, error)
}

// InterviewStore persists the session record.
type InterviewStore interface {
	Create(ctx context.Context, userID, category, level string) (string, error)
	AddQuestionAnswer(ctx context.Context, interviewID string, record models.AnswerRecord) error
	Update(ctx context.Context, update models.InterviewUpdate) error
}

// EventSink receives session events.
type EventSink interface {
	PublishAnswerRecorded(ctx context.Context, event events.AnswerRecordedEvent) error
	PublishSessionCompleted(ctx context.Context, event events.SessionCompletedEvent) error
}

// Config holds the per-session parameters.
type Config struct {
	UserID        string
	Domain        string
	Level         string
	QuestionCount int

	// SettleDelay is the pause between a recording toggle and speech capture
	// actually starting, so the toggle click never leaks into the transcript.
	SettleDelay time.Duration
}

// Summary is the terminal result of a submitted session.
type Summary struct {
	InterviewID  string                    `json:"interviewId"`
	Answers      int                       `json:"answers"`
	OverallScore float64                   `json:"overallScore"`
	Nonverbal    *models.NonverbalFeedback `json:"nonVerbal,omitempty"`
}

// Status is a point-in-time snapshot of the session for the control surface.
type Status struct {
	InterviewID   string `json:"interviewId"`
	Phase         string `json:"phase"`
	QuestionIndex int    `json:"questionIndex"`
	QuestionCount int    `json:"questionCount"`
	Question      string `json:"question,omitempty"`
	Transcript    string `json:"transcript"`
	HasSpoken     bool   `json:"hasSpoken"`
	Recording     bool   `json:"recording"`
}

// Controller drives one interview session end to end: it voices prompts,
// toggles speech capture, validates answers, and runs the sequential
// feedback-then-persist exchange per answer.
//
// It implements stt.Callback; transcripts flow in from whatever adapter the
// factory produces.
type Controller struct {
	cfg       Config
	questions QuestionSource
	feedback  FeedbackService
	store     InterviewStore
	events    EventSink
	speaker   *synth.Serial
	sttNew    stt.Factory
	agg       *nonverbal.Aggregator
	rules     []nonverbal.Rule
	lifecycle *Lifecycle
	metrics   *metrics.Metrics
	log       zerolog.Logger

	mu          sync.Mutex
	interviewID string
	list        []models.Question
	index       int
	finalized   strings.Builder
	interim     string
	hasSpoken   bool
	records     []models.AnswerRecord
	adapter     stt.Adapter
	settle      *time.Timer
	recGen      uint64
	torn        bool
}

// NewController wires a session controller. The aggregator is shared with the
// telemetry delivery path; the controller only ever reads it, at submission.
func NewController(cfg Config, questions QuestionSource, feedback FeedbackService, store InterviewStore, sink EventSink, speaker synth.Speaker, sttNew stt.Factory, agg *nonverbal.Aggregator) *Controller {
	if cfg.SettleDelay <= 0 {
		cfg.SettleDelay = 500 * time.Millisecond
	}
	return &Controller{
		cfg:       cfg,
		questions: questions,
		feedback:  feedback,
		store:     store,
		events:    sink,
		speaker:   synth.NewSerial(speaker),
		sttNew:    sttNew,
		agg:       agg,
		rules:     nonverbal.DefaultRules(),
		lifecycle: NewLifecycle(),
		metrics:   metrics.DefaultMetrics,
		log:       logging.WithComponent("session"),
	}
}

// Begin fetches the questions, creates the persistence record and voices the
// welcome plus the first question. An empty question list is fatal.
func (c *Controller) Begin(ctx context.Context) error {
	if err := c.lifecycle.Begin(); err != nil {
		return err
	}

	list, err := c.questions.FetchQuestions(ctx, c.cfg.Domain, c.cfg.Level, c.cfg.QuestionCount)
	if err != nil {
		c.fail(err)
		return fmt.Errorf("fetch questions: %w", err)
	}
	if len(list) == 0 {
		c.fail(ErrNoQuestions)
		return ErrNoQuestions
	}

	id, err := c.store.Create(ctx, c.cfg.UserID, c.cfg.Domain, c.cfg.Level)
	if err != nil {
		c.fail(err)
		return fmt.Errorf("create interview: %w", err)
	}

	c.mu.Lock()
	c.interviewID = id
	c.list = list
	c.mu.Unlock()

	c.metrics.SessionsStarted.Inc()
	c.log.Info().
		Str("interviewId", id).
		Str("domain", c.cfg.Domain).
		Str("level", c.cfg.Level).
		Int("questions", len(list)).
		Msg("Session started")

	go c.speakPrompt(ctx, fmt.Sprintf("Welcome to your %s interview. %s", c.cfg.Domain, list[0].Text))
	return nil
}

// speakPrompt voices text, then moves PROMPTING → IDLE. A new utterance or a
// recording toggle cancels it mid-sentence.
func (c *Controller) speakPrompt(ctx context.Context, text string) {
	if err := c.speaker.Speak(ctx, text); err != nil {
		c.log.Debug().Err(err).Msg("Prompt interrupted")
	}
	c.lifecycle.Prompted()
}

// ToggleRecording flips speech capture. Starting clears the transcript and
// the hasSpoken flag, then arms capture after the settle delay; stopping
// closes the adapter and keeps the transcript intact. Returns whether
// recording is active after the toggle.
func (c *Controller) ToggleRecording(ctx context.Context) (bool, error) {
	if c.lifecycle.Phase() == PhaseRecording {
		if err := c.lifecycle.StopRecording(); err != nil {
			return true, err
		}
		c.mu.Lock()
		c.recGen++
		c.stopCaptureLocked()
		c.mu.Unlock()
		c.metrics.RecordingToggles.Inc()
		c.log.Info().Msg("Recording stopped")
		return false, nil
	}

	if err := c.lifecycle.StartRecording(); err != nil {
		return false, err
	}

	c.speaker.Cancel()

	c.mu.Lock()
	c.finalized.Reset()
	c.interim = ""
	c.hasSpoken = false
	c.recGen++
	gen := c.recGen
	c.settle = time.AfterFunc(c.cfg.SettleDelay, func() { c.startCapture(ctx, gen) })
	c.mu.Unlock()

	c.metrics.RecordingToggles.Inc()
	c.log.Info().Dur("settleDelay", c.cfg.SettleDelay).Msg("Recording started")
	return true, nil
}

// startCapture runs when the settle delay elapses. A stale generation means
// the toggle was flipped again in the meantime.
func (c *Controller) startCapture(ctx context.Context, gen uint64) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.torn || gen != c.recGen || c.lifecycle.Phase() != PhaseRecording {
		return
	}

	adapter := c.sttNew()
	if err := adapter.Start(ctx, c); err != nil {
		c.log.Error().Err(err).Msg("Speech capture failed to start")
		return
	}
	c.adapter = adapter
}

// stopCaptureLocked stops the settle timer and closes the adapter.
// Caller holds c.mu.
func (c *Controller) stopCaptureLocked() {
	if c.settle != nil {
		c.settle.Stop()
		c.settle = nil
	}
	if c.adapter != nil {
		if err := c.adapter.Close(); err != nil {
			c.log.Warn().Err(err).Msg("Error closing speech adapter")
		}
		c.adapter = nil
	}
}

// OnTranscript implements stt.Callback. Final text is appended to the running
// transcript; interim text replaces the previous interim. The hasSpoken flag
// latches on the first non-empty text and only a recording restart clears it.
func (c *Controller) OnTranscript(text string, final bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if final {
		if c.finalized.Len() > 0 {
			c.finalized.WriteByte(' ')
		}
		c.finalized.WriteString(text)
		c.interim = ""
	} else {
		c.interim = text
	}
	if strings.TrimSpace(text) != "" {
		c.hasSpoken = true
	}
}

// OnError implements stt.Callback.
func (c *Controller) OnError(err error) {
	c.log.Warn().Err(err).Msg("Speech capture error")
}

// transcriptLocked returns the running transcript. Caller holds c.mu.
func (c *Controller) transcriptLocked() string {
	if c.interim == "" {
		return c.finalized.String()
	}
	if c.finalized.Len() == 0 {
		return c.interim
	}
	return c.finalized.String() + " " + c.interim
}

// Advance submits the current answer and moves to the next question.
// Validation gates on the hasSpoken flag and the recording state, never on
// transcript content; a rejected call leaves the session untouched.
func (c *Controller) Advance(ctx context.Context) error {
	c.mu.Lock()
	last := c.index >= len(c.list)-1
	c.mu.Unlock()
	if last {
		c.metrics.RecordValidationRejection("no_next_question")
		return ErrNoNextQuestion
	}

	if err := c.validate(); err != nil {
		return err
	}
	if err := c.lifecycle.BeginSubmit(); err != nil {
		return err
	}

	record, err := c.submitAnswer(ctx)
	if err != nil {
		c.lifecycle.Resume()
		return err
	}

	c.mu.Lock()
	c.records = append(c.records, record)
	c.index++
	c.finalized.Reset()
	c.interim = ""
	c.hasSpoken = false
	next := c.list[c.index]
	c.mu.Unlock()

	c.lifecycle.NextPrompt()
	go c.speakPrompt(ctx, next.Text)
	return nil
}

// Submit scores the final answer, computes the nonverbal metrics once over
// the whole-session counters, and completes the session. A session with zero
// observed transitions still completes, with the nonverbal result omitted.
func (c *Controller) Submit(ctx context.Context) (Summary, error) {
	c.mu.Lock()
	last := c.index >= len(c.list)-1
	c.mu.Unlock()
	if !last {
		c.metrics.RecordValidationRejection("not_last_question")
		return Summary{}, ErrNotLastQuestion
	}

	if err := c.validate(); err != nil {
		return Summary{}, err
	}
	if err := c.lifecycle.BeginSubmit(); err != nil {
		return Summary{}, err
	}

	record, err := c.submitAnswer(ctx)
	if err != nil {
		c.lifecycle.Resume()
		return Summary{}, err
	}

	c.mu.Lock()
	c.records = append(c.records, record)
	records := c.records
	id := c.interviewID
	counters := c.agg.Snapshot()
	c.mu.Unlock()

	var facial *models.NonverbalFeedback
	results, err := nonverbal.Compute(counters, c.rules)
	switch {
	case errors.Is(err, nonverbal.ErrNoObservations):
		c.log.Warn().Str("interviewId", id).Msg("No nonverbal observations, completing without facial analysis")
	case err != nil:
		c.lifecycle.Resume()
		return Summary{}, fmt.Errorf("compute nonverbal metrics: %w", err)
	default:
		fb, err := c.feedback.FacialFeedback(ctx, results)
		if err != nil {
			c.lifecycle.Resume()
			return Summary{}, fmt.Errorf("facial feedback: %w", err)
		}
		facial = &fb
	}

	overall := overallScore(records)
	update := models.InterviewUpdate{
		InterviewID:    id,
		Status:         models.StatusCompleted,
		EndTime:        time.Now().UTC(),
		FacialAnalysis: facial,
		OverallScore:   overall,
	}
	if err := c.store.Update(ctx, update); err != nil {
		c.lifecycle.Resume()
		return Summary{}, fmt.Errorf("complete interview: %w", err)
	}

	summary := Summary{
		InterviewID:  id,
		Answers:      len(records),
		OverallScore: overall,
		Nonverbal:    facial,
	}

	event := events.SessionCompletedEvent{
		InterviewID:  id,
		Answers:      len(records),
		OverallScore: overall,
		Nonverbal:    facial,
		CompletedAt:  update.EndTime,
	}
	if facial != nil {
		event.NonverbalScore = facial.Score
	}
	if err := c.events.PublishSessionCompleted(ctx, event); err != nil {
		c.log.Warn().Err(err).Msg("Failed to publish session completed event")
	}

	c.lifecycle.Complete()
	c.metrics.SessionsCompleted.Inc()
	c.log.Info().
		Str("interviewId", id).
		Int("answers", len(records)).
		Float64("overallScore", overall).
		Bool("facialAnalysis", facial != nil).
		Msg("Session completed")
	return summary, nil
}

// validate enforces the answer gate shared by Advance and Submit.
func (c *Controller) validate() error {
	if c.lifecycle.Phase() == PhaseRecording {
		c.metrics.RecordValidationRejection("still_recording")
		return ErrStillRecording
	}
	c.mu.Lock()
	spoken := c.hasSpoken
	c.mu.Unlock()
	if !spoken {
		c.metrics.RecordValidationRejection("answer_required")
		return ErrAnswerRequired
	}
	return nil
}

// submitAnswer runs the sequential feedback-then-persist exchange for the
// current question. The caller owns lifecycle transitions.
func (c *Controller) submitAnswer(ctx context.Context) (models.AnswerRecord, error) {
	c.mu.Lock()
	q := c.list[c.index]
	draft := models.AnswerDraft{
		QuestionID: q.ID,
		Level:      q.Level,
		Question:   q.Text,
		Keypoints:  q.Keypoints,
		UserAnswer: c.transcriptLocked(),
	}
	id := c.interviewID
	c.mu.Unlock()

	record, err := c.feedback.AnswerFeedback(ctx, draft)
	if err != nil {
		c.log.Error().Err(err).Int("questionId", q.ID).Msg("Answer feedback failed")
		return models.AnswerRecord{}, fmt.Errorf("answer feedback: %w", err)
	}

	if err := c.store.AddQuestionAnswer(ctx, id, record); err != nil {
		c.log.Error().Err(err).Int("questionId", q.ID).Msg("Answer persistence failed")
		return models.AnswerRecord{}, fmt.Errorf("persist answer: %w", err)
	}

	c.metrics.AnswersRecorded.Inc()
	if err := c.events.PublishAnswerRecorded(ctx, events.AnswerRecordedEvent{
		InterviewID: id,
		QuestionID:  q.ID,
		SequenceID:  q.SequenceID,
		Rating:      record.RatingAverage,
		RecordedAt:  time.Now().UTC(),
	}); err != nil {
		c.log.Warn().Err(err).Msg("Failed to publish answer recorded event")
	}

	c.log.Info().
		Str("interviewId", id).
		Int("questionId", q.ID).
		Int("sequenceId", q.SequenceID).
		Float64("ratingAverage", record.RatingAverage).
		Msg("Answer recorded")
	return record, nil
}

// Status reports a snapshot of the session.
func (c *Controller) Status() Status {
	c.mu.Lock()
	defer c.mu.Unlock()

	s := Status{
		InterviewID:   c.interviewID,
		Phase:         c.lifecycle.Phase().String(),
		QuestionIndex: c.index,
		QuestionCount: len(c.list),
		Transcript:    c.transcriptLocked(),
		HasSpoken:     c.hasSpoken,
		Recording:     c.lifecycle.Phase() == PhaseRecording,
	}
	if c.index < len(c.list) {
		s.Question = c.list[c.index].Text
	}
	return s
}

// Teardown releases timers, the speech adapter and the speaker. Idempotent.
// An unfinished session is marked cancelled, best effort.
func (c *Controller) Teardown() {
	c.mu.Lock()
	if c.torn {
		c.mu.Unlock()
		return
	}
	c.torn = true
	c.recGen++
	c.stopCaptureLocked()
	id := c.interviewID
	c.mu.Unlock()

	c.speaker.Cancel()

	if c.lifecycle.Fail() {
		c.metrics.SessionsErrored.Inc()
		if id != "" {
			ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			if err := c.store.Update(ctx, models.InterviewUpdate{
				InterviewID: id,
				Status:      models.StatusCancelled,
				EndTime:     time.Now().UTC(),
			}); err != nil {
				c.log.Warn().Err(err).Str("interviewId", id).Msg("Failed to mark interview cancelled")
			}
		}
		c.log.Info().Str("interviewId", id).Msg("Session torn down before completion")
		return
	}
	c.log.Debug().Str("interviewId", id).Msg("Session torn down")
}

// fail marks the session errored.
func (c *Controller) fail(err error) {
	if c.lifecycle.Fail() {
		c.metrics.SessionsErrored.Inc()
		c.log.Error().Err(err).Msg("Session failed")
	}
}

// overallScore averages the per-answer rating averages, rounded to two
// decimals the same way the nonverbal percentages are.
func overallScore(records []models.AnswerRecord) float64 {
	if len(records) == 0 {
		return 0
	}
	sum := 0.0
	for _, r := range records {
		sum += r.RatingAverage
	}
	avg := sum / float64(len(records))
	return math.Round(avg*100) / 100
}
