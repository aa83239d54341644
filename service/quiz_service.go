package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"gorm.io/datatypes"
	"gorm.io/gorm"

	"github.com/studyloft/studyloft/events"
	"github.com/studyloft/studyloft/llm"
	"github.com/studyloft/studyloft/models"
	"github.com/studyloft/studyloft/pkg/metrics"
	"github.com/studyloft/studyloft/repository"
)

// QuizParams are the kind-specific trigger parameters. Zero values are filled
// with the documented defaults.
type QuizParams struct {
	Title        string
	NumQuestions int
	Difficulty   string
	QuestionType string
}

const (
	defaultNumQuestions = 5
	quizMaxTokens       = 4000
)

const quizSystemInstruction = "You are an expert quiz author. Generate high-quality questions strictly grounded in the provided study material. Respond with JSON only, exactly in the requested format."

type QuizService interface {
	TriggerGeneration(ctx context.Context, materialID uuid.UUID, params QuizParams) (*models.Quiz, error)
	GetByID(id uuid.UUID) (*models.Quiz, error)
	ListByMaterial(materialID uuid.UUID, page, pageSize int32) ([]*repository.QuizListItem, int64, error)
	SubmitAttempt(quizID uuid.UUID, answers map[string][]string) (*models.QuizAttempt, error)
}

type QuizServiceImpl struct {
	repo      repository.QuizRepository
	materials repository.MaterialRepository
	generator llm.TextGenerator
	runner    *Runner
	publisher events.Publisher
	logger    *logrus.Logger
}

func NewQuizService(
	repo repository.QuizRepository,
	materials repository.MaterialRepository,
	generator llm.TextGenerator,
	runner *Runner,
	publisher events.Publisher,
	logger *logrus.Logger,
) QuizService {
	return &QuizServiceImpl{
		repo:      repo,
		materials: materials,
		generator: generator,
		runner:    runner,
		publisher: publisher,
		logger:    logger,
	}
}

// TriggerGeneration validates the material, creates the quiz in pending and
// dispatches the generation body. It returns before any model call happens.
func (s *QuizServiceImpl) TriggerGeneration(ctx context.Context, materialID uuid.UUID, params QuizParams) (*models.Quiz, error) {
	material, err := loadReadyMaterial(s.materials, materialID)
	if err != nil {
		return nil, err
	}

	if params.NumQuestions <= 0 {
		params.NumQuestions = defaultNumQuestions
	}
	if params.Difficulty == "" {
		params.Difficulty = models.DifficultyMedium
	}
	if params.QuestionType == "" {
		params.QuestionType = models.QuestionTypeMultipleChoice
	}
	if params.Title == "" {
		params.Title = "Quiz: " + material.Title
	}

	quiz := &models.Quiz{
		MaterialID:   materialID,
		Title:        params.Title,
		NumQuestions: params.NumQuestions,
		Difficulty:   params.Difficulty,
		QuestionType: params.QuestionType,
		Status:       models.ArtifactStatusPending,
	}
	if err := s.repo.Create(quiz); err != nil {
		return nil, fmt.Errorf("failed to create quiz record: %w", err)
	}

	content := material.RawContent
	s.runner.Dispatch("quiz", quiz.ID, func(ctx context.Context) error {
		return s.runGeneration(ctx, quiz.ID, content, params)
	}, func(err error) {
		s.fail(quiz.ID, err)
	})

	s.logger.Infof("quiz %s generation dispatched for material %s", quiz.ID, materialID)
	return quiz, nil
}

func (s *QuizServiceImpl) runGeneration(ctx context.Context, quizID uuid.UUID, content string, params QuizParams) error {
	if err := s.repo.UpdateStatus(quizID, models.ArtifactStatusProcessing); err != nil {
		return fmt.Errorf("failed to mark quiz processing: %w", err)
	}

	prompt := buildQuizPrompt(truncateContent(content, maxPromptChars), params)
	response, err := s.generator.Generate(ctx, prompt, quizSystemInstruction, quizMaxTokens, generationTemperature)
	if err != nil {
		return fmt.Errorf("generation request failed: %w", err)
	}

	questions, err := parseQuestions(response, quizID, params.QuestionType)
	if err != nil {
		return err
	}

	if err := s.repo.Complete(quizID, questions); err != nil {
		return fmt.Errorf("failed to persist questions: %w", err)
	}

	metrics.GenerationsTotal.WithLabelValues("quiz", models.ArtifactStatusCompleted).Inc()
	s.publisher.PublishArtifact(ctx, events.Event{
		Kind:   "quiz",
		ID:     quizID.String(),
		Status: models.ArtifactStatusCompleted,
	})
	s.logger.Infof("quiz %s completed with %d questions", quizID, len(questions))
	return nil
}

func (s *QuizServiceImpl) fail(quizID uuid.UUID, cause error) {
	if err := s.repo.Fail(quizID, cause.Error()); err != nil {
		s.logger.Errorf("failed to record quiz failure for %s: %v", quizID, err)
		return
	}
	metrics.GenerationsTotal.WithLabelValues("quiz", models.ArtifactStatusFailed).Inc()
	s.publisher.PublishArtifact(context.Background(), events.Event{
		Kind:   "quiz",
		ID:     quizID.String(),
		Status: models.ArtifactStatusFailed,
	})
}

func buildQuizPrompt(content string, params QuizParams) string {
	var b strings.Builder

	fmt.Fprintf(&b, "Based on the following study material, generate %d %s questions at %s difficulty.\n\n", params.NumQuestions, params.QuestionType, params.Difficulty)
	b.WriteString("Study material:\n")
	b.WriteString(content)
	b.WriteString("\n\n")

	b.WriteString("Return the questions in exactly this JSON format:\n")
	switch params.QuestionType {
	case models.QuestionTypeTrueFalse:
		b.WriteString(`{
  "questions": [
    {
      "content": "statement to judge",
      "options": {"true": "True", "false": "False"},
      "correct_answers": ["true"],
      "explanation": "why the statement holds or not"
    }
  ]
}`)
	case models.QuestionTypeShortAnswer:
		b.WriteString(`{
  "questions": [
    {
      "content": "question text",
      "correct_answers": ["expected answer"],
      "explanation": "answer outline"
    }
  ]
}`)
	default:
		b.WriteString(`{
  "questions": [
    {
      "content": "question text",
      "options": {"a": "option 1", "b": "option 2", "c": "option 3", "d": "option 4"},
      "correct_answers": ["a"],
      "explanation": "why this answer is correct"
    }
  ]
}`)
		if params.QuestionType == models.QuestionTypeMultiSelect {
			b.WriteString("\nEach question must have two or more entries in correct_answers.")
		}
	}

	return b.String()
}

type generatedQuestion struct {
	Content        string            `json:"content"`
	Options        map[string]string `json:"options,omitempty"`
	CorrectAnswers []string          `json:"correct_answers"`
	CorrectAnswer  string            `json:"correct_answer,omitempty"`
	Explanation    string            `json:"explanation"`
}

func parseQuestions(response string, quizID uuid.UUID, questionType string) ([]*models.Question, error) {
	var result struct {
		Questions []generatedQuestion `json:"questions"`
	}
	if err := decodeGenerated(response, &result); err != nil {
		return nil, err
	}
	if len(result.Questions) == 0 {
		return nil, fmt.Errorf("model returned no questions")
	}

	questions := make([]*models.Question, 0, len(result.Questions))
	for i, q := range result.Questions {
		if strings.TrimSpace(q.Content) == "" {
			return nil, fmt.Errorf("question %d has empty content", i+1)
		}
		answers := q.CorrectAnswers
		if len(answers) == 0 && q.CorrectAnswer != "" {
			answers = []string{q.CorrectAnswer}
		}
		if len(answers) == 0 {
			return nil, fmt.Errorf("question %d has no correct answer", i+1)
		}

		question := &models.Question{
			QuizID:      quizID,
			Position:    i,
			Type:        questionType,
			Content:     q.Content,
			Explanation: q.Explanation,
		}
		if len(q.Options) > 0 {
			optionsJSON, err := json.Marshal(q.Options)
			if err != nil {
				return nil, fmt.Errorf("question %d: %w", i+1, err)
			}
			question.Options = datatypes.JSON(optionsJSON)
		}
		answersJSON, err := json.Marshal(answers)
		if err != nil {
			return nil, fmt.Errorf("question %d: %w", i+1, err)
		}
		question.CorrectAnswers = datatypes.JSON(answersJSON)

		questions = append(questions, question)
	}

	return questions, nil
}

func (s *QuizServiceImpl) GetByID(id uuid.UUID) (*models.Quiz, error) {
	quiz, err := s.repo.GetWithQuestions(id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrQuizNotFound
		}
		return nil, err
	}
	// Rows written by older deployments may carry legacy status spellings.
	quiz.Status = models.NormalizeStatus(quiz.Status)
	return quiz, nil
}

func (s *QuizServiceImpl) ListByMaterial(materialID uuid.UUID, page, pageSize int32) ([]*repository.QuizListItem, int64, error) {
	return s.repo.ListByMaterial(materialID, page, pageSize)
}

// SubmitAttempt scores a submission against a completed quiz. A response is
// correct iff its selected-token set equals the correct set, regardless of
// order; single-answer types are the one-element case of the same rule.
func (s *QuizServiceImpl) SubmitAttempt(quizID uuid.UUID, answers map[string][]string) (*models.QuizAttempt, error) {
	quiz, err := s.repo.GetWithQuestions(quizID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrQuizNotFound
		}
		return nil, err
	}
	if models.NormalizeStatus(quiz.Status) != models.ArtifactStatusCompleted {
		return nil, ErrQuizNotReady
	}

	correctCount := 0
	for _, question := range quiz.Questions {
		var correct []string
		if err := json.Unmarshal(question.CorrectAnswers, &correct); err != nil {
			return nil, fmt.Errorf("corrupt correct answers for question %s: %w", question.ID, err)
		}
		selected := answers[question.ID.String()]
		if tokenSetsEqual(selected, correct) {
			correctCount++
		}
	}

	answersJSON, err := json.Marshal(answers)
	if err != nil {
		return nil, err
	}

	attempt := &models.QuizAttempt{
		QuizID:       quizID,
		Answers:      datatypes.JSON(answersJSON),
		CorrectCount: correctCount,
		TotalCount:   len(quiz.Questions),
	}
	if attempt.TotalCount > 0 {
		attempt.Score = float32(correctCount) / float32(attempt.TotalCount)
	}

	if err := s.repo.CreateAttempt(attempt); err != nil {
		return nil, fmt.Errorf("failed to save attempt: %w", err)
	}
	return attempt, nil
}

func tokenSetsEqual(a, b []string) bool {
	if len(a) == 0 || len(b) == 0 {
		return false
	}
	normalize := func(tokens []string) map[string]struct{} {
		set := make(map[string]struct{}, len(tokens))
		for _, t := range tokens {
			set[strings.ToLower(strings.TrimSpace(t))] = struct{}{}
		}
		return set
	}
	setA, setB := normalize(a), normalize(b)
	if len(setA) != len(setB) {
		return false
	}
	for t := range setA {
		if _, ok := setB[t]; !ok {
			return false
		}
	}
	return true
}
