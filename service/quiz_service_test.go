package service

import (
	"context"
	"strings"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/datatypes"

	"github.com/studyloft/studyloft/models"
	"github.com/studyloft/studyloft/repository"
)

const quizResponse = `{
  "questions": [
    {
      "content": "Which scheduler picks the shortest job first?",
      "options": {"a": "SJF", "b": "FIFO", "c": "RR", "d": "MLFQ"},
      "correct_answers": ["a"],
      "explanation": "SJF selects the job with the smallest runtime."
    },
    {
      "content": "Round robin uses a fixed time slice.",
      "options": {"a": "SJF", "b": "FIFO", "c": "RR", "d": "MLFQ"},
      "correct_answers": ["c"],
      "explanation": "RR preempts on a timer."
    }
  ]
}`

func newQuizFixture(t *testing.T, generator *fakeGenerator) (QuizService, repository.QuizRepository, *models.Material, *Runner, *recordingPublisher) {
	t.Helper()

	db := newTestDB(t)
	session := seedSession(t, db)
	material := seedMaterial(t, db, session.ID, models.MaterialStatusCompleted, "Schedulers decide which process runs next.")

	quizRepo := repository.NewQuizRepository(db)
	materialRepo := repository.NewMaterialRepository(db)
	runner := NewRunner(newTestLogger())
	publisher := &recordingPublisher{}

	svc := NewQuizService(quizRepo, materialRepo, generator, runner, publisher, newTestLogger())
	return svc, quizRepo, material, runner, publisher
}

func TestQuizTriggerReturnsPendingBeforeGeneration(t *testing.T) {
	generator := &fakeGenerator{responses: []string{quizResponse}}
	svc, _, material, runner, _ := newQuizFixture(t, generator)

	quiz, err := svc.TriggerGeneration(context.Background(), material.ID, QuizParams{})
	require.NoError(t, err)

	assert.Equal(t, models.ArtifactStatusPending, quiz.Status)
	assert.Equal(t, defaultNumQuestions, quiz.NumQuestions)
	assert.Equal(t, models.DifficultyMedium, quiz.Difficulty)
	assert.Equal(t, models.QuestionTypeMultipleChoice, quiz.QuestionType)
	assert.Equal(t, "Quiz: "+material.Title, quiz.Title)

	runner.Wait()
}

func TestQuizGenerationCompletes(t *testing.T) {
	generator := &fakeGenerator{responses: []string{quizResponse}}
	svc, repo, material, runner, publisher := newQuizFixture(t, generator)

	quiz, err := svc.TriggerGeneration(context.Background(), material.ID, QuizParams{NumQuestions: 2})
	require.NoError(t, err)
	runner.Wait()

	stored, err := repo.GetWithQuestions(quiz.ID)
	require.NoError(t, err)
	assert.Equal(t, models.ArtifactStatusCompleted, stored.Status)
	require.Len(t, stored.Questions, 2)
	assert.Equal(t, 0, stored.Questions[0].Position)
	assert.Equal(t, 1, stored.Questions[1].Position)
	assert.Contains(t, stored.Questions[0].Content, "shortest job")

	assert.Equal(t, []string{models.ArtifactStatusCompleted}, publisher.artifactStatuses())
}

func TestQuizGenerationAcceptsFencedJSON(t *testing.T) {
	generator := &fakeGenerator{responses: []string{"```json\n" + quizResponse + "\n```"}}
	svc, repo, material, runner, _ := newQuizFixture(t, generator)

	quiz, err := svc.TriggerGeneration(context.Background(), material.ID, QuizParams{})
	require.NoError(t, err)
	runner.Wait()

	stored, err := repo.GetWithQuestions(quiz.ID)
	require.NoError(t, err)
	assert.Equal(t, models.ArtifactStatusCompleted, stored.Status)
	assert.Len(t, stored.Questions, 2)
}

func TestQuizGenerationFailureKeepsNoQuestions(t *testing.T) {
	generator := &fakeGenerator{responses: []string{"this is not json at all"}}
	svc, repo, material, runner, publisher := newQuizFixture(t, generator)

	quiz, err := svc.TriggerGeneration(context.Background(), material.ID, QuizParams{})
	require.NoError(t, err)
	runner.Wait()

	stored, err := repo.GetByID(quiz.ID)
	require.NoError(t, err)
	assert.Equal(t, models.ArtifactStatusFailed, stored.Status)
	assert.NotEmpty(t, stored.ErrorMessage)

	full, err := repo.GetWithQuestions(quiz.ID)
	require.NoError(t, err)
	assert.Empty(t, full.Questions)

	assert.Equal(t, []string{models.ArtifactStatusFailed}, publisher.artifactStatuses())
}

func TestQuizTriggerRejectsMaterialWithoutContent(t *testing.T) {
	db := newTestDB(t)
	session := seedSession(t, db)
	material := seedMaterial(t, db, session.ID, models.MaterialStatusUploaded, "")

	quizRepo := repository.NewQuizRepository(db)
	svc := NewQuizService(quizRepo, repository.NewMaterialRepository(db), &fakeGenerator{}, NewRunner(newTestLogger()), &recordingPublisher{}, newTestLogger())

	_, err := svc.TriggerGeneration(context.Background(), material.ID, QuizParams{})
	assert.ErrorIs(t, err, ErrNoContent)

	count, err := quizRepo.Count()
	require.NoError(t, err)
	assert.Zero(t, count)
}

func TestQuizTriggerUnknownMaterial(t *testing.T) {
	svc, _, _, _, _ := newQuizFixture(t, &fakeGenerator{})

	_, err := svc.TriggerGeneration(context.Background(), uuid.New(), QuizParams{})
	assert.ErrorIs(t, err, ErrMaterialNotFound)
}

func TestQuizPromptTruncatesLongContent(t *testing.T) {
	generator := &fakeGenerator{responses: []string{quizResponse}}

	db := newTestDB(t)
	session := seedSession(t, db)
	material := seedMaterial(t, db, session.ID, models.MaterialStatusCompleted, strings.Repeat("x", maxPromptChars+500))

	runner := NewRunner(newTestLogger())
	svc := NewQuizService(repository.NewQuizRepository(db), repository.NewMaterialRepository(db), generator, runner, &recordingPublisher{}, newTestLogger())

	_, err := svc.TriggerGeneration(context.Background(), material.ID, QuizParams{})
	require.NoError(t, err)
	runner.Wait()

	require.Len(t, generator.prompts, 1)
	assert.Contains(t, generator.prompts[0], strings.Repeat("x", maxPromptChars)+"...")
	assert.NotContains(t, generator.prompts[0], strings.Repeat("x", maxPromptChars+1))
}

func TestSubmitAttemptScoresBySetEquality(t *testing.T) {
	generator := &fakeGenerator{responses: []string{`{
  "questions": [
    {
      "content": "Select every preemptive scheduler.",
      "options": {"a": "RR", "b": "FIFO", "c": "MLFQ", "d": "SJF"},
      "correct_answers": ["a", "c"],
      "explanation": "RR and MLFQ preempt."
    },
    {
      "content": "Select the FIFO property.",
      "options": {"a": "preemption", "b": "arrival order"},
      "correct_answers": ["b"],
      "explanation": "FIFO runs jobs in arrival order."
    }
  ]
}`}}
	svc, repo, material, runner, _ := newQuizFixture(t, generator)

	quiz, err := svc.TriggerGeneration(context.Background(), material.ID, QuizParams{QuestionType: models.QuestionTypeMultiSelect})
	require.NoError(t, err)
	runner.Wait()

	stored, err := repo.GetWithQuestions(quiz.ID)
	require.NoError(t, err)
	require.Len(t, stored.Questions, 2)

	// Order of selected tokens must not matter; a partial selection scores zero.
	attempt, err := svc.SubmitAttempt(quiz.ID, map[string][]string{
		stored.Questions[0].ID.String(): {"c", "a"},
		stored.Questions[1].ID.String(): {"a", "b"},
	})
	require.NoError(t, err)
	assert.Equal(t, 1, attempt.CorrectCount)
	assert.Equal(t, 2, attempt.TotalCount)
	assert.InDelta(t, 0.5, attempt.Score, 0.001)
}

func TestSubmitAttemptRequiresCompletedQuiz(t *testing.T) {
	generator := &fakeGenerator{err: context.DeadlineExceeded}
	svc, _, material, runner, _ := newQuizFixture(t, generator)

	quiz, err := svc.TriggerGeneration(context.Background(), material.ID, QuizParams{})
	require.NoError(t, err)
	runner.Wait()

	_, err = svc.SubmitAttempt(quiz.ID, map[string][]string{})
	assert.ErrorIs(t, err, ErrQuizNotReady)
}

func TestSubmitAttemptUnknownQuiz(t *testing.T) {
	svc, _, _, _, _ := newQuizFixture(t, &fakeGenerator{})

	_, err := svc.SubmitAttempt(uuid.New(), map[string][]string{})
	assert.ErrorIs(t, err, ErrQuizNotFound)
}

func TestQuizReadsFoldLegacyStatusSpelling(t *testing.T) {
	db := newTestDB(t)
	session := seedSession(t, db)
	material := seedMaterial(t, db, session.ID, models.MaterialStatusCompleted, "content")

	// Rows written before the status vocabulary settled used "ready".
	quiz := &models.Quiz{
		MaterialID:   material.ID,
		Title:        "Old quiz",
		NumQuestions: 1,
		Difficulty:   models.DifficultyMedium,
		QuestionType: models.QuestionTypeMultipleChoice,
		Status:       "ready",
	}
	require.NoError(t, db.Create(quiz).Error)
	question := &models.Question{
		QuizID:         quiz.ID,
		Position:       0,
		Type:           models.QuestionTypeMultipleChoice,
		Content:        "Pick a.",
		CorrectAnswers: datatypes.JSON(`["a"]`),
	}
	require.NoError(t, db.Create(question).Error)

	svc := NewQuizService(repository.NewQuizRepository(db), repository.NewMaterialRepository(db), &fakeGenerator{}, NewRunner(newTestLogger()), &recordingPublisher{}, newTestLogger())

	stored, err := svc.GetByID(quiz.ID)
	require.NoError(t, err)
	assert.Equal(t, models.ArtifactStatusCompleted, stored.Status)

	attempt, err := svc.SubmitAttempt(quiz.ID, map[string][]string{question.ID.String(): {"a"}})
	require.NoError(t, err)
	assert.Equal(t, 1, attempt.CorrectCount)
}

func TestParseQuestionsAcceptsSingularCorrectAnswer(t *testing.T) {
	questions, err := parseQuestions(`{"questions":[{"content":"Q","correct_answer":"a","explanation":"E"}]}`, uuid.New(), models.QuestionTypeShortAnswer)
	require.NoError(t, err)
	require.Len(t, questions, 1)
	assert.JSONEq(t, `["a"]`, string(questions[0].CorrectAnswers))
}

func TestParseQuestionsRejectsEmptyContent(t *testing.T) {
	_, err := parseQuestions(`{"questions":[{"content":"  ","correct_answers":["a"]}]}`, uuid.New(), models.QuestionTypeMultipleChoice)
	assert.Error(t, err)
}

func TestTokenSetsEqual(t *testing.T) {
	assert.True(t, tokenSetsEqual([]string{"A", " b"}, []string{"b", "a"}))
	assert.False(t, tokenSetsEqual([]string{"a"}, []string{"a", "b"}))
	assert.False(t, tokenSetsEqual(nil, []string{"a"}))
	assert.False(t, tokenSetsEqual([]string{"a"}, nil))
}
