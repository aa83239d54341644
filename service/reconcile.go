package service

import (
	"github.com/sirupsen/logrus"

	"github.com/studyloft/studyloft/models"
	"github.com/studyloft/studyloft/repository"
)

const restartFailureMessage = "interrupted by restart"

// Reconciler marks records orphaned by a crash or restart as failed. Detached
// tasks live only in process memory, so anything still non-terminal at startup
// has no owner and would otherwise be stuck pending forever.
type Reconciler struct {
	materials repository.MaterialRepository
	quizzes   repository.QuizRepository
	decks     repository.DeckRepository
	summaries repository.SummaryRepository
	lectures  repository.LectureRepository
	logger    *logrus.Logger
}

func NewReconciler(
	materials repository.MaterialRepository,
	quizzes repository.QuizRepository,
	decks repository.DeckRepository,
	summaries repository.SummaryRepository,
	lectures repository.LectureRepository,
	logger *logrus.Logger,
) *Reconciler {
	return &Reconciler{
		materials: materials,
		quizzes:   quizzes,
		decks:     decks,
		summaries: summaries,
		lectures:  lectures,
		logger:    logger,
	}
}

// Sweep runs once at startup, before the HTTP server begins accepting
// triggers. It returns the number of records it failed over.
func (r *Reconciler) Sweep() (int, error) {
	swept := 0

	stuckMaterials, err := r.materials.GetByStatus([]string{models.MaterialStatusPending, models.MaterialStatusProcessing})
	if err != nil {
		return swept, err
	}
	for _, m := range stuckMaterials {
		if err := r.materials.FailExtraction(m.ID, models.MaterialStatusFailed, restartFailureMessage); err != nil {
			r.logger.Errorf("reconcile material %s: %v", m.ID, err)
			continue
		}
		r.logger.Warnf("marked orphaned material %s failed (was %s)", m.ID, m.Status)
		swept++
	}

	pendingChain := []string{models.ArtifactStatusPending, models.ArtifactStatusProcessing, models.ArtifactStatusGeneratingAudio}

	quizzes, err := r.quizzes.GetByStatus(pendingChain)
	if err != nil {
		return swept, err
	}
	for _, q := range quizzes {
		if err := r.quizzes.Fail(q.ID, restartFailureMessage); err != nil {
			r.logger.Errorf("reconcile quiz %s: %v", q.ID, err)
			continue
		}
		r.logger.Warnf("marked orphaned quiz %s failed (was %s)", q.ID, q.Status)
		swept++
	}

	decks, err := r.decks.GetByStatus(pendingChain)
	if err != nil {
		return swept, err
	}
	for _, d := range decks {
		if err := r.decks.Fail(d.ID, restartFailureMessage); err != nil {
			r.logger.Errorf("reconcile deck %s: %v", d.ID, err)
			continue
		}
		r.logger.Warnf("marked orphaned deck %s failed (was %s)", d.ID, d.Status)
		swept++
	}

	summaries, err := r.summaries.GetByStatus(pendingChain)
	if err != nil {
		return swept, err
	}
	for _, sm := range summaries {
		if err := r.summaries.Fail(sm.ID, restartFailureMessage); err != nil {
			r.logger.Errorf("reconcile summary %s: %v", sm.ID, err)
			continue
		}
		r.logger.Warnf("marked orphaned summary %s failed (was %s)", sm.ID, sm.Status)
		swept++
	}

	lectures, err := r.lectures.GetByStatus(pendingChain)
	if err != nil {
		return swept, err
	}
	for _, l := range lectures {
		if err := r.lectures.Fail(l.ID, restartFailureMessage); err != nil {
			r.logger.Errorf("reconcile lecture %s: %v", l.ID, err)
			continue
		}
		r.logger.Warnf("marked orphaned lecture %s failed (was %s)", l.ID, l.Status)
		swept++
	}

	return swept, nil
}
