// Package submission drives one problem view: showing test cases, composing a
// solution, dispatching it to the judge and receiving the verdict.
package submission

import (
	"context"
	"maps"
	"sync"

	"contesthub/internal/model"
	pkgerrors "contesthub/pkg/errors"
	"contesthub/pkg/utils/contextkey"
	"contesthub/pkg/utils/logger"

	"go.uber.org/zap"
)

// State of a problem view.
type State int

const (
	Viewing State = iota
	Composing
	Pending
	Resolved
	// Failed holds the error of the last dispatch: transport, server or malformed reply.
	Failed
)

func (s State) String() string {
	switch s {
	case Viewing:
		return "viewing"
	case Composing:
		return "composing"
	case Pending:
		return "pending"
	case Resolved:
		return "resolved"
	case Failed:
		return "failed"
	}
	return "unknown"
}

// Judge grades submissions. judgeclient.Client implements it.
type Judge interface {
	Submit(ctx context.Context, contestID, username string, req model.SubmitRequest) (model.VerdictOutcome, error)
}

// IdentityReader yields the identity attached to submissions.
type IdentityReader interface {
	Current() model.Identity
}

// Clipboard receives copied test case text.
type Clipboard interface {
	Copy(text string) error
}

// Part selects the side of a test case.
type Part int

const (
	PartInput Part = iota
	PartOutput
)

// Snapshot is a point-in-time copy of a session.
type Snapshot struct {
	State      State
	Problem    *model.Problem
	Submission model.Submission
	Err        error
	TaskID     string
}

// Session is the state machine of one problem view. At most one task's
// result is tracked at a time.
type Session struct {
	contestID string
	identity  IdentityReader
	judge     Judge

	mu         sync.Mutex
	state      State
	beforeEdit State
	problem    *model.Problem
	submission model.Submission
	err        error
	task       *Task
	closed     bool
}

func NewSession(contestID string, identity IdentityReader, judge Judge) *Session {
	return &Session{
		contestID: contestID,
		identity:  identity,
		judge:     judge,
		state:     Viewing,
	}
}

func (s *Session) ContestID() string { return s.contestID }

// SelectProblem switches the view to p and resets everything captured for the previous problem.
func (s *Session) SelectProblem(p model.Problem) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.discardLocked()
	cp := p
	cp.TestCases = append([]model.TestCase(nil), p.TestCases...)
	s.problem = &cp
	s.state = Viewing
	s.beforeEdit = Viewing
	s.submission = model.Submission{}
	s.err = nil
}

// OpenCompose opens the single compose dialog.
func (s *Session) OpenCompose() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return pkgerrors.TransitionError("compose", "closed")
	}
	if s.problem == nil {
		return pkgerrors.New(pkgerrors.ProblemNotSelected)
	}
	if s.state == Composing {
		return pkgerrors.TransitionError("compose", s.state.String())
	}
	s.beforeEdit = s.state
	s.state = Composing
	return nil
}

// CancelCompose closes the dialog and restores the state it was opened from.
func (s *Session) CancelCompose() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.state != Composing {
		return pkgerrors.TransitionError("cancel", s.state.String())
	}
	s.state = s.beforeEdit
	return nil
}

// Confirm dispatches solution for the selected problem and returns without
// waiting for the verdict. Without an identity the dialog stays open and a
// LoginRequired error is returned.
func (s *Session) Confirm(ctx context.Context, solution string) (*Task, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return nil, pkgerrors.TransitionError("submit", "closed")
	}
	if s.state != Composing {
		return nil, pkgerrors.TransitionError("submit", s.state.String())
	}
	who := s.identity.Current()
	if !who.LoggedIn() {
		return nil, pkgerrors.LoginRequiredError("submit")
	}

	s.discardLocked()
	s.submission = model.Submission{}
	s.err = nil

	taskCtx := contextkey.WithContestID(context.WithoutCancel(ctx), s.contestID)
	taskCtx = contextkey.WithUsername(taskCtx, who.Username)
	taskCtx, cancel := context.WithCancel(taskCtx)
	task := newTask(cancel)
	s.task = task
	s.state = Pending

	req := model.SubmitRequest{
		Type:     model.SubmissionKindCS,
		PID:      s.problem.ID,
		Solution: solution,
	}
	logger.Info(taskCtx, "submission dispatched", zap.String("task_id", task.id), zap.String("pid", req.PID))

	go func() {
		defer close(task.done)
		defer cancel()
		outcome, err := s.judge.Submit(taskCtx, s.contestID, who.Username, req)
		s.apply(taskCtx, task, outcome, err)
	}()
	return task, nil
}

func (s *Session) apply(ctx context.Context, task *Task, outcome model.VerdictOutcome, err error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if task.Discarded() || s.task != task {
		logger.Debug(ctx, "submission result dropped", zap.String("task_id", task.id), zap.Error(err))
		return
	}

	if err != nil {
		logger.Warn(ctx, "submission failed", zap.String("task_id", task.id), zap.Error(err))
		s.err = err
		s.state = Failed
		return
	}

	switch outcome.Kind {
	case model.OutcomeResolved:
		s.submission = outcome.Submission
		s.state = Resolved
		logger.Info(ctx, "verdict received",
			zap.String("task_id", task.id),
			zap.String("submission_id", outcome.Submission.ID.String()),
			zap.String("verdict", outcome.Submission.Verdict),
		)
	case model.OutcomeMalformed:
		s.err = outcome.MalformedError()
		s.state = Failed
		logger.Warn(ctx, "malformed verdict response", zap.String("task_id", task.id), zap.ByteString("raw", outcome.Raw))
	default:
		logger.Debug(ctx, "verdict not yet available", zap.String("task_id", task.id))
	}
}

// Close tears the view down. An outstanding task is discarded and an open
// dialog is dropped.
func (s *Session) Close() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.discardLocked()
	s.closed = true
	s.state = Viewing
	s.beforeEdit = Viewing
}

func (s *Session) discardLocked() {
	if s.task != nil {
		s.task.Discard()
		s.task = nil
	}
}

func (s *Session) Snapshot() Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()
	snap := Snapshot{
		State:      s.state,
		Submission: s.submission,
		Err:        s.err,
	}
	snap.Submission.Fields = maps.Clone(s.submission.Fields)
	if s.problem != nil {
		p := *s.problem
		p.TestCases = append([]model.TestCase(nil), s.problem.TestCases...)
		snap.Problem = &p
	}
	if s.task != nil && s.state == Pending {
		snap.TaskID = s.task.id
	}
	return snap
}

// CopyTestCase puts one side of test case index (zero based) on the clipboard.
// Failures are logged and reported only through the return value.
func (s *Session) CopyTestCase(clip Clipboard, index int, part Part) bool {
	s.mu.Lock()
	var text string
	ok := s.problem != nil && index >= 0 && index < len(s.problem.TestCases)
	if ok {
		tc := s.problem.TestCases[index]
		text = tc.Input
		if part == PartOutput {
			text = tc.Output
		}
	}
	s.mu.Unlock()

	ctx := contextkey.WithContestID(context.Background(), s.contestID)
	if !ok {
		logger.Debug(ctx, "no such test case", zap.Int("index", index))
		return false
	}
	if err := clip.Copy(text); err != nil {
		logger.Warn(ctx, "copy to clipboard failed", zap.Error(err))
		return false
	}
	return true
}
