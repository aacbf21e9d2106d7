package repl

import (
	"context"
	"errors"
	"fmt"
	"io"
	"sort"
	"strings"
	"time"

	"contesthub/internal/cli/command"
	"contesthub/internal/cli/config"
	"contesthub/internal/contest"
	"contesthub/internal/identity"
	"contesthub/internal/judgeclient"
	"contesthub/internal/model"
	"contesthub/internal/registration"
	"contesthub/internal/submission"
	pkgerrors "contesthub/pkg/errors"
	"contesthub/pkg/utils/contextkey"
	"contesthub/pkg/utils/logger"

	"github.com/dustin/go-humanize"
	"go.uber.org/zap"
)

// ErrExit is returned by Execute when the user asked to leave.
var ErrExit = errors.New("exit")

const loginPrompt = "Please log in first: login <username> [role]"

// Prompter reads interactive input.
type Prompter interface {
	Prompt(label string) (string, error)
	Password(label string) (string, error)
	// ReadBlock reads lines until a line holding a single ".".
	ReadBlock(label string) (string, error)
}

// Deps are the collaborators of a REPL session.
type Deps struct {
	Client    *judgeclient.Client
	Identity  *identity.Session
	Catalog   *contest.Catalog
	Registrar *registration.Registrar
	Clipboard submission.Clipboard
	Prompter  Prompter
	Config    config.Config
	Out       io.Writer
}

// Session holds REPL state: the catalog snapshot and, once a contest is
// entered, its problems and the view of the selected problem.
type Session struct {
	deps     Deps
	commands map[string]command.Command

	contestID string
	problems  []model.Problem
	view      *submission.Session
}

func New(deps Deps) *Session {
	return &Session{deps: deps, commands: command.Registry()}
}

// Close tears down the current problem view.
func (s *Session) Close() {
	if s.view != nil {
		s.view.Close()
		s.view = nil
	}
}

// Run reads and executes lines until exit or end of input.
func (s *Session) Run(ctx context.Context, next func() (string, error)) {
	defer s.Close()
	for {
		line, err := next()
		if err != nil {
			if !errors.Is(err, io.EOF) {
				s.printLine("read input failed: %v", err)
			}
			return
		}
		if err := s.Execute(ctx, line); err != nil {
			if errors.Is(err, ErrExit) {
				s.printLine("bye")
				return
			}
			s.printLine("error: %v", err)
		}
	}
}

// Execute runs one input line.
func (s *Session) Execute(ctx context.Context, line string) error {
	parsed, ok, err := command.Parse(s.commands, line)
	if err != nil || !ok {
		return err
	}
	args := parsed.Args
	ctx = contextkey.WithUsername(ctx, s.deps.Identity.Current().Username)
	ctx = contextkey.WithContestID(ctx, s.contestID)
	logger.Debug(ctx, "command", zap.String("name", parsed.Command.Name), zap.Int("args", len(args)))

	switch parsed.Command.Name {
	case "login":
		role := ""
		if len(args) > 1 {
			role = args[1]
		}
		return s.login(ctx, args[0], role)
	case "logout":
		return s.logout(ctx)
	case "whoami":
		s.whoami()
	case "contests":
		return s.contests(ctx, args)
	case "create-contest":
		s.createContest()
	case "participate":
		return s.participate(ctx, args[0])
	case "view":
		return s.viewContest(ctx, args[0])
	case "problems":
		return s.listProblems()
	case "problem":
		return s.selectProblem(args[0])
	case "copy":
		return s.copy(args[0], args[1])
	case "submit":
		return s.submit(ctx, args)
	case "status":
		return s.status()
	case "register":
		return s.register(ctx)
	case "set":
		return s.set(args[0], args[1])
	case "show":
		return s.show(args[0])
	case "help":
		s.printHelp()
	case "exit":
		return ErrExit
	}
	return nil
}

func (s *Session) login(ctx context.Context, username, role string) error {
	if err := s.deps.Identity.Login(ctx, username, role); err != nil {
		return err
	}
	s.printLine("logged in as %s", username)
	return nil
}

func (s *Session) logout(ctx context.Context) error {
	if err := s.deps.Identity.Logout(ctx); err != nil {
		return err
	}
	s.printLine("logged out")
	return nil
}

func (s *Session) whoami() {
	who := s.deps.Identity.Current()
	if !who.LoggedIn() {
		s.printLine("not logged in")
		return
	}
	if who.Role == "" {
		s.printLine("%s", who.Username)
		return
	}
	s.printLine("%s (%s)", who.Username, who.Role)
}

func (s *Session) contests(ctx context.Context, args []string) error {
	if err := s.deps.Catalog.Activate(ctx); err != nil {
		return err
	}
	tab := contest.StatusUpcoming
	if len(args) > 0 {
		if parsed, err := contest.ParseStatus(args[0]); err == nil {
			tab = parsed
			args = args[1:]
		}
	}
	query := strings.Join(args, " ")

	rows := s.deps.Catalog.View(tab, query)
	if len(rows) == 0 {
		s.printLine("no %s contests", tab)
		return nil
	}
	for _, row := range rows {
		var extra string
		switch row.Action {
		case contest.ActionParticipate:
			extra = "participate " + row.Contest.ID
		case contest.ActionView:
			extra = "view " + row.Contest.ID
		default:
			extra = "starts in " + row.Countdown
		}
		s.printLine("%-10s %-30s %-16s %-9s %-14s %s",
			row.Contest.ID, row.Contest.Title, row.Begin, row.Length, row.Contest.Author.Name, extra)
	}
	return nil
}

func (s *Session) createContest() {
	if s.deps.Catalog.Gate(contest.ActionCreateContest) == contest.PromptLogin {
		s.printLine("%s", loginPrompt)
		return
	}
	s.printLine("contest creation goes through the admin console at %s/create-contest", s.deps.Client.BaseURL())
}

func (s *Session) participate(ctx context.Context, contestID string) error {
	if err := s.deps.Catalog.Activate(ctx); err != nil {
		return err
	}
	ct, ok := s.deps.Catalog.Find(contestID)
	if !ok {
		return pkgerrors.New(pkgerrors.ContestNotFound).WithDetail("contestId", contestID)
	}
	path, decision := s.deps.Catalog.ParticipatePath(contestID)
	if decision == contest.PromptLogin {
		s.printLine("%s", loginPrompt)
		return nil
	}
	if status := s.deps.Catalog.StatusOf(ct); status != contest.StatusRunning {
		return pkgerrors.Newf(pkgerrors.ContestNotRunning, "contest %s is %s", contestID, status)
	}

	problems, err := s.deps.Client.ContestProblems(ctx, contestID)
	if err != nil {
		return err
	}
	s.Close()
	s.contestID = contestID
	s.problems = problems
	s.view = submission.NewSession(contestID, s.deps.Identity, s.deps.Client)

	s.printLine("entered %s (%s)", ct.Title, path)
	return s.listProblems()
}

func (s *Session) viewContest(ctx context.Context, contestID string) error {
	if err := s.deps.Catalog.Activate(ctx); err != nil {
		return err
	}
	ct, ok := s.deps.Catalog.Find(contestID)
	if !ok {
		return pkgerrors.New(pkgerrors.ContestNotFound).WithDetail("contestId", contestID)
	}
	s.printLine("%s %s", contest.ViewPath(ct.ID), ct.Title)
	s.printLine("  by %s, %s for %s (%s)", ct.Author.Name,
		contest.FormatBegin(ct.StartTime), contest.Length(ct.StartTime, ct.EndTime), s.deps.Catalog.StatusOf(ct))
	return nil
}

func (s *Session) listProblems() error {
	if s.view == nil {
		return fmt.Errorf("no contest entered, use: participate <contestId>")
	}
	if len(s.problems) == 0 {
		s.printLine("no problems yet")
		return nil
	}
	for _, p := range s.problems {
		s.printLine("  %-6s %s", p.ID, p.Title)
	}
	return nil
}

func (s *Session) selectProblem(pid string) error {
	if s.view == nil {
		return fmt.Errorf("no contest entered, use: participate <contestId>")
	}
	for _, p := range s.problems {
		if p.ID != pid {
			continue
		}
		s.view.SelectProblem(p)
		s.renderProblem(p)
		return nil
	}
	return pkgerrors.Newf(pkgerrors.NotFound, "problem %s not found", pid)
}

func (s *Session) renderProblem(p model.Problem) {
	s.printLine("%s. %s", p.ID, p.Title)
	s.printLine("")
	s.printLine("%s", p.Description)
	s.printLine("")
	s.printLine("Constraints:")
	for _, line := range p.ConstraintLines() {
		s.printLine("  %s", line)
	}
	for i, tc := range p.TestCases {
		s.printLine("")
		s.printLine("Test case %d input:", i+1)
		for _, line := range tc.InputLines() {
			s.printLine("  %s", line)
		}
		s.printLine("Test case %d output:", i+1)
		for _, line := range tc.OutputLines() {
			s.printLine("  %s", line)
		}
	}
}

func (s *Session) copy(position, part string) error {
	if s.view == nil {
		return fmt.Errorf("no contest entered, use: participate <contestId>")
	}
	index, err := command.ParseIndex(position)
	if err != nil {
		return err
	}
	var which submission.Part
	switch strings.ToLower(part) {
	case "input", "in":
		which = submission.PartInput
	case "output", "out":
		which = submission.PartOutput
	default:
		return fmt.Errorf("usage: copy <n> input|output")
	}
	if s.view.CopyTestCase(s.deps.Clipboard, index, which) {
		s.printLine("copied")
	}
	return nil
}

func (s *Session) submit(ctx context.Context, args []string) error {
	if s.view == nil {
		return fmt.Errorf("no contest entered, use: participate <contestId>")
	}
	if err := s.view.OpenCompose(); err != nil {
		return err
	}

	var solution string
	var err error
	if len(args) == 1 {
		solution, err = command.ReadFile(args[0])
	} else {
		solution, err = s.deps.Prompter.ReadBlock("solution (end with a single '.')")
	}
	if err != nil {
		_ = s.view.CancelCompose()
		return err
	}

	task, err := s.view.Confirm(ctx, solution)
	if err != nil {
		_ = s.view.CancelCompose()
		if pkgerrors.Is(err, pkgerrors.LoginRequired) {
			s.printLine("%s", loginPrompt)
			return nil
		}
		return err
	}
	s.printLine("submitted (%s); check with: status", task.ID())
	return nil
}

func (s *Session) status() error {
	if s.view == nil {
		return fmt.Errorf("no contest entered, use: participate <contestId>")
	}
	snap := s.view.Snapshot()
	if snap.Problem == nil {
		s.printLine("no problem selected")
		return nil
	}
	s.printLine("%s. %s: %s", snap.Problem.ID, snap.Problem.Title, snap.State)
	switch snap.State {
	case submission.Pending:
		if snap.TaskID != "" {
			s.printLine("  waiting for verdict (%s)", snap.TaskID)
		}
	case submission.Resolved:
		sub := snap.Submission
		s.printLine("  verdict:  %s", sub.Verdict)
		s.printLine("  id:       %s", sub.ID)
		s.printLine("  tests:    %d passed (%s)", sub.PassedTestCount, sub.Testset)
		s.printLine("  time:     %d ms", sub.TimeConsumedMillis)
		s.printLine("  memory:   %s", humanize.Bytes(uint64(max(sub.MemoryConsumedBytes, 0))))
		s.printLine("  points:   %g", sub.Points)
		s.printLine("  at:       %s into the contest", time.Duration(sub.RelativeTimeSeconds)*time.Second)
		if sub.CreationTimeSeconds > 0 {
			s.printLine("  sent:     %s", humanize.Time(time.Unix(sub.CreationTimeSeconds, 0)))
		}
	case submission.Failed:
		s.printLine("  %v", snap.Err)
	}
	return nil
}

func (s *Session) register(ctx context.Context) error {
	var form registration.Form
	fields := []struct {
		label  string
		secret bool
		target *string
	}{
		{"username", false, &form.Username},
		{"email", false, &form.Email},
		{"pin code", false, &form.PinCode},
		{"password", true, &form.Password},
		{"confirm password", true, &form.ConfirmPassword},
	}
	for _, f := range fields {
		var value string
		var err error
		if f.secret {
			value, err = s.deps.Prompter.Password(f.label)
		} else {
			value, err = s.deps.Prompter.Prompt(f.label)
		}
		if err != nil {
			return err
		}
		*f.target = strings.TrimSpace(value)
	}

	errs := s.deps.Registrar.Register(ctx, form)
	if len(errs) == 0 {
		s.printLine("registered %s", form.Username)
		return nil
	}
	keys := make([]string, 0, len(errs))
	for k := range errs {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		s.printLine("  %s: %s", k, errs[k])
	}
	return nil
}

func (s *Session) set(key, value string) error {
	switch key {
	case "base":
		s.deps.Client.SetBaseURL(value)
		s.printLine("base set to %s", s.deps.Client.BaseURL())
	case "timeout":
		dur, err := time.ParseDuration(value)
		if err != nil {
			return fmt.Errorf("invalid duration: %w", err)
		}
		if dur <= 0 {
			return fmt.Errorf("timeout must be positive")
		}
		s.deps.Client.SetTimeout(dur)
		s.printLine("timeout set to %s", dur)
	default:
		return fmt.Errorf("usage: set base|timeout <value>")
	}
	return nil
}

func (s *Session) show(what string) error {
	if what != "config" {
		return fmt.Errorf("usage: show config")
	}
	cfg := s.deps.Config
	s.printLine("baseURL:     %s", s.deps.Client.BaseURL())
	s.printLine("timeout:     %s", s.deps.Client.Timeout())
	s.printLine("identity:    %s", cfg.Identity.Driver)
	switch cfg.Identity.Driver {
	case config.DriverFile:
		s.printLine("  path:      %s", cfg.Identity.Path)
	case config.DriverRedis:
		s.printLine("  addr:      %s", cfg.Identity.Redis.Addr)
		s.printLine("  keyPrefix: %s", cfg.Identity.Redis.KeyPrefix)
	}
	s.printLine("historyFile: %s", cfg.HistoryFile)
	return nil
}

func (s *Session) printHelp() {
	for _, cmd := range command.Sorted(s.commands) {
		marker := " "
		if cmd.RequiresAuth {
			marker = "*"
		}
		s.printLine("%s %-50s %s", marker, cmd.Usage, cmd.Summary)
	}
	s.printLine("* needs login")
}

func (s *Session) printLine(format string, args ...interface{}) {
	_, _ = fmt.Fprintf(s.deps.Out, format+"\n", args...)
}
