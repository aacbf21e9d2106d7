package contest

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"contesthub/internal/model"
	pkgerrors "contesthub/pkg/errors"
	"contesthub/pkg/utils/logger"

	"go.uber.org/zap"
)

// ContestSource delivers the approved contest list.
type ContestSource interface {
	ApprovedContests(ctx context.Context) ([]model.Contest, error)
}

// IdentityReader exposes the current identity for gate checks.
type IdentityReader interface {
	Current() model.Identity
}

// Action is a user action offered by the catalog.
type Action string

const (
	ActionNone          Action = ""
	ActionCreateContest Action = "create-contest"
	ActionParticipate   Action = "participate"
	ActionView          Action = "view"
)

// Decision is the outcome of a gate check.
type Decision int

const (
	Allowed Decision = iota
	PromptLogin
)

func (d Decision) String() string {
	if d == Allowed {
		return "allowed"
	}
	return "prompt-login"
}

// Row is one classified contest in a tab view.
type Row struct {
	Contest   model.Contest
	Status    Status
	Begin     string
	Length    string
	Countdown string // upcoming rows only
	Action    Action
}

// Catalog holds the contest snapshot loaded at activation and derives tab views
// from it against a live clock.
type Catalog struct {
	source   ContestSource
	identity IdentityReader
	now      func() time.Time

	// loadMu serialises activations; loaded is set only after a successful fetch.
	loadMu sync.Mutex
	loaded bool

	mu       sync.RWMutex
	contests []model.Contest
}

// CatalogOption customises a Catalog.
type CatalogOption func(*Catalog)

// WithClock replaces time.Now.
func WithClock(now func() time.Time) CatalogOption {
	return func(c *Catalog) {
		if now != nil {
			c.now = now
		}
	}
}

// NewCatalog builds a catalog. identity may be nil, in which case every gate prompts for login.
func NewCatalog(source ContestSource, identity IdentityReader, opts ...CatalogOption) *Catalog {
	c := &Catalog{
		source:   source,
		identity: identity,
		now:      time.Now,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Activate fetches the contest list on first success. Later calls keep that
// snapshot; after a failed fetch the next call tries again.
func (c *Catalog) Activate(ctx context.Context) error {
	c.loadMu.Lock()
	defer c.loadMu.Unlock()
	if c.loaded {
		return nil
	}
	contests, err := c.source.ApprovedContests(ctx)
	if err != nil {
		logger.Error(ctx, "fetch contest list failed", zap.Error(err))
		return pkgerrors.Wrapf(err, pkgerrors.ContestFetchFailed, "fetch contests failed: %v", err)
	}
	c.mu.Lock()
	c.contests = append([]model.Contest(nil), contests...)
	c.mu.Unlock()
	c.loaded = true
	logger.Info(ctx, "contest list loaded", zap.Int("count", len(contests)))
	return nil
}

// Contests returns a copy of the loaded snapshot.
func (c *Catalog) Contests() []model.Contest {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return append([]model.Contest(nil), c.contests...)
}

// Find looks a contest up by id in the snapshot.
func (c *Catalog) Find(id string) (model.Contest, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	for _, ct := range c.contests {
		if ct.ID == id {
			return ct, true
		}
	}
	return model.Contest{}, false
}

// StatusOf classifies a contest against the catalog clock.
func (c *Catalog) StatusOf(ct model.Contest) Status {
	return Classify(c.now(), ct.StartTime, ct.EndTime)
}

// View classifies the snapshot against the current time, keeps the tab's
// contests whose title matches query, and renders the row values.
func (c *Catalog) View(tab Status, query string) []Row {
	now := c.now()
	matched := FilterByTitle(FilterByStatus(c.Contests(), now, tab), query)
	rows := make([]Row, 0, len(matched))
	for _, ct := range matched {
		row := Row{
			Contest: ct,
			Status:  tab,
			Begin:   FormatBegin(ct.StartTime),
			Length:  Length(ct.StartTime, ct.EndTime),
		}
		switch tab {
		case StatusUpcoming:
			row.Countdown = Countdown(ct.StartTime, now)
		case StatusRunning:
			row.Action = ActionParticipate
		case StatusPrevious:
			row.Action = ActionView
		}
		rows = append(rows, row)
	}
	return rows
}

// Gate decides whether action may proceed for the current identity.
// Creating and participating need a username; viewing never does.
func (c *Catalog) Gate(action Action) Decision {
	switch action {
	case ActionCreateContest, ActionParticipate:
		if c.identity == nil || !c.identity.Current().LoggedIn() {
			return PromptLogin
		}
	}
	return Allowed
}

// ParticipatePath returns the participation target for a contest, or PromptLogin.
func (c *Catalog) ParticipatePath(contestID string) (string, Decision) {
	if c.Gate(ActionParticipate) == PromptLogin {
		return "", PromptLogin
	}
	return fmt.Sprintf("/participate/%s/%s", contestID, c.identity.Current().Username), Allowed
}

// ViewPath returns the read-only target for a finished contest.
func ViewPath(contestID string) string {
	return "/contest/" + contestID
}

// FilterByStatus keeps contests whose status at now equals status, in source order.
func FilterByStatus(contests []model.Contest, now time.Time, status Status) []model.Contest {
	out := make([]model.Contest, 0, len(contests))
	for _, ct := range contests {
		if Classify(now, ct.StartTime, ct.EndTime) == status {
			out = append(out, ct)
		}
	}
	return out
}

// FilterByTitle keeps contests whose title contains query, ignoring case.
// An empty query returns a copy of the input.
func FilterByTitle(contests []model.Contest, query string) []model.Contest {
	out := make([]model.Contest, 0, len(contests))
	if query == "" {
		return append(out, contests...)
	}
	q := strings.ToLower(query)
	for _, ct := range contests {
		if strings.Contains(strings.ToLower(ct.Title), q) {
			out = append(out, ct)
		}
	}
	return out
}
