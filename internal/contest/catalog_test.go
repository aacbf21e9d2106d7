package contest

import (
	"context"
	"errors"
	"testing"
	"time"

	"contesthub/internal/model"
	"contesthub/internal/testutil"
	pkgerrors "contesthub/pkg/errors"
)

type fakeSource struct {
	contests []model.Contest
	err      error
	calls    int
}

func (f *fakeSource) ApprovedContests(ctx context.Context) ([]model.Contest, error) {
	f.calls++
	return f.contests, f.err
}

type fixedIdentity model.Identity

func (f fixedIdentity) Current() model.Identity { return model.Identity(f) }

func contestAt(id, title string, start time.Time, length time.Duration) model.Contest {
	return model.Contest{
		ID:        id,
		Title:     title,
		StartTime: start,
		EndTime:   start.Add(length),
		Author:    model.Author{Name: "setter"},
	}
}

func titles(contests []model.Contest) []string {
	out := make([]string, 0, len(contests))
	for _, c := range contests {
		out = append(out, c.Title)
	}
	return out
}

func TestFilterByStatusKeepsSourceOrder(t *testing.T) {
	now := base
	contests := []model.Contest{
		contestAt("1", "Later Cup", now.Add(3*time.Hour), time.Hour),
		contestAt("2", "Live A", now.Add(-time.Hour), 2*time.Hour),
		contestAt("3", "Old", now.Add(-48*time.Hour), time.Hour),
		contestAt("4", "Soon Cup", now.Add(time.Hour), time.Hour),
		contestAt("5", "Live B", now, time.Hour),
	}

	testutil.AssertEqual(t, titles(FilterByStatus(contests, now, StatusUpcoming)), []string{"Later Cup", "Soon Cup"})
	testutil.AssertEqual(t, titles(FilterByStatus(contests, now, StatusRunning)), []string{"Live A", "Live B"})
	testutil.AssertEqual(t, titles(FilterByStatus(contests, now, StatusPrevious)), []string{"Old"})

	total := 0
	for _, s := range Statuses {
		total += len(FilterByStatus(contests, now, s))
	}
	testutil.AssertEqual(t, total, len(contests))
}

func TestFilterByTitle(t *testing.T) {
	contests := []model.Contest{
		contestAt("1", "Weekly Round 12", base, time.Hour),
		contestAt("2", "Div. 2 ROUND", base, time.Hour),
		contestAt("3", "Marathon", base, time.Hour),
	}

	t.Run("case insensitive substring", func(t *testing.T) {
		testutil.AssertEqual(t, titles(FilterByTitle(contests, "round")), []string{"Weekly Round 12", "Div. 2 ROUND"})
	})

	t.Run("empty query is identity", func(t *testing.T) {
		testutil.AssertEqual(t, FilterByTitle(contests, ""), contests)
	})

	t.Run("idempotent", func(t *testing.T) {
		for _, q := range []string{"", "round", "MARA", "zzz"} {
			once := FilterByTitle(contests, q)
			twice := FilterByTitle(once, q)
			testutil.AssertEqual(t, twice, once)
		}
	})

	t.Run("does not alias input", func(t *testing.T) {
		out := FilterByTitle(contests, "")
		out[0].Title = "changed"
		testutil.AssertEqual(t, contests[0].Title, "Weekly Round 12")
	})
}

func TestActivateFetchesOnce(t *testing.T) {
	src := &fakeSource{contests: []model.Contest{contestAt("1", "A", base, time.Hour)}}
	cat := NewCatalog(src, nil)

	testutil.MustNoError(t, cat.Activate(context.Background()))
	testutil.MustNoError(t, cat.Activate(context.Background()))
	testutil.AssertEqual(t, src.calls, 1)
	testutil.AssertEqual(t, len(cat.Contests()), 1)

	found, ok := cat.Find("1")
	testutil.AssertTrue(t, ok, "contest 1 should be found")
	testutil.AssertEqual(t, found.Title, "A")
	_, ok = cat.Find("missing")
	testutil.AssertFalse(t, ok, "unknown id should not be found")
}

func TestActivateFailureLeavesEmptySnapshot(t *testing.T) {
	src := &fakeSource{err: errors.New("connection refused")}
	cat := NewCatalog(src, nil)

	err := cat.Activate(context.Background())
	if !pkgerrors.Is(err, pkgerrors.ContestFetchFailed) {
		t.Fatalf("expected ContestFetchFailed, got %v", err)
	}
	testutil.AssertEqual(t, len(cat.Contests()), 0)
	testutil.AssertEqual(t, len(cat.View(StatusRunning, "")), 0)

}

func TestActivateRetriesAfterFailure(t *testing.T) {
	src := &fakeSource{err: errors.New("connection refused")}
	cat := NewCatalog(src, nil, WithClock(func() time.Time { return base.Add(30 * time.Minute) }))

	err := cat.Activate(context.Background())
	testutil.AssertTrue(t, pkgerrors.Is(err, pkgerrors.ContestFetchFailed), "first fetch fails")

	src.err = nil
	src.contests = []model.Contest{contestAt("1", "A", base, time.Hour)}
	testutil.MustNoError(t, cat.Activate(context.Background()))
	testutil.AssertEqual(t, src.calls, 2)
	testutil.AssertEqual(t, len(cat.View(StatusRunning, "")), 1)

	// a loaded snapshot is kept
	src.err = errors.New("connection refused")
	testutil.MustNoError(t, cat.Activate(context.Background()))
	testutil.AssertEqual(t, src.calls, 2)
	testutil.AssertEqual(t, len(cat.Contests()), 1)
}

func TestGate(t *testing.T) {
	anon := NewCatalog(&fakeSource{}, fixedIdentity{})
	testutil.AssertEqual(t, anon.Gate(ActionCreateContest), PromptLogin)
	testutil.AssertEqual(t, anon.Gate(ActionParticipate), PromptLogin)
	testutil.AssertEqual(t, anon.Gate(ActionView), Allowed)

	noIdentity := NewCatalog(&fakeSource{}, nil)
	testutil.AssertEqual(t, noIdentity.Gate(ActionParticipate), PromptLogin)

	alice := NewCatalog(&fakeSource{}, fixedIdentity{Username: "alice", Role: "admin"})
	testutil.AssertEqual(t, alice.Gate(ActionCreateContest), Allowed)
	testutil.AssertEqual(t, alice.Gate(ActionParticipate), Allowed)

	path, decision := alice.ParticipatePath("C9")
	testutil.AssertEqual(t, decision, Allowed)
	testutil.AssertEqual(t, path, "/participate/C9/alice")

	path, decision = anon.ParticipatePath("C9")
	testutil.AssertEqual(t, decision, PromptLogin)
	testutil.AssertEqual(t, path, "")
	testutil.AssertEqual(t, ViewPath("C9"), "/contest/C9")
}

func TestContestMovesAcrossTabsAsTimePasses(t *testing.T) {
	clock := testutil.NewClock(base)
	ct := contestAt("C1", "Autumn Open", base.Add(time.Hour), 2*time.Hour)
	cat := NewCatalog(&fakeSource{contests: []model.Contest{ct}}, fixedIdentity{Username: "alice"}, WithClock(clock.Now))
	testutil.MustNoError(t, cat.Activate(context.Background()))

	only := func(want Status) Row {
		t.Helper()
		var found []Row
		for _, s := range Statuses {
			rows := cat.View(s, "")
			if s == want {
				found = rows
				continue
			}
			if len(rows) != 0 {
				t.Fatalf("contest also listed under %s", s)
			}
		}
		if len(found) != 1 {
			t.Fatalf("expected contest under %s, got %d rows", want, len(found))
		}
		return found[0]
	}

	row := only(StatusUpcoming)
	testutil.AssertEqual(t, row.Countdown, "01:00:00")
	testutil.AssertEqual(t, row.Action, ActionNone)
	testutil.AssertEqual(t, row.Length, "02:00")

	clock.Advance(time.Hour + time.Second)
	row = only(StatusRunning)
	testutil.AssertEqual(t, row.Action, ActionParticipate)
	testutil.AssertEqual(t, row.Countdown, "")
	testutil.AssertEqual(t, cat.Gate(row.Action), Allowed)

	clock.Advance(2 * time.Hour)
	row = only(StatusPrevious)
	testutil.AssertEqual(t, row.Action, ActionView)
	testutil.AssertEqual(t, cat.StatusOf(ct), StatusPrevious)
}

func TestViewAppliesSearch(t *testing.T) {
	clock := testutil.NewClock(base)
	src := &fakeSource{contests: []model.Contest{
		contestAt("1", "Spring Sprint", base.Add(-time.Minute), time.Hour),
		contestAt("2", "Night Owl", base.Add(-time.Minute), time.Hour),
	}}
	cat := NewCatalog(src, nil, WithClock(clock.Now))
	testutil.MustNoError(t, cat.Activate(context.Background()))

	rows := cat.View(StatusRunning, "OWL")
	testutil.AssertEqual(t, len(rows), 1)
	testutil.AssertEqual(t, rows[0].Contest.ID, "2")
	testutil.AssertEqual(t, rows[0].Begin, FormatBegin(base.Add(-time.Minute)))
}
