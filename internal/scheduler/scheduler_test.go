package scheduler

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/bidwatch-dev/bidwatch/backend/internal/config"
	"github.com/bidwatch-dev/bidwatch/backend/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeStore struct {
	schedules []*domain.Schedule
	users     map[int64]*domain.User
	err       error
}

func (f *fakeStore) GetAllSchedules() ([]*domain.Schedule, error) {
	return f.schedules, f.err
}

func (f *fakeStore) GetUserByID(id int64) (*domain.User, error) {
	user, ok := f.users[id]
	if !ok {
		return nil, sql.ErrNoRows
	}
	return user, nil
}

type fakeMarkers struct {
	runs  map[string]bool
	marks []string
}

func newFakeMarkers() *fakeMarkers {
	return &fakeMarkers{runs: make(map[string]bool)}
}

func markerKey(scheduleID int64, runDate string) string {
	return fmt.Sprintf("%d|%s", scheduleID, runDate)
}

func (f *fakeMarkers) HasRunOn(scheduleID int64, runDate string) (bool, error) {
	return f.runs[markerKey(scheduleID, runDate)], nil
}

func (f *fakeMarkers) MarkRun(scheduleID int64, runDate string) error {
	key := markerKey(scheduleID, runDate)
	if !f.runs[key] {
		f.runs[key] = true
		f.marks = append(f.marks, key)
	}
	return nil
}

type fakePipeline struct {
	refreshCalls int
	refreshErr   error
	notified     []string
	notifyErr    map[string]error // keyed by user email
}

func (f *fakePipeline) RefreshRecords(ctx context.Context) error {
	f.refreshCalls++
	return f.refreshErr
}

func (f *fakePipeline) NotifyUser(ctx context.Context, user *domain.User) error {
	f.notified = append(f.notified, user.Email)
	return f.notifyErr[user.Email]
}

type fakeReporter struct {
	subjects []string
}

func (f *fakeReporter) Report(ctx context.Context, subject, detail string) error {
	f.subjects = append(f.subjects, subject)
	return nil
}

func testConfig() *config.Config {
	cfg := &config.Config{}
	cfg.Scheduler.PollInterval = 60
	cfg.Scheduler.PipelineTimeout = 5
	cfg.Scheduler.MaxRetriesPerDay = 5
	return cfg
}

func mondaySchedule(id, userID int64, timeOfDay string) *domain.Schedule {
	return &domain.Schedule{
		ID:     id,
		UserID: userID,
		Name:   fmt.Sprintf("schedule-%d", id),
		Monday: &timeOfDay,
	}
}

// 2024-01-01 is a Monday.
func mondayAt(hour, minute int) time.Time {
	return time.Date(2024, 1, 1, hour, minute, 0, 0, time.Local)
}

type fixture struct {
	scheduler *Scheduler
	store     *fakeStore
	markers   *fakeMarkers
	pipeline  *fakePipeline
	reporter  *fakeReporter
	clock     time.Time
}

func newFixture(schedules []*domain.Schedule, users map[int64]*domain.User) *fixture {
	f := &fixture{
		store:    &fakeStore{schedules: schedules, users: users},
		markers:  newFakeMarkers(),
		pipeline: &fakePipeline{notifyErr: make(map[string]error)},
		reporter: &fakeReporter{},
	}
	f.scheduler = New(testConfig(), f.store, f.markers, f.pipeline, f.reporter)
	f.scheduler.now = func() time.Time { return f.clock }
	return f
}

func (f *fixture) pollAt(at time.Time) {
	f.clock = at
	f.scheduler.runOnce(context.Background())
}

func TestSchedulerFiresExactlyOncePerDay(t *testing.T) {
	f := newFixture(
		[]*domain.Schedule{mondaySchedule(1, 10, "09:00")},
		map[int64]*domain.User{10: {ID: 10, Email: "alice@example.com"}},
	)

	f.pollAt(mondayAt(9, 0))
	f.pollAt(mondayAt(9, 1))
	f.pollAt(mondayAt(9, 2))

	assert.Equal(t, []string{"alice@example.com"}, f.pipeline.notified)
	assert.Equal(t, []string{markerKey(1, "2024-01-01")}, f.markers.marks)
	assert.Equal(t, 1, f.pipeline.refreshCalls)
}

func TestSchedulerNotDueBeforeConfiguredTime(t *testing.T) {
	f := newFixture(
		[]*domain.Schedule{mondaySchedule(1, 10, "09:00")},
		map[int64]*domain.User{10: {ID: 10, Email: "alice@example.com"}},
	)

	f.pollAt(mondayAt(8, 59))

	assert.Empty(t, f.pipeline.notified)
	assert.Zero(t, f.pipeline.refreshCalls, "no due schedules means no upstream refresh")
}

func TestSchedulerCatchesUpAfterMissedPoll(t *testing.T) {
	f := newFixture(
		[]*domain.Schedule{mondaySchedule(1, 10, "09:00")},
		map[int64]*domain.User{10: {ID: 10, Email: "alice@example.com"}},
	)

	// first poll of the day happens well past the configured time
	f.pollAt(mondayAt(9, 5))

	assert.Equal(t, []string{"alice@example.com"}, f.pipeline.notified)
	assert.Len(t, f.markers.marks, 1)
}

func TestSchedulerSkipsDaysWithoutTime(t *testing.T) {
	timeOfDay := "09:00"
	f := newFixture(
		[]*domain.Schedule{{ID: 1, UserID: 10, Name: "tuesdays only", Tuesday: &timeOfDay}},
		map[int64]*domain.User{10: {ID: 10, Email: "alice@example.com"}},
	)

	f.pollAt(mondayAt(12, 0))

	assert.Empty(t, f.pipeline.notified)
}

func TestSchedulerRefreshesOncePerBatch(t *testing.T) {
	f := newFixture(
		[]*domain.Schedule{
			mondaySchedule(1, 10, "09:00"),
			mondaySchedule(2, 11, "08:30"),
		},
		map[int64]*domain.User{
			10: {ID: 10, Email: "alice@example.com"},
			11: {ID: 11, Email: "bob@example.com"},
		},
	)

	f.pollAt(mondayAt(9, 0))

	assert.Equal(t, 1, f.pipeline.refreshCalls)
	assert.ElementsMatch(t, []string{"alice@example.com", "bob@example.com"}, f.pipeline.notified)
}

func TestSchedulerFailureIsolation(t *testing.T) {
	f := newFixture(
		[]*domain.Schedule{
			mondaySchedule(1, 10, "09:00"),
			mondaySchedule(2, 11, "09:00"),
		},
		map[int64]*domain.User{
			10: {ID: 10, Email: "alice@example.com"},
			11: {ID: 11, Email: "bob@example.com"},
		},
	)
	f.pipeline.notifyErr["alice@example.com"] = errors.New("smtp down")

	f.pollAt(mondayAt(9, 0))

	// bob's run succeeds and is marked; alice's failure is reported and left
	// unmarked for the next poll
	assert.Contains(t, f.markers.marks, markerKey(2, "2024-01-01"))
	assert.NotContains(t, f.markers.marks, markerKey(1, "2024-01-01"))
	require.Len(t, f.reporter.subjects, 1)
	assert.Contains(t, f.reporter.subjects[0], "schedule-1")

	// next poll retries only alice
	f.pipeline.notifyErr = map[string]error{}
	f.pollAt(mondayAt(9, 1))

	assert.Equal(t, []string{"alice@example.com", "bob@example.com", "alice@example.com"}, f.pipeline.notified)
	assert.Contains(t, f.markers.marks, markerKey(1, "2024-01-01"))
}

func TestSchedulerSkipsDanglingSchedule(t *testing.T) {
	f := newFixture(
		[]*domain.Schedule{mondaySchedule(1, 99, "09:00")},
		map[int64]*domain.User{},
	)

	f.pollAt(mondayAt(9, 0))

	assert.Empty(t, f.pipeline.notified)
	assert.Empty(t, f.markers.marks)
	assert.Empty(t, f.reporter.subjects, "a dangling schedule is skipped silently")
}

func TestSchedulerRefreshFailureAbortsBatch(t *testing.T) {
	f := newFixture(
		[]*domain.Schedule{mondaySchedule(1, 10, "09:00")},
		map[int64]*domain.User{10: {ID: 10, Email: "alice@example.com"}},
	)
	f.pipeline.refreshErr = errors.New("portal unreachable")

	f.pollAt(mondayAt(9, 0))

	assert.Empty(t, f.pipeline.notified)
	assert.Empty(t, f.markers.marks)
	require.Len(t, f.reporter.subjects, 1)
	assert.Contains(t, f.reporter.subjects[0], "refresh")

	// refresh recovers, schedule fires on the next poll
	f.pipeline.refreshErr = nil
	f.pollAt(mondayAt(9, 1))
	assert.Equal(t, []string{"alice@example.com"}, f.pipeline.notified)
}

func TestSchedulerRetryCapPerDay(t *testing.T) {
	f := newFixture(
		[]*domain.Schedule{mondaySchedule(1, 10, "09:00")},
		map[int64]*domain.User{10: {ID: 10, Email: "alice@example.com"}},
	)
	f.pipeline.notifyErr["alice@example.com"] = errors.New("smtp down")

	for minute := 0; minute < 10; minute++ {
		f.pollAt(mondayAt(9, minute))
	}

	// capped at MaxRetriesPerDay attempts, then quiet for the day
	assert.Len(t, f.pipeline.notified, 5)
	assert.Len(t, f.reporter.subjects, 5)
	assert.Empty(t, f.markers.marks)

	// the counter resets at day rollover; Tuesday-less schedule aside, the
	// next Monday is eligible again
	f.pollAt(mondayAt(9, 30).AddDate(0, 0, 7))
	assert.Len(t, f.pipeline.notified, 6)
}

func TestSchedulerUnparsableTimeNeverFires(t *testing.T) {
	f := newFixture(
		[]*domain.Schedule{mondaySchedule(1, 10, "quarter past nine")},
		map[int64]*domain.User{10: {ID: 10, Email: "alice@example.com"}},
	)

	f.pollAt(mondayAt(12, 0))

	assert.Empty(t, f.pipeline.notified)
	assert.Empty(t, f.markers.marks)
}

func TestSchedulerStoreErrorLeavesLoopAlive(t *testing.T) {
	f := newFixture(nil, nil)
	f.store.err = errors.New("db gone")

	f.pollAt(mondayAt(9, 0))
	assert.Zero(t, f.pipeline.refreshCalls)

	// the store recovers and the loop carries on
	f.store.err = nil
	f.store.schedules = []*domain.Schedule{mondaySchedule(1, 10, "09:00")}
	f.store.users = map[int64]*domain.User{10: {ID: 10, Email: "alice@example.com"}}
	f.pollAt(mondayAt(9, 1))
	assert.Equal(t, []string{"alice@example.com"}, f.pipeline.notified)
}

func TestSchedulerRunStopsOnContextCancel(t *testing.T) {
	f := newFixture(nil, nil)
	f.scheduler.cfg.Scheduler.PollInterval = 1
	f.clock = mondayAt(9, 0)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		f.scheduler.Run(ctx)
		close(done)
	}()

	cancel()
	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("scheduler did not stop after context cancellation")
	}
}
