package tasks_test

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"

	"github.com/edgard/recapbot/internal/bot/tasks"
	"github.com/edgard/recapbot/internal/config"
)

type fakeStore struct {
	maintenance int
	cutoffs     []time.Time
	err         error
}

func (s *fakeStore) RunSQLMaintenance(context.Context) error {
	s.maintenance++
	return s.err
}

func (s *fakeStore) DeleteMessagesBefore(_ context.Context, cutoff time.Time) (int64, error) {
	s.cutoffs = append(s.cutoffs, cutoff)
	return 3, s.err
}

func newDeps(store *fakeStore, retention time.Duration, now time.Time) tasks.TaskDeps {
	return tasks.TaskDeps{
		Logger: slog.New(slog.NewTextHandler(io.Discard, nil)),
		Store:  store,
		Config: &config.Config{Database: config.DatabaseConfig{Retention: retention}},
		Now:    func() time.Time { return now },
	}
}

func TestRegisterAllTasks(t *testing.T) {
	t.Parallel()

	registered := tasks.RegisterAllTasks(newDeps(&fakeStore{}, 0, time.Now()))

	var names []string
	for _, name := range []string{tasks.SQLMaintenance, tasks.MessageRetention} {
		if _, ok := registered[name]; ok {
			names = append(names, name)
		}
	}
	if diff := cmp.Diff([]string{"sql_maintenance", "message_retention"}, names); diff != "" {
		t.Errorf("registered tasks mismatch (-want +got):\n%s", diff)
	}
}

func TestSQLMaintenanceTask(t *testing.T) {
	t.Parallel()

	store := &fakeStore{}
	task := tasks.RegisterAllTasks(newDeps(store, 0, time.Now()))[tasks.SQLMaintenance]
	if err := task(context.Background()); err != nil {
		t.Fatalf("task() error = %v", err)
	}
	if store.maintenance != 1 {
		t.Errorf("maintenance ran %d times, want 1", store.maintenance)
	}

	store.err = errors.New("disk full")
	if err := task(context.Background()); err == nil {
		t.Error("task() error = nil, want the store failure")
	}
}

func TestMessageRetentionTask(t *testing.T) {
	t.Parallel()

	now := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)

	tests := []struct {
		name      string
		retention time.Duration
		want      []time.Time
	}{
		{name: "disabled", retention: 0},
		{name: "one week", retention: 7 * 24 * time.Hour, want: []time.Time{now.Add(-7 * 24 * time.Hour)}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			store := &fakeStore{}
			task := tasks.RegisterAllTasks(newDeps(store, tt.retention, now))[tasks.MessageRetention]
			if err := task(context.Background()); err != nil {
				t.Fatalf("task() error = %v", err)
			}
			if diff := cmp.Diff(tt.want, store.cutoffs); diff != "" {
				t.Errorf("cutoffs mismatch (-want +got):\n%s", diff)
			}
		})
	}
}
