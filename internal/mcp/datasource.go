package mcp

import (
	"context"

	"github.com/claude/ironpath/internal/models"
	"github.com/claude/ironpath/internal/progression"
	"github.com/claude/ironpath/internal/tracker"
)

// DataSource abstracts the data layer for MCP tools. Both the local tracker
// (via LocalSource) and HTTPClient (remote via the REST API) satisfy it.
type DataSource interface {
	History(ctx context.Context) ([]models.WorkoutRecord, error)
	Session(ctx context.Context) ([]models.SetEntry, error)
	PersonalRecords(ctx context.Context) (map[string]models.PersonalRecord, error)
	Progression(ctx context.Context) (progression.Level, error)
}

// LocalSource adapts a tracker for in-process MCP serving.
type LocalSource struct {
	Tracker *tracker.Tracker
}

// Compile-time check: LocalSource satisfies DataSource.
var _ DataSource = (*LocalSource)(nil)

func (l *LocalSource) History(ctx context.Context) ([]models.WorkoutRecord, error) {
	return l.Tracker.History(), nil
}

func (l *LocalSource) Session(ctx context.Context) ([]models.SetEntry, error) {
	return l.Tracker.Session(), nil
}

func (l *LocalSource) PersonalRecords(ctx context.Context) (map[string]models.PersonalRecord, error) {
	return l.Tracker.PersonalRecords(), nil
}

func (l *LocalSource) Progression(ctx context.Context) (progression.Level, error) {
	return l.Tracker.Progression(), nil
}
