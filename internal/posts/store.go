package posts

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/bilgisen/zenstudio/internal/events"
	"github.com/bilgisen/zenstudio/internal/export"
	"github.com/bilgisen/zenstudio/internal/logger"
	"github.com/bilgisen/zenstudio/internal/metrics"
	"github.com/bilgisen/zenstudio/internal/models"
	"github.com/bilgisen/zenstudio/internal/storage"
)

// Store owns the schedule of each project. It does no locking; callers
// serialise writes per project.
type Store struct {
	fs     storage.FS
	layout storage.Layout
	bus    *events.Bus
	log    zerolog.Logger

	now   func() time.Time
	newID func() string
}

// NewStore creates a schedule store. bus may be nil.
func NewStore(fsys storage.FS, layout storage.Layout, bus *events.Bus) *Store {
	return &Store{
		fs:     fsys,
		layout: layout,
		bus:    bus,
		log:    logger.Component("schedule"),
		now:    time.Now,
		newID:  uuid.NewString,
	}
}

// Load returns the project's schedule. It never fails: a missing or
// unreadable schedule yields an empty record.
func (s *Store) Load(ctx context.Context, projectPath string) models.ScheduleRecord {
	record, _ := s.LoadDetailed(ctx, projectPath)
	return record
}

// LoadDetailed is Load plus how the record was obtained.
func (s *Store) LoadDetailed(ctx context.Context, projectPath string) (models.ScheduleRecord, models.LoadOutcome) {
	empty := models.ScheduleRecord{
		Posts:       []models.ScheduledPost{},
		ProjectPath: projectPath,
		LastUpdated: s.now(),
	}

	if err := ctx.Err(); err != nil {
		s.recovered(projectPath, err)
		return empty, models.OutcomeRecovered
	}

	var record models.ScheduleRecord
	err := storage.ReadJSON(s.fs, s.layout.ScheduleFile(projectPath), &record)
	switch {
	case errors.Is(err, fs.ErrNotExist):
		s.log.Debug().Str("project", projectPath).Msg("no schedule yet")
		return empty, models.OutcomeEmpty
	case err != nil:
		s.recovered(projectPath, err)
		return empty, models.OutcomeRecovered
	}

	if record.Posts == nil {
		record.Posts = []models.ScheduledPost{}
	}
	if record.ProjectPath == "" {
		record.ProjectPath = projectPath
	}
	if record.LastUpdated.IsZero() {
		record.LastUpdated = s.now()
	}
	return record, models.OutcomeLoaded
}

func (s *Store) recovered(projectPath string, err error) {
	metrics.Recovered("schedule")
	s.log.Warn().Err(err).Str("project", projectPath).Msg("schedule unreadable, using empty schedule")
}

// Save overwrites the whole schedule with posts. Each post's draft or
// scheduled status is re-derived from its date and time first.
func (s *Store) Save(ctx context.Context, projectPath string, posts []models.ScheduledPost) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	err := s.save(projectPath, posts)
	metrics.Observe("schedule", "save", err)
	if err != nil {
		return err
	}
	s.bus.Publish(events.Event{Kind: events.ScheduleSaved, ProjectPath: projectPath})
	return nil
}

func (s *Store) save(projectPath string, posts []models.ScheduledPost) error {
	if err := s.layout.Ensure(s.fs, projectPath); err != nil {
		return err
	}

	if err := checkIDs(posts); err != nil {
		return err
	}

	resolved := make([]models.ScheduledPost, len(posts))
	for i, post := range posts {
		post.ResolveStatus()
		resolved[i] = post
	}

	record := models.ScheduleRecord{
		Posts:       resolved,
		ProjectPath: projectPath,
		LastUpdated: s.now(),
	}
	if err := storage.WriteJSON(s.fs, s.layout.ScheduleFile(projectPath), record); err != nil {
		return fmt.Errorf("failed to save schedule: %w", err)
	}

	s.log.Debug().Str("project", projectPath).Int("posts", len(resolved)).Msg("schedule saved")
	return nil
}

// Update merges patch into the post with the given id, rewrites that
// post's file and saves the schedule.
func (s *Store) Update(ctx context.Context, projectPath, id string, patch models.PostPatch) (models.ScheduledPost, error) {
	if err := ctx.Err(); err != nil {
		return models.ScheduledPost{}, err
	}

	post, err := s.update(projectPath, id, patch)
	metrics.Observe("schedule", "update", err)
	if err != nil {
		return models.ScheduledPost{}, err
	}
	s.bus.Publish(events.Event{Kind: events.PostUpdated, ProjectPath: projectPath, ID: id})
	return post, nil
}

func (s *Store) update(projectPath, id string, patch models.PostPatch) (models.ScheduledPost, error) {
	record := s.Load(context.Background(), projectPath)

	i := indexOf(record.Posts, id)
	if i < 0 {
		return models.ScheduledPost{}, fmt.Errorf("post %s: %w", id, models.ErrNotFound)
	}

	post := record.Posts[i]
	patch.Apply(&post)
	post.ResolveStatus()
	record.Posts[i] = post

	if _, err := s.writePostFile(projectPath, post, false); err != nil {
		return models.ScheduledPost{}, err
	}
	if err := s.save(projectPath, record.Posts); err != nil {
		return models.ScheduledPost{}, err
	}
	return post, nil
}

// Delete removes the post from the schedule. Its file stays on disk, and an
// unknown id still rewrites the schedule unchanged.
func (s *Store) Delete(ctx context.Context, projectPath, id string) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	record := s.Load(ctx, projectPath)
	remaining := without(record.Posts, id)

	err := s.save(projectPath, remaining)
	metrics.Observe("schedule", "delete", err)
	if err != nil {
		return err
	}
	s.bus.Publish(events.Event{Kind: events.PostDeleted, ProjectPath: projectPath, ID: id})
	return nil
}

// Archive writes a published copy of the post to the archive folder and
// drops it from the schedule. The live post file is left in place. It
// returns the path of the archive file.
func (s *Store) Archive(ctx context.Context, projectPath, id string) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}

	path, err := s.archive(projectPath, id)
	metrics.Observe("schedule", "archive", err)
	if err != nil {
		return "", err
	}
	s.bus.Publish(events.Event{Kind: events.PostArchived, ProjectPath: projectPath, ID: id})
	return path, nil
}

func (s *Store) archive(projectPath, id string) (string, error) {
	record := s.Load(context.Background(), projectPath)

	i := indexOf(record.Posts, id)
	if i < 0 {
		return "", fmt.Errorf("post %s: %w", id, models.ErrNotFound)
	}

	archived := record.Posts[i]
	archived.Status = models.StatusPublished

	path, err := s.writePostFile(projectPath, archived, true)
	if err != nil {
		return "", err
	}
	if err := s.save(projectPath, without(record.Posts, id)); err != nil {
		return "", err
	}
	return path, nil
}

// SaveWithFiles writes every post's file, then saves the schedule.
func (s *Store) SaveWithFiles(ctx context.Context, projectPath string, posts []models.ScheduledPost) ([]string, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	paths, err := s.saveWithFiles(projectPath, posts)
	metrics.Observe("schedule", "save_with_files", err)
	if err != nil {
		return nil, err
	}
	s.bus.Publish(events.Event{Kind: events.ScheduleSaved, ProjectPath: projectPath})
	return paths, nil
}

func (s *Store) saveWithFiles(projectPath string, posts []models.ScheduledPost) ([]string, error) {
	if err := checkIDs(posts); err != nil {
		return nil, err
	}
	if err := s.layout.Ensure(s.fs, projectPath); err != nil {
		return nil, err
	}

	paths := make([]string, 0, len(posts))
	for _, post := range posts {
		post.ResolveStatus()
		path, err := s.writePostFile(projectPath, post, false)
		if err != nil {
			return nil, err
		}
		paths = append(paths, path)
	}
	if err := s.save(projectPath, posts); err != nil {
		return nil, err
	}
	return paths, nil
}

func checkIDs(posts []models.ScheduledPost) error {
	for _, post := range posts {
		if !models.ValidID(post.ID) {
			return fmt.Errorf("post %q: %w", post.ID, models.ErrInvalidID)
		}
	}
	return nil
}

// AutoSaveResult lists what AutoSave created.
type AutoSaveResult struct {
	Posts []models.ScheduledPost `json:"posts"`
	Paths []string               `json:"paths"`
}

// AutoSave turns generated platform content into scheduled posts, one per
// platform, using the schedule entry chosen for that platform. The new posts
// replace the project's schedule.
func (s *Store) AutoSave(ctx context.Context, projectPath string, drafts []models.PlatformPost, schedules map[models.Platform]models.ScheduleEntry) (AutoSaveResult, error) {
	if err := ctx.Err(); err != nil {
		return AutoSaveResult{}, err
	}

	posts := make([]models.ScheduledPost, 0, len(drafts))
	for _, draft := range drafts {
		entry := schedules[draft.Platform]
		post := models.ScheduledPost{
			ID:             s.newID(),
			Platform:       draft.Platform,
			Title:          draft.Title,
			Content:        draft.Content,
			ScheduledTime:  entry.Time,
			CharacterCount: draft.CharacterCount,
			WordCount:      draft.WordCount,
			CreatedAt:      s.now(),
		}
		if date, ok := models.ParseDate(entry.Date); ok {
			post.ScheduledDate = &date
		}
		post.ResolveStatus()
		posts = append(posts, post)
	}

	paths, err := s.saveWithFiles(projectPath, posts)
	metrics.Observe("schedule", "auto_save", err)
	if err != nil {
		return AutoSaveResult{}, err
	}

	s.log.Info().Str("project", projectPath).Int("posts", len(posts)).Msg("auto-saved posts with schedule")
	s.bus.Publish(events.Event{Kind: events.ScheduleSaved, ProjectPath: projectPath})
	return AutoSaveResult{Posts: posts, Paths: paths}, nil
}

// Stats summarises the active schedule. Archived posts are not part of it,
// so Published is always zero here.
func (s *Store) Stats(ctx context.Context, projectPath string) models.ScheduleStats {
	stats := export.ScheduleStats(s.Load(ctx, projectPath).Posts)
	stats.Published = 0
	return stats
}

func (s *Store) writePostFile(projectPath string, post models.ScheduledPost, archived bool) (string, error) {
	rel, text, err := RenderFile(post, archived)
	if err != nil {
		return "", err
	}

	path := filepath.Join(s.layout.ProjectDir(projectPath), filepath.FromSlash(rel))
	if err := storage.WriteFile(s.fs, path, []byte(text)); err != nil {
		return "", fmt.Errorf("failed to write post file: %w", err)
	}
	s.log.Debug().Str("path", path).Msg("post file written")
	return path, nil
}

func indexOf(posts []models.ScheduledPost, id string) int {
	for i, p := range posts {
		if p.ID == id {
			return i
		}
	}
	return -1
}

func without(posts []models.ScheduledPost, id string) []models.ScheduledPost {
	out := make([]models.ScheduledPost, 0, len(posts))
	for _, p := range posts {
		if p.ID != id {
			out = append(out, p)
		}
	}
	return out
}
