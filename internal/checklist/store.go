package checklist

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"strconv"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/bilgisen/zenstudio/internal/cache"
	"github.com/bilgisen/zenstudio/internal/events"
	"github.com/bilgisen/zenstudio/internal/logger"
	"github.com/bilgisen/zenstudio/internal/metrics"
	"github.com/bilgisen/zenstudio/internal/models"
	"github.com/bilgisen/zenstudio/internal/storage"
)

// Store persists checklists in the project data directory, or in a key/value
// store when no project is active or its directory cannot be created.
type Store struct {
	fs     storage.FS
	layout storage.Layout
	kv     cache.Store
	bus    *events.Bus
	log    zerolog.Logger

	now   func() time.Time
	newID func() string
}

// NewStore creates a checklist store. A nil kv falls back to process memory.
func NewStore(fsys storage.FS, layout storage.Layout, kv cache.Store, bus *events.Bus) *Store {
	if kv == nil {
		kv = cache.NewMemoryStore("")
	}
	return &Store{
		fs:     fsys,
		layout: layout,
		kv:     kv,
		bus:    bus,
		log:    logger.Component("checklist"),
		now:    time.Now,
		newID:  uuid.NewString,
	}
}

// StorageKey is the key/value key of a project's checklist.
func StorageKey(projectPath string) string {
	if projectPath == "" {
		projectPath = "default"
	}
	return "zenpost_checklist_" + projectPath
}

// Load returns the persisted items with every missing default task appended.
// Nothing persisted, or nothing readable, yields just the defaults.
func (s *Store) Load(ctx context.Context, defaultTasks []string, projectPath string) []models.ChecklistItem {
	items, _ := s.LoadDetailed(ctx, defaultTasks, projectPath)
	return items
}

// LoadDetailed is Load plus how the items were obtained.
func (s *Store) LoadDetailed(ctx context.Context, defaultTasks []string, projectPath string) ([]models.ChecklistItem, models.LoadOutcome) {
	if err := ctx.Err(); err != nil {
		s.recovered(projectPath, err)
		return buildDefaults(defaultTasks), models.OutcomeRecovered
	}

	data, err := s.read(ctx, projectPath)
	switch {
	case errors.Is(err, fs.ErrNotExist):
		return buildDefaults(defaultTasks), models.OutcomeEmpty
	case err != nil:
		s.recovered(projectPath, err)
		return buildDefaults(defaultTasks), models.OutcomeRecovered
	}

	items, err := s.decode(data)
	if err != nil {
		s.recovered(projectPath, err)
		return buildDefaults(defaultTasks), models.OutcomeRecovered
	}
	return mergeDefaults(items, defaultTasks), models.OutcomeLoaded
}

func (s *Store) recovered(projectPath string, err error) {
	metrics.Recovered("checklist")
	s.log.Warn().Err(err).Str("project", projectPath).Msg("checklist unreadable, using defaults")
}

// durable reports whether projectPath's checklist lives on disk.
func (s *Store) durable(projectPath string) bool {
	if projectPath == "" {
		return false
	}
	if err := s.layout.Ensure(s.fs, projectPath); err != nil {
		s.log.Warn().Err(err).Str("project", projectPath).Msg("project data directory unavailable, using ephemeral checklist")
		return false
	}
	return true
}

func (s *Store) read(ctx context.Context, projectPath string) ([]byte, error) {
	if s.durable(projectPath) {
		return s.fs.ReadFile(s.layout.ChecklistFile(projectPath))
	}

	value, ok, err := s.kv.Get(ctx, StorageKey(projectPath))
	if err != nil {
		return nil, err
	}
	if !ok || value == "" {
		return nil, fs.ErrNotExist
	}
	return []byte(value), nil
}

// Save overwrites the checklist with items.
func (s *Store) Save(ctx context.Context, items []models.ChecklistItem, projectPath string) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	err := s.save(ctx, items, projectPath)
	metrics.Observe("checklist", "save", err)
	if err != nil {
		return err
	}
	s.bus.Publish(events.Event{Kind: events.ChecklistSaved, ProjectPath: projectPath})
	return nil
}

func (s *Store) save(ctx context.Context, items []models.ChecklistItem, projectPath string) error {
	if items == nil {
		items = []models.ChecklistItem{}
	}
	record := models.ChecklistRecord{Items: items, UpdatedAt: s.now()}

	if s.durable(projectPath) {
		if err := storage.WriteJSON(s.fs, s.layout.ChecklistFile(projectPath), record); err != nil {
			return fmt.Errorf("failed to save checklist: %w", err)
		}
		s.log.Debug().Str("project", projectPath).Int("items", len(items)).Msg("checklist saved")
		return nil
	}

	data, err := json.Marshal(record)
	if err != nil {
		return fmt.Errorf("failed to marshal checklist: %w", err)
	}
	if err := s.kv.Set(ctx, StorageKey(projectPath), string(data)); err != nil {
		return fmt.Errorf("%w: failed to save checklist: %w", models.ErrIO, err)
	}
	return nil
}

// persistedItem accepts loosely typed items so that one odd entry does not
// discard the whole list.
type persistedItem struct {
	ID        any     `json:"id"`
	Text      *string `json:"text"`
	Completed any     `json:"completed"`
	Source    any     `json:"source"`
	PostID    any     `json:"postId"`
}

// decode parses a checklist record and normalises its items: entries
// without text are dropped, missing ids are minted and unknown sources
// become custom.
func (s *Store) decode(data []byte) ([]models.ChecklistItem, error) {
	var record struct {
		Items []json.RawMessage `json:"items"`
	}
	if err := json.Unmarshal(data, &record); err != nil {
		return nil, fmt.Errorf("%w: %w", models.ErrCorrupt, err)
	}

	items := make([]models.ChecklistItem, 0, len(record.Items))
	for _, raw := range record.Items {
		var p persistedItem
		if err := json.Unmarshal(raw, &p); err != nil || p.Text == nil || *p.Text == "" {
			continue
		}

		item := models.ChecklistItem{
			Text:   *p.Text,
			Source: models.SourceCustom,
		}
		if id, ok := p.ID.(string); ok && id != "" {
			item.ID = id
		} else {
			item.ID = "custom-" + s.newID()
		}
		if completed, ok := p.Completed.(bool); ok {
			item.Completed = completed
		}
		if source, ok := p.Source.(string); ok && models.ChecklistSource(source) == models.SourceDefault {
			item.Source = models.SourceDefault
		}
		if postID, ok := p.PostID.(string); ok {
			item.PostID = postID
		}
		items = append(items, item)
	}
	return items, nil
}

func buildDefaults(tasks []string) []models.ChecklistItem {
	return mergeDefaults([]models.ChecklistItem{}, tasks)
}

// mergeDefaults appends every default task whose text is not already
// present. It never removes or reorders existing items.
func mergeDefaults(items []models.ChecklistItem, tasks []string) []models.ChecklistItem {
	seen := make(map[string]bool, len(items)+len(tasks))
	for _, item := range items {
		seen[item.Text] = true
	}
	for i, task := range tasks {
		if seen[task] {
			continue
		}
		seen[task] = true
		items = append(items, models.ChecklistItem{
			ID:     "task-" + strconv.Itoa(i),
			Text:   task,
			Source: models.SourceDefault,
		})
	}
	return items
}
