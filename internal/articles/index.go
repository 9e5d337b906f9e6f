package articles

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"path"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/bilgisen/zenstudio/internal/events"
	"github.com/bilgisen/zenstudio/internal/frontmatter"
	"github.com/bilgisen/zenstudio/internal/logger"
	"github.com/bilgisen/zenstudio/internal/metrics"
	"github.com/bilgisen/zenstudio/internal/models"
	"github.com/bilgisen/zenstudio/internal/storage"
)

// skippedDirs are build output and dependency folders never scanned for
// articles. Dot-prefixed directories are skipped as well.
var skippedDirs = map[string]bool{
	"node_modules": true,
	"dist":         true,
	"build":        true,
	"target":       true,
	"vendor":       true,
}

// Index keeps a content-free summary list of a project's articles next to
// the article files themselves.
type Index struct {
	fs     storage.FS
	layout storage.Layout
	bus    *events.Bus
	log    zerolog.Logger

	now   func() time.Time
	newID func() string
}

func NewIndex(fsys storage.FS, layout storage.Layout, bus *events.Bus) *Index {
	return &Index{
		fs:     fsys,
		layout: layout,
		bus:    bus,
		log:    logger.Component("articles"),
		now:    time.Now,
		newID:  uuid.NewString,
	}
}

// List returns the article summaries. The persisted index is used unless
// rescan is set or no index exists yet, in which case the project is
// scanned. It never fails; errors yield an empty list.
func (x *Index) List(ctx context.Context, projectPath string, rescan bool) []models.Article {
	articles, _ := x.ListDetailed(ctx, projectPath, rescan)
	return articles
}

// ListDetailed is List plus how the list was obtained.
func (x *Index) ListDetailed(ctx context.Context, projectPath string, rescan bool) ([]models.Article, models.LoadOutcome) {
	if err := ctx.Err(); err != nil {
		x.recovered(projectPath, err)
		return []models.Article{}, models.OutcomeRecovered
	}

	exists, err := x.fs.Exists(x.layout.ArticlesIndexFile(projectPath))
	if err != nil {
		x.recovered(projectPath, err)
		return []models.Article{}, models.OutcomeRecovered
	}

	if rescan || !exists {
		articles, err := x.Rebuild(ctx, projectPath)
		if err != nil {
			x.recovered(projectPath, err)
			return []models.Article{}, models.OutcomeRecovered
		}
		if len(articles) == 0 {
			return articles, models.OutcomeEmpty
		}
		return articles, models.OutcomeLoaded
	}

	articles, err := x.readIndex(projectPath)
	if err != nil {
		x.recovered(projectPath, err)
		return []models.Article{}, models.OutcomeRecovered
	}
	return articles, models.OutcomeLoaded
}

func (x *Index) recovered(projectPath string, err error) {
	metrics.Recovered("articles")
	x.log.Warn().Err(err).Str("project", projectPath).Msg("article index unavailable, returning empty list")
}

// Rebuild scans every markdown file under the project root and replaces the
// index with the result, newest first. Files without an id in their header
// get a fresh id on every rebuild, and entries whose files were deleted
// disappear without notice.
func (x *Index) Rebuild(ctx context.Context, projectPath string) ([]models.Article, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	start := time.Now()
	files, err := x.scan(projectPath, "")
	if err != nil {
		metrics.Observe("articles", "rebuild", err)
		return nil, fmt.Errorf("failed to scan project: %w", err)
	}
	metrics.RebuildFiles.Set(float64(len(files)))

	now := models.FormatTimestamp(x.now())
	articles := make([]models.Article, 0, len(files))
	for _, rel := range files {
		data, err := x.fs.ReadFile(filepath.Join(projectPath, filepath.FromSlash(rel)))
		if err != nil {
			x.log.Warn().Err(err).Str("file", rel).Msg("skipping unreadable file")
			continue
		}
		articles = append(articles, x.summarise(rel, frontmatter.Parse(string(data)), now))
	}

	sortByUpdated(articles)

	err = x.writeIndex(projectPath, articles)
	metrics.Observe("articles", "rebuild", err)
	metrics.RebuildSeconds.Observe(time.Since(start).Seconds())
	if err != nil {
		return nil, err
	}

	x.log.Info().Str("project", projectPath).Int("files", len(files)).Int("articles", len(articles)).Msg("article index rebuilt")
	x.bus.Publish(events.Event{Kind: events.ArticlesRebuilt, ProjectPath: projectPath})
	return articles, nil
}

// scan returns slash separated paths of markdown files below dir, relative
// to root. Unreadable subdirectories are skipped.
func (x *Index) scan(root, dir string) ([]string, error) {
	entries, err := x.fs.ReadDir(filepath.Join(root, filepath.FromSlash(dir)))
	if err != nil {
		return nil, err
	}

	var files []string
	for _, entry := range entries {
		name := entry.Name()
		rel := path.Join(dir, name)

		if entry.IsDir() {
			if strings.HasPrefix(name, ".") || skippedDirs[name] {
				continue
			}
			sub, err := x.scan(root, rel)
			if err != nil {
				x.log.Warn().Err(err).Str("dir", rel).Msg("skipping unreadable directory")
				continue
			}
			files = append(files, sub...)
			continue
		}

		if strings.EqualFold(path.Ext(name), ".md") {
			files = append(files, rel)
		}
	}
	return files, nil
}

func (x *Index) summarise(rel string, doc frontmatter.Document, now string) models.Article {
	title := doc.Get("title")
	if title == "" {
		title = strings.TrimSuffix(path.Base(rel), path.Ext(rel))
	}
	if title == "" {
		title = "Untitled"
	}

	id := doc.Get("id")
	if id == "" {
		id = "file_" + x.newID()
	}

	return models.Article{
		ID:            id,
		Title:         title,
		Subtitle:      doc.Get("subtitle"),
		PublishDate:   doc.Get("publishDate"),
		CoverImageURL: doc.Get("coverImageUrl"),
		FileName:      rel,
		CreatedAt:     orDefault(doc.Get("createdAt"), now),
		UpdatedAt:     orDefault(doc.Get("updatedAt"), now),
	}
}

// Save creates or updates an article. New articles get a minted id and a
// file under articles/; existing ones keep their file and creation time.
func (x *Index) Save(ctx context.Context, projectPath string, input models.ArticleInput) (models.Article, error) {
	if err := ctx.Err(); err != nil {
		return models.Article{}, err
	}

	article, err := x.save(projectPath, input)
	metrics.Observe("articles", "save", err)
	if err != nil {
		return models.Article{}, err
	}
	x.bus.Publish(events.Event{Kind: events.ArticleSaved, ProjectPath: projectPath, ID: article.ID})
	return article, nil
}

func (x *Index) save(projectPath string, input models.ArticleInput) (models.Article, error) {
	if input.ID != "" && !models.ValidID(input.ID) {
		return models.Article{}, fmt.Errorf("article %q: %w", input.ID, models.ErrInvalidID)
	}
	if err := x.layout.Ensure(x.fs, projectPath); err != nil {
		return models.Article{}, err
	}

	articles := x.indexForUpdate(projectPath)
	now := models.FormatTimestamp(x.now())

	id := input.ID
	if id == "" {
		id = "article_" + x.newID()
	}

	article := models.Article{
		ID:            id,
		Title:         input.Title,
		Subtitle:      input.Subtitle,
		PublishDate:   input.PublishDate,
		CoverImageURL: input.CoverImageURL,
		Content:       input.Content,
		FileName:      path.Join(storage.ArticlesDir, id+".md"),
		CreatedAt:     now,
		UpdatedAt:     now,
	}

	existing := indexOf(articles, id)
	if existing >= 0 {
		article.FileName = articles[existing].FileName
		article.CreatedAt = articles[existing].CreatedAt
	}

	text, err := frontmatter.Render([]frontmatter.Field{
		frontmatter.Str("id", article.ID),
		frontmatter.Str("title", article.Title),
		frontmatter.Str("subtitle", article.Subtitle),
		frontmatter.Str("publishDate", article.PublishDate),
		frontmatter.Str("coverImageUrl", article.CoverImageURL),
		frontmatter.Str("createdAt", article.CreatedAt),
		frontmatter.Str("updatedAt", article.UpdatedAt),
	}, article.Content)
	if err != nil {
		return models.Article{}, err
	}

	if err := storage.WriteFile(x.fs, x.filePath(projectPath, article.FileName), []byte(text)); err != nil {
		return models.Article{}, fmt.Errorf("failed to write article: %w", err)
	}

	if existing >= 0 {
		articles[existing] = article.Summary()
	} else {
		articles = append(articles, article.Summary())
	}
	if err := x.writeIndex(projectPath, articles); err != nil {
		return models.Article{}, err
	}

	x.log.Debug().Str("project", projectPath).Str("id", id).Msg("article saved")
	return article, nil
}

// Load looks the article up in the index and returns it with the body of
// its file, header removed. A missing, corrupt or unreadable index or file
// yields ErrNotFound.
func (x *Index) Load(ctx context.Context, projectPath, id string) (models.Article, error) {
	if err := ctx.Err(); err != nil {
		return models.Article{}, err
	}

	articles, err := x.readIndex(projectPath)
	if err != nil {
		if !errors.Is(err, fs.ErrNotExist) {
			x.recovered(projectPath, err)
		}
		return models.Article{}, fmt.Errorf("article %s: %w", id, models.ErrNotFound)
	}

	i := indexOf(articles, id)
	if i < 0 {
		return models.Article{}, fmt.Errorf("article %s: %w", id, models.ErrNotFound)
	}
	article := articles[i]

	data, err := x.fs.ReadFile(x.filePath(projectPath, article.FileName))
	if err != nil {
		if !errors.Is(err, fs.ErrNotExist) {
			x.recovered(projectPath, err)
		}
		return models.Article{}, fmt.Errorf("article %s file %s: %w", id, article.FileName, models.ErrNotFound)
	}

	article.Content = frontmatter.Strip(string(data))
	return article, nil
}

// Delete removes the article from the index. Its file is left in place, so
// a rebuild brings it back.
func (x *Index) Delete(ctx context.Context, projectPath, id string) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	articles := x.indexForUpdate(projectPath)
	remaining := make([]models.Article, 0, len(articles))
	for _, a := range articles {
		if a.ID != id {
			remaining = append(remaining, a)
		}
	}

	err := x.writeIndex(projectPath, remaining)
	metrics.Observe("articles", "delete", err)
	if err != nil {
		return err
	}
	x.bus.Publish(events.Event{Kind: events.ArticleDeleted, ProjectPath: projectPath, ID: id})
	return nil
}

func (x *Index) filePath(projectPath, fileName string) string {
	return filepath.Join(projectPath, filepath.FromSlash(fileName))
}

func (x *Index) readIndex(projectPath string) ([]models.Article, error) {
	var articles []models.Article
	if err := storage.ReadJSON(x.fs, x.layout.ArticlesIndexFile(projectPath), &articles); err != nil {
		return nil, err
	}
	if articles == nil {
		articles = []models.Article{}
	}
	for i := range articles {
		articles[i].Content = ""
	}
	return articles, nil
}

// indexForUpdate reads the index for a mutation. An unreadable index is
// treated as empty; a rebuild restores entries from the files.
func (x *Index) indexForUpdate(projectPath string) []models.Article {
	articles, err := x.readIndex(projectPath)
	if err == nil {
		return articles
	}
	if !errors.Is(err, fs.ErrNotExist) {
		x.recovered(projectPath, err)
	}
	return []models.Article{}
}

func (x *Index) writeIndex(projectPath string, articles []models.Article) error {
	summaries := make([]models.Article, len(articles))
	for i, a := range articles {
		summaries[i] = a.Summary()
	}
	if err := storage.WriteJSON(x.fs, x.layout.ArticlesIndexFile(projectPath), summaries); err != nil {
		return fmt.Errorf("failed to save article index: %w", err)
	}
	return nil
}

func sortByUpdated(articles []models.Article) {
	sort.SliceStable(articles, func(i, j int) bool {
		a, _ := models.ParseDate(articles[i].UpdatedAt)
		b, _ := models.ParseDate(articles[j].UpdatedAt)
		return a.After(b)
	})
}

func indexOf(articles []models.Article, id string) int {
	for i, a := range articles {
		if a.ID == id {
			return i
		}
	}
	return -1
}

func orDefault(v, fallback string) string {
	if v == "" {
		return fallback
	}
	return v
}
