package storage

import (
	"fmt"
	"path/filepath"

	"github.com/bilgisen/zenstudio/internal/models"
	"github.com/bilgisen/zenstudio/internal/utils"
)

const (
	scheduleFile      = "schedule.json"
	articlesIndexFile = "articles.json"
	checklistFile     = "checklist.json"
	postsDir          = "posts"
	archiveDir        = "archive"

	// ArticlesDir is where new article files are created, relative to the
	// project root.
	ArticlesDir = "articles"
)

// Layout resolves where the per-project state of a project lives.
type Layout struct {
	DataRoot string
}

// ProjectDir returns <DataRoot>/projects/<name>_<hash>.
func (l Layout) ProjectDir(projectPath string) string {
	return filepath.Join(l.DataRoot, "projects", utils.ProjectDirName(projectPath))
}

func (l Layout) ScheduleFile(projectPath string) string {
	return filepath.Join(l.ProjectDir(projectPath), scheduleFile)
}

func (l Layout) ArticlesIndexFile(projectPath string) string {
	return filepath.Join(l.ProjectDir(projectPath), articlesIndexFile)
}

func (l Layout) ChecklistFile(projectPath string) string {
	return filepath.Join(l.ProjectDir(projectPath), checklistFile)
}

func (l Layout) PostsDir(projectPath string) string {
	return filepath.Join(l.ProjectDir(projectPath), postsDir)
}

func (l Layout) ArchiveDir(projectPath string) string {
	return filepath.Join(l.ProjectDir(projectPath), archiveDir)
}

// Ensure creates the project data directory and its post folders.
func (l Layout) Ensure(fsys FS, projectPath string) error {
	dirs := []string{
		l.ProjectDir(projectPath),
		l.PostsDir(projectPath),
		l.ArchiveDir(projectPath),
	}
	for _, dir := range dirs {
		if err := fsys.MkdirAll(dir); err != nil {
			return fmt.Errorf("%w: failed to create %s: %w", models.ErrIO, dir, err)
		}
	}
	return nil
}
