package posts

import (
	"fmt"
	"path"

	"github.com/bilgisen/zenstudio/internal/frontmatter"
	"github.com/bilgisen/zenstudio/internal/models"
)

const (
	liveDir    = "posts"
	archiveDir = "archive"
)

// FilePath returns the slash separated location of a post file relative to
// the project data directory. It depends only on platform, id and archived.
func FilePath(platform models.Platform, id string, archived bool) string {
	dir := liveDir
	if archived {
		dir = archiveDir
	}
	return path.Join(dir, string(platform)+"-"+id+".md")
}

// RenderFile renders post as a header block followed by its raw content.
// Posts whose id cannot name a file are rejected with ErrInvalidID.
func RenderFile(post models.ScheduledPost, archived bool) (relPath, text string, err error) {
	if !models.ValidID(post.ID) {
		return "", "", fmt.Errorf("post %q: %w", post.ID, models.ErrInvalidID)
	}
	fields := []frontmatter.Field{
		frontmatter.Str("id", post.ID),
		frontmatter.Str("platform", string(post.Platform)),
		frontmatter.Str("title", post.Title),
		frontmatter.Str("scheduledDate", scheduledDate(post)),
		frontmatter.Str("scheduledTime", post.ScheduledTime),
		frontmatter.Str("status", string(post.Status)),
		frontmatter.Int("characterCount", post.CharacterCount),
		frontmatter.Int("wordCount", post.WordCount),
		frontmatter.Str("createdAt", models.FormatTimestamp(post.CreatedAt)),
	}

	text, err = frontmatter.Render(fields, post.Content)
	if err != nil {
		return "", "", err
	}
	return FilePath(post.Platform, post.ID, archived), text, nil
}

func scheduledDate(post models.ScheduledPost) string {
	if post.ScheduledDate == nil {
		return ""
	}
	return models.FormatTimestamp(*post.ScheduledDate)
}
