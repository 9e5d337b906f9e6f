package models

// Article is a long-form article. Index entries carry an empty Content; the
// body is only populated when a single article is loaded.
type Article struct {
	ID            string `json:"id"`
	Title         string `json:"title"`
	Subtitle      string `json:"subtitle,omitempty"`
	PublishDate   string `json:"publishDate,omitempty"`
	CoverImageURL string `json:"coverImageUrl,omitempty"`
	Content       string `json:"content"`
	FileName      string `json:"fileName"`
	CreatedAt     string `json:"createdAt"`
	UpdatedAt     string `json:"updatedAt"`
}

// Summary returns a copy of a without its body.
func (a Article) Summary() Article {
	a.Content = ""
	return a
}

// ArticleInput is the payload for creating or updating an article.
type ArticleInput struct {
	ID            string `json:"id,omitempty" validate:"omitempty,fileid"`
	Title         string `json:"title" validate:"required"`
	Subtitle      string `json:"subtitle,omitempty"`
	PublishDate   string `json:"publishDate,omitempty"`
	CoverImageURL string `json:"coverImageUrl,omitempty" validate:"omitempty,url"`
	Content       string `json:"content"`
}
