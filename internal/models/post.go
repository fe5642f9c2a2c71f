package models

const DefaultReadTime = "5 min read"

type Post struct {
	ID       string `json:"id,omitempty"`
	Title    string `json:"title"`
	Content  string `json:"content"`
	Excerpt  string `json:"excerpt"`
	Author   string `json:"author"`
	ImageURL string `json:"imageUrl"`
	Date     string `json:"date,omitempty"`
	ReadTime string `json:"readTime"`
}

// PostDraft is the writable part of a post. Author is filled in from the
// session when the draft is submitted.
type PostDraft struct {
	Title    string `json:"title" validate:"required"`
	Content  string `json:"content" validate:"required"`
	Excerpt  string `json:"excerpt" validate:"required"`
	Author   string `json:"author"`
	ImageURL string `json:"imageUrl" validate:"required"`
	ReadTime string `json:"readTime"`
}

func (d PostDraft) WithDefaults(author string) PostDraft {
	d.Author = author
	if d.ReadTime == "" {
		d.ReadTime = DefaultReadTime
	}
	return d
}

// UploadTarget is a presigned location for a cover image. The caller PUTs the
// bytes to URL and stores Key as the post's ImageURL.
type UploadTarget struct {
	URL string `json:"url"`
	Key string `json:"key"`
}
