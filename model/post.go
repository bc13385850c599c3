package model

// PostCollectionName is the name of the posts collection on disk
const PostCollectionName = "posts"

// Post model
type Post struct {
	ID      int    `json:"id"`
	Title   string `json:"title"`
	Details string `json:"details"`
	Author  string `json:"author"`
}

func (p Post) RecordID() int {
	return p.ID
}

func (p Post) WithID(id int) Post {
	p.ID = id
	return p
}
