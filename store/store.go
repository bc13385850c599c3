package store

import (
	"errors"

	"github.com/ngoduykhanh/flatpost/model"
)

var (
	// ErrNotFound is returned when no record has the requested id or key
	ErrNotFound = errors.New("record not found")
	// ErrConflict is returned when a write would break a uniqueness rule
	ErrConflict = errors.New("record already exists")
)

type IStore interface {
	Init() error
	GetUsers() ([]model.User, error)
	GetUserByEmail(email string) (model.User, error)
	CreateUser(user model.User) (model.User, error)
	GetPosts() ([]model.Post, error)
	GetPostByID(id int) (model.Post, error)
	CreatePost(post model.Post) (model.Post, error)
	UpdatePost(id int, fn func(model.Post) model.Post) (model.Post, error)
	DeletePost(id int) (bool, error)
}
