package jsondb

import (
	"fmt"

	"github.com/sdomino/scribble"

	"github.com/ngoduykhanh/flatpost/model"
	"github.com/ngoduykhanh/flatpost/store"
)

type JsonDB struct {
	conn   *scribble.Driver
	dbPath string
	users  *Collection[model.User]
	posts  *Collection[model.Post]
}

// New returns a new pointer JsonDB
func New(dbPath string) (*JsonDB, error) {
	conn, err := scribble.New(dbPath, nil)
	if err != nil {
		return nil, err
	}
	ans := JsonDB{
		conn:   conn,
		dbPath: dbPath,
		users:  NewCollection[model.User](conn, model.UserCollectionName),
		posts:  NewCollection[model.Post](conn, model.PostCollectionName),
	}
	return &ans, nil
}

// Init creates the users and posts collections if they do not exist
func (o *JsonDB) Init() error {
	if err := o.users.Init(); err != nil {
		return err
	}
	return o.posts.Init()
}

// GetUsers func to get all users from the database
func (o *JsonDB) GetUsers() ([]model.User, error) {
	return o.users.List()
}

// GetUserByEmail func to get single user from the database
func (o *JsonDB) GetUserByEmail(email string) (model.User, error) {
	return o.users.Find(func(u model.User) bool { return u.Email == email })
}

// CreateUser func to add a user, rejecting an email that is already taken
func (o *JsonDB) CreateUser(user model.User) (model.User, error) {
	return o.users.Append(user, func(users []model.User) error {
		for _, u := range users {
			if u.Email == user.Email {
				return fmt.Errorf("email %s: %w", user.Email, store.ErrConflict)
			}
		}
		return nil
	})
}

// GetPosts func to get all posts from the database
func (o *JsonDB) GetPosts() ([]model.Post, error) {
	return o.posts.List()
}

// GetPostByID func to get single post from the database
func (o *JsonDB) GetPostByID(id int) (model.Post, error) {
	return o.posts.FindByID(id)
}

// CreatePost func to add a post under the next free id
func (o *JsonDB) CreatePost(post model.Post) (model.Post, error) {
	return o.posts.Append(post)
}

// UpdatePost func to change a post in place
func (o *JsonDB) UpdatePost(id int, fn func(model.Post) model.Post) (model.Post, error) {
	return o.posts.Update(id, fn)
}

// DeletePost func to remove a post from the database
func (o *JsonDB) DeletePost(id int) (bool, error) {
	return o.posts.Remove(id)
}

func (o *JsonDB) GetPath() string {
	return o.dbPath
}
