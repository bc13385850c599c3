package jsondb

import (
	"errors"
	"fmt"
	"os"

	"github.com/labstack/gommon/log"
	"gopkg.in/yaml.v3"

	"github.com/ngoduykhanh/flatpost/model"
	"github.com/ngoduykhanh/flatpost/store"
	"github.com/ngoduykhanh/flatpost/util"
)

type seedFile struct {
	Users []struct {
		Email    string     `yaml:"email"`
		Name     string     `yaml:"name"`
		Password string     `yaml:"password"`
		Role     model.Role `yaml:"role"`
	} `yaml:"users"`
}

// SeedUsers creates the accounts listed in the YAML file at path. Entries
// whose email already exists are left untouched, so seeding is safe to repeat
// on every start.
func (o *JsonDB) SeedUsers(path string, hasher util.Hasher) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("cannot read seed file: %w", err)
	}
	var sf seedFile
	if err := yaml.Unmarshal(data, &sf); err != nil {
		return fmt.Errorf("cannot decode seed file: %w", err)
	}

	for _, u := range sf.Users {
		if u.Email == "" || u.Password == "" {
			log.Warnf("Skipping seed user without email or password: %q", u.Email)
			continue
		}
		if _, err := o.GetUserByEmail(u.Email); err == nil {
			continue
		} else if !errors.Is(err, store.ErrNotFound) {
			return err
		}

		role := u.Role
		if role != model.RoleAdmin {
			role = model.RoleUser
		}
		hash, err := hasher.Hash(u.Password)
		if err != nil {
			return fmt.Errorf("seed user %s: %w", u.Email, err)
		}
		user, err := o.CreateUser(model.User{
			Role:           role,
			Email:          u.Email,
			Name:           u.Name,
			HashedPassword: hash,
		})
		if errors.Is(err, store.ErrConflict) {
			continue
		}
		if err != nil {
			return err
		}
		log.Infof("Seeded %s account %s (id %d)", user.Role, user.Email, user.ID)
	}
	return nil
}
