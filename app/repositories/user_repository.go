package repositories

import (
	"errors"
	"strconv"
	"sync"

	"quill/app/models"

	"github.com/dgraph-io/badger/v4"
)

// userRecord is the stored form of a user. models.User hides the password
// from JSON, so the record carries it explicitly.
type userRecord struct {
	ID       int    `json:"id"`
	Username string `json:"username"`
	Password string `json:"password"`
	FullName string `json:"fullName,omitempty"`
	IsAdmin  bool   `json:"isAdmin"`
}

func toRecord(u *models.User) userRecord {
	return userRecord{ID: u.ID, Username: u.Username, Password: u.Password, FullName: u.FullName, IsAdmin: u.IsAdmin}
}

func (r userRecord) user() *models.User {
	return &models.User{ID: r.ID, Username: r.Username, Password: r.Password, FullName: r.FullName, IsAdmin: r.IsAdmin}
}

// BadgerUserRepository implements UserRepository using BadgerDB
type BadgerUserRepository struct {
	db    *badger.DB
	mutex sync.Mutex
}

// NewBadgerUserRepository creates a new BadgerUserRepository
func NewBadgerUserRepository(db *badger.DB) *BadgerUserRepository {
	return &BadgerUserRepository{db: db}
}

// Create registers a user. IsAdmin is always cleared; usernames are unique.
func (r *BadgerUserRepository) Create(user *models.User) error {
	user.IsAdmin = false
	return r.create(user)
}

// seedAdmin stores user as an administrator.
func (r *BadgerUserRepository) seedAdmin(user *models.User) error {
	user.IsAdmin = true
	return r.create(user)
}

func (r *BadgerUserRepository) create(user *models.User) error {
	r.mutex.Lock()
	defer r.mutex.Unlock()

	return r.db.Update(func(txn *badger.Txn) error {
		indexKey := []byte(UsernameKeyPrefix + user.Username)
		_, err := txn.Get(indexKey)
		if err == nil {
			return ErrConflict
		}
		if !errors.Is(err, badger.ErrKeyNotFound) {
			return err
		}

		id, err := getNextID(txn, UserSeqKey)
		if err != nil {
			return err
		}
		user.ID = id

		if err := putEntity(txn, entityKey(UserKeyPrefix, id), toRecord(user)); err != nil {
			return err
		}
		return txn.Set(indexKey, []byte(strconv.Itoa(id)))
	})
}

// GetByID retrieves a user by ID
func (r *BadgerUserRepository) GetByID(id int) (*models.User, error) {
	var rec userRecord
	err := r.db.View(func(txn *badger.Txn) error {
		return getEntity(txn, entityKey(UserKeyPrefix, id), &rec)
	})
	if err != nil {
		return nil, err
	}
	return rec.user(), nil
}

// GetByUsername retrieves a user by exact, case-sensitive username
func (r *BadgerUserRepository) GetByUsername(username string) (*models.User, error) {
	var rec userRecord
	err := r.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get([]byte(UsernameKeyPrefix + username))
		if errors.Is(err, badger.ErrKeyNotFound) {
			return ErrNotFound
		}
		if err != nil {
			return err
		}
		var id int
		err = item.Value(func(val []byte) error {
			id, err = strconv.Atoi(string(val))
			return err
		})
		if err != nil {
			return err
		}
		return getEntity(txn, entityKey(UserKeyPrefix, id), &rec)
	})
	if err != nil {
		return nil, err
	}
	return rec.user(), nil
}

// List returns all users in insertion order
func (r *BadgerUserRepository) List() ([]*models.User, error) {
	users := []*models.User{}
	err := scanPrefix(r.db, UserKeyPrefix, func(val []byte) (bool, error) {
		var rec userRecord
		if err := unmarshalEntity(val, &rec); err != nil {
			return false, err
		}
		users = append(users, rec.user())
		return true, nil
	})
	if err != nil {
		return nil, err
	}
	return users, nil
}
