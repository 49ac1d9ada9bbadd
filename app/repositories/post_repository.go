package repositories

import (
	"sync"

	"quill/app/models"

	"github.com/dgraph-io/badger/v4"
)

// BadgerPostRepository implements PostRepository using BadgerDB
type BadgerPostRepository struct {
	db    *badger.DB
	mutex sync.Mutex
}

// NewBadgerPostRepository creates a new BadgerPostRepository
func NewBadgerPostRepository(db *badger.DB) *BadgerPostRepository {
	return &BadgerPostRepository{db: db}
}

// Create assigns the next ID and creation time and stores the post
func (r *BadgerPostRepository) Create(post *models.Post) error {
	r.mutex.Lock()
	defer r.mutex.Unlock()

	return r.db.Update(func(txn *badger.Txn) error {
		id, err := getNextID(txn, PostSeqKey)
		if err != nil {
			return err
		}
		post.ID = id
		post.BeforeCreate()

		return putEntity(txn, entityKey(PostKeyPrefix, post.ID), post)
	})
}

// GetByID retrieves a post by ID
func (r *BadgerPostRepository) GetByID(id int) (*models.Post, error) {
	var post models.Post
	err := r.db.View(func(txn *badger.Txn) error {
		return getEntity(txn, entityKey(PostKeyPrefix, id), &post)
	})
	if err != nil {
		return nil, err
	}
	return &post, nil
}

// Each visits posts in insertion order
func (r *BadgerPostRepository) Each(fn func(post *models.Post) bool) error {
	return scanPrefix(r.db, PostKeyPrefix, func(val []byte) (bool, error) {
		var post models.Post
		if err := unmarshalEntity(val, &post); err != nil {
			return false, err
		}
		return fn(&post), nil
	})
}

// List retrieves all posts in insertion order
func (r *BadgerPostRepository) List() ([]*models.Post, error) {
	posts := []*models.Post{}
	err := r.Each(func(post *models.Post) bool {
		posts = append(posts, post)
		return true
	})
	if err != nil {
		return nil, err
	}
	return posts, nil
}

// Update merges patch onto the stored post and returns the result
func (r *BadgerPostRepository) Update(id int, patch models.PostPatch) (*models.Post, error) {
	r.mutex.Lock()
	defer r.mutex.Unlock()

	var merged models.Post
	err := r.db.Update(func(txn *badger.Txn) error {
		key := entityKey(PostKeyPrefix, id)

		var existing models.Post
		if err := getEntity(txn, key, &existing); err != nil {
			return err
		}

		merged = existing.Merge(patch)
		return putEntity(txn, key, merged)
	})
	if err != nil {
		return nil, err
	}
	return &merged, nil
}

// Delete removes a post and reports whether it existed
func (r *BadgerPostRepository) Delete(id int) (bool, error) {
	r.mutex.Lock()
	defer r.mutex.Unlock()

	existed := false
	err := r.db.Update(func(txn *badger.Txn) error {
		key := entityKey(PostKeyPrefix, id)

		_, err := txn.Get(key)
		if err == badger.ErrKeyNotFound {
			return nil
		}
		if err != nil {
			return err
		}

		existed = true
		return txn.Delete(key)
	})
	return existed, err
}
