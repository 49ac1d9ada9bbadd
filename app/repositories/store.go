package repositories

import (
	"fmt"
	"io"

	"quill/app/models"

	"github.com/dgraph-io/badger/v4"
)

// Seed is the initial state of a Store. Admin, when set, is stored first and
// receives id 1.
type Seed struct {
	Admin *models.User
}

// Store is the in-memory entity store for users, posts and comments. It is
// backed by Badger in in-memory mode, so every mutation is a single
// transaction and readers see committed state only. Contents are lost on Close.
type Store struct {
	db       *badger.DB
	Users    *BadgerUserRepository
	Posts    *BadgerPostRepository
	Comments *BadgerCommentRepository
	query    *PostQuery
}

func openStore() (*Store, error) {
	opts := badger.DefaultOptions("").
		WithInMemory(true).
		WithLogger(nil).
		WithNumVersionsToKeep(1)
	db, err := badger.Open(opts)
	if err != nil {
		return nil, fmt.Errorf("open store: %w", err)
	}

	s := &Store{
		db:       db,
		Users:    NewBadgerUserRepository(db),
		Posts:    NewBadgerPostRepository(db),
		Comments: NewBadgerCommentRepository(db),
	}
	s.query = NewPostQuery(s.Posts)
	return s, nil
}

// NewStore opens an empty in-memory store and applies seed.
func NewStore(seed Seed) (*Store, error) {
	s, err := openStore()
	if err != nil {
		return nil, err
	}

	if seed.Admin != nil {
		admin := *seed.Admin
		if err := s.Users.seedAdmin(&admin); err != nil {
			s.db.Close()
			return nil, fmt.Errorf("seed admin: %w", err)
		}
	}
	return s, nil
}

// RestoreStore opens a store holding the contents of a Backup stream,
// including its id sequences.
func RestoreStore(r io.Reader) (*Store, error) {
	s, err := openStore()
	if err != nil {
		return nil, err
	}
	if err := s.db.Load(r, 16); err != nil {
		s.db.Close()
		return nil, fmt.Errorf("restore store: %w", err)
	}
	return s, nil
}

// Backup writes a full snapshot of the store to w.
func (s *Store) Backup(w io.Writer) error {
	if _, err := s.db.Backup(w, 0); err != nil {
		return fmt.Errorf("backup store: %w", err)
	}
	return nil
}

// Close releases the store
func (s *Store) Close() error {
	return s.db.Close()
}

// CreateUser registers a user with a fresh id and no admin rights.
// It fails with ErrConflict when the username is taken.
func (s *Store) CreateUser(user models.User) (*models.User, error) {
	if err := s.Users.Create(&user); err != nil {
		return nil, err
	}
	return &user, nil
}

func (s *Store) GetUser(id int) (*models.User, error) {
	return s.Users.GetByID(id)
}

func (s *Store) GetUserByUsername(username string) (*models.User, error) {
	return s.Users.GetByUsername(username)
}

func (s *Store) GetAllUsers() ([]*models.User, error) {
	return s.Users.List()
}

// CreatePost stores post with a fresh id and creation time.
// AuthorID is not checked against the users.
func (s *Store) CreatePost(post models.Post) (*models.Post, error) {
	if err := s.Posts.Create(&post); err != nil {
		return nil, err
	}
	return &post, nil
}

func (s *Store) GetPost(id int) (*models.Post, error) {
	return s.Posts.GetByID(id)
}

// UpdatePost shallow-merges patch onto post id.
func (s *Store) UpdatePost(id int, patch models.PostPatch) (*models.Post, error) {
	return s.Posts.Update(id, patch)
}

func (s *Store) DeletePost(id int) (bool, error) {
	return s.Posts.Delete(id)
}

func (s *Store) GetAllPosts() ([]*models.Post, error) {
	return s.Posts.List()
}

func (s *Store) GetPostsByAuthor(authorID int) ([]*models.Post, error) {
	return s.query.ByAuthor(authorID)
}

func (s *Store) GetPostsByCategory(category string) ([]*models.Post, error) {
	return s.query.ByCategory(category)
}

func (s *Store) SearchPosts(query string) ([]*models.Post, error) {
	return s.query.Search(query)
}

func (s *Store) CreateComment(comment models.Comment) (*models.Comment, error) {
	if err := s.Comments.Create(&comment); err != nil {
		return nil, err
	}
	return &comment, nil
}

func (s *Store) GetComment(id int) (*models.Comment, error) {
	return s.Comments.GetByID(id)
}

func (s *Store) GetCommentsByPost(postID int) ([]*models.Comment, error) {
	return s.Comments.ListByPost(postID)
}

func (s *Store) DeleteComment(id int) (bool, error) {
	return s.Comments.Delete(id)
}
