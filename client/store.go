package client

import (
	"encoding/json"
	"time"

	"github.com/pkg/errors"
	bolt "go.etcd.io/bbolt"
)

var (
	stateBucket = []byte("state")

	sessionKey = []byte("session")
	cartKey    = []byte("cart")
	themeKey   = []byte("theme")
)

const (
	ThemeLight = "light"
	ThemeDark  = "dark"
)

// ErrNoSession means nobody is logged in on this machine
var ErrNoSession = errors.New("not logged in")

// Store persists client state between runs in a bolt file
type Store struct {
	db *bolt.DB
}

func OpenStore(path string) (*Store, error) {
	db, err := bolt.Open(path, 0600, &bolt.Options{Timeout: time.Second})
	if err != nil {
		return nil, errors.Wrapf(err, "open state file %s", path)
	}
	err = db.Update(func(tx *bolt.Tx) error {
		_, err := tx.CreateBucketIfNotExists(stateBucket)
		return err
	})
	if err != nil {
		db.Close()
		return nil, errors.Wrap(err, "initialize state file")
	}
	return &Store{db: db}, nil
}

func (s *Store) Close() error {
	return s.db.Close()
}

func (s *Store) put(key []byte, v interface{}) error {
	buf, err := json.Marshal(v)
	if err != nil {
		return err
	}
	return s.db.Update(func(tx *bolt.Tx) error {
		return tx.Bucket(stateBucket).Put(key, buf)
	})
}

// get decodes key into v and reports whether it was present
func (s *Store) get(key []byte, v interface{}) (bool, error) {
	var found bool
	err := s.db.View(func(tx *bolt.Tx) error {
		buf := tx.Bucket(stateBucket).Get(key)
		if buf == nil {
			return nil
		}
		found = true
		return json.Unmarshal(buf, v)
	})
	return found, err
}

func (s *Store) delete(key []byte) error {
	return s.db.Update(func(tx *bolt.Tx) error {
		return tx.Bucket(stateBucket).Delete(key)
	})
}

func (s *Store) SaveSession(sess Session) error {
	return s.put(sessionKey, sess)
}

// LoadSession returns ErrNoSession when nothing was saved
func (s *Store) LoadSession() (*Session, error) {
	var sess Session
	found, err := s.get(sessionKey, &sess)
	if err != nil {
		return nil, err
	}
	if !found || sess.Token == "" {
		return nil, ErrNoSession
	}
	return &sess, nil
}

// ClearSession logs out and drops the cart with it
func (s *Store) ClearSession() error {
	if err := s.delete(sessionKey); err != nil {
		return err
	}
	return s.delete(cartKey)
}

func (s *Store) SaveCart(c Cart) error {
	return s.put(cartKey, c)
}

func (s *Store) LoadCart() (Cart, error) {
	var c Cart
	_, err := s.get(cartKey, &c)
	return c, err
}

// Theme defaults to light
func (s *Store) Theme() (string, error) {
	var theme string
	found, err := s.get(themeKey, &theme)
	if err != nil || !found {
		return ThemeLight, err
	}
	return theme, nil
}

func (s *Store) SetTheme(theme string) error {
	if theme != ThemeLight && theme != ThemeDark {
		return errors.Errorf("unknown theme %q", theme)
	}
	return s.put(themeKey, theme)
}

// ToggleTheme flips between light and dark and returns the new value
func (s *Store) ToggleTheme() (string, error) {
	theme, err := s.Theme()
	if err != nil {
		return "", err
	}
	next := ThemeDark
	if theme == ThemeDark {
		next = ThemeLight
	}
	return next, s.SetTheme(next)
}
