// Package shortlink associates opaque short keys with combined calendar
// configurations. A key, once issued, always resolves to the same
// configuration; registration is idempotent over the normalized config.
package shortlink

import (
	"crypto/rand"
	"errors"
	"fmt"

	"github.com/fical/fical/app/calendar"
	"github.com/fical/fical/app/database"
)

const (
	keyLength      = 8
	keyAlphabet    = "abcdefghijklmnopqrstuvwxyzABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789"
	maxKeyAttempts = 5
)

// ErrNotFound is returned by Resolve for keys that were never issued.
var ErrNotFound = errors.New("short link not found")

type ShortLinkRepositoryInterface interface {
	Insert(key, config string) (bool, error)
	GetByKey(key string) (*database.ShortLink, error)
	GetByConfig(config string) (*database.ShortLink, error)
	GetCount() (int, error)
}

var _ ShortLinkRepositoryInterface = (*database.ShortLinkRepository)(nil)

type Service struct {
	repo ShortLinkRepositoryInterface
}

func NewService(repo ShortLinkRepositoryInterface) *Service {
	return &Service{repo: repo}
}

// GetOrCreate returns the key registered for the given request
// configuration, creating one on first registration. Calling it again
// with an equivalent configuration returns the same key and stores
// nothing new, also under concurrent first registrations: the config
// uniqueness constraint makes the losing writer re-read the winner's key.
func (s *Service) GetOrCreate(req calendar.Request) (string, error) {
	config, err := calendar.EncodeConfig(calendar.Normalize(req))
	if err != nil {
		return "", err
	}

	for attempt := 0; attempt < maxKeyAttempts; attempt++ {
		link, err := s.repo.GetByConfig(config)
		if err != nil {
			return "", err
		}
		if link != nil {
			return link.Key, nil
		}

		key, err := generateKey()
		if err != nil {
			return "", err
		}

		inserted, err := s.repo.Insert(key, config)
		if err != nil {
			if database.IsKeyConflict(err) {
				// Generated key is already taken by another config; try a fresh one.
				continue
			}
			return "", err
		}
		if inserted {
			return key, nil
		}

		// Lost the insert race to a concurrent registration of the same
		// config; the next iteration reads the winner's key.
	}

	return "", fmt.Errorf("could not allocate a unique short key after %d attempts", maxKeyAttempts)
}

// Resolve returns the configuration stored under a previously issued key.
func (s *Service) Resolve(key string) (calendar.Request, error) {
	link, err := s.repo.GetByKey(key)
	if err != nil {
		return calendar.Request{}, err
	}
	if link == nil {
		return calendar.Request{}, ErrNotFound
	}

	req, err := calendar.DecodeConfig(link.Config)
	if err != nil {
		return calendar.Request{}, fmt.Errorf("stored configuration for key '%s' is unreadable: %w", key, err)
	}

	return req, nil
}

// Count returns the number of stored short links.
func (s *Service) Count() (int, error) {
	return s.repo.GetCount()
}

func generateKey() (string, error) {
	buf := make([]byte, keyLength)
	if _, err := rand.Read(buf); err != nil {
		return "", fmt.Errorf("failed to generate short key: %w", err)
	}

	for i, b := range buf {
		buf[i] = keyAlphabet[int(b)%len(keyAlphabet)]
	}

	return string(buf), nil
}
