// Copyright (C) 2025 Tienda Labs (dev@tiendalabs.io)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

// Package auth provides the sign-in/sign-up/sign-out capability for the
// storefront.
//
// This is a single-user local auth provider: user records live in the
// same BadgerDB instance as the catalog (keyspace "user:<email>") with
// bcrypt password hashes, and the signed-in identity is held in memory.
// There are no tokens and no sessions beyond the running process, which
// matches the demo's single-device scope.
package auth

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"sync"

	"github.com/dgraph-io/badger/v4"
	"golang.org/x/crypto/bcrypt"
)

const userPrefix = "user:"

// Sentinel errors for the auth service.
var (
	// ErrInvalidCredentials covers both unknown email and wrong password.
	// Callers must not be able to distinguish the two.
	ErrInvalidCredentials = errors.New("invalid email or password")

	// ErrUserExists indicates sign-up with an already-registered email.
	ErrUserExists = errors.New("user already exists")
)

// Identity is the signed-in user as seen by the rest of the system.
type Identity struct {
	Name  string `json:"name"`
	Email string `json:"email"`
}

// userRecord is the stored shape of one user.
type userRecord struct {
	Name         string `json:"name"`
	Email        string `json:"email"`
	PasswordHash []byte `json:"passwordHash"`
}

// Service is the local auth provider.
//
// Thread Safety: Safe for concurrent use. The current identity is
// guarded by a mutex; user records rely on BadgerDB transactions.
type Service struct {
	db *badger.DB

	mu      sync.Mutex
	current *Identity
}

// NewService creates an auth service over an open BadgerDB.
func NewService(db *badger.DB) *Service {
	return &Service{db: db}
}

func userKey(email string) []byte {
	return []byte(userPrefix + normalizeEmail(email))
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// SignUp registers a new user and signs them in.
//
// Outputs:
//
//	error - ErrUserExists when the email is taken, otherwise hashing or
//	storage failures.
func (s *Service) SignUp(ctx context.Context, name, email, password string) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return fmt.Errorf("hash password: %w", err)
	}

	record := userRecord{Name: name, Email: normalizeEmail(email), PasswordHash: hash}
	data, err := json.Marshal(record)
	if err != nil {
		return fmt.Errorf("encode user record: %w", err)
	}

	err = s.db.Update(func(txn *badger.Txn) error {
		_, err := txn.Get(userKey(email))
		if err == nil {
			return ErrUserExists
		}
		if !errors.Is(err, badger.ErrKeyNotFound) {
			return err
		}
		return txn.Set(userKey(email), data)
	})
	if err != nil {
		return err
	}

	s.mu.Lock()
	s.current = &Identity{Name: record.Name, Email: record.Email}
	s.mu.Unlock()
	return nil
}

// SignIn verifies credentials and records the identity as current.
//
// Outputs:
//
//	error - ErrInvalidCredentials for unknown email or wrong password,
//	otherwise storage failures.
func (s *Service) SignIn(ctx context.Context, email, password string) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	var record userRecord
	err := s.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get(userKey(email))
		if errors.Is(err, badger.ErrKeyNotFound) {
			return ErrInvalidCredentials
		}
		if err != nil {
			return err
		}
		return item.Value(func(val []byte) error {
			return json.Unmarshal(val, &record)
		})
	})
	if err != nil {
		return err
	}

	if bcrypt.CompareHashAndPassword(record.PasswordHash, []byte(password)) != nil {
		return ErrInvalidCredentials
	}

	s.mu.Lock()
	s.current = &Identity{Name: record.Name, Email: record.Email}
	s.mu.Unlock()
	return nil
}

// SignOut clears the current identity. Safe to call when nobody is
// signed in.
func (s *Service) SignOut() {
	s.mu.Lock()
	s.current = nil
	s.mu.Unlock()
}

// CurrentUser returns the signed-in identity, if any.
func (s *Service) CurrentUser() (Identity, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.current == nil {
		return Identity{}, false
	}
	return *s.current, true
}
