// Copyright (C) 2025 Tienda Labs (dev@tiendalabs.io)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

package storefront

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadSeedFile(t *testing.T) {
	dir := t.TempDir()

	tests := []struct {
		name    string
		body    string
		wantLen int
		wantErr bool
	}{
		{
			name:    "wrapped document",
			body:    `{"products": [{"id": 1, "name": "Laptop", "price": 10, "stock": 5}]}`,
			wantLen: 1,
		},
		{
			name:    "bare array",
			body:    `[{"id": 1, "name": "Laptop", "price": 10, "stock": 5}, {"id": 2, "name": "Mouse", "price": 5, "stock": 9}]`,
			wantLen: 2,
		},
		{
			name:    "empty array",
			body:    `[]`,
			wantLen: 0,
		},
		{
			name:    "malformed",
			body:    `{"products": [`,
			wantErr: true,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := filepath.Join(dir, "seed.json")
			require.NoError(t, os.WriteFile(path, []byte(tt.body), 0640))

			products, err := LoadSeedFile(path)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Len(t, products, tt.wantLen)
		})
	}
}

func TestLoadSeedFile_Missing(t *testing.T) {
	_, err := LoadSeedFile(filepath.Join(t.TempDir(), "nope.json"))
	assert.Error(t, err)
}

func TestSeedWatcher_ReloadsOnWrite(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "seed.json")
	require.NoError(t, os.WriteFile(path, []byte(`[{"id": 1, "name": "Laptop", "price": 10, "stock": 5}]`), 0640))

	store := newMemStore()
	s := newTestSession(store, &stubFeed{})
	seeded, err := LoadSeedFile(path)
	require.NoError(t, err)
	require.NoError(t, s.ReplaceCatalog(context.Background(), seeded))

	w, err := NewSeedWatcher(path, s, quietLogger())
	require.NoError(t, err)
	defer w.Stop()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	require.NoError(t, w.Start(ctx))

	// Editor-style replace: write a temp file and rename over the seed.
	tmp := filepath.Join(dir, "seed.json.tmp")
	next := `[{"id": 1, "name": "Laptop", "price": 10, "stock": 5}, {"id": 2, "name": "Mouse", "price": 5, "stock": 9}]`
	require.NoError(t, os.WriteFile(tmp, []byte(next), 0640))
	require.NoError(t, os.Rename(tmp, path))

	require.Eventually(t, func() bool {
		return len(s.Products()) == 2
	}, 3*time.Second, 20*time.Millisecond, "watcher should pick up the replaced seed file")

	// An unparseable write must not clobber the loaded catalog.
	require.NoError(t, os.WriteFile(path, []byte(`{"products": [`), 0640))
	time.Sleep(2 * DefaultDebounceWindow)
	assert.Len(t, s.Products(), 2)
}

func TestSeedWatcher_ReloadReconcilesCart(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "seed.json")
	require.NoError(t, os.WriteFile(path, []byte(`[{"id": 1, "name": "Laptop", "price": 10, "stock": 5}]`), 0640))

	store := newMemStore()
	s := newTestSession(store, &stubFeed{})
	seeded, err := LoadSeedFile(path)
	require.NoError(t, err)
	require.NoError(t, s.ReplaceCatalog(context.Background(), seeded))

	ok, err := s.AddToCart(1, 4)
	require.NoError(t, err)
	require.True(t, ok)

	w, err := NewSeedWatcher(path, s, quietLogger())
	require.NoError(t, err)
	defer w.Stop()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	require.NoError(t, w.Start(ctx))

	// Stock drops below the cart quantity; the line must clamp down.
	require.NoError(t, os.WriteFile(path, []byte(`[{"id": 1, "name": "Laptop", "price": 10, "stock": 2}]`), 0640))

	require.Eventually(t, func() bool {
		line, found := s.CartLine(1)
		return found && line.Quantity == 2
	}, 3*time.Second, 20*time.Millisecond, "cart line should clamp to the reduced stock")
}

func TestSeedWatcher_StopIsIdempotent(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "seed.json")
	require.NoError(t, os.WriteFile(path, []byte(`[]`), 0640))

	s := newTestSession(newMemStore(), &stubFeed{})
	w, err := NewSeedWatcher(path, s, quietLogger())
	require.NoError(t, err)

	require.NoError(t, w.Start(context.Background()))
	w.Stop()
	w.Stop()
}
