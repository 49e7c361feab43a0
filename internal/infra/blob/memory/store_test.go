package memory

import (
	"bytes"
	"context"
	"errors"
	"io"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"hospitalcore/internal/blob/core"
)

var stamp = time.Date(2026, time.May, 4, 10, 0, 0, 0, time.UTC)

func TestStoreLifecycle(t *testing.T) {
	ctx := context.Background()
	s := New(WithClock(func() time.Time { return stamp }))
	assert.Equal(t, core.DriverMemory, s.Driver())

	meta := map[string]string{core.MetaBucket: "hospitals"}
	info, err := s.Put(ctx, "archive/hospitals.json", strings.NewReader(`{}`), core.PutOptions{ContentType: "application/json", Metadata: meta})
	require.NoError(t, err)
	assert.Equal(t, int64(2), info.Size)
	assert.Equal(t, stamp, info.LastModified)

	meta[core.MetaBucket] = "mutated"
	head, err := s.Head(ctx, "archive/hospitals.json")
	require.NoError(t, err)
	assert.Equal(t, "hospitals", head.Metadata[core.MetaBucket])

	_, err = s.Put(ctx, "archive/hospitals.json", strings.NewReader(`[]`), core.PutOptions{})
	require.ErrorIs(t, err, core.ErrExists)

	_, rc, err := s.Get(ctx, "archive/hospitals.json")
	require.NoError(t, err)
	body, err := io.ReadAll(rc)
	require.NoError(t, err)
	require.NoError(t, rc.Close())
	assert.Equal(t, `{}`, string(body))

	_, err = s.Put(ctx, "archive/links.json", bytes.NewReader(nil), core.PutOptions{})
	require.NoError(t, err)
	_, err = s.Put(ctx, "other/links.json", bytes.NewReader(nil), core.PutOptions{})
	require.NoError(t, err)
	list, err := s.List(ctx, "archive/")
	require.NoError(t, err)
	require.Len(t, list, 2)
	assert.Equal(t, "archive/hospitals.json", list[0].Key)
	assert.Equal(t, "archive/links.json", list[1].Key)

	existed, err := s.Delete(ctx, "archive/links.json")
	require.NoError(t, err)
	assert.True(t, existed)
	existed, err = s.Delete(ctx, "archive/links.json")
	require.NoError(t, err)
	assert.False(t, existed)
}

func TestStoreMissingKeys(t *testing.T) {
	ctx := context.Background()
	s := New()
	_, err := s.Head(ctx, "missing")
	assert.ErrorIs(t, err, core.ErrNotFound)
	_, _, err = s.Get(ctx, "missing")
	assert.ErrorIs(t, err, core.ErrNotFound)
	_, err = s.Put(ctx, "  ", strings.NewReader("x"), core.PutOptions{})
	assert.ErrorIs(t, err, core.ErrInvalid)
}

type failingReader struct{}

func (failingReader) Read([]byte) (int, error) { return 0, errors.New("fail") }

func TestStorePutFailures(t *testing.T) {
	s := New()
	_, err := s.Put(context.Background(), "bad", failingReader{}, core.PutOptions{})
	require.ErrorContains(t, err, "read bad")

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err = s.Put(ctx, "late", strings.NewReader("x"), core.PutOptions{})
	require.ErrorIs(t, err, context.Canceled)
}
