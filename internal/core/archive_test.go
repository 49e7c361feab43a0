package core

import (
	"context"
	"errors"
	"io"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"hospitalcore/internal/blob"
	"hospitalcore/pkg/domain"
)

func TestArchiveAndRestoreSnapshot(t *testing.T) {
	ctx := context.Background()
	w := newWard(t)
	_, _, err := w.svc.ScheduleAppointment(ctx, w.request(testNow.Add(time.Hour)))
	require.NoError(t, err)

	store, err := blob.NewFilesystem(t.TempDir())
	require.NoError(t, err)
	prefix := ArchivePrefix("snapshots", testNow)
	assert.Equal(t, "snapshots/20260302T080000Z", prefix)

	infos, err := w.svc.ArchiveSnapshot(ctx, store, prefix)
	require.NoError(t, err)
	require.Len(t, infos, len(domain.SnapshotBuckets()))
	for i, bucket := range domain.SnapshotBuckets() {
		assert.Equal(t, ArchiveKey(prefix, bucket), infos[i].Key)
		assert.Equal(t, bucket, infos[i].Metadata[blob.MetaBucket])
		assert.Equal(t, "application/json", infos[i].ContentType)
	}

	_, err = w.svc.ArchiveSnapshot(ctx, store, prefix)
	require.ErrorIs(t, err, blob.ErrExists)

	fresh := NewInMemoryService(nil, WithClock(fixedClock()))
	require.NoError(t, fresh.RestoreSnapshot(ctx, store, prefix))
	assert.Equal(t, encodedState(t, w.svc), encodedState(t, fresh))

	prefixes, err := fresh.ListArchives(ctx, store, "snapshots")
	require.NoError(t, err)
	assert.Equal(t, []string{prefix}, prefixes)
}

func TestRestoreSnapshotErrors(t *testing.T) {
	ctx := context.Background()
	store := blob.NewMemory()
	svc := NewInMemoryService(nil)

	require.ErrorIs(t, svc.RestoreSnapshot(ctx, store, "snapshots/none"), blob.ErrNotFound)

	putArchive(t, store, "snapshots/bad", map[string]string{domain.BucketHospitals: "{"})
	require.ErrorContains(t, svc.RestoreSnapshot(ctx, store, "snapshots/bad"), "decode hospitals")

	_, err := svc.ArchiveSnapshot(ctx, store, "/")
	require.ErrorIs(t, err, blob.ErrInvalid)
}

func TestRestoreSnapshotRequiresEveryBucket(t *testing.T) {
	ctx := context.Background()
	src := NewInMemoryService(nil)
	_, _, err := src.CreateHospital(ctx, newHospital(t, "Hospital San Martín Central"))
	require.NoError(t, err)
	_, _, err = src.RegisterPhysician(ctx, newPhysician(t, "Laura", "Pereyra", "30111222", "MP-778899", domain.SpecialtyDermatology), "")
	require.NoError(t, err)

	full := blob.NewMemory()
	_, err = src.ArchiveSnapshot(ctx, full, "snap")
	require.NoError(t, err)

	partial := blob.NewMemory()
	for _, bucket := range domain.SnapshotBuckets() {
		if bucket == domain.BucketPhysicians {
			continue
		}
		_, rc, err := full.Get(ctx, ArchiveKey("snap", bucket))
		require.NoError(t, err)
		_, err = partial.Put(ctx, ArchiveKey("snap", bucket), rc, blob.PutOptions{})
		_ = rc.Close()
		require.NoError(t, err)
	}

	dst := NewInMemoryService(nil)
	err = dst.RestoreSnapshot(ctx, partial, "snap")
	require.ErrorIs(t, err, blob.ErrNotFound)
	assert.ErrorContains(t, err, "missing physicians")
	assert.Empty(t, dst.Store().ExportState().Hospitals)

	prefixes, err := dst.ListArchives(ctx, partial, "")
	require.NoError(t, err)
	assert.Empty(t, prefixes)

	require.NoError(t, dst.RestoreSnapshot(ctx, full, "snap"))
	assert.Equal(t, encodedState(t, src), encodedState(t, dst))
}

func TestFailedArchiveLeavesNoObjects(t *testing.T) {
	ctx := context.Background()
	w := newWard(t)
	store := &failingPut{Store: blob.NewMemory(), key: ArchiveKey("snap", domain.BucketRooms)}

	_, err := w.svc.ArchiveSnapshot(ctx, store, "snap")
	require.ErrorContains(t, err, "archive rooms")

	left, err := store.List(ctx, "snap")
	require.NoError(t, err)
	assert.Empty(t, left)

	store.key = ""
	_, err = w.svc.ArchiveSnapshot(ctx, store, "snap")
	require.NoError(t, err)
	prefixes, err := w.svc.ListArchives(ctx, store, "")
	require.NoError(t, err)
	assert.Equal(t, []string{"snap"}, prefixes)
}

func TestRestoreSnapshotRejectsBrokenLinks(t *testing.T) {
	ctx := context.Background()
	store := blob.NewMemory()
	putArchive(t, store, "snap", map[string]string{domain.BucketLinks: `{"department_rooms":{"ghost":["r1"]}}`})

	svc := NewInMemoryService(nil)
	require.Error(t, svc.RestoreSnapshot(ctx, store, "snap"))
	assert.Empty(t, svc.Store().ExportState().Rooms)
}

func TestRestoreSnapshotRejectsStateBlockedByRules(t *testing.T) {
	ctx := context.Background()
	loose := NewInMemoryService(domain.NewRulesEngine())
	for range 2 {
		_, _, err := loose.CreateHospital(ctx, newHospital(t, "Same"))
		require.NoError(t, err)
	}
	store := blob.NewMemory()
	_, err := loose.ArchiveSnapshot(ctx, store, "dup")
	require.NoError(t, err)

	svc := NewInMemoryService(nil)
	err = svc.RestoreSnapshot(ctx, store, "dup")
	var rv domain.RuleViolationError
	require.ErrorAs(t, err, &rv)
	assert.Equal(t, RuleUniqueIdentity, rv.Result.Violations[0].Rule)

	_, _, err = svc.CreateHospital(ctx, newHospital(t, "Unrelated"))
	require.NoError(t, err)
}

// putArchive writes every bucket of an empty graph under prefix, replacing
// the payloads named in overrides.
func putArchive(t *testing.T, store blob.Store, prefix string, overrides map[string]string) {
	t.Helper()
	buckets, err := domain.NewGraph().Snapshot().EncodeBuckets()
	require.NoError(t, err)
	for _, bucket := range domain.SnapshotBuckets() {
		payload := string(buckets[bucket])
		if v, ok := overrides[bucket]; ok {
			payload = v
		}
		_, err := store.Put(context.Background(), ArchiveKey(prefix, bucket), strings.NewReader(payload), blob.PutOptions{})
		require.NoError(t, err)
	}
}

type failingPut struct {
	blob.Store
	key string
}

func (f *failingPut) Put(ctx context.Context, key string, r io.Reader, opts blob.PutOptions) (blob.Info, error) {
	if key == f.key {
		return blob.Info{}, errors.New("quota exceeded")
	}
	return f.Store.Put(ctx, key, r, opts)
}

func encodedState(t *testing.T, svc *Service) map[string]string {
	t.Helper()
	buckets, err := svc.Store().ExportState().EncodeBuckets()
	require.NoError(t, err)
	out := make(map[string]string, len(buckets))
	for k, v := range buckets {
		out[k] = string(v)
	}
	return out
}
