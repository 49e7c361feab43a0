package core

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"path"
	"strings"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"

	"hospitalcore/internal/blob"
	"hospitalcore/pkg/domain"
)

const archiveContentType = "application/json"

// ArchiveKey returns the object key of bucket under prefix.
func ArchiveKey(prefix, bucket string) string {
	return path.Join(strings.Trim(prefix, "/"), bucket+".json")
}

// ArchivePrefix derives a timestamped prefix, e.g. snapshots/20260302T080000Z.
func ArchivePrefix(root string, at time.Time) string {
	return path.Join(strings.Trim(root, "/"), at.UTC().Format("20060102T150405Z"))
}

// ArchiveSnapshot writes every snapshot bucket of the committed state to
// store as <prefix>/<bucket>.json and returns the written objects in bucket
// order. Objects are write-once: archiving twice under the same prefix fails
// with blob.ErrExists. When any write fails the objects written by this call
// are deleted again, so a prefix never holds a partial archive of its own.
func (s *Service) ArchiveSnapshot(ctx context.Context, store blob.Store, prefix string) ([]blob.Info, error) {
	ctx, span := s.tracer.Start(ctx, "archive_snapshot")
	started := s.clock.Now()
	infos, err := s.archive(ctx, store, prefix, started)
	s.finish(ctx, span, operation{"archive_snapshot", "", ""}, started, domain.ID(prefix), domain.Result{}, err)
	return infos, err
}

func (s *Service) archive(ctx context.Context, store blob.Store, prefix string, takenAt time.Time) ([]blob.Info, error) {
	if strings.Trim(prefix, "/") == "" {
		return nil, fmt.Errorf("%w: archive prefix is required", blob.ErrInvalid)
	}
	encoded, err := s.store.ExportState().EncodeBuckets()
	if err != nil {
		return nil, err
	}
	buckets := domain.SnapshotBuckets()
	infos := make([]blob.Info, len(buckets))
	g, gctx := errgroup.WithContext(ctx)
	for i, bucket := range buckets {
		g.Go(func() error {
			info, err := store.Put(gctx, ArchiveKey(prefix, bucket), bytes.NewReader(encoded[bucket]), blob.PutOptions{
				ContentType: archiveContentType,
				Metadata: map[string]string{
					blob.MetaBucket:  bucket,
					blob.MetaTakenAt: takenAt.UTC().Format(time.RFC3339),
				},
			})
			if err != nil {
				return fmt.Errorf("archive %s: %w", bucket, err)
			}
			infos[i] = info
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, errors.Join(err, discard(context.WithoutCancel(ctx), store, infos))
	}
	return infos, nil
}

// discard deletes the objects a failed archive managed to write.
func discard(ctx context.Context, store blob.Store, infos []blob.Info) error {
	var errs []error
	for _, info := range infos {
		if info.Key == "" {
			continue
		}
		if _, err := store.Delete(ctx, info.Key); err != nil {
			errs = append(errs, fmt.Errorf("discard %s: %w", info.Key, err))
		}
	}
	return errors.Join(errs...)
}

// RestoreSnapshot reads the buckets archived under prefix and replaces the
// store's state with them. Every bucket must be present: a missing one fails
// with blob.ErrNotFound naming it, and the store is left untouched.
func (s *Service) RestoreSnapshot(ctx context.Context, store blob.Store, prefix string) error {
	ctx, span := s.tracer.Start(ctx, "restore_snapshot")
	started := s.clock.Now()
	err := s.restore(ctx, store, prefix)
	s.finish(ctx, span, operation{"restore_snapshot", "", ""}, started, domain.ID(prefix), domain.Result{}, err)
	return err
}

func (s *Service) restore(ctx context.Context, store blob.Store, prefix string) error {
	var (
		mu      sync.Mutex
		buckets = make(map[string][]byte)
	)
	g, gctx := errgroup.WithContext(ctx)
	for _, bucket := range domain.SnapshotBuckets() {
		g.Go(func() error {
			_, rc, err := store.Get(gctx, ArchiveKey(prefix, bucket))
			if errors.Is(err, blob.ErrNotFound) {
				return nil
			}
			if err != nil {
				return fmt.Errorf("restore %s: %w", bucket, err)
			}
			defer func() { _ = rc.Close() }()
			payload, err := io.ReadAll(rc)
			if err != nil {
				return fmt.Errorf("read %s: %w", bucket, err)
			}
			mu.Lock()
			buckets[bucket] = payload
			mu.Unlock()
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return err
	}
	var missing []string
	for _, bucket := range domain.SnapshotBuckets() {
		if _, ok := buckets[bucket]; !ok {
			missing = append(missing, bucket)
		}
	}
	if len(missing) > 0 {
		return fmt.Errorf("%s: missing %s: %w", prefix, strings.Join(missing, ", "), blob.ErrNotFound)
	}
	snapshot, err := domain.DecodeBuckets(buckets)
	if err != nil {
		return err
	}
	return s.store.ImportState(snapshot)
}

// ListArchives returns the prefixes below root holding a complete archive,
// oldest first when prefixes are timestamped. Prefixes missing any bucket
// are skipped.
func (s *Service) ListArchives(ctx context.Context, store blob.Store, root string) ([]string, error) {
	infos, err := store.List(ctx, strings.Trim(root, "/"))
	if err != nil {
		return nil, err
	}
	known := make(map[string]struct{})
	for _, bucket := range domain.SnapshotBuckets() {
		known[bucket+".json"] = struct{}{}
	}
	var prefixes []string
	found := make(map[string]int)
	for _, info := range infos {
		if _, ok := known[path.Base(info.Key)]; !ok {
			continue
		}
		dir := path.Dir(info.Key)
		if _, seen := found[dir]; !seen {
			prefixes = append(prefixes, dir)
		}
		found[dir]++
	}
	complete := prefixes[:0]
	for _, dir := range prefixes {
		if found[dir] == len(known) {
			complete = append(complete, dir)
		}
	}
	return complete, nil
}
