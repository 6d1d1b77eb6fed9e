package repositories

import (
	"database/sql"
	"errors"
	"sync"
	"testing"

	"github.com/desertthunder/mixfeed/internal/models"
	"github.com/desertthunder/mixfeed/internal/shared"
	tu "github.com/desertthunder/mixfeed/internal/testing"
)

// setupTestDB creates an in-memory SQLite database with migrations applied
func setupTestDB(t *testing.T) *sql.DB {
	t.Helper()

	db, err := shared.NewDatabase(":memory:")
	if err != nil {
		t.Fatalf("failed to create test database: %v", err)
	}

	if err := shared.RunMigrations(db); err != nil {
		db.Close()
		t.Fatalf("failed to run migrations: %v", err)
	}

	t.Cleanup(func() { db.Close() })
	return db
}

func TestNextSequence(t *testing.T) {
	t.Run("Increments", func(t *testing.T) {
		db := setupTestDB(t)

		for want := 1; want <= 3; want++ {
			got, err := NextSequence(db, "tracks")
			if err != nil {
				t.Fatalf("NextSequence() error = %v", err)
			}
			if got != want {
				t.Errorf("expected sequence %d, got %d", want, got)
			}
		}
	})

	t.Run("Concurrent Calls Are Unique", func(t *testing.T) {
		db := setupTestDB(t)

		var (
			mu   sync.Mutex
			seen = make(map[int]bool)
			wg   sync.WaitGroup
		)
		for range 10 {
			wg.Add(1)
			go func() {
				defer wg.Done()
				seq, err := NextSequence(db, "tracks")
				if err != nil {
					t.Errorf("NextSequence() error = %v", err)
					return
				}
				mu.Lock()
				seen[seq] = true
				mu.Unlock()
			}()
		}
		wg.Wait()

		if len(seen) != 10 {
			t.Errorf("expected 10 unique sequences, got %d", len(seen))
		}
	})

	t.Run("Unknown Table", func(t *testing.T) {
		db := setupTestDB(t)
		if _, err := NextSequence(db, "missing"); err == nil {
			t.Error("expected error for missing sequence table")
		}
	})
}

func TestTrackRepository(t *testing.T) {
	t.Run("Create and Get", func(t *testing.T) {
		db := setupTestDB(t)
		repo := NewTrackRepository(db)

		summary := tu.Track("night-drive")
		summary.Description = "late set"
		summary.Profile.Avatar = "/media/a.png"
		track := models.NewCachedTrack(0, summary)

		if err := repo.Create(track); err != nil {
			t.Fatalf("failed to create track: %v", err)
		}
		if track.ID() == "" {
			t.Error("track ID should be set after creation")
		}
		if track.Sequence() != 1 {
			t.Errorf("expected sequence 1, got %d", track.Sequence())
		}

		got, err := repo.Get(track.ID())
		if err != nil {
			t.Fatalf("failed to get track: %v", err)
		}
		if got.Track() != summary {
			t.Errorf("expected %+v, got %+v", summary, got.Track())
		}

		bySlug, err := repo.GetBySlug("night-drive")
		if err != nil {
			t.Fatalf("failed to get track by slug: %v", err)
		}
		if bySlug.ID() != track.ID() {
			t.Errorf("expected ID %s, got %s", track.ID(), bySlug.ID())
		}
	})

	t.Run("Create Rejects Duplicate Slug", func(t *testing.T) {
		db := setupTestDB(t)
		repo := NewTrackRepository(db)

		if err := repo.Create(models.NewCachedTrack(0, tu.Track("a"))); err != nil {
			t.Fatalf("failed to create track: %v", err)
		}
		if err := repo.Create(models.NewCachedTrack(0, tu.Track("a"))); err == nil {
			t.Error("expected unique constraint error")
		}
	})

	t.Run("Create Validates", func(t *testing.T) {
		db := setupTestDB(t)
		repo := NewTrackRepository(db)

		if err := repo.Create(models.NewCachedTrack(0, models.TrackSummary{})); err == nil {
			t.Error("expected validation error for missing slug")
		}
	})

	t.Run("Get Not Found", func(t *testing.T) {
		db := setupTestDB(t)
		repo := NewTrackRepository(db)

		if _, err := repo.Get("missing"); !errors.Is(err, shared.ErrTrackNotFound) {
			t.Errorf("expected ErrTrackNotFound, got %v", err)
		}
	})

	t.Run("Update", func(t *testing.T) {
		db := setupTestDB(t)
		repo := NewTrackRepository(db)

		track := models.NewCachedTrack(0, tu.Track("a"))
		if err := repo.Create(track); err != nil {
			t.Fatalf("failed to create track: %v", err)
		}

		summary := track.Track()
		summary.CommentCount = 9
		track.SetTrack(summary)
		if err := repo.Update(track); err != nil {
			t.Fatalf("failed to update track: %v", err)
		}

		got, _ := repo.Get(track.ID())
		if got.Track().CommentCount != 9 {
			t.Errorf("expected comment count 9, got %d", got.Track().CommentCount)
		}

		missing := models.NewCachedTrack(0, tu.Track("b"))
		missing.SetID("missing")
		if err := repo.Update(missing); !errors.Is(err, shared.ErrTrackNotFound) {
			t.Errorf("expected ErrTrackNotFound, got %v", err)
		}
	})

	t.Run("Delete Is Soft", func(t *testing.T) {
		db := setupTestDB(t)
		repo := NewTrackRepository(db)

		track := models.NewCachedTrack(0, tu.Track("a"))
		if err := repo.Create(track); err != nil {
			t.Fatalf("failed to create track: %v", err)
		}
		if err := repo.Delete(track.ID()); err != nil {
			t.Fatalf("failed to delete track: %v", err)
		}

		if _, err := repo.Get(track.ID()); !errors.Is(err, shared.ErrTrackNotFound) {
			t.Errorf("expected deleted track to be hidden, got %v", err)
		}
		if err := repo.Delete(track.ID()); !errors.Is(err, shared.ErrTrackNotFound) {
			t.Errorf("expected second delete to fail, got %v", err)
		}

		var deleted int
		db.QueryRow("SELECT COUNT(*) FROM tracks WHERE deleted_at IS NOT NULL").Scan(&deleted)
		if deleted != 1 {
			t.Errorf("expected row to remain with deleted_at, got %d", deleted)
		}
	})

	t.Run("Upsert", func(t *testing.T) {
		db := setupTestDB(t)
		repo := NewTrackRepository(db)

		first, created, err := repo.Upsert(tu.Track("a"))
		if err != nil || !created {
			t.Fatalf("expected insert, got created=%v err=%v", created, err)
		}

		updated := tu.Track("a")
		updated.Title = "Renamed"
		second, created, err := repo.Upsert(updated)
		if err != nil || created {
			t.Fatalf("expected update, got created=%v err=%v", created, err)
		}
		if second.ID() != first.ID() || second.Sequence() != first.Sequence() {
			t.Error("expected upsert to keep id and sequence")
		}

		got, _ := repo.GetBySlug("a")
		if got.Track().Title != "Renamed" {
			t.Errorf("expected title Renamed, got %s", got.Track().Title)
		}
	})

	t.Run("Upsert Restores Deleted", func(t *testing.T) {
		db := setupTestDB(t)
		repo := NewTrackRepository(db)

		track, _, _ := repo.Upsert(tu.Track("a"))
		repo.Delete(track.ID())

		restored, created, err := repo.Upsert(tu.Track("a"))
		if err != nil || created {
			t.Fatalf("expected restore, got created=%v err=%v", created, err)
		}
		if restored.DeletedAt() != nil {
			t.Error("expected deleted_at to be cleared")
		}
		if n, _ := repo.Count(); n != 1 {
			t.Errorf("expected 1 track, got %d", n)
		}
	})

	t.Run("List Count and Clear", func(t *testing.T) {
		db := setupTestDB(t)
		repo := NewTrackRepository(db)

		for _, slug := range []string{"c", "a", "b"} {
			if _, _, err := repo.Upsert(tu.Track(slug)); err != nil {
				t.Fatalf("failed to upsert %s: %v", slug, err)
			}
		}

		tracks, err := repo.List(nil)
		if err != nil {
			t.Fatalf("failed to list tracks: %v", err)
		}
		if len(tracks) != 3 || tracks[0].Slug() != "c" || tracks[2].Slug() != "b" {
			t.Errorf("expected tracks in first-seen order, got %d", len(tracks))
		}

		limited, _ := repo.List(map[string]any{"limit": 2})
		if len(limited) != 2 {
			t.Errorf("expected 2 tracks with limit, got %d", len(limited))
		}

		byUser, _ := repo.List(map[string]any{"username": "dj_a"})
		if len(byUser) != 1 || byUser[0].Slug() != "a" {
			t.Errorf("expected 1 track for dj_a, got %d", len(byUser))
		}

		removed, err := repo.Clear()
		if err != nil {
			t.Fatalf("failed to clear: %v", err)
		}
		if removed != 3 {
			t.Errorf("expected 3 removed, got %d", removed)
		}
		if n, _ := repo.Count(); n != 0 {
			t.Errorf("expected 0 tracks after clear, got %d", n)
		}
	})

	t.Run("Closed Database", func(t *testing.T) {
		db := setupTestDB(t)
		repo := NewTrackRepository(db)
		db.Close()

		if _, err := repo.List(nil); err == nil {
			t.Error("expected error listing on closed database")
		}
		if _, err := repo.Count(); err == nil {
			t.Error("expected error counting on closed database")
		}
		if err := repo.Create(models.NewCachedTrack(0, tu.Track("a"))); err == nil {
			t.Error("expected error creating on closed database")
		}
	})
}

func TestTrackCacheAdapter(t *testing.T) {
	db := setupTestDB(t)
	adapter := NewTrackCacheAdapter(NewTrackRepository(db))

	created, err := adapter.CacheTrack(tu.Track("a"))
	if err != nil || !created {
		t.Fatalf("expected first cache to insert, got created=%v err=%v", created, err)
	}

	created, err = adapter.CacheTrack(tu.Track("a"))
	if err != nil || created {
		t.Fatalf("expected second cache to update, got created=%v err=%v", created, err)
	}

	if _, err := adapter.CacheTrack(models.TrackSummary{}); err == nil {
		t.Error("expected error caching invalid track")
	}
}
