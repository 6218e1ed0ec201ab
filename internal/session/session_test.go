package session

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/learnhub/admin/internal/domain"
)

func editor(expires time.Time) *Session {
	return &Session{
		Token:       "tok",
		ExpiresAt:   expires,
		UserID:      7,
		Name:        "Editor",
		Email:       "editor@example.com",
		Roles:       []string{string(domain.RoleContentManager)},
		Permissions: domain.RolePermissions[domain.RoleContentManager],
	}
}

func TestSession_Checks(t *testing.T) {
	now := time.Now()
	s := editor(now.Add(time.Hour))

	if !s.IsAuthenticated(now) {
		t.Error("IsAuthenticated = false for live session")
	}
	if s.IsAuthenticated(now.Add(2 * time.Hour)) {
		t.Error("IsAuthenticated = true after expiry")
	}
	if !s.HasPermission(domain.PermSubjectsWrite) || s.HasPermission(domain.PermUsersRead) {
		t.Error("HasPermission mismatch")
	}
	if !s.HasAnyPermission(domain.PermUsersRead, domain.PermVideosRead) {
		t.Error("HasAnyPermission should match videos.read")
	}
	if s.HasAnyPermission() {
		t.Error("HasAnyPermission() with no arguments should be false")
	}
	if !s.HasAllPermissions(domain.PermSubjectsRead, domain.PermSubjectsWrite) {
		t.Error("HasAllPermissions should hold")
	}
	if s.HasAllPermissions(domain.PermSubjectsRead, domain.PermPermissionsRead) {
		t.Error("HasAllPermissions should fail on permissions.read")
	}
	if !s.HasRole(domain.RoleContentManager) || s.HasRole(domain.RoleSuperAdmin) {
		t.Error("HasRole mismatch")
	}
}

func TestSession_NilDeniesEverything(t *testing.T) {
	var s *Session
	if s.IsAuthenticated(time.Now()) || s.HasPermission(domain.PermSubjectsRead) ||
		s.HasAllPermissions() || s.HasRole(domain.RoleViewer) {
		t.Error("nil session granted access")
	}
}

func TestSession_Valid(t *testing.T) {
	s := editor(time.Now().Add(time.Hour))
	if err := s.Valid(); err != nil {
		t.Fatalf("Valid() = %v", err)
	}
	s.Permissions = append(s.Permissions, "subject.read")
	if err := s.Valid(); err == nil {
		t.Fatal("Valid() accepted a misspelled permission")
	}
}

func TestMemoryStore_Lifecycle(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore()

	s := editor(time.Now().Add(time.Hour))
	if err := store.Create(ctx, s); err != nil {
		t.Fatalf("Create: %v", err)
	}
	if s.ID == "" {
		t.Fatal("Create did not assign an ID")
	}

	got, err := store.Get(ctx, s.ID)
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if got.Email != s.Email || len(got.Permissions) != len(s.Permissions) {
		t.Errorf("Get = %+v", got)
	}

	if err := store.Delete(ctx, s.ID); err != nil {
		t.Fatalf("Delete: %v", err)
	}
	if _, err := store.Get(ctx, s.ID); !errors.Is(err, ErrNotFound) {
		t.Fatalf("Get after Delete = %v; want ErrNotFound", err)
	}
	if err := store.Delete(ctx, "unknown"); err != nil {
		t.Errorf("Delete(unknown) = %v", err)
	}
}

func TestMemoryStore_Expiry(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore()
	now := time.Now()
	store.now = func() time.Time { return now }

	s := editor(now.Add(time.Minute))
	if err := store.Create(ctx, s); err != nil {
		t.Fatalf("Create: %v", err)
	}

	now = now.Add(2 * time.Minute)
	if _, err := store.Get(ctx, s.ID); !errors.Is(err, ErrNotFound) {
		t.Fatalf("Get expired = %v; want ErrNotFound", err)
	}
	if store.Len() != 0 {
		t.Errorf("expired session not removed, Len = %d", store.Len())
	}
}

func TestMemoryStore_EntryExpiresWithSession(t *testing.T) {
	store := NewMemoryStore()
	t.Cleanup(func() { _ = store.Close() })

	s := editor(time.Now().Add(30 * time.Minute))
	if err := store.Create(context.Background(), s); err != nil {
		t.Fatalf("Create: %v", err)
	}
	_, expires, ok := store.cache.GetWithExpiration(s.ID)
	if !ok {
		t.Fatal("session missing from cache")
	}
	if d := expires.Sub(s.ExpiresAt); d < -time.Second || d > time.Second {
		t.Errorf("cache expiry = %v; want about %v", expires, s.ExpiresAt)
	}
}

func TestMemoryStore_RejectsExpired(t *testing.T) {
	store := NewMemoryStore()
	t.Cleanup(func() { _ = store.Close() })

	if err := store.Create(context.Background(), editor(time.Now().Add(-time.Second))); err == nil {
		t.Fatal("expected error for an expired session")
	}
	if store.Len() != 0 {
		t.Errorf("Len = %d; want 0", store.Len())
	}
}

func TestMemoryStore_MaxSessions(t *testing.T) {
	store := NewMemoryStore(WithMaxSessions(1))
	t.Cleanup(func() { _ = store.Close() })

	ctx := context.Background()
	const created = 100
	for range created {
		if err := store.Create(ctx, editor(time.Now().Add(time.Hour))); err != nil {
			t.Fatalf("Create: %v", err)
		}
	}
	if n := store.Len(); n > memoryShards || n == 0 {
		t.Errorf("Len = %d; want between 1 and %d", n, memoryShards)
	}
}

func TestMemoryStore_CloseTwice(t *testing.T) {
	store := NewMemoryStore()
	if err := store.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}
	if err := store.Close(); err != nil {
		t.Fatalf("second Close: %v", err)
	}
}

func TestMemoryStore_CreateNil(t *testing.T) {
	if err := NewMemoryStore().Create(context.Background(), nil); err == nil {
		t.Fatal("expected error for nil session")
	}
}

func TestFile_RoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "eductl", "session.json")
	now := time.Now()
	s := editor(now.Add(time.Hour))

	if err := SaveFile(path, s); err != nil {
		t.Fatalf("SaveFile: %v", err)
	}
	info, err := os.Stat(path)
	if err != nil {
		t.Fatal(err)
	}
	if info.Mode().Perm() != 0o600 {
		t.Errorf("mode = %v; want 0600", info.Mode().Perm())
	}

	got, err := LoadFile(path, now)
	if err != nil {
		t.Fatalf("LoadFile: %v", err)
	}
	if got.Token != "tok" || !got.HasPermission(domain.PermFacultyWrite) {
		t.Errorf("LoadFile = %+v", got)
	}

	if _, err := LoadFile(path, now.Add(2*time.Hour)); !errors.Is(err, ErrNotFound) {
		t.Errorf("expired LoadFile = %v; want ErrNotFound", err)
	}
	if _, err := LoadFile(filepath.Join(t.TempDir(), "missing.json"), now); !errors.Is(err, ErrNotFound) {
		t.Errorf("missing LoadFile = %v; want ErrNotFound", err)
	}
}

// TestRedisStore runs against a real server when REDIS_ADDR is set.
func TestRedisStore(t *testing.T) {
	addr := os.Getenv("REDIS_ADDR")
	if addr == "" {
		t.Skip("REDIS_ADDR not set")
	}
	ctx := context.Background()
	client := redis.NewClient(&redis.Options{Addr: addr})
	t.Cleanup(func() { client.Close() })

	store := NewRedisStore(client, "test:session:")
	s := editor(time.Now().Add(time.Minute))
	if err := store.Create(ctx, s); err != nil {
		t.Fatalf("Create: %v", err)
	}
	t.Cleanup(func() { _ = store.Delete(ctx, s.ID) })

	ttl, err := client.TTL(ctx, "test:session:"+s.ID).Result()
	if err != nil || ttl <= 0 || ttl > time.Minute {
		t.Errorf("TTL = %v, %v", ttl, err)
	}

	got, err := store.Get(ctx, s.ID)
	if err != nil || got.Email != s.Email {
		t.Fatalf("Get = %+v, %v", got, err)
	}

	if err := client.Set(ctx, "test:session:garbage", "{", time.Minute).Err(); err != nil {
		t.Fatal(err)
	}
	if _, err := store.Get(ctx, "garbage"); !errors.Is(err, ErrNotFound) {
		t.Errorf("Get(garbage) = %v; want ErrNotFound", err)
	}
	if n, _ := client.Exists(ctx, "test:session:garbage").Result(); n != 0 {
		t.Error("unreadable session not deleted")
	}

	_ = store.Delete(ctx, s.ID)
	if _, err := store.Get(ctx, s.ID); !errors.Is(err, ErrNotFound) {
		t.Errorf("Get after Delete = %v", err)
	}
}

func TestRedisStore_RejectsExpired(t *testing.T) {
	store := NewRedisStore(redis.NewClient(&redis.Options{Addr: "127.0.0.1:0"}), "x:")
	err := store.Create(context.Background(), editor(time.Now().Add(-time.Second)))
	if err == nil {
		t.Fatal("expected error for expired session")
	}
}
