package projectconfig

import (
	"context"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"testing"
	"time"

	"github.com/bilgisen/zenstudio/internal/models"
	"github.com/bilgisen/zenstudio/internal/storage"
)

func newTestStore(t *testing.T) (*Store, string) {
	t.Helper()
	root := filepath.Join(t.TempDir(), "ZenStudio")
	return NewStore(storage.OS{}, root, nil), root
}

func TestEnsureCreatesLayout(t *testing.T) {
	store, root := newTestStore(t)

	info, err := store.Ensure(context.Background())
	if err != nil {
		t.Fatalf("Ensure() error = %v", err)
	}
	if info.Outcome != models.OutcomeEmpty {
		t.Errorf("outcome = %s", info.Outcome)
	}

	for _, dir := range []string{"config", "projects", "projects/default"} {
		if st, err := os.Stat(filepath.Join(root, dir)); err != nil || !st.IsDir() {
			t.Errorf("%s not created: %v", dir, err)
		}
	}
	if info.ConfigPath != filepath.Join(root, "config", "config.json") {
		t.Errorf("config path = %s", info.ConfigPath)
	}

	cfg := info.Config
	if cfg.Version != "1.0.0" || cfg.HasSeenBootstrapNotice {
		t.Errorf("config = %+v", cfg)
	}
	if cfg.LastProjectPath != info.DefaultProjectPath {
		t.Errorf("last project = %s, want default", cfg.LastProjectPath)
	}
	if _, err := os.Stat(info.ConfigPath); err != nil {
		t.Errorf("config not persisted: %v", err)
	}
}

func TestEnsureIsIdempotent(t *testing.T) {
	store, _ := newTestStore(t)
	ctx := context.Background()

	first, err := store.Ensure(ctx)
	if err != nil {
		t.Fatal(err)
	}
	store.now = func() time.Time { return first.Config.UpdatedAt.Add(time.Minute) }

	second, err := store.Ensure(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if second.Outcome != models.OutcomeLoaded {
		t.Errorf("outcome = %s", second.Outcome)
	}
	if !second.Config.CreatedAt.Equal(first.Config.CreatedAt) {
		t.Error("createdAt changed")
	}
	if !second.Config.UpdatedAt.After(first.Config.UpdatedAt) {
		t.Error("updatedAt not stamped")
	}
}

func TestEnsureResetsMissingProject(t *testing.T) {
	store, _ := newTestStore(t)
	ctx := context.Background()

	if _, err := store.UpdateLastProjectPath(ctx, "/does/not/exist"); err != nil {
		t.Fatal(err)
	}
	info, err := store.Ensure(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if info.Config.LastProjectPath != info.DefaultProjectPath {
		t.Errorf("last project = %s", info.Config.LastProjectPath)
	}

	existing := t.TempDir()
	if _, err := store.UpdateLastProjectPath(ctx, existing); err != nil {
		t.Fatal(err)
	}
	info, err = store.Ensure(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if info.Config.LastProjectPath != existing {
		t.Errorf("existing project replaced: %s", info.Config.LastProjectPath)
	}
}

func TestEnsureRecoversCorruptConfig(t *testing.T) {
	store, root := newTestStore(t)
	path := filepath.Join(root, "config", "config.json")
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(path, []byte("not json"), 0644); err != nil {
		t.Fatal(err)
	}

	info, err := store.Ensure(context.Background())
	if err != nil {
		t.Fatal(err)
	}
	if info.Outcome != models.OutcomeRecovered || info.Config.Version != models.ConfigVersion {
		t.Errorf("info = %+v", info)
	}
}

func TestMarkBootstrapNoticeSeen(t *testing.T) {
	store, _ := newTestStore(t)
	ctx := context.Background()

	info, err := store.MarkBootstrapNoticeSeen(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if !info.Config.HasSeenBootstrapNotice {
		t.Fatal("flag not set")
	}

	again, err := store.Ensure(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if !again.Config.HasSeenBootstrapNotice {
		t.Error("flag not persisted")
	}
}

func TestProjectDataDir(t *testing.T) {
	dir := ProjectDataDir("/data", "/work/site")
	if !strings.HasPrefix(dir, filepath.Join("/data", "projects", "site_")) {
		t.Errorf("ProjectDataDir() = %s", dir)
	}
	if dir == ProjectDataDir("/data", "/personal/site") {
		t.Error("same folder name collided")
	}
}

func TestUpdateLastProjectPathKeepsRecent(t *testing.T) {
	store, _ := newTestStore(t)
	ctx := context.Background()

	base := t.TempDir()
	var paths []string
	for i := 0; i < models.RecentProjectsLimit+2; i++ {
		p := filepath.Join(base, "site"+strconv.Itoa(i))
		if err := os.MkdirAll(p, 0o755); err != nil {
			t.Fatal(err)
		}
		paths = append(paths, p)
	}

	for _, p := range paths {
		if _, err := store.UpdateLastProjectPath(ctx, p); err != nil {
			t.Fatalf("UpdateLastProjectPath(%s) error = %v", p, err)
		}
	}
	info, err := store.UpdateLastProjectPath(ctx, "  "+paths[3]+" ")
	if err != nil {
		t.Fatal(err)
	}

	recent := info.Config.RecentProjectPaths
	if len(recent) != models.RecentProjectsLimit {
		t.Fatalf("recent = %d entries, want %d", len(recent), models.RecentProjectsLimit)
	}
	if recent[0] != paths[3] || info.Config.LastProjectPath != paths[3] {
		t.Errorf("front = %s, last = %s, want %s", recent[0], info.Config.LastProjectPath, paths[3])
	}
	if recent[1] != paths[len(paths)-1] {
		t.Errorf("second = %s, want %s", recent[1], paths[len(paths)-1])
	}
	seen := map[string]bool{}
	for _, p := range recent {
		if seen[p] {
			t.Errorf("duplicate %s in %v", p, recent)
		}
		seen[p] = true
	}

	before := info.Config
	info, err = store.UpdateLastProjectPath(ctx, "   ")
	if err != nil {
		t.Fatal(err)
	}
	if info.Config.LastProjectPath != before.LastProjectPath || len(info.Config.RecentProjectPaths) != len(before.RecentProjectPaths) {
		t.Errorf("blank path changed config: %+v", info.Config)
	}

	reloaded, err := store.Ensure(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if strings.Join(reloaded.Config.RecentProjectPaths, ",") != strings.Join(recent, ",") {
		t.Errorf("recent not persisted: %v", reloaded.Config.RecentProjectPaths)
	}
}

func TestRemoveProjectPath(t *testing.T) {
	store, _ := newTestStore(t)
	ctx := context.Background()

	a, b := t.TempDir(), t.TempDir()
	for _, p := range []string{a, b} {
		if _, err := store.UpdateLastProjectPath(ctx, p); err != nil {
			t.Fatal(err)
		}
	}

	info, err := store.RemoveProjectPath(ctx, a)
	if err != nil {
		t.Fatalf("RemoveProjectPath() error = %v", err)
	}
	if info.Config.LastProjectPath != b || len(info.Config.RecentProjectPaths) != 1 {
		t.Errorf("after removing older = %+v", info.Config)
	}

	info, err = store.RemoveProjectPath(ctx, b)
	if err != nil {
		t.Fatal(err)
	}
	if info.Config.LastProjectPath != info.DefaultProjectPath {
		t.Errorf("last = %s, want default project", info.Config.LastProjectPath)
	}
	if len(info.Config.RecentProjectPaths) != 0 {
		t.Errorf("recent = %v", info.Config.RecentProjectPaths)
	}
}

func TestEnsureNormalisesRecent(t *testing.T) {
	store, _ := newTestStore(t)
	ctx := context.Background()

	info, err := store.Ensure(ctx)
	if err != nil {
		t.Fatal(err)
	}
	raw := `{"version":"1.0.0","recentProjectPaths":["/a"," /a ","","/b"]}`
	if err := os.WriteFile(info.ConfigPath, []byte(raw), 0o644); err != nil {
		t.Fatal(err)
	}

	info, err = store.Ensure(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if got := strings.Join(info.Config.RecentProjectPaths, ","); got != "/a,/b" {
		t.Errorf("recent = %q, want /a,/b", got)
	}
}
