package meta_test

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/yeisme/tempshare/pkg/internal/expiry"
	"github.com/yeisme/tempshare/pkg/internal/model"
	"github.com/yeisme/tempshare/pkg/internal/storage/meta"
)

// fakeAssets 记录资产删除调用的测试桩，可指定某些对象键删除失败.
type fakeAssets struct {
	removed []string
	fail    map[string]bool
}

func (f *fakeAssets) RemoveAsset(_ context.Context, objectKey, _ string) error {
	f.removed = append(f.removed, objectKey)
	if f.fail[objectKey] {
		return errors.New("simulated asset delete failure")
	}

	return nil
}

// testClock 可推进的测试时钟.
type testClock struct {
	now time.Time
}

func (c *testClock) Now() time.Time { return c.now }

func newTestStore(t *testing.T) (*meta.Store, *fakeAssets, *testClock) {
	t.Helper()

	clock := &testClock{now: time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)}
	policy := expiry.NewPolicy(time.Hour, clock.Now)
	assets := &fakeAssets{fail: map[string]bool{}}

	store, err := meta.NewStore(filepath.Join(t.TempDir(), "metadata.json"), policy, assets)
	if err != nil {
		t.Fatalf("NewStore: %v", err)
	}

	return store, assets, clock
}

func newSession(policy *expiry.Policy, accessCode, ownerCode string) *model.Session {
	return &model.Session{
		UploadID:   "upl_TEST",
		AccessCode: accessCode,
		OwnerCode:  ownerCode,
		UploadedAt: policy.NowTS(),
		ExpiresAt:  policy.ComputeExpiry(),
	}
}

func addFiles(t *testing.T, store *meta.Store, accessCode string, n int) {
	t.Helper()

	ctx := context.Background()
	for i := range n {
		rec := &model.FileRecord{
			FileID:    string(rune('a'+i)) + "-file",
			Filename:  "doc.pdf",
			Size:      1024,
			MimeType:  "application/pdf",
			ObjectKey: "temp-share/obj-" + string(rune('a'+i)),
			Kind:      "raw",
		}
		if err := store.AddFile(ctx, accessCode, rec); err != nil {
			t.Fatalf("AddFile: %v", err)
		}
	}
}

// TestCreateAndGetSession 测试创建后按访问码与所有者码读取.
func TestCreateAndGetSession(t *testing.T) {
	store, _, clock := newTestStore(t)
	ctx := context.Background()
	policy := expiry.NewPolicy(time.Hour, clock.Now)

	if err := store.CreateSession(ctx, newSession(policy, "AB12CD", "OWN12345678A")); err != nil {
		t.Fatalf("CreateSession: %v", err)
	}

	got, err := store.GetSession(ctx, "AB12CD")
	if err != nil {
		t.Fatalf("GetSession: %v", err)
	}

	if got.OwnerCode != "OWN12345678A" {
		t.Errorf("owner code = %s", got.OwnerCode)
	}

	byOwner, err := store.GetSessionByOwner(ctx, "OWN12345678A")
	if err != nil {
		t.Fatalf("GetSessionByOwner: %v", err)
	}

	if byOwner.AccessCode != "AB12CD" {
		t.Errorf("access code via owner index = %s", byOwner.AccessCode)
	}
}

// TestDuplicateAccessCodeRejected 测试访问码冲突被拒绝.
func TestDuplicateAccessCodeRejected(t *testing.T) {
	store, _, clock := newTestStore(t)
	ctx := context.Background()
	policy := expiry.NewPolicy(time.Hour, clock.Now)

	if err := store.CreateSession(ctx, newSession(policy, "AB12CD", "OWNER1234567")); err != nil {
		t.Fatalf("CreateSession: %v", err)
	}

	err := store.CreateSession(ctx, newSession(policy, "AB12CD", "OWNER7654321"))
	if !errors.Is(err, meta.ErrSessionExists) {
		t.Fatalf("expected ErrSessionExists, got %v", err)
	}
}

// TestPreviewDefaultsToFirstFile 测试预览文件默认为首个加入的文件.
func TestPreviewDefaultsToFirstFile(t *testing.T) {
	store, _, clock := newTestStore(t)
	ctx := context.Background()
	policy := expiry.NewPolicy(time.Hour, clock.Now)

	if err := store.CreateSession(ctx, newSession(policy, "AB12CD", "OWNER1234567")); err != nil {
		t.Fatalf("CreateSession: %v", err)
	}

	addFiles(t, store, "AB12CD", 3)

	got, err := store.GetSession(ctx, "AB12CD")
	if err != nil {
		t.Fatalf("GetSession: %v", err)
	}

	if got.PreviewFileID != got.Files[0].FileID {
		t.Errorf("preview file = %s, want first file %s", got.PreviewFileID, got.Files[0].FileID)
	}
}

// TestExpiredSessionInvisible 测试过期后所有读路径表现为不存在.
func TestExpiredSessionInvisible(t *testing.T) {
	store, _, clock := newTestStore(t)
	ctx := context.Background()
	policy := expiry.NewPolicy(time.Hour, clock.Now)

	if err := store.CreateSession(ctx, newSession(policy, "AB12CD", "OWNER1234567")); err != nil {
		t.Fatalf("CreateSession: %v", err)
	}

	clock.now = clock.now.Add(2 * time.Hour)

	if _, err := store.GetSession(ctx, "AB12CD"); !errors.Is(err, meta.ErrSessionNotFound) {
		t.Errorf("GetSession after expiry: %v", err)
	}

	if _, err := store.GetSessionByOwner(ctx, "OWNER1234567"); !errors.Is(err, meta.ErrSessionNotFound) {
		t.Errorf("GetSessionByOwner after expiry: %v", err)
	}

	if n := store.SessionCount(ctx); n != 0 {
		t.Errorf("session count after expiry = %d", n)
	}
}

// TestSweepCascadesAssets 测试清扫对 K 个文件发起 K 次资产删除，失败不阻断.
func TestSweepCascadesAssets(t *testing.T) {
	store, assets, clock := newTestStore(t)
	ctx := context.Background()
	policy := expiry.NewPolicy(time.Hour, clock.Now)

	if err := store.CreateSession(ctx, newSession(policy, "AB12CD", "OWNER1234567")); err != nil {
		t.Fatalf("CreateSession: %v", err)
	}

	addFiles(t, store, "AB12CD", 3)
	assets.fail["temp-share/obj-b"] = true

	clock.now = clock.now.Add(2 * time.Hour)

	result := store.SweepExpired(ctx)

	if result.Sessions != 1 {
		t.Errorf("swept sessions = %d", result.Sessions)
	}

	if result.Assets != 3 {
		t.Errorf("asset delete attempts = %d, want 3", result.Assets)
	}

	if result.Failures != 1 {
		t.Errorf("failures = %d, want 1", result.Failures)
	}

	if len(assets.removed) != 3 {
		t.Errorf("remover called %d times, want 3", len(assets.removed))
	}

	// 失败的删除不阻止会话移除
	if _, err := store.GetSession(ctx, "AB12CD"); !errors.Is(err, meta.ErrSessionNotFound) {
		t.Errorf("session should be gone despite asset failure: %v", err)
	}
}

// TestSweepIdempotent 测试重复清扫无副作用.
func TestSweepIdempotent(t *testing.T) {
	store, assets, clock := newTestStore(t)
	ctx := context.Background()
	policy := expiry.NewPolicy(time.Hour, clock.Now)

	if err := store.CreateSession(ctx, newSession(policy, "AB12CD", "OWNER1234567")); err != nil {
		t.Fatalf("CreateSession: %v", err)
	}

	addFiles(t, store, "AB12CD", 2)

	clock.now = clock.now.Add(2 * time.Hour)

	first := store.SweepExpired(ctx)
	second := store.SweepExpired(ctx)

	if first.Sessions != 1 || second.Sessions != 0 {
		t.Errorf("sweep results: first=%d second=%d", first.Sessions, second.Sessions)
	}

	if len(assets.removed) != 2 {
		t.Errorf("remover called %d times across both sweeps, want 2", len(assets.removed))
	}
}

// TestDeleteSessionCascade 测试主动删除的级联与读后不可见.
func TestDeleteSessionCascade(t *testing.T) {
	store, assets, clock := newTestStore(t)
	ctx := context.Background()
	policy := expiry.NewPolicy(time.Hour, clock.Now)

	if err := store.CreateSession(ctx, newSession(policy, "AB12CD", "OWNER1234567")); err != nil {
		t.Fatalf("CreateSession: %v", err)
	}

	addFiles(t, store, "AB12CD", 4)

	deleted, err := store.DeleteSession(ctx, "AB12CD")
	if err != nil {
		t.Fatalf("DeleteSession: %v", err)
	}

	if deleted != 4 {
		t.Errorf("deleted files = %d, want 4", deleted)
	}

	if len(assets.removed) != 4 {
		t.Errorf("remover called %d times, want 4", len(assets.removed))
	}

	if _, err := store.GetSession(ctx, "AB12CD"); !errors.Is(err, meta.ErrSessionNotFound) {
		t.Errorf("read after delete: %v", err)
	}

	if _, err := store.GetSessionByOwner(ctx, "OWNER1234567"); !errors.Is(err, meta.ErrSessionNotFound) {
		t.Errorf("owner lookup after delete: %v", err)
	}

	// 重复删除无副作用
	deleted, err = store.DeleteSession(ctx, "AB12CD")
	if err != nil || deleted != 0 {
		t.Errorf("second delete: deleted=%d err=%v", deleted, err)
	}
}

// TestDanglingOwnerIndexRemoved 测试悬空所有者索引被摘除.
func TestDanglingOwnerIndexRemoved(t *testing.T) {
	store, _, _ := newTestStore(t)
	ctx := context.Background()

	if err := store.SetOwnerMapping(ctx, "GHOST1234567", "ZZ99XX"); err != nil {
		t.Fatalf("SetOwnerMapping: %v", err)
	}

	if _, err := store.GetSessionByOwner(ctx, "GHOST1234567"); !errors.Is(err, meta.ErrSessionNotFound) {
		t.Fatalf("expected not found for dangling index, got %v", err)
	}

	codes := store.ListOwnerCodes(ctx)
	if _, still := codes["GHOST1234567"]; still {
		t.Error("dangling owner index should have been removed")
	}
}

// TestIncrementDownloadCount 测试会话级与文件级计数.
func TestIncrementDownloadCount(t *testing.T) {
	store, _, clock := newTestStore(t)
	ctx := context.Background()
	policy := expiry.NewPolicy(time.Hour, clock.Now)

	if err := store.CreateSession(ctx, newSession(policy, "AB12CD", "OWNER1234567")); err != nil {
		t.Fatalf("CreateSession: %v", err)
	}

	addFiles(t, store, "AB12CD", 2)

	sess, _ := store.GetSession(ctx, "AB12CD")
	fileID := sess.Files[0].FileID

	if n, err := store.IncrementDownloadCount(ctx, "AB12CD", fileID); err != nil || n != 1 {
		t.Errorf("first increment: n=%d err=%v", n, err)
	}

	// 会话级（批量下载）：file_id 为空，仅会话计数加一
	if n, err := store.IncrementDownloadCount(ctx, "AB12CD", ""); err != nil || n != 2 {
		t.Errorf("session-level increment: n=%d err=%v", n, err)
	}

	got, _ := store.GetSession(ctx, "AB12CD")
	if got.Files[0].DownloadCount != 1 {
		t.Errorf("file download count = %d, want 1", got.Files[0].DownloadCount)
	}

	if got.Files[1].DownloadCount != 0 {
		t.Errorf("untouched file count = %d, want 0", got.Files[1].DownloadCount)
	}

	if got.DownloadCount != 2 {
		t.Errorf("session download count = %d, want 2", got.DownloadCount)
	}
}

// TestIncrementDownloadCountUnknownFile 测试 file_id 未命中时会话级计数仍递增.
func TestIncrementDownloadCountUnknownFile(t *testing.T) {
	store, _, clock := newTestStore(t)
	ctx := context.Background()
	policy := expiry.NewPolicy(time.Hour, clock.Now)

	if err := store.CreateSession(ctx, newSession(policy, "AB12CD", "OWNER1234567")); err != nil {
		t.Fatalf("CreateSession: %v", err)
	}

	addFiles(t, store, "AB12CD", 1)

	n, err := store.IncrementDownloadCount(ctx, "AB12CD", "no-such-file")
	if !errors.Is(err, meta.ErrFileNotFound) {
		t.Fatalf("err = %v, want ErrFileNotFound", err)
	}

	if n != 1 {
		t.Errorf("returned count = %d, want 1", n)
	}

	got, _ := store.GetSession(ctx, "AB12CD")
	if got.DownloadCount != 1 {
		t.Errorf("session download count = %d, want 1", got.DownloadCount)
	}

	if got.Files[0].DownloadCount != 0 {
		t.Errorf("file download count = %d, want 0", got.Files[0].DownloadCount)
	}
}

// TestPersistenceRoundTrip 测试落盘后重新打开能恢复全部状态.
func TestPersistenceRoundTrip(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "metadata.json")

	clock := &testClock{now: time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)}
	policy := expiry.NewPolicy(time.Hour, clock.Now)
	assets := &fakeAssets{fail: map[string]bool{}}
	ctx := context.Background()

	store, err := meta.NewStore(path, policy, assets)
	if err != nil {
		t.Fatalf("NewStore: %v", err)
	}

	if err := store.CreateSession(ctx, newSession(policy, "AB12CD", "OWNER1234567")); err != nil {
		t.Fatalf("CreateSession: %v", err)
	}

	addFiles(t, store, "AB12CD", 2)

	if _, err := store.IncrementDownloadCount(ctx, "AB12CD", ""); err != nil {
		t.Fatalf("IncrementDownloadCount: %v", err)
	}

	reopened, err := meta.NewStore(path, policy, assets)
	if err != nil {
		t.Fatalf("reopen: %v", err)
	}

	got, err := reopened.GetSession(ctx, "AB12CD")
	if err != nil {
		t.Fatalf("GetSession after reload: %v", err)
	}

	if len(got.Files) != 2 || got.DownloadCount != 1 || got.OwnerCode != "OWNER1234567" {
		t.Errorf("reloaded session mismatch: files=%d count=%d owner=%s",
			len(got.Files), got.DownloadCount, got.OwnerCode)
	}

	byOwner, err := reopened.GetSessionByOwner(ctx, "OWNER1234567")
	if err != nil || byOwner.AccessCode != "AB12CD" {
		t.Errorf("owner index after reload: %v", err)
	}
}

// TestCorruptedMetadataStartsEmpty 测试损坏的元数据文件不阻止启动.
func TestCorruptedMetadataStartsEmpty(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "metadata.json")

	if err := os.WriteFile(path, []byte("{not json"), 0o644); err != nil {
		t.Fatalf("write corrupt file: %v", err)
	}

	policy := expiry.NewPolicy(time.Hour, nil)

	store, err := meta.NewStore(path, policy, &fakeAssets{})
	if err != nil {
		t.Fatalf("NewStore on corrupt file: %v", err)
	}

	if n := store.SessionCount(context.Background()); n != 0 {
		t.Errorf("session count from corrupt file = %d", n)
	}
}

// TestRemoveOwnerMapping 测试摘除所有者索引后会话仍可按访问码读取.
func TestRemoveOwnerMapping(t *testing.T) {
	store, _, clock := newTestStore(t)
	ctx := context.Background()
	policy := expiry.NewPolicy(time.Hour, clock.Now)

	if err := store.CreateSession(ctx, newSession(policy, "AB12CD", "OWNER1234567")); err != nil {
		t.Fatalf("CreateSession: %v", err)
	}

	if err := store.RemoveOwnerMapping(ctx, "OWNER1234567"); err != nil {
		t.Fatalf("RemoveOwnerMapping: %v", err)
	}

	if _, err := store.GetSessionByOwner(ctx, "OWNER1234567"); !errors.Is(err, meta.ErrSessionNotFound) {
		t.Errorf("owner lookup after removal: %v", err)
	}

	if _, err := store.GetSession(ctx, "AB12CD"); err != nil {
		t.Errorf("access by code after owner removal: %v", err)
	}
}
