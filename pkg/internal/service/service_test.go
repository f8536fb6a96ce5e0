package service

import (
	"archive/zip"
	"bytes"
	"context"
	"errors"
	"io"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/yeisme/tempshare/pkg/configs"
	"github.com/yeisme/tempshare/pkg/internal/expiry"
	"github.com/yeisme/tempshare/pkg/internal/storage/meta"
	"github.com/yeisme/tempshare/pkg/internal/types"
	tlog "github.com/yeisme/tempshare/pkg/log"
)

// fakeAssetStore 内存对象存储桩，满足 AssetStore 与 meta.AssetRemover.
type fakeAssetStore struct {
	mu       sync.Mutex
	objects  map[string][]byte
	putCalls int
	// failPutAfter 第 N 次 PutAsset 起失败，0 表示不失败
	failPutAfter int
}

func newFakeAssetStore() *fakeAssetStore {
	return &fakeAssetStore{objects: map[string][]byte{}}
}

func (f *fakeAssetStore) PutAsset(_ context.Context, objectKey string, r io.Reader, _ int64, _ string) error {
	data, err := io.ReadAll(r)
	if err != nil {
		return err
	}

	f.mu.Lock()
	defer f.mu.Unlock()

	f.putCalls++
	if f.failPutAfter > 0 && f.putCalls >= f.failPutAfter {
		return errors.New("simulated put failure")
	}

	f.objects[objectKey] = data

	return nil
}

func (f *fakeAssetStore) RemoveAsset(_ context.Context, objectKey string, _ string) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	delete(f.objects, objectKey)

	return nil
}

func (f *fakeAssetStore) GetAsset(_ context.Context, objectKey string) (io.ReadCloser, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	data, ok := f.objects[objectKey]
	if !ok {
		return nil, errors.New("object not found")
	}

	return io.NopCloser(bytes.NewReader(data)), nil
}

func (f *fakeAssetStore) PresignDownload(_ context.Context, objectKey, filename string) (string, error) {
	return "https://assets.local/" + objectKey + "?attachment=" + filename, nil
}

func (f *fakeAssetStore) PresignPreview(_ context.Context, objectKey string) (string, error) {
	return "https://assets.local/" + objectKey + "?inline=1", nil
}

func (f *fakeAssetStore) count() int {
	f.mu.Lock()
	defer f.mu.Unlock()

	return len(f.objects)
}

// testClock 可推进的测试时钟.
type testClock struct {
	now time.Time
}

func (c *testClock) Now() time.Time { return c.now }

func testConfig() *configs.AppConfig {
	cfg := &configs.AppConfig{}
	cfg.Server.BaseURL = "http://localhost:8080"
	cfg.Store.AccessCodeLength = 6
	cfg.Store.OwnerCodeLength = 12
	cfg.Store.ExpiryHuman = "1 Hour"
	cfg.Store.MaxFileBytes = 1 << 20
	cfg.Store.MaxAudioBytes = 1 << 10
	cfg.Store.MaxVideoBytes = 1 << 21
	cfg.Store.MaxDirectoryBytes = 1 << 21

	return cfg
}

func newTestService(t *testing.T) (*SessionService, *fakeAssetStore, *testClock) {
	t.Helper()

	clock := &testClock{now: time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)}
	policy := expiry.NewPolicy(time.Hour, clock.Now)
	assets := newFakeAssetStore()

	store, err := meta.NewStore(filepath.Join(t.TempDir(), "metadata.json"), policy, assets)
	if err != nil {
		t.Fatalf("NewStore: %v", err)
	}

	svc := &SessionService{
		metaStore: store,
		assets:    assets,
		policy:    policy,
		cfg:       testConfig(),
		logger:    tlog.Logger(),
	}

	return svc, assets, clock
}

func mkUpload(name, mime, content string) *types.UploadFile {
	return &types.UploadFile{
		Filename: name,
		Size:     int64(len(content)),
		MimeType: mime,
		Open: func() (io.ReadCloser, error) {
			return io.NopCloser(strings.NewReader(content)), nil
		},
	}
}

// TestCreateSessionEndToEnd 测试上传建会话、访问码查询与下载计数的完整链路.
func TestCreateSessionEndToEnd(t *testing.T) {
	svc, assets, _ := newTestService(t)
	ctx := context.Background()

	resp, err := svc.CreateSession(ctx, []*types.UploadFile{
		mkUpload("report.pdf", "application/pdf", "pdf-bytes"),
		mkUpload("photo.png", "image/png", "png-bytes"),
	})
	if err != nil {
		t.Fatalf("CreateSession: %v", err)
	}

	if len(resp.AccessCode) != 6 {
		t.Errorf("access code %q length != 6", resp.AccessCode)
	}

	if len(resp.OwnerCode) != 12 {
		t.Errorf("owner code %q length != 12", resp.OwnerCode)
	}

	if resp.ExpiresIn != "1 Hour" {
		t.Errorf("expires_in = %q", resp.ExpiresIn)
	}

	if !strings.HasPrefix(resp.UploadID, "upl_") {
		t.Errorf("upload id = %q", resp.UploadID)
	}

	if want := "http://localhost:8080/access/" + resp.AccessCode; resp.AccessURL != want {
		t.Errorf("access_url = %q, want %q", resp.AccessURL, want)
	}

	if len(resp.Files) != 2 || assets.count() != 2 {
		t.Fatalf("files=%d objects=%d, want 2/2", len(resp.Files), assets.count())
	}

	info, err := svc.GetByAccessCode(ctx, resp.AccessCode)
	if err != nil {
		t.Fatalf("GetByAccessCode: %v", err)
	}

	if info.PreviewFileID != info.Files[0].FileID {
		t.Errorf("preview file = %s, want first file", info.PreviewFileID)
	}

	url, err := svc.DownloadURL(ctx, resp.AccessCode, info.Files[0].FileID)
	if err != nil {
		t.Fatalf("DownloadURL: %v", err)
	}

	if !strings.Contains(url, "attachment=report.pdf") {
		t.Errorf("download url %q missing attachment filename", url)
	}

	after, _ := svc.GetByAccessCode(ctx, resp.AccessCode)
	if after.DownloadCount != 1 || after.Files[0].DownloadCount != 1 {
		t.Errorf("counts after download: session=%d file=%d", after.DownloadCount, after.Files[0].DownloadCount)
	}
}

// TestCreateSessionNoFiles 测试空文件列表被拒绝.
func TestCreateSessionNoFiles(t *testing.T) {
	svc, _, _ := newTestService(t)

	if _, err := svc.CreateSession(context.Background(), nil); !errors.Is(err, ErrNoFiles) {
		t.Errorf("expected ErrNoFiles, got %v", err)
	}

	if _, err := svc.CreateSession(context.Background(), []*types.UploadFile{{Filename: ""}}); !errors.Is(err, ErrNoFiles) {
		t.Errorf("expected ErrNoFiles for empty filename, got %v", err)
	}
}

// TestCreateSessionSizeLimits 测试按资产类别的大小限制.
func TestCreateSessionSizeLimits(t *testing.T) {
	svc, assets, _ := newTestService(t)
	ctx := context.Background()

	big := strings.Repeat("x", int(svc.cfg.Store.MaxAudioBytes)+1)

	_, err := svc.CreateSession(ctx, []*types.UploadFile{mkUpload("song.mp3", "audio/mpeg", big)})
	if !errors.Is(err, ErrTooLarge) {
		t.Errorf("expected ErrTooLarge for oversized audio, got %v", err)
	}

	if assets.count() != 0 {
		t.Errorf("rejected upload left %d objects behind", assets.count())
	}
}

// TestCreateSessionRollback 测试上传中途失败时会话与已传资产被清除.
func TestCreateSessionRollback(t *testing.T) {
	svc, assets, _ := newTestService(t)
	ctx := context.Background()

	assets.failPutAfter = 2

	_, err := svc.CreateSession(ctx, []*types.UploadFile{
		mkUpload("a.txt", "text/plain", "aaa"),
		mkUpload("b.txt", "text/plain", "bbb"),
		mkUpload("c.txt", "text/plain", "ccc"),
	})
	if err == nil {
		t.Fatal("expected upload failure")
	}

	if n := svc.SessionCount(ctx); n != 0 {
		t.Errorf("sessions after rollback = %d", n)
	}

	if assets.count() != 0 {
		t.Errorf("orphan objects after rollback = %d", assets.count())
	}
}

// TestDirectoryUpload 测试目录上传打包为单个 zip，保留相对路径.
func TestDirectoryUpload(t *testing.T) {
	svc, assets, _ := newTestService(t)
	ctx := context.Background()

	resp, err := svc.CreateSession(ctx, []*types.UploadFile{
		mkUpload("docs/a.txt", "text/plain", "alpha"),
		mkUpload("docs/sub/b.txt", "text/plain", "beta"),
	})
	if err != nil {
		t.Fatalf("CreateSession: %v", err)
	}

	if len(resp.Files) != 1 {
		t.Fatalf("directory upload produced %d records, want 1", len(resp.Files))
	}

	if resp.Files[0].Filename != "docs.zip" {
		t.Errorf("zip name = %q", resp.Files[0].Filename)
	}

	if resp.Files[0].MimeType != "application/zip" {
		t.Errorf("zip mime = %q", resp.Files[0].MimeType)
	}

	if assets.count() != 1 {
		t.Fatalf("objects = %d, want 1", assets.count())
	}

	var data []byte
	for _, b := range assets.objects {
		data = b
	}

	zr, err := zip.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		t.Fatalf("open zip: %v", err)
	}

	got := map[string]string{}

	for _, zf := range zr.File {
		rc, _ := zf.Open()
		b, _ := io.ReadAll(rc)
		rc.Close()
		got[zf.Name] = string(b)
	}

	if got["docs/a.txt"] != "alpha" || got["docs/sub/b.txt"] != "beta" {
		t.Errorf("zip contents mismatch: %v", got)
	}
}

// TestOwnerLookupAndDelete 测试所有者码的归一化查询与级联删除.
func TestOwnerLookupAndDelete(t *testing.T) {
	svc, assets, _ := newTestService(t)
	ctx := context.Background()

	resp, err := svc.CreateSession(ctx, []*types.UploadFile{
		mkUpload("report.pdf", "application/pdf", "pdf-bytes"),
	})
	if err != nil {
		t.Fatalf("CreateSession: %v", err)
	}

	// 带连字符和小写的输入应被归一化
	formatted := strings.ToLower(resp.OwnerCode[:4]) + "-" + resp.OwnerCode[4:]

	found, err := svc.GetByOwnerCode(ctx, formatted)
	if err != nil {
		t.Fatalf("GetByOwnerCode(%q): %v", formatted, err)
	}

	if found.AccessCode != resp.AccessCode || found.Status != "active" {
		t.Errorf("owner lookup: access=%s status=%s", found.AccessCode, found.Status)
	}

	if found.Filename != "report.pdf" {
		t.Errorf("legacy filename field = %q", found.Filename)
	}

	del, err := svc.DeleteByOwnerCode(ctx, formatted)
	if err != nil {
		t.Fatalf("DeleteByOwnerCode: %v", err)
	}

	if del.FilesDeleted != 1 || del.AccessCode != resp.AccessCode {
		t.Errorf("delete response: %+v", del)
	}

	if assets.count() != 0 {
		t.Errorf("assets after owner delete = %d", assets.count())
	}

	if _, err := svc.GetByAccessCode(ctx, resp.AccessCode); !errors.Is(err, ErrNotFound) {
		t.Errorf("access after delete: %v", err)
	}
}

// TestExpirySweepEndToEnd 测试过期后清扫移除会话与资产.
func TestExpirySweepEndToEnd(t *testing.T) {
	svc, assets, clock := newTestService(t)
	ctx := context.Background()

	resp, err := svc.CreateSession(ctx, []*types.UploadFile{
		mkUpload("a.txt", "text/plain", "aaa"),
		mkUpload("b.txt", "text/plain", "bbb"),
	})
	if err != nil {
		t.Fatalf("CreateSession: %v", err)
	}

	clock.now = clock.now.Add(2 * time.Hour)

	result := svc.SweepExpired(ctx)
	if result.Sessions != 1 {
		t.Errorf("swept sessions = %d", result.Sessions)
	}

	if assets.count() != 0 {
		t.Errorf("assets after sweep = %d", assets.count())
	}

	if _, err := svc.GetByAccessCode(ctx, resp.AccessCode); !errors.Is(err, ErrNotFound) {
		t.Errorf("access after expiry: %v", err)
	}
}

// TestPreviewRules 测试预览规则：图片与 PDF 可预览，纯文本不可，且不影响计数.
func TestPreviewRules(t *testing.T) {
	svc, _, _ := newTestService(t)
	ctx := context.Background()

	resp, err := svc.CreateSession(ctx, []*types.UploadFile{
		mkUpload("photo.png", "image/png", "png-bytes"),
		mkUpload("report.pdf", "application/pdf", "pdf-bytes"),
		mkUpload("notes.txt", "text/plain", "text"),
	})
	if err != nil {
		t.Fatalf("CreateSession: %v", err)
	}

	info, _ := svc.GetByAccessCode(ctx, resp.AccessCode)

	if _, err := svc.PreviewURL(ctx, resp.AccessCode, info.Files[0].FileID); err != nil {
		t.Errorf("image preview: %v", err)
	}

	if _, err := svc.PreviewURL(ctx, resp.AccessCode, info.Files[1].FileID); err != nil {
		t.Errorf("pdf preview: %v", err)
	}

	if _, err := svc.PreviewURL(ctx, resp.AccessCode, info.Files[2].FileID); !errors.Is(err, ErrPreviewUnsupported) {
		t.Errorf("text preview: expected ErrPreviewUnsupported, got %v", err)
	}

	after, _ := svc.GetByAccessCode(ctx, resp.AccessCode)
	if after.DownloadCount != 0 {
		t.Errorf("preview must not increment download count, got %d", after.DownloadCount)
	}
}

// TestBatchArchive 测试批量打包下载：选中文件入包，会话计数只加一.
func TestBatchArchive(t *testing.T) {
	svc, assets, _ := newTestService(t)
	ctx := context.Background()

	resp, err := svc.CreateSession(ctx, []*types.UploadFile{
		mkUpload("a.txt", "text/plain", "alpha"),
		mkUpload("b.txt", "text/plain", "beta"),
	})
	if err != nil {
		t.Fatalf("CreateSession: %v", err)
	}

	info, _ := svc.GetByAccessCode(ctx, resp.AccessCode)

	batch, err := svc.BatchArchive(ctx, &types.BatchDownloadRequest{
		AccessCode: resp.AccessCode,
		FileIDs:    []string{info.Files[0].FileID},
	})
	if err != nil {
		t.Fatalf("BatchArchive: %v", err)
	}

	if batch.ArchiveURL == "" {
		t.Error("empty archive url")
	}

	// 原有 2 个资产 + 1 个打包资产
	if assets.count() != 3 {
		t.Errorf("objects after batch = %d, want 3", assets.count())
	}

	var archive []byte
	for key, b := range assets.objects {
		if strings.Contains(key, "/archives/") {
			archive = b
		}
	}

	zr, err := zip.NewReader(bytes.NewReader(archive), int64(len(archive)))
	if err != nil {
		t.Fatalf("open archive: %v", err)
	}

	if len(zr.File) != 1 || zr.File[0].Name != "a.txt" {
		t.Errorf("archive entries: %v", zr.File)
	}

	after, _ := svc.GetByAccessCode(ctx, resp.AccessCode)
	if after.DownloadCount != 1 {
		t.Errorf("session count after batch = %d, want 1", after.DownloadCount)
	}

	for _, f := range after.Files {
		if f.DownloadCount != 0 {
			t.Errorf("file %s count = %d, want 0", f.FileID, f.DownloadCount)
		}
	}

	// 不匹配的 file_ids
	if _, err := svc.BatchArchive(ctx, &types.BatchDownloadRequest{
		AccessCode: resp.AccessCode,
		FileIDs:    []string{"f9_ZZZZ"},
	}); !errors.Is(err, ErrNoMatchingFiles) {
		t.Errorf("expected ErrNoMatchingFiles, got %v", err)
	}

	// 打包资产随会话删除一并清理
	if _, err := svc.DeleteByAccessCode(ctx, resp.AccessCode); err != nil {
		t.Fatalf("DeleteByAccessCode: %v", err)
	}

	if assets.count() != 0 {
		t.Errorf("objects after session delete = %d, want 0", assets.count())
	}
}

// TestInvalidAccessCodes 测试非法访问码的拒绝.
func TestInvalidAccessCodes(t *testing.T) {
	svc, _, _ := newTestService(t)
	ctx := context.Background()

	for _, bad := range []string{"", "AB1", "abc12d", "TOOLONGCODE99", "AB-12C"} {
		if _, err := svc.GetByAccessCode(ctx, bad); !errors.Is(err, ErrInvalidAccessCode) {
			t.Errorf("GetByAccessCode(%q): expected ErrInvalidAccessCode, got %v", bad, err)
		}
	}
}

// TestDownloadFirstURL 测试旧版单文件下载入口.
func TestDownloadFirstURL(t *testing.T) {
	svc, _, _ := newTestService(t)
	ctx := context.Background()

	resp, err := svc.CreateSession(ctx, []*types.UploadFile{
		mkUpload("only.txt", "text/plain", "solo"),
	})
	if err != nil {
		t.Fatalf("CreateSession: %v", err)
	}

	url, err := svc.DownloadFirstURL(ctx, resp.AccessCode)
	if err != nil {
		t.Fatalf("DownloadFirstURL: %v", err)
	}

	if !strings.Contains(url, "attachment=only.txt") {
		t.Errorf("url = %q", url)
	}
}

// TestSanitizeFilename 测试文件名清洗.
func TestSanitizeFilename(t *testing.T) {
	cases := []struct {
		in   string
		want string
	}{
		{"report.pdf", "report.pdf"},
		{"../../etc/passwd", "passwd"},
		{"dir\\evil.exe", "evil.exe"},
		{"my file (1).txt", "my_file__1_.txt"},
		{"...", "file"},
		{"", "file"},
	}

	for _, tc := range cases {
		if got := SanitizeFilename(tc.in); got != tc.want {
			t.Errorf("SanitizeFilename(%q) = %q, want %q", tc.in, got, tc.want)
		}
	}
}
