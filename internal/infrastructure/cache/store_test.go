package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/spf13/afero"

	"github.com/hszk-dev/cliprelay/internal/domain/model"
	"github.com/hszk-dev/cliprelay/internal/domain/repository"
)

// memDocument is an in-memory DocumentStore with injectable failures.
type memDocument struct {
	mu      sync.Mutex
	data    []byte
	exists  bool
	loadErr error
	saveErr error
	loads   int
	saves   int
}

func (d *memDocument) Load(ctx context.Context) ([]byte, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.loads++
	if d.loadErr != nil {
		return nil, d.loadErr
	}
	if !d.exists {
		return nil, repository.ErrDocumentNotFound
	}
	return append([]byte(nil), d.data...), nil
}

func (d *memDocument) Save(ctx context.Context, data []byte) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.saves++
	if d.saveErr != nil {
		return d.saveErr
	}
	d.data = append([]byte(nil), data...)
	d.exists = true
	return nil
}

func (d *memDocument) setFailure(err error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.saveErr = err
}

func (d *memDocument) contents() string {
	d.mu.Lock()
	defer d.mu.Unlock()
	return string(d.data)
}

// testClock is a manually advanced clock.
type testClock struct {
	now time.Time
}

func newTestClock() *testClock {
	return &testClock{now: time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)}
}

func (c *testClock) Now() time.Time { return c.now }

func (c *testClock) Advance(d time.Duration) { c.now = c.now.Add(d) }

func newTestStore(doc repository.DocumentStore, expiry Expiry, clock *testClock) *Store {
	return NewStore(doc, StoreConfig{
		Name:   "urls",
		Expiry: expiry,
		Now:    clock.Now,
	})
}

func mustVideo(t *testing.T, fileID, caption string) model.Payload {
	t.Helper()
	p, err := model.NewVideo(fileID, caption, nil)
	if err != nil {
		t.Fatalf("NewVideo: %v", err)
	}
	return p
}

func TestStore_Get_EmptyStore(t *testing.T) {
	doc := &memDocument{}
	store := newTestStore(doc, FixedTTL{TTL: time.Hour}, newTestClock())
	ctx := context.Background()

	if err := store.Initialize(ctx); err != nil {
		t.Fatalf("Initialize failed: %v", err)
	}

	for _, key := range []string{"https://x.test/a", "id123", ""} {
		got, err := store.Get(ctx, key)
		if err != nil {
			t.Fatalf("Get(%q) failed: %v", key, err)
		}
		if got != nil {
			t.Errorf("Get(%q) = %+v, want nil", key, got)
		}
	}

	if doc.saves != 1 {
		t.Errorf("saves = %d, want 1 (document created on first load)", doc.saves)
	}
	var parsed map[string]map[string]json.RawMessage
	if err := json.Unmarshal([]byte(doc.contents()), &parsed); err != nil {
		t.Fatalf("created document is not JSON: %v", err)
	}
	if videos, ok := parsed["videos"]; !ok || len(videos) != 0 {
		t.Errorf("created document = %s, want empty videos mapping", doc.contents())
	}
}

func TestStore_SetGet_RoundTrip(t *testing.T) {
	tests := []struct {
		name    string
		payload model.Payload
	}{
		{
			name: "video",
			payload: model.Payload{
				Kind:    model.KindVideo,
				FileID:  "F1",
				Caption: "hello",
			},
		},
		{
			name: "video with markup and html caption",
			payload: model.Payload{
				Kind:    model.KindVideo,
				FileID:  "F2",
				Caption: "<b>bold</b> &amp; <blockquote expandable>desc</blockquote>",
				ReplyMarkup: &model.ReplyMarkup{
					InlineKeyboard: [][]model.InlineButton{
						{{Text: "🎵 Download Track", URL: "https://cdn.test/track.mp3"}},
					},
				},
			},
		},
		{
			name: "photo album",
			payload: model.Payload{
				Kind:    model.KindPhotoAlbum,
				FileIDs: []string{"a", "b", "c"},
				Caption: "x",
			},
		},
		{
			name: "empty caption",
			payload: model.Payload{
				Kind:   model.KindVideo,
				FileID: "F3",
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			store := newTestStore(&memDocument{}, FixedTTL{TTL: time.Hour}, newTestClock())
			ctx := context.Background()

			if err := store.Set(ctx, "key", tt.payload); err != nil {
				t.Fatalf("Set failed: %v", err)
			}

			got, err := store.Get(ctx, "key")
			if err != nil {
				t.Fatalf("Get failed: %v", err)
			}
			if got == nil {
				t.Fatal("expected payload, got nil")
			}
			assertPayloadEqual(t, *got, tt.payload)
		})
	}
}

func TestStore_Get_ExpiredEntryIsEvicted(t *testing.T) {
	clock := newTestClock()
	doc := &memDocument{}
	store := newTestStore(doc, FixedTTL{TTL: time.Hour}, clock)
	ctx := context.Background()

	want := mustVideo(t, "F1", "hello")
	if err := store.Set(ctx, "https://x.test/a", want); err != nil {
		t.Fatalf("Set failed: %v", err)
	}

	got, err := store.Get(ctx, "https://x.test/a")
	if err != nil {
		t.Fatalf("Get failed: %v", err)
	}
	if got == nil {
		t.Fatal("expected payload before expiry, got nil")
	}
	assertPayloadEqual(t, *got, want)

	clock.Advance(time.Hour + time.Minute)

	got, err = store.Get(ctx, "https://x.test/a")
	if err != nil {
		t.Fatalf("Get after expiry failed: %v", err)
	}
	if got != nil {
		t.Errorf("Get after expiry = %+v, want nil", got)
	}

	n, err := store.Len(ctx)
	if err != nil {
		t.Fatalf("Len failed: %v", err)
	}
	if n != 0 {
		t.Errorf("Len = %d, want 0 (entry evicted)", n)
	}
	if strings.Contains(doc.contents(), "x.test") {
		t.Errorf("persisted document still holds evicted entry: %s", doc.contents())
	}
}

func TestStore_Get_ExactlyAtTTLIsFresh(t *testing.T) {
	clock := newTestClock()
	store := newTestStore(&memDocument{}, FixedTTL{TTL: time.Hour}, clock)
	ctx := context.Background()

	if err := store.Set(ctx, "k", mustVideo(t, "F1", "")); err != nil {
		t.Fatalf("Set failed: %v", err)
	}

	clock.Advance(time.Hour)

	got, err := store.Get(ctx, "k")
	if err != nil {
		t.Fatalf("Get failed: %v", err)
	}
	if got == nil {
		t.Error("entry aged exactly TTL should still be served")
	}
}

func TestStore_Get_NoExpiry(t *testing.T) {
	clock := newTestClock()
	store := newTestStore(&memDocument{}, NoExpiry{}, clock)
	ctx := context.Background()

	if err := store.Set(ctx, "id123", mustVideo(t, "F1", "")); err != nil {
		t.Fatalf("Set failed: %v", err)
	}

	clock.Advance(365 * 24 * time.Hour)

	got, err := store.Get(ctx, "id123")
	if err != nil {
		t.Fatalf("Get failed: %v", err)
	}
	if got == nil {
		t.Error("entry without expiry should survive any age")
	}
}

func TestStore_Set_Overwrite(t *testing.T) {
	doc := &memDocument{}
	store := newTestStore(doc, FixedTTL{TTL: time.Hour}, newTestClock())
	ctx := context.Background()

	p1 := mustVideo(t, "FIRST-FILE", "first")
	p2 := model.Payload{Kind: model.KindPhotoAlbum, FileIDs: []string{"p1", "p2"}, Caption: "second"}

	if err := store.Set(ctx, "k", p1); err != nil {
		t.Fatalf("Set p1 failed: %v", err)
	}
	if err := store.Set(ctx, "k", p2); err != nil {
		t.Fatalf("Set p2 failed: %v", err)
	}

	got, err := store.Get(ctx, "k")
	if err != nil {
		t.Fatalf("Get failed: %v", err)
	}
	if got == nil {
		t.Fatal("expected payload, got nil")
	}
	assertPayloadEqual(t, *got, p2)

	if strings.Contains(doc.contents(), "FIRST-FILE") {
		t.Errorf("overwritten payload still present in document: %s", doc.contents())
	}
}

func TestStore_PersistsAcrossRestart(t *testing.T) {
	fsys := afero.NewMemMapFs()
	clock := newTestClock()
	ctx := context.Background()

	album := model.Payload{Kind: model.KindPhotoAlbum, FileIDs: []string{"a", "b", "c"}, Caption: "x"}

	first := newTestStore(NewFileDocument(fsys, "/data/urls.json"), FixedTTL{TTL: time.Hour}, clock)
	if err := first.Set(ctx, "id123", album); err != nil {
		t.Fatalf("Set failed: %v", err)
	}

	clock.Advance(10 * time.Minute)

	second := newTestStore(NewFileDocument(fsys, "/data/urls.json"), FixedTTL{TTL: time.Hour}, clock)
	if err := second.Initialize(ctx); err != nil {
		t.Fatalf("Initialize after restart failed: %v", err)
	}

	got, err := second.Get(ctx, "id123")
	if err != nil {
		t.Fatalf("Get failed: %v", err)
	}
	if got == nil {
		t.Fatal("expected payload after restart, got nil")
	}
	assertPayloadEqual(t, *got, album)

	// The write time survives the restart, so expiry still counts from the original Set.
	clock.Advance(time.Hour)
	got, err = second.Get(ctx, "id123")
	if err != nil {
		t.Fatalf("Get failed: %v", err)
	}
	if got != nil {
		t.Errorf("Get = %+v, want nil once the original write is older than TTL", got)
	}
}

func TestStore_Get_ReturnsCopy(t *testing.T) {
	store := newTestStore(&memDocument{}, NoExpiry{}, newTestClock())
	ctx := context.Background()

	if err := store.Set(ctx, "k", model.Payload{Kind: model.KindPhotoAlbum, FileIDs: []string{"a", "b"}}); err != nil {
		t.Fatalf("Set failed: %v", err)
	}

	got, err := store.Get(ctx, "k")
	if err != nil || got == nil {
		t.Fatalf("Get = %v, %v", got, err)
	}
	got.FileIDs[0] = "mutated"
	got.Caption = "mutated"

	again, err := store.Get(ctx, "k")
	if err != nil || again == nil {
		t.Fatalf("Get = %v, %v", again, err)
	}
	if again.FileIDs[0] != "a" || again.Caption != "" {
		t.Errorf("cached payload was mutated through a returned copy: %+v", again)
	}
}

func TestStore_Set_InvalidInput(t *testing.T) {
	tests := []struct {
		name    string
		key     string
		payload model.Payload
		wantErr error
	}{
		{
			name:    "empty key",
			key:     "",
			payload: model.Payload{Kind: model.KindVideo, FileID: "F1"},
			wantErr: ErrEmptyKey,
		},
		{
			name:    "video without file reference",
			key:     "k",
			payload: model.Payload{Kind: model.KindVideo},
			wantErr: model.ErrInvalidPayload,
		},
		{
			name:    "empty album",
			key:     "k",
			payload: model.Payload{Kind: model.KindPhotoAlbum},
			wantErr: model.ErrInvalidPayload,
		},
		{
			name:    "unknown kind",
			key:     "k",
			payload: model.Payload{Kind: "gif", FileID: "F1"},
			wantErr: model.ErrInvalidPayload,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			doc := &memDocument{}
			store := newTestStore(doc, NoExpiry{}, newTestClock())

			err := store.Set(context.Background(), tt.key, tt.payload)
			if !errors.Is(err, tt.wantErr) {
				t.Errorf("Set() error = %v, want %v", err, tt.wantErr)
			}
			if doc.saves != 0 {
				t.Errorf("saves = %d, want 0 for rejected input", doc.saves)
			}
		})
	}
}

func TestStore_Set_PersistFailureRestoresPreviousEntry(t *testing.T) {
	doc := &memDocument{}
	store := newTestStore(doc, NoExpiry{}, newTestClock())
	ctx := context.Background()

	original := mustVideo(t, "F1", "original")
	if err := store.Set(ctx, "k", original); err != nil {
		t.Fatalf("Set failed: %v", err)
	}

	doc.setFailure(errors.New("disk full"))

	err := store.Set(ctx, "k", mustVideo(t, "F2", "replacement"))
	if !errors.Is(err, ErrStorageUnavailable) {
		t.Fatalf("Set() error = %v, want ErrStorageUnavailable", err)
	}
	err = store.Set(ctx, "new", mustVideo(t, "F3", "new"))
	if !errors.Is(err, ErrStorageUnavailable) {
		t.Fatalf("Set() error = %v, want ErrStorageUnavailable", err)
	}

	doc.setFailure(nil)

	got, err := store.Get(ctx, "k")
	if err != nil || got == nil {
		t.Fatalf("Get = %v, %v", got, err)
	}
	assertPayloadEqual(t, *got, original)

	got, err = store.Get(ctx, "new")
	if err != nil {
		t.Fatalf("Get failed: %v", err)
	}
	if got != nil {
		t.Errorf("failed Set left entry behind: %+v", got)
	}
}

func TestStore_Get_UnreadableEntries(t *testing.T) {
	doc := &memDocument{
		exists: true,
		data: []byte(`{"videos": {
			"number": 42,
			"unknown-kind": {"data": {"type": "gif", "file_id": "F"}, "timestamp": 1709294400000},
			"video-no-file": {"data": {"type": "video", "caption": "c"}, "timestamp": 1709294400000},
			"album-empty": {"data": {"type": "photo", "file_ids": []}, "timestamp": 1709294400000},
			"good": {"data": {"type": "video", "file_id": "F1", "caption": "ok"}, "timestamp": 1709294400000}
		}}`),
	}
	store := newTestStore(doc, NoExpiry{}, newTestClock())
	ctx := context.Background()

	for _, key := range []string{"number", "unknown-kind", "video-no-file", "album-empty"} {
		got, err := store.Get(ctx, key)
		if err != nil {
			t.Errorf("Get(%q) error = %v, want nil", key, err)
		}
		if got != nil {
			t.Errorf("Get(%q) = %+v, want nil", key, got)
		}
	}

	got, err := store.Get(ctx, "good")
	if err != nil || got == nil {
		t.Fatalf("Get(good) = %v, %v", got, err)
	}
	if got.FileID != "F1" || got.Caption != "ok" {
		t.Errorf("Get(good) = %+v", got)
	}

	n, err := store.Len(ctx)
	if err != nil {
		t.Fatalf("Len failed: %v", err)
	}
	if n != 5 {
		t.Errorf("Len = %d, want 5 (unreadable entries are kept)", n)
	}
}

func TestStore_Get_MissingTimestamp(t *testing.T) {
	raw := `{"videos": {"k": {"data": {"type": "video", "file_id": "F1"}}}}`

	tests := []struct {
		name    string
		expiry  Expiry
		wantHit bool
	}{
		{name: "fixed ttl treats it as expired", expiry: FixedTTL{TTL: time.Hour}, wantHit: false},
		{name: "no expiry serves it", expiry: NoExpiry{}, wantHit: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			doc := &memDocument{exists: true, data: []byte(raw)}
			store := newTestStore(doc, tt.expiry, newTestClock())

			got, err := store.Get(context.Background(), "k")
			if err != nil {
				t.Fatalf("Get failed: %v", err)
			}
			if (got != nil) != tt.wantHit {
				t.Errorf("Get hit = %v, want %v", got != nil, tt.wantHit)
			}
		})
	}
}

func TestStore_Initialize(t *testing.T) {
	tests := []struct {
		name        string
		doc         *memDocument
		wantErr     error
		wantEntries int
	}{
		{
			name:        "missing document",
			doc:         &memDocument{},
			wantEntries: 0,
		},
		{
			name:        "zero-length document",
			doc:         &memDocument{exists: true, data: []byte{}},
			wantEntries: 0,
		},
		{
			name:        "populated document",
			doc:         &memDocument{exists: true, data: []byte(`{"videos": {"a": {}, "b": {}}}`)},
			wantEntries: 2,
		},
		{
			name:    "not json",
			doc:     &memDocument{exists: true, data: []byte(`{"videos": `)},
			wantErr: ErrCorruptDocument,
		},
		{
			name:    "array document",
			doc:     &memDocument{exists: true, data: []byte(`[1, 2]`)},
			wantErr: ErrCorruptDocument,
		},
		{
			name:        "extra top-level fields",
			doc:         &memDocument{exists: true, data: []byte(`{"version": 2, "videos": {"a": {}}}`)},
			wantEntries: 1,
		},
		{
			name:    "object without videos",
			doc:     &memDocument{exists: true, data: []byte(`{}`)},
			wantErr: ErrCorruptDocument,
		},
		{
			name:    "null document",
			doc:     &memDocument{exists: true, data: []byte(`null`)},
			wantErr: ErrCorruptDocument,
		},
		{
			name:    "null videos",
			doc:     &memDocument{exists: true, data: []byte(`{"videos": null}`)},
			wantErr: ErrCorruptDocument,
		},
		{
			name:    "videos is not an object",
			doc:     &memDocument{exists: true, data: []byte(`{"videos": ["a"]}`)},
			wantErr: ErrCorruptDocument,
		},
		{
			name:    "backend failure",
			doc:     &memDocument{loadErr: errors.New("connection refused")},
			wantErr: ErrStorageUnavailable,
		},
		{
			name:    "cannot create document",
			doc:     &memDocument{saveErr: errors.New("read-only filesystem")},
			wantErr: ErrStorageUnavailable,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			store := newTestStore(tt.doc, NoExpiry{}, newTestClock())
			ctx := context.Background()

			err := store.Initialize(ctx)
			if tt.wantErr != nil {
				if !errors.Is(err, tt.wantErr) {
					t.Fatalf("Initialize() error = %v, want %v", err, tt.wantErr)
				}
				return
			}
			if err != nil {
				t.Fatalf("Initialize failed: %v", err)
			}

			n, err := store.Len(ctx)
			if err != nil {
				t.Fatalf("Len failed: %v", err)
			}
			if n != tt.wantEntries {
				t.Errorf("Len = %d, want %d", n, tt.wantEntries)
			}
		})
	}
}

func TestStore_CorruptDocumentIsStorageUnavailable(t *testing.T) {
	if !errors.Is(ErrCorruptDocument, ErrStorageUnavailable) {
		t.Error("ErrCorruptDocument should wrap ErrStorageUnavailable")
	}
}

func TestStore_LoadsOnce(t *testing.T) {
	doc := &memDocument{}
	store := newTestStore(doc, NoExpiry{}, newTestClock())
	ctx := context.Background()

	// No Initialize: the first operation loads the document.
	if _, err := store.Get(ctx, "k"); err != nil {
		t.Fatalf("Get failed: %v", err)
	}
	if err := store.Initialize(ctx); err != nil {
		t.Fatalf("Initialize failed: %v", err)
	}
	if err := store.Set(ctx, "k", mustVideo(t, "F1", "")); err != nil {
		t.Fatalf("Set failed: %v", err)
	}

	if doc.loads != 1 {
		t.Errorf("loads = %d, want 1", doc.loads)
	}
}

func TestStore_Initialize_RetriesAfterFailure(t *testing.T) {
	doc := &memDocument{loadErr: errors.New("timeout")}
	store := newTestStore(doc, NoExpiry{}, newTestClock())
	ctx := context.Background()

	if err := store.Initialize(ctx); err == nil {
		t.Fatal("expected error from failing backend")
	}

	doc.loadErr = nil
	if err := store.Initialize(ctx); err != nil {
		t.Fatalf("Initialize after recovery failed: %v", err)
	}
}

func TestStore_Delete(t *testing.T) {
	doc := &memDocument{}
	store := newTestStore(doc, NoExpiry{}, newTestClock())
	ctx := context.Background()

	if err := store.Set(ctx, "k", mustVideo(t, "F1", "")); err != nil {
		t.Fatalf("Set failed: %v", err)
	}
	if err := store.Delete(ctx, "k"); err != nil {
		t.Fatalf("Delete failed: %v", err)
	}

	got, err := store.Get(ctx, "k")
	if err != nil {
		t.Fatalf("Get failed: %v", err)
	}
	if got != nil {
		t.Errorf("expected nil after delete, got %+v", got)
	}

	saves := doc.saves
	if err := store.Delete(ctx, "absent"); err != nil {
		t.Fatalf("Delete of absent key failed: %v", err)
	}
	if doc.saves != saves {
		t.Error("deleting an absent key should not rewrite the document")
	}
}

func TestStore_DocumentFormat(t *testing.T) {
	clock := newTestClock()
	doc := &memDocument{}
	store := newTestStore(doc, NoExpiry{}, clock)
	ctx := context.Background()

	payload := model.Payload{
		Kind:    model.KindVideo,
		FileID:  "F1",
		Caption: "<b>hi</b>",
		ReplyMarkup: &model.ReplyMarkup{
			InlineKeyboard: [][]model.InlineButton{{{Text: "t", URL: "https://u.test"}}},
		},
	}
	if err := store.Set(ctx, "https://x.test/a", payload); err != nil {
		t.Fatalf("Set failed: %v", err)
	}

	contents := doc.contents()
	if !strings.Contains(contents, "<b>hi</b>") {
		t.Errorf("caption HTML should be stored unescaped: %s", contents)
	}
	if !strings.Contains(contents, "\n  \"videos\"") {
		t.Errorf("document should be indented with two spaces: %s", contents)
	}

	var parsed struct {
		Videos map[string]struct {
			Data struct {
				Type        string `json:"type"`
				FileID      string `json:"file_id"`
				Caption     string `json:"caption"`
				ReplyMarkup struct {
					InlineKeyboard [][]struct {
						Text string `json:"text"`
						URL  string `json:"url"`
					} `json:"inline_keyboard"`
				} `json:"reply_markup"`
			} `json:"data"`
			Timestamp int64 `json:"timestamp"`
		} `json:"videos"`
	}
	if err := json.Unmarshal([]byte(contents), &parsed); err != nil {
		t.Fatalf("document is not valid JSON: %v", err)
	}

	entry, ok := parsed.Videos["https://x.test/a"]
	if !ok {
		t.Fatalf("entry missing from document: %s", contents)
	}
	if entry.Data.Type != "video" || entry.Data.FileID != "F1" {
		t.Errorf("data = %+v", entry.Data)
	}
	if entry.Timestamp != clock.Now().UnixMilli() {
		t.Errorf("timestamp = %d, want %d", entry.Timestamp, clock.Now().UnixMilli())
	}
	if len(entry.Data.ReplyMarkup.InlineKeyboard) != 1 || entry.Data.ReplyMarkup.InlineKeyboard[0][0].URL != "https://u.test" {
		t.Errorf("reply_markup = %+v", entry.Data.ReplyMarkup)
	}
}

func TestStore_ConcurrentSet(t *testing.T) {
	store := newTestStore(&memDocument{}, NoExpiry{}, newTestClock())
	ctx := context.Background()

	const writers = 20
	var wg sync.WaitGroup
	for i := 0; i < writers; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			p := model.Payload{Kind: model.KindVideo, FileID: fmt.Sprintf("F%d", i)}
			if err := store.Set(ctx, fmt.Sprintf("k%d", i), p); err != nil {
				t.Errorf("Set failed: %v", err)
			}
		}(i)
	}
	wg.Wait()

	n, err := store.Len(ctx)
	if err != nil {
		t.Fatalf("Len failed: %v", err)
	}
	if n != writers {
		t.Errorf("Len = %d, want %d", n, writers)
	}
}

func assertPayloadEqual(t *testing.T, got, want model.Payload) {
	t.Helper()

	if got.Kind != want.Kind {
		t.Errorf("Kind = %v, want %v", got.Kind, want.Kind)
	}
	if got.FileID != want.FileID {
		t.Errorf("FileID = %q, want %q", got.FileID, want.FileID)
	}
	if got.Caption != want.Caption {
		t.Errorf("Caption = %q, want %q", got.Caption, want.Caption)
	}
	if len(got.FileIDs) != len(want.FileIDs) {
		t.Fatalf("FileIDs = %v, want %v", got.FileIDs, want.FileIDs)
	}
	for i := range want.FileIDs {
		if got.FileIDs[i] != want.FileIDs[i] {
			t.Errorf("FileIDs[%d] = %q, want %q", i, got.FileIDs[i], want.FileIDs[i])
		}
	}
	if (got.ReplyMarkup == nil) != (want.ReplyMarkup == nil) {
		t.Fatalf("ReplyMarkup = %+v, want %+v", got.ReplyMarkup, want.ReplyMarkup)
	}
	if want.ReplyMarkup == nil {
		return
	}
	if len(got.ReplyMarkup.InlineKeyboard) != len(want.ReplyMarkup.InlineKeyboard) {
		t.Fatalf("InlineKeyboard = %+v, want %+v", got.ReplyMarkup.InlineKeyboard, want.ReplyMarkup.InlineKeyboard)
	}
	for i, row := range want.ReplyMarkup.InlineKeyboard {
		if len(got.ReplyMarkup.InlineKeyboard[i]) != len(row) {
			t.Fatalf("InlineKeyboard[%d] = %+v, want %+v", i, got.ReplyMarkup.InlineKeyboard[i], row)
		}
		for j, b := range row {
			if got.ReplyMarkup.InlineKeyboard[i][j] != b {
				t.Errorf("InlineKeyboard[%d][%d] = %+v, want %+v", i, j, got.ReplyMarkup.InlineKeyboard[i][j], b)
			}
		}
	}
}
