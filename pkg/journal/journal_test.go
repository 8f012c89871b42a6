package journal

import (
	"context"
	"errors"
	"path/filepath"
	"testing"
	"time"

	nerrors "github.com/matzehuels/navgraph/pkg/errors"
)

func entry(session string, seq uint64, op Op) Entry {
	return Entry{
		Session:    session,
		Seq:        seq,
		Op:         op,
		Origin:     "home",
		Target:     "settings",
		Transition: "stack",
		At:         time.Date(2024, 1, 2, 3, 4, 5, 0, time.UTC),
	}
}

func TestNull(t *testing.T) {
	ctx := context.Background()
	j := NewNull()
	defer j.Close()

	if err := j.Append(ctx, entry("s", 1, OpPresent)); err != nil {
		t.Fatalf("Append error: %v", err)
	}
	got, err := j.Entries(ctx, "")
	if err != nil {
		t.Fatalf("Entries error: %v", err)
	}
	if len(got) != 0 {
		t.Errorf("Null should not store entries, got %d", len(got))
	}
}

func TestMemory(t *testing.T) {
	ctx := context.Background()
	j := NewMemory(3)

	for i := uint64(1); i <= 4; i++ {
		session := "a"
		if i%2 == 0 {
			session = "b"
		}
		if err := j.Append(ctx, entry(session, i, OpPresent)); err != nil {
			t.Fatalf("Append error: %v", err)
		}
	}
	if j.Len() != 3 {
		t.Fatalf("Len = %d, want 3", j.Len())
	}

	all, _ := j.Entries(ctx, "")
	if all[0].Seq != 2 || all[2].Seq != 4 {
		t.Errorf("oldest entry should be evicted, got %+v", all)
	}
	b, _ := j.Entries(ctx, "b")
	if len(b) != 2 {
		t.Errorf("session b entries = %d, want 2", len(b))
	}
}

func TestFile(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "nested", "journal.jsonl")

	j, err := NewFile(path)
	if err != nil {
		t.Fatalf("NewFile error: %v", err)
	}
	want := entry("s1", 1, OpPresent)
	want.Error = "HOST_OPERATION_FAILED: push: no navigation stack to push onto"
	if err := j.Append(ctx, want); err != nil {
		t.Fatalf("Append error: %v", err)
	}
	if err := j.Append(ctx, entry("s2", 1, OpRewind)); err != nil {
		t.Fatalf("Append error: %v", err)
	}
	if err := j.Close(); err != nil {
		t.Fatalf("Close error: %v", err)
	}

	// Reopening appends to the same file.
	j, err = NewFile(path)
	if err != nil {
		t.Fatalf("reopen error: %v", err)
	}
	defer j.Close()
	if err := j.Append(ctx, entry("s1", 2, OpRemove)); err != nil {
		t.Fatalf("Append error: %v", err)
	}

	got, err := j.Entries(ctx, "s1")
	if err != nil {
		t.Fatalf("Entries error: %v", err)
	}
	if len(got) != 2 {
		t.Fatalf("entries = %d, want 2", len(got))
	}
	g := got[0]
	if g.Session != want.Session || g.Seq != want.Seq || g.Op != want.Op || g.Error != want.Error || !g.At.Equal(want.At) {
		t.Errorf("entry = %+v, want %+v", g, want)
	}
	if !got[0].Failed() || got[1].Failed() {
		t.Error("Failed() mismatch")
	}
	if got[1].Op != OpRemove {
		t.Errorf("op = %s, want remove", got[1].Op)
	}
}

func TestFileAppendAfterClose(t *testing.T) {
	j, err := NewFile(filepath.Join(t.TempDir(), "j.jsonl"))
	if err != nil {
		t.Fatal(err)
	}
	_ = j.Close()
	if err := j.Append(context.Background(), entry("s", 1, OpPresent)); err == nil {
		t.Error("Append after Close should fail")
	}
	if err := j.Close(); err != nil {
		t.Errorf("second Close: %v", err)
	}
}

func TestOpen(t *testing.T) {
	ctx := context.Background()
	tests := []struct {
		name    string
		opts    Options
		wantErr bool
	}{
		{"default", Options{}, false},
		{"none", Options{Backend: BackendNone}, false},
		{"memory", Options{Backend: BackendMemory, Limit: 10}, false},
		{"file", Options{Backend: BackendFile, Path: filepath.Join(t.TempDir(), "j.jsonl")}, false},
		{"file without path", Options{Backend: BackendFile}, true},
		{"redis without addr", Options{Backend: BackendRedis}, true},
		{"mongo without uri", Options{Backend: BackendMongo}, true},
		{"unknown", Options{Backend: "etcd"}, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			j, err := Open(ctx, tt.opts)
			if (err != nil) != tt.wantErr {
				t.Fatalf("Open() error = %v, wantErr %v", err, tt.wantErr)
			}
			if err != nil {
				if !nerrors.Is(err, nerrors.ErrCodeInvalidConfig) {
					t.Errorf("code = %v, want INVALID_CONFIG", nerrors.GetCode(err))
				}
				return
			}
			_ = j.Close()
		})
	}
}

func TestRetryWithBackoff(t *testing.T) {
	old := RetryDelay
	RetryDelay = time.Millisecond
	defer func() { RetryDelay = old }()
	ctx := context.Background()

	t.Run("succeeds after transient failures", func(t *testing.T) {
		calls := 0
		err := RetryWithBackoff(ctx, func() error {
			calls++
			if calls < 3 {
				return Retryable(errors.New("timeout"))
			}
			return nil
		})
		if err != nil || calls != 3 {
			t.Errorf("err = %v, calls = %d", err, calls)
		}
	})

	t.Run("stops on permanent failure", func(t *testing.T) {
		calls := 0
		perm := errors.New("bad document")
		err := RetryWithBackoff(ctx, func() error {
			calls++
			return perm
		})
		if err != perm || calls != 1 {
			t.Errorf("err = %v, calls = %d", err, calls)
		}
	})

	t.Run("gives up after three attempts", func(t *testing.T) {
		calls := 0
		err := RetryWithBackoff(ctx, func() error {
			calls++
			return Retryable(errors.New("timeout"))
		})
		if !IsRetryable(err) || calls != 3 {
			t.Errorf("err = %v, calls = %d", err, calls)
		}
	})
}

func TestRetryable(t *testing.T) {
	if Retryable(nil) != nil {
		t.Error("Retryable(nil) should be nil")
	}
	base := errors.New("x")
	if !errors.Is(Retryable(base), base) {
		t.Error("Retryable should unwrap to its cause")
	}
	if IsRetryable(base) {
		t.Error("plain error should not be retryable")
	}
}
