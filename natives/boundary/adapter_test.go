package boundary

import (
	"bytes"
	"errors"
	"log/slog"
	"strings"
	"sync"
	"testing"

	"github.com/TheusHen/natives/natives/crypto"
	"github.com/TheusHen/natives/natives/handle"
)

func testKey() []byte {
	key := make([]byte, 16)
	for i := range key {
		key[i] = byte(0xa0 + i)
	}
	return key
}

// encryptOnce returns the ciphertext of msg under a fresh context.
func encryptOnce(t *testing.T, key, msg []byte) []byte {
	t.Helper()
	ctx, err := crypto.NewContext(key, crypto.Encrypt)
	if err != nil {
		t.Fatalf("NewContext: %v", err)
	}
	out := make([]byte, len(msg))
	if _, err := ctx.Process(out, msg); err != nil {
		t.Fatalf("Process: %v", err)
	}
	return out
}

func TestCreateDestroy(t *testing.T) {
	a := New()
	for _, encrypt := range []bool{true, false} {
		h, err := a.Create(testKey(), encrypt)
		if err != nil {
			t.Fatalf("Create(encrypt=%v): %v", encrypt, err)
		}
		if h == handle.Invalid {
			t.Fatalf("Create returned the invalid handle")
		}
		a.Destroy(h)
	}

	st := a.Stats()
	if st.Live != 0 || st.Created != 2 || st.Destroyed != 2 {
		t.Fatalf("unexpected stats %+v", st)
	}
}

func TestCreateInvalidKey(t *testing.T) {
	a := New()
	for _, n := range []int{0, 15, 17, 32} {
		h, err := a.Create(make([]byte, n), true)
		if h != handle.Invalid {
			t.Fatalf("len %d: expected invalid handle, got %#x", n, uint64(h))
		}
		if !errors.Is(err, ErrInvalidArgument) {
			t.Fatalf("len %d: expected ErrInvalidArgument, got %v", n, err)
		}
		if KindOf(err) != KindInvalidArgument {
			t.Fatalf("len %d: unexpected kind %v", n, KindOf(err))
		}
	}
	if st := a.Stats(); st.Live != 0 || st.Created != 0 {
		t.Fatalf("context leaked: %+v", st)
	}
}

func TestProcessRoundTrip(t *testing.T) {
	a := New()
	enc, _ := a.Create(testKey(), true)
	dec, _ := a.Create(testKey(), false)
	defer a.Destroy(enc)
	defer a.Destroy(dec)

	msg := []byte(strings.Repeat("the quick brown fox jumps over the lazy dog ", 40))
	ct := make([]byte, len(msg))
	for off := 0; off < len(msg); off += 7 {
		end := min(off+7, len(msg))
		if err := a.Process(enc, ct[off:end], msg[off:end]); err != nil {
			t.Fatalf("encrypt: %v", err)
		}
	}

	// Decrypt in place with different chunk boundaries.
	buf := append([]byte(nil), ct...)
	for off := 0; off < len(buf); off += 64 {
		end := min(off+64, len(buf))
		if err := a.Process(dec, buf[off:end], buf[off:end]); err != nil {
			t.Fatalf("decrypt: %v", err)
		}
	}
	if !bytes.Equal(buf, msg) {
		t.Fatalf("round trip mismatch")
	}
}

func TestProcessStaleHandle(t *testing.T) {
	a := New()
	h, _ := a.Create(testKey(), true)
	a.Destroy(h)

	dst := make([]byte, 4)
	if err := a.Process(h, dst, []byte{1, 2, 3, 4}); err != nil {
		t.Fatalf("lenient mode returned %v", err)
	}
	if !bytes.Equal(dst, make([]byte, 4)) {
		t.Fatalf("stale handle wrote output")
	}

	a.SetStrict(true)
	err := a.Process(h, dst, []byte{1, 2, 3, 4})
	if !errors.Is(err, ErrDegraded) || !errors.Is(err, handle.ErrStaleHandle) {
		t.Fatalf("strict mode: expected stale handle error, got %v", err)
	}
	if KindOf(err) != KindDegraded {
		t.Fatalf("unexpected kind %v", KindOf(err))
	}
}

func TestProcessStrictSurfacesEngineFailure(t *testing.T) {
	a := New(WithStrict(true))
	h, _ := a.Create(testKey(), true)
	defer a.Destroy(h)

	buf := make([]byte, 32)
	err := a.Process(h, buf[1:17], buf[:16])
	if !errors.Is(err, ErrDegraded) || !errors.Is(err, crypto.ErrInvalidOverlap) {
		t.Fatalf("expected degraded overlap error, got %v", err)
	}
	if st := a.Stats(); st.Degraded != 1 {
		t.Fatalf("expected 1 degraded, got %+v", st)
	}

	a.SetStrict(false)
	if err := a.Process(h, buf[1:17], buf[:16]); err != nil {
		t.Fatalf("lenient mode returned %v", err)
	}
}

func TestCheckedVariantsIgnoreLenientMode(t *testing.T) {
	a := New()
	h, _ := a.Create(testKey(), true)
	defer a.Destroy(h)

	if err := a.ProcessChecked(h, make([]byte, 1), nil); !errors.Is(err, ErrDegraded) {
		t.Fatalf("ProcessChecked: expected ErrDegraded, got %v", err)
	}
	if err := a.ProcessChecked(h, make([]byte, 3), []byte{1, 2, 3}); err != nil {
		t.Fatalf("ProcessChecked valid call: %v", err)
	}
	if a.Strict() {
		t.Fatalf("checked calls must not flip the adapter mode")
	}
}

func TestProcessDoesNotAllocate(t *testing.T) {
	a := New()
	h, _ := a.Create(testKey(), true)
	defer a.Destroy(h)

	src := make([]byte, 1500)
	dst := make([]byte, 1500)

	if n := testing.AllocsPerRun(100, func() {
		_ = a.Process(h, dst, src)
	}); n != 0 {
		t.Fatalf("valid Process allocated %v times per call", n)
	}
	if n := testing.AllocsPerRun(100, func() {
		_ = a.Process(h, dst[:1], src)
	}); n != 0 {
		t.Fatalf("rejected Process allocated %v times per call", n)
	}
	if n := testing.AllocsPerRun(100, func() {
		_ = a.Process(handle.Invalid, dst, src)
	}); n != 0 {
		t.Fatalf("zero-handle Process allocated %v times per call", n)
	}
}

func TestDestroyTwiceAndZero(t *testing.T) {
	a := New()
	a.Destroy(handle.Invalid)

	h, _ := a.Create(testKey(), false)
	a.Destroy(h)
	a.Destroy(h)

	st := a.Stats()
	if st.Destroyed != 1 || st.Rejected != 1 || st.Live != 0 {
		t.Fatalf("unexpected stats %+v", st)
	}
}

func TestDestroyAll(t *testing.T) {
	a := New()
	for i := 0; i < 5; i++ {
		if _, err := a.Create(testKey(), i%2 == 0); err != nil {
			t.Fatalf("Create: %v", err)
		}
	}
	if n := a.DestroyAll(); n != 5 {
		t.Fatalf("DestroyAll: %d", n)
	}
	if st := a.Stats(); st.Live != 0 || st.Destroyed != 5 {
		t.Fatalf("unexpected stats %+v", st)
	}
}

func TestLoggerReceivesDegradation(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(slog.NewTextHandler(&buf, &slog.HandlerOptions{Level: slog.LevelDebug}))
	a := New(WithLogger(logger))

	_ = a.Process(handle.Invalid, make([]byte, 1), make([]byte, 1))
	_, _ = a.Create(make([]byte, 3), true)

	out := buf.String()
	if !strings.Contains(out, "cipher process degraded") {
		t.Fatalf("missing degraded log: %s", out)
	}
	if !strings.Contains(out, "cipher context rejected") {
		t.Fatalf("missing rejected log: %s", out)
	}
}

func TestConcurrentDistinctContexts(t *testing.T) {
	a := New()
	msg := bytes.Repeat([]byte("concurrent"), 100)
	want := encryptOnce(t, testKey(), msg)

	var wg sync.WaitGroup
	for g := 0; g < 8; g++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			h, err := a.Create(testKey(), true)
			if err != nil {
				t.Errorf("Create: %v", err)
				return
			}
			defer a.Destroy(h)

			out := make([]byte, len(msg))
			for off := 0; off < len(msg); off += 13 {
				end := min(off+13, len(msg))
				_ = a.Process(h, out[off:end], msg[off:end])
			}
			if !bytes.Equal(out, want) {
				t.Errorf("goroutine output mismatch")
			}
		}()
	}
	wg.Wait()
}

func TestKindNames(t *testing.T) {
	cases := map[Kind][2]string{
		KindInvalidArgument:        {"InvalidArgument", "java/lang/IllegalArgumentException"},
		KindSecurityInitialization: {"SecurityInitializationFailure", "java/security/GeneralSecurityException"},
		KindDegraded:               {"SilentDegradation", "java/lang/IllegalStateException"},
		KindNone:                   {"None", ""},
	}
	for k, want := range cases {
		if k.String() != want[0] || k.HostException() != want[1] {
			t.Fatalf("kind %d: got %q/%q", k, k.String(), k.HostException())
		}
	}
	if KindOf(nil) != KindNone {
		t.Fatalf("KindOf(nil) != KindNone")
	}
	if KindOf(ErrSecurityInitialization) != KindSecurityInitialization {
		t.Fatalf("KindOf(ErrSecurityInitialization) mismatch")
	}
}
