package cache

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
)

func TestRecorder_CapturesSuccess(t *testing.T) {
	dst := httptest.NewRecorder()
	rec := newRecorder(dst, DefaultBodyLimit, false)

	rec.Header().Set("Content-Type", "text/plain")
	rec.WriteHeader(http.StatusCreated)
	if _, err := rec.Write([]byte("payload")); err != nil {
		t.Fatalf("write failed: %v", err)
	}

	if !rec.success() || rec.streamed() {
		t.Fatal("2xx output should be captured, not streamed")
	}
	if dst.Body.Len() != 0 {
		t.Error("captured output must not reach the client yet")
	}

	value := rec.snapshot(false)
	if value.StatusCode != http.StatusCreated {
		t.Errorf("unexpected status %d", value.StatusCode)
	}
	if string(value.Body) != "payload" {
		t.Errorf("unexpected body %q", value.Body)
	}
	if value.Header.Get("Content-Type") != "text/plain" {
		t.Errorf("header not captured")
	}
	if !value.CreatedAt.IsZero() {
		t.Error("timestamp must be zero without annotation")
	}
	if rec.snapshot(true).CreatedAt.IsZero() {
		t.Error("timestamp must be set with annotation")
	}
}

func TestRecorder_ImplicitOK(t *testing.T) {
	rec := newRecorder(httptest.NewRecorder(), DefaultBodyLimit, false)
	if _, err := rec.Write([]byte("implicit")); err != nil {
		t.Fatalf("write failed: %v", err)
	}
	if rec.status != http.StatusOK || !rec.success() {
		t.Errorf("writing without WriteHeader must imply 200, got %d", rec.status)
	}
}

func TestRecorder_FinalizeEmptyHandler(t *testing.T) {
	rec := newRecorder(httptest.NewRecorder(), DefaultBodyLimit, false)
	rec.finalize()
	if rec.status != http.StatusOK || rec.mode != modeCapture {
		t.Errorf("a silent handler must settle as an empty 200")
	}
	if len(rec.snapshot(false).Body) != 0 {
		t.Error("expected empty body")
	}
}

func TestRecorder_Overflow(t *testing.T) {
	rec := newRecorder(httptest.NewRecorder(), 8, false)
	if _, err := rec.Write([]byte("0123")); err != nil {
		t.Fatalf("write failed: %v", err)
	}
	n, err := rec.Write([]byte("456789"))
	if err != nil || n != 6 {
		t.Fatalf("overflowing write must report full consumption, got (%d, %v)", n, err)
	}
	if !rec.overflow {
		t.Fatal("expected overflow past the limit")
	}
	if rec.body.Len() != 0 {
		t.Error("overflowed buffer should be released")
	}
}

func TestRecorder_ExactLimitIsNotOverflow(t *testing.T) {
	rec := newRecorder(httptest.NewRecorder(), 8, false)
	if _, err := rec.Write([]byte("01234567")); err != nil {
		t.Fatalf("write failed: %v", err)
	}
	if rec.overflow {
		t.Error("a body exactly at the limit must be accepted")
	}
}

func TestRecorder_StreamsFailures(t *testing.T) {
	dst := httptest.NewRecorder()
	rec := newRecorder(dst, 4, false)

	rec.Header().Set("Content-Type", "text/plain")
	rec.WriteHeader(http.StatusBadGateway)
	_, _ = rec.Write([]byte(strings.Repeat("e", 32)))
	rec.Flush()

	if !rec.streamed() {
		t.Fatal("non-2xx output should stream through")
	}
	if dst.Code != http.StatusBadGateway {
		t.Errorf("status not forwarded, got %d", dst.Code)
	}
	if dst.Body.Len() != 32 {
		t.Errorf("failure body must not be limited, got %d bytes", dst.Body.Len())
	}
	if dst.Header().Get("Content-Type") != "text/plain" {
		t.Error("headers not forwarded")
	}
	if !dst.Flushed {
		t.Error("flush not forwarded while streaming")
	}
}

func TestRecorder_DiscardsFailuresWhenDropping(t *testing.T) {
	dst := httptest.NewRecorder()
	rec := newRecorder(dst, DefaultBodyLimit, true)

	rec.WriteHeader(http.StatusInternalServerError)
	n, err := rec.Write([]byte("broken"))
	if err != nil || n != 6 {
		t.Fatalf("discarded write must report full consumption, got (%d, %v)", n, err)
	}

	if rec.streamed() {
		t.Error("dropped output must not stream")
	}
	if dst.Body.Len() != 0 || dst.Code != http.StatusOK {
		t.Error("dropped output must not reach the client")
	}
}

func TestRecorder_ModeIsFixedAtFirstWriteHeader(t *testing.T) {
	dst := httptest.NewRecorder()
	rec := newRecorder(dst, DefaultBodyLimit, false)

	rec.WriteHeader(http.StatusOK)
	rec.WriteHeader(http.StatusInternalServerError)
	if rec.status != http.StatusOK || rec.mode != modeCapture {
		t.Error("later WriteHeader calls must be ignored")
	}
}

func TestIsSuccess(t *testing.T) {
	tests := []struct {
		status int
		want   bool
	}{
		{199, false},
		{200, true},
		{204, true},
		{299, true},
		{300, false},
		{301, false},
		{404, false},
		{500, false},
	}
	for _, tt := range tests {
		if got := isSuccess(tt.status); got != tt.want {
			t.Errorf("isSuccess(%d) = %v, want %v", tt.status, got, tt.want)
		}
	}
}
