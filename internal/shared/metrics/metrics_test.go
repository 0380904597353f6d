package metrics

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
)

func TestObserveRequestDefaultsKind(t *testing.T) {
	before := testutil.ToFloat64(gatewayRequests.WithLabelValues("GET", "/api/mypage", "ok"))
	ObserveRequest("GET", "/api/mypage", "", 120*time.Millisecond)
	after := testutil.ToFloat64(gatewayRequests.WithLabelValues("GET", "/api/mypage", "ok"))
	if after-before != 1 {
		t.Fatalf("expected counter to grow by 1, got %v", after-before)
	}
}

func TestWriteTextfile(t *testing.T) {
	IncSignalLookup("hit")
	path := filepath.Join(t.TempDir(), "fitgap.prom")
	if err := WriteTextfile(path); err != nil {
		t.Fatalf("WriteTextfile: %v", err)
	}
	raw, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	if !strings.Contains(string(raw), "fitgap_signal_lookups_total") {
		t.Fatalf("expected signal counter in textfile, got:\n%s", raw)
	}
}

func TestWriteTextfileEmptyPath(t *testing.T) {
	if err := WriteTextfile(""); err != nil {
		t.Fatalf("expected no-op, got %v", err)
	}
}
