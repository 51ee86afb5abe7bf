package debug

import (
	"bytes"
	"strings"
	"testing"
	"time"
)

func TestLoggingGatedByEnabled(t *testing.T) {
	var buf bytes.Buffer
	prev := enabled
	t.Cleanup(func() { SetEnabled(prev) })

	SetOutput(&buf)
	SetEnabled(false)
	Log("hidden %d", 1)
	LogIf(true, "hidden too")
	if buf.Len() != 0 {
		t.Fatalf("disabled logger wrote %q", buf.String())
	}

	SetEnabled(true)
	Log("visible %d", 2)
	LogIf(false, "skipped")
	LogTiming("filter", 3*time.Millisecond)
	LogEnterExit("refresh")()
	Dump("sel", struct{ N int }{4})

	out := buf.String()
	for _, want := range []string{"[CASEDASH_DEBUG]", "visible 2", "filter took 3ms", "-> refresh", "<- refresh", "sel: struct { N int } = {N:4}"} {
		if !strings.Contains(out, want) {
			t.Errorf("output missing %q:\n%s", want, out)
		}
	}
	if strings.Contains(out, "skipped") {
		t.Error("LogIf(false) should not write")
	}
}
