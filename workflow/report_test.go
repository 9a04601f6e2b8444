package workflow

import (
	"errors"
	"fmt"
	"strings"
	"testing"
)

func TestReportSummary(t *testing.T) {
	report := &Report{Total: 3}
	report.recordSuccess("/out/a.txt", "/out/a.mp3")
	report.recordSuccess()
	report.recordFailure("rec-3", "broken", errors.New("boom"))

	summary := report.Summary()
	if !strings.Contains(summary, "processed 3 recording(s): 2 succeeded, 1 failed") {
		t.Errorf("Summary() = %q, missing totals line", summary)
	}
	if !strings.Contains(summary, "broken (rec-3): boom") {
		t.Errorf("Summary() = %q, missing failure detail", summary)
	}
	if len(report.Artifacts) != 2 {
		t.Errorf("Artifacts = %v, want 2 paths", report.Artifacts)
	}
}

func TestReportSummaryCapsErrorList(t *testing.T) {
	report := &Report{Total: 8}
	for i := 0; i < 8; i++ {
		report.recordFailure(fmt.Sprintf("rec-%d", i), fmt.Sprintf("file-%d", i), errors.New("boom"))
	}

	summary := report.Summary()
	if !strings.Contains(summary, "8 failed") {
		t.Errorf("Summary() = %q, totals must count every failure", summary)
	}
	if !strings.Contains(summary, "... and 3 more") {
		t.Errorf("Summary() = %q, want overflow marker for errors past %d", summary, maxDisplayedErrors)
	}
	if got := strings.Count(summary, "boom"); got != maxDisplayedErrors {
		t.Errorf("Summary() shows %d errors, want %d", got, maxDisplayedErrors)
	}
}
