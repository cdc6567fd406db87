package hermes

import "testing"

func TestSnapshotSubjects(t *testing.T) {
	if got := SubjectSnapshotPublished("2026-03"); got != "chefrank.snapshot.2026-03.published" {
		t.Errorf("unexpected subject %q", got)
	}
	if got := SubjectSnapshotFailed("2026-03"); got != "chefrank.snapshot.2026-03.failed" {
		t.Errorf("unexpected subject %q", got)
	}
}

func TestStreamExcludesInboundRequests(t *testing.T) {
	for _, s := range StreamSubjects {
		switch s {
		case SubjectRecalculateRequest, "chefrank.>", "chefrank.rankings.>", "chefrank.rankings.*":
			t.Errorf("stream subject %q captures inbound requests", s)
		}
	}
}
