package hermes

const (
	// Inbound: collectors publish after ingesting new records.
	SubjectRecalculateRequest = "chefrank.rankings.recalculate"

	SubjectRankingsRecalculated = "chefrank.rankings.recalculated"
	SubjectWeightsUpdated       = "chefrank.weights.updated"

	StreamName   = "CHEFRANK_EVENTS"
	StreamMaxAge = "2160h" // 90 days
)

// StreamSubjects are retained in JetStream. The inbound request subject is
// deliberately excluded so replays never trigger batches.
var StreamSubjects = []string{
	SubjectRankingsRecalculated,
	SubjectWeightsUpdated,
	"chefrank.snapshot.>",
}

func SubjectSnapshotPublished(month string) string {
	return "chefrank.snapshot." + month + ".published"
}

func SubjectSnapshotFailed(month string) string {
	return "chefrank.snapshot." + month + ".failed"
}
