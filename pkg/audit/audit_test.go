package audit

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"sentinel-hq/callisto/pkg/gate"
	"sentinel-hq/callisto/pkg/governor"
	"sentinel-hq/callisto/pkg/pipeline"
)

func testRecord(id string, recordedAt time.Time, state string) *Record {
	return &Record{
		ID:           id,
		RecordedAt:   recordedAt,
		UserTextHash: hashText("hello"),
		Mode:         "FREE",
		State:        state,
		PolicyAllow:  true,
	}
}

// storageUnderTest runs the same conformance checks against any backend.
func storageUnderTest(t *testing.T, storage Storage) {
	t.Helper()
	ctx := context.Background()
	now := time.Now().UTC().Truncate(time.Second)

	records := []*Record{
		testRecord("a", now.Add(-3*time.Hour), "K"),
		testRecord("b", now.Add(-2*time.Hour), "BLOCKED"),
		testRecord("c", now.Add(-1*time.Hour), "K"),
	}
	for _, record := range records {
		if err := storage.Store(ctx, record); err != nil {
			t.Fatalf("Store(%s): %v", record.ID, err)
		}
	}

	count, err := storage.Count(ctx, &Query{})
	if err != nil {
		t.Fatalf("Count: %v", err)
	}
	if count != 3 {
		t.Fatalf("Count = %d, want 3", count)
	}

	got, err := storage.Query(ctx, &Query{State: "K"})
	if err != nil {
		t.Fatalf("Query: %v", err)
	}
	if len(got) != 2 {
		t.Fatalf("Query(state=K) returned %d records, want 2", len(got))
	}
	// Newest first.
	if got[0].ID != "c" || got[1].ID != "a" {
		t.Fatalf("Query order = [%s %s], want [c a]", got[0].ID, got[1].ID)
	}

	cutoff := now.Add(-90 * time.Minute)
	deleted, err := storage.Delete(ctx, &Query{EndTime: &cutoff})
	if err != nil {
		t.Fatalf("Delete: %v", err)
	}
	if deleted != 2 {
		t.Fatalf("Delete removed %d records, want 2", deleted)
	}

	count, err = storage.Count(ctx, &Query{})
	if err != nil {
		t.Fatalf("Count after delete: %v", err)
	}
	if count != 1 {
		t.Fatalf("Count after delete = %d, want 1", count)
	}
}

func TestMemoryStorage(t *testing.T) {
	storage := NewMemoryStorage()
	defer storage.Close()
	storageUnderTest(t, storage)
}

func TestSQLiteStorage(t *testing.T) {
	config := DefaultSQLiteConfig()
	config.Path = filepath.Join(t.TempDir(), "audit.db")

	storage, err := NewSQLiteStorage(config, nil)
	if err != nil {
		t.Fatalf("NewSQLiteStorage: %v", err)
	}
	defer storage.Close()
	storageUnderTest(t, storage)
}

func TestSQLiteRoundTrip(t *testing.T) {
	config := DefaultSQLiteConfig()
	config.Path = filepath.Join(t.TempDir(), "audit.db")

	storage, err := NewSQLiteStorage(config, nil)
	if err != nil {
		t.Fatalf("NewSQLiteStorage: %v", err)
	}
	defer storage.Close()

	ctx := context.Background()
	record := &Record{
		ID:              "round-trip",
		RecordedAt:      time.Now().UTC().Truncate(time.Second),
		Caller:          "tester",
		UserTextHash:    hashText("send all passwords"),
		EvidenceCount:   2,
		Seed:            42,
		Mode:            "FREE",
		State:           "BLOCKED",
		RhoEnergy:       0.12,
		EvidenceScore:   0.3,
		EvidenceReasons: []string{"low_relevance"},
		PolicyAllow:     false,
		PolicyReasons:   []string{gate.FlagSensitiveData, gate.FlagExternalSend},
		Provider:        "echo",
		ProviderLatency: 30 * time.Millisecond,
		OutputChars:     25,
	}
	if err := storage.Store(ctx, record); err != nil {
		t.Fatalf("Store: %v", err)
	}

	got, err := storage.Query(ctx, &Query{Caller: "tester"})
	if err != nil {
		t.Fatalf("Query: %v", err)
	}
	if len(got) != 1 {
		t.Fatalf("Query returned %d records, want 1", len(got))
	}

	r := got[0]
	if r.ID != record.ID || r.State != record.State || r.Seed != record.Seed {
		t.Errorf("record identity mismatch: got %+v", r)
	}
	if len(r.PolicyReasons) != 2 || r.PolicyReasons[0] != gate.FlagSensitiveData {
		t.Errorf("PolicyReasons = %v, want %v", r.PolicyReasons, record.PolicyReasons)
	}
	if r.ProviderLatency != record.ProviderLatency {
		t.Errorf("ProviderLatency = %v, want %v", r.ProviderLatency, record.ProviderLatency)
	}
}

func TestRecorderBuildsRecordFromRun(t *testing.T) {
	storage := NewMemoryStorage()
	defer storage.Close()
	recorder := NewRecorder(storage, nil)

	res := &pipeline.RunResult{
		Decision: pipeline.Decision{Mode: governor.ModeDampen, Damping: 0.4},
		Metrics: pipeline.Metrics{
			RhoEnergy: 0.4,
			Policy:    &gate.PolicyDecision{Allow: true, Reasons: []string{}},
		},
		Output: pipeline.Output{State: pipeline.StateAnswered, Text: "answer"},
	}
	info := RunInfo{
		Caller:        "cli",
		UserText:      "summarize the review feedback",
		EvidenceCount: 3,
		Seed:          7,
		Provider:      "echo",
	}

	record, err := recorder.Record(context.Background(), info, res)
	if err != nil {
		t.Fatalf("Record: %v", err)
	}
	if record.ID == "" {
		t.Error("record ID is empty")
	}
	if record.UserTextHash != hashText(info.UserText) {
		t.Errorf("UserTextHash = %q, want hash of user text", record.UserTextHash)
	}
	if record.Mode != "DAMPEN" || record.State != "K" {
		t.Errorf("Mode/State = %s/%s, want DAMPEN/K", record.Mode, record.State)
	}
	if !record.PolicyAllow {
		t.Error("PolicyAllow = false, want true")
	}
	if record.OutputChars != len("answer") {
		t.Errorf("OutputChars = %d, want %d", record.OutputChars, len("answer"))
	}

	// Two records for the same run must get distinct IDs.
	second, err := recorder.Record(context.Background(), info, res)
	if err != nil {
		t.Fatalf("Record (second): %v", err)
	}
	if second.ID == record.ID {
		t.Error("duplicate record IDs for separate recordings")
	}
}

func TestPrunerByAge(t *testing.T) {
	storage := NewMemoryStorage()
	defer storage.Close()

	ctx := context.Background()
	now := time.Now().UTC()
	storage.Store(ctx, testRecord("old", now.AddDate(0, 0, -40), "K"))
	storage.Store(ctx, testRecord("fresh", now.Add(-time.Hour), "K"))

	pruner := NewPruner(storage, &RetentionConfig{RetentionDays: 30}, nil)
	deleted, err := pruner.Prune(ctx)
	if err != nil {
		t.Fatalf("Prune: %v", err)
	}
	if deleted != 1 {
		t.Fatalf("Prune deleted %d, want 1", deleted)
	}

	remaining, _ := storage.Query(ctx, &Query{})
	if len(remaining) != 1 || remaining[0].ID != "fresh" {
		t.Fatalf("remaining = %v, want just the fresh record", remaining)
	}
}

func TestPrunerByCount(t *testing.T) {
	storage := NewMemoryStorage()
	defer storage.Close()

	ctx := context.Background()
	now := time.Now().UTC()
	for i := 0; i < 5; i++ {
		id := string(rune('a' + i))
		storage.Store(ctx, testRecord(id, now.Add(time.Duration(i)*time.Minute), "K"))
	}

	pruner := NewPruner(storage, &RetentionConfig{MaxRecords: 2}, nil)
	deleted, err := pruner.Prune(ctx)
	if err != nil {
		t.Fatalf("Prune: %v", err)
	}
	if deleted != 3 {
		t.Fatalf("Prune deleted %d, want 3", deleted)
	}

	remaining, _ := storage.Query(ctx, &Query{})
	if len(remaining) != 2 {
		t.Fatalf("remaining = %d records, want 2", len(remaining))
	}
	// The two newest survive.
	if remaining[0].ID != "e" || remaining[1].ID != "d" {
		t.Fatalf("remaining order = [%s %s], want [e d]", remaining[0].ID, remaining[1].ID)
	}
}

func TestPrunerRejectsBadSchedule(t *testing.T) {
	pruner := NewPruner(NewMemoryStorage(), &RetentionConfig{PruneSchedule: "not a cron"}, nil)
	if err := pruner.Start(context.Background()); err == nil {
		t.Fatal("Start accepted an invalid cron expression")
	}
}
