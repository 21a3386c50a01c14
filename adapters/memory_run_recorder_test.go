package adapters

import (
	"context"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/shelenderrkumar/healthcare-translation/domain/entities"
)

func doneRecord(entry entities.RunEntry) *entities.RunRecord {
	record := entities.NewRunRecord(entry, time.Now())
	record.State = entities.StateDone
	return record
}

func TestMemoryRunRecorder_RecordAndRecent(t *testing.T) {
	ctx := context.Background()
	recorder := NewMemoryRunRecorder(10)

	for i := 0; i < 3; i++ {
		record := doneRecord(entities.RunEntryPipeline)
		record.ID = fmt.Sprintf("run-%d", i)
		if err := recorder.Record(ctx, record); err != nil {
			t.Fatalf("Failed to record: %v", err)
		}
	}

	recent, err := recorder.Recent(ctx, 0)
	if err != nil {
		t.Fatalf("Failed to list: %v", err)
	}
	if len(recent) != 3 {
		t.Fatalf("Expected 3 records, got %d", len(recent))
	}
	if recent[0].ID != "run-2" || recent[2].ID != "run-0" {
		t.Errorf("Expected newest first, got %s..%s", recent[0].ID, recent[2].ID)
	}

	limited, _ := recorder.Recent(ctx, 1)
	if len(limited) != 1 || limited[0].ID != "run-2" {
		t.Errorf("Expected only the newest record, got %v", limited)
	}
}

func TestMemoryRunRecorder_Wraps(t *testing.T) {
	ctx := context.Background()
	recorder := NewMemoryRunRecorder(2)

	for i := 0; i < 5; i++ {
		record := doneRecord(entities.RunEntrySpeak)
		record.ID = fmt.Sprintf("run-%d", i)
		recorder.Record(ctx, record)
	}

	recent, _ := recorder.Recent(ctx, 10)
	if len(recent) != 2 {
		t.Fatalf("Expected capacity-bound 2 records, got %d", len(recent))
	}
	if recent[0].ID != "run-4" || recent[1].ID != "run-3" {
		t.Errorf("Expected the two newest records, got %s, %s", recent[0].ID, recent[1].ID)
	}
}

func TestMemoryRunRecorder_Validation(t *testing.T) {
	ctx := context.Background()
	recorder := NewMemoryRunRecorder(0)

	if err := recorder.Record(ctx, nil); err == nil {
		t.Error("Expected error for nil record")
	}

	pending := entities.NewRunRecord(entities.RunEntryPipeline, time.Now())
	if err := recorder.Record(ctx, pending); err == nil {
		t.Error("Expected error for non-terminal record")
	}

	record := doneRecord(entities.RunEntryPipeline)
	if err := recorder.Record(ctx, record); err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	if record.ID == "" {
		t.Error("Expected ID to be generated")
	}
}

func TestMemoryRunRecorder_ConcurrentRecord(t *testing.T) {
	ctx := context.Background()
	recorder := NewMemoryRunRecorder(100)

	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			recorder.Record(ctx, doneRecord(entities.RunEntryPipeline))
		}()
	}
	wg.Wait()

	recent, _ := recorder.Recent(ctx, 0)
	if len(recent) != 50 {
		t.Errorf("Expected 50 records, got %d", len(recent))
	}
}
