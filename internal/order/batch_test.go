package order

import (
	"errors"
	"testing"
)

func TestNextBatchKey(t *testing.T) {
	o := NewOrder()

	if got := o.NextBatchKey(); got != "update-1" {
		t.Errorf("NextBatchKey() = %q, want %q", got, "update-1")
	}
	if got := o.NextBatchKey(); got != "update-2" {
		t.Errorf("NextBatchKey() = %q, want %q", got, "update-2")
	}
	if o.UpdateCount != 2 {
		t.Errorf("UpdateCount = %d, want 2", o.UpdateCount)
	}
}

func TestSetBatchStatusUnknownBatch(t *testing.T) {
	o := NewOrder()

	_, err := o.SetBatchStatus([]string{"update-7"}, StatusPreparing)
	if !errors.Is(err, ErrNotFound) {
		t.Errorf("SetBatchStatus() error = %v, want ErrNotFound", err)
	}
	if o.BatchStatus[BatchOriginal] != StatusPending {
		t.Error("rejected call must not mutate the batch map")
	}
}

func TestSetBatchStatusPartialNoConvergence(t *testing.T) {
	o := NewOrder()
	o.RecordBatch(o.NextBatchKey(), StatusPending)

	changed, err := o.SetBatchStatus([]string{BatchOriginal}, StatusReady)
	if err != nil {
		t.Fatalf("SetBatchStatus() unexpected error: %v", err)
	}
	if changed {
		t.Error("order status should not change while batches diverge")
	}
	if o.Status != StatusPending {
		t.Errorf("status = %q, want %q", o.Status, StatusPending)
	}
	if o.BatchStatus[BatchOriginal] != StatusReady {
		t.Errorf("batch status = %q, want %q", o.BatchStatus[BatchOriginal], StatusReady)
	}
}

func TestSetBatchStatusConvergenceSyncsOrder(t *testing.T) {
	o := NewOrder()
	o.RecordBatch(o.NextBatchKey(), StatusPending)

	if _, err := o.SetBatchStatus([]string{BatchOriginal}, StatusReady); err != nil {
		t.Fatalf("SetBatchStatus() unexpected error: %v", err)
	}
	changed, err := o.SetBatchStatus([]string{"update-1"}, StatusReady)
	if err != nil {
		t.Fatalf("SetBatchStatus() unexpected error: %v", err)
	}
	if !changed {
		t.Error("order status should follow converged batches")
	}
	if o.Status != StatusReady {
		t.Errorf("status = %q, want %q", o.Status, StatusReady)
	}
}

func TestOverrideStatusCollapsesBatchMap(t *testing.T) {
	o := NewOrder()
	o.RecordBatch(o.NextBatchKey(), StatusPending)
	o.RecordBatch(o.NextBatchKey(), StatusPending)

	if err := o.OverrideStatus(StatusServed); err != nil {
		t.Fatalf("OverrideStatus() unexpected error: %v", err)
	}

	if o.Status != StatusServed {
		t.Errorf("status = %q, want %q", o.Status, StatusServed)
	}
	if len(o.BatchStatus) != 1 || o.BatchStatus[BatchAll] != StatusServed {
		t.Errorf("batch map = %v, want single %q entry", o.BatchStatus, BatchAll)
	}
}

func TestOverrideStatusRejectsInvalidMove(t *testing.T) {
	o := NewOrder()
	o.Status = StatusPreparing
	o.RecordBatch(o.NextBatchKey(), StatusPending)

	err := o.OverrideStatus(StatusCancelled)
	if !errors.Is(err, ErrConflict) {
		t.Fatalf("OverrideStatus() error = %v, want ErrConflict", err)
	}
	if _, ok := o.BatchStatus[BatchAll]; ok {
		t.Error("rejected override must not collapse the batch map")
	}
}
