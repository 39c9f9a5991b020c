package order

import "fmt"

func batchKey(n int) string {
	return fmt.Sprintf("update-%d", n)
}

// RecordBatch registers a status for a batch key. The map is updated in
// place, never replaced, except by the full-ticket override below.
func (o *Order) RecordBatch(key, status string) {
	if o.BatchStatus == nil {
		o.BatchStatus = make(map[string]string)
	}
	o.BatchStatus[key] = status
}

// SetBatchStatus applies a status to the given batch keys. Every key must
// already exist. If all batches converge to one status afterwards, the
// order status is synchronized to it. Returns true when the order status
// changed.
func (o *Order) SetBatchStatus(batchIDs []string, status string) (bool, error) {
	for _, id := range batchIDs {
		if _, ok := o.BatchStatus[id]; !ok {
			return false, notFoundf("unknown batch %q", id)
		}
	}
	for _, id := range batchIDs {
		o.BatchStatus[id] = status
	}

	if converged, s := o.batchesConverged(); converged && s != o.Status {
		o.Status = s
		return true, nil
	}
	return false, nil
}

// OverrideStatus is the bulk status-set with no batch target: it collapses
// the batch map to a single "all" key and sets the order status directly.
func (o *Order) OverrideStatus(status string) error {
	if err := o.ApplyOrderStatus(status); err != nil {
		return err
	}
	o.BatchStatus = map[string]string{BatchAll: status}
	return nil
}

func (o *Order) batchesConverged() (bool, string) {
	s := ""
	for _, v := range o.BatchStatus {
		if s == "" {
			s = v
			continue
		}
		if v != s {
			return false, ""
		}
	}
	return s != "", s
}
