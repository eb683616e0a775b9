package session

import (
	"container/heap"
	"sync"
	"time"

	"github.com/go-smsc/emi-smsc/lib/protocol"
)

// scheduledReport is a status report waiting for its due time.
type scheduledReport struct {
	due time.Time
	seq uint64
	req protocol.SRRequest
}

// reportHeap orders reports by due time, then by insertion.
type reportHeap []*scheduledReport

func (h reportHeap) Len() int { return len(h) }

func (h reportHeap) Less(i, j int) bool {
	if h[i].due.Equal(h[j].due) {
		return h[i].seq < h[j].seq
	}
	return h[i].due.Before(h[j].due)
}

func (h reportHeap) Swap(i, j int) { h[i], h[j] = h[j], h[i] }

func (h *reportHeap) Push(x any) { *h = append(*h, x.(*scheduledReport)) }

func (h *reportHeap) Pop() any {
	old := *h
	n := len(old)
	item := old[n-1]
	old[n-1] = nil
	*h = old[:n-1]
	return item
}

// reportQueue is the delayed notification queue of one session.
type reportQueue struct {
	mu    sync.Mutex
	items reportHeap
	seq   uint64
}

func newReportQueue() *reportQueue {
	return &reportQueue{}
}

// Push schedules req for due.
func (q *reportQueue) Push(due time.Time, req protocol.SRRequest) {
	q.mu.Lock()
	defer q.mu.Unlock()
	q.seq++
	heap.Push(&q.items, &scheduledReport{due: due, seq: q.seq, req: req})
}

// PopDue removes and returns every report due at or before now, in order.
func (q *reportQueue) PopDue(now time.Time) []protocol.SRRequest {
	q.mu.Lock()
	defer q.mu.Unlock()

	var due []protocol.SRRequest
	for len(q.items) > 0 && !q.items[0].due.After(now) {
		due = append(due, heap.Pop(&q.items).(*scheduledReport).req)
	}
	return due
}

// NextDue returns the earliest due time.
func (q *reportQueue) NextDue() (time.Time, bool) {
	q.mu.Lock()
	defer q.mu.Unlock()
	if len(q.items) == 0 {
		return time.Time{}, false
	}
	return q.items[0].due, true
}

// Len returns the number of pending reports.
func (q *reportQueue) Len() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return len(q.items)
}
