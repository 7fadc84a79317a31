package pathfind

import "container/heap"

// entry is a frontier item. seq breaks priority ties in insertion order.
type entry[N comparable, C any] struct {
	node     N
	priority C
	seq      uint64
	index    int
}

// queue is a min-heap over entries with decrease-key support.
type queue[N comparable, C any] struct {
	items []*entry[N, C]
	index map[N]*entry[N, C]
	less  func(a, b C) bool
	seq   uint64
}

func (q *queue[N, C]) Len() int { return len(q.items) }

func (q *queue[N, C]) Less(i, j int) bool {
	a, b := q.items[i], q.items[j]
	if q.less(a.priority, b.priority) {
		return true
	}
	if q.less(b.priority, a.priority) {
		return false
	}
	return a.seq < b.seq
}

func (q *queue[N, C]) Swap(i, j int) {
	q.items[i], q.items[j] = q.items[j], q.items[i]
	q.items[i].index = i
	q.items[j].index = j
}

func (q *queue[N, C]) Push(x any) {
	e := x.(*entry[N, C])
	e.index = len(q.items)
	q.items = append(q.items, e)
}

func (q *queue[N, C]) Pop() any {
	old := q.items
	n := len(old)
	e := old[n-1]
	old[n-1] = nil
	q.items = old[:n-1]
	e.index = -1
	if q.index[e.node] == e {
		delete(q.index, e.node)
	}
	return e
}

func (q *queue[N, C]) push(node N, priority C) {
	q.seq++
	e := &entry[N, C]{node: node, priority: priority, seq: q.seq}
	q.index[node] = e
	heap.Push(q, e)
}

// update lowers the priority of a queued node, or queues it.
func (q *queue[N, C]) update(node N, priority C) {
	if e, ok := q.index[node]; ok && e.index >= 0 {
		e.priority = priority
		heap.Fix(q, e.index)
		return
	}
	q.push(node, priority)
}
