package geometry

// TextureQueue is the ordered set of catalog ids a scene uses.
type TextureQueue struct {
	ids  []int
	seen map[int]struct{}
}

// NewTextureQueue creates an empty queue.
func NewTextureQueue() *TextureQueue {
	return &TextureQueue{seen: make(map[int]struct{})}
}

// Add records id; repeated ids keep their first position.
func (q *TextureQueue) Add(id int) {
	if _, ok := q.seen[id]; ok {
		return
	}
	q.seen[id] = struct{}{}
	q.ids = append(q.ids, id)
}

// Contains reports whether id was added.
func (q *TextureQueue) Contains(id int) bool {
	_, ok := q.seen[id]
	return ok
}

// IDs returns the queued ids in insertion order.
func (q *TextureQueue) IDs() []int {
	out := make([]int, len(q.ids))
	copy(out, q.ids)
	return out
}

// Len returns the number of queued ids.
func (q *TextureQueue) Len() int {
	return len(q.ids)
}
