package domain

// PendingBuffer is the insertion-ordered queue of transactions waiting to be
// flushed. It is not safe for concurrent use; the dispatch loop owns it.
type PendingBuffer struct {
	items []Transaction
	head  int
}

// retainedCap is the largest backing array kept once the buffer empties.
const retainedCap = 1024

// NewPendingBuffer creates an empty buffer.
func NewPendingBuffer() *PendingBuffer {
	return &PendingBuffer{}
}

// Push appends a transaction at the back.
func (p *PendingBuffer) Push(tx Transaction) {
	p.items = append(p.items, tx)
}

// Len returns the number of buffered transactions.
func (p *PendingBuffer) Len() int {
	return len(p.items) - p.head
}

// Take removes up to n transactions from the front and returns them oldest
// first. The returned slice does not alias the buffer. Take on an empty
// buffer returns nil and leaves the buffer untouched.
func (p *PendingBuffer) Take(n int) []Transaction {
	if n > p.Len() {
		n = p.Len()
	}
	if n <= 0 {
		return nil
	}

	out := make([]Transaction, n)
	copy(out, p.items[p.head:p.head+n])

	// release references held by the consumed slots
	clear(p.items[p.head : p.head+n])
	p.head += n

	switch {
	case p.head == len(p.items):
		if cap(p.items) > retainedCap {
			p.items = nil
		} else {
			p.items = p.items[:0]
		}
		p.head = 0
	case p.head > len(p.items)/2:
		// compact once the consumed prefix dominates
		rest := p.items[p.head:]
		if cap(p.items) > retainedCap && cap(p.items) > 4*len(rest) {
			p.items = append([]Transaction(nil), rest...)
		} else {
			remaining := copy(p.items, rest)
			clear(p.items[remaining:])
			p.items = p.items[:remaining]
		}
		p.head = 0
	}
	return out
}
