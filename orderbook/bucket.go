package orderbook

import "matching-core/domain"

// bucket is the FIFO queue of live orders resting at one price tick, on
// one side of the book. head/tail/len describe a doubly linked list in
// arrival order; every order in the list has limit == bucket.price.
type bucket struct {
	price domain.Price
	head  *order
	tail  *order
	len   int
}

// pushBack appends an order to the tail of the bucket. O(1).
func (b *bucket) pushBack(o *order) {
	if o.limit != b.price {
		panic("orderbook: order price does not match bucket price")
	}
	o.prev = b.tail
	o.next = nil
	if b.tail != nil {
		b.tail.next = o
	} else {
		b.head = o
	}
	b.tail = o
	b.len++
}

// popFront removes and returns the head order. O(1). Caller must ensure
// len > 0.
func (b *bucket) popFront() *order {
	o := b.head
	b.unlink(o)
	return o
}

// unlink removes an arbitrary order from the bucket by its own intrusive
// links. O(1).
func (b *bucket) unlink(o *order) {
	if o.prev != nil {
		o.prev.next = o.next
	} else {
		b.head = o.next
	}
	if o.next != nil {
		o.next.prev = o.prev
	} else {
		b.tail = o.prev
	}
	o.prev = nil
	o.next = nil
	b.len--
}

// headMut returns the front order. Only meaningful when len > 0.
func (b *bucket) headMut() *order {
	return b.head
}
