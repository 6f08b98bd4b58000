package orderbook

import "errors"

var (
	// ErrPriceOutOfRange is returned when a command's limit is >= PMax.
	ErrPriceOutOfRange = errors.New("orderbook: price out of range")

	// ErrZeroVolume is returned when a command carries zero volume.
	ErrZeroVolume = errors.New("orderbook: zero volume")

	// ErrDuplicateOrderID is returned when an insert reuses an id that is
	// currently live in this book.
	ErrDuplicateOrderID = errors.New("orderbook: duplicate order id")
)
