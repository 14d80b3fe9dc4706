package price

import "context"

// Offline is a provider with no upstream; every call fails with ErrUnavailable
type Offline struct{}

// Coin always fails
func (Offline) Coin(context.Context, string) (*Coin, error) {
	return nil, ErrUnavailable
}

// PriceHistory always fails
func (Offline) PriceHistory(context.Context, string, int) ([]PricePoint, error) {
	return nil, ErrUnavailable
}
