package cart

import (
	"encoding/json"

	"github.com/go-faster/errors"
)

// Marshal encodes c as a snapshot document.
func Marshal(c Cart) ([]byte, error) {
	if c.Items == nil {
		c.Items = []Item{}
	}
	data, err := json.Marshal(c)
	if err != nil {
		return nil, errors.Wrap(err, "marshal cart")
	}
	return data, nil
}

// Unmarshal decodes a snapshot document and restores the cart invariants.
// The stored total is ignored.
func Unmarshal(data []byte) (Cart, error) {
	var c Cart
	if err := json.Unmarshal(data, &c); err != nil {
		return Empty(), errors.Wrap(err, "unmarshal cart")
	}
	return Restore(c), nil
}
