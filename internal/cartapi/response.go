package cartapi

import (
	"encoding/json"
	"math"
	"strconv"

	"github.com/pkg/errors"
)

// Response is the JSON reply of the add/remove/update endpoints.
// Fields keeps the whole payload so summary renderers can read what they need.
type Response struct {
	Success        bool
	Message        string
	CartItemsCount int
	CartTotal      *float64
	Fields         map[string]any

	hasCount bool
}

// HasCount reports whether the server sent cart_items_count.
func (r *Response) HasCount() bool { return r != nil && r.hasCount }

// HasTotal reports whether the server sent cart_total.
func (r *Response) HasTotal() bool { return r != nil && r.CartTotal != nil }

func decodeResponse(body []byte) (*Response, error) {
	var fields map[string]any
	if err := json.Unmarshal(body, &fields); err != nil {
		return nil, errors.Wrap(err, "decode response")
	}
	if fields == nil {
		return nil, errors.New("decode response: not a JSON object")
	}

	resp := &Response{Fields: fields}
	if v, ok := fields["success"].(bool); ok {
		resp.Success = v
	}
	if v, ok := fields["message"].(string); ok {
		resp.Message = v
	}
	if v, ok := fields["cart_items_count"].(float64); ok {
		resp.CartItemsCount = int(math.Round(v))
		resp.hasCount = true
	}
	switch v := fields["cart_total"].(type) {
	case float64:
		resp.CartTotal = &v
	case string:
		// Decimal totals sometimes arrive quoted.
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			resp.CartTotal = &f
		}
	}
	return resp, nil
}
