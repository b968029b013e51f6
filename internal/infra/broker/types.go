package broker

import "time"

const (
	maxRetries   = 10
	baseDelay    = 1 * time.Second
	maxDelay     = 60 * time.Second
	pingInterval = 30 * time.Second
	readTimeout  = 60 * time.Second
)

// orderPayload is the broker's wire shape for one conditional order.
// Monetary fields arrive as strings and are parsed into decimals at
// the boundary.
type orderPayload struct {
	ID     string `json:"id"`
	Ticker string `json:"ticker"`
	Qty    string `json:"qty"`
	Entry  string `json:"entry_price"`
	Stop   string `json:"stop_price"`
}

// ordersResponse is the REST envelope for the active-order listing.
type ordersResponse struct {
	Status string         `json:"status"`
	Msg    string         `json:"msg"`
	Data   []orderPayload `json:"data"`
}

// streamMessage is one websocket frame on the order channel.
type streamMessage struct {
	Action string         `json:"action"` // "snapshot", "update", "delete"
	Data   []orderPayload `json:"data"`
}

type subscribeRequest struct {
	Op      string `json:"op"`
	Channel string `json:"channel"`
}
