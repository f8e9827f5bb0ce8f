// Package mt5 implements the bridge between the MT5 server protocol and the
// venue-neutral domain model: identifier reconciliation, the order ledger,
// trade derivation, position diffing and quote normalization.
package mt5

import (
	"strings"

	"github.com/goccy/go-json"
)

// Command channel function codes.
const (
	fnQueryContracts = 0
	fnQueryOrders    = 1
	fnQueryHistory   = 2
	fnSubscribe      = 3
	fnPlaceOrder     = 4
	fnCancelOrder    = 5
)

// Venue order states.
const (
	orderStateStarted  = 0
	orderStatePlaced   = 1
	orderStateCanceled = 2
	orderStatePartial  = 3
	orderStateFilled   = 4
	orderStateRejected = 5
)

// Transaction kinds carried on order notifications.
const (
	transOrderAdd    = 0
	transOrderUpdate = 1
	transOrderDelete = 2
	transHistoryAdd  = 6
	transRequest     = 10
)

// Venue order type codes: direction x execution style.
const (
	typeBuy       = 0
	typeSell      = 1
	typeBuyLimit  = 2
	typeSellLimit = 3
	typeBuyStop   = 4
	typeSellStop  = 5
)

// Position type codes on position snapshots.
const (
	positionTypeBuy  = 0
	positionTypeSell = 1
)

// Bar period codes for history queries.
const (
	periodM1 = 1
	periodH1 = 16385
	periodD1 = 16408
)

// retcodeMarketClosed is the venue rejection code for a closed market.
const retcodeMarketClosed = 10018

// PushKind discriminates the push packets the venue sends.
type PushKind int

const (
	PushUnknown PushKind = iota
	PushAccount
	PushQuote
	PushOrder
	PushPosition
)

var pushKinds = map[string]PushKind{
	"account":  PushAccount,
	"price":    PushQuote,
	"order":    PushOrder,
	"position": PushPosition,
}

type pushPacket struct {
	Type string          `json:"type"`
	Data json.RawMessage `json:"data"`
}

// replyEnvelope is the common shape of command replies. Result is raw
// because its type varies by function (bool, int, absent).
type replyEnvelope struct {
	Result json.RawMessage `json:"result"`
	Data   json.RawMessage `json:"data"`
}

type commandResult struct {
	Result  bool   `json:"result"`
	Comment string `json:"comment"`
}

// Outbound requests.

type subscribeRequest struct {
	Type   int    `json:"type"`
	Symbol string `json:"symbol"`
}

type placeRequest struct {
	Type    int     `json:"type"`
	Symbol  string  `json:"symbol"`
	Cmd     int     `json:"cmd"`
	Price   float64 `json:"price"`
	Volume  float64 `json:"volume"`
	Comment string  `json:"comment"`
}

type cancelRequest struct {
	Type   int   `json:"type"`
	Ticket int64 `json:"ticket"`
}

type queryRequest struct {
	Type int `json:"type"`
}

type historyRequest struct {
	Type      int    `json:"type"`
	Symbol    string `json:"symbol"`
	Interval  int    `json:"interval"`
	StartTime string `json:"start_time"`
	EndTime   string `json:"end_time"`
}

// Inbound records.

type accountInfo struct {
	Name    string  `json:"name"`
	Balance float64 `json:"balance"`
	Margin  float64 `json:"margin"`
}

type quoteInfo struct {
	Symbol     string  `json:"symbol"`
	Bid        float64 `json:"bid"`
	Ask        float64 `json:"ask"`
	Last       float64 `json:"last"`
	LastVolume float64 `json:"last_volume"`
	LastHigh   float64 `json:"last_high"`
	LastLow    float64 `json:"last_low"`
	BidHigh    float64 `json:"bid_high"`
	BidLow     float64 `json:"bid_low"`
	AskHigh    float64 `json:"ask_high"`
	AskLow     float64 `json:"ask_low"`
}

type positionInfo struct {
	Symbol string  `json:"symbol"`
	Type   int     `json:"type"`
	Volume float64 `json:"volume"`
	Price  float64 `json:"price"`
	Profit float64 `json:"current_profit"`
}

// transactionInfo is one order notification. The venue reuses the same shape
// for order transactions (Order != 0) and request acknowledgements
// (Order == 0, result_* fields populated).
type transactionInfo struct {
	Order          int64   `json:"order"`
	TransType      int     `json:"trans_type"`
	TransState     int     `json:"trans_state"`
	Symbol         string  `json:"symbol"`
	OrderType      int     `json:"order_type"`
	OrderPrice     float64 `json:"order_price"`
	VolumeInitial  float64 `json:"order_volume_initial"`
	VolumeCurrent  float64 `json:"order_volume_current"`
	TimeSetup      int64   `json:"order_time_setup"`
	OrderComment   string  `json:"order_comment"`
	Deal           int64   `json:"deal"`
	TransPrice     float64 `json:"trans_price"`
	TransVolume    float64 `json:"trans_volume"`
	RequestComment string  `json:"request_comment"`
	ResultOrder    int64   `json:"result_order"`
	ResultDeal     int64   `json:"result_deal"`
	ResultRetcode  int     `json:"result_retcode"`
	ResultPrice    float64 `json:"result_price"`
	ResultVolume   float64 `json:"result_volume"`
}

type openOrderInfo struct {
	Order         int64   `json:"order"`
	Symbol        string  `json:"symbol"`
	OrderType     int     `json:"order_type"`
	OrderPrice    float64 `json:"order_price"`
	VolumeInitial float64 `json:"order_volume_initial"`
	VolumeCurrent float64 `json:"order_volume_current"`
	OrderState    int     `json:"order_state"`
	OrderComment  string  `json:"order_comment"`
	TimeSetup     int64   `json:"order_time_setup"`
}

type contractInfo struct {
	Symbol  string  `json:"symbol"`
	Digits  int     `json:"digits"`
	LotSize float64 `json:"lot_size"`
	MinLot  float64 `json:"min_lot"`
}

type barInfo struct {
	Time       string  `json:"time"`
	Open       float64 `json:"open"`
	High       float64 `json:"high"`
	Low        float64 `json:"low"`
	Close      float64 `json:"close"`
	RealVolume float64 `json:"real_volume"`
}

// wireSymbol converts a neutral symbol to the venue spelling and
// localSymbol back. The venue uses dots where the domain model uses dashes.
func wireSymbol(s string) string {
	return strings.ReplaceAll(s, "-", ".")
}

func localSymbol(s string) string {
	return strings.ReplaceAll(s, ".", "-")
}

// decodeTransactions accepts both a single notification object and a batch.
func decodeTransactions(raw json.RawMessage) ([]transactionInfo, error) {
	trimmed := strings.TrimSpace(string(raw))
	if trimmed == "" || trimmed == "null" {
		return nil, nil
	}
	if trimmed[0] == '[' {
		var batch []transactionInfo
		if err := json.Unmarshal(raw, &batch); err != nil {
			return nil, err
		}
		return batch, nil
	}
	var one transactionInfo
	if err := json.Unmarshal(raw, &one); err != nil {
		return nil, err
	}
	return []transactionInfo{one}, nil
}
