// Package market holds the venue-neutral domain model: quotes, orders,
// trades, positions and the enums shared by every adapter component.
package market

// Side is the direction of an order or position.
type Side int

const (
	Long Side = iota
	Short
	// Net marks a signed one-per-symbol position rather than a direction.
	Net
)

func (s Side) String() string {
	switch s {
	case Long:
		return "long"
	case Short:
		return "short"
	case Net:
		return "net"
	}
	return "unknown"
}

// OrderKind is the execution style of an order.
type OrderKind int

const (
	MarketOrder OrderKind = iota
	LimitOrder
	StopOrder
)

func (k OrderKind) String() string {
	switch k {
	case MarketOrder:
		return "market"
	case LimitOrder:
		return "limit"
	case StopOrder:
		return "stop"
	}
	return "unknown"
}

// OrderStatus follows the order lifecycle:
//
//	Submitting -> NotTraded | Rejected
//	NotTraded  -> PartFilled | Cancelled | Rejected
//	PartFilled -> PartFilled | Filled | Cancelled
//
// Filled, Cancelled and Rejected are terminal.
type OrderStatus int

const (
	Submitting OrderStatus = iota
	NotTraded
	PartFilled
	Filled
	Cancelled
	Rejected
)

func (s OrderStatus) String() string {
	switch s {
	case Submitting:
		return "submitting"
	case NotTraded:
		return "not_traded"
	case PartFilled:
		return "part_filled"
	case Filled:
		return "filled"
	case Cancelled:
		return "cancelled"
	case Rejected:
		return "rejected"
	}
	return "unknown"
}

// Terminal reports whether no further transition is possible.
func (s OrderStatus) Terminal() bool {
	return s == Filled || s == Cancelled || s == Rejected
}

// Active reports whether the order still rests on the venue.
func (s OrderStatus) Active() bool {
	return !s.Terminal()
}

// Interval is a bar granularity for history queries.
type Interval int

const (
	Minute Interval = iota
	Hour
	Daily
)

func (i Interval) String() string {
	switch i {
	case Minute:
		return "1m"
	case Hour:
		return "1h"
	case Daily:
		return "1d"
	}
	return "unknown"
}

// ParseInterval maps the CLI spellings back to an Interval.
func ParseInterval(s string) (Interval, bool) {
	switch s {
	case "1m", "m", "minute":
		return Minute, true
	case "1h", "h", "hour":
		return Hour, true
	case "1d", "d", "daily":
		return Daily, true
	}
	return Minute, false
}
