/*
Licensed under the Apache License, Version 2.0 (the "License");
you may not use this file except in compliance with the License.
You may obtain a copy of the License at

    http://www.apache.org/licenses/LICENSE-2.0

Unless required by applicable law or agreed to in writing, software
distributed under the License is distributed on an "AS IS" BASIS,
WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
See the License for the specific language governing permissions and
limitations under the License.
*/

package model

// OrderStatus is the single lifecycle bucket an order currently lives in.
type OrderStatus int

const (
	OrderPendingLate OrderStatus = iota
	OrderPendingNotLate
	OrderAssigned
	OrderCompleted
)

func (s OrderStatus) String() string {
	switch s {
	case OrderPendingLate:
		return "pending_late"
	case OrderPendingNotLate:
		return "pending_not_late"
	case OrderAssigned:
		return "assigned"
	case OrderCompleted:
		return "completed"
	default:
		return "unknown"
	}
}

// Order is a customer request: a multiset of item->count positions with a
// due time. An order is in exactly one of {pending_late, pending_not_late,
// assigned to a station, completed} at any moment.
type Order struct {
	ID              string
	Positions       []Position
	TimePlaced      float64
	DueTime         float64
	TimeStampSubmit float64
	Status          OrderStatus
	StationID       string // set once Status == OrderAssigned or OrderCompleted
}

// NewOrder constructs an order in the pending-not-late bucket;
// OrderBook.PromoteLate moves it to pending-late once its due time passes.
func NewOrder(id string, positions []Position, placed, due float64) *Order {
	return &Order{ID: id, Positions: positions, TimePlaced: placed, DueTime: due, TimeStampSubmit: placed, Status: OrderPendingNotLate}
}

// TimeStay is elapsed time since submission.
func (o *Order) TimeStay(now float64) float64 { return now - o.TimeStampSubmit }

// IsLate reports whether now is past the order's due time.
func (o *Order) IsLate(now float64) bool { return now >= o.DueTime }

// Required returns how many units of item this order still needs,
// summed across its positions (there should be at most one position per
// item, but this tolerates duplicates defensively).
func (o *Order) Required(item Item) int {
	total := 0
	for _, pos := range o.Positions {
		if pos.Item.Equal(item) {
			total += pos.Required
		}
	}
	return total
}

// TotalUnits sums the required count across every position.
func (o *Order) TotalUnits() int {
	total := 0
	for _, pos := range o.Positions {
		total += pos.Required
	}
	return total
}
