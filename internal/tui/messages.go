package tui

import "github.com/Veraticus/leadflow/internal/engine"

// sessionLoadedMsg carries the result of a reload.
type sessionLoadedMsg struct {
	err     error
	session *engine.Session
}

// Tab is one dashboard view.
type Tab int

// Dashboard views, in tab order.
const (
	TabOverview Tab = iota
	TabMonthly
	TabPriceRanges
	TabDelivery
	TabZipCodes
	TabClosings
)

var tabTitles = []string{"Overview", "Monthly", "Price Ranges", "Delivery", "Zip Codes", "Closings"}

// String returns the tab title.
func (t Tab) String() string {
	if t < 0 || int(t) >= len(tabTitles) {
		return "Unknown"
	}
	return tabTitles[t]
}
