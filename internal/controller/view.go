// Package controller owns the client's session and its single active view.
// Every authenticated call to the API goes through Controller.
package controller

import "strings"

// View identifies one screen of the client. Exactly one is active.
type View int

const (
	ViewAuth View = iota
	ViewDashboard
	ViewSearch
	ViewContacts
	ViewSpam
)

type viewInfo struct {
	view     View
	fragment string
	label    string
}

// viewTable maps each View to its location fragment and navigation label.
// Tab order follows table order.
var viewTable = []viewInfo{
	{ViewAuth, "auth", "Sign in"},
	{ViewDashboard, "dashboard", "Dashboard"},
	{ViewSearch, "search", "Search"},
	{ViewContacts, "contacts", "Contacts"},
	{ViewSpam, "spam", "Spam"},
}

func (v View) info() viewInfo {
	for _, vi := range viewTable {
		if vi.view == v {
			return vi
		}
	}
	return viewTable[1]
}

// Fragment is the location identifier for v.
func (v View) Fragment() string {
	return v.info().fragment
}

// Label is the navigation label for v.
func (v View) Label() string {
	return v.info().label
}

func (v View) String() string {
	return v.Fragment()
}

// RequiresSession reports whether v is only shown to signed-in users.
// Every view but auth does, and each of them loads data on activation.
func (v View) RequiresSession() bool {
	return v != ViewAuth
}

// NavViews returns the views shown in the navigation bar, in order.
func NavViews() []View {
	out := make([]View, 0, len(viewTable)-1)
	for _, vi := range viewTable {
		if vi.view.RequiresSession() {
			out = append(out, vi.view)
		}
	}
	return out
}

// ResolveLocation maps a location fragment to a View.
// A leading '#' and surrounding space are ignored and matching is
// case-insensitive. Empty or unknown fragments resolve to ViewDashboard.
func ResolveLocation(fragment string) View {
	f := strings.ToLower(strings.TrimPrefix(strings.TrimSpace(fragment), "#"))
	for _, vi := range viewTable {
		if vi.fragment == f {
			return vi.view
		}
	}
	return ViewDashboard
}

// EnforceGate returns the view that may actually be shown.
// Anonymous sessions only ever see ViewAuth; signed-in sessions are sent
// from ViewAuth to ViewDashboard.
func EnforceGate(v View, authenticated bool) View {
	switch {
	case !authenticated:
		return ViewAuth
	case v == ViewAuth:
		return ViewDashboard
	}
	return v
}
