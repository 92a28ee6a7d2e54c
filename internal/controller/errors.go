package controller

import "errors"

var (
	// ErrNoSession is returned by authenticated calls made while anonymous.
	// No request is sent.
	ErrNoSession = errors.New("not signed in")

	// ErrSessionBusy rejects a login, signup or logout while another is in flight.
	ErrSessionBusy = errors.New("another sign-in or sign-out is in progress")

	// ErrStaleView means a load finished after its view stopped being active.
	ErrStaleView = errors.New("view is no longer active")
)
