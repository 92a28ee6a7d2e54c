package controller

import (
	"context"
	"net/http"
	"net/url"

	"github.com/ringcheck/ringcheck/internal/api"
)

// AuthenticatedRequest sends one request with the session's bearer
// credential and decodes a 2xx body into out.
//
// While anonymous it returns ErrNoSession without sending anything. A 401
// logs the issuing session out and returns api.ErrAuthExpired; if that
// session had already ended, ErrNoSession is returned instead so expiry is
// surfaced once. Other non-2xx statuses become *api.RemoteError and
// transport failures *api.NetworkFailure.
func (c *Controller) AuthenticatedRequest(ctx context.Context, method, path string, query url.Values, body, out any) error {
	c.mu.Lock()
	sess := c.sess
	c.mu.Unlock()
	if !sess.Valid() {
		return ErrNoSession
	}

	resp, err := c.client.Send(ctx, method, path, query, body, sess.Token())
	if err != nil {
		return err
	}

	switch {
	case resp.Status == http.StatusUnauthorized:
		if c.expire(sess) {
			return api.ErrAuthExpired
		}
		return ErrNoSession
	case !resp.OK():
		return &api.RemoteError{Status: resp.Status, Message: resp.Message(http.StatusText(resp.Status))}
	}
	return resp.Decode(out)
}
