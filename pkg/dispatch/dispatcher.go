package dispatch

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/coneno/logger"
	"github.com/cybershield-id/registration-relay/pkg/types"
)

var (
	ErrDispatch       = errors.New("registration could not be sent")
	ErrRemoteRejected = errors.New("remote endpoint rejected the registration")
)

// Attempt records that a request left the process. In opaque mode StatusCode
// is informational only and says nothing about delivery.
type Attempt struct {
	SentAt     time.Time
	StatusCode int
	Opaque     bool
}

// Dispatcher sends one payload per call, best effort. An error means the
// request could not be sent; a nil error does not confirm delivery.
type Dispatcher interface {
	Dispatch(ctx context.Context, p Payload) (Attempt, error)
}

type HTTPDispatcher struct {
	endpoint    string
	client      *http.Client
	checkStatus bool
}

func NewHTTPDispatcher(conf types.DispatchConfig) *HTTPDispatcher {
	client := &http.Client{}
	if conf.Timeout > 0 {
		client.Timeout = time.Duration(conf.Timeout) * time.Second
	}
	return &HTTPDispatcher{
		endpoint:    conf.EndpointURL,
		client:      client,
		checkStatus: conf.CheckResponseStatus,
	}
}

// Dispatch POSTs the payload as JSON. Cancelling ctx after the call started
// does not abort the request.
func (d *HTTPDispatcher) Dispatch(ctx context.Context, p Payload) (Attempt, error) {
	body, err := json.Marshal(p)
	if err != nil {
		return Attempt{}, fmt.Errorf("%w: %v", ErrDispatch, err)
	}

	req, err := http.NewRequestWithContext(context.WithoutCancel(ctx), http.MethodPost, d.endpoint, bytes.NewReader(body))
	if err != nil {
		return Attempt{}, fmt.Errorf("%w: %v", ErrDispatch, err)
	}
	req.Header.Set("Content-Type", "application/json")

	attempt := Attempt{SentAt: time.Now(), Opaque: !d.checkStatus}
	resp, err := d.client.Do(req)
	if err != nil {
		return attempt, fmt.Errorf("%w: %v", ErrDispatch, err)
	}
	// drained only so the connection can be reused
	_, _ = io.Copy(io.Discard, resp.Body)
	resp.Body.Close()

	attempt.StatusCode = resp.StatusCode
	logger.Debug.Printf("relay responded with status %d", resp.StatusCode)

	if d.checkStatus && (resp.StatusCode < 200 || resp.StatusCode > 299) {
		return attempt, fmt.Errorf("%w: %w: status %d", ErrDispatch, ErrRemoteRejected, resp.StatusCode)
	}
	return attempt, nil
}
