package types

type DispatchConfig struct {
	EndpointURL         string
	CheckResponseStatus bool // when false the remote response is treated as opaque
	Timeout             int  // seconds, 0 leaves the transport defaults in place
}

type SessionConfig struct {
	TTL int // idle minutes before a form instance is evicted
}
