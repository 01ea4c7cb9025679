package port

// Client is one live peer channel as the core sees it. The websocket
// adapter implements it; tests use in-memory fakes.
type Client interface {
	ID() string

	// Alive reports whether the underlying channel is still open.
	Alive() bool

	// Send serializes v as JSON onto the channel. Failures are
	// swallowed upstream, the heartbeat supervisor reaps dead peers.
	Send(v any) error

	// Close shuts the channel down with a reason visible to the peer.
	Close(reason string) error
}
