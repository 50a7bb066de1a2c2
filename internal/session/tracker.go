package session

import (
	"log/slog"
	"strings"
)

// DefaultBrandPrefix is the start of the brand string the target server's proxy reports.
const DefaultBrandPrefix = "Hypixel BungeeCord"

// Transport describes how the client is connected.
type Transport int

const (
	TransportUnknown Transport = iota
	TransportVanilla
	// TransportModded is a connection negotiated with mod support, the only
	// kind the brand check runs on.
	TransportModded
)

func (t Transport) String() string {
	switch t {
	case TransportVanilla:
		return "vanilla"
	case TransportModded:
		return "modded"
	default:
		return "unknown"
	}
}

// BrandSource is the host's player object. ok is false while the player has
// not spawned or the server has not sent its brand yet.
type BrandSource interface {
	ServerBrand() (brand string, ok bool)
}

// State is a copy of the tracker's session fields.
type State struct {
	Armed          bool
	BrandChecked   bool
	OnTargetServer bool
}

// Tracker latches "connected to the target server" once per connection.
type Tracker struct {
	prefix string
	logger *slog.Logger

	armed          bool
	brandChecked   bool
	onTargetServer bool
}

func NewTracker(brandPrefix string, logger *slog.Logger) *Tracker {
	if brandPrefix == "" {
		brandPrefix = DefaultBrandPrefix
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Tracker{prefix: brandPrefix, logger: logger}
}

// OnConnect arms the brand check for remote connections with mod support and
// disarms it for everything else. It reports whether the check is armed.
func (t *Tracker) OnConnect(remote bool, transport Transport) bool {
	t.armed = remote && transport == TransportModded
	t.logger.Debug("Client connected",
		"remote", remote,
		"transport", transport,
		"armed", t.armed)
	return t.armed
}

// OnDisconnect resets the session fields. Arming follows the last OnConnect,
// so a chat line after a disconnect runs a fresh brand check.
func (t *Tracker) OnDisconnect() {
	if t.onTargetServer {
		t.logger.Info("Disconnected from target server.")
	}
	t.brandChecked = false
	t.onTargetServer = false
}

// OnChatLine runs the one-time brand check. A missing player object or brand
// means the brand has not been observed yet; the check waits for the next
// line. A brand that does not match stays until disconnect.
// It reports whether this call performed the check.
func (t *Tracker) OnChatLine(line string, player BrandSource) bool {
	if !t.armed || t.brandChecked {
		return false
	}
	if player == nil {
		return false
	}
	brand, ok := player.ServerBrand()
	if !ok || brand == "" {
		t.logger.Debug("Server brand not available yet", "line", line)
		return false
	}

	t.onTargetServer = strings.HasPrefix(brand, t.prefix)
	t.brandChecked = true
	if t.onTargetServer {
		t.logger.Info("Player joined target server.", "brand", brand)
	} else {
		t.logger.Debug("Server brand did not match", "brand", brand)
	}
	return true
}

// SetPrefix changes the brand prefix used by the next check.
func (t *Tracker) SetPrefix(prefix string) {
	if prefix == "" {
		prefix = DefaultBrandPrefix
	}
	t.prefix = prefix
}

func (t *Tracker) Connected() bool { return t.onTargetServer }

func (t *Tracker) Checked() bool { return t.brandChecked }

func (t *Tracker) Armed() bool { return t.armed }

func (t *Tracker) State() State {
	return State{Armed: t.armed, BrandChecked: t.brandChecked, OnTargetServer: t.onTargetServer}
}
