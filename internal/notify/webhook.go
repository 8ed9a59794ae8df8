package notify

import (
	"bytes"
	"fmt"
	"net/http"
	"time"

	json "github.com/goccy/go-json"

	"fivemon/internal/providers"
	"fivemon/internal/structures"
	"fivemon/internal/tracker"
)

const defaultTimeout = 10 * time.Second

// NotifierInterface receives domain events as they are emitted. Delivery is
// best effort: failures are logged and never propagate into the tick.
type NotifierInterface interface {
	PlayerJoined(join tracker.Join)
	PlayerLeft(leave tracker.Leave)
	ServerStatusChanged(online bool, hostname string, clients, maxClients int)
}

// WebhookNotifier POSTs plain JSON payloads to a Discord-compatible webhook.
type WebhookNotifier struct {
	url    string
	http   *http.Client
	logger providers.Logger
}

func NewNotifier(conf *structures.Config, logger providers.Logger) NotifierInterface {
	if conf.Notifications.WebhookURL == "" {
		logger.Infof(providers.TypeApp, "Notifications disabled")
		return &noopNotifier{}
	}

	timeout := conf.Notifications.Timeout
	if timeout <= 0 {
		timeout = defaultTimeout
	}

	return &WebhookNotifier{
		url:    conf.Notifications.WebhookURL,
		http:   &http.Client{Timeout: timeout},
		logger: logger,
	}
}

func (n *WebhookNotifier) PlayerJoined(join tracker.Join) {
	n.post(map[string]any{
		"content": fmt.Sprintf("Player joined: %s (ping %dms)", join.Name, join.Ping),
		"event": map[string]any{
			"type":   "join",
			"player": join.Name,
			"ping":   join.Ping,
			"at":     join.At,
		},
	})
}

func (n *WebhookNotifier) PlayerLeft(leave tracker.Leave) {
	n.post(map[string]any{
		"content": fmt.Sprintf("Player left: %s (session %s, %s)",
			leave.Name, formatDuration(leave.SessionDuration), leave.Reason),
		"event": map[string]any{
			"type":             "leave",
			"player":           leave.Name,
			"session_duration": leave.SessionDuration,
			"reason":           leave.Reason,
			"at":               leave.At,
		},
	})
}

func (n *WebhookNotifier) ServerStatusChanged(online bool, hostname string, clients, maxClients int) {
	status := "offline"
	content := "Server went offline"
	if online {
		status = "online"
		content = fmt.Sprintf("Server is online: %s (%d/%d players)", hostname, clients, maxClients)
	}
	n.post(map[string]any{
		"content": content,
		"event": map[string]any{
			"type":   "server_status",
			"status": status,
		},
	})
}

func (n *WebhookNotifier) post(payload map[string]any) {
	body, err := json.Marshal(payload)
	if err != nil {
		n.logger.Errorf(providers.TypeApp, "Webhook payload encode failed: %s", err)
		return
	}

	resp, err := n.http.Post(n.url, "application/json", bytes.NewReader(body))
	if err != nil {
		n.logger.Warnf(providers.TypeApp, "Webhook delivery failed: %s", err)
		return
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 300 {
		n.logger.Warnf(providers.TypeApp, "Webhook rejected with status %d", resp.StatusCode)
	}
}

func formatDuration(seconds int64) string {
	switch {
	case seconds < 60:
		return fmt.Sprintf("%ds", seconds)
	case seconds < 3600:
		return fmt.Sprintf("%dm", seconds/60)
	case seconds < 86400:
		return fmt.Sprintf("%dh %dm", seconds/3600, (seconds%3600)/60)
	default:
		return fmt.Sprintf("%dd %dh", seconds/86400, (seconds%86400)/3600)
	}
}

type noopNotifier struct{}

func (n *noopNotifier) PlayerJoined(_ tracker.Join)                    {}
func (n *noopNotifier) PlayerLeft(_ tracker.Leave)                     {}
func (n *noopNotifier) ServerStatusChanged(_ bool, _ string, _, _ int) {}
