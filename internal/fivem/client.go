package fivem

import (
	"bytes"
	"context"
	"io"
	"net/http"
	"strings"
	"time"

	json "github.com/goccy/go-json"
	"github.com/spf13/cast"

	"fivemon/internal/models"
	"fivemon/internal/providers"
	"fivemon/internal/structures"
)

const (
	endpointInfo    = "/info.json"
	endpointDynamic = "/dynamic.json"
	endpointPlayers = "/players.json"

	maxResponseBody = 4 << 20 // 4 MB
	userAgent       = "fivemon/1.0 (FiveM Server Monitor)"
)

// ClientInterface fetches and normalizes server state. Implementations never
// return an error from Fetch: a failed fetch degrades to an offline snapshot.
type ClientInterface interface {
	Fetch(ctx context.Context) *models.Snapshot
}

type Client struct {
	baseURL string
	http    *http.Client
	logger  providers.Logger
	metrics providers.MetricsProviderInterface
}

func NewClient(conf *structures.Config, logger providers.Logger, metrics providers.MetricsProviderInterface) ClientInterface {
	return &Client{
		baseURL: strings.TrimRight(conf.FiveM.BaseURL, "/"),
		http:    &http.Client{Timeout: conf.FiveM.Timeout},
		logger:  logger,
		metrics: metrics,
	}
}

// Fetch reads all three endpoints and merges them into one snapshot. The
// dynamic endpoint decides the online flag; info and players may fail
// independently without failing the snapshot.
func (c *Client) Fetch(ctx context.Context) *models.Snapshot {
	now := time.Now().UTC()

	start := time.Now()
	dynamic, err := c.getJSON(ctx, endpointDynamic)
	rtt := time.Since(start)
	if err != nil {
		c.logger.Warnf(providers.TypeTick, "dynamic fetch failed: %s", err)
		c.metrics.IncFetchFailures(endpointDynamic)
		return offlineSnapshot(now)
	}

	snap := &models.Snapshot{
		Online:     true,
		Hostname:   cast.ToString(dynamic["hostname"]),
		Clients:    cast.ToInt(dynamic["clients"]),
		MaxClients: cast.ToInt(dynamic["sv_maxclients"]),
		MapName:    cast.ToString(dynamic["mapname"]),
		GameType:   cast.ToString(dynamic["gametype"]),
		Ping:       float64(rtt.Milliseconds()),
		FetchedAt:  now,
	}
	if snap.Hostname == "" {
		if vars, ok := dynamic["vars"].(map[string]interface{}); ok {
			snap.Hostname = cast.ToString(vars["sv_projectName"])
		}
	}

	info, err := c.getJSON(ctx, endpointInfo)
	if err != nil {
		c.logger.Warnf(providers.TypeTick, "info fetch failed: %s", err)
		c.metrics.IncFetchFailures(endpointInfo)
	} else {
		for _, r := range cast.ToSlice(info["resources"]) {
			if name := cast.ToString(r); name != "" {
				snap.Resources = append(snap.Resources, name)
			}
		}
	}

	roster, err := c.getRoster(ctx)
	if err != nil {
		c.logger.Warnf(providers.TypeTick, "players fetch failed: %s", err)
		c.metrics.IncFetchFailures(endpointPlayers)
		roster = nil
	}
	snap.Roster = roster

	return snap
}

func offlineSnapshot(at time.Time) *models.Snapshot {
	return &models.Snapshot{
		Online:    false,
		FetchedAt: at,
	}
}

func (c *Client) getJSON(ctx context.Context, endpoint string) (map[string]interface{}, error) {
	body, err := c.get(ctx, endpoint)
	if err != nil {
		return nil, err
	}

	var data map[string]interface{}
	if err := json.Unmarshal(extractJSON(body), &data); err != nil {
		return nil, err
	}
	return data, nil
}

func (c *Client) getRoster(ctx context.Context) ([]models.RosterEntry, error) {
	body, err := c.get(ctx, endpointPlayers)
	if err != nil {
		return nil, err
	}

	var raw []map[string]interface{}
	if err := json.Unmarshal(extractJSON(body), &raw); err != nil {
		// Unexpected shape counts as an empty roster, not a fatal error.
		c.logger.Warnf(providers.TypeTick, "malformed roster payload: %s", err)
		return nil, nil
	}

	return NormalizeRoster(raw), nil
}

func (c *Client) get(ctx context.Context, endpoint string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+endpoint, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("User-Agent", userAgent)
	req.Header.Set("Accept", "application/json, text/plain, */*")

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, &StatusError{Endpoint: endpoint, Code: resp.StatusCode}
	}

	return io.ReadAll(io.LimitReader(resp.Body, maxResponseBody))
}

// extractJSON trims anything wrapped around a JSON document. Some servers
// serve their JSON wrapped in HTML or JSONP.
func extractJSON(body []byte) []byte {
	trimmed := bytes.TrimSpace(body)
	if len(trimmed) == 0 {
		return trimmed
	}
	if trimmed[0] == '{' || trimmed[0] == '[' {
		return trimmed
	}

	objStart := bytes.IndexByte(trimmed, '{')
	arrStart := bytes.IndexByte(trimmed, '[')
	start := objStart
	if start == -1 || (arrStart != -1 && arrStart < start) {
		start = arrStart
	}
	if start == -1 {
		return trimmed
	}

	end := bytes.LastIndexByte(trimmed, '}')
	if e := bytes.LastIndexByte(trimmed, ']'); e > end {
		end = e
	}
	if end <= start {
		return trimmed
	}
	return trimmed[start : end+1]
}

// NormalizeRoster turns the raw players payload into set-like roster entries:
// blank and sentinel names are dropped, duplicates keep the first occurrence,
// identifiers are split into a key/value map.
func NormalizeRoster(raw []map[string]interface{}) []models.RosterEntry {
	roster := make([]models.RosterEntry, 0, len(raw))
	seen := make(map[string]struct{}, len(raw))

	for _, p := range raw {
		name := strings.TrimSpace(cast.ToString(p["name"]))
		if name == "" {
			continue
		}
		switch strings.ToLower(name) {
		case "unknown", "null":
			continue
		}
		if _, dup := seen[name]; dup {
			continue
		}
		seen[name] = struct{}{}

		entry := models.RosterEntry{
			Name:        name,
			Ping:        cast.ToInt(p["ping"]),
			Identifiers: ParseIdentifiers(cast.ToStringSlice(p["identifiers"])),
			Job:         models.DefaultJob,
			Role:        models.DefaultRole,
		}
		if job := cast.ToString(p["job"]); job != "" {
			entry.Job = job
		}
		if role := cast.ToString(p["role"]); role != "" {
			entry.Role = role
		}
		roster = append(roster, entry)
	}

	return roster
}

// ParseIdentifiers splits "license:abc"-style identifier strings into a map.
func ParseIdentifiers(identifiers []string) map[string]string {
	parsed := make(map[string]string, len(identifiers))
	for _, id := range identifiers {
		key, value, ok := strings.Cut(id, ":")
		if !ok || key == "" {
			continue
		}
		parsed[key] = value
	}
	return parsed
}
