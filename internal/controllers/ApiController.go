package controllers

import (
	"errors"
	"net/http"
	"strconv"
	"time"

	json "github.com/goccy/go-json"

	"fivemon/internal/analytics"
	"fivemon/internal/models"
	"fivemon/internal/providers"
	"fivemon/internal/storage"
)

const (
	defaultTopLimit   = 10
	maxTopLimit       = 100
	defaultEventLimit = 50
	maxEventLimit     = 500
	defaultPingHours  = 24
	maxPingHours      = 24 * 30
	defaultStatDays   = 7
	maxStatDays       = 90
)

type ApiController struct {
	logger providers.Logger
	agg    analytics.AggregatorInterface
	cache  providers.CacheProviderInterface
}

func NewApiController(logger providers.Logger, agg analytics.AggregatorInterface, cache providers.CacheProviderInterface) *ApiController {
	return &ApiController{
		logger: logger,
		agg:    agg,
		cache:  cache,
	}
}

// intParam reads a bounded positive integer query parameter.
func intParam(r *http.Request, name string, def, max int) int {
	raw := r.URL.Query().Get(name)
	if raw == "" {
		return def
	}
	v, err := strconv.Atoi(raw)
	if err != nil || v < 1 {
		return def
	}
	if v > max {
		return max
	}
	return v
}

func (ac *ApiController) serveFromCacheOrCompute(w http.ResponseWriter, cacheKey string, compute func() (any, error)) {
	if data, ok := ac.cache.Get(cacheKey); ok {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write(data)
		return
	}

	result, err := compute()
	if err != nil {
		ac.logger.Errorf(providers.TypeApi, "Failed to compute %s: %s", cacheKey, err)
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}

	gson, err := json.Marshal(result)
	if err != nil {
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}

	ac.cache.Set(cacheKey, gson)

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(gson)
}

func (ac *ApiController) GetOnlinePlayers(w http.ResponseWriter, r *http.Request) {
	ac.serveFromCacheOrCompute(w, "online", func() (any, error) {
		return ac.agg.SessionStats(time.Now().UTC()), nil
	})
}

func (ac *ApiController) GetTopPlayers(w http.ResponseWriter, r *http.Request) {
	limit := intParam(r, "limit", defaultTopLimit, maxTopLimit)
	ac.serveFromCacheOrCompute(w, "top:"+strconv.Itoa(limit), func() (any, error) {
		players, err := ac.agg.TopPlayers(r.Context(), limit)
		if err != nil {
			return nil, err
		}
		if players == nil {
			players = []models.PlayerRecord{}
		}
		return players, nil
	})
}

func (ac *ApiController) GetPlayer(w http.ResponseWriter, r *http.Request) {
	name := r.URL.Query().Get("name")
	if name == "" {
		http.Error(w, "Bad Request", http.StatusBadRequest)
		return
	}

	info, err := ac.agg.PlayerInfo(r.Context(), name)
	if errors.Is(err, storage.ErrNotFound) {
		// Exact miss: fall back to a substring match before giving up.
		matches, searchErr := ac.agg.SearchPlayers(r.Context(), name, 1)
		if searchErr == nil && len(matches) > 0 {
			info, err = ac.agg.PlayerInfo(r.Context(), matches[0].Name)
		}
	}
	if errors.Is(err, storage.ErrNotFound) {
		http.Error(w, "Not Found", http.StatusNotFound)
		return
	}
	if err != nil {
		ac.logger.Errorf(providers.TypeApi, "Failed to load player %s: %s", name, err)
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}

	gson, err := json.Marshal(info)
	if err != nil {
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(gson)
}

func (ac *ApiController) GetPingStats(w http.ResponseWriter, r *http.Request) {
	hours := intParam(r, "hours", defaultPingHours, maxPingHours)
	ac.serveFromCacheOrCompute(w, "ping:"+strconv.Itoa(hours), func() (any, error) {
		stats, err := ac.agg.PingStats(r.Context(), time.Duration(hours)*time.Hour)
		if err != nil {
			return nil, err
		}
		if stats == nil {
			return map[string]any{"samples": 0, "window_hours": hours}, nil
		}
		return stats, nil
	})
}

func (ac *ApiController) GetServerStats(w http.ResponseWriter, r *http.Request) {
	days := intParam(r, "days", defaultStatDays, maxStatDays)
	ac.serveFromCacheOrCompute(w, "server:"+strconv.Itoa(days), func() (any, error) {
		return ac.agg.ServerStats(r.Context(), days)
	})
}

func (ac *ApiController) GetEvents(w http.ResponseWriter, r *http.Request) {
	limit := intParam(r, "limit", defaultEventLimit, maxEventLimit)
	filter := models.EventFilter{
		Type:       models.EventType(r.URL.Query().Get("type")),
		PlayerName: r.URL.Query().Get("player"),
	}
	cacheKey := "events:" + string(filter.Type) + ":" + filter.PlayerName + ":" + strconv.Itoa(limit)
	ac.serveFromCacheOrCompute(w, cacheKey, func() (any, error) {
		events, err := ac.agg.RecentEvents(r.Context(), filter, limit)
		if err != nil {
			return nil, err
		}
		if events == nil {
			events = []models.Event{}
		}
		return events, nil
	})
}
