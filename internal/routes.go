package internal

import (
	"net/http"

	"fivemon/internal/controllers"
	"fivemon/internal/providers"
)

func InitRoutes(apiController *controllers.ApiController) providers.RouterProviderInterface {
	routers := providers.NewRouterProvider()

	routers.Get("/players/online", http.HandlerFunc(apiController.GetOnlinePlayers))
	routers.Get("/players/top", http.HandlerFunc(apiController.GetTopPlayers))
	routers.Get("/player", http.HandlerFunc(apiController.GetPlayer))
	routers.Get("/stats/ping", http.HandlerFunc(apiController.GetPingStats))
	routers.Get("/stats/server", http.HandlerFunc(apiController.GetServerStats))
	routers.Get("/events", http.HandlerFunc(apiController.GetEvents))
	return routers
}
