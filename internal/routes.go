package internal

import (
	"net/http"

	"livenotes/internal/controllers"
	"livenotes/internal/providers"
)

func InitRoutes(apiController *controllers.ApiController) providers.RouterProviderInterface {
	routers := providers.NewRouterProvider()

	routers.Post("/points", http.HandlerFunc(apiController.RecordPoint))
	routers.Get("/sessions", http.HandlerFunc(apiController.ListSessions))
	routers.Get("/export", http.HandlerFunc(apiController.Export))
	routers.Post("/delete", http.HandlerFunc(apiController.DeleteSession))
	routers.Post("/clear", http.HandlerFunc(apiController.Clear))
	routers.Post("/compact", http.HandlerFunc(apiController.Compact))
	routers.Get("/options", http.HandlerFunc(apiController.GetOptions))
	routers.Post("/options", http.HandlerFunc(apiController.SetOptions))
	return routers
}
