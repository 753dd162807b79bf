package api

import (
	"net/http"
	"time"

	"github.com/gorilla/mux"

	"breaktime.service/internal/api/handler"
	"breaktime.service/internal/core"
)

// Dependencies are the services the router exposes.
type Dependencies struct {
	Breaks     *core.BreakService
	Admin      *core.AdminService
	Store      handler.Pinger
	Location   *time.Location
	AdminToken string
}

// NewRouter sets up the gorilla/mux router and defines all API routes.
func NewRouter(deps Dependencies) *mux.Router {
	breakHandler := handler.BreakHandler{Service: deps.Breaks}
	adminHandler := handler.AdminHandler{Admin: deps.Admin, Breaks: deps.Breaks}
	healthHandler := handler.HealthHandler{Store: deps.Store, Location: deps.Location}

	r := mux.NewRouter()
	r.Use(RequestLogger)

	api := r.PathPrefix("/api/v1").Subrouter()

	api.HandleFunc("/scan", breakHandler.Scan).Methods(http.MethodPost)
	api.HandleFunc("/breaks/active", breakHandler.ActiveBreaks).Methods(http.MethodGet)
	api.HandleFunc("/health", healthHandler.Health).Methods(http.MethodGet)

	admin := api.PathPrefix("/admin").Subrouter()
	admin.Use(RequireAdmin(deps.AdminToken))

	admin.HandleFunc("/employees", adminHandler.ListEmployees).Methods(http.MethodGet)
	admin.HandleFunc("/employees", adminHandler.CreateEmployee).Methods(http.MethodPost)
	admin.HandleFunc("/employees/{id:[0-9]+}", adminHandler.UpdateEmployee).Methods(http.MethodPut)
	admin.HandleFunc("/employees/{id:[0-9]+}", adminHandler.DeleteEmployee).Methods(http.MethodDelete)
	admin.HandleFunc("/records", adminHandler.Records).Methods(http.MethodGet)
	admin.HandleFunc("/records.csv", adminHandler.RecordsCSV).Methods(http.MethodGet)
	admin.HandleFunc("/reports", adminHandler.Report).Methods(http.MethodGet)
	admin.HandleFunc("/breaks/{id:[0-9]+}", adminHandler.ForceClose).Methods(http.MethodDelete)

	return r
}
