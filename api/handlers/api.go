package handlers

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"time"

	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/jonasfh/picobell-api/api"
	"github.com/jonasfh/picobell-api/api/scheduler"
	"github.com/jonasfh/picobell-api/config"
	"github.com/jonasfh/picobell-api/databases"
	"github.com/jonasfh/picobell-api/models"
	"github.com/jonasfh/picobell-api/mongodb"
)

// App stores the router and db connection, so it can be reused
type App struct {
	Router    *mux.Router
	Config    config.Config
	Scheduler *scheduler.Scheduler
	dbHelper  databases.DatabaseHelper
}

// New creates a new mux router and all the routes
func (a *App) New() *mux.Router {
	// device API-key auth via go-guardian, user auth via session JWT
	m := api.MiddlewareDB{
		ADB:       databases.NewApartmentDatabase(a.dbHelper),
		JWTSecret: []byte(a.Config.JWTSecret),
	}
	m.SetupDeviceAuth()
	audit := api.AuditLogger{DB: databases.NewAPILogDatabase(a.dbHelper)}
	InitMetrics()

	hub := NewRingHub([]byte(a.Config.JWTSecret))
	var mailer MailSender
	if a.Config.SendgridAPIKey != "" {
		mailer = NewSendgridMailer(a.Config.SendgridAPIKey)
	}
	dispatcher := Dispatcher{
		Links:   databases.NewUserApartmentDatabase(a.dbHelper),
		Users:   databases.NewUserDatabase(a.dbHelper),
		Devices: databases.NewDeviceDatabase(a.dbHelper),
		Push:    NewExpoPushSender(a.Config.ExpoPushURL),
		Hub:     hub,
		Mail:    mailer,
	}

	d := Doorbell{
		ADB:        databases.NewApartmentDatabase(a.dbHelper),
		EDB:        databases.NewDoorbellEventDatabase(a.dbHelper),
		LDB:        databases.NewUserApartmentDatabase(a.dbHelper),
		Dispatcher: dispatcher,
		Window:     a.Config.RingValidityWindow,
	}
	auth := Auth{UDB: databases.NewUserDatabase(a.dbHelper), Config: a.Config}

	r := mux.NewRouter()
	r.Use(api.RequestIDMiddleware)
	timeout := api.TimeoutMiddleware(10 * time.Second)

	// healthchex
	r.HandleFunc("/health", healthCheckHandler)
	r.Handle("/metrics", promhttp.Handler()).Methods("GET")

	r.Handle("/auth/login", audit.Middleware(timeout(http.HandlerFunc(auth.LoginHandler)))).Methods("POST")

	// device-credentialed routes; the audit wrapper sits inside the
	// principal middleware so it can see who called
	r.Handle("/doorbell/ring", m.DeviceMiddleware(audit.Middleware(timeout(http.HandlerFunc(d.RingHandler))))).Methods("POST")
	r.Handle("/doorbell/status", m.DeviceMiddleware(audit.Middleware(timeout(http.HandlerFunc(d.StatusHandler))))).Methods("GET", "POST")

	// user-credentialed routes
	r.Handle("/doorbell/open", m.UserMiddleware(audit.Middleware(timeout(http.HandlerFunc(d.OpenHandler))))).Methods("POST")
	r.Handle("/doorbell/events", m.UserMiddleware(audit.Middleware(timeout(http.HandlerFunc(d.EventsHandler))))).Methods("GET")

	// the hub validates its own token, it arrives as a query parameter;
	// no timeout here, the connection is long-lived on purpose
	r.HandleFunc("/ws/doorbell", hub.HandleDoorbellWebSocket)

	return r
}

// Initialize is invoked by main to connect with the database and create a router
func (a *App) Initialize() error {

	client, err := databases.NewClient(&a.Config)
	if err != nil {
		// if we fail to create a new database client, then kill the pod
		zap.S().With(err).Error("failed to create new client")
		return err
	}

	a.dbHelper = databases.NewDatabase(&a.Config, client)
	err = client.Connect()
	if err != nil {
		// if we fail to connect to the database, then kill the pod
		zap.S().With(err).Error("failed to connect to database")
		return err
	}
	zap.S().Info("picobell-api has connected to the database")

	ctx, cancel := api.WithQueryTimeout(context.Background())
	defer cancel()
	if err := mongodb.EnsureIndexes(ctx, a.Config.URL, a.Config.DatabaseName); err != nil {
		zap.S().Warnw("failed to ensure indexes", "error", err)
	}

	a.Scheduler = scheduler.NewScheduler(
		databases.NewAPILogDatabase(a.dbHelper),
		a.Config.APILogRetentionDays,
	)
	a.Scheduler.Start()

	// initialize api router
	a.initializeRoutes()
	return nil

}

func (a *App) initializeRoutes() {
	a.Router = a.New()
}

func healthCheckHandler(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	b, _ := json.Marshal(models.HealthCheckResponse{
		Alive: true,
	})
	_, _ = io.WriteString(w, string(b))
}
