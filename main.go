package main

import (
	"net/http"
	"os"
	"time"

	ghandlers "github.com/gorilla/handlers"
	"github.com/gorilla/mux"
	"go.uber.org/zap"

	"payment-portal/auth"
	"payment-portal/config"
	"payment-portal/database"
	"payment-portal/handlers"
	"payment-portal/store"
)

func main() {
	cfg := config.Load()

	logger, err := zap.NewProduction()
	if err != nil {
		panic(err)
	}
	defer logger.Sync()
	log := logger.Sugar()

	db, err := database.Connect(cfg)
	if err != nil {
		log.Fatalw("database connection failed", "error", err)
	}
	defer db.Close()
	log.Infow("database connection established")

	hasher := auth.NewBcryptHasher()
	tokens := auth.NewManager(cfg.JWTSecret, cfg.JWTTTL)
	registry := store.NewRegistry(db, hasher, cfg.QueryTimeout)
	ledger := store.NewLedger(db, cfg.QueryTimeout)
	h := handlers.New(registry, ledger, tokens, log)

	r := mux.NewRouter()
	api := r.PathPrefix("/api").Subrouter()

	api.HandleFunc("/health", h.Health).Methods("GET")
	api.HandleFunc("/customer/register", h.Register).Methods("POST")
	api.HandleFunc("/customer/login", h.CustomerLogin).Methods("POST")
	api.HandleFunc("/employee/login", h.EmployeeLogin).Methods("POST")

	api.HandleFunc("/payment/create", tokens.Require(auth.RoleCustomer, h.CreatePayment)).Methods("POST")

	api.HandleFunc("/transactions", tokens.Require(auth.RoleVerifier, h.ListTransactions)).Methods("GET")
	api.HandleFunc("/transaction/{id:[0-9]+}/verify", tokens.Require(auth.RoleVerifier, h.VerifyTransaction)).Methods("PUT")
	api.HandleFunc("/transactions/submit-swift", tokens.Require(auth.RoleVerifier, h.SubmitSwift)).Methods("POST")
	api.HandleFunc("/transactions/export", tokens.Require(auth.RoleVerifier, h.Export)).Methods("GET")

	cors := ghandlers.CORS(
		ghandlers.AllowedOrigins([]string{cfg.FrontendOrigin}),
		ghandlers.AllowedMethods([]string{"GET", "POST", "PUT", "OPTIONS"}),
		ghandlers.AllowedHeaders([]string{"Content-Type", "Authorization"}),
		ghandlers.AllowCredentials(),
	)

	srv := &http.Server{
		Addr:         cfg.ListenAddr,
		Handler:      ghandlers.LoggingHandler(os.Stdout, cors(r)),
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	log.Infow("server is running", "addr", cfg.ListenAddr)
	log.Fatalw("server stopped", "error", srv.ListenAndServe())
}
