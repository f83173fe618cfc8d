package server

import (
	"fmt"
	"net/http"
	"time"

	"github.com/didip/tollbooth/v6"
	"github.com/gorilla/handlers"
	"github.com/gorilla/mux"
	"github.com/gorilla/rpc/v2"
	rpcjson "github.com/gorilla/rpc/v2/json2"

	"github.com/pakana/projector/log"
	"github.com/pakana/projector/params"
	"github.com/pakana/projector/rpc/restapi"
	"github.com/pakana/projector/rpc/rpcapi"
)

const apiKeyHeader = "X-API-Key"

// StartAPIServer start api server
func StartAPIServer() *http.Server {
	apiPort := params.GetAPIPort()
	apiServer := params.GetConfig().APIServer
	if apiServer == nil {
		apiServer = &params.APIServerConfig{}
	}
	allowedOrigins := apiServer.AllowedOrigins

	corsOptions := []handlers.CORSOption{
		handlers.AllowedMethods([]string{"GET", "POST"}),
	}
	if len(allowedOrigins) != 0 {
		corsOptions = append(corsOptions,
			handlers.AllowedHeaders([]string{"X-Requested-With", "Content-Type", apiKeyHeader}),
			handlers.AllowedOrigins(allowedOrigins),
		)
	}

	log.Info("JSON RPC service listen and serving", "port", apiPort, "allowedOrigins", allowedOrigins,
		"maxRequestsLimit", apiServer.MaxRequestsLimit, "apiKeys", len(apiServer.APIKeys))
	svr := &http.Server{
		Addr:         fmt.Sprintf(":%v", apiPort),
		ReadTimeout:  60 * time.Second,
		WriteTimeout: 60 * time.Second,
		Handler:      handlers.CORS(corsOptions...)(initRouter(apiServer)),
	}
	go func() {
		if err := svr.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Error("ListenAndServe error", "err", err)
		}
	}()
	return svr
}

func initRouter(config *params.APIServerConfig) http.Handler {
	r := mux.NewRouter()

	rpcserver := rpc.NewServer()
	rpcserver.RegisterCodec(rpcjson.NewCodec(), "application/json")
	_ = rpcserver.RegisterService(new(rpcapi.RPCAPI), "projector")

	r.HandleFunc("/health", restapi.HealthHandler).Methods("GET")

	api := r.PathPrefix("/").Subrouter()
	api.Use(apiKeyMiddleware(config.APIKeys))
	api.Handle("/rpc", rpcserver).Methods("POST")
	api.HandleFunc("/ws/ledgers", ledgerHub.ServeWS).Methods("GET")

	v1 := api.PathPrefix("/api/v1").Subrouter()
	v1.HandleFunc("/accounts/{id}", restapi.AccountHandler).Methods("GET")
	v1.HandleFunc("/accounts/{id}/balance", restapi.BalanceHandler).Methods("GET")
	v1.HandleFunc("/accounts/{id}/trustlines", restapi.TrustlinesHandler).Methods("GET")
	v1.HandleFunc("/accounts/{id}/deltas", restapi.AccountDeltasHandler).Methods("GET")
	v1.HandleFunc("/ledgers/latest", restapi.LatestLedgerHandler).Methods("GET")
	v1.HandleFunc("/ledgers/{seq:[0-9]+}", restapi.LedgerHandler).Methods("GET")
	v1.HandleFunc("/transactions/{hash}", restapi.TransactionHandler).Methods("GET")

	r.MethodNotAllowedHandler = http.HandlerFunc(warnHandler)

	if config.MaxRequestsLimit <= 0 {
		return r
	}
	lmt := tollbooth.NewLimiter(float64(config.MaxRequestsLimit), nil)
	lmt.SetMessage(`{"code":429,"message":"too many requests"}`)
	lmt.SetMessageContentType("application/json")
	return tollbooth.LimitHandler(lmt, r)
}

func apiKeyMiddleware(apiKeys []string) mux.MiddlewareFunc {
	allowed := make(map[string]struct{}, len(apiKeys))
	for _, key := range apiKeys {
		allowed[key] = struct{}{}
	}
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if len(allowed) != 0 {
				key := r.Header.Get(apiKeyHeader)
				if key == "" {
					key = r.URL.Query().Get("api_key")
				}
				if _, ok := allowed[key]; !ok {
					log.Debug("reject request with wrong api key", "uri", r.RequestURI, "remote", r.RemoteAddr)
					http.Error(w, "invalid api key", http.StatusUnauthorized)
					return
				}
			}
			next.ServeHTTP(w, r)
		})
	}
}

func warnHandler(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusMethodNotAllowed)
	fmt.Fprintf(w, "Forbid '%v' on '%v'\n", r.Method, r.RequestURI)
}
