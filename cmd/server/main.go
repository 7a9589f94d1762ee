package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"membership-backoffice/internal/audit"
	auditrepo "membership-backoffice/internal/audit/repository"
	"membership-backoffice/internal/authn"
	"membership-backoffice/internal/config"
	"membership-backoffice/internal/credentials"
	"membership-backoffice/internal/db"
	identityrepo "membership-backoffice/internal/identity/repository"
	identityservice "membership-backoffice/internal/identity/service"
	memberrepo "membership-backoffice/internal/member/repository"
	memberservice "membership-backoffice/internal/member/service"
	"membership-backoffice/internal/notify"
	paymentrepo "membership-backoffice/internal/payments/repository"
	paymentservice "membership-backoffice/internal/payments/service"
	rolesrepo "membership-backoffice/internal/roles/repository"
	rolesservice "membership-backoffice/internal/roles/service"
	"membership-backoffice/internal/security"
	"membership-backoffice/internal/server"
	sessionrepo "membership-backoffice/internal/session/repository"
	otelsetup "membership-backoffice/internal/telemetry/otel"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("config: %v", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	providers, err := otelsetup.NewProviders(ctx, cfg.OTLPEndpoint, "membership-backoffice", cfg.Env != "production")
	if err != nil {
		log.Fatalf("telemetry: %v", err)
	}
	providers.SetGlobal()
	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		_ = providers.Shutdown(shutdownCtx)
	}()

	tokens, err := buildTokenProvider(cfg)
	if err != nil {
		log.Fatalf("jwt keys: %v", err)
	}

	var (
		members    memberrepo.Repository
		users      identityrepo.Repository
		sessions   sessionrepo.Repository
		roles      rolesrepo.Repository
		collectors paymentrepo.CollectorRepository
		requests   paymentrepo.PaymentRequestRepository
		auditLogs  auditrepo.Repository
	)

	if cfg.DatabaseURL != "" {
		conn, err := db.Open(cfg.DatabaseURL)
		if err != nil {
			log.Fatalf("db: %v", err)
		}
		defer conn.Close()
		members = memberrepo.NewPostgresRepository(conn)
		users = identityrepo.NewPostgresRepository(conn)
		sessions = sessionrepo.NewPostgresRepository(conn)
		roles = rolesrepo.NewPostgresRepository(conn)
		collectors = paymentrepo.NewPostgresCollectorRepository(conn)
		requests = paymentrepo.NewPostgresPaymentRequestRepository(conn)
		auditLogs = auditrepo.NewPostgresRepository(conn)
	} else {
		log.Println("DATABASE_URL not set; using in-memory stores (development only)")
		members = memberrepo.NewMemoryRepository()
		users = identityrepo.NewMemoryRepository()
		sessions = sessionrepo.NewMemoryRepository()
		roles = rolesrepo.NewMemoryRepository()
		collectors = paymentrepo.NewMemoryCollectorRepository()
		requests = paymentrepo.NewMemoryPaymentRequestRepository()
		auditLogs = auditrepo.NewMemoryRepository()
	}

	memberCache := memberrepo.NewCachedRepository(members)
	auditLogger := audit.NewLogger(auditLogs, nil)
	hasher := security.NewHasher(cfg.BcryptCost)
	identity := identityservice.NewService(users, sessions, hasher, tokens, cfg.RefreshTTL())
	deriver := credentials.NewDeriver(cfg.LoginEmailDomain)
	verifier := memberservice.NewVerifier(members)
	payments := paymentservice.NewService(collectors, requests, memberCache, auditLogger)
	rolesRegistry := rolesservice.NewRegistry(roles)

	// Sign-out and failed-refresh events carry no subject, so the whole
	// role cache is dropped; the next request per subject re-syncs.
	defer identity.Subscribe(func(ev authn.Event) {
		switch ev.Type {
		case authn.EventSignedOut, authn.EventTokenRefreshFailed:
			rolesRegistry.DropAll()
		}
	})()

	hub := notify.NewHub()
	for _, table := range []string{"members", "payment_requests"} {
		hub.Subscribe(table, func(table string) {
			log.Printf("notify: %s changed", table)
			memberCache.Invalidate(memberrepo.ListCacheKey)
		})
	}
	hub.Subscribe("user_roles", func(table string) {
		log.Printf("notify: %s changed", table)
		rolesRegistry.Invalidate()
	})
	if cfg.DatabaseURL != "" {
		listener := notify.NewListener(cfg.DatabaseURL, hub)
		go func() {
			if err := listener.Run(ctx); err != nil && ctx.Err() == nil {
				log.Printf("notify: listener stopped: %v", err)
			}
		}()
	}

	handlers := server.NewHandlers(verifier, deriver, identity, memberCache, payments, auditLogger, auditLogs)
	router := server.NewRouter(handlers, identity, rolesRegistry)

	srv := &http.Server{
		Addr:              cfg.HTTPAddr,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		log.Printf("HTTP server listening on %s", cfg.HTTPAddr)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("serve: %v", err)
		}
	}()

	<-ctx.Done()

	log.Println("shutting down HTTP server...")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Printf("shutdown: %v", err)
	}
	log.Println("HTTP server stopped")
}

func buildTokenProvider(cfg *config.Config) (*security.TokenProvider, error) {
	if cfg.JWTPrivateKey == "" || cfg.JWTPublicKey == "" {
		log.Println("JWT keys not set; using generated test keys (development only)")
		return security.NewTestTokenProvider()
	}
	priv, err := security.ParsePrivateKey(cfg.JWTPrivateKey)
	if err != nil {
		return nil, err
	}
	pub, err := security.ParsePublicKey(cfg.JWTPublicKey)
	if err != nil {
		return nil, err
	}
	return security.NewTokenProvider(priv, pub, cfg.JWTIssuer, cfg.JWTAudience, cfg.AccessTTL(), cfg.RefreshTTL()), nil
}
