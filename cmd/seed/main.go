// seed inserts development sample data for local testing.
// Idempotent: skips inserts if member TM20001 already exists.
package main

import (
	"context"
	"log"
	"time"

	"github.com/google/uuid"

	"membership-backoffice/internal/config"
	"membership-backoffice/internal/credentials"
	"membership-backoffice/internal/db"
	identityrepo "membership-backoffice/internal/identity/repository"
	identityservice "membership-backoffice/internal/identity/service"
	memberdomain "membership-backoffice/internal/member/domain"
	memberrepo "membership-backoffice/internal/member/repository"
	paymentdomain "membership-backoffice/internal/payments/domain"
	paymentrepo "membership-backoffice/internal/payments/repository"
	rolesdomain "membership-backoffice/internal/roles/domain"
	rolesrepo "membership-backoffice/internal/roles/repository"
	"membership-backoffice/internal/security"
	sessionrepo "membership-backoffice/internal/session/repository"
)

type seedMember struct {
	memberNumber string
	fullName     string
	roles        []rolesdomain.Role
}

var seedMembers = []seedMember{
	{"TM20001", "Arun Pillai", []rolesdomain.Role{rolesdomain.RoleMember}},
	{"TM20002", "Priya Raman", []rolesdomain.Role{rolesdomain.RoleMember, rolesdomain.RoleCollector}},
	{"TM30001", "Meera Krishnan", []rolesdomain.Role{rolesdomain.RoleAdmin}},
}

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("config: %v", err)
	}
	if cfg.DatabaseURL == "" {
		log.Fatal("DATABASE_URL is not set; create a .env from .env.example or set DATABASE_URL")
	}

	conn, err := db.Open(cfg.DatabaseURL)
	if err != nil {
		log.Fatalf("db: %v", err)
	}
	defer conn.Close()

	ctx := context.Background()
	members := memberrepo.NewPostgresRepository(conn)

	existing, err := members.GetActiveByNumber(ctx, seedMembers[0].memberNumber)
	if err != nil {
		log.Fatalf("seed check: %v", err)
	}
	if existing != nil {
		log.Printf("seed: %s already exists, nothing to do", seedMembers[0].memberNumber)
		return
	}

	tokens, err := security.NewTestTokenProvider()
	if err != nil {
		log.Fatalf("seed tokens: %v", err)
	}
	users := identityrepo.NewPostgresRepository(conn)
	sessions := sessionrepo.NewPostgresRepository(conn)
	roles := rolesrepo.NewPostgresRepository(conn)
	collectors := paymentrepo.NewPostgresCollectorRepository(conn)
	hasher := security.NewHasher(cfg.BcryptCost)
	identity := identityservice.NewService(users, sessions, hasher, tokens, cfg.RefreshTTL())
	deriver := credentials.NewDeriver(cfg.LoginEmailDomain)

	now := time.Now().UTC()
	for _, sm := range seedMembers {
		member := &memberdomain.Member{
			ID:           uuid.NewString(),
			MemberNumber: sm.memberNumber,
			FullName:     sm.fullName,
			Status:       memberdomain.MemberStatusActive,
			CreatedAt:    now,
			UpdatedAt:    now,
		}
		if err := members.Create(ctx, member); err != nil {
			log.Fatalf("seed member %s: %v", sm.memberNumber, err)
		}

		creds := deriver.Derive(sm.memberNumber)
		user, err := identity.SignUp(ctx, creds.LoginIdentity, creds.Secret, member.ID, sm.memberNumber)
		if err != nil {
			log.Fatalf("seed auth user %s: %v", sm.memberNumber, err)
		}
		for _, role := range sm.roles {
			if err := roles.Assign(ctx, user.ID, role); err != nil {
				log.Fatalf("seed role %s/%s: %v", sm.memberNumber, role, err)
			}
		}
		log.Printf("seed: %s (%s) roles=%v", sm.memberNumber, sm.fullName, sm.roles)

		if rolesdomain.HasRole(sm.roles, rolesdomain.RoleCollector) {
			collector := &paymentdomain.Collector{
				ID:           uuid.NewString(),
				Name:         sm.fullName,
				MemberNumber: sm.memberNumber,
				Active:       true,
				CreatedAt:    now,
			}
			if err := collectors.Create(ctx, collector); err != nil {
				log.Fatalf("seed collector %s: %v", sm.fullName, err)
			}
			log.Printf("seed: collector %s", sm.fullName)
		}
	}

	log.Println("seed: done")
}
