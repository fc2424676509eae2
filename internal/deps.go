package internal

import (
	"leetgym/api/internal/quota"
	"leetgym/api/internal/service"
	"leetgym/api/pkg/security"

	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"
)

type Deps struct {
	DB       *gorm.DB
	Redis    *redis.Client // nil when quotas are kept in memory
	Argon    *security.ArgonHash
	Tokens   *security.TokenIssuer
	Quota    *quota.Limiter
	LLM      *service.LLM
	Problems *service.ProblemClient
	Exporter *service.Exporter // nil when no bucket is configured

	// PublicURL is the base of links handed to users, e.g. password resets.
	// Empty means derive it from the request
	PublicURL string
}
