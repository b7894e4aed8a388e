package config

import "time"

type Auth struct {
	// JWTSecret signs access tokens. Must be at least 32 bytes.
	JWTSecret string `env:"AUTH_JWT_SECRET,required"`

	TokenLifetime time.Duration `env:"AUTH_TOKEN_LIFETIME" envDefault:"30m"`

	// BcryptCost of 0 falls back to the bcrypt default.
	BcryptCost int `env:"AUTH_BCRYPT_COST" envDefault:"0"`
}
