package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"movierental/internal/models"
	"movierental/internal/pricing"
)

// AuthProfile is one set of Basic-auth credentials and the role it grants.
type AuthProfile struct {
	Username string
	Password string
	Role     models.Role
}

type App struct {
	ServerAddr  string
	DatabaseURL string
	Pricing     pricing.Config
	Profiles    []AuthProfile
}

// Load reads configuration from the environment. Missing required variables
// are reported as errors rather than panics so main can log and exit.
func Load() (App, error) {
	cfg := App{
		ServerAddr:  getenv("SERVER_ADDR", ":8080"),
		DatabaseURL: os.Getenv("DATABASE_URL"),
		Pricing: pricing.Config{
			NewLimitYears:     getenvFloat("PRICING_NEW_LIMIT_YEARS", 1),
			RegularLimitYears: getenvFloat("PRICING_REGULAR_LIMIT_YEARS", 3),
			RentalRates: pricing.Rates{
				New:     getenvCents("PRICING_RENTAL_NEW_CENTS", 500),
				Regular: getenvCents("PRICING_RENTAL_REGULAR_CENTS", 350),
				Old:     getenvCents("PRICING_RENTAL_OLD_CENTS", 200),
			},
			FeeRates: pricing.Rates{
				New:     getenvCents("PRICING_FEE_NEW_CENTS", 250),
				Regular: getenvCents("PRICING_FEE_REGULAR_CENTS", 150),
				Old:     getenvCents("PRICING_FEE_OLD_CENTS", 100),
			},
		},
	}

	if cfg.DatabaseURL == "" {
		return App{}, fmt.Errorf("required env DATABASE_URL is missing")
	}

	profiles, err := parseProfiles(getenv("AUTH_PROFILES", ""))
	if err != nil {
		return App{}, err
	}
	cfg.Profiles = profiles

	return cfg, nil
}

// parseProfiles parses "user:pass:ROLE" entries separated by commas, e.g.
// "clerk:secret:EMPLOYEE,boss:topsecret:MANAGER".
func parseProfiles(raw string) ([]AuthProfile, error) {
	if raw == "" {
		return nil, nil
	}

	var profiles []AuthProfile
	for _, entry := range strings.Split(raw, ",") {
		parts := strings.Split(strings.TrimSpace(entry), ":")
		if len(parts) != 3 {
			return nil, fmt.Errorf("invalid AUTH_PROFILES entry %q, want user:pass:role", entry)
		}
		role := models.Role(strings.ToUpper(parts[2]))
		if role != models.RoleEmployee && role != models.RoleManager {
			return nil, fmt.Errorf("invalid role %q in AUTH_PROFILES entry %q", parts[2], entry)
		}
		profiles = append(profiles, AuthProfile{Username: parts[0], Password: parts[1], Role: role})
	}
	return profiles, nil
}

func getenv(k, def string) string {
	if v := os.Getenv(k); v != "" {
		return v
	}
	return def
}

func getenvFloat(k string, def float64) float64 {
	if v := os.Getenv(k); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			return f
		}
	}
	return def
}

func getenvCents(k string, def int64) int64 {
	if v := os.Getenv(k); v != "" {
		if n, err := strconv.ParseInt(v, 10, 64); err == nil {
			return n
		}
	}
	return def
}
