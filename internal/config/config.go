package config

import (
	"log"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	MongoURI string
	MongoDB  string
	Port     string

	// Identidad: "firebase" en producción, "jwt" para desarrollo local
	AuthMode                string
	FirebaseProjectID       string
	FirebaseCredentialsJSON string
	JWTSecret               string
	AdminEmails             []string

	CORSOrigins []string

	UndoWindow        time.Duration
	RedirectDelay     time.Duration
	CacheTTL          time.Duration
	MostSellerTopN    int
	MostSellerRefresh string
	PendingSweep      string
	PendingMaxAge     time.Duration

	ImageManifest string
}

func LoadConfig() *Config {
	// Solo cargar .env en desarrollo local
	// En producción esto se ignora automáticamente
	if _, err := os.Stat(".env"); err == nil {
		err := godotenv.Load()
		if err != nil {
			log.Println("⚠️ Error loading .env file:", err)
		} else {
			log.Println("✅ .env file loaded successfully")
		}
	} else {
		log.Println("🌐 Using system environment variables")
	}

	return &Config{
		MongoURI: getEnv("MONGO_URI", ""),
		MongoDB:  getEnv("MONGO_DB", "groceryMart"),
		Port:     getEnv("PORT", "8080"),

		AuthMode:                getEnv("AUTH_MODE", "firebase"),
		FirebaseProjectID:       getEnv("FIREBASE_PROJECT_ID", ""),
		FirebaseCredentialsJSON: getEnv("FIREBASE_CREDENTIALS_JSON", ""),
		JWTSecret:               getEnv("JWT_SECRET", ""),
		AdminEmails:             getList("ADMIN_EMAILS", nil),

		CORSOrigins: getList("CORS_ORIGINS", []string{"*"}),

		UndoWindow:        getDuration("UNDO_WINDOW", 10*time.Second),
		RedirectDelay:     getDuration("REDIRECT_DELAY", 3*time.Second),
		CacheTTL:          getDuration("CACHE_TTL", 2*time.Minute),
		MostSellerTopN:    getInt("MOST_SELLER_TOP_N", 10),
		MostSellerRefresh: getEnv("MOST_SELLER_REFRESH", "@every 5m"),
		PendingSweep:      getEnv("PENDING_SWEEP", "@midnight"),
		PendingMaxAge:     getDuration("PENDING_MAX_AGE", 24*time.Hour),

		ImageManifest: getEnv("IMAGE_MANIFEST", ""),
	}
}

func getEnv(key, fallback string) string {
	if value, ok := os.LookupEnv(key); ok {
		return value
	}
	return fallback
}

func getInt(key string, fallback int) int {
	value, ok := os.LookupEnv(key)
	if !ok {
		return fallback
	}
	n, err := strconv.Atoi(value)
	if err != nil {
		log.Printf("⚠️ Invalid %s=%q, using %d", key, value, fallback)
		return fallback
	}
	return n
}

func getDuration(key string, fallback time.Duration) time.Duration {
	value, ok := os.LookupEnv(key)
	if !ok {
		return fallback
	}
	d, err := time.ParseDuration(value)
	if err != nil {
		log.Printf("⚠️ Invalid %s=%q, using %s", key, value, fallback)
		return fallback
	}
	return d
}

// getList lee una lista separada por comas
func getList(key string, fallback []string) []string {
	value, ok := os.LookupEnv(key)
	if !ok || strings.TrimSpace(value) == "" {
		return fallback
	}
	var out []string
	for _, part := range strings.Split(value, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
