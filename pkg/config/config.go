package config

import (
	"log"
	"os"
	"strconv"

	"github.com/joho/godotenv"
)

type Config struct {
	Port                    string
	Env                     string
	FirebaseCredentialsPath string
	PlatformAPIBaseURL      string
	RedisAddr               string
	RedisPassword           string
	TicketSecret            string
	TicketTTLSeconds        int
	NotificationFeedSize    int
	MessagePageSize         int
}

func Load() *Config {
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, assuming environment variables are set.")
	}

	return &Config{
		Port:                    getEnv("PORT", "8080"),
		Env:                     getEnv("ENV", "development"),
		FirebaseCredentialsPath: getEnv("FIREBASE_CREDENTIALS_PATH", "./firebase_credentials.json"),
		PlatformAPIBaseURL:      getEnv("PLATFORM_API_BASE_URL", "https://api.coursecreatoracademy.com"),
		RedisAddr:               getEnv("REDIS_ADDR", ""),
		RedisPassword:           getEnv("REDIS_PASSWORD", ""),
		TicketSecret:            getEnv("REALTIME_TICKET_SECRET", "supersecretticketkey"),
		TicketTTLSeconds:        getEnvInt("REALTIME_TICKET_TTL_SECONDS", 60),
		NotificationFeedSize:    getEnvInt("NOTIFICATION_FEED_SIZE", 10),
		MessagePageSize:         getEnvInt("MESSAGE_PAGE_SIZE", 50),
	}
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if n, err := strconv.Atoi(value); err == nil {
			return n
		}
	}
	return defaultValue
}
