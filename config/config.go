package config

import (
	"log"
	"os"
	"strconv"

	"github.com/joho/godotenv"
)

// Config holds application configuration
type Config struct {
	Port   string
	AppEnv string
	JWTKey string

	// Payment gateways
	PaymentMode       string // live | simulated
	RazorpayKeyID     string
	RazorpayKeySecret string
	StripeSecretKey   string

	// Base URL used to build public certificate verification links
	PublicBaseURL string

	// Database connection pool
	DBMaxOpenConns int
	DBMaxIdleConns int

	EmailSender string
	Password    string // SMTP Password
}

// AppConfig is a global variable to access configuration
var AppConfig *Config

// LoadConfig initializes configuration from environment variables or defaults
func LoadConfig() {
	// Load .env file if it exists
	if err := godotenv.Load(); err != nil {
		log.Println("Warning: .env file not found. Using system environment variables.")
	}

	AppConfig = &Config{
		Port:   getEnv("PORT", "3000"),
		AppEnv: getEnv("APP_ENV", "development"),
		JWTKey: getEnv("JWT_SECRET_KEY", "defaultSecret"),

		PaymentMode:       getEnv("PAYMENT_MODE", ""),
		RazorpayKeyID:     getEnv("RAZORPAY_KEY_ID", ""),
		RazorpayKeySecret: getEnv("RAZORPAY_KEY_SECRET", ""),
		StripeSecretKey:   getEnv("STRIPE_SECRET_KEY", ""),

		PublicBaseURL: getEnv("PUBLIC_BASE_URL", "http://localhost:3000"),

		DBMaxOpenConns: getEnvInt("DB_MAX_OPEN_CONNS", 10),
		DBMaxIdleConns: getEnvInt("DB_MAX_IDLE_CONNS", 5),

		EmailSender: getEnv("EMAIL_SENDER", ""),
		Password:    getEnv("PASSWORD", ""),
	}

	// When no payment mode is set, fall back to simulated only if no gateway
	// credentials exist at all.
	if AppConfig.PaymentMode == "" {
		if AppConfig.RazorpayKeyID == "" && AppConfig.StripeSecretKey == "" {
			AppConfig.PaymentMode = "simulated"
		} else {
			AppConfig.PaymentMode = "live"
		}
	}

	if AppConfig.PaymentMode != "live" && AppConfig.PaymentMode != "simulated" {
		log.Fatalf("Invalid PAYMENT_MODE %q. Use live or simulated.", AppConfig.PaymentMode)
	}

	// Simulated gateways always report payments as successful. Never allow
	// that in production.
	if AppConfig.PaymentMode == "simulated" && AppConfig.AppEnv == "production" {
		log.Fatal("PAYMENT_MODE=simulated is not allowed when APP_ENV=production")
	}

	if AppConfig.PaymentMode == "simulated" {
		log.Println("Warning: Running in simulated payment mode. Gateway responses are fabricated.")
	}

	// Validate critical configuration
	if AppConfig.JWTKey == "defaultSecret" {
		log.Println("Warning: Using default JWT_SECRET_KEY. Update it in your environment.")
	}
}

// getEnv retrieves an environment variable or returns a default value
func getEnv(key, defaultValue string) string {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	return value
}

// getEnvInt retrieves an environment variable as an integer or returns the default integer value
func getEnvInt(key string, defaultValue int) int {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	intValue, err := strconv.Atoi(value)
	if err != nil {
		log.Printf("Error converting environment variable %s to int: %v", key, err)
		return defaultValue
	}
	return intValue
}
