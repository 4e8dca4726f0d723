package config

import "os"

// Config holds everything the server reads from the environment.
type Config struct {
	Addr        string
	MongoURI    string
	MongoDB     string
	RedisAddr   string
	JwtSecret   string
	StripeKey   string
	Currency    string
	AllowedCORS []string
}

func Load() Config {
	return Config{
		Addr:      normalizeAddr(getenv("PORT", ":5000")),
		MongoURI:  getenv("MONGO_URI", "mongodb://localhost:27017"),
		MongoDB:   getenv("MONGO_DB", "cureMedixDB"),
		RedisAddr: getenv("REDIS_ADDR", "localhost:6379"),
		JwtSecret: getenv("ACCESS_TOKEN_SECRET", "your_secret_key"),
		StripeKey: getenv("STRIPE_SECRET_KEY", ""),
		Currency:  getenv("CURRENCY", "usd"),
		AllowedCORS: []string{
			"http://localhost:5173",
			"http://localhost:5174",
		},
	}
}

func getenv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func normalizeAddr(port string) string {
	if port == "" {
		return ":5000"
	}
	if port[0] != ':' {
		return ":" + port
	}
	return port
}
