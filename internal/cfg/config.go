package cfg

import (
	"log"
	"os"

	"github.com/joho/godotenv"
)

type Config struct {
	HTTPPort      string
	DBHost        string
	DBPort        string
	DBUser        string
	DBPassword    string
	DBName        string
	RedisAddr     string
	RedisPassword string
	KafkaBrokers  string
	KafkaTopic    string
	KafkaGroupID  string
	JWTSecret     string
	JWTTTL        string
	RefreshWindow string

	// Настройки клиентской части (evaluator worker)
	APIBaseURL        string
	TokenPath         string
	EvaluatorLogin    string
	EvaluatorPassword string
}

func LoadConfig() Config {

	if err := godotenv.Load(); err != nil {
		log.Println(".env not found, using environment variables")
	}

	cfg := Config{
		HTTPPort:      os.Getenv("HTTP_PORT"),
		DBHost:        os.Getenv("DB_HOST"),
		DBPort:        os.Getenv("DB_PORT"),
		DBUser:        os.Getenv("DB_USER"),
		DBPassword:    os.Getenv("DB_PASSWORD"),
		DBName:        os.Getenv("DB_NAME"),
		RedisAddr:     os.Getenv("REDIS_ADDR"),
		RedisPassword: os.Getenv("REDIS_PASSWORD"),
		KafkaBrokers:  os.Getenv("KAFKA_BROKERS"),
		KafkaTopic:    os.Getenv("KAFKA_TOPIC"),
		KafkaGroupID:  os.Getenv("KAFKA_GROUP_ID"),
		JWTSecret:     os.Getenv("JWT_SECRET"),
		JWTTTL:        os.Getenv("JWT_TTL"),
		RefreshWindow: os.Getenv("JWT_REFRESH_WINDOW"),

		APIBaseURL:        os.Getenv("API_BASE_URL"),
		TokenPath:         os.Getenv("TOKEN_PATH"),
		EvaluatorLogin:    os.Getenv("EVALUATOR_LOGIN"),
		EvaluatorPassword: os.Getenv("EVALUATOR_PASSWORD"),
	}

	return cfg
}
