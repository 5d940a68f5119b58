// Package config предоставляет структуры и функцию для парсинга и загрузки конфига.
// Конфиг создаётся один раз при старте процесса и передаётся по ссылке
// в сервисы — бизнес-логика не читает настройки из глобального состояния.
package config

import (
	"log"
	"os"
	"time"

	"github.com/ilyakaznacheev/cleanenv"
)

// Config общая структура для хранения настроек.
type Config struct {
	Env                     string `yaml:"env" env-default:"local"`
	StorageConnectionString string `yaml:"storage_connection_string"`
	MigrationsPath          string `yaml:"migrations_path" env-default:"./migrations"`
	AppBaseURL              string `yaml:"app_base_url"`
	GuestEmail              string `yaml:"guest_email" env-default:"guest@brainxcel.io"`
	RedisConnection         `yaml:"redis_connection"`
	HTTPServer              `yaml:"http_server"`
	Tokens                  `yaml:"tokens"`
	PaymentGateway          `yaml:"payment_gateway"`
	RabbitMQ                `yaml:"rabbitmq"`
	SMTP                    `yaml:"smtp"`
}

// HTTPServer структура для настройки сервера.
type HTTPServer struct {
	AddressHTTP string        `yaml:"addresshttp" env-default:":8080"`
	TimeoutHTTP time.Duration `yaml:"timeouthttp" env-default:"5s"`
	IdleTimeout time.Duration `yaml:"idle_timeout" env-default:"60s"`
}

// RedisConnection структура для настройки подключения к redis.
type RedisConnection struct {
	AddressRedis string        `yaml:"addressredis"`
	Password     string        `yaml:"password"`
	User         string        `yaml:"user"`
	DB           int           `yaml:"db"`
	MaxRetries   int           `yaml:"max_retries" env-default:"3"`
	DialTimeout  time.Duration `yaml:"dial_timeout" env-default:"5s"`
	TimeoutRedis time.Duration `yaml:"timeoutredis" env-default:"3s"`
}

// Tokens структура с секретами и сроками жизни пары токенов,
// а также сроком жизни одноразового токена восстановления пароля.
type Tokens struct {
	AccessSecret  string        `yaml:"access_secret"`
	RefreshSecret string        `yaml:"refresh_secret"`
	AccessTTL     time.Duration `yaml:"access_ttl" env-default:"1h"`
	RefreshTTL    time.Duration `yaml:"refresh_ttl" env-default:"168h"`
	ResetTTL      time.Duration `yaml:"reset_ttl" env-default:"15m"`
}

// PaymentGateway структура для настройки клиента платёжного шлюза.
type PaymentGateway struct {
	KeyID        string        `yaml:"key_id"`
	KeySecret    string        `yaml:"key_secret"`
	APIURL       string        `yaml:"api_url"`
	PlanID       string        `yaml:"plan_id"`
	PlanDuration time.Duration `yaml:"plan_duration" env-default:"8760h"`
}

// RabbitMQ структура для настройки подключения к брокеру сообщений.
type RabbitMQ struct {
	RabbitMQURL        string        `yaml:"url"`
	RabbitMQMaxRetries int           `yaml:"max_retries" env-default:"5"`
	RabbitMQRetryDelay time.Duration `yaml:"retry_delay" env-default:"3s"`
}

// SMTP структура для настройки почтового транспорта.
type SMTP struct {
	SMTPHost string `yaml:"host"`
	SMTPPort string `yaml:"port"`
	SMTPUser string `yaml:"user"`
	SMTPPass string `yaml:"pass"`
}

// MustLoad загружает конфиг по пути из переменной окружения CONFIG_PATH.
// Завершает процесс, если файл отсутствует или не читается.
func MustLoad() *Config {
	configPath := os.Getenv("CONFIG_PATH")
	if configPath == "" {
		log.Fatal("CONFIG_PATH is not set")
	}
	if _, err := os.Stat(configPath); os.IsNotExist(err) {
		log.Fatalf("file: %s - does not exist", configPath)
	}
	var cfg Config

	if err := cleanenv.ReadConfig(configPath, &cfg); err != nil {
		log.Fatalf("cannot read config: %s", err)
	}
	return &cfg
}
