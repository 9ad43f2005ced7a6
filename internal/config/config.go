package config

import (
	"fmt"
	"os"
	"path/filepath"
	"reflect"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
	"github.com/mitchellh/mapstructure"
	"github.com/sirupsen/logrus"
	"github.com/spf13/viper"

	"github.com/vfg2006/marketing-analyst/internal/domain"
)

type Config struct {
	App        App                      `mapstructure:",squash"`
	Server     Server                   `mapstructure:",squash"`
	History    History                  `mapstructure:",squash"`
	Database   Database                 `mapstructure:",squash"`
	Redis      Redis                    `mapstructure:",squash"`
	Analysis   Analysis                 `mapstructure:",squash"`
	Evaluator  domain.EvaluationWeights `mapstructure:",squash"`
	ReportSync ReportSync               `mapstructure:",squash"`
	Auth       Auth                     `mapstructure:",squash"`
}

type App struct {
	LogLevel string `mapstructure:"log_level" validate:"oneof=trace debug info warn warning error fatal panic"`
	Env      string `mapstructure:"app_env"`
}

type Server struct {
	Host           string   `mapstructure:"host"`
	Port           string   `mapstructure:"port" validate:"required"`
	AllowedOrigins []string `mapstructure:"cors_allowed_origins"`
}

// Backends do histórico de execuções
const (
	HistoryMemory   = "memory"
	HistoryPostgres = "postgres"
	HistoryRedis    = "redis"
)

type History struct {
	Backend string        `mapstructure:"history_backend" validate:"oneof=memory postgres redis"`
	TTL     time.Duration `mapstructure:"history_ttl" validate:"gte=0"`
}

type Database struct {
	DSN      string `mapstructure:"-"`
	Driver   string `mapstructure:"database_driver"`
	Password string `mapstructure:"database_password"`
	URL      string `mapstructure:"database_url"`
	User     string `mapstructure:"database_user"`
}

type Redis struct {
	Addr     string `mapstructure:"redis_addr"`
	Password string `mapstructure:"redis_password"`
	DB       int    `mapstructure:"redis_db" validate:"gte=0"`
}

type Analysis struct {
	DataPath         string  `mapstructure:"data_path"`
	DefaultTask      string  `mapstructure:"default_task" validate:"required"`
	ReportOutput     string  `mapstructure:"report_output"`
	LowCTRThreshold  float64 `mapstructure:"low_ctr_threshold" validate:"gte=0"`
	LowROASThreshold float64 `mapstructure:"low_roas_threshold" validate:"gte=0"`
	MaxUploadBytes   int64   `mapstructure:"max_upload_bytes" validate:"gt=0"`
}

type ReportSync struct {
	CronSchedule      string `mapstructure:"report_sync_cron" validate:"required_if=Enabled true"`
	DataDir           string `mapstructure:"report_sync_data_dir"`
	Pattern           string `mapstructure:"report_sync_pattern"`
	OutputDir         string `mapstructure:"report_sync_output_dir"`
	OutputFormat      string `mapstructure:"report_sync_output_format" validate:"oneof=txt json xlsx"`
	MaxConcurrentJobs int    `mapstructure:"report_sync_max_concurrent_jobs" validate:"gte=1"`
	RetentionDays     int    `mapstructure:"report_sync_retention_days" validate:"gte=0"`
	Enabled           bool   `mapstructure:"report_sync_enabled"`
}

type Auth struct {
	Secret string `mapstructure:"auth_secret"`
}

func SetDefaults() {
	viper.SetDefault("HOST", "localhost")
	viper.SetDefault("PORT", 8000)
	viper.SetDefault("CORS_ALLOWED_ORIGINS", []string{"http://localhost:3000"})

	viper.SetDefault("HISTORY_BACKEND", HistoryMemory)
	viper.SetDefault("HISTORY_TTL", "720h") // 30 dias, usado pelo backend redis

	viper.SetDefault("DATABASE_DRIVER", "postgres")
	viper.SetDefault("DATABASE_URL", "localhost:5432/analyst?sslmode=disable")
	viper.SetDefault("DATABASE_USER", "postgres")
	viper.SetDefault("DATABASE_PASSWORD", "root")

	viper.SetDefault("REDIS_ADDR", "localhost:6379")
	viper.SetDefault("REDIS_PASSWORD", "")
	viper.SetDefault("REDIS_DB", 0)

	viper.SetDefault("DATA_PATH", "data/sample_ads.csv")
	viper.SetDefault("DEFAULT_TASK", "Analyze recent sales and propose improvements")
	viper.SetDefault("REPORT_OUTPUT", "")
	viper.SetDefault("LOW_CTR_THRESHOLD", 0.01)
	viper.SetDefault("LOW_ROAS_THRESHOLD", 0.5)
	viper.SetDefault("MAX_UPLOAD_BYTES", 10<<20) // 10MB

	viper.SetDefault("EVALUATOR_COMPLETENESS_WEIGHT", domain.DefaultCompletenessWeight)
	viper.SetDefault("EVALUATOR_COVERAGE_WEIGHT", domain.DefaultCoverageWeight)
	viper.SetDefault("EVALUATOR_DATA_AVAILABILITY_WEIGHT", domain.DefaultDataAvailabilityWeight)

	// Defaults para análise agendada de relatórios
	viper.SetDefault("REPORT_SYNC_CRON", "0 6 * * *") // Todos os dias às 6h da manhã
	viper.SetDefault("REPORT_SYNC_DATA_DIR", "data")
	viper.SetDefault("REPORT_SYNC_PATTERN", "*.csv")
	viper.SetDefault("REPORT_SYNC_OUTPUT_DIR", "reports")
	viper.SetDefault("REPORT_SYNC_OUTPUT_FORMAT", "txt")
	viper.SetDefault("REPORT_SYNC_MAX_CONCURRENT_JOBS", 3) // 3 arquivos em paralelo
	viper.SetDefault("REPORT_SYNC_RETENTION_DAYS", 30)
	viper.SetDefault("REPORT_SYNC_ENABLED", false)

	viper.SetDefault("AUTH_SECRET", "")

	viper.SetDefault("LOG_LEVEL", "info")
	viper.SetDefault("APP_ENV", "development")
}

func NewConfig() (*Config, error) {
	// Primeiro carregar o arquivo .env usando godotenv
	loadEnvFile()

	config := &Config{}

	SetDefaults()

	viper.SetConfigType("env")
	viper.SetConfigFile(".env")
	viper.AutomaticEnv()

	// Leitura opcional, as variáveis já foram carregadas pelo godotenv
	if err := viper.ReadInConfig(); err != nil {
		logrus.Debug("Usando variáveis de ambiente (viper não conseguiu ler .env): ", err)
	}

	err := viper.Unmarshal(&config, viper.DecodeHook(
		mapstructure.ComposeDecodeHookFunc(
			mapstructure.StringToTimeDurationHookFunc(),
			mapstructure.StringToSliceHookFunc(","),
		),
	))
	if err != nil {
		return nil, err
	}

	config.Database.DSN = fmt.Sprintf(
		"%s://%s:%s@%s",
		config.Database.Driver,
		config.Database.User,
		config.Database.Password,
		config.Database.URL,
	)

	if err := config.Validate(); err != nil {
		return nil, err
	}

	return config, nil
}

// Validate verifica os intervalos das configurações após o carregamento
func (c *Config) Validate() error {
	v := validator.New()

	// Mensagens de erro usam o nome da variável de ambiente
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("mapstructure"), ",", 2)[0]
		if name == "" || name == "-" {
			return fld.Name
		}
		return strings.ToUpper(name)
	})

	if err := v.Struct(c); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}

	if c.Evaluator.Total() <= 0 {
		return fmt.Errorf("invalid configuration: evaluator weights must sum to a positive value")
	}

	return nil
}

// Função auxiliar para carregar o arquivo .env usando godotenv
func loadEnvFile() {
	cwd, err := os.Getwd()
	if err != nil {
		logrus.Warn("Não foi possível obter o diretório atual:", err)
		return
	}

	// Tentar várias localizações possíveis para o arquivo .env
	locations := []string{
		filepath.Join(cwd, ".env"),               // Diretório atual
		filepath.Join(filepath.Dir(cwd), ".env"), // Diretório pai
		filepath.Join(cwd, "../../.env"),         // Dois diretórios acima
	}

	for _, location := range locations {
		if err := godotenv.Load(location); err == nil {
			logrus.Debug("Arquivo .env carregado de: ", location)
			return
		}
	}

	logrus.Debug("Nenhum arquivo .env encontrado, usando variáveis de ambiente")
}
