package config

import (
	"fmt"
	"time"

	"github.com/kelseyhightower/envconfig"
)

// -----------------------------------------------------------------------------
// Environment variable configuration guidelines:
// - required: nothing is required at load time; commands that talk to the
//   platform call Validate, so `lessons --offline` and `keys` work without
//   credentials
// - default: booking cadence mirrors the platform's 48h booking window
// -----------------------------------------------------------------------------

type Config struct {
	Sportivity SportivityConfig
	Booking    BookingConfig
	Store      StoreConfig
	Notify     NotifyConfig
	Log        LogConfig

	Timezone    string `envconfig:"TIMEZONE" default:"Europe/Amsterdam"`
	TargetsFile string `envconfig:"TARGETS_FILE"`
	DatabaseURL string `envconfig:"DATABASE_URL"`
	StatusAddr  string `envconfig:"STATUS_ADDR"`
}

type SportivityConfig struct {
	BaseURL    string `envconfig:"SPORTIVITY_URL" default:"https://bossnl.mendixcloud.com"`
	Username   string `envconfig:"SPORTIVITY_USERNAME"`
	Password   string `envconfig:"SPORTIVITY_PASSWORD"`
	LocationID string `envconfig:"LOCATION_ID" default:"13686"`

	// App identity sent with every request.
	IOSVersion string `envconfig:"IOS_VERSION" default:"18.0"`
	AppVersion string `envconfig:"APP_VERSION" default:"2004302"`
	BundleID   string `envconfig:"BUNDLE_ID" default:"com.boss.sportivity"`

	DryRun           bool          `envconfig:"DRY_RUN" default:"true"`
	MaxRetryAttempts int           `envconfig:"MAX_RETRY_ATTEMPTS" default:"3"`
	RetryDelay       time.Duration `envconfig:"RETRY_DELAY" default:"1s"`
	HTTPTimeout      time.Duration `envconfig:"HTTP_TIMEOUT" default:"20s"`
}

type BookingConfig struct {
	WindowHours     int   `envconfig:"BOOKING_WINDOW_HOURS" default:"48"`
	BufferMinutes   int   `envconfig:"BOOKING_BUFFER_MINUTES" default:"-5"`
	WindowEndHours  int   `envconfig:"BOOKING_WINDOW_END_HOURS" default:"47"`
	MaxDailyRetries int   `envconfig:"MAX_RETRIES_FOR_FULL_LESSON" default:"4"`
	RetryHours      []int `envconfig:"RETRY_HOURS" default:"9,12,15,18"`
	LookaheadDays   int   `envconfig:"SCHEDULE_LOOKAHEAD_DAYS" default:"9"`

	RetryInterval    time.Duration `envconfig:"RETRY_INTERVAL" default:"5m"`
	CheckInterval    time.Duration `envconfig:"CHECK_INTERVAL" default:"15m"`
	BookingPause     time.Duration `envconfig:"BOOKING_PAUSE" default:"2s"`
	RecoveryInterval time.Duration `envconfig:"RECOVERY_INTERVAL" default:"1m"`
}

type StoreConfig struct {
	TokenFile      string `envconfig:"TOKEN_FILE" default:"token.enc"`
	TokenKey       string `envconfig:"TOKEN_KEY"`
	KeyringService string `envconfig:"KEYRING_SERVICE" default:"lessonsched"`
}

type NotifyConfig struct {
	EnableEmail  bool   `envconfig:"ENABLE_EMAIL" default:"true"`
	EmailFrom    string `envconfig:"EMAIL_FROM"`
	EmailTo      string `envconfig:"EMAIL_TO"`
	SenderName   string `envconfig:"EMAIL_SENDER_NAME" default:"Lessonsched"`
	SMTPServer   string `envconfig:"EMAIL_SMTP_SERVER" default:"smtp.gmail.com"`
	SMTPPort     int    `envconfig:"EMAIL_SMTP_PORT" default:"587"`
	SMTPUser     string `envconfig:"EMAIL_SMTP_USER"`
	SMTPPassword string `envconfig:"EMAIL_SMTP_PASSWORD"`

	TelegramToken  string `envconfig:"TELEGRAM_BOT_TOKEN"`
	TelegramChatID int64  `envconfig:"TELEGRAM_CHAT_ID"`

	Desktop bool `envconfig:"DESKTOP_NOTIFY" default:"false"`
}

type LogConfig struct {
	Level      string `envconfig:"LOG_LEVEL" default:"info"`
	Format     string `envconfig:"LOG_FORMAT" default:"text"`
	TimeFormat string `envconfig:"LOG_TIME_FORMAT" default:"2006-01-02 15:04:05.000"`
	File       string `envconfig:"LOG_FILE"`
}

func LoadConfig() (Config, error) {
	var cfg Config
	err := envconfig.Process("", &cfg)
	if err != nil {
		return Config{}, fmt.Errorf("failed to process env config: %w", err)
	}
	return cfg, nil
}

// Location resolves TIMEZONE. Lesson start times without an explicit offset
// are interpreted in this zone, and target rules are matched against it.
func (c Config) Location() (*time.Location, error) {
	loc, err := time.LoadLocation(c.Timezone)
	if err != nil {
		return nil, fmt.Errorf("invalid TIMEZONE %q: %w", c.Timezone, err)
	}
	return loc, nil
}

func (c Config) Validate() error {
	if c.Sportivity.BaseURL == "" {
		return fmt.Errorf("SPORTIVITY_URL must be set")
	}
	if c.Sportivity.Username == "" || c.Sportivity.Password == "" {
		return fmt.Errorf("SPORTIVITY_USERNAME and SPORTIVITY_PASSWORD must be set")
	}
	if _, err := c.Location(); err != nil {
		return err
	}
	return c.Booking.Validate()
}

func (b BookingConfig) Validate() error {
	if b.WindowHours <= 0 {
		return fmt.Errorf("BOOKING_WINDOW_HOURS must be > 0")
	}
	if b.WindowEndHours >= b.WindowHours {
		return fmt.Errorf("BOOKING_WINDOW_END_HOURS (%d) must be below BOOKING_WINDOW_HOURS (%d)", b.WindowEndHours, b.WindowHours)
	}
	for _, h := range b.RetryHours {
		if h < 0 || h > 23 {
			return fmt.Errorf("RETRY_HOURS: %d is not an hour of the day", h)
		}
	}
	if b.RetryInterval <= 0 || b.CheckInterval <= 0 {
		return fmt.Errorf("RETRY_INTERVAL and CHECK_INTERVAL must be positive")
	}
	if b.RecoveryInterval <= 0 {
		return fmt.Errorf("RECOVERY_INTERVAL must be positive")
	}
	if b.BookingPause < 0 {
		return fmt.Errorf("BOOKING_PAUSE must be >= 0")
	}
	if b.LookaheadDays < 1 {
		return fmt.Errorf("SCHEDULE_LOOKAHEAD_DAYS must be >= 1")
	}
	return nil
}

func NewTestConfig() Config {
	return Config{
		Sportivity: SportivityConfig{
			BaseURL:          "http://localhost:0",
			Username:         "test@example.com",
			Password:         "test",
			LocationID:       "13686",
			IOSVersion:       "18.0",
			AppVersion:       "2004302",
			BundleID:         "com.boss.sportivity",
			DryRun:           true,
			MaxRetryAttempts: 1,
			RetryDelay:       time.Millisecond,
			HTTPTimeout:      2 * time.Second,
		},
		Booking: BookingConfig{
			WindowHours:      48,
			BufferMinutes:    -5,
			WindowEndHours:   47,
			MaxDailyRetries:  4,
			RetryHours:       []int{9, 12, 15, 18},
			LookaheadDays:    9,
			RetryInterval:    5 * time.Minute,
			CheckInterval:    15 * time.Minute,
			BookingPause:     0,
			RecoveryInterval: time.Minute,
		},
		Store: StoreConfig{
			TokenFile:      "token.enc",
			KeyringService: "lessonsched-test",
		},
		Log: LogConfig{
			Level:      "error", // Error level only for tests
			Format:     "text",
			TimeFormat: "2006-01-02 15:04:05.000",
		},
		Timezone: "Europe/Amsterdam",
	}
}
