package types

import "time"

// ConvertBackend identifies the tool used to turn EPUB files into MOBI.
type ConvertBackend string

const (
	BackendCalibre   ConvertBackend = "calibre"
	BackendContainer ConvertBackend = "container"
)

// KindleConfig holds settings for the ebook conversion and delivery pipeline.
type KindleConfig struct {
	// Backend selects the converter: calibre (host binary) or container.
	Backend ConvertBackend `mapstructure:"backend" json:"backend" yaml:"backend"`

	// Image is the container image providing ebook-convert when Backend is container.
	Image string `mapstructure:"image" json:"image" yaml:"image"`

	// HoldingDir receives EPUB originals once their MOBI sibling exists (default /tmp).
	HoldingDir string `mapstructure:"holding_dir" json:"holding_dir" yaml:"holding_dir"`

	// ConvertTimeout bounds a single conversion. Zero means no limit.
	ConvertTimeout time.Duration `mapstructure:"convert_timeout" json:"convert_timeout" yaml:"convert_timeout"`

	// MailTo is an optional Kindle address; when set every delivered book is mailed.
	MailTo string `mapstructure:"mail_to" json:"mail_to,omitempty" yaml:"mail_to,omitempty"`
}

// MailConfig holds SMTP settings. Credentials come from secrets, not from here,
// unless set explicitly in the config file.
type MailConfig struct {
	Host     string `mapstructure:"host" json:"host" yaml:"host"`
	Port     int    `mapstructure:"port" json:"port" yaml:"port"`
	From     string `mapstructure:"from" json:"from" yaml:"from"`
	Username string `mapstructure:"username" json:"username,omitempty" yaml:"username,omitempty"`
	Password string `mapstructure:"password" json:"-" yaml:"-"`
}

// HTTPConfig holds shared HTTP settings used by procedures that make network requests.
type HTTPConfig struct {
	// Timeout is the HTTP request timeout.
	Timeout time.Duration `mapstructure:"timeout" json:"timeout" yaml:"timeout"`

	// UserAgent is the User-Agent header sent with HTTP requests.
	UserAgent string `mapstructure:"user_agent" json:"user_agent" yaml:"user_agent"`
}

// IMDConfig holds settings for the IMD weather-station download.
type IMDConfig struct {
	HTTPConfig `mapstructure:",squash" yaml:",inline"`

	// BaseURL is the portal root, e.g. "http://imdaws.com/".
	BaseURL string `mapstructure:"base_url" json:"base_url" yaml:"base_url"`

	// DataTypes lists the station networks to fetch (AWS, ARG).
	DataTypes []string `mapstructure:"data_types" json:"data_types" yaml:"data_types"`

	// FirstState and LastState bound the inclusive range of state codes.
	FirstState int `mapstructure:"first_state" json:"first_state" yaml:"first_state"`
	LastState  int `mapstructure:"last_state" json:"last_state" yaml:"last_state"`

	// DataDir is where CSV files are written (default "data").
	DataDir string `mapstructure:"data_dir" json:"data_dir" yaml:"data_dir"`

	// Interval is the minimum spacing between consecutive portal requests.
	Interval time.Duration `mapstructure:"interval" json:"interval" yaml:"interval"`

	Username string `mapstructure:"username" json:"username,omitempty" yaml:"username,omitempty"`
	Password string `mapstructure:"password" json:"-" yaml:"-"`
}

// AppknoxConfig holds settings for the Appknox dynamic scan trigger.
type AppknoxConfig struct {
	HTTPConfig `mapstructure:",squash" yaml:",inline"`

	BaseURL string `mapstructure:"base_url" json:"base_url" yaml:"base_url"`

	// RestartDelay is the pause between shutting a scan down and starting it again.
	RestartDelay time.Duration `mapstructure:"restart_delay" json:"restart_delay" yaml:"restart_delay"`

	Username string `mapstructure:"username" json:"username,omitempty" yaml:"username,omitempty"`
	Password string `mapstructure:"password" json:"-" yaml:"-"`
}

// PhotosConfig holds the camera-upload relocation directories.
type PhotosConfig struct {
	SourceDir string `mapstructure:"source_dir" json:"source_dir" yaml:"source_dir"`
	TargetDir string `mapstructure:"target_dir" json:"target_dir" yaml:"target_dir"`
}

// LedgerConfig points at the SQLite run ledger. An empty Path disables it.
type LedgerConfig struct {
	Path string `mapstructure:"path" json:"path" yaml:"path"`
}

// Config groups every procedure's settings. It is built once by the CLI and
// passed explicitly; procedures never read the process environment themselves.
type Config struct {
	Kindle  KindleConfig  `mapstructure:"kindle" json:"kindle" yaml:"kindle"`
	Mail    MailConfig    `mapstructure:"mail" json:"mail" yaml:"mail"`
	IMD     IMDConfig     `mapstructure:"imd" json:"imd" yaml:"imd"`
	Appknox AppknoxConfig `mapstructure:"appknox" json:"appknox" yaml:"appknox"`
	Photos  PhotosConfig  `mapstructure:"photos" json:"photos" yaml:"photos"`
	Ledger  LedgerConfig  `mapstructure:"ledger" json:"ledger" yaml:"ledger"`
}

// DefaultConfig returns the settings used when neither a config file nor
// flags override them.
func DefaultConfig() Config {
	return Config{
		Kindle: KindleConfig{
			Backend:    BackendCalibre,
			Image:      "linuxserver/calibre:latest",
			HoldingDir: "/tmp",
		},
		Mail: MailConfig{
			Host: "smtp.gmail.com",
			Port: 465,
		},
		IMD: IMDConfig{
			HTTPConfig: HTTPConfig{
				Timeout:   60 * time.Second,
				UserAgent: "flash/0.1",
			},
			BaseURL:    "http://imdaws.com/",
			DataTypes:  []string{"AWS"},
			FirstState: 1,
			LastState:  28,
			DataDir:    "data",
			Interval:   time.Second,
		},
		Appknox: AppknoxConfig{
			HTTPConfig: HTTPConfig{
				Timeout:   30 * time.Second,
				UserAgent: "flash/0.1",
			},
			BaseURL:      "https://api.appknox.com/",
			RestartDelay: 4 * time.Second,
		},
		Photos: PhotosConfig{
			SourceDir: "~/Dropbox/Camera Uploads",
			TargetDir: "~/Pictures",
		},
	}
}
