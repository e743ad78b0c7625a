package utils

import (
	"fmt"
	"time"

	"github.com/benmeehan/geo-alarm/internal/constants"
	"github.com/benmeehan/geo-alarm/pkg/file"
	"github.com/benmeehan/geo-alarm/pkg/location"
)

// Config represents the structure of the configuration file.
type Config struct {
	MQTT struct {
		Broker        string        `yaml:"broker"`          // MQTT broker address
		ClientID      string        `yaml:"client_id"`       // MQTT client ID prefix
		CACertificate string        `yaml:"ca_certificate"`  // Path to the CA certificate, empty disables TLS
		Username      string        `yaml:"username"`        // Optional broker username
		Password      string        `yaml:"password"`        // Optional broker password
		Timeout       time.Duration `yaml:"connect_timeout"` // Broker connect timeout
	} `yaml:"mqtt"`

	Identity struct {
		DeviceFile string `yaml:"device_file"` // Path to the device identity file
	} `yaml:"identity"`

	Log struct {
		Level  string `yaml:"level"`  // zerolog level name
		Format string `yaml:"format"` // "json" or "console"
	} `yaml:"log"`

	Location struct {
		SensorBased       bool          `yaml:"sensor_based"`    // Use the serial GPS sensor as precise provider
		GPSDevicePort     string        `yaml:"gps_device_port"` // UNIX Port where the GPS sensor is mounted
		GPSDeviceBaudRate int           `yaml:"gps_baud_rate"`   // The Baud rate for GPS sensor
		MapsAPIKey        string        `yaml:"maps_api_key"`    // Google maps API Key, enables network geolocation
		ModemIndex        int           `yaml:"modem_index"`     // ModemManager modem used for cell lookups
		PollInterval      time.Duration `yaml:"poll_interval"`   // Interval between watch readings
		HighAccuracy      bool          `yaml:"high_accuracy"`   // Prefer the sensor for watch readings
		Timeout           time.Duration `yaml:"timeout"`         // Timeout for a single reading
		MaxCachedAge      time.Duration `yaml:"max_cached_age"`  // Accept cached readings up to this age
	} `yaml:"location"`

	Alarm struct {
		Radius       int           `yaml:"radius"`        // Initial alarm radius in meters
		MemoFile     string        `yaml:"memo_file"`     // File holding the suspended watch flag, empty keeps it in memory
		SoundCommand []string      `yaml:"sound_command"` // Command run when the target is reached
		SoundTimeout time.Duration `yaml:"sound_timeout"` // Maximum run time of the sound command
		Target       struct {
			Name      string  `yaml:"name"`      // Initial target name
			Latitude  float64 `yaml:"latitude"`  // Initial target latitude
			Longitude float64 `yaml:"longitude"` // Initial target longitude
		} `yaml:"target"`
		AutoStart bool `yaml:"auto_start"` // Start the alarm as soon as a target is configured
	} `yaml:"alarm"`

	Services struct {
		Events struct {
			Topic   string `yaml:"topic"`   // MQTT topic for alarm events
			Enabled bool   `yaml:"enabled"` // Enable/disable event publishing
			QOS     int    `yaml:"qos"`     // MQTT QoS level for event messages
		} `yaml:"events"`

		Control struct {
			Topic   string `yaml:"topic"`   // MQTT topic for control commands
			Enabled bool   `yaml:"enabled"` // Enable/disable the control service
			QOS     int    `yaml:"qos"`     // MQTT QoS level for control messages
		} `yaml:"control"`

		Status struct {
			Topic    string        `yaml:"topic"`    // MQTT topic for status reports
			Enabled  bool          `yaml:"enabled"`  // Enable/disable status reports
			Interval time.Duration `yaml:"interval"` // Interval between status reports
			QOS      int           `yaml:"qos"`      // MQTT QoS level for status messages
		} `yaml:"status"`

		Lifecycle struct {
			Enabled bool `yaml:"enabled"` // Map SIGUSR1/SIGUSR2 to background/foreground
		} `yaml:"lifecycle"`

		Metrics struct {
			Enabled bool   `yaml:"enabled"` // Enable/disable the prometheus endpoint
			Address string `yaml:"address"` // Listen address for /metrics
		} `yaml:"metrics"`
	} `yaml:"services"`
}

// LoadConfig loads the YAML configuration from the specified file.
// It returns a pointer to the Config struct and an error if loading fails.
func LoadConfig(filename string, fileClient file.FileOperations) (*Config, error) {
	var config Config
	err := fileClient.ReadYamlFile(filename, &config)
	if err != nil {
		return nil, err
	}

	config.ApplyDefaults()
	if err := config.Validate(); err != nil {
		return nil, err
	}
	return &config, nil
}

// ApplyDefaults fills zero values with sensible defaults.
func (c *Config) ApplyDefaults() {
	if c.MQTT.ClientID == "" {
		c.MQTT.ClientID = "geo-alarm"
	}
	if c.Identity.DeviceFile == "" {
		c.Identity.DeviceFile = "device.json"
	}
	if c.Log.Level == "" {
		c.Log.Level = "info"
	}
	if c.Log.Format == "" {
		c.Log.Format = "json"
	}
	if c.Location.GPSDeviceBaudRate == 0 {
		c.Location.GPSDeviceBaudRate = 9600
	}
	if c.Location.PollInterval == 0 {
		c.Location.PollInterval = constants.DefaultPollInterval
	}
	if c.Location.Timeout == 0 {
		c.Location.Timeout = constants.DefaultReadingTimeout
	}
	if c.Alarm.Radius == 0 {
		c.Alarm.Radius = constants.DefaultRadiusMeters
	}
	if c.Alarm.SoundTimeout == 0 {
		c.Alarm.SoundTimeout = constants.DefaultSoundTimeout
	}
	if c.Services.Status.Interval == 0 {
		c.Services.Status.Interval = time.Minute
	}
	if c.Services.Metrics.Address == "" {
		c.Services.Metrics.Address = ":9108"
	}
}

// Validate rejects configurations the agent cannot run with.
func (c *Config) Validate() error {
	if c.Alarm.Radius < constants.MinRadiusMeters || c.Alarm.Radius > constants.MaxRadiusMeters {
		return fmt.Errorf("alarm.radius must be between %d and %d, got %d",
			constants.MinRadiusMeters, constants.MaxRadiusMeters, c.Alarm.Radius)
	}
	if c.Location.SensorBased && c.Location.GPSDevicePort == "" {
		return fmt.Errorf("location.gps_device_port is required when sensor_based is enabled")
	}
	if !c.Location.SensorBased && c.Location.MapsAPIKey == "" {
		return fmt.Errorf("either location.sensor_based or location.maps_api_key must be configured")
	}
	if c.UsesMQTT() && c.MQTT.Broker == "" {
		return fmt.Errorf("mqtt.broker is required when an MQTT service is enabled")
	}
	if c.Alarm.AutoStart && c.Alarm.Target.Name == "" {
		return fmt.Errorf("alarm.auto_start requires alarm.target")
	}
	return nil
}

// UsesMQTT reports whether any enabled service needs a broker connection.
func (c *Config) UsesMQTT() bool {
	return c.Services.Events.Enabled || c.Services.Control.Enabled || c.Services.Status.Enabled
}

// WatchOptions returns the reading options for continuous tracking.
func (c *Config) WatchOptions() location.Options {
	return location.Options{
		HighAccuracy: c.Location.HighAccuracy || c.Location.MapsAPIKey == "",
		Timeout:      c.Location.Timeout,
		MaxCachedAge: c.Location.MaxCachedAge,
	}
}

// DetectOptions returns the reading options for a single interactive detection.
// Detection always asks for a fresh, precise fix.
func (c *Config) DetectOptions() location.Options {
	opts := location.DefaultOptions()
	opts.Timeout = c.Location.Timeout
	return opts
}
