package config

import (
	"os"
	"testing"

	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
)

func validConfig() *Config {
	return &Config{
		Env:                      "development",
		Port:                     "8080",
		DBDriver:                 "postgres",
		DBSSLMode:                "require",
		DBPassword:               "secure-password",
		JWTSecret:                "secure-secret-at-least-32-chars-long",
		DBMaxOpenConns:           10,
		DBMaxIdleConns:           2,
		DBConnMaxLifetimeMinutes: 1,
		RedisURL:                 "redis://localhost:6379",
	}
}

func TestConfig_ValidateSSLMode(t *testing.T) {
	tests := []struct {
		name        string
		env         string
		sslMode     string
		expectError bool
	}{
		{"Production with empty SSL mode", "production", "", true},
		{"Production with disable SSL mode", "production", "disable", true},
		{"Production with require SSL mode", "production", "require", false},
		{"Prod with disable SSL mode", "prod", "disable", true},
		{"Prod with verify-full SSL mode", "prod", "verify-full", false},
		{"Development with disable SSL mode", "development", "disable", false},
		{"Test with empty SSL mode", "test", "", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := validConfig()
			c.Env = tt.env
			c.DBSSLMode = tt.sslMode

			err := c.Validate()
			if tt.expectError {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestConfig_Validate(t *testing.T) {
	t.Run("missing port", func(t *testing.T) {
		c := validConfig()
		c.Port = ""
		assert.EqualError(t, c.Validate(), "PORT is required")
	})

	t.Run("unknown driver", func(t *testing.T) {
		c := validConfig()
		c.DBDriver = "mysql"
		assert.Error(t, c.Validate())
	})

	t.Run("sqlite skips postgres checks in production", func(t *testing.T) {
		c := validConfig()
		c.Env = "production"
		c.DBDriver = "sqlite"
		c.DBSSLMode = ""
		c.DBPassword = ""
		assert.NoError(t, c.Validate())
	})

	t.Run("default secret rejected in production with auth", func(t *testing.T) {
		c := validConfig()
		c.Env = "production"
		c.AuthEnabled = true
		c.JWTSecret = DefaultJWTSecret
		assert.Error(t, c.Validate())
	})

	t.Run("auth requires secret", func(t *testing.T) {
		c := validConfig()
		c.AuthEnabled = true
		c.JWTSecret = ""
		assert.Error(t, c.Validate())
	})

	t.Run("non-positive pool", func(t *testing.T) {
		c := validConfig()
		c.DBMaxOpenConns = 0
		assert.Error(t, c.Validate())
	})
}

func TestKafkaBrokerList(t *testing.T) {
	c := &Config{KafkaBrokers: " kafka-1:9092, ,kafka-2:9092 "}
	assert.Equal(t, []string{"kafka-1:9092", "kafka-2:9092"}, c.KafkaBrokerList())

	c.KafkaBrokers = ""
	assert.Empty(t, c.KafkaBrokerList())
}

func TestLoadConfig_SSLModeNormalization(t *testing.T) {
	defer os.Unsetenv("APP_ENV")
	defer os.Unsetenv("DB_SSLMODE")
	defer viper.Reset()

	os.Setenv("APP_ENV", "development")
	os.Setenv("DB_SSLMODE", "  DISABLE  ")

	c, err := LoadConfig()
	assert.NoError(t, err)
	assert.Equal(t, "disable", c.DBSSLMode)
	assert.Equal(t, "postgres", c.DBDriver)
	assert.Equal(t, 25, c.DBMaxOpenConns)
}
