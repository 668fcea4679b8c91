// api/config/config.go
package config

import (
	"log"
	"time"

	"github.com/spf13/viper"
)

func InitConfig() error {
	viper.AddConfigPath("config") // path to look for the config file in
	viper.SetConfigName("config") // name of the config file (without extension)
	viper.SetConfigType("yaml")   // REQUIRED if the config file does not have the extension in the name

	viper.AutomaticEnv() // read in environment variables that match

	// Set default configurations
	viper.SetDefault("server.port", "8080")
	viper.SetDefault("service.name", "prism-authz")
	viper.SetDefault("service.version", "1.0.0")
	viper.SetDefault("log.dir", "logging")

	viper.SetDefault("redis.addr", "localhost:6379")
	viper.SetDefault("redis.password", "")
	viper.SetDefault("redis.db", 0)
	viper.SetDefault("redis.dialTimeout", "5s")
	viper.SetDefault("redis.readTimeout", "3s")
	viper.SetDefault("redis.writeTimeout", "3s")
	viper.SetDefault("redis.poolSize", 10)
	viper.SetDefault("redis.poolTimeout", "4s")

	viper.SetDefault("elasticsearch.url", "http://localhost:9200")

	// Remote permission authority
	viper.SetDefault("auth.api.url", "http://localhost:9000")
	viper.SetDefault("auth.api.timeout", "5s")

	// Decision cache TTLs, stratified by permission sensitivity
	viper.SetDefault("auth.cache.enabled", true)
	viper.SetDefault("auth.cache.ttl.read", "5m")
	viper.SetDefault("auth.cache.ttl.write", "1m")
	viper.SetDefault("auth.cache.ttl.admin", "30s")
	viper.SetDefault("auth.cache.ttl.denied", "2m")

	// Circuit breaker protecting the permission authority
	viper.SetDefault("auth.breaker.threshold", 5)
	viper.SetDefault("auth.breaker.timeout", "60s")

	// Fallback policy when the authority cannot answer
	viper.SetDefault("auth.failOpen", false)

	// Bucket string validation mode
	viper.SetDefault("auth.bucket.strict", true)

	viper.SetDefault("ratelimit.requests", 100)
	viper.SetDefault("ratelimit.window", "1m")

	// Attempt to read the config file
	if err := viper.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); ok {
			log.Println("No config file found. Using default settings and environment variables.")
		} else {
			return err
		}
	}

	return nil
}

// GetString retrieves a string value from the configuration
func GetString(key string) string {
	return viper.GetString(key)
}

// GetInt retrieves an integer value from the configuration
func GetInt(key string) int {
	return viper.GetInt(key)
}

// GetBool retrieves a boolean value from the configuration
func GetBool(key string) bool {
	return viper.GetBool(key)
}

// GetDuration retrieves a duration value from the configuration
func GetDuration(key string) time.Duration {
	return viper.GetDuration(key)
}
