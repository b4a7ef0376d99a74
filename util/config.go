package util

import (
	_ "embed"
	"fmt"
	"log"
	"os"
	"strconv"

	"gopkg.in/yaml.v3"
)

const Name = "glyptodon"
const ConfigFileName = "config.yaml"

//go:embed config_default.yaml
var embeddedConfig []byte

type AppConfig struct {
	Conf struct {
		ApiBaseUrl  string `yaml:"apiBaseUrl"`
		HttpTimeout int    `yaml:"httpTimeout"` // seconds
		DevServer   bool   `yaml:"devServer"`
		HttpPort    int    `yaml:"httpPort"`
		JwtSecret   string `yaml:"jwtSecret"`
		DbFile      string `yaml:"dbFile"`
	}
}

func ReadConf() (*AppConfig, error) {

	c := &AppConfig{}

	// Try to resolve config file path (local first, then user dir)
	configPath := ResolveFilePath(ConfigFileName)

	var buf []byte
	var err error

	// Try to read from resolved path
	buf, err = os.ReadFile(configPath)
	if err != nil {
		// If file doesn't exist, use embedded config and create user config file
		log.Printf("Config file not found at %s, using embedded defaults", configPath)
		buf = embeddedConfig

		// Try to write default config to user config directory
		configDir, dirErr := GetConfigDir()
		if dirErr == nil {
			userConfigPath := configDir + "/" + ConfigFileName
			writeErr := os.WriteFile(userConfigPath, embeddedConfig, 0644)
			if writeErr != nil {
				log.Printf("Warning: could not write default config to %s: %v", userConfigPath, writeErr)
			} else {
				log.Printf("Created default config file at %s", userConfigPath)
			}
		}
	}

	err = yaml.Unmarshal(buf, c)
	if err != nil {
		return nil, fmt.Errorf("in config file: %w", err)
	}

	envApiBaseUrl := os.Getenv("GLYPTODON_APIBASEURL")
	envHttpTimeout := os.Getenv("GLYPTODON_HTTPTIMEOUT")
	envDevServer := os.Getenv("GLYPTODON_DEVSERVER")
	envHttpPort := os.Getenv("GLYPTODON_HTTPPORT")
	envJwtSecret := os.Getenv("GLYPTODON_JWTSECRET")
	envDbFile := os.Getenv("GLYPTODON_DBFILE")

	if envApiBaseUrl != "" {
		c.Conf.ApiBaseUrl = envApiBaseUrl
	}

	if envHttpTimeout != "" {
		v, err := strconv.Atoi(envHttpTimeout)
		if err != nil {
			fmt.Println(err)
		}
		c.Conf.HttpTimeout = v
	}

	if envDevServer == "true" {
		c.Conf.DevServer = true
	}

	if envHttpPort != "" {
		v, err := strconv.Atoi(envHttpPort)
		if err != nil {
			fmt.Println(err)
		}
		c.Conf.HttpPort = v
	}

	if envJwtSecret != "" {
		c.Conf.JwtSecret = envJwtSecret
	}

	if envDbFile != "" {
		c.Conf.DbFile = envDbFile
	}

	return c, nil
}
