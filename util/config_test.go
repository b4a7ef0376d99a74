package util

import (
	"os"
	"testing"
)

func TestConfigConstants(t *testing.T) {
	if Name != "glyptodon" {
		t.Errorf("Expected Name 'glyptodon', got '%s'", Name)
	}

	if ConfigFileName != "config.yaml" {
		t.Errorf("Expected ConfigFileName 'config.yaml', got '%s'", ConfigFileName)
	}
}

func TestReadConfWithYaml(t *testing.T) {
	// Create a test config file
	yamlContent := `
conf:
  apiBaseUrl: http://127.0.0.1:9999
  httpTimeout: 5
  devServer: true
  httpPort: 9999
  jwtSecret: sekrit
  dbFile: test.db
`
	err := os.WriteFile("config.yaml", []byte(yamlContent), 0644)
	if err != nil {
		t.Fatalf("Failed to create test config: %v", err)
	}
	defer os.Remove("config.yaml")

	config, err := ReadConf()
	if err != nil {
		t.Fatalf("ReadConf failed: %v", err)
	}

	if config.Conf.ApiBaseUrl != "http://127.0.0.1:9999" {
		t.Errorf("Expected ApiBaseUrl 'http://127.0.0.1:9999', got '%s'", config.Conf.ApiBaseUrl)
	}

	if config.Conf.HttpTimeout != 5 {
		t.Errorf("Expected HttpTimeout 5, got %d", config.Conf.HttpTimeout)
	}

	if config.Conf.HttpPort != 9999 {
		t.Errorf("Expected HttpPort 9999, got %d", config.Conf.HttpPort)
	}

	if config.Conf.JwtSecret != "sekrit" {
		t.Errorf("Expected JwtSecret 'sekrit', got '%s'", config.Conf.JwtSecret)
	}

	if config.Conf.DbFile != "test.db" {
		t.Errorf("Expected DbFile 'test.db', got '%s'", config.Conf.DbFile)
	}

	if !config.Conf.DevServer {
		t.Error("Expected DevServer to be true")
	}
}

func TestReadConfWithEnvOverrides(t *testing.T) {
	yamlContent := `
conf:
  apiBaseUrl: http://127.0.0.1:9999
  httpTimeout: 5
  devServer: false
  httpPort: 9999
  jwtSecret: sekrit
  dbFile: test.db
`
	err := os.WriteFile("config.yaml", []byte(yamlContent), 0644)
	if err != nil {
		t.Fatalf("Failed to create test config: %v", err)
	}
	defer os.Remove("config.yaml")

	os.Setenv("GLYPTODON_APIBASEURL", "https://posts.example.com")
	os.Setenv("GLYPTODON_HTTPTIMEOUT", "30")
	os.Setenv("GLYPTODON_DEVSERVER", "true")
	os.Setenv("GLYPTODON_HTTPPORT", "8080")
	os.Setenv("GLYPTODON_JWTSECRET", "env-secret")
	os.Setenv("GLYPTODON_DBFILE", "env.db")

	defer func() {
		os.Unsetenv("GLYPTODON_APIBASEURL")
		os.Unsetenv("GLYPTODON_HTTPTIMEOUT")
		os.Unsetenv("GLYPTODON_DEVSERVER")
		os.Unsetenv("GLYPTODON_HTTPPORT")
		os.Unsetenv("GLYPTODON_JWTSECRET")
		os.Unsetenv("GLYPTODON_DBFILE")
	}()

	config, err := ReadConf()
	if err != nil {
		t.Fatalf("ReadConf failed: %v", err)
	}

	// Environment variables should override YAML values
	if config.Conf.ApiBaseUrl != "https://posts.example.com" {
		t.Errorf("Expected ApiBaseUrl 'https://posts.example.com' from env, got '%s'", config.Conf.ApiBaseUrl)
	}

	if config.Conf.HttpTimeout != 30 {
		t.Errorf("Expected HttpTimeout 30 from env, got %d", config.Conf.HttpTimeout)
	}

	if config.Conf.HttpPort != 8080 {
		t.Errorf("Expected HttpPort 8080 from env, got %d", config.Conf.HttpPort)
	}

	if config.Conf.JwtSecret != "env-secret" {
		t.Errorf("Expected JwtSecret 'env-secret' from env, got '%s'", config.Conf.JwtSecret)
	}

	if config.Conf.DbFile != "env.db" {
		t.Errorf("Expected DbFile 'env.db' from env, got '%s'", config.Conf.DbFile)
	}

	if !config.Conf.DevServer {
		t.Error("Expected DevServer to be true from env")
	}
}
