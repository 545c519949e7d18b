package exporter

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestConfigDefaults(t *testing.T) {
	assert := assert.New(t)

	cfg, err := ConfigFromFile("")
	assert.Nil(err)
	assert.Equal(30, cfg.UpdatePeriod)
	assert.Equal(9825, cfg.Port)
	assert.Equal("http://localhost:4467/", cfg.JsonrpcAddress)
	assert.False(cfg.CollectSystemUsage)
	assert.False(cfg.AllHbbft)
	assert.False(cfg.AllPenalties)
}

func TestConfigEnvOverrides(t *testing.T) {
	assert := assert.New(t)

	t.Setenv("UPDATE_PERIOD", "10")
	t.Setenv("MINER_EXPORTER_PORT", "9000")
	t.Setenv("VALIDATOR_JSONRPC_ADDRESS", "http://10.0.0.5:4467/")
	t.Setenv("COLLECT_SYSTEM_USAGE", "yes")
	t.Setenv("ALL_HBBFT", "1")
	t.Setenv("ALL_PENALTIES", "nope")

	cfg, err := ConfigFromFile("")
	assert.Nil(err)
	assert.Equal(10, cfg.UpdatePeriod)
	assert.Equal(9000, cfg.Port)
	assert.Equal("http://10.0.0.5:4467/", cfg.JsonrpcAddress)
	assert.True(cfg.CollectSystemUsage)
	assert.True(cfg.AllHbbft)
	assert.False(cfg.AllPenalties)
}

func TestConfigYamlFile(t *testing.T) {
	assert := assert.New(t)

	yamlPath := filepath.Join(t.TempDir(), "exporter.yml")
	data := []byte(`
update_period: 15
port: 9900
jsonrpc_address: https://validator.example.com:4467/
all_penalties: true
`)
	err := os.WriteFile(yamlPath, data, 0644)
	assert.Nil(err)

	cfg, err := ConfigFromFile(yamlPath)
	assert.Nil(err)
	assert.Equal(15, cfg.UpdatePeriod)
	assert.Equal(9900, cfg.Port)
	assert.Equal("https://validator.example.com:4467/", cfg.JsonrpcAddress)
	assert.True(cfg.AllPenalties)
}

func TestConfigEnvBeatsYaml(t *testing.T) {
	assert := assert.New(t)

	yamlPath := filepath.Join(t.TempDir(), "exporter.yml")
	err := os.WriteFile(yamlPath, []byte("update_period: 15\n"), 0644)
	assert.Nil(err)

	t.Setenv("UPDATE_PERIOD", "45")
	cfg, err := ConfigFromFile(yamlPath)
	assert.Nil(err)
	assert.Equal(45, cfg.UpdatePeriod)
}

func TestConfigInvalidValues(t *testing.T) {
	assert := assert.New(t)

	t.Setenv("UPDATE_PERIOD", "abc")
	_, err := ConfigFromFile("")
	assert.NotNil(err)

	t.Setenv("UPDATE_PERIOD", "-5")
	_, err = ConfigFromFile("")
	assert.NotNil(err)

	t.Setenv("UPDATE_PERIOD", "30")
	t.Setenv("VALIDATOR_JSONRPC_ADDRESS", "ftp://localhost:4467/")
	_, err = ConfigFromFile("")
	assert.NotNil(err)
}

func TestTruthy(t *testing.T) {
	assert := assert.New(t)

	for _, v := range []string{"true", "t", "1", "y", "yes", "TRUE", "Yes"} {
		assert.True(truthy(v), v)
	}
	for _, v := range []string{"", "false", "0", "no", "nope"} {
		assert.False(truthy(v), v)
	}
}
