package container

import (
	"bytes"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jinford/u8g2gen/internal/platform/config"
	"github.com/jinford/u8g2gen/pkg/console"
)

func testConfig() *config.Config {
	return &config.Config{
		Server:   config.ServerConfig{URL: "http://localhost:5000", HTTPTimeout: time.Second},
		Poll:     config.PollConfig{Interval: time.Second, MaxMalformed: 5},
		Download: config.DownloadConfig{Dir: ".", Auto: true},
	}
}

func TestNewContainer_Defaults(t *testing.T) {
	var out bytes.Buffer
	c, err := NewContainer(testConfig(), WithContainerOutput(&out))
	require.NoError(t, err)
	defer c.Close()

	assert.NotNil(t, c.Client)
	assert.NotNil(t, c.Controller)
	assert.NotNil(t, c.Logger)
	assert.IsType(t, &console.Presenter{}, c.Presenter)
	assert.False(t, c.Controller.Busy())
}

func TestNewContainer_CustomPresenter(t *testing.T) {
	p := console.New(&bytes.Buffer{}, nil)
	c, err := NewContainer(testConfig(), WithContainerPresenter(p))
	require.NoError(t, err)

	assert.Same(t, p, c.Presenter)
}

func TestNewContainer_InvalidServerURL(t *testing.T) {
	cfg := testConfig()
	cfg.Server.URL = "localhost"

	_, err := NewContainer(cfg)
	assert.Error(t, err)
}
