package cli

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const trademarkDoc = `{
  "service_id": "tm",
  "rules": [
    {"application_type": "individual", "key": "professional_fee", "unit": "fixed", "amount": 5000},
    {"application_type": "individual", "key": "nice_classes", "unit": "per_class", "amount": "1000"}
  ]
}`

// run executes pricectl with args and returns stdout.
func run(t *testing.T, args ...string) (string, error) {
	t.Helper()
	root := NewRootCommand()
	var out, errOut bytes.Buffer
	root.SetOut(&out)
	root.SetErr(&errOut)
	root.SetArgs(args)
	err := root.Execute()
	return out.String(), err
}

func writeFile(t *testing.T, name, content string) string {
	t.Helper()
	p := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(p, []byte(content), 0o600))
	return p
}

func TestNewRootCommand_Structure(t *testing.T) {
	cmd := NewRootCommand()
	assert.Equal(t, "pricectl", cmd.Use)
	assert.NotEmpty(t, cmd.Short)

	names := map[string]bool{}
	for _, sub := range cmd.Commands() {
		names[sub.Name()] = true
	}
	for _, want := range []string{"quote", "rules", "migrate", "version"} {
		assert.True(t, names[want], "missing subcommand %s", want)
	}

	for _, flag := range []string{"config", "log-level", "output", "verbose", "timeout", "server", "api-key"} {
		assert.NotNil(t, cmd.PersistentFlags().Lookup(flag), flag)
	}
	assert.Equal(t, "c", cmd.PersistentFlags().Lookup("config").Shorthand)
	assert.Equal(t, "o", cmd.PersistentFlags().Lookup("output").Shorthand)
}

func TestRoot_RejectsUnknownOutputFormat(t *testing.T) {
	_, err := run(t, "version", "-o", "yaml")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unsupported output format")
}

func TestRoot_MissingConfigFile(t *testing.T) {
	_, err := run(t, "version", "--config", filepath.Join(t.TempDir(), "nope.yaml"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "config initialization failed")
}

func TestVersionCmd(t *testing.T) {
	out, err := run(t, "version")
	require.NoError(t, err)
	assert.Contains(t, out, "pricectl "+Version)

	out, err = run(t, "version", "-o", "json")
	require.NoError(t, err)
	assert.Contains(t, out, `"version": "`+Version+`"`)

	out, err = run(t, "version", "-o", "table")
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(out, "VERSION"))
}

func TestInitClient_APIKeyFromEnv(t *testing.T) {
	t.Setenv(APIKeyEnv, "from-env")
	cfg, err := initConfig(&RootOptions{})
	require.NoError(t, err)

	c, err := initClient(cfg, &RootOptions{ServerAddr: "http://pricing:9000"})
	require.NoError(t, err)
	assert.NotNil(t, c)

	_, err = initClient(cfg, &RootOptions{ServerAddr: "ftp://pricing"})
	assert.Error(t, err)
}

func TestFormatTable(t *testing.T) {
	out := FormatTable([]string{"KEY", "AMOUNT"}, [][]string{
		{"professional_fee", "5000"},
		{"nice_classes"},
	})
	lines := strings.Split(strings.TrimRight(out, "\n"), "\n")
	require.Len(t, lines, 4)
	assert.Equal(t, "KEY               AMOUNT", lines[0])
	assert.Equal(t, "----------------  ------", lines[1])
	assert.Equal(t, "professional_fee  5000", lines[2])
	assert.Equal(t, "nice_classes", lines[3])

	assert.Empty(t, FormatTable(nil, nil))
}

func TestServerAddr(t *testing.T) {
	cfg, err := initConfig(&RootOptions{})
	require.NoError(t, err)

	assert.Equal(t, "http://pricing:9000", serverAddr(cfg, &RootOptions{ServerAddr: "http://pricing:9000"}))

	cfg.Server.HTTP.Host, cfg.Server.HTTP.Port = "0.0.0.0", 8181
	assert.Equal(t, "http://localhost:8181", serverAddr(cfg, &RootOptions{}))

	cfg.Server.HTTP.Host = "pricing.internal"
	assert.Equal(t, "http://pricing.internal:8181", serverAddr(cfg, &RootOptions{}))

	cfg.Server.HTTP.Port = 0
	assert.Equal(t, defaultServerAddr, serverAddr(cfg, &RootOptions{}))
}

//Personal.AI order the ending
