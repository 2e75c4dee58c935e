package cli

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"

	"github.com/mesh-intelligence/docket/internal/paths"
	"github.com/mesh-intelligence/docket/pkg/types"
)

const (
	configFileName = "config"
	configFileType = "yaml"
	envPrefix      = "DOCKET"
	maskedSecret   = "********"
)

// loadConfig reads config.yaml from configDir over the built-in defaults,
// then applies DOCKET_* environment overrides. A missing file is not an
// error.
func loadConfig(configDir string) (types.Config, string, error) {
	v := viper.New()
	setDefaults(v, types.DefaultConfig())
	v.SetConfigName(configFileName)
	v.SetConfigType(configFileType)
	v.AddConfigPath(configDir)
	v.SetEnvPrefix(envPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	path := filepath.Join(configDir, paths.ConfigFileName)
	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return types.Config{}, path, fmt.Errorf("read config: %w", err)
		}
	}

	var cfg types.Config
	if err := v.Unmarshal(&cfg); err != nil {
		return types.Config{}, path, fmt.Errorf("decode config: %w", err)
	}
	return cfg, path, nil
}

// setDefaults registers every key so environment overrides reach Unmarshal.
func setDefaults(v *viper.Viper, c types.Config) {
	for key, value := range flatten(configDocument(c, false)) {
		v.SetDefault(key, value)
	}
}

// configDocument renders c as nested maps keyed like config.yaml, with
// durations in Go duration syntax.
func configDocument(c types.Config, maskSecrets bool) map[string]any {
	password := c.Database.Password
	if maskSecrets && password != "" {
		password = maskedSecret
	}
	return map[string]any{
		"database": map[string]any{
			"driver":   c.Database.Driver,
			"host":     c.Database.Host,
			"port":     c.Database.Port,
			"user":     c.Database.User,
			"password": password,
			"name":     c.Database.Name,
			"path":     c.Database.Path,
		},
		"staging": map[string]any{
			"path": c.Staging.Path,
		},
		"remote": map[string]any{
			"start_url":     c.Remote.StartURL,
			"user_agent":    c.Remote.UserAgent,
			"http_timeout":  duration(c.Remote.HTTPTimeout),
			"poll_interval": duration(c.Remote.PollInterval),
		},
		"navigation": map[string]any{
			"table_timeout":        duration(c.Navigation.TableTimeout),
			"detail_timeout":       duration(c.Navigation.DetailTimeout),
			"history_timeout":      duration(c.Navigation.HistoryTimeout),
			"participants_timeout": duration(c.Navigation.ParticipantsTimeout),
			"page_delay":           duration(c.Navigation.PageDelay),
			"row_rate":             c.Navigation.RowRate,
			"max_pages":            c.Navigation.MaxPages,
		},
		"log": map[string]any{
			"level":  c.Log.Level,
			"format": c.Log.Format,
		},
	}
}

func duration(d time.Duration) string {
	return d.String()
}

// flatten turns nested maps into dotted viper keys.
func flatten(doc map[string]any) map[string]any {
	flat := map[string]any{}
	for section, values := range doc {
		for key, value := range values.(map[string]any) {
			flat[section+"."+key] = value
		}
	}
	return flat
}

// writeConfigIfMissing writes the default config.yaml. It reports whether
// a file was written; an existing file is left alone.
func writeConfigIfMissing(path string) (bool, error) {
	if _, err := os.Stat(path); err == nil {
		return false, nil
	} else if !os.IsNotExist(err) {
		return false, fmt.Errorf("stat config file: %w", err)
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return false, fmt.Errorf("create config directory: %w", err)
	}

	data, err := yaml.Marshal(configDocument(types.DefaultConfig(), false))
	if err != nil {
		return false, fmt.Errorf("marshal config: %w", err)
	}
	header := "# docket configuration. Environment variables DOCKET_<SECTION>_<KEY> override these values.\n"
	if err := os.WriteFile(path, append([]byte(header), data...), 0o600); err != nil {
		return false, err
	}
	return true, nil
}

func newConfigCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: "Inspect configuration",
	}
	cmd.AddCommand(&cobra.Command{
		Use:   "show",
		Short: "Print the effective configuration with secrets masked",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			doc := configDocument(a.cfg, true)
			if a.jsonOut {
				enc := json.NewEncoder(out(cmd))
				enc.SetIndent("", "  ")
				return enc.Encode(doc)
			}
			fmt.Fprintf(out(cmd), "# %s\n", a.configPath)
			enc := yaml.NewEncoder(out(cmd))
			enc.SetIndent(2)
			if err := enc.Encode(doc); err != nil {
				return err
			}
			return enc.Close()
		},
	})
	return cmd
}
