package config

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/mattsolo1/grove-axisregions/pkg/service"
)

var (
	cfgFile          string
	DocumentOverride string
	Verbose          bool
)

func InitConfig() {
	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		home, err := os.UserHomeDir()
		cobra.CheckErr(err)

		configDir := filepath.Join(home, ".config", "axr")
		viper.AddConfigPath(configDir)
		viper.SetConfigType("yaml")
		viper.SetConfigName("config")
	}

	viper.SetEnvPrefix("AXR")
	viper.AutomaticEnv()

	// Set defaults
	viper.SetDefault("data_dir", filepath.Join(os.Getenv("HOME"), ".local", "share", "axr"))
	viper.SetDefault("document", "")
	viper.SetDefault("plot_dim", "x")
	viper.SetDefault("log_level", "warn")
	viper.SetDefault("watch", false)
	viper.SetDefault("default_group_name", "New Group")

	// A missing config file is the normal case.
	_ = viper.ReadInConfig()
}

// NewLogger builds the stderr logger used by every command. --verbose wins
// over the configured log_level.
func NewLogger() (*logrus.Logger, error) {
	logger := logrus.New()
	logger.SetOutput(os.Stderr)

	level, err := logrus.ParseLevel(viper.GetString("log_level"))
	if err != nil {
		return nil, fmt.Errorf("invalid log_level: %w", err)
	}
	if Verbose {
		level = logrus.DebugLevel
	}
	logger.SetLevel(level)
	return logger, nil
}

func InitService(logger *logrus.Logger) (*service.Service, error) {
	config := &service.Config{
		DataDir:          viper.GetString("data_dir"),
		Document:         viper.GetString("document"),
		PlotDim:          viper.GetString("plot_dim"),
		DefaultGroupName: viper.GetString("default_group_name"),
		Watch:            viper.GetBool("watch"),
	}
	if DocumentOverride != "" {
		config.Document = DocumentOverride
	}

	svc, err := service.New(config, logrus.NewEntry(logger))
	if err != nil {
		return nil, err
	}

	return svc, nil
}

func AddGlobalFlags(cmd *cobra.Command) {
	cmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default is $HOME/.config/axr/config.yaml)")
	cmd.PersistentFlags().StringVarP(&DocumentOverride, "file", "f", "", "Region document to operate on (.json, .yaml)")
	cmd.PersistentFlags().BoolVarP(&Verbose, "verbose", "v", false, "Enable debug logging")
}
