package cmd

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/soulink/soulink/internal/utils"
	"github.com/spf13/cobra"

	homedir "github.com/mitchellh/go-homedir"
	"github.com/spf13/viper"
)

var cfgFile string

const (
	LOGO = `                 _ _       _    
 ___  ___  _   _| (_)_ __ | | __
/ __|/ _ \| | | | | | '_ \| |/ /
\__ \ (_) | |_| | | | | | |   < 
|___/\___/ \__,_|_|_|_| |_|_|\_\
                                
`
)

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "soulink",
	Short: "Read and write Soulink blog posts from your terminal.",
	Long: LOGO + `soulink browses the Soulink blog feed, filters it by text and tags, manages
your own posts and keeps an offline snapshot of the feed.`,
	CompletionOptions: cobra.CompletionOptions{
		DisableDefaultCmd: true,
	},
	SilenceUsage: true,
}

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main(). It only needs to happen once to the rootCmd.
func Execute() {
	if err := rootCmd.ExecuteContext(context.Background()); err != nil {
		fmt.Println(err)
		os.Exit(1)
	}
}

func init() {
	cobra.OnInitialize(initConfig)
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default is $HOME/.soulink.yaml)")

	// Global flags
	rootCmd.PersistentFlags().StringP("proxy", "", "", "HTTP Proxy (Useful for debugging. Example: http://127.0.0.1:8080)")
	rootCmd.PersistentFlags().StringP("loglevel", "l", "info", "Set log level. Available: debug, info, warn, error, fatal")
	rootCmd.PersistentFlags().String("base-url", "", "Blog API base URL (overrides api.base_url)")
	rootCmd.PersistentFlags().String("token", "", "Bearer token for authenticated calls (overrides api.token)")

	viper.BindPFlag("api.base_url", rootCmd.PersistentFlags().Lookup("base-url"))
	viper.BindPFlag("api.token", rootCmd.PersistentFlags().Lookup("token"))
}

func setDefaults() {
	viper.SetDefault("api.base_url", "http://localhost:8000")
	viper.SetDefault("api.token", "")
	viper.SetDefault("api.retries", 0)
	viper.SetDefault("api.timeout", "30s")
	viper.SetDefault("api.user_agent", "soulink-cli")
	viper.SetDefault("feed.excerpt_length", 180)
	viper.SetDefault("feed.featured", 6)
	viper.SetDefault("date.layout", "Jan 2, 2006")
	viper.SetDefault("date.timezone", "")
	viper.SetDefault("db.path", "")
	viper.SetDefault("server.listen", "127.0.0.1:8080")
	viper.SetDefault("server.refresh", "@every 5m")
	viper.SetDefault("server.max_conns", 64)
}

// initConfig reads in config file and ENV variables if set.
func initConfig() {
	setDefaults()

	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		home, err := homedir.Dir()
		if err != nil {
			fmt.Println(err)
			os.Exit(1)
		}
		viper.AddConfigPath(home)
		viper.SetConfigName(".soulink")
		viper.SetConfigType("yaml")
	}

	viper.SetEnvPrefix("soulink")
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	viper.AutomaticEnv()

	// If a config file is found, read it in.
	if err := viper.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); ok {
			// Config file not found; create it with defaults.
			home, _ := homedir.Dir()
			configPath := filepath.Join(home, ".soulink.yaml")
			if err := viper.SafeWriteConfigAs(configPath); err != nil {
				fmt.Printf("Error creating config file: %s\n", err)
			}
		}
	}

	// Init log library
	levelString, _ := rootCmd.PersistentFlags().GetString("loglevel")
	if err := utils.SetLogLevel(levelString); err != nil {
		utils.Log.Warnf("Invalid log level %q, using info", levelString)
	}
}
