package cmd

import (
	"os"

	"github.com/MasegoMashiane/Second-Sales-Automation-bot/core/config"
	domainBackend "github.com/MasegoMashiane/Second-Sales-Automation-bot/domains/backend"
	domainHealth "github.com/MasegoMashiane/Second-Sales-Automation-bot/domains/health"
	"github.com/MasegoMashiane/Second-Sales-Automation-bot/infrastructure/backend"
	"github.com/MasegoMashiane/Second-Sales-Automation-bot/usecase"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

var (
	settings   *viper.Viper = config.NewViper()
	configFile string

	appConfig *config.Config

	// Usecase
	healthUsecase domainHealth.IHealthUsecase
	backendClient domainBackend.IBackendClient
)

// rootCmd runs the shell when called without any subcommands.
var rootCmd = &cobra.Command{
	Use:   "salesbot-shell",
	Short: "Desktop shell for the sales automation bot",
	Long: `salesbot-shell starts the local automation backend, waits until it is healthy
and exposes a token protected command bridge for the desktop UI.`,
	Run: runShell,
}

func init() {
	rootCmd.CompletionOptions.DisableDefaultCmd = true

	initFlags()

	cobra.OnInitialize(initEnvConfig, initApp)
}

func initFlags() {
	rootCmd.PersistentFlags().StringVarP(
		&configFile,
		"config", "c",
		"",
		`config file path --config <path> | example: --config=./salesbot.yaml`,
	)
	rootCmd.PersistentFlags().BoolP(
		"debug", "d",
		false,
		"hide or displaying log with --debug <true/false> | example: --debug=true",
	)
	rootCmd.PersistentFlags().String(
		"log-format",
		"text",
		`log format --log-format <text|json> | example: --log-format=json`,
	)
	rootCmd.PersistentFlags().IntP(
		"backend-port", "p",
		5000,
		"backend port number --backend-port <number> | example: --backend-port=5000",
	)
	rootCmd.PersistentFlags().String(
		"backend-dir",
		"",
		`working directory of the backend --backend-dir <path> | example: --backend-dir=../bot`,
	)

	bindFlag("app.debug", "debug")
	bindFlag("app.log_format", "log-format")
	bindFlag("backend.port", "backend-port")
	bindFlag("backend.dir", "backend-dir")
}

func bindFlag(key, flag string) {
	if err := settings.BindPFlag(key, rootCmd.PersistentFlags().Lookup(flag)); err != nil {
		logrus.Fatalf("failed to bind flag %s: %v", flag, err)
	}
}

// initEnvConfig loads .env, the optional config file and SALESBOT_* variables.
func initEnvConfig() {
	if err := config.LoadDotEnv("."); err != nil {
		logrus.WithError(err).Warn("[CONFIG] failed to load .env")
	}
	if configFile != "" {
		settings.SetConfigFile(configFile)
	}
	if err := config.ReadConfigFile(settings); err != nil {
		logrus.Fatalf("[CONFIG] failed to read config file: %v", err)
	}

	cfg, err := config.LoadConfig(settings)
	if err != nil {
		logrus.Fatalf("[CONFIG] %v", err)
	}
	appConfig = cfg
}

func initApp() {
	initLogging(appConfig.App)

	healthUsecase = usecase.NewHealthService(appConfig.Paths.HealthDB)
	backendClient = backend.NewClient(appConfig.Backend.Address(), appConfig.Backend.RequestTimeout)
}

// Execute adds all child commands to the root command and sets flags appropriately.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

// StopApp releases resources opened by initApp.
func StopApp() {
	logrus.Info("[APP] Stopping application...")
	if healthUsecase != nil {
		if err := healthUsecase.Close(); err != nil {
			logrus.WithError(err).Warn("[APP] failed to close health ledger")
		}
	}
}
