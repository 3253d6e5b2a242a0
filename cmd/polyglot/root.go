package main

import (
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

var rootCmd = &cobra.Command{
	Use:   "polyglot",
	Short: "Model API translation client",
	Long:  "Polyglot speaks the Chat Completions and Responses wire protocols from one canonical request shape, and normalizes whatever comes back.",
}

func init() {
	cobra.OnInitialize(initConfig)

	rootCmd.PersistentFlags().StringP("model", "m", "gpt-5.2", "Model to use")
	rootCmd.PersistentFlags().String("base-url", "", "Endpoint base URL override")
	rootCmd.PersistentFlags().String("catalog", "", "YAML catalog override file")
	rootCmd.PersistentFlags().BoolP("verbose", "v", false, "Verbose output")
	rootCmd.PersistentFlags().Bool("debug", false, "Debug output")

	_ = viper.BindPFlag("model", rootCmd.PersistentFlags().Lookup("model"))
	_ = viper.BindPFlag("base_url", rootCmd.PersistentFlags().Lookup("base-url"))
	_ = viper.BindPFlag("catalog", rootCmd.PersistentFlags().Lookup("catalog"))
	_ = viper.BindPFlag("verbose", rootCmd.PersistentFlags().Lookup("verbose"))
	_ = viper.BindPFlag("debug", rootCmd.PersistentFlags().Lookup("debug"))
}

func initConfig() {
	viper.SetEnvPrefix("POLYGLOT")
	viper.AutomaticEnv()
}
