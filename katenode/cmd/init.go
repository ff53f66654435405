package cmd

import (
	"fmt"
	"os"
	"strconv"

	"github.com/AlecAivazis/survey/v2"
	"github.com/spf13/cobra"

	"github.com/LumeraProtocol/kate/katenode/config"
	"github.com/LumeraProtocol/kate/pkg/errors"
	"github.com/LumeraProtocol/kate/pkg/utils"
)

var (
	forceInit       bool
	interactiveInit bool
)

// initCmd represents the init command
var initCmd = &cobra.Command{
	Use:   "init",
	Short: "Write a configuration file",
	Long: `Write a configuration file with default settings to the --config path.

Example:
  katenode init
  katenode init --interactive   # prompt for the main settings
  katenode init --force         # overwrite an existing file`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		if _, err := os.Stat(cfgFile); err == nil && !forceInit {
			return errors.Errorf("config file %s already exists, use --force to overwrite", cfgFile)
		}

		cfg := config.Default()
		if interactiveInit {
			if err := gatherUserInputs(cfg); err != nil {
				return err
			}
		}
		if err := cfg.Validate(); err != nil {
			return err
		}
		if err := cfg.Save(cfgFile); err != nil {
			return err
		}

		fmt.Fprintf(cmd.OutOrStdout(), "Configuration saved to %s\n", cfgFile)
		return nil
	},
}

// gatherUserInputs prompts for the settings operators usually change.
func gatherUserInputs(cfg *config.Config) error {
	listenPrompt := &survey.Input{
		Message: "RPC listen address:",
		Default: cfg.RPC.ListenAddress,
	}
	if err := survey.AskOne(listenPrompt, &cfg.RPC.ListenAddress, survey.WithValidator(survey.Required)); err != nil {
		return err
	}

	snapshotPrompt := &survey.Input{
		Message: "Chain snapshot path:",
		Default: cfg.Chain.SnapshotPath,
	}
	if err := survey.AskOne(snapshotPrompt, &cfg.Chain.SnapshotPath, survey.WithValidator(survey.Required)); err != nil {
		return err
	}

	var capacity string
	capacityPrompt := &survey.Input{
		Message: "Extension cache capacity (blocks):",
		Default: strconv.Itoa(cfg.Cache.Capacity),
	}
	if err := survey.AskOne(capacityPrompt, &capacity, survey.WithValidator(positiveInt)); err != nil {
		return err
	}
	cfg.Cache.Capacity, _ = strconv.Atoi(capacity)

	hasherPrompt := &survey.Select{
		Message: "Hash for legacy storage randomness:",
		Options: []string{utils.HasherBlake2b, utils.HasherBlake3},
		Default: cfg.VRF.Hasher,
	}
	return survey.AskOne(hasherPrompt, &cfg.VRF.Hasher)
}

func positiveInt(ans interface{}) error {
	s, _ := ans.(string)
	n, err := strconv.Atoi(s)
	if err != nil || n <= 0 {
		return errors.New("enter a positive integer")
	}
	return nil
}

func init() {
	rootCmd.AddCommand(initCmd)
	initCmd.Flags().BoolVar(&forceInit, "force", false, "Override existing configuration file")
	initCmd.Flags().BoolVar(&interactiveInit, "interactive", false, "Prompt for settings")
}
