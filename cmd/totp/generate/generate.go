package generate

import (
	"fmt"
	"os"
	"time"

	"github.com/doskvol-ltd/doskvol/internal/config"

	"github.com/mdp/qrterminal/v3"
	"github.com/pquerna/otp"
	"github.com/pquerna/otp/totp"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
)

var username string

var GenerateCmd = &cobra.Command{
	Use:   "generate",
	Short: "Generate a totp secret",
	Long:  `Generate a provisioning secret and QR code for a username, handy for seeding accounts by hand.`,
	Run: func(cmd *cobra.Command, args []string) {
		log.Logger = log.Level(zerolog.InfoLevel)

		if username == "" {
			log.Fatal().Msg("Username cannot be empty")
		}

		key, err := totp.Generate(totp.GenerateOpts{
			Issuer:      config.TotpIssuer,
			AccountName: username,
			Period:      30,
			Digits:      otp.DigitsSix,
			Algorithm:   otp.AlgorithmSHA1,
		})

		if err != nil {
			log.Fatal().Err(err).Msg("Failed to generate totp secret")
		}

		log.Info().Str("secret", key.Secret()).Msg("Generated totp secret")

		qrConfig := qrterminal.Config{
			Level:     qrterminal.L,
			Writer:    os.Stdout,
			BlackChar: qrterminal.BLACK,
			WhiteChar: qrterminal.WHITE,
			QuietZone: 2,
		}

		qrterminal.GenerateWithConfig(key.URL(), qrConfig)

		log.Info().Msg("Scan the QR code with your authenticator app then enter a code to verify")

		var code string
		_, _ = fmt.Scanln(&code)

		ok, err := totp.ValidateCustom(code, key.Secret(), time.Now().UTC(), totp.ValidateOpts{
			Period:    30,
			Skew:      1,
			Digits:    otp.DigitsSix,
			Algorithm: otp.AlgorithmSHA1,
		})

		if err != nil || !ok {
			log.Fatal().Err(err).Msg("Failed to verify code")
		}

		log.Info().Str("secret", key.Secret()).Msg("Code verified, register the user with this secret")
	},
}

func init() {
	GenerateCmd.Flags().StringVar(&username, "username", "", "Username to generate the secret for.")
}
