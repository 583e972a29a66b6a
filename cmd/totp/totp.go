package totp

import (
	"github.com/doskvol-ltd/doskvol/cmd/totp/generate"

	"github.com/spf13/cobra"
)

var TotpCmd = &cobra.Command{
	Use:   "totp",
	Short: "TOTP helpers",
}

func init() {
	TotpCmd.AddCommand(generate.GenerateCmd)
}
