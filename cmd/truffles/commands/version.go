package commands

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/jmylchreest/truffles/internal/version"
)

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print build information",
	RunE: func(cmd *cobra.Command, args []string) error {
		info := version.Get()
		if asJSON, _ := cmd.Flags().GetBool("json"); asJSON {
			out, err := json.MarshalIndent(info, "", "  ")
			if err != nil {
				return err
			}
			fmt.Println(string(out))
			return nil
		}

		fmt.Printf("truffles %s\n", info)
		if info.BuildDate != "" {
			fmt.Printf("  Built:        %s\n", info.BuildDate)
		}
		fmt.Printf("  Go version:   %s\n", info.GoVersion)
		fmt.Printf("  OS/Arch:      %s\n", info.Platform)
		fmt.Printf("  Store format: %d\n", info.StoreFormat)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(versionCmd)
	versionCmd.Flags().Bool("json", false, "print as JSON")
	rootCmd.Version = version.Get().String()
}
