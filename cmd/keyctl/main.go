// keyctl manages the encrypted provider API key vault from the command line.
//
// The vault passphrase is read from CHAT_KEEPER_PASSPHRASE so it never
// appears in shell history or process listings.
package main

import (
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/luozhen/go-chat-keeper/internal/keyvault"
)

const passphraseEnv = "CHAT_KEEPER_PASSPHRASE"

var vaultPath string

func main() {
	if err := rootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}

func rootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:           "keyctl",
		Short:         "Manage the encrypted provider API key vault",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.PersistentFlags().StringVar(&vaultPath, "vault", defaultVaultPath(), "path to the vault file")

	root.AddCommand(setCmd(), getCmd(), listCmd(), rmCmd())
	return root
}

func defaultVaultPath() string {
	if p := os.Getenv("APP_KEY_VAULT_PATH"); p != "" {
		return p
	}
	return "chat-keeper-vault.json"
}

func openVault() (*keyvault.Vault, error) {
	passphrase := os.Getenv(passphraseEnv)
	if passphrase == "" {
		return nil, fmt.Errorf("%s is not set", passphraseEnv)
	}
	return keyvault.Open(vaultPath, passphrase)
}

func setCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "set <provider> <api-key>",
		Short: "Store an API key for a provider",
		Args:  cobra.ExactArgs(2),
		RunE: func(_ *cobra.Command, args []string) error {
			v, err := openVault()
			if err != nil {
				return err
			}
			if err = v.Set(args[0], args[1]); err != nil {
				return err
			}
			fmt.Printf("Stored key for %s\n", args[0])
			return nil
		},
	}
}

func getCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "get <provider>",
		Short: "Print the API key stored for a provider",
		Args:  cobra.ExactArgs(1),
		RunE: func(_ *cobra.Command, args []string) error {
			v, err := openVault()
			if err != nil {
				return err
			}
			secret, err := v.Get(args[0])
			if err != nil {
				if errors.Is(err, keyvault.ErrKeyNotFound) {
					return fmt.Errorf("no key stored for %s", args[0])
				}
				return err
			}
			fmt.Println(secret)
			return nil
		},
	}
}

func listCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List providers with a stored key",
		Args:  cobra.NoArgs,
		RunE: func(_ *cobra.Command, _ []string) error {
			v, err := openVault()
			if err != nil {
				return err
			}
			for _, name := range v.List() {
				fmt.Println(name)
			}
			return nil
		},
	}
}

func rmCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "rm <provider>",
		Short: "Remove the API key stored for a provider",
		Args:  cobra.ExactArgs(1),
		RunE: func(_ *cobra.Command, args []string) error {
			v, err := openVault()
			if err != nil {
				return err
			}
			if err = v.Delete(args[0]); err != nil {
				return err
			}
			fmt.Printf("Removed key for %s\n", args[0])
			return nil
		},
	}
}
