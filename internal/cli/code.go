package cli

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/uzemepizy-code/dentsun-implant-takip/internal/auth"
	"github.com/uzemepizy-code/dentsun-implant-takip/internal/config"
)

const atLayout = "2006-01-02 15:04"

// NewCodeCommand yönetici için o dakikanın giriş kodunu yazdırır.
func NewCodeCommand(opts *RootOptions) *cobra.Command {
	var at string

	cmd := &cobra.Command{
		Use:   "code",
		Short: "Şu anki giriş kodunu gösterir",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load()
			if err != nil {
				return err
			}

			now := opts.now().In(cfg.Location)
			if at != "" {
				now, err = time.ParseInLocation(atLayout, at, cfg.Location)
				if err != nil {
					return fmt.Errorf("--at %q biçimi %q olmalı", at, atLayout)
				}
			}

			fmt.Fprintf(cmd.OutOrStdout(), "%s  (%s)\n", auth.GenerateCode(now), now.Format(atLayout))
			return nil
		},
	}

	cmd.Flags().StringVar(&at, "at", "", "kodu bu an için hesapla (YYYY-AA-GG SS:DD)")
	return cmd
}
