package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/uzemepizy-code/dentsun-implant-takip/internal/config"
	"github.com/uzemepizy-code/dentsun-implant-takip/internal/database"
	"github.com/uzemepizy-code/dentsun-implant-takip/internal/logger"
)

func NewMigrateCommand(opts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Tabloları oluşturur ve katalogdaki her ölçü için stok satırı açar",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load()
			if err != nil {
				return err
			}
			log, err := logger.New(cfg)
			if err != nil {
				return err
			}
			defer func() { _ = log.Sync() }()

			db, err := database.Init(cfg, log)
			if err != nil {
				return err
			}
			if sqlDB, err := db.DB(); err == nil {
				_ = sqlDB.Close()
			}

			fmt.Fprintln(cmd.OutOrStdout(), "Veritabanı hazır")
			return nil
		},
	}
}
