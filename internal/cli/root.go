package cli

import (
	"time"

	"github.com/spf13/cobra"
)

// RootOptions tüm komutların ortak ayarları.
type RootOptions struct {
	// Now testlerde saati sabitlemek için; nil ise time.Now.
	Now func() time.Time
}

func (o *RootOptions) now() time.Time {
	if o.Now != nil {
		return o.Now()
	}
	return time.Now()
}

// NewRootCommand implant takip uygulamasının kök komutunu kurar.
func NewRootCommand() *cobra.Command {
	opts := &RootOptions{}

	cmd := &cobra.Command{
		Use:           "dentsun",
		Short:         "Dentsun implant stok ve hasta takibi",
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	cmd.AddCommand(NewServeCommand(opts))
	cmd.AddCommand(NewMigrateCommand(opts))
	cmd.AddCommand(NewCodeCommand(opts))

	return cmd
}
