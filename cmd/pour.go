package cmd

import (
	"context"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/quentinlb/cocktaild/config"
	"github.com/quentinlb/cocktaild/core/model"
	"github.com/quentinlb/cocktaild/infra/logger"
	"github.com/quentinlb/cocktaild/infra/machine"
)

var (
	pourSlot    int
	pourSeconds float64
)

// pourCmd actuates one slot directly. Useful when calibrating a measuring
// cup or checking the machine connection without going through an order.
var pourCmd = &cobra.Command{
	Use:   "pour",
	Short: "Actuate one dispenser slot for a fixed duration",
	RunE:  runPour,
}

func init() {
	pourCmd.Flags().IntVar(&pourSlot, "slot", 1, "slot number to actuate")
	pourCmd.Flags().Float64Var(&pourSeconds, "seconds", 2, "press duration in seconds")
	rootCmd.AddCommand(pourCmd)
}

func runPour(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load(cfgPath)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	if pourSlot <= 0 || pourSeconds <= 0 {
		return fmt.Errorf("slot and seconds must be positive")
	}

	logg := logger.New("pour-command")
	client, err := machine.NewPahoClient(cfg.Machine)
	if err != nil {
		return fmt.Errorf("machine client: %w", err)
	}
	defer client.Close()

	ctx, cancel := context.WithTimeout(context.Background(),
		time.Duration(cfg.Dispatch.MachineTimeoutSeconds)*time.Second)
	defer cancel()

	step := model.MachineStep{
		StepID:  "manual-pour-1",
		Slot:    pourSlot,
		Pressed: pourSeconds,
	}
	if err := client.MakeCocktail(ctx, []model.MachineStep{step}); err != nil {
		return fmt.Errorf("pour: %w", err)
	}
	logg.Infof("slot %d actuated for %.1fs", pourSlot, pourSeconds)
	return nil
}
