package main

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/fertilitycare/patient-portal/internal/appointments"
	"github.com/fertilitycare/patient-portal/internal/backend"
	"github.com/fertilitycare/patient-portal/internal/treatments"
)

func main() {
	if err := rootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

func rootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:          "portalctl",
		Short:        "Run the appointment calculator and treatment mapper against JSON fixtures",
		SilenceUsage: true,
	}
	root.AddCommand(eligibilityCmd(), treatmentsCmd())
	return root
}

func eligibilityCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "eligibility <bookings.json>",
		Short: "Print the appointment view of each booking, including cancel eligibility",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			nowFlag, _ := cmd.Flags().GetString("now")
			minHours, _ := cmd.Flags().GetInt("min-hours")

			now := time.Now()
			if nowFlag != "" {
				parsed, err := time.Parse(time.RFC3339, nowFlag)
				if err != nil {
					return fmt.Errorf("invalid --now: %w", err)
				}
				now = parsed
			}

			var bookings []backend.Booking
			if err := readList(args[0], &bookings); err != nil {
				return err
			}

			policy := appointments.DefaultPolicy()
			policy.MinHoursToCancel = minHours
			calc := appointments.NewCalculator(policy, func() time.Time { return now })

			views := make([]appointments.AppointmentView, 0, len(bookings))
			for _, b := range bookings {
				views = append(views, appointments.BuildView(b, calc.Evaluate(b)))
			}
			return writeJSON(cmd.OutOrStdout(), views)
		},
	}
	cmd.Flags().String("now", "", "evaluation instant in RFC 3339 (default: current time)")
	cmd.Flags().Int("min-hours", appointments.DefaultMinHoursToCancel, "hours that must remain for a cancellation")
	return cmd
}

func treatmentsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "treatments <plans.json> [bookings.json]",
		Short: "Print the treatment dashboard built from plans and bookings",
		Args:  cobra.RangeArgs(1, 2),
		RunE: func(cmd *cobra.Command, args []string) error {
			bucket, _ := cmd.Flags().GetString("status")
			search, _ := cmd.Flags().GetString("q")

			filter, err := treatments.ParseFilter(bucket, search)
			if err != nil {
				return err
			}

			var plans []backend.TreatmentPlan
			if err := readList(args[0], &plans); err != nil {
				return err
			}
			var bookings []backend.Booking
			if len(args) == 2 {
				if err := readList(args[1], &bookings); err != nil {
					return err
				}
			}

			mapped := make([]treatments.Treatment, 0, len(plans))
			for _, plan := range plans {
				mapped = append(mapped, treatments.MapToTreatment(plan, bookings))
			}
			list := filter.Apply(mapped)
			for _, d := range list.Diagnostics {
				fmt.Fprintf(cmd.ErrOrStderr(), "warning: %s: %s\n", d.TreatmentID, d.Message)
			}
			return writeJSON(cmd.OutOrStdout(), list)
		},
	}
	cmd.Flags().String("status", treatments.BucketAll, "filter bucket: all, in-progress, completed, cancelled")
	cmd.Flags().String("q", "", "search by type, doctor or id")
	return cmd
}

// readList decodes a JSON array, a single object, or a {"data": [...]}
// envelope into out. "-" reads stdin.
func readList[T any](path string, out *[]T) error {
	var raw []byte
	var err error
	if path == "-" {
		raw, err = io.ReadAll(os.Stdin)
	} else {
		raw, err = os.ReadFile(path)
	}
	if err != nil {
		return fmt.Errorf("read %s: %w", path, err)
	}
	raw = bytes.TrimSpace(raw)

	switch {
	case len(raw) == 0:
		return nil
	case raw[0] == '[':
		if err := json.Unmarshal(raw, out); err != nil {
			return fmt.Errorf("decode %s: %w", path, err)
		}
		return nil
	}

	var envelope struct {
		Data json.RawMessage `json:"data"`
	}
	if err := json.Unmarshal(raw, &envelope); err == nil && len(envelope.Data) > 0 && envelope.Data[0] == '[' {
		if err := json.Unmarshal(envelope.Data, out); err != nil {
			return fmt.Errorf("decode %s: %w", path, err)
		}
		return nil
	}

	var single T
	if err := json.Unmarshal(raw, &single); err != nil {
		return fmt.Errorf("decode %s: %w", path, err)
	}
	*out = append(*out, single)
	return nil
}

func writeJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	enc.SetEscapeHTML(false)
	return enc.Encode(v)
}
