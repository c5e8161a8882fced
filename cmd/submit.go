package cmd

import (
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/maverickins/claims-intake/internal/bootstrap"
	"github.com/maverickins/claims-intake/internal/bootstrap/logging"
	"github.com/maverickins/claims-intake/internal/domain/claim"
	"github.com/maverickins/claims-intake/internal/errs"
	"github.com/maverickins/claims-intake/internal/usecase/pipeline"
)

var submitCmd = &cobra.Command{
	Use:   "submit",
	Short: "Submit one claim through the evaluation pipeline",
	RunE: withApp(func(cmd *cobra.Command, _ *bootstrap.App, svc *pipeline.Service) error {
		ctx := logging.WithAttrs(cmd.Context(), slog.String("command", cmd.CommandPath()))

		policyNumber, _ := cmd.Flags().GetString("policy")
		name, _ := cmd.Flags().GetString("name")
		email, _ := cmd.Flags().GetString("email")
		location, _ := cmd.Flags().GetString("location")
		rawDate, _ := cmd.Flags().GetString("date-of-loss")
		photoPath, _ := cmd.Flags().GetString("photo")

		dateOfLoss, err := time.ParseInLocation("2006-01-02", rawDate, time.UTC)
		if err != nil {
			return errs.Wrap(err, "parse date-of-loss")
		}

		photo, err := os.ReadFile(photoPath)
		if err != nil {
			return errs.Wrap(err, "read photo file")
		}

		out, err := svc.Submit(ctx, claim.Submission{
			PolicyNumber:  policyNumber,
			ClaimantName:  name,
			ClaimantEmail: email,
			DateOfLoss:    dateOfLoss,
			Location:      location,
			Photo:         photo,
		})
		if err != nil {
			return errs.Wrap(err, "submit claim")
		}

		w := cmd.OutOrStdout()
		fmt.Fprintf(w, "claim %s finished in state %s\n", out.ClaimRef, out.State)
		if out.State == claim.StateRejected {
			fmt.Fprintf(w, "rejected: %s\n", out.Decision.Reason)
			return nil
		}
		fmt.Fprintf(w, "category=%s estimate=%s weather_ok=%t\n",
			out.Assessment.Category, out.Assessment.Estimate, out.WeatherOK)
		fmt.Fprintf(w, "approved=%t reason=%q\n", out.Decision.Approved, out.Decision.Reason)
		if out.TransactionID != "" {
			fmt.Fprintf(w, "transaction_id=%s\n", out.TransactionID)
		}
		fmt.Fprintf(w, "record_id=%d\n", out.RecordID)
		return nil
	}),
}

func init() {
	rootCmd.AddCommand(submitCmd)
	submitCmd.Flags().String("policy", "", "Policy number")
	submitCmd.Flags().String("name", "", "Claimant name")
	submitCmd.Flags().String("email", "", "Claimant email")
	submitCmd.Flags().String("location", "", "Loss location or postcode")
	submitCmd.Flags().String("date-of-loss", "", "Date of loss (YYYY-MM-DD)")
	submitCmd.Flags().String("photo", "", "Path to the damage photo")
	_ = submitCmd.MarkFlagRequired("policy")
	_ = submitCmd.MarkFlagRequired("name")
	_ = submitCmd.MarkFlagRequired("email")
	_ = submitCmd.MarkFlagRequired("location")
	_ = submitCmd.MarkFlagRequired("date-of-loss")
	_ = submitCmd.MarkFlagRequired("photo")
}
