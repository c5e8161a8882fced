package cmd

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/maverickins/claims-intake/internal/bootstrap"
	"github.com/maverickins/claims-intake/internal/errs"
	"github.com/maverickins/claims-intake/internal/ports"
	"github.com/maverickins/claims-intake/internal/usecase/pipeline"
)

var claimsCmd = &cobra.Command{
	Use:   "claims",
	Short: "Read the claim audit log",
}

var claimsListCmd = &cobra.Command{
	Use:   "list",
	Short: "List audit records",
	RunE: withApp(func(cmd *cobra.Command, _ *bootstrap.App, svc *pipeline.Service) error {
		policyNumber, _ := cmd.Flags().GetString("policy")
		approvedOnly, _ := cmd.Flags().GetBool("approved-only")
		limit, _ := cmd.Flags().GetInt("limit")

		records, err := svc.ListRecords(cmd.Context(), ports.RecordFilter{
			PolicyNumber: policyNumber,
			ApprovedOnly: approvedOnly,
			Limit:        limit,
		})
		if err != nil {
			return errs.Wrap(err, "list claim records")
		}

		w := cmd.OutOrStdout()
		for _, rec := range records {
			txID := "-"
			if rec.TransactionID != nil {
				txID = *rec.TransactionID
			}
			fmt.Fprintf(w, "%d\t%s\t%s\t%s\t%s\tapproved=%t\ttx=%s\n",
				rec.RecordID, rec.PolicyNumber, rec.DateOfLoss.Format("2006-01-02"),
				rec.Category, rec.Estimate, rec.Approved, txID)
		}
		fmt.Fprintf(w, "%d record(s)\n", len(records))
		return nil
	}),
}

var claimsShowCmd = &cobra.Command{
	Use:   "show <record-id>",
	Short: "Show one audit record",
	Args:  cobra.ExactArgs(1),
	RunE: withApp(func(cmd *cobra.Command, _ *bootstrap.App, svc *pipeline.Service) error {
		recordID, err := strconv.ParseUint(cmd.Flags().Arg(0), 10, 64)
		if err != nil {
			return errs.Wrap(err, "parse record id")
		}

		rec, err := svc.GetRecord(cmd.Context(), recordID)
		if err != nil {
			return errs.Wrap(err, "get claim record")
		}

		w := cmd.OutOrStdout()
		fmt.Fprintf(w, "record_id:      %d\n", rec.RecordID)
		fmt.Fprintf(w, "claim_ref:      %s\n", rec.ClaimRef)
		fmt.Fprintf(w, "policy_number:  %s\n", rec.PolicyNumber)
		fmt.Fprintf(w, "claimant:       %s <%s>\n", rec.ClaimantName, rec.ClaimantEmail)
		fmt.Fprintf(w, "date_of_loss:   %s\n", rec.DateOfLoss.Format("2006-01-02"))
		fmt.Fprintf(w, "location:       %s\n", rec.Location)
		fmt.Fprintf(w, "category:       %s\n", rec.Category)
		fmt.Fprintf(w, "estimate:       %s\n", rec.Estimate)
		fmt.Fprintf(w, "weather_ok:     %t\n", rec.WeatherOK)
		fmt.Fprintf(w, "approved:       %t\n", rec.Approved)
		fmt.Fprintf(w, "reason:         %s\n", rec.Reason)
		if rec.TransactionID != nil {
			fmt.Fprintf(w, "transaction_id: %s\n", *rec.TransactionID)
		}
		return nil
	}),
}

func init() {
	rootCmd.AddCommand(claimsCmd)
	claimsCmd.AddCommand(claimsListCmd)
	claimsCmd.AddCommand(claimsShowCmd)
	claimsListCmd.Flags().String("policy", "", "Filter by policy number")
	claimsListCmd.Flags().Bool("approved-only", false, "Only approved claims")
	claimsListCmd.Flags().Int("limit", 0, "Maximum number of records (0 = all)")
}
