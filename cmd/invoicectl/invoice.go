package main

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"invoicer/internal/domain"
	"invoicer/internal/export"
)

var renderPDFCmd = &cobra.Command{
	Use:   "render-pdf <invoice-id>",
	Short: "Render an invoice PDF and store it in object storage",
	Example: `  invoicectl render-pdf 6f1c2d3e-4b5a-6789-0abc-def012345678
  invoicectl render-pdf 6f1c2d3e-4b5a-6789-0abc-def012345678 -o invoice.pdf`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		id, err := uuid.Parse(args[0])
		if err != nil {
			return fmt.Errorf("invalid invoice id %q: %w", args[0], err)
		}
		ctx := cmd.Context()
		svcs, err := services(ctx)
		if err != nil {
			return err
		}

		result, err := svcs.Dispatch.GeneratePDF(ctx, id)
		if err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "stored %s (%d bytes)\n", result.FilePath, result.Size)
		if result.Overflow {
			fmt.Fprintln(cmd.OutOrStdout(), "warning: line items did not fit on one page")
		}

		out, _ := cmd.Flags().GetString("output")
		if out == "" {
			return nil
		}
		file, err := svcs.Dispatch.DownloadPDF(ctx, id)
		if err != nil {
			return err
		}
		return os.WriteFile(out, file.Content, 0o644)
	},
}

var previewCmd = &cobra.Command{
	Use:   "preview <invoice-id>",
	Short: "Print the rendered email for an invoice",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		id, err := uuid.Parse(args[0])
		if err != nil {
			return fmt.Errorf("invalid invoice id %q: %w", args[0], err)
		}
		svcs, err := services(cmd.Context())
		if err != nil {
			return err
		}
		preview, err := svcs.Dispatch.Preview(cmd.Context(), id)
		if err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Subject: %s\n\n%s\n", preview.Subject, preview.HTML)
		return nil
	},
}

var remindCmd = &cobra.Command{
	Use:   "remind",
	Short: "Run the unpaid invoice reminder once",
	Long: `Run the reminder job in-process. It only sends on Fridays and on the last
day of the month, in the configured timezone.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		svcs, err := services(cmd.Context())
		if err != nil {
			return err
		}
		result, err := svcs.Reminders.Run(cmd.Context())
		if err != nil {
			return err
		}
		enc := json.NewEncoder(cmd.OutOrStdout())
		enc.SetIndent("", "  ")
		return enc.Encode(result)
	},
}

var exportCmd = &cobra.Command{
	Use:   "export",
	Short: "Export invoices to CSV or XLSX",
	Example: `  invoicectl export --format xlsx --status paid
  invoicectl export -o unpaid.csv --status pending`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		format, _ := cmd.Flags().GetString("format")
		status, _ := cmd.Flags().GetString("status")
		clientID, _ := cmd.Flags().GetString("client")
		out, _ := cmd.Flags().GetString("output")

		filter := domain.InvoiceFilter{Status: domain.InvoiceStatus(strings.ToLower(status))}
		if clientID != "" {
			id, err := uuid.Parse(clientID)
			if err != nil {
				return fmt.Errorf("invalid client id %q: %w", clientID, err)
			}
			filter.ClientID = &id
		}
		exportFormat := domain.ExportFormat(strings.ToLower(format))
		if out == "" {
			out = export.BuildFilename("invoices", exportFormat, time.Now())
		}

		svcs, err := services(cmd.Context())
		if err != nil {
			return err
		}
		f, err := os.Create(out)
		if err != nil {
			return err
		}
		if err := svcs.Invoices.Export(cmd.Context(), filter, exportFormat, f); err != nil {
			f.Close()
			_ = os.Remove(out)
			return err
		}
		if err := f.Close(); err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "wrote %s\n", out)
		return nil
	},
}

var nextNumberCmd = &cobra.Command{
	Use:   "next-number <client-id>",
	Short: "Print the suggested next invoice number for a client",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		id, err := uuid.Parse(args[0])
		if err != nil {
			return fmt.Errorf("invalid client id %q: %w", args[0], err)
		}
		svcs, err := services(cmd.Context())
		if err != nil {
			return err
		}
		next, err := svcs.Invoices.NextNumber(cmd.Context(), id)
		if err != nil {
			return err
		}
		fmt.Fprintln(cmd.OutOrStdout(), next)
		return nil
	},
}

func init() {
	renderPDFCmd.Flags().StringP("output", "o", "", "Also write the stored PDF to this path")
	exportCmd.Flags().StringP("format", "f", "csv", "Export format (csv or xlsx)")
	exportCmd.Flags().String("status", "", "Filter by status (pending, sent, paid, overdue)")
	exportCmd.Flags().String("client", "", "Filter by client id")
	exportCmd.Flags().StringP("output", "o", "", "Output path (defaults to invoices_<date>.<ext>)")

	rootCmd.AddCommand(renderPDFCmd, previewCmd, remindCmd, exportCmd, nextNumberCmd)
}
