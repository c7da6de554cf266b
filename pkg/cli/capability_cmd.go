package cli

import (
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/spf13/cobra"
)

type capabilityItem struct {
	Code  string `json:"code"`
	Label string `json:"label"`
}

type grantItem struct {
	ID           string     `json:"id"`
	EmploymentID string     `json:"employmentId"`
	Code         string     `json:"code"`
	GrantedBy    string     `json:"grantedBy"`
	GrantedAt    time.Time  `json:"grantedAt"`
	RevokedBy    *string    `json:"revokedBy"`
	RevokedAt    *time.Time `json:"revokedAt"`
	IsActive     bool       `json:"isActive"`
	Notes        *string    `json:"notes"`
}

func newCapabilitiesCmd(o *opts) *cobra.Command {
	return &cobra.Command{
		Use:   "capabilities",
		Short: "List the capability catalog",
		RunE: func(cmd *cobra.Command, _ []string) error {
			if err := validateOutputFormat(o.output); err != nil {
				return err
			}
			var resp struct {
				Capabilities []capabilityItem `json:"capabilities"`
			}
			if err := o.client().do(cmd.Context(), "GET", "/v1/capabilities", nil, &resp); err != nil {
				return err
			}
			if o.output == "json" {
				return printJSON(cmd.OutOrStdout(), resp.Capabilities)
			}
			rows := [][]string{{"CODE", "LABEL"}}
			for _, c := range resp.Capabilities {
				rows = append(rows, []string{c.Code, c.Label})
			}
			return printTable(cmd.OutOrStdout(), rows)
		},
	}
}

func newGrantCmd(o *opts) *cobra.Command {
	var (
		tenantID     string
		employmentID string
		notes        string
	)
	cmd := &cobra.Command{
		Use:   "grant CODE [CODE...]",
		Short: "Grant capabilities to an employment",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			body := map[string]interface{}{"codes": args}
			if notes != "" {
				body["notes"] = notes
			}
			var resp struct {
				Granted []grantItem `json:"granted"`
				Skipped int         `json:"skipped"`
			}
			path := fmt.Sprintf("/v1/tenants/%s/employments/%s/capabilities", url.PathEscape(tenantID), url.PathEscape(employmentID))
			if err := o.client().do(cmd.Context(), "POST", path, body, &resp); err != nil {
				return err
			}
			if o.output == "json" {
				return printJSON(cmd.OutOrStdout(), resp)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "granted %d, skipped %d (already active)\n", len(resp.Granted), resp.Skipped)
			return nil
		},
	}
	cmd.Flags().StringVar(&tenantID, "tenant", "", "Tenant ID")
	cmd.Flags().StringVar(&employmentID, "employment", "", "Employment ID")
	cmd.Flags().StringVar(&notes, "notes", "", "Optional note recorded on each grant")
	_ = cmd.MarkFlagRequired("tenant")
	_ = cmd.MarkFlagRequired("employment")
	return cmd
}

func newRevokeCmd(o *opts) *cobra.Command {
	var (
		tenantID     string
		employmentID string
	)
	cmd := &cobra.Command{
		Use:   "revoke CODE [CODE...]",
		Short: "Revoke capabilities from an employment",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			path := fmt.Sprintf("/v1/tenants/%s/employments/%s/capabilities", url.PathEscape(tenantID), url.PathEscape(employmentID))
			if err := o.client().do(cmd.Context(), "DELETE", path, map[string]interface{}{"codes": args}, nil); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "revoked: %s\n", strings.Join(args, ", "))
			return nil
		},
	}
	cmd.Flags().StringVar(&tenantID, "tenant", "", "Tenant ID")
	cmd.Flags().StringVar(&employmentID, "employment", "", "Employment ID")
	_ = cmd.MarkFlagRequired("tenant")
	_ = cmd.MarkFlagRequired("employment")
	return cmd
}

func newGrantsCmd(o *opts) *cobra.Command {
	var (
		tenantID     string
		employmentID string
	)
	cmd := &cobra.Command{
		Use:   "grants",
		Short: "Show the grant history of an employment",
		RunE: func(cmd *cobra.Command, _ []string) error {
			if err := validateOutputFormat(o.output); err != nil {
				return err
			}
			var resp struct {
				Grants []grantItem `json:"grants"`
				Total  int64       `json:"total"`
			}
			path := fmt.Sprintf("/v1/tenants/%s/employments/%s/capabilities", url.PathEscape(tenantID), url.PathEscape(employmentID))
			if err := o.client().do(cmd.Context(), "GET", path, nil, &resp); err != nil {
				return err
			}
			if o.output == "json" {
				return printJSON(cmd.OutOrStdout(), resp)
			}
			rows := [][]string{{"CODE", "ACTIVE", "GRANTED BY", "GRANTED AT", "REVOKED BY"}}
			for _, g := range resp.Grants {
				revokedBy := ""
				if g.RevokedBy != nil {
					revokedBy = *g.RevokedBy
				}
				rows = append(rows, []string{
					g.Code,
					fmt.Sprintf("%t", g.IsActive),
					g.GrantedBy,
					g.GrantedAt.Format(time.RFC3339),
					revokedBy,
				})
			}
			return printTable(cmd.OutOrStdout(), rows)
		},
	}
	cmd.Flags().StringVar(&tenantID, "tenant", "", "Tenant ID")
	cmd.Flags().StringVar(&employmentID, "employment", "", "Employment ID")
	_ = cmd.MarkFlagRequired("tenant")
	_ = cmd.MarkFlagRequired("employment")
	return cmd
}

func newCleanupCmd(o *opts) *cobra.Command {
	return &cobra.Command{
		Use:   "cleanup",
		Short: "Run the orphaned-grant consistency sweep",
		RunE: func(cmd *cobra.Command, _ []string) error {
			var resp struct {
				CleanedCount int      `json:"cleanedCount"`
				Reasons      []string `json:"reasons"`
			}
			if err := o.client().do(cmd.Context(), "POST", "/v1/admin/cleanup", nil, &resp); err != nil {
				return err
			}
			if o.output == "json" {
				return printJSON(cmd.OutOrStdout(), resp)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "cleaned %d grant(s)\n", resp.CleanedCount)
			for _, reason := range resp.Reasons {
				fmt.Fprintf(cmd.OutOrStdout(), "  - %s\n", reason)
			}
			return nil
		},
	}
}

func newAuditCmd(o *opts) *cobra.Command {
	var tenantID string
	cmd := &cobra.Command{
		Use:   "audit",
		Short: "List the audit trail of a tenant",
		RunE: func(cmd *cobra.Command, _ []string) error {
			if err := validateOutputFormat(o.output); err != nil {
				return err
			}
			var resp struct {
				Entries []struct {
					ActorID      string    `json:"actorId"`
					Action       string    `json:"action"`
					EmploymentID string    `json:"employmentId"`
					Detail       string    `json:"detail"`
					CreatedAt    time.Time `json:"createdAt"`
				} `json:"entries"`
				Total int64 `json:"total"`
			}
			path := fmt.Sprintf("/v1/tenants/%s/audit", url.PathEscape(tenantID))
			if err := o.client().do(cmd.Context(), "GET", path, nil, &resp); err != nil {
				return err
			}
			if o.output == "json" {
				return printJSON(cmd.OutOrStdout(), resp)
			}
			rows := [][]string{{"WHEN", "ACTOR", "ACTION", "EMPLOYMENT", "DETAIL"}}
			for _, e := range resp.Entries {
				rows = append(rows, []string{e.CreatedAt.Format(time.RFC3339), e.ActorID, e.Action, e.EmploymentID, e.Detail})
			}
			return printTable(cmd.OutOrStdout(), rows)
		},
	}
	cmd.Flags().StringVar(&tenantID, "tenant", "", "Tenant ID")
	_ = cmd.MarkFlagRequired("tenant")
	return cmd
}
