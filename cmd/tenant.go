// Copyright 2026 Canonical Ltd.
// SPDX-License-Identifier: AGPL-3.0

package cmd

import (
	"fmt"
	"io"
	"net/http"
	"net/url"
	"sort"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/canonical/tenant-sites/internal/types"
	"github.com/canonical/tenant-sites/pkg/tenant"
)

const adminPath = "/api/v0/admin"

var tenantCmd = &cobra.Command{
	Use:   "tenant",
	Short: "Manage tenants",
}

var createTenantCmd = &cobra.Command{
	Use:   "create [name] [slug]",
	Short: "Create a new tenant",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		client, err := getClient(cmd.Context())
		if err != nil {
			return err
		}

		agencyOwner, _ := cmd.Flags().GetBool("agency-owner")

		t := new(types.Tenant)
		in := &tenant.CreateTenantRequest{Name: args[0], Slug: args[1], AgencyOwner: agencyOwner}
		if err := client.do(cmd.Context(), http.MethodPost, adminPath+"/tenants", in, t); err != nil {
			return fmt.Errorf("failed to create tenant: %w", err)
		}

		fmt.Fprintf(cmd.OutOrStdout(), "Tenant created: %s (ID: %s)\n", t.Name, t.ID)
		return nil
	},
}

var getTenantCmd = &cobra.Command{
	Use:   "get [id]",
	Short: "Show a tenant",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		client, err := getClient(cmd.Context())
		if err != nil {
			return err
		}

		t := new(types.Tenant)
		if err := client.do(cmd.Context(), http.MethodGet, adminPath+"/tenants/"+escape(args[0]), nil, t); err != nil {
			return fmt.Errorf("failed to get tenant: %w", err)
		}

		printTenants(cmd.OutOrStdout(), []*types.Tenant{t})
		return nil
	},
}

var listTenantsCmd = &cobra.Command{
	Use:   "list",
	Short: "List all tenants",
	RunE: func(cmd *cobra.Command, args []string) error {
		client, err := getClient(cmd.Context())
		if err != nil {
			return err
		}

		var tenants []*types.Tenant
		if err := client.do(cmd.Context(), http.MethodGet, adminPath+"/tenants", nil, &tenants); err != nil {
			return fmt.Errorf("failed to list tenants: %w", err)
		}

		printTenants(cmd.OutOrStdout(), tenants)
		return nil
	},
}

var myTenantsCmd = &cobra.Command{
	Use:   "mine",
	Short: "List the tenants the caller belongs to",
	RunE: func(cmd *cobra.Command, args []string) error {
		client, err := getClient(cmd.Context())
		if err != nil {
			return err
		}

		var tenants []*types.Tenant
		if err := client.do(cmd.Context(), http.MethodGet, "/api/v0/me/tenants", nil, &tenants); err != nil {
			return fmt.Errorf("failed to list tenants: %w", err)
		}

		printTenants(cmd.OutOrStdout(), tenants)
		return nil
	},
}

var updateTenantCmd = &cobra.Command{
	Use:   "update [id]",
	Short: "Update a tenant",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		in := new(tenant.UpdateTenantRequest)
		if cmd.Flags().Changed("name") {
			name, _ := cmd.Flags().GetString("name")
			in.Name = &name
		}
		if cmd.Flags().Changed("slug") {
			slug, _ := cmd.Flags().GetString("slug")
			in.Slug = &slug
		}
		if cmd.Flags().Changed("agency-owner") {
			agencyOwner, _ := cmd.Flags().GetBool("agency-owner")
			in.AgencyOwner = &agencyOwner
		}

		return patchTenant(cmd, args[0], in)
	},
}

var enableTenantCmd = &cobra.Command{
	Use:   "enable [id]",
	Short: "Enable a tenant, its sites resolve again",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		enabled := true
		return patchTenant(cmd, args[0], &tenant.UpdateTenantRequest{Enabled: &enabled})
	},
}

var disableTenantCmd = &cobra.Command{
	Use:   "disable [id]",
	Short: "Disable a tenant, its sites stop resolving",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		enabled := false
		return patchTenant(cmd, args[0], &tenant.UpdateTenantRequest{Enabled: &enabled})
	},
}

var deleteTenantCmd = &cobra.Command{
	Use:   "delete [id]",
	Short: "Delete a tenant with its domains, members and documents",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		client, err := getClient(cmd.Context())
		if err != nil {
			return err
		}

		if err := client.do(cmd.Context(), http.MethodDelete, adminPath+"/tenants/"+escape(args[0]), nil, nil); err != nil {
			return fmt.Errorf("failed to delete tenant: %w", err)
		}

		fmt.Fprintf(cmd.OutOrStdout(), "Tenant deleted: %s\n", args[0])
		return nil
	},
}

var domainsCmd = &cobra.Command{
	Use:   "domains",
	Short: "Manage the domains tenants are served on",
}

var listDomainsCmd = &cobra.Command{
	Use:   "list [tenant-id]",
	Short: "List domains, optionally of a single tenant",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		client, err := getClient(cmd.Context())
		if err != nil {
			return err
		}

		path := adminPath + "/domains"
		if len(args) == 1 {
			path += "?" + url.Values{"tenant_id": {args[0]}}.Encode()
		}

		var domains []*types.Domain
		if err := client.do(cmd.Context(), http.MethodGet, path, nil, &domains); err != nil {
			return fmt.Errorf("failed to list domains: %w", err)
		}

		printDomains(cmd.OutOrStdout(), domains)
		return nil
	},
}

var addDomainCmd = &cobra.Command{
	Use:   "add [hostname] [tenant-id]",
	Short: "Serve a tenant on a hostname",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		client, err := getClient(cmd.Context())
		if err != nil {
			return err
		}

		in := &tenant.CreateDomainRequest{Hostname: args[0], TenantID: args[1]}
		if cmd.Flags().Changed("inactive") {
			inactive, _ := cmd.Flags().GetBool("inactive")
			active := !inactive
			in.Active = &active
		}
		if features, _ := cmd.Flags().GetStringSlice("features"); len(features) > 0 {
			in.Features = featureFlags(features)
		}

		d := new(types.Domain)
		if err := client.do(cmd.Context(), http.MethodPost, adminPath+"/domains", in, d); err != nil {
			return fmt.Errorf("failed to add domain: %w", err)
		}

		fmt.Fprintf(cmd.OutOrStdout(), "Domain added: %s (ID: %s)\n", d.Hostname, d.ID)
		return nil
	},
}

var updateDomainCmd = &cobra.Command{
	Use:   "update [id]",
	Short: "Update a domain",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		client, err := getClient(cmd.Context())
		if err != nil {
			return err
		}

		in := new(tenant.UpdateDomainRequest)
		if cmd.Flags().Changed("hostname") {
			hostname, _ := cmd.Flags().GetString("hostname")
			in.Hostname = &hostname
		}
		if cmd.Flags().Changed("tenant-id") {
			tenantID, _ := cmd.Flags().GetString("tenant-id")
			in.TenantID = &tenantID
		}
		if cmd.Flags().Changed("active") {
			active, _ := cmd.Flags().GetBool("active")
			in.Active = &active
		}
		if cmd.Flags().Changed("features") {
			features, _ := cmd.Flags().GetStringSlice("features")
			in.Features = featureFlags(features)
		}

		d := new(types.Domain)
		if err := client.do(cmd.Context(), http.MethodPatch, adminPath+"/domains/"+escape(args[0]), in, d); err != nil {
			return fmt.Errorf("failed to update domain: %w", err)
		}

		printDomains(cmd.OutOrStdout(), []*types.Domain{d})
		return nil
	},
}

var removeDomainCmd = &cobra.Command{
	Use:   "remove [id]",
	Short: "Stop serving a domain",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		client, err := getClient(cmd.Context())
		if err != nil {
			return err
		}

		if err := client.do(cmd.Context(), http.MethodDelete, adminPath+"/domains/"+escape(args[0]), nil, nil); err != nil {
			return fmt.Errorf("failed to remove domain: %w", err)
		}

		fmt.Fprintf(cmd.OutOrStdout(), "Domain removed: %s\n", args[0])
		return nil
	},
}

func patchTenant(cmd *cobra.Command, id string, in *tenant.UpdateTenantRequest) error {
	client, err := getClient(cmd.Context())
	if err != nil {
		return err
	}

	t := new(types.Tenant)
	if err := client.do(cmd.Context(), http.MethodPatch, adminPath+"/tenants/"+escape(id), in, t); err != nil {
		return fmt.Errorf("failed to update tenant: %w", err)
	}

	printTenants(cmd.OutOrStdout(), []*types.Tenant{t})
	return nil
}

// featureFlags turns "blog" and "shop=false" into a feature map.
func featureFlags(values []string) map[string]bool {
	features := make(map[string]bool, len(values))
	for _, v := range values {
		name, value, found := strings.Cut(v, "=")
		features[name] = !found || value != "false"
	}
	return features
}

func printTenants(out io.Writer, tenants []*types.Tenant) {
	w := tabwriter.NewWriter(out, 0, 0, 3, ' ', 0)
	fmt.Fprintln(w, "ID\tNAME\tSLUG\tENABLED\tAGENCY OWNER\tCREATED AT")
	for _, t := range tenants {
		fmt.Fprintf(w, "%s\t%s\t%s\t%t\t%t\t%s\n", t.ID, t.Name, t.Slug, t.Enabled, t.AgencyOwner, t.CreatedAt.Format("2006-01-02 15:04:05"))
	}
	w.Flush()
}

func printDomains(out io.Writer, domains []*types.Domain) {
	w := tabwriter.NewWriter(out, 0, 0, 3, ' ', 0)
	fmt.Fprintln(w, "ID\tHOSTNAME\tTENANT ID\tACTIVE\tFEATURES")
	for _, d := range domains {
		enabled := make([]string, 0, len(d.Features))
		for name, on := range d.Features {
			if on {
				enabled = append(enabled, name)
			}
		}
		sort.Strings(enabled)

		fmt.Fprintf(w, "%s\t%s\t%s\t%t\t%s\n", d.ID, d.Hostname, d.TenantID, d.Active, strings.Join(enabled, ","))
	}
	w.Flush()
}

func init() {
	rootCmd.AddCommand(tenantCmd)
	tenantCmd.AddCommand(createTenantCmd, getTenantCmd, listTenantsCmd, myTenantsCmd, updateTenantCmd, enableTenantCmd, disableTenantCmd, deleteTenantCmd)
	tenantCmd.AddCommand(domainsCmd)
	domainsCmd.AddCommand(listDomainsCmd, addDomainCmd, updateDomainCmd, removeDomainCmd)

	createTenantCmd.Flags().Bool("agency-owner", false, "Serve the agency's own site from this tenant")

	updateTenantCmd.Flags().String("name", "", "New tenant name")
	updateTenantCmd.Flags().String("slug", "", "New tenant slug")
	updateTenantCmd.Flags().Bool("agency-owner", false, "Serve the agency's own site from this tenant")

	addDomainCmd.Flags().Bool("inactive", false, "Register the domain without serving it yet")
	addDomainCmd.Flags().StringSlice("features", []string{}, "Features enabled on the domain, e.g. blog,shop=false")

	updateDomainCmd.Flags().String("hostname", "", "New hostname")
	updateDomainCmd.Flags().String("tenant-id", "", "Move the domain to another tenant")
	updateDomainCmd.Flags().Bool("active", true, "Serve the domain")
	updateDomainCmd.Flags().StringSlice("features", []string{}, "Replace the domain features, e.g. blog,shop=false")
}
