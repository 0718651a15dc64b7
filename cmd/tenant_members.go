// Copyright 2026 Canonical Ltd.
// SPDX-License-Identifier: AGPL-3.0

package cmd

import (
	"fmt"
	"net/http"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/canonical/tenant-sites/internal/types"
	"github.com/canonical/tenant-sites/pkg/tenant"
)

var membersCmd = &cobra.Command{
	Use:   "members",
	Short: "Manage the members of a tenant",
}

func membersPath(tenantID string, rest ...string) string {
	path := adminPath + "/tenants/" + escape(tenantID) + "/members"
	if len(rest) > 0 {
		path += "/" + escape(rest...)
	}
	return path
}

var listMembersCmd = &cobra.Command{
	Use:   "list [tenant-id]",
	Short: "List members of a tenant",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		client, err := getClient(cmd.Context())
		if err != nil {
			return err
		}

		var members []*types.TenantUser
		if err := client.do(cmd.Context(), http.MethodGet, membersPath(args[0]), nil, &members); err != nil {
			return fmt.Errorf("failed to list members: %w", err)
		}

		w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 3, ' ', 0)
		fmt.Fprintln(w, "USER ID\tEMAIL\tROLE")
		for _, m := range members {
			fmt.Fprintf(w, "%s\t%s\t%s\n", m.UserID, m.Email, m.Role)
		}
		w.Flush()
		return nil
	},
}

var addMemberCmd = &cobra.Command{
	Use:   "add [tenant-id] [email] [role]",
	Short: "Add a member directly, creating the identity when needed",
	Args:  cobra.ExactArgs(3),
	RunE: func(cmd *cobra.Command, args []string) error {
		client, err := getClient(cmd.Context())
		if err != nil {
			return err
		}

		m := new(types.TenantUser)
		in := &tenant.MemberRequest{Email: args[1], Role: args[2]}
		if err := client.do(cmd.Context(), http.MethodPost, membersPath(args[0]), in, m); err != nil {
			return fmt.Errorf("failed to add member: %w", err)
		}

		fmt.Fprintf(cmd.OutOrStdout(), "Member added: %s (Role: %s)\n", m.Email, m.Role)
		return nil
	},
}

var inviteMemberCmd = &cobra.Command{
	Use:   "invite [tenant-id] [email] [role]",
	Short: "Invite a member, printing the recovery link to send them",
	Args:  cobra.ExactArgs(3),
	RunE: func(cmd *cobra.Command, args []string) error {
		client, err := getClient(cmd.Context())
		if err != nil {
			return err
		}

		invite := new(tenant.InviteResponse)
		in := &tenant.MemberRequest{Email: args[1], Role: args[2]}
		if err := client.do(cmd.Context(), http.MethodPost, adminPath+"/tenants/"+escape(args[0])+"/invitations", in, invite); err != nil {
			return fmt.Errorf("failed to invite member: %w", err)
		}

		fmt.Fprintf(cmd.OutOrStdout(), "Invitation sent to %s\n", args[1])
		fmt.Fprintf(cmd.OutOrStdout(), "Link: %s\n", invite.Link)
		fmt.Fprintf(cmd.OutOrStdout(), "Code: %s\n", invite.Code)
		return nil
	},
}

var updateMemberCmd = &cobra.Command{
	Use:   "update [tenant-id] [user-id] [role]",
	Short: "Change the role of a member",
	Args:  cobra.ExactArgs(3),
	RunE: func(cmd *cobra.Command, args []string) error {
		client, err := getClient(cmd.Context())
		if err != nil {
			return err
		}

		m := new(types.TenantUser)
		in := &tenant.UpdateMemberRequest{Role: args[2]}
		if err := client.do(cmd.Context(), http.MethodPatch, membersPath(args[0], args[1]), in, m); err != nil {
			return fmt.Errorf("failed to update member: %w", err)
		}

		fmt.Fprintf(cmd.OutOrStdout(), "Member updated: %s\n", m.Email)
		fmt.Fprintf(cmd.OutOrStdout(), "New Role: %s\n", m.Role)
		return nil
	},
}

var removeMemberCmd = &cobra.Command{
	Use:   "remove [tenant-id] [user-id]",
	Short: "Remove a member from a tenant",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		client, err := getClient(cmd.Context())
		if err != nil {
			return err
		}

		if err := client.do(cmd.Context(), http.MethodDelete, membersPath(args[0], args[1]), nil, nil); err != nil {
			return fmt.Errorf("failed to remove member: %w", err)
		}

		fmt.Fprintf(cmd.OutOrStdout(), "Member removed: %s\n", args[1])
		return nil
	},
}

func init() {
	tenantCmd.AddCommand(membersCmd)
	membersCmd.AddCommand(listMembersCmd, addMemberCmd, inviteMemberCmd, updateMemberCmd, removeMemberCmd)
}
