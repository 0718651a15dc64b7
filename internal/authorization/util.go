// Copyright 2026 Canonical Ltd.
// SPDX-License-Identifier: AGPL-3.0

package authorization

import (
	"fmt"

	"github.com/canonical/tenant-sites/internal/types"
)

const (
	OWNER_RELATION  = "owner"
	ADMIN_RELATION  = "admin"
	EDITOR_RELATION = "editor"
	MEMBER_RELATION = "member"

	CAN_VIEW_PERMISSION   = "can_view"
	CAN_EDIT_PERMISSION   = "can_edit"
	CAN_DELETE_PERMISSION = "can_delete"
)

var ErrUnknownRole = fmt.Errorf("unknown membership role")

func UserTuple(userId string) string {
	return "user:" + userId
}

func TenantTuple(tenantId string) string {
	return "tenant:" + tenantId
}

// RoleRelation maps a membership role to the tenant relation mirroring it.
func RoleRelation(role string) (string, error) {
	switch role {
	case types.RoleOwner:
		return OWNER_RELATION, nil
	case types.RoleAdmin:
		return ADMIN_RELATION, nil
	case types.RoleEditor:
		return EDITOR_RELATION, nil
	case types.RoleUser:
		return MEMBER_RELATION, nil
	}
	return "", fmt.Errorf("%w: %q", ErrUnknownRole, role)
}
