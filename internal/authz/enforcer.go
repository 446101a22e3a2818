// BBQComp - Offline BBQ Competition Scoring Platform
// SPDX-License-Identifier: AGPL-3.0-or-later

package authz

import (
	_ "embed"
	"fmt"
	"strings"

	"github.com/casbin/casbin/v2"
	"github.com/casbin/casbin/v2/model"

	"github.com/tomtom215/bbqcomp/internal/apperr"
)

//go:embed model.conf
var embeddedModel string

//go:embed policy.csv
var embeddedPolicy string

// Resource names used as Casbin objects. Handlers and services always use
// these constants; free-form strings would silently enforce nothing.
const (
	ResEvents         = "events"
	ResTables         = "tables"
	ResSeats          = "seats"
	ResCategories     = "categories"
	ResCriteria       = "criteria"
	ResTeams          = "teams"
	ResSubmissions    = "submissions"
	ResScores         = "scores"
	ResUsers          = "users"
	ResResults        = "results"
	ResJudging        = "judging"
	ResAssignmentPlan = "assignment_plan"
	ResAuditLogs      = "audit_logs"
)

// Actions used as Casbin acts.
const (
	ActRead         = "read"
	ActWrite        = "write"
	ActDelete       = "delete"
	ActStatusUpdate = "status_update"
	ActVerify       = "verify"
	ActReadScoped   = "read_scoped"
	ActReadDeleted  = "read_deleted"
	ActHardDelete   = "hard_delete"
)

// Enforcer wraps a Casbin enforcer loaded from the embedded RBAC model
// and policy. The policy is immutable for the process lifetime; roles in
// this platform are few enough that there is nothing to administer at
// runtime.
type Enforcer struct {
	enforcer *casbin.SyncedEnforcer
}

// NewEnforcer builds the enforcer from the embedded model and policy.
func NewEnforcer() (*Enforcer, error) {
	m, err := model.NewModelFromString(embeddedModel)
	if err != nil {
		return nil, fmt.Errorf("authz: load model: %w", err)
	}
	e, err := casbin.NewSyncedEnforcer(m)
	if err != nil {
		return nil, fmt.Errorf("authz: create enforcer: %w", err)
	}
	if err := loadEmbeddedPolicy(e, embeddedPolicy); err != nil {
		return nil, fmt.Errorf("authz: load policy: %w", err)
	}
	return &Enforcer{enforcer: e}, nil
}

func loadEmbeddedPolicy(e *casbin.SyncedEnforcer, policy string) error {
	for _, line := range strings.Split(policy, "\n") {
		line = strings.TrimSpace(line)
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		parts := strings.Split(line, ",")
		for i := range parts {
			parts[i] = strings.TrimSpace(parts[i])
		}
		switch parts[0] {
		case "p":
			if len(parts) != 4 {
				return fmt.Errorf("malformed policy line: %q", line)
			}
			if _, err := e.AddPolicy(parts[1], parts[2], parts[3]); err != nil {
				return err
			}
		case "g":
			if len(parts) != 3 {
				return fmt.Errorf("malformed grouping line: %q", line)
			}
			if _, err := e.AddGroupingPolicy(parts[1], parts[2]); err != nil {
				return err
			}
		default:
			return fmt.Errorf("unknown policy rule type: %q", line)
		}
	}
	return nil
}

// Allowed reports whether the principal may perform act on resource.
func (e *Enforcer) Allowed(p Principal, resource, act string) bool {
	ok, err := e.enforcer.Enforce(p.Subject(), resource, act)
	if err != nil {
		return false
	}
	return ok
}

// Require returns nil when the principal may perform act on resource, or
// a FORBIDDEN apperr otherwise.
func (e *Enforcer) Require(p Principal, resource, act string) error {
	if !e.Allowed(p, resource, act) {
		return apperr.Forbidden(fmt.Sprintf("%s may not %s %s", p.Subject(), act, resource))
	}
	return nil
}
