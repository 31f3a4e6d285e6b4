// Package policy holds the declarative authorization table: every protected
// operation names the closed set of actor types allowed to call it, and the
// administrator-only management operations additionally name the module
// grant they require. The table is plain data consulted by one function,
// so it can be inspected and unit-tested in isolation.
package policy

import "github.com/cervak/pricesurvey-api/internal/core/domain"

// Operation identifiers referenced by the route table.
const (
	OpLogout              = "auth.logout"
	OpRegisterAdmin       = "auth.register_admin"
	OpCreateOperativeUser = "operative_users.create"
	OpListOperativeUsers  = "operative_users.list"
	OpGetOperativeUser    = "operative_users.get"
	OpUpdateOperativeUser = "operative_users.update"
	OpToggleOperativeUser = "operative_users.toggle_status"
	OpDeleteOperativeUser = "operative_users.delete"
)

// moduleGrant names the per-module permission an administrator must hold.
type moduleGrant struct {
	module string
	action string
}

var allowedTypes = map[string]map[domain.ActorType]struct{}{
	OpLogout: {
		domain.ActorTypeAdmin:     {},
		domain.ActorTypeUser:      {},
		domain.ActorTypeOperative: {},
	},
	OpRegisterAdmin:       {domain.ActorTypeAdmin: {}},
	OpCreateOperativeUser: {domain.ActorTypeAdmin: {}},
	OpListOperativeUsers:  {domain.ActorTypeAdmin: {}},
	OpGetOperativeUser:    {domain.ActorTypeAdmin: {}},
	OpUpdateOperativeUser: {domain.ActorTypeAdmin: {}},
	OpToggleOperativeUser: {domain.ActorTypeAdmin: {}},
	OpDeleteOperativeUser: {domain.ActorTypeAdmin: {}},
}

var moduleGrants = map[string]moduleGrant{
	OpRegisterAdmin:       {module: "administrators", action: "write"},
	OpCreateOperativeUser: {module: "users", action: "write"},
	OpListOperativeUsers:  {module: "users", action: "read"},
	OpGetOperativeUser:    {module: "users", action: "read"},
	OpUpdateOperativeUser: {module: "users", action: "write"},
	OpToggleOperativeUser: {module: "users", action: "write"},
	OpDeleteOperativeUser: {module: "users", action: "delete"},
}

// Allows reports whether the authenticated actor may perform op. Unknown
// operations fail closed. For administrators the operation's module grant,
// when declared, must also be held.
func Allows(op string, actor domain.AuthenticatedActor) bool {
	types, ok := allowedTypes[op]
	if !ok {
		return false
	}
	if _, ok := types[actor.Type]; !ok {
		return false
	}
	if grant, ok := moduleGrants[op]; ok && actor.Type == domain.ActorTypeAdmin {
		return actor.HasModulePermission(grant.module, grant.action)
	}
	return true
}
