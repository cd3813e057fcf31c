package rbac

type Role string
type Action string

const (
	RoleViewer     Role = "viewer"
	RoleSupport    Role = "support"
	RoleAdmin      Role = "admin"
	RoleSuperadmin Role = "superadmin"
)

const (
	ActionRead    Action = "read"
	ActionMutate  Action = "mutate"
	ActionSupport Action = "support"
	ActionAdmin   Action = "admin"
)

// Can reports whether a role may perform an action on a resource.
// Support staff can read everything but only mutate the complaint desk;
// admins mutate everything except system settings, which stay superadmin.
func Can(role Role, action Action, resource string) bool {
	switch role {
	case RoleSuperadmin:
		return true
	case RoleAdmin:
		if resource == "settings" && action != ActionRead {
			return false
		}
		return action != ActionAdmin
	case RoleSupport:
		if action == ActionRead {
			return true
		}
		return resource == "complaints" && (action == ActionMutate || action == ActionSupport)
	case RoleViewer:
		return action == ActionRead
	default:
		return false
	}
}

func Normalize(role string) Role {
	switch Role(role) {
	case RoleViewer, RoleSupport, RoleAdmin, RoleSuperadmin:
		return Role(role)
	default:
		return RoleViewer
	}
}
