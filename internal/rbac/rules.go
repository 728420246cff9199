package rbac

// Role names match the users.role column.
const (
	RoleStudent     = "aluno"
	RoleInstructor  = "professor"
	RoleCoordinator = "coordenador"
	RoleSuperAdmin  = "super_admin"
)

// Single source of truth for role gating. Handlers never re-derive the
// admin-ish role set; they ask the checker for a capability.
var RolePermissions = map[string][]string{
	RoleStudent: {
		"course:view",
		"question:take",
		"quiz:submit",
		"progress:mark",
		"enrollment:create",
		"enrollment:view-own",
		"finance:view-own",
		"document:request",
		"user:profile",
	},
	RoleInstructor: {
		"course:view",
		"question:take",
		"question:manage",
		"students:list",
		"grades:list",
		"metrics:view-basic",
		"user:profile",
	},
	RoleCoordinator: {
		"course:view",
		"course:manage",
		"enrollment:create",
		"question:take",
		"question:manage",
		"students:list",
		"grades:list",
		"metrics:view-basic",
		"metrics:view-performance",
		"material:manage",
		"user:profile",
	},
	RoleSuperAdmin: {
		"*", // everything
	},
}
