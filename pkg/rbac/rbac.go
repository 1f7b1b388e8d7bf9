package rbac

// 权限常量
const (
	// 敏感操作权限
	PermissionReplayOutbox = "outbox:replay"

	// 普通操作权限
	PermissionWriteProject = "project:write"
	PermissionWritePhase   = "phase:write"
	PermissionWriteWorkLog = "worklog:write"
)

// 角色常量
const (
	RoleAdmin            = "admin"
	RoleProjectManager   = "project_manager"
	RoleSoftwareEngineer = "software_engineer"
	RoleViewer           = "viewer" // read-only
)

var memberPermissions = []string{
	PermissionWriteProject,
	PermissionWritePhase,
	PermissionWriteWorkLog,
}

// 角色权限映射; roles missing from the map get memberPermissions
var rolePermissions = map[string][]string{
	RoleAdmin: {
		PermissionReplayOutbox,
		PermissionWriteProject,
		PermissionWritePhase,
		PermissionWriteWorkLog,
	},
	RoleProjectManager:   memberPermissions,
	RoleSoftwareEngineer: memberPermissions,
	RoleViewer:           {},
}

// IsReserved reports roles that cannot be self-assigned at registration.
func IsReserved(role string) bool {
	return role == RoleAdmin
}

// HasPermission 检查角色是否有指定权限
func HasPermission(role string, permission string) bool {
	permissions, ok := rolePermissions[role]
	if !ok {
		permissions = memberPermissions
	}

	for _, p := range permissions {
		if p == permission {
			return true
		}
	}
	return false
}

// CheckPermission 检查角色是否有指定权限（返回错误而不是布尔值，便于处理）
func CheckPermission(role string, permission string) error {
	if !HasPermission(role, permission) {
		return &PermissionDeniedError{
			Role:       role,
			Permission: permission,
		}
	}
	return nil
}

// PermissionDeniedError 表示权限不足的错误
type PermissionDeniedError struct {
	Role       string
	Permission string
}

func (e *PermissionDeniedError) Error() string {
	return "insufficient permissions"
}
