package rbac

import "strings"

// 权限常量
const (
	PermissionReadProject   = "project:read"
	PermissionWriteProject  = "project:write"
	PermissionDeleteProject = "project:delete"
	PermissionSubmitDemand  = "demand:submit"
	PermissionRefresh       = "store:refresh"
)

// 角色常量
const (
	RoleViewer = "viewer"
	RoleUser   = "user"
	RoleAdmin  = "admin"
)

// 角色权限映射
var rolePermissions = map[string][]string{
	RoleViewer: {
		PermissionReadProject,
	},
	RoleUser: {
		PermissionReadProject,
		PermissionWriteProject,
		PermissionDeleteProject,
		PermissionSubmitDemand,
		PermissionRefresh,
	},
	RoleAdmin: {
		PermissionReadProject,
		PermissionWriteProject,
		PermissionDeleteProject,
		PermissionSubmitDemand,
		PermissionRefresh,
	},
}

// NormalizeRole 将 profiles 表中的自由文本角色映射到已知角色
// 未知角色按 user 处理
func NormalizeRole(label string) string {
	switch strings.ToLower(strings.TrimSpace(label)) {
	case "admin", "administrador", "administrator":
		return RoleAdmin
	case "viewer", "leitor", "visualizador", "read-only", "readonly":
		return RoleViewer
	default:
		return RoleUser
	}
}

// HasPermission 检查角色是否有指定权限
func HasPermission(role, permission string) bool {
	permissions, ok := rolePermissions[NormalizeRole(role)]
	if !ok {
		return false
	}

	for _, p := range permissions {
		if p == permission {
			return true
		}
	}
	return false
}

// CheckPermission 检查角色是否有指定权限（返回错误而不是布尔值，便于处理）
func CheckPermission(role, permission string) error {
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
