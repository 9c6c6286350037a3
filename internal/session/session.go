package session

import (
	"strings"

	"github.com/golang-jwt/jwt"

	"quizmaster-console/internal/domain"
)

// Role names in ascending privilege order.
const (
	RoleStudent     = "student"
	RoleTeacher     = "teacher"
	RoleAdmin       = "admin"
	RoleSuperAdmin  = "super_admin"
	RoleSystemAdmin = "system_admin"
)

var roleLevels = map[string]int{
	RoleStudent:     0,
	RoleTeacher:     1,
	RoleAdmin:       2,
	RoleSuperAdmin:  3,
	RoleSystemAdmin: 4,
}

// reservedUsernames always clear the console allow-list regardless of the
// role claim.
var reservedUsernames = map[string]struct{}{
	"admin":     {},
	"superuser": {},
	"system":    {},
}

// ProtectedUsername is excluded from destructive and role-changing actions.
const ProtectedUsername = "admin"

// Claims is the bearer token payload shape the auth service issues.
type Claims struct {
	Username string `json:"username,omitempty"`
	Role     string `json:"role,omitempty"`
	jwt.StandardClaims
}

// Identity is what the console knows about the logged-in user. It is decoded
// from the token payload without signature verification and is a rendering
// hint only; every request still carries the raw token and the services make
// the actual authorization decision.
type Identity struct {
	Username string
	Role     string
}

// Decode extracts the identity from a bearer token. An empty token yields
// ErrNoToken; a token whose claims segment cannot be parsed yields
// ErrBadToken.
func Decode(token string) (Identity, error) {
	if token == "" {
		return Identity{}, domain.ErrNoToken
	}

	claims := &Claims{}
	parser := jwt.Parser{}
	if _, _, err := parser.ParseUnverified(token, claims); err != nil {
		return Identity{}, domain.ErrBadToken
	}

	username := claims.Subject
	if username == "" {
		username = claims.Username
	}
	if username == "" {
		return Identity{}, domain.ErrBadToken
	}

	role := claims.Role
	if role == "" {
		role = RoleStudent
	}

	return Identity{Username: username, Role: role}, nil
}

// Level maps a role name to its rank; unknown roles rank as student.
func Level(role string) int {
	return roleLevels[role]
}

// AtLeast reports whether the identity's role clears the required one.
func (id Identity) AtLeast(role string) bool {
	return Level(id.Role) >= Level(role)
}

// Allowlist decides whether the super-admin console is offered. Access is
// granted when the server-declared role is super_admin or system_admin, the
// username is reserved, or the username appears in the client-local promoted
// list. The promoted list is a UI hint, never an authorization proof: the
// backend still rejects requests the token does not entitle.
func Allowlist(id Identity, promoted []string) bool {
	if id.Role == RoleSuperAdmin || id.Role == RoleSystemAdmin {
		return true
	}
	name := strings.ToLower(id.Username)
	if _, ok := reservedUsernames[name]; ok {
		return true
	}
	for _, p := range promoted {
		if strings.ToLower(p) == name {
			return true
		}
	}
	return false
}
