package auth

// Role governs which operations an identity may invoke.
type Role string

const (
	RoleUser     Role = "user"
	RoleProducer Role = "producer"
)

// Valid reports whether the role is one of the known values.
func (r Role) Valid() bool {
	return r == RoleUser || r == RoleProducer
}

// Identity is a resolved, authenticated actor. It is always passed
// explicitly; nothing in the codebase reads the current actor from
// ambient state.
type Identity struct {
	ID       uint   `json:"id"`
	Username string `json:"username"`
	Role     Role   `json:"role"`
}
