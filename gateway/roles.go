package gateway

import (
	"errors"
	"fmt"
	"strings"

	"github.com/ethereum/go-ethereum/common"

	"github.com/consensys/gnark-solvency/ledger"
)

// Role is a bitmask of named permissions. Authorization checks are explicit
// membership lookups against the store at call time, never cached.
type Role uint8

const (
	// RoleSigner addresses produce signatures the gateway honors on submit.
	RoleSigner Role = 1 << iota
	// RolePauser addresses may toggle the emergency pause.
	RolePauser
	// RoleAdmin addresses may grant and revoke any role.
	RoleAdmin

	allRoles = RoleSigner | RolePauser | RoleAdmin
)

// Has reports whether r contains every bit of role.
func (r Role) Has(role Role) bool { return r&role == role }

func (r Role) String() string {
	if r == 0 {
		return "none"
	}
	var names []string
	if r.Has(RoleSigner) {
		names = append(names, "signer")
	}
	if r.Has(RolePauser) {
		names = append(names, "pauser")
	}
	if r.Has(RoleAdmin) {
		names = append(names, "admin")
	}
	return strings.Join(names, "+")
}

// ParseRole maps a role name to its bit. It accepts the single-role names
// "signer", "pauser" and "admin".
func ParseRole(name string) (Role, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "signer":
		return RoleSigner, nil
	case "pauser":
		return RolePauser, nil
	case "admin":
		return RoleAdmin, nil
	default:
		return 0, fmt.Errorf("%w: %q", ErrUnknownRole, name)
	}
}

func validRole(role Role) error {
	if role == 0 || role&^allRoles != 0 {
		return fmt.Errorf("%w: mask %#x", ErrUnknownRole, uint8(role))
	}
	return nil
}

func roleKey(addr common.Address) []byte {
	return append([]byte("role/"), addr[:]...)
}

func readRoles(txn ledger.Txn, addr common.Address) (Role, error) {
	raw, err := txn.Get(roleKey(addr))
	if errors.Is(err, ledger.ErrKeyNotFound) {
		return 0, nil
	}
	if err != nil {
		return 0, err
	}
	if len(raw) != 1 {
		return 0, fmt.Errorf("corrupt role entry for %s", addr)
	}
	return Role(raw[0]), nil
}

func writeRoles(txn ledger.Txn, addr common.Address, roles Role) error {
	if roles == 0 {
		return txn.Delete(roleKey(addr))
	}
	return txn.Set(roleKey(addr), []byte{byte(roles)})
}
