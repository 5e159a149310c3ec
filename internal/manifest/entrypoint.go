package manifest

import (
	"strings"

	"github.com/google/uuid"
)

// entrypointNamespace is the fixed seed under which entrypoint
// identifiers are derived. It is itself a name-based UUID of the
// constant "entrypoint", so the whole derivation is pure: no clock, no
// randomness, no machine state.
var entrypointNamespace = uuid.NewSHA1(uuid.NameSpaceOID, []byte("entrypoint"))

// EntrypointID derives the stable identifier for a bundle's entrypoint
// object from its name. Equal names always yield equal identifiers.
func EntrypointID(name string) string {
	id := uuid.NewSHA1(entrypointNamespace, []byte(name))
	return strings.ToUpper(id.String())
}
