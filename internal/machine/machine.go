// Package machine describes the build/host/target machine triple of
// spec §3 and the cross-build detection it enables.
package machine

// Role identifies which of the three machine roles a Descriptor describes.
type Role string

const (
	RoleBuild  Role = "build"
	RoleHost   Role = "host"
	RoleTarget Role = "target"
)

// Descriptor is a machine's identity as reported by toolchain
// introspection (an external collaborator per spec §6 — this struct just
// carries whatever the introspection layer reported).
type Descriptor struct {
	System     string // e.g. "linux", "darwin", "windows"
	CPUFamily  string // e.g. "x86_64", "aarch64"
	CPU        string // e.g. "znver3"
	Endian     string // "little" or "big"
}

// Set holds the three machine descriptors for one project evaluation.
type Set struct {
	Build  Descriptor
	Host   Descriptor
	Target Descriptor
}

// CrossBuild reports whether this is a cross build (host != build), per
// spec §3 "Cross-build is when host != build".
func (s Set) CrossBuild() bool {
	return s.Host != s.Build
}

// Get returns the descriptor for the given role.
func (s Set) Get(role Role) Descriptor {
	switch role {
	case RoleBuild:
		return s.Build
	case RoleHost:
		return s.Host
	case RoleTarget:
		return s.Target
	default:
		return Descriptor{}
	}
}
